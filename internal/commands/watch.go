package commands

import (
	"bufio"
	"context"
	"flag"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"sort"
	"strings"

	"github.com/manishbhatt/gsync/internal/config"
	"github.com/manishbhatt/gsync/internal/exitcode"
	"github.com/manishbhatt/gsync/internal/logging"
	"github.com/manishbhatt/gsync/internal/output"
	"github.com/manishbhatt/gsync/internal/service"
	syncengine "github.com/manishbhatt/gsync/internal/sync"
)

func init() {
	Register(&WatchCmd{})
}

// WatchCmd implements the watch command: run a sync pass, print every
// Markdown file found one directory level below the working directory,
// then wait for Enter and repeat. A failed read on the prompt (EOF or
// interrupted input) ends the loop cleanly.
type WatchCmd struct {
	in io.Reader
}

// SetInput overrides the prompt input source (for testing).
func (c *WatchCmd) SetInput(r io.Reader) {
	c.in = r
}

func (c *WatchCmd) Name() string      { return "watch" }
func (c *WatchCmd) Aliases() []string { return nil }
func (c *WatchCmd) Synopsis() string  { return "Sync repeatedly, showing local files between passes" }
func (c *WatchCmd) Usage() string     { return "gsync watch [common flags]" }
func (c *WatchCmd) NeedsAuth() bool   { return true }

func (c *WatchCmd) RegisterFlags(fs *flag.FlagSet) {}

func (c *WatchCmd) Run(ctx context.Context, cfg *config.Config, svc service.Service, args []string, out, errOut io.Writer) int {
	if len(args) > 0 {
		fmt.Fprintln(errOut, "error: watch takes no arguments")
		return exitcode.UserError
	}

	settings, err := cfg.LoadSettings()
	if err != nil {
		fmt.Fprintf(errOut, "error: %v\n", err)
		return exitcode.AuthError
	}

	logger := logging.New(cfg.Debug, cfg.Quiet)
	defer logger.Sync()

	engine := syncengine.New(svc, logger, settings.DailyList)

	in := c.in
	if in == nil {
		in = os.Stdin
	}
	reader := bufio.NewReader(in)

	for {
		if ctx.Err() != nil {
			return exitcode.Success
		}

		// A failed sync does not end the loop; the next iteration retries.
		if _, err := engine.Run(ctx, settings); err != nil {
			fmt.Fprintf(errOut, "error: sync failed: %v\n", err)
		}

		if err := printLocalFiles(out); err != nil {
			fmt.Fprintf(errOut, "error: %v\n", err)
		}

		fmt.Fprint(errOut, "Press Enter to continue...")
		if _, err := reader.ReadString('\n'); err != nil {
			fmt.Fprintln(errOut)
			return exitcode.Success
		}
	}
}

// printLocalFiles prints every *.md file one directory level below the
// working directory, one line per file line, as "path:n:content".
func printLocalFiles(out io.Writer) error {
	paths, err := filepath.Glob(filepath.Join("*", "*.md"))
	if err != nil {
		return err
	}
	sort.Strings(paths)

	for _, path := range paths {
		data, err := os.ReadFile(path)
		if err != nil {
			return err
		}
		lines := strings.Split(strings.TrimSuffix(string(data), "\n"), "\n")
		if len(lines) == 1 && lines[0] == "" {
			continue
		}
		for i, line := range lines {
			output.FormatFileLine(out, path, i+1, line)
		}
	}
	return nil
}
