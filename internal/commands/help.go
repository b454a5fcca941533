package commands

import (
	"context"
	"flag"
	"fmt"
	"io"

	"github.com/manishbhatt/gsync/internal/config"
	"github.com/manishbhatt/gsync/internal/exitcode"
	"github.com/manishbhatt/gsync/internal/service"
)

func init() {
	Register(&HelpCmd{})
}

// HelpCmd implements the help command.
type HelpCmd struct{}

func (c *HelpCmd) Name() string      { return "help" }
func (c *HelpCmd) Aliases() []string { return nil }
func (c *HelpCmd) Synopsis() string  { return "Print usage" }
func (c *HelpCmd) Usage() string     { return "gsync help" }
func (c *HelpCmd) NeedsAuth() bool   { return false }

func (c *HelpCmd) RegisterFlags(fs *flag.FlagSet) {}

func (c *HelpCmd) Run(ctx context.Context, cfg *config.Config, svc service.Service, args []string, out, errOut io.Writer) int {
	fmt.Fprint(out, helpText)
	return exitcode.Success
}

const helpText = `Usage:
  gsync                            Run one sync pass (same as gsync sync)
  gsync sync [common flags]        Sync configured directories and daily files
  gsync watch [common flags]       Sync, show local files, repeat on Enter
  gsync lists [common flags]       Print all remote task lists
  gsync rmlist [common flags] [--force] <list-name>
  gsync login [common flags]
  gsync logout [common flags]
  gsync help
  gsync version

Common flags:
  --config <dir>   Override config directory (default: $GSYNC_DIR or ~/.got)
  --quiet          Suppress informational output
  --debug          Print debug logs to stderr
`
