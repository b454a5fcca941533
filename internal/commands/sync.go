package commands

import (
	"context"
	"flag"
	"fmt"
	"io"

	"github.com/manishbhatt/gsync/internal/config"
	"github.com/manishbhatt/gsync/internal/exitcode"
	"github.com/manishbhatt/gsync/internal/logging"
	"github.com/manishbhatt/gsync/internal/output"
	"github.com/manishbhatt/gsync/internal/service"
	syncengine "github.com/manishbhatt/gsync/internal/sync"
)

func init() {
	Register(&SyncCmd{})
}

// SyncCmd implements the sync command: one full reconciliation pass over
// the configured directories and the daily directory.
type SyncCmd struct{}

func (c *SyncCmd) Name() string      { return "sync" }
func (c *SyncCmd) Aliases() []string { return nil }
func (c *SyncCmd) Synopsis() string  { return "Sync Markdown files with remote tasks" }
func (c *SyncCmd) Usage() string     { return "gsync sync [common flags]" }
func (c *SyncCmd) NeedsAuth() bool   { return true }

func (c *SyncCmd) RegisterFlags(fs *flag.FlagSet) {}

func (c *SyncCmd) Run(ctx context.Context, cfg *config.Config, svc service.Service, args []string, out, errOut io.Writer) int {
	if len(args) > 0 {
		fmt.Fprintln(errOut, "error: sync takes no arguments")
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

	stats, err := engine.Run(ctx, settings)
	if err != nil {
		fmt.Fprintf(errOut, "error: sync failed: %v\n", err)
		return exitcode.BackendError
	}

	if !cfg.Quiet {
		output.FormatSyncSummary(out, stats)
	}
	return exitcode.Success
}
