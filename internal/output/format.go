// Package output provides formatters for CLI output.
package output

import (
	"fmt"
	"io"
	"strings"

	"github.com/manishbhatt/gsync/internal/service"
	syncengine "github.com/manishbhatt/gsync/internal/sync"
)

// FormatListName formats a list name for the lists command.
func FormatListName(w io.Writer, list service.TaskList) {
	fmt.Fprintln(w, normalizeListTitle(list.Title))
}

// FormatSyncSummary formats the result of a sync run.
func FormatSyncSummary(w io.Writer, stats syncengine.Stats) {
	fmt.Fprintf(w, "synced %d files, %d daily files\n", stats.Files, stats.DailyFiles)
}

// FormatFileLine formats one line of a local file for the watch display.
// Format: "{PATH}:{N}:{LINE}\n", matching grep -n.
func FormatFileLine(w io.Writer, path string, num int, line string) {
	fmt.Fprintf(w, "%s:%d:%s\n", path, num, line)
}

// normalizeListTitle normalizes a list title for display.
// Empty or whitespace-only titles become "(untitled)".
func normalizeListTitle(title string) string {
	if strings.TrimSpace(title) == "" {
		return "(untitled)"
	}
	return title
}
