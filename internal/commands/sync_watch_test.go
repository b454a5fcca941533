package commands_test

import (
	"bytes"
	"context"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/manishbhatt/gsync/internal/commands"
	"github.com/manishbhatt/gsync/internal/config"
	"github.com/manishbhatt/gsync/internal/exitcode"
	"github.com/manishbhatt/gsync/internal/testutil"
)

// syncConfig writes a config.yaml pointing at a fresh notes directory and
// returns the config plus the notes directory path.
func syncConfig(t *testing.T, quiet bool) (*config.Config, string) {
	t.Helper()

	notesDir := t.TempDir()
	cfg := &config.Config{Dir: t.TempDir(), Quiet: quiet}

	settings := fmt.Sprintf("directory_paths:\n  - %s\n", notesDir)
	if err := os.WriteFile(cfg.SettingsPath(), []byte(settings), 0644); err != nil {
		t.Fatalf("write settings: %v", err)
	}
	return cfg, notesDir
}

func TestSyncCommand(t *testing.T) {
	svc := testutil.NewFakeService()
	cfg, notesDir := syncConfig(t, false)

	path := filepath.Join(notesDir, "errands.md")
	if err := os.WriteFile(path, []byte("- [ ] Post office\n"), 0644); err != nil {
		t.Fatalf("write file: %v", err)
	}

	cmd := &commands.SyncCmd{}
	var outBuf, errBuf bytes.Buffer
	code := cmd.Run(context.Background(), cfg, svc, nil, &outBuf, &errBuf)

	if code != exitcode.Success {
		t.Fatalf("expected exit code %d, got %d (stderr: %q)", exitcode.Success, code, errBuf.String())
	}
	if outBuf.String() != "synced 1 files, 0 daily files\n" {
		t.Errorf("unexpected summary: %q", outBuf.String())
	}

	list, ok := svc.ListByTitle("errands")
	if !ok {
		t.Fatal("expected list 'errands'")
	}
	if _, ok := svc.TaskByTitle(list.ID, "", "Post office"); !ok {
		t.Error("expected task pushed to remote")
	}
}

func TestSyncCommand_Quiet(t *testing.T) {
	svc := testutil.NewFakeService()
	cfg, _ := syncConfig(t, true)

	cmd := &commands.SyncCmd{}
	var outBuf, errBuf bytes.Buffer
	code := cmd.Run(context.Background(), cfg, svc, nil, &outBuf, &errBuf)

	if code != exitcode.Success {
		t.Fatalf("expected exit code %d, got %d", exitcode.Success, code)
	}
	if outBuf.String() != "" {
		t.Errorf("expected no stdout in quiet mode, got %q", outBuf.String())
	}
}

func TestSyncCommand_MissingSettings(t *testing.T) {
	svc := testutil.NewFakeService()
	cfg := &config.Config{Dir: t.TempDir()}

	cmd := &commands.SyncCmd{}
	var outBuf, errBuf bytes.Buffer
	code := cmd.Run(context.Background(), cfg, svc, nil, &outBuf, &errBuf)

	if code != exitcode.AuthError {
		t.Errorf("expected exit code %d, got %d", exitcode.AuthError, code)
	}
	if !strings.Contains(errBuf.String(), config.SettingsFile) {
		t.Errorf("expected error naming %s, got %q", config.SettingsFile, errBuf.String())
	}
}

func TestSyncCommand_RejectsArgs(t *testing.T) {
	svc := testutil.NewFakeService()
	cfg, _ := syncConfig(t, false)

	cmd := &commands.SyncCmd{}
	var outBuf, errBuf bytes.Buffer
	code := cmd.Run(context.Background(), cfg, svc, []string{"extra"}, &outBuf, &errBuf)

	if code != exitcode.UserError {
		t.Errorf("expected exit code %d, got %d", exitcode.UserError, code)
	}
}

func TestWatchCommand_TerminatesOnEOF(t *testing.T) {
	svc := testutil.NewFakeService()
	cfg, notesDir := syncConfig(t, true)

	path := filepath.Join(notesDir, "errands.md")
	if err := os.WriteFile(path, []byte("- [ ] Post office\n"), 0644); err != nil {
		t.Fatalf("write file: %v", err)
	}

	t.Chdir(t.TempDir())
	cmd := &commands.WatchCmd{}
	cmd.SetInput(strings.NewReader("")) // immediate EOF on the prompt

	var outBuf, errBuf bytes.Buffer
	code := cmd.Run(context.Background(), cfg, svc, nil, &outBuf, &errBuf)

	if code != exitcode.Success {
		t.Fatalf("expected clean termination, got %d (stderr: %q)", code, errBuf.String())
	}
	if !strings.Contains(errBuf.String(), "Press Enter to continue...") {
		t.Errorf("expected prompt on stderr, got %q", errBuf.String())
	}

	// One sync pass still ran before the prompt
	if _, ok := svc.ListByTitle("errands"); !ok {
		t.Error("expected one sync pass before termination")
	}
}

func TestWatchCommand_RepeatsOnEnter(t *testing.T) {
	svc := testutil.NewFakeService()
	cfg, notesDir := syncConfig(t, true)

	path := filepath.Join(notesDir, "errands.md")
	if err := os.WriteFile(path, []byte("- [ ] Post office\n"), 0644); err != nil {
		t.Fatalf("write file: %v", err)
	}

	t.Chdir(t.TempDir())
	cmd := &commands.WatchCmd{}
	cmd.SetInput(strings.NewReader("\n")) // one Enter, then EOF

	var outBuf, errBuf bytes.Buffer
	code := cmd.Run(context.Background(), cfg, svc, nil, &outBuf, &errBuf)

	if code != exitcode.Success {
		t.Fatalf("expected clean termination, got %d", code)
	}

	prompts := strings.Count(errBuf.String(), "Press Enter to continue...")
	if prompts != 2 {
		t.Errorf("expected 2 iterations (2 prompts), got %d", prompts)
	}
}

func TestWatchCommand_PrintsLocalFiles(t *testing.T) {
	svc := testutil.NewFakeService()
	cfg, _ := syncConfig(t, true)

	// Files one level below the working directory are displayed
	workDir := t.TempDir()
	sub := filepath.Join(workDir, "notes")
	if err := os.Mkdir(sub, 0755); err != nil {
		t.Fatalf("mkdir: %v", err)
	}
	if err := os.WriteFile(filepath.Join(sub, "todo.md"), []byte("# Todo\n- [ ] Milk\n"), 0644); err != nil {
		t.Fatalf("write file: %v", err)
	}
	if err := os.WriteFile(filepath.Join(workDir, "top.md"), []byte("not shown\n"), 0644); err != nil {
		t.Fatalf("write file: %v", err)
	}
	t.Chdir(workDir)

	cmd := &commands.WatchCmd{}
	cmd.SetInput(strings.NewReader(""))

	var outBuf, errBuf bytes.Buffer
	code := cmd.Run(context.Background(), cfg, svc, nil, &outBuf, &errBuf)

	if code != exitcode.Success {
		t.Fatalf("expected clean termination, got %d", code)
	}

	want := filepath.Join("notes", "todo.md") + ":1:# Todo\n" +
		filepath.Join("notes", "todo.md") + ":2:- [ ] Milk\n"
	if outBuf.String() != want {
		t.Errorf("expected %q, got %q", want, outBuf.String())
	}
}

func TestWatchCommand_ContinuesAfterSyncError(t *testing.T) {
	svc := testutil.NewFakeService()
	svc.EnsureListErr = testutil.ErrNotFound

	cfg, notesDir := syncConfig(t, true)
	if err := os.WriteFile(filepath.Join(notesDir, "a.md"), []byte("- [ ] X\n"), 0644); err != nil {
		t.Fatalf("write file: %v", err)
	}

	t.Chdir(t.TempDir())
	cmd := &commands.WatchCmd{}
	cmd.SetInput(strings.NewReader("\n"))

	var outBuf, errBuf bytes.Buffer
	code := cmd.Run(context.Background(), cfg, svc, nil, &outBuf, &errBuf)

	if code != exitcode.Success {
		t.Fatalf("expected clean termination, got %d", code)
	}

	// The loop kept prompting despite the sync failure
	prompts := strings.Count(errBuf.String(), "Press Enter to continue...")
	if prompts != 2 {
		t.Errorf("expected 2 prompts, got %d", prompts)
	}
	if !strings.Contains(errBuf.String(), "sync failed") {
		t.Errorf("expected sync failure on stderr, got %q", errBuf.String())
	}
}
