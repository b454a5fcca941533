// Package sync reconciles Markdown checkbox files with remote tasklists.
package sync

import (
	"context"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/google/uuid"
	"go.uber.org/zap"

	"github.com/manishbhatt/gsync/internal/config"
	"github.com/manishbhatt/gsync/internal/markdown"
	"github.com/manishbhatt/gsync/internal/service"
)

// Stats summarizes one sync run.
type Stats struct {
	// Files is the number of directory-mode files synced.
	Files int

	// DailyFiles is the number of daily-mode files synced.
	DailyFiles int
}

// Engine performs two-way reconciliation between local files and the
// remote backend.
type Engine struct {
	svc       service.Service
	log       *zap.Logger
	dailyList string
}

// New creates an Engine. dailyList is the title of the tasklist holding
// daily parent tasks.
func New(svc service.Service, logger *zap.Logger, dailyList string) *Engine {
	if logger == nil {
		logger = zap.NewNop()
	}
	if dailyList == "" {
		dailyList = config.DefaultDailyList
	}
	return &Engine{svc: svc, log: logger, dailyList: dailyList}
}

// Merge combines local and remote task states. Local is the base; a remote
// entry wins when its title is absent locally or the remote copy is
// completed. A completed task therefore stays completed on both sides.
func Merge(local, remote *markdown.TaskSet) *markdown.TaskSet {
	merged := local.Clone()
	for _, title := range remote.Titles() {
		completed, _ := remote.Get(title)
		if _, ok := merged.Get(title); !ok || completed {
			merged.Set(title, completed)
		}
	}
	return merged
}

// SyncFile reconciles one file against the tasklist named after its stem,
// creating the list remotely if needed.
func (e *Engine) SyncFile(ctx context.Context, path string) error {
	stem := fileStem(path)

	list, err := e.svc.EnsureList(ctx, stem)
	if err != nil {
		return fmt.Errorf("%s: %w", path, err)
	}

	return e.syncAgainst(ctx, path, list.ID, "")
}

// SyncDaily reconciles one file against the subtasks of a parent task named
// after its stem in the daily list. Both the list and the parent task are
// created remotely if needed.
func (e *Engine) SyncDaily(ctx context.Context, path string) error {
	stem := fileStem(path)

	list, err := e.svc.EnsureList(ctx, e.dailyList)
	if err != nil {
		return fmt.Errorf("%s: %w", path, err)
	}

	parents, err := e.svc.ListTasks(ctx, list.ID, "")
	if err != nil {
		return fmt.Errorf("%s: %w", path, err)
	}

	var parent service.Task
	found := false
	for _, t := range parents {
		if t.Title == stem {
			parent = t
			found = true
			break
		}
	}
	if !found {
		parent, err = e.svc.CreateTask(ctx, list.ID, "", stem, false)
		if err != nil {
			return fmt.Errorf("%s: %w", path, err)
		}
	}

	return e.syncAgainst(ctx, path, list.ID, parent.ID)
}

// syncAgainst runs the merge for one file against one remote task scope
// and writes the result back to both sides.
func (e *Engine) syncAgainst(ctx context.Context, path, listID, parentID string) error {
	remoteTasks, err := e.svc.ListTasks(ctx, listID, parentID)
	if err != nil {
		return fmt.Errorf("%s: %w", path, err)
	}

	local, err := markdown.ParseFile(path)
	if err != nil {
		return fmt.Errorf("%s: %w", path, err)
	}

	remote := markdown.NewTaskSet()
	for _, t := range remoteTasks {
		if t.Title == "" {
			continue
		}
		remote.Set(t.Title, t.Completed())
	}

	merged := Merge(local, remote)

	e.log.Debug("merged tasks",
		zap.String("path", path),
		zap.Int("local", local.Len()),
		zap.Int("remote", remote.Len()),
		zap.Int("merged", merged.Len()),
	)

	if err := markdown.RewriteFile(path, merged); err != nil {
		return fmt.Errorf("%s: %w", path, err)
	}

	return e.pushRemote(ctx, listID, parentID, remoteTasks, merged)
}

// pushRemote applies the merged states to the backend: completes existing
// tasks whose merged state is done, then inserts tasks for titles the
// backend has never seen. Nothing is ever deleted.
func (e *Engine) pushRemote(ctx context.Context, listID, parentID string, remoteTasks []service.Task, merged *markdown.TaskSet) error {
	pending := merged.Clone()

	for _, rt := range remoteTasks {
		completed, ok := pending.Pop(rt.Title)
		if !ok {
			continue
		}
		if completed && !rt.Completed() {
			if err := e.svc.CompleteTask(ctx, listID, rt.ID); err != nil {
				return err
			}
		}
	}

	for _, title := range pending.Titles() {
		completed, _ := pending.Get(title)
		if _, err := e.svc.CreateTask(ctx, listID, parentID, title, completed); err != nil {
			return err
		}
	}

	return nil
}

// Run performs a full pass: every configured directory in directory mode,
// then the daily directory in daily mode. In daily mode, remote parent
// tasks without a local file get an empty file created first so edits on
// either side converge.
func (e *Engine) Run(ctx context.Context, settings *config.Settings) (Stats, error) {
	var stats Stats
	log := e.log.With(zap.String("run_id", uuid.NewString()))

	for _, dir := range settings.DirectoryPaths {
		log.Info("processing directory", zap.String("dir", dir))

		paths, err := markdownFiles(dir)
		if err != nil {
			return stats, err
		}
		for _, path := range paths {
			log.Info("syncing file", zap.String("path", path))
			if err := e.SyncFile(ctx, path); err != nil {
				return stats, err
			}
			stats.Files++
		}
	}

	if settings.DailyPath == "" {
		return stats, nil
	}

	log.Info("processing daily directory", zap.String("dir", settings.DailyPath))

	if err := e.createDailyFiles(ctx, settings.DailyPath); err != nil {
		return stats, err
	}

	paths, err := markdownFiles(settings.DailyPath)
	if err != nil {
		return stats, err
	}
	for _, path := range paths {
		log.Info("syncing daily file", zap.String("path", path))
		if err := e.SyncDaily(ctx, path); err != nil {
			return stats, err
		}
		stats.DailyFiles++
	}

	return stats, nil
}

// createDailyFiles creates an empty Markdown file for every parent task in
// the daily list that has no local counterpart.
func (e *Engine) createDailyFiles(ctx context.Context, dir string) error {
	list, err := e.svc.EnsureList(ctx, e.dailyList)
	if err != nil {
		return err
	}

	parents, err := e.svc.ListTasks(ctx, list.ID, "")
	if err != nil {
		return err
	}

	for _, t := range parents {
		if t.Title == "" {
			continue
		}
		path := filepath.Join(dir, t.Title+".md")
		if _, err := os.Stat(path); err == nil {
			continue
		} else if !os.IsNotExist(err) {
			return err
		}
		e.log.Debug("creating daily file", zap.String("path", path))
		if err := os.WriteFile(path, nil, 0644); err != nil {
			return err
		}
	}

	return nil
}

// markdownFiles lists *.md files directly inside dir, sorted by name.
func markdownFiles(dir string) ([]string, error) {
	entries, err := os.ReadDir(dir)
	if err != nil {
		return nil, err
	}
	var paths []string
	for _, entry := range entries {
		if entry.IsDir() || !strings.HasSuffix(entry.Name(), ".md") {
			continue
		}
		paths = append(paths, filepath.Join(dir, entry.Name()))
	}
	return paths, nil
}

// fileStem returns the file name without its .md extension.
func fileStem(path string) string {
	return strings.TrimSuffix(filepath.Base(path), ".md")
}
