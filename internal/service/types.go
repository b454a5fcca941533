// Package service defines the backend-agnostic interface for task operations.
package service

// Task status values used by the remote backend.
const (
	StatusNeedsAction = "needsAction"
	StatusCompleted   = "completed"
)

// Task represents a single task item.
type Task struct {
	ID     string
	Title  string
	Parent string // parent task ID, empty for top-level tasks
	Status string // "needsAction" or "completed"
}

// Completed reports whether the task is marked completed.
func (t Task) Completed() bool {
	return t.Status == StatusCompleted
}

// TaskList represents a task list.
type TaskList struct {
	ID    string
	Title string
}
