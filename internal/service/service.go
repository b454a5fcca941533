// Package service defines the backend-agnostic interface for task operations.
package service

import "context"

// Service defines the interface for task backend operations.
// All Google Tasks API calls go through this interface.
// The sync engine and commands never import the Google SDK directly.
type Service interface {
	// ListLists returns all task lists in API order.
	ListLists(ctx context.Context) ([]TaskList, error)

	// EnsureList returns the list whose title matches exactly (trimmed),
	// creating it if no such list exists.
	EnsureList(ctx context.Context, title string) (TaskList, error)

	// ResolveList finds a list by name (case-insensitive, trimmed).
	// Returns an error if not found or ambiguous.
	ResolveList(ctx context.Context, name string) (TaskList, error)

	// DeleteList deletes a task list by ID.
	DeleteList(ctx context.Context, listID string) error

	// HasOpenTasks checks if a list has any open tasks.
	HasOpenTasks(ctx context.Context, listID string) (bool, error)

	// ListTasks returns the tasks in a list with the given parent,
	// completed tasks included. parentID "" selects top-level tasks.
	// Results are in API order.
	ListTasks(ctx context.Context, listID, parentID string) ([]Task, error)

	// CreateTask creates a task in the list, under parentID if non-empty,
	// with the given completion state.
	CreateTask(ctx context.Context, listID, parentID, title string, completed bool) (Task, error)

	// CompleteTask marks a task as completed.
	CompleteTask(ctx context.Context, listID, taskID string) error
}
