// Package testutil provides testing utilities.
package testutil

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"sync"

	"github.com/manishbhatt/gsync/internal/service"
)

// ErrNotFound is returned when a resource is not found.
var ErrNotFound = errors.New("not found")

// ErrAmbiguous is returned when multiple matches are found.
var ErrAmbiguous = errors.New("ambiguous")

// FakeService is an in-memory implementation of service.Service for testing.
type FakeService struct {
	mu     sync.RWMutex
	lists  []service.TaskList
	tasks  map[string][]service.Task // listID -> tasks
	nextID int

	// Error injection for testing
	ListListsErr    error
	EnsureListErr   error
	ResolveListErr  error
	DeleteListErr   error
	HasOpenTasksErr error
	ListTasksErr    map[string]error // listID -> error
	CreateTaskErr   error
	CompleteTaskErr error
}

// NewFakeService creates an empty FakeService.
func NewFakeService() *FakeService {
	return &FakeService{
		tasks:        make(map[string][]service.Task),
		ListTasksErr: make(map[string]error),
	}
}

// AddList adds a list to the fake service.
func (f *FakeService) AddList(id, title string) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.lists = append(f.lists, service.TaskList{ID: id, Title: title})
	if f.tasks[id] == nil {
		f.tasks[id] = nil
	}
}

// AddTask adds a task to a list with an explicit completion state.
func (f *FakeService) AddTask(listID, taskID, parentID, title string, completed bool) {
	f.mu.Lock()
	defer f.mu.Unlock()
	status := service.StatusNeedsAction
	if completed {
		status = service.StatusCompleted
	}
	f.tasks[listID] = append(f.tasks[listID], service.Task{
		ID:     taskID,
		Title:  title,
		Parent: parentID,
		Status: status,
	})
}

// TaskByTitle returns the first task in a list matching title and parent.
func (f *FakeService) TaskByTitle(listID, parentID, title string) (service.Task, bool) {
	f.mu.RLock()
	defer f.mu.RUnlock()
	for _, t := range f.tasks[listID] {
		if t.Title == title && t.Parent == parentID {
			return t, true
		}
	}
	return service.Task{}, false
}

// ListByTitle returns the first list matching title.
func (f *FakeService) ListByTitle(title string) (service.TaskList, bool) {
	f.mu.RLock()
	defer f.mu.RUnlock()
	for _, l := range f.lists {
		if l.Title == title {
			return l, true
		}
	}
	return service.TaskList{}, false
}

// ListLists implements service.Service.
func (f *FakeService) ListLists(ctx context.Context) ([]service.TaskList, error) {
	if f.ListListsErr != nil {
		return nil, f.ListListsErr
	}
	f.mu.RLock()
	defer f.mu.RUnlock()
	result := make([]service.TaskList, len(f.lists))
	copy(result, f.lists)
	return result, nil
}

// EnsureList implements service.Service.
func (f *FakeService) EnsureList(ctx context.Context, title string) (service.TaskList, error) {
	if f.EnsureListErr != nil {
		return service.TaskList{}, f.EnsureListErr
	}
	f.mu.Lock()
	defer f.mu.Unlock()

	title = strings.TrimSpace(title)
	for _, l := range f.lists {
		if l.Title == title {
			return l, nil
		}
	}

	f.nextID++
	list := service.TaskList{ID: fmt.Sprintf("list-%d", f.nextID), Title: title}
	f.lists = append(f.lists, list)
	f.tasks[list.ID] = nil
	return list, nil
}

// ResolveList implements service.Service.
func (f *FakeService) ResolveList(ctx context.Context, name string) (service.TaskList, error) {
	if f.ResolveListErr != nil {
		return service.TaskList{}, f.ResolveListErr
	}
	f.mu.RLock()
	defer f.mu.RUnlock()

	nameLower := strings.ToLower(strings.TrimSpace(name))

	var matches []service.TaskList
	for _, l := range f.lists {
		if strings.ToLower(strings.TrimSpace(l.Title)) == nameLower {
			matches = append(matches, l)
		}
	}

	switch len(matches) {
	case 0:
		return service.TaskList{}, ErrNotFound
	case 1:
		return matches[0], nil
	default:
		return service.TaskList{}, ErrAmbiguous
	}
}

// DeleteList implements service.Service.
func (f *FakeService) DeleteList(ctx context.Context, listID string) error {
	if f.DeleteListErr != nil {
		return f.DeleteListErr
	}
	f.mu.Lock()
	defer f.mu.Unlock()

	for i, l := range f.lists {
		if l.ID == listID {
			f.lists = append(f.lists[:i], f.lists[i+1:]...)
			delete(f.tasks, listID)
			return nil
		}
	}
	return ErrNotFound
}

// HasOpenTasks implements service.Service.
func (f *FakeService) HasOpenTasks(ctx context.Context, listID string) (bool, error) {
	if f.HasOpenTasksErr != nil {
		return false, f.HasOpenTasksErr
	}
	f.mu.RLock()
	defer f.mu.RUnlock()

	tasks, ok := f.tasks[listID]
	if !ok {
		return false, ErrNotFound
	}

	for _, t := range tasks {
		if !t.Completed() {
			return true, nil
		}
	}
	return false, nil
}

// ListTasks implements service.Service.
func (f *FakeService) ListTasks(ctx context.Context, listID, parentID string) ([]service.Task, error) {
	if err, ok := f.ListTasksErr[listID]; ok && err != nil {
		return nil, err
	}
	f.mu.RLock()
	defer f.mu.RUnlock()

	tasks, ok := f.tasks[listID]
	if !ok {
		return nil, ErrNotFound
	}

	var result []service.Task
	for _, t := range tasks {
		if t.Parent == parentID {
			result = append(result, t)
		}
	}
	return result, nil
}

// CreateTask implements service.Service.
func (f *FakeService) CreateTask(ctx context.Context, listID, parentID, title string, completed bool) (service.Task, error) {
	if f.CreateTaskErr != nil {
		return service.Task{}, f.CreateTaskErr
	}
	f.mu.Lock()
	defer f.mu.Unlock()

	if _, ok := f.tasks[listID]; !ok {
		return service.Task{}, ErrNotFound
	}

	status := service.StatusNeedsAction
	if completed {
		status = service.StatusCompleted
	}

	f.nextID++
	task := service.Task{
		ID:     fmt.Sprintf("task-%d", f.nextID),
		Title:  title,
		Parent: parentID,
		Status: status,
	}
	f.tasks[listID] = append(f.tasks[listID], task)
	return task, nil
}

// CompleteTask implements service.Service.
func (f *FakeService) CompleteTask(ctx context.Context, listID, taskID string) error {
	if f.CompleteTaskErr != nil {
		return f.CompleteTaskErr
	}
	f.mu.Lock()
	defer f.mu.Unlock()

	tasks, ok := f.tasks[listID]
	if !ok {
		return ErrNotFound
	}

	for i, t := range tasks {
		if t.ID == taskID {
			f.tasks[listID][i].Status = service.StatusCompleted
			return nil
		}
	}
	return ErrNotFound
}
