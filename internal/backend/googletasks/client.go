// Package googletasks implements the service.Service interface using the
// Google Tasks API.
package googletasks

import (
	"context"
	"encoding/json"
	"fmt"
	"os"
	"strings"
	"time"

	lru "github.com/hashicorp/golang-lru/v2"
	"golang.org/x/oauth2"
	"golang.org/x/oauth2/google"
	"golang.org/x/time/rate"
	"google.golang.org/api/option"
	tasks "google.golang.org/api/tasks/v1"

	"github.com/manishbhatt/gsync/internal/config"
	"github.com/manishbhatt/gsync/internal/service"
)

const (
	// PageSize is the number of tasks requested per API page.
	PageSize = 100

	// APITimeout is the timeout for a single API call.
	APITimeout = 30 * time.Second

	// listCacheSize bounds the EnsureList title cache. A sync run resolves
	// one list per file, so this covers any realistic notes directory.
	listCacheSize = 128

	// OAuth scope for Google Tasks
	tasksScope = "https://www.googleapis.com/auth/tasks"
)

// Client implements service.Service using the Google Tasks API.
type Client struct {
	svc     *tasks.Service
	cfg     *config.Config
	limiter *rate.Limiter
	lists   *lru.Cache[string, service.TaskList]
}

// New creates a new Google Tasks client.
// Requires credentials.json and token.json to exist in the config dir.
// The request rate comes from config.yaml when present.
func New(ctx context.Context, cfg *config.Config) (*Client, error) {
	// Load OAuth client config
	clientJSON, err := os.ReadFile(cfg.CredentialsPath())
	if err != nil {
		return nil, fmt.Errorf("failed to read %s: %w", config.CredentialsFile, err)
	}

	oauthConfig, err := google.ConfigFromJSON(clientJSON, tasksScope)
	if err != nil {
		return nil, fmt.Errorf("invalid %s: %w", config.CredentialsFile, err)
	}

	// Load token
	tokenData, err := os.ReadFile(cfg.TokenPath())
	if err != nil {
		return nil, fmt.Errorf("failed to read %s: %w", config.TokenFile, err)
	}

	var token oauth2.Token
	if err := json.Unmarshal(tokenData, &token); err != nil {
		return nil, fmt.Errorf("invalid %s: %w", config.TokenFile, err)
	}

	// Token source auto-refreshes; the HTTP client carries it
	tokenSource := oauthConfig.TokenSource(ctx, &token)
	httpClient := oauth2.NewClient(ctx, tokenSource)

	svc, err := tasks.NewService(ctx, option.WithHTTPClient(httpClient))
	if err != nil {
		return nil, fmt.Errorf("failed to create tasks service: %w", err)
	}

	rps := float64(config.DefaultRequestsPerSecond)
	if settings, err := cfg.LoadSettings(); err == nil && settings.RequestsPerSecond > 0 {
		rps = settings.RequestsPerSecond
	}

	cache, err := lru.New[string, service.TaskList](listCacheSize)
	if err != nil {
		return nil, err
	}

	return &Client{
		svc:     svc,
		cfg:     cfg,
		limiter: rate.NewLimiter(rate.Limit(rps), 1),
		lists:   cache,
	}, nil
}

// wait blocks until the rate limiter allows the next API call.
func (c *Client) wait(ctx context.Context) error {
	if err := c.limiter.Wait(ctx); err != nil {
		return fmt.Errorf("rate limit wait: %w", err)
	}
	return nil
}

// ListLists returns all task lists in API order.
func (c *Client) ListLists(ctx context.Context) ([]service.TaskList, error) {
	ctx, cancel := context.WithTimeout(ctx, APITimeout)
	defer cancel()

	if err := c.wait(ctx); err != nil {
		return nil, err
	}

	var result []service.TaskList
	err := c.svc.Tasklists.List().MaxResults(PageSize).Pages(ctx, func(resp *tasks.TaskLists) error {
		for _, list := range resp.Items {
			result = append(result, service.TaskList{
				ID:    list.Id,
				Title: list.Title,
			})
		}
		return c.wait(ctx)
	})
	if err != nil {
		return nil, wrapError(err)
	}

	return result, nil
}

// EnsureList returns the list whose title matches exactly, creating it if
// no such list exists. Resolved lists are cached for the client's lifetime.
func (c *Client) EnsureList(ctx context.Context, title string) (service.TaskList, error) {
	title = strings.TrimSpace(title)

	if list, ok := c.lists.Get(title); ok {
		return list, nil
	}

	lists, err := c.ListLists(ctx)
	if err != nil {
		return service.TaskList{}, err
	}
	for _, list := range lists {
		if list.Title == title {
			c.lists.Add(title, list)
			return list, nil
		}
	}

	ctx, cancel := context.WithTimeout(ctx, APITimeout)
	defer cancel()

	if err := c.wait(ctx); err != nil {
		return service.TaskList{}, err
	}

	created, err := c.svc.Tasklists.Insert(&tasks.TaskList{Title: title}).Context(ctx).Do()
	if err != nil {
		return service.TaskList{}, wrapError(err)
	}

	list := service.TaskList{ID: created.Id, Title: created.Title}
	c.lists.Add(title, list)
	return list, nil
}

// ResolveList finds a list by name (case-insensitive, trimmed).
func (c *Client) ResolveList(ctx context.Context, name string) (service.TaskList, error) {
	name = strings.TrimSpace(name)
	nameLower := strings.ToLower(name)

	lists, err := c.ListLists(ctx)
	if err != nil {
		return service.TaskList{}, err
	}

	var matches []service.TaskList
	for _, list := range lists {
		if strings.ToLower(strings.TrimSpace(list.Title)) == nameLower {
			matches = append(matches, list)
		}
	}

	switch len(matches) {
	case 0:
		return service.TaskList{}, fmt.Errorf("list not found: %s", name)
	case 1:
		return matches[0], nil
	default:
		return service.TaskList{}, fmt.Errorf("ambiguous list name: %s", name)
	}
}

// DeleteList deletes a task list by ID.
func (c *Client) DeleteList(ctx context.Context, listID string) error {
	ctx, cancel := context.WithTimeout(ctx, APITimeout)
	defer cancel()

	if err := c.wait(ctx); err != nil {
		return err
	}

	if err := c.svc.Tasklists.Delete(listID).Context(ctx).Do(); err != nil {
		return wrapError(err)
	}

	c.invalidate(listID)
	return nil
}

// invalidate drops a list from the EnsureList cache by ID.
func (c *Client) invalidate(listID string) {
	for _, key := range c.lists.Keys() {
		if list, ok := c.lists.Peek(key); ok && list.ID == listID {
			c.lists.Remove(key)
		}
	}
}

// HasOpenTasks checks if a list has any open tasks.
func (c *Client) HasOpenTasks(ctx context.Context, listID string) (bool, error) {
	ctx, cancel := context.WithTimeout(ctx, APITimeout)
	defer cancel()

	if err := c.wait(ctx); err != nil {
		return false, err
	}

	resp, err := c.svc.Tasks.List(listID).
		MaxResults(1).
		ShowCompleted(false).
		ShowDeleted(false).
		ShowHidden(false).
		Context(ctx).
		Do()
	if err != nil {
		return false, wrapError(err)
	}

	return len(resp.Items) > 0, nil
}

// ListTasks returns the tasks in a list with the given parent, completed
// tasks included. ShowHidden is required: the API hides completed tasks
// from list responses otherwise.
func (c *Client) ListTasks(ctx context.Context, listID, parentID string) ([]service.Task, error) {
	ctx, cancel := context.WithTimeout(ctx, APITimeout)
	defer cancel()

	if err := c.wait(ctx); err != nil {
		return nil, err
	}

	var result []service.Task
	call := c.svc.Tasks.List(listID).
		MaxResults(PageSize).
		ShowCompleted(true).
		ShowHidden(true).
		ShowDeleted(false)

	err := call.Pages(ctx, func(resp *tasks.Tasks) error {
		for _, task := range resp.Items {
			if task.Parent != parentID {
				continue
			}
			result = append(result, service.Task{
				ID:     task.Id,
				Title:  task.Title,
				Parent: task.Parent,
				Status: task.Status,
			})
		}
		return c.wait(ctx)
	})
	if err != nil {
		return nil, wrapError(err)
	}

	return result, nil
}

// CreateTask creates a task in the list, under parentID if non-empty.
func (c *Client) CreateTask(ctx context.Context, listID, parentID, title string, completed bool) (service.Task, error) {
	ctx, cancel := context.WithTimeout(ctx, APITimeout)
	defer cancel()

	if err := c.wait(ctx); err != nil {
		return service.Task{}, err
	}

	status := service.StatusNeedsAction
	if completed {
		status = service.StatusCompleted
	}

	call := c.svc.Tasks.Insert(listID, &tasks.Task{Title: title, Status: status})
	if parentID != "" {
		call = call.Parent(parentID)
	}

	created, err := call.Context(ctx).Do()
	if err != nil {
		return service.Task{}, wrapError(err)
	}

	return service.Task{
		ID:     created.Id,
		Title:  created.Title,
		Parent: created.Parent,
		Status: created.Status,
	}, nil
}

// CompleteTask marks a task as completed.
func (c *Client) CompleteTask(ctx context.Context, listID, taskID string) error {
	ctx, cancel := context.WithTimeout(ctx, APITimeout)
	defer cancel()

	if err := c.wait(ctx); err != nil {
		return err
	}

	_, err := c.svc.Tasks.Patch(listID, taskID, &tasks.Task{
		Status: service.StatusCompleted,
	}).Context(ctx).Do()
	if err != nil {
		return wrapError(err)
	}
	return nil
}

// wrapError wraps API errors with user-friendly messages.
func wrapError(err error) error {
	if err == nil {
		return nil
	}

	errStr := err.Error()

	// Check for timeout
	if strings.Contains(errStr, "context deadline exceeded") {
		return fmt.Errorf("request timed out")
	}

	// Check for auth errors
	if strings.Contains(errStr, "401") || strings.Contains(errStr, "403") {
		return fmt.Errorf("token expired or revoked (run: gsync login)")
	}

	// Check for not found
	if strings.Contains(errStr, "404") {
		return fmt.Errorf("not found")
	}

	return err
}
