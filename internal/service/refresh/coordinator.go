// Package refresh keeps open views consistent with the workspace.
//
// Each view owns a Coordinator, a three-state machine fed by store events.
// The Hub holds the coordinators of all open views, fans events out to them
// and renders a view lazily when it is read while stale.
package refresh

import (
	"context"
	"fmt"
	"sync"

	models "writersuite/internal/domain/models/workspace"
)

// Filter reports whether ev can change what view displays
type Filter func(view models.ViewState, ev models.Event) bool

// Coordinator serializes the refresh cycle of one view.
//
//	Idle      --notify--> Stale
//	Stale     --begin---> Computing
//	Computing --settle--> Idle, or Stale if a mutation arrived meanwhile
//
// Notifications while Computing coalesce into a single re-run. A computation
// in flight is never cancelled.
type Coordinator struct {
	mu     sync.Mutex
	view   models.ViewState
	state  models.RefreshState
	dirty  bool
	filter Filter
}

// NewCoordinator creates a coordinator in the Stale state so the first read renders.
// A nil filter accepts every event.
func NewCoordinator(view models.ViewState, filter Filter) *Coordinator {
	if filter == nil {
		filter = func(models.ViewState, models.Event) bool { return true }
	}
	view.ActiveBookPath = models.CleanPath(view.ActiveBookPath)
	return &Coordinator{view: view, state: models.StateStale, filter: filter}
}

// Notify records a store mutation. It returns false when the event is not
// relevant to the view and was ignored. A resync is relevant to every view.
func (c *Coordinator) Notify(ev models.Event) bool {
	c.mu.Lock()
	defer c.mu.Unlock()

	if ev.Op != models.OpResync && !c.filter(c.view, ev) {
		return false
	}
	c.invalidateLocked()
	return true
}

// Invalidate marks the view stale regardless of relevance
func (c *Coordinator) Invalidate() {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.invalidateLocked()
}

func (c *Coordinator) invalidateLocked() {
	switch c.state {
	case models.StateIdle:
		c.state = models.StateStale
	case models.StateComputing:
		c.dirty = true
	}
}

// SelectBook changes the active book and marks the view stale
func (c *Coordinator) SelectBook(path string) models.ViewState {
	c.mu.Lock()
	defer c.mu.Unlock()

	c.view.ActiveBookPath = models.CleanPath(path)
	c.invalidateLocked()
	return c.view
}

// Begin starts a computation when the view is stale. It returns the view to
// render, with LastRenderedAt already advanced, and false when the view is
// idle or a computation is already running.
func (c *Coordinator) Begin() (models.ViewState, bool) {
	c.mu.Lock()
	defer c.mu.Unlock()

	if c.state != models.StateStale {
		return c.view, false
	}
	c.state = models.StateComputing
	c.dirty = false
	c.view.LastRenderedAt++
	return c.view, true
}

// Settle ends the running computation. A failed computation leaves the
// view stale so the next read retries.
func (c *Coordinator) Settle(err error) models.RefreshState {
	c.mu.Lock()
	defer c.mu.Unlock()

	if c.state != models.StateComputing {
		return c.state
	}
	if c.dirty || err != nil {
		c.state = models.StateStale
	} else {
		c.state = models.StateIdle
	}
	c.dirty = false
	return c.state
}

// Refresh runs fn when the view is stale, between Begin and Settle.
// It reports whether fn ran. A panic in fn is returned as an error and
// leaves the view stale.
func (c *Coordinator) Refresh(ctx context.Context, fn func(ctx context.Context, view models.ViewState) error) (ran bool, err error) {
	view, ok := c.Begin()
	if !ok {
		return false, nil
	}
	defer func() {
		if r := recover(); r != nil {
			err = fmt.Errorf("render panicked: %v", r)
		}
		c.Settle(err)
	}()
	return true, fn(ctx, view)
}

// CurrentState returns the view and its refresh state
func (c *Coordinator) CurrentState() (models.ViewState, models.RefreshState) {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.view, c.state
}
