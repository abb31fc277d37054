package refresh

import (
	"context"
	"encoding/json"
	"fmt"
	"log/slog"
	"sync"

	"github.com/google/uuid"
	mstream "github.com/haowjy/meridian-stream-go"
	"writersuite/internal/domain"
	models "writersuite/internal/domain/models/workspace"
)

// Renderer computes the content of a view
type Renderer interface {
	Render(ctx context.Context, view models.ViewState) (*models.ViewSnapshot, error)
}

// StaleEventType is the stream event type sent when a view needs re-reading
const StaleEventType = "stale"

type openView struct {
	coord  *Coordinator
	stream *mstream.Stream

	// renderMu keeps at most one computation per view in flight
	renderMu sync.Mutex
	snapshot *models.ViewSnapshot

	// stale holds at most one pending signal, so bursts coalesce
	stale chan struct{}
}

// signal tells the view's stream that the view turned stale
func (v *openView) signal() {
	select {
	case v.stale <- struct{}{}:
	default:
	}
}

// publish is the stream's work function. It sends one stale event per
// coalesced signal until the view is closed.
func (v *openView) publish(logger *slog.Logger) mstream.WorkFunc {
	return func(ctx context.Context, send func(mstream.Event)) error {
		for {
			select {
			case <-ctx.Done():
				return nil
			case <-v.stale:
				view, _ := v.coord.CurrentState()
				data, err := json.Marshal(view)
				if err != nil {
					logger.Warn("failed to encode stale event", "view_id", view.ID, "error", err)
					continue
				}
				send(mstream.NewEvent(data).WithType(StaleEventType))
			}
		}
	}
}

// Hub owns the coordinators of every open view
type Hub struct {
	mu       sync.RWMutex
	views    map[string]*openView
	streams  *mstream.Registry
	renderer Renderer
	layout   models.Layout
	logger   *slog.Logger
}

// NewHub creates an empty hub
func NewHub(renderer Renderer, layout models.Layout, logger *slog.Logger) *Hub {
	return &Hub{
		views:    make(map[string]*openView),
		streams:  mstream.NewRegistry(),
		renderer: renderer,
		layout:   layout,
		logger:   logger,
	}
}

// Open registers a new view and starts its event stream. The view starts
// stale and renders on first read.
func (h *Hub) Open(kind models.ViewKind, bookPath string) (models.ViewState, error) {
	if !kind.Valid() {
		return models.ViewState{}, fmt.Errorf("%w: unknown view kind %q", domain.ErrValidation, kind)
	}
	view := models.ViewState{
		ID:             uuid.NewString(),
		Kind:           kind,
		ActiveBookPath: bookPath,
	}
	coord := NewCoordinator(view, FilterFor(kind, h.layout))
	view, _ = coord.CurrentState()

	v := &openView{coord: coord, stale: make(chan struct{}, 1)}
	v.stream = mstream.NewStream(view.ID, v.publish(h.logger), mstream.WithBuffer(newLatestBuffer()))
	if err := h.streams.Register(v.stream); err != nil {
		return models.ViewState{}, fmt.Errorf("register view stream: %w", err)
	}
	v.stream.Start()

	h.mu.Lock()
	h.views[view.ID] = v
	h.mu.Unlock()

	h.logger.Debug("view opened", "view_id", view.ID, "kind", kind, "book", view.ActiveBookPath)
	return view, nil
}

// Close drops a view and its cached snapshot, ending its event stream
func (h *Hub) Close(id string) error {
	h.mu.Lock()
	v, ok := h.views[id]
	delete(h.views, id)
	h.mu.Unlock()

	if !ok {
		return fmt.Errorf("view %q: %w", id, domain.ErrNotFound)
	}
	v.stream.Cancel()
	h.streams.Remove(id)
	h.logger.Debug("view closed", "view_id", id)
	return nil
}

func (h *Hub) lookup(id string) (*openView, error) {
	h.mu.RLock()
	defer h.mu.RUnlock()

	v, ok := h.views[id]
	if !ok {
		return nil, fmt.Errorf("view %q: %w", id, domain.ErrNotFound)
	}
	return v, nil
}

// SelectBook changes the active book of a view
func (h *Hub) SelectBook(id, bookPath string) (models.ViewState, error) {
	v, err := h.lookup(id)
	if err != nil {
		return models.ViewState{}, err
	}
	view := v.coord.SelectBook(bookPath)
	v.signal()
	return view, nil
}

// Stream returns the event stream of a view. It carries a StaleEventType
// event each time the view turns stale and completes when the view closes.
func (h *Hub) Stream(id string) (*mstream.Stream, error) {
	stream := h.streams.Get(id)
	if stream == nil {
		return nil, fmt.Errorf("view %q: %w", id, domain.ErrNotFound)
	}
	return stream, nil
}

// State returns the view and its refresh state without rendering
func (h *Hub) State(id string) (models.ViewState, models.RefreshState, error) {
	v, err := h.lookup(id)
	if err != nil {
		return models.ViewState{}, "", err
	}
	view, state := v.coord.CurrentState()
	return view, state, nil
}

// Get returns the view's content, rendering it first when stale.
// A failed render falls back to the last good snapshot when there is one.
func (h *Hub) Get(ctx context.Context, id string) (*models.ViewSnapshot, error) {
	v, err := h.lookup(id)
	if err != nil {
		return nil, err
	}

	v.renderMu.Lock()
	defer v.renderMu.Unlock()

	var rendered *models.ViewSnapshot
	ran, err := v.coord.Refresh(ctx, func(ctx context.Context, view models.ViewState) error {
		snap, err := h.renderer.Render(ctx, view)
		if err != nil {
			return err
		}
		rendered = snap
		return nil
	})
	if ran && err == nil {
		v.snapshot = rendered
	}
	if err != nil {
		h.logger.Warn("view render failed", "view_id", id, "error", err)
		if v.snapshot == nil {
			return nil, err
		}
	}
	if v.snapshot == nil {
		return nil, fmt.Errorf("view %q has no rendered content", id)
	}

	_, state := v.coord.CurrentState()
	snap := *v.snapshot
	snap.State = state
	return &snap, nil
}

// Dispatch notifies every open view of ev and returns how many accepted it
func (h *Hub) Dispatch(ev models.Event) int {
	if ev.Op == models.OpResync {
		h.logger.Info("event source resync, invalidating views")
	}

	h.mu.RLock()
	defer h.mu.RUnlock()

	accepted := 0
	for _, v := range h.views {
		if v.coord.Notify(ev) {
			v.signal()
			accepted++
		}
	}
	h.logger.Debug("event dispatched", "op", ev.Op, "path", ev.Path, "count", accepted)
	return accepted
}

// InvalidateAll marks every open view stale
func (h *Hub) InvalidateAll() {
	h.mu.RLock()
	defer h.mu.RUnlock()

	for _, v := range h.views {
		v.coord.Invalidate()
		v.signal()
	}
	h.logger.Debug("all views invalidated", "count", len(h.views))
}

// Len returns the number of open views
func (h *Hub) Len() int {
	h.mu.RLock()
	defer h.mu.RUnlock()
	return len(h.views)
}

// Run dispatches events until ctx is done or events is closed
func (h *Hub) Run(ctx context.Context, events <-chan models.Event) {
	h.logger.Info("view hub started")
	for {
		select {
		case <-ctx.Done():
			h.logger.Info("view hub stopped")
			return
		case ev, ok := <-events:
			if !ok {
				h.logger.Info("event source closed, view hub stopped")
				return
			}
			h.Dispatch(ev)
		}
	}
}

// SettingsListener returns a settings callback that invalidates every view
// when a setting changes. Word counts depend on the punctuation rule and the
// shelf and profile show the rest.
func (h *Hub) SettingsListener() func(old, updated models.Settings) {
	return func(old, updated models.Settings) {
		if old == updated {
			return
		}
		h.logger.Info("settings changed, invalidating views",
			"count_punctuation", updated.CountPunctuation,
		)
		h.InvalidateAll()
	}
}
