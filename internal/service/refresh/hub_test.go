package refresh

import (
	"context"
	"encoding/json"
	"errors"
	"io"
	"log/slog"
	"sync"
	"testing"
	"time"

	mstream "github.com/haowjy/meridian-stream-go"
	"writersuite/internal/domain"
	models "writersuite/internal/domain/models/workspace"
	"writersuite/internal/repository/memory"
)

func discardLogger() *slog.Logger {
	return slog.New(slog.NewTextHandler(io.Discard, nil))
}

// countingRenderer renders an empty shelf and records each call
type countingRenderer struct {
	mu    sync.Mutex
	calls int
	err   error
}

func (r *countingRenderer) Render(_ context.Context, view models.ViewState) (*models.ViewSnapshot, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.calls++
	if r.err != nil {
		return nil, r.err
	}
	return &models.ViewSnapshot{View: view, Shelf: &models.Shelf{BooksPerRow: r.calls}}, nil
}

func (r *countingRenderer) count() int {
	r.mu.Lock()
	defer r.mu.Unlock()
	return r.calls
}

func TestHub_OpenGetClose(t *testing.T) {
	ctx := context.Background()
	renderer := &countingRenderer{}
	hub := NewHub(renderer, models.DefaultLayout(), discardLogger())

	if _, err := hub.Open("timeline", ""); !errors.Is(err, domain.ErrValidation) {
		t.Errorf("Open(unknown kind) error = %v, want ErrValidation", err)
	}

	view, err := hub.Open(models.ViewBookshelf, "")
	if err != nil {
		t.Fatalf("Open() error = %v", err)
	}
	if view.ID == "" {
		t.Fatal("Open() returned empty ID")
	}
	if _, state, _ := hub.State(view.ID); state != models.StateStale {
		t.Errorf("state after Open = %q, want %q", state, models.StateStale)
	}

	snap, err := hub.Get(ctx, view.ID)
	if err != nil {
		t.Fatalf("Get() error = %v", err)
	}
	if snap.State != models.StateIdle || snap.View.LastRenderedAt != 1 {
		t.Errorf("Get() = state %q rendered %d, want idle 1", snap.State, snap.View.LastRenderedAt)
	}

	// Idle views serve the cached snapshot
	if _, err := hub.Get(ctx, view.ID); err != nil {
		t.Fatalf("second Get() error = %v", err)
	}
	if renderer.count() != 1 {
		t.Errorf("renders = %d, want 1", renderer.count())
	}

	if n := hub.Dispatch(modified("甲/一.md")); n != 1 {
		t.Errorf("Dispatch() = %d, want 1", n)
	}
	snap, _ = hub.Get(ctx, view.ID)
	if renderer.count() != 2 || snap.View.LastRenderedAt != 2 {
		t.Errorf("after event: renders = %d, LastRenderedAt = %d, want 2, 2", renderer.count(), snap.View.LastRenderedAt)
	}

	if err := hub.Close(view.ID); err != nil {
		t.Fatalf("Close() error = %v", err)
	}
	if _, err := hub.Get(ctx, view.ID); !errors.Is(err, domain.ErrNotFound) {
		t.Errorf("Get(closed) error = %v, want ErrNotFound", err)
	}
	if err := hub.Close(view.ID); !errors.Is(err, domain.ErrNotFound) {
		t.Errorf("Close(closed) error = %v, want ErrNotFound", err)
	}
}

func TestHub_RenderFailure(t *testing.T) {
	ctx := context.Background()
	renderer := &countingRenderer{err: errors.New("store offline")}
	hub := NewHub(renderer, models.DefaultLayout(), discardLogger())
	view, _ := hub.Open(models.ViewBookshelf, "")

	if _, err := hub.Get(ctx, view.ID); err == nil {
		t.Fatal("Get() with failing renderer and no snapshot succeeded")
	}

	renderer.mu.Lock()
	renderer.err = nil
	renderer.mu.Unlock()
	if _, err := hub.Get(ctx, view.ID); err != nil {
		t.Fatalf("Get() after recovery error = %v", err)
	}

	renderer.mu.Lock()
	renderer.err = errors.New("store offline")
	renderer.mu.Unlock()
	hub.InvalidateAll()

	snap, err := hub.Get(ctx, view.ID)
	if err != nil {
		t.Fatalf("Get() with cached snapshot error = %v", err)
	}
	if snap.State != models.StateStale {
		t.Errorf("fallback snapshot state = %q, want %q", snap.State, models.StateStale)
	}
}

func TestHub_SelectBook(t *testing.T) {
	hub := NewHub(&countingRenderer{}, models.DefaultLayout(), discardLogger())
	view, _ := hub.Open(models.ViewTOC, "甲")
	hub.Get(context.Background(), view.ID)

	if n := hub.Dispatch(modified("乙/一.md")); n != 0 {
		t.Errorf("Dispatch(other book) = %d, want 0", n)
	}

	updated, err := hub.SelectBook(view.ID, "乙")
	if err != nil {
		t.Fatalf("SelectBook() error = %v", err)
	}
	if updated.ActiveBookPath != "乙" {
		t.Errorf("ActiveBookPath = %q, want 乙", updated.ActiveBookPath)
	}
	if _, state, _ := hub.State(view.ID); state != models.StateStale {
		t.Errorf("state after SelectBook = %q, want %q", state, models.StateStale)
	}
	if _, err := hub.SelectBook("missing", "乙"); !errors.Is(err, domain.ErrNotFound) {
		t.Errorf("SelectBook(missing) error = %v, want ErrNotFound", err)
	}
}

func TestHub_Run(t *testing.T) {
	hub := NewHub(&countingRenderer{}, models.DefaultLayout(), discardLogger())
	view, _ := hub.Open(models.ViewBookshelf, "")
	hub.Get(context.Background(), view.ID)

	events := make(chan models.Event, 1)
	done := make(chan struct{})
	go func() {
		hub.Run(context.Background(), events)
		close(done)
	}()

	events <- modified("甲/一.md")
	close(events)

	select {
	case <-done:
	case <-time.After(5 * time.Second):
		t.Fatal("Run() did not return after events closed")
	}
	if _, state, _ := hub.State(view.ID); state != models.StateStale {
		t.Errorf("state after Run = %q, want %q", state, models.StateStale)
	}
}

func TestHub_ConcurrentGet(t *testing.T) {
	renderer := &countingRenderer{}
	hub := NewHub(renderer, models.DefaultLayout(), discardLogger())
	view, _ := hub.Open(models.ViewBookshelf, "")

	var wg sync.WaitGroup
	for i := 0; i < 8; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			if _, err := hub.Get(context.Background(), view.ID); err != nil {
				t.Errorf("Get() error = %v", err)
			}
		}()
	}
	wg.Wait()

	if renderer.count() != 1 {
		t.Errorf("renders = %d, want 1", renderer.count())
	}
}

func receiveStale(t *testing.T, events <-chan mstream.Event) models.ViewState {
	t.Helper()
	select {
	case ev, ok := <-events:
		if !ok {
			t.Fatal("stream closed, want a stale event")
		}
		if ev.Type != StaleEventType {
			t.Fatalf("event type = %q, want %q", ev.Type, StaleEventType)
		}
		var view models.ViewState
		if err := json.Unmarshal(ev.Data, &view); err != nil {
			t.Fatalf("decode stale event: %v", err)
		}
		return view
	case <-time.After(5 * time.Second):
		t.Fatal("no stale event")
	}
	return models.ViewState{}
}

func TestHub_Stream(t *testing.T) {
	hub := NewHub(&countingRenderer{}, models.DefaultLayout(), discardLogger())
	view, _ := hub.Open(models.ViewTOC, "甲")

	stream, err := hub.Stream(view.ID)
	if err != nil {
		t.Fatalf("Stream() error = %v", err)
	}
	events := stream.AddClient("test")

	hub.Dispatch(modified("乙/一.md"))
	select {
	case ev := <-events:
		t.Fatalf("irrelevant event streamed %+v", ev)
	case <-time.After(20 * time.Millisecond):
	}

	hub.Dispatch(modified("甲/一.md"))
	if got := receiveStale(t, events); got.ID != view.ID {
		t.Errorf("stale event for view %q, want %q", got.ID, view.ID)
	}

	selected, _ := hub.SelectBook(view.ID, "乙")
	if got := receiveStale(t, events); got.ActiveBookPath != selected.ActiveBookPath {
		t.Errorf("stale event book = %q, want %q", got.ActiveBookPath, selected.ActiveBookPath)
	}

	if _, err := hub.Stream("missing"); !errors.Is(err, domain.ErrNotFound) {
		t.Errorf("Stream(missing) error = %v, want ErrNotFound", err)
	}

	hub.Close(view.ID)
	select {
	case _, ok := <-events:
		if ok {
			t.Error("received an event after Close, want the stream to end")
		}
	case <-time.After(5 * time.Second):
		t.Fatal("stream still open after Close")
	}
	if _, err := hub.Stream(view.ID); !errors.Is(err, domain.ErrNotFound) {
		t.Errorf("Stream() after Close error = %v, want ErrNotFound", err)
	}
}

type panickingRenderer struct{}

func (panickingRenderer) Render(context.Context, models.ViewState) (*models.ViewSnapshot, error) {
	panic("renderer bug")
}

func TestHub_PanickingRenderer(t *testing.T) {
	ctx := context.Background()
	hub := NewHub(panickingRenderer{}, models.DefaultLayout(), discardLogger())
	view, _ := hub.Open(models.ViewBookshelf, "")

	for i := 0; i < 2; i++ {
		if _, err := hub.Get(ctx, view.ID); err == nil {
			t.Fatalf("Get() #%d with panicking renderer succeeded", i+1)
		}
		if _, state, _ := hub.State(view.ID); state != models.StateStale {
			t.Fatalf("state after Get() #%d = %q, want %q", i+1, state, models.StateStale)
		}
	}

	hub.Dispatch(modified("甲/一.md"))
	if _, state, _ := hub.State(view.ID); state != models.StateStale {
		t.Errorf("state after notify = %q, want %q", state, models.StateStale)
	}
}

// dispatchPending hands every buffered store event to the hub
func dispatchPending(hub *Hub, events <-chan models.Event) {
	for {
		select {
		case ev := <-events:
			hub.Dispatch(ev)
		default:
			return
		}
	}
}

func TestHub_OverflowInvalidatesViews(t *testing.T) {
	ctx := context.Background()
	store := memory.NewStore(memory.WithBuffer(1))
	store.CreateContainer(ctx, "甲")
	store.CreateContainer(ctx, "乙")

	hub := NewHub(&countingRenderer{}, models.DefaultLayout(), discardLogger())
	dispatchPending(hub, store.Events())

	view, _ := hub.Open(models.ViewTOC, "乙")
	if _, err := hub.Get(ctx, view.ID); err != nil {
		t.Fatalf("Get() error = %v", err)
	}

	// The second event overflows the buffer and reaches the hub only as a resync
	store.CreateDocument(ctx, "甲/一.md", "")
	store.CreateDocument(ctx, "乙/一.md", "")
	dispatchPending(hub, store.Events())

	if _, state, _ := hub.State(view.ID); state != models.StateStale {
		t.Errorf("view of 乙 after 乙 changed = %q, want %q", state, models.StateStale)
	}
}

func TestHub_SettingsListener(t *testing.T) {
	hub := NewHub(&countingRenderer{}, models.DefaultLayout(), discardLogger())
	view, _ := hub.Open(models.ViewBookshelf, "")
	hub.Get(context.Background(), view.ID)
	listener := hub.SettingsListener()

	same := models.Settings{BooksPerRow: 5}
	listener(same, same)
	if _, state, _ := hub.State(view.ID); state != models.StateIdle {
		t.Errorf("state after no-op change = %q, want %q", state, models.StateIdle)
	}

	listener(same, models.Settings{BooksPerRow: 5, CountPunctuation: true})
	if _, state, _ := hub.State(view.ID); state != models.StateStale {
		t.Errorf("state after punctuation change = %q, want %q", state, models.StateStale)
	}
}
