// Package memory provides an in-process host store used by tests, the seed
// command and the "memory" store backend.
package memory

import (
	"context"
	"fmt"
	"sync"
	"time"

	"writersuite/internal/domain"
	models "writersuite/internal/domain/models/workspace"
	repo "writersuite/internal/domain/repositories/workspace"
	"writersuite/internal/repository/events"
)

var _ repo.HostStore = (*Store)(nil)

type entry struct {
	node     models.Node
	content  string
	children []string // child names in insertion order
	readErr  error
}

// Store keeps the workspace tree in memory.
// Children are listed in insertion order.
type Store struct {
	mu      sync.RWMutex
	entries map[string]*entry
	emitter *events.Emitter
	now     func() time.Time
}

// Option configures a Store
type Option func(*Store)

// WithClock overrides the clock used for CreatedAt timestamps
func WithClock(now func() time.Time) Option {
	return func(s *Store) { s.now = now }
}

// WithBuffer sets the event channel capacity
func WithBuffer(n int) Option {
	return func(s *Store) { s.emitter = events.NewEmitter(n) }
}

// NewStore creates an empty store holding only the workspace root
func NewStore(opts ...Option) *Store {
	s := &Store{
		entries: make(map[string]*entry),
		now:     time.Now,
	}
	for _, opt := range opts {
		opt(s)
	}
	if s.emitter == nil {
		s.emitter = events.NewEmitter(events.DefaultBuffer)
	}
	s.entries[""] = &entry{node: models.Node{Kind: models.KindContainer, CreatedAt: s.now()}}
	return s
}

// Lookup returns the node at path
func (s *Store) Lookup(ctx context.Context, path string) (*models.Node, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	s.mu.RLock()
	defer s.mu.RUnlock()

	e, ok := s.entries[models.CleanPath(path)]
	if !ok {
		return nil, fmt.Errorf("node %q: %w", path, domain.ErrNotFound)
	}
	node := e.node
	return &node, nil
}

// ListChildren returns the children of the container at path
func (s *Store) ListChildren(ctx context.Context, path string) ([]models.Node, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	s.mu.RLock()
	defer s.mu.RUnlock()

	path = models.CleanPath(path)
	e, ok := s.entries[path]
	if !ok {
		return nil, fmt.Errorf("container %q: %w", path, domain.ErrNotFound)
	}
	if !e.node.IsContainer() {
		return nil, fmt.Errorf("%q is not a container: %w", path, domain.ErrValidation)
	}
	if e.readErr != nil {
		return nil, e.readErr
	}

	nodes := make([]models.Node, 0, len(e.children))
	for _, name := range e.children {
		nodes = append(nodes, s.entries[models.JoinPath(path, name)].node)
	}
	return nodes, nil
}

// ReadText returns the content of the document at path
func (s *Store) ReadText(ctx context.Context, path string) (string, error) {
	if err := ctx.Err(); err != nil {
		return "", err
	}
	s.mu.RLock()
	defer s.mu.RUnlock()

	path = models.CleanPath(path)
	e, ok := s.entries[path]
	if !ok {
		return "", fmt.Errorf("document %q: %w", path, domain.ErrNotFound)
	}
	if !e.node.IsDocument() {
		return "", fmt.Errorf("%q is a container: %w", path, domain.ErrReadFailure)
	}
	if e.readErr != nil {
		return "", e.readErr
	}
	return e.content, nil
}

// CreateContainer creates a container. The parent must exist.
func (s *Store) CreateContainer(ctx context.Context, path string) (*models.Node, error) {
	return s.create(ctx, path, models.KindContainer, "")
}

// CreateDocument creates a document with the given content
func (s *Store) CreateDocument(ctx context.Context, path, content string) (*models.Node, error) {
	return s.create(ctx, path, models.KindDocument, content)
}

func (s *Store) create(ctx context.Context, path string, kind models.NodeKind, content string) (*models.Node, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	path = models.CleanPath(path)
	if path == "" {
		return nil, fmt.Errorf("cannot create the workspace root: %w", domain.ErrValidation)
	}

	s.mu.Lock()
	parentPath, name := models.ParentPath(path), models.BaseName(path)
	parent, ok := s.entries[parentPath]
	if !ok {
		s.mu.Unlock()
		return nil, fmt.Errorf("parent %q: %w", parentPath, domain.ErrNotFound)
	}
	if !parent.node.IsContainer() {
		s.mu.Unlock()
		return nil, fmt.Errorf("parent %q is not a container: %w", parentPath, domain.ErrValidation)
	}
	if existing, ok := s.entries[path]; ok {
		s.mu.Unlock()
		return nil, &domain.ConflictError{
			Message:  fmt.Sprintf("%q already exists", path),
			NodeKind: string(existing.node.Kind),
			Path:     path,
		}
	}

	node := models.Node{Kind: kind, Name: name, Path: path, CreatedAt: s.now()}
	s.entries[path] = &entry{node: node, content: content}
	parent.children = append(parent.children, name)
	s.mu.Unlock()

	s.emitter.Emit(models.Event{Op: models.OpCreated, Path: path, Kind: kind})
	return &node, nil
}

// WriteText replaces the content of an existing document
func (s *Store) WriteText(ctx context.Context, path, content string) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	path = models.CleanPath(path)

	s.mu.Lock()
	e, ok := s.entries[path]
	if !ok {
		s.mu.Unlock()
		return fmt.Errorf("document %q: %w", path, domain.ErrNotFound)
	}
	if !e.node.IsDocument() {
		s.mu.Unlock()
		return fmt.Errorf("%q is a container: %w", path, domain.ErrValidation)
	}
	e.content = content
	s.mu.Unlock()

	s.emitter.Emit(models.Event{Op: models.OpModified, Path: path, Kind: models.KindDocument})
	return nil
}

// Delete removes a node and, for containers, everything beneath it
func (s *Store) Delete(ctx context.Context, path string) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	path = models.CleanPath(path)
	if path == "" {
		return fmt.Errorf("cannot delete the workspace root: %w", domain.ErrValidation)
	}

	s.mu.Lock()
	e, ok := s.entries[path]
	if !ok {
		s.mu.Unlock()
		return fmt.Errorf("node %q: %w", path, domain.ErrNotFound)
	}
	kind := e.node.Kind
	s.removeLocked(path)

	parent := s.entries[models.ParentPath(path)]
	name := models.BaseName(path)
	for i, child := range parent.children {
		if child == name {
			parent.children = append(parent.children[:i], parent.children[i+1:]...)
			break
		}
	}
	s.mu.Unlock()

	s.emitter.Emit(models.Event{Op: models.OpDeleted, Path: path, Kind: kind})
	return nil
}

func (s *Store) removeLocked(path string) {
	e := s.entries[path]
	for _, name := range e.children {
		s.removeLocked(models.JoinPath(path, name))
	}
	delete(s.entries, path)
}

// SetReadError makes reads of path fail with err (nil clears it).
// For containers the listing fails; for documents ReadText fails.
func (s *Store) SetReadError(path string, err error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if e, ok := s.entries[models.CleanPath(path)]; ok {
		e.readErr = err
	}
}

// Events returns the mutation event stream
func (s *Store) Events() <-chan models.Event {
	return s.emitter.Events()
}

// Close closes the event stream
func (s *Store) Close() error {
	s.emitter.Close()
	return nil
}
