// Package fsstore serves a workspace from a directory on the local disk.
package fsstore

import (
	"context"
	"errors"
	"fmt"
	"io/fs"
	"log/slog"
	"os"
	"path/filepath"
	"strings"
	"sync"
	"unicode/utf8"

	"writersuite/internal/domain"
	models "writersuite/internal/domain/models/workspace"
	repo "writersuite/internal/domain/repositories/workspace"
	"writersuite/internal/repository/events"
)

var _ repo.HostStore = (*Store)(nil)

// Store maps workspace paths onto a directory tree.
// Listings are sorted by file name; entries starting with "." are hidden.
// File modification time stands in for creation time.
type Store struct {
	root    string
	logger  *slog.Logger
	emitter *events.Emitter

	mu      sync.Mutex
	watcher *watcher
}

// NewStore opens the workspace rooted at dir, creating dir if needed
func NewStore(dir string, logger *slog.Logger) (*Store, error) {
	abs, err := filepath.Abs(dir)
	if err != nil {
		return nil, fmt.Errorf("resolve vault root: %w", err)
	}
	if err := os.MkdirAll(abs, 0o755); err != nil {
		return nil, fmt.Errorf("create vault root: %w", err)
	}
	return &Store{
		root:    abs,
		logger:  logger,
		emitter: events.NewEmitter(events.DefaultBuffer),
	}, nil
}

// Root returns the absolute directory backing the workspace
func (s *Store) Root() string {
	return s.root
}

// resolve converts a workspace path into an absolute file path
func (s *Store) resolve(path string) (string, string, error) {
	path = models.CleanPath(path)
	for _, seg := range strings.Split(path, "/") {
		if seg == ".." {
			return "", "", fmt.Errorf("path %q escapes the workspace: %w", path, domain.ErrValidation)
		}
	}
	return path, filepath.Join(s.root, filepath.FromSlash(path)), nil
}

func nodeFromInfo(path string, info fs.FileInfo) models.Node {
	kind := models.KindDocument
	if info.IsDir() {
		kind = models.KindContainer
	}
	name := models.BaseName(path)
	return models.Node{Kind: kind, Name: name, Path: path, CreatedAt: info.ModTime()}
}

// Lookup returns the node at path
func (s *Store) Lookup(ctx context.Context, path string) (*models.Node, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	path, full, err := s.resolve(path)
	if err != nil {
		return nil, err
	}
	info, err := os.Stat(full)
	if err != nil {
		if errors.Is(err, fs.ErrNotExist) {
			return nil, fmt.Errorf("node %q: %w", path, domain.ErrNotFound)
		}
		return nil, fmt.Errorf("stat %q: %w", path, err)
	}
	node := nodeFromInfo(path, info)
	return &node, nil
}

// ListChildren lists regular files and directories under path
func (s *Store) ListChildren(ctx context.Context, path string) ([]models.Node, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	path, full, err := s.resolve(path)
	if err != nil {
		return nil, err
	}
	entries, err := os.ReadDir(full)
	if err != nil {
		if errors.Is(err, fs.ErrNotExist) {
			return nil, fmt.Errorf("container %q: %w", path, domain.ErrNotFound)
		}
		return nil, fmt.Errorf("list %q: %w", path, err)
	}

	nodes := make([]models.Node, 0, len(entries))
	for _, entry := range entries {
		if hidden(entry.Name()) {
			continue
		}
		if !entry.IsDir() && !entry.Type().IsRegular() {
			// Symlinks and devices are not part of the workspace
			continue
		}
		info, err := entry.Info()
		if err != nil {
			// Removed between ReadDir and Info
			continue
		}
		nodes = append(nodes, nodeFromInfo(models.JoinPath(path, entry.Name()), info))
	}
	return nodes, nil
}

// ReadText reads a document. Content that is not valid UTF-8 is a read failure.
func (s *Store) ReadText(ctx context.Context, path string) (string, error) {
	if err := ctx.Err(); err != nil {
		return "", err
	}
	path, full, err := s.resolve(path)
	if err != nil {
		return "", err
	}
	data, err := os.ReadFile(full)
	if err != nil {
		if errors.Is(err, fs.ErrNotExist) {
			return "", fmt.Errorf("document %q: %w", path, domain.ErrNotFound)
		}
		return "", fmt.Errorf("read %q: %v: %w", path, err, domain.ErrReadFailure)
	}
	if !utf8.Valid(data) {
		return "", fmt.Errorf("document %q is not valid text: %w", path, domain.ErrReadFailure)
	}
	return string(data), nil
}

// CreateContainer creates a directory. The parent must exist.
func (s *Store) CreateContainer(ctx context.Context, path string) (*models.Node, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	path, full, err := s.resolve(path)
	if err != nil {
		return nil, err
	}
	if path == "" {
		return nil, fmt.Errorf("cannot create the workspace root: %w", domain.ErrValidation)
	}
	if err := os.Mkdir(full, 0o755); err != nil {
		return nil, s.createError(path, err)
	}
	s.emitter.Emit(models.Event{Op: models.OpCreated, Path: path, Kind: models.KindContainer})
	return s.Lookup(ctx, path)
}

// CreateDocument creates a file with the given content. Existing files are never overwritten.
func (s *Store) CreateDocument(ctx context.Context, path, content string) (*models.Node, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	path, full, err := s.resolve(path)
	if err != nil {
		return nil, err
	}
	if path == "" {
		return nil, fmt.Errorf("cannot create the workspace root: %w", domain.ErrValidation)
	}
	f, err := os.OpenFile(full, os.O_WRONLY|os.O_CREATE|os.O_EXCL, 0o644)
	if err != nil {
		return nil, s.createError(path, err)
	}
	if _, err := f.WriteString(content); err != nil {
		f.Close()
		return nil, fmt.Errorf("write %q: %w", path, err)
	}
	if err := f.Close(); err != nil {
		return nil, fmt.Errorf("close %q: %w", path, err)
	}
	s.emitter.Emit(models.Event{Op: models.OpCreated, Path: path, Kind: models.KindDocument})
	return s.Lookup(ctx, path)
}

func (s *Store) createError(path string, err error) error {
	switch {
	case errors.Is(err, fs.ErrExist):
		kind := models.KindDocument
		if _, full, rerr := s.resolve(path); rerr == nil {
			if info, serr := os.Stat(full); serr == nil && info.IsDir() {
				kind = models.KindContainer
			}
		}
		return &domain.ConflictError{
			Message:  fmt.Sprintf("%q already exists", path),
			NodeKind: string(kind),
			Path:     path,
		}
	case errors.Is(err, fs.ErrNotExist):
		return fmt.Errorf("parent %q: %w", models.ParentPath(path), domain.ErrNotFound)
	default:
		return fmt.Errorf("create %q: %w", path, err)
	}
}

// Delete removes a file or a directory tree
func (s *Store) Delete(ctx context.Context, path string) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	path, full, err := s.resolve(path)
	if err != nil {
		return err
	}
	if path == "" {
		return fmt.Errorf("cannot delete the workspace root: %w", domain.ErrValidation)
	}
	info, err := os.Lstat(full)
	if err != nil {
		if errors.Is(err, fs.ErrNotExist) {
			return fmt.Errorf("node %q: %w", path, domain.ErrNotFound)
		}
		return fmt.Errorf("stat %q: %w", path, err)
	}
	if err := os.RemoveAll(full); err != nil {
		return fmt.Errorf("delete %q: %w", path, err)
	}
	s.emitter.Emit(models.Event{Op: models.OpDeleted, Path: path, Kind: nodeFromInfo(path, info).Kind})
	return nil
}

// Events returns mutation events from this store's writes and, once Watch
// has been called, from changes made by other programs.
func (s *Store) Events() <-chan models.Event {
	return s.emitter.Events()
}

// Close stops the watcher and closes the event stream
func (s *Store) Close() error {
	s.mu.Lock()
	w := s.watcher
	s.watcher = nil
	s.mu.Unlock()

	var err error
	if w != nil {
		err = w.stop()
	}
	s.emitter.Close()
	return err
}

func hidden(name string) bool {
	return strings.HasPrefix(name, ".")
}
