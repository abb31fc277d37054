package workspace

import (
	"context"
	"io"
	"log/slog"
	"testing"
	"time"

	"golang.org/x/text/language"
	"writersuite/internal/config"
	models "writersuite/internal/domain/models/workspace"
	svc "writersuite/internal/domain/services/workspace"
	"writersuite/internal/repository/memory"
)

type staticSettings struct {
	settings models.Settings
}

func (s *staticSettings) Current() models.Settings { return s.settings }

func discardLogger() *slog.Logger {
	return slog.New(slog.NewTextHandler(io.Discard, nil))
}

// tickingClock returns a clock that advances one minute per call
func tickingClock() func() time.Time {
	t := time.Date(2024, 1, 1, 0, 0, 0, 0, time.UTC)
	return func() time.Time {
		t = t.Add(time.Minute)
		return t
	}
}

func newTestStore() *memory.Store {
	return memory.NewStore(memory.WithClock(tickingClock()))
}

func newTestAggregator(store *memory.Store, countPunctuation bool) svc.TreeAggregator {
	settings := &staticSettings{settings: models.Settings{CountPunctuation: countPunctuation}}
	return NewTreeAggregator(store, settings, language.Chinese, config.DefaultMaxTreeDepth, discardLogger())
}

func mkdir(t *testing.T, s *memory.Store, path string) models.Node {
	t.Helper()
	node, err := s.CreateContainer(context.Background(), path)
	if err != nil {
		t.Fatalf("CreateContainer(%q) error = %v", path, err)
	}
	return *node
}

func write(t *testing.T, s *memory.Store, path, content string) models.Node {
	t.Helper()
	node, err := s.CreateDocument(context.Background(), path, content)
	if err != nil {
		t.Fatalf("CreateDocument(%q) error = %v", path, err)
	}
	return *node
}

func lookup(t *testing.T, s *memory.Store, path string) models.Node {
	t.Helper()
	node, err := s.Lookup(context.Background(), path)
	if err != nil {
		t.Fatalf("Lookup(%q) error = %v", path, err)
	}
	return *node
}
