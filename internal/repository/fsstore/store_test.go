package fsstore

import (
	"context"
	"errors"
	"io"
	"log/slog"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/fsnotify/fsnotify"
	"writersuite/internal/domain"
	models "writersuite/internal/domain/models/workspace"
	"writersuite/internal/repository/events"
)

func newTestStore(t *testing.T) *Store {
	t.Helper()
	s, err := NewStore(t.TempDir(), slog.New(slog.NewTextHandler(io.Discard, nil)))
	if err != nil {
		t.Fatalf("NewStore() error = %v", err)
	}
	t.Cleanup(func() { s.Close() })
	return s
}

func TestStore_CreateListRead(t *testing.T) {
	ctx := context.Background()
	s := newTestStore(t)

	if _, err := s.CreateContainer(ctx, "书"); err != nil {
		t.Fatalf("CreateContainer() error = %v", err)
	}
	if _, err := s.CreateDocument(ctx, "书/b.md", "乙"); err != nil {
		t.Fatalf("CreateDocument() error = %v", err)
	}
	if _, err := s.CreateDocument(ctx, "书/a.md", "甲"); err != nil {
		t.Fatalf("CreateDocument() error = %v", err)
	}
	if _, err := s.CreateContainer(ctx, "书/卷"); err != nil {
		t.Fatalf("CreateContainer() error = %v", err)
	}

	children, err := s.ListChildren(ctx, "书")
	if err != nil {
		t.Fatalf("ListChildren() error = %v", err)
	}
	var names []string
	for _, c := range children {
		names = append(names, c.Name)
	}
	want := []string{"a.md", "b.md", "卷"}
	if len(names) != len(want) {
		t.Fatalf("names = %v, want %v", names, want)
	}
	for i := range want {
		if names[i] != want[i] {
			t.Errorf("names[%d] = %q, want %q", i, names[i], want[i])
		}
	}
	if children[2].Kind != models.KindContainer {
		t.Errorf("卷 kind = %q, want container", children[2].Kind)
	}
	if children[0].Path != "书/a.md" {
		t.Errorf("path = %q, want %q", children[0].Path, "书/a.md")
	}

	text, err := s.ReadText(ctx, "书/a.md")
	if err != nil {
		t.Fatalf("ReadText() error = %v", err)
	}
	if text != "甲" {
		t.Errorf("ReadText() = %q, want %q", text, "甲")
	}
}

func TestStore_HiddenEntriesSkipped(t *testing.T) {
	ctx := context.Background()
	s := newTestStore(t)

	os.Mkdir(filepath.Join(s.Root(), ".obsidian"), 0o755)
	os.WriteFile(filepath.Join(s.Root(), ".DS_Store"), []byte("x"), 0o644)
	os.WriteFile(filepath.Join(s.Root(), "visible.md"), []byte("x"), 0o644)

	children, err := s.ListChildren(ctx, "")
	if err != nil {
		t.Fatalf("ListChildren() error = %v", err)
	}
	if len(children) != 1 || children[0].Name != "visible.md" {
		t.Errorf("children = %+v, want only visible.md", children)
	}
}

func TestStore_Errors(t *testing.T) {
	ctx := context.Background()
	s := newTestStore(t)
	os.WriteFile(filepath.Join(s.Root(), "binary.md"), []byte{0xff, 0xfe, 0x00}, 0o644)
	os.WriteFile(filepath.Join(s.Root(), "a.md"), []byte("x"), 0o644)

	tests := []struct {
		name string
		fn   func() error
		want error
	}{
		{"lookup missing", func() error { _, err := s.Lookup(ctx, "nope"); return err }, domain.ErrNotFound},
		{"list missing", func() error { _, err := s.ListChildren(ctx, "nope"); return err }, domain.ErrNotFound},
		{"read missing", func() error { _, err := s.ReadText(ctx, "nope.md"); return err }, domain.ErrNotFound},
		{"read invalid utf8", func() error { _, err := s.ReadText(ctx, "binary.md"); return err }, domain.ErrReadFailure},
		{"read directory", func() error { _, err := s.ReadText(ctx, ""); return err }, domain.ErrReadFailure},
		{"escape root", func() error { _, err := s.Lookup(ctx, "a/../../etc"); return err }, domain.ErrValidation},
		{"duplicate document", func() error { _, err := s.CreateDocument(ctx, "a.md", ""); return err }, domain.ErrConflict},
		{"missing parent", func() error { _, err := s.CreateDocument(ctx, "x/y.md", ""); return err }, domain.ErrNotFound},
		{"delete missing", func() error { return s.Delete(ctx, "nope") }, domain.ErrNotFound},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if err := tt.fn(); !errors.Is(err, tt.want) {
				t.Errorf("error = %v, want %v", err, tt.want)
			}
		})
	}
}

func TestStore_Delete(t *testing.T) {
	ctx := context.Background()
	s := newTestStore(t)
	s.CreateContainer(ctx, "书")
	s.CreateDocument(ctx, "书/a.md", "x")

	if err := s.Delete(ctx, "书"); err != nil {
		t.Fatalf("Delete() error = %v", err)
	}
	if _, err := s.Lookup(ctx, "书/a.md"); !errors.Is(err, domain.ErrNotFound) {
		t.Errorf("Lookup() after delete error = %v, want ErrNotFound", err)
	}
}

func TestStore_WatchReportsExternalWrites(t *testing.T) {
	s := newTestStore(t)
	if err := s.Watch(); err != nil {
		t.Fatalf("Watch() error = %v", err)
	}

	if err := os.WriteFile(filepath.Join(s.Root(), "外部.md"), []byte("x"), 0o644); err != nil {
		t.Fatalf("WriteFile() error = %v", err)
	}

	deadline := time.After(5 * time.Second)
	for {
		select {
		case ev := <-s.Events():
			if ev.Path == "外部.md" {
				return
			}
		case <-deadline:
			t.Fatal("no event for externally written file")
		}
	}
}

func TestWatcher_Relative(t *testing.T) {
	w := &watcher{root: "/vault"}

	tests := []struct {
		name   string
		want   string
		wantOK bool
	}{
		{"/vault/书/一.md", "书/一.md", true},
		{"/vault", "", false},
		{"/vault/.obsidian/app.json", "", false},
		{"/vault/书/.hidden.md", "", false},
		{"/elsewhere/a.md", "", false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, ok := w.relative(tt.name)
			if got != tt.want || ok != tt.wantOK {
				t.Errorf("relative(%q) = (%q, %v), want (%q, %v)", tt.name, got, ok, tt.want, tt.wantOK)
			}
		})
	}
}

func TestWatcher_NewDirectoryAnnouncesContents(t *testing.T) {
	root := t.TempDir()
	fsw, err := fsnotify.NewWatcher()
	if err != nil {
		t.Fatalf("NewWatcher() error = %v", err)
	}
	defer fsw.Close()
	w := &watcher{
		root:    root,
		fsw:     fsw,
		emitter: events.NewEmitter(16),
		logger:  slog.New(slog.NewTextHandler(io.Discard, nil)),
	}

	// The tree is already populated when the create of its top is handled
	dir := filepath.Join(root, "书")
	for _, p := range []string{filepath.Join(dir, "卷一"), filepath.Join(dir, ".obsidian")} {
		if err := os.MkdirAll(p, 0o755); err != nil {
			t.Fatalf("MkdirAll() error = %v", err)
		}
	}
	for _, p := range []string{filepath.Join(dir, "卷一", "一.md"), filepath.Join(dir, ".draft.md")} {
		if err := os.WriteFile(p, []byte("x"), 0o644); err != nil {
			t.Fatalf("WriteFile() error = %v", err)
		}
	}

	w.handle(fsnotify.Event{Name: dir, Op: fsnotify.Create})

	got := map[string]models.NodeKind{}
	for len(w.emitter.Events()) > 0 {
		ev := <-w.emitter.Events()
		if ev.Op != models.OpCreated {
			t.Errorf("event %+v, want created", ev)
		}
		got[ev.Path] = ev.Kind
	}
	want := map[string]models.NodeKind{
		"书":         models.KindContainer,
		"书/卷一":      models.KindContainer,
		"书/卷一/一.md": models.KindDocument,
	}
	if len(got) != len(want) {
		t.Fatalf("created events = %v, want %v", got, want)
	}
	for p, kind := range want {
		if got[p] != kind {
			t.Errorf("kind of %q = %q, want %q", p, got[p], kind)
		}
	}
}
