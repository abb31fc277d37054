package workspace

import (
	"context"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"testing"
	"time"

	"golang.org/x/text/language"
	"writersuite/internal/config"
	"writersuite/internal/domain"
	models "writersuite/internal/domain/models/workspace"
)

func TestAggregate(t *testing.T) {
	ctx := context.Background()

	t.Run("empty container", func(t *testing.T) {
		s := newTestStore()
		root := mkdir(t, s, "空")
		got, err := newTestAggregator(s, false).Aggregate(ctx, root)
		if err != nil {
			t.Fatalf("Aggregate() error = %v", err)
		}
		if got != 0 {
			t.Errorf("Aggregate() = %d, want 0", got)
		}
	})

	t.Run("nested container", func(t *testing.T) {
		s := newTestStore()
		root := mkdir(t, s, "书")
		write(t, s, "书/一.md", "一二三四五")
		mkdir(t, s, "书/卷")
		write(t, s, "书/卷/二.md", "六七八")

		got, err := newTestAggregator(s, false).Aggregate(ctx, root)
		if err != nil {
			t.Fatalf("Aggregate() error = %v", err)
		}
		if got != 8 {
			t.Errorf("Aggregate() = %d, want 8", got)
		}
	})

	t.Run("punctuation rule applies", func(t *testing.T) {
		s := newTestStore()
		root := mkdir(t, s, "书")
		write(t, s, "书/一.md", "好，好。")

		without, _ := newTestAggregator(s, false).Aggregate(ctx, root)
		with, _ := newTestAggregator(s, true).Aggregate(ctx, root)
		if without != 2 || with != 4 {
			t.Errorf("Aggregate() = %d/%d, want 2/4", without, with)
		}
	})

	t.Run("unreadable document counts zero", func(t *testing.T) {
		s := newTestStore()
		root := mkdir(t, s, "书")
		write(t, s, "书/好.md", "一二三")
		write(t, s, "书/坏.md", "四五六")
		s.SetReadError("书/坏.md", domain.ErrReadFailure)

		got, err := newTestAggregator(s, false).Aggregate(ctx, root)
		if err != nil {
			t.Fatalf("Aggregate() error = %v", err)
		}
		if got != 3 {
			t.Errorf("Aggregate() = %d, want 3", got)
		}
	})

	t.Run("unlistable container counts zero", func(t *testing.T) {
		s := newTestStore()
		root := mkdir(t, s, "书")
		write(t, s, "书/一.md", "一二")
		mkdir(t, s, "书/锁")
		write(t, s, "书/锁/二.md", "三四")
		s.SetReadError("书/锁", errors.New("permission denied"))

		got, err := newTestAggregator(s, false).Aggregate(ctx, root)
		if err != nil {
			t.Fatalf("Aggregate() error = %v", err)
		}
		if got != 2 {
			t.Errorf("Aggregate() = %d, want 2", got)
		}
	})

	t.Run("document root", func(t *testing.T) {
		s := newTestStore()
		doc := write(t, s, "单.md", "一二三")
		got, _ := newTestAggregator(s, false).Aggregate(ctx, doc)
		if got != 3 {
			t.Errorf("Aggregate(document) = %d, want 3", got)
		}
	})

	t.Run("cancelled context", func(t *testing.T) {
		s := newTestStore()
		root := mkdir(t, s, "书")
		write(t, s, "书/一.md", "一")

		cctx, cancel := context.WithCancel(ctx)
		cancel()
		if _, err := newTestAggregator(s, false).Aggregate(cctx, root); !errors.Is(err, context.Canceled) {
			t.Errorf("Aggregate() error = %v, want context.Canceled", err)
		}
	})
}

// loopStore lists the same container as its own child
type loopStore struct{}

func (loopStore) Lookup(ctx context.Context, path string) (*models.Node, error) {
	return &models.Node{Kind: models.KindContainer, Path: path}, nil
}

func (loopStore) ListChildren(ctx context.Context, path string) ([]models.Node, error) {
	return []models.Node{
		{Kind: models.KindContainer, Name: "loop", Path: "loop"},
		{Kind: models.KindDocument, Name: "a.md", Path: "loop/a.md"},
	}, nil
}

func (loopStore) ReadText(ctx context.Context, path string) (string, error) {
	return "一二", nil
}

func TestAggregate_CycleGuard(t *testing.T) {
	agg := NewTreeAggregator(loopStore{}, &staticSettings{}, language.Chinese, config.DefaultMaxTreeDepth, discardLogger())

	got, err := agg.Aggregate(context.Background(), models.Node{Kind: models.KindContainer, Path: "loop"})
	if err != nil {
		t.Fatalf("Aggregate() error = %v", err)
	}
	if got != 2 {
		t.Errorf("Aggregate() = %d, want 2 (document visited once)", got)
	}
}

// deepStore nests one container per level, each holding a single document
type deepStore struct{}

func (deepStore) Lookup(ctx context.Context, path string) (*models.Node, error) {
	return &models.Node{Kind: models.KindContainer, Path: path}, nil
}

func (deepStore) ListChildren(ctx context.Context, path string) ([]models.Node, error) {
	next := fmt.Sprintf("%s/d", path)
	return []models.Node{
		{Kind: models.KindContainer, Name: "d", Path: next},
		{Kind: models.KindDocument, Name: "x.md", Path: path + "/x.md"},
	}, nil
}

func (deepStore) ReadText(ctx context.Context, path string) (string, error) {
	return "字", nil
}

func TestAggregate_MaxDepth(t *testing.T) {
	agg := NewTreeAggregator(deepStore{}, &staticSettings{}, language.Chinese, 3, slog.New(slog.NewTextHandler(io.Discard, nil)))

	got, err := agg.Aggregate(context.Background(), models.Node{Kind: models.KindContainer, Path: "r"})
	if err != nil {
		t.Fatalf("Aggregate() error = %v", err)
	}
	// Levels 0, 1 and 2 are listed
	if got != 3 {
		t.Errorf("Aggregate() = %d, want 3", got)
	}
}

func TestFindLatest(t *testing.T) {
	ctx := context.Background()

	t.Run("empty subtree", func(t *testing.T) {
		s := newTestStore()
		root := mkdir(t, s, "书")
		mkdir(t, s, "书/卷")
		got, err := newTestAggregator(s, false).FindLatest(ctx, root)
		if err != nil {
			t.Fatalf("FindLatest() error = %v", err)
		}
		if got != nil {
			t.Errorf("FindLatest() = %+v, want nil", got)
		}
	})

	t.Run("newest nested document", func(t *testing.T) {
		s := newTestStore()
		root := mkdir(t, s, "书")
		write(t, s, "书/一.md", "")
		mkdir(t, s, "书/卷")
		write(t, s, "书/卷/三.md", "")
		write(t, s, "书/二.md", "")

		got, err := newTestAggregator(s, false).FindLatest(ctx, root)
		if err != nil {
			t.Fatalf("FindLatest() error = %v", err)
		}
		if got == nil || got.Path != "书/二.md" {
			t.Errorf("FindLatest() = %+v, want 书/二.md", got)
		}
	})

	t.Run("first walked wins ties", func(t *testing.T) {
		fixed := time.Date(2024, 5, 1, 0, 0, 0, 0, time.UTC)
		s := newTestStore()
		root := mkdir(t, s, "书")
		write(t, s, "书/甲.md", "")
		write(t, s, "书/乙.md", "")
		agg := newTestAggregator(s, false).(*treeAggregator)
		agg.store = tiedStore{s, fixed}

		got, _ := agg.FindLatest(ctx, root)
		if got == nil || got.Path != "书/甲.md" {
			t.Errorf("FindLatest() = %+v, want 书/甲.md", got)
		}
	})
}

// tiedStore reports the same creation time for every child
type tiedStore struct {
	inner interface {
		ListChildren(ctx context.Context, path string) ([]models.Node, error)
		Lookup(ctx context.Context, path string) (*models.Node, error)
		ReadText(ctx context.Context, path string) (string, error)
	}
	at time.Time
}

func (s tiedStore) Lookup(ctx context.Context, path string) (*models.Node, error) {
	return s.inner.Lookup(ctx, path)
}

func (s tiedStore) ReadText(ctx context.Context, path string) (string, error) {
	return s.inner.ReadText(ctx, path)
}

func (s tiedStore) ListChildren(ctx context.Context, path string) ([]models.Node, error) {
	nodes, err := s.inner.ListChildren(ctx, path)
	for i := range nodes {
		nodes[i].CreatedAt = s.at
	}
	return nodes, err
}

func TestSortSiblings(t *testing.T) {
	agg := newTestAggregator(newTestStore(), false)
	t0 := time.Date(2024, 1, 1, 0, 0, 0, 0, time.UTC)

	t.Run("containers by name", func(t *testing.T) {
		got := agg.SortSiblings([]models.Node{
			{Kind: models.KindContainer, Name: "B"},
			{Kind: models.KindContainer, Name: "A"},
		})
		if got[0].Name != "A" || got[1].Name != "B" {
			t.Errorf("SortSiblings() = [%s %s], want [A B]", got[0].Name, got[1].Name)
		}
	})

	t.Run("containers before documents", func(t *testing.T) {
		input := []models.Node{
			{Kind: models.KindDocument, Name: "d1", CreatedAt: t0},
			{Kind: models.KindContainer, Name: "c2"},
			{Kind: models.KindDocument, Name: "d2", CreatedAt: t0.Add(time.Hour)},
			{Kind: models.KindContainer, Name: "c1"},
		}
		got := agg.SortSiblings(input)

		seenDocument := false
		for _, n := range got {
			if n.IsDocument() {
				seenDocument = true
			} else if seenDocument {
				t.Fatalf("container %q after a document in %+v", n.Name, got)
			}
		}
		if input[0].Name != "d1" {
			t.Error("SortSiblings() modified its input")
		}
	})

	t.Run("documents by creation time", func(t *testing.T) {
		got := agg.SortSiblings([]models.Node{
			{Kind: models.KindDocument, Name: "新", CreatedAt: t0.Add(2 * time.Hour)},
			{Kind: models.KindDocument, Name: "旧", CreatedAt: t0},
			{Kind: models.KindDocument, Name: "中", CreatedAt: t0.Add(time.Hour)},
		})
		want := []string{"旧", "中", "新"}
		for i, w := range want {
			if got[i].Name != w {
				t.Errorf("got[%d] = %q, want %q", i, got[i].Name, w)
			}
		}
	})
}

func TestClassifyNode(t *testing.T) {
	agg := newTestAggregator(newTestStore(), false)
	if got := agg.Classify(models.Node{Kind: models.KindDocument}); got != models.KindDocument {
		t.Errorf("Classify(document) = %q", got)
	}
	if got := agg.Classify(models.Node{Kind: models.KindContainer}); got != models.KindContainer {
		t.Errorf("Classify(container) = %q", got)
	}
}
