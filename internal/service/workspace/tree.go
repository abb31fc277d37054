package workspace

import (
	"context"
	"log/slog"
	"sort"
	"sync"

	"golang.org/x/text/collate"
	"golang.org/x/text/language"
	"writersuite/internal/config"
	models "writersuite/internal/domain/models/workspace"
	repo "writersuite/internal/domain/repositories/workspace"
	svc "writersuite/internal/domain/services/workspace"
)

type treeAggregator struct {
	store    repo.Store
	settings svc.SettingsProvider
	maxDepth int
	logger   *slog.Logger

	// collate.Collator keeps scratch buffers and is not safe for concurrent use
	collMu   sync.Mutex
	collator *collate.Collator
}

// NewTreeAggregator creates a tree aggregator. Container names are ordered
// with the collation rules of locale.
func NewTreeAggregator(
	store repo.Store,
	settings svc.SettingsProvider,
	locale language.Tag,
	maxDepth int,
	logger *slog.Logger,
) svc.TreeAggregator {
	if maxDepth <= 0 {
		maxDepth = config.DefaultMaxTreeDepth
	}
	return &treeAggregator{
		store:    store,
		settings: settings,
		maxDepth: maxDepth,
		logger:   logger,
		collator: collate.New(locale),
	}
}

// Classify dispatches on the node tag
func (a *treeAggregator) Classify(node models.Node) models.NodeKind {
	if node.IsContainer() {
		return models.KindContainer
	}
	return models.KindDocument
}

// Aggregate sums word counts below root
func (a *treeAggregator) Aggregate(ctx context.Context, root models.Node) (int, error) {
	countPunctuation := a.settings.Current().CountPunctuation

	total := 0
	err := a.walk(ctx, root, func(doc models.Node) error {
		n, err := a.count(ctx, doc, countPunctuation)
		if err != nil {
			return err
		}
		total += n
		return nil
	})
	if err != nil {
		return 0, err
	}

	a.logger.Debug("aggregated word count", "path", root.Path, "count", total)
	return total, nil
}

// CountDocument counts one document with the current punctuation rule
func (a *treeAggregator) CountDocument(ctx context.Context, doc models.Node) int {
	n, _ := a.count(ctx, doc, a.settings.Current().CountPunctuation)
	return n
}

// count reads and counts doc. Read failures count as zero; only a
// cancelled context is returned.
func (a *treeAggregator) count(ctx context.Context, doc models.Node, countPunctuation bool) (int, error) {
	text, err := a.store.ReadText(ctx, doc.Path)
	if err != nil {
		if ctx.Err() != nil {
			return 0, ctx.Err()
		}
		a.logger.Warn("document unreadable, counting as zero", "path", doc.Path, "error", err)
		return 0, nil
	}
	return Count(text, countPunctuation), nil
}

// FindLatest returns the newest document below root
func (a *treeAggregator) FindLatest(ctx context.Context, root models.Node) (*models.Node, error) {
	var latest *models.Node
	err := a.walk(ctx, root, func(doc models.Node) error {
		// Strictly newer only, so the first document walked wins ties
		if latest == nil || doc.CreatedAt.After(latest.CreatedAt) {
			d := doc
			latest = &d
		}
		return nil
	})
	if err != nil {
		return nil, err
	}
	return latest, nil
}

// SortSiblings returns a sorted copy of children
func (a *treeAggregator) SortSiblings(children []models.Node) []models.Node {
	sorted := make([]models.Node, len(children))
	copy(sorted, children)

	a.collMu.Lock()
	defer a.collMu.Unlock()

	sort.SliceStable(sorted, func(i, j int) bool {
		x, y := sorted[i], sorted[j]
		switch {
		case x.IsContainer() && !y.IsContainer():
			return true
		case !x.IsContainer() && y.IsContainer():
			return false
		case x.IsContainer():
			return a.collator.CompareString(x.Name, y.Name) < 0
		default:
			return x.CreatedAt.Before(y.CreatedAt)
		}
	})
	return sorted
}

// Walk exposes the guarded traversal used by Aggregate and FindLatest
func (a *treeAggregator) Walk(ctx context.Context, root models.Node, visit func(doc models.Node) error) error {
	return a.walk(ctx, root, visit)
}

// walk visits every document below root in pre-order by listing order.
// A document root is visited itself. Containers already seen or nested
// deeper than maxDepth are skipped.
func (a *treeAggregator) walk(ctx context.Context, root models.Node, visit func(models.Node) error) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	if a.Classify(root) == models.KindDocument {
		return visit(root)
	}
	visited := make(map[string]bool)
	return a.walkContainer(ctx, root, 0, visited, visit)
}

func (a *treeAggregator) walkContainer(
	ctx context.Context,
	dir models.Node,
	depth int,
	visited map[string]bool,
	visit func(models.Node) error,
) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	if visited[dir.Path] {
		a.logger.Warn("container revisited, skipping", "path", dir.Path)
		return nil
	}
	visited[dir.Path] = true
	if depth >= a.maxDepth {
		a.logger.Warn("container nested too deep, skipping", "path", dir.Path, "max_depth", a.maxDepth)
		return nil
	}

	children, err := a.store.ListChildren(ctx, dir.Path)
	if err != nil {
		if ctx.Err() != nil {
			return ctx.Err()
		}
		a.logger.Warn("container unreadable, skipping", "path", dir.Path, "error", err)
		return nil
	}

	for _, child := range children {
		switch a.Classify(child) {
		case models.KindContainer:
			if err := a.walkContainer(ctx, child, depth+1, visited, visit); err != nil {
				return err
			}
		default:
			if visited[child.Path] {
				a.logger.Warn("document revisited, skipping", "path", child.Path)
				continue
			}
			visited[child.Path] = true
			if err := visit(child); err != nil {
				return err
			}
		}
	}
	return nil
}
