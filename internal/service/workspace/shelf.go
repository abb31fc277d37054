package workspace

import (
	"context"
	"errors"
	"log/slog"

	"writersuite/internal/domain"
	models "writersuite/internal/domain/models/workspace"
	repo "writersuite/internal/domain/repositories/workspace"
	svc "writersuite/internal/domain/services/workspace"
)

type shelfService struct {
	store      repo.Store
	tree       svc.TreeAggregator
	classifier svc.WorkClassifier
	settings   svc.SettingsProvider
	layout     models.Layout
	logger     *slog.Logger
}

// NewShelfService creates the bookshelf service
func NewShelfService(
	store repo.Store,
	tree svc.TreeAggregator,
	classifier svc.WorkClassifier,
	settings svc.SettingsProvider,
	layout models.Layout,
	logger *slog.Logger,
) svc.ShelfService {
	return &shelfService{
		store:      store,
		tree:       tree,
		classifier: classifier,
		settings:   settings,
		layout:     layout,
		logger:     logger,
	}
}

// ListBooks returns a card per top-level book folder, in display order.
// Folders without a metadata document are not books. Books whose metadata
// cannot be parsed, or that have neither a manuscript folder nor a main
// text, are logged and left off the shelf.
func (s *shelfService) ListBooks(ctx context.Context) ([]models.BookCard, error) {
	children, err := s.store.ListChildren(ctx, "")
	if err != nil {
		return nil, err
	}

	books := []models.BookCard{}
	for _, child := range s.tree.SortSiblings(children) {
		if !child.IsContainer() {
			continue
		}
		card, err := s.bookCard(ctx, child)
		if err != nil {
			if ctx.Err() != nil {
				return nil, ctx.Err()
			}
			s.logger.Warn("skipping book", "book", child.Path, "error", err)
			continue
		}
		if card != nil {
			books = append(books, *card)
		}
	}

	s.logger.Debug("listed books", "count", len(books))
	return books, nil
}

// bookCard returns nil, nil for folders that are not books
func (s *shelfService) bookCard(ctx context.Context, folder models.Node) (*models.BookCard, error) {
	md, err := s.classifier.ReadMetadata(ctx, folder)
	if err != nil {
		if errors.Is(err, domain.ErrNotFound) {
			return nil, nil
		}
		return nil, err
	}

	card := &models.BookCard{Name: folder.Name, Path: folder.Path, Kind: md.Kind}

	manuscript, err := s.store.Lookup(ctx, models.JoinPath(folder.Path, s.layout.ManuscriptFolder))
	if err == nil && manuscript.IsContainer() {
		if card.WordCount, err = s.tree.Aggregate(ctx, *manuscript); err != nil {
			return nil, err
		}
		latest, err := s.tree.FindLatest(ctx, *manuscript)
		if err != nil {
			return nil, err
		}
		if latest != nil {
			card.OpenPath = latest.Path
		} else {
			card.OpenPath = models.JoinPath(manuscript.Path, s.layout.DefaultChapter)
		}
		return card, nil
	}

	mainText, err := s.store.Lookup(ctx, models.JoinPath(folder.Path, s.layout.MainTextName))
	if err == nil && mainText.IsDocument() {
		card.WordCount = s.tree.CountDocument(ctx, *mainText)
		card.OpenPath = mainText.Path
		return card, nil
	}

	s.logger.Warn("book has no manuscript folder or main text", "book", folder.Path)
	return nil, nil
}

// Stats counts works by scanning every metadata document in the workspace
func (s *shelfService) Stats(ctx context.Context) (models.ShelfStats, error) {
	var stats models.ShelfStats
	root := models.Node{Kind: models.KindContainer}

	err := s.tree.Walk(ctx, root, func(doc models.Node) error {
		if doc.Name != s.layout.MetadataName {
			return nil
		}
		content, err := s.store.ReadText(ctx, doc.Path)
		if err != nil {
			if ctx.Err() != nil {
				return ctx.Err()
			}
			s.logger.Warn("metadata unreadable", "path", doc.Path, "error", err)
			return nil
		}
		md, err := ParseMetadata(content)
		if err != nil {
			s.logger.Warn("malformed metadata header", "path", doc.Path, "error", err)
			return nil
		}
		switch md.Kind {
		case models.WorkMultiFile:
			stats.MultiFileCount++
		case models.WorkSingleFile:
			stats.SingleFileCount++
		}
		return nil
	})
	if err != nil {
		return models.ShelfStats{}, err
	}
	return stats, nil
}

// Shelf assembles the bookshelf view
func (s *shelfService) Shelf(ctx context.Context) (*models.Shelf, error) {
	books, err := s.ListBooks(ctx)
	if err != nil {
		return nil, err
	}
	stats, err := s.Stats(ctx)
	if err != nil {
		return nil, err
	}
	return &models.Shelf{
		Books:       books,
		Stats:       stats,
		BooksPerRow: s.settings.Current().BooksPerRow,
	}, nil
}
