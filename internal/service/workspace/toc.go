package workspace

import (
	"context"
	"fmt"
	"log/slog"

	"writersuite/internal/config"
	"writersuite/internal/domain"
	models "writersuite/internal/domain/models/workspace"
	repo "writersuite/internal/domain/repositories/workspace"
	svc "writersuite/internal/domain/services/workspace"
)

type tocService struct {
	store      repo.Store
	tree       svc.TreeAggregator
	classifier svc.WorkClassifier
	shelf      svc.ShelfService
	settings   svc.SettingsProvider
	layout     models.Layout
	maxDepth   int
	logger     *slog.Logger
}

// NewTOCService creates the table of contents service
func NewTOCService(
	store repo.Store,
	tree svc.TreeAggregator,
	classifier svc.WorkClassifier,
	shelf svc.ShelfService,
	settings svc.SettingsProvider,
	layout models.Layout,
	maxDepth int,
	logger *slog.Logger,
) svc.TOCService {
	if maxDepth <= 0 {
		maxDepth = config.DefaultMaxTreeDepth
	}
	return &tocService{
		store:      store,
		tree:       tree,
		classifier: classifier,
		shelf:      shelf,
		settings:   settings,
		layout:     layout,
		maxDepth:   maxDepth,
		logger:     logger,
	}
}

// lookupBook resolves bookPath to a container
func (s *tocService) lookupBook(ctx context.Context, bookPath string) (models.Node, error) {
	node, err := s.store.Lookup(ctx, bookPath)
	if err != nil {
		return models.Node{}, err
	}
	if !node.IsContainer() {
		return models.Node{}, fmt.Errorf("book %q is not a folder: %w", bookPath, domain.ErrValidation)
	}
	return *node, nil
}

// BuildTOC routes on the work kind: chapter tree for multi-file works,
// heading outline for single-file works, writer profile otherwise
func (s *tocService) BuildTOC(ctx context.Context, bookPath string) (*models.TOC, error) {
	bookPath = models.CleanPath(bookPath)
	if bookPath == "" {
		return s.profileTOC(ctx, "")
	}

	book, err := s.lookupBook(ctx, bookPath)
	if err != nil {
		return nil, err
	}

	switch kind := s.classifier.Classify(ctx, book); kind {
	case models.WorkMultiFile:
		return s.multiFileTOC(ctx, book)
	case models.WorkSingleFile:
		return s.singleFileTOC(ctx, book)
	default:
		return s.profileTOC(ctx, book.Path)
	}
}

func (s *tocService) multiFileTOC(ctx context.Context, book models.Node) (*models.TOC, error) {
	toc := &models.TOC{BookPath: book.Path, Kind: models.WorkMultiFile, Entries: []models.TOCEntry{}}

	manuscript, err := s.store.Lookup(ctx, models.JoinPath(book.Path, s.layout.ManuscriptFolder))
	if err != nil || !manuscript.IsContainer() {
		s.logger.Warn("multi-file book without manuscript folder", "book", book.Path, "error", err)
		return toc, nil
	}

	entries, total, err := s.entries(ctx, *manuscript, 0)
	if err != nil {
		return nil, err
	}
	toc.Entries = entries
	toc.WordCount = total
	return toc, nil
}

// entries builds the sorted volume/chapter tree of dir with word counts
func (s *tocService) entries(ctx context.Context, dir models.Node, depth int) ([]models.TOCEntry, int, error) {
	if err := ctx.Err(); err != nil {
		return nil, 0, err
	}
	if depth >= s.maxDepth {
		s.logger.Warn("volume nested too deep, skipping", "path", dir.Path)
		return []models.TOCEntry{}, 0, nil
	}

	children, err := s.store.ListChildren(ctx, dir.Path)
	if err != nil {
		if ctx.Err() != nil {
			return nil, 0, ctx.Err()
		}
		s.logger.Warn("volume unreadable, skipping", "path", dir.Path, "error", err)
		return []models.TOCEntry{}, 0, nil
	}

	entries := make([]models.TOCEntry, 0, len(children))
	total := 0
	for _, child := range s.tree.SortSiblings(children) {
		entry := models.TOCEntry{Node: child}
		if s.tree.Classify(child) == models.KindContainer {
			sub, count, err := s.entries(ctx, child, depth+1)
			if err != nil {
				return nil, 0, err
			}
			entry.Children = sub
			entry.WordCount = count
		} else {
			entry.WordCount = s.tree.CountDocument(ctx, child)
		}
		total += entry.WordCount
		entries = append(entries, entry)
	}
	return entries, total, nil
}

func (s *tocService) singleFileTOC(ctx context.Context, book models.Node) (*models.TOC, error) {
	toc := &models.TOC{BookPath: book.Path, Kind: models.WorkSingleFile, Outline: []models.OutlineNode{}}

	content, err := s.store.ReadText(ctx, models.JoinPath(book.Path, s.layout.MainTextName))
	if err != nil {
		if ctx.Err() != nil {
			return nil, ctx.Err()
		}
		s.logger.Warn("main text unreadable", "book", book.Path, "error", err)
		return toc, nil
	}

	toc.Outline = BuildOutlineFromHeadings(HeadingLines(content))
	toc.WordCount = Count(content, s.settings.Current().CountPunctuation)
	return toc, nil
}

func (s *tocService) profileTOC(ctx context.Context, bookPath string) (*models.TOC, error) {
	stats, err := s.shelf.Stats(ctx)
	if err != nil {
		return nil, err
	}
	settings := s.settings.Current()
	return &models.TOC{
		BookPath: bookPath,
		Kind:     models.WorkUnknown,
		Profile: &models.Profile{
			Name:       settings.Name,
			AvatarPath: settings.AvatarPath,
			Stats:      stats,
		},
	}, nil
}

// Outline returns the outline of the book's main text. A missing main text is not found.
func (s *tocService) Outline(ctx context.Context, bookPath string) ([]models.OutlineNode, error) {
	book, err := s.lookupBook(ctx, models.CleanPath(bookPath))
	if err != nil {
		return nil, err
	}
	content, err := s.store.ReadText(ctx, models.JoinPath(book.Path, s.layout.MainTextName))
	if err != nil {
		if ctx.Err() != nil {
			return nil, ctx.Err()
		}
		if isNotFound(err) {
			return nil, err
		}
		s.logger.Warn("main text unreadable", "book", book.Path, "error", err)
		return []models.OutlineNode{}, nil
	}
	return BuildOutlineFromHeadings(HeadingLines(content)), nil
}

// Latest returns the newest chapter of a multi-file book or the main text of a single-file book
func (s *tocService) Latest(ctx context.Context, bookPath string) (*models.Node, error) {
	book, err := s.lookupBook(ctx, models.CleanPath(bookPath))
	if err != nil {
		return nil, err
	}

	if s.classifier.Classify(ctx, book) == models.WorkSingleFile {
		node, err := s.store.Lookup(ctx, models.JoinPath(book.Path, s.layout.MainTextName))
		if err != nil {
			if isNotFound(err) {
				return nil, nil
			}
			return nil, err
		}
		return node, nil
	}

	manuscript, err := s.store.Lookup(ctx, models.JoinPath(book.Path, s.layout.ManuscriptFolder))
	if err != nil {
		if isNotFound(err) {
			return nil, nil
		}
		return nil, err
	}
	return s.tree.FindLatest(ctx, *manuscript)
}

// Classification returns the book's metadata, with kind unknown when it cannot be read
func (s *tocService) Classification(ctx context.Context, bookPath string) (*models.WorkMetadata, error) {
	book, err := s.lookupBook(ctx, models.CleanPath(bookPath))
	if err != nil {
		return nil, err
	}
	md, err := s.classifier.ReadMetadata(ctx, book)
	if err != nil {
		if ctx.Err() != nil {
			return nil, ctx.Err()
		}
		s.logger.Debug("classification fell back to unknown", "book", book.Path, "error", err)
		return &models.WorkMetadata{Kind: models.WorkUnknown, Fields: map[string]any{}}, nil
	}
	return md, nil
}
