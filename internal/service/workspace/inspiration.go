package workspace

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"strings"

	validation "github.com/go-ozzo/ozzo-validation/v4"
	"writersuite/internal/config"
	"writersuite/internal/domain"
	models "writersuite/internal/domain/models/workspace"
	repo "writersuite/internal/domain/repositories/workspace"
	svc "writersuite/internal/domain/services/workspace"
)

type inspirationService struct {
	store  repo.Store
	writer repo.Writer
	tree   svc.TreeAggregator
	layout models.Layout
	logger *slog.Logger
}

// NewInspirationService creates the inspiration notes service
func NewInspirationService(
	store repo.Store,
	writer repo.Writer,
	tree svc.TreeAggregator,
	layout models.Layout,
	logger *slog.Logger,
) svc.InspirationService {
	return &inspirationService{
		store:  store,
		writer: writer,
		tree:   tree,
		layout: layout,
		logger: logger,
	}
}

// List returns the notes in the inspiration folder, oldest first.
// A missing folder is an empty list.
func (s *inspirationService) List(ctx context.Context) ([]models.Inspiration, error) {
	children, err := s.store.ListChildren(ctx, s.layout.InspirationPath)
	if err != nil {
		if isNotFound(err) {
			return []models.Inspiration{}, nil
		}
		return nil, err
	}

	notes := []models.Inspiration{}
	for _, child := range s.tree.SortSiblings(children) {
		if !child.IsDocument() {
			continue
		}
		note := models.Inspiration{Node: child, Title: child.DisplayName()}
		content, err := s.store.ReadText(ctx, child.Path)
		if err != nil {
			if ctx.Err() != nil {
				return nil, ctx.Err()
			}
			s.logger.Warn("inspiration unreadable", "path", child.Path, "error", err)
		} else {
			note.Snippet = Snippet(content, config.InspirationSnippetLines)
		}
		notes = append(notes, note)
	}
	return notes, nil
}

// Create writes a new note, creating the inspiration folder on first use
func (s *inspirationService) Create(ctx context.Context, req *svc.CreateInspirationRequest) (*models.Inspiration, error) {
	req.Title = strings.TrimSpace(req.Title)
	if err := validation.ValidateStruct(req,
		validation.Field(&req.Title, nodeNameRules()...),
		validation.Field(&req.Content, validation.Length(0, config.MaxInspirationLength)),
	); err != nil {
		return nil, fmt.Errorf("%w: %v", domain.ErrValidation, err)
	}

	if err := s.ensureFolder(ctx, s.layout.InspirationPath); err != nil {
		return nil, err
	}

	name := req.Title
	if !strings.HasSuffix(name, models.MarkdownExt) {
		name += models.MarkdownExt
	}
	node, err := s.writer.CreateDocument(ctx, models.JoinPath(s.layout.InspirationPath, name), req.Content)
	if err != nil {
		return nil, err
	}

	s.logger.Info("inspiration created", "path", node.Path)
	return &models.Inspiration{
		Node:    *node,
		Title:   node.DisplayName(),
		Snippet: Snippet(req.Content, config.InspirationSnippetLines),
	}, nil
}

// ensureFolder creates every missing container along path
func (s *inspirationService) ensureFolder(ctx context.Context, path string) error {
	current := ""
	for _, seg := range strings.Split(models.CleanPath(path), "/") {
		current = models.JoinPath(current, seg)
		node, err := s.store.Lookup(ctx, current)
		if err == nil {
			if !node.IsContainer() {
				return fmt.Errorf("%w: %q is not a folder", domain.ErrValidation, current)
			}
			continue
		}
		if !isNotFound(err) {
			return err
		}
		if _, err := s.writer.CreateContainer(ctx, current); err != nil && !errors.Is(err, domain.ErrConflict) {
			return fmt.Errorf("create %q: %w", current, err)
		}
	}
	return nil
}

// Snippet returns the first n lines of content
func Snippet(content string, n int) string {
	lines := strings.SplitN(content, "\n", n+1)
	if len(lines) > n {
		lines = lines[:n]
	}
	return strings.Join(lines, "\n")
}
