package workspace

import (
	"context"
	"fmt"
	"log/slog"

	"writersuite/internal/domain"
	models "writersuite/internal/domain/models/workspace"
	repo "writersuite/internal/domain/repositories/workspace"
	svc "writersuite/internal/domain/services/workspace"
	"writersuite/internal/service/render"
)

type settingTabService struct {
	store    repo.Store
	tree     svc.TreeAggregator
	renderer *render.MarkdownRenderer
	layout   models.Layout
	logger   *slog.Logger
}

// NewSettingTabService creates the setting tab service
func NewSettingTabService(
	store repo.Store,
	tree svc.TreeAggregator,
	renderer *render.MarkdownRenderer,
	layout models.Layout,
	logger *slog.Logger,
) svc.SettingTabService {
	return &settingTabService{
		store:    store,
		tree:     tree,
		renderer: renderer,
		layout:   layout,
		logger:   logger,
	}
}

// Tabs returns the tab names in display order
func (s *settingTabService) Tabs() []string {
	return append([]string(nil), s.layout.SettingTabs...)
}

// RenderTab renders every document in <book>/<settings folder>/<tab>.
// A tab folder that does not exist yet renders empty.
func (s *settingTabService) RenderTab(ctx context.Context, bookPath, tab string) (*models.SettingTab, error) {
	if !s.layout.HasTab(tab) {
		return nil, fmt.Errorf("%w: unknown setting tab %q", domain.ErrValidation, tab)
	}
	bookPath = models.CleanPath(bookPath)
	book, err := s.store.Lookup(ctx, bookPath)
	if err != nil {
		return nil, err
	}
	if !book.IsContainer() {
		return nil, fmt.Errorf("%w: book %q is not a folder", domain.ErrValidation, bookPath)
	}

	result := &models.SettingTab{BookPath: bookPath, Tab: tab, Documents: []models.RenderedDocument{}}

	dir := models.JoinPath(bookPath, s.layout.SettingsFolder, tab)
	children, err := s.store.ListChildren(ctx, dir)
	if err != nil {
		if isNotFound(err) {
			return result, nil
		}
		return nil, err
	}

	for _, child := range s.tree.SortSiblings(children) {
		if !child.IsDocument() {
			continue
		}
		content, err := s.store.ReadText(ctx, child.Path)
		if err != nil {
			if ctx.Err() != nil {
				return nil, ctx.Err()
			}
			s.logger.Warn("setting document unreadable", "path", child.Path, "error", err)
			continue
		}
		html, err := s.renderer.Render(content)
		if err != nil {
			s.logger.Warn("setting document failed to render", "path", child.Path, "error", err)
			continue
		}
		result.Documents = append(result.Documents, models.RenderedDocument{
			Node:  child,
			Title: s.renderer.Title(content, child.DisplayName()),
			HTML:  html,
		})
	}
	return result, nil
}
