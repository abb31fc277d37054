package refresh

import (
	"context"
	"errors"
	"fmt"
	"log/slog"

	"writersuite/internal/domain"
	models "writersuite/internal/domain/models/workspace"
	svc "writersuite/internal/domain/services/workspace"
)

type serviceRenderer struct {
	toc          svc.TOCService
	shelf        svc.ShelfService
	inspirations svc.InspirationService
	tabs         svc.SettingTabService
	logger       *slog.Logger
}

// NewRenderer builds view snapshots from the workspace services
func NewRenderer(
	toc svc.TOCService,
	shelf svc.ShelfService,
	inspirations svc.InspirationService,
	tabs svc.SettingTabService,
	logger *slog.Logger,
) Renderer {
	return &serviceRenderer{
		toc:          toc,
		shelf:        shelf,
		inspirations: inspirations,
		tabs:         tabs,
		logger:       logger,
	}
}

// Render computes the snapshot of view. A view whose active book has been
// removed renders as if no book were selected.
func (r *serviceRenderer) Render(ctx context.Context, view models.ViewState) (*models.ViewSnapshot, error) {
	snap := &models.ViewSnapshot{View: view}

	switch view.Kind {
	case models.ViewTOC:
		toc, err := r.toc.BuildTOC(ctx, view.ActiveBookPath)
		if r.bookGone(view, err) {
			toc, err = r.toc.BuildTOC(ctx, "")
		}
		if err != nil {
			return nil, err
		}
		snap.TOC = toc

	case models.ViewBookshelf:
		shelf, err := r.shelf.Shelf(ctx)
		if err != nil {
			return nil, err
		}
		snap.Shelf = shelf

	case models.ViewSettings:
		panel, err := r.settingsPanel(ctx, view.ActiveBookPath)
		if r.bookGone(view, err) {
			panel, err = r.settingsPanel(ctx, "")
		}
		if err != nil {
			return nil, err
		}
		snap.Settings = panel

	default:
		return nil, fmt.Errorf("%w: unknown view kind %q", domain.ErrValidation, view.Kind)
	}
	return snap, nil
}

// settingsPanel shows the first setting tab of a book, or the inspiration
// notes when no book is selected
func (r *serviceRenderer) settingsPanel(ctx context.Context, bookPath string) (*models.SettingsPanel, error) {
	if bookPath == "" {
		notes, err := r.inspirations.List(ctx)
		if err != nil {
			return nil, err
		}
		return &models.SettingsPanel{Inspirations: notes}, nil
	}

	tabs := r.tabs.Tabs()
	panel := &models.SettingsPanel{BookPath: bookPath, Tabs: tabs}
	if len(tabs) == 0 {
		return panel, nil
	}
	tab, err := r.tabs.RenderTab(ctx, bookPath, tabs[0])
	if err != nil {
		return nil, err
	}
	panel.Tab = tab
	return panel, nil
}

func (r *serviceRenderer) bookGone(view models.ViewState, err error) bool {
	if view.ActiveBookPath == "" || !errors.Is(err, domain.ErrNotFound) {
		return false
	}
	r.logger.Debug("active book missing, rendering without it", "view_id", view.ID, "book", view.ActiveBookPath)
	return true
}
