package handler

import (
	"log/slog"
	"net/http"

	svc "writersuite/internal/domain/services/workspace"
	"writersuite/internal/httputil"
)

// ShelfHandler serves the bookshelf
type ShelfHandler struct {
	shelf  svc.ShelfService
	logger *slog.Logger
}

// NewShelfHandler creates a new shelf handler
func NewShelfHandler(shelf svc.ShelfService, logger *slog.Logger) *ShelfHandler {
	return &ShelfHandler{shelf: shelf, logger: logger}
}

// GetShelf returns every book card with workspace stats
// GET /api/shelf
func (h *ShelfHandler) GetShelf(w http.ResponseWriter, r *http.Request) {
	shelf, err := h.shelf.Shelf(r.Context())
	if err != nil {
		handleError(w, h.logger, err)
		return
	}
	httputil.RespondJSON(w, http.StatusOK, shelf)
}

// GetStats returns the multi-file and single-file work counts
// GET /api/stats
func (h *ShelfHandler) GetStats(w http.ResponseWriter, r *http.Request) {
	stats, err := h.shelf.Stats(r.Context())
	if err != nil {
		handleError(w, h.logger, err)
		return
	}
	httputil.RespondJSON(w, http.StatusOK, stats)
}
