package handler

import (
	"log/slog"
	"net/http"

	svc "writersuite/internal/domain/services/workspace"
	"writersuite/internal/httputil"
)

// InspirationHandler serves the workspace inspiration notes
type InspirationHandler struct {
	inspirations svc.InspirationService
	logger       *slog.Logger
}

// NewInspirationHandler creates a new inspiration handler
func NewInspirationHandler(inspirations svc.InspirationService, logger *slog.Logger) *InspirationHandler {
	return &InspirationHandler{inspirations: inspirations, logger: logger}
}

// ListInspirations returns every note with its snippet
// GET /api/inspirations
func (h *InspirationHandler) ListInspirations(w http.ResponseWriter, r *http.Request) {
	notes, err := h.inspirations.List(r.Context())
	if err != nil {
		handleError(w, h.logger, err)
		return
	}
	httputil.RespondJSON(w, http.StatusOK, notes)
}

// CreateInspiration writes a new note
// POST /api/inspirations
func (h *InspirationHandler) CreateInspiration(w http.ResponseWriter, r *http.Request) {
	var req svc.CreateInspirationRequest
	if err := httputil.ParseJSON(w, r, &req); err != nil {
		handleError(w, h.logger, err)
		return
	}

	note, err := h.inspirations.Create(r.Context(), &req)
	if err != nil {
		handleError(w, h.logger, err)
		return
	}
	httputil.RespondJSON(w, http.StatusCreated, note)
}
