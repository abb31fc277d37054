package handler

import (
	"log/slog"
	"net/http"

	mstream "github.com/haowjy/meridian-stream-go"
	models "writersuite/internal/domain/models/workspace"
	"writersuite/internal/handler/sse"
	"writersuite/internal/httputil"
	"writersuite/internal/service/refresh"
)

// ViewHandler manages open views and serves their snapshots
type ViewHandler struct {
	hub       *refresh.Hub
	sseConfig *sse.Config
	logger    *slog.Logger
}

// NewViewHandler creates a new view handler
func NewViewHandler(hub *refresh.Hub, sseConfig *sse.Config, logger *slog.Logger) *ViewHandler {
	if sseConfig == nil {
		sseConfig = sse.DefaultConfig()
	}
	return &ViewHandler{hub: hub, sseConfig: sseConfig, logger: logger}
}

type openViewRequest struct {
	Kind models.ViewKind `json:"kind"`
	Book string          `json:"book,omitempty"`
}

type selectBookRequest struct {
	Book string `json:"book"`
}

// OpenView registers a view
// POST /api/views
func (h *ViewHandler) OpenView(w http.ResponseWriter, r *http.Request) {
	var req openViewRequest
	if err := httputil.ParseJSON(w, r, &req); err != nil {
		handleError(w, h.logger, err)
		return
	}

	view, err := h.hub.Open(req.Kind, req.Book)
	if err != nil {
		handleError(w, h.logger, err)
		return
	}
	httputil.RespondJSON(w, http.StatusCreated, view)
}

// GetView returns the view's snapshot, rendering it first if stale
// GET /api/views/{id}
func (h *ViewHandler) GetView(w http.ResponseWriter, r *http.Request) {
	snap, err := h.hub.Get(r.Context(), httputil.PathParam(r, "id"))
	if err != nil {
		handleError(w, h.logger, err)
		return
	}
	httputil.RespondJSON(w, http.StatusOK, snap)
}

// SelectBook changes the active book of a view
// PUT /api/views/{id}/book
func (h *ViewHandler) SelectBook(w http.ResponseWriter, r *http.Request) {
	var req selectBookRequest
	if err := httputil.ParseJSON(w, r, &req); err != nil {
		handleError(w, h.logger, err)
		return
	}

	view, err := h.hub.SelectBook(httputil.PathParam(r, "id"), req.Book)
	if err != nil {
		handleError(w, h.logger, err)
		return
	}
	httputil.RespondJSON(w, http.StatusOK, view)
}

// CloseView drops a view
// DELETE /api/views/{id}
func (h *ViewHandler) CloseView(w http.ResponseWriter, r *http.Request) {
	if err := h.hub.Close(httputil.PathParam(r, "id")); err != nil {
		handleError(w, h.logger, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

// StreamView sends a "stale" event each time the view needs re-reading.
// The stream ends when the client disconnects or the view is closed.
// GET /api/views/{id}/events
func (h *ViewHandler) StreamView(w http.ResponseWriter, r *http.Request) {
	id := httputil.PathParam(r, "id")
	stream, err := h.hub.Stream(id)
	if err != nil {
		handleError(w, h.logger, err)
		return
	}

	sw, err := sse.NewWriter(w)
	if err != nil {
		httputil.RespondError(w, http.StatusInternalServerError, err.Error())
		return
	}

	h.logger.Debug("view stream opened", "view_id", id)
	err = mstream.StreamSSE(r.Context(), sw, stream, mstream.WithKeepalive(h.sseConfig.KeepAliveInterval))
	h.logger.Debug("view stream ended", "view_id", id, "error", err)
}
