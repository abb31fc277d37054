package handler

import (
	"log/slog"
	"net/http"

	svc "writersuite/internal/domain/services/workspace"
	"writersuite/internal/httputil"
)

// BookHandler serves per-book structure and the book commands
type BookHandler struct {
	books  svc.BookService
	toc    svc.TOCService
	tabs   svc.SettingTabService
	logger *slog.Logger
}

// NewBookHandler creates a new book handler
func NewBookHandler(books svc.BookService, toc svc.TOCService, tabs svc.SettingTabService, logger *slog.Logger) *BookHandler {
	return &BookHandler{
		books:  books,
		toc:    toc,
		tabs:   tabs,
		logger: logger,
	}
}

// CreateBook creates a novel or short story
// POST /api/books
func (h *BookHandler) CreateBook(w http.ResponseWriter, r *http.Request) {
	var req svc.CreateBookRequest
	if err := httputil.ParseJSON(w, r, &req); err != nil {
		handleError(w, h.logger, err)
		return
	}

	card, err := h.books.CreateBook(r.Context(), &req)
	if err != nil {
		handleError(w, h.logger, err)
		return
	}
	httputil.RespondJSON(w, http.StatusCreated, card)
}

// GetClassification returns the parsed metadata of a book
// GET /api/books/{book}/classification
func (h *BookHandler) GetClassification(w http.ResponseWriter, r *http.Request) {
	md, err := h.toc.Classification(r.Context(), httputil.PathParam(r, "book"))
	if err != nil {
		handleError(w, h.logger, err)
		return
	}
	httputil.RespondJSON(w, http.StatusOK, md)
}

// GetTOC returns the table of contents of a book
// GET /api/books/{book}/toc
func (h *BookHandler) GetTOC(w http.ResponseWriter, r *http.Request) {
	toc, err := h.toc.BuildTOC(r.Context(), httputil.PathParam(r, "book"))
	if err != nil {
		handleError(w, h.logger, err)
		return
	}
	httputil.RespondJSON(w, http.StatusOK, toc)
}

// GetOutline returns the heading outline of a single-file book
// GET /api/books/{book}/outline
func (h *BookHandler) GetOutline(w http.ResponseWriter, r *http.Request) {
	outline, err := h.toc.Outline(r.Context(), httputil.PathParam(r, "book"))
	if err != nil {
		handleError(w, h.logger, err)
		return
	}
	httputil.RespondJSON(w, http.StatusOK, outline)
}

// GetLatest returns the newest chapter of a book, or 204 when it has none
// GET /api/books/{book}/latest
func (h *BookHandler) GetLatest(w http.ResponseWriter, r *http.Request) {
	latest, err := h.toc.Latest(r.Context(), httputil.PathParam(r, "book"))
	if err != nil {
		handleError(w, h.logger, err)
		return
	}
	if latest == nil {
		w.WriteHeader(http.StatusNoContent)
		return
	}
	httputil.RespondJSON(w, http.StatusOK, latest)
}

// CreateVolume creates a volume in the book's manuscript folder
// POST /api/books/{book}/volumes
func (h *BookHandler) CreateVolume(w http.ResponseWriter, r *http.Request) {
	var req svc.CreateVolumeRequest
	if err := httputil.ParseJSON(w, r, &req); err != nil {
		handleError(w, h.logger, err)
		return
	}
	req.BookPath = httputil.PathParam(r, "book")

	volume, err := h.books.CreateVolume(r.Context(), &req)
	if err != nil {
		handleError(w, h.logger, err)
		return
	}
	httputil.RespondJSON(w, http.StatusCreated, volume)
}

// CreateChapter creates a chapter, optionally inside a volume
// POST /api/books/{book}/chapters
func (h *BookHandler) CreateChapter(w http.ResponseWriter, r *http.Request) {
	var req svc.CreateChapterRequest
	if err := httputil.ParseJSON(w, r, &req); err != nil {
		handleError(w, h.logger, err)
		return
	}
	req.BookPath = httputil.PathParam(r, "book")

	chapter, err := h.books.CreateChapter(r.Context(), &req)
	if err != nil {
		handleError(w, h.logger, err)
		return
	}
	httputil.RespondJSON(w, http.StatusCreated, chapter)
}

// GetSettingTab renders one setting tab of a book
// GET /api/books/{book}/settings/{tab}
func (h *BookHandler) GetSettingTab(w http.ResponseWriter, r *http.Request) {
	tab, err := h.tabs.RenderTab(r.Context(), httputil.PathParam(r, "book"), httputil.PathParam(r, "tab"))
	if err != nil {
		handleError(w, h.logger, err)
		return
	}
	httputil.RespondJSON(w, http.StatusOK, tab)
}

// DeleteNode removes a book, volume, chapter or note
// DELETE /api/nodes?path=...
func (h *BookHandler) DeleteNode(w http.ResponseWriter, r *http.Request) {
	if err := h.books.DeleteNode(r.Context(), r.URL.Query().Get("path")); err != nil {
		handleError(w, h.logger, err)
		return
	}
	writer, _ := httputil.WriterFrom(r)
	h.logger.Debug("node deleted via api", "path", r.URL.Query().Get("path"), "writer_id", writer.ID)
	w.WriteHeader(http.StatusNoContent)
}
