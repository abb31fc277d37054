package handler

import (
	"log/slog"
	"net/http"

	svc "writersuite/internal/domain/services/workspace"
	"writersuite/internal/httputil"
)

// SettingsHandler serves the writer settings
type SettingsHandler struct {
	settings svc.SettingsService
	logger   *slog.Logger
}

// NewSettingsHandler creates a new settings handler
func NewSettingsHandler(settings svc.SettingsService, logger *slog.Logger) *SettingsHandler {
	return &SettingsHandler{settings: settings, logger: logger}
}

// updateSettingsBody is the PATCH payload; a null avatar_path clears the avatar
type updateSettingsBody struct {
	CountPunctuation *bool                   `json:"count_punctuation"`
	Name             *string                 `json:"name"`
	AvatarPath       httputil.OptionalString `json:"avatar_path"`
	BooksPerRow      *int                    `json:"books_per_row"`
}

// GetSettings returns the current settings
// GET /api/settings
func (h *SettingsHandler) GetSettings(w http.ResponseWriter, r *http.Request) {
	httputil.RespondJSON(w, http.StatusOK, h.settings.Current())
}

// UpdateSettings applies a partial update
// PATCH /api/settings
func (h *SettingsHandler) UpdateSettings(w http.ResponseWriter, r *http.Request) {
	var body updateSettingsBody
	if err := httputil.ParseJSON(w, r, &body); err != nil {
		handleError(w, h.logger, err)
		return
	}

	updated, err := h.settings.Update(r.Context(), &svc.UpdateSettingsRequest{
		CountPunctuation: body.CountPunctuation,
		Name:             body.Name,
		AvatarPath:       body.AvatarPath.Patch(),
		BooksPerRow:      body.BooksPerRow,
	})
	if err != nil {
		handleError(w, h.logger, err)
		return
	}
	httputil.RespondJSON(w, http.StatusOK, updated)
}
