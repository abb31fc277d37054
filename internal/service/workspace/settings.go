package workspace

import (
	"context"
	"fmt"
	"log/slog"
	"sync"

	validation "github.com/go-ozzo/ozzo-validation/v4"
	"writersuite/internal/config"
	"writersuite/internal/domain"
	models "writersuite/internal/domain/models/workspace"
	svc "writersuite/internal/domain/services/workspace"
)

type settingsService struct {
	mu        sync.RWMutex
	settings  models.Settings
	listeners []func(old, updated models.Settings)
	logger    *slog.Logger
}

// NewSettingsService creates a settings service holding initial
func NewSettingsService(initial models.Settings, logger *slog.Logger) svc.SettingsService {
	if initial.BooksPerRow <= 0 {
		initial.BooksPerRow = config.DefaultBooksPerRow
	}
	return &settingsService{settings: initial, logger: logger}
}

// Current returns a copy of the settings
func (s *settingsService) Current() models.Settings {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.settings
}

// OnChange registers a callback run after each update
func (s *settingsService) OnChange(fn func(old, updated models.Settings)) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.listeners = append(s.listeners, fn)
}

// Update applies a partial update
func (s *settingsService) Update(ctx context.Context, req *svc.UpdateSettingsRequest) (models.Settings, error) {
	if err := validateSettingsRequest(req); err != nil {
		return models.Settings{}, fmt.Errorf("%w: %v", domain.ErrValidation, err)
	}

	s.mu.Lock()
	old := s.settings
	updated := old
	if req.CountPunctuation != nil {
		updated.CountPunctuation = *req.CountPunctuation
	}
	if req.Name != nil {
		updated.Name = *req.Name
	}
	if req.AvatarPath != nil {
		updated.AvatarPath = models.CleanPath(*req.AvatarPath)
	}
	if req.BooksPerRow != nil {
		updated.BooksPerRow = *req.BooksPerRow
	}
	s.settings = updated
	listeners := append([]func(old, updated models.Settings){}, s.listeners...)
	s.mu.Unlock()

	// Callbacks run outside the lock so they may read Current
	for _, fn := range listeners {
		fn(old, updated)
	}

	s.logger.Info("settings updated",
		"count_punctuation", updated.CountPunctuation,
		"books_per_row", updated.BooksPerRow,
	)
	return updated, nil
}

func validateSettingsRequest(req *svc.UpdateSettingsRequest) error {
	return validation.ValidateStruct(req,
		validation.Field(&req.Name, validation.Length(0, config.MaxWriterNameLength)),
		validation.Field(&req.BooksPerRow, validation.By(booksPerRowRule)),
	)
}

// booksPerRowRule rejects zero explicitly; ozzo's Min treats it as empty
func booksPerRowRule(value interface{}) error {
	n, ok := value.(*int)
	if !ok || n == nil {
		return nil
	}
	if *n < 1 || *n > config.MaxBooksPerRow {
		return fmt.Errorf("must be between 1 and %d", config.MaxBooksPerRow)
	}
	return nil
}
