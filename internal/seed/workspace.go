// Package seed fills a host store with a sample workspace for local development.
package seed

import (
	"context"
	"errors"
	"fmt"
	"log/slog"

	"writersuite/internal/domain"
	models "writersuite/internal/domain/models/workspace"
	repo "writersuite/internal/domain/repositories/workspace"
	svc "writersuite/internal/domain/services/workspace"
)

// WorkspaceSeeder creates sample books, setting documents and inspirations
type WorkspaceSeeder struct {
	books        svc.BookService
	inspirations svc.InspirationService
	writer       repo.Writer
	layout       models.Layout
	logger       *slog.Logger
}

// NewWorkspaceSeeder creates a new workspace seeder
func NewWorkspaceSeeder(
	books svc.BookService,
	inspirations svc.InspirationService,
	writer repo.Writer,
	layout models.Layout,
	logger *slog.Logger,
) *WorkspaceSeeder {
	return &WorkspaceSeeder{
		books:        books,
		inspirations: inspirations,
		writer:       writer,
		layout:       layout,
		logger:       logger,
	}
}

// Result counts what Seed created
type Result struct {
	Books        int
	Chapters     int
	Settings     int
	Inspirations int
}

// Seed creates the sample workspace. Books that already exist are skipped
// so the seeder can run against a populated store.
func (s *WorkspaceSeeder) Seed(ctx context.Context) (*Result, error) {
	res := &Result{}

	if err := s.seedNovel(ctx, res); err != nil {
		return res, fmt.Errorf("seed novel: %w", err)
	}
	if err := s.seedShortStory(ctx, res); err != nil {
		return res, fmt.Errorf("seed short story: %w", err)
	}

	for _, note := range sampleInspirations {
		if _, err := s.inspirations.Create(ctx, &svc.CreateInspirationRequest{Title: note.title, Content: note.content}); err != nil {
			if errors.Is(err, domain.ErrConflict) {
				continue
			}
			return res, fmt.Errorf("seed inspiration %q: %w", note.title, err)
		}
		res.Inspirations++
	}

	s.logger.Info("workspace seeded",
		"books", res.Books,
		"chapters", res.Chapters,
		"settings", res.Settings,
		"inspirations", res.Inspirations,
	)
	return res, nil
}

func (s *WorkspaceSeeder) seedNovel(ctx context.Context, res *Result) error {
	book, err := s.books.CreateBook(ctx, &svc.CreateBookRequest{
		Name:        novelName,
		Kind:        models.WorkMultiFile.Token(),
		Description: "一条河流两岸三代人的故事。",
	})
	if errors.Is(err, domain.ErrConflict) {
		s.logger.Info("sample book exists, skipping", "book", novelName)
		return nil
	}
	if err != nil {
		return err
	}
	res.Books++

	// The placeholder chapter is replaced by the sample volumes
	if err := s.writer.Delete(ctx, book.OpenPath); err != nil {
		return fmt.Errorf("remove default chapter: %w", err)
	}

	for _, vol := range novelVolumes {
		if _, err := s.books.CreateVolume(ctx, &svc.CreateVolumeRequest{BookPath: book.Path, Name: vol.name}); err != nil {
			return err
		}
		for _, ch := range vol.chapters {
			if _, err := s.books.CreateChapter(ctx, &svc.CreateChapterRequest{
				BookPath: book.Path,
				Volume:   vol.name,
				Name:     ch.name,
				Content:  ch.content,
			}); err != nil {
				return err
			}
			res.Chapters++
		}
	}

	settings := models.JoinPath(book.Path, s.layout.SettingsFolder)
	if _, err := s.writer.CreateContainer(ctx, settings); err != nil && !errors.Is(err, domain.ErrConflict) {
		return fmt.Errorf("create settings folder: %w", err)
	}
	for tab, docs := range novelSettings {
		folder := models.JoinPath(settings, tab)
		if _, err := s.writer.CreateContainer(ctx, folder); err != nil && !errors.Is(err, domain.ErrConflict) {
			return fmt.Errorf("create setting tab %q: %w", tab, err)
		}
		for _, doc := range docs {
			if _, err := s.writer.CreateDocument(ctx, models.JoinPath(folder, doc.name+models.MarkdownExt), doc.content); err != nil {
				return fmt.Errorf("create setting %q: %w", doc.name, err)
			}
			res.Settings++
		}
	}
	return nil
}

func (s *WorkspaceSeeder) seedShortStory(ctx context.Context, res *Result) error {
	book, err := s.books.CreateBook(ctx, &svc.CreateBookRequest{
		Name:        storyName,
		Kind:        models.WorkSingleFile.Token(),
		Description: "雪夜里的一次重逢。",
	})
	if errors.Is(err, domain.ErrConflict) {
		s.logger.Info("sample book exists, skipping", "book", storyName)
		return nil
	}
	if err != nil {
		return err
	}
	res.Books++

	// Writers have no in-place update, so the empty main text is recreated
	if err := s.writer.Delete(ctx, book.OpenPath); err != nil {
		return fmt.Errorf("remove empty main text: %w", err)
	}
	if _, err := s.writer.CreateDocument(ctx, book.OpenPath, storyText); err != nil {
		return fmt.Errorf("write main text: %w", err)
	}
	return nil
}
