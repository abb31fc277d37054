package workspace

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"regexp"
	"strings"

	validation "github.com/go-ozzo/ozzo-validation/v4"
	"writersuite/internal/config"
	"writersuite/internal/domain"
	models "writersuite/internal/domain/models/workspace"
	repo "writersuite/internal/domain/repositories/workspace"
	svc "writersuite/internal/domain/services/workspace"
)

// nodeNamePattern rejects path separators and hidden names
var nodeNamePattern = regexp.MustCompile(`^[^/\\.][^/\\]*$`)

type bookService struct {
	store  repo.Store
	writer repo.Writer
	layout models.Layout
	logger *slog.Logger
}

// NewBookService creates the book command service
func NewBookService(store repo.Store, writer repo.Writer, layout models.Layout, logger *slog.Logger) svc.BookService {
	return &bookService{
		store:  store,
		writer: writer,
		layout: layout,
		logger: logger,
	}
}

// CreateBook creates a book folder with its metadata document and either a
// manuscript folder holding a default chapter or an empty main text
func (s *bookService) CreateBook(ctx context.Context, req *svc.CreateBookRequest) (*models.BookCard, error) {
	req.Name = strings.TrimSpace(req.Name)
	if err := s.validateCreateBookRequest(req); err != nil {
		return nil, fmt.Errorf("%w: %v", domain.ErrValidation, err)
	}
	kind := models.ParseWorkKind(req.Kind)

	book, err := s.writer.CreateContainer(ctx, req.Name)
	if err != nil {
		return nil, err
	}

	openPath, err := s.scaffold(ctx, book.Path, kind, req)
	if err != nil {
		// Leave no half-created book behind
		if delErr := s.writer.Delete(ctx, book.Path); delErr != nil {
			s.logger.Warn("failed to clean up partial book", "book", book.Path, "error", delErr)
		}
		return nil, err
	}

	s.logger.Info("book created",
		"book", book.Path,
		"kind", kind,
	)

	return &models.BookCard{
		Name:     book.Name,
		Path:     book.Path,
		Kind:     kind,
		OpenPath: openPath,
	}, nil
}

func (s *bookService) scaffold(ctx context.Context, bookPath string, kind models.WorkKind, req *svc.CreateBookRequest) (string, error) {
	metadata := RenderMetadata(kind, req.Name, req.Description)
	if _, err := s.writer.CreateDocument(ctx, models.JoinPath(bookPath, s.layout.MetadataName), metadata); err != nil {
		return "", fmt.Errorf("create metadata: %w", err)
	}

	if kind == models.WorkSingleFile {
		doc, err := s.writer.CreateDocument(ctx, models.JoinPath(bookPath, s.layout.MainTextName), "")
		if err != nil {
			return "", fmt.Errorf("create main text: %w", err)
		}
		return doc.Path, nil
	}

	manuscript, err := s.writer.CreateContainer(ctx, models.JoinPath(bookPath, s.layout.ManuscriptFolder))
	if err != nil {
		return "", fmt.Errorf("create manuscript folder: %w", err)
	}
	doc, err := s.writer.CreateDocument(ctx, models.JoinPath(manuscript.Path, s.layout.DefaultChapter), "")
	if err != nil {
		return "", fmt.Errorf("create default chapter: %w", err)
	}
	return doc.Path, nil
}

// CreateVolume creates a volume folder in the book's manuscript folder
func (s *bookService) CreateVolume(ctx context.Context, req *svc.CreateVolumeRequest) (*models.Node, error) {
	req.Name = strings.TrimSpace(req.Name)
	if err := validation.ValidateStruct(req,
		validation.Field(&req.BookPath, validation.Required),
		validation.Field(&req.Name, nodeNameRules()...),
	); err != nil {
		return nil, fmt.Errorf("%w: %v", domain.ErrValidation, err)
	}

	manuscript, err := s.manuscript(ctx, req.BookPath)
	if err != nil {
		return nil, err
	}

	volume, err := s.writer.CreateContainer(ctx, models.JoinPath(manuscript, req.Name))
	if err != nil {
		return nil, err
	}

	s.logger.Info("volume created", "book", req.BookPath, "path", volume.Path)
	return volume, nil
}

// CreateChapter creates a chapter document, inside a volume when one is named.
// The .md extension is added when missing.
func (s *bookService) CreateChapter(ctx context.Context, req *svc.CreateChapterRequest) (*models.Node, error) {
	req.Name = strings.TrimSpace(req.Name)
	req.Volume = strings.TrimSpace(req.Volume)
	if err := validation.ValidateStruct(req,
		validation.Field(&req.BookPath, validation.Required),
		validation.Field(&req.Name, nodeNameRules()...),
		validation.Field(&req.Volume,
			validation.Length(0, config.MaxNodeNameLength),
			validation.Match(nodeNamePattern).Error("volume name cannot contain slashes or start with a dot"),
		),
	); err != nil {
		return nil, fmt.Errorf("%w: %v", domain.ErrValidation, err)
	}

	parent, err := s.manuscript(ctx, req.BookPath)
	if err != nil {
		return nil, err
	}
	if req.Volume != "" {
		parent = models.JoinPath(parent, req.Volume)
		volume, err := s.store.Lookup(ctx, parent)
		if err != nil {
			return nil, fmt.Errorf("volume %q: %w", req.Volume, err)
		}
		if !volume.IsContainer() {
			return nil, fmt.Errorf("%w: %q is not a volume", domain.ErrValidation, req.Volume)
		}
	}

	name := req.Name
	if !strings.HasSuffix(name, models.MarkdownExt) {
		name += models.MarkdownExt
	}

	chapter, err := s.writer.CreateDocument(ctx, models.JoinPath(parent, name), req.Content)
	if err != nil {
		return nil, err
	}

	s.logger.Info("chapter created", "book", req.BookPath, "path", chapter.Path)
	return chapter, nil
}

// DeleteNode removes a book, volume, chapter or note
func (s *bookService) DeleteNode(ctx context.Context, path string) error {
	path = models.CleanPath(path)
	if path == "" {
		return fmt.Errorf("%w: path is required", domain.ErrValidation)
	}
	if err := s.writer.Delete(ctx, path); err != nil {
		return err
	}
	s.logger.Info("node deleted", "path", path)
	return nil
}

// manuscript returns the manuscript folder path of a multi-file book
func (s *bookService) manuscript(ctx context.Context, bookPath string) (string, error) {
	bookPath = models.CleanPath(bookPath)
	book, err := s.store.Lookup(ctx, bookPath)
	if err != nil {
		return "", err
	}
	if !book.IsContainer() {
		return "", fmt.Errorf("%w: book %q is not a folder", domain.ErrValidation, bookPath)
	}

	path := models.JoinPath(bookPath, s.layout.ManuscriptFolder)
	node, err := s.store.Lookup(ctx, path)
	if err != nil {
		if isNotFound(err) {
			return "", fmt.Errorf("%w: book %q has no %s folder", domain.ErrValidation, bookPath, s.layout.ManuscriptFolder)
		}
		return "", err
	}
	if !node.IsContainer() {
		return "", fmt.Errorf("%w: %q is not a folder", domain.ErrValidation, path)
	}
	return path, nil
}

func (s *bookService) validateCreateBookRequest(req *svc.CreateBookRequest) error {
	return validation.ValidateStruct(req,
		validation.Field(&req.Name, nodeNameRules()...),
		validation.Field(&req.Kind,
			validation.Required,
			validation.By(func(value interface{}) error {
				token, _ := value.(string)
				if models.ParseWorkKind(token) == models.WorkUnknown {
					return errors.New("must be novel or short-story")
				}
				return nil
			}),
		),
		validation.Field(&req.Description, validation.Length(0, config.MaxDescriptionLength)),
	)
}

func nodeNameRules() []validation.Rule {
	return []validation.Rule{
		validation.Required,
		validation.RuneLength(1, config.MaxNodeNameLength),
		validation.Match(nodeNamePattern).Error("name cannot contain slashes or start with a dot"),
	}
}

func isNotFound(err error) bool {
	return errors.Is(err, domain.ErrNotFound)
}
