package workspace

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

type workClassifier struct {
	store  repo.Store
	layout models.Layout
	logger *slog.Logger
}

// NewWorkClassifier creates a classifier reading layout.MetadataName under each book root
func NewWorkClassifier(store repo.Store, layout models.Layout, logger *slog.Logger) svc.WorkClassifier {
	return &workClassifier{
		store:  store,
		layout: layout,
		logger: logger,
	}
}

// ReadMetadata reads and parses the metadata document of bookRoot
func (c *workClassifier) ReadMetadata(ctx context.Context, bookRoot models.Node) (*models.WorkMetadata, error) {
	if !bookRoot.IsContainer() {
		return nil, fmt.Errorf("book root %q is not a container: %w", bookRoot.Path, domain.ErrValidation)
	}

	path := models.JoinPath(bookRoot.Path, c.layout.MetadataName)
	content, err := c.store.ReadText(ctx, path)
	if err != nil {
		return nil, err
	}

	md, err := ParseMetadata(content)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", path, err)
	}
	return md, nil
}

// Classify never fails; every problem with the metadata yields WorkUnknown
func (c *workClassifier) Classify(ctx context.Context, bookRoot models.Node) models.WorkKind {
	md, err := c.ReadMetadata(ctx, bookRoot)
	if err != nil {
		switch {
		case errors.Is(err, domain.ErrNotFound):
			c.logger.Debug("no metadata document", "book", bookRoot.Path)
		case errors.Is(err, domain.ErrParseFailure):
			c.logger.Warn("malformed metadata header", "book", bookRoot.Path, "error", err)
		default:
			c.logger.Warn("metadata unreadable", "book", bookRoot.Path, "error", err)
		}
		return models.WorkUnknown
	}

	if md.Kind == models.WorkUnknown {
		c.logger.Debug("unrecognized work kind", "book", bookRoot.Path, "fields", md.Fields)
	}
	return md.Kind
}
