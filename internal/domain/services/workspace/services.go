package workspace

import (
	"context"

	models "writersuite/internal/domain/models/workspace"
)

// SettingsProvider exposes the current writer settings to the core
type SettingsProvider interface {
	Current() models.Settings
}

// TreeAggregator walks container subtrees
type TreeAggregator interface {
	// Aggregate sums the word counts of every document beneath root.
	// Unreadable documents and listings count as zero; only context
	// cancellation produces an error.
	Aggregate(ctx context.Context, root models.Node) (int, error)

	// Classify reports whether node is a document or a container
	Classify(node models.Node) models.NodeKind

	// FindLatest returns the most recently created document beneath root,
	// the first one walked on ties, or nil for an empty subtree
	FindLatest(ctx context.Context, root models.Node) (*models.Node, error)

	// SortSiblings orders children for display: containers by name, then documents by creation time
	SortSiblings(children []models.Node) []models.Node

	// CountDocument counts one document, zero if it cannot be read
	CountDocument(ctx context.Context, doc models.Node) int

	// Walk calls visit for every document beneath root in pre-order by
	// listing order, stopping at the first error visit returns
	Walk(ctx context.Context, root models.Node, visit func(doc models.Node) error) error
}

// WorkClassifier decides how a book root is laid out
type WorkClassifier interface {
	// Classify returns multi-file, single-file, or unknown when the metadata
	// document is absent, unreadable or malformed
	Classify(ctx context.Context, bookRoot models.Node) models.WorkKind

	// ReadMetadata parses the metadata document of bookRoot
	ReadMetadata(ctx context.Context, bookRoot models.Node) (*models.WorkMetadata, error)
}

// ShelfService builds the bookshelf
type ShelfService interface {
	// ListBooks returns a card for every top-level container with metadata
	ListBooks(ctx context.Context) ([]models.BookCard, error)

	// Stats counts multi-file and single-file works anywhere in the workspace
	Stats(ctx context.Context) (models.ShelfStats, error)

	// Shelf combines ListBooks, Stats and the layout setting
	Shelf(ctx context.Context) (*models.Shelf, error)
}

// TOCService builds per-book tables of contents
type TOCService interface {
	// BuildTOC returns the table of contents of the book at bookPath.
	// An empty bookPath yields the writer profile.
	BuildTOC(ctx context.Context, bookPath string) (*models.TOC, error)

	// Outline returns the heading outline of a single-file book
	Outline(ctx context.Context, bookPath string) ([]models.OutlineNode, error)

	// Latest returns the most recently created chapter of a book, or nil
	Latest(ctx context.Context, bookPath string) (*models.Node, error)

	// Classification returns the parsed metadata of a book; Kind is unknown on any failure
	Classification(ctx context.Context, bookPath string) (*models.WorkMetadata, error)
}

// BookService runs the commands that change a book's structure
type BookService interface {
	CreateBook(ctx context.Context, req *CreateBookRequest) (*models.BookCard, error)
	CreateVolume(ctx context.Context, req *CreateVolumeRequest) (*models.Node, error)
	CreateChapter(ctx context.Context, req *CreateChapterRequest) (*models.Node, error)
	DeleteNode(ctx context.Context, path string) error
}

// InspirationService manages the workspace-wide inspiration notes
type InspirationService interface {
	List(ctx context.Context) ([]models.Inspiration, error)
	Create(ctx context.Context, req *CreateInspirationRequest) (*models.Inspiration, error)
}

// SettingTabService renders the setting tabs of a book
type SettingTabService interface {
	Tabs() []string
	RenderTab(ctx context.Context, bookPath, tab string) (*models.SettingTab, error)
}

// SettingsService holds the writer settings
type SettingsService interface {
	SettingsProvider

	// Update applies the non-nil fields of req
	Update(ctx context.Context, req *UpdateSettingsRequest) (models.Settings, error)

	// OnChange registers fn to run after every successful update
	OnChange(fn func(old, updated models.Settings))
}

// CreateBookRequest represents a new book
type CreateBookRequest struct {
	Name        string `json:"name"`
	Kind        string `json:"kind"` // "novel", "short-story", "multi-file" or "single-file"
	Description string `json:"description"`
}

// CreateVolumeRequest represents a new volume inside a book's manuscript folder
type CreateVolumeRequest struct {
	BookPath string `json:"-"`
	Name     string `json:"name"`
}

// CreateChapterRequest represents a new chapter. Volume is optional.
type CreateChapterRequest struct {
	BookPath string `json:"-"`
	Volume   string `json:"volume,omitempty"`
	Name     string `json:"name"`
	Content  string `json:"content,omitempty"`
}

// CreateInspirationRequest represents a new inspiration note
type CreateInspirationRequest struct {
	Title   string `json:"title"`
	Content string `json:"content"`
}

// UpdateSettingsRequest represents a partial settings update
type UpdateSettingsRequest struct {
	CountPunctuation *bool   `json:"count_punctuation,omitempty"`
	Name             *string `json:"name,omitempty"`
	AvatarPath       *string `json:"avatar_path,omitempty"`
	BooksPerRow      *int    `json:"books_per_row,omitempty"`
}
