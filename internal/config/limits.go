package config

const (
	// MaxNodeNameLength is the maximum length for book, volume and chapter names.
	// Most filesystems cap a path segment at 255 bytes; CJK runes take three
	// bytes each in UTF-8, so 80 runes always fit.
	MaxNodeNameLength = 80

	// MaxDescriptionLength is the maximum length for a book description
	MaxDescriptionLength = 2000

	// MaxWriterNameLength is the maximum length for the writer's display name
	MaxWriterNameLength = 100

	// MaxInspirationLength is the maximum length of a new inspiration note
	MaxInspirationLength = 100_000

	// DefaultBooksPerRow is how many book cards the shelf shows per row
	DefaultBooksPerRow = 5

	// MaxBooksPerRow bounds the shelf layout setting
	MaxBooksPerRow = 12

	// DefaultMaxTreeDepth bounds container nesting during tree walks.
	// Deeper branches are skipped.
	DefaultMaxTreeDepth = 64

	// InspirationSnippetLines is how many leading lines an inspiration preview shows
	InspirationSnippetLines = 5
)
