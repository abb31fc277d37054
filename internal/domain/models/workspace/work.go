package workspace

// WorkKind classifies how a book is laid out in the store
type WorkKind string

const (
	// WorkMultiFile is a book whose chapters are separate documents,
	// possibly grouped into volume sub-containers
	WorkMultiFile WorkKind = "multi-file"

	// WorkSingleFile is a book stored as one document whose headings form its outline
	WorkSingleFile WorkKind = "single-file"

	// WorkUnknown covers missing, unreadable or unrecognized metadata
	WorkUnknown WorkKind = "unknown"
)

// Metadata tokens written to and recognized in the metadata header.
const (
	TokenNovel      = "novel"
	TokenShortStory = "short-story"
)

// ParseWorkKind maps a metadata token to a WorkKind. Unrecognized tokens fail closed.
func ParseWorkKind(token string) WorkKind {
	switch token {
	case TokenNovel, string(WorkMultiFile):
		return WorkMultiFile
	case TokenShortStory, string(WorkSingleFile):
		return WorkSingleFile
	default:
		return WorkUnknown
	}
}

// Token returns the metadata token written for a new book of this kind
func (k WorkKind) Token() string {
	switch k {
	case WorkMultiFile:
		return TokenNovel
	case WorkSingleFile:
		return TokenShortStory
	default:
		return ""
	}
}

// WorkMetadata is the parsed metadata document of a book root
type WorkMetadata struct {
	Kind   WorkKind       `json:"kind"`
	Fields map[string]any `json:"fields"` // Header key/values, including the raw type
	Body   string         `json:"body"`   // Descriptive text after the header
}
