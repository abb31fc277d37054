package workspace

// BookCard summarizes one book on the bookshelf
type BookCard struct {
	Name      string   `json:"name"`
	Path      string   `json:"path"`
	Kind      WorkKind `json:"kind"`
	WordCount int      `json:"word_count"`
	OpenPath  string   `json:"open_path"` // Latest chapter, or the default document for the kind
}

// ShelfStats counts classified books across the whole workspace
type ShelfStats struct {
	MultiFileCount  int `json:"multi_file_count"`
	SingleFileCount int `json:"single_file_count"`
}

// Shelf is the bookshelf view payload
type Shelf struct {
	Books       []BookCard `json:"books"`
	Stats       ShelfStats `json:"stats"`
	BooksPerRow int        `json:"books_per_row"`
}

// TOCEntry is a volume or chapter in a multi-file table of contents
type TOCEntry struct {
	Node      Node       `json:"node"`
	WordCount int        `json:"word_count"`
	Children  []TOCEntry `json:"children,omitempty"` // Volumes only, already sorted
}

// TOC is the table of contents of one book.
// Entries is set for multi-file works, Outline for single-file works,
// and Profile for unknown books or when no book is selected.
type TOC struct {
	BookPath  string        `json:"book_path"`
	Kind      WorkKind      `json:"kind"`
	WordCount int           `json:"word_count"`
	Entries   []TOCEntry    `json:"entries,omitempty"`
	Outline   []OutlineNode `json:"outline,omitempty"`
	Profile   *Profile      `json:"profile,omitempty"`
}

// Profile is the writer summary shown when no book structure is available
type Profile struct {
	Name       string     `json:"name"`
	AvatarPath string     `json:"avatar_path,omitempty"`
	Stats      ShelfStats `json:"stats"`
}

// Inspiration is a workspace-wide note with a short preview
type Inspiration struct {
	Node    Node   `json:"node"`
	Title   string `json:"title"`
	Snippet string `json:"snippet"`
}

// RenderedDocument is a setting document converted to sanitized HTML
type RenderedDocument struct {
	Node  Node   `json:"node"`
	Title string `json:"title"`
	HTML  string `json:"html"`
}

// SettingTab is the rendered content of one setting tab of a book
type SettingTab struct {
	BookPath  string             `json:"book_path"`
	Tab       string             `json:"tab"`
	Documents []RenderedDocument `json:"documents"`
}

// Settings are the writer's runtime preferences
type Settings struct {
	CountPunctuation bool   `json:"count_punctuation"`
	Name             string `json:"name"`
	AvatarPath       string `json:"avatar_path"`
	BooksPerRow      int    `json:"books_per_row"`
}

// SettingsPanel is the settings view payload: the first setting tab of the
// active book, or the inspiration list when no book is selected
type SettingsPanel struct {
	BookPath     string        `json:"book_path,omitempty"`
	Tabs         []string      `json:"tabs,omitempty"`
	Tab          *SettingTab   `json:"tab,omitempty"`
	Inspirations []Inspiration `json:"inspirations,omitempty"`
}
