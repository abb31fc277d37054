package workspace

// ViewKind identifies which presentation a view renders
type ViewKind string

const (
	ViewTOC       ViewKind = "toc"
	ViewBookshelf ViewKind = "bookshelf"
	ViewSettings  ViewKind = "settings"
)

// Valid reports whether k is a known view kind
func (k ViewKind) Valid() bool {
	switch k {
	case ViewTOC, ViewBookshelf, ViewSettings:
		return true
	default:
		return false
	}
}

// RefreshState is the state of a view's refresh cycle
type RefreshState string

const (
	StateIdle      RefreshState = "idle"
	StateComputing RefreshState = "computing"
	StateStale     RefreshState = "stale"
)

// ViewState is the per-view state owned by that view's refresh coordinator
type ViewState struct {
	ID             string   `json:"id"`
	Kind           ViewKind `json:"kind"`
	ActiveBookPath string   `json:"active_book_path"` // Empty when no book is selected
	LastRenderedAt uint64   `json:"last_rendered_at"` // Logical clock, bumped on every accepted refresh
}

// ViewSnapshot is the last rendered content of a view.
// Exactly one of TOC, Shelf or Settings is set, matching View.Kind.
type ViewSnapshot struct {
	View     ViewState      `json:"view"`
	State    RefreshState   `json:"state"`
	TOC      *TOC           `json:"toc,omitempty"`
	Shelf    *Shelf         `json:"shelf,omitempty"`
	Settings *SettingsPanel `json:"settings,omitempty"`
}
