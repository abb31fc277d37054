package workspace

// EventOp is the kind of mutation reported by the host store
type EventOp string

const (
	OpCreated  EventOp = "created"
	OpModified EventOp = "modified"
	OpDeleted  EventOp = "deleted"

	// OpResync means events may have been lost and every view must re-read.
	// It carries no path.
	OpResync EventOp = "resync"
)

// Event is a mutation notification for one node
type Event struct {
	Op   EventOp  `json:"op"`
	Path string   `json:"path"`
	Kind NodeKind `json:"kind,omitempty"` // May be empty for deletions the store cannot classify
}
