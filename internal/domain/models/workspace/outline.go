package workspace

// HeadingMarker is the character whose leading repetitions give a heading its depth
const HeadingMarker = '#'

// OutlineNode is one heading of a single-file work with its nested sub-headings.
// Children always have a greater Depth than their parent.
type OutlineNode struct {
	Title    string        `json:"title"`
	Depth    int           `json:"depth"` // 0 for lines without a heading marker
	Line     int           `json:"line"`  // Zero-based source line, -1 if unknown
	Children []OutlineNode `json:"children"`
}

// Flatten returns the titles of a forest in pre-order
func Flatten(forest []OutlineNode) []string {
	var titles []string
	var walk func(nodes []OutlineNode)
	walk = func(nodes []OutlineNode) {
		for _, n := range nodes {
			titles = append(titles, n.Title)
			walk(n.Children)
		}
	}
	walk(forest)
	return titles
}

// HeadingLine is a heading-marker line together with its position in the source document
type HeadingLine struct {
	Text string
	Line int
}
