package workspace

import (
	"strings"

	models "writersuite/internal/domain/models/workspace"
)

// ParseHeading splits a heading line into its depth (number of leading
// markers) and trimmed title. Lines without a leading marker report ok=false
// and keep their full trimmed text as title.
func ParseHeading(line string) (depth int, title string, ok bool) {
	trimmed := strings.TrimSpace(line)
	for depth < len(trimmed) && trimmed[depth] == models.HeadingMarker {
		depth++
	}
	if depth == 0 {
		return 0, trimmed, false
	}
	return depth, strings.TrimSpace(trimmed[depth:]), true
}

// HeadingLines returns the lines of content that start with the heading
// marker, trimmed, with their zero-based line index
func HeadingLines(content string) []models.HeadingLine {
	var headings []models.HeadingLine
	for i, line := range strings.Split(content, "\n") {
		if len(line) > 0 && line[0] == models.HeadingMarker {
			headings = append(headings, models.HeadingLine{Text: strings.TrimSpace(line), Line: i})
		}
	}
	return headings
}

// BuildOutline nests heading lines by marker depth. Each heading takes the
// contiguous run of deeper headings after it as its children. A line
// without a marker becomes a depth-0 leaf and closes any open run.
// Input order is preserved, so Flatten returns the original titles.
func BuildOutline(lines []string) []models.OutlineNode {
	headings := make([]models.HeadingLine, len(lines))
	for i, l := range lines {
		headings[i] = models.HeadingLine{Text: l, Line: -1}
	}
	return BuildOutlineFromHeadings(headings)
}

// BuildOutlineFromHeadings is BuildOutline for lines that carry their source position
func BuildOutlineFromHeadings(headings []models.HeadingLine) []models.OutlineNode {
	p := &outlineParser{lines: make([]parsedHeading, len(headings))}
	for i, h := range headings {
		depth, title, ok := ParseHeading(h.Text)
		p.lines[i] = parsedHeading{depth: depth, title: title, line: h.Line, marked: ok}
	}
	return p.forest(0, false)
}

type parsedHeading struct {
	depth  int
	title  string
	line   int
	marked bool
}

// outlineParser consumes headings front to back; every line is visited once
type outlineParser struct {
	lines []parsedHeading
	pos   int
}

// forest consumes siblings until the input ends or, for a nested run,
// until a line is no deeper than parent
func (p *outlineParser) forest(parent int, nested bool) []models.OutlineNode {
	nodes := []models.OutlineNode{}
	for p.pos < len(p.lines) {
		h := p.lines[p.pos]
		if nested && (!h.marked || h.depth <= parent) {
			break
		}
		p.pos++

		node := models.OutlineNode{
			Title:    h.title,
			Depth:    h.depth,
			Line:     h.line,
			Children: []models.OutlineNode{},
		}
		if h.marked {
			node.Children = p.forest(h.depth, true)
		}
		nodes = append(nodes, node)
	}
	return nodes
}
