// Package render turns workspace notes into sanitized HTML for display.
package render

import (
	"bytes"
	"fmt"
	"strings"

	"github.com/yuin/goldmark"
	"github.com/yuin/goldmark/ast"
	"github.com/yuin/goldmark/extension"
	"github.com/yuin/goldmark/renderer/html"
	"github.com/yuin/goldmark/text"
)

// MarkdownRenderer converts markdown notes to HTML.
// goldmark.Markdown is safe for concurrent use once built.
type MarkdownRenderer struct {
	md        goldmark.Markdown
	sanitizer *HTMLSanitizer
}

// NewMarkdownRenderer creates a renderer with GitHub flavoured markdown.
// Single newlines become <br>, matching how writers break lines in notes.
func NewMarkdownRenderer(sanitizer *HTMLSanitizer) *MarkdownRenderer {
	md := goldmark.New(
		goldmark.WithExtensions(extension.GFM),
		goldmark.WithRendererOptions(html.WithHardWraps()),
	)
	return &MarkdownRenderer{md: md, sanitizer: sanitizer}
}

// Render converts src to sanitized HTML
func (r *MarkdownRenderer) Render(src string) (string, error) {
	var buf bytes.Buffer
	if err := r.md.Convert([]byte(src), &buf); err != nil {
		return "", fmt.Errorf("render markdown: %w", err)
	}
	return r.sanitizer.Sanitize(buf.String()), nil
}

// Title returns the text of the first heading in src, or fallback when there is none
func (r *MarkdownRenderer) Title(src, fallback string) string {
	source := []byte(src)
	doc := r.md.Parser().Parse(text.NewReader(source))

	for n := doc.FirstChild(); n != nil; n = n.NextSibling() {
		if heading, ok := n.(*ast.Heading); ok {
			if title := strings.TrimSpace(headingText(heading, source)); title != "" {
				return title
			}
		}
	}
	return fallback
}

// headingText concatenates the text segments under a heading
func headingText(n ast.Node, src []byte) string {
	var buf bytes.Buffer
	for c := n.FirstChild(); c != nil; c = c.NextSibling() {
		if t, ok := c.(*ast.Text); ok {
			buf.Write(t.Segment.Value(src))
			continue
		}
		buf.WriteString(headingText(c, src))
	}
	return buf.String()
}
