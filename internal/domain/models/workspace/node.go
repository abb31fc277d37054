package workspace

import (
	"path"
	"strings"
	"time"
)

// NodeKind discriminates the two shapes a workspace node can take
type NodeKind string

const (
	KindDocument  NodeKind = "document"
	KindContainer NodeKind = "container"
)

// Node is a document or a container in the host store.
// Documents expose their content through Store.ReadText, containers their
// children through Store.ListChildren; both are addressed by Path.
type Node struct {
	Kind      NodeKind  `json:"kind"`
	Name      string    `json:"name"`      // "第一章.md", not "书/小说文稿/第一章.md"
	Path      string    `json:"path"`      // Slash-separated, relative to the workspace root ("" = root)
	CreatedAt time.Time `json:"created_at"`
}

// IsDocument reports whether the node is a document
func (n Node) IsDocument() bool { return n.Kind == KindDocument }

// IsContainer reports whether the node is a container
func (n Node) IsContainer() bool { return n.Kind == KindContainer }

// DisplayName returns the name without a trailing .md extension
func (n Node) DisplayName() string {
	if n.IsDocument() {
		return strings.TrimSuffix(n.Name, MarkdownExt)
	}
	return n.Name
}

// MarkdownExt is the extension of chapter and metadata documents
const MarkdownExt = ".md"

// JoinPath joins path segments into a workspace path.
// An empty parent means the workspace root.
func JoinPath(parent string, elems ...string) string {
	parts := make([]string, 0, len(elems)+1)
	if parent != "" {
		parts = append(parts, parent)
	}
	for _, e := range elems {
		if e != "" {
			parts = append(parts, e)
		}
	}
	return CleanPath(strings.Join(parts, "/"))
}

// CleanPath normalizes a workspace path: no leading or trailing slashes,
// no "." segments. The root is "".
func CleanPath(p string) string {
	p = strings.Trim(strings.TrimSpace(p), "/")
	if p == "" {
		return ""
	}
	p = path.Clean(p)
	if p == "." {
		return ""
	}
	return p
}

// ParentPath returns the parent path of p ("" for top-level nodes)
func ParentPath(p string) string {
	p = CleanPath(p)
	i := strings.LastIndex(p, "/")
	if i < 0 {
		return ""
	}
	return p[:i]
}

// BaseName returns the last segment of p
func BaseName(p string) string {
	p = CleanPath(p)
	i := strings.LastIndex(p, "/")
	if i < 0 {
		return p
	}
	return p[i+1:]
}

// IsWithin reports whether p equals root or lies beneath it.
// Every path is within the workspace root "".
func IsWithin(p, root string) bool {
	p, root = CleanPath(p), CleanPath(root)
	if root == "" {
		return true
	}
	return p == root || strings.HasPrefix(p, root+"/")
}
