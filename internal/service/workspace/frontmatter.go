package workspace

import (
	"fmt"
	"strings"

	"gopkg.in/yaml.v3"
	"writersuite/internal/domain"
	models "writersuite/internal/domain/models/workspace"
)

// MetadataSeparator delimits the YAML header of a metadata document
const MetadataSeparator = "---"

// kindFields are the header keys read for the work kind, in priority order
var kindFields = []string{"type", "kind"}

// ParseMetadata parses a metadata document of the form
//
//	---
//	type: novel
//	---
//	名称: 书名
//	简介: 一句话简介
//
// The header sits between the first two separator lines, a line holding only
// the separator, and must be a YAML mapping. The opening separator must be
// the first non-blank line. A missing kind, or one that is not recognized, yields
// WorkUnknown without an error; a missing separator or invalid YAML fails
// with domain.ErrParseFailure.
func ParseMetadata(content string) (*models.WorkMetadata, error) {
	header, body, ok := splitHeader(content)
	if !ok {
		return nil, fmt.Errorf("metadata header not delimited by %q: %w", MetadataSeparator, domain.ErrParseFailure)
	}

	fields := map[string]any{}
	if strings.TrimSpace(header) != "" {
		if err := yaml.Unmarshal([]byte(header), &fields); err != nil {
			return nil, fmt.Errorf("metadata header: %v: %w", err, domain.ErrParseFailure)
		}
		if fields == nil {
			fields = map[string]any{}
		}
	}

	kind := models.WorkUnknown
	for _, key := range kindFields {
		if token, ok := fields[key].(string); ok {
			kind = models.ParseWorkKind(strings.TrimSpace(token))
			break
		}
	}

	return &models.WorkMetadata{
		Kind:   kind,
		Fields: fields,
		Body:   strings.TrimLeft(body, "\r\n"),
	}, nil
}

// splitHeader cuts content at its opening and closing separator lines
func splitHeader(content string) (header, body string, ok bool) {
	lines := strings.SplitAfter(content, "\n")
	open := -1
	for i, line := range lines {
		trimmed := strings.TrimSpace(line)
		if trimmed != MetadataSeparator {
			if open < 0 && trimmed != "" {
				return "", "", false
			}
			continue
		}
		if open < 0 {
			open = i
			continue
		}
		return strings.Join(lines[open+1:i], ""), strings.Join(lines[i+1:], ""), true
	}
	return "", "", false
}

// RenderMetadata writes the metadata document for a new book
func RenderMetadata(kind models.WorkKind, name, description string) string {
	return fmt.Sprintf("%s\ntype: %s\n%s\n名称: %s\n简介: %s",
		MetadataSeparator, kind.Token(), MetadataSeparator, name, description)
}

// BodyField returns the value of a "key: value" line in a metadata body.
// Both ASCII and full-width colons are accepted.
func BodyField(body, key string) (string, bool) {
	for _, line := range strings.Split(body, "\n") {
		line = strings.TrimSpace(line)
		for _, sep := range []string{":", "："} {
			if rest, ok := strings.CutPrefix(line, key+sep); ok {
				return strings.TrimSpace(rest), true
			}
		}
	}
	return "", false
}
