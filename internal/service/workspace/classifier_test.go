package workspace

import (
	"context"
	"errors"
	"testing"

	"writersuite/internal/domain"
	models "writersuite/internal/domain/models/workspace"
)

func TestClassify(t *testing.T) {
	layout := models.DefaultLayout()

	tests := []struct {
		name     string
		metadata *string // nil = no metadata document
		readErr  error
		want     models.WorkKind
	}{
		{name: "short story token", metadata: ptr("---\ntype: short-story\n---\n名称: 短篇"), want: models.WorkSingleFile},
		{name: "novel token", metadata: ptr("---\ntype: novel\n---\n名称: 长篇"), want: models.WorkMultiFile},
		{name: "canonical tokens", metadata: ptr("---\ntype: single-file\n---\n"), want: models.WorkSingleFile},
		{name: "kind key", metadata: ptr("---\nkind: multi-file\n---\n"), want: models.WorkMultiFile},
		{name: "metadata absent", metadata: nil, want: models.WorkUnknown},
		{name: "unrecognized token", metadata: ptr("---\ntype: poem\n---\n"), want: models.WorkUnknown},
		{name: "no type field", metadata: ptr("---\nauthor: 某人\n---\n"), want: models.WorkUnknown},
		{name: "no separator", metadata: ptr("type: novel"), want: models.WorkUnknown},
		{name: "malformed yaml", metadata: ptr("---\ntype: [novel\n---\n"), want: models.WorkUnknown},
		{name: "unreadable", metadata: ptr("---\ntype: novel\n---\n"), readErr: domain.ErrReadFailure, want: models.WorkUnknown},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			s := newTestStore()
			root := mkdir(t, s, "书")
			if tt.metadata != nil {
				write(t, s, "书/"+layout.MetadataName, *tt.metadata)
			}
			if tt.readErr != nil {
				s.SetReadError("书/"+layout.MetadataName, tt.readErr)
			}

			c := NewWorkClassifier(s, layout, discardLogger())
			if got := c.Classify(context.Background(), root); got != tt.want {
				t.Errorf("Classify() = %q, want %q", got, tt.want)
			}
		})
	}
}

func TestReadMetadata_Errors(t *testing.T) {
	ctx := context.Background()
	s := newTestStore()
	layout := models.DefaultLayout()
	c := NewWorkClassifier(s, layout, discardLogger())

	root := mkdir(t, s, "书")
	if _, err := c.ReadMetadata(ctx, root); !errors.Is(err, domain.ErrNotFound) {
		t.Errorf("ReadMetadata(no metadata) error = %v, want ErrNotFound", err)
	}

	write(t, s, "书/"+layout.MetadataName, "no header here")
	if _, err := c.ReadMetadata(ctx, root); !errors.Is(err, domain.ErrParseFailure) {
		t.Errorf("ReadMetadata(malformed) error = %v, want ErrParseFailure", err)
	}

	doc := write(t, s, "单.md", "")
	if _, err := c.ReadMetadata(ctx, doc); !errors.Is(err, domain.ErrValidation) {
		t.Errorf("ReadMetadata(document) error = %v, want ErrValidation", err)
	}
}

func TestParseMetadata(t *testing.T) {
	md, err := ParseMetadata("---\ntype: novel\ntags: [武侠, 长篇]\n---\n名称: 江湖\n简介: 一个故事")
	if err != nil {
		t.Fatalf("ParseMetadata() error = %v", err)
	}
	if md.Kind != models.WorkMultiFile {
		t.Errorf("Kind = %q, want %q", md.Kind, models.WorkMultiFile)
	}
	if md.Fields["type"] != "novel" {
		t.Errorf("Fields[type] = %v, want novel", md.Fields["type"])
	}
	if name, ok := BodyField(md.Body, "名称"); !ok || name != "江湖" {
		t.Errorf("BodyField(名称) = (%q, %v), want (江湖, true)", name, ok)
	}
	if desc, ok := BodyField(md.Body, "简介"); !ok || desc != "一个故事" {
		t.Errorf("BodyField(简介) = (%q, %v), want (一个故事, true)", desc, ok)
	}
}

func TestParseMetadata_EmptyHeader(t *testing.T) {
	md, err := ParseMetadata("---\n---\nbody")
	if err != nil {
		t.Fatalf("ParseMetadata() error = %v", err)
	}
	if md.Kind != models.WorkUnknown {
		t.Errorf("Kind = %q, want unknown", md.Kind)
	}
	if md.Body != "body" {
		t.Errorf("Body = %q, want body", md.Body)
	}
}

func TestParseMetadata_SeparatorInsideValues(t *testing.T) {
	md, err := ParseMetadata("\n---\ntype: novel\nnote: a---b\n---\n名称: 上---下\n")
	if err != nil {
		t.Fatalf("ParseMetadata() error = %v", err)
	}
	if md.Kind != models.WorkMultiFile {
		t.Errorf("Kind = %q, want %q", md.Kind, models.WorkMultiFile)
	}
	if md.Fields["note"] != "a---b" {
		t.Errorf("Fields[note] = %v, want a---b", md.Fields["note"])
	}
	if name, _ := BodyField(md.Body, "名称"); name != "上---下" {
		t.Errorf("name = %q, want 上---下", name)
	}
}

func TestParseMetadata_NotDelimited(t *testing.T) {
	tests := map[string]string{
		"no closing line":  "---\ntype: novel\n",
		"text before":      "前言\n---\ntype: novel\n---\n",
		"inline separator": "type: a---b---c",
	}

	for name, content := range tests {
		t.Run(name, func(t *testing.T) {
			if _, err := ParseMetadata(content); !errors.Is(err, domain.ErrParseFailure) {
				t.Errorf("ParseMetadata(%q) error = %v, want ErrParseFailure", content, err)
			}
		})
	}
}

func TestRenderMetadata_RoundTrip(t *testing.T) {
	tests := []models.WorkKind{models.WorkMultiFile, models.WorkSingleFile}

	for _, kind := range tests {
		t.Run(string(kind), func(t *testing.T) {
			content := RenderMetadata(kind, "书名", "简介文字")
			md, err := ParseMetadata(content)
			if err != nil {
				t.Fatalf("ParseMetadata() error = %v", err)
			}
			if md.Kind != kind {
				t.Errorf("Kind = %q, want %q", md.Kind, kind)
			}
			if name, _ := BodyField(md.Body, "名称"); name != "书名" {
				t.Errorf("name = %q, want 书名", name)
			}
		})
	}
}

func TestBodyField_FullWidthColon(t *testing.T) {
	got, ok := BodyField("名称：全角\n", "名称")
	if !ok || got != "全角" {
		t.Errorf("BodyField() = (%q, %v), want (全角, true)", got, ok)
	}
	if _, ok := BodyField("other: x", "名称"); ok {
		t.Error("BodyField(missing key) ok = true, want false")
	}
}

func ptr(s string) *string { return &s }
