package workspace

import (
	"context"
	"errors"
	"strings"
	"testing"

	"writersuite/internal/domain"
	models "writersuite/internal/domain/models/workspace"
	"writersuite/internal/service/render"
)

func TestSettingTabService(t *testing.T) {
	ctx := context.Background()
	layout := models.DefaultLayout()
	s := newTestStore()
	renderer := render.NewMarkdownRenderer(render.NewHTMLSanitizer())
	tabs := NewSettingTabService(s, newTestAggregator(s, false), renderer, layout, discardLogger())

	mkdir(t, s, "长河")
	mkdir(t, s, "长河/设定")
	mkdir(t, s, "长河/设定/角色")
	write(t, s, "长河/设定/角色/主角.md", "# 林舟\n<script>x()</script>\n**船夫**")
	write(t, s, "长河/设定/角色/配角.md", "无标题")
	write(t, s, "长河/设定/角色/坏.md", "读不到")
	s.SetReadError("长河/设定/角色/坏.md", domain.ErrReadFailure)

	if got := tabs.Tabs(); len(got) != 4 || got[0] != "大纲" {
		t.Errorf("Tabs() = %v, want four tabs starting with 大纲", got)
	}

	t.Run("renders documents", func(t *testing.T) {
		tab, err := tabs.RenderTab(ctx, "长河", "角色")
		if err != nil {
			t.Fatalf("RenderTab() error = %v", err)
		}
		if len(tab.Documents) != 2 {
			t.Fatalf("RenderTab() returned %d documents, want 2", len(tab.Documents))
		}
		first := tab.Documents[0]
		if first.Title != "林舟" {
			t.Errorf("Title = %q, want 林舟", first.Title)
		}
		if !strings.Contains(first.HTML, "<strong>船夫</strong>") || strings.Contains(first.HTML, "<script") {
			t.Errorf("HTML = %q, want sanitized markdown", first.HTML)
		}
		if tab.Documents[1].Title != "配角" {
			t.Errorf("fallback Title = %q, want 配角", tab.Documents[1].Title)
		}
	})

	t.Run("missing tab folder renders empty", func(t *testing.T) {
		tab, err := tabs.RenderTab(ctx, "长河", "大纲")
		if err != nil {
			t.Fatalf("RenderTab() error = %v", err)
		}
		if tab.Documents == nil || len(tab.Documents) != 0 {
			t.Errorf("Documents = %v, want empty non-nil slice", tab.Documents)
		}
	})

	errorCases := []struct {
		name    string
		book    string
		tab     string
		wantErr error
	}{
		{name: "unknown tab", book: "长河", tab: "附录", wantErr: domain.ErrValidation},
		{name: "missing book", book: "无", tab: "角色", wantErr: domain.ErrNotFound},
	}
	for _, tt := range errorCases {
		t.Run(tt.name, func(t *testing.T) {
			if _, err := tabs.RenderTab(ctx, tt.book, tt.tab); !errors.Is(err, tt.wantErr) {
				t.Errorf("RenderTab() error = %v, want %v", err, tt.wantErr)
			}
		})
	}
}
