package workspace

// Layout names the fixed documents and folders of a workspace
type Layout struct {
	MetadataName     string   // Metadata document directly under a book root
	ManuscriptFolder string   // Chapter container of a multi-file work
	MainTextName     string   // Single document of a single-file work
	DefaultChapter   string   // Chapter created with a new multi-file work
	SettingsFolder   string   // Per-book setting documents, one sub-folder per tab
	SettingTabs      []string // Tab sub-folders under SettingsFolder
	InspirationPath  string   // Workspace-wide inspiration folder
}

// DefaultLayout returns the layout used by the writer plugin vaults
func DefaultLayout() Layout {
	return Layout{
		MetadataName:     "信息.md",
		ManuscriptFolder: "小说文稿",
		MainTextName:     "小说正文.md",
		DefaultChapter:   "未命名章节.md",
		SettingsFolder:   "设定",
		SettingTabs:      []string{"大纲", "角色", "设定", "灵感"},
		InspirationPath:  "@附件/灵感",
	}
}

// HasTab reports whether tab is one of the configured setting tabs
func (l Layout) HasTab(tab string) bool {
	for _, t := range l.SettingTabs {
		if t == tab {
			return true
		}
	}
	return false
}
