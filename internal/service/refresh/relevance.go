package refresh

import (
	models "writersuite/internal/domain/models/workspace"
)

// FilterFor returns the relevance filter of a view kind.
//
// The table of contents follows the active book, or the whole workspace
// while it shows the writer profile. The bookshelf follows everything. The
// settings view follows the active book, or the inspiration folder when no
// book is selected.
func FilterFor(kind models.ViewKind, layout models.Layout) Filter {
	switch kind {
	case models.ViewTOC:
		return func(view models.ViewState, ev models.Event) bool {
			return view.ActiveBookPath == "" || related(ev.Path, view.ActiveBookPath)
		}
	case models.ViewSettings:
		return func(view models.ViewState, ev models.Event) bool {
			if view.ActiveBookPath == "" {
				return related(ev.Path, layout.InspirationPath)
			}
			return related(ev.Path, view.ActiveBookPath)
		}
	default:
		return nil
	}
}

// related reports whether p lies within root or is one of its ancestors.
// Deleting an ancestor removes root too.
func related(p, root string) bool {
	return models.IsWithin(p, root) || models.IsWithin(root, p)
}
