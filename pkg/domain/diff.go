package domain

import (
	"reflect"
	"sort"
)

// TreeDiff represents the changes between two revisions of a page.
// It is designed to be serialized to JSON for partial updates on the client.
type TreeDiff struct {
	// PageID is always present to identify the target.
	PageID string `json:"page_id"`

	Revision int `json:"revision"`

	// Added lists components that did not exist before, with their location.
	Added map[string]Location `json:"added,omitempty"`

	// Removed lists ids that no longer exist.
	Removed []string `json:"removed,omitempty"`

	// Moved lists components whose parent or index changed.
	Moved map[string]Location `json:"moved,omitempty"`

	// Updated lists components whose type, slot key or props changed.
	Updated []string `json:"updated,omitempty"`

	CanUndo bool `json:"can_undo"`
	CanRedo bool `json:"can_redo"`
}

type indexed struct {
	loc  Location
	comp Component
}

func index(tree []Component) map[string]indexed {
	out := make(map[string]indexed)
	var visit func(list []Component, parentID string)
	visit = func(list []Component, parentID string) {
		for i, c := range list {
			out[c.ID] = indexed{loc: Location{ParentID: parentID, Index: i}, comp: c}
			visit(c.Children, c.ID)
		}
	}
	visit(tree, RootID)
	return out
}

// Diff calculates the difference between oldDoc and newDoc.
// If oldDoc is nil, every component of newDoc is reported as added (initial load).
// It returns nil when the present trees are equivalent.
func Diff(oldDoc, newDoc *Document) *TreeDiff {
	if newDoc == nil {
		return nil
	}

	diff := &TreeDiff{
		PageID:   newDoc.ID,
		Revision: newDoc.Revision,
		CanUndo:  newDoc.History.CanUndo(),
		CanRedo:  newDoc.History.CanRedo(),
	}

	var before map[string]indexed
	if oldDoc != nil {
		before = index(oldDoc.History.Present)
	}
	after := index(newDoc.History.Present)

	// 1. Added, Moved, Updated
	for id, now := range after {
		was, existed := before[id]
		if !existed {
			if diff.Added == nil {
				diff.Added = make(map[string]Location)
			}
			diff.Added[id] = now.loc
			continue
		}
		if was.loc != now.loc {
			if diff.Moved == nil {
				diff.Moved = make(map[string]Location)
			}
			diff.Moved[id] = now.loc
		}
		if was.comp.Type != now.comp.Type ||
			was.comp.SlotKey != now.comp.SlotKey ||
			!reflect.DeepEqual(was.comp.Props, now.comp.Props) {
			diff.Updated = append(diff.Updated, id)
		}
	}

	// 2. Removed
	for id := range before {
		if _, ok := after[id]; !ok {
			diff.Removed = append(diff.Removed, id)
		}
	}

	if diff.IsEmpty() {
		return nil
	}
	sort.Strings(diff.Removed)
	sort.Strings(diff.Updated)
	return diff
}

// IsEmpty checks if the diff contains any actionable changes.
func (d *TreeDiff) IsEmpty() bool {
	return len(d.Added) == 0 &&
		len(d.Removed) == 0 &&
		len(d.Moved) == 0 &&
		len(d.Updated) == 0
}
