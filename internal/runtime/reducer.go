package runtime

import (
	"fmt"
	"reflect"

	"github.com/aretw0/arbor/pkg/domain"
)

// Apply returns the tree produced by applying action to tree.
// The input tree is never modified. changed is false when the action leaves the
// tree as it was (missing ids, no-op moves, None instructions). In that case the
// input tree is returned as is.
//
// Undo and Redo are history actions and are rejected here; see Reduce.
func Apply(tree []domain.Component, action domain.Action) ([]domain.Component, bool, error) {
	if action == nil {
		return tree, false, fmt.Errorf("%w: nil action", domain.ErrUnknownAction)
	}

	next := domain.CloneTree(tree)
	if next == nil {
		next = []domain.Component{}
	}

	changed, err := apply(&next, action)
	if err != nil {
		return tree, false, err
	}
	if !changed {
		return tree, false, nil
	}
	return next, true, nil
}

func apply(tree *[]domain.Component, action domain.Action) (bool, error) {
	switch a := action.(type) {
	case domain.Placement:
		changed := false
		for _, in := range a.Instructions {
			ok, err := apply(tree, in)
			if err != nil {
				return false, err
			}
			changed = changed || ok
		}
		return changed, nil
	case domain.Add:
		return applyAdd(tree, a)
	case domain.Move:
		return applyMove(tree, a), nil
	case domain.None:
		return false, nil
	case domain.Remove:
		return applyRemove(tree, a), nil
	case domain.Update:
		return applyUpdate(*tree, a), nil
	case domain.Reorder:
		return applyReorder(tree, a), nil
	case domain.Set:
		replacement := domain.CloneTree(a.Components)
		if replacement == nil {
			replacement = []domain.Component{}
		}
		if reflect.DeepEqual(*tree, replacement) {
			return false, nil
		}
		*tree = replacement
		return true, nil
	case domain.Undo, domain.Redo:
		return false, fmt.Errorf("%w: %s is a history action", domain.ErrUnknownAction, a.ActionType())
	}
	return false, fmt.Errorf("%w: %T", domain.ErrUnknownAction, action)
}

// childrenRef returns the children slice of parentID so it can be edited in place.
// It returns nil when the parent is missing or a leaf.
func childrenRef(tree *[]domain.Component, parentID string) *[]domain.Component {
	if parentID == domain.RootID {
		return tree
	}
	parent := domain.FindRef(*tree, parentID)
	if parent == nil || !parent.IsContainer() {
		return nil
	}
	return &parent.Children
}

func clamp(i, lo, hi int) int {
	if i < lo {
		return lo
	}
	if i > hi {
		return hi
	}
	return i
}

func insertAt(list *[]domain.Component, index int, c domain.Component) {
	index = clamp(index, 0, len(*list))
	out := make([]domain.Component, 0, len(*list)+1)
	out = append(out, (*list)[:index]...)
	out = append(out, c)
	out = append(out, (*list)[index:]...)
	*list = out
}

func removeAt(list *[]domain.Component, index int) domain.Component {
	c := (*list)[index]
	out := make([]domain.Component, 0, len(*list)-1)
	out = append(out, (*list)[:index]...)
	out = append(out, (*list)[index+1:]...)
	*list = out
	return c
}

func applyAdd(tree *[]domain.Component, a domain.Add) (bool, error) {
	list := childrenRef(tree, a.ParentID)
	if list == nil {
		return false, nil
	}
	var dup string
	domain.Walk([]domain.Component{a.Component}, func(c domain.Component, _ string, _ int) bool {
		if _, exists := domain.Find(*tree, c.ID); exists {
			dup = c.ID
			return false
		}
		return true
	})
	if dup != "" {
		return false, fmt.Errorf("%w: duplicate id '%s'", domain.ErrInvalidTree, dup)
	}
	insertAt(list, a.Index, a.Component.Clone())
	return true, nil
}

func applyMove(tree *[]domain.Component, m domain.Move) bool {
	src := childrenRef(tree, m.From.ParentID)
	if src == nil || m.From.Index < 0 || m.From.Index >= len(*src) {
		return false
	}
	if m.From == m.To && (m.SlotKey == "" || m.SlotKey == (*src)[m.From.Index].SlotKey) {
		return false
	}

	// 1. Extract
	moved := (*src)[m.From.Index]
	if m.To.ParentID != domain.RootID && domain.Contains(moved, m.To.ParentID) {
		return false
	}
	removeAt(src, m.From.Index)

	// 2. Insert; the destination is looked up again because extraction may have shifted it
	dst := childrenRef(tree, m.To.ParentID)
	if dst == nil {
		// restore
		insertAt(childrenRef(tree, m.From.ParentID), m.From.Index, moved)
		return false
	}
	if m.SlotKey != "" {
		moved.SlotKey = m.SlotKey
	}
	insertAt(dst, m.To.Index, moved)
	return true
}

func applyRemove(tree *[]domain.Component, r domain.Remove) bool {
	loc, ok := domain.Locate(*tree, r.ID)
	if !ok {
		return false
	}
	removeAt(childrenRef(tree, loc.ParentID), loc.Index)
	return true
}

func applyUpdate(tree []domain.Component, u domain.Update) bool {
	c := domain.FindRef(tree, u.ID)
	if c == nil {
		return false
	}
	before := c.Clone()

	if u.SlotKey != nil {
		c.SlotKey = *u.SlotKey
	}
	for k, v := range u.Props {
		if v == nil {
			delete(c.Props, k)
			continue
		}
		if c.Props == nil {
			c.Props = make(map[string]any)
		}
		c.Props[k] = v
	}
	if len(c.Props) == 0 {
		c.Props = nil
	}
	if len(before.Props) == 0 {
		before.Props = nil
	}

	return before.SlotKey != c.SlotKey || !reflect.DeepEqual(before.Props, c.Props)
}

func applyReorder(tree *[]domain.Component, r domain.Reorder) bool {
	loc, ok := domain.Locate(*tree, r.ID)
	if !ok {
		return false
	}
	list := childrenRef(tree, loc.ParentID)
	target := clamp(loc.Index+r.Delta, 0, len(*list)-1)
	if target == loc.Index {
		return false
	}
	c := removeAt(list, loc.Index)
	insertAt(list, target, c)
	return true
}
