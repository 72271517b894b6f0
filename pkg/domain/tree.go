package domain

// RootID is the parent id of top-level components.
// Locations and lookups use it to address the page root.
const RootID = ""

// Location addresses a position inside a children list.
type Location struct {
	ParentID string `json:"parentId,omitempty"`
	Index    int    `json:"index"`
}

// CloneTree returns a deep copy of the list.
func CloneTree(list []Component) []Component {
	if list == nil {
		return nil
	}
	out := make([]Component, len(list))
	for i, c := range list {
		out[i] = c.Clone()
	}
	return out
}

// Find returns the component with the given id anywhere in the tree.
func Find(tree []Component, id string) (Component, bool) {
	if c := findRef(tree, id); c != nil {
		return *c, true
	}
	return Component{}, false
}

// FindRef returns a pointer to the component with the given id so callers can edit it in place.
func FindRef(tree []Component, id string) *Component {
	return findRef(tree, id)
}

func findRef(list []Component, id string) *Component {
	for i := range list {
		if list[i].ID == id {
			return &list[i]
		}
		if found := findRef(list[i].Children, id); found != nil {
			return found
		}
	}
	return nil
}

// FindParent searches the tree for the node whose children contain id.
// It returns RootID when id is a top-level component and ok=false when id is not in the tree.
func FindParent(tree []Component, id string) (parentID string, ok bool) {
	loc, ok := Locate(tree, id)
	return loc.ParentID, ok
}

// Locate returns the parent and index of the component with the given id.
func Locate(tree []Component, id string) (Location, bool) {
	return locate(tree, RootID, id)
}

func locate(list []Component, parentID, id string) (Location, bool) {
	for i, c := range list {
		if c.ID == id {
			return Location{ParentID: parentID, Index: i}, true
		}
		if loc, ok := locate(c.Children, c.ID, id); ok {
			return loc, true
		}
	}
	return Location{}, false
}

// ChildrenOf returns the children list of parentID (the root list for RootID).
// ok is false when the parent does not exist or is a leaf.
func ChildrenOf(tree []Component, parentID string) ([]Component, bool) {
	if parentID == RootID {
		return tree, true
	}
	parent := findRef(tree, parentID)
	if parent == nil || !parent.IsContainer() {
		return nil, false
	}
	return parent.Children, true
}

// IndexOf returns the position of id inside list, or -1.
func IndexOf(list []Component, id string) int {
	for i, c := range list {
		if c.ID == id {
			return i
		}
	}
	return -1
}

// Contains reports whether id is the root or a descendant of the subtree rooted at c.
func Contains(c Component, id string) bool {
	if c.ID == id {
		return true
	}
	return findRef(c.Children, id) != nil
}

// Walk visits every component depth-first in render order.
// Returning false from fn stops the walk.
func Walk(tree []Component, fn func(c Component, parentID string, depth int) bool) {
	walk(tree, RootID, 0, fn)
}

func walk(list []Component, parentID string, depth int, fn func(Component, string, int) bool) bool {
	for _, c := range list {
		if !fn(c, parentID, depth) {
			return false
		}
		if !walk(c.Children, c.ID, depth+1, fn) {
			return false
		}
	}
	return true
}

// Count returns the number of components in the tree.
func Count(tree []Component) int {
	n := 0
	Walk(tree, func(Component, string, int) bool {
		n++
		return true
	})
	return n
}
