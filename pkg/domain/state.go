package domain

import (
	"slices"
	"time"
)

// DefaultHistoryLimit bounds the number of undo steps kept per page.
const DefaultHistoryLimit = 100

// History is the undoable editing state of a page.
type History struct {
	Past    [][]Component `json:"past"`
	Present []Component   `json:"present"`
	Future  [][]Component `json:"future"`
}

// NewHistory creates a history whose present is tree.
func NewHistory(tree []Component) History {
	if tree == nil {
		tree = []Component{}
	}
	return History{
		Past:    [][]Component{},
		Present: tree,
		Future:  [][]Component{},
	}
}

// CanUndo reports whether there is a previous tree.
func (h History) CanUndo() bool { return len(h.Past) > 0 }

// CanRedo reports whether there is an undone tree.
func (h History) CanRedo() bool { return len(h.Future) > 0 }

// Document is the persisted unit: one page and its history.
type Document struct {
	ID string `json:"id"`

	History History `json:"history"`

	// Revision increases by one on every change of the present tree.
	Revision int `json:"revision"`

	UpdatedAt time.Time `json:"updatedAt"`
}

// NewDocument creates a document at revision zero.
func NewDocument(id string, tree []Component) *Document {
	return &Document{
		ID:        id,
		History:   NewHistory(tree),
		UpdatedAt: time.Now().UTC(),
	}
}

// Components returns the present tree.
func (d *Document) Components() []Component {
	return d.History.Present
}

// Snapshot returns a deep copy of the document.
func (d *Document) Snapshot() *Document {
	if d == nil {
		return nil
	}
	out := *d
	out.History = History{
		Past:    cloneTrees(d.History.Past),
		Present: CloneTree(d.History.Present),
		Future:  cloneTrees(d.History.Future),
	}
	return &out
}

// Head copies d for change notifications. Only the present tree is deep copied;
// past and future entries are shared with d, since history trees are never
// modified once recorded.
func (d *Document) Head() *Document {
	if d == nil {
		return nil
	}
	out := *d
	out.History = History{
		Past:    slices.Clone(d.History.Past),
		Present: CloneTree(d.History.Present),
		Future:  slices.Clone(d.History.Future),
	}
	return &out
}

func cloneTrees(trees [][]Component) [][]Component {
	if trees == nil {
		return nil
	}
	out := make([][]Component, len(trees))
	for i, t := range trees {
		out[i] = CloneTree(t)
	}
	return out
}
