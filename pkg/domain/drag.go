package domain

import "strings"

// Origin identifies where a dragged item comes from.
type Origin string

const (
	// OriginCanvas is an existing component being moved.
	OriginCanvas Origin = "canvas"
	// OriginPalette is a new component of a single type.
	OriginPalette Origin = "palette"
	// OriginLibrary is one or more saved templates being pasted.
	OriginLibrary Origin = "library"
)

// Valid reports whether o is a known origin.
func (o Origin) Valid() bool {
	switch o {
	case OriginCanvas, OriginPalette, OriginLibrary:
		return true
	}
	return false
}

// Reserved drop target identifiers used by the host editor.
const (
	// CanvasTargetID is the page background; drops append at the end of the root.
	CanvasTargetID = "canvas"
	// ContainerTargetPrefix marks the empty area of a container ("container-<id>").
	ContainerTargetPrefix = "container-"
)

// Drag describes the item being dragged.
type Drag struct {
	ID     string `json:"id"`
	Origin Origin `json:"origin"`

	// SourceIndex and SourceParentID locate a canvas item before the move.
	SourceIndex    *int   `json:"sourceIndex,omitempty"`
	SourceParentID string `json:"sourceParentId,omitempty"`

	DraggedType string `json:"draggedType,omitempty"`

	// Templates is only used by library drags.
	Templates []Component `json:"templates,omitempty"`
}

// DropTarget describes where the drag was released.
type DropTarget struct {
	TargetID string `json:"targetId"`

	// ParentID is inferred from the tree when absent.
	ParentID *string `json:"parentId,omitempty"`

	TargetIndex *int `json:"targetIndex,omitempty"`
}

// ContainerID returns the container addressed by a "container-<id>" target.
func (t DropTarget) ContainerID() (string, bool) {
	if !strings.HasPrefix(t.TargetID, ContainerTargetPrefix) {
		return "", false
	}
	return strings.TrimPrefix(t.TargetID, ContainerTargetPrefix), true
}

// TabHover is the last tab header hovered during the drag.
type TabHover struct {
	ParentID string `json:"parentId"`
	TabIndex int    `json:"tabIndex"`
}

// Gesture bundles everything the host captured for one drop.
type Gesture struct {
	Drag     Drag       `json:"drag"`
	Target   DropTarget `json:"target"`
	TabHover *TabHover  `json:"tabHover,omitempty"`
}
