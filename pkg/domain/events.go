package domain

import (
	"context"
	"time"
)

// EventType defines the category of the event.
type EventType string

const (
	EventResolve EventType = "resolve"
	EventReject  EventType = "reject"
	EventApply   EventType = "apply"
)

// EventBase contains common fields for all events.
type EventBase struct {
	Timestamp time.Time `json:"timestamp"`
	Type      EventType `json:"type"`
	PageID    string    `json:"page_id"`
}

// PlacementEvent reports the outcome of resolving a drop.
type PlacementEvent struct {
	EventBase
	Origin     Origin          `json:"origin"`
	Kind       InstructionKind `json:"kind"`
	Count      int             `json:"count"`
	Diagnostic *Diagnostic     `json:"diagnostic,omitempty"`
	Duration   time.Duration   `json:"duration"`
}

// ApplyEvent reports an action applied to a page history.
type ApplyEvent struct {
	EventBase
	Action   ActionType `json:"action"`
	Changed  bool       `json:"changed"`
	Revision int        `json:"revision"`
	Depth    int        `json:"depth"`
}

// LifecycleHooks defines callbacks for editor observability.
type LifecycleHooks struct {
	OnResolve func(context.Context, *PlacementEvent)
	OnReject  func(context.Context, *PlacementEvent)
	OnApply   func(context.Context, *ApplyEvent)
}
