package domain

import (
	"encoding/json"
	"fmt"
)

// ActionType names a reducer action on the wire.
type ActionType string

const (
	ActionAdd       ActionType = "add"
	ActionMove      ActionType = "move"
	ActionNone      ActionType = "none"
	ActionPlacement ActionType = "placement"
	ActionRemove    ActionType = "remove"
	ActionUpdate    ActionType = "update"
	ActionReorder   ActionType = "reorder"
	ActionSet       ActionType = "set"
	ActionUndo      ActionType = "undo"
	ActionRedo      ActionType = "redo"
)

// Action is a mutation request for the page history.
type Action interface {
	ActionType() ActionType
}

// Remove deletes a component and its subtree.
type Remove struct {
	ID string `json:"id"`
}

// Update patches a component in place.
type Update struct {
	ID string `json:"id"`

	// SlotKey replaces the slot key when non-nil (an empty string clears it).
	SlotKey *string `json:"slotKey,omitempty"`

	// Props are merged into the existing props; nil values delete keys.
	Props map[string]any `json:"props,omitempty"`
}

// Reorder moves a component among its siblings by Delta positions, clamped to the list bounds.
type Reorder struct {
	ID    string `json:"id"`
	Delta int    `json:"delta"`
}

// Set replaces the whole tree.
type Set struct {
	Components []Component `json:"components"`
}

// Undo restores the previous tree.
type Undo struct{}

// Redo re-applies the last undone tree.
type Redo struct{}

func (Remove) ActionType() ActionType  { return ActionRemove }
func (Update) ActionType() ActionType  { return ActionUpdate }
func (Reorder) ActionType() ActionType { return ActionReorder }
func (Set) ActionType() ActionType     { return ActionSet }
func (Undo) ActionType() ActionType    { return ActionUndo }
func (Redo) ActionType() ActionType    { return ActionRedo }

// actionEnvelope is the wire form of an Action: {"type": "...", ...fields}.
type actionEnvelope struct {
	Type ActionType `json:"type"`
}

// DecodeAction parses a tagged JSON action.
func DecodeAction(data []byte) (Action, error) {
	var env actionEnvelope
	if err := json.Unmarshal(data, &env); err != nil {
		return nil, fmt.Errorf("invalid action: %w", err)
	}

	var target Action
	switch env.Type {
	case ActionRemove:
		var a Remove
		if err := json.Unmarshal(data, &a); err != nil {
			return nil, fmt.Errorf("invalid remove action: %w", err)
		}
		target = a
	case ActionUpdate:
		var a Update
		if err := json.Unmarshal(data, &a); err != nil {
			return nil, fmt.Errorf("invalid update action: %w", err)
		}
		target = a
	case ActionReorder:
		var a Reorder
		if err := json.Unmarshal(data, &a); err != nil {
			return nil, fmt.Errorf("invalid reorder action: %w", err)
		}
		target = a
	case ActionSet:
		var a Set
		if err := json.Unmarshal(data, &a); err != nil {
			return nil, fmt.Errorf("invalid set action: %w", err)
		}
		target = a
	case ActionUndo:
		target = Undo{}
	case ActionRedo:
		target = Redo{}
	case ActionAdd, ActionMove, ActionNone:
		var raw instructionJSON
		if err := json.Unmarshal(data, &raw); err != nil {
			return nil, fmt.Errorf("invalid instruction: %w", err)
		}
		in, err := decodeInstruction(raw)
		if err != nil {
			return nil, err
		}
		target = in
	default:
		return nil, fmt.Errorf("%w: %q", ErrUnknownAction, env.Type)
	}
	return target, nil
}

// EncodeAction renders an action in the tagged JSON form accepted by DecodeAction.
func EncodeAction(a Action) ([]byte, error) {
	switch v := a.(type) {
	case Instruction:
		raw, err := encodeInstruction(v)
		if err != nil {
			return nil, err
		}
		return json.Marshal(raw)
	case Undo, Redo:
		return json.Marshal(actionEnvelope{Type: v.ActionType()})
	case Remove, Update, Reorder, Set:
		body, err := json.Marshal(v)
		if err != nil {
			return nil, err
		}
		var fields map[string]any
		if err := json.Unmarshal(body, &fields); err != nil {
			return nil, err
		}
		fields["type"] = v.ActionType()
		return json.Marshal(fields)
	}
	return nil, fmt.Errorf("%w: %T", ErrUnknownAction, a)
}
