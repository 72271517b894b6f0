package domain

import (
	"encoding/json"
	"fmt"
)

// InstructionKind tags the variants of Instruction.
type InstructionKind string

const (
	KindAdd  InstructionKind = "add"
	KindMove InstructionKind = "move"
	KindNone InstructionKind = "none"
)

// Instruction is the resolver output: Add, Move or None.
// The interface is sealed; every variant is also an Action the reducer understands.
type Instruction interface {
	Action
	Kind() InstructionKind
	isInstruction()
}

// Add inserts a new component at a location.
type Add struct {
	Location
	Component Component
}

// Move relocates an existing component.
// From and To are interpreted as remove-then-insert: To.Index refers to the list after removal.
type Move struct {
	From Location
	To   Location

	// SlotKey, when set, is assigned to the moved component.
	SlotKey string
}

// None rejects the drop. The tree is left untouched.
type None struct {
	Diagnostic Diagnostic
}

func (Add) Kind() InstructionKind  { return KindAdd }
func (Move) Kind() InstructionKind { return KindMove }
func (None) Kind() InstructionKind { return KindNone }

func (Add) isInstruction()  {}
func (Move) isInstruction() {}
func (None) isInstruction() {}

func (Add) ActionType() ActionType  { return ActionAdd }
func (Move) ActionType() ActionType { return ActionMove }
func (None) ActionType() ActionType { return ActionNone }

// IsNoop reports whether the move leaves the tree unchanged.
func (m Move) IsNoop() bool {
	return m.From == m.To && m.SlotKey == ""
}

// Placement is the full result of resolving one drop.
//
// It holds exactly one Move or None, or one Add per inserted component.
// A placement is itself an Action: the reducer applies it as a single history step.
type Placement struct {
	Instructions []Instruction
}

// Reject builds a placement made of a single None.
func Reject(d Diagnostic) Placement {
	return Placement{Instructions: []Instruction{None{Diagnostic: d}}}
}

// Single builds a placement made of one instruction.
func Single(in Instruction) Placement {
	return Placement{Instructions: []Instruction{in}}
}

// ActionType implements Action.
func (Placement) ActionType() ActionType { return ActionPlacement }

// Rejected returns the diagnostic when the placement is a None.
func (p Placement) Rejected() (Diagnostic, bool) {
	if len(p.Instructions) == 1 {
		if n, ok := p.Instructions[0].(None); ok {
			return n.Diagnostic, true
		}
	}
	return Diagnostic{}, false
}

// Kind returns the kind shared by the instructions (KindNone for an empty placement).
func (p Placement) Kind() InstructionKind {
	if len(p.Instructions) == 0 {
		return KindNone
	}
	return p.Instructions[0].Kind()
}

// Added returns the components inserted by the placement, in order.
func (p Placement) Added() []Component {
	var out []Component
	for _, in := range p.Instructions {
		if a, ok := in.(Add); ok {
			out = append(out, a.Component)
		}
	}
	return out
}

// instructionJSON is the wire form shared by every variant.
type instructionJSON struct {
	Type       InstructionKind `json:"type"`
	ParentID   string          `json:"parentId,omitempty"`
	Index      *int            `json:"index,omitempty"`
	Component  *Component      `json:"component,omitempty"`
	From       *Location       `json:"from,omitempty"`
	To         *Location       `json:"to,omitempty"`
	SlotKey    string          `json:"slotKey,omitempty"`
	Diagnostic *Diagnostic     `json:"diagnostic,omitempty"`
}

func encodeInstruction(in Instruction) (instructionJSON, error) {
	switch v := in.(type) {
	case Add:
		c := v.Component
		idx := v.Index
		return instructionJSON{Type: KindAdd, ParentID: v.ParentID, Index: &idx, Component: &c}, nil
	case Move:
		from, to := v.From, v.To
		return instructionJSON{Type: KindMove, From: &from, To: &to, SlotKey: v.SlotKey}, nil
	case None:
		d := v.Diagnostic
		return instructionJSON{Type: KindNone, Diagnostic: &d}, nil
	}
	return instructionJSON{}, fmt.Errorf("%w: %T", ErrUnknownAction, in)
}

func decodeInstruction(raw instructionJSON) (Instruction, error) {
	switch raw.Type {
	case KindAdd:
		if raw.Component == nil {
			return nil, fmt.Errorf("add instruction without component")
		}
		add := Add{Location: Location{ParentID: raw.ParentID}, Component: *raw.Component}
		if raw.Index != nil {
			add.Index = *raw.Index
		}
		return add, nil
	case KindMove:
		if raw.From == nil || raw.To == nil {
			return nil, fmt.Errorf("move instruction requires from and to")
		}
		return Move{From: *raw.From, To: *raw.To, SlotKey: raw.SlotKey}, nil
	case KindNone:
		n := None{}
		if raw.Diagnostic != nil {
			n.Diagnostic = *raw.Diagnostic
		}
		return n, nil
	}
	return nil, fmt.Errorf("%w: instruction %q", ErrUnknownAction, raw.Type)
}

// MarshalJSON encodes the placement as a list of tagged instructions.
func (p Placement) MarshalJSON() ([]byte, error) {
	out := make([]instructionJSON, 0, len(p.Instructions))
	for _, in := range p.Instructions {
		raw, err := encodeInstruction(in)
		if err != nil {
			return nil, err
		}
		out = append(out, raw)
	}
	return json.Marshal(out)
}

// UnmarshalJSON decodes a list of tagged instructions.
func (p *Placement) UnmarshalJSON(data []byte) error {
	var raws []instructionJSON
	if err := json.Unmarshal(data, &raws); err != nil {
		return err
	}
	p.Instructions = make([]Instruction, 0, len(raws))
	for _, raw := range raws {
		in, err := decodeInstruction(raw)
		if err != nil {
			return err
		}
		p.Instructions = append(p.Instructions, in)
	}
	return nil
}
