package domain

import (
	"fmt"

	"github.com/mitchellh/mapstructure"
)

// dragData mirrors the loosely typed payload a drag-and-drop toolkit attaches
// to the active item ("active.data.current").
type dragData struct {
	From      string      `mapstructure:"from"`
	Type      string      `mapstructure:"type"`
	Index     *int        `mapstructure:"index"`
	ParentID  string      `mapstructure:"parentId"`
	Template  *Component  `mapstructure:"template"`
	Templates []Component `mapstructure:"templates"`
}

// targetData mirrors the payload attached to the droppable under the pointer.
type targetData struct {
	ParentID *string `mapstructure:"parentId"`
	Index    *int    `mapstructure:"index"`
}

func decodeLoose(input, output any) error {
	dec, err := mapstructure.NewDecoder(&mapstructure.DecoderConfig{
		WeaklyTypedInput: true,
		Result:           output,
	})
	if err != nil {
		return err
	}
	return dec.Decode(input)
}

// DecodeDrag builds a Drag from the raw payload of the active draggable.
// A single "template" is treated as a one-element batch.
func DecodeDrag(activeID string, data map[string]any) (Drag, error) {
	var raw dragData
	if err := decodeLoose(data, &raw); err != nil {
		return Drag{}, fmt.Errorf("failed to decode drag payload: %w", err)
	}

	drag := Drag{
		ID:             activeID,
		Origin:         Origin(raw.From),
		SourceIndex:    raw.Index,
		SourceParentID: raw.ParentID,
		DraggedType:    raw.Type,
		Templates:      raw.Templates,
	}
	if drag.Origin == "" {
		drag.Origin = OriginCanvas
	}
	if len(drag.Templates) == 0 && raw.Template != nil {
		drag.Templates = []Component{*raw.Template}
	}
	return drag, nil
}

// DecodeTarget builds a DropTarget from the raw payload of the droppable under the pointer.
func DecodeTarget(overID string, data map[string]any) (DropTarget, error) {
	var raw targetData
	if err := decodeLoose(data, &raw); err != nil {
		return DropTarget{}, fmt.Errorf("failed to decode drop payload: %w", err)
	}
	return DropTarget{
		TargetID:    overID,
		ParentID:    raw.ParentID,
		TargetIndex: raw.Index,
	}, nil
}
