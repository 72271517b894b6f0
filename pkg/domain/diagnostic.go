package domain

import "fmt"

// DiagnosticCode classifies why a drop was rejected.
type DiagnosticCode string

const (
	// DiagnosticCannotPlace: a new component type is not allowed at the destination.
	DiagnosticCannotPlace DiagnosticCode = "cannot_place"
	// DiagnosticCannotMove: an existing component type is not allowed at the destination.
	DiagnosticCannotMove DiagnosticCode = "cannot_move"
	// DiagnosticCycle: a component was dropped inside its own subtree.
	DiagnosticCycle DiagnosticCode = "cycle"
	// DiagnosticEmptyBatch: a library drag carried no templates.
	DiagnosticEmptyBatch DiagnosticCode = "empty_batch"
	// DiagnosticMissingSource: a canvas drag references a component that is not in the tree.
	DiagnosticMissingSource DiagnosticCode = "missing_source"
	// DiagnosticUnknownOrigin: the drag origin is not canvas, palette or library.
	DiagnosticUnknownOrigin DiagnosticCode = "unknown_origin"
)

// Diagnostic is the announcement raised for a rejected drop.
// Hosts forward it to an accessibility live region.
type Diagnostic struct {
	Code    DiagnosticCode `json:"code"`
	Message string         `json:"message"`
	Type    string         `json:"type,omitempty"`
}

// NewDiagnostic builds a diagnostic with the standard message for code.
func NewDiagnostic(code DiagnosticCode, componentType string) Diagnostic {
	return Diagnostic{Code: code, Message: diagnosticMessage(code, componentType), Type: componentType}
}

func diagnosticMessage(code DiagnosticCode, t string) string {
	switch code {
	case DiagnosticCannotPlace:
		return fmt.Sprintf("Cannot place %s here", t)
	case DiagnosticCannotMove:
		return fmt.Sprintf("Cannot move %s here", t)
	case DiagnosticCycle:
		return fmt.Sprintf("Cannot move %s inside itself", t)
	case DiagnosticEmptyBatch:
		return "Nothing to place"
	case DiagnosticMissingSource:
		return "The dragged component no longer exists"
	case DiagnosticUnknownOrigin:
		return "Unsupported drag source"
	}
	return string(code)
}
