package graph

import (
	"errors"
	"fmt"
)

var (
	// ErrMalformedDescription is returned for empty input or a separator
	// with an empty operand.
	ErrMalformedDescription = errors.New("malformed description")

	// ErrUnknownDiagramKind is returned for a kind outside flowchart,
	// architecture and mindmap.
	ErrUnknownDiagramKind = errors.New("unknown diagram kind")

	// ErrInconsistentGraph is returned when nodes or edges do not line up.
	ErrInconsistentGraph = errors.New("inconsistent graph")
)

// DescriptionError reports where a description failed to parse.
type DescriptionError struct {
	Flow   int // 1-based flow number
	Step   int // 1-based step within the flow, 0 when not applicable
	Reason string
}

func (e *DescriptionError) Error() string {
	switch {
	case e.Step > 0:
		return fmt.Sprintf("malformed description: flow %d, step %d: %s", e.Flow, e.Step, e.Reason)
	case e.Flow > 0:
		return fmt.Sprintf("malformed description: flow %d: %s", e.Flow, e.Reason)
	default:
		return "malformed description: " + e.Reason
	}
}

func (e *DescriptionError) Unwrap() error {
	return ErrMalformedDescription
}
