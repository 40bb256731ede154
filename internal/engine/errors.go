package engine

import (
	"errors"

	"github.com/jiatastic/exdraw/internal/excalidraw"
	"github.com/jiatastic/exdraw/internal/graph"
	"github.com/jiatastic/exdraw/internal/layout"
	"github.com/jiatastic/exdraw/internal/style"
)

// Error codes reported by the HTTP and MCP surfaces.
const (
	CodeMalformedDescription = "malformed_description"
	CodeUnknownKind          = "unknown_diagram_kind"
	CodeUnsupportedStyle     = "unsupported_style"
	CodeInvalidOptions       = "invalid_options"
	CodeInconsistentGraph    = "inconsistent_graph"
	CodeInternal             = "internal"
)

// ErrorCode maps a pipeline error onto a stable code.
func ErrorCode(err error) string {
	switch {
	case errors.Is(err, graph.ErrMalformedDescription):
		return CodeMalformedDescription
	case errors.Is(err, graph.ErrUnknownDiagramKind):
		return CodeUnknownKind
	case errors.Is(err, style.ErrUnsupportedStyle):
		return CodeUnsupportedStyle
	case errors.Is(err, layout.ErrInvalidOptions):
		return CodeInvalidOptions
	case errors.Is(err, excalidraw.ErrInvalidDocument):
		return CodeInternal
	case errors.Is(err, graph.ErrInconsistentGraph):
		return CodeInconsistentGraph
	default:
		return CodeInternal
	}
}

// IsInputError reports whether err was caused by the request.
func IsInputError(err error) bool {
	return err != nil && ErrorCode(err) != CodeInternal
}
