package graph

import (
	"fmt"
	"strings"
)

// Kind selects the parsing and layout strategy.
type Kind string

const (
	KindFlowchart    Kind = "flowchart"
	KindArchitecture Kind = "architecture"
	KindMindmap      Kind = "mindmap"
)

// Kinds lists the supported diagram kinds.
var Kinds = []Kind{KindFlowchart, KindArchitecture, KindMindmap}

// ParseKind converts a string to a Kind.
func ParseKind(s string) (Kind, error) {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "flowchart", "flow":
		return KindFlowchart, nil
	case "architecture", "arch":
		return KindArchitecture, nil
	case "mindmap", "mind-map":
		return KindMindmap, nil
	default:
		return "", fmt.Errorf("%w: %q (valid: flowchart, architecture, mindmap)", ErrUnknownDiagramKind, s)
	}
}

// String returns the string representation of the kind.
func (k Kind) String() string {
	return string(k)
}

// KindNames returns the names of Kinds in order.
func KindNames() []string {
	names := make([]string, len(Kinds))
	for i, k := range Kinds {
		names[i] = string(k)
	}
	return names
}
