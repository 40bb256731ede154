package graph

import (
	"encoding/json"
	"fmt"
	"io"
	"strings"
)

// NodeList is the interchange format produced by the project scanner and
// accepted in place of a text description.
type NodeList struct {
	Nodes []ListNode     `json:"nodes"`
	Edges []ListEdge     `json:"edges"`
	Meta  map[string]any `json:"meta,omitempty"`
}

// ListNode is one node of a NodeList. Key must be unique.
type ListNode struct {
	Key   string `json:"key"`
	Label string `json:"label"`
	Kind  string `json:"kind,omitempty"`
	Layer string `json:"layer,omitempty"`
}

// ListEdge references nodes by key.
type ListEdge struct {
	Source string `json:"source"`
	Target string `json:"target"`
	Label  string `json:"label,omitempty"`
}

// ReadNodeList decodes a NodeList from JSON.
func ReadNodeList(r io.Reader) (*NodeList, error) {
	var l NodeList
	dec := json.NewDecoder(r)
	dec.DisallowUnknownFields()
	if err := dec.Decode(&l); err != nil {
		return nil, fmt.Errorf("%w: decoding node list: %v", ErrInconsistentGraph, err)
	}
	return &l, nil
}

// FromNodeList builds a graph from a node list. Unlike Parse, identity is
// the key, so two nodes may share a label. Repeated keys, empty keys and
// edges to unknown keys fail with ErrInconsistentGraph.
func FromNodeList(l *NodeList) (*Graph, error) {
	if l == nil || len(l.Nodes) == 0 {
		return nil, fmt.Errorf("%w: node list is empty", ErrInconsistentGraph)
	}

	g := New()
	for i, ln := range l.Nodes {
		key := strings.TrimSpace(ln.Key)
		if key == "" {
			return nil, fmt.Errorf("%w: node %d has no key", ErrInconsistentGraph, i+1)
		}
		label := CleanLabel(ln.Label)
		if label == "" {
			label = key
		}
		n, created := g.AddNode(key, label)
		if !created {
			return nil, fmt.Errorf("%w: duplicate node key %q", ErrInconsistentGraph, key)
		}
		n.KindHint = ln.Kind
		n.LayerHint = ln.Layer
	}

	for i, le := range l.Edges {
		from, ok := g.NodeByKey(strings.TrimSpace(le.Source))
		if !ok {
			return nil, fmt.Errorf("%w: edge %d references unknown source %q", ErrInconsistentGraph, i+1, le.Source)
		}
		to, ok := g.NodeByKey(strings.TrimSpace(le.Target))
		if !ok {
			return nil, fmt.Errorf("%w: edge %d references unknown target %q", ErrInconsistentGraph, i+1, le.Target)
		}
		g.AddEdge(from.ID, to.ID, CleanLabel(le.Label))
	}
	if err := g.Validate(); err != nil {
		return nil, err
	}
	return g, nil
}
