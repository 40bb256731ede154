package graph

import (
	"fmt"
	"strconv"
)

// Node is a diagram component. Geometry lives in the layout result, not here.
type Node struct {
	ID    string
	Key   string // identity used for de-duplication
	Label string

	Type  NodeType
	Role  Role
	Layer Layer
	Badge string

	// LayerHint and KindHint carry classification hints from node-list input.
	LayerHint string
	KindHint  string
}

// Edge is a directed connection between two nodes.
type Edge struct {
	ID    string
	From  string
	To    string
	Label string
}

// Graph holds nodes and edges in insertion order. Iteration never depends
// on map order.
type Graph struct {
	nodes []*Node
	edges []*Edge

	byID  map[string]*Node
	byKey map[string]*Node

	edgeKeys map[string]*Edge

	// Adjacency list: node -> successors
	succ map[string][]string
	// Reverse adjacency: node -> predecessors
	pred map[string][]string
}

// New returns an empty graph.
func New() *Graph {
	return &Graph{
		byID:     make(map[string]*Node),
		byKey:    make(map[string]*Node),
		edgeKeys: make(map[string]*Edge),
		succ:     make(map[string][]string),
		pred:     make(map[string][]string),
	}
}

// AddNode inserts a node for key, or returns the existing node when key was
// already seen. The boolean reports whether a new node was created.
func (g *Graph) AddNode(key, label string) (*Node, bool) {
	if n, ok := g.byKey[key]; ok {
		return n, false
	}
	n := &Node{
		ID:    "n" + strconv.Itoa(len(g.nodes)+1),
		Key:   key,
		Label: label,
	}
	g.nodes = append(g.nodes, n)
	g.byID[n.ID] = n
	g.byKey[key] = n
	g.succ[n.ID] = nil
	g.pred[n.ID] = nil
	return n, true
}

// AddEdge connects two existing node ids. Self loops and repeated edges are
// ignored and reported with a false return.
func (g *Graph) AddEdge(from, to, label string) (*Edge, bool) {
	if from == to {
		return nil, false
	}
	k := from + "\x00" + to
	if e, ok := g.edgeKeys[k]; ok {
		if e.Label == "" && label != "" {
			e.Label = label
		}
		return e, false
	}
	e := &Edge{
		ID:    "e" + strconv.Itoa(len(g.edges)+1),
		From:  from,
		To:    to,
		Label: label,
	}
	g.edges = append(g.edges, e)
	g.edgeKeys[k] = e
	g.succ[from] = append(g.succ[from], to)
	g.pred[to] = append(g.pred[to], from)
	return e, true
}

// Nodes returns nodes in first-appearance order.
func (g *Graph) Nodes() []*Node {
	return g.nodes
}

// Edges returns edges in insertion order.
func (g *Graph) Edges() []*Edge {
	return g.edges
}

// Node looks up a node by id.
func (g *Graph) Node(id string) (*Node, bool) {
	n, ok := g.byID[id]
	return n, ok
}

// NodeByKey looks up a node by its de-duplication key.
func (g *Graph) NodeByKey(key string) (*Node, bool) {
	n, ok := g.byKey[key]
	return n, ok
}

// Index returns the position of a node in first-appearance order, or -1.
func (g *Graph) Index(id string) int {
	for i, n := range g.nodes {
		if n.ID == id {
			return i
		}
	}
	return -1
}

// NodeCount returns the number of nodes in the graph.
func (g *Graph) NodeCount() int {
	return len(g.nodes)
}

// EdgeCount returns the number of edges in the graph.
func (g *Graph) EdgeCount() int {
	return len(g.edges)
}

// Successors returns the targets of a node's outgoing edges.
func (g *Graph) Successors(id string) []string {
	return g.succ[id]
}

// Predecessors returns the sources of a node's incoming edges.
func (g *Graph) Predecessors(id string) []string {
	return g.pred[id]
}

// OutDegree returns the number of outgoing edges from a node.
func (g *Graph) OutDegree(id string) int {
	return len(g.succ[id])
}

// InDegree returns the number of incoming edges to a node.
func (g *Graph) InDegree(id string) int {
	return len(g.pred[id])
}

// Validate checks referential integrity: unique ids and no dangling edge
// endpoints.
func (g *Graph) Validate() error {
	if len(g.nodes) == 0 {
		return fmt.Errorf("%w: graph has no nodes", ErrInconsistentGraph)
	}
	seen := make(map[string]struct{}, len(g.nodes))
	for _, n := range g.nodes {
		if _, dup := seen[n.ID]; dup {
			return fmt.Errorf("%w: duplicate node id %q", ErrInconsistentGraph, n.ID)
		}
		seen[n.ID] = struct{}{}
	}
	edgeIDs := make(map[string]struct{}, len(g.edges))
	for _, e := range g.edges {
		if _, dup := edgeIDs[e.ID]; dup {
			return fmt.Errorf("%w: duplicate edge id %q", ErrInconsistentGraph, e.ID)
		}
		edgeIDs[e.ID] = struct{}{}
		if _, ok := seen[e.From]; !ok {
			return fmt.Errorf("%w: edge %s references unknown source %q", ErrInconsistentGraph, e.ID, e.From)
		}
		if _, ok := seen[e.To]; !ok {
			return fmt.Errorf("%w: edge %s references unknown target %q", ErrInconsistentGraph, e.ID, e.To)
		}
	}
	return nil
}
