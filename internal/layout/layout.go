// Package layout places annotated graph nodes on a canvas and routes the
// edges between them. Output depends only on the graph and the options.
package layout

import (
	"errors"
	"fmt"
	"math"

	"github.com/jiatastic/exdraw/internal/graph"
)

// Direction is the flowchart reading direction.
type Direction string

const (
	DirectionRight Direction = "right"
	DirectionDown  Direction = "down"
)

// MindmapStyle selects how mind-map children are arranged.
type MindmapStyle string

const (
	MindmapRadial MindmapStyle = "radial"
	MindmapFan    MindmapStyle = "fan"
)

// Shape is the outline drawn for a node.
type Shape string

const (
	ShapeRectangle Shape = "rectangle"
	ShapeDiamond   Shape = "diamond"
	ShapeEllipse   Shape = "ellipse"
)

// Options controls sizes and spacing. All lengths are canvas pixels.
type Options struct {
	Direction Direction    `yaml:"direction"`
	Mindmap   MindmapStyle `yaml:"mindmap_layout"`

	FontSize   float64 `yaml:"font_size"`
	LineHeight float64 `yaml:"line_height"` // multiple of FontSize
	CharWidth  float64 `yaml:"char_width"`  // per display column
	PaddingX   float64 `yaml:"padding_x"`
	PaddingY   float64 `yaml:"padding_y"`
	MinWidth   float64 `yaml:"min_width"`
	MinHeight  float64 `yaml:"min_height"`

	GapX          float64 `yaml:"gap_x"`
	GapY          float64 `yaml:"gap_y"`
	LayerGap      float64 `yaml:"layer_gap"`
	MindmapRadius float64 `yaml:"mindmap_radius"`
	Detour        float64 `yaml:"detour"`
	BindingGap    float64 `yaml:"binding_gap"`

	OriginX float64 `yaml:"origin_x"`
	OriginY float64 `yaml:"origin_y"`
}

// DefaultOptions returns the spacing used when nothing is configured.
func DefaultOptions() Options {
	return Options{
		Direction:     DirectionRight,
		Mindmap:       MindmapRadial,
		FontSize:      16,
		LineHeight:    1.25,
		CharWidth:     9,
		PaddingX:      24,
		PaddingY:      20,
		MinWidth:      120,
		MinHeight:     60,
		GapX:          80,
		GapY:          60,
		LayerGap:      120,
		MindmapRadius: 250,
		Detour:        40,
		BindingGap:    8,
		OriginX:       100,
		OriginY:       100,
	}
}

// ErrInvalidOptions is returned by Validate.
var ErrInvalidOptions = errors.New("invalid layout options")

// Validate rejects options that cannot produce a non-overlapping layout.
func (o Options) Validate() error {
	switch o.Direction {
	case DirectionRight, DirectionDown:
	default:
		return fmt.Errorf("%w: direction %q (valid: right, down)", ErrInvalidOptions, o.Direction)
	}
	switch o.Mindmap {
	case MindmapRadial, MindmapFan:
	default:
		return fmt.Errorf("%w: mindmap layout %q (valid: radial, fan)", ErrInvalidOptions, o.Mindmap)
	}
	if o.FontSize <= 0 || o.CharWidth <= 0 || o.LineHeight <= 0 {
		return fmt.Errorf("%w: font_size, char_width and line_height must be positive", ErrInvalidOptions)
	}
	if o.GapX <= 0 || o.GapY <= 0 || o.LayerGap <= 0 || o.Detour <= 0 {
		return fmt.Errorf("%w: gaps must be positive", ErrInvalidOptions)
	}
	if o.BindingGap < 0 || o.MinWidth < 0 || o.MinHeight < 0 {
		return fmt.Errorf("%w: sizes must not be negative", ErrInvalidOptions)
	}
	return nil
}

// Point is a canvas coordinate.
type Point struct {
	X float64 `json:"x"`
	Y float64 `json:"y"`
}

// Box is a placed node.
type Box struct {
	NodeID string
	Shape  Shape
	X      float64
	Y      float64
	Width  float64
	Height float64
	Band   int // architecture band, mind-map ring; 0 otherwise
	Order  int // position within the band or chain
}

// Center returns the midpoint of the box.
func (b Box) Center() Point {
	return Point{X: b.X + b.Width/2, Y: b.Y + b.Height/2}
}

// Overlaps reports whether two boxes share interior area.
func (b Box) Overlaps(o Box) bool {
	return b.X < o.X+o.Width && o.X < b.X+b.Width &&
		b.Y < o.Y+o.Height && o.Y < b.Y+b.Height
}

// Route is the polyline of an edge. The first and last points sit
// BindingGap outside the anchored sides.
type Route struct {
	EdgeID    string
	From      string
	To        string
	Points    []Point
	StartSide Side
	EndSide   Side
}

// Result is a complete placement.
type Result struct {
	Kind   graph.Kind
	Boxes  []Box   // node order
	Routes []Route // edge order
	Bands  [][]string

	index map[string]int
}

// Box returns the placement of a node.
func (r *Result) Box(id string) (Box, bool) {
	i, ok := r.index[id]
	if !ok {
		return Box{}, false
	}
	return r.Boxes[i], true
}

// Bounds returns the corners of the smallest rectangle holding every box.
func (r *Result) Bounds() (lo, hi Point) {
	if len(r.Boxes) == 0 {
		return Point{}, Point{}
	}
	lo = Point{X: math.Inf(1), Y: math.Inf(1)}
	hi = Point{X: math.Inf(-1), Y: math.Inf(-1)}
	for _, b := range r.Boxes {
		lo.X = math.Min(lo.X, b.X)
		lo.Y = math.Min(lo.Y, b.Y)
		hi.X = math.Max(hi.X, b.X+b.Width)
		hi.Y = math.Max(hi.Y, b.Y+b.Height)
	}
	return lo, hi
}

// Compute lays out an annotated graph.
func Compute(g *graph.Graph, kind graph.Kind, opts Options) (*Result, error) {
	if err := opts.Validate(); err != nil {
		return nil, err
	}
	if err := g.Validate(); err != nil {
		return nil, err
	}

	boxes := make([]Box, 0, g.NodeCount())
	for i, n := range g.Nodes() {
		boxes = append(boxes, sizeNode(n, kind, i == 0, opts))
	}

	r := &Result{Kind: kind, Boxes: boxes, index: make(map[string]int, len(boxes))}
	for i, b := range boxes {
		r.index[b.NodeID] = i
	}

	switch kind {
	case graph.KindFlowchart:
		layoutFlowchart(g, r, opts)
	case graph.KindArchitecture:
		layoutArchitecture(g, r, opts)
	case graph.KindMindmap:
		layoutMindmap(g, r, opts)
	default:
		return nil, fmt.Errorf("%w: %q", graph.ErrUnknownDiagramKind, string(kind))
	}

	r.round()
	if err := r.checkOverlaps(); err != nil {
		return nil, err
	}
	return r, nil
}

// ShapeFor picks the outline of a node for a diagram kind.
func ShapeFor(n *graph.Node, kind graph.Kind, root bool) Shape {
	switch kind {
	case graph.KindFlowchart:
		switch n.Role {
		case graph.RoleDecision:
			return ShapeDiamond
		case graph.RoleTerminal:
			return ShapeEllipse
		}
	case graph.KindArchitecture:
		if n.Type == graph.TypeDatabase || n.Type == graph.TypeCache {
			return ShapeEllipse
		}
	case graph.KindMindmap:
		if !root {
			return ShapeEllipse
		}
	}
	return ShapeRectangle
}

// Text inside diamonds and ellipses only fits in the inscribed area, so
// those shapes grow.
var shapeScale = map[Shape]float64{
	ShapeRectangle: 1,
	ShapeEllipse:   1.25,
	ShapeDiamond:   1.5,
}

// The first node of a mind map is its root.
func sizeNode(n *graph.Node, kind graph.Kind, first bool, opts Options) Box {
	root := kind == graph.KindMindmap && first
	shape := ShapeFor(n, kind, root)

	w, h := MeasureText(NodeText(n), opts.FontSize, opts.LineHeight, opts.CharWidth)
	w += 2 * opts.PaddingX
	h += 2 * opts.PaddingY

	scale := shapeScale[shape]
	w = math.Max(opts.MinWidth, w*scale)
	h = math.Max(opts.MinHeight, h*scale)
	if root {
		w += opts.PaddingX
		h += opts.PaddingY / 2
	}
	return Box{NodeID: n.ID, Shape: shape, Width: math.Ceil(w), Height: math.Ceil(h)}
}

func (r *Result) round() {
	for i := range r.Boxes {
		b := &r.Boxes[i]
		b.X, b.Y = round2(b.X), round2(b.Y)
		b.Width, b.Height = round2(b.Width), round2(b.Height)
	}
	for i := range r.Routes {
		for j := range r.Routes[i].Points {
			p := &r.Routes[i].Points[j]
			p.X, p.Y = round2(p.X), round2(p.Y)
		}
	}
}

func (r *Result) checkOverlaps() error {
	for i := 0; i < len(r.Boxes); i++ {
		for j := i + 1; j < len(r.Boxes); j++ {
			if r.Boxes[i].Overlaps(r.Boxes[j]) {
				return fmt.Errorf("%w: nodes %s and %s overlap", graph.ErrInconsistentGraph, r.Boxes[i].NodeID, r.Boxes[j].NodeID)
			}
		}
	}
	return nil
}

// round2 fixes coordinates to two decimals so float noise never reaches
// the document.
func round2(v float64) float64 {
	r := math.Round(v*100) / 100
	if r == 0 {
		return 0 // no negative zero
	}
	return r
}

func (r *Result) maxSize() (w, h float64) {
	for _, b := range r.Boxes {
		w = math.Max(w, b.Width)
		h = math.Max(h, b.Height)
	}
	return w, h
}

func (r *Result) place(i int, center Point) {
	b := &r.Boxes[i]
	b.X = center.X - b.Width/2
	b.Y = center.Y - b.Height/2
}
