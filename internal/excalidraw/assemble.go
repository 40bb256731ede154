package excalidraw

import (
	"crypto/sha256"
	"encoding/hex"
	"fmt"
	"math"
	"strings"

	"github.com/jiatastic/exdraw/internal/graph"
	"github.com/jiatastic/exdraw/internal/layout"
	"github.com/jiatastic/exdraw/internal/style"
)

const (
	// DefaultSource is written to the document's source field.
	DefaultSource = "https://excalidraw.com"

	documentVersion = 2
	lineHeight      = 1.25
)

// Input is everything the assembler needs. Graph must be annotated and
// Layout computed from the same graph.
type Input struct {
	Graph   *graph.Graph
	Layout  *layout.Result
	Profile style.Profile

	// Fingerprint namespaces element ids; derived from the graph when empty.
	Fingerprint string
	Source      string

	FontSize   float64
	CharWidth  float64
	BindingGap float64
}

// Assemble builds a complete document. It either returns a document that
// passed validation or an error and no document.
func Assemble(in Input) (*Document, error) {
	if in.Graph == nil || in.Layout == nil {
		return nil, fmt.Errorf("%w: graph and layout are required", graph.ErrInconsistentGraph)
	}
	if len(in.Layout.Boxes) != in.Graph.NodeCount() || len(in.Layout.Routes) != in.Graph.EdgeCount() {
		return nil, fmt.Errorf("%w: layout does not match graph (%d/%d boxes, %d/%d routes)",
			graph.ErrInconsistentGraph, len(in.Layout.Boxes), in.Graph.NodeCount(),
			len(in.Layout.Routes), in.Graph.EdgeCount())
	}
	if in.FontSize <= 0 {
		in.FontSize = 16
	}
	if in.CharWidth <= 0 {
		in.CharWidth = 9
	}
	if in.Source == "" {
		in.Source = DefaultSource
	}
	if in.Fingerprint == "" {
		in.Fingerprint = GraphFingerprint(in.Graph, in.Layout.Kind)
	}

	s := newScene(in.Fingerprint)
	shapeIDs := make(map[string]string, in.Graph.NodeCount())

	for _, n := range in.Graph.Nodes() {
		box, ok := in.Layout.Box(n.ID)
		if !ok {
			return nil, fmt.Errorf("%w: node %s was not placed", graph.ErrInconsistentGraph, n.ID)
		}
		id, err := addNode(s, in, n, box)
		if err != nil {
			return nil, err
		}
		shapeIDs[n.ID] = id
	}

	for _, e := range in.Graph.Edges() {
		rt, err := routeFor(in.Layout, e)
		if err != nil {
			return nil, err
		}
		if err := addEdge(s, in, e, rt, shapeIDs); err != nil {
			return nil, err
		}
	}

	theme := in.Profile.Theme
	doc := &Document{
		Type:     "excalidraw",
		Version:  documentVersion,
		Source:   in.Source,
		Elements: s.elements,
		AppState: AppState{
			ViewBackgroundColor:        theme.Background,
			CurrentItemStrokeColor:     theme.Stroke,
			CurrentItemBackgroundColor: theme.Fill,
			CurrentItemFillStyle:       theme.FillStyle,
			CurrentItemStrokeWidth:     2,
			CurrentItemStrokeStyle:     style.StrokeSolid,
			CurrentItemRoughness:       theme.Roughness,
			CurrentItemOpacity:         100,
			CurrentItemFontFamily:      theme.FontFamily,
			CurrentItemFontSize:        20,
			CurrentItemTextAlign:       "left",
			CurrentItemEndArrowhead:    "arrow",
			Zoom:                       Zoom{Value: 1},
		},
		Files: map[string]any{},
	}

	if err := Validate(doc); err != nil {
		return nil, err
	}
	return doc, nil
}

func addNode(s *scene, in Input, n *graph.Node, box layout.Box) (string, error) {
	sp := in.Profile.Node(n.Type)

	shape := &Element{
		ID:              s.id("node:" + n.ID),
		Type:            string(box.Shape),
		X:               box.X,
		Y:               box.Y,
		Width:           box.Width,
		Height:          box.Height,
		StrokeColor:     sp.StrokeColor,
		BackgroundColor: sp.FillColor,
		FillStyle:       sp.FillStyle,
		StrokeWidth:     sp.StrokeWidth,
		StrokeStyle:     sp.StrokeStyle,
		Roughness:       sp.Roughness,
		Roundness:       roundnessFor(box.Shape),
		CustomData: &CustomData{
			NodeID:       n.ID,
			InferredType: string(n.Type),
			Layer:        n.Layer.String(),
			Role:         string(n.Role),
		},
	}
	if err := s.add(shape); err != nil {
		return "", err
	}

	text := layout.NodeText(n)
	w, h := layout.MeasureText(text, in.FontSize, lineHeight, in.CharWidth)
	label := &Element{
		ID:              s.id("node:" + n.ID + ":text"),
		Type:            TypeText,
		X:               round2(box.X + (box.Width-w)/2),
		Y:               round2(box.Y + (box.Height-h)/2),
		Width:           round2(w),
		Height:          round2(h),
		StrokeColor:     sp.TextColor,
		BackgroundColor: "transparent",
		FillStyle:       sp.FillStyle,
		StrokeWidth:     sp.StrokeWidth,
		StrokeStyle:     sp.StrokeStyle,
		Roughness:       sp.Roughness,
		Text:            text,
		OriginalText:    text,
		FontSize:        in.FontSize,
		FontFamily:      sp.FontFamily,
		TextAlign:       "center",
		VerticalAlign:   "middle",
		ContainerID:     strPtr(shape.ID),
		LineHeight:      lineHeight,
	}
	if err := s.add(label); err != nil {
		return "", err
	}
	shape.BoundElements = append(shape.BoundElements, BoundElement{ID: label.ID, Type: TypeText})
	return shape.ID, nil
}

func addEdge(s *scene, in Input, e *graph.Edge, rt layout.Route, shapeIDs map[string]string) error {
	fromID, ok := shapeIDs[e.From]
	if !ok {
		return fmt.Errorf("%w: edge %s has unknown source %s", graph.ErrInconsistentGraph, e.ID, e.From)
	}
	toID, ok := shapeIDs[e.To]
	if !ok {
		return fmt.Errorf("%w: edge %s has unknown target %s", graph.ErrInconsistentGraph, e.ID, e.To)
	}

	sp := in.Profile.Edge()
	origin := rt.Points[0]
	points := make([][2]float64, 0, len(rt.Points))
	minX, maxX, minY, maxY := 0.0, 0.0, 0.0, 0.0
	for _, p := range rt.Points {
		dx, dy := round2(p.X-origin.X), round2(p.Y-origin.Y)
		points = append(points, [2]float64{dx, dy})
		minX, maxX = math.Min(minX, dx), math.Max(maxX, dx)
		minY, maxY = math.Min(minY, dy), math.Max(maxY, dy)
	}

	arrow := &Element{
		ID:              s.id("edge:" + e.ID),
		Type:            TypeArrow,
		X:               origin.X,
		Y:               origin.Y,
		Width:           round2(maxX - minX),
		Height:          round2(maxY - minY),
		StrokeColor:     sp.StrokeColor,
		BackgroundColor: sp.FillColor,
		FillStyle:       sp.FillStyle,
		StrokeWidth:     sp.StrokeWidth,
		StrokeStyle:     sp.StrokeStyle,
		Roughness:       sp.Roughness,
		Points:          points,
		StartBinding:    &Binding{ElementID: fromID, Focus: 0, Gap: in.BindingGap},
		EndBinding:      &Binding{ElementID: toID, Focus: 0, Gap: in.BindingGap},
		EndArrowhead:    strPtr("arrow"),
		CustomData:      &CustomData{EdgeID: e.ID},
	}
	if err := s.add(arrow); err != nil {
		return err
	}
	s.get(fromID).BoundElements = append(s.get(fromID).BoundElements, BoundElement{ID: arrow.ID, Type: TypeArrow})
	s.get(toID).BoundElements = append(s.get(toID).BoundElements, BoundElement{ID: arrow.ID, Type: TypeArrow})

	if e.Label == "" {
		return nil
	}
	ts := in.Profile.Text()
	w, h := layout.MeasureText(e.Label, in.FontSize, lineHeight, in.CharWidth)
	mid := midpoint(rt.Points)
	label := &Element{
		ID:              s.id("edge:" + e.ID + ":label"),
		Type:            TypeText,
		X:               round2(mid.X - w/2),
		Y:               round2(mid.Y - h/2),
		Width:           round2(w),
		Height:          round2(h),
		StrokeColor:     ts.TextColor,
		BackgroundColor: "transparent",
		FillStyle:       ts.FillStyle,
		StrokeWidth:     ts.StrokeWidth,
		StrokeStyle:     ts.StrokeStyle,
		Roughness:       ts.Roughness,
		Text:            e.Label,
		OriginalText:    e.Label,
		FontSize:        in.FontSize,
		FontFamily:      ts.FontFamily,
		TextAlign:       "center",
		VerticalAlign:   "middle",
		ContainerID:     strPtr(arrow.ID),
		LineHeight:      lineHeight,
	}
	if err := s.add(label); err != nil {
		return err
	}
	arrow.BoundElements = append(arrow.BoundElements, BoundElement{ID: label.ID, Type: TypeText})
	return nil
}

func routeFor(r *layout.Result, e *graph.Edge) (layout.Route, error) {
	for _, rt := range r.Routes {
		if rt.EdgeID == e.ID {
			if len(rt.Points) < 2 {
				return layout.Route{}, fmt.Errorf("%w: edge %s has a degenerate route", graph.ErrInconsistentGraph, e.ID)
			}
			return rt, nil
		}
	}
	return layout.Route{}, fmt.Errorf("%w: edge %s was not routed", graph.ErrInconsistentGraph, e.ID)
}

func roundnessFor(s layout.Shape) *Roundness {
	switch s {
	case layout.ShapeRectangle:
		return &Roundness{Type: 3}
	case layout.ShapeDiamond:
		return &Roundness{Type: 2}
	default:
		return nil
	}
}

// midpoint returns the middle of the route's middle segment.
func midpoint(pts []layout.Point) layout.Point {
	i := (len(pts) - 1) / 2
	a, b := pts[i], pts[i+1]
	return layout.Point{X: (a.X + b.X) / 2, Y: (a.Y + b.Y) / 2}
}

func round2(v float64) float64 {
	r := math.Round(v*100) / 100
	if r == 0 {
		return 0
	}
	return r
}

// GraphFingerprint hashes the graph's structure and kind.
func GraphFingerprint(g *graph.Graph, kind graph.Kind) string {
	var b strings.Builder
	b.WriteString(string(kind))
	for _, n := range g.Nodes() {
		fmt.Fprintf(&b, "\nn %s %s %s %s", n.ID, n.Label, n.Type, n.Badge)
	}
	for _, e := range g.Edges() {
		fmt.Fprintf(&b, "\ne %s %s %s %s", e.ID, e.From, e.To, e.Label)
	}
	sum := sha256.Sum256([]byte(b.String()))
	return hex.EncodeToString(sum[:])
}
