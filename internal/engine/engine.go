// Package engine runs the diagram pipeline: parse, classify, lay out,
// style and assemble.
package engine

import (
	"crypto/sha256"
	"encoding/hex"
	"encoding/json"
	"fmt"
	"io"
	"log/slog"
	"sort"
	"strings"

	"github.com/jiatastic/exdraw/internal/excalidraw"
	"github.com/jiatastic/exdraw/internal/graph"
	"github.com/jiatastic/exdraw/internal/layout"
	"github.com/jiatastic/exdraw/internal/style"
)

// Request is one generation request. Exactly one of Description and Graph
// is used; Graph wins when both are set.
type Request struct {
	Description   string          `json:"description,omitempty" yaml:"description,omitempty"`
	Kind          string          `json:"type,omitempty" yaml:"type,omitempty"`
	Theme         string          `json:"theme,omitempty" yaml:"theme,omitempty"`
	Style         string          `json:"style,omitempty" yaml:"style,omitempty"`
	Badges        bool            `json:"badges,omitempty" yaml:"badges,omitempty"`
	Direction     string          `json:"direction,omitempty" yaml:"direction,omitempty"`
	MindmapLayout string          `json:"mindmap_layout,omitempty" yaml:"mindmap_layout,omitempty"`
	Graph         *graph.NodeList `json:"graph,omitempty" yaml:"graph,omitempty"`
}

// Result is a generated document with its serialized form.
type Result struct {
	Fingerprint string
	Document    *excalidraw.Document
	JSON        []byte
	Summary     Summary
}

// Summary describes a generated document.
type Summary struct {
	Kind      string         `json:"type" yaml:"type"`
	Theme     string         `json:"theme" yaml:"theme"`
	Style     string         `json:"style" yaml:"style"`
	Nodes     int            `json:"nodes" yaml:"nodes"`
	Edges     int            `json:"edges" yaml:"edges"`
	Elements  map[string]int `json:"elements" yaml:"elements"`
	NodeTypes map[string]int `json:"node_types" yaml:"node_types"`
	Layers    []string       `json:"layers,omitempty" yaml:"layers,omitempty"`
}

// Engine holds the settings shared by every request.
type Engine struct {
	Layout layout.Options
	Source string
	logger *slog.Logger
}

// New creates an engine. A nil logger discards output.
func New(opts layout.Options, logger *slog.Logger) *Engine {
	if logger == nil {
		logger = slog.New(slog.NewTextHandler(io.Discard, nil))
	}
	return &Engine{Layout: opts, Source: excalidraw.DefaultSource, logger: logger}
}

// normalized is a request with defaults filled in and names validated.
type normalized struct {
	Request
	kind    graph.Kind
	profile style.Profile
	opts    layout.Options
}

func (e *Engine) normalize(req Request) (normalized, error) {
	n := normalized{Request: req, opts: e.Layout}

	if strings.TrimSpace(n.Kind) == "" {
		n.Kind = string(graph.KindFlowchart)
	}
	kind, err := graph.ParseKind(n.Kind)
	if err != nil {
		return n, err
	}
	n.kind = kind
	n.Kind = string(kind)

	n.Theme = strings.ToLower(strings.TrimSpace(n.Theme))
	n.Style = strings.ToLower(strings.TrimSpace(n.Style))
	if n.Theme == "" {
		n.Theme = style.DefaultTheme
	}
	if n.Style == "" {
		n.Style = style.DefaultStyle
	}
	if n.profile, err = style.Lookup(n.Theme, n.Style); err != nil {
		return n, err
	}

	if n.Direction != "" {
		n.opts.Direction = layout.Direction(strings.ToLower(n.Direction))
	}
	if n.MindmapLayout != "" {
		n.opts.Mindmap = layout.MindmapStyle(strings.ToLower(n.MindmapLayout))
	}
	if err := n.opts.Validate(); err != nil {
		return n, err
	}
	n.Direction = string(n.opts.Direction)
	n.MindmapLayout = string(n.opts.Mindmap)
	n.Description = strings.TrimSpace(n.Description)
	return n, nil
}

// Fingerprint returns the SHA-256 of the normalized request and the
// engine settings. Requests with equal fingerprints produce identical
// documents.
func (e *Engine) Fingerprint(req Request) (string, error) {
	n, err := e.normalize(req)
	if err != nil {
		return "", err
	}
	return e.fingerprint(n)
}

func (e *Engine) fingerprint(n normalized) (string, error) {
	payload := struct {
		Request Request        `json:"request"`
		Layout  layout.Options `json:"layout"`
		Source  string         `json:"source"`
	}{n.Request, n.opts, e.Source}
	data, err := json.Marshal(payload)
	if err != nil {
		return "", fmt.Errorf("fingerprint request: %w", err)
	}
	sum := sha256.Sum256(data)
	return hex.EncodeToString(sum[:]), nil
}

// Generate runs the whole pipeline. On error no document is returned.
func (e *Engine) Generate(req Request) (*Result, error) {
	n, err := e.normalize(req)
	if err != nil {
		return nil, err
	}
	fp, err := e.fingerprint(n)
	if err != nil {
		return nil, err
	}

	g, err := e.buildGraph(n)
	if err != nil {
		return nil, err
	}
	graph.Annotate(g, n.kind, graph.AnnotateOptions{Badges: n.Badges})
	e.logger.Debug("graph built", "kind", n.kind, "nodes", g.NodeCount(), "edges", g.EdgeCount())

	res, err := layout.Compute(g, n.kind, n.opts)
	if err != nil {
		return nil, fmt.Errorf("layout: %w", err)
	}
	lo, hi := res.Bounds()
	e.logger.Debug("layout computed", "bands", len(res.Bands), "width", hi.X-lo.X, "height", hi.Y-lo.Y)

	doc, err := excalidraw.Assemble(excalidraw.Input{
		Graph:       g,
		Layout:      res,
		Profile:     n.profile,
		Fingerprint: fp,
		Source:      e.Source,
		FontSize:    n.opts.FontSize,
		CharWidth:   n.opts.CharWidth,
		BindingGap:  n.opts.BindingGap,
	})
	if err != nil {
		return nil, fmt.Errorf("assemble: %w", err)
	}
	data, err := excalidraw.Marshal(doc)
	if err != nil {
		return nil, err
	}
	e.logger.Debug("document assembled", "elements", len(doc.Elements), "bytes", len(data))

	return &Result{
		Fingerprint: fp,
		Document:    doc,
		JSON:        data,
		Summary:     summarize(n, g, doc),
	}, nil
}

func (e *Engine) buildGraph(n normalized) (*graph.Graph, error) {
	if n.Graph != nil {
		return graph.FromNodeList(n.Graph)
	}
	return graph.Parse(n.Description, n.kind)
}

func summarize(n normalized, g *graph.Graph, doc *excalidraw.Document) Summary {
	s := Summary{
		Kind:      n.Kind,
		Theme:     n.Theme,
		Style:     n.Style,
		Nodes:     g.NodeCount(),
		Edges:     g.EdgeCount(),
		Elements:  doc.Count(),
		NodeTypes: make(map[string]int),
	}
	layers := make(map[graph.Layer]bool)
	for _, node := range g.Nodes() {
		s.NodeTypes[string(node.Type)]++
		layers[node.Layer] = true
	}
	if n.kind == graph.KindArchitecture {
		ordered := make([]graph.Layer, 0, len(layers))
		for l := range layers {
			ordered = append(ordered, l)
		}
		sort.Slice(ordered, func(i, j int) bool { return ordered[i] < ordered[j] })
		for _, l := range ordered {
			s.Layers = append(s.Layers, l.String())
		}
	}
	return s
}
