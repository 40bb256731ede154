// Package style resolves theme and style choices into concrete element
// styling.
package style

import (
	"errors"
	"fmt"
	"strings"

	"github.com/jiatastic/exdraw/internal/graph"
)

// ErrUnsupportedStyle is returned for a theme or style outside the table.
var ErrUnsupportedStyle = errors.New("unsupported style")

// Excalidraw font families.
const (
	FontHand   = 1 // Virgil
	FontNormal = 2 // Helvetica
	FontCode   = 3 // Cascadia
)

const (
	FillSolid    = "solid"
	FillHachure  = "hachure"
	StrokeSolid  = "solid"
	StrokeDashed = "dashed"

	DefaultTheme = "modern"
	DefaultStyle = "pro"

	defaultStrokeWidth = 2
)

// Spec is the resolved styling for one element.
type Spec struct {
	StrokeColor string `json:"strokeColor" yaml:"stroke_color"`
	FillColor   string `json:"fillColor" yaml:"fill_color"`
	FillStyle   string `json:"fillStyle" yaml:"fill_style"`
	FontFamily  int    `json:"fontFamily" yaml:"font_family"`
	Roughness   int    `json:"roughness" yaml:"roughness"`
	StrokeWidth int    `json:"strokeWidth" yaml:"stroke_width"`
	StrokeStyle string `json:"strokeStyle" yaml:"stroke_style"`
	TextColor   string `json:"textColor" yaml:"text_color"`
}

// Theme is a base palette plus rendering texture.
type Theme struct {
	Name        string
	Description string
	Stroke      string // shape outline
	Fill        string // shape background
	Line        string // arrows
	Background  string // canvas
	FillStyle   string
	Roughness   int
	FontFamily  int
}

// Themes available for diagram generation.
var Themes = map[string]Theme{
	"modern": {
		Name: "modern", Description: "Clean blue outlines on a light fill",
		Stroke: "#1971c2", Fill: "#e7f5ff", Line: "#1971c2", Background: "#ffffff",
		FillStyle: FillSolid, Roughness: 1, FontFamily: FontNormal,
	},
	"sketchy": {
		Name: "sketchy", Description: "Hand-drawn grey strokes with hatched fills",
		Stroke: "#495057", Fill: "#f8f9fa", Line: "#868e96", Background: "#ffffff",
		FillStyle: FillHachure, Roughness: 2, FontFamily: FontHand,
	},
	"technical": {
		Name: "technical", Description: "Crisp green blueprint lines in a monospace font",
		Stroke: "#2f9e44", Fill: "#ebfbee", Line: "#2f9e44", Background: "#ffffff",
		FillStyle: FillSolid, Roughness: 0, FontFamily: FontCode,
	},
	"colorful": {
		Name: "colorful", Description: "Bold red accents with a playful hand font",
		Stroke: "#e03131", Fill: "#fff5f5", Line: "#e03131", Background: "#ffffff",
		FillStyle: FillSolid, Roughness: 1, FontFamily: FontHand,
	},
}

// ThemeNames lists themes in display order.
var ThemeNames = []string{"modern", "sketchy", "technical", "colorful"}

// StyleNames lists styles in display order.
var StyleNames = []string{"pro", "basic"}

// Color is a stroke/fill pair.
type Color struct {
	Stroke string
	Fill   string
}

// TypeColors gives every node type its own palette entry for the pro style.
var TypeColors = map[graph.NodeType]Color{
	graph.TypeDatabase:     {Stroke: "#1971c2", Fill: "#d0ebff"},
	graph.TypeCache:        {Stroke: "#e03131", Fill: "#ffe3e3"},
	graph.TypeQueue:        {Stroke: "#f08c00", Fill: "#fff3bf"},
	graph.TypeLoadBalancer: {Stroke: "#6741d9", Fill: "#e5dbff"},
	graph.TypeGateway:      {Stroke: "#9c36b5", Fill: "#f3d9fa"},
	graph.TypeCDN:          {Stroke: "#0c8599", Fill: "#c5f6fa"},
	graph.TypeAuth:         {Stroke: "#c2255c", Fill: "#ffdeeb"},
	graph.TypeStorage:      {Stroke: "#5c940d", Fill: "#e9fac8"},
	graph.TypeService:      {Stroke: "#2f9e44", Fill: "#d3f9d8"},
	graph.TypeContainer:    {Stroke: "#3b5bdb", Fill: "#dbe4ff"},
	graph.TypeFunction:     {Stroke: "#e8590c", Fill: "#ffe8cc"},
	graph.TypeMonitoring:   {Stroke: "#099268", Fill: "#c3fae8"},
	graph.TypeGeneric:      {Stroke: "#495057", Fill: "#f1f3f5"},
}

// Profile is one (theme, style) combination.
type Profile struct {
	Theme   Theme
	Style   string
	PerType bool // pro: color by node type
}

type tableKey struct {
	theme string
	style string
}

var table = map[tableKey]Profile{
	{"modern", "pro"}:      {Theme: Themes["modern"], Style: "pro", PerType: true},
	{"modern", "basic"}:    {Theme: Themes["modern"], Style: "basic"},
	{"sketchy", "pro"}:     {Theme: Themes["sketchy"], Style: "pro", PerType: true},
	{"sketchy", "basic"}:   {Theme: Themes["sketchy"], Style: "basic"},
	{"technical", "pro"}:   {Theme: Themes["technical"], Style: "pro", PerType: true},
	{"technical", "basic"}: {Theme: Themes["technical"], Style: "basic"},
	{"colorful", "pro"}:    {Theme: Themes["colorful"], Style: "pro", PerType: true},
	{"colorful", "basic"}:  {Theme: Themes["colorful"], Style: "basic"},
}

// Lookup returns the profile for a theme and style. Names are
// case-insensitive; anything outside the table fails.
func Lookup(theme, style string) (Profile, error) {
	k := tableKey{
		theme: strings.ToLower(strings.TrimSpace(theme)),
		style: strings.ToLower(strings.TrimSpace(style)),
	}
	p, ok := table[k]
	if !ok {
		if _, known := Themes[k.theme]; !known {
			return Profile{}, fmt.Errorf("%w: theme %q (valid: %s)", ErrUnsupportedStyle, theme, strings.Join(ThemeNames, ", "))
		}
		return Profile{}, fmt.Errorf("%w: style %q (valid: %s)", ErrUnsupportedStyle, style, strings.Join(StyleNames, ", "))
	}
	return p, nil
}

// Resolve returns the styling of a node of type t.
func Resolve(theme, style string, t graph.NodeType) (Spec, error) {
	p, err := Lookup(theme, style)
	if err != nil {
		return Spec{}, err
	}
	return p.Node(t), nil
}

// Node returns the styling for a node shape of type t.
func (p Profile) Node(t graph.NodeType) Spec {
	s := Spec{
		StrokeColor: p.Theme.Stroke,
		FillColor:   p.Theme.Fill,
		FillStyle:   p.Theme.FillStyle,
		FontFamily:  p.Theme.FontFamily,
		Roughness:   p.Theme.Roughness,
		StrokeWidth: defaultStrokeWidth,
		StrokeStyle: StrokeSolid,
		TextColor:   p.Theme.Stroke,
	}
	if p.PerType {
		c, ok := TypeColors[t]
		if !ok {
			c = TypeColors[graph.TypeGeneric]
		}
		s.StrokeColor = c.Stroke
		s.FillColor = c.Fill
		s.TextColor = c.Stroke
	}
	return s
}

// Edge returns the styling for arrows. Edges never depend on node types.
func (p Profile) Edge() Spec {
	return Spec{
		StrokeColor: p.Theme.Line,
		FillColor:   "transparent",
		FillStyle:   p.Theme.FillStyle,
		FontFamily:  p.Theme.FontFamily,
		Roughness:   p.Theme.Roughness,
		StrokeWidth: defaultStrokeWidth,
		StrokeStyle: StrokeSolid,
		TextColor:   p.Theme.Line,
	}
}

// Text returns the styling for free text such as edge labels.
func (p Profile) Text() Spec {
	s := p.Edge()
	s.StrokeColor = p.Theme.Stroke
	s.TextColor = p.Theme.Stroke
	return s
}
