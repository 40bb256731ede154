package layout

import (
	"strings"

	"golang.org/x/text/width"

	"github.com/jiatastic/exdraw/internal/graph"
)

// NodeText is the text drawn inside a node: the label, then the badge on
// its own line when present.
func NodeText(n *graph.Node) string {
	if n.Badge == "" {
		return n.Label
	}
	return n.Label + "\n" + n.Badge
}

// DisplayColumns counts terminal-style columns; wide and fullwidth East
// Asian runes take two.
func DisplayColumns(s string) int {
	cols := 0
	for _, r := range s {
		switch width.LookupRune(r).Kind() {
		case width.EastAsianWide, width.EastAsianFullwidth:
			cols += 2
		default:
			cols++
		}
	}
	return cols
}

// MeasureText estimates the rendered size of multi-line text.
func MeasureText(text string, fontSize, lineHeight, charWidth float64) (w, h float64) {
	lines := strings.Split(text, "\n")
	maxCols := 0
	for _, l := range lines {
		if c := DisplayColumns(l); c > maxCols {
			maxCols = c
		}
	}
	return float64(maxCols) * charWidth, float64(len(lines)) * fontSize * lineHeight
}
