package engine

import (
	"github.com/jiatastic/exdraw/internal/graph"
	"github.com/jiatastic/exdraw/internal/output"
	"github.com/jiatastic/exdraw/internal/style"
)

// ClassifyLabels runs the classifier over each label. Blank labels are
// skipped.
func ClassifyLabels(labels []string) output.ClassifyOutput {
	out := output.ClassifyOutput{Labels: []output.LabelClass{}}
	for _, raw := range labels {
		label := graph.CleanLabel(raw)
		if label == "" {
			continue
		}
		t := graph.Classify(label)
		out.Labels = append(out.Labels, output.LabelClass{
			Label: label,
			Type:  string(t),
			Layer: graph.InferLayer(label, "", t).String(),
			Role:  string(graph.ClassifyRole(label)),
			Badge: graph.Badge(t),
		})
	}
	return out
}

// ThemeCatalog describes the themes, styles, diagram types and the pro
// palette.
func ThemeCatalog() output.ThemesOutput {
	out := output.ThemesOutput{
		Styles: append([]string(nil), style.StyleNames...),
		Kinds:  graph.KindNames(),
	}
	for _, name := range style.ThemeNames {
		th := style.Themes[name]
		out.Themes = append(out.Themes, output.ThemeInfo{
			Name:        th.Name,
			Description: th.Description,
			Stroke:      th.Stroke,
			Fill:        th.Fill,
			FillStyle:   th.FillStyle,
			Roughness:   th.Roughness,
			FontFamily:  th.FontFamily,
		})
	}
	for _, t := range graph.NodeTypes() {
		c := style.TypeColors[t]
		out.NodeTypes = append(out.NodeTypes, output.TypeInfo{
			Type:   string(t),
			Badge:  graph.Badge(t),
			Stroke: c.Stroke,
			Fill:   c.Fill,
		})
	}
	return out
}
