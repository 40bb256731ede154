package graph

import (
	"fmt"
	"regexp"
	"strings"
	"unicode/utf8"

	"golang.org/x/text/cases"
)

const (
	chainSeparator = "->"
	flowSeparators = "|;；"

	groupDelimiters = ",，"
	childDelimiters = ",，、;；"
)

// "then" and "next" only separate steps when surrounded by whitespace.
var wordSeparator = regexp.MustCompile(`(?i)\s+(?:then|next)\s+`)

// Parse turns a description into an unclassified graph. Nodes get ids in
// first-appearance order and repeated labels collapse into the first node.
//
// Flowchart and architecture descriptions are chains ("A -> B -> C"); lines,
// "|" and ";" separate independent flows. Architecture steps may also be comma
// groups ("Web, Mobile -> API") that fan out to every member of the next
// step. Mind maps use "Root: child, child".
func Parse(description string, kind Kind) (*Graph, error) {
	desc := strings.TrimSpace(description)
	if desc == "" {
		return nil, &DescriptionError{Reason: "description is empty"}
	}

	switch kind {
	case KindFlowchart:
		return parseChains(desc, false)
	case KindArchitecture:
		return parseChains(desc, true)
	case KindMindmap:
		return parseMindmap(desc)
	default:
		return nil, fmt.Errorf("%w: %q", ErrUnknownDiagramKind, string(kind))
	}
}

func parseChains(desc string, groups bool) (*Graph, error) {
	flows, err := splitFlows(normalizeSeparators(desc))
	if err != nil {
		return nil, err
	}

	g := New()
	for fi, flow := range flows {
		var prev []*Node
		for si, step := range strings.Split(flow, chainSeparator) {
			labels, reason := splitStep(step, groups)
			if reason != "" {
				return nil, &DescriptionError{Flow: fi + 1, Step: si + 1, Reason: reason}
			}

			cur := make([]*Node, 0, len(labels))
			for _, label := range labels {
				n, _ := g.AddNode(LabelKey(label), label)
				cur = append(cur, n)
			}
			for _, from := range prev {
				for _, to := range cur {
					g.AddEdge(from.ID, to.ID, "")
				}
			}
			prev = cur
		}
	}
	return g, nil
}

func normalizeSeparators(s string) string {
	s = strings.ReplaceAll(s, "→", chainSeparator)
	return wordSeparator.ReplaceAllString(s, " "+chainSeparator+" ")
}

// splitFlows splits on newlines, "|" and ";". Blank lines are skipped; an
// empty operand around "|" or ";" is an error.
func splitFlows(desc string) ([]string, error) {
	var flows []string
	for _, line := range strings.Split(desc, "\n") {
		if strings.TrimSpace(line) == "" {
			continue
		}
		for _, part := range splitAny(line, flowSeparators) {
			part = strings.TrimSpace(part)
			if part == "" {
				return nil, &DescriptionError{Flow: len(flows) + 1, Reason: `empty flow around "|" or ";"`}
			}
			flows = append(flows, part)
		}
	}
	return flows, nil
}

// splitStep returns the labels of one chain step, or a non-empty reason.
func splitStep(step string, groups bool) ([]string, string) {
	if !groups {
		label := CleanLabel(step)
		if label == "" {
			return nil, "empty step around " + chainSeparator
		}
		return []string{label}, ""
	}

	if CleanLabel(step) == "" {
		return nil, "empty step around " + chainSeparator
	}
	parts := splitAny(step, groupDelimiters)
	labels := make([]string, 0, len(parts))
	for _, p := range parts {
		label := CleanLabel(p)
		if label == "" {
			return nil, "empty item in comma group"
		}
		labels = append(labels, label)
	}
	return labels, ""
}

func parseMindmap(desc string) (*Graph, error) {
	var root string
	var items []string

	if i := strings.IndexAny(desc, ":："); i >= 0 {
		_, size := utf8.DecodeRuneInString(desc[i:])
		root = CleanLabel(desc[:i])
		if root == "" {
			return nil, &DescriptionError{Reason: "mind map root is empty"}
		}
		rest := strings.TrimSpace(desc[i+size:])
		if rest == "" {
			return nil, &DescriptionError{Reason: "no children after the root separator"}
		}
		var err error
		if items, err = splitChildren(rest); err != nil {
			return nil, err
		}
	} else {
		tokens, err := splitChildren(desc)
		if err != nil {
			return nil, err
		}
		root, items = tokens[0], tokens[1:]
	}

	g := New()
	rootNode, _ := g.AddNode(LabelKey(root), root)
	for _, label := range items {
		child, _ := g.AddNode(LabelKey(label), label)
		g.AddEdge(rootNode.ID, child.ID, "")
	}
	return g, nil
}

// splitChildren splits mind-map items on the child delimiters and newlines.
// A delimiter at the end of a line is tolerated when another line follows.
func splitChildren(s string) ([]string, error) {
	var lines []string
	for _, line := range strings.Split(s, "\n") {
		if line = strings.TrimSpace(line); line != "" {
			lines = append(lines, line)
		}
	}

	var items []string
	for li, line := range lines {
		if li < len(lines)-1 {
			line = strings.TrimRight(line, childDelimiters+" \t")
		}
		for _, p := range splitAny(line, childDelimiters) {
			label := CleanLabel(p)
			if label == "" {
				return nil, &DescriptionError{Reason: fmt.Sprintf("empty item %d in mind map", len(items)+1)}
			}
			items = append(items, label)
		}
	}
	return items, nil
}

// splitAny splits s on any rune in seps, keeping empty fields.
func splitAny(s, seps string) []string {
	var out []string
	start := 0
	for i, r := range s {
		if strings.ContainsRune(seps, r) {
			out = append(out, s[start:i])
			start = i + utf8.RuneLen(r)
		}
	}
	return append(out, s[start:])
}

// CleanLabel trims a label and collapses inner whitespace.
func CleanLabel(s string) string {
	return strings.Join(strings.Fields(s), " ")
}

// LabelKey is the identity used to collapse duplicate labels.
func LabelKey(label string) string {
	return cases.Fold().String(CleanLabel(label))
}
