package graph

import (
	"errors"
	"reflect"
	"testing"
)

func labels(g *Graph) []string {
	out := make([]string, 0, g.NodeCount())
	for _, n := range g.Nodes() {
		out = append(out, n.Label)
	}
	return out
}

func edgePairs(g *Graph) [][2]string {
	out := make([][2]string, 0, g.EdgeCount())
	for _, e := range g.Edges() {
		from, _ := g.Node(e.From)
		to, _ := g.Node(e.To)
		out = append(out, [2]string{from.Label, to.Label})
	}
	return out
}

func TestParse_Flowchart(t *testing.T) {
	tests := []struct {
		name       string
		input      string
		wantLabels []string
		wantEdges  int
	}{
		{
			name:       "arrow chain",
			input:      "Start -> Validate input -> Save -> End",
			wantLabels: []string{"Start", "Validate input", "Save", "End"},
			wantEdges:  3,
		},
		{
			name:       "unicode arrow",
			input:      "Login → Dashboard",
			wantLabels: []string{"Login", "Dashboard"},
			wantEdges:  1,
		},
		{
			name:       "word separators",
			input:      "Open app then Sign in next Browse",
			wantLabels: []string{"Open app", "Sign in", "Browse"},
			wantEdges:  2,
		},
		{
			name:       "then inside a word is not a separator",
			input:      "Visit Athens -> Return",
			wantLabels: []string{"Visit Athens", "Return"},
			wantEdges:  1,
		},
		{
			name:       "whitespace collapsed",
			input:      "  Fetch    data  ->   Render ",
			wantLabels: []string{"Fetch data", "Render"},
			wantEdges:  1,
		},
		{
			name:       "commas stay in flowchart labels",
			input:      "Read, parse -> Write",
			wantLabels: []string{"Read, parse", "Write"},
			wantEdges:  1,
		},
		{
			name:       "duplicate label collapses to first spelling",
			input:      "Check -> Retry -> check",
			wantLabels: []string{"Check", "Retry"},
			wantEdges:  2,
		},
		{
			name:       "single node",
			input:      "Idle",
			wantLabels: []string{"Idle"},
			wantEdges:  0,
		},
		{
			name:       "self loop dropped",
			input:      "Poll -> Poll -> Done",
			wantLabels: []string{"Poll", "Done"},
			wantEdges:  1,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			g, err := Parse(tt.input, KindFlowchart)
			if err != nil {
				t.Fatalf("Parse() error = %v", err)
			}
			if got := labels(g); !reflect.DeepEqual(got, tt.wantLabels) {
				t.Errorf("labels = %v, want %v", got, tt.wantLabels)
			}
			if g.EdgeCount() != tt.wantEdges {
				t.Errorf("EdgeCount() = %d, want %d", g.EdgeCount(), tt.wantEdges)
			}
			if err := g.Validate(); err != nil {
				t.Errorf("Validate() error = %v", err)
			}
		})
	}
}

func TestParse_Architecture(t *testing.T) {
	g, err := Parse("Web, Mobile -> API Gateway -> Orders, Users | Orders -> PostgreSQL", KindArchitecture)
	if err != nil {
		t.Fatalf("Parse() error = %v", err)
	}

	wantLabels := []string{"Web", "Mobile", "API Gateway", "Orders", "Users", "PostgreSQL"}
	if got := labels(g); !reflect.DeepEqual(got, wantLabels) {
		t.Errorf("labels = %v, want %v", got, wantLabels)
	}

	wantEdges := [][2]string{
		{"Web", "API Gateway"},
		{"Mobile", "API Gateway"},
		{"API Gateway", "Orders"},
		{"API Gateway", "Users"},
		{"Orders", "PostgreSQL"},
	}
	if got := edgePairs(g); !reflect.DeepEqual(got, wantEdges) {
		t.Errorf("edges = %v, want %v", got, wantEdges)
	}
}

func TestParse_ArchitectureComponentList(t *testing.T) {
	g, err := Parse("Frontend, Backend, Database", KindArchitecture)
	if err != nil {
		t.Fatalf("Parse() error = %v", err)
	}
	if g.NodeCount() != 3 || g.EdgeCount() != 0 {
		t.Errorf("got %d nodes / %d edges, want 3 / 0", g.NodeCount(), g.EdgeCount())
	}
}

func TestParse_FlowSeparators(t *testing.T) {
	tests := []struct {
		name  string
		input string
		kind  Kind
	}{
		{"semicolon flowchart", "A -> B; C -> D", KindFlowchart},
		{"pipe flowchart", "A -> B | C -> D", KindFlowchart},
		{"full width semicolon", "A -> B；C -> D", KindFlowchart},
		{"semicolon architecture", "A -> B; C -> D", KindArchitecture},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			g, err := Parse(tt.input, tt.kind)
			if err != nil {
				t.Fatalf("Parse() error = %v", err)
			}
			if got, want := labels(g), []string{"A", "B", "C", "D"}; !reflect.DeepEqual(got, want) {
				t.Errorf("labels = %v, want %v", got, want)
			}
			if got, want := edgePairs(g), [][2]string{{"A", "B"}, {"C", "D"}}; !reflect.DeepEqual(got, want) {
				t.Errorf("edges = %v, want %v", got, want)
			}
		})
	}
}

func TestParse_MultiLine(t *testing.T) {
	g, err := Parse("A -> B\n\nB -> C\n", KindArchitecture)
	if err != nil {
		t.Fatalf("Parse() error = %v", err)
	}
	if g.NodeCount() != 3 || g.EdgeCount() != 2 {
		t.Errorf("got %d nodes / %d edges, want 3 / 2", g.NodeCount(), g.EdgeCount())
	}
}

func TestParse_Mindmap(t *testing.T) {
	tests := []struct {
		name      string
		input     string
		wantRoot  string
		wantChild []string
	}{
		{"colon", "A: B, C", "A", []string{"B", "C"}},
		{"full width colon", "主题：想法、计划", "主题", []string{"想法", "计划"}},
		{"no colon", "Goals, Health, Work", "Goals", []string{"Health", "Work"}},
		{"newlines", "Trip:\nFlights,\nHotels\nFood", "Trip", []string{"Flights", "Hotels", "Food"}},
		{"semicolons", "Plan: Read; Write", "Plan", []string{"Read", "Write"}},
		{"root only", "Alone", "Alone", nil},
		{"duplicate children", "A: B, b, C", "A", []string{"B", "C"}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			g, err := Parse(tt.input, KindMindmap)
			if err != nil {
				t.Fatalf("Parse() error = %v", err)
			}
			got := labels(g)
			if got[0] != tt.wantRoot {
				t.Errorf("root = %q, want %q", got[0], tt.wantRoot)
			}
			if want := append([]string{}, tt.wantChild...); !reflect.DeepEqual(got[1:], want) {
				t.Errorf("children = %v, want %v", got[1:], tt.wantChild)
			}
			root := g.Nodes()[0]
			if g.EdgeCount() != len(tt.wantChild) {
				t.Errorf("EdgeCount() = %d, want %d", g.EdgeCount(), len(tt.wantChild))
			}
			for _, e := range g.Edges() {
				if e.From != root.ID {
					t.Errorf("edge %s starts at %s, want root %s", e.ID, e.From, root.ID)
				}
			}
		})
	}
}

func TestParse_Errors(t *testing.T) {
	tests := []struct {
		name  string
		input string
		kind  Kind
		want  error
	}{
		{"empty", "", KindFlowchart, ErrMalformedDescription},
		{"whitespace", "  \n\t ", KindArchitecture, ErrMalformedDescription},
		{"trailing arrow", "A -> B ->", KindFlowchart, ErrMalformedDescription},
		{"leading arrow", "-> B", KindFlowchart, ErrMalformedDescription},
		{"double arrow", "A -> -> B", KindArchitecture, ErrMalformedDescription},
		{"empty flow", "A -> B | | C", KindArchitecture, ErrMalformedDescription},
		{"trailing semicolon", "A -> B;", KindFlowchart, ErrMalformedDescription},
		{"empty flow between semicolons", "A -> B;; C -> D", KindFlowchart, ErrMalformedDescription},
		{"empty group item", "A, -> B", KindArchitecture, ErrMalformedDescription},
		{"mindmap empty root", ": B, C", KindMindmap, ErrMalformedDescription},
		{"mindmap no children", "A:", KindMindmap, ErrMalformedDescription},
		{"mindmap empty item", "A: B,,C", KindMindmap, ErrMalformedDescription},
		{"unknown kind", "A -> B", Kind("sequence"), ErrUnknownDiagramKind},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			g, err := Parse(tt.input, tt.kind)
			if !errors.Is(err, tt.want) {
				t.Fatalf("Parse() error = %v, want %v", err, tt.want)
			}
			if g != nil {
				t.Errorf("Parse() returned a partial graph with %d nodes", g.NodeCount())
			}
		})
	}
}

func TestDescriptionError_Message(t *testing.T) {
	_, err := Parse("A -> -> B", KindFlowchart)
	var de *DescriptionError
	if !errors.As(err, &de) {
		t.Fatalf("error %v is not a *DescriptionError", err)
	}
	if de.Flow != 1 || de.Step != 2 {
		t.Errorf("position = flow %d step %d, want flow 1 step 2", de.Flow, de.Step)
	}
}

func TestParseKind(t *testing.T) {
	tests := []struct {
		in      string
		want    Kind
		wantErr bool
	}{
		{"flowchart", KindFlowchart, false},
		{" Architecture ", KindArchitecture, false},
		{"mind-map", KindMindmap, false},
		{"gantt", "", true},
	}
	for _, tt := range tests {
		got, err := ParseKind(tt.in)
		if (err != nil) != tt.wantErr {
			t.Errorf("ParseKind(%q) error = %v, wantErr %v", tt.in, err, tt.wantErr)
			continue
		}
		if got != tt.want {
			t.Errorf("ParseKind(%q) = %q, want %q", tt.in, got, tt.want)
		}
	}
}
