package output

// ClassifyOutput is the result of exdraw classify.
type ClassifyOutput struct {
	Labels []LabelClass `yaml:"labels" json:"labels"`
}

// LabelClass is the classification of one label.
type LabelClass struct {
	// Label is the input text after whitespace cleanup
	Label string `yaml:"label" json:"label"`

	// Type is the inferred node type, "generic" when no rule matched
	Type string `yaml:"type" json:"type"`

	// Layer is the architecture band the label would be placed in
	Layer string `yaml:"layer" json:"layer"`

	// Role is the flowchart role: process, terminal or decision
	Role string `yaml:"role" json:"role"`

	// Badge is the type badge, empty for generic nodes
	Badge string `yaml:"badge,omitempty" json:"badge,omitempty"`
}

// ThemesOutput is the result of exdraw themes.
type ThemesOutput struct {
	Themes    []ThemeInfo `yaml:"themes" json:"themes"`
	Styles    []string    `yaml:"styles" json:"styles"`
	Kinds     []string    `yaml:"types" json:"types"`
	NodeTypes []TypeInfo  `yaml:"node_types" json:"node_types"`
}

// ThemeInfo describes one theme.
type ThemeInfo struct {
	Name        string `yaml:"name" json:"name"`
	Description string `yaml:"description" json:"description"`
	Stroke      string `yaml:"stroke" json:"stroke"`
	Fill        string `yaml:"fill" json:"fill"`
	FillStyle   string `yaml:"fill_style" json:"fill_style"`
	Roughness   int    `yaml:"roughness" json:"roughness"`
	FontFamily  int    `yaml:"font_family" json:"font_family"`
}

// TypeInfo describes one node type in the pro palette.
type TypeInfo struct {
	Type   string `yaml:"type" json:"type"`
	Badge  string `yaml:"badge,omitempty" json:"badge,omitempty"`
	Stroke string `yaml:"stroke" json:"stroke"`
	Fill   string `yaml:"fill" json:"fill"`
}

// GenerateOutput is printed by exdraw generate --summary after the
// document has been written.
type GenerateOutput struct {
	Output      string         `yaml:"output" json:"output"`
	Fingerprint string         `yaml:"fingerprint" json:"fingerprint"`
	Cached      bool           `yaml:"cached" json:"cached"`
	Kind        string         `yaml:"type" json:"type"`
	Theme       string         `yaml:"theme" json:"theme"`
	Style       string         `yaml:"style" json:"style"`
	Nodes       int            `yaml:"nodes" json:"nodes"`
	Edges       int            `yaml:"edges" json:"edges"`
	Elements    map[string]int `yaml:"elements" json:"elements"`
	NodeTypes   map[string]int `yaml:"node_types" json:"node_types"`
	Layers      []string       `yaml:"layers,omitempty" json:"layers,omitempty"`
}

// HistoryOutput is the result of exdraw history.
type HistoryOutput struct {
	Entries []HistoryEntry `yaml:"entries" json:"entries"`
	Count   int            `yaml:"count" json:"count"`
}

// HistoryEntry is one cached generation.
type HistoryEntry struct {
	Fingerprint string `yaml:"fingerprint" json:"fingerprint"`
	Kind        string `yaml:"type" json:"type"`
	Theme       string `yaml:"theme" json:"theme"`
	Style       string `yaml:"style" json:"style"`
	Description string `yaml:"description,omitempty" json:"description,omitempty"`
	Elements    int    `yaml:"elements" json:"elements"`
	CreatedAt   string `yaml:"created_at" json:"created_at"`
	Hits        int    `yaml:"hits" json:"hits"`
}

// ScanOutput is the result of exdraw scan.
type ScanOutput struct {
	Root       string   `yaml:"root" json:"root"`
	Focus      string   `yaml:"focus" json:"focus"`
	Files      int      `yaml:"files" json:"files"`
	Skipped    int      `yaml:"skipped" json:"skipped"`
	CacheHits  int      `yaml:"cache_hits" json:"cache_hits"`
	Signals    any      `yaml:"signals" json:"signals"`
	TopImports []string `yaml:"top_imports,omitempty" json:"top_imports,omitempty"`
	Nodes      []string `yaml:"nodes" json:"nodes"`
	Edges      []string `yaml:"edges" json:"edges"`
}
