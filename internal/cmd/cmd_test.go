package cmd

import (
	"bytes"
	"encoding/json"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/jiatastic/exdraw/internal/engine"
	"github.com/jiatastic/exdraw/internal/excalidraw"
	"github.com/jiatastic/exdraw/internal/layout"
	"github.com/jiatastic/exdraw/internal/mcp"
	"github.com/jiatastic/exdraw/internal/output"
)

// runRoot executes the root command in a fresh directory with reset flags.
func runRoot(t *testing.T, args ...string) (string, error) {
	t.Helper()
	t.Chdir(t.TempDir())

	genKind, genTheme, genStyle, genDirection, genMindmapLayout = "", "", "", "", ""
	genGraphFile, genProject, genFocus, genOutput = "", "", "", ""
	genBadges, genSummary, genNoCache = false, false, false
	outputFormat, configPath, verbose, forAgents = "", "", false, false

	var out bytes.Buffer
	rootCmd.SetOut(&out)
	rootCmd.SetErr(&bytes.Buffer{})
	rootCmd.SetIn(strings.NewReader(""))
	rootCmd.SetArgs(args)
	t.Cleanup(func() {
		rootCmd.SetOut(nil)
		rootCmd.SetErr(nil)
		rootCmd.SetIn(nil)
		rootCmd.SetArgs(nil)
	})
	err := rootCmd.Execute()
	return out.String(), err
}

func TestReadDescription(t *testing.T) {
	got, err := readDescription(strings.NewReader("ignored"), []string{"A", "->", "B"})
	if err != nil || got != "A -> B" {
		t.Fatalf("readDescription(args) = %q, %v", got, err)
	}

	got, err = readDescription(strings.NewReader("Start -> End\n"), nil)
	if err != nil || got != "Start -> End\n" {
		t.Fatalf("readDescription(stdin) = %q, %v", got, err)
	}

	got, err = readDescription(strings.NewReader("X -> Y"), []string{"-"})
	if err != nil || got != "X -> Y" {
		t.Fatalf("readDescription(-) = %q, %v", got, err)
	}
}

func TestNormalizeToolName(t *testing.T) {
	tests := map[string]string{
		"generate":          mcp.ToolGenerate,
		" Diagram ":         mcp.ToolGenerate,
		"classify":          mcp.ToolClassify,
		"themes":            mcp.ToolListThemes,
		"list":              mcp.ToolListThemes,
		"generate_diagram":  "generate_diagram",
		"something_unknown": "something_unknown",
	}
	for in, want := range tests {
		if got := normalizeToolName(in); got != want {
			t.Errorf("normalizeToolName(%q) = %q, want %q", in, got, want)
		}
	}
}

func TestBuildCommandInfo(t *testing.T) {
	info := buildCommandInfo(rootCmd)
	if info.Name != "exdraw" {
		t.Fatalf("root name = %q", info.Name)
	}

	names := make(map[string]CommandInfo)
	for _, sub := range info.Subcommands {
		names[sub.Name] = sub
	}
	for _, want := range []string{"generate", "classify", "themes", "scan", "serve", "call", "history", "init"} {
		if _, ok := names[want]; !ok {
			t.Errorf("missing subcommand %q", want)
		}
	}

	gen := names["generate"]
	if len(gen.Examples) == 0 {
		t.Error("generate has no examples")
	}
	var sawType bool
	for _, f := range gen.Flags {
		if f.Name == "type" && f.Shorthand == "t" {
			sawType = true
		}
		if f.Name == "badges" && !strings.Contains(f.Description, "below") {
			t.Errorf("badges flag should say the badge goes below the label: %q", f.Description)
		}
	}
	if !sawType {
		t.Error("generate is missing the -t/--type flag")
	}
}

func TestGenerateCommandWritesFile(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "flow.excalidraw")

	if _, err := runRoot(t, "generate", "--no-cache", "-o", path, "Start -> Check stock? -> Ship -> End"); err != nil {
		t.Fatalf("generate: %v", err)
	}

	data, err := os.ReadFile(path)
	if err != nil {
		t.Fatal(err)
	}
	doc, err := excalidraw.Unmarshal(data)
	if err != nil {
		t.Fatal(err)
	}
	if err := excalidraw.Validate(doc); err != nil {
		t.Fatalf("invalid document: %v", err)
	}
	if n := doc.Count()[excalidraw.TypeArrow]; n != 3 {
		t.Errorf("arrows = %d, want 3", n)
	}
	if n := doc.Count()[excalidraw.TypeDiamond]; n != 1 {
		t.Errorf("diamonds = %d, want 1", n)
	}
}

func TestGenerateCommandStdoutDeterministic(t *testing.T) {
	first, err := runRoot(t, "generate", "--no-cache", "-t", "mindmap", "Go: tooling, concurrency, types")
	if err != nil {
		t.Fatal(err)
	}
	second, err := runRoot(t, "generate", "--no-cache", "-t", "mindmap", "Go: tooling, concurrency, types")
	if err != nil {
		t.Fatal(err)
	}
	if first != second {
		t.Error("identical input produced different documents")
	}
	if !strings.Contains(first, `"type": "excalidraw"`) {
		t.Errorf("stdout is not a scene document: %.80s", first)
	}
}

func TestGenerateCommandSummary(t *testing.T) {
	path := filepath.Join(t.TempDir(), "arch.excalidraw")

	out, err := runRoot(t, "generate", "--format", "json", "--summary", "-o", path,
		"-t", "architecture", "Users -> API Gateway -> Orders Service -> Postgres")
	if err != nil {
		t.Fatal(err)
	}

	var summary output.GenerateOutput
	if err := json.Unmarshal([]byte(out), &summary); err != nil {
		t.Fatalf("summary is not JSON: %v\n%s", err, out)
	}
	if summary.Output != path || summary.Kind != "architecture" {
		t.Errorf("summary = %+v", summary)
	}
	if summary.Nodes != 4 || summary.Edges != 3 {
		t.Errorf("nodes/edges = %d/%d, want 4/3", summary.Nodes, summary.Edges)
	}
	if summary.Cached {
		t.Error("first generation reported as cached")
	}
}

func TestGenerateCommandErrors(t *testing.T) {
	_, err := runRoot(t, "generate", "--no-cache", "-t", "gantt", "A -> B")
	if engine.ErrorCode(err) != engine.CodeUnknownKind {
		t.Errorf("unknown type: code %q (%v)", engine.ErrorCode(err), err)
	}

	_, err = runRoot(t, "generate", "--no-cache", "A ->")
	if engine.ErrorCode(err) != engine.CodeMalformedDescription {
		t.Errorf("dangling arrow: code %q (%v)", engine.ErrorCode(err), err)
	}
}

func TestGenerateCommandFailureWritesNothing(t *testing.T) {
	path := filepath.Join(t.TempDir(), "out.excalidraw")

	for _, desc := range []string{"A -> -> B", "A -> B;", "   "} {
		out, err := runRoot(t, "generate", "-o", path, desc)
		if engine.ErrorCode(err) != engine.CodeMalformedDescription {
			t.Errorf("%q: code %q (%v)", desc, engine.ErrorCode(err), err)
		}
		if out != "" {
			t.Errorf("%q: unexpected stdout %q", desc, out)
		}
		if _, statErr := os.Stat(path); !os.IsNotExist(statErr) {
			t.Fatalf("%q: output file exists after a failed generation (stat err %v)", desc, statErr)
		}
	}
}

func TestClassifyCommand(t *testing.T) {
	out, err := runRoot(t, "classify", "--format", "json", "Redis Cache", "Kafka")
	if err != nil {
		t.Fatal(err)
	}
	var got output.ClassifyOutput
	if err := json.Unmarshal([]byte(out), &got); err != nil {
		t.Fatalf("output is not JSON: %v\n%s", err, out)
	}
	if len(got.Labels) != 2 || got.Labels[0].Type != "cache" || got.Labels[1].Type != "queue" {
		t.Errorf("labels = %+v", got.Labels)
	}
}

func TestCallPipe(t *testing.T) {
	srv, err := mcp.New(mcp.Config{Engine: engine.New(layout.DefaultOptions(), nil)})
	if err != nil {
		t.Fatal(err)
	}

	in := strings.NewReader(strings.Join([]string{
		`{"tool":"classify","args":{"label":"Postgres"}}`,
		``,
		`not json`,
		`{"tool":"generate"}`,
		`{"tool":"themes"}`,
	}, "\n"))
	var out bytes.Buffer
	if err := runCallPipe(srv, in, &out); err != nil {
		t.Fatal(err)
	}

	lines := strings.Split(strings.TrimSpace(out.String()), "\n")
	if len(lines) != 4 {
		t.Fatalf("got %d responses, want 4:\n%s", len(lines), out.String())
	}
	var resp []pipeResponse
	for _, l := range lines {
		var r pipeResponse
		if err := json.Unmarshal([]byte(l), &r); err != nil {
			t.Fatalf("bad response line %q: %v", l, err)
		}
		resp = append(resp, r)
	}
	if resp[0].Error != "" || !strings.Contains(string(resp[0].Result), `"database"`) {
		t.Errorf("classify response = %+v", resp[0])
	}
	if !strings.Contains(resp[1].Error, "invalid JSON") {
		t.Errorf("malformed line response = %+v", resp[1])
	}
	if resp[2].Error == "" {
		t.Errorf("generate without input should fail: %+v", resp[2])
	}
	if resp[3].Error != "" || !strings.Contains(string(resp[3].Result), "sketchy") {
		t.Errorf("themes response = %+v", resp[3])
	}
}
