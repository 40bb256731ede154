package cmd

import (
	"fmt"
	"io"
	"os"
	"strings"

	"github.com/spf13/cobra"

	"github.com/jiatastic/exdraw/internal/cache"
	"github.com/jiatastic/exdraw/internal/engine"
	"github.com/jiatastic/exdraw/internal/excalidraw"
	"github.com/jiatastic/exdraw/internal/graph"
	"github.com/jiatastic/exdraw/internal/output"
	"github.com/jiatastic/exdraw/internal/scan"
)

// generateCmd represents the generate command
var generateCmd = &cobra.Command{
	Use:   "generate [description]",
	Short: "Generate an Excalidraw diagram from a description",
	Long: `Generate an Excalidraw scene document from a text description, a node
list or a scanned Python project.

Description syntax:
  flowchart, architecture   "A -> B -> C"; flows on separate lines or split
                            by ';' or '|'. Architecture also accepts
                            "A, B" for parallel steps.
  mindmap                   "Root: child, child, child"

Input sources (first match wins):
  --project DIR   scan a Python backend and draw its architecture
  --graph FILE    read a node list ({nodes, edges}) from FILE, '-' for stdin
  arguments       joined with spaces
  stdin           when no arguments are given

The document is written to --output, or to stdout when --output is empty.
Identical inputs are served from the generation cache in .exdraw/cache.db.`,
	Example: `  exdraw generate "Start -> Valid input? -> Save -> End" -o flow.excalidraw
  exdraw generate -t architecture --theme sketchy "Users -> API Gateway -> Orders Service -> Postgres"
  exdraw generate -t mindmap --mindmap-layout fan "Cloud: compute, storage, network"
  exdraw generate --project . --focus all -o arch.excalidraw --summary
  cat nodes.json | exdraw generate --graph - -t architecture`,
	Args: cobra.ArbitraryArgs,
	RunE: runGenerate,
}

var (
	genKind          string
	genTheme         string
	genStyle         string
	genBadges        bool
	genDirection     string
	genMindmapLayout string
	genGraphFile     string
	genProject       string
	genFocus         string
	genOutput        string
	genSummary       bool
	genNoCache       bool
)

func init() {
	rootCmd.AddCommand(generateCmd)

	generateCmd.Flags().StringVarP(&genKind, "type", "t", "", "Diagram type: flowchart|architecture|mindmap (default from config)")
	generateCmd.Flags().StringVar(&genTheme, "theme", "", "Theme: modern|sketchy|technical|colorful")
	generateCmd.Flags().StringVar(&genStyle, "style", "", "Style: pro|basic")
	generateCmd.Flags().BoolVar(&genBadges, "badges", false, "Append a type badge below each label")
	generateCmd.Flags().StringVar(&genDirection, "direction", "", "Flowchart direction: right|down")
	generateCmd.Flags().StringVar(&genMindmapLayout, "mindmap-layout", "", "Mind map layout: radial|fan")
	generateCmd.Flags().StringVar(&genGraphFile, "graph", "", "Read a node list JSON file ('-' for stdin)")
	generateCmd.Flags().StringVar(&genProject, "project", "", "Scan a Python project directory")
	generateCmd.Flags().StringVar(&genFocus, "focus", "", "Scan focus with --project: backend|all")
	generateCmd.Flags().StringVarP(&genOutput, "output", "o", "", "Output file (default: stdout)")
	generateCmd.Flags().BoolVar(&genSummary, "summary", false, "Print a summary after writing --output")
	generateCmd.Flags().BoolVar(&genNoCache, "no-cache", false, "Bypass the generation cache")
}

func runGenerate(cmd *cobra.Command, args []string) error {
	cfg, cwd, err := loadConfig()
	if err != nil {
		return err
	}
	logger := newLogger()

	req := requestDefaults(cfg)
	if genKind != "" {
		req.Kind = genKind
	}
	if genTheme != "" {
		req.Theme = genTheme
	}
	if genStyle != "" {
		req.Style = genStyle
	}
	if cmd.Flags().Changed("badges") {
		req.Badges = genBadges
	}
	req.Direction = genDirection
	req.MindmapLayout = genMindmapLayout

	var c *cache.Cache
	if !genNoCache {
		if c = openCache(cfg, cwd, logger); c != nil {
			defer c.Close()
		}
	}

	switch {
	case genProject != "":
		focus := cfg.Scan.Focus
		if genFocus != "" {
			focus = genFocus
		}
		opts := scan.Options{Focus: focus, Exclude: cfg.Scan.Exclude, Logger: logger}
		if c != nil {
			opts.Cache = c
		}
		res, err := scan.Project(genProject, opts)
		if err != nil {
			return err
		}
		req.Graph = res.NodeList
		if genKind == "" {
			req.Kind = string(graph.KindArchitecture)
		}
	case genGraphFile != "":
		l, err := readNodeList(cmd.InOrStdin(), genGraphFile)
		if err != nil {
			return err
		}
		req.Graph = l
	default:
		desc, err := readDescription(cmd.InOrStdin(), args)
		if err != nil {
			return err
		}
		req.Description = desc
	}

	res, cached, err := newEngine(cfg, logger).GenerateCached(req, storeOf(c))
	if err != nil {
		return err
	}

	if genOutput == "" {
		_, err := cmd.OutOrStdout().Write(res.JSON)
		return err
	}
	if err := excalidraw.WriteFile(genOutput, res.Document); err != nil {
		return err
	}

	if genSummary {
		return printOutput(cmd.OutOrStdout(), cfg, generateOutput(genOutput, res, cached))
	}
	successColor.Fprint(cmd.ErrOrStderr(), "✓ ")
	fmt.Fprintf(cmd.ErrOrStderr(), "wrote %s (%d nodes, %d edges, %s)", genOutput, res.Summary.Nodes, res.Summary.Edges, res.Summary.Kind)
	if cached {
		noteColor.Fprint(cmd.ErrOrStderr(), " [cached]")
	}
	fmt.Fprintln(cmd.ErrOrStderr())
	return nil
}

func generateOutput(path string, res *engine.Result, cached bool) output.GenerateOutput {
	return output.GenerateOutput{
		Output:      path,
		Fingerprint: res.Fingerprint,
		Cached:      cached,
		Kind:        res.Summary.Kind,
		Theme:       res.Summary.Theme,
		Style:       res.Summary.Style,
		Nodes:       res.Summary.Nodes,
		Edges:       res.Summary.Edges,
		Elements:    res.Summary.Elements,
		NodeTypes:   res.Summary.NodeTypes,
		Layers:      res.Summary.Layers,
	}
}

// readDescription joins the arguments, or reads stdin when there are none.
func readDescription(stdin io.Reader, args []string) (string, error) {
	if len(args) > 0 && !(len(args) == 1 && args[0] == "-") {
		return strings.Join(args, " "), nil
	}
	data, err := io.ReadAll(stdin)
	if err != nil {
		return "", fmt.Errorf("reading description from stdin: %w", err)
	}
	return string(data), nil
}

func readNodeList(stdin io.Reader, path string) (*graph.NodeList, error) {
	if path == "-" {
		return graph.ReadNodeList(stdin)
	}
	f, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("open node list: %w", err)
	}
	defer f.Close()
	return graph.ReadNodeList(f)
}
