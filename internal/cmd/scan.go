// Package cmd implements the scan command for exdraw CLI.
package cmd

import (
	"encoding/json"
	"fmt"

	"github.com/spf13/cobra"

	"github.com/jiatastic/exdraw/internal/output"
	"github.com/jiatastic/exdraw/internal/scan"
)

// scanCmd represents the scan command
var scanCmd = &cobra.Command{
	Use:   "scan [path]",
	Short: "Scan a Python backend and report detected components",
	Long: `Scan walks the specified directory (or current directory if none given),
parses Python files with tree-sitter and detects backend components:
web framework and route count, auth, SQL database, Redis, task workers,
Kafka and outbound HTTP clients.

The scan process:
  1. Skips dependency and build directories (virtualenvs, node_modules,
     caches, anything matching scan.exclude)
  2. Parses each .py file; files with syntax errors are skipped
  3. Collects imports, route decorators and router construction
  4. Maps the signals onto architecture nodes and edges

Per-file signals are cached by content hash in .exdraw/cache.db.

Use --emit to print the node list JSON accepted by 'exdraw generate --graph'.`,
	Example: `  exdraw scan
  exdraw scan ./backend --focus all
  exdraw scan --emit > nodes.json`,
	Args: cobra.MaximumNArgs(1),
	RunE: runScan,
}

// Command-line flags
var (
	scanFocus   string
	scanExclude []string
	scanEmit    bool
	scanForce   bool
)

func init() {
	rootCmd.AddCommand(scanCmd)

	scanCmd.Flags().StringVar(&scanFocus, "focus", "", "Component focus: backend|all (default from config)")
	scanCmd.Flags().StringSliceVar(&scanExclude, "exclude", nil, "Extra directory patterns to skip (comma-separated globs)")
	scanCmd.Flags().BoolVar(&scanEmit, "emit", false, "Print the node list JSON instead of a report")
	scanCmd.Flags().BoolVar(&scanForce, "force", false, "Ignore cached per-file signals")
}

func runScan(cmd *cobra.Command, args []string) error {
	cfg, cwd, err := loadConfig()
	if err != nil {
		return err
	}
	logger := newLogger()

	root := "."
	if len(args) > 0 {
		root = args[0]
	}
	opts := scan.Options{
		Focus:   cfg.Scan.Focus,
		Exclude: append(append([]string(nil), cfg.Scan.Exclude...), scanExclude...),
		Logger:  logger,
	}
	if scanFocus != "" {
		opts.Focus = scanFocus
	}

	if c := openCache(cfg, cwd, logger); c != nil {
		defer c.Close()
		if scanForce {
			if err := c.ClearFileIndex(); err != nil {
				return err
			}
		}
		opts.Cache = c
	}

	res, err := scan.Project(root, opts)
	if err != nil {
		return err
	}

	if scanEmit {
		enc := json.NewEncoder(cmd.OutOrStdout())
		enc.SetIndent("", "  ")
		return enc.Encode(res.NodeList)
	}

	out := output.ScanOutput{
		Root:       res.Root,
		Focus:      opts.Focus,
		Files:      res.Files,
		Skipped:    res.Skipped,
		CacheHits:  res.CacheHits,
		Signals:    res.Signals,
		TopImports: res.TopImports,
		Nodes:      []string{},
		Edges:      []string{},
	}
	for _, n := range res.NodeList.Nodes {
		out.Nodes = append(out.Nodes, fmt.Sprintf("%s: %s", n.Key, n.Label))
	}
	for _, e := range res.NodeList.Edges {
		edge := e.Source + " -> " + e.Target
		if e.Label != "" {
			edge += " (" + e.Label + ")"
		}
		out.Edges = append(out.Edges, edge)
	}
	return printOutput(cmd.OutOrStdout(), cfg, out)
}
