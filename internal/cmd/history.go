package cmd

import (
	"fmt"
	"time"

	"github.com/spf13/cobra"

	"github.com/jiatastic/exdraw/internal/output"
)

// historyCmd represents the history command
var historyCmd = &cobra.Command{
	Use:   "history",
	Short: "Show cached generations",
	Long: `Display the generations stored in the cache, newest first.

Each entry includes:
  - Fingerprint of the normalized request
  - Diagram type, theme and style
  - The description (empty for node list input)
  - Element count, creation time and cache hits

Use --clear to empty the cache, or --show to print a cached document.`,
	Example: `  exdraw history
  exdraw history --limit 50 --format json
  exdraw history --show 3fa1c2...
  exdraw history --clear`,
	Args: cobra.NoArgs,
	RunE: runHistory,
}

var (
	historyLimit int
	historyClear bool
	historyShow  string
)

func init() {
	rootCmd.AddCommand(historyCmd)

	historyCmd.Flags().IntVar(&historyLimit, "limit", 20, "Number of entries to show (0 for all)")
	historyCmd.Flags().BoolVar(&historyClear, "clear", false, "Delete every cached generation and file signal")
	historyCmd.Flags().StringVar(&historyShow, "show", "", "Print the cached document with this fingerprint")
}

func runHistory(cmd *cobra.Command, args []string) error {
	cfg, cwd, err := loadConfig()
	if err != nil {
		return err
	}
	if cfg.Cache.Disabled {
		return fmt.Errorf("the generation cache is disabled (cache.disabled in config)")
	}
	c := openCache(cfg, cwd, newLogger())
	if c == nil {
		return fmt.Errorf("cannot open cache at %s", cfg.CachePath(cwd))
	}
	defer c.Close()

	if historyClear {
		if err := c.Clear(); err != nil {
			return err
		}
		successColor.Fprint(cmd.ErrOrStderr(), "✓ ")
		fmt.Fprintf(cmd.ErrOrStderr(), "cleared %s\n", c.Path())
		return nil
	}

	if historyShow != "" {
		doc, _, err := c.Get(historyShow)
		if err != nil {
			return err
		}
		_, err = cmd.OutOrStdout().Write(doc)
		return err
	}

	entries, err := c.List(historyLimit)
	if err != nil {
		return err
	}
	out := output.HistoryOutput{Entries: []output.HistoryEntry{}}
	for _, e := range entries {
		out.Entries = append(out.Entries, output.HistoryEntry{
			Fingerprint: e.Fingerprint,
			Kind:        e.Kind,
			Theme:       e.Theme,
			Style:       e.Style,
			Description: e.Description,
			Elements:    e.Elements,
			CreatedAt:   e.CreatedAt.Format(time.RFC3339),
			Hits:        e.Hits,
		})
	}
	out.Count = len(out.Entries)
	return printOutput(cmd.OutOrStdout(), cfg, out)
}
