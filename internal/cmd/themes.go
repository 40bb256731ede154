package cmd

import (
	"github.com/spf13/cobra"

	"github.com/jiatastic/exdraw/internal/engine"
)

// themesCmd represents the themes command
var themesCmd = &cobra.Command{
	Use:   "themes",
	Short: "List themes, styles, diagram types and node type colors",
	Example: `  exdraw themes
  exdraw themes --format json`,
	Args: cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		cfg, _, err := loadConfig()
		if err != nil {
			return err
		}
		return printOutput(cmd.OutOrStdout(), cfg, engine.ThemeCatalog())
	},
}

func init() {
	rootCmd.AddCommand(themesCmd)
}
