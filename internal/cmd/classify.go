package cmd

import (
	"fmt"
	"strings"

	"github.com/spf13/cobra"

	"github.com/jiatastic/exdraw/internal/engine"
)

// classifyCmd represents the classify command
var classifyCmd = &cobra.Command{
	Use:   "classify <label>...",
	Short: "Show how labels are classified",
	Long: `Classify node labels the way the generator does: component type, the
architecture band the label lands in, its flowchart role and its badge.

Each argument is one label. With a single argument, newlines also separate
labels.`,
	Example: `  exdraw classify "Redis Cache" "Postgres DB" "Is valid?"
  exdraw classify --format json "API Gateway"`,
	Args: cobra.MinimumNArgs(1),
	RunE: runClassify,
}

func init() {
	rootCmd.AddCommand(classifyCmd)
}

func runClassify(cmd *cobra.Command, args []string) error {
	cfg, _, err := loadConfig()
	if err != nil {
		return err
	}

	labels := args
	if len(args) == 1 {
		labels = strings.Split(args[0], "\n")
	}
	out := engine.ClassifyLabels(labels)
	if len(out.Labels) == 0 {
		return fmt.Errorf("no non-empty labels given")
	}
	return printOutput(cmd.OutOrStdout(), cfg, out)
}
