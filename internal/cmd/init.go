// Package cmd implements the init command for exdraw CLI.
package cmd

import (
	"fmt"
	"os"
	"path/filepath"

	"github.com/spf13/cobra"

	"github.com/jiatastic/exdraw/internal/cache"
	"github.com/jiatastic/exdraw/internal/config"
)

// initCmd represents the init command
var initCmd = &cobra.Command{
	Use:   "init",
	Short: "Initialize .exdraw directory, config and cache",
	Long: `Initialize the .exdraw directory in the current directory.

This writes .exdraw/config.yaml with the default settings and creates the
generation cache database. Commands run anywhere below this directory pick
up the config.`,
	Example: `  exdraw init          # Initialize in current directory
  exdraw init --force  # Recreate the cache database`,
	Args: cobra.NoArgs,
	RunE: runInit,
}

var initForce bool

func init() {
	rootCmd.AddCommand(initCmd)
	initCmd.Flags().BoolVar(&initForce, "force", false, "Recreate the cache database even if it exists")
}

func runInit(cmd *cobra.Command, args []string) error {
	cwd, err := os.Getwd()
	if err != nil {
		return fmt.Errorf("get working directory: %w", err)
	}
	w := cmd.ErrOrStderr()

	dir := filepath.Join(cwd, config.ConfigDirName)
	cfgPath := filepath.Join(dir, config.ConfigFileName)
	if _, err := os.Stat(cfgPath); err == nil {
		fmt.Fprintf(w, "Config already present at %s\n", relTo(cwd, cfgPath))
	} else if os.IsNotExist(err) {
		if cfgPath, err = config.SaveDefault(cwd); err != nil {
			return err
		}
		successColor.Fprint(w, "✓ ")
		fmt.Fprintf(w, "wrote %s\n", relTo(cwd, cfgPath))
	} else {
		return fmt.Errorf("checking config path: %w", err)
	}

	cfg, err := config.LoadFromPath(cfgPath)
	if err != nil {
		return err
	}
	dbPath := cfg.CachePath(cwd)
	if _, err := os.Stat(dbPath); err == nil && initForce {
		if err := os.Remove(dbPath); err != nil {
			return fmt.Errorf("removing existing cache: %w", err)
		}
	}

	c, err := cache.Open(dbPath)
	if err != nil {
		return fmt.Errorf("initializing cache: %w", err)
	}
	defer c.Close()

	successColor.Fprint(w, "✓ ")
	fmt.Fprintf(w, "cache ready at %s\n", relTo(cwd, dbPath))
	return nil
}

func relTo(base, path string) string {
	if rel, err := filepath.Rel(base, path); err == nil {
		return rel
	}
	return path
}
