package cmd

import (
	"fmt"
	"io"
	"log/slog"
	"os"

	"github.com/fatih/color"

	"github.com/jiatastic/exdraw/internal/cache"
	"github.com/jiatastic/exdraw/internal/config"
	"github.com/jiatastic/exdraw/internal/engine"
	"github.com/jiatastic/exdraw/internal/output"
)

// Shared helpers for command implementations

var (
	successColor = color.New(color.FgGreen, color.Bold)
	noteColor    = color.New(color.FgCyan)
	errorColor   = color.New(color.FgRed, color.Bold)
)

// loadConfig reads --config when given, otherwise the nearest
// .exdraw/config.yaml above the working directory.
func loadConfig() (*config.Config, string, error) {
	cwd, err := os.Getwd()
	if err != nil {
		return nil, "", fmt.Errorf("get working directory: %w", err)
	}
	if configPath == "" {
		cfg, err := config.Load(cwd)
		return cfg, cwd, err
	}
	if err := config.LoadEnv(cwd); err != nil {
		return nil, "", err
	}
	cfg, err := config.LoadFromPath(configPath)
	return cfg, cwd, err
}

// newLogger writes text records to stderr; --verbose enables debug.
func newLogger() *slog.Logger {
	level := slog.LevelWarn
	if verbose {
		level = slog.LevelDebug
	}
	return slog.New(slog.NewTextHandler(os.Stderr, &slog.HandlerOptions{Level: level}))
}

func newEngine(cfg *config.Config, logger *slog.Logger) *engine.Engine {
	e := engine.New(cfg.Layout, logger)
	if cfg.Output.Source != "" {
		e.Source = cfg.Output.Source
	}
	return e
}

// requestDefaults carries the configured diagram defaults.
func requestDefaults(cfg *config.Config) engine.Request {
	return engine.Request{
		Kind:   cfg.Diagram.Kind,
		Theme:  cfg.Diagram.Theme,
		Style:  cfg.Diagram.Style,
		Badges: cfg.Diagram.Badges,
	}
}

// openCache opens the generation cache. It returns nil when the cache is
// disabled or cannot be opened; generation works without it.
func openCache(cfg *config.Config, cwd string, logger *slog.Logger) *cache.Cache {
	if cfg.Cache.Disabled {
		return nil
	}
	c, err := cache.Open(cfg.CachePath(cwd))
	if err != nil {
		logger.Warn("generation cache unavailable", "error", err)
		return nil
	}
	return c
}

// storeOf converts a possibly nil cache into an engine.Store without
// producing a typed nil.
func storeOf(c *cache.Cache) engine.Store {
	if c == nil {
		return nil
	}
	return c
}

// printOutput writes v in the --format or configured format.
func printOutput(w io.Writer, cfg *config.Config, v interface{}) error {
	format := outputFormat
	if format == "" && cfg != nil {
		format = cfg.Output.Format
	}
	if _, err := output.ParseFormat(format); err != nil {
		return err
	}
	return output.Write(w, format, v)
}

func printError(err error) {
	if code := engine.ErrorCode(err); engine.IsInputError(err) {
		errorColor.Fprint(os.Stderr, "error: ")
		fmt.Fprintf(os.Stderr, "%v (%s)\n", err, code)
		return
	}
	errorColor.Fprint(os.Stderr, "error: ")
	fmt.Fprintln(os.Stderr, err)
}
