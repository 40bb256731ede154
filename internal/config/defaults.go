package config

import (
	"github.com/jiatastic/exdraw/internal/excalidraw"
	"github.com/jiatastic/exdraw/internal/graph"
	"github.com/jiatastic/exdraw/internal/layout"
	"github.com/jiatastic/exdraw/internal/style"
)

// ValidFocuses lists the accepted scan focus values
var ValidFocuses = []string{"backend", "all"}

// DefaultConfig returns configuration with sensible defaults.
// These defaults are used when no config file exists or when
// config file is missing specific fields.
func DefaultConfig() *Config {
	return &Config{
		Diagram: DiagramConfig{
			Kind:  string(graph.KindFlowchart),
			Theme: style.DefaultTheme,
			Style: style.DefaultStyle,
		},
		Layout: layout.DefaultOptions(),
		Output: OutputConfig{
			Format: "yaml",
			Source: excalidraw.DefaultSource,
		},
		Cache: CacheConfig{
			Path: "cache.db",
		},
		Scan: ScanConfig{
			Focus: "backend",
			Exclude: []string{
				".git/**",
				".venv/**",
				"venv/**",
				"__pycache__/**",
				"node_modules/**",
				"dist/**",
				"build/**",
			},
		},
		Serve: ServeConfig{
			HTTPAddr: "127.0.0.1:8080",
		},
	}
}

// IsValidFocus reports whether focus is an accepted scan focus
func IsValidFocus(focus string) bool {
	for _, f := range ValidFocuses {
		if f == focus {
			return true
		}
	}
	return false
}

// Merge merges loaded config with defaults.
// Values from loaded config take precedence over defaults.
// Returns a new Config with merged values.
func Merge(loaded, defaults *Config) *Config {
	result := &Config{}

	result.Diagram = mergeDiagramConfig(loaded.Diagram, defaults.Diagram)
	result.Layout = mergeLayoutOptions(loaded.Layout, defaults.Layout)
	result.Output = mergeOutputConfig(loaded.Output, defaults.Output)
	result.Cache = mergeCacheConfig(loaded.Cache, defaults.Cache)
	result.Scan = mergeScanConfig(loaded.Scan, defaults.Scan)
	result.Serve = mergeServeConfig(loaded.Serve, defaults.Serve)

	return result
}

func str(loaded, def string) string {
	if loaded != "" {
		return loaded
	}
	return def
}

func num(loaded, def float64) float64 {
	if loaded != 0 {
		return loaded
	}
	return def
}

func mergeDiagramConfig(loaded, defaults DiagramConfig) DiagramConfig {
	return DiagramConfig{
		Kind:   str(loaded.Kind, defaults.Kind),
		Theme:  str(loaded.Theme, defaults.Theme),
		Style:  str(loaded.Style, defaults.Style),
		Badges: loaded.Badges || defaults.Badges,
	}
}

// mergeLayoutOptions takes each non-zero loaded value. Origins may
// legitimately be zero, so they are taken from loaded whenever either is
// set there. LoadFromPath re-applies explicit zeros from the file.
func mergeLayoutOptions(loaded, defaults layout.Options) layout.Options {
	result := layout.Options{
		Direction:     layout.Direction(str(string(loaded.Direction), string(defaults.Direction))),
		Mindmap:       layout.MindmapStyle(str(string(loaded.Mindmap), string(defaults.Mindmap))),
		FontSize:      num(loaded.FontSize, defaults.FontSize),
		LineHeight:    num(loaded.LineHeight, defaults.LineHeight),
		CharWidth:     num(loaded.CharWidth, defaults.CharWidth),
		PaddingX:      num(loaded.PaddingX, defaults.PaddingX),
		PaddingY:      num(loaded.PaddingY, defaults.PaddingY),
		MinWidth:      num(loaded.MinWidth, defaults.MinWidth),
		MinHeight:     num(loaded.MinHeight, defaults.MinHeight),
		GapX:          num(loaded.GapX, defaults.GapX),
		GapY:          num(loaded.GapY, defaults.GapY),
		LayerGap:      num(loaded.LayerGap, defaults.LayerGap),
		MindmapRadius: num(loaded.MindmapRadius, defaults.MindmapRadius),
		Detour:        num(loaded.Detour, defaults.Detour),
		BindingGap:    num(loaded.BindingGap, defaults.BindingGap),
		OriginX:       defaults.OriginX,
		OriginY:       defaults.OriginY,
	}
	if loaded.OriginX != 0 || loaded.OriginY != 0 {
		result.OriginX, result.OriginY = loaded.OriginX, loaded.OriginY
	}
	return result
}

func mergeOutputConfig(loaded, defaults OutputConfig) OutputConfig {
	return OutputConfig{
		Format: str(loaded.Format, defaults.Format),
		Source: str(loaded.Source, defaults.Source),
	}
}

func mergeCacheConfig(loaded, defaults CacheConfig) CacheConfig {
	return CacheConfig{
		Disabled: loaded.Disabled || defaults.Disabled,
		Path:     str(loaded.Path, defaults.Path),
	}
}

func mergeScanConfig(loaded, defaults ScanConfig) ScanConfig {
	result := ScanConfig{Focus: str(loaded.Focus, defaults.Focus)}

	// Use loaded exclude patterns if provided, otherwise defaults
	if len(loaded.Exclude) > 0 {
		result.Exclude = loaded.Exclude
	} else {
		result.Exclude = defaults.Exclude
	}

	return result
}

func mergeServeConfig(loaded, defaults ServeConfig) ServeConfig {
	return ServeConfig{HTTPAddr: str(loaded.HTTPAddr, defaults.HTTPAddr)}
}
