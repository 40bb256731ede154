package config

import (
	"errors"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/jiatastic/exdraw/internal/layout"
)

func clearEnv(t *testing.T) {
	t.Helper()
	for _, k := range []string{EnvKind, EnvTheme, EnvStyle, EnvBadges, EnvHTTPAddr, EnvCacheDB} {
		t.Setenv(k, "")
	}
}

func TestDefaultConfig(t *testing.T) {
	cfg := DefaultConfig()

	if cfg.Diagram.Kind != "flowchart" {
		t.Errorf("expected default type flowchart, got %s", cfg.Diagram.Kind)
	}
	if cfg.Diagram.Theme != "modern" || cfg.Diagram.Style != "pro" {
		t.Errorf("expected modern/pro, got %s/%s", cfg.Diagram.Theme, cfg.Diagram.Style)
	}
	if cfg.Diagram.Badges {
		t.Error("badges should be off by default")
	}
	if cfg.Layout != layout.DefaultOptions() {
		t.Errorf("expected default layout options, got %+v", cfg.Layout)
	}
	if cfg.Output.Format != "yaml" {
		t.Errorf("expected format yaml, got %s", cfg.Output.Format)
	}
	if cfg.Cache.Path != "cache.db" || cfg.Cache.Disabled {
		t.Errorf("unexpected cache defaults %+v", cfg.Cache)
	}
	if cfg.Scan.Focus != "backend" {
		t.Errorf("expected scan focus backend, got %s", cfg.Scan.Focus)
	}
	if len(cfg.Scan.Exclude) != 7 {
		t.Errorf("expected 7 exclude patterns, got %d", len(cfg.Scan.Exclude))
	}

	if err := Validate(cfg); err != nil {
		t.Errorf("default config should validate: %v", err)
	}
}

func TestIsValidFocus(t *testing.T) {
	tests := []struct {
		focus string
		valid bool
	}{
		{"backend", true},
		{"all", true},
		{"frontend", false},
		{"", false},
		{"ALL", false}, // case sensitive
	}

	for _, tt := range tests {
		t.Run(tt.focus, func(t *testing.T) {
			if got := IsValidFocus(tt.focus); got != tt.valid {
				t.Errorf("IsValidFocus(%q) = %v, want %v", tt.focus, got, tt.valid)
			}
		})
	}
}

func TestValidate(t *testing.T) {
	tests := []struct {
		name    string
		modify  func(*Config)
		wantErr bool
	}{
		{
			name:    "valid default config",
			modify:  func(c *Config) {},
			wantErr: false,
		},
		{
			name:    "type alias",
			modify:  func(c *Config) { c.Diagram.Kind = "arch" },
			wantErr: false,
		},
		{
			name:    "unknown type",
			modify:  func(c *Config) { c.Diagram.Kind = "gantt" },
			wantErr: true,
		},
		{
			name:    "unknown theme",
			modify:  func(c *Config) { c.Diagram.Theme = "neon" },
			wantErr: true,
		},
		{
			name:    "unknown style",
			modify:  func(c *Config) { c.Diagram.Style = "fancy" },
			wantErr: true,
		},
		{
			name:    "bad direction",
			modify:  func(c *Config) { c.Layout.Direction = "up" },
			wantErr: true,
		},
		{
			name:    "negative gap",
			modify:  func(c *Config) { c.Layout.GapX = -1 },
			wantErr: true,
		},
		{
			name:    "bad format",
			modify:  func(c *Config) { c.Output.Format = "cgf" },
			wantErr: true,
		},
		{
			name:    "bad focus",
			modify:  func(c *Config) { c.Scan.Focus = "frontend" },
			wantErr: true,
		},
		{
			name:    "empty cache path",
			modify:  func(c *Config) { c.Cache.Path = "" },
			wantErr: true,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			cfg := DefaultConfig()
			tt.modify(cfg)
			err := Validate(cfg)
			if (err != nil) != tt.wantErr {
				t.Errorf("Validate() error = %v, wantErr %v", err, tt.wantErr)
			}
			if err != nil && !errors.Is(err, ErrInvalidConfig) {
				t.Errorf("error should wrap ErrInvalidConfig, got %v", err)
			}
		})
	}
}

func TestMerge(t *testing.T) {
	defaults := DefaultConfig()

	t.Run("empty loaded config uses defaults", func(t *testing.T) {
		merged := Merge(&Config{}, defaults)
		if merged.Diagram != defaults.Diagram {
			t.Errorf("expected %+v, got %+v", defaults.Diagram, merged.Diagram)
		}
		if merged.Layout != defaults.Layout {
			t.Errorf("expected default layout, got %+v", merged.Layout)
		}
		if merged.Serve.HTTPAddr != defaults.Serve.HTTPAddr {
			t.Errorf("expected %s, got %s", defaults.Serve.HTTPAddr, merged.Serve.HTTPAddr)
		}
	})

	t.Run("loaded values override defaults", func(t *testing.T) {
		loaded := &Config{
			Diagram: DiagramConfig{Kind: "mindmap", Theme: "sketchy", Badges: true},
			Layout:  layout.Options{GapX: 120, Direction: layout.DirectionDown},
			Cache:   CacheConfig{Disabled: true},
			Scan:    ScanConfig{Exclude: []string{"legacy/**"}},
		}
		merged := Merge(loaded, defaults)

		if merged.Diagram.Kind != "mindmap" || merged.Diagram.Theme != "sketchy" {
			t.Errorf("diagram not overridden: %+v", merged.Diagram)
		}
		if merged.Diagram.Style != "pro" {
			t.Errorf("expected style from defaults, got %s", merged.Diagram.Style)
		}
		if !merged.Diagram.Badges || !merged.Cache.Disabled {
			t.Error("boolean overrides lost")
		}
		if merged.Layout.GapX != 120 || merged.Layout.GapY != defaults.Layout.GapY {
			t.Errorf("layout merge wrong: %+v", merged.Layout)
		}
		if merged.Layout.Direction != layout.DirectionDown {
			t.Errorf("expected direction down, got %s", merged.Layout.Direction)
		}
		if len(merged.Scan.Exclude) != 1 || merged.Scan.Exclude[0] != "legacy/**" {
			t.Errorf("expected loaded exclude, got %v", merged.Scan.Exclude)
		}
	})

	t.Run("explicit origin replaces both coordinates", func(t *testing.T) {
		merged := Merge(&Config{Layout: layout.Options{OriginX: 10}}, defaults)
		if merged.Layout.OriginX != 10 || merged.Layout.OriginY != 0 {
			t.Errorf("expected origin (10, 0), got (%v, %v)", merged.Layout.OriginX, merged.Layout.OriginY)
		}
	})
}

func TestFindConfigDir(t *testing.T) {
	tmpDir := t.TempDir()

	// Create nested directories: tmpDir/project/subdir
	projectDir := filepath.Join(tmpDir, "project")
	subDir := filepath.Join(projectDir, "subdir")
	if err := os.MkdirAll(subDir, 0755); err != nil {
		t.Fatal(err)
	}

	t.Run("no config dir returns error", func(t *testing.T) {
		_, err := FindConfigDir(subDir)
		if !errors.Is(err, ErrConfigNotFound) {
			t.Errorf("expected ErrConfigNotFound, got %v", err)
		}
	})

	configDir := filepath.Join(projectDir, ConfigDirName)
	if err := os.Mkdir(configDir, 0755); err != nil {
		t.Fatal(err)
	}

	t.Run("finds config dir in current directory", func(t *testing.T) {
		found, err := FindConfigDir(projectDir)
		if err != nil {
			t.Errorf("unexpected error: %v", err)
		}
		if found != configDir {
			t.Errorf("expected %s, got %s", configDir, found)
		}
	})

	t.Run("finds config dir in parent directory", func(t *testing.T) {
		found, err := FindConfigDir(subDir)
		if err != nil {
			t.Errorf("unexpected error: %v", err)
		}
		if found != configDir {
			t.Errorf("expected %s, got %s", configDir, found)
		}
	})
}

func TestEnsureConfigDir(t *testing.T) {
	tmpDir := t.TempDir()

	dir, err := EnsureConfigDir(tmpDir)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	expectedDir := filepath.Join(tmpDir, ConfigDirName)
	if dir != expectedDir {
		t.Errorf("expected %s, got %s", expectedDir, dir)
	}
	if info, err := os.Stat(dir); err != nil || !info.IsDir() {
		t.Errorf("config directory not created: %v", err)
	}

	// Second call returns the same directory
	again, err := EnsureConfigDir(tmpDir)
	if err != nil || again != dir {
		t.Errorf("EnsureConfigDir again = %s, %v", again, err)
	}
}

func TestLoadFromPath(t *testing.T) {
	clearEnv(t)
	tmpDir := t.TempDir()

	t.Run("missing file returns defaults", func(t *testing.T) {
		cfg, err := LoadFromPath(filepath.Join(tmpDir, "missing.yaml"))
		if err != nil {
			t.Fatalf("unexpected error: %v", err)
		}
		if cfg.Diagram.Theme != "modern" {
			t.Errorf("expected default theme, got %s", cfg.Diagram.Theme)
		}
	})

	t.Run("partial file is merged", func(t *testing.T) {
		path := filepath.Join(tmpDir, "partial.yaml")
		content := "diagram:\n  type: architecture\n  badges: true\nlayout:\n  gap_x: 100\n"
		if err := os.WriteFile(path, []byte(content), 0644); err != nil {
			t.Fatal(err)
		}
		cfg, err := LoadFromPath(path)
		if err != nil {
			t.Fatalf("unexpected error: %v", err)
		}
		if cfg.Diagram.Kind != "architecture" || !cfg.Diagram.Badges {
			t.Errorf("diagram not loaded: %+v", cfg.Diagram)
		}
		if cfg.Layout.GapX != 100 || cfg.Layout.LayerGap != 120 {
			t.Errorf("layout not merged: %+v", cfg.Layout)
		}
	})

	t.Run("explicit zero layout values are kept", func(t *testing.T) {
		path := filepath.Join(tmpDir, "zeros.yaml")
		content := "layout:\n  binding_gap: 0\n  min_width: 0\n  gap_x: 90\n"
		if err := os.WriteFile(path, []byte(content), 0644); err != nil {
			t.Fatal(err)
		}
		cfg, err := LoadFromPath(path)
		if err != nil {
			t.Fatalf("unexpected error: %v", err)
		}
		if cfg.Layout.BindingGap != 0 || cfg.Layout.MinWidth != 0 {
			t.Errorf("explicit zeros replaced by defaults: binding_gap=%v min_width=%v", cfg.Layout.BindingGap, cfg.Layout.MinWidth)
		}
		if cfg.Layout.GapX != 90 || cfg.Layout.MinHeight != layout.DefaultOptions().MinHeight {
			t.Errorf("layout not merged: %+v", cfg.Layout)
		}
	})

	t.Run("explicit zero gap is rejected", func(t *testing.T) {
		path := filepath.Join(tmpDir, "zero-gap.yaml")
		if err := os.WriteFile(path, []byte("layout:\n  gap_x: 0\n"), 0644); err != nil {
			t.Fatal(err)
		}
		_, err := LoadFromPath(path)
		if !errors.Is(err, ErrInvalidConfig) {
			t.Errorf("expected ErrInvalidConfig, got %v", err)
		}
	})

	t.Run("invalid yaml", func(t *testing.T) {
		path := filepath.Join(tmpDir, "broken.yaml")
		if err := os.WriteFile(path, []byte("diagram: [unclosed"), 0644); err != nil {
			t.Fatal(err)
		}
		if _, err := LoadFromPath(path); err == nil {
			t.Error("expected parse error")
		}
	})

	t.Run("invalid values", func(t *testing.T) {
		path := filepath.Join(tmpDir, "invalid.yaml")
		if err := os.WriteFile(path, []byte("diagram:\n  theme: neon\n"), 0644); err != nil {
			t.Fatal(err)
		}
		_, err := LoadFromPath(path)
		if !errors.Is(err, ErrInvalidConfig) {
			t.Errorf("expected ErrInvalidConfig, got %v", err)
		}
	})
}

func TestApplyEnv(t *testing.T) {
	clearEnv(t)
	t.Setenv(EnvKind, "mindmap")
	t.Setenv(EnvTheme, "technical")
	t.Setenv(EnvBadges, "true")
	t.Setenv(EnvHTTPAddr, ":9999")

	cfg := DefaultConfig()
	if err := ApplyEnv(cfg); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if cfg.Diagram.Kind != "mindmap" || cfg.Diagram.Theme != "technical" || !cfg.Diagram.Badges {
		t.Errorf("env not applied: %+v", cfg.Diagram)
	}
	if cfg.Diagram.Style != "pro" {
		t.Errorf("unset variable changed style: %s", cfg.Diagram.Style)
	}
	if cfg.Serve.HTTPAddr != ":9999" {
		t.Errorf("expected :9999, got %s", cfg.Serve.HTTPAddr)
	}

	t.Setenv(EnvBadges, "sometimes")
	if err := ApplyEnv(DefaultConfig()); !errors.Is(err, ErrInvalidConfig) {
		t.Errorf("expected ErrInvalidConfig for bad boolean, got %v", err)
	}
}

func TestLoad(t *testing.T) {
	clearEnv(t)
	tmpDir := t.TempDir()

	t.Run("no config directory", func(t *testing.T) {
		cfg, err := Load(tmpDir)
		if err != nil {
			t.Fatalf("unexpected error: %v", err)
		}
		if cfg.Diagram.Kind != "flowchart" {
			t.Errorf("expected defaults, got %+v", cfg.Diagram)
		}
	})

	t.Run("dotenv overrides file", func(t *testing.T) {
		configDir := filepath.Join(tmpDir, ConfigDirName)
		if err := os.MkdirAll(configDir, 0755); err != nil {
			t.Fatal(err)
		}
		if err := os.WriteFile(filepath.Join(configDir, ConfigFileName), []byte("diagram:\n  style: basic\n  theme: sketchy\n"), 0644); err != nil {
			t.Fatal(err)
		}
		if err := os.WriteFile(filepath.Join(tmpDir, EnvFileName), []byte(EnvTheme+"=colorful\n"), 0644); err != nil {
			t.Fatal(err)
		}
		// godotenv sets the variable for the process; drop it afterwards
		t.Cleanup(func() { os.Unsetenv(EnvTheme) })
		os.Unsetenv(EnvTheme)

		cfg, err := Load(tmpDir)
		if err != nil {
			t.Fatalf("unexpected error: %v", err)
		}
		if cfg.Diagram.Style != "basic" {
			t.Errorf("expected style from file, got %s", cfg.Diagram.Style)
		}
		if cfg.Diagram.Theme != "colorful" {
			t.Errorf("expected theme from .env, got %s", cfg.Diagram.Theme)
		}
	})
}

func TestCachePath(t *testing.T) {
	tmpDir := t.TempDir()
	cfg := DefaultConfig()

	got := cfg.CachePath(tmpDir)
	if want := filepath.Join(tmpDir, ConfigDirName, "cache.db"); got != want {
		t.Errorf("CachePath() = %s, want %s", got, want)
	}

	cfg.Cache.Path = filepath.Join(tmpDir, "elsewhere.db")
	if got := cfg.CachePath(tmpDir); got != cfg.Cache.Path {
		t.Errorf("absolute path should be kept, got %s", got)
	}
}

func TestSaveDefault(t *testing.T) {
	clearEnv(t)
	tmpDir := t.TempDir()

	path, err := SaveDefault(tmpDir)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	data, err := os.ReadFile(path)
	if err != nil {
		t.Fatalf("reading saved config: %v", err)
	}
	if !strings.HasPrefix(string(data), "# exdraw configuration") {
		t.Errorf("missing header:\n%s", data)
	}

	cfg, err := LoadFromPath(path)
	if err != nil {
		t.Fatalf("saved config does not load: %v", err)
	}
	if cfg.Layout != layout.DefaultOptions() {
		t.Errorf("round trip changed layout: %+v", cfg.Layout)
	}

	if _, err := SaveDefault(tmpDir); err == nil {
		t.Error("expected error when config already exists")
	}
}
