// Package config loads exdraw settings from .exdraw/config.yaml, a .env
// file and EXDRAW_* environment variables.
package config

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strconv"

	"github.com/joho/godotenv"
	"gopkg.in/yaml.v3"

	"github.com/jiatastic/exdraw/internal/graph"
	"github.com/jiatastic/exdraw/internal/layout"
	"github.com/jiatastic/exdraw/internal/output"
	"github.com/jiatastic/exdraw/internal/style"
)

// ConfigFileName is the name of the exdraw configuration file
const ConfigFileName = "config.yaml"

// ConfigDirName is the name of the exdraw configuration directory
const ConfigDirName = ".exdraw"

// EnvFileName is the optional dotenv file read next to the working directory
const EnvFileName = ".env"

// Environment variables that override the config file.
const (
	EnvKind     = "EXDRAW_KIND"
	EnvTheme    = "EXDRAW_THEME"
	EnvStyle    = "EXDRAW_STYLE"
	EnvBadges   = "EXDRAW_BADGES"
	EnvHTTPAddr = "EXDRAW_HTTP_ADDR"
	EnvCacheDB  = "EXDRAW_CACHE_PATH"
)

// Config holds all exdraw configuration
type Config struct {
	Diagram DiagramConfig  `yaml:"diagram"`
	Layout  layout.Options `yaml:"layout"`
	Output  OutputConfig   `yaml:"output"`
	Cache   CacheConfig    `yaml:"cache"`
	Scan    ScanConfig     `yaml:"scan"`
	Serve   ServeConfig    `yaml:"serve"`
}

// DiagramConfig holds the defaults for generate requests
type DiagramConfig struct {
	Kind   string `yaml:"type"`
	Theme  string `yaml:"theme"`
	Style  string `yaml:"style"`
	Badges bool   `yaml:"badges"`
}

// OutputConfig holds configuration for output formatting
type OutputConfig struct {
	Format string `yaml:"format"`
	Source string `yaml:"source"`
}

// CacheConfig holds configuration for the generation cache
type CacheConfig struct {
	Disabled bool   `yaml:"disabled"`
	Path     string `yaml:"path"` // relative to the config directory
}

// ScanConfig holds configuration for project scanning
type ScanConfig struct {
	Focus   string   `yaml:"focus"`
	Exclude []string `yaml:"exclude"`
}

// ServeConfig holds configuration for the HTTP server
type ServeConfig struct {
	HTTPAddr string `yaml:"http_addr"`
}

// ErrConfigNotFound is returned when no config file can be found
var ErrConfigNotFound = errors.New("config file not found")

// ErrInvalidConfig is returned when config validation fails
var ErrInvalidConfig = errors.New("invalid configuration")

// Load reads config from .exdraw/config.yaml, falling back to defaults,
// then applies .env and environment overrides.
// It searches for the config directory starting from workDir and walking up
// the directory tree.
func Load(workDir string) (*Config, error) {
	if err := LoadEnv(workDir); err != nil {
		return nil, err
	}

	configDir, err := FindConfigDir(workDir)
	if err != nil {
		// No config dir found, use defaults
		cfg := DefaultConfig()
		if err := ApplyEnv(cfg); err != nil {
			return nil, err
		}
		if err := Validate(cfg); err != nil {
			return nil, err
		}
		return cfg, nil
	}

	configPath := filepath.Join(configDir, ConfigFileName)
	return LoadFromPath(configPath)
}

// LoadFromPath reads config from a specific path.
// Merges loaded config with defaults, applies environment overrides and
// validates the result.
func LoadFromPath(path string) (*Config, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		if !os.IsNotExist(err) {
			return nil, fmt.Errorf("reading config file: %w", err)
		}
		data = nil
	}

	loaded := &Config{}
	if err := yaml.Unmarshal(data, loaded); err != nil {
		return nil, fmt.Errorf("parsing config file: %w", err)
	}

	// Merge with defaults
	merged := Merge(loaded, DefaultConfig())

	// Layout keys present in the file are decoded over the merged values,
	// so an explicit zero such as binding_gap: 0 is kept.
	overlay := struct {
		Layout layout.Options `yaml:"layout"`
	}{Layout: merged.Layout}
	if err := yaml.Unmarshal(data, &overlay); err != nil {
		return nil, fmt.Errorf("parsing config file: %w", err)
	}
	merged.Layout = overlay.Layout

	if err := ApplyEnv(merged); err != nil {
		return nil, err
	}

	// Validate the merged config
	if err := Validate(merged); err != nil {
		return nil, err
	}

	return merged, nil
}

// LoadEnv loads workDir/.env into the process environment. Variables
// already set are kept. A missing file is not an error.
func LoadEnv(workDir string) error {
	path := filepath.Join(workDir, EnvFileName)
	if _, err := os.Stat(path); err != nil {
		return nil
	}
	if err := godotenv.Load(path); err != nil {
		return fmt.Errorf("loading %s: %w", path, err)
	}
	return nil
}

// ApplyEnv overrides config values from EXDRAW_* environment variables.
func ApplyEnv(cfg *Config) error {
	if v := os.Getenv(EnvKind); v != "" {
		cfg.Diagram.Kind = v
	}
	if v := os.Getenv(EnvTheme); v != "" {
		cfg.Diagram.Theme = v
	}
	if v := os.Getenv(EnvStyle); v != "" {
		cfg.Diagram.Style = v
	}
	if v := os.Getenv(EnvBadges); v != "" {
		b, err := strconv.ParseBool(v)
		if err != nil {
			return fmt.Errorf("%w: %s must be a boolean, got %q", ErrInvalidConfig, EnvBadges, v)
		}
		cfg.Diagram.Badges = b
	}
	if v := os.Getenv(EnvHTTPAddr); v != "" {
		cfg.Serve.HTTPAddr = v
	}
	if v := os.Getenv(EnvCacheDB); v != "" {
		cfg.Cache.Path = v
	}
	return nil
}

// FindConfigDir locates the .exdraw directory by walking up from startDir.
// Returns the path to the .exdraw directory if found.
func FindConfigDir(startDir string) (string, error) {
	// Get absolute path
	absDir, err := filepath.Abs(startDir)
	if err != nil {
		return "", fmt.Errorf("resolving path: %w", err)
	}

	currentDir := absDir
	for {
		configDir := filepath.Join(currentDir, ConfigDirName)
		info, err := os.Stat(configDir)
		if err == nil && info.IsDir() {
			return configDir, nil
		}

		// Move to parent directory
		parentDir := filepath.Dir(currentDir)
		if parentDir == currentDir {
			// Reached root, config not found
			return "", ErrConfigNotFound
		}
		currentDir = parentDir
	}
}

// EnsureConfigDir creates the .exdraw directory if it doesn't exist.
// Returns the path to the .exdraw directory.
func EnsureConfigDir(workDir string) (string, error) {
	absDir, err := filepath.Abs(workDir)
	if err != nil {
		return "", fmt.Errorf("resolving path: %w", err)
	}

	configDir := filepath.Join(absDir, ConfigDirName)

	info, err := os.Stat(configDir)
	if err == nil {
		if info.IsDir() {
			return configDir, nil
		}
		return "", fmt.Errorf("%s exists but is not a directory", configDir)
	}

	if err := os.MkdirAll(configDir, 0755); err != nil {
		return "", fmt.Errorf("creating config directory: %w", err)
	}

	return configDir, nil
}

// CachePath resolves the cache database path. Relative paths are taken
// from the config directory found above workDir, or workDir/.exdraw.
func (c *Config) CachePath(workDir string) string {
	if filepath.IsAbs(c.Cache.Path) {
		return c.Cache.Path
	}
	dir, err := FindConfigDir(workDir)
	if err != nil {
		dir = filepath.Join(workDir, ConfigDirName)
	}
	return filepath.Join(dir, c.Cache.Path)
}

// Validate checks that config values are valid.
// Returns an error if validation fails.
func Validate(cfg *Config) error {
	if _, err := graph.ParseKind(cfg.Diagram.Kind); err != nil {
		return fmt.Errorf("%w: diagram.type: %v", ErrInvalidConfig, err)
	}

	if _, err := style.Lookup(cfg.Diagram.Theme, cfg.Diagram.Style); err != nil {
		return fmt.Errorf("%w: diagram: %v", ErrInvalidConfig, err)
	}

	if err := cfg.Layout.Validate(); err != nil {
		return fmt.Errorf("%w: layout: %v", ErrInvalidConfig, err)
	}

	if _, err := output.ParseFormat(cfg.Output.Format); err != nil {
		return fmt.Errorf("%w: output.format: %v", ErrInvalidConfig, err)
	}

	if !IsValidFocus(cfg.Scan.Focus) {
		return fmt.Errorf("%w: scan.focus must be one of %v, got %q",
			ErrInvalidConfig, ValidFocuses, cfg.Scan.Focus)
	}

	if cfg.Cache.Path == "" {
		return fmt.Errorf("%w: cache.path must not be empty", ErrInvalidConfig)
	}

	return nil
}

// SaveDefault writes the default configuration to .exdraw/config.yaml in workDir.
// Creates the .exdraw directory if it doesn't exist.
func SaveDefault(workDir string) (string, error) {
	configDir, err := EnsureConfigDir(workDir)
	if err != nil {
		return "", err
	}

	configPath := filepath.Join(configDir, ConfigFileName)

	// Check if file already exists
	if _, err := os.Stat(configPath); err == nil {
		return "", fmt.Errorf("config file already exists: %s", configPath)
	}

	cfg := DefaultConfig()
	data, err := yaml.Marshal(cfg)
	if err != nil {
		return "", fmt.Errorf("marshaling config: %w", err)
	}

	header := "# exdraw configuration\n# Environment: EXDRAW_KIND, EXDRAW_THEME, EXDRAW_STYLE, EXDRAW_BADGES, EXDRAW_HTTP_ADDR, EXDRAW_CACHE_PATH\n\n"
	data = append([]byte(header), data...)

	if err := os.WriteFile(configPath, data, 0644); err != nil {
		return "", fmt.Errorf("writing config file: %w", err)
	}

	return configPath, nil
}
