package config

import (
	"fmt"
	"os"
	"path/filepath"

	"github.com/bmatcuk/doublestar/v4"
	"gopkg.in/yaml.v3"

	"github.com/mcncl/mapdata/internal/compactor"
	"github.com/mcncl/mapdata/internal/shaders"
	"github.com/mcncl/mapdata/internal/typelister"
)

// Error policies for per-file failures.
const (
	OnErrorSkip  = "skip"
	OnErrorAbort = "abort"
)

// Config represents the complete configuration for mapdata
type Config struct {
	SourceDir string      `yaml:"source_dir"`
	OutputDir string      `yaml:"output_dir"`
	Patterns  []string    `yaml:"patterns"`
	Workers   int         `yaml:"workers"`
	OnError   string      `yaml:"on_error"`
	Keys      KeysConfig  `yaml:"keys"`
	Types     TypesConfig `yaml:"types"`
	Dev       DevConfig   `yaml:"dev"`
}

// KeysConfig names the fields each tool looks for
type KeysConfig struct {
	Mesh   string `yaml:"mesh"`
	Color  string `yaml:"color"`
	Shader string `yaml:"shader"`
	Type   string `yaml:"type"`
}

// TypesConfig controls the type listing
type TypesConfig struct {
	// Dump is the type whose representative is printed in full.
	Dump string `yaml:"dump"`
	// Registered lists the types the viewer can load.
	Registered []string `yaml:"registered"`
}

// DevConfig contains development/debug options
type DevConfig struct {
	Debug bool `yaml:"debug"`
}

// NewConfig creates a new Config with default values
func NewConfig() *Config {
	registered := make([]string, len(typelister.RegisteredTypes))
	copy(registered, typelister.RegisteredTypes)

	return &Config{
		SourceDir: "assets/dumped_map_data",
		OutputDir: "assets/dumped_map_data_compact",
		Patterns:  []string{"**/*.json"},
		Workers:   0,
		OnError:   OnErrorSkip,
		Keys: KeysConfig{
			Mesh:   compactor.DefaultMeshKey,
			Color:  compactor.DefaultColorKey,
			Shader: shaders.DefaultShaderKey,
			Type:   typelister.DefaultTypeKey,
		},
		Types: TypesConfig{
			Dump:       typelister.DefaultDumpType,
			Registered: registered,
		},
	}
}

// LoadConfig loads configuration from a YAML file
func LoadConfig(path string) (*Config, error) {
	// Read file
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to read config file: %w", err)
	}

	// Start with defaults
	cfg := NewConfig()

	// Parse YAML
	if err := yaml.Unmarshal(data, cfg); err != nil {
		return nil, fmt.Errorf("failed to parse config file: %w", err)
	}

	if err := cfg.Validate(); err != nil {
		return nil, err
	}

	return cfg, nil
}

// FindConfigFile searches for a config file in current directory and parents
func FindConfigFile() string {
	currentDir, err := os.Getwd()
	if err != nil {
		return ""
	}
	return findConfigFrom(currentDir)
}

func findConfigFrom(currentDir string) string {
	configNames := []string{".mapdata.yml", ".mapdata.yaml", "mapdata.yml", "mapdata.yaml"}

	// Search up the directory tree
	for {
		for _, name := range configNames {
			configPath := filepath.Join(currentDir, name)
			if _, err := os.Stat(configPath); err == nil {
				return configPath
			}
		}

		// Move up one directory
		parentDir := filepath.Dir(currentDir)
		if parentDir == currentDir {
			// Reached root directory
			break
		}
		currentDir = parentDir
	}

	return ""
}

// Validate checks the configuration for values no command can run with
func (c *Config) Validate() error {
	switch c.OnError {
	case OnErrorSkip, OnErrorAbort:
	default:
		return fmt.Errorf("invalid on_error value '%s': must be '%s' or '%s'", c.OnError, OnErrorSkip, OnErrorAbort)
	}

	if c.Workers < 0 {
		return fmt.Errorf("workers must not be negative, got %d", c.Workers)
	}

	if len(c.Patterns) == 0 {
		return fmt.Errorf("at least one file pattern is required")
	}
	for _, pattern := range c.Patterns {
		if !doublestar.ValidatePattern(pattern) {
			return fmt.Errorf("invalid file pattern '%s'", pattern)
		}
	}

	return nil
}

// Overrides holds values given on the command line. Zero values mean
// "not set" and leave the file configuration in place.
type Overrides struct {
	SourceDir string
	OutputDir string
	Patterns  []string
	Workers   int
	OnError   string
	DumpType  string
	Debug     bool
}

// Apply merges CLI overrides into the config.
// Non-empty values from override take precedence over file values.
func (c *Config) Apply(o Overrides) {
	if o.SourceDir != "" {
		c.SourceDir = o.SourceDir
	}
	if o.OutputDir != "" {
		c.OutputDir = o.OutputDir
	}
	if len(o.Patterns) > 0 {
		c.Patterns = o.Patterns
	}
	if o.Workers > 0 {
		c.Workers = o.Workers
	}
	if o.OnError != "" {
		c.OnError = o.OnError
	}
	if o.DumpType != "" {
		c.Types.Dump = o.DumpType
	}
	// A boolean flag can only switch debugging on.
	if o.Debug {
		c.Dev.Debug = true
	}
}

// LoadConfigWithCLI loads config with CLI argument precedence
func LoadConfigWithCLI(configPath string, o Overrides) (*Config, error) {
	// Start with defaults
	cfg := NewConfig()

	// Fall back to a config file found on the way up from the working directory
	if configPath == "" {
		configPath = FindConfigFile()
	}

	// Load config file if provided
	if configPath != "" {
		fileConfig, err := LoadConfig(configPath)
		if err != nil {
			return nil, err
		}
		cfg = fileConfig
	}

	cfg.Apply(o)

	if err := cfg.Validate(); err != nil {
		return nil, err
	}

	return cfg, nil
}
