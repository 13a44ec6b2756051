package config

import (
	"fmt"
	"os"
	"path/filepath"
	"regexp"
	"strings"

	"gopkg.in/yaml.v3"

	"github.com/cskokgibbs/gimmemotifs/core/scan"
)

// EnvConfigPath names the environment variable pointing at an alternate
// config file.
const EnvConfigPath = "PFMSCAN_CONFIG"

// Config holds pfmscan defaults loaded from YAML. Command-line flags
// always win over config values.
type Config struct {
	Scan    ScanConfig    `yaml:"scan"`
	Output  OutputConfig  `yaml:"output"`
	Logging LoggingConfig `yaml:"logging"`
}

// ScanConfig holds scanning defaults. NReport and ScanRC are pointers
// so an explicit zero/false survives defaulting.
type ScanConfig struct {
	FPR     float64 `yaml:"fpr"`     // default false positive rate
	NReport *int    `yaml:"nreport"` // matches per sequence and motif; 0 = unlimited
	ScanRC  *bool   `yaml:"scan_rc"` // scan the reverse complement (default true)
	NCPUs   int     `yaml:"ncpus"`   // worker goroutines; 0 = all cores
	Genome  string  `yaml:"genome"`  // default genome FASTA
}

// OutputConfig holds result formatting defaults.
type OutputConfig struct {
	BED bool `yaml:"bed"` // positional output as BED instead of GFF
}

// LoggingConfig holds logging settings.
type LoggingConfig struct {
	Level string `yaml:"level"` // debug, info, warn, error
}

// Default returns the built-in configuration.
func Default() Config {
	var c Config
	c.ApplyDefaults()
	return c
}

// Load reads configuration. With an empty path the lookup order is the
// PFMSCAN_CONFIG environment variable, then the user config file; when
// neither exists the built-in defaults are returned. A path that was
// named explicitly must exist.
func Load(path string) (Config, error) {
	if path == "" {
		path = os.Getenv(EnvConfigPath)
	}
	if path == "" {
		if p := userConfigPath(); fileExists(p) {
			path = p
		} else {
			return Default(), nil
		}
	}

	data, err := os.ReadFile(filepath.Clean(path))
	if err != nil {
		return Config{}, fmt.Errorf("read config %s: %w", path, err)
	}
	data = expandEnvVars(data)

	var cfg Config
	if err := yaml.Unmarshal(data, &cfg); err != nil {
		return Config{}, fmt.Errorf("parse config %s: %w", path, err)
	}
	cfg.ApplyDefaults()
	if err := cfg.Validate(); err != nil {
		return Config{}, fmt.Errorf("invalid config %s: %w", path, err)
	}
	return cfg, nil
}

// ApplyDefaults fills empty fields with default values.
func (c *Config) ApplyDefaults() {
	if c.Scan.FPR <= 0 {
		c.Scan.FPR = scan.DefaultFPR
	}
	if c.Scan.NReport == nil {
		one := 1
		c.Scan.NReport = &one
	}
	if c.Scan.ScanRC == nil {
		on := true
		c.Scan.ScanRC = &on
	}
	if c.Scan.NCPUs < 0 {
		c.Scan.NCPUs = 0
	}
	if c.Logging.Level == "" {
		c.Logging.Level = "info"
	}
}

// Validate checks the configuration for correctness.
func (c *Config) Validate() error {
	if c.Scan.FPR <= 0 || c.Scan.FPR >= 1 {
		return fmt.Errorf("scan.fpr must be in (0, 1), got %v", c.Scan.FPR)
	}
	if c.Scan.NReport != nil && *c.Scan.NReport < 0 {
		return fmt.Errorf("scan.nreport must be >= 0, got %d", *c.Scan.NReport)
	}
	switch c.Logging.Level {
	case "debug", "info", "warn", "error":
	default:
		return fmt.Errorf("logging.level must be debug, info, warn or error, got %q", c.Logging.Level)
	}
	return nil
}

// userConfigPath is ~/.config/pfmscan/pfmscan.yaml.
func userConfigPath() string {
	home, err := os.UserHomeDir()
	if err != nil {
		return ""
	}
	return filepath.Join(home, ".config", "pfmscan", "pfmscan.yaml")
}

func fileExists(path string) bool {
	if path == "" {
		return false
	}
	_, err := os.Stat(path)
	return err == nil
}

// expandEnvVars replaces ${VAR} and ${VAR:-default} with environment
// variable values.
var envVarRegex = regexp.MustCompile(`\$\{([^}]+)\}`)

func expandEnvVars(data []byte) []byte {
	return envVarRegex.ReplaceAllFunc(data, func(match []byte) []byte {
		expr := string(match[2 : len(match)-1]) // strip ${ and }
		varName, defaultVal, hasDefault := strings.Cut(expr, ":-")
		val := os.Getenv(varName)
		if val == "" && hasDefault {
			val = defaultVal
		}
		return []byte(val)
	})
}
