// Package config handles configuration loading and management for learnlab.
// It supports XDG config paths, project-level overrides, and environment variables.
package config

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/spf13/viper"
)

// EnvPrefix prefixes environment variable overrides, e.g. LEARNLAB_BENCH_REPEAT.
const EnvPrefix = "LEARNLAB"

// ProjectConfigName is the project-level config file searched upwards from
// the working directory.
const ProjectConfigName = ".learnlab.yaml"

// Config holds all configuration for learnlab.
type Config struct {
	Learn   LearnConfig   `mapstructure:"learn"`
	Bench   BenchConfig   `mapstructure:"bench"`
	Series  SeriesConfig  `mapstructure:"series"`
	State   StateConfig   `mapstructure:"state"`
	Metrics MetricsConfig `mapstructure:"metrics"`
	Log     LogConfig     `mapstructure:"log"`
}

// LearnConfig holds settings of the learn command.
type LearnConfig struct {
	// Algorithm is the registry name of the learner.
	Algorithm   string `mapstructure:"algorithm"`
	Interactive bool   `mapstructure:"interactive"`
	// TUI uses the terminal UI prompter in interactive mode.
	TUI         bool   `mapstructure:"tui"`
	OutputDir   string `mapstructure:"output_dir"`
	OpenBrowser bool   `mapstructure:"open_browser"`
	// DotPath is the graphviz executable.
	DotPath   string `mapstructure:"dot_path"`
	MaxRounds int    `mapstructure:"max_rounds"`
}

// BenchConfig holds settings of the bench command.
type BenchConfig struct {
	Repeat int  `mapstructure:"repeat"`
	Cache  bool `mapstructure:"cache"`
	// Learners restricts the benchmarked pairs; empty runs all.
	Learners       []string `mapstructure:"learners"`
	OutputDir      string   `mapstructure:"output_dir"`
	CollectGarbage bool     `mapstructure:"collect_garbage"`
}

// SeriesConfig holds the bounds of the random series sweep.
type SeriesConfig struct {
	Lower         int   `mapstructure:"lower"`
	Upper         int   `mapstructure:"upper"`
	Step          int   `mapstructure:"step"`
	AlphabetSizes []int `mapstructure:"alphabet_sizes"`
	Seed          int64 `mapstructure:"seed"`
}

// StateConfig holds benchmark history settings.
type StateConfig struct {
	Enabled bool `mapstructure:"enabled"`
	// DBPath overrides the default database location.
	DBPath string `mapstructure:"db_path"`
}

// MetricsConfig holds metrics export settings.
type MetricsConfig struct {
	// Textfile receives the metrics in Prometheus text format after a
	// benchmark. Empty disables the export.
	Textfile string `mapstructure:"textfile"`
}

// LogConfig holds logging settings.
type LogConfig struct {
	// DebugFile enables the debug log.
	DebugFile string `mapstructure:"debug_file"`
}

// Load loads configuration from XDG paths, project overrides, and environment variables.
// Precedence (highest to lowest):
// 1. Environment variables (LEARNLAB_<SECTION>_<KEY>)
// 2. Project config (.learnlab.yaml in current directory or parent)
// 3. User config (~/.config/learnlab/config.yaml)
// 4. Built-in defaults
func Load() (*Config, error) {
	v, err := loadViper()
	if err != nil {
		return nil, err
	}
	return unmarshal(v)
}

func loadViper() (*viper.Viper, error) {
	v := viper.New()

	setDefaults(v)

	// Load user config from XDG path
	v.SetConfigName("config")
	v.SetConfigType("yaml")
	v.AddConfigPath(getUserConfigDir())

	if err := v.ReadInConfig(); err != nil {
		var notFound viper.ConfigFileNotFoundError
		if !errors.As(err, &notFound) {
			return nil, fmt.Errorf("reading user config: %w", err)
		}
	}

	// Load project config if present
	if projectConfig := findProjectConfig(); projectConfig != "" {
		projectViper := viper.New()
		projectViper.SetConfigFile(projectConfig)
		if err := projectViper.ReadInConfig(); err != nil {
			return nil, fmt.Errorf("reading project config %s: %w", projectConfig, err)
		}
		// Merge project config (takes precedence)
		if err := v.MergeConfigMap(projectViper.AllSettings()); err != nil {
			return nil, fmt.Errorf("merging project config: %w", err)
		}
	}

	bindEnv(v)
	return v, nil
}

// LoadFromPath loads configuration from a specific path (for testing).
func LoadFromPath(path string) (*Config, error) {
	v := viper.New()

	setDefaults(v)

	v.SetConfigFile(path)
	if err := v.ReadInConfig(); err != nil {
		return nil, fmt.Errorf("reading config from %s: %w", path, err)
	}

	bindEnv(v)
	return unmarshal(v)
}

func bindEnv(v *viper.Viper) {
	v.SetEnvPrefix(EnvPrefix)
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()
}

func unmarshal(v *viper.Viper) (*Config, error) {
	cfg := &Config{}
	if err := v.Unmarshal(cfg); err != nil {
		return nil, fmt.Errorf("unmarshaling config: %w", err)
	}

	// Expand ${VAR} references in paths
	cfg.Learn.OutputDir = expandEnv(cfg.Learn.OutputDir)
	cfg.Bench.OutputDir = expandEnv(cfg.Bench.OutputDir)
	cfg.State.DBPath = expandEnv(cfg.State.DBPath)
	cfg.Metrics.Textfile = expandEnv(cfg.Metrics.Textfile)
	cfg.Log.DebugFile = expandEnv(cfg.Log.DebugFile)

	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}

// Validate checks the numeric settings.
func (c *Config) Validate() error {
	if c.Bench.Repeat <= 0 {
		return fmt.Errorf("bench.repeat must be positive, got %d", c.Bench.Repeat)
	}
	if c.Learn.MaxRounds < 0 {
		return fmt.Errorf("learn.max_rounds must not be negative, got %d", c.Learn.MaxRounds)
	}
	if c.Series.Lower <= 0 || c.Series.Upper <= c.Series.Lower || c.Series.Step <= 0 {
		return fmt.Errorf("invalid series bounds %d..%d step %d", c.Series.Lower, c.Series.Upper, c.Series.Step)
	}
	return nil
}

// Save writes the given key to the user config file, keeping the keys
// already stored there.
func Save(key, value string) error {
	if err := ValidateKey(key); err != nil {
		return err
	}
	userConfigDir := getUserConfigDir()
	if err := os.MkdirAll(userConfigDir, 0700); err != nil {
		return fmt.Errorf("creating config directory: %w", err)
	}

	configPath := filepath.Join(userConfigDir, "config.yaml")

	v := viper.New()
	v.SetConfigFile(configPath)
	if _, err := os.Stat(configPath); err == nil {
		if err := v.ReadInConfig(); err != nil {
			return fmt.Errorf("reading user config: %w", err)
		}
	}

	parsed, err := ParseValue(key, value)
	if err != nil {
		return err
	}
	v.Set(key, parsed)

	return v.WriteConfig()
}

// GetUserConfigPath returns the path to the user config file.
func GetUserConfigPath() string {
	return filepath.Join(getUserConfigDir(), "config.yaml")
}

// GetProjectConfigPath returns the path to the project config file if it exists.
func GetProjectConfigPath() string {
	return findProjectConfig()
}

// setDefaults configures default values.
func setDefaults(v *viper.Viper) {
	d := Default()

	v.SetDefault("learn.algorithm", d.Learn.Algorithm)
	v.SetDefault("learn.interactive", d.Learn.Interactive)
	v.SetDefault("learn.tui", d.Learn.TUI)
	v.SetDefault("learn.output_dir", d.Learn.OutputDir)
	v.SetDefault("learn.open_browser", d.Learn.OpenBrowser)
	v.SetDefault("learn.dot_path", d.Learn.DotPath)
	v.SetDefault("learn.max_rounds", d.Learn.MaxRounds)

	v.SetDefault("bench.repeat", d.Bench.Repeat)
	v.SetDefault("bench.cache", d.Bench.Cache)
	v.SetDefault("bench.learners", d.Bench.Learners)
	v.SetDefault("bench.output_dir", d.Bench.OutputDir)
	v.SetDefault("bench.collect_garbage", d.Bench.CollectGarbage)

	v.SetDefault("series.lower", d.Series.Lower)
	v.SetDefault("series.upper", d.Series.Upper)
	v.SetDefault("series.step", d.Series.Step)
	v.SetDefault("series.alphabet_sizes", d.Series.AlphabetSizes)
	v.SetDefault("series.seed", d.Series.Seed)

	v.SetDefault("state.enabled", d.State.Enabled)
	v.SetDefault("state.db_path", d.State.DBPath)

	v.SetDefault("metrics.textfile", d.Metrics.Textfile)

	v.SetDefault("log.debug_file", d.Log.DebugFile)
}

// getUserConfigDir returns the XDG config directory for learnlab.
func getUserConfigDir() string {
	// Check XDG_CONFIG_HOME first
	if xdgConfig := os.Getenv("XDG_CONFIG_HOME"); xdgConfig != "" {
		return filepath.Join(xdgConfig, "learnlab")
	}

	// Fall back to ~/.config/learnlab
	home, err := os.UserHomeDir()
	if err != nil {
		return filepath.Join(".", ".config", "learnlab")
	}
	return filepath.Join(home, ".config", "learnlab")
}

// findProjectConfig searches for .learnlab.yaml in the current directory and parents.
func findProjectConfig() string {
	cwd, err := os.Getwd()
	if err != nil {
		return ""
	}

	for {
		configPath := filepath.Join(cwd, ProjectConfigName)
		if _, err := os.Stat(configPath); err == nil {
			return configPath
		}

		parent := filepath.Dir(cwd)
		if parent == cwd {
			break
		}
		cwd = parent
	}

	return ""
}

// expandEnv expands ${VAR} references in a string.
func expandEnv(s string) string {
	return os.ExpandEnv(s)
}

// Default returns a Config with default values.
func Default() *Config {
	return &Config{
		Learn: LearnConfig{
			Algorithm:   "lstar",
			OutputDir:   "",
			OpenBrowser: true,
			DotPath:     "dot",
		},
		Bench: BenchConfig{
			Repeat:         10,
			Cache:          true,
			Learners:       []string{},
			OutputDir:      "results",
			CollectGarbage: true,
		},
		Series: SeriesConfig{
			Lower:         10,
			Upper:         1000,
			Step:          10,
			AlphabetSizes: []int{2, 10, 100},
			Seed:          1,
		},
		State: StateConfig{
			Enabled: true,
		},
	}
}
