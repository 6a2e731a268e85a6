package config

import (
	"fmt"
	"os"
	"path/filepath"
	"time"

	"github.com/pelletier/go-toml/v2"
)

// ConfigFileName is the dedicated configuration file
const ConfigFileName = ".pyrefactor.toml"

// TomlFileConfig represents the structure of .pyrefactor.toml. Pointer
// fields distinguish an unset key from an explicit zero.
type TomlFileConfig struct {
	Detection TomlDetectionConfig `toml:"pyrefactor"`
	Oracle    TomlOracleConfig    `toml:"oracle"`
	Cache     TomlCacheConfig     `toml:"cache"`
	Input     TomlInputConfig     `toml:"input"`
	Output    TomlOutputConfig    `toml:"output"`
}

// TomlDetectionConfig represents the [pyrefactor] section
type TomlDetectionConfig struct {
	LongMethodThreshold      *int     `toml:"long_method_threshold"`
	ParamCountThreshold      *int     `toml:"param_count_threshold"`
	DuplicateThreshold       *float64 `toml:"duplicate_threshold"`
	PrefilterThreshold       *float64 `toml:"prefilter_threshold"`
	MinUnitLines             *int     `toml:"min_unit_lines"`
	MaxConcurrentOracleCalls *int     `toml:"max_concurrent_oracle_calls"`
	MaxConcurrentFiles       *int     `toml:"max_concurrent_files"`
	PerCallTimeout           string   `toml:"per_call_timeout"` // Go duration, e.g. "10s"
	MaxUnscoredFraction      *float64 `toml:"max_unscored_fraction"`
	ReproducibilityChecks    *int     `toml:"reproducibility_checks"`
	ReproducibilityEpsilon   *float64 `toml:"reproducibility_epsilon"`
}

type TomlOracleConfig struct {
	Provider          string   `toml:"provider"`
	Model             string   `toml:"model"`
	BaseURL           string   `toml:"base_url"`
	APIKeyEnv         string   `toml:"api_key_env"`
	RequestsPerSecond *float64 `toml:"requests_per_second"`
}

type TomlCacheConfig struct {
	Enabled *bool  `toml:"enabled"`
	Dir     string `toml:"dir"`
}

type TomlInputConfig struct {
	IncludePatterns []string `toml:"include_patterns"`
	ExcludePatterns []string `toml:"exclude_patterns"`
	Recursive       *bool    `toml:"recursive"`
}

type TomlOutputConfig struct {
	Format    string `toml:"format"`
	Directory string `toml:"directory"`
}

// TomlConfigLoader handles TOML-only configuration loading
type TomlConfigLoader struct{}

// NewTomlConfigLoader creates a new TOML configuration loader
func NewTomlConfigLoader() *TomlConfigLoader {
	return &TomlConfigLoader{}
}

// LoadConfig loads configuration from TOML files with ruff-like priority:
// 1. .pyrefactor.toml (dedicated config file)
// 2. pyproject.toml (with [tool.pyrefactor] section)
// 3. defaults
//
// A file that exists but cannot be decoded is an error rather than a
// silent fallback to defaults.
func (l *TomlConfigLoader) LoadConfig(startDir string) (*Config, error) {
	if path, err := l.FindConfigFile(startDir); err == nil {
		return l.LoadFile(path)
	}

	if path, err := findPyprojectToml(startDir); err == nil {
		cfg, found, err := LoadPyprojectConfig(path)
		if err != nil {
			return nil, err
		}
		if found {
			return cfg, nil
		}
	}

	return DefaultConfig(), nil
}

// LoadFile decodes one .pyrefactor.toml on top of the defaults
func (l *TomlConfigLoader) LoadFile(path string) (*Config, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("read %s: %w", path, err)
	}

	var fileCfg TomlFileConfig
	if err := toml.Unmarshal(data, &fileCfg); err != nil {
		return nil, fmt.Errorf("parse %s: %w", path, err)
	}

	cfg := DefaultConfig()
	if err := mergeTomlConfig(cfg, &fileCfg); err != nil {
		return nil, fmt.Errorf("%s: %w", path, err)
	}
	return cfg, nil
}

// FindConfigFile walks up from startDir looking for .pyrefactor.toml
func (l *TomlConfigLoader) FindConfigFile(startDir string) (string, error) {
	return walkUp(startDir, ConfigFileName)
}

func walkUp(startDir, name string) (string, error) {
	dir, err := filepath.Abs(startDir)
	if err != nil {
		return "", err
	}
	if info, err := os.Stat(dir); err == nil && !info.IsDir() {
		dir = filepath.Dir(dir)
	}

	for {
		candidate := filepath.Join(dir, name)
		if _, err := os.Stat(candidate); err == nil {
			return candidate, nil
		}

		parent := filepath.Dir(dir)
		if parent == dir {
			// Reached root directory
			break
		}
		dir = parent
	}

	return "", os.ErrNotExist
}

// mergeTomlConfig applies every key the file sets
func mergeTomlConfig(cfg *Config, src *TomlFileConfig) error {
	d := src.Detection
	setInt(&cfg.Detection.LongMethodThreshold, d.LongMethodThreshold)
	setInt(&cfg.Detection.ParamCountThreshold, d.ParamCountThreshold)
	setFloat(&cfg.Detection.DuplicateThreshold, d.DuplicateThreshold)
	setFloat(&cfg.Detection.PrefilterThreshold, d.PrefilterThreshold)
	setInt(&cfg.Detection.MinUnitLines, d.MinUnitLines)
	setInt(&cfg.Detection.MaxConcurrentOracleCalls, d.MaxConcurrentOracleCalls)
	setInt(&cfg.Detection.MaxConcurrentFiles, d.MaxConcurrentFiles)
	setFloat(&cfg.Detection.MaxUnscoredFraction, d.MaxUnscoredFraction)
	setInt(&cfg.Detection.ReproducibilityChecks, d.ReproducibilityChecks)
	setFloat(&cfg.Detection.ReproducibilityEpsilon, d.ReproducibilityEpsilon)
	if d.PerCallTimeout != "" {
		timeout, err := time.ParseDuration(d.PerCallTimeout)
		if err != nil {
			return fmt.Errorf("invalid per_call_timeout %q: %w", d.PerCallTimeout, err)
		}
		cfg.Detection.PerCallTimeout = timeout
	}

	setString(&cfg.Oracle.Provider, src.Oracle.Provider)
	setString(&cfg.Oracle.Model, src.Oracle.Model)
	setString(&cfg.Oracle.BaseURL, src.Oracle.BaseURL)
	setString(&cfg.Oracle.APIKeyEnv, src.Oracle.APIKeyEnv)
	setFloat(&cfg.Oracle.RequestsPerSecond, src.Oracle.RequestsPerSecond)

	setBool(&cfg.Cache.Enabled, src.Cache.Enabled)
	setString(&cfg.Cache.Dir, src.Cache.Dir)

	if len(src.Input.IncludePatterns) > 0 {
		cfg.Input.IncludePatterns = src.Input.IncludePatterns
	}
	if src.Input.ExcludePatterns != nil {
		cfg.Input.ExcludePatterns = src.Input.ExcludePatterns
	}
	setBool(&cfg.Input.Recursive, src.Input.Recursive)

	setString(&cfg.Output.Format, src.Output.Format)
	setString(&cfg.Output.Directory, src.Output.Directory)
	return nil
}

func setInt(dst *int, src *int) {
	if src != nil {
		*dst = *src
	}
}

func setFloat(dst *float64, src *float64) {
	if src != nil {
		*dst = *src
	}
}

func setBool(dst *bool, src *bool) {
	if src != nil {
		*dst = *src
	}
}

func setString(dst *string, src string) {
	if src != "" {
		*dst = src
	}
}
