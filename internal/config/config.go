package config

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/spf13/viper"

	"github.com/ludo-technologies/pyrefactor/domain"
	"github.com/ludo-technologies/pyrefactor/internal/cache"
	"github.com/ludo-technologies/pyrefactor/internal/oracle"
)

// EnvPrefix prefixes environment overrides, e.g. PYREFACTOR_ORACLE_PROVIDER
const EnvPrefix = "PYREFACTOR"

// Config represents the main configuration structure
type Config struct {
	// Detection holds the thresholds and concurrency limits of a run
	Detection DetectionConfig `mapstructure:"pyrefactor" yaml:"pyrefactor"`

	// Oracle selects the similarity provider
	Oracle OracleConfig `mapstructure:"oracle" yaml:"oracle"`

	// Cache configures the persistent score cache
	Cache CacheConfig `mapstructure:"cache" yaml:"cache"`

	// Input controls file collection
	Input InputConfig `mapstructure:"input" yaml:"input"`

	// Output holds output formatting configuration
	Output OutputConfig `mapstructure:"output" yaml:"output"`
}

// DetectionConfig holds the analysis options
type DetectionConfig struct {
	LongMethodThreshold int     `mapstructure:"long_method_threshold" yaml:"long_method_threshold"`
	ParamCountThreshold int     `mapstructure:"param_count_threshold" yaml:"param_count_threshold"`
	DuplicateThreshold  float64 `mapstructure:"duplicate_threshold" yaml:"duplicate_threshold"`
	PrefilterThreshold  float64 `mapstructure:"prefilter_threshold" yaml:"prefilter_threshold"`
	MinUnitLines        int     `mapstructure:"min_unit_lines" yaml:"min_unit_lines"`

	MaxConcurrentOracleCalls int           `mapstructure:"max_concurrent_oracle_calls" yaml:"max_concurrent_oracle_calls"`
	MaxConcurrentFiles       int           `mapstructure:"max_concurrent_files" yaml:"max_concurrent_files"`
	PerCallTimeout           time.Duration `mapstructure:"per_call_timeout" yaml:"per_call_timeout"`

	// MaxUnscoredFraction flags the run degraded above this unscored share
	MaxUnscoredFraction float64 `mapstructure:"max_unscored_fraction" yaml:"max_unscored_fraction"`

	ReproducibilityChecks  int     `mapstructure:"reproducibility_checks" yaml:"reproducibility_checks"`
	ReproducibilityEpsilon float64 `mapstructure:"reproducibility_epsilon" yaml:"reproducibility_epsilon"`
}

// OracleConfig selects the similarity provider
type OracleConfig struct {
	// Provider is structural or openai
	Provider string `mapstructure:"provider" yaml:"provider"`
	Model    string `mapstructure:"model" yaml:"model"`
	BaseURL  string `mapstructure:"base_url" yaml:"base_url"`

	// APIKeyEnv names the environment variable holding the API key.
	// The key itself never lives in a config file.
	APIKeyEnv string `mapstructure:"api_key_env" yaml:"api_key_env"`

	RequestsPerSecond float64 `mapstructure:"requests_per_second" yaml:"requests_per_second"`
}

// APIKey reads the key from the configured environment variable
func (o OracleConfig) APIKey() string {
	if o.APIKeyEnv == "" {
		return ""
	}
	return os.Getenv(o.APIKeyEnv)
}

// CacheConfig configures the score cache
type CacheConfig struct {
	Enabled bool   `mapstructure:"enabled" yaml:"enabled"`
	Dir     string `mapstructure:"dir" yaml:"dir"`
}

// InputConfig controls which files are analyzed
type InputConfig struct {
	IncludePatterns []string `mapstructure:"include_patterns" yaml:"include_patterns"`
	ExcludePatterns []string `mapstructure:"exclude_patterns" yaml:"exclude_patterns"`
	Recursive       bool     `mapstructure:"recursive" yaml:"recursive"`
}

// OutputConfig holds configuration for output formatting
type OutputConfig struct {
	// Format specifies the output format: text, json, yaml, csv
	Format string `mapstructure:"format" yaml:"format"`

	// Directory receives report files when set
	Directory string `mapstructure:"directory" yaml:"directory"`
}

// DefaultConfig returns the default configuration
func DefaultConfig() *Config {
	return &Config{
		Detection: DetectionConfig{
			LongMethodThreshold:      domain.DefaultLongMethodThreshold,
			ParamCountThreshold:      domain.DefaultParamCountThreshold,
			DuplicateThreshold:       domain.DefaultDuplicateThreshold,
			PrefilterThreshold:       domain.DefaultPrefilterThreshold,
			MinUnitLines:             domain.DefaultMinUnitLines,
			MaxConcurrentOracleCalls: domain.DefaultMaxConcurrentOracleCalls,
			MaxConcurrentFiles:       0,
			PerCallTimeout:           domain.DefaultPerCallTimeout,
			MaxUnscoredFraction:      domain.DefaultMaxUnscoredFraction,
			ReproducibilityChecks:    0,
			ReproducibilityEpsilon:   domain.DefaultReproducibilityEpsilon,
		},
		Oracle: OracleConfig{
			Provider:          oracle.ProviderStructural,
			APIKeyEnv:         "OPENAI_API_KEY",
			RequestsPerSecond: 0,
		},
		Cache: CacheConfig{
			Enabled: false,
			Dir:     cache.DefaultDir,
		},
		Input: InputConfig{
			IncludePatterns: []string{"**/*.py"},
			ExcludePatterns: []string{"**/.venv/**", "**/venv/**", "**/__pycache__/**", "**/.git/**"},
			Recursive:       true,
		},
		Output: OutputConfig{
			Format: "text",
		},
	}
}

// LoadConfig loads configuration for an analysis of targetDir.
//
// An explicit configPath is read with viper (TOML, YAML or JSON by
// extension). Without one, .pyrefactor.toml and then pyproject.toml
// [tool.pyrefactor] are searched from targetDir upwards. Environment
// variables prefixed with PYREFACTOR_ override file values in both cases.
func LoadConfig(configPath, targetDir string) (*Config, error) {
	cfg := DefaultConfig()

	if configPath == "" {
		if targetDir == "" {
			targetDir = "."
		}
		loaded, err := NewTomlConfigLoader().LoadConfig(targetDir)
		if err != nil {
			return nil, domain.NewConfigError("failed to load configuration", err)
		}
		cfg = loaded
	}

	v := newViper(cfg)
	if configPath != "" {
		v.SetConfigFile(configPath)
		if err := v.ReadInConfig(); err != nil {
			return nil, domain.NewConfigError(fmt.Sprintf("failed to read config file %s", configPath), err)
		}
	}

	if err := v.Unmarshal(cfg); err != nil {
		return nil, domain.NewConfigError("failed to unmarshal config", err)
	}

	if err := cfg.Validate(); err != nil {
		return nil, err
	}

	return cfg, nil
}

// newViper registers every key with the current values as defaults so
// environment overrides apply even when no file sets the key.
func newViper(base *Config) *viper.Viper {
	v := viper.New()
	v.SetEnvPrefix(EnvPrefix)
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()

	d := base.Detection
	v.SetDefault("pyrefactor.long_method_threshold", d.LongMethodThreshold)
	v.SetDefault("pyrefactor.param_count_threshold", d.ParamCountThreshold)
	v.SetDefault("pyrefactor.duplicate_threshold", d.DuplicateThreshold)
	v.SetDefault("pyrefactor.prefilter_threshold", d.PrefilterThreshold)
	v.SetDefault("pyrefactor.min_unit_lines", d.MinUnitLines)
	v.SetDefault("pyrefactor.max_concurrent_oracle_calls", d.MaxConcurrentOracleCalls)
	v.SetDefault("pyrefactor.max_concurrent_files", d.MaxConcurrentFiles)
	v.SetDefault("pyrefactor.per_call_timeout", d.PerCallTimeout)
	v.SetDefault("pyrefactor.max_unscored_fraction", d.MaxUnscoredFraction)
	v.SetDefault("pyrefactor.reproducibility_checks", d.ReproducibilityChecks)
	v.SetDefault("pyrefactor.reproducibility_epsilon", d.ReproducibilityEpsilon)

	v.SetDefault("oracle.provider", base.Oracle.Provider)
	v.SetDefault("oracle.model", base.Oracle.Model)
	v.SetDefault("oracle.base_url", base.Oracle.BaseURL)
	v.SetDefault("oracle.api_key_env", base.Oracle.APIKeyEnv)
	v.SetDefault("oracle.requests_per_second", base.Oracle.RequestsPerSecond)

	v.SetDefault("cache.enabled", base.Cache.Enabled)
	v.SetDefault("cache.dir", base.Cache.Dir)

	v.SetDefault("input.include_patterns", base.Input.IncludePatterns)
	v.SetDefault("input.exclude_patterns", base.Input.ExcludePatterns)
	v.SetDefault("input.recursive", base.Input.Recursive)

	v.SetDefault("output.format", base.Output.Format)
	v.SetDefault("output.directory", base.Output.Directory)

	return v
}

// Validate validates the configuration values. Every violation is a
// configuration error.
func (c *Config) Validate() error {
	if err := c.ToAnalysisOptions().Validate(); err != nil {
		return err
	}

	switch c.Oracle.Provider {
	case oracle.ProviderStructural, oracle.ProviderOpenAI:
	default:
		return domain.NewConfigError(
			fmt.Sprintf("invalid oracle.provider '%s', must be one of: structural, openai", c.Oracle.Provider), nil)
	}

	if c.Oracle.RequestsPerSecond < 0 {
		return domain.NewConfigError(
			fmt.Sprintf("oracle.requests_per_second must be >= 0, got %f", c.Oracle.RequestsPerSecond), nil)
	}

	if c.Cache.Enabled && c.Cache.Dir == "" {
		return domain.NewConfigError("cache.dir cannot be empty when the cache is enabled", nil)
	}

	if _, err := domain.ParseOutputFormat(c.Output.Format); err != nil {
		return domain.NewConfigError(
			fmt.Sprintf("invalid output.format '%s', must be one of: text, json, yaml, csv", c.Output.Format), err)
	}

	if len(c.Input.IncludePatterns) == 0 {
		return domain.NewConfigError("input.include_patterns cannot be empty", nil)
	}

	return nil
}

// ToAnalysisOptions converts the detection settings to run options
func (c *Config) ToAnalysisOptions() domain.AnalysisOptions {
	d := c.Detection
	return domain.AnalysisOptions{
		Thresholds: domain.Thresholds{
			LongMethod: d.LongMethodThreshold,
			ParamCount: d.ParamCountThreshold,
		},
		DuplicateThreshold:       d.DuplicateThreshold,
		PrefilterThreshold:       d.PrefilterThreshold,
		MinUnitLines:             d.MinUnitLines,
		MaxConcurrentOracleCalls: d.MaxConcurrentOracleCalls,
		MaxConcurrentFiles:       d.MaxConcurrentFiles,
		PerCallTimeout:           d.PerCallTimeout,
		MaxUnscoredFraction:      d.MaxUnscoredFraction,
		ReproducibilityChecks:    d.ReproducibilityChecks,
		ReproducibilityEpsilon:   d.ReproducibilityEpsilon,
	}
}

// OracleOptions converts the oracle section to provider options, reading
// the API key from the environment.
func (c *Config) OracleOptions() oracle.Options {
	return oracle.Options{
		Provider:          c.Oracle.Provider,
		Model:             c.Oracle.Model,
		BaseURL:           c.Oracle.BaseURL,
		APIKey:            c.Oracle.APIKey(),
		RequestsPerSecond: c.Oracle.RequestsPerSecond,
	}
}

// CacheDir resolves the cache directory against the analyzed project root
func (c *Config) CacheDir(projectRoot string) string {
	if filepath.IsAbs(c.Cache.Dir) || projectRoot == "" {
		return c.Cache.Dir
	}
	return filepath.Join(projectRoot, c.Cache.Dir)
}
