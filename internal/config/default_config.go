package config

import (
	"bytes"
	_ "embed"
	"fmt"
	"text/template"

	"github.com/ludo-technologies/pyrefactor/domain"
	"github.com/ludo-technologies/pyrefactor/internal/cache"
	"github.com/ludo-technologies/pyrefactor/internal/oracle"
)

// defaultConfigTmpl contains the embedded default configuration template
//
//go:embed default_config.toml.tmpl
var defaultConfigTmpl string

// DefaultConfigValues holds all values used to render the default config template.
// All values are sourced from the domain package to ensure a single source of truth.
type DefaultConfigValues struct {
	LongMethodThreshold int
	ParamCountThreshold int

	DuplicateThreshold       float64
	PrefilterThreshold       float64
	MinUnitLines             int
	MaxConcurrentOracleCalls int
	PerCallTimeout           string
	MaxUnscoredFraction      float64
	ReproducibilityEpsilon   float64

	OracleProvider string
	EmbeddingModel string
	APIKeyEnv      string
	CacheDir       string
}

func newDefaultConfigValues() DefaultConfigValues {
	return DefaultConfigValues{
		LongMethodThreshold:      domain.DefaultLongMethodThreshold,
		ParamCountThreshold:      domain.DefaultParamCountThreshold,
		DuplicateThreshold:       domain.DefaultDuplicateThreshold,
		PrefilterThreshold:       domain.DefaultPrefilterThreshold,
		MinUnitLines:             domain.DefaultMinUnitLines,
		MaxConcurrentOracleCalls: domain.DefaultMaxConcurrentOracleCalls,
		PerCallTimeout:           domain.DefaultPerCallTimeout.String(),
		MaxUnscoredFraction:      domain.DefaultMaxUnscoredFraction,
		ReproducibilityEpsilon:   domain.DefaultReproducibilityEpsilon,
		OracleProvider:           oracle.ProviderStructural,
		EmbeddingModel:           oracle.DefaultEmbeddingModel,
		APIKeyEnv:                "OPENAI_API_KEY",
		CacheDir:                 cache.DefaultDir,
	}
}

// GenerateDefaultConfigTOML renders the default config template with domain values
// and returns the resulting TOML string.
func GenerateDefaultConfigTOML() (string, error) {
	tmpl, err := template.New("default_config").Parse(defaultConfigTmpl)
	if err != nil {
		return "", fmt.Errorf("failed to parse default config template: %w", err)
	}

	var buf bytes.Buffer
	if err := tmpl.Execute(&buf, newDefaultConfigValues()); err != nil {
		return "", fmt.Errorf("failed to render default config template: %w", err)
	}

	return buf.String(), nil
}
