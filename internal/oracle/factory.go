package oracle

import (
	"fmt"

	"go.uber.org/zap"

	"github.com/ludo-technologies/pyrefactor/domain"
)

// Supported providers
const (
	ProviderStructural = "structural"
	ProviderOpenAI     = "openai"
)

// Options selects and configures a provider
type Options struct {
	Provider          string
	Model             string
	BaseURL           string
	APIKey            string
	RequestsPerSecond float64

	// NoMemo builds a provider that reaches the backend on every call
	NoMemo bool
}

// Namespace identifies the provider and model for cache keys
func (o Options) Namespace() string {
	switch o.Provider {
	case ProviderOpenAI:
		model := o.Model
		if model == "" {
			model = DefaultEmbeddingModel
		}
		return ProviderOpenAI + ":" + model
	default:
		return ProviderStructural + ":v1"
	}
}

// New builds the configured provider. Unknown providers and a missing API
// key are configuration errors.
func New(opts Options, logger *zap.Logger) (domain.SimilarityOracle, error) {
	switch opts.Provider {
	case "", ProviderStructural:
		if opts.NoMemo {
			return NewStructuralOracle(WithoutProfileMemo()), nil
		}
		return NewStructuralOracle(), nil
	case ProviderOpenAI:
		if opts.APIKey == "" {
			return nil, domain.NewConfigError("openai oracle requires an API key", nil)
		}
		client := NewOpenAIClient(opts.APIKey, opts.BaseURL)
		eopts := []EmbeddingOption{
			WithRequestsPerSecond(opts.RequestsPerSecond),
			WithEmbeddingLogger(logger),
		}
		if opts.NoMemo {
			eopts = append(eopts, WithoutMemo())
		}
		return NewEmbeddingOracle(client, opts.Model, eopts...), nil
	default:
		return nil, domain.NewConfigError(fmt.Sprintf("unknown oracle provider %q", opts.Provider), nil)
	}
}

// NewVerifier builds a fresh unmemoized instance of the configured provider
// for re-scoring pairs.
func NewVerifier(opts Options, logger *zap.Logger) (domain.SimilarityOracle, error) {
	opts.NoMemo = true
	return New(opts, logger)
}
