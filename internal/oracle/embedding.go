package oracle

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"time"

	openai "github.com/sashabaranov/go-openai"
	"go.uber.org/zap"
	"golang.org/x/sync/singleflight"
	"golang.org/x/time/rate"
	"gonum.org/v1/gonum/floats"

	"github.com/ludo-technologies/pyrefactor/domain"
)

// DefaultEmbeddingModel is used when no model is configured
const DefaultEmbeddingModel = string(openai.SmallEmbedding3)

// DefaultEmbeddingRequestTimeout bounds one shared embedding fetch
const DefaultEmbeddingRequestTimeout = 30 * time.Second

// EmbeddingClient is the subset of the OpenAI client the oracle uses
type EmbeddingClient interface {
	CreateEmbeddings(ctx context.Context, conv openai.EmbeddingRequestConverter) (openai.EmbeddingResponse, error)
}

// EmbeddingOracle scores fragments by the cosine similarity of their
// embedding vectors, clamped to [0,1].
//
// Embeddings are memoized per fragment for the lifetime of the oracle and
// concurrent requests for the same fragment share one API call. The shared
// call runs under its own timeout so one caller's deadline does not fail
// the others waiting on it.
type EmbeddingOracle struct {
	client         EmbeddingClient
	model          string
	limiter        *rate.Limiter
	logger         *zap.Logger
	requestTimeout time.Duration
	memoize        bool

	mu     sync.RWMutex
	memo   map[string][]float64
	flight singleflight.Group
}

// EmbeddingOption configures an EmbeddingOracle
type EmbeddingOption func(*EmbeddingOracle)

// WithRequestsPerSecond paces API calls. Zero or less disables pacing.
func WithRequestsPerSecond(rps float64) EmbeddingOption {
	return func(o *EmbeddingOracle) {
		if rps > 0 {
			o.limiter = rate.NewLimiter(rate.Limit(rps), max(1, int(rps)))
		}
	}
}

// WithEmbeddingLogger sets the logger
func WithEmbeddingLogger(logger *zap.Logger) EmbeddingOption {
	return func(o *EmbeddingOracle) {
		if logger != nil {
			o.logger = logger
		}
	}
}

// WithRequestTimeout bounds each embedding fetch
func WithRequestTimeout(d time.Duration) EmbeddingOption {
	return func(o *EmbeddingOracle) {
		if d > 0 {
			o.requestTimeout = d
		}
	}
}

// WithoutMemo makes every Score reach the provider, for re-scoring runs
// that must observe provider drift.
func WithoutMemo() EmbeddingOption {
	return func(o *EmbeddingOracle) {
		o.memoize = false
	}
}

// NewEmbeddingOracle creates an embedding oracle over client
func NewEmbeddingOracle(client EmbeddingClient, model string, opts ...EmbeddingOption) *EmbeddingOracle {
	if model == "" {
		model = DefaultEmbeddingModel
	}
	o := &EmbeddingOracle{
		client: client,
		model:  model,
		logger:         zap.NewNop(),
		requestTimeout: DefaultEmbeddingRequestTimeout,
		memoize:        true,
		memo:           make(map[string][]float64),
	}
	for _, opt := range opts {
		opt(o)
	}
	return o
}

// NewOpenAIClient builds a go-openai client. An empty baseURL keeps the
// public endpoint.
func NewOpenAIClient(apiKey, baseURL string) *openai.Client {
	cfg := openai.DefaultConfig(apiKey)
	if baseURL != "" {
		cfg.BaseURL = baseURL
	}
	return openai.NewClientWithConfig(cfg)
}

// Score implements domain.SimilarityOracle
func (o *EmbeddingOracle) Score(ctx context.Context, fragmentA, fragmentB string) (float64, error) {
	va, err := o.embedding(ctx, fragmentA)
	if err != nil {
		return 0, err
	}
	vb, err := o.embedding(ctx, fragmentB)
	if err != nil {
		return 0, err
	}
	return Cosine(va, vb)
}

// Cosine returns the cosine similarity of two vectors clamped to [0,1].
func Cosine(a, b []float64) (float64, error) {
	if len(a) == 0 || len(a) != len(b) {
		return 0, domain.NewOracleUnavailableError(
			fmt.Sprintf("embedding dimensions differ: %d vs %d", len(a), len(b)), nil)
	}
	na, nb := floats.Norm(a, 2), floats.Norm(b, 2)
	if na == 0 || nb == 0 {
		return 0, nil
	}
	sim := floats.Dot(a, b) / (na * nb)
	return min(1.0, max(0.0, sim)), nil
}

func (o *EmbeddingOracle) embedding(ctx context.Context, fragment string) ([]float64, error) {
	if !o.memoize {
		fetchCtx, cancel := context.WithTimeout(ctx, o.requestTimeout)
		defer cancel()
		return o.fetch(fetchCtx, fragment)
	}

	key := FragmentHash(o.model, fragment)

	o.mu.RLock()
	v, ok := o.memo[key]
	o.mu.RUnlock()
	if ok {
		return v, nil
	}

	ch := o.flight.DoChan(key, func() (interface{}, error) {
		fetchCtx, cancel := context.WithTimeout(context.WithoutCancel(ctx), o.requestTimeout)
		defer cancel()

		vec, err := o.fetch(fetchCtx, fragment)
		if err != nil {
			return nil, err
		}
		o.mu.Lock()
		o.memo[key] = vec
		o.mu.Unlock()
		return vec, nil
	})

	select {
	case res := <-ch:
		if res.Err != nil {
			return nil, res.Err
		}
		return res.Val.([]float64), nil
	case <-ctx.Done():
		return nil, domain.NewOracleTimeoutError("embedding request timed out", ctx.Err())
	}
}

func (o *EmbeddingOracle) fetch(ctx context.Context, fragment string) ([]float64, error) {
	if o.limiter != nil {
		if err := o.limiter.Wait(ctx); err != nil {
			return nil, domain.NewOracleTimeoutError("waiting for rate limiter", err)
		}
	}

	resp, err := o.client.CreateEmbeddings(ctx, openai.EmbeddingRequest{
		Input: []string{fragment},
		Model: openai.EmbeddingModel(o.model),
	})
	if err != nil {
		o.logger.Debug("embedding request failed", zap.String("model", o.model), zap.Error(err))
		if errors.Is(err, context.DeadlineExceeded) || ctx.Err() != nil {
			return nil, domain.NewOracleTimeoutError("embedding request timed out", err)
		}
		return nil, domain.NewOracleUnavailableError("embedding request failed", err)
	}
	if len(resp.Data) == 0 || len(resp.Data[0].Embedding) == 0 {
		return nil, domain.NewOracleUnavailableError("embedding response has no data", nil)
	}

	raw := resp.Data[0].Embedding
	vec := make([]float64, len(raw))
	for i, x := range raw {
		vec[i] = float64(x)
	}
	return vec, nil
}

var _ domain.SimilarityOracle = (*EmbeddingOracle)(nil)
