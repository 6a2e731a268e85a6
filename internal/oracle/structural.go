package oracle

import (
	"context"
	"sync"

	"github.com/cespare/xxhash/v2"

	"github.com/ludo-technologies/pyrefactor/domain"
	"github.com/ludo-technologies/pyrefactor/internal/parser"
)

// StructuralOracle scores two fragments by comparing their normalized
// operation sequences. It needs no network and is deterministic.
type StructuralOracle struct {
	profiles sync.Map // xxhash of fragment -> *parser.Profile
	noMemo   bool
}

// StructuralOption configures a StructuralOracle
type StructuralOption func(*StructuralOracle)

// WithoutProfileMemo reparses both fragments on every Score
func WithoutProfileMemo() StructuralOption {
	return func(o *StructuralOracle) {
		o.noMemo = true
	}
}

// NewStructuralOracle creates a structural oracle
func NewStructuralOracle(opts ...StructuralOption) *StructuralOracle {
	o := &StructuralOracle{}
	for _, opt := range opts {
		opt(o)
	}
	return o
}

// Score implements domain.SimilarityOracle
func (o *StructuralOracle) Score(ctx context.Context, fragmentA, fragmentB string) (float64, error) {
	pa, err := o.profile(ctx, fragmentA)
	if err != nil {
		return 0, err
	}
	pb, err := o.profile(ctx, fragmentB)
	if err != nil {
		return 0, err
	}

	// Fragments that do not parse have no reliable operation sequence, so
	// both sides fall back to the lexical stream.
	if pa.HasError || pb.HasError || len(pa.Operations) == 0 || len(pb.Operations) == 0 {
		return SequenceRatio(pa.Tokens, pb.Tokens), nil
	}
	return SequenceRatio(pa.Operations, pb.Operations), nil
}

func (o *StructuralOracle) profile(ctx context.Context, fragment string) (*parser.Profile, error) {
	key := xxhash.Sum64String(fragment)
	if !o.noMemo {
		if p, ok := o.profiles.Load(key); ok {
			return p.(*parser.Profile), nil
		}
	}

	psr := parser.Acquire()
	defer parser.Release(psr)

	p, err := psr.Profile(ctx, []byte(fragment))
	if err != nil {
		if ctx.Err() != nil {
			return nil, domain.NewOracleTimeoutError("structural profile interrupted", err)
		}
		return nil, domain.NewOracleUnavailableError("structural profile failed", err)
	}
	if !o.noMemo {
		o.profiles.Store(key, p)
	}
	return p, nil
}

var _ domain.SimilarityOracle = (*StructuralOracle)(nil)
