package analyzer

import (
	"context"
	"runtime"

	"github.com/cespare/xxhash/v2"
	"github.com/sourcegraph/conc/pool"

	"github.com/ludo-technologies/pyrefactor/domain"
	"github.com/ludo-technologies/pyrefactor/internal/parser"
)

// Signature is the cheap pre-filter view of a unit: a multiset of
// normalized token hashes plus the normalized body text.
type Signature struct {
	weights  map[uint64]int
	total    int
	bodyText string
}

// NewSignature builds a signature from a fragment profile
func NewSignature(profile *parser.Profile) Signature {
	sig := Signature{weights: make(map[uint64]int, len(profile.Tokens))}
	for _, tok := range profile.Tokens {
		sig.weights[xxhash.Sum64String(tok)]++
	}
	sig.total = len(profile.Tokens)
	sig.bodyText = profile.BodyText
	return sig
}

// Empty reports whether the signature has no tokens
func (s Signature) Empty() bool { return s.total == 0 }

// IdenticalBody reports whether both units have the same non-empty body
// once names, signatures, comments and layout are ignored.
func (s Signature) IdenticalBody(other Signature) bool {
	return s.bodyText != "" && s.bodyText == other.bodyText
}

// WeightedJaccard returns sum(min)/sum(max) over the two token multisets.
// Two empty signatures are identical.
func (s Signature) WeightedJaccard(other Signature) float64 {
	if s.total == 0 && other.total == 0 {
		return 1.0
	}
	var inter, union int
	for h, a := range s.weights {
		b := other.weights[h]
		inter += min(a, b)
		union += max(a, b)
	}
	for h, b := range other.weights {
		if _, ok := s.weights[h]; !ok {
			union += b
		}
	}
	if union == 0 {
		return 0.0
	}
	return float64(inter) / float64(union)
}

// ComputeSignatures profiles every unit body in parallel. Each worker owns
// its parser because tree-sitter parsers are not thread-safe. Units whose
// profile cannot be computed get an empty signature.
func ComputeSignatures(ctx context.Context, units []*domain.CodeUnit, maxWorkers int) []Signature {
	sigs := make([]Signature, len(units))
	if len(units) == 0 {
		return sigs
	}
	if maxWorkers <= 0 {
		maxWorkers = runtime.NumCPU()
	}

	p := pool.New().WithMaxGoroutines(maxWorkers)
	for i, u := range units {
		p.Go(func() {
			psr := parser.Acquire()
			defer parser.Release(psr)

			profile, err := psr.Profile(ctx, []byte(u.Body))
			if err != nil {
				sigs[i] = Signature{weights: map[uint64]int{}}
				return
			}
			sigs[i] = NewSignature(profile)
		})
	}
	p.Wait()

	return sigs
}
