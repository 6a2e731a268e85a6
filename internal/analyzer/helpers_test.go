package analyzer

import (
	"context"
	"fmt"
	"sync"

	"github.com/ludo-technologies/pyrefactor/domain"
)

func newUnit(file, name string, start, end int, body string) *domain.CodeUnit {
	return &domain.CodeUnit{
		FilePath:      file,
		Name:          name,
		QualifiedName: name,
		StartLine:     start,
		EndLine:       end,
		Parameters:    []string{},
		Body:          body,
	}
}

// funcBody returns a small distinct function whose body differs per seed
func funcBody(name string, seed int) string {
	return fmt.Sprintf("def %s(x):\n    y = x + %d\n    return y * %d\n", name, seed, seed+1)
}

// scriptedOracle returns fixed scores keyed by the unordered body pair and
// records every call.
type scriptedOracle struct {
	mu     sync.Mutex
	scores map[[2]string]float64
	errs   map[[2]string]error
	calls  map[[2]string]int
	def    float64
}

func newScriptedOracle() *scriptedOracle {
	return &scriptedOracle{
		scores: make(map[[2]string]float64),
		errs:   make(map[[2]string]error),
		calls:  make(map[[2]string]int),
	}
}

func bodyKey(a, b string) [2]string {
	if a > b {
		a, b = b, a
	}
	return [2]string{a, b}
}

func (o *scriptedOracle) set(a, b *domain.CodeUnit, score float64) {
	o.scores[bodyKey(a.Body, b.Body)] = score
}

func (o *scriptedOracle) fail(a, b *domain.CodeUnit, err error) {
	o.errs[bodyKey(a.Body, b.Body)] = err
}

func (o *scriptedOracle) Score(ctx context.Context, a, b string) (float64, error) {
	key := bodyKey(a, b)
	o.mu.Lock()
	o.calls[key]++
	err := o.errs[key]
	score, ok := o.scores[key]
	o.mu.Unlock()

	if err != nil {
		return 0, err
	}
	if ctx.Err() != nil {
		return 0, ctx.Err()
	}
	if !ok {
		return o.def, nil
	}
	return score, nil
}

func (o *scriptedOracle) totalCalls() int {
	o.mu.Lock()
	defer o.mu.Unlock()
	n := 0
	for _, c := range o.calls {
		n += c
	}
	return n
}

func (o *scriptedOracle) callsFor(a, b *domain.CodeUnit) int {
	o.mu.Lock()
	defer o.mu.Unlock()
	return o.calls[bodyKey(a.Body, b.Body)]
}

func scoreAllConfig() BuilderConfig {
	return BuilderConfig{
		PrefilterThreshold: 0,
		MinUnitLines:       1,
		MaxConcurrentCalls: 4,
		PerCallTimeout:     domain.DefaultPerCallTimeout,
	}
}
