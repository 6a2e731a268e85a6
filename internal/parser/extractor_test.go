package parser

import (
	"context"
	"slices"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/ludo-technologies/pyrefactor/domain"
)

const extractorSource = `import functools


def top(a, b=1, *args, c: int, d: str = "x", **kwargs):
    return a


class Service:
    def method(self, x, /, y, *, z):
        def helper(q):
            return q * 2
        return helper(x) + y + z

    @staticmethod
    @functools.lru_cache(maxsize=None)
    def cached(key):
        return key


async def fetch(url):
    square = lambda v: v * v
    return await url.get(square)
`

func collect(t *testing.T, source string) []domain.CodeUnit {
	t.Helper()
	units, err := ExtractUnits("pkg/mod.py", []byte(source))
	require.NoError(t, err)
	return slices.Collect(units)
}

func TestExtractUnits(t *testing.T) {
	units := collect(t, extractorSource)

	names := make([]string, 0, len(units))
	for _, u := range units {
		names = append(names, u.QualifiedName)
	}
	assert.Equal(t, []string{
		"top",
		"Service.method",
		"Service.method.helper",
		"Service.cached",
		"fetch",
	}, names)

	t.Run("parameters", func(t *testing.T) {
		assert.Equal(t, []string{"a", "b", "args", "c", "d", "kwargs"}, units[0].Parameters)
		assert.Equal(t, []string{"self", "x", "y", "z"}, units[1].Parameters)
		assert.Equal(t, []string{"key"}, units[3].Parameters)
	})

	t.Run("spans", func(t *testing.T) {
		assert.Equal(t, 4, units[0].StartLine)
		assert.Equal(t, 5, units[0].EndLine)
		assert.Equal(t, 2, units[0].LineCount())

		method, helper := units[1], units[2]
		assert.Equal(t, 9, method.StartLine)
		assert.Equal(t, 12, method.EndLine)
		assert.Equal(t, 4, method.StartCol)
		assert.True(t, method.Contains(&helper))
		assert.Contains(t, method.Body, "def helper(q):")
	})

	t.Run("depth", func(t *testing.T) {
		assert.Equal(t, 0, units[0].Depth)
		assert.Equal(t, 0, units[1].Depth)
		assert.Equal(t, 1, units[2].Depth)
	})

	t.Run("decorators excluded from span", func(t *testing.T) {
		cached := units[3]
		assert.Equal(t, []string{"staticmethod", "functools.lru_cache(maxsize=None)"}, cached.Decorators)
		assert.Equal(t, 16, cached.StartLine)
		assert.NotContains(t, cached.Body, "@staticmethod")
	})

	t.Run("async", func(t *testing.T) {
		fetch := units[4]
		assert.True(t, fetch.Async)
		assert.False(t, units[0].Async)
		assert.Equal(t, []string{"url"}, fetch.Parameters)
	})
}

func TestExtractUnits_DuplicateParametersPreserved(t *testing.T) {
	units := collect(t, "def f(a, b, c, d, e, f):\n    pass\n")

	require.Len(t, units, 1)
	assert.Equal(t, 6, units[0].ParameterCount())
}

func TestExtractUnits_NoFunctions(t *testing.T) {
	units := collect(t, "x = 1\nprint(x)\n")
	assert.Empty(t, units)
}

func TestExtractUnits_SyntaxError(t *testing.T) {
	_, err := ExtractUnits("broken.py", []byte("def broken(:\n    pass\n"))

	require.Error(t, err)
	assert.ErrorIs(t, err, domain.ErrParse)
	assert.Contains(t, err.Error(), "broken.py")
}

func TestExtractUnits_Restartable(t *testing.T) {
	units, err := ExtractUnits("pkg/mod.py", []byte(extractorSource))
	require.NoError(t, err)

	first := slices.Collect(units)
	second := slices.Collect(units)
	assert.Equal(t, first, second)
}

func TestExtractUnits_EarlyStop(t *testing.T) {
	units, err := ExtractUnits("pkg/mod.py", []byte(extractorSource))
	require.NoError(t, err)

	seen := 0
	for range units {
		seen++
		if seen == 2 {
			break
		}
	}
	assert.Equal(t, 2, seen)
}

func TestParser_Parse(t *testing.T) {
	p := New()
	defer p.Close()

	_, err := p.Parse(context.Background(), []byte("def ok():\n    return 1\n"))
	assert.NoError(t, err)

	_, err = p.Parse(context.Background(), []byte("def incomplete(\n"))
	assert.ErrorIs(t, err, domain.ErrParse)
}

func TestExtractUnits_InterruptedParseDoesNotLeakIntoNextFile(t *testing.T) {
	p := New()
	defer p.Close()

	var big strings.Builder
	for i := 0; i < 200000; i++ {
		big.WriteString("def f(a):\n    return a\n")
	}

	ctx, cancel := context.WithTimeout(context.Background(), 2*time.Millisecond)
	defer cancel()
	_, err := p.ExtractUnits(ctx, "big.py", []byte(big.String()))
	if err == nil {
		t.Log("large parse finished before the deadline")
	}

	seq, err := p.ExtractUnits(context.Background(), "small.py", []byte("def ok(a, b):\n    return a\n"))
	require.NoError(t, err)
	units := slices.Collect(seq)
	require.Len(t, units, 1)
	assert.Equal(t, "ok", units[0].Name)
	assert.Equal(t, []string{"a", "b"}, units[0].Parameters)
}

func TestRelease_ResetsPooledParser(t *testing.T) {
	p := Acquire()
	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	_, _ = p.Parse(ctx, []byte(strings.Repeat("x = 1\n", 50000)))
	Release(p)

	q := Acquire()
	defer Release(q)
	result, err := q.Parse(context.Background(), []byte("def g():\n    pass\n"))
	require.NoError(t, err)
	assert.Len(t, FindNodes(result.RootNode, "function_definition"), 1)
}
