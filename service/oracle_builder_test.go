package service

import (
	"context"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap/zaptest"

	"github.com/ludo-technologies/pyrefactor/domain"
	"github.com/ludo-technologies/pyrefactor/internal/oracle"
)

func TestNewOracleSetup_Uncached(t *testing.T) {
	setup, err := NewOracleSetup(OracleSetupOptions{
		Provider: oracle.Options{Provider: oracle.ProviderStructural},
	})
	require.NoError(t, err)
	defer setup.Close()

	assert.NotSame(t, setup.Oracle, setup.Verifier)
	assert.Zero(t, setup.CacheHits())
}

func TestNewOracleSetup_CachedServesRepeats(t *testing.T) {
	setup, err := NewOracleSetup(OracleSetupOptions{
		Provider:     oracle.Options{Provider: oracle.ProviderStructural},
		CacheEnabled: true,
		CacheDir:     filepath.Join(t.TempDir(), "cache"),
		Logger:       zaptest.NewLogger(t),
	})
	require.NoError(t, err)
	defer setup.Close()

	a := "def f(x):\n    return x + 1\n"
	b := "def g(y):\n    return y + 1\n"

	first, err := setup.Oracle.Score(context.Background(), a, b)
	require.NoError(t, err)
	second, err := setup.Oracle.Score(context.Background(), a, b)
	require.NoError(t, err)

	assert.Equal(t, first, second)
	assert.Equal(t, 1, setup.CacheHits())
	assert.NotSame(t, setup.Oracle, setup.Verifier)
}

func TestNewOracleSetup_Errors(t *testing.T) {
	_, err := NewOracleSetup(OracleSetupOptions{Provider: oracle.Options{Provider: "magic"}})
	assert.Error(t, err)

	_, err = NewOracleSetup(OracleSetupOptions{
		Provider:     oracle.Options{Provider: oracle.ProviderStructural},
		CacheEnabled: true,
	})
	assert.ErrorIs(t, err, domain.ErrConfig)
}

func TestOracleSetup_NilSafe(t *testing.T) {
	var setup *OracleSetup
	assert.Zero(t, setup.CacheHits())
	assert.NoError(t, setup.Close())
}
