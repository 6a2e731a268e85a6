package service

import (
	"bytes"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestProgressManager_NonInteractiveWriterRendersNothing(t *testing.T) {
	var buf bytes.Buffer
	pm := NewProgressManager()
	pm.SetWriter(&buf)
	assert.False(t, pm.IsInteractive())

	pm.StartPhase("Parsing files", 3)
	pm.Update(1, 3)
	pm.Update(3, 3)
	pm.Complete(true)
	pm.Close()

	assert.Empty(t, buf.String())
}

func TestProgressManager_InteractiveRendersPhases(t *testing.T) {
	var buf bytes.Buffer
	pm := &ProgressManagerImpl{writer: &buf, interactive: true}

	pm.StartPhase("Parsing files", 2)
	pm.Update(2, 2)
	pm.Complete(true)

	// Scoring starts with an unknown total; the bar appears on first update
	pm.StartPhase("Scoring pairs", 0)
	pm.Update(1, 4)
	pm.Complete(false)
	pm.Close()

	out := buf.String()
	assert.Contains(t, out, "Parsing files")
	assert.Contains(t, out, "Scoring pairs")
}

func TestNoOpProgressManager(t *testing.T) {
	pm := NewNoOpProgressManager()
	assert.False(t, pm.IsInteractive())
	assert.NotPanics(t, func() {
		pm.StartPhase("x", 10)
		pm.Update(5, 10)
		pm.Complete(true)
		pm.Close()
	})
}

func TestIsInteractiveEnvironment_DisabledByEnv(t *testing.T) {
	t.Setenv("PYREFACTOR_NO_PROGRESS", "1")
	assert.False(t, IsInteractiveEnvironment())
}
