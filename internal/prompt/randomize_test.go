package prompt

import (
	"context"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func writeFile(t *testing.T, content string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "examples.yaml")
	require.NoError(t, os.WriteFile(path, []byte(content), 0600))
	return path
}

func TestLoadExamplesList(t *testing.T) {
	examples, err := LoadExamples(writeFile(t, "- a red bicycle\n- '  '\n- a blue boat\n"))
	require.NoError(t, err)
	assert.Equal(t, []string{"a red bicycle", "a blue boat"}, examples)
}

func TestLoadExamplesMapping(t *testing.T) {
	examples, err := LoadExamples(writeFile(t, "examples:\n  - a green tram\n"))
	require.NoError(t, err)
	assert.Equal(t, []string{"a green tram"}, examples)
}

func TestLoadExamplesErrors(t *testing.T) {
	_, err := LoadExamples(filepath.Join(t.TempDir(), "missing.yaml"))
	assert.ErrorIs(t, err, os.ErrNotExist)

	_, err = LoadExamples(writeFile(t, "examples: []\n"))
	assert.ErrorIs(t, err, ErrNoExamples)
}

func TestRandomize(t *testing.T) {
	_, err := NewRandomizerWithPrompts(nil)
	assert.ErrorIs(t, err, ErrNoExamples)

	r, err := NewRandomizerWithPrompts(DefaultExamples)
	require.NoError(t, err)
	assert.Equal(t, DefaultExamples, r.Examples())
	for i := 0; i < 20; i++ {
		assert.Contains(t, DefaultExamples, r.Randomize(context.Background()))
	}
}
