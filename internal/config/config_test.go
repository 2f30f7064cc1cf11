package config

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestParseDefaults(t *testing.T) {
	cfg, err := Parse(nil)
	require.NoError(t, err)

	assert.Equal(t, "runwayml/stable-diffusion-v1-5", cfg.Checkpoint)
	assert.Equal(t, "float16", cfg.Precision)
	assert.Equal(t, "auto", cfg.Device)
	assert.Equal(t, "127.0.0.1:7860", cfg.Listen)
	assert.False(t, cfg.Share)

	w, h, err := cfg.Dimensions()
	require.NoError(t, err)
	assert.Equal(t, 512, w)
	assert.Equal(t, 512, h)
}

func TestParseFlagsAndEnv(t *testing.T) {
	t.Setenv("SD_CHECKPOINT", "stabilityai/sd-turbo")
	t.Setenv("SD_SHARE", "true")

	cfg, err := Parse([]string{"--device", "cpu", "--size", "768x512"})
	require.NoError(t, err)

	assert.Equal(t, "stabilityai/sd-turbo", cfg.Checkpoint)
	assert.True(t, cfg.Share)
	assert.Equal(t, "cpu", cfg.Device)

	w, h, err := cfg.Dimensions()
	require.NoError(t, err)
	assert.Equal(t, 768, w)
	assert.Equal(t, 512, h)
}

func TestParseRejectsBadValues(t *testing.T) {
	_, err := Parse([]string{"--device", "tpu"})
	assert.Error(t, err)

	for _, size := range []string{"512", "ax512", "512x0", "-1x512"} {
		_, err := Parse([]string{"--size=" + size})
		assert.ErrorIs(t, err, ErrInvalidSize, size)
	}
}

func TestLoadEnvFiles(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "test.env")
	require.NoError(t, os.WriteFile(path, []byte("SD_TEST_TITLE=from file\nSD_TEST_KEEP=from file\n"), 0600))

	t.Setenv("SD_TEST_KEEP", "from env")
	t.Setenv("SD_TEST_TITLE", "")
	require.NoError(t, os.Unsetenv("SD_TEST_TITLE"))

	require.NoError(t, LoadEnvFiles(filepath.Join(dir, "missing.env"), path))
	assert.Equal(t, "from file", os.Getenv("SD_TEST_TITLE"))
	assert.Equal(t, "from env", os.Getenv("SD_TEST_KEEP"))
}
