package config

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestAppendIgnorePath_CreatesAndIsIdempotent(t *testing.T) {
	dir := t.TempDir()

	changed, p, err := AppendIgnorePath(dir, "tests/**")
	require.NoError(t, err)
	assert.True(t, changed)
	assert.Equal(t, filepath.Join(dir, ".ssq.yml"), p)

	changed, _, err = AppendIgnorePath(dir, "tests/**")
	require.NoError(t, err)
	assert.False(t, changed)

	cfg, err := LoadFile(p)
	require.NoError(t, err)
	assert.Equal(t, []string{"tests/**"}, cfg.IgnorePaths)
}

func TestAppendIgnorePath_KeepsExistingContent(t *testing.T) {
	dir := t.TempDir()
	p := writeTemp(t, dir, ".ssq.yaml", "# team settings\nseverity: high\nignore_paths:\n  - 'vendor/'\n")

	changed, used, err := AppendIgnorePath(dir, "*.pem")
	require.NoError(t, err)
	assert.True(t, changed)
	assert.Equal(t, p, used)

	b, err := os.ReadFile(p)
	require.NoError(t, err)
	assert.Contains(t, string(b), "# team settings")

	cfg, err := LoadFile(p)
	require.NoError(t, err)
	assert.Equal(t, []string{"vendor/", "*.pem"}, cfg.IgnorePaths)
	require.NotNil(t, cfg.Severity)
	assert.Equal(t, "high", *cfg.Severity)
}

func TestAppendIgnorePath_Errors(t *testing.T) {
	dir := t.TempDir()
	_, _, err := AppendIgnorePath(dir, "[unclosed")
	require.Error(t, err)

	writeTemp(t, dir, ".ssq.yml", "ignore_paths: nope\n")
	_, _, err = AppendIgnorePath(dir, "x/")
	require.Error(t, err)
	assert.Contains(t, err.Error(), "not a list")
}
