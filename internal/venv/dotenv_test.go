package venv

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// TestReadEnvFile verifies parsing of the application's .env file.
func TestReadEnvFile(t *testing.T) {
	path := filepath.Join(t.TempDir(), ".env")
	content := "# API keys\nNEWS_API_KEY=abc123\nGUARDIAN_API_KEY=\"test\"\nexport REGION=eu\n"
	require.NoError(t, os.WriteFile(path, []byte(content), 0o600))

	vars, exists, err := ReadEnvFile(path)
	require.NoError(t, err)
	assert.True(t, exists)
	assert.Equal(t, "abc123", vars["NEWS_API_KEY"])
	assert.Equal(t, "test", vars["GUARDIAN_API_KEY"])
	assert.Equal(t, "eu", vars["REGION"])
}

// TestReadEnvFile_Missing verifies a missing file is not an error.
func TestReadEnvFile_Missing(t *testing.T) {
	vars, exists, err := ReadEnvFile(filepath.Join(t.TempDir(), ".env"))
	require.NoError(t, err)
	assert.False(t, exists)
	assert.Nil(t, vars)
}

// TestMergeEnv verifies that shell variables win and added keys are sorted.
func TestMergeEnv(t *testing.T) {
	base := []string{"PATH=/bin", "NEWS_API_KEY=from-shell"}
	vars := map[string]string{
		"NEWS_API_KEY": "from-file",
		"ZETA":         "z",
		"ALPHA":        "a",
	}

	env := mergeEnvFor(base, vars, "linux")
	assert.Equal(t, []string{"PATH=/bin", "NEWS_API_KEY=from-shell", "ALPHA=a", "ZETA=z"}, env)
	assert.Equal(t, []string{"PATH=/bin", "NEWS_API_KEY=from-shell"}, base, "base untouched")
}

// TestMergeEnv_WindowsCase verifies Windows keys match case-insensitively.
func TestMergeEnv_WindowsCase(t *testing.T) {
	env := mergeEnvFor([]string{"news_api_key=shell"}, map[string]string{"NEWS_API_KEY": "file"}, "windows")
	assert.Equal(t, []string{"news_api_key=shell"}, env)
}

// TestMissingKeys verifies lookup across both sources, ignoring empty values.
func TestMissingKeys(t *testing.T) {
	env := []string{"FROM_SHELL=1", "EMPTY_SHELL="}
	vars := map[string]string{"FROM_FILE": "1", "EMPTY_FILE": ""}

	missing := MissingKeys(
		[]string{"FROM_SHELL", "FROM_FILE", "EMPTY_SHELL", "EMPTY_FILE", "ABSENT"},
		env, vars,
	)
	assert.Equal(t, []string{"EMPTY_SHELL", "EMPTY_FILE", "ABSENT"}, missing)
	assert.Empty(t, MissingKeys(nil, env, vars))
}
