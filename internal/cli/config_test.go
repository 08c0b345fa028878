package cli

import (
	"bytes"
	"encoding/json"
	"errors"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/shinji-kodama/edupulse/internal/config"
	"github.com/shinji-kodama/edupulse/internal/model"
)

func TestRunConfigShow_Defaults(t *testing.T) {
	useProject(t, t.TempDir())

	var buf bytes.Buffer
	require.NoError(t, runConfigShow(&buf))

	assert.Contains(t, buf.String(), "# source: defaults")
	assert.Contains(t, buf.String(), "env_dir: venv")
	assert.Contains(t, buf.String(), "entry_point: main.py")
}

func TestRunConfigShow_ProjectFile(t *testing.T) {
	dir := t.TempDir()
	writeFile(t, dir, "edupulse.yaml", "env_dir: .venv\npause: false\n")
	useProject(t, dir)

	var buf bytes.Buffer
	require.NoError(t, runConfigShow(&buf))

	assert.Contains(t, buf.String(), "# source: "+filepath.Join(dir, "edupulse.yaml"))
	assert.Contains(t, buf.String(), "env_dir: .venv")
	assert.Contains(t, buf.String(), "pause: false")
}

func TestRunConfigShow_JSON(t *testing.T) {
	useProject(t, t.TempDir())
	jsonOutput = true

	var buf bytes.Buffer
	require.NoError(t, runConfigShow(&buf))

	var got map[string]any
	require.NoError(t, json.Unmarshal(buf.Bytes(), &got))
	assert.Equal(t, "requirements.txt", got["manifest"])
	// JSON mode never pauses.
	assert.Equal(t, false, got["pause"])
}

func TestRunConfigShow_InvalidFile(t *testing.T) {
	dir := t.TempDir()
	writeFile(t, dir, "edupulse.yaml", "env_dir: /etc\n")
	useProject(t, dir)

	err := runConfigShow(&bytes.Buffer{})

	var cliErr *model.CLIError
	require.True(t, errors.As(err, &cliErr))
	assert.Equal(t, model.ExitConfigError, cliErr.Code)
}

func TestRunConfigInit(t *testing.T) {
	dir := t.TempDir()
	useProject(t, dir)

	require.NoError(t, runConfigInit(&configInitFlags{}))

	path := filepath.Join(dir, config.DefaultFileName)
	require.FileExists(t, path)

	cfg, err := config.Load(dir, "")
	require.NoError(t, err)
	assert.Equal(t, path, cfg.Source)
	assert.Equal(t, config.Default().EnvDir, cfg.EnvDir)

	// A second init refuses to overwrite.
	err = runConfigInit(&configInitFlags{})
	var cliErr *model.CLIError
	require.True(t, errors.As(err, &cliErr))
	assert.Equal(t, model.ExitConfigError, cliErr.Code)

	require.NoError(t, os.WriteFile(path, []byte("env_dir: /broken\n"), 0o644))
	require.NoError(t, runConfigInit(&configInitFlags{force: true}))
	_, err = config.Load(dir, "")
	assert.NoError(t, err)
}

func TestRunConfigInit_RejectsNonYAML(t *testing.T) {
	dir := t.TempDir()
	useProject(t, dir)
	configPathFlag = filepath.Join(dir, "edupulse.json")

	err := runConfigInit(&configInitFlags{})
	require.Error(t, err)
	assert.NoFileExists(t, configPathFlag)
}
