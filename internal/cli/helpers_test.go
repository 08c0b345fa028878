// helpers_test.go contains shared fixtures for the CLI tests.
//
// The tests drive the command logic functions directly against temporary
// project directories. No real interpreter is needed: checks that query
// for Python use a fake runner.

package cli

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/shinji-kodama/edupulse/internal/venv"
)

// useProject points the global flags at dir for the duration of the test.
func useProject(t *testing.T, dir string) {
	t.Helper()
	prevDir, prevConfig, prevJSON, prevNoPause := projectDirFlag, configPathFlag, jsonOutput, noPause
	t.Cleanup(func() {
		projectDirFlag, configPathFlag, jsonOutput, noPause = prevDir, prevConfig, prevJSON, prevNoPause
	})
	projectDirFlag = dir
	configPathFlag = ""
	jsonOutput = false
	noPause = false
}

// writeFile creates rel inside dir with content, creating parents.
func writeFile(t *testing.T, dir, rel, content string) string {
	t.Helper()
	path := filepath.Join(dir, rel)
	require.NoError(t, os.MkdirAll(filepath.Dir(path), 0o755))
	require.NoError(t, os.WriteFile(path, []byte(content), 0o644))
	return path
}

// makeEnvironment creates a minimal virtual environment under dir/envDir.
func makeEnvironment(t *testing.T, dir, envDir string) *venv.Layout {
	t.Helper()
	layout := venv.NewLayout(filepath.Join(dir, envDir))
	require.NoError(t, os.MkdirAll(layout.BinDir(), 0o755))
	require.NoError(t, os.WriteFile(layout.Python(), []byte("#!/bin/sh\n"), 0o755))
	require.NoError(t, os.WriteFile(layout.ConfigFile(), []byte("home = /usr/bin\nversion = 3.11.4\n"), 0o644))
	return layout
}
