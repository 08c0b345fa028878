package venv

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// makeEnv creates a fake environment under a temp dir with an interpreter
// file at the platform location, as `python -m venv` would.
func makeEnv(t *testing.T, goos string) *Layout {
	t.Helper()
	l := newLayoutFor(filepath.Join(t.TempDir(), "venv"), goos)
	require.NoError(t, os.MkdirAll(l.BinDir(), 0o755))
	require.NoError(t, os.WriteFile(l.Python(), []byte("#!/bin/sh\n"), 0o755))
	return l
}

// TestLayoutPaths verifies the per-platform directory names.
func TestLayoutPaths(t *testing.T) {
	root := filepath.Join("project", "venv")

	posix := newLayoutFor(root, "linux")
	assert.Equal(t, filepath.Join(root, "bin"), posix.BinDir())
	assert.Equal(t, filepath.Join(root, "bin", "python"), posix.Python())

	win := newLayoutFor(root, "windows")
	assert.Equal(t, filepath.Join(root, "Scripts"), win.BinDir())
	assert.Equal(t, filepath.Join(root, "Scripts", "python.exe"), win.Python())

	assert.Equal(t, filepath.Join(root, "pyvenv.cfg"), posix.ConfigFile())
}

// TestExistsAndHasInterpreter distinguishes a missing, a broken and a
// complete environment.
func TestExistsAndHasInterpreter(t *testing.T) {
	missing := newLayoutFor(filepath.Join(t.TempDir(), "venv"), "linux")
	assert.False(t, missing.Exists())
	assert.False(t, missing.HasInterpreter())

	broken := newLayoutFor(t.TempDir(), "linux")
	assert.True(t, broken.Exists())
	assert.False(t, broken.HasInterpreter())

	complete := makeEnv(t, "linux")
	assert.True(t, complete.Exists())
	assert.True(t, complete.HasInterpreter())
}

// TestVersion verifies both pyvenv.cfg key spellings.
func TestVersion(t *testing.T) {
	tests := []struct {
		name    string
		content string
		want    string
		wantErr bool
	}{
		{"version key", "home = /usr/bin\ninclude-system-site-packages = false\nversion = 3.11.4\n", "3.11.4", false},
		{"version_info key", "home = /usr/bin\nversion_info = 3.8.10.final.0\n", "3.8.10.final.0", false},
		{"no version", "home = /usr/bin\n", "", true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			l := makeEnv(t, "linux")
			require.NoError(t, os.WriteFile(l.ConfigFile(), []byte(tt.content), 0o644))

			got, err := l.Version()
			if tt.wantErr {
				assert.Error(t, err)
				return
			}
			require.NoError(t, err)
			assert.Equal(t, tt.want, got)
		})
	}

	t.Run("missing file", func(t *testing.T) {
		_, err := makeEnv(t, "linux").Version()
		assert.Error(t, err)
	})
}

// TestActivate_POSIX verifies VIRTUAL_ENV, PATH prepending and PYTHONHOME removal.
func TestActivate_POSIX(t *testing.T) {
	l := makeEnv(t, "linux")
	base := []string{"HOME=/home/u", "PATH=/usr/bin:/bin", "PYTHONHOME=/opt/python"}

	env, err := l.Activate(base)
	require.NoError(t, err)

	path, ok := lookupEnv(env, "PATH", "linux")
	require.True(t, ok)
	assert.Equal(t, l.BinDir()+":/usr/bin:/bin", path)

	venv, ok := lookupEnv(env, "VIRTUAL_ENV", "linux")
	require.True(t, ok)
	assert.Equal(t, l.Root, venv)

	_, ok = lookupEnv(env, "PYTHONHOME", "linux")
	assert.False(t, ok)
	assert.Contains(t, env, "HOME=/home/u")

	// The caller's slice must not be modified.
	assert.Equal(t, []string{"HOME=/home/u", "PATH=/usr/bin:/bin", "PYTHONHOME=/opt/python"}, base)
}

// TestActivate_Windows verifies case-insensitive PATH handling and the
// semicolon list separator.
func TestActivate_Windows(t *testing.T) {
	l := makeEnv(t, "windows")

	env, err := l.Activate([]string{`Path=C:\Windows`, `pythonhome=C:\Python`})
	require.NoError(t, err)

	path, ok := lookupEnv(env, "PATH", "windows")
	require.True(t, ok)
	assert.Equal(t, l.BinDir()+`;C:\Windows`, path)

	// Only one PATH entry remains regardless of spelling.
	count := 0
	for _, kv := range env {
		if len(kv) >= 5 && keyEqual(kv[:4], "PATH", "windows") && kv[4] == '=' {
			count++
		}
	}
	assert.Equal(t, 1, count)

	_, ok = lookupEnv(env, "PYTHONHOME", "windows")
	assert.False(t, ok)
}

// TestActivate_EmptyPath verifies no dangling separator is added.
func TestActivate_EmptyPath(t *testing.T) {
	l := makeEnv(t, "linux")
	env, err := l.Activate(nil)
	require.NoError(t, err)

	path, _ := lookupEnv(env, "PATH", "linux")
	assert.Equal(t, l.BinDir(), path)
}

// TestActivate_MissingInterpreter verifies activation refuses a broken env.
func TestActivate_MissingInterpreter(t *testing.T) {
	l := newLayoutFor(t.TempDir(), "linux")
	_, err := l.Activate([]string{"PATH=/usr/bin"})
	assert.Error(t, err)
}
