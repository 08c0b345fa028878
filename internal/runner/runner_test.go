package runner

import (
	"bytes"
	"context"
	"os"
	"path/filepath"
	"runtime"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// skipOnWindows keeps the process tests on POSIX shells, where `sh -c`
// gives us precise control over exit codes and output streams.
func skipOnWindows(t *testing.T) {
	t.Helper()
	if runtime.GOOS == "windows" {
		t.Skip("requires a POSIX shell")
	}
}

// TestCommandString verifies the command line rendering used in diagnostics.
func TestCommandString(t *testing.T) {
	assert.Equal(t, "python", Command{Name: "python"}.String())
	assert.Equal(t, "python -m venv venv", Command{Name: "python", Args: []string{"-m", "venv", "venv"}}.String())
}

// TestResultOutput verifies that stdout and stderr are joined and trimmed.
func TestResultOutput(t *testing.T) {
	assert.Equal(t, "Python 3.11.4", Result{Stdout: "Python 3.11.4\n"}.Output())
	assert.Equal(t, "Python 2.7.18", Result{Stderr: "Python 2.7.18\n"}.Output())
	assert.Equal(t, "out\nerr", Result{Stdout: "out\n", Stderr: " err "}.Output())
	assert.Equal(t, "", Result{}.Output())
}

// TestRun_Success verifies captured output for a zero exit.
func TestRun_Success(t *testing.T) {
	skipOnWindows(t)
	r := NewExecRunner()

	res, err := r.Run(context.Background(), Command{Name: "sh", Args: []string{"-c", "echo hello; echo oops >&2"}})
	require.NoError(t, err)
	assert.True(t, res.Success())
	assert.Equal(t, "hello\n", res.Stdout)
	assert.Equal(t, "oops\n", res.Stderr)
}

// TestRun_NonZeroExit verifies that a failing process is reported via
// ExitCode rather than an error, so callers can propagate the code.
func TestRun_NonZeroExit(t *testing.T) {
	skipOnWindows(t)
	r := NewExecRunner()

	res, err := r.Run(context.Background(), Command{Name: "sh", Args: []string{"-c", "exit 42"}})
	require.NoError(t, err)
	assert.False(t, res.Success())
	assert.Equal(t, 42, res.ExitCode)
}

// TestRun_WiredStreams verifies that caller-provided writers receive the
// output and nothing is captured.
func TestRun_WiredStreams(t *testing.T) {
	skipOnWindows(t)
	r := NewExecRunner()

	var out bytes.Buffer
	res, err := r.Run(context.Background(), Command{
		Name:   "sh",
		Args:   []string{"-c", "cat"},
		Stdin:  strings.NewReader("piped"),
		Stdout: &out,
	})
	require.NoError(t, err)
	assert.Equal(t, "piped", out.String())
	assert.Empty(t, res.Stdout)
}

// TestRun_DirAndEnv verifies working directory and explicit environment.
func TestRun_DirAndEnv(t *testing.T) {
	skipOnWindows(t)
	r := NewExecRunner()
	dir := t.TempDir()

	res, err := r.Run(context.Background(), Command{
		Name: "sh",
		Args: []string{"-c", `pwd; echo "$EDUPULSE_TEST"`},
		Dir:  dir,
		Env:  append(os.Environ(), "EDUPULSE_TEST=from-env"),
	})
	require.NoError(t, err)

	lines := strings.Split(strings.TrimSpace(res.Stdout), "\n")
	require.Len(t, lines, 2)

	// Resolve symlinks (macOS /var -> /private/var) before comparing.
	want, err := filepath.EvalSymlinks(dir)
	require.NoError(t, err)
	got, err := filepath.EvalSymlinks(lines[0])
	require.NoError(t, err)
	assert.Equal(t, want, got)
	assert.Equal(t, "from-env", lines[1])
}

// TestRun_NotFound verifies that a missing executable is an error wrapping
// ErrNotFound, not a non-zero exit.
func TestRun_NotFound(t *testing.T) {
	r := NewExecRunner()

	_, err := r.Run(context.Background(), Command{Name: "edupulse-definitely-missing-binary"})
	require.Error(t, err)
	assert.ErrorIs(t, err, ErrNotFound)

	missingPath := filepath.Join(t.TempDir(), "bin", "python")
	_, err = r.Run(context.Background(), Command{Name: missingPath})
	require.Error(t, err)
	assert.ErrorIs(t, err, ErrNotFound)
}

// TestRun_EmptyName rejects a command without an executable.
func TestRun_EmptyName(t *testing.T) {
	_, err := NewExecRunner().Run(context.Background(), Command{})
	assert.Error(t, err)
}

// TestRun_Cancelled verifies that a cancelled context surfaces as an error.
func TestRun_Cancelled(t *testing.T) {
	skipOnWindows(t)
	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	_, err := NewExecRunner().Run(ctx, Command{Name: "sh", Args: []string{"-c", "sleep 5"}})
	require.Error(t, err)
	assert.ErrorIs(t, err, context.Canceled)
}

// TestLookPath verifies PATH resolution and the not-found wrapping.
func TestLookPath(t *testing.T) {
	skipOnWindows(t)
	r := NewExecRunner()

	path, err := r.LookPath("sh")
	require.NoError(t, err)
	assert.True(t, filepath.IsAbs(path))

	_, err = r.LookPath("edupulse-definitely-missing-binary")
	assert.ErrorIs(t, err, ErrNotFound)
}
