package runner

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"io"
	"io/fs"
	"os/exec"
	"strings"
)

// ErrNotFound is returned by LookPath and Run when the executable cannot
// be located.
var ErrNotFound = errors.New("executable not found")

// Command describes a single external process invocation.
type Command struct {
	// Name is the executable name or path.
	Name string

	// Args are the arguments passed after Name.
	Args []string

	// Dir is the working directory. Empty means the current directory.
	Dir string

	// Env is the complete environment in "KEY=value" form.
	// Nil inherits the parent's environment.
	Env []string

	// Stdin, Stdout and Stderr are wired to the child process.
	// When Stdout or Stderr is nil the stream is captured into Result.
	Stdin  io.Reader
	Stdout io.Writer
	Stderr io.Writer
}

// String renders the command line for logs and diagnostics.
func (c Command) String() string {
	if len(c.Args) == 0 {
		return c.Name
	}
	return c.Name + " " + strings.Join(c.Args, " ")
}

// Result is the outcome of a process that started.
type Result struct {
	// ExitCode is the process exit code. 0 indicates success.
	ExitCode int

	// Stdout holds captured standard output when Command.Stdout was nil.
	Stdout string

	// Stderr holds captured standard error when Command.Stderr was nil.
	Stderr string
}

// Success reports whether the process exited with code 0.
func (r Result) Success() bool {
	return r.ExitCode == 0
}

// Output returns the captured stdout and stderr joined, trimmed of
// surrounding whitespace. Some interpreters print `--version` to stderr.
func (r Result) Output() string {
	return strings.TrimSpace(strings.TrimSpace(r.Stdout) + "\n" + strings.TrimSpace(r.Stderr))
}

// Runner starts external processes.
//
// Run returns an error only when the process could not be started
// (executable missing, permission denied, context cancelled before start).
// A process that ran and exited non-zero is reported through
// Result.ExitCode with a nil error, so callers can propagate the code.
type Runner interface {
	Run(ctx context.Context, cmd Command) (Result, error)
	LookPath(name string) (string, error)
}

// ExecRunner is the os/exec backed Runner.
//
// It is stateless; the struct exists as a receiver so it satisfies Runner
// and can be swapped for a fake in tests.
type ExecRunner struct{}

// NewExecRunner creates a new ExecRunner instance.
func NewExecRunner() *ExecRunner {
	return &ExecRunner{}
}

// LookPath resolves name against PATH. Names containing a path separator
// are checked directly, as exec.LookPath does.
func (r *ExecRunner) LookPath(name string) (string, error) {
	path, err := exec.LookPath(name)
	if err != nil {
		return "", fmt.Errorf("%w: %s: %v", ErrNotFound, name, err)
	}
	return path, nil
}

// Run executes cmd and waits for it to finish.
func (r *ExecRunner) Run(ctx context.Context, cmd Command) (Result, error) {
	if cmd.Name == "" {
		return Result{}, fmt.Errorf("command name is empty")
	}

	// #nosec G204 -- commands are built from project configuration, not remote input
	c := exec.CommandContext(ctx, cmd.Name, cmd.Args...)
	c.Dir = cmd.Dir
	c.Env = cmd.Env
	c.Stdin = cmd.Stdin

	// Capture whichever streams the caller did not wire up, so version
	// checks and failure diagnostics can inspect the output.
	var stdout, stderr bytes.Buffer
	c.Stdout = cmd.Stdout
	if c.Stdout == nil {
		c.Stdout = &stdout
	}
	c.Stderr = cmd.Stderr
	if c.Stderr == nil {
		c.Stderr = &stderr
	}

	err := c.Run()
	result := Result{Stdout: stdout.String(), Stderr: stderr.String()}
	if err == nil {
		return result, nil
	}

	var exitErr *exec.ExitError
	if errors.As(err, &exitErr) {
		// The process ran. A negative code means it was killed by a signal.
		result.ExitCode = exitErr.ExitCode()
		if result.ExitCode < 0 {
			if ctxErr := ctx.Err(); ctxErr != nil {
				return result, fmt.Errorf("%s cancelled: %w", cmd.Name, ctxErr)
			}
			result.ExitCode = 1
		}
		return result, nil
	}

	if ctxErr := ctx.Err(); ctxErr != nil {
		return result, fmt.Errorf("%s cancelled: %w", cmd.Name, ctxErr)
	}
	if errors.Is(err, exec.ErrNotFound) || errors.Is(err, fs.ErrNotExist) {
		return result, fmt.Errorf("%w: %s", ErrNotFound, cmd.Name)
	}
	return result, fmt.Errorf("failed to start %s: %w", cmd.Name, err)
}
