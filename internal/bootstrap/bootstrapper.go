package bootstrap

import (
	"context"
	"errors"
	"fmt"
	"io"
	"os"
	"path/filepath"

	"github.com/fatih/color"

	"github.com/shinji-kodama/edupulse/internal/config"
	"github.com/shinji-kodama/edupulse/internal/model"
	"github.com/shinji-kodama/edupulse/internal/runner"
	"github.com/shinji-kodama/edupulse/internal/venv"
)

var (
	errorColor   = color.New(color.FgRed, color.Bold)
	warningColor = color.New(color.FgYellow)
	successColor = color.New(color.FgGreen, color.Bold)
)

// Bootstrapper runs the setup and launch procedures for one project
// directory.
//
// Out receives the procedure's own messages (progress lines, banners,
// pause prompt). ProcOut and ProcErr receive the output of pip, venv and
// the application. The CLI points all of them at the terminal, except in
// JSON mode where everything but the final document goes to stderr.
type Bootstrapper struct {
	// ProjectDir is the absolute directory holding the manifest and entry point.
	ProjectDir string

	// Config is the effective project configuration.
	Config *config.Config

	// Runner executes external commands.
	Runner runner.Runner

	// Pauser is used after failures when Config.Pause is set.
	Pauser Pauser

	// Stdin is forwarded to the application.
	Stdin io.Reader

	Out     io.Writer
	ProcOut io.Writer
	ProcErr io.Writer

	// BaseEnv is the environment activation starts from. Nil means os.Environ().
	BaseEnv []string

	// Logf receives verbose diagnostics. Nil discards them.
	Logf func(format string, args ...any)
}

// New creates a Bootstrapper wired to the process's standard streams.
func New(projectDir string, cfg *config.Config, r runner.Runner) *Bootstrapper {
	return &Bootstrapper{
		ProjectDir: projectDir,
		Config:     cfg,
		Runner:     r,
		Pauser:     NewConsolePauser(os.Stdin, os.Stdout),
		Stdin:      os.Stdin,
		Out:        os.Stdout,
		ProcOut:    os.Stdout,
		ProcErr:    os.Stderr,
	}
}

// Layout returns the environment layout for the configured env_dir.
func (b *Bootstrapper) Layout() *venv.Layout {
	return venv.NewLayout(b.path(b.Config.EnvDir))
}

func (b *Bootstrapper) path(rel string) string {
	return filepath.Join(b.ProjectDir, rel)
}

func (b *Bootstrapper) baseEnv() []string {
	if b.BaseEnv != nil {
		return b.BaseEnv
	}
	return os.Environ()
}

func (b *Bootstrapper) logf(format string, args ...any) {
	if b.Logf != nil {
		b.Logf(format, args...)
	}
}

func (b *Bootstrapper) printf(format string, args ...any) {
	fmt.Fprintf(b.Out, format, args...)
}

// fail prints the diagnostic banner, pauses if configured, and marks err as
// reported. It returns whether a pause happened.
func (b *Bootstrapper) fail(err *model.CLIError, lines ...string) bool {
	fmt.Fprintln(b.Out)
	_, _ = errorColor.Fprintln(b.Out, "ERROR: "+err.Message)
	for _, line := range lines {
		fmt.Fprintln(b.Out, line)
	}
	err.MarkReported()
	return b.pause()
}

// interrupted returns a CLIError for err when it stems from the command
// context being cancelled (Ctrl+C), and nil otherwise. Interruption is not
// a failure of the step: no banner is printed and nothing pauses.
func (b *Bootstrapper) interrupted(err error) *model.CLIError {
	if !errors.Is(err, context.Canceled) {
		return nil
	}
	b.logf("Interrupted: %v", err)
	return model.WrapCLIError(model.ExitUserCancelled, "interrupted", err)
}

func (b *Bootstrapper) warn(msg string) {
	_, _ = warningColor.Fprintln(b.Out, "WARNING: "+msg)
}

func (b *Bootstrapper) pause() bool {
	if !b.Config.Pause || b.Pauser == nil {
		return false
	}
	if err := b.Pauser.Pause(); err != nil {
		b.logf("Pause failed: %v", err)
	}
	return true
}
