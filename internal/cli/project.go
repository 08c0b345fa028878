package cli

import (
	"encoding/json"
	"fmt"
	"io"
	"os"
	"path/filepath"

	"github.com/shinji-kodama/edupulse/internal/bootstrap"
	"github.com/shinji-kodama/edupulse/internal/config"
	"github.com/shinji-kodama/edupulse/internal/model"
	"github.com/shinji-kodama/edupulse/internal/runner"
)

// resolveProjectDir returns the absolute project directory from --dir,
// defaulting to the working directory. The directory must exist.
func resolveProjectDir() (string, error) {
	dir := projectDirFlag
	if dir == "" {
		wd, err := os.Getwd()
		if err != nil {
			return "", model.WrapCLIError(model.ExitGeneralError, "failed to determine working directory", err)
		}
		dir = wd
	}

	abs, err := filepath.Abs(dir)
	if err != nil {
		return "", model.WrapCLIError(model.ExitConfigError, fmt.Sprintf("invalid project directory %q", dir), err)
	}

	info, err := os.Stat(abs)
	if err != nil {
		return "", model.WrapCLIError(model.ExitConfigError, fmt.Sprintf("project directory %s not found", abs), err)
	}
	if !info.IsDir() {
		return "", model.NewCLIError(model.ExitConfigError, fmt.Sprintf("project directory %s is not a directory", abs))
	}
	return abs, nil
}

// loadProject resolves the project directory and loads its configuration,
// applying the CLI flags that override configuration values.
func loadProject() (string, *config.Config, error) {
	dir, err := resolveProjectDir()
	if err != nil {
		return "", nil, err
	}

	cfg, err := config.Load(dir, configPathFlag)
	if err != nil {
		return "", nil, err
	}
	applyFlagOverrides(cfg)

	if cfg.Source != "" {
		VerboseLog("Loaded configuration from %s", cfg.Source)
	} else {
		VerboseLog("No configuration file found in %s, using defaults", dir)
	}
	return dir, cfg, nil
}

// applyFlagOverrides applies flags that take precedence over every
// configuration source. JSON mode is meant for scripts, so it never waits
// for a keypress.
func applyFlagOverrides(cfg *config.Config) {
	if noPause || jsonOutput {
		cfg.Pause = false
	}
}

// newBootstrapper creates a Bootstrapper for the project that runs real
// processes. In JSON mode every human-oriented stream is moved to stderr so
// stdout carries only the result document.
func newBootstrapper(dir string, cfg *config.Config) *bootstrap.Bootstrapper {
	b := bootstrap.New(dir, cfg, runner.NewExecRunner())
	b.Logf = VerboseLog
	if jsonOutput {
		b.Out = os.Stderr
		b.ProcOut = os.Stderr
		b.Pauser = bootstrap.NewConsolePauser(os.Stdin, os.Stderr)
	}
	return b
}

// writeJSON writes v as indented JSON followed by a newline.
func writeJSON(w io.Writer, v any) error {
	data, err := json.MarshalIndent(v, "", "  ")
	if err != nil {
		return fmt.Errorf("failed to marshal JSON: %w", err)
	}
	_, err = fmt.Fprintln(w, string(data))
	return err
}
