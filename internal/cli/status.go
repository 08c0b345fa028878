// status.go implements the "edupulse status" command.
//
// The status command reports whether the project is ready to launch without
// changing anything on disk. It checks for a usable interpreter, the
// virtual environment, the manifest, the entry point, the optional .env file
// and the environment variables the application expects.
//
// The command exits 0 when every required check passes. Otherwise it exits
// with the code setup or launch would have failed with.

package cli

import (
	"context"
	"fmt"
	"io"
	"os"
	"strings"

	"github.com/olekukonko/tablewriter"
	"github.com/spf13/cobra"

	"github.com/shinji-kodama/edupulse/internal/bootstrap"
	"github.com/shinji-kodama/edupulse/internal/config"
	"github.com/shinji-kodama/edupulse/internal/model"
	"github.com/shinji-kodama/edupulse/internal/runner"
	"github.com/shinji-kodama/edupulse/internal/venv"
)

// Check names shown in the status table and JSON output.
const (
	checkInterpreter = "interpreter"
	checkEnvironment = "environment"
	checkManifest    = "manifest"
	checkEntryPoint  = "entry-point"
	checkEnvFile     = "env-file"
	checkExpectedEnv = "expected-env"
)

// NewStatusCommand creates the "status" cobra command.
// It is called from NewRootCommand to register as a subcommand.
func NewStatusCommand() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "status",
		Short: "Show whether the project is ready to launch",
		Long: `Check the interpreter, virtual environment, manifest and entry point
without modifying anything.

Examples:
  edupulse status
  edupulse status --json`,

		Args: cobra.NoArgs,

		RunE: func(cmd *cobra.Command, args []string) error {
			return runStatus(cmd.Context())
		},
	}

	return cmd
}

// runStatus is the main logic function for the status command.
func runStatus(ctx context.Context) error {
	dir, cfg, err := loadProject()
	if err != nil {
		return err
	}

	report := collectStatus(ctx, runner.NewExecRunner(), dir, cfg, os.Environ())

	if IsJSONOutput() {
		if err := writeJSON(os.Stdout, report); err != nil {
			return err
		}
	} else {
		printStatusText(os.Stdout, report)
	}

	if !report.Ready {
		// The table already explains what is missing.
		return statusError(report).MarkReported()
	}
	return nil
}

// collectStatus runs every readiness check. environ is the process
// environment used for the expected variable check.
func collectStatus(ctx context.Context, r runner.Runner, dir string, cfg *config.Config, environ []string) *model.StatusReport {
	report := &model.StatusReport{ProjectDir: dir}

	report.Checks = append(report.Checks, checkInterpreterStatus(ctx, r, cfg))
	report.Checks = append(report.Checks, checkEnvironmentStatus(dir, cfg))
	report.Checks = append(report.Checks, checkManifestStatus(dir, cfg))
	report.Checks = append(report.Checks, checkFileStatus(checkEntryPoint, dir, cfg.EntryPoint))

	vars, envFileCheck := checkEnvFileStatus(dir, cfg)
	report.Checks = append(report.Checks, envFileCheck)
	report.Checks = append(report.Checks, checkExpectedEnvStatus(cfg, environ, vars))

	report.ComputeReady()
	return report
}

func checkInterpreterStatus(ctx context.Context, r runner.Runner, cfg *config.Config) model.Check {
	c := model.Check{Name: checkInterpreter, Required: true}
	interp, err := bootstrap.FindInterpreter(ctx, r, cfg.Interpreters, cfg.MinPython, VerboseLog)
	if err != nil {
		c.Detail = err.Error()
		return c
	}
	c.OK = true
	c.Detail = fmt.Sprintf("Python %s (%s)", interp.Version, interp.Path)
	return c
}

func checkEnvironmentStatus(dir string, cfg *config.Config) model.Check {
	c := model.Check{Name: checkEnvironment, Required: true}
	layout := venv.NewLayout(config.Resolve(dir, cfg.EnvDir))

	switch {
	case layout.HasInterpreter():
		c.OK = true
		c.Detail = cfg.EnvDir
		if v, err := layout.Version(); err == nil {
			c.Detail = fmt.Sprintf("%s (Python %s)", cfg.EnvDir, v)
		}
	case layout.Exists():
		c.Detail = fmt.Sprintf("%s exists but has no interpreter; run 'edupulse setup --recreate'", cfg.EnvDir)
	default:
		c.Detail = fmt.Sprintf("%s not found; run 'edupulse setup'", cfg.EnvDir)
	}
	return c
}

func checkManifestStatus(dir string, cfg *config.Config) model.Check {
	c := model.Check{Name: checkManifest, Required: true}
	m, err := venv.ParseManifestFile(config.Resolve(dir, cfg.Manifest))
	if err != nil {
		c.Detail = err.Error()
		return c
	}
	c.OK = true
	c.Detail = fmt.Sprintf("%s (%d requirement(s))", cfg.Manifest, len(m.Requirements))
	return c
}

func checkFileStatus(name, dir, rel string) model.Check {
	c := model.Check{Name: name, Required: true}
	info, err := os.Stat(config.Resolve(dir, rel))
	switch {
	case err != nil:
		c.Detail = fmt.Sprintf("%s not found", rel)
	case info.IsDir():
		c.Detail = fmt.Sprintf("%s is a directory", rel)
	default:
		c.OK = true
		c.Detail = rel
	}
	return c
}

// checkEnvFileStatus also returns the variables it read, so the expected
// variable check can consult them.
func checkEnvFileStatus(dir string, cfg *config.Config) (map[string]string, model.Check) {
	c := model.Check{Name: checkEnvFile}
	if cfg.EnvFile == "" {
		c.OK = true
		c.Detail = "disabled"
		return nil, c
	}

	vars, exists, err := venv.ReadEnvFile(config.Resolve(dir, cfg.EnvFile))
	switch {
	case err != nil:
		c.Detail = err.Error()
	case !exists:
		c.Detail = fmt.Sprintf("%s not found", cfg.EnvFile)
	default:
		c.OK = true
		c.Detail = fmt.Sprintf("%s (%d variable(s))", cfg.EnvFile, len(vars))
	}
	return vars, c
}

func checkExpectedEnvStatus(cfg *config.Config, environ []string, vars map[string]string) model.Check {
	c := model.Check{Name: checkExpectedEnv}
	if len(cfg.ExpectedEnv) == 0 {
		c.OK = true
		c.Detail = "none expected"
		return c
	}

	missing := venv.MissingKeys(cfg.ExpectedEnv, environ, vars)
	if len(missing) > 0 {
		c.Detail = "missing " + strings.Join(missing, ", ")
		return c
	}
	c.OK = true
	c.Detail = strings.Join(cfg.ExpectedEnv, ", ")
	return c
}

// statusError maps the first failed required check onto the exit code the
// corresponding procedure would have returned.
func statusError(report *model.StatusReport) *model.CLIError {
	for _, c := range report.Checks {
		if !c.Required || c.OK {
			continue
		}
		switch c.Name {
		case checkInterpreter:
			return model.NewCLIError(model.ExitInterpreterNotFound, "Python is not installed or not in PATH")
		case checkEnvironment:
			return model.NewCLIError(model.ExitEnvNotFound, "virtual environment not found")
		default:
			return model.NewCLIError(model.ExitGeneralError, fmt.Sprintf("%s check failed", c.Name))
		}
	}
	return model.NewCLIError(model.ExitGeneralError, "project is not ready")
}

// FormatCheckStatus renders a check's outcome for the STATUS column.
func FormatCheckStatus(c model.Check) string {
	switch {
	case c.OK:
		return "ok"
	case c.Required:
		return "missing"
	default:
		return "warning"
	}
}

// printStatusText outputs the status report as a table followed by a
// one-line summary.
//
//	CHECK         STATUS   DETAIL
//	interpreter   ok       Python 3.11.4 (/usr/bin/python3)
//	environment   missing  venv not found; run 'edupulse setup'
func printStatusText(w io.Writer, report *model.StatusReport) {
	fmt.Fprintf(w, "Project: %s\n\n", report.ProjectDir)

	table := tablewriter.NewWriter(w)
	table.Header("Check", "Status", "Detail")
	for _, c := range report.Checks {
		_ = table.Append(c.Name, FormatCheckStatus(c), c.Detail)
	}
	_ = table.Render()

	fmt.Fprintln(w)
	if report.Ready {
		fmt.Fprintln(w, "Ready. Run 'edupulse launch' to start.")
	} else {
		fmt.Fprintln(w, "Not ready. Run 'edupulse setup' to prepare the environment.")
	}
}
