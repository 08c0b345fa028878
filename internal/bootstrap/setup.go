package bootstrap

import (
	"context"
	"fmt"
	"time"

	"github.com/shinji-kodama/edupulse/internal/model"
	"github.com/shinji-kodama/edupulse/internal/runner"
	"github.com/shinji-kodama/edupulse/internal/venv"
)

// pythonDownloadURL is shown when no interpreter is available.
const pythonDownloadURL = "https://www.python.org/downloads/"

// SetupOptions tunes a single setup run.
type SetupOptions struct {
	// Recreate passes --clear to venv, wiping an existing environment.
	Recreate bool
}

// setupState carries values produced by one step into the next.
type setupState struct {
	opts        SetupOptions
	interpreter *model.Interpreter
	layout      *venv.Layout
	env         []string
}

// setupStep pairs a step name with its implementation. A step returns a
// non-nil error only when the procedure must abort.
type setupStep struct {
	name model.StepName
	run  func(ctx context.Context, st *setupState) (model.StepResult, error)
}

func (b *Bootstrapper) setupSteps() []setupStep {
	return []setupStep{
		{model.StepCheckInterpreter, b.checkInterpreter},
		{model.StepCreateEnvironment, b.createEnvironment},
		{model.StepActivateEnvironment, b.activateEnvironment},
		{model.StepUpgradeInstaller, b.upgradeInstaller},
		{model.StepInstallDependencies, b.installDependencies},
	}
}

// Setup provisions the isolated environment and installs the manifest.
//
// The returned report is always non-nil and lists every step; steps after
// a failure are marked skipped and were never invoked. On failure the
// error is a *model.CLIError already shown to the user (Reported is set).
func (b *Bootstrapper) Setup(ctx context.Context, opts SetupOptions) (*model.SetupReport, error) {
	st := &setupState{opts: opts, layout: b.Layout()}
	report := &model.SetupReport{EnvDir: st.layout.Root}

	var failure error
	for _, step := range b.setupSteps() {
		if failure != nil {
			report.Steps = append(report.Steps, model.StepResult{
				Name:   step.name,
				Status: model.StepSkipped,
				Detail: "previous step failed",
			})
			continue
		}

		b.logf("Running step %s", step.name)
		start := time.Now()
		res, err := step.run(ctx, st)
		res.Name = step.name
		res.Duration = time.Since(start)
		report.Steps = append(report.Steps, res)

		if err != nil {
			failure = err
		}
	}

	report.Interpreter = st.interpreter
	report.Succeeded = failure == nil
	if failure != nil {
		return report, failure
	}

	fmt.Fprintln(b.Out)
	_, _ = successColor.Fprintln(b.Out, "Setup completed successfully!")
	b.printf("Run 'edupulse launch' to start %s.\n", b.Config.AppName)
	return report, nil
}

func (b *Bootstrapper) checkInterpreter(ctx context.Context, st *setupState) (model.StepResult, error) {
	b.printf("Checking for Python installation...\n")

	interp, err := FindInterpreter(ctx, b.Runner, b.Config.Interpreters, b.Config.MinPython, b.Logf)
	if cliErr := b.interrupted(err); cliErr != nil {
		return model.StepResult{Status: model.StepFailed, ExitCode: int(cliErr.Code), Detail: "interrupted"}, cliErr
	}
	if err != nil {
		cliErr := model.WrapCLIError(model.ExitInterpreterNotFound, "Python is not installed or not in PATH.", err)
		minVersion := b.Config.MinPython
		if minVersion == "" {
			minVersion = "3"
		}
		b.fail(cliErr,
			fmt.Sprintf("Please install Python %s or later from %s", minVersion, pythonDownloadURL),
			"and make sure it is added to PATH.",
		)
		return model.StepResult{Status: model.StepFailed, Detail: err.Error()}, cliErr
	}

	st.interpreter = interp
	b.printf("Found Python %s (%s)\n", interp.Version, interp.Path)
	return model.StepResult{Status: model.StepOK, Detail: "Python " + interp.Version}, nil
}

func (b *Bootstrapper) createEnvironment(ctx context.Context, st *setupState) (model.StepResult, error) {
	if st.layout.Exists() && !st.opts.Recreate {
		b.printf("Updating existing virtual environment in %s...\n", b.Config.EnvDir)
	} else {
		b.printf("Creating virtual environment in %s...\n", b.Config.EnvDir)
	}

	args := []string{"-m", "venv"}
	if st.opts.Recreate {
		args = append(args, "--clear")
	}
	args = append(args, b.Config.EnvDir)

	return b.runStep(ctx, runner.Command{Name: st.interpreter.Path, Args: args}, "Failed to create virtual environment.")
}

func (b *Bootstrapper) activateEnvironment(_ context.Context, st *setupState) (model.StepResult, error) {
	b.printf("Activating virtual environment...\n")

	env, err := st.layout.Activate(b.baseEnv())
	if err != nil {
		cliErr := model.WrapCLIError(model.ExitEnvNotFound, "Virtual environment was not created correctly.", err)
		b.fail(cliErr, fmt.Sprintf("Try 'edupulse setup --recreate' or delete %s and run setup again.", b.Config.EnvDir))
		return model.StepResult{Status: model.StepFailed, Detail: err.Error()}, cliErr
	}

	st.env = env
	b.logf("Activated %s", st.layout.Root)
	return model.StepResult{Status: model.StepOK, Detail: st.layout.Root}, nil
}

func (b *Bootstrapper) upgradeInstaller(ctx context.Context, st *setupState) (model.StepResult, error) {
	if !b.Config.UpgradeInstaller {
		return model.StepResult{Status: model.StepSkipped, Detail: "disabled by configuration"}, nil
	}

	b.printf("Upgrading pip...\n")
	cmd := b.envCommand(st, "-m", "pip", "install", "--upgrade", "pip")
	b.logf("Executing: %s", cmd.String())
	res, err := b.Runner.Run(ctx, cmd)
	if cliErr := b.interrupted(err); cliErr != nil {
		return model.StepResult{Status: model.StepFailed, ExitCode: int(cliErr.Code), Detail: "interrupted"}, cliErr
	}
	switch {
	case err != nil:
		b.warn(fmt.Sprintf("Could not run pip upgrade (%v), continuing with the installed pip.", err))
		return model.StepResult{Status: model.StepWarning, ExitCode: int(model.ExitGeneralError), Detail: err.Error()}, nil
	case !res.Success():
		b.warn(fmt.Sprintf("pip upgrade exited with code %d, continuing with the installed pip.", res.ExitCode))
		return model.StepResult{Status: model.StepWarning, ExitCode: res.ExitCode, Detail: "pip upgrade failed"}, nil
	}
	return model.StepResult{Status: model.StepOK}, nil
}

func (b *Bootstrapper) installDependencies(ctx context.Context, st *setupState) (model.StepResult, error) {
	b.printf("Installing dependencies from %s...\n", b.Config.Manifest)
	cmd := b.envCommand(st, "-m", "pip", "install", "-r", b.Config.Manifest)
	return b.runStep(ctx, cmd, "Failed to install dependencies.")
}

// envCommand builds a command running the environment's interpreter with
// the activated environment, streaming its output to the user.
func (b *Bootstrapper) envCommand(st *setupState, args ...string) runner.Command {
	return runner.Command{
		Name:   st.layout.Python(),
		Args:   args,
		Dir:    b.ProjectDir,
		Env:    st.env,
		Stdout: b.ProcOut,
		Stderr: b.ProcErr,
	}
}

// runStep runs a fatal step command in the project directory with output
// streamed to the user. A non-zero exit propagates as the CLIError code.
func (b *Bootstrapper) runStep(ctx context.Context, cmd runner.Command, failMessage string) (model.StepResult, error) {
	cmd.Dir = b.ProjectDir
	cmd.Stdout = b.ProcOut
	cmd.Stderr = b.ProcErr

	b.logf("Executing: %s", cmd.String())
	res, err := b.Runner.Run(ctx, cmd)
	if cliErr := b.interrupted(err); cliErr != nil {
		return model.StepResult{Status: model.StepFailed, ExitCode: int(cliErr.Code), Detail: "interrupted"}, cliErr
	}
	if err != nil {
		cliErr := model.WrapCLIError(model.ExitGeneralError, failMessage, err)
		b.fail(cliErr)
		return model.StepResult{Status: model.StepFailed, ExitCode: int(cliErr.Code), Detail: err.Error()}, cliErr
	}
	if !res.Success() {
		cliErr := model.WrapCLIError(model.ExitCode(res.ExitCode), failMessage,
			fmt.Errorf("%s exited with code %d", cmd.String(), res.ExitCode))
		b.fail(cliErr)
		return model.StepResult{Status: model.StepFailed, ExitCode: res.ExitCode, Detail: cliErr.Err.Error()}, cliErr
	}
	return model.StepResult{Status: model.StepOK}, nil
}
