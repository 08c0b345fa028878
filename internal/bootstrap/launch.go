package bootstrap

import (
	"context"
	"fmt"

	"github.com/shinji-kodama/edupulse/internal/model"
	"github.com/shinji-kodama/edupulse/internal/runner"
	"github.com/shinji-kodama/edupulse/internal/venv"
)

// Launch activates the environment and runs the entry point with args.
//
// A zero exit returns a nil error and prints nothing. A non-zero exit
// prints the error banner, pauses if configured, and returns a
// *model.CLIError carrying the application's exit code.
func (b *Bootstrapper) Launch(ctx context.Context, args []string) (*model.LaunchResult, error) {
	result := &model.LaunchResult{EntryPoint: b.Config.EntryPoint}
	layout := b.Layout()

	b.logf("Activating virtual environment %s", layout.Root)
	env, err := layout.Activate(b.baseEnv())
	if err != nil {
		cliErr := model.WrapCLIError(model.ExitEnvNotFound, "Virtual environment not found.", err)
		result.ExitCode = int(cliErr.Code)
		result.Paused = b.fail(cliErr, "Run 'edupulse setup' first.")
		return result, cliErr
	}

	env = b.applyEnvFile(env)

	cmd := runner.Command{
		Name:   layout.Python(),
		Args:   append([]string{b.Config.EntryPoint}, args...),
		Dir:    b.ProjectDir,
		Env:    env,
		Stdin:  b.Stdin,
		Stdout: b.ProcOut,
		Stderr: b.ProcErr,
	}
	b.logf("Executing: %s", cmd.String())

	res, err := b.Runner.Run(ctx, cmd)
	if cliErr := b.interrupted(err); cliErr != nil {
		result.ExitCode = int(cliErr.Code)
		return result, cliErr
	}
	if err != nil {
		cliErr := model.WrapCLIError(model.ExitGeneralError, fmt.Sprintf("Failed to start %s.", b.Config.AppName), err)
		result.ExitCode = int(cliErr.Code)
		result.Paused = b.fail(cliErr)
		return result, cliErr
	}

	result.ExitCode = res.ExitCode
	if res.Success() {
		b.logf("%s exited normally", b.Config.AppName)
		return result, nil
	}

	cliErr := model.NewCLIError(model.ExitCode(res.ExitCode),
		fmt.Sprintf("%s exited with an error (exit code %d).", b.Config.AppName, res.ExitCode))
	result.Paused = b.fail(cliErr, "Check the messages above for details.")
	return result, cliErr
}

// applyEnvFile merges the configured dotenv file into env. A missing file
// is ignored. A malformed one is reported as a warning, and the
// application starts without it.
func (b *Bootstrapper) applyEnvFile(env []string) []string {
	if b.Config.EnvFile == "" {
		return env
	}

	path := b.path(b.Config.EnvFile)
	vars, exists, err := venv.ReadEnvFile(path)
	switch {
	case err != nil:
		b.warn(fmt.Sprintf("Ignoring %s: %v", b.Config.EnvFile, err))
		return env
	case !exists:
		b.logf("No env file at %s", path)
		return env
	}

	b.logf("Loaded %d variable(s) from %s", len(vars), path)
	return venv.MergeEnv(env, vars)
}
