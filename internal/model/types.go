package model

import (
	"fmt"
	"strings"
	"time"
)

// StepName identifies one step of the setup procedure. Steps always run
// in the order returned by SetupSteps.
type StepName string

const (
	// StepCheckInterpreter verifies that a usable Python interpreter is on PATH.
	StepCheckInterpreter StepName = "check-interpreter"

	// StepCreateEnvironment runs `python -m venv <dir>`.
	StepCreateEnvironment StepName = "create-environment"

	// StepActivateEnvironment computes the activated process environment.
	StepActivateEnvironment StepName = "activate-environment"

	// StepUpgradeInstaller runs `python -m pip install --upgrade pip`.
	StepUpgradeInstaller StepName = "upgrade-installer"

	// StepInstallDependencies runs `python -m pip install -r <manifest>`.
	StepInstallDependencies StepName = "install-dependencies"
)

// SetupSteps returns every setup step in execution order.
func SetupSteps() []StepName {
	return []StepName{
		StepCheckInterpreter,
		StepCreateEnvironment,
		StepActivateEnvironment,
		StepUpgradeInstaller,
		StepInstallDependencies,
	}
}

// String returns the string representation of StepName.
func (s StepName) String() string {
	return string(s)
}

// StepStatus is the outcome of a single setup step.
type StepStatus string

const (
	// StepOK indicates the step completed successfully.
	StepOK StepStatus = "ok"

	// StepFailed indicates the step failed and aborted the procedure.
	StepFailed StepStatus = "failed"

	// StepSkipped indicates the step never ran, either because an earlier
	// step failed or because configuration disabled it.
	StepSkipped StepStatus = "skipped"

	// StepWarning indicates the step failed but is not fatal.
	StepWarning StepStatus = "warning"
)

// String returns the string representation of StepStatus.
// This method satisfies the fmt.Stringer interface, enabling
// human-readable output in CLI commands and logging.
func (s StepStatus) String() string {
	return string(s)
}

// IsValid checks whether the StepStatus value is one of the
// predefined valid states.
func (s StepStatus) IsValid() bool {
	switch s {
	case StepOK, StepFailed, StepSkipped, StepWarning:
		return true
	default:
		return false
	}
}

// ParseStepStatus converts a string to a StepStatus.
// Returns an error if the string does not match any valid status.
func ParseStepStatus(s string) (StepStatus, error) {
	status := StepStatus(strings.ToLower(s))
	if !status.IsValid() {
		return "", fmt.Errorf("invalid step status: %q (valid: ok, failed, skipped, warning)", s)
	}
	return status, nil
}

// StepResult records what happened during one setup step.
type StepResult struct {
	// Name identifies the step.
	Name StepName `json:"name"`

	// Status is the step outcome.
	Status StepStatus `json:"status"`

	// ExitCode is the exit code of the external command the step ran.
	// Zero for steps that ran no command or were skipped.
	ExitCode int `json:"exitCode"`

	// Detail is a short human-readable note (interpreter version,
	// failure reason, skip reason).
	Detail string `json:"detail,omitempty"`

	// Duration is the wall-clock time the step took. JSON carries it in
	// nanoseconds, as time.Duration encodes.
	Duration time.Duration `json:"durationNs"`
}

// Interpreter describes the Python interpreter selected for setup.
type Interpreter struct {
	// Name is the candidate name as configured (e.g., "python3", "py").
	Name string `json:"name"`

	// Path is the absolute path resolved from PATH.
	Path string `json:"path"`

	// Version is the parsed version, e.g. "3.11.4".
	Version string `json:"version"`
}

// SetupReport is the aggregate result of the setup procedure.
type SetupReport struct {
	// Steps holds one entry per step in SetupSteps order. Steps after a
	// fatal failure are present with StepSkipped.
	Steps []StepResult `json:"steps"`

	// Interpreter is the interpreter used to create the environment.
	// Nil if the interpreter check failed.
	Interpreter *Interpreter `json:"interpreter,omitempty"`

	// EnvDir is the absolute path of the isolated environment.
	EnvDir string `json:"envDir"`

	// Succeeded is true when no step failed.
	Succeeded bool `json:"succeeded"`
}

// Step returns the result for the named step, or nil if absent.
func (r *SetupReport) Step(name StepName) *StepResult {
	for i := range r.Steps {
		if r.Steps[i].Name == name {
			return &r.Steps[i]
		}
	}
	return nil
}

// FailedStep returns the first failed step, or nil if setup succeeded.
func (r *SetupReport) FailedStep() *StepResult {
	for i := range r.Steps {
		if r.Steps[i].Status == StepFailed {
			return &r.Steps[i]
		}
	}
	return nil
}

// LaunchResult records the outcome of a single application run.
type LaunchResult struct {
	// EntryPoint is the script that was executed, relative to the project.
	EntryPoint string `json:"entryPoint"`

	// ExitCode is the application's exit code.
	ExitCode int `json:"exitCode"`

	// Paused reports whether the user was asked to acknowledge the failure.
	Paused bool `json:"paused"`
}

// Check is a single readiness check reported by the status command.
type Check struct {
	// Name is a short label such as "interpreter" or "manifest".
	Name string `json:"name"`

	// OK is true when the check passed.
	OK bool `json:"ok"`

	// Required marks checks whose failure makes the project not ready.
	Required bool `json:"required"`

	// Detail explains the result (path, version, missing keys).
	Detail string `json:"detail,omitempty"`
}

// StatusReport aggregates readiness checks for a project directory.
type StatusReport struct {
	// ProjectDir is the absolute project directory that was inspected.
	ProjectDir string `json:"projectDir"`

	// Checks lists every check in display order.
	Checks []Check `json:"checks"`

	// Ready is true when every required check passed.
	Ready bool `json:"ready"`
}

// ComputeReady sets Ready from the required checks and returns it.
func (r *StatusReport) ComputeReady() bool {
	r.Ready = true
	for _, c := range r.Checks {
		if c.Required && !c.OK {
			r.Ready = false
			break
		}
	}
	return r.Ready
}

// ExitCode defines standard CLI exit codes.
// Exit codes of external commands that ran and failed are propagated
// verbatim instead of being mapped onto these constants.
type ExitCode int

const (
	// ExitSuccess indicates the command completed successfully.
	ExitSuccess ExitCode = 0

	// ExitGeneralError indicates an unspecified error occurred, including
	// an external command that could not be started.
	ExitGeneralError ExitCode = 1

	// ExitEnvNotFound indicates the isolated environment does not exist
	// or has no interpreter inside it.
	ExitEnvNotFound ExitCode = 2

	// ExitConfigError indicates the project configuration is invalid.
	ExitConfigError ExitCode = 3

	// ExitUserCancelled indicates the user cancelled an interactive prompt.
	ExitUserCancelled ExitCode = 7

	// ExitInterpreterNotFound indicates no usable Python interpreter was
	// found. 127 mirrors the shell's "command not found".
	ExitInterpreterNotFound ExitCode = 127
)

// CLIError is a custom error type that carries an exit code.
// This allows the CLI layer to translate domain errors into
// appropriate process exit codes.
type CLIError struct {
	// Code is the exit code to return to the OS.
	Code ExitCode

	// Message is the human-readable error description.
	Message string

	// Err is the underlying error, if any.
	Err error

	// Reported is set when the diagnostic was already shown to the user
	// (banner plus pause), so the CLI should only set the exit code.
	Reported bool
}

// Error satisfies the error interface. It returns the human-readable
// error message, optionally including the underlying error.
func (e *CLIError) Error() string {
	if e.Err != nil {
		return fmt.Sprintf("%s: %v", e.Message, e.Err)
	}
	return e.Message
}

// Unwrap returns the underlying error for use with errors.Is/errors.As.
func (e *CLIError) Unwrap() error {
	return e.Err
}

// MarkReported flags the error as already shown and returns it.
func (e *CLIError) MarkReported() *CLIError {
	e.Reported = true
	return e
}

// NewCLIError creates a new CLIError with the given exit code and message.
func NewCLIError(code ExitCode, message string) *CLIError {
	return &CLIError{Code: code, Message: message}
}

// WrapCLIError creates a new CLIError that wraps an existing error.
func WrapCLIError(code ExitCode, message string, err error) *CLIError {
	return &CLIError{Code: code, Message: message, Err: err}
}
