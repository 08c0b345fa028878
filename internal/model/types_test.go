package model

import (
	"encoding/json"
	"errors"
	"fmt"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// TestSetupSteps verifies the fixed execution order of the setup procedure.
func TestSetupSteps(t *testing.T) {
	assert.Equal(t, []StepName{
		StepCheckInterpreter,
		StepCreateEnvironment,
		StepActivateEnvironment,
		StepUpgradeInstaller,
		StepInstallDependencies,
	}, SetupSteps())
}

// TestStepStatus_IsValid checks that only defined status values pass validation.
func TestStepStatus_IsValid(t *testing.T) {
	assert.True(t, StepOK.IsValid())
	assert.True(t, StepFailed.IsValid())
	assert.True(t, StepSkipped.IsValid())
	assert.True(t, StepWarning.IsValid())
	assert.False(t, StepStatus("invalid").IsValid())
	assert.False(t, StepStatus("").IsValid())
}

// TestParseStepStatus verifies string-to-status conversion,
// including case normalization and error cases.
func TestParseStepStatus(t *testing.T) {
	tests := []struct {
		input    string
		expected StepStatus
		hasError bool
	}{
		{"ok", StepOK, false},
		{"failed", StepFailed, false},
		{"skipped", StepSkipped, false},
		{"warning", StepWarning, false},
		{"FAILED", StepFailed, false}, // case insensitive
		{"done", "", true},
		{"", "", true},
	}

	for _, tt := range tests {
		t.Run(tt.input, func(t *testing.T) {
			result, err := ParseStepStatus(tt.input)
			if tt.hasError {
				assert.Error(t, err)
			} else {
				require.NoError(t, err)
				assert.Equal(t, tt.expected, result)
			}
		})
	}
}

// TestSetupReport_Lookups verifies Step and FailedStep lookups.
func TestSetupReport_Lookups(t *testing.T) {
	report := &SetupReport{
		Steps: []StepResult{
			{Name: StepCheckInterpreter, Status: StepOK},
			{Name: StepCreateEnvironment, Status: StepFailed, ExitCode: 1},
			{Name: StepActivateEnvironment, Status: StepSkipped},
		},
	}

	step := report.Step(StepCreateEnvironment)
	require.NotNil(t, step)
	assert.Equal(t, 1, step.ExitCode)
	assert.Nil(t, report.Step(StepInstallDependencies))

	failed := report.FailedStep()
	require.NotNil(t, failed)
	assert.Equal(t, StepCreateEnvironment, failed.Name)

	ok := &SetupReport{Steps: []StepResult{{Name: StepCheckInterpreter, Status: StepOK}}}
	assert.Nil(t, ok.FailedStep())
}

// TestStatusReport_ComputeReady verifies that only required checks gate readiness.
func TestStatusReport_ComputeReady(t *testing.T) {
	tests := []struct {
		name   string
		checks []Check
		want   bool
	}{
		{"no checks", nil, true},
		{"all pass", []Check{{Name: "a", OK: true, Required: true}}, true},
		{"optional failure", []Check{
			{Name: "a", OK: true, Required: true},
			{Name: "env-file", OK: false, Required: false},
		}, true},
		{"required failure", []Check{
			{Name: "a", OK: true, Required: true},
			{Name: "environment", OK: false, Required: true},
		}, false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			r := &StatusReport{Checks: tt.checks}
			assert.Equal(t, tt.want, r.ComputeReady())
			assert.Equal(t, tt.want, r.Ready)
		})
	}
}

// TestCLIError verifies the custom error type used for exit code mapping.
func TestCLIError(t *testing.T) {
	t.Run("simple error", func(t *testing.T) {
		err := NewCLIError(ExitEnvNotFound, "virtual environment not found")
		assert.Equal(t, ExitEnvNotFound, err.Code)
		assert.Equal(t, "virtual environment not found", err.Error())
		assert.Nil(t, err.Unwrap())
	})

	t.Run("wrapped error", func(t *testing.T) {
		inner := errors.New("exit status 1")
		err := WrapCLIError(ExitCode(1), "dependency installation failed", inner)
		assert.Equal(t, ExitCode(1), err.Code)
		assert.Contains(t, err.Error(), "exit status 1")
		assert.Equal(t, inner, err.Unwrap())
	})

	t.Run("mark reported", func(t *testing.T) {
		err := NewCLIError(ExitCode(3), "EduPulse exited with an error")
		assert.False(t, err.Reported)
		assert.Same(t, err, err.MarkReported())
		assert.True(t, err.Reported)
	})

	t.Run("errors.As through fmt wrapping", func(t *testing.T) {
		cliErr := NewCLIError(ExitInterpreterNotFound, "Python is not installed")
		wrapped := fmt.Errorf("setup: %w", cliErr)

		var target *CLIError
		require.True(t, errors.As(wrapped, &target))
		assert.Equal(t, ExitInterpreterNotFound, target.Code)
	})
}

// TestStepResult_JSON verifies the duration key names its unit.
func TestStepResult_JSON(t *testing.T) {
	data, err := json.Marshal(StepResult{
		Name:     StepInstallDependencies,
		Status:   StepOK,
		Duration: 1500 * time.Millisecond,
	})
	require.NoError(t, err)

	var got map[string]any
	require.NoError(t, json.Unmarshal(data, &got))
	assert.Equal(t, float64(1500000000), got["durationNs"])
	assert.NotContains(t, got, "duration")
	assert.Equal(t, "install-dependencies", got["name"])
}
