// Package runner executes external processes for the edupulse CLI.
//
// All interpreter, venv and pip operations are performed via os/exec calls
// rather than embedding any Python tooling. This approach:
//   - Uses the exact same interpreter the user sees in their terminal
//   - Leaves dependency resolution entirely to pip
//   - Keeps the Go binary free of CGO
//
// The Runner interface is the seam used by the bootstrap package; tests
// substitute a recording fake while production code uses ExecRunner.
package runner
