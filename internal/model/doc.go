// Package model defines the domain types and value objects for the
// edupulse CLI.
//
// This package contains pure data structures with no external dependencies.
// Setup and launch results (SetupReport, LaunchResult, StatusReport) are
// transient: nothing here is persisted, the only durable state being the
// isolated environment directory on disk.
//
// The package also defines exit codes (ExitCode) and a custom error type
// (CLIError) that carries exit codes for proper OS process exit handling.
package model
