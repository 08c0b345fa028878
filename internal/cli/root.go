// Package cli implements the cobra-based CLI commands for edupulse.
//
// Each subcommand (setup, launch, status, clean, config) is defined in its
// own file within this package. This file defines the root command that
// serves as the parent for all subcommands and handles global flags.
package cli

import (
	"encoding/json"
	"errors"
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"github.com/shinji-kodama/edupulse/internal/model"
)

// Global flag variables shared across all subcommands.
// These are bound to cobra persistent flags on the root command,
// which makes them available to every subcommand automatically.
var (
	// jsonOutput controls whether command output is formatted as JSON.
	// When true, the command's result document is the only thing written
	// to stdout. Progress messages and child process output go to stderr.
	jsonOutput bool

	// verbose enables detailed logging output for debugging.
	// When true, additional information about operations is printed to stderr.
	verbose bool

	// projectDirFlag is the project directory. Empty means the working directory.
	projectDirFlag string

	// configPathFlag is an explicit configuration file. Empty means the
	// project directory is searched for edupulse.yaml and friends.
	configPathFlag string

	// noPause disables the "Press Enter to continue..." prompt after failures.
	noPause bool
)

// Version, Commit, and Date are set at build time via ldflags.
// They are injected from the main package to display version information.
var (
	// Version is the semantic version of the binary (e.g., "1.0.0").
	Version = "dev"

	// Commit is the Git commit hash the binary was built from.
	Commit = "none"

	// Date is the build timestamp.
	Date = "unknown"
)

// NewRootCommand creates and configures the root cobra command.
// This is the entry point for the entire CLI application.
//
// The root command itself does not perform any action. It only provides
// help text and global flags, and subcommands do the work.
func NewRootCommand() *cobra.Command {
	rootCmd := &cobra.Command{
		Use:   "edupulse",
		Short: "Set up and launch the EduPulse application",
		Long: `edupulse prepares an isolated Python environment for EduPulse and runs
the application inside it.

"edupulse setup" checks for a Python interpreter, creates the virtual
environment, upgrades pip and installs requirements.txt. "edupulse launch"
activates that environment and starts main.py.`,

		// SilenceUsage prevents cobra from printing usage on every error.
		// We handle error output ourselves for cleaner UX.
		SilenceUsage: true,

		// SilenceErrors prevents cobra from printing errors automatically.
		// We format errors ourselves (text or JSON based on --json flag).
		SilenceErrors: true,

		Version: fmt.Sprintf("%s (commit: %s, built: %s)", Version, Commit, Date),
	}

	rootCmd.PersistentFlags().BoolVar(&jsonOutput, "json", false, "Output in JSON format")
	rootCmd.PersistentFlags().BoolVarP(&verbose, "verbose", "v", false, "Enable verbose output")
	rootCmd.PersistentFlags().StringVarP(&projectDirFlag, "dir", "C", "", "Project directory (default: current directory)")
	rootCmd.PersistentFlags().StringVar(&configPathFlag, "config", "", "Configuration file (default: edupulse.yaml in the project directory)")
	rootCmd.PersistentFlags().BoolVar(&noPause, "no-pause", false, "Do not wait for Enter after a failure")

	rootCmd.AddCommand(NewSetupCommand())
	rootCmd.AddCommand(NewLaunchCommand())
	rootCmd.AddCommand(NewStatusCommand())
	rootCmd.AddCommand(NewCleanCommand())
	rootCmd.AddCommand(NewConfigCommand())

	return rootCmd
}

// Execute runs the root command and handles exit codes.
// This is the main entry point called from main.go.
//
// CLIError values carry their own exit codes; other errors exit with 1.
// Errors whose diagnostic was already shown by the setup or launch
// procedure are not printed again in text mode.
func Execute(rootCmd *cobra.Command) {
	err := rootCmd.Execute()
	if err == nil {
		return
	}

	var cliErr *model.CLIError
	if errors.As(err, &cliErr) {
		if !cliErr.Reported || jsonOutput {
			printError(cliErr.Message, cliErr.Err)
		}
		os.Exit(exitCodeOf(cliErr))
	}

	printError(err.Error(), nil)
	os.Exit(int(model.ExitGeneralError))
}

// exitCodeOf returns the process exit code for err. A CLIError never maps
// to success, even if a child process reported an odd code.
func exitCodeOf(err *model.CLIError) int {
	if err.Code == model.ExitSuccess {
		return int(model.ExitGeneralError)
	}
	return int(err.Code)
}

// printError outputs an error message in the appropriate format
// (JSON or text) based on the --json global flag.
func printError(message string, underlying error) {
	if jsonOutput {
		errObj := map[string]interface{}{
			"error": map[string]interface{}{
				"message": message,
			},
		}
		if underlying != nil {
			if errMap, ok := errObj["error"].(map[string]interface{}); ok {
				errMap["detail"] = underlying.Error()
			}
		}
		// Errors go to stderr even in JSON mode, because stdout is
		// reserved for successful command output.
		data, _ := json.MarshalIndent(errObj, "", "  ")
		fmt.Fprintln(os.Stderr, string(data))
		return
	}

	if underlying != nil {
		fmt.Fprintf(os.Stderr, "Error: %s: %v\n", message, underlying)
	} else {
		fmt.Fprintf(os.Stderr, "Error: %s\n", message)
	}
}

// VerboseLog prints a message to stderr only when verbose mode is enabled.
func VerboseLog(format string, args ...interface{}) {
	if verbose {
		fmt.Fprintf(os.Stderr, "[verbose] "+format+"\n", args...)
	}
}

// IsJSONOutput returns whether the --json flag is set.
// Subcommands use this to decide their output format.
func IsJSONOutput() bool {
	return jsonOutput
}
