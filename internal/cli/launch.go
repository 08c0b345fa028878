// launch.go implements the "edupulse launch" command.
//
// The launch command activates the environment created by setup and runs
// the entry point with the project directory as working directory. Any
// arguments after "--" are passed to the application unchanged. The
// application's exit code becomes edupulse's exit code.

package cli

import (
	"context"
	"os"

	"github.com/spf13/cobra"
)

// NewLaunchCommand creates the "launch" cobra command.
// It is called from NewRootCommand to register as a subcommand.
func NewLaunchCommand() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "launch [-- args...]",
		Short: "Run EduPulse inside its virtual environment",
		Long: `Activate the virtual environment and start the application.

Variables from the project's .env file are added to the application's
environment. Variables already set in the shell take precedence.

If the application exits with an error, a message is shown and edupulse
waits for Enter before closing (disable with --no-pause).

Examples:
  edupulse launch
  edupulse launch -- --debug`,

		Args: cobra.ArbitraryArgs,

		RunE: func(cmd *cobra.Command, args []string) error {
			return runLaunch(cmd.Context(), args)
		},
	}

	return cmd
}

// runLaunch is the main logic function for the launch command.
func runLaunch(ctx context.Context, args []string) error {
	dir, cfg, err := loadProject()
	if err != nil {
		return err
	}

	result, err := newBootstrapper(dir, cfg).Launch(ctx, args)

	if IsJSONOutput() && result != nil {
		if jsonErr := writeJSON(os.Stdout, result); jsonErr != nil && err == nil {
			return jsonErr
		}
	}
	return err
}
