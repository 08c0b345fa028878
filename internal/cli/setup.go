// setup.go implements the "edupulse setup" command.
//
// The setup command provisions the project's isolated environment:
//  1. Find a Python interpreter that meets min_python
//  2. Create (or update) the virtual environment
//  3. Activate it for the remaining steps
//  4. Upgrade pip
//  5. Install the dependency manifest
//
// Each step runs only if the previous one succeeded. A failure prints a
// banner and, unless --no-pause is given, waits for Enter so a window
// opened by double-click does not vanish before the message is read.

package cli

import (
	"context"
	"os"

	"github.com/spf13/cobra"

	"github.com/shinji-kodama/edupulse/internal/bootstrap"
)

// setupFlags holds the flag values for the setup command.
type setupFlags struct {
	// recreate wipes an existing environment before creating it again.
	recreate bool
}

// NewSetupCommand creates the "setup" cobra command.
// It is called from NewRootCommand to register as a subcommand.
func NewSetupCommand() *cobra.Command {
	flags := &setupFlags{}

	cmd := &cobra.Command{
		Use:   "setup",
		Short: "Create the virtual environment and install dependencies",
		Long: `Create the project's virtual environment and install its dependencies.

Running setup again over an existing environment updates it in place.
Use --recreate to start from an empty environment.

Examples:
  edupulse setup
  edupulse setup --recreate
  edupulse --dir ~/EduPulse setup --no-pause`,

		Args: cobra.NoArgs,

		RunE: func(cmd *cobra.Command, args []string) error {
			return runSetup(cmd.Context(), flags)
		},
	}

	cmd.Flags().BoolVar(&flags.recreate, "recreate", false, "Delete and recreate an existing environment")

	return cmd
}

// runSetup is the main logic function for the setup command.
func runSetup(ctx context.Context, flags *setupFlags) error {
	dir, cfg, err := loadProject()
	if err != nil {
		return err
	}

	b := newBootstrapper(dir, cfg)
	report, err := b.Setup(ctx, bootstrap.SetupOptions{Recreate: flags.recreate})

	if IsJSONOutput() {
		if jsonErr := writeJSON(os.Stdout, report); jsonErr != nil && err == nil {
			return jsonErr
		}
	}
	return err
}
