// config.go implements the "edupulse config" command.
//
// "edupulse config" prints the effective configuration after defaults, the
// project file, EDUPULSE_* environment variables and flags are merged.
// "edupulse config init" writes the default configuration to edupulse.yaml
// as a starting point for customization.

package cli

import (
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"

	"github.com/spf13/cobra"

	"github.com/shinji-kodama/edupulse/internal/config"
	"github.com/shinji-kodama/edupulse/internal/model"
)

// configInitFlags holds the flag values for the config init command.
type configInitFlags struct {
	// force overwrites an existing configuration file.
	force bool
}

// NewConfigCommand creates the "config" cobra command and its subcommands.
// It is called from NewRootCommand to register as a subcommand.
func NewConfigCommand() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "config",
		Short: "Show the effective configuration",
		Long: `Show the effective configuration as YAML, or as JSON with --json.

Values come from built-in defaults, then edupulse.yaml (or .yml, .json,
.jsonc) in the project directory, then EDUPULSE_* environment variables.

Examples:
  edupulse config
  EDUPULSE_ENV_DIR=.venv edupulse config --json
  edupulse config init`,

		Args: cobra.NoArgs,

		RunE: func(cmd *cobra.Command, args []string) error {
			return runConfigShow(os.Stdout)
		},
	}

	cmd.AddCommand(newConfigInitCommand())
	return cmd
}

func newConfigInitCommand() *cobra.Command {
	flags := &configInitFlags{}

	cmd := &cobra.Command{
		Use:   "init",
		Short: "Write the default configuration to edupulse.yaml",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			return runConfigInit(flags)
		},
	}

	cmd.Flags().BoolVarP(&flags.force, "force", "f", false, "Overwrite an existing file")
	return cmd
}

// runConfigShow prints the effective configuration.
func runConfigShow(w io.Writer) error {
	_, cfg, err := loadProject()
	if err != nil {
		return err
	}

	if IsJSONOutput() {
		return writeJSON(w, cfg)
	}

	if cfg.Source != "" {
		fmt.Fprintf(w, "# source: %s\n", cfg.Source)
	} else {
		fmt.Fprintln(w, "# source: defaults")
	}
	return cfg.WriteYAML(w)
}

// runConfigInit writes the default configuration into the project directory.
// The existing configuration is not loaded, so init also works when that
// file is invalid and --force is given.
func runConfigInit(flags *configInitFlags) error {
	dir, err := resolveProjectDir()
	if err != nil {
		return err
	}

	path := configPathFlag
	if path == "" {
		path = filepath.Join(dir, config.DefaultFileName)
	}
	if ext := strings.ToLower(filepath.Ext(path)); ext != ".yaml" && ext != ".yml" {
		return model.NewCLIError(model.ExitConfigError,
			fmt.Sprintf("config init writes YAML; %s must end in .yaml or .yml", path))
	}

	if err := config.Default().WriteFile(path, flags.force); err != nil {
		return err
	}

	if IsJSONOutput() {
		return writeJSON(os.Stdout, map[string]string{"path": path})
	}
	fmt.Printf("Wrote %s\n", path)
	return nil
}
