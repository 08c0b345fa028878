// clean.go implements the "edupulse clean" command.
//
// The clean command removes the virtual environment so the next setup starts
// from scratch. With --cache it also removes the application's regenerable
// cache files (cache_files, default cache.json). User data such as
// bookmarks and preferences is never touched.
//
// By default, the command prompts for confirmation before proceeding.
// The --force flag skips the confirmation prompt.

package cli

import (
	"bufio"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"

	"github.com/spf13/cobra"

	"github.com/shinji-kodama/edupulse/internal/config"
	"github.com/shinji-kodama/edupulse/internal/model"
	"github.com/shinji-kodama/edupulse/internal/venv"
)

// cleanFlags holds the flag values for the clean command.
type cleanFlags struct {
	// force skips the interactive confirmation prompt when true.
	force bool

	// cache also removes the configured cache files.
	cache bool
}

// NewCleanCommand creates the "clean" cobra command.
// It is called from NewRootCommand to register as a subcommand.
func NewCleanCommand() *cobra.Command {
	flags := &cleanFlags{}

	cmd := &cobra.Command{
		Use:   "clean",
		Short: "Remove the virtual environment",
		Long: `Remove the virtual environment so that "edupulse setup" starts fresh.

Use --cache to also remove regenerable cache files. Bookmarks and
preferences are never removed.

Unless --force is specified, the command prompts for confirmation.

Examples:
  edupulse clean
  edupulse clean --cache --force`,

		Args: cobra.NoArgs,

		RunE: func(cmd *cobra.Command, args []string) error {
			return runClean(flags, os.Stdin, promptWriter())
		},
	}

	cmd.Flags().BoolVarP(&flags.force, "force", "f", false, "Remove without confirmation")
	cmd.Flags().BoolVar(&flags.cache, "cache", false, "Also remove cache files")

	return cmd
}

// promptWriter returns where interactive prompts go. JSON mode keeps stdout
// for the result document.
func promptWriter() io.Writer {
	if IsJSONOutput() {
		return os.Stderr
	}
	return os.Stdout
}

// runClean is the main logic function for the clean command.
func runClean(flags *cleanFlags, in io.Reader, promptOut io.Writer) error {
	dir, cfg, err := loadProject()
	if err != nil {
		return err
	}

	targets, err := cleanTargets(dir, cfg, flags.cache)
	if err != nil {
		return err
	}
	if len(targets) == 0 {
		VerboseLog("Nothing to remove in %s", dir)
		printCleanResult(dir, nil)
		return nil
	}

	if !flags.force {
		confirmed, err := promptConfirmation(in, promptOut, dir, targets)
		if err != nil {
			return model.WrapCLIError(model.ExitGeneralError, "failed to read user input", err)
		}
		if !confirmed {
			return model.NewCLIError(model.ExitUserCancelled, "operation cancelled by user")
		}
	}

	removed, err := removeTargets(dir, targets)
	printCleanResult(dir, removed)
	return err
}

// cleanTargets returns the project-relative paths that clean would remove,
// limited to those that exist. It refuses an env_dir that does not look
// like a virtual environment, so a misconfigured env_dir cannot delete
// source files.
func cleanTargets(dir string, cfg *config.Config, includeCache bool) ([]string, error) {
	var targets []string

	layout := venv.NewLayout(config.Resolve(dir, cfg.EnvDir))
	if layout.Exists() {
		if !looksLikeEnvironment(layout) {
			return nil, model.NewCLIError(model.ExitGeneralError,
				fmt.Sprintf("%s does not look like a virtual environment (no pyvenv.cfg); refusing to delete it", cfg.EnvDir))
		}
		targets = append(targets, cfg.EnvDir)
	}

	if includeCache {
		for _, f := range cfg.CacheFiles {
			if _, err := os.Lstat(config.Resolve(dir, f)); err == nil {
				targets = append(targets, f)
			}
		}
	}
	return targets, nil
}

func looksLikeEnvironment(layout *venv.Layout) bool {
	if layout.HasInterpreter() {
		return true
	}
	_, err := os.Stat(layout.ConfigFile())
	return err == nil
}

// removeTargets deletes each target and returns those that were removed.
// It stops at the first failure.
func removeTargets(dir string, targets []string) ([]string, error) {
	removed := make([]string, 0, len(targets))
	for _, rel := range targets {
		path := config.Resolve(dir, rel)
		VerboseLog("Removing %s", path)
		if err := os.RemoveAll(path); err != nil {
			return removed, model.WrapCLIError(model.ExitGeneralError,
				fmt.Sprintf("failed to remove %s", rel), err)
		}
		removed = append(removed, rel)
	}
	return removed, nil
}

// promptConfirmation asks the user to confirm the clean operation.
// It reads a single line from in and checks for "y" or "yes".
func promptConfirmation(in io.Reader, out io.Writer, dir string, targets []string) (bool, error) {
	fmt.Fprintf(out, "About to remove from %s:\n", dir)
	for _, t := range targets {
		fmt.Fprintf(out, "  - %s\n", filepath.ToSlash(t))
	}
	fmt.Fprint(out, "\nContinue? [y/N] ")

	// bufio.Scanner handles both LF and CRLF line endings.
	scanner := bufio.NewScanner(in)
	if scanner.Scan() {
		answer := strings.TrimSpace(strings.ToLower(scanner.Text()))
		return answer == "y" || answer == "yes", nil
	}

	// If stdin is closed or an error occurred, treat it as "no".
	if err := scanner.Err(); err != nil {
		return false, err
	}
	return false, nil
}

// cleanResultJSON is the JSON output of the clean command.
type cleanResultJSON struct {
	ProjectDir string   `json:"projectDir"`
	Removed    []string `json:"removed"`
}

// printCleanResult outputs the clean result in text or JSON format.
func printCleanResult(dir string, removed []string) {
	if IsJSONOutput() {
		if removed == nil {
			removed = []string{}
		}
		_ = writeJSON(os.Stdout, cleanResultJSON{ProjectDir: dir, Removed: removed})
		return
	}

	if len(removed) == 0 {
		fmt.Println("Nothing to clean.")
		return
	}
	for _, rel := range removed {
		fmt.Printf("Removed %s\n", filepath.ToSlash(rel))
	}
}
