// Package main is the entry point for the edupulse CLI.
//
// This binary sets up and launches the EduPulse application inside an
// isolated Python environment. It delegates all functionality to the
// internal/cli package, which defines cobra commands.
//
// Build-time variables (version, commit, date) are injected via ldflags,
// e.g. -ldflags "-X main.version=1.2.0". During development, they default
// to "dev", "none", and "unknown" respectively.
package main

import (
	"context"
	"os"
	"os/signal"

	"github.com/shinji-kodama/edupulse/internal/cli"
)

var (
	version = "dev"
	commit  = "none"
	date    = "unknown"
)

func main() {
	cli.Version = version
	cli.Commit = commit
	cli.Date = date

	// Ctrl+C cancels the running pip or application process through the
	// command context instead of leaving it orphaned.
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt)
	defer stop()

	rootCmd := cli.NewRootCommand()
	rootCmd.SetContext(ctx)
	cli.Execute(rootCmd)
}
