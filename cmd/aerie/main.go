package main

import (
	"os"

	"github.com/dyluth/aerie/cmd/aerie/commands"
)

// Build metadata, injected via -ldflags at release time.
var (
	version = "dev"
	commit  = "none"
	date    = "unknown"
)

func main() {
	commands.SetVersionInfo(version, commit, date)

	// Errors have already been printed by the printer package in color,
	// so a failing command only needs the exit code here.
	if err := commands.Execute(); err != nil {
		os.Exit(1)
	}
}
