package commands

import (
	"fmt"

	"github.com/spf13/cobra"
)

var (
	version string
	commit  string
	date    string
)

// rootCmd represents the base command when called without any subcommands
var rootCmd = &cobra.Command{
	Use:   "aerie",
	Short: "Aerie - Human-in-the-loop directive routing and approvals",
	Long: `Aerie puts a single overseer between you and your worker crews.

Free text you send is classified into intents: '@<crew>: <instruction>'
dispatches a directive, 'approve'/'reject' settle pending approval
requests, and 'status' summarises the current picture. Crews report
back and escalate over Redis, and every escalation waits for a human
decision.

The overseerd daemon hosts the engine; this CLI talks to it.`,
	Version: version,
	// Prevent silent success when unknown flags are passed to root command
	// e.g., "aerie --watch" instead of "aerie say hello --watch"
	RunE: func(cmd *cobra.Command, args []string) error {
		// If no subcommand is specified, show help
		return cmd.Help()
	},
	// Enable strict flag parsing - unknown flags will cause an error
	FParseErrWhitelist: cobra.FParseErrWhitelist{},
}

// Execute adds all child commands to the root command and sets flags appropriately.
// This is called by main.main(). It only needs to happen once to the rootCmd.
func Execute() error {
	// Silence Cobra's default error and usage printing
	// We print formatted colored errors directly in the printer package
	rootCmd.SilenceErrors = true
	rootCmd.SilenceUsage = true
	return rootCmd.Execute()
}

// SetVersionInfo sets the version information for the CLI
func SetVersionInfo(v, c, d string) {
	version = v
	commit = c
	date = d
	rootCmd.Version = fmt.Sprintf("%s (commit: %s, built: %s)", v, c, d)
}
