package commands

import (
	"context"
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"github.com/dyluth/aerie/internal/printer"
	"github.com/dyluth/aerie/internal/transcript"
)

var (
	pendingInstanceName string
	pendingOutputFormat string
)

var pendingCmd = &cobra.Command{
	Use:   "pending",
	Short: "List approval requests awaiting a decision",
	Long: `List approval requests that have been filed but not yet decided.

Crews escalate work they cannot complete on their own. Each escalation
files an approval request, and the request stays pending until you
approve, reject, or amend it ('aerie say approve', 'aerie say reject ...').

Output Formats:
  default - Human-readable table with ID, kind, requester, age, and description
  jsonl   - Line-delimited JSON, one request per line

Examples:
  # See what needs your attention
  aerie pending

  # Export for jq
  aerie pending --output=jsonl | jq .description`,
	RunE: runPending,
}

func init() {
	pendingCmd.Flags().StringVarP(&pendingInstanceName, "name", "n", "", "Target instance name (defaults to aerie.yml or 'default')")
	pendingCmd.Flags().StringVarP(&pendingOutputFormat, "output", "o", "default", "Output format: default or jsonl")

	rootCmd.AddCommand(pendingCmd)
}

func runPending(cmd *cobra.Command, args []string) error {
	ctx := context.Background()

	var outputFormat transcript.OutputFormat
	switch pendingOutputFormat {
	case "default":
		outputFormat = transcript.OutputFormatDefault
	case "jsonl":
		outputFormat = transcript.OutputFormatJSONL
	default:
		return printer.Error(
			"invalid output format",
			fmt.Sprintf("Unknown format: %s", pendingOutputFormat),
			"Valid formats: default, jsonl",
		)
	}

	store, instanceName, err := connectStore(ctx, pendingInstanceName)
	if err != nil {
		return err
	}
	defer store.Close()

	if err := transcript.ListPendingRequests(ctx, store, instanceName, outputFormat, os.Stdout); err != nil {
		return fmt.Errorf("failed to list pending requests: %w", err)
	}

	return nil
}
