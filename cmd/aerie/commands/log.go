package commands

import (
	"context"
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"github.com/dyluth/aerie/internal/printer"
	"github.com/dyluth/aerie/internal/timespec"
	"github.com/dyluth/aerie/internal/transcript"
	"github.com/dyluth/aerie/pkg/journal"
)

var (
	logInstanceName string
	logOutputFormat string
	logDirection    string
	logKind         string
	logUnreadOnly   bool
	logSince        string
	logUntil        string
)

var logCmd = &cobra.Command{
	Use:   "log",
	Short: "List the overseer's message journal",
	Long: `List journalled messages from the overseer's latest snapshot.

Every instruction you send and every report, answer, and notification
the overseer records is journalled. The listing reads the snapshot that
overseerd persists, so it works whether or not the daemon is running
right now.

Output Formats:
  default - Human-readable table with ID, direction, kind, age, and content
  jsonl   - Line-delimited JSON, one message per line

Filters (all AND together):
  --direction - inbound (from crews) or outbound (from you)
  --kind      - directive, report, question, answer, or notification
  --unread    - only messages not yet marked read
  --since     - messages after this time (duration like '2h' or RFC3339)
  --until     - messages before this time

Examples:
  # Everything, newest last
  aerie log

  # Unread crew reports from the last two hours
  aerie log --direction=inbound --kind=report --unread --since=2h

  # Export for jq
  aerie log --output=jsonl | jq .content`,
	RunE: runLog,
}

func init() {
	logCmd.Flags().StringVarP(&logInstanceName, "name", "n", "", "Target instance name (defaults to aerie.yml or 'default')")
	logCmd.Flags().StringVarP(&logOutputFormat, "output", "o", "default", "Output format: default or jsonl")

	logCmd.Flags().StringVar(&logDirection, "direction", "", "Filter by direction (inbound or outbound)")
	logCmd.Flags().StringVar(&logKind, "kind", "", "Filter by message kind")
	logCmd.Flags().BoolVar(&logUnreadOnly, "unread", false, "Only show unread messages")
	logCmd.Flags().StringVar(&logSince, "since", "", "Show messages after time (duration or RFC3339)")
	logCmd.Flags().StringVar(&logUntil, "until", "", "Show messages before time (duration or RFC3339)")

	rootCmd.AddCommand(logCmd)
}

func runLog(cmd *cobra.Command, args []string) error {
	ctx := context.Background()

	// Validate output format
	var outputFormat transcript.OutputFormat
	switch logOutputFormat {
	case "default":
		outputFormat = transcript.OutputFormatDefault
	case "jsonl":
		outputFormat = transcript.OutputFormatJSONL
	default:
		return printer.Error(
			"invalid output format",
			fmt.Sprintf("Unknown format: %s", logOutputFormat),
			"Valid formats: default, jsonl",
		)
	}

	// Validate enum filters before touching Redis
	switch logDirection {
	case "", "inbound", "outbound":
	default:
		return printer.Error(
			"invalid direction filter",
			fmt.Sprintf("Unknown direction: %s", logDirection),
			"Valid directions: inbound, outbound",
		)
	}

	switch logKind {
	case "", "directive", "report", "question", "answer", "notification":
	default:
		return printer.Error(
			"invalid kind filter",
			fmt.Sprintf("Unknown kind: %s", logKind),
			"Valid kinds: directive, report, question, answer, notification",
		)
	}

	since, until, err := timespec.ParseRange(logSince, logUntil)
	if err != nil {
		return printer.Error(
			"invalid time filter",
			err.Error(),
			"Use duration format like '1h30m' or RFC3339 like '2026-08-21T13:00:00Z'",
		)
	}

	store, instanceName, err := connectStore(ctx, logInstanceName)
	if err != nil {
		return err
	}
	defer store.Close()

	criteria := &transcript.FilterCriteria{
		Direction:  journal.Direction(logDirection),
		Kind:       journal.Kind(logKind),
		UnreadOnly: logUnreadOnly,
		Since:      since,
		Until:      until,
	}

	if err := transcript.ListMessages(ctx, store, instanceName, outputFormat, criteria, os.Stdout); err != nil {
		return fmt.Errorf("failed to list messages: %w", err)
	}

	return nil
}
