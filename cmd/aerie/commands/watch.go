package commands

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"syscall"

	"github.com/spf13/cobra"

	"github.com/dyluth/aerie/internal/printer"
	"github.com/dyluth/aerie/internal/watch"
)

var (
	watchInstanceName string
	watchOutputFormat string
)

var watchCmd = &cobra.Command{
	Use:   "watch",
	Short: "Monitor real-time overseer activity",
	Long: `Stream the overseer's event feed as it happens.

Shows directives going out, reports and escalations coming in, approval
requests being filed and decided, and the overseer's replies.

Output Formats:
  default - Human-readable output with timestamps and emojis
  json    - Line-delimited JSON for programmatic processing

Examples:
  # Watch the default instance
  aerie watch

  # Watch a specific instance
  aerie watch --name prod

  # Export events as JSON
  aerie watch --output=json > events.jsonl`,
	RunE: runWatch,
}

func init() {
	watchCmd.Flags().StringVarP(&watchInstanceName, "name", "n", "", "Target instance name (defaults to aerie.yml or 'default')")
	watchCmd.Flags().StringVarP(&watchOutputFormat, "output", "o", "default", "Output format (default or json)")
	rootCmd.AddCommand(watchCmd)
}

func runWatch(cmd *cobra.Command, args []string) error {
	// Validate output format
	var outputFormat watch.OutputFormat
	switch watchOutputFormat {
	case "default":
		outputFormat = watch.OutputFormatDefault
	case "json":
		outputFormat = watch.OutputFormatJSON
	default:
		return printer.Error(
			"invalid output format",
			fmt.Sprintf("Unknown format: %s", watchOutputFormat),
			"Valid formats: default, json",
		)
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	stream, err := connectStream(ctx, watchInstanceName)
	if err != nil {
		return err
	}
	defer stream.Close()

	// Keep stdout clean when the output is meant for a pipe.
	if outputFormat == watch.OutputFormatDefault {
		printer.Info("Watching instance '%s' (ctrl-c to stop)\n", stream.Instance())
	}

	return watch.StreamActivity(ctx, stream, outputFormat, os.Stdout)
}
