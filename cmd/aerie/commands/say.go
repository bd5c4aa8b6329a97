package commands

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/spf13/cobra"

	"github.com/dyluth/aerie/internal/eventstream"
	"github.com/dyluth/aerie/internal/printer"
	"github.com/dyluth/aerie/internal/watch"
)

var (
	sayInstanceName string
	sayWatchReply   bool
	sayReplyTimeout time.Duration
)

var sayCmd = &cobra.Command{
	Use:   "say <message>",
	Short: "Send a message to the overseer",
	Long: `Send free text to the overseer's inbox.

The overseer classifies the message: '@<crew>: <instruction>' issues a
directive to that crew, 'approve [#ref]' and 'reject [#ref]' settle
pending approval requests, and 'status' summarises the current picture.
Anything else comes back with a usage hint.

With --watch the command waits for the overseer's reply and prints it.

Examples:
  # Issue a directive
  aerie say "@trading: halt all new positions"

  # Approve the oldest pending request and see the confirmation
  aerie say approve --watch

  # Ask for a status summary
  aerie say status --watch`,
	Args: cobra.MinimumNArgs(1),
	RunE: runSay,
}

func init() {
	sayCmd.Flags().StringVarP(&sayInstanceName, "name", "n", "", "Target instance name (defaults to aerie.yml or 'default')")
	sayCmd.Flags().BoolVarP(&sayWatchReply, "watch", "w", false, "Wait for the overseer's reply and print it")
	sayCmd.Flags().DurationVar(&sayReplyTimeout, "timeout", 30*time.Second, "How long --watch waits for a reply")
	rootCmd.AddCommand(sayCmd)
}

func runSay(cmd *cobra.Command, args []string) error {
	ctx := context.Background()

	stream, err := connectStream(ctx, sayInstanceName)
	if err != nil {
		return err
	}
	defer stream.Close()

	// Subscribe before publishing so the reply cannot slip past us.
	var sub *eventstream.Subscription[eventstream.Envelope]
	if sayWatchReply {
		sub, err = stream.SubscribeEvents(ctx)
		if err != nil {
			return fmt.Errorf("failed to subscribe to events: %w", err)
		}
		defer sub.Close()
	}

	text := strings.Join(args, " ")
	if err := stream.PublishInbox(ctx, &eventstream.InboxMessage{
		Kind: eventstream.InboxSay,
		Text: text,
	}); err != nil {
		return fmt.Errorf("failed to send message: %w", err)
	}

	if !sayWatchReply {
		printer.Success("Message sent to instance '%s'\n", stream.Instance())
		return nil
	}

	reply, err := watch.WaitForReply(ctx, sub, sayReplyTimeout)
	if err != nil {
		return printer.Error(
			"no reply from the overseer",
			err.Error(),
			fmt.Sprintf("Check that overseerd is running for instance '%s'.", stream.Instance()),
		)
	}

	fmt.Println(reply)
	return nil
}
