// Package watch streams live instance activity for the CLI.
package watch

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"os"
	"time"

	"github.com/dyluth/aerie/internal/eventstream"
)

// OutputFormat specifies how to render streamed events.
type OutputFormat string

const (
	// OutputFormatDefault uses human-readable output with timestamps and emojis
	OutputFormatDefault OutputFormat = "default"

	// OutputFormatJSON outputs raw envelopes as line-delimited JSON
	OutputFormatJSON OutputFormat = "json"
)

// StreamActivity subscribes to the instance's event envelopes and writes
// one line per event to w until the context is cancelled. Malformed
// events are reported to stderr and skipped.
func StreamActivity(ctx context.Context, stream *eventstream.Stream, format OutputFormat, w io.Writer) error {
	switch format {
	case OutputFormatDefault, OutputFormatJSON:
	default:
		return fmt.Errorf("unknown output format: %s", format)
	}

	sub, err := stream.SubscribeEvents(ctx)
	if err != nil {
		return fmt.Errorf("failed to subscribe to events: %w", err)
	}
	defer sub.Close()

	for {
		select {
		case <-ctx.Done():
			return nil

		case err, ok := <-sub.Errors():
			if !ok {
				return nil
			}
			fmt.Fprintf(os.Stderr, "⚠  skipping malformed event: %v\n", err)

		case env, ok := <-sub.Events():
			if !ok {
				return nil
			}

			if format == OutputFormatJSON {
				data, err := json.Marshal(env)
				if err != nil {
					fmt.Fprintf(os.Stderr, "⚠  skipping unencodable event: %v\n", err)
					continue
				}
				fmt.Fprintf(w, "%s\n", string(data))
				continue
			}

			fmt.Fprintf(w, "[%s] %s\n", env.At.Local().Format("15:04:05"), FormatEnvelope(env))
		}
	}
}

// WaitForReply returns the text of the first overseer reply seen on the
// subscription within timeout. Callers must subscribe before publishing
// the message the reply answers, or the reply can be missed.
func WaitForReply(ctx context.Context, sub *eventstream.Subscription[eventstream.Envelope], timeout time.Duration) (string, error) {
	timeoutCh := time.After(timeout)

	for {
		select {
		case <-ctx.Done():
			return "", ctx.Err()

		case <-timeoutCh:
			return "", fmt.Errorf("timeout waiting for overseer reply after %v", timeout)

		case env, ok := <-sub.Events():
			if !ok {
				if ctx.Err() != nil {
					return "", ctx.Err()
				}
				return "", fmt.Errorf("event stream closed before a reply arrived")
			}

			if env.Type != eventstream.TypeReply {
				continue
			}

			var reply eventstream.Reply
			if err := json.Unmarshal(env.Payload, &reply); err != nil {
				// Not decodable as a reply, keep waiting
				continue
			}

			return reply.Text, nil
		}
	}
}
