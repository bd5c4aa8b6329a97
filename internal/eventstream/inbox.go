package eventstream

import (
	"context"
	"encoding/json"
	"fmt"
	"time"
)

// PublishInbox validates and publishes a message to the overseer's
// inbox channel. A zero SentAt is stamped with the current time.
func (s *Stream) PublishInbox(ctx context.Context, msg *InboxMessage) error {
	if err := msg.Validate(); err != nil {
		return fmt.Errorf("invalid inbox message: %w", err)
	}

	if msg.SentAt.IsZero() {
		msg.SentAt = time.Now().UTC()
	}

	data, err := json.Marshal(msg)
	if err != nil {
		return fmt.Errorf("failed to marshal inbox message: %w", err)
	}

	channel := InboxChannel(s.instanceName)
	if err := s.rdb.Publish(ctx, channel, data).Err(); err != nil {
		return fmt.Errorf("failed to publish inbox message: %w", err)
	}

	return nil
}

// SubscribeInbox subscribes to messages addressed to this instance's
// overseer. Caller must call subscription.Close() when done.
func (s *Stream) SubscribeInbox(ctx context.Context) (*Subscription[InboxMessage], error) {
	return subscribe[InboxMessage](ctx, s.rdb, InboxChannel(s.instanceName), "inbox message"), nil
}
