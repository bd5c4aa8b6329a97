package eventstream

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"github.com/redis/go-redis/v9"
)

// Stream provides instance-scoped Redis operations for the message
// fabric. All keys and channels are automatically namespaced with the
// instance name. The stream is thread-safe and can be used concurrently
// from multiple goroutines.
type Stream struct {
	rdb          *redis.Client
	instanceName string
}

// New creates a stream for the specified instance.
//
// Parameters:
//   - redisOpts: Redis connection options (address, password, DB, etc.)
//   - instanceName: aerie instance identifier (must not be empty)
//
// Returns an error if instanceName is empty.
func New(redisOpts *redis.Options, instanceName string) (*Stream, error) {
	if instanceName == "" {
		return nil, fmt.Errorf("instance name cannot be empty")
	}

	return &Stream{
		rdb:          redis.NewClient(redisOpts),
		instanceName: instanceName,
	}, nil
}

// Close closes the Redis connection. Implements io.Closer.
// After calling Close(), the stream should not be used.
func (s *Stream) Close() error {
	return s.rdb.Close()
}

// Ping verifies Redis connectivity. Useful for health checks.
func (s *Stream) Ping(ctx context.Context) error {
	return s.rdb.Ping(ctx).Err()
}

// Instance returns the instance name this stream is scoped to.
func (s *Stream) Instance() string {
	return s.instanceName
}

// publishEnvelope wraps payload in an Envelope and publishes it on the
// instance's events channel.
func (s *Stream) publishEnvelope(ctx context.Context, eventType string, payload any) error {
	body, err := json.Marshal(payload)
	if err != nil {
		return fmt.Errorf("failed to marshal %s payload: %w", eventType, err)
	}

	env := Envelope{
		Type:    eventType,
		At:      time.Now().UTC(),
		Payload: body,
	}

	data, err := json.Marshal(env)
	if err != nil {
		return fmt.Errorf("failed to marshal envelope: %w", err)
	}

	channel := EventsChannel(s.instanceName)
	if err := s.rdb.Publish(ctx, channel, data).Err(); err != nil {
		return fmt.Errorf("failed to publish %s event: %w", eventType, err)
	}

	return nil
}

// PublishReply publishes the overseer's textual response to an inbox
// message so watchers see the conversation, not just one side of it.
func (s *Stream) PublishReply(ctx context.Context, text string) error {
	return s.publishEnvelope(ctx, TypeReply, Reply{Text: text})
}

// SubscribeEvents subscribes to the instance's event envelopes.
// Caller must call subscription.Close() when done. Context cancellation
// also stops the subscription.
//
// Events are delivered on a buffered channel (size 10) to prevent
// blocking. If the subscriber is too slow, events may be dropped by
// Redis Pub/Sub (at-most-once delivery).
func (s *Stream) SubscribeEvents(ctx context.Context) (*Subscription[Envelope], error) {
	return subscribe[Envelope](ctx, s.rdb, EventsChannel(s.instanceName), "event envelope"), nil
}
