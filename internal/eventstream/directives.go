package eventstream

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/redis/go-redis/v9"

	"github.com/dyluth/aerie/pkg/directive"
)

// DirectiveManager persists directives and announces them on the
// target's channel. It implements directive.Manager, so an overseer
// configured with it delivers every directive through Redis instead of
// in-process.
type DirectiveManager struct {
	stream *Stream
	newID  func() string
	now    func() time.Time
}

// NewDirectiveManager creates a manager writing through the given stream.
func NewDirectiveManager(stream *Stream) *DirectiveManager {
	return &DirectiveManager{
		stream: stream,
		newID:  func() string { return uuid.New().String() },
		now:    time.Now,
	}
}

// Issue assigns the directive an identity, persists it as a Redis hash,
// and publishes the full directive JSON on the target's channel.
func (m *DirectiveManager) Issue(ctx context.Context, requesterID, targetID, title, body string, priority directive.Priority, dctx map[string]any) (*directive.Directive, error) {
	d := &directive.Directive{
		ID:          m.newID(),
		Title:       title,
		Body:        body,
		Priority:    priority,
		RequesterID: requesterID,
		TargetID:    targetID,
		Context:     dctx,
		IssuedAt:    m.now().UTC(),
	}

	if err := d.Validate(); err != nil {
		return nil, fmt.Errorf("invalid directive: %w", err)
	}

	hash, err := DirectiveToHash(d)
	if err != nil {
		return nil, fmt.Errorf("failed to serialize directive: %w", err)
	}

	key := DirectiveKey(m.stream.instanceName, d.ID)
	if err := m.stream.rdb.HSet(ctx, key, hash).Err(); err != nil {
		return nil, fmt.Errorf("failed to write directive to Redis: %w", err)
	}

	data, err := json.Marshal(d)
	if err != nil {
		return nil, fmt.Errorf("failed to marshal directive for announcement: %w", err)
	}

	channel := DirectivesChannel(m.stream.instanceName, d.TargetID)
	if err := m.stream.rdb.Publish(ctx, channel, data).Err(); err != nil {
		return nil, fmt.Errorf("failed to announce directive: %w", err)
	}

	return d, nil
}

// Get retrieves a persisted directive by ID.
// Returns (nil, redis.Nil) if the directive doesn't exist.
// Use IsNotFound() to check for not-found errors.
func (m *DirectiveManager) Get(ctx context.Context, directiveID string) (*directive.Directive, error) {
	key := DirectiveKey(m.stream.instanceName, directiveID)

	hashData, err := m.stream.rdb.HGetAll(ctx, key).Result()
	if err != nil {
		return nil, fmt.Errorf("failed to read directive from Redis: %w", err)
	}

	// HGetAll returns an empty map for non-existent keys
	if len(hashData) == 0 {
		return nil, redis.Nil
	}

	d, err := HashToDirective(hashData)
	if err != nil {
		return nil, fmt.Errorf("failed to deserialize directive: %w", err)
	}

	return d, nil
}

// Subscribe subscribes to directives announced for one target.
// Caller must call subscription.Close() when done. Crew processes use
// this to receive their work.
func (m *DirectiveManager) Subscribe(ctx context.Context, targetID string) (*Subscription[directive.Directive], error) {
	channel := DirectivesChannel(m.stream.instanceName, targetID)
	return subscribe[directive.Directive](ctx, m.stream.rdb, channel, "directive"), nil
}

// IsNotFound returns true if the error is a Redis "key not found" error
// (redis.Nil). Use this to check if Get returned "not found".
func IsNotFound(err error) bool {
	return errors.Is(err, redis.Nil)
}
