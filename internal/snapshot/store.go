// Package snapshot persists overseer state to Redis so the daemon can
// restart without losing the approval ledger or the message journal.
//
// Each request and message is stored as its own hash; a state hash
// holds the index of snapshotted ids plus the capture timestamp. The
// index is written last, so a save interrupted mid-write leaves the
// previous complete snapshot readable.
package snapshot

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"strconv"
	"time"

	"github.com/redis/go-redis/v9"

	"github.com/dyluth/aerie/internal/eventstream"
	"github.com/dyluth/aerie/pkg/overseer"
)

// Store reads and writes overseer snapshots for one instance.
// The store is thread-safe.
type Store struct {
	rdb          *redis.Client
	instanceName string
}

// NewStore creates a snapshot store for the specified instance.
// Returns an error if instanceName is empty.
func NewStore(redisOpts *redis.Options, instanceName string) (*Store, error) {
	if instanceName == "" {
		return nil, fmt.Errorf("instance name cannot be empty")
	}

	return &Store{
		rdb:          redis.NewClient(redisOpts),
		instanceName: instanceName,
	}, nil
}

// Close closes the Redis connection. Implements io.Closer.
func (s *Store) Close() error {
	return s.rdb.Close()
}

// Ping verifies Redis connectivity.
func (s *Store) Ping(ctx context.Context) error {
	return s.rdb.Ping(ctx).Err()
}

// Save writes the state to Redis. Requests and messages are written
// first, the index hash last.
func (s *Store) Save(ctx context.Context, state *overseer.State) error {
	if state == nil {
		return fmt.Errorf("state cannot be nil")
	}

	requestIDs := make([]string, 0, len(state.Requests))
	for _, req := range state.Requests {
		hash, err := RequestToHash(req)
		if err != nil {
			return fmt.Errorf("failed to serialize request %s: %w", req.ID, err)
		}
		key := eventstream.RequestKey(s.instanceName, req.ID)
		if err := s.rdb.HSet(ctx, key, hash).Err(); err != nil {
			return fmt.Errorf("failed to write request %s: %w", req.ID, err)
		}
		requestIDs = append(requestIDs, req.ID)
	}

	messageIDs := make([]string, 0, len(state.Messages))
	for _, msg := range state.Messages {
		hash, err := MessageToHash(msg)
		if err != nil {
			return fmt.Errorf("failed to serialize message %s: %w", msg.ID, err)
		}
		key := eventstream.MessageKey(s.instanceName, msg.ID)
		if err := s.rdb.HSet(ctx, key, hash).Err(); err != nil {
			return fmt.Errorf("failed to write message %s: %w", msg.ID, err)
		}
		messageIDs = append(messageIDs, msg.ID)
	}

	requestIDsJSON, err := json.Marshal(requestIDs)
	if err != nil {
		return fmt.Errorf("failed to marshal request index: %w", err)
	}
	messageIDsJSON, err := json.Marshal(messageIDs)
	if err != nil {
		return fmt.Errorf("failed to marshal message index: %w", err)
	}

	stateHash := map[string]interface{}{
		"taken_at_ms": state.TakenAt.UnixMilli(),
		"request_ids": string(requestIDsJSON),
		"message_ids": string(messageIDsJSON),
	}

	key := eventstream.StateKey(s.instanceName)
	if err := s.rdb.HSet(ctx, key, stateHash).Err(); err != nil {
		return fmt.Errorf("failed to write snapshot index: %w", err)
	}

	return nil
}

// Load reads the most recent snapshot.
// Returns (nil, redis.Nil) if no snapshot exists; use IsNotFound() to
// check for that case.
func (s *Store) Load(ctx context.Context) (*overseer.State, error) {
	stateHash, err := s.rdb.HGetAll(ctx, eventstream.StateKey(s.instanceName)).Result()
	if err != nil {
		return nil, fmt.Errorf("failed to read snapshot index: %w", err)
	}

	// HGetAll returns an empty map for non-existent keys
	if len(stateHash) == 0 {
		return nil, redis.Nil
	}

	takenAtMs, err := strconv.ParseInt(stateHash["taken_at_ms"], 10, 64)
	if err != nil {
		return nil, fmt.Errorf("invalid taken_at_ms field: %w", err)
	}

	var requestIDs []string
	if raw := stateHash["request_ids"]; raw != "" {
		if err := json.Unmarshal([]byte(raw), &requestIDs); err != nil {
			return nil, fmt.Errorf("failed to unmarshal request index: %w", err)
		}
	}

	var messageIDs []string
	if raw := stateHash["message_ids"]; raw != "" {
		if err := json.Unmarshal([]byte(raw), &messageIDs); err != nil {
			return nil, fmt.Errorf("failed to unmarshal message index: %w", err)
		}
	}

	state := &overseer.State{TakenAt: time.UnixMilli(takenAtMs).UTC()}

	for _, id := range requestIDs {
		hashData, err := s.rdb.HGetAll(ctx, eventstream.RequestKey(s.instanceName, id)).Result()
		if err != nil {
			return nil, fmt.Errorf("failed to read request %s: %w", id, err)
		}
		if len(hashData) == 0 {
			return nil, fmt.Errorf("snapshot index references missing request %s", id)
		}
		req, err := HashToRequest(hashData)
		if err != nil {
			return nil, fmt.Errorf("failed to deserialize request %s: %w", id, err)
		}
		state.Requests = append(state.Requests, req)
	}

	for _, id := range messageIDs {
		hashData, err := s.rdb.HGetAll(ctx, eventstream.MessageKey(s.instanceName, id)).Result()
		if err != nil {
			return nil, fmt.Errorf("failed to read message %s: %w", id, err)
		}
		if len(hashData) == 0 {
			return nil, fmt.Errorf("snapshot index references missing message %s", id)
		}
		msg, err := HashToMessage(hashData)
		if err != nil {
			return nil, fmt.Errorf("failed to deserialize message %s: %w", id, err)
		}
		state.Messages = append(state.Messages, msg)
	}

	return state, nil
}

// IsNotFound returns true if the error is a Redis "key not found" error
// (redis.Nil). Use this to check if Load found no snapshot.
func IsNotFound(err error) bool {
	return errors.Is(err, redis.Nil)
}
