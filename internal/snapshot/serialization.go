package snapshot

import (
	"encoding/json"
	"fmt"
	"strconv"
	"time"

	"github.com/dyluth/aerie/pkg/approval"
	"github.com/dyluth/aerie/pkg/journal"
)

// Serialization helpers for converting engine records to Redis hashes
//
// Map fields are JSON-encoded into single hash fields; timestamps are
// stored as Unix milliseconds. An empty decided_at_ms means the request
// is still pending.

// RequestToHash converts an approval request to Redis hash format.
func RequestToHash(r *approval.Request) (map[string]interface{}, error) {
	detailsJSON, err := json.Marshal(r.Details)
	if err != nil {
		return nil, fmt.Errorf("failed to marshal request details: %w", err)
	}

	hash := map[string]interface{}{
		"id":              r.ID,
		"kind":            string(r.Kind),
		"description":     r.Description,
		"requester_id":    r.RequesterID,
		"requester_name":  r.RequesterName,
		"details":         string(detailsJSON),
		"status":          string(r.Status),
		"requested_at_ms": r.RequestedAt.UnixMilli(),
		"decision_note":   r.DecisionNote,
		"seq":             r.Seq,
	}

	if r.DecidedAt != nil {
		hash["decided_at_ms"] = r.DecidedAt.UnixMilli()
	} else {
		hash["decided_at_ms"] = ""
	}

	return hash, nil
}

// HashToRequest converts a Redis hash back to an approval request.
func HashToRequest(hash map[string]string) (*approval.Request, error) {
	requestedAtMs, err := strconv.ParseInt(hash["requested_at_ms"], 10, 64)
	if err != nil {
		return nil, fmt.Errorf("invalid requested_at_ms field: %w", err)
	}

	var details map[string]any
	if raw := hash["details"]; raw != "" && raw != "null" {
		if err := json.Unmarshal([]byte(raw), &details); err != nil {
			return nil, fmt.Errorf("failed to unmarshal request details: %w", err)
		}
	}

	var decidedAt *time.Time
	if raw := hash["decided_at_ms"]; raw != "" {
		ms, err := strconv.ParseInt(raw, 10, 64)
		if err != nil {
			return nil, fmt.Errorf("invalid decided_at_ms field: %w", err)
		}
		t := time.UnixMilli(ms).UTC()
		decidedAt = &t
	}

	seq, _ := strconv.ParseUint(hash["seq"], 10, 64)

	req := &approval.Request{
		ID:            hash["id"],
		Kind:          approval.Kind(hash["kind"]),
		Description:   hash["description"],
		RequesterID:   hash["requester_id"],
		RequesterName: hash["requester_name"],
		Details:       details,
		Status:        approval.Status(hash["status"]),
		RequestedAt:   time.UnixMilli(requestedAtMs).UTC(),
		DecidedAt:     decidedAt,
		DecisionNote:  hash["decision_note"],
		Seq:           seq,
	}

	return req, nil
}

// MessageToHash converts a journal message to Redis hash format.
func MessageToHash(m *journal.Message) (map[string]interface{}, error) {
	contextJSON, err := json.Marshal(m.Context)
	if err != nil {
		return nil, fmt.Errorf("failed to marshal message context: %w", err)
	}

	hash := map[string]interface{}{
		"id":           m.ID,
		"direction":    string(m.Direction),
		"kind":         string(m.Kind),
		"content":      m.Content,
		"related_id":   m.RelatedID,
		"context":      string(contextJSON),
		"timestamp_ms": m.Timestamp.UnixMilli(),
		"read":         m.Read,
		"seq":          m.Seq,
	}

	return hash, nil
}

// HashToMessage converts a Redis hash back to a journal message.
func HashToMessage(hash map[string]string) (*journal.Message, error) {
	timestampMs, err := strconv.ParseInt(hash["timestamp_ms"], 10, 64)
	if err != nil {
		return nil, fmt.Errorf("invalid timestamp_ms field: %w", err)
	}

	var mctx map[string]any
	if raw := hash["context"]; raw != "" && raw != "null" {
		if err := json.Unmarshal([]byte(raw), &mctx); err != nil {
			return nil, fmt.Errorf("failed to unmarshal message context: %w", err)
		}
	}

	read, _ := strconv.ParseBool(hash["read"])
	seq, _ := strconv.ParseUint(hash["seq"], 10, 64)

	msg := &journal.Message{
		ID:        hash["id"],
		Direction: journal.Direction(hash["direction"]),
		Kind:      journal.Kind(hash["kind"]),
		Content:   hash["content"],
		RelatedID: hash["related_id"],
		Context:   mctx,
		Timestamp: time.UnixMilli(timestampMs).UTC(),
		Read:      read,
		Seq:       seq,
	}

	return msg, nil
}
