package eventstream

import (
	"encoding/json"
	"fmt"
	"strconv"
	"time"

	"github.com/dyluth/aerie/pkg/directive"
)

// Serialization helpers for converting between directives and Redis hashes
//
// Redis stores hashes as string-to-string maps. The context map is
// JSON-encoded into a single field; timestamps are stored as Unix
// milliseconds for lexicographic-free numeric comparison.

// DirectiveToHash converts a Directive to Redis hash format.
func DirectiveToHash(d *directive.Directive) (map[string]interface{}, error) {
	contextJSON, err := json.Marshal(d.Context)
	if err != nil {
		return nil, fmt.Errorf("failed to marshal directive context: %w", err)
	}

	hash := map[string]interface{}{
		"id":           d.ID,
		"title":        d.Title,
		"body":         d.Body,
		"priority":     string(d.Priority),
		"requester_id": d.RequesterID,
		"target_id":    d.TargetID,
		"context":      string(contextJSON),
		"issued_at_ms": d.IssuedAt.UnixMilli(),
	}

	return hash, nil
}

// HashToDirective converts a Redis hash back to a Directive.
func HashToDirective(hash map[string]string) (*directive.Directive, error) {
	issuedAtMs, err := strconv.ParseInt(hash["issued_at_ms"], 10, 64)
	if err != nil {
		return nil, fmt.Errorf("invalid issued_at_ms field: %w", err)
	}

	var dctx map[string]any
	if contextJSON := hash["context"]; contextJSON != "" && contextJSON != "null" {
		if err := json.Unmarshal([]byte(contextJSON), &dctx); err != nil {
			return nil, fmt.Errorf("failed to unmarshal directive context: %w", err)
		}
	}

	d := &directive.Directive{
		ID:          hash["id"],
		Title:       hash["title"],
		Body:        hash["body"],
		Priority:    directive.Priority(hash["priority"]),
		RequesterID: hash["requester_id"],
		TargetID:    hash["target_id"],
		Context:     dctx,
		IssuedAt:    time.UnixMilli(issuedAtMs).UTC(),
	}

	return d, nil
}
