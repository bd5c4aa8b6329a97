// Package transcript renders the overseer's persisted journal and
// approval ledger for the CLI. It reads the latest snapshot, so the
// commands work whether or not the daemon is currently running.
package transcript

import (
	"context"
	"fmt"
	"io"
	"sort"
	"time"

	"github.com/dyluth/aerie/internal/snapshot"
	"github.com/dyluth/aerie/pkg/approval"
	"github.com/dyluth/aerie/pkg/journal"
)

// OutputFormat specifies how to format listing output.
type OutputFormat string

const (
	// OutputFormatDefault uses a table format with truncated content
	OutputFormatDefault OutputFormat = "default"

	// OutputFormatJSONL outputs complete records as line-delimited JSON
	OutputFormatJSONL OutputFormat = "jsonl"
)

// FilterCriteria defines filtering options for the log command.
// All filters are ANDed together.
type FilterCriteria struct {
	Direction  journal.Direction // empty = no filter
	Kind       journal.Kind      // empty = no filter
	UnreadOnly bool              // false = no filter
	Since      time.Time         // zero = no lower bound
	Until      time.Time         // zero = no upper bound
}

// matchesFilter returns true if the message matches all filter criteria.
func (fc *FilterCriteria) matchesFilter(msg *journal.Message) bool {
	if fc.Direction != "" && msg.Direction != fc.Direction {
		return false
	}
	if fc.Kind != "" && msg.Kind != fc.Kind {
		return false
	}
	if fc.UnreadOnly && msg.Read {
		return false
	}
	if !fc.Since.IsZero() && msg.Timestamp.Before(fc.Since) {
		return false
	}
	if !fc.Until.IsZero() && msg.Timestamp.After(fc.Until) {
		return false
	}
	return true
}

// ListMessages loads the latest snapshot and writes matching journal
// messages to the provided writer in chronological order. A missing
// snapshot is not an error; it prints an empty listing.
func ListMessages(ctx context.Context, store *snapshot.Store, instanceName string, format OutputFormat, filters *FilterCriteria, w io.Writer) error {
	state, err := store.Load(ctx)
	if err != nil {
		if snapshot.IsNotFound(err) {
			fmt.Fprintf(w, "No messages recorded for instance '%s'\n", instanceName)
			return nil
		}
		return fmt.Errorf("failed to load snapshot: %w", err)
	}

	var messages []*journal.Message
	for _, msg := range state.Messages {
		if filters != nil && !filters.matchesFilter(msg) {
			continue
		}
		messages = append(messages, msg)
	}

	// Chronological, with the insertion sequence breaking wall-clock ties.
	sort.Slice(messages, func(i, j int) bool {
		if messages[i].Timestamp.Equal(messages[j].Timestamp) {
			return messages[i].Seq < messages[j].Seq
		}
		return messages[i].Timestamp.Before(messages[j].Timestamp)
	})

	switch format {
	case OutputFormatDefault:
		FormatMessagesTable(w, messages, instanceName)
	case OutputFormatJSONL:
		if err := FormatMessagesJSONL(w, messages); err != nil {
			return fmt.Errorf("failed to format JSONL output: %w", err)
		}
	default:
		return fmt.Errorf("unknown output format: %s", format)
	}

	return nil
}

// ListPendingRequests loads the latest snapshot and writes the approval
// requests still awaiting a decision, oldest first.
func ListPendingRequests(ctx context.Context, store *snapshot.Store, instanceName string, format OutputFormat, w io.Writer) error {
	state, err := store.Load(ctx)
	if err != nil {
		if snapshot.IsNotFound(err) {
			fmt.Fprintf(w, "No approval requests recorded for instance '%s'\n", instanceName)
			return nil
		}
		return fmt.Errorf("failed to load snapshot: %w", err)
	}

	var pending []*approval.Request
	for _, req := range state.Requests {
		if req.Status != approval.StatusPending {
			continue
		}
		pending = append(pending, req)
	}

	sort.Slice(pending, func(i, j int) bool {
		if pending[i].RequestedAt.Equal(pending[j].RequestedAt) {
			return pending[i].Seq < pending[j].Seq
		}
		return pending[i].RequestedAt.Before(pending[j].RequestedAt)
	})

	switch format {
	case OutputFormatDefault:
		FormatRequestsTable(w, pending, instanceName)
	case OutputFormatJSONL:
		if err := FormatRequestsJSONL(w, pending); err != nil {
			return fmt.Errorf("failed to format JSONL output: %w", err)
		}
	default:
		return fmt.Errorf("unknown output format: %s", format)
	}

	return nil
}
