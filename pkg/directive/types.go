// Package directive carries instructions from the overseer to a target
// worker. Delivery is polymorphic: a configured external manager is
// preferred, otherwise the target receives the directive directly when
// it implements Dispatchable. Either way the delegate call is bounded
// by a deadline and its failures come back as typed errors, so a slow
// or broken worker can never hang or crash the engine.
package directive

import (
	"context"
	"fmt"
	"time"
)

// Priority ranks a directive's urgency.
type Priority string

const (
	PriorityLow      Priority = "low"
	PriorityNormal   Priority = "normal"
	PriorityHigh     Priority = "high"
	PriorityCritical Priority = "critical"
)

// Validate checks that the priority is one of the known levels.
func (p Priority) Validate() error {
	switch p {
	case PriorityLow, PriorityNormal, PriorityHigh, PriorityCritical:
		return nil
	default:
		return fmt.Errorf("invalid priority: %q", p)
	}
}

// Directive is one instruction issued to a target.
type Directive struct {
	ID          string         `json:"id"`
	Title       string         `json:"title"`
	Body        string         `json:"body"`
	Priority    Priority       `json:"priority"`
	RequesterID string         `json:"requester_id"`
	TargetID    string         `json:"target_id"`
	Context     map[string]any `json:"context,omitempty"`
	IssuedAt    time.Time      `json:"issued_at"`
}

// Validate checks that all required fields are present and well-formed.
func (d *Directive) Validate() error {
	if d.ID == "" {
		return fmt.Errorf("directive ID is empty")
	}
	if d.Title == "" {
		return fmt.Errorf("directive title is empty")
	}
	if d.TargetID == "" {
		return fmt.Errorf("directive target ID is empty")
	}
	if d.RequesterID == "" {
		return fmt.Errorf("directive requester ID is empty")
	}
	if err := d.Priority.Validate(); err != nil {
		return err
	}
	if d.IssuedAt.IsZero() {
		return fmt.Errorf("directive issue timestamp is zero")
	}
	return nil
}

// ShortID returns the display prefix of the directive id.
func (d *Directive) ShortID() string {
	if len(d.ID) <= 8 {
		return d.ID
	}
	return d.ID[:8]
}

// Manager creates and delivers directives on the overseer's behalf.
// Implementations own directive identity and transport.
type Manager interface {
	Issue(ctx context.Context, requesterID, targetID, title, body string, priority Priority, context map[string]any) (*Directive, error)
}

// Dispatchable is the direct-delivery capability a roster member may
// implement. ReceiveDirective should honour the context deadline.
type Dispatchable interface {
	ReceiveDirective(ctx context.Context, d *Directive) error
}
