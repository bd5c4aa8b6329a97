// Package approval keeps the ledger of requests awaiting arbiter
// adjudication and enforces the request lifecycle: a request is filed
// pending and moves exactly once to approved, rejected, or amended.
// Later decisions on a settled request are refused, never overwritten.
package approval

import (
	"errors"
	"fmt"
	"strings"
	"time"
)

// Kind classifies what a request asks permission for.
type Kind string

const (
	KindDirective  Kind = "directive"
	KindEscalation Kind = "escalation"
	KindBudget     Kind = "budget"
	KindStrategy   Kind = "strategy"
)

// Status is the lifecycle state of a request.
type Status string

const (
	StatusPending  Status = "pending"
	StatusApproved Status = "approved"
	StatusRejected Status = "rejected"
	StatusAmended  Status = "amended"
)

// Outcome is a decision input to Decide.
type Outcome string

const (
	OutcomeApprove Outcome = "approve"
	OutcomeReject  Outcome = "reject"
)

// status maps an outcome to the terminal status it produces.
func (o Outcome) status() (Status, bool) {
	switch o {
	case OutcomeApprove:
		return StatusApproved, true
	case OutcomeReject:
		return StatusRejected, true
	default:
		return "", false
	}
}

// Request is one approval request in the ledger. All fields except
// Status, DecidedAt, and DecisionNote are immutable after filing;
// those three change exactly once, together, on the first decision.
type Request struct {
	ID            string         `json:"id"`
	Kind          Kind           `json:"kind"`
	Description   string         `json:"description"`
	RequesterID   string         `json:"requester_id"`
	RequesterName string         `json:"requester_name"`
	Details       map[string]any `json:"details,omitempty"`
	Status        Status         `json:"status"`
	RequestedAt   time.Time      `json:"requested_at"`
	DecidedAt     *time.Time     `json:"decided_at,omitempty"`
	DecisionNote  string         `json:"decision_note,omitempty"`

	// Seq is the filing sequence within the owning ledger. It breaks
	// RequestedAt ties when ordering pending requests.
	Seq uint64 `json:"seq"`
}

// Validate checks that all required fields are present and consistent.
func (r *Request) Validate() error {
	if r.ID == "" {
		return fmt.Errorf("request ID is empty")
	}
	switch r.Kind {
	case KindDirective, KindEscalation, KindBudget, KindStrategy:
	default:
		return fmt.Errorf("invalid request kind: %q", r.Kind)
	}
	switch r.Status {
	case StatusPending, StatusApproved, StatusRejected, StatusAmended:
	default:
		return fmt.Errorf("invalid request status: %q", r.Status)
	}
	if r.RequestedAt.IsZero() {
		return fmt.Errorf("request timestamp is zero")
	}
	if (r.Status == StatusPending) != (r.DecidedAt == nil) {
		return fmt.Errorf("decided_at must be set exactly when status is terminal, got status %q", r.Status)
	}
	return nil
}

// Decided reports whether the request has reached a terminal status.
func (r *Request) Decided() bool {
	return r.Status != StatusPending
}

// ShortID returns the display prefix of the request id.
func (r *Request) ShortID() string {
	if len(r.ID) <= 8 {
		return r.ID
	}
	return r.ID[:8]
}

// NotFoundError reports a reference that matched no request. Ref is
// empty when the lookup wanted the oldest pending request and none
// existed.
type NotFoundError struct {
	Ref string
}

func (e *NotFoundError) Error() string {
	if e.Ref == "" {
		return "no pending approval requests"
	}
	return fmt.Sprintf("no approval request matches %q", e.Ref)
}

// AmbiguousError reports a reference that matched more than one request.
type AmbiguousError struct {
	Ref     string
	Matches []string
}

func (e *AmbiguousError) Error() string {
	return fmt.Sprintf("reference %q matches %d requests: %s", e.Ref, len(e.Matches), strings.Join(e.Matches, ", "))
}

// IsNotFound reports whether err is an approval NotFoundError.
func IsNotFound(err error) bool {
	var nf *NotFoundError
	return errors.As(err, &nf)
}

// IsAmbiguous reports whether err is an approval AmbiguousError.
func IsAmbiguous(err error) bool {
	var amb *AmbiguousError
	return errors.As(err, &amb)
}
