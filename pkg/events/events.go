// Package events defines the domain events the overseer engine emits and
// the sink contract used to publish them.
//
// Every mutating operation on the engine produces exactly one event. Sinks
// are fire-and-forget: a failing or slow sink must never change engine
// state or surface an error to the operation that triggered the event. The
// in-process Bus in this package is the simplest sink; hosts that need
// cross-process delivery wire in a transport-backed implementation instead.
package events

import (
	"context"
	"time"
)

// Type identifies a kind of domain event.
type Type string

const (
	TypeRequestFiled       Type = "approval.request.filed"
	TypeRequestDecided     Type = "approval.request.decided"
	TypeDirectiveGiven     Type = "directive.given"
	TypeReportReceived     Type = "report.received"
	TypeEscalationReceived Type = "escalation.received"
)

// Event is implemented by every domain event.
type Event interface {
	EventType() Type
}

// Sink receives domain events for delivery to external observers.
//
// Publish is fire-and-forget: implementations swallow delivery failures
// and must not block the caller beyond what delivery itself costs.
type Sink interface {
	Publish(ctx context.Context, e Event)
}

// Discard is a Sink that drops every event. It is the default sink for
// engines constructed without an observer.
var Discard Sink = discard{}

type discard struct{}

func (discard) Publish(context.Context, Event) {}

// RequestFiled is emitted when a new approval request enters the ledger.
type RequestFiled struct {
	RequestID     string    `json:"request_id"`
	Kind          string    `json:"kind"`
	Description   string    `json:"description"`
	RequesterID   string    `json:"requester_id"`
	RequesterName string    `json:"requester_name"`
	At            time.Time `json:"at"`
}

func (RequestFiled) EventType() Type { return TypeRequestFiled }

// RequestDecided is emitted when a pending request reaches a terminal
// status. Outcome is the terminal status the request moved to.
type RequestDecided struct {
	RequestID string    `json:"request_id"`
	Outcome   string    `json:"outcome"`
	Note      string    `json:"note"`
	At        time.Time `json:"at"`
}

func (RequestDecided) EventType() Type { return TypeRequestDecided }

// DirectiveGiven is emitted after a directive is successfully dispatched
// to a target, whether through a manager or by direct delivery.
type DirectiveGiven struct {
	DirectiveID string    `json:"directive_id"`
	TargetID    string    `json:"target_id"`
	TargetName  string    `json:"target_name"`
	Title       string    `json:"title"`
	Priority    string    `json:"priority"`
	At          time.Time `json:"at"`
}

func (DirectiveGiven) EventType() Type { return TypeDirectiveGiven }

// ReportReceived is emitted when a worker files a report with the overseer.
type ReportReceived struct {
	WorkerID   string    `json:"worker_id"`
	WorkerName string    `json:"worker_name"`
	Summary    string    `json:"summary"`
	At         time.Time `json:"at"`
}

func (ReportReceived) EventType() Type { return TypeReportReceived }

// EscalationReceived is emitted when a worker escalates a problem.
// RequestID identifies the approval request the escalation filed.
type EscalationReceived struct {
	WorkerID   string    `json:"worker_id"`
	WorkerName string    `json:"worker_name"`
	Reason     string    `json:"reason"`
	RequestID  string    `json:"request_id"`
	At         time.Time `json:"at"`
}

func (EscalationReceived) EventType() Type { return TypeEscalationReceived }
