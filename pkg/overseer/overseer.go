package overseer

import (
	"context"
	"fmt"
	"time"

	"github.com/dyluth/aerie/pkg/approval"
	"github.com/dyluth/aerie/pkg/directive"
	"github.com/dyluth/aerie/pkg/events"
	"github.com/dyluth/aerie/pkg/journal"
	"github.com/dyluth/aerie/pkg/roster"
	"github.com/google/uuid"
)

// ReportCallback is invoked synchronously when a crew files a report.
type ReportCallback func(workerID, workerName, content string)

// EscalationCallback is invoked synchronously when a crew escalates.
type EscalationCallback func(workerID, workerName, reason string)

// ApprovalNeededCallback is invoked synchronously when a request is
// filed with the ledger, from any path.
type ApprovalNeededCallback func(req *approval.Request)

// MessageCallback is invoked synchronously for every journalled message.
type MessageCallback func(msg *journal.Message)

// Option configures an Overseer at construction time.
type Option func(*Overseer)

// WithID fixes the overseer id instead of generating one.
func WithID(id string) Option {
	return func(o *Overseer) { o.id = id }
}

// WithManager installs an external directive manager; dispatch then
// prefers it over direct delivery.
func WithManager(m directive.Manager) Option {
	return func(o *Overseer) { o.manager = m }
}

// WithSink sets the domain event sink. Defaults to events.Discard.
func WithSink(s events.Sink) Option {
	return func(o *Overseer) { o.sink = s }
}

// WithDispatchTimeout bounds the external delegate call during
// directive dispatch.
func WithDispatchTimeout(timeout time.Duration) Option {
	return func(o *Overseer) { o.dispatchTimeout = timeout }
}

// WithClock replaces the timestamp source for all owned stores.
func WithClock(now func() time.Time) Option {
	return func(o *Overseer) { o.now = now }
}

// WithReportCallback registers the report observer.
func WithReportCallback(cb ReportCallback) Option {
	return func(o *Overseer) { o.onReport = cb }
}

// WithEscalationCallback registers the escalation observer.
func WithEscalationCallback(cb EscalationCallback) Option {
	return func(o *Overseer) { o.onEscalation = cb }
}

// WithApprovalNeededCallback registers the request-filed observer.
func WithApprovalNeededCallback(cb ApprovalNeededCallback) Option {
	return func(o *Overseer) { o.onApprovalNeeded = cb }
}

// WithMessageCallback registers the journal observer.
func WithMessageCallback(cb MessageCallback) Option {
	return func(o *Overseer) { o.onMessage = cb }
}

// Overseer is the single arbiter for one organisation. It owns the crew
// roster, the approval ledger, and the message journal, and is safe for
// concurrent use: workers may file reports and escalations while the
// human issues directives and decisions.
type Overseer struct {
	id   string
	name string

	roster     *roster.Registry
	ledger     *approval.Ledger
	journal    *journal.Log
	dispatcher *directive.Dispatcher

	manager         directive.Manager
	sink            events.Sink
	dispatchTimeout time.Duration
	now             func() time.Time

	onReport         ReportCallback
	onEscalation     EscalationCallback
	onApprovalNeeded ApprovalNeededCallback
	onMessage        MessageCallback
}

// New constructs an Overseer with empty stores.
func New(name string, opts ...Option) *Overseer {
	o := &Overseer{
		id:              uuid.New().String(),
		name:            name,
		sink:            events.Discard,
		dispatchTimeout: directive.DefaultTimeout,
		now:             time.Now,
	}
	for _, opt := range opts {
		opt(o)
	}

	o.journal = journal.NewLog(
		journal.WithClock(o.now),
		journal.WithObserver(func(m *journal.Message) {
			if o.onMessage != nil {
				o.onMessage(m)
			}
		}),
	)
	o.ledger = approval.NewLedger(
		approval.WithClock(o.now),
		approval.WithFiledHook(o.requestFiled),
		approval.WithDecidedHook(o.requestDecided),
	)
	o.roster = roster.NewRegistry(o)

	dopts := []directive.DispatcherOption{
		directive.WithSink(o.sink),
		directive.WithTimeout(o.dispatchTimeout),
		directive.WithClock(o.now),
	}
	if o.manager != nil {
		dopts = append(dopts, directive.WithManager(o.manager))
	}
	o.dispatcher = directive.NewDispatcher(o.id, o.roster, dopts...)

	return o
}

// OverseerID returns the arbiter's id. It also satisfies
// roster.Overseer, so the registry can install back-references.
func (o *Overseer) OverseerID() string { return o.id }

// Name returns the arbiter's display name.
func (o *Overseer) Name() string { return o.name }

// Register adds a crew to the roster under the given name.
func (o *Overseer) Register(name string, m roster.Member) {
	o.roster.Register(name, m)
}

// Unregister removes a crew by name.
func (o *Overseer) Unregister(name string) bool {
	return o.roster.Unregister(name)
}

// Crews returns the registered crew names, sorted.
func (o *Overseer) Crews() []string {
	return o.roster.Names()
}

// RequestApproval files a request for arbiter adjudication. The filed
// hook invokes the approval-needed callback and publishes RequestFiled.
func (o *Overseer) RequestApproval(kind approval.Kind, description, requesterID, requesterName string, details map[string]any) *approval.Request {
	return o.ledger.File(kind, description, requesterID, requesterName, details)
}

// Approve settles a pending request as approved. It returns false when
// the id is unknown or the request is already settled.
func (o *Overseer) Approve(id, note string) bool {
	return o.ledger.Decide(id, approval.OutcomeApprove, note)
}

// Reject settles a pending request as rejected, with the same guard as
// Approve.
func (o *Overseer) Reject(id, note string) bool {
	return o.ledger.Decide(id, approval.OutcomeReject, note)
}

// Amend settles a pending request as amended: approved in substance but
// on the adjusted terms described by note.
func (o *Overseer) Amend(id, note string) bool {
	return o.ledger.Amend(id, note)
}

// PendingRequests returns the open approval requests, oldest first.
func (o *Overseer) PendingRequests() []*approval.Request {
	return o.ledger.Pending()
}

// Request returns the approval request with the given id.
func (o *Overseer) Request(id string) (*approval.Request, bool) {
	return o.ledger.Get(id)
}

// Messages returns the full journal in insertion order.
func (o *Overseer) Messages() []*journal.Message {
	return o.journal.Messages()
}

// MarkRead flags a journalled message as read.
func (o *Overseer) MarkRead(id string) bool {
	return o.journal.MarkRead(id)
}

// ReceiveReport records a report from a crew: journal it, notify the
// report callback, publish ReportReceived. Reports never change
// approval state.
func (o *Overseer) ReceiveReport(ctx context.Context, workerID, workerName, content string, mctx map[string]any) {
	o.journal.Append(journal.DirectionInbound, journal.KindReport, content, workerID, mctx)
	if o.onReport != nil {
		o.onReport(workerID, workerName, content)
	}
	o.sink.Publish(ctx, events.ReportReceived{
		WorkerID:   workerID,
		WorkerName: workerName,
		Summary:    truncate(content, titleMaxRunes),
		At:         o.now(),
	})
}

// ReceiveEscalation records an escalation from a crew and always files
// an approval request for it: escalations are never silently resolved.
// The new request is returned.
func (o *Overseer) ReceiveEscalation(ctx context.Context, workerID, workerName, reason string, mctx map[string]any) *approval.Request {
	o.journal.Append(journal.DirectionInbound, journal.KindNotification,
		fmt.Sprintf("escalation from %s: %s", workerName, reason), workerID, mctx)
	if o.onEscalation != nil {
		o.onEscalation(workerID, workerName, reason)
	}

	req := o.ledger.File(approval.KindEscalation, reason, workerID, workerName, mctx)

	o.sink.Publish(ctx, events.EscalationReceived{
		WorkerID:   workerID,
		WorkerName: workerName,
		Reason:     reason,
		RequestID:  req.ID,
		At:         o.now(),
	})
	return req
}

// State is a point-in-time export of the overseer's persistable stores.
// Roster entries are live object references and deliberately absent:
// the host re-registers crews after a restore.
type State struct {
	TakenAt  time.Time           `json:"taken_at"`
	Requests []*approval.Request `json:"requests"`
	Messages []*journal.Message  `json:"messages"`
}

// Snapshot exports the ledger and journal for persistence by the host.
func (o *Overseer) Snapshot() *State {
	return &State{
		TakenAt:  o.now(),
		Requests: o.ledger.All(),
		Messages: o.journal.Messages(),
	}
}

// Restore replaces the ledger and journal contents from a snapshot.
func (o *Overseer) Restore(s *State) {
	if s == nil {
		return
	}
	o.ledger.Restore(s.Requests)
	o.journal.Restore(s.Messages)
}

// requestFiled runs after every ledger File.
func (o *Overseer) requestFiled(req *approval.Request) {
	if o.onApprovalNeeded != nil {
		o.onApprovalNeeded(req)
	}
	o.sink.Publish(context.Background(), events.RequestFiled{
		RequestID:     req.ID,
		Kind:          string(req.Kind),
		Description:   req.Description,
		RequesterID:   req.RequesterID,
		RequesterName: req.RequesterName,
		At:            req.RequestedAt,
	})
}

// requestDecided runs after every successful ledger Decide or Amend.
func (o *Overseer) requestDecided(req *approval.Request) {
	at := req.RequestedAt
	if req.DecidedAt != nil {
		at = *req.DecidedAt
	}
	o.sink.Publish(context.Background(), events.RequestDecided{
		RequestID: req.ID,
		Outcome:   string(req.Status),
		Note:      req.DecisionNote,
		At:        at,
	})
}
