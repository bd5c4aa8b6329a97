package approval

import (
	"sort"
	"strings"
	"sync"
	"time"

	"github.com/google/uuid"
)

// Hook is invoked synchronously with a copy of a request after it is
// filed or decided. The façade uses hooks to attach notification and
// event publication without the ledger knowing about either.
type Hook func(*Request)

// Option configures a Ledger.
type Option func(*Ledger)

// WithClock replaces the filing/decision timestamp source.
func WithClock(now func() time.Time) Option {
	return func(l *Ledger) { l.now = now }
}

// WithIDGenerator replaces the request id source.
func WithIDGenerator(gen func() string) Option {
	return func(l *Ledger) { l.newID = gen }
}

// WithFiledHook registers the hook run after every File.
func WithFiledHook(h Hook) Option {
	return func(l *Ledger) { l.onFiled = h }
}

// WithDecidedHook registers the hook run after every successful
// Decide or Amend.
func WithDecidedHook(h Hook) Option {
	return func(l *Ledger) { l.onDecided = h }
}

// Ledger stores approval requests keyed by id. All methods are safe for
// concurrent use; mutations serialize on one lock and hooks run after
// the lock is released.
type Ledger struct {
	mu       sync.Mutex
	requests map[string]*Request
	order    []string // ids in filing order
	seq      uint64

	now       func() time.Time
	newID     func() string
	onFiled   Hook
	onDecided Hook
}

// NewLedger returns an empty ledger.
func NewLedger(opts ...Option) *Ledger {
	l := &Ledger{
		requests: make(map[string]*Request),
		now:      time.Now,
		newID:    func() string { return uuid.New().String() },
	}
	for _, opt := range opts {
		opt(l)
	}
	return l
}

// File records a new pending request and returns a copy of it. File
// always succeeds.
func (l *Ledger) File(kind Kind, description, requesterID, requesterName string, details map[string]any) *Request {
	l.mu.Lock()
	l.seq++
	req := &Request{
		ID:            l.newID(),
		Kind:          kind,
		Description:   description,
		RequesterID:   requesterID,
		RequesterName: requesterName,
		Details:       cloneDetails(details),
		Status:        StatusPending,
		RequestedAt:   l.now(),
		Seq:           l.seq,
	}
	l.requests[req.ID] = req
	l.order = append(l.order, req.ID)
	out := copyRequest(req)
	l.mu.Unlock()

	if l.onFiled != nil {
		l.onFiled(out)
	}
	return out
}

// Decide moves a pending request to approved or rejected, setting the
// decision timestamp and note exactly once. It returns false when the
// id is unknown, the outcome is invalid, or the request is already
// settled; in every false case the stored request is untouched.
func (l *Ledger) Decide(id string, outcome Outcome, note string) bool {
	status, ok := outcome.status()
	if !ok {
		return false
	}
	return l.settle(id, status, note)
}

// Amend moves a pending request to the amended state: approved in
// substance but on adjusted terms described by the note. The same
// single-transition guard as Decide applies.
func (l *Ledger) Amend(id string, note string) bool {
	return l.settle(id, StatusAmended, note)
}

func (l *Ledger) settle(id string, status Status, note string) bool {
	l.mu.Lock()
	req, ok := l.requests[id]
	if !ok || req.Decided() {
		l.mu.Unlock()
		return false
	}
	decidedAt := l.now()
	req.Status = status
	req.DecidedAt = &decidedAt
	req.DecisionNote = note
	out := copyRequest(req)
	l.mu.Unlock()

	if l.onDecided != nil {
		l.onDecided(out)
	}
	return true
}

// Get returns a copy of the request with the given id.
func (l *Ledger) Get(id string) (*Request, bool) {
	l.mu.Lock()
	defer l.mu.Unlock()

	req, ok := l.requests[id]
	if !ok {
		return nil, false
	}
	return copyRequest(req), true
}

// Pending returns copies of all pending requests, oldest first.
// Ordering is by filing timestamp with the filing sequence breaking
// ties, so it is stable even when two requests share a clock tick.
func (l *Ledger) Pending() []*Request {
	l.mu.Lock()
	defer l.mu.Unlock()
	return l.pendingLocked()
}

func (l *Ledger) pendingLocked() []*Request {
	var out []*Request
	for _, id := range l.order {
		if req := l.requests[id]; !req.Decided() {
			out = append(out, copyRequest(req))
		}
	}
	sort.SliceStable(out, func(i, j int) bool {
		if !out[i].RequestedAt.Equal(out[j].RequestedAt) {
			return out[i].RequestedAt.Before(out[j].RequestedAt)
		}
		return out[i].Seq < out[j].Seq
	})
	return out
}

// All returns copies of every request in filing order.
func (l *Ledger) All() []*Request {
	l.mu.Lock()
	defer l.mu.Unlock()

	out := make([]*Request, 0, len(l.order))
	for _, id := range l.order {
		out = append(out, copyRequest(l.requests[id]))
	}
	return out
}

// Len returns the number of requests in the ledger.
func (l *Ledger) Len() int {
	l.mu.Lock()
	defer l.mu.Unlock()
	return len(l.requests)
}

// ResolveRef maps a human-entered reference to a request. An empty ref
// selects the oldest pending request. Otherwise matching runs in
// tiers over request ids only: exact id, then id prefix, then id
// substring; the first tier with hits decides. One hit resolves,
// several is an AmbiguousError, none at any tier is a NotFoundError.
func (l *Ledger) ResolveRef(ref string) (*Request, error) {
	needle := strings.ToLower(strings.TrimSpace(ref))

	l.mu.Lock()
	defer l.mu.Unlock()

	if needle == "" {
		pending := l.pendingLocked()
		if len(pending) == 0 {
			return nil, &NotFoundError{}
		}
		return pending[0], nil
	}

	if req, ok := l.requests[needle]; ok {
		return copyRequest(req), nil
	}

	tiers := []func(*Request) bool{
		func(r *Request) bool { return strings.HasPrefix(strings.ToLower(r.ID), needle) },
		func(r *Request) bool { return strings.Contains(strings.ToLower(r.ID), needle) },
	}
	for _, match := range tiers {
		var hits []*Request
		for _, id := range l.order {
			if req := l.requests[id]; match(req) {
				hits = append(hits, req)
			}
		}
		switch len(hits) {
		case 0:
			continue
		case 1:
			return copyRequest(hits[0]), nil
		default:
			shorts := make([]string, len(hits))
			for i, h := range hits {
				shorts[i] = h.ShortID()
			}
			return nil, &AmbiguousError{Ref: ref, Matches: shorts}
		}
	}

	return nil, &NotFoundError{Ref: ref}
}

// Restore replaces the ledger contents, used when loading a snapshot.
// The filing sequence resumes above the highest restored Seq.
func (l *Ledger) Restore(reqs []*Request) {
	l.mu.Lock()
	defer l.mu.Unlock()

	l.requests = make(map[string]*Request, len(reqs))
	l.order = make([]string, 0, len(reqs))
	l.seq = 0

	sorted := make([]*Request, len(reqs))
	copy(sorted, reqs)
	sort.SliceStable(sorted, func(i, j int) bool { return sorted[i].Seq < sorted[j].Seq })

	for _, r := range sorted {
		cp := copyRequest(r)
		l.requests[cp.ID] = cp
		l.order = append(l.order, cp.ID)
		if cp.Seq > l.seq {
			l.seq = cp.Seq
		}
	}
}

func copyRequest(r *Request) *Request {
	cp := *r
	cp.Details = cloneDetails(r.Details)
	if r.DecidedAt != nil {
		decidedAt := *r.DecidedAt
		cp.DecidedAt = &decidedAt
	}
	return &cp
}

func cloneDetails(details map[string]any) map[string]any {
	if details == nil {
		return nil
	}
	out := make(map[string]any, len(details))
	for k, v := range details {
		out[k] = v
	}
	return out
}
