package directive

import (
	"context"
	"errors"
	"fmt"
	"time"
	"unicode/utf8"

	"github.com/dyluth/aerie/pkg/events"
	"github.com/dyluth/aerie/pkg/roster"
	"github.com/google/uuid"
)

// DefaultTimeout bounds the delegate call when no explicit timeout is
// configured.
const DefaultTimeout = 30 * time.Second

// confirmationEchoRunes caps how much of the directive body a
// confirmation repeats back.
const confirmationEchoRunes = 50

// NoDispatchPathError reports that neither delivery path was available:
// no manager is configured and the target is absent from the roster or
// does not accept directives.
type NoDispatchPathError struct {
	TargetID string
}

func (e *NoDispatchPathError) Error() string {
	return fmt.Sprintf("no dispatch path to target %q", e.TargetID)
}

// DelegateError wraps a failure, timeout, or panic surfaced by the
// external delegate during dispatch.
type DelegateError struct {
	Stage string // "manager" or "direct"
	Err   error
}

func (e *DelegateError) Error() string {
	return fmt.Sprintf("dispatch via %s failed: %v", e.Stage, e.Err)
}

func (e *DelegateError) Unwrap() error { return e.Err }

// IsNoDispatchPath reports whether err is a NoDispatchPathError.
func IsNoDispatchPath(err error) bool {
	var np *NoDispatchPathError
	return errors.As(err, &np)
}

// IsDelegateFailure reports whether err is a DelegateError.
func IsDelegateFailure(err error) bool {
	var de *DelegateError
	return errors.As(err, &de)
}

// Lookup resolves a member id to the registered entity. *roster.Registry
// satisfies it.
type Lookup interface {
	ByID(id string) (roster.Member, bool)
}

// DispatcherOption configures a Dispatcher.
type DispatcherOption func(*Dispatcher)

// WithManager installs the external directive manager, which then takes
// precedence over direct delivery.
func WithManager(m Manager) DispatcherOption {
	return func(d *Dispatcher) { d.manager = m }
}

// WithSink replaces the event sink.
func WithSink(s events.Sink) DispatcherOption {
	return func(d *Dispatcher) { d.sink = s }
}

// WithTimeout replaces the delegate deadline. Zero disables it.
func WithTimeout(timeout time.Duration) DispatcherOption {
	return func(d *Dispatcher) { d.timeout = timeout }
}

// WithClock replaces the issue timestamp source.
func WithClock(now func() time.Time) DispatcherOption {
	return func(d *Dispatcher) { d.now = now }
}

// WithIDGenerator replaces the directive id source for direct delivery.
func WithIDGenerator(gen func() string) DispatcherOption {
	return func(d *Dispatcher) { d.newID = gen }
}

// Dispatcher routes directives to targets and emits a DirectiveGiven
// event for every successful delivery.
type Dispatcher struct {
	overseerID string
	lookup     Lookup
	manager    Manager
	sink       events.Sink
	timeout    time.Duration
	now        func() time.Time
	newID      func() string
}

// NewDispatcher returns a dispatcher issuing directives as overseerID,
// resolving direct targets through lookup.
func NewDispatcher(overseerID string, lookup Lookup, opts ...DispatcherOption) *Dispatcher {
	d := &Dispatcher{
		overseerID: overseerID,
		lookup:     lookup,
		sink:       events.Discard,
		timeout:    DefaultTimeout,
		now:        time.Now,
		newID:      func() string { return uuid.New().String() },
	}
	for _, opt := range opts {
		opt(d)
	}
	return d
}

// Dispatch delivers one directive to the target and returns a
// confirmation string. The manager path is preferred when configured;
// otherwise the target must be a Dispatchable roster member. Failures
// are always typed: NoDispatchPathError when no path exists,
// DelegateError when the chosen path fails, times out, or panics.
func (d *Dispatcher) Dispatch(ctx context.Context, targetID, targetName, title, body string, priority Priority, dctx map[string]any) (string, error) {
	if err := priority.Validate(); err != nil {
		return "", err
	}

	var (
		dir *Directive
		err error
	)
	if d.manager != nil {
		dir, err = d.callDelegate(ctx, "manager", func(ctx context.Context) (*Directive, error) {
			return d.manager.Issue(ctx, d.overseerID, targetID, title, body, priority, dctx)
		})
	} else {
		member, ok := d.lookup.ByID(targetID)
		if !ok {
			return "", &NoDispatchPathError{TargetID: targetID}
		}
		recipient, ok := member.(Dispatchable)
		if !ok {
			return "", &NoDispatchPathError{TargetID: targetID}
		}

		local := &Directive{
			ID:          d.newID(),
			Title:       title,
			Body:        body,
			Priority:    priority,
			RequesterID: d.overseerID,
			TargetID:    targetID,
			Context:     dctx,
			IssuedAt:    d.now(),
		}
		dir, err = d.callDelegate(ctx, "direct", func(ctx context.Context) (*Directive, error) {
			return local, recipient.ReceiveDirective(ctx, local)
		})
	}
	if err != nil {
		return "", err
	}

	d.sink.Publish(ctx, events.DirectiveGiven{
		DirectiveID: dir.ID,
		TargetID:    targetID,
		TargetName:  targetName,
		Title:       dir.Title,
		Priority:    string(dir.Priority),
		At:          d.now(),
	})

	return fmt.Sprintf("Directive %s sent to %s: %s", dir.ShortID(), targetName, truncate(body, confirmationEchoRunes)), nil
}

// callDelegate runs fn on its own goroutine under the dispatch deadline,
// so a stuck delegate cannot hang the engine. A panic inside the
// delegate is recovered and returned as a DelegateError.
func (d *Dispatcher) callDelegate(ctx context.Context, stage string, fn func(context.Context) (*Directive, error)) (*Directive, error) {
	if d.timeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, d.timeout)
		defer cancel()
	}

	type result struct {
		dir *Directive
		err error
	}
	done := make(chan result, 1)
	go func() {
		defer func() {
			if r := recover(); r != nil {
				done <- result{err: fmt.Errorf("delegate panic: %v", r)}
			}
		}()
		dir, err := fn(ctx)
		done <- result{dir: dir, err: err}
	}()

	select {
	case res := <-done:
		if res.err != nil {
			return nil, &DelegateError{Stage: stage, Err: res.err}
		}
		if res.dir == nil {
			return nil, &DelegateError{Stage: stage, Err: fmt.Errorf("delegate returned no directive")}
		}
		return res.dir, nil
	case <-ctx.Done():
		return nil, &DelegateError{Stage: stage, Err: ctx.Err()}
	}
}

// truncate shortens s to at most max runes, appending an ellipsis when
// anything was cut. Safe on multi-byte input.
func truncate(s string, max int) string {
	if utf8.RuneCountInString(s) <= max {
		return s
	}
	runes := []rune(s)
	return string(runes[:max]) + "..."
}
