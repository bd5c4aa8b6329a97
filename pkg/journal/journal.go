// Package journal keeps the overseer's append-only record of message
// traffic. Messages are never edited or removed once appended; the only
// mutation the log permits is flipping a message's read flag through
// MarkRead. Insertion order is preserved exactly and every message
// carries a sequence number so ordering survives wall-clock collisions.
package journal

import (
	"fmt"
	"sync"
	"time"

	"github.com/google/uuid"
)

// Direction orients a message relative to the overseer.
type Direction string

const (
	// DirectionInbound marks traffic from workers to the overseer.
	DirectionInbound Direction = "inbound"
	// DirectionOutbound marks traffic from the overseer to workers.
	DirectionOutbound Direction = "outbound"
)

// Kind categorises a message.
type Kind string

const (
	KindDirective    Kind = "directive"
	KindReport       Kind = "report"
	KindQuestion     Kind = "question"
	KindAnswer       Kind = "answer"
	KindNotification Kind = "notification"
)

// Message is one entry in the log.
type Message struct {
	ID        string         `json:"id"`
	Direction Direction      `json:"direction"`
	Kind      Kind           `json:"kind"`
	Content   string         `json:"content"`
	RelatedID string         `json:"related_id,omitempty"`
	Context   map[string]any `json:"context,omitempty"`
	Timestamp time.Time      `json:"timestamp"`
	Read      bool           `json:"read"`

	// Seq is the insertion sequence within the owning log. It breaks
	// Timestamp ties and survives snapshot round-trips.
	Seq uint64 `json:"seq"`
}

// Validate checks that all required fields are present and well-formed.
func (m *Message) Validate() error {
	if m.ID == "" {
		return fmt.Errorf("message ID is empty")
	}
	switch m.Direction {
	case DirectionInbound, DirectionOutbound:
	default:
		return fmt.Errorf("invalid message direction: %q", m.Direction)
	}
	switch m.Kind {
	case KindDirective, KindReport, KindQuestion, KindAnswer, KindNotification:
	default:
		return fmt.Errorf("invalid message kind: %q", m.Kind)
	}
	if m.Timestamp.IsZero() {
		return fmt.Errorf("message timestamp is zero")
	}
	return nil
}

// Observer is invoked synchronously after each append with a copy of the
// new message.
type Observer func(*Message)

// Option configures a Log.
type Option func(*Log)

// WithClock replaces the timestamp source. Tests use this to control
// ordering.
func WithClock(now func() time.Time) Option {
	return func(l *Log) { l.now = now }
}

// WithIDGenerator replaces the message id source.
func WithIDGenerator(gen func() string) Option {
	return func(l *Log) { l.newID = gen }
}

// WithObserver registers the append observer.
func WithObserver(obs Observer) Option {
	return func(l *Log) { l.observer = obs }
}

// Log is the append-only message record. All methods are safe for
// concurrent use; mutations serialize on one lock.
type Log struct {
	mu       sync.Mutex
	messages []*Message
	seq      uint64

	now      func() time.Time
	newID    func() string
	observer Observer
}

// NewLog returns an empty log.
func NewLog(opts ...Option) *Log {
	l := &Log{
		now:   time.Now,
		newID: func() string { return uuid.New().String() },
	}
	for _, opt := range opts {
		opt(l)
	}
	return l
}

// Append records a new message and returns a copy of it. Append always
// succeeds. The observer, when set, runs after the log lock is released
// so it may call back into the log.
func (l *Log) Append(direction Direction, kind Kind, content, relatedID string, context map[string]any) *Message {
	l.mu.Lock()
	l.seq++
	msg := &Message{
		ID:        l.newID(),
		Direction: direction,
		Kind:      kind,
		Content:   content,
		RelatedID: relatedID,
		Context:   cloneContext(context),
		Timestamp: l.now(),
		Seq:       l.seq,
	}
	l.messages = append(l.messages, msg)
	out := copyMessage(msg)
	l.mu.Unlock()

	if l.observer != nil {
		l.observer(out)
	}
	return out
}

// MarkRead flips the read flag on the message with the given id. It
// reports whether the message exists.
func (l *Log) MarkRead(id string) bool {
	l.mu.Lock()
	defer l.mu.Unlock()

	for _, m := range l.messages {
		if m.ID == id {
			m.Read = true
			return true
		}
	}
	return false
}

// Messages returns copies of all messages in insertion order.
func (l *Log) Messages() []*Message {
	l.mu.Lock()
	defer l.mu.Unlock()

	out := make([]*Message, len(l.messages))
	for i, m := range l.messages {
		out[i] = copyMessage(m)
	}
	return out
}

// Unread returns copies of the inbound messages not yet marked read, in
// insertion order.
func (l *Log) Unread() []*Message {
	l.mu.Lock()
	defer l.mu.Unlock()

	var out []*Message
	for _, m := range l.messages {
		if m.Direction == DirectionInbound && !m.Read {
			out = append(out, copyMessage(m))
		}
	}
	return out
}

// Len returns the number of messages in the log.
func (l *Log) Len() int {
	l.mu.Lock()
	defer l.mu.Unlock()
	return len(l.messages)
}

// Restore replaces the log contents, used when loading a snapshot. The
// sequence counter resumes above the highest restored Seq.
func (l *Log) Restore(msgs []*Message) {
	l.mu.Lock()
	defer l.mu.Unlock()

	l.messages = make([]*Message, 0, len(msgs))
	l.seq = 0
	for _, m := range msgs {
		cp := copyMessage(m)
		l.messages = append(l.messages, cp)
		if cp.Seq > l.seq {
			l.seq = cp.Seq
		}
	}
}

func copyMessage(m *Message) *Message {
	cp := *m
	cp.Context = cloneContext(m.Context)
	return &cp
}

func cloneContext(ctx map[string]any) map[string]any {
	if ctx == nil {
		return nil
	}
	out := make(map[string]any, len(ctx))
	for k, v := range ctx {
		out[k] = v
	}
	return out
}
