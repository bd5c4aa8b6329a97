package eventstream

import (
	"encoding/json"
	"fmt"
	"time"
)

// TypeReply is the envelope type for overseer responses to inbox
// messages. Engine events use their events.Type string directly.
const TypeReply = "overseer.reply"

// Envelope wraps every message on the events channel with its type and
// publication time, so subscribers can route without decoding payloads
// they do not care about.
type Envelope struct {
	Type    string          `json:"type"`
	At      time.Time       `json:"at"`
	Payload json.RawMessage `json:"payload"`
}

// Reply is the payload of a TypeReply envelope.
type Reply struct {
	Text string `json:"text"`
}

// InboxKind classifies a message sent to the overseer's inbox.
type InboxKind string

const (
	// InboxSay is free text from an operator, routed through intent
	// classification.
	InboxSay InboxKind = "say"

	// InboxReport is a progress report from a crew.
	InboxReport InboxKind = "report"

	// InboxEscalation is a crew raising a problem that needs a human
	// decision.
	InboxEscalation InboxKind = "escalation"
)

// Validate checks that the kind is one of the known values.
func (k InboxKind) Validate() error {
	switch k {
	case InboxSay, InboxReport, InboxEscalation:
		return nil
	default:
		return fmt.Errorf("invalid inbox kind: %q", k)
	}
}

// InboxMessage is one message published to the instance's inbox channel.
type InboxMessage struct {
	Kind       InboxKind         `json:"kind"`
	SenderID   string            `json:"sender_id,omitempty"`
	SenderName string            `json:"sender_name,omitempty"`
	Text       string            `json:"text"`
	Context    map[string]string `json:"context,omitempty"`
	SentAt     time.Time         `json:"sent_at"`
}

// Validate checks that all required fields are present. Reports and
// escalations must identify their sender; say messages come from the
// operator and need no identity.
func (m *InboxMessage) Validate() error {
	if err := m.Kind.Validate(); err != nil {
		return err
	}
	if m.Text == "" {
		return fmt.Errorf("inbox message text cannot be empty")
	}
	if m.Kind != InboxSay && m.SenderID == "" {
		return fmt.Errorf("%s messages require a sender_id", m.Kind)
	}
	return nil
}
