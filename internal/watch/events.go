package watch

import (
	"encoding/json"
	"fmt"

	"github.com/dyluth/aerie/internal/eventstream"
	"github.com/dyluth/aerie/pkg/events"
)

// FormatEnvelope renders one event envelope as a human-readable line.
// The timestamp prefix is added by the caller so the line stays testable.
func FormatEnvelope(env *eventstream.Envelope) string {
	switch env.Type {
	case string(events.TypeDirectiveGiven):
		var e events.DirectiveGiven
		if err := json.Unmarshal(env.Payload, &e); err != nil {
			break
		}
		return fmt.Sprintf("📣 Directive Given: to=%s priority=%s %q", e.TargetName, e.Priority, e.Title)

	case string(events.TypeRequestFiled):
		var e events.RequestFiled
		if err := json.Unmarshal(env.Payload, &e); err != nil {
			break
		}
		return fmt.Sprintf("📨 Approval Requested: id=%s kind=%s from=%s %q", shortID(e.RequestID), e.Kind, e.RequesterName, e.Description)

	case string(events.TypeRequestDecided):
		var e events.RequestDecided
		if err := json.Unmarshal(env.Payload, &e); err != nil {
			break
		}
		return formatDecision(e)

	case string(events.TypeReportReceived):
		var e events.ReportReceived
		if err := json.Unmarshal(env.Payload, &e); err != nil {
			break
		}
		return fmt.Sprintf("📋 Report Received: from=%s %q", e.WorkerName, e.Summary)

	case string(events.TypeEscalationReceived):
		var e events.EscalationReceived
		if err := json.Unmarshal(env.Payload, &e); err != nil {
			break
		}
		return fmt.Sprintf("🚨 Escalation Received: from=%s request=%s %q", e.WorkerName, shortID(e.RequestID), e.Reason)

	case eventstream.TypeReply:
		var r eventstream.Reply
		if err := json.Unmarshal(env.Payload, &r); err != nil {
			break
		}
		return fmt.Sprintf("💬 Overseer: %s", r.Text)
	}

	// Unknown or undecodable payloads still show up in the stream
	return fmt.Sprintf("❓ Event: type=%s", env.Type)
}

func formatDecision(e events.RequestDecided) string {
	var label string
	switch e.Outcome {
	case "approved":
		label = "✅ Request Approved"
	case "rejected":
		label = "❌ Request Rejected"
	case "amended":
		label = "🔄 Request Amended"
	default:
		label = fmt.Sprintf("❓ Request %s", e.Outcome)
	}

	if e.Note != "" {
		return fmt.Sprintf("%s: id=%s note=%q", label, shortID(e.RequestID), e.Note)
	}
	return fmt.Sprintf("%s: id=%s", label, shortID(e.RequestID))
}

// shortID truncates a UUID to its first group for display.
func shortID(id string) string {
	if len(id) > 8 {
		return id[:8]
	}
	return id
}
