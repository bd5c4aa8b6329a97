package overseer

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"unicode/utf8"

	"github.com/dyluth/aerie/pkg/approval"
	"github.com/dyluth/aerie/pkg/directive"
	"github.com/dyluth/aerie/pkg/intent"
	"github.com/dyluth/aerie/pkg/journal"
)

const (
	// titleMaxRunes caps directive titles and report summaries.
	titleMaxRunes = 100
	// echoMaxRunes caps how much of a description a confirmation echoes.
	echoMaxRunes = 50
	// maxSummaryRequests caps the pending requests a status summary lists.
	maxSummaryRequests = 5
)

const usageHint = "I route directives and decisions. Try '@<crew>: <instruction>', " +
	"'approve [#ref]', 'reject [#ref]', or 'status'."

// HandleMessage processes one piece of free-text arbiter input and
// returns the reply. The raw text is journalled before classification so
// the audit trail holds it even when nothing downstream matches. The
// method is total: every failure comes back as readable text.
func (o *Overseer) HandleMessage(ctx context.Context, text string) string {
	o.journal.Append(journal.DirectionOutbound, journal.KindDirective, text, "", nil)

	in := intent.Classify(text)
	switch in.Kind {
	case intent.KindDirective:
		return o.IssueDirective(ctx, in.Target, in.Body, directive.PriorityNormal, nil)
	case intent.KindApproval:
		return o.decideFromText(in.Decision, in.Ref)
	case intent.KindQuery:
		return o.StatusSummary()
	default:
		return usageHint
	}
}

// IssueDirective resolves the target by name and dispatches a directive
// built from body. The directive title is the body truncated to 100
// runes; the body is carried in full. The result is always text, never
// an error.
func (o *Overseer) IssueDirective(ctx context.Context, targetName, body string, priority directive.Priority, dctx map[string]any) string {
	member, canonical, err := o.roster.ResolveEntry(targetName)
	if err != nil {
		return noSuchCrewText(targetName, o.roster.Names())
	}

	title := truncate(body, titleMaxRunes)
	conf, err := o.dispatcher.Dispatch(ctx, member.MemberID(), canonical, title, body, priority, dctx)
	if err != nil {
		if directive.IsNoDispatchPath(err) {
			return fmt.Sprintf("Cannot deliver to %s: no directive manager is configured and the crew does not accept directives directly.", canonical)
		}
		return fmt.Sprintf("Directive to %s failed: %v", canonical, err)
	}
	return conf
}

// decideFromText settles the referenced request according to a parsed
// approval intent.
func (o *Overseer) decideFromText(decision intent.Decision, ref string) string {
	req, err := o.ledger.ResolveRef(ref)
	if err != nil {
		var amb *approval.AmbiguousError
		if errors.As(err, &amb) {
			return fmt.Sprintf("Reference %q matches several requests: %s. Use a longer reference.",
				ref, strings.Join(amb.Matches, ", "))
		}
		if ref == "" {
			return "No pending approval requests."
		}
		return fmt.Sprintf("No approval request matches %q.", ref)
	}

	outcome := approval.OutcomeApprove
	verb := "Approved"
	if decision == intent.DecisionReject {
		outcome = approval.OutcomeReject
		verb = "Rejected"
	}

	if !o.ledger.Decide(req.ID, outcome, "") {
		settled, _ := o.ledger.Get(req.ID)
		return fmt.Sprintf("Request %s was already settled (%s).", req.ShortID(), settled.Status)
	}
	return fmt.Sprintf("%s request %s: %s", verb, req.ShortID(), truncate(req.Description, echoMaxRunes))
}

// StatusSummary composes the current picture: store counts plus the
// oldest pending requests.
func (o *Overseer) StatusSummary() string {
	pending := o.ledger.Pending()
	crews := o.roster.Names()

	// Urgent reports stay counted after being read; unread is the only
	// count that drains.
	unreadReports := 0
	urgentReports := 0
	for _, m := range o.journal.Messages() {
		if m.Direction != journal.DirectionInbound || m.Kind != journal.KindReport {
			continue
		}
		if !m.Read {
			unreadReports++
		}
		if p, ok := m.Context["priority"].(string); ok && p == "urgent" {
			urgentReports++
		}
	}

	var b strings.Builder
	fmt.Fprintf(&b, "%s status\n", o.name)
	fmt.Fprintf(&b, "  Registered crews:  %d", len(crews))
	if len(crews) > 0 {
		fmt.Fprintf(&b, " (%s)", strings.Join(crews, ", "))
	}
	b.WriteString("\n")
	fmt.Fprintf(&b, "  Pending approvals: %d\n", len(pending))
	fmt.Fprintf(&b, "  Unread reports:    %d (%d urgent)\n", unreadReports, urgentReports)
	fmt.Fprintf(&b, "  Messages logged:   %d", o.journal.Len())

	if len(pending) > 0 {
		b.WriteString("\nPending requests:")
		for i, req := range pending {
			if i == maxSummaryRequests {
				fmt.Fprintf(&b, "\n  ... and %d more", len(pending)-maxSummaryRequests)
				break
			}
			fmt.Fprintf(&b, "\n  - %s [%s] %s", req.ShortID(), req.Kind, truncate(req.Description, echoMaxRunes))
		}
	}
	return b.String()
}

func noSuchCrewText(name string, registered []string) string {
	if len(registered) == 0 {
		return fmt.Sprintf("No crew found matching %q. No crews are registered yet.", name)
	}
	return fmt.Sprintf("No crew found matching %q. Registered crews: %s.", name, strings.Join(registered, ", "))
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
