// Package intent classifies free-text arbiter input into structured
// intents. Classification is deterministic pattern matching, evaluated in
// a fixed priority order, so routing decisions stay auditable. Classify
// is pure and total: unrecognised input falls back to the general intent
// rather than failing.
package intent

import (
	"regexp"
	"strings"
)

// Kind is the category a piece of text classifies into.
type Kind string

const (
	// KindDirective is an instruction addressed to a named target.
	KindDirective Kind = "directive"
	// KindApproval is a decision on a pending approval request.
	KindApproval Kind = "approval"
	// KindQuery is a request for a status summary.
	KindQuery Kind = "query"
	// KindGeneral is the fallback for unrecognised input.
	KindGeneral Kind = "general"
)

// Decision distinguishes the two approval outcomes.
type Decision string

const (
	DecisionApprove Decision = "approve"
	DecisionReject  Decision = "reject"
)

// Intent is the structured form of one piece of input text. Only the
// fields relevant to Kind are populated.
type Intent struct {
	Kind Kind

	// Target and Body are set for KindDirective. Target is the addressee
	// as written; Body is the instruction with surrounding whitespace
	// removed, embedded newlines preserved.
	Target string
	Body   string

	// Decision and Ref are set for KindApproval. Ref is the optional
	// request reference, empty when the text names no request.
	Decision Decision
	Ref      string
}

var (
	// An instruction addressed with @name, separated from its body by a
	// colon or whitespace. The body may span multiple lines.
	directivePattern = regexp.MustCompile(`(?is)^@(\w+)[:\s]+(.+)$`)

	// Decision prefixes with an optional #ref. Prefix matches: words after
	// the reference are ignored.
	approvePattern = regexp.MustCompile(`(?i)^(?:approved|approve|accept|yes|ok|lgtm)\b\s*(?:#?([\w-]+))?`)
	rejectPattern  = regexp.MustCompile(`(?i)^(?:rejected|reject|denied|deny|no|veto)\b\s*(?:#?([\w-]+))?`)
)

// Keywords that mark a status query when they appear anywhere in the text.
var queryKeywords = []string{"status", "progress", "update", "report", "summary"}

// Classify maps text to an Intent. Rules are tried in priority order:
// directive, approve, reject, query, then the general fallback.
func Classify(text string) Intent {
	trimmed := strings.TrimSpace(text)

	if m := directivePattern.FindStringSubmatch(trimmed); m != nil {
		return Intent{Kind: KindDirective, Target: m[1], Body: strings.TrimSpace(m[2])}
	}
	if m := approvePattern.FindStringSubmatch(trimmed); m != nil {
		return Intent{Kind: KindApproval, Decision: DecisionApprove, Ref: m[1]}
	}
	if m := rejectPattern.FindStringSubmatch(trimmed); m != nil {
		return Intent{Kind: KindApproval, Decision: DecisionReject, Ref: m[1]}
	}
	if isQuery(trimmed) {
		return Intent{Kind: KindQuery}
	}
	return Intent{Kind: KindGeneral}
}

func isQuery(trimmed string) bool {
	if strings.HasSuffix(trimmed, "?") {
		return true
	}
	lowered := strings.ToLower(trimmed)
	for _, kw := range queryKeywords {
		if strings.Contains(lowered, kw) {
			return true
		}
	}
	return false
}
