package transcript

import (
	"encoding/json"
	"fmt"
	"io"
	"strings"
	"time"

	"github.com/dyluth/aerie/pkg/approval"
	"github.com/dyluth/aerie/pkg/journal"
)

// FormatMessagesTable writes messages as a formatted table to the
// provided writer. Returns the number of messages formatted.
func FormatMessagesTable(w io.Writer, messages []*journal.Message, instanceName string) int {
	if len(messages) == 0 {
		fmt.Fprintf(w, "No messages found for instance '%s'\n", instanceName)
		return 0
	}

	fmt.Fprintf(w, "Messages for instance '%s':\n\n", instanceName)

	fmt.Fprintf(w, "%-10s %-9s %-13s %-8s %-7s %s\n",
		"ID", "DIR", "KIND", "AGE", "READ", "CONTENT")
	fmt.Fprintf(w, "%-10s %-9s %-13s %-8s %-7s %s\n",
		"----------", "---------", "-------------", "--------", "-------", "----------------------------------------")

	for _, m := range messages {
		fmt.Fprintf(w, "%-10s %-9s %-13s %-8s %-7s %s\n",
			formatID(m.ID),
			string(m.Direction),
			string(m.Kind),
			formatAge(m.Timestamp),
			formatRead(m.Read),
			formatContent(m.Content),
		)
	}

	countMsg := "message"
	if len(messages) != 1 {
		countMsg = "messages"
	}
	fmt.Fprintf(w, "\n%d %s found\n", len(messages), countMsg)

	return len(messages)
}

// FormatMessagesJSONL writes messages as line-delimited JSON to the
// provided writer. Each message is one JSON object per line, ideal for
// processing with tools like jq.
func FormatMessagesJSONL(w io.Writer, messages []*journal.Message) error {
	for _, msg := range messages {
		data, err := json.Marshal(msg)
		if err != nil {
			return fmt.Errorf("failed to marshal message to JSON: %w", err)
		}

		if _, err := fmt.Fprintf(w, "%s\n", string(data)); err != nil {
			return fmt.Errorf("failed to write JSONL output: %w", err)
		}
	}

	return nil
}

// FormatRequestsTable writes pending approval requests as a formatted
// table to the provided writer. Returns the number formatted.
func FormatRequestsTable(w io.Writer, requests []*approval.Request, instanceName string) int {
	if len(requests) == 0 {
		fmt.Fprintf(w, "No pending approval requests for instance '%s'\n", instanceName)
		return 0
	}

	fmt.Fprintf(w, "Pending approval requests for instance '%s':\n\n", instanceName)

	fmt.Fprintf(w, "%-10s %-12s %-14s %-8s %s\n",
		"ID", "KIND", "FROM", "AGE", "DESCRIPTION")
	fmt.Fprintf(w, "%-10s %-12s %-14s %-8s %s\n",
		"----------", "------------", "--------------", "--------", "----------------------------------------")

	for _, r := range requests {
		fmt.Fprintf(w, "%-10s %-12s %-14s %-8s %s\n",
			formatID(r.ID),
			string(r.Kind),
			formatRequester(r.RequesterName),
			formatAge(r.RequestedAt),
			formatContent(r.Description),
		)
	}

	countMsg := "request"
	if len(requests) != 1 {
		countMsg = "requests"
	}
	fmt.Fprintf(w, "\n%d pending %s\n", len(requests), countMsg)

	return len(requests)
}

// FormatRequestsJSONL writes requests as line-delimited JSON.
func FormatRequestsJSONL(w io.Writer, requests []*approval.Request) error {
	for _, req := range requests {
		data, err := json.Marshal(req)
		if err != nil {
			return fmt.Errorf("failed to marshal request to JSON: %w", err)
		}

		if _, err := fmt.Fprintf(w, "%s\n", string(data)); err != nil {
			return fmt.Errorf("failed to write JSONL output: %w", err)
		}
	}

	return nil
}

// formatID truncates an id to first 8 characters for compact display.
func formatID(id string) string {
	if len(id) > 8 {
		return id[:8]
	}
	return id
}

// formatContent truncates content to its first non-empty line with max
// 40 characters for table display. Empty content returns "-".
func formatContent(content string) string {
	if content == "" {
		return "-"
	}

	lines := strings.Split(content, "\n")
	var firstLine string
	for _, line := range lines {
		trimmed := strings.TrimSpace(line)
		if trimmed != "" {
			firstLine = trimmed
			break
		}
	}

	if firstLine == "" {
		return "-"
	}

	if len(firstLine) > 40 {
		return firstLine[:37] + "..."
	}

	return firstLine
}

// formatRequester formats the requester name for table display.
// Empty values return "-".
func formatRequester(name string) string {
	if name == "" {
		return "-"
	}
	return name
}

// formatRead renders the read flag for table display.
func formatRead(read bool) string {
	if read {
		return "yes"
	}
	return "no"
}

// formatAge formats a timestamp as relative time like "2m ago".
func formatAge(t time.Time) string {
	if t.IsZero() {
		return "-"
	}

	diff := time.Since(t)

	if diff < time.Minute {
		return fmt.Sprintf("%ds ago", int(diff.Seconds()))
	} else if diff < time.Hour {
		return fmt.Sprintf("%dm ago", int(diff.Minutes()))
	} else if diff < 24*time.Hour {
		return fmt.Sprintf("%dh ago", int(diff.Hours()))
	}
	return fmt.Sprintf("%dd ago", int(diff.Hours()/24))
}
