package transcript

import (
	"bytes"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"

	"github.com/dyluth/aerie/pkg/approval"
	"github.com/dyluth/aerie/pkg/journal"
)

func TestFormatMessagesTable_Empty(t *testing.T) {
	var buf bytes.Buffer
	n := FormatMessagesTable(&buf, nil, "prod")
	assert.Equal(t, 0, n)
	assert.Contains(t, buf.String(), "No messages found for instance 'prod'")
}

func TestFormatMessagesTable_SingularCount(t *testing.T) {
	var buf bytes.Buffer
	n := FormatMessagesTable(&buf, []*journal.Message{
		{ID: "msg-1", Direction: journal.DirectionInbound, Kind: journal.KindReport, Content: "done", Timestamp: time.Now()},
	}, "prod")
	assert.Equal(t, 1, n)
	assert.Contains(t, buf.String(), "1 message found")
	assert.NotContains(t, buf.String(), "1 messages found")
}

func TestFormatRequestsTable_Empty(t *testing.T) {
	var buf bytes.Buffer
	n := FormatRequestsTable(&buf, nil, "prod")
	assert.Equal(t, 0, n)
	assert.Contains(t, buf.String(), "No pending approval requests for instance 'prod'")
}

func TestFormatRequestsTable_MissingRequesterName(t *testing.T) {
	var buf bytes.Buffer
	FormatRequestsTable(&buf, []*approval.Request{
		{ID: "req-1", Kind: approval.KindBudget, Description: "more compute", RequestedAt: time.Now()},
	}, "prod")

	var row string
	for _, line := range strings.Split(buf.String(), "\n") {
		if strings.Contains(line, "req-1") {
			row = line
			break
		}
	}
	assert.NotEmpty(t, row)
	assert.Contains(t, row, "budget")
	assert.Contains(t, row, " - ", "missing requester renders as a dash")
}

func TestFormatContent(t *testing.T) {
	testCases := []struct {
		name    string
		content string
		want    string
	}{
		{
			name:    "empty content",
			content: "",
			want:    "-",
		},
		{
			name:    "short content unchanged",
			content: "halt new positions",
			want:    "halt new positions",
		},
		{
			name:    "first non-empty line wins",
			content: "\n\n  second line is first non-empty\nrest",
			want:    "second line is first non-empty",
		},
		{
			name:    "whitespace only",
			content: "  \n\t\n",
			want:    "-",
		},
		{
			name:    "long content truncated",
			content: strings.Repeat("x", 50),
			want:    strings.Repeat("x", 37) + "...",
		},
	}

	for _, tc := range testCases {
		t.Run(tc.name, func(t *testing.T) {
			assert.Equal(t, tc.want, formatContent(tc.content))
		})
	}
}

func TestFormatID(t *testing.T) {
	assert.Equal(t, "short", formatID("short"))
	assert.Equal(t, "12345678", formatID("123456789abcdef"))
}

func TestFormatRead(t *testing.T) {
	assert.Equal(t, "yes", formatRead(true))
	assert.Equal(t, "no", formatRead(false))
}

func TestFormatAge(t *testing.T) {
	now := time.Now()

	testCases := []struct {
		name string
		t    time.Time
		want string
	}{
		{"zero time", time.Time{}, "-"},
		{"seconds", now.Add(-30 * time.Second), "30s ago"},
		{"minutes", now.Add(-5 * time.Minute), "5m ago"},
		{"hours", now.Add(-3 * time.Hour), "3h ago"},
		{"days", now.Add(-49 * time.Hour), "2d ago"},
	}

	for _, tc := range testCases {
		t.Run(tc.name, func(t *testing.T) {
			assert.Equal(t, tc.want, formatAge(tc.t))
		})
	}
}
