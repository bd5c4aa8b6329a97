package eventstream

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestSchemaKeys(t *testing.T) {
	testCases := []struct {
		name string
		got  string
		want string
	}{
		{
			name: "events channel",
			got:  EventsChannel("prod"),
			want: "aerie:prod:events",
		},
		{
			name: "inbox channel",
			got:  InboxChannel("prod"),
			want: "aerie:prod:inbox",
		},
		{
			name: "directives channel is per target",
			got:  DirectivesChannel("prod", "crew-trading"),
			want: "aerie:prod:directives:crew-trading",
		},
		{
			name: "directive key",
			got:  DirectiveKey("prod", "d-123"),
			want: "aerie:prod:directive:d-123",
		},
		{
			name: "request key",
			got:  RequestKey("prod", "r-123"),
			want: "aerie:prod:request:r-123",
		},
		{
			name: "message key",
			got:  MessageKey("prod", "m-123"),
			want: "aerie:prod:message:m-123",
		},
		{
			name: "state key",
			got:  StateKey("prod"),
			want: "aerie:prod:state",
		},
	}

	for _, tc := range testCases {
		t.Run(tc.name, func(t *testing.T) {
			assert.Equal(t, tc.want, tc.got)
		})
	}
}

func TestSchemaKeys_InstanceScoping(t *testing.T) {
	// Two instances never share a key or channel.
	assert.NotEqual(t, EventsChannel("a"), EventsChannel("b"))
	assert.NotEqual(t, DirectiveKey("a", "d-1"), DirectiveKey("b", "d-1"))
}
