package eventstream

import (
	"context"
	"encoding/json"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/dyluth/aerie/pkg/events"
)

func TestPublisher_ForwardsEngineEvents(t *testing.T) {
	stream, _ := setupTestStream(t)
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	sub, err := stream.SubscribeEvents(ctx)
	require.NoError(t, err)
	defer sub.Close()

	publisher := NewPublisher(stream, nil)
	publisher.Publish(ctx, events.DirectiveGiven{
		DirectiveID: "d-1",
		TargetID:    "crew-trading",
		TargetName:  "trading",
		Title:       "halt new positions",
		Priority:    "high",
	})

	select {
	case env := <-sub.Events():
		assert.Equal(t, string(events.TypeDirectiveGiven), env.Type)

		var payload events.DirectiveGiven
		require.NoError(t, json.Unmarshal(env.Payload, &payload))
		assert.Equal(t, "d-1", payload.DirectiveID)
		assert.Equal(t, "trading", payload.TargetName)
	case <-time.After(1 * time.Second):
		t.Fatal("timeout waiting for forwarded engine event")
	}
}

func TestPublisher_SwallowsPublishFailures(t *testing.T) {
	stream, mr := setupTestStream(t)
	publisher := NewPublisher(stream, nil)

	// Kill the server so the publish fails.
	mr.Close()

	assert.NotPanics(t, func() {
		publisher.Publish(context.Background(), events.ReportReceived{WorkerID: "crew-1"})
	})
}
