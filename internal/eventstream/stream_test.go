package eventstream

import (
	"context"
	"encoding/json"
	"testing"
	"time"

	"github.com/alicebob/miniredis/v2"
	"github.com/redis/go-redis/v9"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/goleak"
)

func TestMain(m *testing.M) {
	goleak.VerifyTestMain(m)
}

// setupTestStream creates a stream connected to a miniredis instance.
func setupTestStream(t *testing.T) (*Stream, *miniredis.Miniredis) {
	t.Helper()

	mr := miniredis.NewMiniRedis()
	err := mr.Start()
	require.NoError(t, err)
	t.Cleanup(mr.Close)

	stream, err := New(&redis.Options{Addr: mr.Addr()}, "test-instance")
	require.NoError(t, err)
	t.Cleanup(func() { stream.Close() })

	return stream, mr
}

func TestNew(t *testing.T) {
	t.Run("creates stream successfully", func(t *testing.T) {
		stream, _ := setupTestStream(t)
		assert.NotNil(t, stream)
		assert.Equal(t, "test-instance", stream.Instance())
	})

	t.Run("rejects empty instance name", func(t *testing.T) {
		_, err := New(&redis.Options{Addr: "localhost:6379"}, "")
		assert.Error(t, err)
		assert.Contains(t, err.Error(), "instance name cannot be empty")
	})
}

func TestPing(t *testing.T) {
	stream, _ := setupTestStream(t)
	ctx := context.Background()

	err := stream.Ping(ctx)
	assert.NoError(t, err)
}

func TestClose(t *testing.T) {
	mr := miniredis.NewMiniRedis()
	err := mr.Start()
	require.NoError(t, err)
	defer mr.Close()

	stream, err := New(&redis.Options{Addr: mr.Addr()}, "test-instance")
	require.NoError(t, err)

	err = stream.Close()
	assert.NoError(t, err)
}

func TestPublishReply(t *testing.T) {
	stream, _ := setupTestStream(t)
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	sub, err := stream.SubscribeEvents(ctx)
	require.NoError(t, err)
	defer sub.Close()

	err = stream.PublishReply(ctx, "Directive abc12345 sent to trading")
	require.NoError(t, err)

	select {
	case env := <-sub.Events():
		assert.Equal(t, TypeReply, env.Type)
		assert.False(t, env.At.IsZero())

		var reply Reply
		require.NoError(t, json.Unmarshal(env.Payload, &reply))
		assert.Equal(t, "Directive abc12345 sent to trading", reply.Text)
	case <-time.After(1 * time.Second):
		t.Fatal("timeout waiting for reply envelope")
	}
}

func TestSubscribeEvents_ContextCancellation(t *testing.T) {
	stream, _ := setupTestStream(t)

	ctx, cancel := context.WithCancel(context.Background())
	sub, err := stream.SubscribeEvents(ctx)
	require.NoError(t, err)
	defer sub.Close()

	cancel()

	select {
	case _, ok := <-sub.Events():
		assert.False(t, ok, "events channel should close on context cancellation")
	case <-time.After(1 * time.Second):
		t.Fatal("timeout waiting for events channel to close")
	}
}

func TestSubscription_CloseIsIdempotent(t *testing.T) {
	stream, _ := setupTestStream(t)
	ctx := context.Background()

	sub, err := stream.SubscribeEvents(ctx)
	require.NoError(t, err)

	assert.NoError(t, sub.Close())
	assert.NoError(t, sub.Close())
}
