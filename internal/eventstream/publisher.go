package eventstream

import (
	"context"

	"go.uber.org/zap"

	"github.com/dyluth/aerie/pkg/events"
)

// Publisher forwards engine events onto the instance's events channel.
// It implements events.Sink. Publish failures are logged and swallowed:
// event emission is fire-and-forget, and a Redis outage must not stall
// directive handling or approval decisions.
type Publisher struct {
	stream *Stream
	log    *zap.Logger
}

// NewPublisher creates a publisher writing through the given stream.
// A nil logger is replaced with a no-op logger.
func NewPublisher(stream *Stream, log *zap.Logger) *Publisher {
	if log == nil {
		log = zap.NewNop()
	}
	return &Publisher{stream: stream, log: log}
}

// Publish wraps the event in an envelope and publishes it.
func (p *Publisher) Publish(ctx context.Context, e events.Event) {
	if err := p.stream.publishEnvelope(ctx, string(e.EventType()), e); err != nil {
		p.log.Warn("dropping engine event",
			zap.String("event_type", string(e.EventType())),
			zap.Error(err))
	}
}
