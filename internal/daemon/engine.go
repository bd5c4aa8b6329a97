// Package daemon hosts one overseer engine against Redis: it consumes
// the instance inbox, publishes engine events and replies, and persists
// periodic snapshots of the ledger and journal.
package daemon

import (
	"context"
	"fmt"
	"time"

	"go.uber.org/zap"
	"golang.org/x/sync/errgroup"

	"github.com/dyluth/aerie/internal/config"
	"github.com/dyluth/aerie/internal/eventstream"
	"github.com/dyluth/aerie/internal/snapshot"
	"github.com/dyluth/aerie/pkg/overseer"
	"github.com/dyluth/aerie/pkg/roster"
)

// finalSnapshotTimeout bounds the shutdown snapshot, which runs on its
// own context because the run context is already cancelled.
const finalSnapshotTimeout = 5 * time.Second

// remoteCrew is a roster entry for a worker process reached over Redis.
// It is deliberately not Dispatchable: delivery rides the directive
// manager, which publishes to the crew's directive channel.
type remoteCrew struct {
	id   string
	name string
}

func (c *remoteCrew) MemberID() string { return c.id }

var _ roster.Member = (*remoteCrew)(nil)

// Engine wires an overseer to its Redis transport and snapshot store.
type Engine struct {
	cfg    *config.Config
	stream *eventstream.Stream
	store  *snapshot.Store
	ov     *overseer.Overseer
	log    *zap.Logger
}

// New builds an engine for the given configuration. The overseer
// publishes its events through the stream and delivers directives via
// the stream's directive manager. Crews declared in the configuration
// are registered as remote members.
func New(cfg *config.Config, stream *eventstream.Stream, store *snapshot.Store, log *zap.Logger) *Engine {
	if log == nil {
		log = zap.NewNop()
	}

	opts := []overseer.Option{
		overseer.WithManager(eventstream.NewDirectiveManager(stream)),
		overseer.WithSink(eventstream.NewPublisher(stream, log.Named("events"))),
		overseer.WithDispatchTimeout(cfg.DispatchTimeout.Std()),
	}
	if cfg.Overseer.ID != "" {
		opts = append(opts, overseer.WithID(cfg.Overseer.ID))
	}

	ov := overseer.New(cfg.Overseer.Name, opts...)

	for _, crew := range cfg.Crews {
		ov.Register(crew.Name, &remoteCrew{id: crew.ID, name: crew.Name})
		log.Info("crew registered",
			zap.String("name", crew.Name),
			zap.String("id", crew.ID))
	}

	return &Engine{
		cfg:    cfg,
		stream: stream,
		store:  store,
		ov:     ov,
		log:    log,
	}
}

// Run restores the last snapshot, then serves the inbox and the
// snapshot ticker until the context is cancelled. A clean cancellation
// returns nil after a final snapshot.
func (e *Engine) Run(ctx context.Context) error {
	if err := e.restore(ctx); err != nil {
		return err
	}

	sub, err := e.stream.SubscribeInbox(ctx)
	if err != nil {
		return fmt.Errorf("failed to subscribe to inbox: %w", err)
	}
	defer sub.Close()

	e.log.Info("overseer running",
		zap.String("instance", e.stream.Instance()),
		zap.String("overseer", e.ov.Name()),
		zap.Strings("crews", e.ov.Crews()))

	eg, egCtx := errgroup.WithContext(ctx)
	eg.Go(func() error { return e.consumeInbox(egCtx, sub) })
	eg.Go(func() error { return e.snapshotLoop(egCtx) })

	return eg.Wait()
}

// restore loads the last snapshot, if any, into the overseer's stores.
func (e *Engine) restore(ctx context.Context) error {
	state, err := e.store.Load(ctx)
	if err != nil {
		if snapshot.IsNotFound(err) {
			e.log.Info("no snapshot found, starting fresh")
			return nil
		}
		return fmt.Errorf("failed to load snapshot: %w", err)
	}

	e.ov.Restore(state)
	e.log.Info("state restored from snapshot",
		zap.Time("taken_at", state.TakenAt),
		zap.Int("requests", len(state.Requests)),
		zap.Int("messages", len(state.Messages)))
	return nil
}

// consumeInbox processes inbox messages until the context is cancelled.
// Individual message failures never stop the loop.
func (e *Engine) consumeInbox(ctx context.Context, sub *eventstream.Subscription[eventstream.InboxMessage]) error {
	for {
		select {
		case <-ctx.Done():
			return nil

		case err, ok := <-sub.Errors():
			if !ok {
				return nil
			}
			e.log.Warn("dropping malformed inbox message", zap.Error(err))

		case msg, ok := <-sub.Events():
			if !ok {
				return nil
			}
			e.handleInbox(ctx, msg)
		}
	}
}

// handleInbox routes one inbox message into the overseer.
func (e *Engine) handleInbox(ctx context.Context, msg *eventstream.InboxMessage) {
	switch msg.Kind {
	case eventstream.InboxSay:
		reply := e.ov.HandleMessage(ctx, msg.Text)
		if err := e.stream.PublishReply(ctx, reply); err != nil {
			e.log.Warn("failed to publish reply", zap.Error(err))
		}
		e.log.Info("message handled", zap.String("kind", string(msg.Kind)))

	case eventstream.InboxReport:
		e.ov.ReceiveReport(ctx, msg.SenderID, senderName(msg), msg.Text, anyContext(msg.Context))
		e.log.Info("report received",
			zap.String("sender_id", msg.SenderID),
			zap.String("sender_name", senderName(msg)))

	case eventstream.InboxEscalation:
		req := e.ov.ReceiveEscalation(ctx, msg.SenderID, senderName(msg), msg.Text, anyContext(msg.Context))
		e.log.Info("escalation filed",
			zap.String("sender_id", msg.SenderID),
			zap.String("request_id", req.ID))

	default:
		e.log.Warn("dropping inbox message with unknown kind", zap.String("kind", string(msg.Kind)))
	}
}

// snapshotLoop persists state on every tick and once more on shutdown,
// so nothing decided in the final interval is lost.
func (e *Engine) snapshotLoop(ctx context.Context) error {
	ticker := time.NewTicker(e.cfg.SnapshotInterval.Std())
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			saveCtx, cancel := context.WithTimeout(context.Background(), finalSnapshotTimeout)
			defer cancel()
			if err := e.saveSnapshot(saveCtx); err != nil {
				e.log.Warn("final snapshot failed", zap.Error(err))
			}
			return nil

		case <-ticker.C:
			if err := e.saveSnapshot(ctx); err != nil {
				e.log.Warn("snapshot failed", zap.Error(err))
			}
		}
	}
}

func (e *Engine) saveSnapshot(ctx context.Context) error {
	state := e.ov.Snapshot()
	if err := e.store.Save(ctx, state); err != nil {
		return err
	}
	e.log.Debug("snapshot saved",
		zap.Int("requests", len(state.Requests)),
		zap.Int("messages", len(state.Messages)))
	return nil
}

// senderName falls back to the sender id when a display name is absent.
func senderName(msg *eventstream.InboxMessage) string {
	if msg.SenderName != "" {
		return msg.SenderName
	}
	return msg.SenderID
}

// anyContext widens the wire-level string map to the engine's context
// map type.
func anyContext(c map[string]string) map[string]any {
	if len(c) == 0 {
		return nil
	}
	out := make(map[string]any, len(c))
	for k, v := range c {
		out[k] = v
	}
	return out
}
