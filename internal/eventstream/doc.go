// Package eventstream is the Redis transport fabric for an aerie
// instance.
//
// # Overview
//
// Everything the daemon says or hears crosses Redis Pub/Sub, namespaced
// by instance name so multiple aerie instances can share one server:
//
//   - aerie:{instance}:inbox carries free text, reports, and escalations
//     sent to the overseer (operators via `aerie say`, crews via their SDKs)
//   - aerie:{instance}:events carries engine event envelopes plus overseer
//     replies, consumed by `aerie watch` and monitoring tools
//   - aerie:{instance}:directives:{target_id} announces directives to
//     one crew
//
// Issued directives are also persisted as hashes at
// aerie:{instance}:directive:{id} so late subscribers can fetch the
// full record.
//
// # Delivery Semantics
//
// Pub/Sub delivery is at-most-once: subscribers only see messages
// published while they are connected, and slow subscribers may drop
// messages. Durable state (the approval ledger and message journal)
// lives in snapshots, not in the stream.
//
// # Usage Example
//
//	stream, err := eventstream.New(&redis.Options{Addr: "localhost:6379"}, "prod")
//	if err != nil {
//		return err
//	}
//	defer stream.Close()
//
//	sub, err := stream.SubscribeInbox(ctx)
//	if err != nil {
//		return err
//	}
//	defer sub.Close()
//
//	for msg := range sub.Events() {
//		fmt.Printf("%s: %s\n", msg.SenderName, msg.Text)
//	}
package eventstream
