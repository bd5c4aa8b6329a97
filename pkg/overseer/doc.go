// Package overseer implements the arbiter that sits between a human
// supervisor and a roster of subordinate worker crews.
//
// # Overview
//
// The overseer receives free-text instructions from its human, classifies
// them into structured intents, and routes each one: directives are
// resolved against the crew roster and dispatched, decisions settle
// pending approval requests, queries produce a status summary, and
// anything else returns a usage hint. In the other direction, crews file
// reports and escalations with the overseer; reports are journalled and
// announced, while escalations additionally open an approval request so
// the human always adjudicates them explicitly.
//
// # Core Concepts
//
// The overseer owns three stores. The roster (pkg/roster) indexes crews
// by name with fuzzy resolution. The approval ledger (pkg/approval)
// tracks requests through their single pending-to-settled transition.
// The journal (pkg/journal) is the append-only record of every piece of
// message traffic. Each store serializes its own mutations; no operation
// spans two stores under one lock.
//
// Every mutating operation publishes one domain event (pkg/events) to
// the configured sink. The sink is fire-and-forget, so observers can
// never stall or corrupt the engine.
//
// All façade operations are total: they return text or booleans and
// convert collaborator failures into readable results instead of
// propagating them. The only call with variable latency is directive
// dispatch, which runs the external delegate under a deadline.
//
// # Usage Example
//
//	ov := overseer.New("board",
//		overseer.WithSink(bus),
//		overseer.WithEscalationCallback(func(id, name, reason string) {
//			log.Printf("escalation from %s: %s", name, reason)
//		}),
//	)
//	ov.Register("trading", tradingCrew)
//
//	reply := ov.HandleMessage(ctx, "@trading: stop all positions")
//	fmt.Println(reply)
//
//	ov.ReceiveEscalation(ctx, "crew-t", "trading", "low liquidity", nil)
//	fmt.Println(ov.HandleMessage(ctx, "approve"))
package overseer
