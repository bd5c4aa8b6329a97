package eventstream

import "fmt"

// Redis key and channel helpers
//
// All keys and channels are namespaced by instance name so multiple
// aerie instances can safely coexist on a single Redis server.
//
// Key pattern: aerie:{instance_name}:{entity}:{id}
// Channel pattern: aerie:{instance_name}:{purpose}

// EventsChannel returns the Pub/Sub channel carrying engine event
// envelopes and overseer replies.
// Pattern: aerie:{instance_name}:events
func EventsChannel(instanceName string) string {
	return fmt.Sprintf("aerie:%s:events", instanceName)
}

// InboxChannel returns the Pub/Sub channel carrying messages addressed
// to the overseer.
// Pattern: aerie:{instance_name}:inbox
func InboxChannel(instanceName string) string {
	return fmt.Sprintf("aerie:%s:inbox", instanceName)
}

// DirectivesChannel returns the per-target Pub/Sub channel on which new
// directives are announced.
// Pattern: aerie:{instance_name}:directives:{target_id}
func DirectivesChannel(instanceName, targetID string) string {
	return fmt.Sprintf("aerie:%s:directives:%s", instanceName, targetID)
}

// DirectiveKey returns the Redis key holding a persisted directive.
// Pattern: aerie:{instance_name}:directive:{directive_id}
func DirectiveKey(instanceName, directiveID string) string {
	return fmt.Sprintf("aerie:%s:directive:%s", instanceName, directiveID)
}

// RequestKey returns the Redis key holding a snapshotted approval request.
// Pattern: aerie:{instance_name}:request:{request_id}
func RequestKey(instanceName, requestID string) string {
	return fmt.Sprintf("aerie:%s:request:%s", instanceName, requestID)
}

// MessageKey returns the Redis key holding a snapshotted journal message.
// Pattern: aerie:{instance_name}:message:{message_id}
func MessageKey(instanceName, messageID string) string {
	return fmt.Sprintf("aerie:%s:message:%s", instanceName, messageID)
}

// StateKey returns the Redis key holding snapshot metadata (the index
// of snapshotted requests and messages plus the capture timestamp).
// Pattern: aerie:{instance_name}:state
func StateKey(instanceName string) string {
	return fmt.Sprintf("aerie:%s:state", instanceName)
}
