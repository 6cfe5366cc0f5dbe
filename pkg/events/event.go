package events

import "time"

// Event defines the contract for all system events.
type Event interface {
	// EventType returns the unique code for this event (e.g., "CHAT_TURN").
	EventType() string

	// Payload returns the data associated with the event.
	Payload() map[string]interface{}

	// Timestamp returns when the event occurred.
	Timestamp() time.Time
}

const (
	TypeSessionStarted = "SESSION_STARTED"
	TypeChatTurn       = "CHAT_TURN"
	TypeSessionEnded   = "SESSION_ENDED"
)

// OccurredAtKey carries the RFC3339 timestamp inside every payload so
// subscribers can rebuild it.
const OccurredAtKey = "occurred_at"

type BaseEvent struct {
	Type       string
	Data       map[string]interface{}
	OccurredAt time.Time
}

func (e BaseEvent) EventType() string {
	return e.Type
}

func (e BaseEvent) Payload() map[string]interface{} {
	out := make(map[string]interface{}, len(e.Data)+1)
	for k, v := range e.Data {
		out[k] = v
	}
	out[OccurredAtKey] = e.OccurredAt.UTC().Format(time.RFC3339Nano)
	return out
}

func (e BaseEvent) Timestamp() time.Time {
	return e.OccurredAt
}

func NewSessionStarted(sessionID, character string) BaseEvent {
	return BaseEvent{
		Type: TypeSessionStarted,
		Data: map[string]interface{}{
			"session_id": sessionID,
			"character":  character,
		},
		OccurredAt: time.Now(),
	}
}

// NewChatTurn describes one processed user message. Message text is left out;
// only its shape travels on the bus.
func NewChatTurn(sessionID, character, intent string, switched bool, latency time.Duration) BaseEvent {
	return BaseEvent{
		Type: TypeChatTurn,
		Data: map[string]interface{}{
			"session_id": sessionID,
			"character":  character,
			"intent":     intent,
			"switched":   switched,
			"latency_ms": latency.Milliseconds(),
		},
		OccurredAt: time.Now(),
	}
}

func NewSessionEnded(sessionID string) BaseEvent {
	return BaseEvent{
		Type:       TypeSessionEnded,
		Data:       map[string]interface{}{"session_id": sessionID},
		OccurredAt: time.Now(),
	}
}

// FromPayload rebuilds an event received from the bus.
func FromPayload(eventType string, payload map[string]interface{}) BaseEvent {
	occurredAt := time.Now()
	if raw, ok := payload[OccurredAtKey].(string); ok {
		if ts, err := time.Parse(time.RFC3339Nano, raw); err == nil {
			occurredAt = ts
		}
	}
	data := make(map[string]interface{}, len(payload))
	for k, v := range payload {
		if k != OccurredAtKey {
			data[k] = v
		}
	}
	return BaseEvent{Type: eventType, Data: data, OccurredAt: occurredAt}
}
