package dto

// EventEnvelope is the in-process message carrying a domain event from the
// chat service to the consumer.
type EventEnvelope struct {
	Type    string                 `json:"type"`
	Payload map[string]interface{} `json:"payload"`
}
