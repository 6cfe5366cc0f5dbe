package events

import (
	"encoding/json"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestChatTurnSurvivesTheWire(t *testing.T) {
	ev := NewChatTurn("s-1", "Gandalf", "default", false, 1500*time.Millisecond)

	data, err := json.Marshal(ev.Payload())
	require.NoError(t, err)

	var payload map[string]interface{}
	require.NoError(t, json.Unmarshal(data, &payload))

	got := FromPayload(ev.EventType(), payload)
	assert.Equal(t, TypeChatTurn, got.EventType())
	assert.Equal(t, "Gandalf", got.Data["character"])
	assert.EqualValues(t, 1500, got.Data["latency_ms"])
	assert.NotContains(t, got.Data, OccurredAtKey)
	assert.WithinDuration(t, ev.Timestamp(), got.Timestamp(), time.Millisecond)
}

func TestPayloadDoesNotMutateData(t *testing.T) {
	ev := NewSessionEnded("s-1")
	_ = ev.Payload()
	assert.NotContains(t, ev.Data, OccurredAtKey)
}
