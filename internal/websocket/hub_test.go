package websocket

import (
	"context"
	"encoding/json"
	"testing"
	"time"

	"fellowship-chat-be/internal/dto"
	"fellowship-chat-be/internal/pkg/logger"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newTestClient(hub *Hub, sessionID string) *Client {
	return &Client{Hub: hub, SessionID: sessionID, Send: make(chan []byte, 4)}
}

func TestHubDeliversToSessionConnections(t *testing.T) {
	hub := NewHub(nil, logger.NewNopLogger())
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()
	go hub.Run(ctx)

	tab1 := newTestClient(hub, "s1")
	tab2 := newTestClient(hub, "s1")
	other := newTestClient(hub, "s2")
	hub.register <- tab1
	hub.register <- tab2
	hub.register <- other

	require.Eventually(t, func() bool { return hub.SessionConnections("s1") == 2 }, time.Second, 5*time.Millisecond)

	hub.Deliver("s1", dto.ChatFrame{Role: "assistant", Content: "Speak, friend", Character: "Gandalf"})

	for _, c := range []*Client{tab1, tab2} {
		select {
		case data := <-c.Send:
			var frame dto.ChatFrame
			require.NoError(t, json.Unmarshal(data, &frame))
			assert.Equal(t, "Gandalf", frame.Character)
			assert.Equal(t, "Speak, friend", frame.Content)
		case <-time.After(time.Second):
			t.Fatal("frame not delivered")
		}
	}
	assert.Empty(t, other.Send)
}

func TestHubUnregisterClosesSend(t *testing.T) {
	hub := NewHub(nil, logger.NewNopLogger())
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()
	go hub.Run(ctx)

	c := newTestClient(hub, "s1")
	hub.register <- c
	hub.unregister <- c

	require.Eventually(t, func() bool { return hub.SessionConnections("s1") == 0 }, time.Second, 5*time.Millisecond)
	_, open := <-c.Send
	assert.False(t, open)
}
