package websocket

import (
	"github.com/gofiber/websocket/v2"
)

// ServeWs runs a chat connection until the peer goes away. initial frames
// are queued before any user message is read.
func ServeWs(hub *Hub, conn *websocket.Conn, sessionID string, initial [][]byte, onTurn TurnFunc) {
	client := &Client{
		Hub:       hub,
		Conn:      conn,
		SessionID: sessionID,
		Send:      make(chan []byte, max(256, len(initial)+pendingTurns*2)),
		turns:     make(chan string, pendingTurns),
		onTurn:    onTurn,
	}
	for _, frame := range initial {
		client.Send <- frame
	}
	hub.Register(client)

	go client.writePump()
	go client.turnPump()
	client.readPump() // Run readPump in current goroutine (handler)
}
