package handler

import (
	"context"
	"encoding/json"
	"errors"

	"fellowship-chat-be/internal/dto"
	"fellowship-chat-be/internal/pkg/logger"
	"fellowship-chat-be/internal/pkg/serverutils"
	"fellowship-chat-be/internal/service"
	internalWS "fellowship-chat-be/internal/websocket"

	"github.com/gofiber/fiber/v2"
	"github.com/gofiber/websocket/v2"
)

// ChatHandler carries chat turns over a websocket. Every connection of a
// session sees the user's message and the character's reply.
type ChatHandler struct {
	chatService service.IChatService
	hub         *internalWS.Hub
	jwtSecret   string
	logger      logger.ILogger
}

func NewChatHandler(chatService service.IChatService, hub *internalWS.Hub, jwtSecret string, log logger.ILogger) *ChatHandler {
	return &ChatHandler{
		chatService: chatService,
		hub:         hub,
		jwtSecret:   jwtSecret,
		logger:      log,
	}
}

// ServeWs handles websocket requests from the peer.
func (h *ChatHandler) ServeWs(c *fiber.Ctx) error {
	// Priority 1: Query Param (Browser standard)
	tokenStr := c.Query("token")

	// Priority 2: Authorization Header
	if tokenStr == "" {
		authHeader := c.Get("Authorization")
		if len(authHeader) > 7 && authHeader[:7] == "Bearer " {
			tokenStr = authHeader[7:]
		}
	}

	if tokenStr == "" {
		return c.Status(fiber.StatusUnauthorized).JSON(serverutils.ErrorResponse(fiber.StatusUnauthorized, "Missing token (Query 'token' or Header 'Authorization')"))
	}

	sessionID, err := serverutils.ParseSessionToken(h.jwtSecret, tokenStr)
	if err != nil {
		h.logger.Warn("ChatHandler", "Invalid Token in WS Handshake", map[string]interface{}{"error": err.Error()})
		return c.Status(fiber.StatusUnauthorized).JSON(serverutils.ErrorResponse(fiber.StatusUnauthorized, "Invalid token"))
	}

	history, err := h.chatService.GetHistory(c.UserContext(), sessionID, "")
	if err != nil {
		if errors.Is(err, service.ErrSessionNotFound) {
			return c.Status(fiber.StatusNotFound).JSON(serverutils.ErrorResponse(fiber.StatusNotFound, err.Error()))
		}
		return err
	}

	if !websocket.IsWebSocketUpgrade(c) {
		return fiber.ErrUpgradeRequired
	}

	initial := historyFrames(history)
	return websocket.New(func(conn *websocket.Conn) {
		h.logger.Info("ChatHandler", "Starting WebSocket session", map[string]interface{}{"session_id": sessionID})
		internalWS.ServeWs(h.hub, conn, sessionID, initial, h.handleTurn)
		h.logger.Info("ChatHandler", "WebSocket session ended", map[string]interface{}{"session_id": sessionID})
	})(c)
}

func (h *ChatHandler) handleTurn(client *internalWS.Client, text string) {
	sessionID := client.SessionID

	res, err := h.chatService.SendChat(context.Background(), sessionID, &dto.SendChatRequest{Chat: text})
	if err != nil {
		h.logger.Error("ChatHandler", "Turn failed", map[string]interface{}{"session_id": sessionID, "error": err.Error()})
		h.hub.Deliver(sessionID, dto.ChatFrame{Role: dto.FrameRoleError, Content: turnErrorNotice(err)})
		return
	}

	h.hub.Deliver(sessionID, dto.ChatFrame{Role: "user", Content: text, Character: res.Character})
	h.hub.Deliver(sessionID, dto.ChatFrame{Role: "assistant", Content: res.Reply, Character: res.Character})
}

func (h *ChatHandler) RegisterRoutes(router fiber.Router) {
	router.Get("/ws/chat", h.ServeWs)
}

func historyFrames(history *dto.GetChatHistoryResponse) [][]byte {
	frames := make([][]byte, 0, len(history.History))
	for _, m := range history.History {
		data, err := json.Marshal(dto.ChatFrame{Role: m.Role, Content: m.Content, Character: history.Character})
		if err != nil {
			continue
		}
		frames = append(frames, data)
	}
	return frames
}

func turnErrorNotice(err error) string {
	if errors.Is(err, service.ErrSessionNotFound) {
		return "This conversation has ended. Start a new session to continue."
	}
	return "Your message could not be delivered. Please try again."
}
