package controller

import (
	"context"
	"encoding/json"
	"io"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"fellowship-chat-be/internal/dto"
	"fellowship-chat-be/internal/pkg/serverutils"
	"fellowship-chat-be/internal/service"

	"github.com/gofiber/fiber/v2"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type stubChatService struct {
	lastSession string
	lastChat    string
}

func (s *stubChatService) CreateSession(_ context.Context, req *dto.CreateSessionRequest) (*dto.CreateSessionResponse, error) {
	if req.Character == "Gollum" {
		return nil, service.ErrUnknownCharacter
	}
	return &dto.CreateSessionResponse{SessionId: "s-1", Character: "Frodo"}, nil
}

func (s *stubChatService) SendChat(_ context.Context, sessionID string, req *dto.SendChatRequest) (*dto.SendChatResponse, error) {
	if sessionID == "gone" {
		return nil, service.ErrSessionNotFound
	}
	s.lastSession = sessionID
	s.lastChat = req.Chat
	return &dto.SendChatResponse{Character: "Frodo", Intent: "default", Reply: "A reply."}, nil
}

func (s *stubChatService) GetHistory(_ context.Context, _ string, character string) (*dto.GetChatHistoryResponse, error) {
	return &dto.GetChatHistoryResponse{Character: character}, nil
}

func (s *stubChatService) EndSession(context.Context, string) error {
	return nil
}

func newTestApp(svc service.IChatService) *fiber.App {
	app := fiber.New()
	app.Use(serverutils.ErrorHandlerMiddleware())
	NewChatController(svc, "secret", serverutils.NewRateLimiter(0, 1)).RegisterRoutes(app.Group("/api"))
	return app
}

func bearer(t *testing.T, sessionID string) string {
	t.Helper()
	token, err := serverutils.IssueSessionToken("secret", sessionID, time.Minute)
	require.NoError(t, err)
	return "Bearer " + token
}

func TestChatControllerSendChat(t *testing.T) {
	svc := &stubChatService{}
	app := newTestApp(svc)

	tests := []struct {
		name   string
		auth   string
		body   string
		status int
	}{
		{name: "no token", body: `{"chat":"hi"}`, status: fiber.StatusUnauthorized},
		{name: "missing chat", auth: bearer(t, "s-1"), body: `{}`, status: fiber.StatusBadRequest},
		{name: "broken json", auth: bearer(t, "s-1"), body: `{`, status: fiber.StatusBadRequest},
		{name: "expired session", auth: bearer(t, "gone"), body: `{"chat":"hi"}`, status: fiber.StatusNotFound},
		{name: "ok", auth: bearer(t, "s-1"), body: `{"chat":"Where is the Ring?"}`, status: fiber.StatusOK},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			req := httptest.NewRequest("POST", "/api/chat/v1/message", strings.NewReader(tt.body))
			req.Header.Set("Content-Type", "application/json")
			if tt.auth != "" {
				req.Header.Set("Authorization", tt.auth)
			}
			resp, err := app.Test(req)
			require.NoError(t, err)
			assert.Equal(t, tt.status, resp.StatusCode)
		})
	}

	assert.Equal(t, "s-1", svc.lastSession)
	assert.Equal(t, "Where is the Ring?", svc.lastChat)
}

func TestChatControllerCreateSession(t *testing.T) {
	app := newTestApp(&stubChatService{})

	resp, err := app.Test(httptest.NewRequest("POST", "/api/chat/v1/session", nil))
	require.NoError(t, err)
	assert.Equal(t, fiber.StatusCreated, resp.StatusCode)

	body, _ := io.ReadAll(resp.Body)
	var out serverutils.BaseResponse[dto.CreateSessionResponse]
	require.NoError(t, json.Unmarshal(body, &out))
	assert.True(t, out.Success)
	assert.Equal(t, "s-1", out.Data.SessionId)

	req := httptest.NewRequest("POST", "/api/chat/v1/session", strings.NewReader(`{"character":"Gollum"}`))
	req.Header.Set("Content-Type", "application/json")
	resp, err = app.Test(req)
	require.NoError(t, err)
	assert.Equal(t, fiber.StatusBadRequest, resp.StatusCode)
}

func TestChatControllerHistory(t *testing.T) {
	app := newTestApp(&stubChatService{})

	req := httptest.NewRequest("GET", "/api/chat/v1/history?character=Sam", nil)
	req.Header.Set("Authorization", bearer(t, "s-1"))
	resp, err := app.Test(req)
	require.NoError(t, err)
	require.Equal(t, fiber.StatusOK, resp.StatusCode)

	body, _ := io.ReadAll(resp.Body)
	var out serverutils.BaseResponse[dto.GetChatHistoryResponse]
	require.NoError(t, json.Unmarshal(body, &out))
	assert.Equal(t, "Sam", out.Data.Character)
}
