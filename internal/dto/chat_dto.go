package dto

import "time"

type CreateSessionRequest struct {
	Character string `json:"character,omitempty" validate:"omitempty,max=100"`
}

type ChatMessageDTO struct {
	Role    string `json:"role"`
	Content string `json:"content"`
}

type CreateSessionResponse struct {
	SessionId string           `json:"session_id"`
	Token     string           `json:"token"`
	ExpiresAt time.Time        `json:"expires_at"`
	Character string           `json:"character"`
	History   []ChatMessageDTO `json:"history"`
}

type SendChatRequest struct {
	Chat string `json:"chat" validate:"required,max=2000"`
}

type SendChatResponse struct {
	Character     string `json:"character"`
	Intent        string `json:"intent"`
	Switched      bool   `json:"switched"`
	Reply         string `json:"reply"`
	HistoryLength int    `json:"history_length"`
}

type GetChatHistoryResponse struct {
	Character string           `json:"character"`
	Active    bool             `json:"active"`
	History   []ChatMessageDTO `json:"history"`
}

// FrameRoleError marks a frame reporting a turn that could not be processed.
const FrameRoleError = "error"

// ChatFrame is one display message pushed over the websocket.
type ChatFrame struct {
	Role      string `json:"role"`
	Content   string `json:"content"`
	Character string `json:"character"`
}
