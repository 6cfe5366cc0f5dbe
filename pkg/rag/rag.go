package rag

import (
	"context"
	"errors"

	"fellowship-chat-be/pkg/llm"
)

var (
	ErrSessionInit      = errors.New("rag session could not be initialized")
	ErrUnknownCharacter = errors.New("character is not in the registry")
)

// Session answers questions in one character's voice, grounded on that
// character's passages. A Session is owned by a single dialogue session.
type Session interface {
	// Ask answers question. history is the character's transcript including
	// the pending user message; implementations may use it to restore memory.
	Ask(ctx context.Context, question string, history []llm.Message) (string, error)
	// Close releases the retrieval index behind the session.
	Close(ctx context.Context) error
}

// Backend turns a set of passages and a persona prompt into a Session.
type Backend interface {
	BuildSession(ctx context.Context, passages []string, systemPrompt string) (Session, error)
}
