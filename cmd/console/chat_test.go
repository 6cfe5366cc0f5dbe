package main

import (
	"context"
	"testing"

	"fellowship-chat-be/internal/pkg/logger"
	"fellowship-chat-be/pkg/character"
	"fellowship-chat-be/pkg/dialogue"
	"fellowship-chat-be/pkg/llm"
	"fellowship-chat-be/pkg/rag"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type echoSession struct{}

func (echoSession) Ask(_ context.Context, question string, _ []llm.Message) (string, error) {
	return question, nil
}

func (echoSession) Close(context.Context) error { return nil }

type echoFactory struct{}

func (echoFactory) Create(context.Context, string) (rag.Session, error) {
	return echoSession{}, nil
}

func TestSeededOnSwitch(t *testing.T) {
	registry := character.NewRegistry([]character.Record{
		{Name: "Frodo", Greeting: "The Shire calls.", Quotes: []string{}},
		{Name: "Gandalf", Greeting: "A wizard is never late.", Quotes: []string{}},
	})
	session, err := dialogue.NewSession("c-1", registry, echoFactory{}, logger.NewNopLogger(), dialogue.WithStartCharacter("Frodo"))
	require.NoError(t, err)
	ctx := context.Background()
	visited := map[string]bool{"Frodo": true}

	reply := session.Handle(ctx, "talk to Gandalf")
	assert.Equal(t, []llm.Message{
		{Role: llm.RoleAssistant, Content: "You find yourself before Gandalf. A wizard is never late."},
	}, seededOnSwitch(session, reply, visited))

	reply = session.Handle(ctx, "talk to Frodo")
	assert.Empty(t, seededOnSwitch(session, reply, visited))

	reply = session.Handle(ctx, "talk to Gandalf")
	assert.Empty(t, seededOnSwitch(session, reply, visited))

	reply = session.Handle(ctx, "Hello")
	assert.Empty(t, seededOnSwitch(session, reply, visited))
}
