package backend

import (
	"context"
	"errors"
	"strings"
	"sync"
	"testing"

	"fellowship-chat-be/pkg/embedding"
	"fellowship-chat-be/pkg/llm"
	"fellowship-chat-be/pkg/rag/index"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// keywordEmbedder maps text onto one axis per keyword it contains.
type keywordEmbedder struct {
	keywords []string
	err      error
	calls    int
}

func (e *keywordEmbedder) Generate(_ context.Context, text string, _ string) (*embedding.EmbeddingResponse, error) {
	e.calls++
	if e.err != nil {
		return nil, e.err
	}
	vec := make([]float32, len(e.keywords)+1)
	vec[len(e.keywords)] = 0.01
	lower := strings.ToLower(text)
	for i, k := range e.keywords {
		if strings.Contains(lower, k) {
			vec[i] = 1
		}
	}
	return &embedding.EmbeddingResponse{Embedding: embedding.EmbeddingResponseEmbedding{Values: embedding.Normalize(vec)}}, nil
}

type scriptedLLM struct {
	mu      sync.Mutex
	prompts []string
	replies []string
	err     error
}

func (m *scriptedLLM) Chat(ctx context.Context, history []llm.Message, _ ...llm.Option) (string, error) {
	return m.Generate(ctx, history[len(history)-1].Content)
}

func (m *scriptedLLM) Generate(_ context.Context, prompt string, _ ...llm.Option) (string, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.prompts = append(m.prompts, prompt)
	if m.err != nil {
		return "", m.err
	}
	if len(m.replies) == 0 {
		return "", errors.New("no scripted reply")
	}
	reply := m.replies[0]
	m.replies = m.replies[1:]
	return reply, nil
}

func TestRetrievalAskUsesTopChunks(t *testing.T) {
	embedder := &keywordEmbedder{keywords: []string{"ring", "shire", "mordor"}}
	model := &scriptedLLM{replies: []string{"*clutches the chain* It is precious."}}
	backend := NewRetrieval(embedder, model, index.MemoryBuilder(), Config{TopK: 1})

	sess, err := backend.BuildSession(context.Background(), []string{
		"The Shire is green and quiet.",
		"The Ring must be carried to Mordor.",
	}, "You are Frodo.")
	require.NoError(t, err)

	answer, err := sess.Ask(context.Background(), "Tell me of the ring", nil)
	require.NoError(t, err)
	assert.Equal(t, "*clutches the chain* It is precious.", answer)

	require.Len(t, model.prompts, 1)
	prompt := model.prompts[0]
	assert.True(t, strings.HasPrefix(prompt, "You are Frodo."))
	assert.Contains(t, prompt, "Context: The Ring must be carried to Mordor.")
	assert.NotContains(t, prompt, "The Shire is green")
	assert.True(t, strings.HasSuffix(prompt, "Question: Tell me of the ring"))
}

func TestRetrievalCondensesFollowUps(t *testing.T) {
	embedder := &keywordEmbedder{keywords: []string{"ring"}}
	model := &scriptedLLM{replies: []string{"First answer.", "What became of the ring?", "Second answer."}}
	backend := NewRetrieval(embedder, model, index.MemoryBuilder(), DefaultConfig())

	sess, err := backend.BuildSession(context.Background(), []string{"The ring."}, "persona")
	require.NoError(t, err)

	_, err = sess.Ask(context.Background(), "Where is the ring?", nil)
	require.NoError(t, err)
	answer, err := sess.Ask(context.Background(), "And then?", nil)
	require.NoError(t, err)
	assert.Equal(t, "Second answer.", answer)

	require.Len(t, model.prompts, 3)
	assert.Contains(t, model.prompts[1], "Human: Where is the ring?\nAssistant: First answer.")
	assert.Contains(t, model.prompts[1], "Follow Up Input: And then?")
	assert.True(t, strings.HasSuffix(model.prompts[2], "Question: What became of the ring?"))
}

func TestRetrievalSeedsMemoryFromTranscript(t *testing.T) {
	model := &scriptedLLM{replies: []string{"standalone", "answer"}}
	backend := NewRetrieval(&keywordEmbedder{}, model, index.MemoryBuilder(), DefaultConfig())

	sess, err := backend.BuildSession(context.Background(), []string{"text"}, "persona")
	require.NoError(t, err)

	history := []llm.Message{
		{Role: llm.RoleAssistant, Content: "You find yourself before Sam. Hello."},
		{Role: llm.RoleUser, Content: "Do you like potatoes?"},
		{Role: llm.RoleAssistant, Content: "Boil 'em, mash 'em."},
		{Role: llm.RoleUser, Content: "And stew?"},
	}
	_, err = sess.Ask(context.Background(), "And stew?", history)
	require.NoError(t, err)

	require.Len(t, model.prompts, 2)
	assert.Contains(t, model.prompts[0], "Human: Do you like potatoes?\nAssistant: Boil 'em, mash 'em.")
	assert.NotContains(t, model.prompts[0], "You find yourself before")
}

func TestRetrievalMemoryIsBounded(t *testing.T) {
	s := &session{maxTurns: 2}
	s.remember(turn{question: "1"}, turn{question: "2"}, turn{question: "3"})
	require.Len(t, s.memory, 2)
	assert.Equal(t, "2", s.memory[0].question)
}

func TestRetrievalBuildFailure(t *testing.T) {
	embedder := &keywordEmbedder{err: errors.New("embedding server down")}
	backend := NewRetrieval(embedder, &scriptedLLM{}, index.MemoryBuilder(), DefaultConfig())

	_, err := backend.BuildSession(context.Background(), []string{"some text"}, "persona")
	require.Error(t, err)
	assert.Contains(t, err.Error(), "embedding server down")
}

func TestRetrievalAskFailureKeepsMemoryClean(t *testing.T) {
	model := &scriptedLLM{err: errors.New("model offline")}
	backend := NewRetrieval(&keywordEmbedder{}, model, index.MemoryBuilder(), DefaultConfig())

	sess, err := backend.BuildSession(context.Background(), []string{"text"}, "persona")
	require.NoError(t, err)

	_, err = sess.Ask(context.Background(), "hello", nil)
	require.Error(t, err)
	assert.Empty(t, sess.(*session).memory)
	require.NoError(t, sess.Close(context.Background()))
}

func TestPairsFromTranscript(t *testing.T) {
	history := []llm.Message{
		{Role: llm.RoleUser, Content: "a"},
		{Role: llm.RoleUser, Content: "b"},
		{Role: llm.RoleAssistant, Content: "B"},
		{Role: llm.RoleAssistant, Content: "banner"},
		{Role: llm.RoleUser, Content: "c"},
	}
	assert.Equal(t, []turn{{question: "b", answer: "B"}}, pairsFromTranscript(history))
}
