package rag

import (
	"context"
	"errors"
	"testing"
	"time"

	"fellowship-chat-be/internal/pkg/logger"
	"fellowship-chat-be/pkg/character"
	"fellowship-chat-be/pkg/llm"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type stubSession struct{ closed bool }

func (s *stubSession) Ask(context.Context, string, []llm.Message) (string, error) {
	return "", nil
}

func (s *stubSession) Close(context.Context) error {
	s.closed = true
	return nil
}

type recordingBackend struct {
	passages     []string
	systemPrompt string
	wait         bool
	err          error
	built        *stubSession
}

func (b *recordingBackend) BuildSession(ctx context.Context, passages []string, systemPrompt string) (Session, error) {
	b.passages = passages
	b.systemPrompt = systemPrompt
	if b.wait {
		<-ctx.Done()
		return nil, ctx.Err()
	}
	if b.err != nil {
		return nil, b.err
	}
	b.built = &stubSession{}
	return b.built, nil
}

func testRegistry() *character.Registry {
	return character.NewRegistry([]character.Record{
		{Name: "Frodo", Context: "Ring-bearer of the Shire.", Quotes: []string{}},
		{Name: "Sauron", Context: "The Dark Lord.", Quotes: []string{}},
	})
}

func TestSelectPassages(t *testing.T) {
	corpus := []string{"FRODO walks.", "Sam cooks.", "frodo sleeps."}

	tests := []struct {
		name string
		char string
		want []string
	}{
		{name: "case-insensitive match", char: "Frodo", want: []string{"FRODO walks.", "frodo sleeps."}},
		{name: "fallback to whole corpus", char: "Gandalf", want: corpus},
		{name: "empty corpus", char: "Frodo", want: nil},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			c := corpus
			if tt.want == nil {
				c = nil
			}
			got := SelectPassages(tt.char, c)
			if tt.want == nil {
				assert.Empty(t, got)
				return
			}
			assert.Equal(t, tt.want, got)
		})
	}
}

func TestFactoryCreate(t *testing.T) {
	backend := &recordingBackend{}
	f := NewFactory([]string{"Frodo and the Ring.", "Sam alone."}, testRegistry(), backend, time.Second, logger.NewNopLogger())

	sess, err := f.Create(context.Background(), "Frodo")
	require.NoError(t, err)
	assert.Same(t, backend.built, sess)
	assert.Equal(t, []string{"Frodo and the Ring."}, backend.passages)
	assert.Contains(t, backend.systemPrompt, "You are Frodo")
	assert.Contains(t, backend.systemPrompt, "Frodo - Ring-bearer of the Shire.")
	assert.Contains(t, backend.systemPrompt, "Never break character")
	assert.Contains(t, backend.systemPrompt, "asterisks")
}

func TestFactoryCreateErrors(t *testing.T) {
	t.Run("unknown character", func(t *testing.T) {
		f := NewFactory(nil, testRegistry(), &recordingBackend{}, time.Second, logger.NewNopLogger())
		_, err := f.Create(context.Background(), "Gollum")
		assert.ErrorIs(t, err, ErrUnknownCharacter)
	})

	t.Run("backend failure", func(t *testing.T) {
		cause := errors.New("vector store unreachable")
		f := NewFactory(nil, testRegistry(), &recordingBackend{err: cause}, time.Second, logger.NewNopLogger())
		_, err := f.Create(context.Background(), "Frodo")
		assert.ErrorIs(t, err, ErrSessionInit)
		assert.ErrorIs(t, err, cause)
	})

	t.Run("build timeout", func(t *testing.T) {
		f := NewFactory(nil, testRegistry(), &recordingBackend{wait: true}, 10*time.Millisecond, logger.NewNopLogger())
		_, err := f.Create(context.Background(), "Sauron")
		assert.ErrorIs(t, err, ErrSessionInit)
		assert.ErrorIs(t, err, context.DeadlineExceeded)
	})
}
