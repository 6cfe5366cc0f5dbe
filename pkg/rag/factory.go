package rag

import (
	"context"
	"fmt"
	"strings"
	"time"

	"fellowship-chat-be/internal/pkg/logger"
	"fellowship-chat-be/pkg/character"
	"fellowship-chat-be/pkg/rag/prompt"
)

// Factory builds a character-scoped Session from the shared corpus.
type Factory struct {
	corpus       []string
	registry     *character.Registry
	backend      Backend
	buildTimeout time.Duration
	logger       logger.ILogger
}

func NewFactory(corpus []string, registry *character.Registry, backend Backend, buildTimeout time.Duration, logger logger.ILogger) *Factory {
	return &Factory{
		corpus:       corpus,
		registry:     registry,
		backend:      backend,
		buildTimeout: buildTimeout,
		logger:       logger,
	}
}

// Create walks passage selection, persona prompt and backend construction for name.
func (f *Factory) Create(ctx context.Context, name string) (Session, error) {
	record, ok := f.registry.Get(name)
	if !ok {
		return nil, fmt.Errorf("%w: %s", ErrUnknownCharacter, name)
	}

	if f.buildTimeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, f.buildTimeout)
		defer cancel()
	}

	start := time.Now()
	passages := SelectPassages(name, f.corpus)
	systemPrompt := prompt.NewPersonaBuilder(record).Build()

	session, err := f.backend.BuildSession(ctx, passages, systemPrompt)
	if err == nil {
		err = ctx.Err()
		if err != nil && session != nil {
			_ = session.Close(context.Background())
		}
	}
	if err != nil {
		f.logger.Warn("RAG", "Failed to build character session", map[string]interface{}{
			"character": name,
			"error":     err.Error(),
		})
		return nil, fmt.Errorf("%w for %s: %w", ErrSessionInit, name, err)
	}

	f.logger.Info("RAG", "Character session built", map[string]interface{}{
		"character":   name,
		"passages":    len(passages),
		"duration_ms": time.Since(start).Milliseconds(),
	})
	return session, nil
}

// SelectPassages keeps the pages that mention name, case-insensitively.
// When none do, the whole corpus is returned.
func SelectPassages(name string, corpus []string) []string {
	needle := strings.ToLower(name)
	var selected []string
	for _, page := range corpus {
		if strings.Contains(strings.ToLower(page), needle) {
			selected = append(selected, page)
		}
	}
	if len(selected) == 0 {
		return append([]string(nil), corpus...)
	}
	return selected
}
