package dialogue

import (
	"context"
	"errors"

	"fellowship-chat-be/pkg/rag"
)

// Factory builds the RAG session for one character.
type Factory interface {
	Create(ctx context.Context, name string) (rag.Session, error)
}

// handleCache maps character names to built RAG sessions. A failed build is
// not cached, so the next getOrCreate for that name tries again.
// Callers serialize access.
type handleCache struct {
	factory Factory
	handles map[string]rag.Session
}

func newHandleCache(factory Factory) *handleCache {
	return &handleCache{factory: factory, handles: make(map[string]rag.Session)}
}

func (c *handleCache) getOrCreate(ctx context.Context, name string) (rag.Session, error) {
	if h, ok := c.handles[name]; ok {
		return h, nil
	}
	h, err := c.factory.Create(ctx, name)
	if err != nil {
		return nil, err
	}
	c.handles[name] = h
	return h, nil
}

func (c *handleCache) closeAll(ctx context.Context) error {
	var errs []error
	for name, h := range c.handles {
		if err := h.Close(ctx); err != nil {
			errs = append(errs, err)
		}
		delete(c.handles, name)
	}
	return errors.Join(errs...)
}
