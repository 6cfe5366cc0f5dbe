package memory

import (
	"context"
	"time"

	"fellowship-chat-be/pkg/dialogue"

	"github.com/patrickmn/go-cache"
)

// SessionRepository keeps live dialogue sessions in process. Expired or
// deleted sessions have their RAG sessions closed.
type SessionRepository struct {
	cache *cache.Cache
}

func NewSessionRepository(ttl time.Duration) *SessionRepository {
	if ttl <= 0 {
		ttl = time.Hour
	}
	c := cache.New(ttl, 10*time.Minute)
	c.OnEvicted(func(_ string, x interface{}) {
		if s, ok := x.(*dialogue.Session); ok {
			_ = s.Close(context.Background())
		}
	})
	return &SessionRepository{cache: c}
}

func (r *SessionRepository) Save(session *dialogue.Session) {
	r.cache.Set(session.ID(), session, cache.DefaultExpiration)
}

// Get returns the session and extends its lifetime.
func (r *SessionRepository) Get(sessionID string) (*dialogue.Session, bool) {
	if x, found := r.cache.Get(sessionID); found {
		s := x.(*dialogue.Session)
		r.cache.Set(sessionID, s, cache.DefaultExpiration)
		return s, true
	}
	return nil, false
}

func (r *SessionRepository) Delete(sessionID string) {
	r.cache.Delete(sessionID)
}

func (r *SessionRepository) Count() int {
	return r.cache.ItemCount()
}

// CloseAll evicts every session, closing their RAG sessions.
func (r *SessionRepository) CloseAll() {
	for id := range r.cache.Items() {
		r.cache.Delete(id)
	}
}
