package memory

import (
	"time"

	"github.com/patrickmn/go-cache"

	"ai-salesagent-be/pkg/store"
)

// SessionRepository keeps per-conversation session state in process memory.
// Sessions expire after an hour of inactivity and do not survive restarts.
type SessionRepository struct {
	cache *cache.Cache
}

func NewSessionRepository() *SessionRepository {
	// Default expiration of 1 hour, expired entries purged every 10 minutes
	c := cache.New(1*time.Hour, 10*time.Minute)
	return &SessionRepository{
		cache: c,
	}
}

func (r *SessionRepository) Save(session *store.Session) {
	r.cache.Set(session.ID, session, cache.DefaultExpiration)
}

func (r *SessionRepository) Get(sessionID string) (*store.Session, bool) {
	if x, found := r.cache.Get(sessionID); found {
		return x.(*store.Session), true
	}
	return nil, false
}

// GetOrCreate returns the existing session or a fresh one under the given id,
// refreshing its expiration either way.
func (r *SessionRepository) GetOrCreate(sessionID string) *store.Session {
	if s, ok := r.Get(sessionID); ok {
		r.Save(s)
		return s
	}
	s := store.NewSession(sessionID)
	r.Save(s)
	return s
}

func (r *SessionRepository) Delete(sessionID string) {
	r.cache.Delete(sessionID)
}
