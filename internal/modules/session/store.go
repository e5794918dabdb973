// README: In-memory session store backed by go-cache; nothing outlives the process.
package session

import (
	"time"

	"github.com/google/uuid"
	"github.com/patrickmn/go-cache"
)

const (
	planKeyPrefix    = "plan:"
	runningKeyPrefix = "running:"
)

type Store struct {
	cache *cache.Cache
	ttl   time.Duration
}

// NewStore returns a Store whose entries expire after ttl of inactivity.
func NewStore(ttl time.Duration) *Store {
	if ttl <= 0 {
		ttl = DefaultTTL
	}
	return &Store{
		cache: cache.New(ttl, ttl/2),
		ttl:   ttl,
	}
}

// NewID returns a fresh random session identifier.
func NewID() string {
	return uuid.NewString()
}

// ValidID reports whether id looks like an identifier produced by NewID.
func ValidID(id string) bool {
	_, err := uuid.Parse(id)
	return err == nil
}

// LastPlan returns the most recent plan stored for the session.
func (s *Store) LastPlan(id string) (Plan, bool) {
	v, ok := s.cache.Get(planKeyPrefix + id)
	if !ok {
		return Plan{}, false
	}
	return v.(Plan), true
}

// SavePlan replaces the session's plan and refreshes its expiry.
func (s *Store) SavePlan(id string, p Plan) {
	s.cache.Set(planKeyPrefix+id, p, cache.DefaultExpiration)
}

// ClearPlan drops the session's plan when the user starts over.
func (s *Store) ClearPlan(id string) {
	s.cache.Delete(planKeyPrefix + id)
}

// BeginRun marks the session as busy. It returns ErrRunInFlight if a run is already
// marked. The returned func releases the mark and must be called exactly once.
func (s *Store) BeginRun(id string) (func(), error) {
	key := runningKeyPrefix + id
	if err := s.cache.Add(key, struct{}{}, s.ttl); err != nil {
		return nil, ErrRunInFlight
	}
	return func() { s.cache.Delete(key) }, nil
}
