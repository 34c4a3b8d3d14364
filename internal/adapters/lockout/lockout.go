package lockout

import (
	"time"

	"github.com/jellydator/ttlcache/v3"
)

// Store holds time-bound login lockout markers per client key. A marker
// blocks all login attempts for that client until it expires; nothing
// clears it early.
type Store interface {
	Lock(key string)
	IsLocked(key string) bool
}

type ttlStore struct {
	cache *ttlcache.Cache[string, struct{}]
}

func (s *ttlStore) Lock(key string) {
	s.cache.Set(key, struct{}{}, ttlcache.DefaultTTL)
}

func (s *ttlStore) IsLocked(key string) bool {
	return s.cache.Get(key) != nil
}

// NewTTLStore creates a lockout store whose markers expire after duration.
func NewTTLStore(duration time.Duration) (Store, func()) {
	lockoutTTLCache := ttlcache.New[string, struct{}](
		ttlcache.WithTTL[string, struct{}](duration),
		ttlcache.WithDisableTouchOnHit[string, struct{}](),
	)
	go lockoutTTLCache.Start()

	return &ttlStore{cache: lockoutTTLCache}, lockoutTTLCache.Stop
}
