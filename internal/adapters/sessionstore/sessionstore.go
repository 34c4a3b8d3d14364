package sessionstore

import (
	"time"

	"github.com/google/uuid"
	"github.com/jellydator/ttlcache/v3"
)

// Store tracks which username each session token belongs to. Sessions are
// never explicitly cleared; they expire with their TTL, the server-side
// analog of a browser session ending.
type Store interface {
	Create(username string) string
	Get(token string) (username string, ok bool)
}

type ttlStore struct {
	cache    *ttlcache.Cache[string, string]
	newToken func() string
}

func (s *ttlStore) Create(username string) string {
	token := s.newToken()
	s.cache.Set(token, username, ttlcache.DefaultTTL)
	return token
}

func (s *ttlStore) Get(token string) (string, bool) {
	item := s.cache.Get(token)
	if item == nil {
		return "", false
	}
	return item.Value(), true
}

// NewTTLStore creates a session store whose sessions expire ttl after
// creation. newToken may be nil, in which case tokens are random UUIDs.
func NewTTLStore(ttl time.Duration, newToken func() string) (Store, func()) {
	if newToken == nil {
		newToken = func() string { return uuid.New().String() }
	}

	sessionTTLCache := ttlcache.New[string, string](
		ttlcache.WithTTL[string, string](ttl),
		ttlcache.WithDisableTouchOnHit[string, string](),
	)
	go sessionTTLCache.Start()

	return &ttlStore{
		cache:    sessionTTLCache,
		newToken: newToken,
	}, sessionTTLCache.Stop
}
