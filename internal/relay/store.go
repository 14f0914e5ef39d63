// Package relay holds the last license plate reported by the roadside
// detector of each station.  The value is last-write-wins and expires after
// a TTL so a stale plate never reaches a new customer.
package relay

import (
	"context"
	"errors"
	"strings"
	"sync"
	"time"

	"github.com/redis/go-redis/v9"
)

// Store keeps one plate per station.
type Store interface {
	Set(ctx context.Context, station, plate string) error
	// Get returns ok=false when the station has no plate.
	Get(ctx context.Context, station string) (plate string, ok bool, err error)
	Clear(ctx context.Context, station string) error
}

// RedisStore keeps plates under "<prefix><station>" with an expiry.
type RedisStore struct {
	rdb    *redis.Client
	prefix string
	ttl    time.Duration
}

// NewRedisStore returns a Store backed by rdb.  A ttl <= 0 keeps plates
// until they are cleared.
func NewRedisStore(rdb *redis.Client, ttl time.Duration) *RedisStore {
	return &RedisStore{rdb: rdb, prefix: "relay:", ttl: ttl}
}

func (s *RedisStore) key(station string) string {
	return s.prefix + strings.ToUpper(station)
}

func (s *RedisStore) Set(ctx context.Context, station, plate string) error {
	ttl := s.ttl
	if ttl < 0 {
		ttl = 0
	}
	return s.rdb.Set(ctx, s.key(station), plate, ttl).Err()
}

func (s *RedisStore) Get(ctx context.Context, station string) (string, bool, error) {
	v, err := s.rdb.Get(ctx, s.key(station)).Result()
	if errors.Is(err, redis.Nil) {
		return "", false, nil
	}
	if err != nil {
		return "", false, err
	}
	return v, true, nil
}

func (s *RedisStore) Clear(ctx context.Context, station string) error {
	return s.rdb.Del(ctx, s.key(station)).Err()
}

// MemoryStore is the in-process fallback used when Redis is unavailable.
// Its state is lost on restart.
type MemoryStore struct {
	mu    sync.Mutex
	ttl   time.Duration
	now   func() time.Time
	items map[string]memEntry
}

type memEntry struct {
	plate   string
	expires time.Time
}

func NewMemoryStore(ttl time.Duration) *MemoryStore {
	return &MemoryStore{ttl: ttl, now: time.Now, items: map[string]memEntry{}}
}

func (s *MemoryStore) Set(_ context.Context, station, plate string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	e := memEntry{plate: plate}
	if s.ttl > 0 {
		e.expires = s.now().Add(s.ttl)
	}
	s.items[strings.ToUpper(station)] = e
	return nil
}

func (s *MemoryStore) Get(_ context.Context, station string) (string, bool, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	key := strings.ToUpper(station)
	e, ok := s.items[key]
	if !ok {
		return "", false, nil
	}
	if !e.expires.IsZero() && !s.now().Before(e.expires) {
		delete(s.items, key)
		return "", false, nil
	}
	return e.plate, true, nil
}

func (s *MemoryStore) Clear(_ context.Context, station string) error {
	s.mu.Lock()
	delete(s.items, strings.ToUpper(station))
	s.mu.Unlock()
	return nil
}
