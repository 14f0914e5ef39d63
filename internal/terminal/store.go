package terminal

import (
	"context"
	"encoding/json"
	"errors"
	"strings"
	"sync"
	"time"

	"github.com/redis/go-redis/v9"
)

// Store persists one Session per station.  Update runs fn against the
// current session and saves the result atomically; when fn returns an error
// nothing is saved.
type Store interface {
	Load(ctx context.Context, station string) (Session, error)
	Update(ctx context.Context, station string, fn func(*Session) error) (Session, error)
}

const maxUpdateRetries = 10

// RedisStore keeps sessions as JSON under "terminal:<station>" and uses
// WATCH/MULTI for optimistic concurrency.
type RedisStore struct {
	rdb *redis.Client
	ttl time.Duration
	now func() time.Time
}

func NewRedisStore(rdb *redis.Client, ttl time.Duration) *RedisStore {
	return &RedisStore{rdb: rdb, ttl: ttl, now: time.Now}
}

func (s *RedisStore) key(station string) string { return "terminal:" + strings.ToUpper(station) }

type getter interface {
	Get(ctx context.Context, key string) *redis.StringCmd
}

func (s *RedisStore) read(ctx context.Context, c getter, station string) (Session, error) {
	b, err := c.Get(ctx, s.key(station)).Bytes()
	if errors.Is(err, redis.Nil) {
		return newSession(station), nil
	}
	if err != nil {
		return Session{}, err
	}
	var sess Session
	if err := json.Unmarshal(b, &sess); err != nil {
		return newSession(station), nil
	}
	return sess, nil
}

func (s *RedisStore) Load(ctx context.Context, station string) (Session, error) {
	return s.read(ctx, s.rdb, station)
}

func (s *RedisStore) Update(ctx context.Context, station string, fn func(*Session) error) (Session, error) {
	key := s.key(station)
	var out Session
	txf := func(tx *redis.Tx) error {
		sess, err := s.read(ctx, tx, station)
		if err != nil {
			return err
		}
		orig := sess
		if err := fn(&sess); err != nil {
			if errors.Is(err, errUnchanged) {
				out = orig
				return nil
			}
			return err
		}
		sess.UpdatedAt = s.now().UTC()
		b, err := json.Marshal(sess)
		if err != nil {
			return err
		}
		_, err = tx.TxPipelined(ctx, func(p redis.Pipeliner) error {
			p.Set(ctx, key, b, s.ttl)
			return nil
		})
		if err == nil {
			out = sess
		}
		return err
	}
	for i := 0; i < maxUpdateRetries; i++ {
		err := s.rdb.Watch(ctx, txf, key)
		if errors.Is(err, redis.TxFailedErr) {
			continue
		}
		if err != nil {
			return Session{}, err
		}
		return out, nil
	}
	return Session{}, ErrBusy
}

// MemoryStore is the in-process fallback.  Sessions idle for longer than
// the TTL start over.
type MemoryStore struct {
	mu    sync.Mutex
	ttl   time.Duration
	now   func() time.Time
	items map[string]Session
}

func NewMemoryStore(ttl time.Duration) *MemoryStore {
	return &MemoryStore{ttl: ttl, now: time.Now, items: map[string]Session{}}
}

func (s *MemoryStore) get(station string) Session {
	sess, ok := s.items[strings.ToUpper(station)]
	if !ok || (s.ttl > 0 && s.now().Sub(sess.UpdatedAt) > s.ttl) {
		return newSession(station)
	}
	return sess
}

func (s *MemoryStore) Load(_ context.Context, station string) (Session, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.get(station), nil
}

func (s *MemoryStore) Update(_ context.Context, station string, fn func(*Session) error) (Session, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	sess := s.get(station)
	orig := sess
	if err := fn(&sess); err != nil {
		if errors.Is(err, errUnchanged) {
			return orig, nil
		}
		return Session{}, err
	}
	sess.UpdatedAt = s.now().UTC()
	s.items[strings.ToUpper(station)] = sess
	return sess, nil
}
