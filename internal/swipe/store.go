// internal/swipe/store.go
package swipe

import (
	"context"
	"encoding/json"
	stderrors "errors"
	"sync"
	"time"

	"github.com/redis/go-redis/v9"

	"travelease/internal/common/errors"
)

// ErrNotFound is returned by stores for users without a session.
var ErrNotFound = stderrors.New("swipe session not found")

// Store persists sessions keyed by user.
type Store interface {
	Get(ctx context.Context, user string) (*Session, error)
	Put(ctx context.Context, s *Session) error
	Delete(ctx context.Context, user string) error
}

// MemoryStore keeps sessions in process. Stored sessions are copied in and
// out so callers never share state with the store.
type MemoryStore struct {
	mu       sync.RWMutex
	sessions map[string][]byte
}

func NewMemoryStore() *MemoryStore {
	return &MemoryStore{sessions: make(map[string][]byte)}
}

func (m *MemoryStore) Get(_ context.Context, user string) (*Session, error) {
	m.mu.RLock()
	raw, ok := m.sessions[user]
	m.mu.RUnlock()
	if !ok {
		return nil, ErrNotFound
	}
	return decode(raw)
}

func (m *MemoryStore) Put(_ context.Context, s *Session) error {
	raw, err := json.Marshal(s)
	if err != nil {
		return errors.NewStoreFailedError("encode session", err)
	}
	m.mu.Lock()
	m.sessions[s.User] = raw
	m.mu.Unlock()
	return nil
}

func (m *MemoryStore) Delete(_ context.Context, user string) error {
	m.mu.Lock()
	delete(m.sessions, user)
	m.mu.Unlock()
	return nil
}

// RedisKeyPrefix namespaces session keys.
const RedisKeyPrefix = "travelease:swipe:"

// RedisStore keeps each session as a JSON value that expires ttl after its
// last write. A zero ttl keeps sessions forever.
type RedisStore struct {
	client *redis.Client
	ttl    time.Duration
}

func NewRedisStore(client *redis.Client, ttl time.Duration) *RedisStore {
	return &RedisStore{client: client, ttl: ttl}
}

func redisKey(user string) string {
	return RedisKeyPrefix + user
}

func (r *RedisStore) Get(ctx context.Context, user string) (*Session, error) {
	raw, err := r.client.Get(ctx, redisKey(user)).Bytes()
	if err == redis.Nil {
		return nil, ErrNotFound
	}
	if err != nil {
		return nil, errors.NewStoreFailedError("get session", err)
	}
	return decode(raw)
}

func (r *RedisStore) Put(ctx context.Context, s *Session) error {
	raw, err := json.Marshal(s)
	if err != nil {
		return errors.NewStoreFailedError("encode session", err)
	}
	if err := r.client.Set(ctx, redisKey(s.User), raw, r.ttl).Err(); err != nil {
		return errors.NewStoreFailedError("put session", err)
	}
	return nil
}

func (r *RedisStore) Delete(ctx context.Context, user string) error {
	if err := r.client.Del(ctx, redisKey(user)).Err(); err != nil {
		return errors.NewStoreFailedError("delete session", err)
	}
	return nil
}

func decode(raw []byte) (*Session, error) {
	var s Session
	if err := json.Unmarshal(raw, &s); err != nil {
		return nil, errors.NewStoreFailedError("decode session", err)
	}
	return &s, nil
}
