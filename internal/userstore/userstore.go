// Package userstore persists per-user preferences, state and history as a
// flat JSON document keyed by username. Writes are best-effort and
// non-atomic: the last writer wins.
package userstore

import (
	"context"
	"encoding/json"
	"os"
	"path/filepath"
	"sync"
	"time"

	"github.com/redis/go-redis/v9"

	"travelease/internal/common/errors"
	"travelease/internal/common/logger"
)

// Top-level keys every user document starts with.
const (
	KeyPreferences = "preferences"
	KeyState       = "state"
	KeyHistory     = "history"
)

// User is one user's document.
type User map[string]interface{}

// NewUser returns the empty document.
func NewUser() User {
	return User{
		KeyPreferences: map[string]interface{}{},
		KeyState:       map[string]interface{}{},
		KeyHistory:     []interface{}{},
	}
}

// History returns the history entries, oldest first.
func (u User) History() []interface{} {
	h, _ := u[KeyHistory].([]interface{})
	return h
}

// Store reads and updates user documents.
type Store interface {
	Get(ctx context.Context, key string) (User, error)
	Update(ctx context.Context, key string, updates map[string]interface{}) (User, error)
}

// Merge applies updates to u and returns the result; u is not modified. A map
// value merges one level deep into an existing map value. Any other value
// overwrites.
func Merge(u User, updates map[string]interface{}) User {
	out := make(User, len(u)+len(updates))
	for k, v := range u {
		out[k] = v
	}
	for k, v := range updates {
		nv, isMap := v.(map[string]interface{})
		cur, curIsMap := out[k].(map[string]interface{})
		if !isMap || !curIsMap {
			out[k] = v
			continue
		}
		merged := make(map[string]interface{}, len(cur)+len(nv))
		for ck, cv := range cur {
			merged[ck] = cv
		}
		for nk, nvv := range nv {
			merged[nk] = nvv
		}
		out[k] = merged
	}
	return out
}

// normalize turns typed values into their JSON form so stored documents
// merge the same way however they were written.
func normalize(updates map[string]interface{}) (map[string]interface{}, error) {
	raw, err := json.Marshal(updates)
	if err != nil {
		return nil, err
	}
	var out map[string]interface{}
	if err := json.Unmarshal(raw, &out); err != nil {
		return nil, err
	}
	return out, nil
}

// AppendHistory adds entry to the user's history.
func AppendHistory(ctx context.Context, s Store, key string, entry interface{}) error {
	u, err := s.Get(ctx, key)
	if err != nil {
		return err
	}
	history := append(append([]interface{}{}, u.History()...), entry)
	_, err = s.Update(ctx, key, map[string]interface{}{KeyHistory: history})
	return err
}

// FileStore keeps every user in one JSON file, rewritten on each update.
// A missing or corrupt file reads as empty.
type FileStore struct {
	mu     sync.Mutex
	path   string
	logger logger.Logger
}

func NewFileStore(path string, log logger.Logger) *FileStore {
	return &FileStore{path: path, logger: log.With(map[string]interface{}{"component": "userstore"})}
}

func (f *FileStore) Get(_ context.Context, key string) (User, error) {
	f.mu.Lock()
	defer f.mu.Unlock()

	doc := f.load()
	if u, ok := doc[key]; ok {
		return u, nil
	}
	return NewUser(), nil
}

func (f *FileStore) Update(_ context.Context, key string, updates map[string]interface{}) (User, error) {
	norm, err := normalize(updates)
	if err != nil {
		return nil, errors.NewStoreFailedError("encode user update", err)
	}

	f.mu.Lock()
	defer f.mu.Unlock()

	doc := f.load()
	u, ok := doc[key]
	if !ok {
		u = NewUser()
	}
	u = Merge(u, norm)
	doc[key] = u

	if err := f.save(doc); err != nil {
		return nil, err
	}
	return u, nil
}

func (f *FileStore) load() map[string]User {
	doc := map[string]User{}
	raw, err := os.ReadFile(f.path)
	if err != nil {
		if !os.IsNotExist(err) {
			f.logger.Warn("Reading user store failed", map[string]interface{}{"path": f.path, "error": err.Error()})
		}
		return doc
	}
	if err := json.Unmarshal(raw, &doc); err != nil {
		f.logger.Warn("User store is corrupt, starting empty", map[string]interface{}{"path": f.path, "error": err.Error()})
		return map[string]User{}
	}
	return doc
}

func (f *FileStore) save(doc map[string]User) error {
	raw, err := json.MarshalIndent(doc, "", "  ")
	if err != nil {
		return errors.NewStoreFailedError("encode user store", err)
	}
	if dir := filepath.Dir(f.path); dir != "" {
		if err := os.MkdirAll(dir, 0o755); err != nil {
			return errors.NewStoreFailedError("create user store dir", err)
		}
	}
	if err := os.WriteFile(f.path, raw, 0o644); err != nil {
		return errors.NewStoreFailedError("write user store", err)
	}
	return nil
}

// RedisKeyPrefix namespaces user keys.
const RedisKeyPrefix = "travelease:user:"

// RedisStore keeps each user as one JSON value.
type RedisStore struct {
	client *redis.Client
	ttl    time.Duration
}

func NewRedisStore(client *redis.Client, ttl time.Duration) *RedisStore {
	return &RedisStore{client: client, ttl: ttl}
}

func (r *RedisStore) Get(ctx context.Context, key string) (User, error) {
	raw, err := r.client.Get(ctx, RedisKeyPrefix+key).Result()
	if err == redis.Nil {
		return NewUser(), nil
	}
	if err != nil {
		return nil, errors.NewStoreFailedError("get user", err)
	}
	var u User
	if err := json.Unmarshal([]byte(raw), &u); err != nil {
		return NewUser(), nil
	}
	return u, nil
}

func (r *RedisStore) Update(ctx context.Context, key string, updates map[string]interface{}) (User, error) {
	norm, err := normalize(updates)
	if err != nil {
		return nil, errors.NewStoreFailedError("encode user update", err)
	}
	u, err := r.Get(ctx, key)
	if err != nil {
		return nil, err
	}
	u = Merge(u, norm)

	raw, err := json.Marshal(u)
	if err != nil {
		return nil, errors.NewStoreFailedError("encode user", err)
	}
	if err := r.client.Set(ctx, RedisKeyPrefix+key, string(raw), r.ttl).Err(); err != nil {
		return nil, errors.NewStoreFailedError("put user", err)
	}
	return u, nil
}

// MemoryStore is a Store for tests and single-process runs.
type MemoryStore struct {
	mu    sync.Mutex
	users map[string]User
}

func NewMemoryStore() *MemoryStore {
	return &MemoryStore{users: map[string]User{}}
}

func (m *MemoryStore) Get(_ context.Context, key string) (User, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if u, ok := m.users[key]; ok {
		return Merge(u, nil), nil
	}
	return NewUser(), nil
}

func (m *MemoryStore) Update(_ context.Context, key string, updates map[string]interface{}) (User, error) {
	norm, err := normalize(updates)
	if err != nil {
		return nil, errors.NewStoreFailedError("encode user update", err)
	}
	m.mu.Lock()
	defer m.mu.Unlock()
	u, ok := m.users[key]
	if !ok {
		u = NewUser()
	}
	u = Merge(u, norm)
	m.users[key] = u
	return Merge(u, nil), nil
}
