package services

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"sync"
	"time"

	"verifix/models"

	"github.com/google/uuid"
	"github.com/redis/go-redis/v9"
)

var ErrSessionNotFound = errors.New("session not found")

// SessionStore owns session lifetimes: created on login, destroyed on logout
type SessionStore interface {
	Create(ctx context.Context, user models.Principal, ttl time.Duration) (models.Session, error)
	Get(ctx context.Context, id string) (models.Session, error)
	Destroy(ctx context.Context, id string) error
}

func newSession(user models.Principal, ttl time.Duration, now time.Time) models.Session {
	return models.Session{
		ID:        uuid.NewString(),
		User:      user,
		CreatedAt: now,
		ExpiresAt: now.Add(ttl),
	}
}

// MemorySessionStore keeps sessions in process memory
type MemorySessionStore struct {
	mu       sync.Mutex
	sessions map[string]models.Session
	now      func() time.Time
}

func NewMemorySessionStore() *MemorySessionStore {
	return &MemorySessionStore{
		sessions: make(map[string]models.Session),
		now:      time.Now,
	}
}

func (s *MemorySessionStore) Create(ctx context.Context, user models.Principal, ttl time.Duration) (models.Session, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	now := s.now()
	for id, sess := range s.sessions {
		if sess.Expired(now) {
			delete(s.sessions, id)
		}
	}
	sess := newSession(user, ttl, now)
	s.sessions[sess.ID] = sess
	return sess, nil
}

func (s *MemorySessionStore) Get(ctx context.Context, id string) (models.Session, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	sess, ok := s.sessions[id]
	if !ok {
		return models.Session{}, ErrSessionNotFound
	}
	if sess.Expired(s.now()) {
		delete(s.sessions, id)
		return models.Session{}, ErrSessionNotFound
	}
	return sess, nil
}

func (s *MemorySessionStore) Destroy(ctx context.Context, id string) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if _, ok := s.sessions[id]; !ok {
		return ErrSessionNotFound
	}
	delete(s.sessions, id)
	return nil
}

// RedisSessionStore keeps sessions in Redis so relay replicas share them
type RedisSessionStore struct {
	rdb *redis.Client
}

func NewRedisSessionStore(rdb *redis.Client) *RedisSessionStore {
	return &RedisSessionStore{rdb: rdb}
}

func sessionKey(id string) string {
	return "session:" + id
}

func (s *RedisSessionStore) Create(ctx context.Context, user models.Principal, ttl time.Duration) (models.Session, error) {
	sess := newSession(user, ttl, time.Now())
	data, err := json.Marshal(sess)
	if err != nil {
		return models.Session{}, fmt.Errorf("encoding session: %w", err)
	}
	if err := s.rdb.Set(ctx, sessionKey(sess.ID), data, ttl).Err(); err != nil {
		return models.Session{}, fmt.Errorf("storing session: %w", err)
	}
	return sess, nil
}

func (s *RedisSessionStore) Get(ctx context.Context, id string) (models.Session, error) {
	data, err := s.rdb.Get(ctx, sessionKey(id)).Bytes()
	if err == redis.Nil {
		return models.Session{}, ErrSessionNotFound
	} else if err != nil {
		return models.Session{}, fmt.Errorf("loading session: %w", err)
	}

	var sess models.Session
	if err := json.Unmarshal(data, &sess); err != nil {
		return models.Session{}, fmt.Errorf("decoding session: %w", err)
	}
	return sess, nil
}

func (s *RedisSessionStore) Destroy(ctx context.Context, id string) error {
	n, err := s.rdb.Del(ctx, sessionKey(id)).Result()
	if err != nil {
		return fmt.Errorf("deleting session: %w", err)
	}
	if n == 0 {
		return ErrSessionNotFound
	}
	return nil
}
