// Package session stores short-lived server-side state in Redis: admin
// sessions and calendar OAuth state values.
package session

import (
	"context"
	"errors"
	"time"

	"github.com/google/uuid"
	"github.com/redis/go-redis/v9"
)

var ErrNotFound = errors.New("session not found")

type Store interface {
	Put(ctx context.Context, key string, value []byte, ttl time.Duration) error
	Get(ctx context.Context, key string) ([]byte, error)
	Delete(ctx context.Context, key string) error
}

type RedisStore struct {
	rdb    *redis.Client
	prefix string
}

func NewRedisStore(rdb *redis.Client, prefix string) *RedisStore {
	return &RedisStore{rdb: rdb, prefix: prefix}
}

func (s *RedisStore) Put(ctx context.Context, key string, value []byte, ttl time.Duration) error {
	return s.rdb.Set(ctx, s.prefix+key, value, ttl).Err()
}

func (s *RedisStore) Get(ctx context.Context, key string) ([]byte, error) {
	val, err := s.rdb.Get(ctx, s.prefix+key).Bytes()
	if errors.Is(err, redis.Nil) {
		return nil, ErrNotFound
	}
	return val, err
}

func (s *RedisStore) Delete(ctx context.Context, key string) error {
	return s.rdb.Del(ctx, s.prefix+key).Err()
}

const (
	adminPrefix = "admin_session:"
	statePrefix = "oauth_state:"
)

// AdminSessions is the only record of admin logins. There is no in-process
// fallback: without a store, admin login and admin routes are unavailable.
type AdminSessions struct {
	store Store
	ttl   time.Duration
}

func NewAdminSessions(store Store, ttl time.Duration) *AdminSessions {
	return &AdminSessions{store: store, ttl: ttl}
}

func (a *AdminSessions) TTL() time.Duration {
	return a.ttl
}

func (a *AdminSessions) Create(ctx context.Context, userID uuid.UUID) (string, error) {
	sid := uuid.NewString()
	if err := a.store.Put(ctx, adminPrefix+sid, []byte(userID.String()), a.ttl); err != nil {
		return "", err
	}
	return sid, nil
}

func (a *AdminSessions) AdminSessionActive(ctx context.Context, sid string) (bool, error) {
	_, err := a.store.Get(ctx, adminPrefix+sid)
	if errors.Is(err, ErrNotFound) {
		return false, nil
	}
	return err == nil, err
}

func (a *AdminSessions) Revoke(ctx context.Context, sid string) error {
	return a.store.Delete(ctx, adminPrefix+sid)
}

// OAuthStates binds a random state value to a user for the duration of a
// provider redirect. Consume deletes the state so it works once.
type OAuthStates struct {
	store Store
	ttl   time.Duration
}

func NewOAuthStates(store Store, ttl time.Duration) *OAuthStates {
	return &OAuthStates{store: store, ttl: ttl}
}

func (o *OAuthStates) Issue(ctx context.Context, userID uuid.UUID, provider string) (string, error) {
	state := uuid.NewString()
	if err := o.store.Put(ctx, statePrefix+state, []byte(provider+"|"+userID.String()), o.ttl); err != nil {
		return "", err
	}
	return state, nil
}

func (o *OAuthStates) Consume(ctx context.Context, state, provider string) (uuid.UUID, error) {
	val, err := o.store.Get(ctx, statePrefix+state)
	if err != nil {
		return uuid.Nil, err
	}
	_ = o.store.Delete(ctx, statePrefix+state)

	want := provider + "|"
	if len(val) <= len(want) || string(val[:len(want)]) != want {
		return uuid.Nil, ErrNotFound
	}
	return uuid.Parse(string(val[len(want):]))
}
