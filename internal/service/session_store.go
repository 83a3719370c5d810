package service

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/redis/go-redis/v9"
	"github.com/rs/zerolog"

	"github.com/crispai/crisp-backend/internal/config"
	"github.com/crispai/crisp-backend/internal/interview"
)

// ErrSessionNotFound is returned when no session snapshot exists for an id,
// either because it never existed or because its TTL expired.
var ErrSessionNotFound = errors.New("session not found")

// SessionStore persists interview session snapshots between requests. The
// server copy is authoritative; clients only ever see what it returns.
type SessionStore interface {
	Get(ctx context.Context, id string) (interview.Session, error)
	Save(ctx context.Context, s interview.Session) error
	Delete(ctx context.Context, id string) error
}

// RedisSessionStore keeps each snapshot as one JSON value under a per-session
// key with a sliding TTL.
type RedisSessionStore struct {
	rdb *redis.Client
	ttl time.Duration
	log zerolog.Logger
}

// NewRedisSessionStore creates a RedisSessionStore with the configured TTL.
func NewRedisSessionStore(rdb *redis.Client, cfg *config.Config, log zerolog.Logger) *RedisSessionStore {
	return &RedisSessionStore{
		rdb: rdb,
		ttl: cfg.SessionTTL,
		log: log.With().Str("component", "session_store").Logger(),
	}
}

// Get loads a session snapshot.
func (st *RedisSessionStore) Get(ctx context.Context, id string) (interview.Session, error) {
	raw, err := st.rdb.Get(ctx, config.CacheKey.SessionKey(id)).Result()
	if errors.Is(err, redis.Nil) {
		return interview.Session{}, ErrSessionNotFound
	}
	if err != nil {
		return interview.Session{}, fmt.Errorf("load session: %w", err)
	}

	var s interview.Session
	if err := json.Unmarshal([]byte(raw), &s); err != nil {
		// A snapshot that no longer decodes is unrecoverable; treat it as
		// absent so the candidate can start over.
		st.log.Error().Err(err).Str("session_id", id).Msg("Corrupt session snapshot")
		return interview.Session{}, ErrSessionNotFound
	}
	return s, nil
}

// Save writes a snapshot and refreshes its TTL.
func (st *RedisSessionStore) Save(ctx context.Context, s interview.Session) error {
	raw, err := json.Marshal(s)
	if err != nil {
		return fmt.Errorf("encode session: %w", err)
	}
	if err := st.rdb.Set(ctx, config.CacheKey.SessionKey(s.ID), raw, st.ttl).Err(); err != nil {
		return fmt.Errorf("store session: %w", err)
	}
	return nil
}

// Delete removes a snapshot. Deleting an absent session is not an error.
func (st *RedisSessionStore) Delete(ctx context.Context, id string) error {
	if err := st.rdb.Del(ctx, config.CacheKey.SessionKey(id)).Err(); err != nil {
		return fmt.Errorf("delete session: %w", err)
	}
	return nil
}
