package redis

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/redis/go-redis/v9"

	"github.com/shelfwise/shelfwise-core/internal/core/domain"
	"github.com/shelfwise/shelfwise-core/internal/core/ports/driven"
)

// Verify interface compliance
var _ driven.SessionStore = (*SessionStore)(nil)

// userSessionsTTL bounds how long a user's session set outlives its members.
const userSessionsTTL = 30 * 24 * time.Hour

// SessionStore implements driven.SessionStore using Redis. Sessions expire
// through key TTLs; token and refresh token lookups go through index keys.
type SessionStore struct {
	client *redis.Client
	keys   keyspace
}

// NewSessionStore creates a new Redis-backed SessionStore
func NewSessionStore(client *redis.Client) *SessionStore {
	return &SessionStore{client: client, keys: keyspace(DefaultNamespace + ":session")}
}

func (s *SessionStore) idKey(id string) string       { return s.keys.key("id", id) }
func (s *SessionStore) tokenKey(tok string) string   { return s.keys.key("token", tok) }
func (s *SessionStore) refreshKey(tok string) string { return s.keys.key("refresh", tok) }
func (s *SessionStore) userKey(userID string) string { return s.keys.key("user", userID) }

// Save stores a session until its ExpiresAt. Already expired sessions are
// dropped silently.
func (s *SessionStore) Save(ctx context.Context, session *domain.Session) error {
	ttl := time.Until(session.ExpiresAt)
	if ttl <= 0 {
		return nil
	}

	data, err := json.Marshal(session)
	if err != nil {
		return fmt.Errorf("failed to marshal session: %w", err)
	}

	_, err = s.client.TxPipelined(ctx, func(pipe redis.Pipeliner) error {
		pipe.Set(ctx, s.idKey(session.ID), data, ttl)
		pipe.Set(ctx, s.tokenKey(session.Token), session.ID, ttl)
		if session.RefreshToken != "" {
			pipe.Set(ctx, s.refreshKey(session.RefreshToken), session.ID, ttl)
		}
		pipe.SAdd(ctx, s.userKey(session.UserID), session.ID)
		pipe.Expire(ctx, s.userKey(session.UserID), userSessionsTTL)
		return nil
	})
	if err != nil {
		return fmt.Errorf("failed to save session: %w", err)
	}
	return nil
}

// Get retrieves a session by ID
func (s *SessionStore) Get(ctx context.Context, id string) (*domain.Session, error) {
	data, err := s.client.Get(ctx, s.idKey(id)).Bytes()
	if errors.Is(err, redis.Nil) {
		return nil, domain.ErrNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("failed to get session: %w", err)
	}

	var session domain.Session
	if err := json.Unmarshal(data, &session); err != nil {
		return nil, fmt.Errorf("failed to unmarshal session: %w", err)
	}
	return &session, nil
}

// GetByToken retrieves a session by token value
func (s *SessionStore) GetByToken(ctx context.Context, token string) (*domain.Session, error) {
	return s.resolve(ctx, s.tokenKey(token))
}

// GetByRefreshToken retrieves a session by refresh token value
func (s *SessionStore) GetByRefreshToken(ctx context.Context, refreshToken string) (*domain.Session, error) {
	return s.resolve(ctx, s.refreshKey(refreshToken))
}

func (s *SessionStore) resolve(ctx context.Context, indexKey string) (*domain.Session, error) {
	id, err := s.client.Get(ctx, indexKey).Result()
	if errors.Is(err, redis.Nil) {
		return nil, domain.ErrNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("failed to resolve session: %w", err)
	}
	return s.Get(ctx, id)
}

// Delete deletes a session. Deleting a missing session is not an error.
func (s *SessionStore) Delete(ctx context.Context, id string) error {
	session, err := s.Get(ctx, id)
	if errors.Is(err, domain.ErrNotFound) {
		return nil
	}
	if err != nil {
		return err
	}
	return s.remove(ctx, session)
}

// DeleteByToken deletes a session by token
func (s *SessionStore) DeleteByToken(ctx context.Context, token string) error {
	session, err := s.GetByToken(ctx, token)
	if errors.Is(err, domain.ErrNotFound) {
		return nil
	}
	if err != nil {
		return err
	}
	return s.remove(ctx, session)
}

// DeleteByUser deletes all sessions for a user (logout everywhere)
func (s *SessionStore) DeleteByUser(ctx context.Context, userID string) error {
	ids, err := s.client.SMembers(ctx, s.userKey(userID)).Result()
	if err != nil {
		return fmt.Errorf("failed to get user sessions: %w", err)
	}
	for _, id := range ids {
		// expired members are already gone
		_ = s.Delete(ctx, id)
	}
	return s.client.Del(ctx, s.userKey(userID)).Err()
}

// ListByUser lists all active sessions for a user and prunes members whose
// session has expired.
func (s *SessionStore) ListByUser(ctx context.Context, userID string) ([]*domain.Session, error) {
	ids, err := s.client.SMembers(ctx, s.userKey(userID)).Result()
	if err != nil {
		return nil, fmt.Errorf("failed to get user sessions: %w", err)
	}

	var (
		sessions []*domain.Session
		stale    []interface{}
	)
	for _, id := range ids {
		session, err := s.Get(ctx, id)
		if errors.Is(err, domain.ErrNotFound) {
			stale = append(stale, id)
			continue
		}
		if err != nil {
			return nil, err
		}
		if session.IsExpired() {
			stale = append(stale, id)
			continue
		}
		sessions = append(sessions, session)
	}

	if len(stale) > 0 {
		s.client.SRem(ctx, s.userKey(userID), stale...)
	}
	return sessions, nil
}

func (s *SessionStore) remove(ctx context.Context, session *domain.Session) error {
	_, err := s.client.TxPipelined(ctx, func(pipe redis.Pipeliner) error {
		pipe.Del(ctx, s.idKey(session.ID), s.tokenKey(session.Token))
		if session.RefreshToken != "" {
			pipe.Del(ctx, s.refreshKey(session.RefreshToken))
		}
		pipe.SRem(ctx, s.userKey(session.UserID), session.ID)
		return nil
	})
	if err != nil {
		return fmt.Errorf("failed to delete session: %w", err)
	}
	return nil
}
