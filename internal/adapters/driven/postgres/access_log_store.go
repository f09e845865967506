package postgres

import (
	"context"

	"github.com/shelfwise/shelfwise-core/internal/core/domain"
	"github.com/shelfwise/shelfwise-core/internal/core/ports/driven"
)

// Verify interface compliance
var _ driven.AccessLogStore = (*AccessLogStore)(nil)

// AccessLogStore implements driven.AccessLogStore using PostgreSQL
type AccessLogStore struct {
	db *DB
}

// NewAccessLogStore creates a new AccessLogStore
func NewAccessLogStore(db *DB) *AccessLogStore {
	return &AccessLogStore{db: db}
}

// Record appends one request to route_access_log
func (s *AccessLogStore) Record(ctx context.Context, entry *domain.AccessLogEntry) error {
	_, err := s.db.ExecContext(ctx, `
		INSERT INTO route_access_log
			(user_id, username, route, method, query_params, status, ip_address, user_agent, duration_ms, created_at)
		VALUES (NULLIF($1, ''), NULLIF($2, ''), $3, $4, $5, $6, $7, $8, $9, $10)`,
		entry.UserID, entry.Username, entry.Route, entry.Method, entry.QueryParams,
		entry.Status, entry.IPAddress, entry.UserAgent, entry.DurationMS, entry.CreatedAt,
	)
	return err
}
