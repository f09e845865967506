package driven

import (
	"context"

	"github.com/shelfwise/shelfwise-core/internal/core/domain"
)

// AccessLogStore records API requests (PostgreSQL)
type AccessLogStore interface {
	Record(ctx context.Context, entry *domain.AccessLogEntry) error
}
