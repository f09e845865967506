package domain

import (
	"strings"
	"time"
)

// AccessLogEntry records one API request
type AccessLogEntry struct {
	ID          int64     `json:"id"`
	UserID      string    `json:"user_id,omitempty"`
	Username    string    `json:"username,omitempty"`
	Route       string    `json:"route"`
	Method      string    `json:"method"`
	QueryParams string    `json:"query_params,omitempty"`
	Status      int       `json:"status"`
	IPAddress   string    `json:"ip_address"`
	UserAgent   string    `json:"user_agent"`
	DurationMS  int64     `json:"duration_ms"`
	CreatedAt   time.Time `json:"created_at"`
}

// accessLogSkipPrefixes are paths that never produce an access log entry
var accessLogSkipPrefixes = []string{
	"/favicon.ico",
	"/static",
	"/api/v1/auth/login",
	"/api/v1/auth/refresh",
	"/metrics",
	"/health",
	"/swagger",
}

// ShouldLogAccess reports whether requests to path are recorded
func ShouldLogAccess(path string) bool {
	for _, p := range accessLogSkipPrefixes {
		if strings.HasPrefix(path, p) {
			return false
		}
	}
	return true
}
