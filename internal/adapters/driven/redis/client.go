// Package redis implements session, lock, artifact and cache stores on Redis.
package redis

import (
	"context"
	"fmt"
	"strings"

	"github.com/redis/go-redis/v9"
)

// DefaultNamespace prefixes every key written by this package.
const DefaultNamespace = "shelfwise"

// Connect parses a redis:// URL, opens a client and verifies it with PING.
func Connect(ctx context.Context, url string) (*redis.Client, error) {
	opts, err := redis.ParseURL(url)
	if err != nil {
		return nil, fmt.Errorf("parse redis url: %w", err)
	}
	client := redis.NewClient(opts)
	if err := client.Ping(ctx).Err(); err != nil {
		client.Close()
		return nil, fmt.Errorf("ping redis: %w", err)
	}
	return client, nil
}

// keyspace builds namespaced keys.
type keyspace string

func (k keyspace) key(parts ...string) string {
	return string(k) + ":" + strings.Join(parts, ":")
}
