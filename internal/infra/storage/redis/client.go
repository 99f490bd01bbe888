// Package redis persists walletfeed state in Redis.
package redis

import (
	"context"

	redis "github.com/redis/go-redis/v9"
)

// defaultKeyPrefix namespaces every key written by the client.
const defaultKeyPrefix = "walletfeed"

type client struct {
	conn   *redis.Client
	prefix string
}

// Option customizes the client.
type Option func(*client)

// WithKeyPrefix replaces the namespace prepended to every key. Empty values are ignored.
func WithKeyPrefix(prefix string) Option {
	return func(c *client) {
		if prefix != "" {
			c.prefix = prefix
		}
	}
}

func (c *client) Close() error {
	return c.conn.Close()
}

// NewClient connects to addr and verifies the connection with a PING.
func NewClient(ctx context.Context, addr, username, password string, db int, opts ...Option) (*client, error) {
	conn := redis.NewClient(&redis.Options{
		Addr:     addr,
		Username: username,
		Password: password,
		DB:       db,
	})

	if err := conn.Ping(ctx).Err(); err != nil {
		_ = conn.Close()
		return nil, err
	}

	c := &client{
		conn:   conn,
		prefix: defaultKeyPrefix,
	}
	for _, opt := range opts {
		opt(c)
	}

	return c, nil
}
