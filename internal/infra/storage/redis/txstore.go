package redis

import (
	"context"
	"errors"
	"fmt"

	redis "github.com/redis/go-redis/v9"

	"github.com/gabapcia/walletfeed/internal/txstore"
)

// txstoreKey returns the Redis key holding a local transaction register.
//
// Format: "{prefix}:txstore:{key}"
func (c *client) txstoreKey(key string) string {
	return fmt.Sprintf("%s:txstore:%s", c.prefix, key)
}

// Load implements txstore.Storage. A missing key yields nil data and no error.
func (c *client) Load(ctx context.Context, key string) ([]byte, error) {
	data, err := c.conn.Get(ctx, c.txstoreKey(key)).Bytes()
	if errors.Is(err, redis.Nil) {
		return nil, nil
	}

	return data, err
}

// Save implements txstore.Storage. Registers never expire; retention is
// enforced by the store's sweep.
func (c *client) Save(ctx context.Context, key string, data []byte) error {
	return c.conn.Set(ctx, c.txstoreKey(key), data, 0).Err()
}

// Compile-time assertion to ensure *client satisfies the txstore.Storage interface
var _ txstore.Storage = (*client)(nil)
