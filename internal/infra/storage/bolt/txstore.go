package bolt

import (
	"bytes"
	"context"

	bolt "go.etcd.io/bbolt"
	berrors "go.etcd.io/bbolt/errors"

	"github.com/gabapcia/walletfeed/internal/txstore"
)

// Load implements txstore.Storage. A missing key yields nil data and no error.
func (c *client) Load(ctx context.Context, key string) ([]byte, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	var data []byte
	err := c.view(func(tx *bolt.Tx) error {
		b := tx.Bucket(c.bucket)
		if b == nil {
			return berrors.ErrBucketNotFound
		}

		// values are only valid for the life of the transaction
		data = bytes.Clone(b.Get([]byte(key)))
		return nil
	})

	return data, err
}

// Save implements txstore.Storage.
func (c *client) Save(ctx context.Context, key string, data []byte) error {
	if err := ctx.Err(); err != nil {
		return err
	}

	return c.update(func(tx *bolt.Tx) error {
		b, err := tx.CreateBucketIfNotExists(c.bucket)
		if err != nil {
			return err
		}

		return b.Put([]byte(key), data)
	})
}

// Compile-time assertion to ensure *client satisfies the txstore.Storage interface
var _ txstore.Storage = (*client)(nil)
