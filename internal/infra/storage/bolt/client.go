// Package bolt persists walletfeed state in a local BoltDB file. It is the
// default backend when no Redis server is configured.
//
// The file is opened for each operation and closed right after, so several
// walletfeed processes (a running `history` and a `send`) can share it. Bolt
// holds an exclusive lock while a write is open; other processes wait up to
// the lock timeout for it.
package bolt

import (
	"fmt"
	"os"
	"path/filepath"
	"time"

	bolt "go.etcd.io/bbolt"
)

const (
	defaultBucket      = "walletfeed"
	defaultLockTimeout = 5 * time.Second

	fileMode = 0o600
	dirMode  = 0o700
)

type client struct {
	path        string
	bucket      []byte
	lockTimeout time.Duration
}

// Option customizes the client.
type Option func(*client)

// WithBucket replaces the bucket every key is written to. Empty values are ignored.
func WithBucket(name string) Option {
	return func(c *client) {
		if name != "" {
			c.bucket = []byte(name)
		}
	}
}

// WithLockTimeout sets how long an operation waits for another process to
// release the file. Non-positive values are ignored.
func WithLockTimeout(d time.Duration) Option {
	return func(c *client) {
		if d > 0 {
			c.lockTimeout = d
		}
	}
}

// NewClient prepares the database at path, creating missing parent
// directories, the file and the bucket.
func NewClient(path string, opts ...Option) (*client, error) {
	c := &client{
		path:        path,
		bucket:      []byte(defaultBucket),
		lockTimeout: defaultLockTimeout,
	}
	for _, opt := range opts {
		opt(c)
	}

	if err := os.MkdirAll(filepath.Dir(path), dirMode); err != nil {
		return nil, fmt.Errorf("create data directory: %w", err)
	}

	err := c.update(func(tx *bolt.Tx) error {
		_, err := tx.CreateBucketIfNotExists(c.bucket)
		return err
	})
	if err != nil {
		return nil, err
	}

	return c, nil
}

// Path is the location of the database file.
func (c *client) Path() string {
	return c.path
}

func (c *client) open(readOnly bool) (*bolt.DB, error) {
	db, err := bolt.Open(c.path, fileMode, &bolt.Options{Timeout: c.lockTimeout, ReadOnly: readOnly})
	if err != nil {
		return nil, fmt.Errorf("open %s: %w", c.path, err)
	}

	return db, nil
}

func (c *client) view(fn func(*bolt.Tx) error) error {
	db, err := c.open(true)
	if err != nil {
		return err
	}
	defer db.Close()

	return db.View(fn)
}

func (c *client) update(fn func(*bolt.Tx) error) error {
	db, err := c.open(false)
	if err != nil {
		return err
	}

	if err := db.Update(fn); err != nil {
		_ = db.Close()
		return err
	}

	return db.Close()
}
