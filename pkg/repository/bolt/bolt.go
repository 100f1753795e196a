// Package bolt implements the client-durable KVStore on a bbolt file.
package bolt

import (
	"context"
	"path/filepath"
	"slices"
	"time"

	"github.com/m-mizutani/goerr/v2"
	"github.com/secmon-lab/bellkey/pkg/domain/interfaces"
	"github.com/secmon-lab/bellkey/pkg/utils/errutil"
	bolt "go.etcd.io/bbolt"
)

const (
	DefaultBucket = "bellkey"

	openTimeout = 3 * time.Second
)

type Store struct {
	db     *bolt.DB
	bucket []byte
	eb     *goerr.Builder
}

var _ interfaces.KVStore = &Store{}

type Option func(*Store)

func WithBucket(name string) Option {
	return func(s *Store) {
		s.bucket = []byte(name)
	}
}

// Open opens (creating if needed) the bbolt file at path. The file is
// locked for the lifetime of the Store; call Close to release it.
func Open(path string, opts ...Option) (*Store, error) {
	s := &Store{
		bucket: []byte(DefaultBucket),
	}
	for _, opt := range opts {
		opt(s)
	}
	s.eb = goerr.NewBuilder(
		goerr.TV(errutil.StoreKey, "bolt"),
		goerr.TV(errutil.FilePathKey, path),
		goerr.TV(errutil.BucketKey, string(s.bucket)),
	)

	db, err := bolt.Open(filepath.Clean(path), 0600, &bolt.Options{Timeout: openTimeout})
	if err != nil {
		return nil, s.eb.Wrap(err, "failed to open bolt database")
	}

	if err := db.Update(func(tx *bolt.Tx) error {
		_, err := tx.CreateBucketIfNotExists(s.bucket)
		return err
	}); err != nil {
		_ = db.Close()
		return nil, s.eb.Wrap(err, "failed to create bucket")
	}

	s.db = db
	return s, nil
}

func (s *Store) Close() error {
	if err := s.db.Close(); err != nil {
		return s.eb.Wrap(err, "failed to close bolt database")
	}
	return nil
}

func (s *Store) Get(ctx context.Context, key string) ([]byte, error) {
	var value []byte
	if err := s.db.View(func(tx *bolt.Tx) error {
		bkt := tx.Bucket(s.bucket)
		if bkt == nil {
			return goerr.New("bucket not found")
		}
		// bbolt values are only valid inside the transaction.
		if raw := bkt.Get([]byte(key)); raw != nil {
			value = slices.Clone(raw)
		}
		return nil
	}); err != nil {
		return nil, s.eb.Wrap(err, "failed to get value", goerr.V("key", key))
	}
	return value, nil
}

func (s *Store) Put(ctx context.Context, key string, value []byte) error {
	if key == "" {
		return s.eb.New("empty key")
	}
	if err := s.db.Update(func(tx *bolt.Tx) error {
		return tx.Bucket(s.bucket).Put([]byte(key), value)
	}); err != nil {
		return s.eb.Wrap(err, "failed to put value", goerr.V("key", key))
	}
	return nil
}

func (s *Store) Delete(ctx context.Context, key string) error {
	if err := s.db.Update(func(tx *bolt.Tx) error {
		return tx.Bucket(s.bucket).Delete([]byte(key))
	}); err != nil {
		return s.eb.Wrap(err, "failed to delete value", goerr.V("key", key))
	}
	return nil
}
