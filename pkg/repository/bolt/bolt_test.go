package bolt_test

import (
	"context"
	"path/filepath"
	"testing"

	"github.com/m-mizutani/gt"
	"github.com/secmon-lab/bellkey/pkg/repository/bolt"
)

func TestStore(t *testing.T) {
	ctx := context.Background()
	path := filepath.Join(t.TempDir(), "identity.db")

	s, err := bolt.Open(path)
	gt.NoError(t, err)

	v, err := s.Get(ctx, "absent")
	gt.NoError(t, err)
	gt.Nil(t, v)

	gt.NoError(t, s.Put(ctx, "user_id", []byte("abc")))
	v, err = s.Get(ctx, "user_id")
	gt.NoError(t, err)
	gt.Equal(t, string(v), "abc")

	gt.Error(t, s.Put(ctx, "", []byte("x")))
	gt.NoError(t, s.Close())

	t.Run("value survives reopen", func(t *testing.T) {
		s, err := bolt.Open(path)
		gt.NoError(t, err)
		defer func() { gt.NoError(t, s.Close()) }()

		v, err := s.Get(ctx, "user_id")
		gt.NoError(t, err)
		gt.Equal(t, string(v), "abc")

		gt.NoError(t, s.Delete(ctx, "user_id"))
		v, err = s.Get(ctx, "user_id")
		gt.NoError(t, err)
		gt.Nil(t, v)
	})

	t.Run("buckets are isolated", func(t *testing.T) {
		s, err := bolt.Open(path, bolt.WithBucket("other"))
		gt.NoError(t, err)
		defer func() { gt.NoError(t, s.Close()) }()

		gt.NoError(t, s.Put(ctx, "k", []byte("v")))
		v, err := s.Get(ctx, "user_id")
		gt.NoError(t, err)
		gt.Nil(t, v)
	})
}

func TestOpenInvalidPath(t *testing.T) {
	_, err := bolt.Open(filepath.Join(t.TempDir(), "missing", "dir", "identity.db"))
	gt.Error(t, err)
}
