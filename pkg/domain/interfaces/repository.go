package interfaces

import (
	"context"
)

// KVStore is the client-durable storage port. Get returns (nil, nil) for a
// missing key.
type KVStore interface {
	Get(ctx context.Context, key string) ([]byte, error)
	Put(ctx context.Context, key string, value []byte) error
	Delete(ctx context.Context, key string) error
}
