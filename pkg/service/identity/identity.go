// Package identity owns the anonymous user ID of a client installation.
package identity

import (
	"context"
	"encoding/json"
	"sync"
	"time"

	"github.com/m-mizutani/goerr/v2"
	"github.com/secmon-lab/bellkey/pkg/domain/interfaces"
	"github.com/secmon-lab/bellkey/pkg/domain/types"
	"github.com/secmon-lab/bellkey/pkg/utils/clock"
	"github.com/secmon-lab/bellkey/pkg/utils/logging"
)

// StorageKey is the KVStore key holding the identity record.
const StorageKey = "identity"

type Record struct {
	UserID    types.UserID `json:"user_id" yaml:"user_id"`
	CreatedAt time.Time    `json:"created_at" yaml:"created_at"`
	Ephemeral bool         `json:"-" yaml:"ephemeral"`
}

// Store hands out exactly one user ID per storage scope. When the backing
// store is unusable it falls back to an ID that lives as long as the Store
// value.
type Store struct {
	kv interfaces.KVStore

	mu        sync.Mutex
	ephemeral *Record
}

func New(kv interfaces.KVStore) *Store {
	return &Store{kv: kv}
}

// GetOrCreate returns the persisted user ID, creating and persisting a new
// one on first use. It has no error path.
func (x *Store) GetOrCreate(ctx context.Context) types.UserID {
	x.mu.Lock()
	defer x.mu.Unlock()

	if x.ephemeral != nil {
		return x.ephemeral.UserID
	}

	logger := logging.From(ctx)

	record, err := x.load(ctx)
	if err != nil {
		logger.Warn("identity storage unavailable, using ephemeral user ID", logging.ErrAttr(err))
		return x.degrade(ctx).UserID
	}
	if record != nil {
		return record.UserID
	}

	record = &Record{
		UserID:    types.NewUserID(),
		CreatedAt: clock.Now(ctx).UTC(),
	}
	raw, err := json.Marshal(record)
	if err != nil {
		logger.Warn("failed to encode identity record, using ephemeral user ID", logging.ErrAttr(err))
		return x.degrade(ctx).UserID
	}
	if err := x.kv.Put(ctx, StorageKey, raw); err != nil {
		logger.Warn("failed to persist user ID, using ephemeral user ID", logging.ErrAttr(err))
		x.ephemeral = &Record{UserID: record.UserID, CreatedAt: record.CreatedAt, Ephemeral: true}
		return record.UserID
	}

	logger.Info("created user ID", "user_id", record.UserID)
	return record.UserID
}

// Lookup returns the current record without creating one. It returns nil if
// no identity exists yet.
func (x *Store) Lookup(ctx context.Context) (*Record, error) {
	x.mu.Lock()
	defer x.mu.Unlock()

	if x.ephemeral != nil {
		r := *x.ephemeral
		return &r, nil
	}
	return x.load(ctx)
}

// Reset removes the persisted identity so that the next GetOrCreate yields a
// new user ID.
func (x *Store) Reset(ctx context.Context) error {
	x.mu.Lock()
	defer x.mu.Unlock()

	x.ephemeral = nil
	if err := x.kv.Delete(ctx, StorageKey); err != nil {
		return goerr.Wrap(err, "failed to delete identity")
	}
	return nil
}

func (x *Store) degrade(ctx context.Context) *Record {
	x.ephemeral = &Record{
		UserID:    types.NewUserID(),
		CreatedAt: clock.Now(ctx).UTC(),
		Ephemeral: true,
	}
	return x.ephemeral
}

func (x *Store) load(ctx context.Context) (*Record, error) {
	raw, err := x.kv.Get(ctx, StorageKey)
	if err != nil {
		return nil, goerr.Wrap(err, "failed to read identity")
	}
	if len(raw) == 0 {
		return nil, nil
	}

	var record Record
	if err := json.Unmarshal(raw, &record); err != nil {
		// A value written by an older client, either bare or as a JSON
		// string, is still a valid ID.
		var legacy string
		if json.Unmarshal(raw, &legacy) != nil {
			legacy = string(raw)
		}
		if legacy == "" {
			return nil, nil
		}
		return &Record{UserID: types.UserID(legacy)}, nil
	}
	// A readable record without a user ID is treated as absent so that
	// GetOrCreate replaces it.
	if record.UserID.Validate() != nil {
		logging.From(ctx).Warn("stored identity has no user ID, replacing it")
		return nil, nil
	}
	return &record, nil
}
