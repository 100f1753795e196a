package config

import (
	"log/slog"
	"os"
	"path/filepath"

	"github.com/m-mizutani/goerr/v2"
	"github.com/secmon-lab/bellkey/pkg/domain/interfaces"
	"github.com/secmon-lab/bellkey/pkg/repository/bolt"
	"github.com/secmon-lab/bellkey/pkg/repository/memory"
	"github.com/secmon-lab/bellkey/pkg/utils/errutil"
	"github.com/urfave/cli/v3"
)

// StoreMemory keeps the identity for the lifetime of the process only.
const StoreMemory = "memory"

type Store struct {
	path string
}

func defaultStorePath() string {
	dir, err := os.UserConfigDir()
	if err != nil {
		return "bellkey.db"
	}
	return filepath.Join(dir, "bellkey", "bellkey.db")
}

func (x *Store) Flags() []cli.Flag {
	return []cli.Flag{
		&cli.StringFlag{
			Name:        "store",
			Usage:       "Identity store: bbolt database path or 'memory'",
			Category:    "Store",
			Sources:     cli.EnvVars("BELLKEY_STORE"),
			Value:       defaultStorePath(),
			Destination: &x.path,
		},
	}
}

func (x Store) LogValue() slog.Value {
	return slog.GroupValue(
		slog.String("path", x.path),
	)
}

// Configure opens the store. The returned closer is never nil.
func (x *Store) Configure() (interfaces.KVStore, func(), error) {
	if x.path == "" || x.path == StoreMemory {
		return memory.New(), func() {}, nil
	}

	if err := os.MkdirAll(filepath.Dir(x.path), 0700); err != nil {
		return nil, func() {}, goerr.Wrap(err, "failed to create store directory",
			goerr.TV(errutil.FilePathKey, x.path))
	}

	db, err := bolt.Open(x.path)
	if err != nil {
		return nil, func() {}, err
	}
	return db, func() { _ = db.Close() }, nil
}
