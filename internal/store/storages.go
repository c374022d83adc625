package store

import (
	"context"
	"fmt"

	"github.com/MKhiriev/go-estimate-sync/internal/config"
	"github.com/MKhiriev/go-estimate-sync/internal/logger"
)

// Storage driver names accepted by NewKeyValueStore.
const (
	DriverSQLite = "sqlite"
	DriverBadger = "badger"
	DriverFile   = "file"
	DriverMemory = "memory"
)

// NewKeyValueStore opens the medium selected by cfg.Driver. The sqlite
// driver also applies pending schema migrations.
func NewKeyValueStore(ctx context.Context, cfg config.Storage, log *logger.Logger) (KeyValueStore, error) {
	switch cfg.Driver {
	case DriverSQLite:
		db, err := NewConnectSQLite(ctx, cfg.Path, log)
		if err != nil {
			return nil, err
		}
		if err = db.Migrate(); err != nil {
			log.Err(err).Str("func", "NewKeyValueStore").Msg("error migrating local database")
			_ = db.Close()
			return nil, err
		}
		return NewSQLiteStore(db, log), nil
	case DriverBadger:
		return NewBadgerStore(BadgerConfig{Path: cfg.Path, SyncWrites: true}, log)
	case DriverFile:
		return NewFileStore(cfg.Path, log)
	case DriverMemory:
		return NewMemoryStore(), nil
	default:
		return nil, fmt.Errorf("%w: %q", ErrUnknownDriver, cfg.Driver)
	}
}
