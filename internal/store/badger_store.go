package store

import (
	"context"
	"errors"
	"fmt"
	"os"

	"github.com/dgraph-io/badger/v4"

	"github.com/MKhiriev/go-estimate-sync/internal/logger"
)

// BadgerConfig configures the embedded badger medium.
type BadgerConfig struct {
	// Path is the database directory. Ignored when InMemory is set.
	Path string

	// InMemory keeps everything in RAM. Used by tests.
	InMemory bool

	// SyncWrites fsyncs every write.
	SyncWrites bool
}

type badgerLogger struct {
	logger *logger.Logger
}

func (l *badgerLogger) Errorf(format string, args ...interface{}) {
	l.logger.Error().Msgf(format, args...)
}

func (l *badgerLogger) Warningf(format string, args ...interface{}) {
	l.logger.Warn().Msgf(format, args...)
}

func (l *badgerLogger) Infof(format string, args ...interface{}) {
	l.logger.Info().Msgf(format, args...)
}

func (l *badgerLogger) Debugf(format string, args ...interface{}) {
	l.logger.Debug().Msgf(format, args...)
}

type badgerStore struct {
	db     *badger.DB
	logger *logger.Logger
}

// NewBadgerStore opens a badger database and wraps it as a KeyValueStore.
func NewBadgerStore(cfg BadgerConfig, log *logger.Logger) (KeyValueStore, error) {
	if !cfg.InMemory && cfg.Path == "" {
		return nil, errors.New("path is required for persistent badger database")
	}

	var opts badger.Options
	if cfg.InMemory {
		opts = badger.DefaultOptions("").WithInMemory(true)
	} else {
		if err := os.MkdirAll(cfg.Path, 0o750); err != nil {
			return nil, fmt.Errorf("create badger directory %s: %w", cfg.Path, err)
		}
		opts = badger.DefaultOptions(cfg.Path)
	}

	opts = opts.WithSyncWrites(cfg.SyncWrites).
		WithNumVersionsToKeep(1).
		WithLogger(&badgerLogger{logger: log})

	db, err := badger.Open(opts)
	if err != nil {
		log.Err(err).Str("func", "NewBadgerStore").Msg("error opening badger database")
		return nil, fmt.Errorf("open badger database: %w", err)
	}

	return &badgerStore{db: db, logger: log}, nil
}

func (b *badgerStore) Get(ctx context.Context, key string) ([]byte, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	var value []byte
	err := b.db.View(func(txn *badger.Txn) error {
		item, err := txn.Get([]byte(key))
		if err != nil {
			return err
		}
		value, err = item.ValueCopy(nil)
		return err
	})
	switch {
	case errors.Is(err, badger.ErrKeyNotFound):
		return nil, ErrKeyNotFound
	case errors.Is(err, badger.ErrDBClosed):
		return nil, ErrStoreClosed
	case err != nil:
		b.logger.Err(err).Str("func", "badgerStore.Get").Str("key", key).Msg("failed to read session overlay")
		return nil, err
	}

	return value, nil
}

func (b *badgerStore) Put(ctx context.Context, key string, value []byte) error {
	if key == "" {
		return ErrEmptyKey
	}
	if err := ctx.Err(); err != nil {
		return err
	}

	err := b.db.Update(func(txn *badger.Txn) error {
		return txn.Set([]byte(key), value)
	})
	if errors.Is(err, badger.ErrDBClosed) {
		return ErrStoreClosed
	}
	if err != nil {
		b.logger.Err(err).Str("func", "badgerStore.Put").Str("key", key).Msg("failed to write session overlay")
		return err
	}

	return nil
}

func (b *badgerStore) Delete(ctx context.Context, key string) error {
	if err := ctx.Err(); err != nil {
		return err
	}

	err := b.db.Update(func(txn *badger.Txn) error {
		return txn.Delete([]byte(key))
	})
	if errors.Is(err, badger.ErrDBClosed) {
		return ErrStoreClosed
	}
	if err != nil {
		b.logger.Err(err).Str("func", "badgerStore.Delete").Str("key", key).Msg("failed to delete session overlay")
		return err
	}

	return nil
}

func (b *badgerStore) Close() error {
	return b.db.Close()
}
