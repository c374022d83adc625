package store

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"

	"github.com/MKhiriev/go-estimate-sync/internal/logger"
)

type sqliteStore struct {
	*DB
	logger *logger.Logger
}

// NewSQLiteStore returns a KeyValueStore backed by the session_overlays table.
// The schema must already be migrated.
func NewSQLiteStore(db *DB, logger *logger.Logger) KeyValueStore {
	return &sqliteStore{DB: db, logger: logger}
}

func (s *sqliteStore) Get(ctx context.Context, key string) ([]byte, error) {
	log := s.logger

	query, args, err := buildGetOverlay(key)
	if err != nil {
		return nil, fmt.Errorf("%w: %w", ErrBuildingSQLQuery, err)
	}

	var value []byte
	err = s.DB.QueryRowContext(ctx, query, args...).Scan(&value)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, ErrKeyNotFound
	}
	if err != nil {
		log.Err(err).
			Str("func", "sqliteStore.Get").
			Str("key", key).
			Msg("failed to query session overlay")
		return nil, fmt.Errorf("%w: %w", ErrExecutingQuery, err)
	}

	return value, nil
}

func (s *sqliteStore) Put(ctx context.Context, key string, value []byte) error {
	if key == "" {
		return ErrEmptyKey
	}
	log := s.logger

	query, args, err := buildPutOverlay(key, value, time.Now().UTC())
	if err != nil {
		return fmt.Errorf("%w: %w", ErrBuildingSQLQuery, err)
	}

	if _, err = s.DB.ExecContext(ctx, query, args...); err != nil {
		log.Err(err).
			Str("func", "sqliteStore.Put").
			Str("key", key).
			Int("size", len(value)).
			Msg("failed to upsert session overlay")
		return fmt.Errorf("%w: %w", ErrExecutingStatement, err)
	}

	return nil
}

func (s *sqliteStore) Delete(ctx context.Context, key string) error {
	log := s.logger

	query, args, err := buildDeleteOverlay(key)
	if err != nil {
		return fmt.Errorf("%w: %w", ErrBuildingSQLQuery, err)
	}

	if _, err = s.DB.ExecContext(ctx, query, args...); err != nil {
		log.Err(err).
			Str("func", "sqliteStore.Delete").
			Str("key", key).
			Msg("failed to delete session overlay")
		return fmt.Errorf("%w: %w", ErrExecutingStatement, err)
	}

	return nil
}

func (s *sqliteStore) Close() error {
	return s.DB.Close()
}
