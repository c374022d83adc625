// SPDX-License-Identifier: Apache-2.0
// Copyright 2026 Rasul Khiriev

package store

import (
	"context"
	"database/sql"
	"errors"
	"testing"

	"github.com/DATA-DOG/go-sqlmock"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/MKhiriev/go-estimate-sync/internal/logger"
)

const (
	getOverlaySQL    = "SELECT value FROM session_overlays WHERE doc_key = ?"
	putOverlaySQL    = "INSERT INTO session_overlays (doc_key,value,updated_at) VALUES (?,?,?) " + upsertOverlaySuffix
	deleteOverlaySQL = "DELETE FROM session_overlays WHERE doc_key = ?"
)

func newMockSQLiteStore(t *testing.T) (KeyValueStore, sqlmock.Sqlmock) {
	t.Helper()

	db, mock, err := sqlmock.New(sqlmock.QueryMatcherOption(sqlmock.QueryMatcherEqual))
	require.NoError(t, err)

	s := NewSQLiteStore(&DB{DB: db, logger: logger.Nop()}, logger.Nop())
	t.Cleanup(func() { _ = db.Close() })

	return s, mock
}

func TestSQLiteStore_Get(t *testing.T) {
	ctx := context.Background()

	t.Run("returns stored value", func(t *testing.T) {
		s, mock := newMockSQLiteStore(t)
		mock.ExpectQuery(getOverlaySQL).
			WithArgs("estimate-session/D1").
			WillReturnRows(sqlmock.NewRows([]string{"value"}).AddRow([]byte(`{"v":1}`)))

		got, err := s.Get(ctx, "estimate-session/D1")
		require.NoError(t, err)
		assert.Equal(t, []byte(`{"v":1}`), got)
		require.NoError(t, mock.ExpectationsWereMet())
	})

	t.Run("no rows maps to ErrKeyNotFound", func(t *testing.T) {
		s, mock := newMockSQLiteStore(t)
		mock.ExpectQuery(getOverlaySQL).
			WithArgs("missing").
			WillReturnError(sql.ErrNoRows)

		_, err := s.Get(ctx, "missing")
		require.ErrorIs(t, err, ErrKeyNotFound)
	})

	t.Run("driver error is wrapped", func(t *testing.T) {
		s, mock := newMockSQLiteStore(t)
		mock.ExpectQuery(getOverlaySQL).
			WithArgs("k").
			WillReturnError(errors.New("disk I/O error"))

		_, err := s.Get(ctx, "k")
		require.ErrorIs(t, err, ErrExecutingQuery)
	})
}

func TestSQLiteStore_Put(t *testing.T) {
	ctx := context.Background()

	t.Run("upserts value", func(t *testing.T) {
		s, mock := newMockSQLiteStore(t)
		mock.ExpectExec(putOverlaySQL).
			WithArgs("k", []byte("v"), sqlmock.AnyArg()).
			WillReturnResult(sqlmock.NewResult(1, 1))

		require.NoError(t, s.Put(ctx, "k", []byte("v")))
		require.NoError(t, mock.ExpectationsWereMet())
	})

	t.Run("empty key is rejected before touching the db", func(t *testing.T) {
		s, mock := newMockSQLiteStore(t)

		require.ErrorIs(t, s.Put(ctx, "", []byte("v")), ErrEmptyKey)
		require.NoError(t, mock.ExpectationsWereMet())
	})

	t.Run("exec error is wrapped", func(t *testing.T) {
		s, mock := newMockSQLiteStore(t)
		mock.ExpectExec(putOverlaySQL).
			WithArgs("k", []byte("v"), sqlmock.AnyArg()).
			WillReturnError(errors.New("database is locked"))

		require.ErrorIs(t, s.Put(ctx, "k", []byte("v")), ErrExecutingStatement)
	})
}

func TestSQLiteStore_Delete(t *testing.T) {
	s, mock := newMockSQLiteStore(t)
	mock.ExpectExec(deleteOverlaySQL).
		WithArgs("k").
		WillReturnResult(sqlmock.NewResult(0, 1))

	require.NoError(t, s.Delete(context.Background(), "k"))
	require.NoError(t, mock.ExpectationsWereMet())
}

func TestSQLiteStore_RealDatabase(t *testing.T) {
	ctx := context.Background()
	path := t.TempDir() + "/nested/session.db"

	db, err := NewConnectSQLite(ctx, path, logger.Nop())
	require.NoError(t, err)
	require.NoError(t, db.Migrate())

	s := NewSQLiteStore(db, logger.Nop())
	defer s.Close()

	require.NoError(t, s.Put(ctx, "a", []byte("one")))
	require.NoError(t, s.Put(ctx, "a", []byte("two")))

	got, err := s.Get(ctx, "a")
	require.NoError(t, err)
	assert.Equal(t, []byte("two"), got)

	require.NoError(t, s.Delete(ctx, "a"))
	_, err = s.Get(ctx, "a")
	require.ErrorIs(t, err, ErrKeyNotFound)
}
