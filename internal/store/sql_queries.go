// SPDX-License-Identifier: Apache-2.0
// Copyright 2026 Rasul Khiriev

package store

import (
	"time"

	sq "github.com/Masterminds/squirrel"
)

const (
	overlaysTable = "session_overlays"

	upsertOverlaySuffix = "ON CONFLICT(doc_key) DO UPDATE SET value = excluded.value, updated_at = excluded.updated_at"
)

func buildGetOverlay(key string) (string, []any, error) {
	return sq.Select("value").
		From(overlaysTable).
		Where(sq.Eq{"doc_key": key}).
		ToSql()
}

func buildPutOverlay(key string, value []byte, at time.Time) (string, []any, error) {
	return sq.Insert(overlaysTable).
		Columns("doc_key", "value", "updated_at").
		Values(key, value, at).
		Suffix(upsertOverlaySuffix).
		ToSql()
}

func buildDeleteOverlay(key string) (string, []any, error) {
	return sq.Delete(overlaysTable).
		Where(sq.Eq{"doc_key": key}).
		ToSql()
}
