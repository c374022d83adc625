// SPDX-License-Identifier: Apache-2.0
// Copyright 2026 Rasul Khiriev

// Package authority is an in-memory reference implementation of the remote
// system of record for estimate lines. It answers line fetches and bulk
// updates the way the real authority does, including per-row errors, so the
// editor can be exercised end to end.
package authority

import (
	"context"
	"errors"
	"maps"
	"slices"
	"sort"
	"sync"

	"github.com/MKhiriev/go-estimate-sync/internal/logger"
	"github.com/MKhiriev/go-estimate-sync/internal/validators"
	"github.com/MKhiriev/go-estimate-sync/models"
)

// Store holds estimates keyed by document id.
type Store struct {
	mu        sync.RWMutex
	docs      map[string]map[string]models.EstimateLine
	validator validators.Validator
	logger    *logger.Logger
}

// NewStore returns an empty authority.
func NewStore(log *logger.Logger) *Store {
	return &Store{
		docs:      make(map[string]map[string]models.EstimateLine),
		validator: validators.NewRowUpdateValidator(),
		logger:    log,
	}
}

// Seed replaces the lines of docID.
func (s *Store) Seed(docID string, lines []models.EstimateLine) {
	rows := make(map[string]models.EstimateLine, len(lines))
	for _, l := range lines {
		l = l.Clone()
		l.ParentID = docID
		models.NormalizeFields(l.Fields)
		rows[l.ID] = l
	}

	s.mu.Lock()
	s.docs[docID] = rows
	s.mu.Unlock()
}

// Documents returns the ids of all estimates, sorted.
func (s *Store) Documents() []string {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return slices.Sorted(maps.Keys(s.docs))
}

// FetchLines returns copies of the lines of docID sorted by sequence number.
func (s *Store) FetchLines(ctx context.Context, docID string) ([]models.EstimateLine, error) {
	if docID == "" {
		return nil, ErrEmptyDocumentID
	}
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	s.mu.RLock()
	defer s.mu.RUnlock()

	rows, ok := s.docs[docID]
	if !ok {
		return nil, ErrDocumentNotFound
	}
	return sortedCopy(rows), nil
}

// BulkUpdate applies each row update independently. Rows that cannot be
// applied are reported with a code; the others are applied and echoed.
// The verdict is positive only when every row was applied.
func (s *Store) BulkUpdate(ctx context.Context, docID string, updates []models.RowUpdate) (models.BulkUpdateResponse, error) {
	if docID == "" {
		return models.BulkUpdateResponse{}, ErrEmptyDocumentID
	}
	if err := ctx.Err(); err != nil {
		return models.BulkUpdateResponse{}, err
	}

	log := s.logger

	s.mu.Lock()
	defer s.mu.Unlock()

	rows, ok := s.docs[docID]
	if !ok {
		return models.BulkUpdateResponse{}, ErrDocumentNotFound
	}

	resp := models.BulkUpdateResponse{Success: true}
	for _, u := range updates {
		if rowErr, failed := s.applyLocked(ctx, docID, rows, u); failed {
			resp.Errors = append(resp.Errors, rowErr)
			continue
		}
		resp.Rows = append(resp.Rows, rows[u.ID].Clone())
	}
	resp.Success = len(resp.Errors) == 0

	log.Info().
		Str("func", "Store.BulkUpdate").
		Str("document_id", docID).
		Int("rows", len(updates)).
		Int("errors", len(resp.Errors)).
		Msg("bulk update applied")
	return resp, nil
}

func (s *Store) applyLocked(ctx context.Context, docID string, rows map[string]models.EstimateLine, u models.RowUpdate) (models.RowError, bool) {
	row, ok := rows[u.ID]
	if !ok {
		if s.ownerLocked(u.ID) != "" {
			return models.RowError{ID: u.ID, Code: models.RowErrorParentMismatch, Message: "line belongs to another estimate"}, true
		}
		return models.RowError{ID: u.ID, Code: models.RowErrorNotFound, Message: "line not found"}, true
	}
	if u.ParentID != "" && u.ParentID != docID {
		return models.RowError{ID: u.ID, Code: models.RowErrorParentMismatch, Message: "line belongs to another estimate"}, true
	}
	if err := s.validator.Validate(ctx, u, validators.ScopeFields); err != nil {
		return models.RowError{ID: u.ID, Code: models.RowErrorValidation, Message: err.Error()}, true
	}

	row = row.Clone()
	for field, value := range u.Fields {
		row.Fields[field] = models.Normalize(field, value)
	}
	rows[u.ID] = row
	return models.RowError{}, false
}

func (s *Store) ownerLocked(rowID string) string {
	for docID, rows := range s.docs {
		if _, ok := rows[rowID]; ok {
			return docID
		}
	}
	return ""
}

// SetField changes a field as another user would.
func (s *Store) SetField(docID, rowID, field string, value any) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	row, err := s.rowLocked(docID, rowID)
	if err != nil {
		return err
	}
	row = row.Clone()
	row.Fields[field] = models.Normalize(field, value)
	s.docs[docID][rowID] = row
	return nil
}

// DeleteLine removes a line, e.g. when the estimate is renumbered.
func (s *Store) DeleteLine(docID, rowID string) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if _, err := s.rowLocked(docID, rowID); err != nil {
		return err
	}
	delete(s.docs[docID], rowID)
	return nil
}

// MoveLine moves a line to another estimate.
func (s *Store) MoveLine(fromDocID, rowID, toDocID string) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	row, err := s.rowLocked(fromDocID, rowID)
	if err != nil {
		return err
	}
	to, ok := s.docs[toDocID]
	if !ok {
		return ErrDocumentNotFound
	}
	delete(s.docs[fromDocID], rowID)
	row.ParentID = toDocID
	to[rowID] = row
	return nil
}

var errLineNotFound = errors.New("line not found")

func (s *Store) rowLocked(docID, rowID string) (models.EstimateLine, error) {
	rows, ok := s.docs[docID]
	if !ok {
		return models.EstimateLine{}, ErrDocumentNotFound
	}
	row, ok := rows[rowID]
	if !ok {
		return models.EstimateLine{}, errLineNotFound
	}
	return row, nil
}

func sortedCopy(rows map[string]models.EstimateLine) []models.EstimateLine {
	out := make([]models.EstimateLine, 0, len(rows))
	for _, r := range rows {
		out = append(out, r.Clone())
	}
	sort.Slice(out, func(i, j int) bool {
		if out[i].SequenceNumber != out[j].SequenceNumber {
			return out[i].SequenceNumber < out[j].SequenceNumber
		}
		return out[i].ID < out[j].ID
	})
	return out
}
