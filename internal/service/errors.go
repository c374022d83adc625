// SPDX-License-Identifier: Apache-2.0
// Copyright 2026 Rasul Khiriev

package service

import (
	"errors"
	"fmt"
	"strings"

	"github.com/MKhiriev/go-estimate-sync/models"
)

var (
	// ErrTransport wraps a bulk update call that produced no structured
	// response. Pending edits are kept for a later retry.
	ErrTransport = errors.New("sync transport failed")

	// ErrConflictNotFound is returned when resolving a conflict that does not exist.
	ErrConflictNotFound = errors.New("conflict not found")

	// ErrNoActiveSession is returned by commands that need an open document.
	ErrNoActiveSession = errors.New("no active editing session")

	// ErrEmptyDocumentID is returned by StartSession for an empty document id.
	ErrEmptyDocumentID = errors.New("empty document id")

	// ErrSnapshotVersion is returned when a persisted snapshot has an unknown
	// schema version.
	ErrSnapshotVersion = errors.New("unsupported session snapshot version")
)

// SyncError aggregates the real per-row failures of one sync attempt.
type SyncError struct {
	// Total is the number of row updates in the batch.
	Total int
	// Failed lists the rows that kept their pending edits.
	Failed []models.RowError
}

func (e *SyncError) Error() string {
	var b strings.Builder
	fmt.Fprintf(&b, "%d of %d updates failed", len(e.Failed), e.Total)

	for i, f := range e.Failed {
		if i == 0 {
			b.WriteString(": ")
		} else {
			b.WriteString("; ")
		}
		msg := f.Message
		if msg == "" {
			msg = string(f.Code)
		}
		fmt.Fprintf(&b, "%s: %s", f.ID, msg)
	}
	return b.String()
}
