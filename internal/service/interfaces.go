// SPDX-License-Identifier: Apache-2.0
// Copyright 2026 Rasul Khiriev

package service

import (
	"context"
	"time"

	"github.com/MKhiriev/go-estimate-sync/models"
)

// EstimateEditor is the query and command surface of one editing surface.
// Exactly one document session is active at a time.
type EstimateEditor interface {
	// StartSession opens docID with rows as its baseline. An active session
	// is drained first: optionally flushed, then persisted, then cleared.
	// Unsaved edits found on the device for docID are restored over rows
	// and described in the returned report so the caller can offer to
	// discard them.
	StartSession(ctx context.Context, docID, parentID string, rows []models.EstimateLine) (models.RestoreReport, error)

	// EndSession flushes unsettled edits when configured, persists the
	// overlay synchronously and clears the session.
	EndSession(ctx context.Context) error

	// DocumentID returns the id of the active document or "".
	DocumentID() string

	// DisplayRows returns the baseline merged with pending edits, sorted by
	// sequence number. It reflects every UpdateField that has returned.
	DisplayRows() []models.EstimateLine

	// HasUnsavedChanges reports whether any edit is still pending.
	HasUnsavedChanges() bool

	// PendingCount returns the number of pending field edits.
	PendingCount() int

	// IsFieldPending reports whether field of rowID has a pending edit.
	IsFieldPending(rowID, field string) bool

	// SyncStatus returns idle, syncing, error or conflict.
	SyncStatus() models.SyncStatus

	// Conflicts returns the open conflicts sorted by row and field.
	Conflicts() []models.Conflict

	// LastError returns the failure behind the error status, if any.
	LastError() error

	// UpdateField applies an edit to the overlay before returning. It
	// cannot fail.
	UpdateField(rowID, field string, value any)

	// SyncNow sends every pending, non-conflicted edit right away.
	SyncNow(ctx context.Context) (models.SyncResult, error)

	// RequestSync starts a background sync.
	RequestSync()

	// DiscardChanges drops every pending edit and conflict of the session.
	DiscardChanges()

	// DiscardField drops the pending edit of one field.
	DiscardField(rowID, field string)

	// ResolveConflict applies the user's choice for a conflict: keep the
	// local value (it is queued for sync again) or adopt the server value.
	ResolveConflict(rowID, field string, useLocal bool) error

	// Flush hands the latest edit of a field to the sync engine now.
	Flush(rowID, field string)

	// FlushAll hands every unsettled edit to the sync engine now.
	FlushAll()

	// MergeBaseline applies refetched rows of the active document.
	MergeBaseline(rows []models.EstimateLine) MergeReport

	// OnChange registers fn to be called after state or status changes.
	OnChange(fn func())

	// Close ends the session and stops background work.
	Close(ctx context.Context) error
}

// RetryJob periodically retries a failed sync in the background.
type RetryJob interface {
	// Start launches the job, stopping a previous run first. A non-positive
	// interval falls back to the default.
	Start(ctx context.Context, interval time.Duration)

	// Stop cancels the job and waits for it to exit.
	Stop()
}

// IDGenerator produces unique session identities.
type IDGenerator interface {
	Generate() string
}
