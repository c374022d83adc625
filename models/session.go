package models

import "time"

// SessionSnapshotVersion is the schema version of persisted session snapshots.
const SessionSnapshotVersion = 1

// SessionSnapshot is the durable, device-local copy of an editing session's
// overlay. It never contains the baseline: that is always refetched.
type SessionSnapshot struct {
	DocumentID   string         `json:"document_id"`
	ParentID     string         `json:"parent_id"`
	Pending      PendingChanges `json:"pending_changes"`
	Conflicts    []Conflict     `json:"conflicts,omitempty"`
	LastModified time.Time      `json:"last_modified"`
	Version      int            `json:"version"`
}

// RestoreReport tells the caller of StartSession whether unsaved edits were
// brought back from the device so that a restore/discard choice can be shown.
type RestoreReport struct {
	Restored     bool
	Rows         int
	Fields       int
	Dropped      int
	Conflicts    int
	LastModified time.Time
}
