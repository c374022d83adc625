package models

import (
	"encoding/json"
	"fmt"
)

// SyncStatus is the non-blocking status indicator shown to the user.
type SyncStatus string

const (
	SyncStatusIdle     SyncStatus = "idle"
	SyncStatusSyncing  SyncStatus = "syncing"
	SyncStatusError    SyncStatus = "error"
	SyncStatusConflict SyncStatus = "conflict"
)

// RowUpdate is one row of a bulk update request. It carries only the fields
// that have a pending value; a nil value is sent as an explicit null.
//
// On the wire it is a flat object: {"id": ..., "parentId": ..., <field>: <value>...}.
type RowUpdate struct {
	ID       string
	ParentID string
	Fields   map[string]any
}

// MarshalJSON flattens the row update.
func (u RowUpdate) MarshalJSON() ([]byte, error) {
	out := make(map[string]any, len(u.Fields)+2)
	for k, v := range u.Fields {
		out[k] = v
	}
	out["id"] = u.ID
	out["parentId"] = u.ParentID
	return json.Marshal(out)
}

// UnmarshalJSON reads a flat row update.
func (u *RowUpdate) UnmarshalJSON(b []byte) error {
	var raw map[string]any
	if err := json.Unmarshal(b, &raw); err != nil {
		return err
	}

	id, _ := raw["id"].(string)
	parentID, _ := raw["parentId"].(string)
	if id == "" {
		return fmt.Errorf("row update without id")
	}
	delete(raw, "id")
	delete(raw, "parentId")

	NormalizeFields(raw)
	*u = RowUpdate{ID: id, ParentID: parentID, Fields: raw}
	return nil
}

// RowErrorCode classifies a per-row failure reported by the authority.
type RowErrorCode string

const (
	// RowErrorNotFound means the row no longer exists.
	RowErrorNotFound RowErrorCode = "not_found"
	// RowErrorParentMismatch means the row no longer belongs to the document.
	RowErrorParentMismatch RowErrorCode = "parent_mismatch"
	// RowErrorValidation means the authority rejected a value.
	RowErrorValidation RowErrorCode = "validation"
	// RowErrorPermission means the caller may not modify the row.
	RowErrorPermission RowErrorCode = "permission"
	// RowErrorTransient means the authority failed temporarily.
	RowErrorTransient RowErrorCode = "transient"
	// RowErrorUnknown is used for errors without a recognised code.
	RowErrorUnknown RowErrorCode = "unknown"
)

// RowError is a per-row failure inside a bulk update response.
type RowError struct {
	ID      string       `json:"id"`
	Code    RowErrorCode `json:"code"`
	Message string       `json:"error"`
}

// IsStaleReference reports whether the error means the row is gone or moved,
// so there is nothing meaningful left to retry.
func (e RowError) IsStaleReference() bool {
	return e.Code == RowErrorNotFound || e.Code == RowErrorParentMismatch
}

// BulkUpdateResponse is the structured result of a bulk update call.
type BulkUpdateResponse struct {
	// Success is the overall verdict of the authority.
	Success bool `json:"success"`

	// Errors lists per-row notices and failures.
	Errors []RowError `json:"errors,omitempty"`

	// Rows optionally echoes the current server state of the updated rows.
	Rows []EstimateLine `json:"rows,omitempty"`
}

// SyncResult summarises a single sync attempt.
type SyncResult struct {
	// Sent is the number of row updates submitted.
	Sent int
	// Cleared is the number of rows whose pending changes were confirmed.
	Cleared int
	// Stale is the number of rows dropped because of stale-reference errors.
	Stale int
	// Failed is the number of rows that kept their changes due to real errors.
	Failed int
	// Deferred is true when another sync was in flight and this request was
	// folded into a follow-up attempt.
	Deferred bool
}
