package models

import "time"

// FieldChange is the unit handed from the dirty-field tracker to the sync
// engine once a field edit has settled.
type FieldChange struct {
	RowID      string    `json:"row_id"`
	Field      string    `json:"field"`
	Value      any       `json:"value"`
	Timestamp  time.Time `json:"timestamp"`
	Priority   Priority  `json:"priority"`
	RetryCount int       `json:"retry_count"`
}

// PendingField is one uncommitted local edit layered over the baseline.
type PendingField struct {
	// Value is the locally edited value; nil is an explicit null.
	Value any `json:"value"`

	// BaseValue is the baseline value the edit was made against. It is used
	// to tell a concurrent server change apart from the echo of our own edit.
	BaseValue any `json:"base_value"`

	// HasBase is false when the baseline row did not carry the field at the
	// time of the first edit.
	HasBase bool `json:"has_base"`

	// EditedAt is the time of the most recent edit.
	EditedAt time.Time `json:"edited_at"`

	// Revision increases on every edit of the session. A sync response only
	// clears the field if its revision did not move while the request was in
	// flight.
	Revision uint64 `json:"revision"`

	// RetryCount counts failed sync attempts that carried this field.
	RetryCount int `json:"retry_count"`
}

// PendingChanges is the sparse overlay of uncommitted edits:
// row id → field → edit. A row key is present only while it has at least one
// field.
type PendingChanges map[string]map[string]PendingField

// Clone returns a deep copy of p.
func (p PendingChanges) Clone() PendingChanges {
	out := make(PendingChanges, len(p))
	for rowID, fields := range p {
		cp := make(map[string]PendingField, len(fields))
		for f, pf := range fields {
			cp[f] = pf
		}
		out[rowID] = cp
	}
	return out
}

// FieldCount returns the total number of pending fields over all rows.
func (p PendingChanges) FieldCount() int {
	n := 0
	for _, fields := range p {
		n += len(fields)
	}
	return n
}
