package models

import "time"

// Conflict records a field whose server value changed underneath a pending
// local edit. It lives until the user picks a side.
type Conflict struct {
	RowID       string    `json:"row_id"`
	Field       string    `json:"field"`
	LocalValue  any       `json:"local_value"`
	ServerValue any       `json:"server_value"`
	DetectedAt  time.Time `json:"detected_at"`
}

// RowField is the compound (row id, field) key used by the tracker and the
// conflict set.
type RowField struct {
	RowID string `json:"row_id"`
	Field string `json:"field"`
}
