// SPDX-License-Identifier: Apache-2.0
// Copyright 2026 Rasul Khiriev

package models

import "maps"

// EstimateLine is a single line item of a repair estimate as observed on the
// remote authority. The client only ever holds a copy of it.
type EstimateLine struct {
	// ID is the stable identifier of the line.
	ID string `json:"id"`

	// ParentID identifies the estimate (document) the line belongs to.
	ParentID string `json:"parentId"`

	// SequenceNumber is the display order of the line; unique within the parent.
	SequenceNumber int `json:"sequence_number"`

	// Fields holds the typed editable values of the line keyed by field name.
	// A present key with a nil value is an explicit null.
	Fields map[string]any `json:"fields"`
}

// Clone returns a copy of the line whose Fields map can be mutated freely.
func (l EstimateLine) Clone() EstimateLine {
	out := l
	out.Fields = make(map[string]any, len(l.Fields))
	maps.Copy(out.Fields, l.Fields)
	return out
}

// Value returns the value of field and whether the line carries it at all.
func (l EstimateLine) Value(field string) (any, bool) {
	v, ok := l.Fields[field]
	return v, ok
}
