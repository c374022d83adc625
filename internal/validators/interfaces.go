// SPDX-License-Identifier: Apache-2.0
// Copyright 2026 Rasul Khiriev

// Package validators checks estimate lines and row updates.
//
// Two kinds of validation live here:
//   - Validator rejects malformed input with an error. The reference
//     authority uses it to refuse row updates it cannot apply.
//   - LineValidator produces advisory issues for display. It never blocks an
//     edit and is never consulted on the sync path.
package validators

import (
	"context"

	"github.com/MKhiriev/go-estimate-sync/models"
)

// Validator defines a generic validation interface for arbitrary input values.
type Validator interface {

	// Validate validates the provided input and optionally
	// restricts validation to specific named fields.
	Validate(context.Context, any, ...string) error
}

// LineValidator reports advisory issues of one line, judged against the
// other lines of the same document.
type LineValidator interface {
	Validate(line models.EstimateLine, siblings []models.EstimateLine) []FieldIssue
}
