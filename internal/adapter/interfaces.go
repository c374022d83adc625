// SPDX-License-Identifier: Apache-2.0
// Copyright 2026 Rasul Khiriev

// Package adapter provides transport-layer abstractions for talking to the
// remote authority that owns estimate lines.
//
// [BulkUpdater] is the outbound sync call used by the editing engine and
// [LineSource] is the inbound data feed the caller uses to obtain baselines.
// The package ships an HTTP/REST implementation of both ([NewHTTPAdapter]).
//
// Error values defined in errors.go are mapped from HTTP status codes by
// mapHTTPError so that callers can use [errors.Is] for transport-agnostic
// error handling.
package adapter

import (
	"context"

	"github.com/MKhiriev/go-estimate-sync/models"
)

//go:generate mockgen -source=interfaces.go -destination=../mock/adapter_mock.go -package=mock

// BulkUpdater submits a batch of row updates for one estimate.
type BulkUpdater interface {
	// BulkUpdate sends every update in a single call. A returned error means
	// there is no structured response at all (transport failure); per-row
	// outcomes, including partial failures, are reported in the response.
	BulkUpdate(ctx context.Context, docID string, updates []models.RowUpdate) (models.BulkUpdateResponse, error)
}

// LineSource fetches the current lines of an estimate.
type LineSource interface {
	// FetchLines returns every line of docID as the authority sees it now.
	FetchLines(ctx context.Context, docID string) ([]models.EstimateLine, error)

	// ListEstimates returns the ids of the estimates the authority holds.
	ListEstimates(ctx context.Context) ([]string, error)
}

// EstimateAdapter is the complete remote authority surface used by the client.
type EstimateAdapter interface {
	BulkUpdater
	LineSource
}
