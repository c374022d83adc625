// Package http exposes the reference authority over HTTP.
//
// It wires the estimate routes on a chi router together with the
// middleware every request passes through: panic recovery, trace ids,
// access logging and a per-request timeout.
package http
