// Package server runs the reference authority's HTTP server until the
// process is signalled, then shuts it down gracefully.
package server
