package server

import "context"

// Server defines the lifecycle contract of the authority server.
type Server interface {
	// Run serves requests until ctx is done or the listener fails, then
	// shuts down gracefully.
	Run(ctx context.Context) error
}
