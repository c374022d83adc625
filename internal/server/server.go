package server

import (
	"context"
	"net"
	"net/http"

	"golang.org/x/sync/errgroup"

	"github.com/MKhiriev/go-estimate-sync/internal/config"
	"github.com/MKhiriev/go-estimate-sync/internal/logger"
)

type server struct {
	http   *httpServer
	logger *logger.Logger
}

// NewServer wraps handler in an HTTP server listening on cfg.HTTPAddress.
func NewServer(handler http.Handler, cfg config.Server, logger *logger.Logger) (Server, error) {
	if cfg.HTTPAddress == "" {
		return nil, errNoAddress
	}

	logger.Info().Msg("creating new server...")
	return &server{
		http:   newHTTPServer(handler, cfg.HTTPAddress, cfg.RequestTimeout, logger),
		logger: logger,
	}, nil
}

func (s *server) Run(ctx context.Context) error {
	ln, err := net.Listen("tcp", s.http.server.Addr)
	if err != nil {
		return err
	}
	return s.serve(ctx, ln)
}

func (s *server) serve(ctx context.Context, ln net.Listener) error {
	g, gctx := errgroup.WithContext(ctx)

	g.Go(func() error {
		return s.http.serve(ln)
	})
	g.Go(func() error {
		<-gctx.Done()
		return s.http.shutdown()
	})

	if err := g.Wait(); err != nil {
		return err
	}
	s.logger.Info().Msg("server Shutdown gracefully")
	return nil
}
