package http

import (
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
)

// Init builds the router. A non-positive timeout disables the per-request
// deadline.
func (h *Handler) Init(timeout time.Duration) *chi.Mux {
	router := chi.NewRouter()
	router.Use(middleware.Recoverer)
	router.Use(h.withTraceID)
	router.Use(h.withLogging)
	if timeout > 0 {
		router.Use(middleware.Timeout(timeout))
	}

	router.Route("/api/estimates", func(r chi.Router) {
		r.Get("/", h.listEstimates)
		r.Get("/{id}/lines", h.getLines)
		r.Put("/{id}/lines/bulk", h.bulkUpdate)
	})

	router.MethodNotAllowed(CheckHTTPMethod(router))

	return router
}
