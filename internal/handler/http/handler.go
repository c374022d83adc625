package http

import (
	"context"

	"github.com/MKhiriev/go-estimate-sync/internal/logger"
	"github.com/MKhiriev/go-estimate-sync/models"
)

// Estimates is the authority behind the routes.
type Estimates interface {
	Documents() []string
	FetchLines(ctx context.Context, docID string) ([]models.EstimateLine, error)
	BulkUpdate(ctx context.Context, docID string, updates []models.RowUpdate) (models.BulkUpdateResponse, error)
}

type Handler struct {
	estimates Estimates

	logger *logger.Logger
}

func NewHandler(estimates Estimates, logger *logger.Logger) *Handler {
	logger.Info().Msg("http handler created")
	return &Handler{
		estimates: estimates,
		logger:    logger,
	}
}
