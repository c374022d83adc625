package http

import (
	"context"
	"errors"
	"net/http"

	"github.com/MKhiriev/go-estimate-sync/internal/authority"
)

var errorStatusMap = map[error]int{
	authority.ErrDocumentNotFound: http.StatusNotFound,
	authority.ErrEmptyDocumentID:  http.StatusBadRequest,
	context.DeadlineExceeded:      http.StatusGatewayTimeout,
	context.Canceled:              http.StatusServiceUnavailable,
}

func statusFromError(err error) int {
	for target, status := range errorStatusMap {
		if errors.Is(err, target) {
			return status
		}
	}
	return http.StatusInternalServerError
}
