package http

import (
	"encoding/json"
	"net/http"

	"github.com/go-chi/chi/v5"

	"github.com/MKhiriev/go-estimate-sync/internal/logger"
	"github.com/MKhiriev/go-estimate-sync/internal/utils"
	"github.com/MKhiriev/go-estimate-sync/models"
)

type estimatesResponse struct {
	Estimates []string `json:"estimates"`
}

func (h *Handler) listEstimates(w http.ResponseWriter, r *http.Request) {
	_, _ = utils.WriteJSON(w, estimatesResponse{Estimates: h.estimates.Documents()}, http.StatusOK)
}

func (h *Handler) getLines(w http.ResponseWriter, r *http.Request) {
	log := logger.FromRequest(r)
	docID := chi.URLParam(r, "id")

	lines, err := h.estimates.FetchLines(r.Context(), docID)
	if err != nil {
		log.Err(err).Str("func", "*Handler.getLines").Str("document_id", docID).Msg("error fetching estimate lines")
		utils.WriteError(w, err.Error(), statusFromError(err))
		return
	}

	_, _ = utils.WriteJSON(w, lines, http.StatusOK)
}

// bulkUpdate answers with a structured response whenever the batch could be
// evaluated, including when some rows were rejected; plain error bodies are
// reserved for requests that could not be evaluated at all.
func (h *Handler) bulkUpdate(w http.ResponseWriter, r *http.Request) {
	log := logger.FromRequest(r)
	docID := chi.URLParam(r, "id")

	var updates []models.RowUpdate
	if err := json.NewDecoder(r.Body).Decode(&updates); err != nil {
		log.Err(err).Str("func", "*Handler.bulkUpdate").Msg("Invalid JSON was passed")
		utils.WriteError(w, "Invalid JSON was passed", http.StatusBadRequest)
		return
	}

	resp, err := h.estimates.BulkUpdate(r.Context(), docID, updates)
	if err != nil {
		log.Err(err).Str("func", "*Handler.bulkUpdate").Str("document_id", docID).Msg("error applying bulk update")
		utils.WriteError(w, err.Error(), statusFromError(err))
		return
	}

	status := http.StatusOK
	if !resp.Success {
		status = http.StatusMultiStatus
	}
	_, _ = utils.WriteJSON(w, resp, status)
}
