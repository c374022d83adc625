package adapter

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"net/url"
	"strings"

	"github.com/go-resty/resty/v2"

	"github.com/MKhiriev/go-estimate-sync/internal/config"
	"github.com/MKhiriev/go-estimate-sync/internal/logger"
	"github.com/MKhiriev/go-estimate-sync/internal/utils"
	"github.com/MKhiriev/go-estimate-sync/models"
)

const (
	estimatesPath = "/api/estimates/"
	linesPath = "/api/estimates/{id}/lines"
	bulkPath  = "/api/estimates/{id}/lines/bulk"
)

type httpAdapter struct {
	client *utils.HTTPClient
	logger *logger.Logger
}

// NewHTTPAdapter constructs the HTTP/REST implementation of [EstimateAdapter].
// It normalises and validates the base URL from cfg.HTTPAddress and applies
// cfg.RequestTimeout to every request.
//
// Returns an error if cfg.HTTPAddress is empty or cannot be parsed as a
// valid URL.
func NewHTTPAdapter(cfg config.Adapter, log *logger.Logger) (EstimateAdapter, error) {
	baseURL, err := normalizeBaseURL(cfg.HTTPAddress)
	if err != nil {
		return nil, fmt.Errorf("invalid adapter http address: %w", err)
	}

	return &httpAdapter{
		client: utils.NewHTTPClient(baseURL, cfg.RequestTimeout, log),
		logger: log,
	}, nil
}

func normalizeBaseURL(raw string) (string, error) {
	raw = strings.TrimSpace(raw)
	if raw == "" {
		return "", fmt.Errorf("empty address")
	}

	if !strings.Contains(raw, "://") {
		raw = "http://" + raw
	}

	u, err := url.Parse(raw)
	if err != nil {
		return "", err
	}
	if u.Scheme == "" || u.Host == "" {
		return "", fmt.Errorf("address must include host and scheme")
	}

	return strings.TrimRight(u.String(), "/"), nil
}

// FetchLines implements [LineSource]. It GETs /api/estimates/{id}/lines and
// normalises field values of every returned line.
func (h *httpAdapter) FetchLines(ctx context.Context, docID string) ([]models.EstimateLine, error) {
	if docID == "" {
		return nil, ErrEmptyDocumentID
	}

	resp, err := h.client.R().
		SetContext(ctx).
		SetPathParam("id", docID).
		Get(linesPath)
	if err != nil {
		return nil, fmt.Errorf("fetch lines request: %w", err)
	}
	if err = mapHTTPError(resp); err != nil {
		return nil, err
	}

	var lines []models.EstimateLine
	if err = json.Unmarshal(resp.Body(), &lines); err != nil {
		return nil, fmt.Errorf("decode lines response: %w", err)
	}

	for i := range lines {
		if lines[i].Fields == nil {
			lines[i].Fields = make(map[string]any)
		}
		models.NormalizeFields(lines[i].Fields)
	}
	return lines, nil
}

// ListEstimates implements [LineSource]. It GETs /api/estimates/.
func (h *httpAdapter) ListEstimates(ctx context.Context) ([]string, error) {
	var body struct {
		Estimates []string `json:"estimates"`
	}

	resp, err := h.client.R().
		SetContext(ctx).
		SetResult(&body).
		Get(estimatesPath)
	if err != nil {
		return nil, fmt.Errorf("list estimates request: %w", err)
	}
	if err = mapHTTPError(resp); err != nil {
		return nil, err
	}
	return body.Estimates, nil
}

// BulkUpdate implements [BulkUpdater]. It PUTs the updates as a JSON array
// to /api/estimates/{id}/lines/bulk. A non-2xx status that still carries a
// structured bulk response (e.g. 422 with per-row errors) is returned as a
// response, not as an error; anything else is a transport failure.
func (h *httpAdapter) BulkUpdate(ctx context.Context, docID string, updates []models.RowUpdate) (models.BulkUpdateResponse, error) {
	if docID == "" {
		return models.BulkUpdateResponse{}, ErrEmptyDocumentID
	}

	resp, err := h.client.R().
		SetContext(ctx).
		SetPathParam("id", docID).
		SetHeader("Content-Type", "application/json").
		SetBody(updates).
		Put(bulkPath)
	if err != nil {
		return models.BulkUpdateResponse{}, fmt.Errorf("bulk update request: %w", err)
	}

	result, structured := decodeBulkResponse(resp)
	if structured {
		return result, nil
	}

	if err = mapHTTPError(resp); err != nil {
		h.logger.Warn().
			Str("func", "httpAdapter.BulkUpdate").
			Str("document_id", docID).
			Int("status", resp.StatusCode()).
			Msg("bulk update rejected without structured response")
		return models.BulkUpdateResponse{}, err
	}
	return models.BulkUpdateResponse{}, fmt.Errorf("decode bulk update response: unexpected body %q", truncate(resp.String(), 128))
}

// decodeBulkResponse reports whether the body is a bulk update response: an
// object carrying at least the "success" verdict.
func decodeBulkResponse(resp *resty.Response) (models.BulkUpdateResponse, bool) {
	body := bytes.TrimSpace(resp.Body())
	if len(body) == 0 || body[0] != '{' {
		return models.BulkUpdateResponse{}, false
	}

	var probe struct {
		Success *bool `json:"success"`
	}
	if err := json.Unmarshal(body, &probe); err != nil || probe.Success == nil {
		return models.BulkUpdateResponse{}, false
	}

	var result models.BulkUpdateResponse
	if err := json.Unmarshal(body, &result); err != nil {
		return models.BulkUpdateResponse{}, false
	}
	for i := range result.Errors {
		if result.Errors[i].Code == "" {
			result.Errors[i].Code = models.RowErrorUnknown
		}
	}
	for i := range result.Rows {
		if result.Rows[i].Fields == nil {
			result.Rows[i].Fields = make(map[string]any)
		}
		models.NormalizeFields(result.Rows[i].Fields)
	}
	return result, true
}

func truncate(s string, n int) string {
	if len(s) <= n {
		return s
	}
	return s[:n] + "..."
}
