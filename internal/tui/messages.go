package tui

import (
	tea "github.com/charmbracelet/bubbletea"

	"github.com/MKhiriev/go-estimate-sync/internal/service"
	"github.com/MKhiriev/go-estimate-sync/models"
)

// NavigateTo switches the active page. Payload, if set, is delivered to the
// new page right after its Init.
type NavigateTo struct {
	Page    string
	Payload tea.Msg
}

type estimatesLoadedMsg struct {
	ids []string
	err error
}

type openEstimateMsg struct {
	docID string
}

type sessionOpenedMsg struct {
	docID  string
	report models.RestoreReport
	err    error
}

type sessionClosedMsg struct {
	docID string
	err   error
}

type linesRefetchedMsg struct {
	report service.MergeReport
	err    error
}

type syncDoneMsg struct {
	result models.SyncResult
	err    error
}

type editorChangedMsg struct{}

type openFailedMsg struct {
	docID string
	err   error
}
