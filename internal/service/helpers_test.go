package service

import (
	"context"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/require"

	"github.com/MKhiriev/go-estimate-sync/internal/logger"
	"github.com/MKhiriev/go-estimate-sync/internal/store"
	"github.com/MKhiriev/go-estimate-sync/models"
)

// testRows: три строки документа D1; L2 намеренно имеет sequence_number 5.
func testRows() []models.EstimateLine {
	return []models.EstimateLine{
		{ID: "L1", ParentID: "D1", SequenceNumber: 1, Fields: map[string]any{
			models.FieldDescription:   "Front bumper cover",
			models.FieldPartCost:      120.0,
			models.FieldLaborHours:    1.5,
			models.FieldOperationCode: "RPL",
		}},
		{ID: "L2", ParentID: "D1", SequenceNumber: 5, Fields: map[string]any{
			models.FieldDescription: "old",
			models.FieldPartCost:    40.0,
		}},
		{ID: "L3", ParentID: "D1", SequenceNumber: 3, Fields: map[string]any{
			models.FieldDescription: "Grille",
			models.FieldPartCost:    80.0,
		}},
	}
}

func docRows(docID string) []models.EstimateLine {
	rows := testRows()
	for i := range rows {
		rows[i].ID = docID + "-" + rows[i].ID
		rows[i].ParentID = docID
	}
	return rows
}

func rowByID(t *testing.T, rows []models.EstimateLine, id string) models.EstimateLine {
	t.Helper()
	for _, r := range rows {
		if r.ID == id {
			return r
		}
	}
	require.FailNow(t, "row not found", id)
	return models.EstimateLine{}
}

func openOverlay(rows []models.EstimateLine) *overlay {
	ov := newOverlay()
	ov.open("session-1", "D1", "D1", rows, nil)
	return ov
}

type seqIDs struct {
	mu sync.Mutex
	n  int
}

func (s *seqIDs) Generate() string {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.n++
	return "session-" + string(rune('a'+s.n))
}

// fakeUpdater: записывает вызовы BulkUpdate; respond и gate управляют ответом.
type fakeUpdater struct {
	mu      sync.Mutex
	calls   [][]models.RowUpdate
	docs    []string
	respond func(updates []models.RowUpdate) (models.BulkUpdateResponse, error)
	gate    chan struct{}
	entered chan struct{}
}

func newFakeUpdater() *fakeUpdater {
	return &fakeUpdater{entered: make(chan struct{}, 16)}
}

func (f *fakeUpdater) BulkUpdate(_ context.Context, docID string, updates []models.RowUpdate) (models.BulkUpdateResponse, error) {
	f.mu.Lock()
	f.calls = append(f.calls, updates)
	f.docs = append(f.docs, docID)
	gate, respond := f.gate, f.respond
	f.mu.Unlock()

	select {
	case f.entered <- struct{}{}:
	default:
	}
	if gate != nil {
		<-gate
	}
	if respond != nil {
		return respond(updates)
	}
	return models.BulkUpdateResponse{Success: true}, nil
}

func (f *fakeUpdater) callCount() int {
	f.mu.Lock()
	defer f.mu.Unlock()
	return len(f.calls)
}

func (f *fakeUpdater) call(i int) []models.RowUpdate {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.calls[i]
}

func (f *fakeUpdater) hold() chan struct{} {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.gate = make(chan struct{})
	return f.gate
}

func (f *fakeUpdater) waitEntered(t *testing.T) {
	t.Helper()
	select {
	case <-f.entered:
	case <-time.After(2 * time.Second):
		require.FailNow(t, "BulkUpdate was not called")
	}
}

func newTestEditor(t *testing.T, updater *fakeUpdater, kv store.KeyValueStore, opts EditorOptions) *Editor {
	t.Helper()
	if kv == nil {
		kv = store.NewMemoryStore()
	}
	if opts.IDs == nil {
		opts.IDs = &seqIDs{}
	}
	e := NewEditor(updater, kv, opts, logger.Nop())
	t.Cleanup(func() {
		ctx, cancel := context.WithTimeout(context.Background(), 2*time.Second)
		defer cancel()
		_ = e.Close(ctx)
	})
	return e
}
