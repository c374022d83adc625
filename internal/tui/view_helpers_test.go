package tui

import (
	"errors"
	"fmt"
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/MKhiriev/go-estimate-sync/internal/adapter"
	"github.com/MKhiriev/go-estimate-sync/internal/service"
	"github.com/MKhiriev/go-estimate-sync/internal/validators"
	"github.com/MKhiriev/go-estimate-sync/models"
)

func TestFormatValue(t *testing.T) {
	tests := []struct {
		field string
		value any
		want  string
	}{
		{field: models.FieldPartCost, value: 250.0, want: "250.00"},
		{field: models.FieldPartCost, value: "12.5", want: "12.50"},
		{field: models.FieldLaborHours, value: 1.5, want: "1.5"},
		{field: models.FieldOperationCode, value: "rpl ", want: "RPL"},
		{field: models.FieldDescription, value: "Hood", want: "Hood"},
		{field: models.FieldNotes, value: nil, want: ""},
	}

	for _, tt := range tests {
		t.Run(fmt.Sprintf("%s=%v", tt.field, tt.value), func(t *testing.T) {
			assert.Equal(t, tt.want, formatValue(tt.field, tt.value))
		})
	}
}

func TestParseInput(t *testing.T) {
	assert.Nil(t, parseInput(models.FieldDescription, "   "))
	assert.Equal(t, 12.5, parseInput(models.FieldPartCost, "12,5"))
	assert.Equal(t, 2.0, parseInput(models.FieldLaborHours, " 2 "))
	assert.Equal(t, "abc", parseInput(models.FieldPartCost, "abc"))
	assert.Equal(t, "nan", parseInput(models.FieldPartCost, "nan"))
	assert.Equal(t, "+Inf", parseInput(models.FieldLaborHours, "+Inf"))
	assert.Equal(t, "1e307", parseInput(models.FieldPartCost, "1e307"))
	assert.Equal(t, "R&I", parseInput(models.FieldOperationCode, "r&i"))
	assert.Equal(t, "spaced", parseInput(models.FieldNotes, " spaced "))
}

func TestFitAndPadText(t *testing.T) {
	assert.Equal(t, "Front...", fitText("Front bumper", 8))
	assert.Equal(t, "Fr", fitText("Front", 2))
	assert.Equal(t, "Капот", fitText("Капот", 5))
	assert.Equal(t, "ab   ", padText("ab", 5))
	assert.Equal(t, "Пере...", padText("Передний бампер", 7))
}

func TestSeverityStyle(t *testing.T) {
	_, ok := severityStyle(validators.SeverityWarning)
	assert.True(t, ok)
	_, ok = severityStyle(validators.SeverityInfo)
	assert.True(t, ok)
	_, ok = severityStyle(validators.SeverityValid)
	assert.False(t, ok)
}

func TestHumanizeErrors(t *testing.T) {
	assert.Empty(t, humanizeServerUnavailableError(nil))
	assert.Equal(t, "Отсутствует сеть или Сервер недоступен", humanizeServerUnavailableError(adapter.ErrUnavailable))
	assert.Equal(t, "Отсутствует сеть или Сервер недоступен", humanizeServerUnavailableError(errors.New("dial tcp 127.0.0.1:8080: connection refused")))
	assert.Equal(t, "boom", humanizeServerUnavailableError(errors.New("boom")))

	syncErr := &service.SyncError{Total: 2, Failed: []models.RowError{{ID: "L1", Code: models.RowErrorValidation, Message: "bad cost"}}}
	assert.Contains(t, humanizeSyncError(fmt.Errorf("sync: %w", syncErr)), "1 of 2 updates failed")

	transport := fmt.Errorf("%w: %w", service.ErrTransport, adapter.ErrUnavailable)
	assert.Equal(t, "Отсутствует сеть или Сервер недоступен. Правки сохранены, синхронизация будет повторена", humanizeSyncError(transport))
	assert.Empty(t, humanizeSyncError(nil))
}

func TestRestorePrompt(t *testing.T) {
	msg := restorePrompt(models.RestoreReport{Restored: true, Rows: 2, Fields: 3, Conflicts: 1})
	assert.Contains(t, msg, "полей 3 в строках 2")
	assert.Contains(t, msg, "конфликтов 1")
	assert.Contains(t, msg, "Оставить их?")
}
