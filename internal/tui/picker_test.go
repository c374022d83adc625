package tui

import (
	"context"
	"errors"
	"testing"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/mock/gomock"

	"github.com/MKhiriev/go-estimate-sync/internal/adapter"
	"github.com/MKhiriev/go-estimate-sync/internal/mock"
)

func pickerStep(t *testing.T, m pickerModel, msg tea.Msg) (pickerModel, tea.Cmd) {
	t.Helper()
	updated, cmd := m.Update(msg)
	next, ok := updated.(pickerModel)
	require.True(t, ok)
	return next, cmd
}

func TestPicker_LoadAndOpen(t *testing.T) {
	source := mock.NewMockLineSource(gomock.NewController(t))
	source.EXPECT().ListEstimates(gomock.Any()).Return([]string{"EST-1001", "EST-1002"}, nil)

	m := newPickerModel(context.Background(), source)
	assert.Contains(t, m.View(), "Загрузка...")

	m, _ = pickerStep(t, m, m.cmdLoad()())
	assert.False(t, m.loading)
	assert.Contains(t, m.View(), "> EST-1001")

	m, _ = pickerStep(t, m, tea.KeyMsg{Type: tea.KeyDown})
	m, _ = pickerStep(t, m, tea.KeyMsg{Type: tea.KeyDown})
	assert.Equal(t, 1, m.idx)

	_, cmd := pickerStep(t, m, tea.KeyMsg{Type: tea.KeyEnter})
	require.NotNil(t, cmd)
	assert.Equal(t, NavigateTo{Page: pageEditor, Payload: openEstimateMsg{docID: "EST-1002"}}, cmd())
}

func TestPicker_EnterWithoutEstimates(t *testing.T) {
	m := newPickerModel(context.Background(), nil)
	m, _ = pickerStep(t, m, estimatesLoadedMsg{})

	assert.Contains(t, m.View(), "Нет смет")
	_, cmd := pickerStep(t, m, tea.KeyMsg{Type: tea.KeyEnter})
	assert.Nil(t, cmd)
}

func TestPicker_LoadError(t *testing.T) {
	m := newPickerModel(context.Background(), nil)
	m, _ = pickerStep(t, m, estimatesLoadedMsg{err: adapter.ErrUnavailable})

	assert.Contains(t, m.View(), "Отсутствует сеть или Сервер недоступен")
}

func TestPicker_ShowsSessionMessages(t *testing.T) {
	m := newPickerModel(context.Background(), nil)
	m, _ = pickerStep(t, m, estimatesLoadedMsg{ids: []string{"EST-1001"}})

	m, _ = pickerStep(t, m, openFailedMsg{docID: "EST-1001", err: errors.New("boom")})
	assert.Contains(t, m.View(), "Не удалось открыть смету EST-1001: boom")

	m, _ = pickerStep(t, m, sessionClosedMsg{docID: "EST-1001", err: errors.New("disk full")})
	assert.Contains(t, m.View(), "правки не сохранены на диск")

	m, _ = pickerStep(t, m, sessionClosedMsg{docID: "EST-1001"})
	assert.Empty(t, m.status)
}

func TestPicker_Quit(t *testing.T) {
	m := newPickerModel(context.Background(), nil)
	_, cmd := pickerStep(t, m, runes("q"))
	require.NotNil(t, cmd)
	assert.Equal(t, tea.QuitMsg{}, cmd())
}
