package tui

import (
	"context"
	"fmt"
	"strings"

	"github.com/charmbracelet/bubbles/key"
	"github.com/charmbracelet/bubbles/spinner"
	tea "github.com/charmbracelet/bubbletea"

	"github.com/MKhiriev/go-estimate-sync/internal/adapter"
)

// pickerModel lists the estimates held by the authority.
type pickerModel struct {
	ctx    context.Context
	source adapter.LineSource

	ids     []string
	idx     int
	loading bool
	spinner spinner.Model
	status  string
	lastErr error
}

func newPickerModel(ctx context.Context, source adapter.LineSource) pickerModel {
	s := spinner.New()
	s.Spinner = spinner.MiniDot
	return pickerModel{ctx: ctx, source: source, spinner: s, loading: true}
}

func (m pickerModel) Init() tea.Cmd {
	return tea.Batch(m.spinner.Tick, m.cmdLoad())
}

func (m pickerModel) cmdLoad() tea.Cmd {
	return func() tea.Msg {
		ids, err := m.source.ListEstimates(m.ctx)
		return estimatesLoadedMsg{ids: ids, err: err}
	}
}

func (m pickerModel) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case estimatesLoadedMsg:
		m.loading = false
		m.lastErr = msg.err
		if msg.err == nil {
			m.ids = msg.ids
			if m.idx >= len(m.ids) {
				m.idx = max(len(m.ids)-1, 0)
			}
		}
		return m, nil

	case sessionClosedMsg:
		m.status = ""
		if msg.err != nil {
			m.status = fmt.Sprintf("Смета %s закрыта, но правки не сохранены на диск: %v", msg.docID, msg.err)
		}
		return m, nil

	case openFailedMsg:
		m.status = fmt.Sprintf("Не удалось открыть смету %s: %s", msg.docID, humanizeServerUnavailableError(msg.err))
		return m, nil

	case spinner.TickMsg:
		if !m.loading || msg.ID != m.spinner.ID() {
			return m, nil
		}
		var cmd tea.Cmd
		m.spinner, cmd = m.spinner.Update(msg)
		return m, cmd

	case tea.KeyMsg:
		switch {
		case key.Matches(msg, keys.quit):
			return m, tea.Quit
		case key.Matches(msg, keys.up):
			if m.idx > 0 {
				m.idx--
			}
		case key.Matches(msg, keys.down):
			if m.idx < len(m.ids)-1 {
				m.idx++
			}
		case key.Matches(msg, keys.reload):
			m.loading = true
			return m, tea.Batch(m.spinner.Tick, m.cmdLoad())
		case key.Matches(msg, keys.enter):
			if m.loading || len(m.ids) == 0 {
				return m, nil
			}
			docID := m.ids[m.idx]
			return m, func() tea.Msg {
				return NavigateTo{Page: pageEditor, Payload: openEstimateMsg{docID: docID}}
			}
		}
	}
	return m, nil
}

func (m pickerModel) View() string {
	title := "Сметы"
	if m.loading {
		title += "  " + m.spinner.View()
	}

	var b strings.Builder
	switch {
	case m.loading && len(m.ids) == 0:
		b.WriteString("Загрузка...\n")
	case len(m.ids) == 0:
		b.WriteString("Нет смет\n")
	default:
		for i, id := range m.ids {
			cursor := "  "
			if i == m.idx {
				cursor = "> "
			}
			b.WriteString(cursor + id + "\n")
		}
	}

	if m.status != "" {
		b.WriteString("\n" + m.status + "\n")
	}
	if m.lastErr != nil {
		b.WriteString("\n" + errorStyle.Render("Ошибка: "+humanizeServerUnavailableError(m.lastErr)) + "\n")
	}

	return renderPage(title, b.String(), "enter открыть  r обновить  q выход")
}
