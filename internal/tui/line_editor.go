package tui

import (
	"context"
	"fmt"
	"strconv"
	"strings"

	"github.com/charmbracelet/bubbles/key"
	"github.com/charmbracelet/bubbles/spinner"
	"github.com/charmbracelet/bubbles/textinput"
	tea "github.com/charmbracelet/bubbletea"

	"github.com/MKhiriev/go-estimate-sync/internal/adapter"
	"github.com/MKhiriev/go-estimate-sync/internal/service"
	"github.com/MKhiriev/go-estimate-sync/internal/validators"
	"github.com/MKhiriev/go-estimate-sync/models"
)

type column struct {
	field string
	title string
	width int
}

var columns = []column{
	{field: models.FieldOperationCode, title: "Оп.", width: 6},
	{field: models.FieldDescription, title: "Описание", width: 28},
	{field: models.FieldPartType, title: "Тип", width: 6},
	{field: models.FieldPartNumber, title: "Номер детали", width: 13},
	{field: models.FieldPartCost, title: "Цена", width: 10},
	{field: models.FieldLaborHours, title: "Работа", width: 7},
	{field: models.FieldPaintHours, title: "Окраска", width: 8},
	{field: models.FieldNotes, title: "Заметки", width: 16},
}

const seqWidth = 4

// lineEditorModel is the grid of one estimate. Every edit goes straight to
// the editor; the grid is redrawn from DisplayRows.
type lineEditorModel struct {
	ctx       context.Context
	editor    service.EstimateEditor
	source    adapter.LineSource
	validator validators.LineValidator

	docID     string
	rows      []models.EstimateLine
	issues    map[string][]validators.FieldIssue
	conflicts map[models.RowField]models.Conflict
	row       int
	col       int

	loading  bool
	spinning bool
	editing  bool
	input    textinput.Model
	spinner  spinner.Model

	restore        *models.RestoreReport
	confirmDiscard bool
	errMsg         string
	status         string
}

func newLineEditorModel(ctx context.Context, editor service.EstimateEditor, source adapter.LineSource) lineEditorModel {
	s := spinner.New()
	s.Spinner = spinner.MiniDot

	ti := textinput.New()
	ti.Prompt = "> "
	ti.CharLimit = 256

	return lineEditorModel{
		ctx:       ctx,
		editor:    editor,
		source:    source,
		validator: validators.NewLineValidator(),
		input:     ti,
		spinner:   s,
	}
}

func (m lineEditorModel) Init() tea.Cmd {
	return nil
}

func (m lineEditorModel) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case openEstimateMsg:
		m.docID = msg.docID
		m.rows = nil
		m.row, m.col = 0, 0
		m.editing, m.confirmDiscard = false, false
		m.restore = nil
		m.errMsg, m.status = "", ""
		m.loading = true
		tick := m.startSpinner()
		return m, tea.Batch(tick, m.cmdOpen(msg.docID))

	case sessionOpenedMsg:
		if msg.docID != m.docID {
			return m, nil
		}
		m.loading = false
		m.refresh()
		if msg.err != nil {
			m.status = "Сохранённые правки не удалось восстановить: " + msg.err.Error()
		}
		if msg.report.Restored {
			report := msg.report
			m.restore = &report
		}
		return m, nil

	case linesRefetchedMsg:
		m.loading = false
		m.refresh()
		if msg.err != nil {
			m.errMsg = humanizeServerUnavailableError(msg.err)
			return m, nil
		}
		m.status = fmt.Sprintf("Обновлено: заменено строк %d, объединено %d, удалено правок %d, конфликтов %d",
			msg.report.Replaced, msg.report.Merged, msg.report.Dropped, msg.report.Conflicts)
		return m, nil

	case syncDoneMsg:
		m.refresh()
		switch {
		case msg.err != nil:
			m.errMsg = humanizeSyncError(msg.err)
		case msg.result.Deferred:
			m.status = "Синхронизация уже идёт, правки будут отправлены следом"
		case msg.result.Sent == 0:
			m.status = "Нет правок для отправки"
		default:
			m.status = fmt.Sprintf("Отправлено строк: %d, сохранено: %d, устарело: %d",
				msg.result.Sent, msg.result.Cleared, msg.result.Stale)
		}
		return m, nil

	case editorChangedMsg:
		m.refresh()
		var tick tea.Cmd
		if m.editor.SyncStatus() == models.SyncStatusSyncing {
			tick = m.startSpinner()
		}
		return m, tick

	case spinner.TickMsg:
		if msg.ID != m.spinner.ID() {
			return m, nil
		}
		if !m.loading && m.editor.SyncStatus() != models.SyncStatusSyncing {
			m.spinning = false
			return m, nil
		}
		var cmd tea.Cmd
		m.spinner, cmd = m.spinner.Update(msg)
		return m, cmd

	case tea.KeyMsg:
		return m.handleKey(msg)
	}

	if m.editing {
		var cmd tea.Cmd
		m.input, cmd = m.input.Update(msg)
		return m, cmd
	}
	return m, nil
}

func (m *lineEditorModel) startSpinner() tea.Cmd {
	if m.spinning {
		return nil
	}
	m.spinning = true
	return m.spinner.Tick
}

func (m lineEditorModel) handleKey(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	if m.errMsg != "" {
		if key.Matches(msg, keys.enter) || key.Matches(msg, keys.esc) {
			m.errMsg = ""
		}
		return m, nil
	}

	if m.restore != nil {
		switch {
		case key.Matches(msg, keys.yes):
			m.status = fmt.Sprintf("Восстановлено правок: %d", m.restore.Fields)
			m.restore = nil
		case key.Matches(msg, keys.no), key.Matches(msg, keys.esc):
			m.editor.DiscardChanges()
			m.restore = nil
			m.status = "Несохранённые правки отброшены"
			m.refresh()
		}
		return m, nil
	}

	if m.confirmDiscard {
		switch {
		case key.Matches(msg, keys.yes):
			m.editor.DiscardChanges()
			m.confirmDiscard = false
			m.status = "Все правки отменены"
			m.refresh()
		case key.Matches(msg, keys.no), key.Matches(msg, keys.esc):
			m.confirmDiscard = false
		}
		return m, nil
	}

	if m.editing {
		switch {
		case key.Matches(msg, keys.enter):
			m.commitEdit()
			return m, nil
		case key.Matches(msg, keys.esc):
			m.editing = false
			m.input.Blur()
			return m, nil
		}
		var cmd tea.Cmd
		m.input, cmd = m.input.Update(msg)
		return m, cmd
	}

	switch {
	case key.Matches(msg, keys.esc), key.Matches(msg, keys.quit):
		return m, m.cmdClose()
	case key.Matches(msg, keys.up):
		if m.row > 0 {
			m.row--
		}
	case key.Matches(msg, keys.down):
		if m.row < len(m.rows)-1 {
			m.row++
		}
	case key.Matches(msg, keys.left), key.Matches(msg, keys.backtab):
		if m.col > 0 {
			m.col--
		}
	case key.Matches(msg, keys.right), key.Matches(msg, keys.tab):
		if m.col < len(columns)-1 {
			m.col++
		}
	case key.Matches(msg, keys.enter), key.Matches(msg, keys.edit):
		focus := m.beginEdit()
		return m, focus
	case key.Matches(msg, keys.clear):
		if line, ok := m.currentLine(); ok {
			m.editor.UpdateField(line.ID, columns[m.col].field, nil)
			m.refresh()
		}
	case key.Matches(msg, keys.discard):
		if line, ok := m.currentLine(); ok {
			m.editor.DiscardField(line.ID, columns[m.col].field)
			m.refresh()
		}
	case key.Matches(msg, keys.discardAll):
		if m.editor.HasUnsavedChanges() {
			m.confirmDiscard = true
		}
	case key.Matches(msg, keys.keepLocal), key.Matches(msg, keys.takeServer):
		m.resolveCurrent(key.Matches(msg, keys.keepLocal))
	case key.Matches(msg, keys.sync):
		m.status = ""
		tick := m.startSpinner()
		return m, tea.Batch(tick, m.cmdSync())
	case key.Matches(msg, keys.reload):
		if m.loading {
			return m, nil
		}
		m.loading = true
		tick := m.startSpinner()
		return m, tea.Batch(tick, m.cmdRefetch())
	}
	return m, nil
}

func (m *lineEditorModel) beginEdit() tea.Cmd {
	line, ok := m.currentLine()
	if !ok {
		return nil
	}
	field := columns[m.col].field
	v, _ := line.Value(field)

	m.editing = true
	m.input.SetValue(formatValue(field, v))
	m.input.CursorEnd()
	return m.input.Focus()
}

func (m *lineEditorModel) commitEdit() {
	m.editing = false
	m.input.Blur()

	line, ok := m.currentLine()
	if !ok {
		return
	}
	field := columns[m.col].field
	value := parseInput(field, m.input.Value())

	m.status = ""
	if err := validators.ValidateValue(field, value); err != nil {
		m.status = "Внимание: " + err.Error() + ". Правка сохранена, но сервер может её отклонить"
	}
	m.editor.UpdateField(line.ID, field, value)
	m.refresh()
}

func (m *lineEditorModel) resolveCurrent(useLocal bool) {
	line, ok := m.currentLine()
	if !ok {
		return
	}
	field := columns[m.col].field
	if _, conflicted := m.conflicts[models.RowField{RowID: line.ID, Field: field}]; !conflicted {
		m.status = "В этой ячейке нет конфликта"
		return
	}
	if err := m.editor.ResolveConflict(line.ID, field, useLocal); err != nil {
		m.status = "Не удалось разрешить конфликт: " + err.Error()
		return
	}
	if useLocal {
		m.status = "Оставлено ваше значение, оно будет отправлено снова"
	} else {
		m.status = "Принято значение с сервера"
	}
	m.refresh()
}

// refresh reloads the grid from the editor.
func (m *lineEditorModel) refresh() {
	m.rows = m.editor.DisplayRows()
	m.issues = validators.ValidateAll(m.validator, m.rows)

	conflicts := m.editor.Conflicts()
	m.conflicts = make(map[models.RowField]models.Conflict, len(conflicts))
	for _, c := range conflicts {
		m.conflicts[models.RowField{RowID: c.RowID, Field: c.Field}] = c
	}

	if m.row >= len(m.rows) {
		m.row = max(len(m.rows)-1, 0)
	}
}

func (m lineEditorModel) currentLine() (models.EstimateLine, bool) {
	if m.row < 0 || m.row >= len(m.rows) {
		return models.EstimateLine{}, false
	}
	return m.rows[m.row], true
}

func (m lineEditorModel) cmdOpen(docID string) tea.Cmd {
	return func() tea.Msg {
		rows, err := m.source.FetchLines(m.ctx, docID)
		if err != nil {
			if endErr := m.editor.EndSession(m.ctx); endErr != nil {
				err = fmt.Errorf("%w (previous session: %v)", err, endErr)
			}
			return NavigateTo{Page: pagePicker, Payload: openFailedMsg{docID: docID, err: err}}
		}

		parentID := docID
		if len(rows) > 0 && rows[0].ParentID != "" {
			parentID = rows[0].ParentID
		}
		report, err := m.editor.StartSession(m.ctx, docID, parentID, rows)
		return sessionOpenedMsg{docID: docID, report: report, err: err}
	}
}

func (m lineEditorModel) cmdClose() tea.Cmd {
	docID := m.docID
	return func() tea.Msg {
		err := m.editor.EndSession(m.ctx)
		return NavigateTo{Page: pagePicker, Payload: sessionClosedMsg{docID: docID, err: err}}
	}
}

func (m lineEditorModel) cmdSync() tea.Cmd {
	return func() tea.Msg {
		result, err := m.editor.SyncNow(m.ctx)
		return syncDoneMsg{result: result, err: err}
	}
}

func (m lineEditorModel) cmdRefetch() tea.Cmd {
	docID := m.docID
	return func() tea.Msg {
		rows, err := m.source.FetchLines(m.ctx, docID)
		if err != nil {
			return linesRefetchedMsg{err: err}
		}
		return linesRefetchedMsg{report: m.editor.MergeBaseline(rows)}
	}
}

func (m lineEditorModel) View() string {
	title := "Смета " + m.docID + "  " + m.statusLabel()
	if m.loading || m.editor.SyncStatus() == models.SyncStatusSyncing {
		title += "  " + m.spinner.View()
	}

	var b strings.Builder
	switch {
	case m.loading && len(m.rows) == 0:
		b.WriteString("Загрузка...\n")
	case len(m.rows) == 0:
		b.WriteString("В смете нет строк\n")
	default:
		b.WriteString(m.renderGrid())
		b.WriteString("\n")
		b.WriteString(m.renderDetails())
	}

	if m.editing {
		b.WriteString("\nПравка «" + columns[m.col].title + "»: " + m.input.View() + "\n")
	}
	if m.status != "" {
		b.WriteString("\n" + m.status + "\n")
	}
	if m.editor.SyncStatus() == models.SyncStatusError {
		b.WriteString("\n" + errorStyle.Render(humanizeSyncError(m.editor.LastError())) + "\n")
	}

	hotKeys := "←↑↓→ ячейка  enter править  ctrl+d очистить  x отменить правку  X отменить все  s синхр.  r обновить  esc к списку"
	if m.editing {
		hotKeys = "enter сохранить  esc отмена"
	}
	page := renderPage(title, b.String(), hotKeys)

	switch {
	case m.errMsg != "":
		return withOverlay(page, errorOverlayModel{message: m.errMsg}.View())
	case m.restore != nil:
		return withOverlay(page, confirmModel{message: restorePrompt(*m.restore)}.View())
	case m.confirmDiscard:
		return withOverlay(page, confirmModel{
			message: fmt.Sprintf("Отменить все несохранённые правки (%d)?", m.editor.PendingCount()),
		}.View())
	}
	return page
}

func (m lineEditorModel) statusLabel() string {
	switch m.editor.SyncStatus() {
	case models.SyncStatusSyncing:
		return "⟳ синхронизация"
	case models.SyncStatusError:
		return errorStyle.Render("✗ ошибка синхронизации")
	case models.SyncStatusConflict:
		return conflictStyle.Render(fmt.Sprintf("! конфликтов: %d", len(m.conflicts)))
	}
	if n := m.editor.PendingCount(); n > 0 {
		return pendingStyle.Render(fmt.Sprintf("● не отправлено: %d", n))
	}
	return "✓ сохранено"
}

func (m lineEditorModel) renderGrid() string {
	var b strings.Builder

	b.WriteString(padText("#", seqWidth))
	for _, c := range columns {
		b.WriteString(" ")
		b.WriteString(padText(c.title, c.width))
	}
	b.WriteString("\n")

	for i, line := range m.rows {
		issues := m.issues[line.ID]

		seq := padText(strconv.Itoa(line.SequenceNumber), seqWidth)
		if style, ok := severityStyle(validators.Worst(issues, models.FieldSequenceNumber)); ok {
			seq = style.Render(seq)
		}
		b.WriteString(seq)

		for j, c := range columns {
			b.WriteString(" ")
			b.WriteString(m.renderCell(line, issues, c, i == m.row && j == m.col))
		}
		b.WriteString("\n")
	}
	return b.String()
}

func (m lineEditorModel) renderCell(line models.EstimateLine, issues []validators.FieldIssue, c column, selected bool) string {
	v, _ := line.Value(c.field)
	_, conflicted := m.conflicts[models.RowField{RowID: line.ID, Field: c.field}]
	pending := m.editor.IsFieldPending(line.ID, c.field)

	marker := " "
	switch {
	case conflicted:
		marker = "!"
	case pending:
		marker = "*"
	}
	text := padText(formatValue(c.field, v), c.width-1) + marker

	if selected {
		return cursorStyle.Render(text)
	}
	if conflicted {
		return conflictStyle.Render(text)
	}
	if style, ok := severityStyle(validators.Worst(issues, c.field)); ok {
		return style.Render(text)
	}
	if pending {
		return pendingStyle.Render(text)
	}
	return text
}

func (m lineEditorModel) renderDetails() string {
	line, ok := m.currentLine()
	if !ok {
		return ""
	}
	c := columns[m.col]

	var b strings.Builder
	fmt.Fprintf(&b, "Строка %d, %s", line.SequenceNumber, c.title)
	if m.editor.IsFieldPending(line.ID, c.field) {
		b.WriteString("  (не отправлено)")
	}
	b.WriteString("\n")

	if conflict, ok := m.conflicts[models.RowField{RowID: line.ID, Field: c.field}]; ok {
		b.WriteString(conflictStyle.Render(fmt.Sprintf("Конфликт: ваше «%s», на сервере «%s»",
			formatValue(c.field, conflict.LocalValue), formatValue(c.field, conflict.ServerValue))))
		b.WriteString("\n")
		b.WriteString(helpStyle.Render("o оставить ваше  t взять серверное"))
		b.WriteString("\n")
	}

	for _, issue := range m.issues[line.ID] {
		switch issue.Severity {
		case validators.SeverityWarning:
			b.WriteString(warningStyle.Render("⚠ " + issue.Message))
		default:
			b.WriteString(infoStyle.Render("ℹ " + issue.Message))
		}
		b.WriteString("\n")
	}
	return b.String()
}

func restorePrompt(r models.RestoreReport) string {
	msg := fmt.Sprintf("Найдены несохранённые правки: полей %d в строках %d", r.Fields, r.Rows)
	if !r.LastModified.IsZero() {
		msg += " (" + r.LastModified.Local().Format("02.01.2006 15:04") + ")"
	}
	if r.Conflicts > 0 {
		msg += fmt.Sprintf(", конфликтов %d", r.Conflicts)
	}
	return msg + ".\nОставить их?"
}
