// Package tui is the terminal front end of the estimate editor: a picker of
// the estimates held by the authority and a line grid that edits one of them
// optimistically.
package tui

import (
	"context"
	"errors"

	tea "github.com/charmbracelet/bubbletea"

	"github.com/MKhiriev/go-estimate-sync/internal/adapter"
	"github.com/MKhiriev/go-estimate-sync/internal/logger"
	"github.com/MKhiriev/go-estimate-sync/internal/service"
)

var ErrUserQuit = errors.New("вышел из программы")

type TUI struct {
	editor service.EstimateEditor
	source adapter.LineSource
	logger *logger.Logger
}

func New(editor service.EstimateEditor, source adapter.LineSource, log *logger.Logger) *TUI {
	return &TUI{editor: editor, source: source, logger: log}
}

// Run shows the estimate picker and blocks until the user leaves. A Ctrl+C
// exit is reported as ErrUserQuit.
func (t *TUI) Run(ctx context.Context) error {
	changes := make(chan struct{}, 1)
	t.editor.OnChange(func() {
		select {
		case changes <- struct{}{}:
		default:
		}
	})

	pages := map[string]tea.Model{
		pagePicker: newPickerModel(ctx, t.source),
		pageEditor: newLineEditorModel(ctx, t.editor, t.source),
	}

	root := NewRootModel(pages, pagePicker, changes)
	finalModel, runErr := tea.NewProgram(root, tea.WithAltScreen(), tea.WithContext(ctx)).Run()
	if runErr != nil {
		if errors.Is(runErr, tea.ErrProgramKilled) && ctx.Err() != nil {
			return nil
		}
		return runErr
	}

	result, ok := finalModel.(RootModel)
	if !ok {
		return tea.ErrProgramKilled
	}
	if result.quitByUser {
		t.logger.Info().Str("func", "TUI.Run").Msg("user quit")
		return ErrUserQuit
	}
	return nil
}
