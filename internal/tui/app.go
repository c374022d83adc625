package tui

import (
	tea "github.com/charmbracelet/bubbletea"
)

const (
	pagePicker = "picker"
	pageEditor = "editor"
)

// RootModel is a TUI router:
// 1) keeps active page
// 2) handles global Ctrl+C quit
// 3) handles NavigateTo messages
// 4) relays editor change notifications to the active page
// 5) delegates all other messages to the active page
type RootModel struct {
	pages   map[string]tea.Model
	active  string
	current tea.Model

	changes <-chan struct{}

	quitByUser bool
}

// NewRootModel registers all pages and opens startPage. changes delivers
// editor state notifications; it may be nil.
func NewRootModel(pages map[string]tea.Model, startPage string, changes <-chan struct{}) RootModel {
	return RootModel{
		pages:   pages,
		active:  startPage,
		current: pages[startPage],
		changes: changes,
	}
}

func (r RootModel) Init() tea.Cmd {
	cmds := []tea.Cmd{waitForChange(r.changes)}
	if r.current != nil {
		cmds = append(cmds, r.current.Init())
	}
	return tea.Batch(cmds...)
}

func (r RootModel) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	// Global hotkey for every page.
	if key, ok := msg.(tea.KeyMsg); ok && key.String() == "ctrl+c" {
		r.quitByUser = true
		return r, tea.Quit
	}

	// Cross-page navigation.
	if nav, ok := msg.(NavigateTo); ok {
		next, exists := r.pages[nav.Page]
		if !exists {
			return r, nil
		}

		r.pages[r.active] = r.current
		r.active = nav.Page
		r.current = next

		if nav.Payload != nil {
			payload := nav.Payload
			return r, tea.Batch(r.current.Init(), func() tea.Msg { return payload })
		}
		return r, r.current.Init()
	}

	var listen tea.Cmd
	if _, ok := msg.(editorChangedMsg); ok {
		listen = waitForChange(r.changes)
	}

	if r.current == nil {
		return r, listen
	}

	updated, cmd := r.current.Update(msg)
	r.current = updated
	return r, tea.Batch(cmd, listen)
}

func (r RootModel) View() string {
	if r.current == nil {
		return renderPage("TUI", "", "")
	}
	return r.current.View()
}

// waitForChange blocks until the editor reports a change.
func waitForChange(changes <-chan struct{}) tea.Cmd {
	if changes == nil {
		return nil
	}
	return func() tea.Msg {
		if _, ok := <-changes; !ok {
			return nil
		}
		return editorChangedMsg{}
	}
}
