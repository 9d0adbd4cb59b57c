// Package tui is the interactive forest browser.
package tui

import (
	tea "github.com/charmbracelet/bubbletea"

	"github.com/i5heu/pinforest/internal/adapters/tui/views"
)

// App is the main TUI application model
type App struct {
	browser *views.BrowserModel
}

func NewApp(forest views.Forest, logs views.LogSource) *App {
	return &App{browser: views.NewBrowserModel(forest, logs)}
}

func (a *App) Init() tea.Cmd {
	return a.browser.Init()
}

func (a *App) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	_, cmd := a.browser.Update(msg)
	return a, cmd
}

func (a *App) View() string {
	return a.browser.View()
}

// Run blocks until the user quits.
func Run(forest views.Forest, logs views.LogSource) error {
	p := tea.NewProgram(NewApp(forest, logs), tea.WithAltScreen())
	_, err := p.Run()
	return err
}
