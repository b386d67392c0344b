package panel

import (
	tea "github.com/charmbracelet/bubbletea"
)

// App hosts a single Panel as a full-screen Bubble Tea program. The panel is
// mounted in Init and unmounted when the user closes it.
type App struct {
	panel *Panel
}

// NewApp wraps p in a tea.Model.
func NewApp(p *Panel) App {
	return App{panel: p}
}

// Panel returns the hosted panel.
func (a App) Panel() *Panel { return a.panel }

// Init implements tea.Model
func (a App) Init() tea.Cmd {
	return a.panel.Mount()
}

// Update implements tea.Model
func (a App) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	if _, ok := msg.(CloseMsg); ok {
		a.panel.Unmount()
		return a, tea.Quit
	}
	return a, a.panel.Update(msg)
}

// View implements tea.Model
func (a App) View() string {
	if !a.panel.Mounted() {
		return ""
	}
	return a.panel.View()
}
