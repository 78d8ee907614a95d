package cli

import (
	"fmt"

	"github.com/charmbracelet/bubbles/key"
	"github.com/charmbracelet/bubbles/viewport"
	tea "github.com/charmbracelet/bubbletea"

	"github.com/apetrov/orderflow/internal/cli/formatter"
)

// trailModel is a scrollable full-screen viewer for a rendered history
// tree. Long rework chains outgrow a terminal quickly; the viewport
// keeps them navigable.
type trailModel struct {
	viewport viewport.Model
	content  string
	ready    bool
	keys     trailKeyMap
}

type trailKeyMap struct {
	Quit key.Binding
}

func defaultTrailKeyMap() trailKeyMap {
	return trailKeyMap{
		Quit: key.NewBinding(
			key.WithKeys("q", "esc", "ctrl+c"),
			key.WithHelp("q", "quit"),
		),
	}
}

func newTrailModel(content string) trailModel {
	return trailModel{content: content, keys: defaultTrailKeyMap()}
}

func (m trailModel) Init() tea.Cmd {
	return nil
}

func (m trailModel) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.KeyMsg:
		if key.Matches(msg, m.keys.Quit) {
			return m, tea.Quit
		}
	case tea.WindowSizeMsg:
		footerHeight := 2
		if !m.ready {
			m.viewport = viewport.New(msg.Width, msg.Height-footerHeight)
			m.viewport.SetContent(m.content)
			m.ready = true
		} else {
			m.viewport.Width = msg.Width
			m.viewport.Height = msg.Height - footerHeight
		}
	}

	var cmd tea.Cmd
	m.viewport, cmd = m.viewport.Update(msg)
	return m, cmd
}

func (m trailModel) View() string {
	if !m.ready {
		return ""
	}
	footer := formatter.Dim(fmt.Sprintf("↑/↓ scroll · q quit · %3.f%%", m.viewport.ScrollPercent()*100))
	return m.viewport.View() + "\n" + footer
}

func runTrailBrowser(content string) error {
	p := tea.NewProgram(newTrailModel(content), tea.WithAltScreen())
	_, err := p.Run()
	return err
}
