// Copyright 2026 The PromptVault Authors
// SPDX-License-Identifier: Apache-2.0

// Package browse implements the interactive vault browser: a two-pane
// terminal UI with the key list on the left and the selected version's
// content on the right, plus an optional history panel. Everything is
// read-only — mutations go through the regular commands.
package browse

import (
	"fmt"
	"strings"

	"github.com/charmbracelet/bubbles/key"
	"github.com/charmbracelet/bubbles/viewport"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"

	"github.com/promptvault/promptvault/lib/manager"
	"github.com/promptvault/promptvault/lib/vault"
)

// FocusRegion identifies which pane has keyboard focus.
type FocusRegion int

const (
	// FocusList means navigation keys move the key list cursor.
	FocusList FocusRegion = iota
	// FocusContent means navigation keys scroll the content viewport.
	FocusContent
)

// listPaneWidth is the fixed width of the key list; the content pane
// takes the rest.
const listPaneWidth = 30

// Model is the bubbletea model for the vault browser.
type Model struct {
	manager *manager.Manager
	theme   Theme

	keys     []string
	cursor   int
	focus    FocusRegion
	showHist bool

	// Selected key state, reloaded on every selection change.
	history []vault.VersionRecord
	version uint64
	content string
	loadErr error

	viewport viewport.Model
	width    int
	height   int
	ready    bool
}

// New builds a browser over the given manager.
func New(m *manager.Manager) Model {
	model := Model{
		manager: m,
		theme:   DefaultTheme(),
		keys:    m.Keys(),
	}
	model.loadSelection()
	return model
}

// Run starts the browser in the alternate screen and blocks until the
// user quits.
func Run(m *manager.Manager) error {
	_, err := tea.NewProgram(New(m), tea.WithAltScreen()).Run()
	return err
}

// Init implements tea.Model.
func (m Model) Init() tea.Cmd {
	return nil
}

// loadSelection loads the history and latest content for the key
// under the cursor.
func (m *Model) loadSelection() {
	m.history = nil
	m.content = ""
	m.version = 0
	m.loadErr = nil

	if len(m.keys) == 0 {
		return
	}
	selected := m.keys[m.cursor]

	history, err := m.manager.History(selected)
	if err != nil {
		m.loadErr = err
		return
	}
	m.history = history
	m.version = history[len(history)-1].Version
	m.loadContent()
}

// loadContent fetches the content of the currently selected version.
func (m *Model) loadContent() {
	selected := m.keys[m.cursor]
	content, err := m.manager.Get(selected, vault.Version(m.version))
	if err != nil {
		m.loadErr = err
		return
	}
	m.content = content
	if m.ready {
		m.viewport.SetContent(content)
		m.viewport.GotoTop()
	}
}

// Update implements tea.Model.
func (m Model) Update(message tea.Msg) (tea.Model, tea.Cmd) {
	switch message := message.(type) {
	case tea.WindowSizeMsg:
		m.width = message.Width
		m.height = message.Height
		contentWidth := max(m.width-listPaneWidth-3, 0)
		contentHeight := max(m.height-4, 0)
		if !m.ready {
			m.viewport = viewport.New(contentWidth, contentHeight)
			m.viewport.SetContent(m.content)
			m.ready = true
		} else {
			m.viewport.Width = contentWidth
			m.viewport.Height = contentHeight
		}
		return m, nil

	case tea.KeyMsg:
		switch {
		case key.Matches(message, keys.Quit):
			return m, tea.Quit

		case key.Matches(message, keys.ToggleFocus):
			if m.focus == FocusList {
				m.focus = FocusContent
			} else {
				m.focus = FocusList
			}
			return m, nil

		case key.Matches(message, keys.ToggleHistory):
			m.showHist = !m.showHist
			return m, nil

		case key.Matches(message, keys.Up):
			if m.focus == FocusContent {
				m.viewport.LineUp(1)
				return m, nil
			}
			if m.cursor > 0 {
				m.cursor--
				m.loadSelection()
			}
			return m, nil

		case key.Matches(message, keys.Down):
			if m.focus == FocusContent {
				m.viewport.LineDown(1)
				return m, nil
			}
			if m.cursor < len(m.keys)-1 {
				m.cursor++
				m.loadSelection()
			}
			return m, nil

		case key.Matches(message, keys.OlderVersion):
			if m.version > 1 {
				m.version--
				m.loadContent()
			}
			return m, nil

		case key.Matches(message, keys.NewerVersion):
			if len(m.history) > 0 && m.version < m.history[len(m.history)-1].Version {
				m.version++
				m.loadContent()
			}
			return m, nil

		case key.Matches(message, keys.LatestVersion):
			if len(m.history) > 0 {
				m.version = m.history[len(m.history)-1].Version
				m.loadContent()
			}
			return m, nil

		case key.Matches(message, keys.ScrollUp):
			m.viewport.HalfViewUp()
			return m, nil

		case key.Matches(message, keys.ScrollDown):
			m.viewport.HalfViewDown()
			return m, nil
		}
	}

	var command tea.Cmd
	m.viewport, command = m.viewport.Update(message)
	return m, command
}

// View implements tea.Model.
func (m Model) View() string {
	if !m.ready {
		return "loading..."
	}
	if len(m.keys) == 0 {
		return lipgloss.NewStyle().Foreground(m.theme.FaintText).
			Render("\n  vault is empty — add a prompt with 'promptvault add'\n")
	}

	left := m.renderKeyList()
	right := m.renderContent()
	body := lipgloss.JoinHorizontal(lipgloss.Top, left, " ", right)

	return lipgloss.JoinVertical(lipgloss.Left, m.renderHeader(), body, m.renderHelp())
}

func (m Model) renderHeader() string {
	record := m.selectedRecord()
	title := ""
	if record != nil {
		form := "delta"
		if record.Snapshot {
			form = "snapshot"
		}
		title = fmt.Sprintf("%s@%d  %s  %s",
			record.Key, record.Version, form,
			record.Timestamp.Local().Format("2006-01-02 15:04"))
		if len(record.Tags) > 0 {
			title += "  [" + strings.Join(record.Tags, " ") + "]"
		}
	}
	return lipgloss.NewStyle().
		Foreground(m.theme.HeaderForeground).
		Bold(true).
		Width(m.width).
		Render(" " + title)
}

func (m Model) renderKeyList() string {
	normal := lipgloss.NewStyle().Foreground(m.theme.NormalText).Width(listPaneWidth)
	selected := lipgloss.NewStyle().
		Foreground(m.theme.SelectedForeground).
		Background(m.theme.SelectedBackground).
		Width(listPaneWidth)

	var rows []string
	for i, name := range m.keys {
		label := " " + name
		if i == m.cursor {
			rows = append(rows, selected.Render(label))
		} else {
			rows = append(rows, normal.Render(label))
		}
	}

	height := max(m.height-4, 0)
	if len(rows) > height {
		rows = rows[:height]
	}
	for len(rows) < height {
		rows = append(rows, normal.Render(""))
	}
	border := lipgloss.NewStyle().
		BorderStyle(lipgloss.NormalBorder()).
		BorderRight(true).
		BorderForeground(m.theme.BorderColor)
	return border.Render(strings.Join(rows, "\n"))
}

func (m Model) renderContent() string {
	if m.loadErr != nil {
		return lipgloss.NewStyle().Foreground(m.theme.FaintText).
			Render("error: " + m.loadErr.Error())
	}
	if m.showHist {
		return m.renderHistory()
	}
	return m.viewport.View()
}

// renderHistory draws the version list for the selected key in place
// of the content viewport, newest first.
func (m Model) renderHistory() string {
	snapshot := lipgloss.NewStyle().Foreground(m.theme.SnapshotAccent)
	delta := lipgloss.NewStyle().Foreground(m.theme.DeltaAccent)
	tag := lipgloss.NewStyle().Foreground(m.theme.TagForeground)
	dev := lipgloss.NewStyle().Foreground(m.theme.DevTagAccent)
	faint := lipgloss.NewStyle().Foreground(m.theme.FaintText)
	marker := lipgloss.NewStyle().Foreground(m.theme.HeaderForeground).Bold(true)

	var rows []string
	for i := len(m.history) - 1; i >= 0; i-- {
		record := m.history[i]

		form := delta.Render("delta   ")
		if record.Snapshot {
			form = snapshot.Render("snapshot")
		}

		var tags []string
		for _, name := range record.Tags {
			if name == vault.DevTag {
				tags = append(tags, dev.Render(name))
			} else {
				tags = append(tags, tag.Render(name))
			}
		}

		cursor := "  "
		if record.Version == m.version {
			cursor = marker.Render("> ")
		}
		row := fmt.Sprintf("%s%3d  %s  %s  %s %s",
			cursor,
			record.Version,
			faint.Render(record.Timestamp.Local().Format("2006-01-02 15:04")),
			form,
			strings.Join(tags, " "),
			record.Message)
		rows = append(rows, row)
	}
	return strings.Join(rows, "\n")
}

func (m Model) renderHelp() string {
	bindings := []key.Binding{
		keys.Up, keys.Down, keys.OlderVersion, keys.NewerVersion,
		keys.ToggleHistory, keys.ToggleFocus, keys.Quit,
	}
	var parts []string
	for _, binding := range bindings {
		help := binding.Help()
		parts = append(parts, help.Key+" "+help.Desc)
	}
	return lipgloss.NewStyle().
		Foreground(m.theme.HelpText).
		Width(m.width).
		Render(" " + strings.Join(parts, "  ·  "))
}

// selectedRecord returns the record for the version being viewed, or
// nil when nothing is selected.
func (m Model) selectedRecord() *vault.VersionRecord {
	for i := range m.history {
		if m.history[i].Version == m.version {
			return &m.history[i]
		}
	}
	return nil
}
