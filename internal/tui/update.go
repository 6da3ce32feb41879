package tui

import (
	"fmt"

	"github.com/charmbracelet/bubbles/spinner"
	tea "github.com/charmbracelet/bubbletea"
)

// Update handles all messages and updates the model state
func (m Model) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {

	case tea.KeyMsg:
		return m.handleKeyPress(msg)

	case tea.WindowSizeMsg:
		m.width = msg.Width
		m.height = msg.Height
		return m, nil

	case spinner.TickMsg:
		var cmd tea.Cmd
		m.spinner, cmd = m.spinner.Update(msg)
		return m, cmd

	case NavigateMsg:
		m.previousScene = m.currentScene
		m.currentScene = msg.Scene
		return m, nil

	case ErrorMsg:
		m.err = msg.Err
		m.loading = false
		m.runInProgress = false
		return m, nil

	case ConfigLoadedMsg:
		m.config = msg.Config
		m.loading = false
		return m, nil

	case RunStartedMsg:
		m.runInProgress = true
		m.runProgress = 0
		m.runTotal = 0
		m.runStatus = "Starting..."
		m.events = make(chan tea.Msg, 16)
		return m, startRunCmd(m.config, m.events)

	case RunProgressMsg:
		m.runProgress = msg.SpecialtyIndex + 1
		m.runTotal = msg.TotalSpecialties
		m.runStatus = fmt.Sprintf("Optimizing %s (%d/%d)", msg.SpecialtyName, m.runProgress, m.runTotal)
		return m, waitForEventCmd(m.events)

	case RunCompleteMsg:
		m.runInProgress = false
		if msg.Err != nil {
			m.err = msg.Err
			return m, nil
		}
		m.result = msg.Result
		m.selectedSpecialty = 0
		m.previousScene = m.currentScene
		m.currentScene = SceneResults
		return m, nil
	}

	return m, nil
}

// handleKeyPress processes keyboard input
func (m Model) handleKeyPress(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	switch msg.String() {
	case "ctrl+c", "q":
		return m, tea.Quit

	case "?":
		return m, navigate(SceneHelp)

	case "esc":
		if m.currentScene != SceneHome {
			target := m.previousScene
			if target == m.currentScene {
				target = SceneHome
			}
			return m, navigate(target)
		}

	case "h":
		if m.currentScene != SceneHome {
			return m, navigate(SceneHome)
		}

	case "r":
		if m.result != nil && m.currentScene != SceneResults {
			return m, navigate(SceneResults)
		}

	case "o":
		if m.config != nil && !m.runInProgress {
			return m, func() tea.Msg { return RunStartedMsg{} }
		}

	case "up", "k":
		if m.currentScene == SceneResults && m.selectedSpecialty > 0 {
			m.selectedSpecialty--
		}
		return m, nil

	case "down", "j":
		if m.currentScene == SceneResults && m.result != nil &&
			m.selectedSpecialty < len(m.result.Specialties)-1 {
			m.selectedSpecialty++
		}
		return m, nil

	case "enter":
		if m.currentScene == SceneResults && m.result != nil && len(m.result.Specialties) > 0 {
			return m, navigate(SceneDetail)
		}
	}

	return m, nil
}

func navigate(s Scene) tea.Cmd {
	return func() tea.Msg {
		return NavigateMsg{Scene: s}
	}
}
