// Package tui is the interactive console front end: load a scenario, run the
// optimizer with live progress, and browse per-specialty recommendations.
package tui

import (
	"context"

	"github.com/charmbracelet/bubbles/spinner"
	tea "github.com/charmbracelet/bubbletea"

	"github.com/compbench/compbench/internal/config"
	"github.com/compbench/compbench/internal/domain"
	"github.com/compbench/compbench/internal/optimize"
)

// Model represents the entire application state
type Model struct {
	// Navigation
	currentScene  Scene
	previousScene Scene

	// Terminal dimensions
	width  int
	height int

	// Configuration and data
	configPath string
	config     *config.Configuration

	// Run state
	runInProgress bool
	runProgress   int
	runTotal      int
	runStatus     string
	result        *domain.RunResult

	// Results navigation
	selectedSpecialty int

	// Event stream from the background run
	events chan tea.Msg

	spinner spinner.Model

	// Error state
	err error

	// Loading state
	loading        bool
	loadingMessage string
}

// NewModel creates a new application model
func NewModel(configPath string) Model {
	sp := spinner.New()
	sp.Spinner = spinner.Dot
	return Model{
		currentScene:   SceneHome,
		configPath:     configPath,
		spinner:        sp,
		width:          80,
		height:         24,
		loading:        true,
		loadingMessage: "Loading scenario...",
	}
}

// Init initializes the model (required by tea.Model interface)
func (m Model) Init() tea.Cmd {
	return tea.Batch(loadConfigCmd(m.configPath), m.spinner.Tick)
}

// loadConfigCmd returns a command that loads the scenario file
func loadConfigCmd(path string) tea.Cmd {
	return func() tea.Msg {
		parser := config.NewInputParser()
		cfg, err := parser.LoadFromFile(path)
		if err != nil {
			return ErrorMsg{Err: err}
		}
		return ConfigLoadedMsg{Config: cfg}
	}
}

// startRunCmd launches the optimizer in the background. Progress and the
// final result both arrive through the model's event channel so the UI stays
// responsive.
func startRunCmd(cfg *config.Configuration, events chan tea.Msg) tea.Cmd {
	go func() {
		engine := optimize.NewEngine()
		result, err := engine.Run(context.Background(), optimize.RunRequest{
			Providers: cfg.Providers,
			Market:    cfg.Market,
			Synonyms:  cfg.Synonyms,
			Settings:  cfg.Optimizer,
		}, func(p optimize.Progress) {
			events <- RunProgressMsg{
				SpecialtyIndex:   p.SpecialtyIndex,
				TotalSpecialties: p.TotalSpecialties,
				SpecialtyName:    p.SpecialtyName,
			}
		})
		events <- RunCompleteMsg{Result: result, Err: err}
	}()
	return waitForEventCmd(events)
}

// waitForEventCmd delivers the next background event to Update.
func waitForEventCmd(events chan tea.Msg) tea.Cmd {
	return func() tea.Msg {
		return <-events
	}
}
