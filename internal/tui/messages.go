package tui

import (
	"github.com/compbench/compbench/internal/config"
	"github.com/compbench/compbench/internal/domain"
)

// Scene identifies a top-level view
type Scene int

const (
	SceneHome Scene = iota
	SceneResults
	SceneDetail
	SceneHelp
)

// String returns a human-readable name for a scene
func (s Scene) String() string {
	switch s {
	case SceneHome:
		return "Home"
	case SceneResults:
		return "Results"
	case SceneDetail:
		return "Specialty Detail"
	case SceneHelp:
		return "Help"
	default:
		return "Unknown"
	}
}

// NavigateMsg switches the current scene
type NavigateMsg struct {
	Scene Scene
}

// ErrorMsg carries a fatal error into the model
type ErrorMsg struct {
	Err error
}

// ConfigLoadedMsg delivers the parsed scenario file
type ConfigLoadedMsg struct {
	Config *config.Configuration
}

// RunStartedMsg marks the beginning of an optimization run
type RunStartedMsg struct{}

// RunProgressMsg reports the per-specialty loop position
type RunProgressMsg struct {
	SpecialtyIndex   int
	TotalSpecialties int
	SpecialtyName    string
}

// RunCompleteMsg delivers the finished run or its error
type RunCompleteMsg struct {
	Result *domain.RunResult
	Err    error
}
