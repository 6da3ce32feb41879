// Package optimize implements the per-specialty conversion factor search and
// the governance checks layered on its results.
package optimize

import (
	"github.com/compbench/compbench/internal/domain"
)

// RunRequest carries the fully-formed inputs for an optimization run. The
// engine holds no state between runs; identical requests reproduce identical
// results.
type RunRequest struct {
	Providers []domain.Provider
	Market    []domain.MarketRow
	Synonyms  domain.SynonymMap
	Settings  domain.OptimizerSettings
}

// Progress reports the per-specialty loop position. Delivered between
// specialties so an interactive caller can render progress and cancel.
type Progress struct {
	SpecialtyIndex   int
	TotalSpecialties int
	SpecialtyName    string
}

// ProgressFunc receives progress updates; nil is allowed.
type ProgressFunc func(Progress)

// RunError represents engine failures with operation context.
type RunError struct {
	Operation string
	Message   string
	Cause     error
}

func (e *RunError) Error() string {
	if e.Cause != nil {
		return e.Operation + ": " + e.Message + ": " + e.Cause.Error()
	}
	return e.Operation + ": " + e.Message
}

func (e *RunError) Unwrap() error {
	return e.Cause
}
