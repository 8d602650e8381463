package workflow

import (
	"fmt"
	"sort"
	"strings"

	"github.com/jonathan/hiring-panel/internal/state"
)

// PanelEvaluationError is returned when no panel agent produced a review
type PanelEvaluationError struct {
	// Failures maps agent name to its failure message
	Failures map[string]string
}

func (e *PanelEvaluationError) Error() string {
	agents := make([]string, 0, len(e.Failures))
	for name := range e.Failures {
		agents = append(agents, name)
	}
	sort.Strings(agents)
	parts := make([]string, 0, len(agents))
	for _, name := range agents {
		parts = append(parts, fmt.Sprintf("%s: %s", name, e.Failures[name]))
	}
	return fmt.Sprintf("all %d panel agents failed (%s)", len(agents), strings.Join(parts, "; "))
}

// Error is a stage-level failure. It carries the run metadata collected so far.
type Error struct {
	Stage    string
	Metadata state.Metadata
	Cause    error
}

func (e *Error) Error() string {
	return fmt.Sprintf("workflow %s failed at stage %s: %v", e.Metadata.RunID, e.Stage, e.Cause)
}

func (e *Error) Unwrap() error {
	return e.Cause
}
