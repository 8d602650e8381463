package orchestrator

import "fmt"

// RubricGenerationError is returned when no valid rubric could be produced
type RubricGenerationError struct {
	Message string
	Cause   error
}

func (e *RubricGenerationError) Error() string {
	if e.Cause != nil {
		return fmt.Sprintf("rubric generation failed: %s: %v", e.Message, e.Cause)
	}
	return fmt.Sprintf("rubric generation failed: %s", e.Message)
}

func (e *RubricGenerationError) Unwrap() error {
	return e.Cause
}
