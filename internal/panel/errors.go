package panel

import "fmt"

// AgentEvaluationError records why a single panel agent failed
type AgentEvaluationError struct {
	Agent string
	Stage Status
	Cause error
}

func (e *AgentEvaluationError) Error() string {
	return fmt.Sprintf("agent %s failed during %s: %v", e.Agent, e.Stage, e.Cause)
}

func (e *AgentEvaluationError) Unwrap() error {
	return e.Cause
}
