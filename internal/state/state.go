// Package state holds the run-scoped WorkflowState and the reducers that are the
// only way to mutate it.
//
// A WorkflowState is not safe for concurrent use. Concurrent producers (panel agents)
// hand their results to a single goroutine that applies the reducers.
package state

import (
	"errors"
	"fmt"
	"sort"
	"time"

	"github.com/google/uuid"
	"github.com/jonathan/hiring-panel/internal/types"
)

// Stage names recorded in the metadata event log
const (
	StageOrchestrator = "orchestrator"
	StagePanel        = "panel"
	StageAgentMemory  = "agent_memory"
	StageAgentReview  = "agent_review"
	StageSynthesis    = "synthesis"
)

// Event statuses
const (
	StatusCompleted = "completed"
	StatusFailed    = "failed"
	StatusSkipped   = "skipped"
)

// ErrDuplicateReview is returned when an agent's review is appended twice
var ErrDuplicateReview = errors.New("agent review already recorded")

// StageEvent is one entry of the append-only metadata log
type StageEvent struct {
	Stage     string    `json:"stage"`
	Agent     string    `json:"agent,omitempty"`
	StartedAt time.Time `json:"started_at"`
	EndedAt   time.Time `json:"ended_at"`
	Status    string    `json:"status"`
	Error     string    `json:"error,omitempty"`
}

// Duration returns the elapsed time of the event.
func (e StageEvent) Duration() time.Duration {
	return e.EndedAt.Sub(e.StartedAt)
}

// StageError records a failure for diagnosis
type StageError struct {
	Stage   string    `json:"stage"`
	Agent   string    `json:"agent,omitempty"`
	Message string    `json:"message"`
	At      time.Time `json:"at"`
}

// Metadata is the run id plus the stage event log
type Metadata struct {
	RunID        uuid.UUID    `json:"run_id"`
	StartedAt    time.Time    `json:"started_at"`
	CompletedAt  *time.Time   `json:"completed_at,omitempty"`
	Events       []StageEvent `json:"events"`
	Errors       []StageError `json:"errors"`
	MissingRoles []string     `json:"missing_roles,omitempty"`
}

// WorkflowState is the single container threaded through a run
type WorkflowState struct {
	JobDescription     string                         `json:"job_description"`
	Resume             string                         `json:"resume"`
	CompanyContext     string                         `json:"company_context,omitempty"`
	Rubric             *types.Rubric                  `json:"rubric"`
	AgentWorkingMemory map[string]types.WorkingMemory `json:"agent_working_memory"`
	PanelReviews       []types.AgentReview            `json:"panel_reviews"`
	DecisionPacket     *types.DecisionPacket          `json:"decision_packet"`
	InterviewPlan      *types.InterviewPlan           `json:"interview_plan"`
	Metadata           Metadata                       `json:"metadata"`
}

// New creates the state for a fresh run.
func New(jobDescription, resume, companyContext string) *WorkflowState {
	return &WorkflowState{
		JobDescription:     jobDescription,
		Resume:             resume,
		CompanyContext:     companyContext,
		AgentWorkingMemory: map[string]types.WorkingMemory{},
		PanelReviews:       []types.AgentReview{},
		Metadata: Metadata{
			RunID:     uuid.New(),
			StartedAt: time.Now().UTC(),
			Events:    []StageEvent{},
			Errors:    []StageError{},
		},
	}
}

// SetRubric stores the rubric. It can be set only once per run.
func (s *WorkflowState) SetRubric(r types.Rubric) error {
	if s.Rubric != nil {
		return fmt.Errorf("rubric already set for run %s", s.Metadata.RunID)
	}
	s.Rubric = &r
	return nil
}

// AppendReview appends an agent's review exactly once. The stored review is a deep copy.
func (s *WorkflowState) AppendReview(r types.AgentReview) error {
	if r.AgentName == "" {
		return fmt.Errorf("review has no agent name")
	}
	if _, ok := s.Review(r.AgentName); ok {
		return fmt.Errorf("%w: %s", ErrDuplicateReview, r.AgentName)
	}
	s.PanelReviews = append(s.PanelReviews, r.Clone())
	return nil
}

// MergeWorkingMemory writes an agent's working memory under its own key only.
func (s *WorkflowState) MergeWorkingMemory(agent string, m types.WorkingMemory) {
	if s.AgentWorkingMemory == nil {
		s.AgentWorkingMemory = map[string]types.WorkingMemory{}
	}
	s.AgentWorkingMemory[agent] = m.Clone()
}

// RecordEvent appends to the event log. Failed events are mirrored into Errors.
func (s *WorkflowState) RecordEvent(e StageEvent) {
	s.Metadata.Events = append(s.Metadata.Events, e)
	if e.Status == StatusFailed {
		s.Metadata.Errors = append(s.Metadata.Errors, StageError{
			Stage:   e.Stage,
			Agent:   e.Agent,
			Message: e.Error,
			At:      e.EndedAt,
		})
	}
}

// RecordMissingRoles notes panel roles that produced no review.
func (s *WorkflowState) RecordMissingRoles(roles []string) {
	s.Metadata.MissingRoles = append(s.Metadata.MissingRoles, roles...)
	sort.Strings(s.Metadata.MissingRoles)
}

// Complete stamps the completion time.
func (s *WorkflowState) Complete() {
	now := time.Now().UTC()
	s.Metadata.CompletedAt = &now
}

// Review returns the review recorded for an agent.
func (s *WorkflowState) Review(agent string) (types.AgentReview, bool) {
	for _, r := range s.PanelReviews {
		if r.AgentName == agent {
			return r, true
		}
	}
	return types.AgentReview{}, false
}

// ReviewsByAgent returns reviews sorted by agent name.
func (s *WorkflowState) ReviewsByAgent() []types.AgentReview {
	out := append([]types.AgentReview(nil), s.PanelReviews...)
	sort.Slice(out, func(i, j int) bool { return out[i].AgentName < out[j].AgentName })
	return out
}

// EventsFor returns the events recorded for a stage, in order.
func (s *WorkflowState) EventsFor(stage string) []StageEvent {
	var out []StageEvent
	for _, e := range s.Metadata.Events {
		if e.Stage == stage {
			out = append(out, e)
		}
	}
	return out
}

// CheckConsistency verifies every review has a matching working memory entry
// and every memory entry is stored under its own agent name.
func (s *WorkflowState) CheckConsistency() error {
	for key, m := range s.AgentWorkingMemory {
		if m.AgentName != key {
			return fmt.Errorf("working memory keyed %q belongs to %q", key, m.AgentName)
		}
	}
	for _, r := range s.PanelReviews {
		if _, ok := s.AgentWorkingMemory[r.AgentName]; !ok {
			return fmt.Errorf("review from %q has no working memory", r.AgentName)
		}
	}
	return nil
}
