package db

import (
	"time"

	"github.com/google/uuid"
)

// DefaultListLimit is used when ListRuns is called without a limit
const DefaultListLimit = 20

// Run statuses
const (
	RunStatusCompleted = "completed"
	RunStatusFailed    = "failed"
)

// Artifact steps stored per run
const (
	StepRubric         = "rubric"
	StepWorkingMemory  = "working_memory"
	StepPanelReviews   = "panel_reviews"
	StepDecisionPacket = "decision_packet"
	StepInterviewPlan  = "interview_plan"
	StepMetadata       = "metadata"
)

// Run is one stored evaluation
type Run struct {
	ID             uuid.UUID  `json:"id"`
	RoleTitle      string     `json:"role_title"`
	JobURL         string     `json:"job_url,omitempty"`
	ResumeHash     string     `json:"resume_hash,omitempty"`
	Status         string     `json:"status"`
	Recommendation *string    `json:"recommendation,omitempty"`
	OverallScore   *float64   `json:"overall_score,omitempty"`
	Confidence     *string    `json:"confidence,omitempty"`
	MissingRoles   []string   `json:"missing_roles"`
	ErrorMessage   *string    `json:"error_message,omitempty"`
	CreatedAt      time.Time  `json:"created_at"`
	CompletedAt    *time.Time `json:"completed_at,omitempty"`
}

// RunInput is what SaveRun needs besides the workflow state
type RunInput struct {
	JobURL     string
	ResumeHash string
	// Err is the workflow error, if the run failed
	Err error
}

// ArtifactSummary lists a stored artifact without its content
type ArtifactSummary struct {
	ID        uuid.UUID `json:"id"`
	Step      string    `json:"step"`
	Bytes     int       `json:"bytes"`
	CreatedAt time.Time `json:"created_at"`
}

// RunStep is one persisted stage event
type RunStep struct {
	Seq          int       `json:"seq"`
	Stage        string    `json:"stage"`
	Agent        string    `json:"agent,omitempty"`
	Status       string    `json:"status"`
	StartedAt    time.Time `json:"started_at"`
	EndedAt      time.Time `json:"ended_at"`
	DurationMs   int64     `json:"duration_ms"`
	ErrorMessage *string   `json:"error_message,omitempty"`
}
