// Package workflow runs a hiring panel end to end: rubric generation, the parallel
// panel and synthesis, threading a single WorkflowState through every stage.
package workflow

import (
	"context"
	"fmt"
	"log/slog"
	"strings"
	"time"

	"github.com/jonathan/hiring-panel/internal/config"
	"github.com/jonathan/hiring-panel/internal/llm"
	"github.com/jonathan/hiring-panel/internal/orchestrator"
	"github.com/jonathan/hiring-panel/internal/panel"
	"github.com/jonathan/hiring-panel/internal/state"
	"github.com/jonathan/hiring-panel/internal/synthesis"
)

// Stage name used for input validation failures
const StageInput = "input"

// ProgressEvent represents a progress update during a run
type ProgressEvent struct {
	Stage   string `json:"stage"`
	Agent   string `json:"agent,omitempty"`
	Message string `json:"message"`
	Content any    `json:"content,omitempty"`
}

// ProgressCallback is called for each progress event
type ProgressCallback func(event ProgressEvent)

// Input is what a caller provides for one evaluation
type Input struct {
	JobDescription string
	Resume         string
	CompanyContext string
}

// Engine wires the stages together
type Engine struct {
	Gateway    *llm.Gateway
	Workflow   config.WorkflowConfig
	Synthesis  config.SynthesisConfig
	Tier       llm.ModelTier
	Logger     *slog.Logger
	OnProgress ProgressCallback
}

// NewEngine creates an engine with the given gateway and settings.
func NewEngine(gw *llm.Gateway, wf config.WorkflowConfig, syn config.SynthesisConfig, logger *slog.Logger) *Engine {
	if logger == nil {
		logger = slog.Default()
	}
	return &Engine{
		Gateway:   gw,
		Workflow:  wf,
		Synthesis: syn,
		Tier:      llm.TierStandard,
		Logger:    logger,
	}
}

// Run evaluates one candidate. On a stage failure it returns the partially filled
// state together with an *Error naming the stage.
func (e *Engine) Run(ctx context.Context, in Input) (*state.WorkflowState, error) {
	st := state.New(in.JobDescription, in.Resume, in.CompanyContext)
	logger := e.Logger.With("run_id", st.Metadata.RunID.String())
	logger.InfoContext(ctx, "workflow started")

	if strings.TrimSpace(in.Resume) == "" {
		return st, e.fail(ctx, st, StageInput, fmt.Errorf("resume is empty"))
	}

	// Stage 1: rubric
	start := time.Now().UTC()
	rubric, err := orchestrator.GenerateRubric(ctx, e.Gateway, in.JobDescription, in.CompanyContext, orchestrator.Options{
		CategoryCount: e.Workflow.RubricCategoriesCount,
		RetryBudget:   e.Workflow.RubricRetries(),
		Tier:          e.Tier,
		Logger:        logger,
	})
	if err != nil {
		st.RecordEvent(state.StageEvent{Stage: state.StageOrchestrator, StartedAt: start, EndedAt: time.Now().UTC(), Status: state.StatusFailed, Error: err.Error()})
		return st, e.fail(ctx, st, state.StageOrchestrator, err)
	}
	if err := st.SetRubric(*rubric); err != nil {
		return st, e.fail(ctx, st, state.StageOrchestrator, err)
	}
	st.RecordEvent(state.StageEvent{Stage: state.StageOrchestrator, StartedAt: start, EndedAt: time.Now().UTC(), Status: state.StatusCompleted})
	e.emit(ProgressEvent{Stage: state.StageOrchestrator, Message: fmt.Sprintf("Generated rubric with %d categories", len(rubric.Categories)), Content: rubric})

	// Stage 2: panel
	roles := panel.Roles(e.Workflow.EnableProductAgent)
	agents := make([]*panel.Agent, 0, len(roles))
	for _, role := range roles {
		agents = append(agents, panel.NewAgent(role, e.Gateway, panel.Options{
			RetryBudget:   e.Workflow.AgentRetries(),
			StrictAnchors: e.Workflow.StrictAnchors,
			Tier:          e.Tier,
			Logger:        logger,
		}))
	}
	scheduler := &Scheduler{
		MaxConcurrent: e.Workflow.MaxConcurrentAgents,
		Timeout:       e.Workflow.PanelTimeout(),
		Logger:        logger,
	}
	summary, err := scheduler.Run(ctx, agents, panel.Input{
		JobDescription: in.JobDescription,
		Resume:         in.Resume,
		Rubric:         st.Rubric,
	}, st)
	if err != nil {
		return st, e.fail(ctx, st, state.StagePanel, err)
	}
	e.emit(ProgressEvent{Stage: state.StagePanel, Message: fmt.Sprintf("%d of %d panel agents completed", len(summary.Succeeded), len(agents)), Content: summary})

	// Stage 3: synthesis
	start = time.Now().UTC()
	packet, plan, err := synthesis.FromState(st, e.Synthesis)
	if err != nil {
		st.RecordEvent(state.StageEvent{Stage: state.StageSynthesis, StartedAt: start, EndedAt: time.Now().UTC(), Status: state.StatusFailed, Error: err.Error()})
		return st, e.fail(ctx, st, state.StageSynthesis, err)
	}
	st.DecisionPacket = packet
	st.InterviewPlan = plan
	st.RecordEvent(state.StageEvent{Stage: state.StageSynthesis, StartedAt: start, EndedAt: time.Now().UTC(), Status: state.StatusCompleted})
	e.emit(ProgressEvent{Stage: state.StageSynthesis, Message: fmt.Sprintf("Recommendation: %s (%.2f, %s confidence)", packet.Recommendation, packet.OverallFitScore, packet.ConfidenceLevel), Content: packet})

	st.Complete()
	logger.InfoContext(ctx, "workflow complete",
		"recommendation", packet.Recommendation, "score", packet.OverallFitScore, "confidence", packet.ConfidenceLevel)
	return st, nil
}

func (e *Engine) fail(ctx context.Context, st *state.WorkflowState, stage string, cause error) error {
	e.Logger.ErrorContext(ctx, "workflow failed", "run_id", st.Metadata.RunID.String(), "stage", stage, "error", cause)
	return &Error{Stage: stage, Metadata: st.Metadata, Cause: cause}
}

func (e *Engine) emit(event ProgressEvent) {
	if e.OnProgress != nil {
		e.OnProgress(event)
	}
}
