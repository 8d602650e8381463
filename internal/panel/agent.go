// Package panel implements the role-specialized panel agents. Each agent runs two
// passes: it extracts a structured working memory from the resume, then scores the
// candidate against the rubric using only that memory.
package panel

import (
	"context"
	"encoding/json"
	"fmt"
	"log/slog"
	"strings"
	"time"

	"github.com/jonathan/hiring-panel/internal/llm"
	"github.com/jonathan/hiring-panel/internal/prompts"
	"github.com/jonathan/hiring-panel/internal/types"
	"github.com/jonathan/hiring-panel/schemas"
)

// Status is a panel agent's lifecycle state
type Status string

// Agent states. Done and Failed are terminal.
const (
	StatusIdle             Status = "idle"
	StatusExtractingMemory Status = "extracting_memory"
	StatusEvaluating       Status = "evaluating"
	StatusDone             Status = "done"
	StatusFailed           Status = "failed"
)

// Terminal reports whether the status is Done or Failed.
func (s Status) Terminal() bool {
	return s == StatusDone || s == StatusFailed
}

// Input is the read-only data every agent evaluates
type Input struct {
	JobDescription string
	Resume         string
	Rubric         *types.Rubric
}

// Options configures an agent
type Options struct {
	RetryBudget   int
	StrictAnchors bool
	Tier          llm.ModelTier
	Logger        *slog.Logger
}

// Pass records the timing and outcome of one pass
type Pass struct {
	StartedAt time.Time
	EndedAt   time.Time
	Err       error
}

// Ran reports whether the pass was attempted.
func (p Pass) Ran() bool {
	return !p.StartedAt.IsZero()
}

// Outcome is what an agent hands back to the scheduler once terminal.
// Memory and Review are set only when Status is Done.
type Outcome struct {
	Agent   string
	Status  Status
	Memory  *types.WorkingMemory
	Review  *types.AgentReview
	Err     error
	Extract Pass
	Score   Pass
}

// Agent is one panel seat. An Agent is used by a single goroutine.
type Agent struct {
	Role   Role
	gw     *llm.Gateway
	opts   Options
	status Status
	log    *slog.Logger
}

// NewAgent creates an idle agent for a role.
func NewAgent(role Role, gw *llm.Gateway, opts Options) *Agent {
	logger := opts.Logger
	if logger == nil {
		logger = slog.Default()
	}
	return &Agent{
		Role:   role,
		gw:     gw,
		opts:   opts,
		status: StatusIdle,
		log:    logger.With("agent", role.Name),
	}
}

// Status returns the agent's current state.
func (a *Agent) Status() Status {
	return a.status
}

// Run executes both passes. It never returns an error; failures are reported in the
// Outcome so one agent cannot abort the rest of the panel.
func (a *Agent) Run(ctx context.Context, in Input) Outcome {
	out := Outcome{Agent: a.Role.Name}
	if a.status != StatusIdle {
		return a.fail(ctx, out, a.status, fmt.Errorf("agent already ran (status %s)", a.status))
	}

	a.status = StatusExtractingMemory
	out.Extract.StartedAt = time.Now().UTC()
	memory, err := a.extract(ctx, in)
	out.Extract.EndedAt = time.Now().UTC()
	if err != nil {
		out.Extract.Err = err
		return a.fail(ctx, out, StatusExtractingMemory, err)
	}
	a.log.DebugContext(ctx, "working memory extracted", "observations", len(memory.KeyObservations))

	if err := ctx.Err(); err != nil {
		return a.fail(ctx, out, StatusEvaluating, err)
	}

	a.status = StatusEvaluating
	out.Score.StartedAt = time.Now().UTC()
	review, err := a.evaluate(ctx, in, memory)
	out.Score.EndedAt = time.Now().UTC()
	if err != nil {
		out.Score.Err = err
		return a.fail(ctx, out, StatusEvaluating, err)
	}

	a.status = StatusDone
	out.Status = StatusDone
	out.Memory = memory
	out.Review = review
	a.log.InfoContext(ctx, "agent review complete", "categories", len(review.CategoryScores))
	return out
}

func (a *Agent) fail(ctx context.Context, out Outcome, stage Status, cause error) Outcome {
	a.status = StatusFailed
	out.Status = StatusFailed
	out.Memory = nil
	out.Review = nil
	out.Err = &AgentEvaluationError{Agent: a.Role.Name, Stage: stage, Cause: cause}
	a.log.WarnContext(ctx, "agent failed", "stage", stage, "error", cause)
	return out
}

func (a *Agent) extract(ctx context.Context, in Input) (*types.WorkingMemory, error) {
	prompt, err := prompts.Render("panel.json", "extract-memory", a.promptData(in, nil))
	if err != nil {
		return nil, err
	}
	memory, err := llm.Generate(ctx, a.gw, llm.Request{
		Schema:      schemas.WorkingMemory,
		Prompt:      prompt,
		RetryBudget: a.opts.RetryBudget,
		Tier:        a.opts.Tier,
	}, func(m *types.WorkingMemory) error {
		return ValidateMemory(m, in.Rubric)
	})
	if err != nil {
		return nil, err
	}
	memory.AgentName = a.Role.Name
	memory.CreatedAt = time.Now().UTC()
	return memory, nil
}

func (a *Agent) evaluate(ctx context.Context, in Input, memory *types.WorkingMemory) (*types.AgentReview, error) {
	prompt, err := prompts.Render("panel.json", "evaluate", a.promptData(in, memory))
	if err != nil {
		return nil, err
	}
	review, err := llm.Generate(ctx, a.gw, llm.Request{
		Schema:      schemas.AgentReview,
		Prompt:      prompt,
		RetryBudget: a.opts.RetryBudget,
		Tier:        a.opts.Tier,
	}, func(r *types.AgentReview) error {
		return ValidateReview(r, in.Rubric, a.opts.StrictAnchors)
	})
	if err != nil {
		return nil, err
	}
	review.AgentName = a.Role.Name
	return review, nil
}

func (a *Agent) promptData(in Input, memory *types.WorkingMemory) map[string]string {
	data := map[string]string{
		"RoleName":       a.Role.Title,
		"RoleFocus":      a.Role.FocusText(),
		"AgentName":      a.Role.Name,
		"JobDescription": in.JobDescription,
		"Resume":         in.Resume,
		"Rubric":         RenderRubric(in.Rubric),
	}
	if memory != nil {
		data["WorkingMemory"] = renderMemory(memory)
		if a.opts.StrictAnchors {
			data["ScoreRule"] = ""
		} else {
			data["ScoreRule"] = ", or a value between the lowest and highest anchor"
		}
	}
	return data
}

// RenderRubric formats a rubric for inclusion in a prompt.
func RenderRubric(r *types.Rubric) string {
	var sb strings.Builder
	fmt.Fprintf(&sb, "Role: %s\n", r.RoleTitle)
	for _, c := range r.Categories {
		must := ""
		if c.MustHave {
			must = ", MUST-HAVE"
		}
		fmt.Fprintf(&sb, "\n%s (weight %.2f%s): %s\n", c.Name, c.Weight, must, c.Description)
		for _, sc := range c.ScoringCriteria {
			fmt.Fprintf(&sb, "  %g - %s: %s\n", sc.Score, sc.Label, sc.Description)
		}
	}
	return sb.String()
}

func renderMemory(m *types.WorkingMemory) string {
	data, err := json.MarshalIndent(m, "", "  ")
	if err != nil {
		return fmt.Sprintf("%+v", *m)
	}
	return string(data)
}
