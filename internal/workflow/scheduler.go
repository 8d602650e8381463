package workflow

import (
	"context"
	"fmt"
	"log/slog"
	"sort"
	"time"

	"golang.org/x/sync/errgroup"

	"github.com/jonathan/hiring-panel/internal/panel"
	"github.com/jonathan/hiring-panel/internal/state"
)

// PanelSummary lists which agents succeeded and why the others failed
type PanelSummary struct {
	Succeeded []string
	Failed    map[string]string
}

// Scheduler runs panel agents concurrently and merges their outcomes into workflow state
// from a single goroutine. Agents never touch the state themselves.
type Scheduler struct {
	MaxConcurrent int
	Timeout       time.Duration
	Logger        *slog.Logger
}

// Run fans out to every agent and waits until each one is terminal or the timeout
// elapses. Agents still running at the deadline are recorded as failed and their
// results are discarded. It returns a PanelEvaluationError when no agent succeeded.
func (s *Scheduler) Run(ctx context.Context, agents []*panel.Agent, in panel.Input, st *state.WorkflowState) (PanelSummary, error) {
	logger := s.Logger
	if logger == nil {
		logger = slog.Default()
	}
	summary := PanelSummary{Failed: map[string]string{}}
	if len(agents) == 0 {
		return summary, &PanelEvaluationError{Failures: map[string]string{}}
	}

	runCtx := ctx
	cancel := func() {}
	if s.Timeout > 0 {
		runCtx, cancel = context.WithTimeout(ctx, s.Timeout)
	}
	defer cancel()

	started := time.Now().UTC()
	outcomes := make(chan panel.Outcome, len(agents))

	var g errgroup.Group
	if s.MaxConcurrent > 0 {
		g.SetLimit(s.MaxConcurrent)
	}
	go func() {
		for _, agent := range agents {
			agent := agent
			g.Go(func() error {
				outcomes <- agent.Run(runCtx, in)
				return nil
			})
		}
		_ = g.Wait()
	}()

	pending := make(map[string]bool, len(agents))
	for _, a := range agents {
		pending[a.Role.Name] = true
	}

	apply := func(out panel.Outcome) {
		if !pending[out.Agent] {
			return
		}
		delete(pending, out.Agent)
		s.merge(runCtx, logger, st, out, &summary)
	}

	for len(pending) > 0 {
		select {
		case out := <-outcomes:
			apply(out)
		case <-runCtx.Done():
			// Accept outcomes that were already delivered before the deadline.
		drain:
			for {
				select {
				case out := <-outcomes:
					apply(out)
				default:
					break drain
				}
			}
			cause := runCtx.Err()
			for _, name := range sortedKeys(pending) {
				apply(panel.Outcome{
					Agent:  name,
					Status: panel.StatusFailed,
					Err:    &panel.AgentEvaluationError{Agent: name, Stage: panel.StatusEvaluating, Cause: fmt.Errorf("panel deadline reached: %w", cause)},
				})
			}
		}
	}

	sort.Strings(summary.Succeeded)
	missing := sortedKeys(toSet(summary.Failed))
	if len(missing) > 0 {
		st.RecordMissingRoles(missing)
	}

	event := state.StageEvent{Stage: state.StagePanel, StartedAt: started, EndedAt: time.Now().UTC(), Status: state.StatusCompleted}
	if len(summary.Succeeded) == 0 {
		err := &PanelEvaluationError{Failures: summary.Failed}
		event.Status = state.StatusFailed
		event.Error = err.Error()
		st.RecordEvent(event)
		return summary, err
	}
	st.RecordEvent(event)
	logger.InfoContext(ctx, "panel complete", "succeeded", len(summary.Succeeded), "failed", len(summary.Failed))
	return summary, nil
}

// merge applies one agent outcome through the state reducers.
func (s *Scheduler) merge(ctx context.Context, logger *slog.Logger, st *state.WorkflowState, out panel.Outcome, summary *PanelSummary) {
	failed := false
	if out.Extract.Ran() {
		failed = recordPass(st, state.StageAgentMemory, out.Agent, out.Extract, out.Err) || failed
	}
	if out.Score.Ran() {
		failed = recordPass(st, state.StageAgentReview, out.Agent, out.Score, out.Err) || failed
	}

	if out.Status == panel.StatusDone && out.Memory != nil && out.Review != nil {
		st.MergeWorkingMemory(out.Agent, *out.Memory)
		if err := st.AppendReview(*out.Review); err != nil {
			logger.ErrorContext(ctx, "review rejected by state", "agent", out.Agent, "error", err)
			summary.Failed[out.Agent] = err.Error()
			return
		}
		summary.Succeeded = append(summary.Succeeded, out.Agent)
		return
	}

	msg := "agent did not complete"
	if out.Err != nil {
		msg = out.Err.Error()
	}
	if !failed {
		now := time.Now().UTC()
		st.RecordEvent(state.StageEvent{Stage: state.StagePanel, Agent: out.Agent, StartedAt: now, EndedAt: now, Status: state.StatusFailed, Error: msg})
	}
	summary.Failed[out.Agent] = msg
	logger.WarnContext(ctx, "panel agent failed", "agent", out.Agent, "error", msg)
}

// recordPass logs one pass and reports whether it was recorded as failed.
func recordPass(st *state.WorkflowState, stage, agent string, p panel.Pass, agentErr error) bool {
	event := state.StageEvent{Stage: stage, Agent: agent, StartedAt: p.StartedAt, EndedAt: p.EndedAt, Status: state.StatusCompleted}
	if p.Err != nil {
		event.Status = state.StatusFailed
		event.Error = p.Err.Error()
		if agentErr != nil {
			event.Error = agentErr.Error()
		}
	}
	st.RecordEvent(event)
	return p.Err != nil
}

func sortedKeys(m map[string]bool) []string {
	keys := make([]string, 0, len(m))
	for k := range m {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	return keys
}

func toSet(m map[string]string) map[string]bool {
	out := make(map[string]bool, len(m))
	for k := range m {
		out[k] = true
	}
	return out
}
