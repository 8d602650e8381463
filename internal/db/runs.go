package db

import (
	"context"
	"encoding/json"
	"fmt"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"

	"github.com/jonathan/hiring-panel/internal/state"
)

type artifact struct {
	step    string
	content any
}

// SaveRun stores a finished or failed run in one transaction: the run row, every
// artifact the state holds, and the stage event log. Saving the same run again
// replaces its artifacts and steps.
func (db *DB) SaveRun(ctx context.Context, st *state.WorkflowState, in RunInput) (uuid.UUID, error) {
	run := runRecord(st, in)
	artifacts, err := encodeArtifacts(artifactsFor(st))
	if err != nil {
		return uuid.Nil, err
	}
	steps := stepsFor(st.Metadata.Events)

	err = pgx.BeginFunc(ctx, db.pool, func(tx pgx.Tx) error {
		_, err := tx.Exec(ctx,
			`INSERT INTO panel_runs (id, role_title, job_url, resume_hash, status, recommendation,
			                         overall_score, confidence, missing_roles, error_message, created_at, completed_at)
			 VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12)
			 ON CONFLICT (id) DO UPDATE SET status = $5, recommendation = $6, overall_score = $7,
			     confidence = $8, missing_roles = $9, error_message = $10, completed_at = $12`,
			run.ID, run.RoleTitle, run.JobURL, run.ResumeHash, run.Status, run.Recommendation,
			run.OverallScore, run.Confidence, run.MissingRoles, run.ErrorMessage, run.CreatedAt, run.CompletedAt)
		if err != nil {
			return fmt.Errorf("failed to save run: %w", err)
		}

		batch := &pgx.Batch{}
		for step, content := range artifacts {
			batch.Queue(
				`INSERT INTO panel_artifacts (run_id, step, content) VALUES ($1, $2, $3)
				 ON CONFLICT (run_id, step) DO UPDATE SET content = $3, created_at = NOW()`,
				run.ID, step, content)
		}
		batch.Queue(`DELETE FROM panel_run_steps WHERE run_id = $1`, run.ID)
		for _, s := range steps {
			batch.Queue(
				`INSERT INTO panel_run_steps (run_id, seq, stage, agent, status, started_at, ended_at, duration_ms, error_message)
				 VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9)`,
				run.ID, s.Seq, s.Stage, s.Agent, s.Status, s.StartedAt, s.EndedAt, s.DurationMs, s.ErrorMessage)
		}
		if err := tx.SendBatch(ctx, batch).Close(); err != nil {
			return fmt.Errorf("failed to save artifacts: %w", err)
		}
		return nil
	})
	if err != nil {
		return uuid.Nil, err
	}
	return run.ID, nil
}

// runRecord derives the run row from the workflow state.
func runRecord(st *state.WorkflowState, in RunInput) Run {
	run := Run{
		ID:           st.Metadata.RunID,
		JobURL:       in.JobURL,
		ResumeHash:   in.ResumeHash,
		Status:       RunStatusCompleted,
		MissingRoles: append([]string{}, st.Metadata.MissingRoles...),
		CreatedAt:    st.Metadata.StartedAt,
		CompletedAt:  st.Metadata.CompletedAt,
	}
	if st.Rubric != nil {
		run.RoleTitle = st.Rubric.RoleTitle
	}
	if p := st.DecisionPacket; p != nil {
		rec, conf, score := string(p.Recommendation), string(p.ConfidenceLevel), p.OverallFitScore
		run.Recommendation, run.Confidence, run.OverallScore = &rec, &conf, &score
	}
	if in.Err != nil {
		msg := in.Err.Error()
		run.Status = RunStatusFailed
		run.ErrorMessage = &msg
	}
	return run
}

// artifactsFor lists the artifacts present in the state. Stages that never ran
// contribute nothing.
func artifactsFor(st *state.WorkflowState) []artifact {
	out := []artifact{{StepMetadata, st.Metadata}}
	if st.Rubric != nil {
		out = append(out, artifact{StepRubric, st.Rubric})
	}
	if len(st.AgentWorkingMemory) > 0 {
		out = append(out, artifact{StepWorkingMemory, st.AgentWorkingMemory})
	}
	if len(st.PanelReviews) > 0 {
		out = append(out, artifact{StepPanelReviews, st.ReviewsByAgent()})
	}
	if st.DecisionPacket != nil {
		out = append(out, artifact{StepDecisionPacket, st.DecisionPacket})
	}
	if st.InterviewPlan != nil {
		out = append(out, artifact{StepInterviewPlan, st.InterviewPlan})
	}
	return out
}

func encodeArtifacts(list []artifact) (map[string][]byte, error) {
	out := make(map[string][]byte, len(list))
	for _, a := range list {
		data, err := json.Marshal(a.content)
		if err != nil {
			return nil, fmt.Errorf("failed to marshal artifact %s: %w", a.step, err)
		}
		out[a.step] = data
	}
	return out, nil
}

func stepsFor(events []state.StageEvent) []RunStep {
	steps := make([]RunStep, 0, len(events))
	for i, e := range events {
		s := RunStep{
			Seq:        i,
			Stage:      e.Stage,
			Agent:      e.Agent,
			Status:     e.Status,
			StartedAt:  e.StartedAt,
			EndedAt:    e.EndedAt,
			DurationMs: e.Duration().Milliseconds(),
		}
		if e.Error != "" {
			msg := e.Error
			s.ErrorMessage = &msg
		}
		steps = append(steps, s)
	}
	return steps
}

// ListRunSteps returns a run's stage events in recorded order.
func (db *DB) ListRunSteps(ctx context.Context, runID uuid.UUID) ([]RunStep, error) {
	rows, err := db.pool.Query(ctx,
		`SELECT seq, stage, agent, status, started_at, ended_at, duration_ms, error_message
		 FROM panel_run_steps WHERE run_id = $1 ORDER BY seq`, runID)
	if err != nil {
		return nil, fmt.Errorf("failed to list run steps: %w", err)
	}
	return pgx.CollectRows(rows, func(row pgx.CollectableRow) (RunStep, error) {
		var s RunStep
		err := row.Scan(&s.Seq, &s.Stage, &s.Agent, &s.Status, &s.StartedAt, &s.EndedAt, &s.DurationMs, &s.ErrorMessage)
		return s, err
	})
}
