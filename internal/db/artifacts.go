package db

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"

	"github.com/jonathan/hiring-panel/internal/types"
)

// GetArtifact returns the raw JSON of one artifact, or nil if it was never stored.
func (db *DB) GetArtifact(ctx context.Context, runID uuid.UUID, step string) ([]byte, error) {
	var content []byte
	err := db.pool.QueryRow(ctx,
		`SELECT content FROM panel_artifacts WHERE run_id = $1 AND step = $2`, runID, step,
	).Scan(&content)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, nil
		}
		return nil, fmt.Errorf("failed to get artifact %s: %w", step, err)
	}
	return content, nil
}

// ListArtifacts summarizes the artifacts stored for a run.
func (db *DB) ListArtifacts(ctx context.Context, runID uuid.UUID) ([]ArtifactSummary, error) {
	rows, err := db.pool.Query(ctx,
		`SELECT id, step, octet_length(content::text), created_at
		 FROM panel_artifacts WHERE run_id = $1 ORDER BY step`, runID)
	if err != nil {
		return nil, fmt.Errorf("failed to list artifacts: %w", err)
	}
	return pgx.CollectRows(rows, pgx.RowToStructByPos[ArtifactSummary])
}

func loadArtifact[T any](ctx context.Context, db *DB, runID uuid.UUID, step string) (*T, error) {
	content, err := db.GetArtifact(ctx, runID, step)
	if err != nil || content == nil {
		return nil, err
	}
	var v T
	if err := json.Unmarshal(content, &v); err != nil {
		return nil, fmt.Errorf("failed to unmarshal %s: %w", step, err)
	}
	return &v, nil
}

// GetRubric loads the stored rubric of a run.
func (db *DB) GetRubric(ctx context.Context, runID uuid.UUID) (*types.Rubric, error) {
	return loadArtifact[types.Rubric](ctx, db, runID, StepRubric)
}

// GetDecisionPacket loads the stored decision packet of a run.
func (db *DB) GetDecisionPacket(ctx context.Context, runID uuid.UUID) (*types.DecisionPacket, error) {
	return loadArtifact[types.DecisionPacket](ctx, db, runID, StepDecisionPacket)
}

// GetInterviewPlan loads the stored interview plan of a run.
func (db *DB) GetInterviewPlan(ctx context.Context, runID uuid.UUID) (*types.InterviewPlan, error) {
	return loadArtifact[types.InterviewPlan](ctx, db, runID, StepInterviewPlan)
}

// GetPanelReviews loads the stored reviews of a run, sorted by agent.
func (db *DB) GetPanelReviews(ctx context.Context, runID uuid.UUID) ([]types.AgentReview, error) {
	reviews, err := loadArtifact[[]types.AgentReview](ctx, db, runID, StepPanelReviews)
	if err != nil || reviews == nil {
		return nil, err
	}
	return *reviews, nil
}
