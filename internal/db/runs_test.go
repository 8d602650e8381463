package db

import (
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/jonathan/hiring-panel/internal/state"
	"github.com/jonathan/hiring-panel/internal/types"
)

func completedState(t *testing.T) *state.WorkflowState {
	t.Helper()
	st := state.New("jd", "resume", "")
	require.NoError(t, st.SetRubric(types.Rubric{RoleTitle: "Backend Engineer"}))
	st.MergeWorkingMemory("hr", types.WorkingMemory{AgentName: "hr"})
	require.NoError(t, st.AppendReview(types.AgentReview{AgentName: "hr"}))
	st.DecisionPacket = &types.DecisionPacket{
		RoleTitle:       "Backend Engineer",
		OverallFitScore: 3.1,
		Recommendation:  types.RecommendMaybe,
		ConfidenceLevel: types.ConfidenceLow,
	}
	st.InterviewPlan = &types.InterviewPlan{OverallFocus: "Leadership"}
	st.RecordMissingRoles([]string{"technical"})
	st.Complete()
	return st
}

func TestRunRecord_Completed(t *testing.T) {
	st := completedState(t)
	run := runRecord(st, RunInput{JobURL: "https://jobs.example.com/1", ResumeHash: "abc"})

	assert.Equal(t, st.Metadata.RunID, run.ID)
	assert.Equal(t, "Backend Engineer", run.RoleTitle)
	assert.Equal(t, RunStatusCompleted, run.Status)
	require.NotNil(t, run.Recommendation)
	assert.Equal(t, "maybe", *run.Recommendation)
	assert.Equal(t, 3.1, *run.OverallScore)
	assert.Equal(t, "low", *run.Confidence)
	assert.Equal(t, []string{"technical"}, run.MissingRoles)
	assert.Nil(t, run.ErrorMessage)
	assert.NotNil(t, run.CompletedAt)
}

func TestRunRecord_Failed(t *testing.T) {
	st := state.New("jd", "resume", "")
	run := runRecord(st, RunInput{Err: errors.New("all 3 panel agents failed")})

	assert.Equal(t, RunStatusFailed, run.Status)
	require.NotNil(t, run.ErrorMessage)
	assert.Contains(t, *run.ErrorMessage, "panel agents failed")
	assert.Nil(t, run.Recommendation)
	assert.Empty(t, run.RoleTitle)
	assert.NotNil(t, run.MissingRoles)
}

func TestArtifactsFor(t *testing.T) {
	steps := func(list []artifact) []string {
		out := []string{}
		for _, a := range list {
			out = append(out, a.step)
		}
		return out
	}

	assert.Equal(t, []string{StepMetadata}, steps(artifactsFor(state.New("jd", "r", ""))))
	assert.Equal(t,
		[]string{StepMetadata, StepRubric, StepWorkingMemory, StepPanelReviews, StepDecisionPacket, StepInterviewPlan},
		steps(artifactsFor(completedState(t))))

	encoded, err := encodeArtifacts(artifactsFor(completedState(t)))
	require.NoError(t, err)
	assert.Contains(t, string(encoded[StepDecisionPacket]), `"recommendation":"maybe"`)
}

func TestStepsFor(t *testing.T) {
	start := time.Date(2026, 1, 2, 3, 4, 5, 0, time.UTC)
	events := []state.StageEvent{
		{Stage: state.StageOrchestrator, StartedAt: start, EndedAt: start.Add(1500 * time.Millisecond), Status: state.StatusCompleted},
		{Stage: state.StageAgentMemory, Agent: "hr", StartedAt: start, EndedAt: start.Add(time.Second), Status: state.StatusFailed, Error: "schema violation"},
	}
	steps := stepsFor(events)
	require.Len(t, steps, 2)
	assert.Equal(t, 0, steps[0].Seq)
	assert.Equal(t, int64(1500), steps[0].DurationMs)
	assert.Nil(t, steps[0].ErrorMessage)
	assert.Equal(t, "hr", steps[1].Agent)
	require.NotNil(t, steps[1].ErrorMessage)
	assert.Equal(t, "schema violation", *steps[1].ErrorMessage)
}

func TestSchemaEmbedded(t *testing.T) {
	for _, table := range []string{"panel_runs", "panel_artifacts", "panel_run_steps"} {
		assert.Contains(t, schemaSQL, "CREATE TABLE IF NOT EXISTS "+table)
	}
}
