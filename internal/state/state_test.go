package state

import (
	"errors"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/jonathan/hiring-panel/internal/types"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func review(agent string) types.AgentReview {
	return types.AgentReview{
		AgentName:         agent,
		OverallAssessment: "ok",
		CategoryScores: []types.CategoryScore{{
			CategoryName: "Python",
			Score:        4,
			Rationale:    "r",
			Evidence:     []types.Evidence{{ResumeText: "6 years Python"}},
		}},
	}
}

func memory(agent string) types.WorkingMemory {
	return types.WorkingMemory{
		AgentName:       agent,
		KeyObservations: []types.KeyObservation{{Category: "Python", ObservationText: "six years", Importance: types.ImportanceModerate}},
	}
}

func TestNew(t *testing.T) {
	s := New("jd", "resume", "")
	assert.NotEqual(t, uuid.Nil, s.Metadata.RunID)
	assert.False(t, s.Metadata.StartedAt.IsZero())
	assert.Empty(t, s.PanelReviews)
	assert.NotNil(t, s.AgentWorkingMemory)
	assert.Nil(t, s.Metadata.CompletedAt)
}

func TestSetRubric_Once(t *testing.T) {
	s := New("jd", "resume", "")
	require.NoError(t, s.SetRubric(types.Rubric{RoleTitle: "SRE"}))
	assert.Error(t, s.SetRubric(types.Rubric{RoleTitle: "Other"}))
	assert.Equal(t, "SRE", s.Rubric.RoleTitle)
}

func TestAppendReview(t *testing.T) {
	s := New("jd", "resume", "")
	require.NoError(t, s.AppendReview(review("hr")))
	require.NoError(t, s.AppendReview(review("technical")))

	err := s.AppendReview(review("hr"))
	require.Error(t, err)
	assert.True(t, errors.Is(err, ErrDuplicateReview))
	assert.Len(t, s.PanelReviews, 2)

	assert.Error(t, s.AppendReview(types.AgentReview{}))
}

func TestAppendReview_StoredCopyIsImmutable(t *testing.T) {
	s := New("jd", "resume", "")
	r := review("hr")
	require.NoError(t, s.AppendReview(r))

	r.CategoryScores[0].Score = 0
	r.CategoryScores[0].Evidence[0].ResumeText = "tampered"

	stored, ok := s.Review("hr")
	require.True(t, ok)
	assert.Equal(t, 4.0, stored.CategoryScores[0].Score)
	assert.Equal(t, "6 years Python", stored.CategoryScores[0].Evidence[0].ResumeText)
}

func TestMergeWorkingMemory_DisjointKeys(t *testing.T) {
	s := New("jd", "resume", "")
	s.MergeWorkingMemory("hr", memory("hr"))
	s.MergeWorkingMemory("technical", memory("technical"))

	updated := memory("hr")
	updated.Ambiguities = []string{"gap in 2019"}
	s.MergeWorkingMemory("hr", updated)

	assert.Len(t, s.AgentWorkingMemory, 2)
	assert.Equal(t, []string{"gap in 2019"}, s.AgentWorkingMemory["hr"].Ambiguities)
	assert.Empty(t, s.AgentWorkingMemory["technical"].Ambiguities)
}

func TestRecordEvent(t *testing.T) {
	s := New("jd", "resume", "")
	start := time.Now()
	s.RecordEvent(StageEvent{Stage: StageOrchestrator, StartedAt: start, EndedAt: start.Add(time.Second), Status: StatusCompleted})
	s.RecordEvent(StageEvent{Stage: StageAgentReview, Agent: "hr", StartedAt: start, EndedAt: start, Status: StatusFailed, Error: "boom"})

	assert.Len(t, s.Metadata.Events, 2)
	require.Len(t, s.Metadata.Errors, 1)
	assert.Equal(t, "hr", s.Metadata.Errors[0].Agent)
	assert.Equal(t, "boom", s.Metadata.Errors[0].Message)
	assert.Equal(t, time.Second, s.EventsFor(StageOrchestrator)[0].Duration())
}

func TestReviewsByAgent_Sorted(t *testing.T) {
	s := New("jd", "resume", "")
	require.NoError(t, s.AppendReview(review("technical")))
	require.NoError(t, s.AppendReview(review("compliance")))
	require.NoError(t, s.AppendReview(review("hr")))

	var names []string
	for _, r := range s.ReviewsByAgent() {
		names = append(names, r.AgentName)
	}
	assert.Equal(t, []string{"compliance", "hr", "technical"}, names)
	assert.Equal(t, "technical", s.PanelReviews[0].AgentName)
}

func TestCheckConsistency(t *testing.T) {
	s := New("jd", "resume", "")
	require.NoError(t, s.AppendReview(review("hr")))
	assert.Error(t, s.CheckConsistency())

	s.MergeWorkingMemory("hr", memory("hr"))
	assert.NoError(t, s.CheckConsistency())

	s.MergeWorkingMemory("technical", memory("hr"))
	assert.Error(t, s.CheckConsistency())
}

func TestRecordMissingRolesAndComplete(t *testing.T) {
	s := New("jd", "resume", "")
	s.RecordMissingRoles([]string{"technical", "compliance"})
	assert.Equal(t, []string{"compliance", "technical"}, s.Metadata.MissingRoles)

	s.Complete()
	require.NotNil(t, s.Metadata.CompletedAt)
}
