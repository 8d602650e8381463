package types

import (
	"encoding/json"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestAgentReview_Validate(t *testing.T) {
	review := AgentReview{
		AgentName:         "technical",
		OverallAssessment: "Strong Python background",
		CategoryScores: []CategoryScore{{
			CategoryName: "Python",
			Score:        5,
			Rationale:    "Six years of production Python",
			Evidence:     []Evidence{{ResumeText: "6 years building Python services"}},
		}},
	}
	require.NoError(t, Validate(&review))

	t.Run("missing evidence", func(t *testing.T) {
		r := review.Clone()
		r.CategoryScores[0].Evidence = nil
		assert.Error(t, Validate(&r))
	})

	t.Run("empty quote", func(t *testing.T) {
		r := review.Clone()
		r.CategoryScores[0].Evidence = []Evidence{{ResumeText: ""}}
		assert.Error(t, Validate(&r))
	})

	t.Run("negative score", func(t *testing.T) {
		r := review.Clone()
		r.CategoryScores[0].Score = -1
		assert.Error(t, Validate(&r))
	})

	t.Run("scale set by the rubric", func(t *testing.T) {
		r := review.Clone()
		r.CategoryScores[0].Score = 8
		assert.NoError(t, Validate(&r))
	})
}

func TestAgentReview_CloneIsDeep(t *testing.T) {
	review := AgentReview{
		AgentName:      "hr",
		CategoryScores: []CategoryScore{{CategoryName: "a", Evidence: []Evidence{{ResumeText: "x"}}}},
		TopStrengths:   []string{"s"},
	}
	clone := review.Clone()
	clone.CategoryScores[0].Evidence[0].ResumeText = "changed"
	clone.TopStrengths[0] = "changed"

	assert.Equal(t, "x", review.CategoryScores[0].Evidence[0].ResumeText)
	assert.Equal(t, "s", review.TopStrengths[0])
}

func TestClone_KeepsEmptySlices(t *testing.T) {
	review := AgentReview{
		AgentName:         "hr",
		CategoryScores:    []CategoryScore{{CategoryName: "a", Evidence: []Evidence{{ResumeText: "x"}}, Gaps: []string{}}},
		TopStrengths:      []string{"s"},
		TopRisks:          []string{},
		FollowUpQuestions: []string{},
	}
	clone := review.Clone()
	assert.NotNil(t, clone.TopRisks)
	assert.NotNil(t, clone.FollowUpQuestions)
	assert.NotNil(t, clone.CategoryScores[0].Gaps)

	data, err := json.Marshal(clone)
	require.NoError(t, err)
	assert.Contains(t, string(data), `"top_risks":[]`)
	assert.Contains(t, string(data), `"follow_up_questions":[]`)
	assert.NotContains(t, string(data), "null")

	var unset AgentReview
	assert.Nil(t, unset.Clone().CategoryScores)

	mem := WorkingMemory{AgentName: "hr", KeyObservations: []KeyObservation{}, Ambiguities: []string{}}
	memClone := mem.Clone()
	assert.NotNil(t, memClone.KeyObservations)
	assert.NotNil(t, memClone.Ambiguities)
	assert.Nil(t, memClone.TimelineNotes)
}

func TestWorkingMemory_Helpers(t *testing.T) {
	mem := WorkingMemory{
		AgentName: "hr",
		KeyObservations: []KeyObservation{
			{Category: "Python", ObservationText: "six years", Importance: ImportanceModerate},
			{Category: "Leadership", ObservationText: "no reports", Importance: ImportanceCritical,
				CrossReferences: []CrossReference{{ResumeSection: "Experience", JDRequirement: "Lead a team", AlignmentType: AlignmentContradictory}}},
		},
	}
	require.NoError(t, Validate(&mem))
	assert.Len(t, mem.ObservationsFor("Python"), 1)
	assert.Len(t, mem.Contradictions(), 1)

	mem.KeyObservations[0].Importance = "huge"
	assert.Error(t, Validate(&mem))
}

func TestRecommendation_AtMost(t *testing.T) {
	assert.Equal(t, RecommendMaybe, RecommendStrongYes.AtMost(RecommendMaybe))
	assert.Equal(t, RecommendNo, RecommendNo.AtMost(RecommendMaybe))
	assert.Equal(t, RecommendMaybe, RecommendMaybe.AtMost(RecommendMaybe))
}

func TestConfidenceFromLevel(t *testing.T) {
	assert.Equal(t, ConfidenceLow, ConfidenceFromLevel(-3))
	assert.Equal(t, ConfidenceMedium, ConfidenceFromLevel(1))
	assert.Equal(t, ConfidenceHigh, ConfidenceFromLevel(5))
	assert.Equal(t, 2, ConfidenceHigh.Level())
}
