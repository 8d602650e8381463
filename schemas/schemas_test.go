package schemas_test

import (
	"encoding/json"
	"testing"

	"github.com/jonathan/hiring-panel/internal/schemas"
	rootschemas "github.com/jonathan/hiring-panel/schemas"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestList_ContainsAllArtifacts(t *testing.T) {
	assert.Equal(t, []string{
		"agent_review",
		"decision_packet",
		"interview_plan",
		"rubric",
		"workflow_state",
		"working_memory",
	}, rootschemas.List())
}

func TestAllSchemaFiles_ValidJSON(t *testing.T) {
	for _, name := range rootschemas.List() {
		t.Run(name, func(t *testing.T) {
			data, err := rootschemas.Get(name)
			require.NoError(t, err)

			var schemaObj map[string]interface{}
			require.NoError(t, json.Unmarshal([]byte(data), &schemaObj), "schema should be valid JSON")

			_, hasType := schemaObj["type"]
			_, hasSchema := schemaObj["$schema"]
			assert.True(t, hasType && hasSchema, "schema should declare $schema and type")
		})
	}
}

func TestGet_Unknown(t *testing.T) {
	_, err := rootschemas.Get("job_profile")
	assert.Error(t, err)
}

func TestRubricSchema_AcceptsExample(t *testing.T) {
	schema, err := rootschemas.Get(rootschemas.Rubric)
	require.NoError(t, err)

	doc := `{
		"role_title": "Backend Engineer",
		"categories": [
			{
				"name": "Python",
				"description": "5+ years Python",
				"weight": 1.0,
				"must_have": true,
				"scoring_criteria": [
					{"score": 0, "label": "none", "description": "No Python"},
					{"score": 5, "label": "expert", "description": "Deep Python"}
				]
			}
		]
	}`
	assert.NoError(t, schemas.ValidateJSONString(schema, doc))
}

func TestAgentReviewSchema_RejectsMissingEvidence(t *testing.T) {
	schema, err := rootschemas.Get(rootschemas.AgentReview)
	require.NoError(t, err)

	doc := `{
		"agent_name": "hr",
		"overall_assessment": "ok",
		"category_scores": [{"category_name": "Python", "score": 3, "rationale": "r", "evidence": []}],
		"top_strengths": [], "top_risks": [], "follow_up_questions": []
	}`
	err = schemas.ValidateJSONString(schema, doc)
	require.Error(t, err)

	var verr *schemas.ValidationError
	require.ErrorAs(t, err, &verr)
	assert.NotEmpty(t, verr.Errors)
}
