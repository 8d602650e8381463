package orchestrator

import (
	"context"
	"encoding/json"
	"errors"
	"strings"
	"testing"
	"time"

	"github.com/jonathan/hiring-panel/internal/llm"
	"github.com/jonathan/hiring-panel/internal/llm/llmtest"
	"github.com/jonathan/hiring-panel/internal/types"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func category(name string, weight float64, mustHave bool) types.RubricCategory {
	return types.RubricCategory{
		Name:        name,
		Description: name + " description",
		Weight:      weight,
		MustHave:    mustHave,
		ScoringCriteria: []types.ScoringCriteria{
			{Score: 0, Label: "none", Description: "no evidence"},
			{Score: 3, Label: "solid", Description: "some evidence"},
			{Score: 5, Label: "strong", Description: "deep evidence"},
		},
	}
}

func rubricJSON(t *testing.T, r types.Rubric) string {
	t.Helper()
	data, err := json.Marshal(r)
	require.NoError(t, err)
	return string(data)
}

func validRubric() types.Rubric {
	return types.Rubric{
		RoleTitle: "Backend Engineer",
		Categories: []types.RubricCategory{
			category("Python", 0.3, true),
			category("Leadership", 0.2, false),
			category("Systems Design", 0.5, false),
		},
	}
}

func newGateway(client llm.Client) *llm.Gateway {
	return llm.NewGateway(client, llm.WithBackoff(time.Millisecond), llm.WithProviderRetries(0))
}

func TestGenerateRubric_Valid(t *testing.T) {
	client := &llmtest.MockClient{GenerateJSONFunc: llmtest.Sequence(rubricJSON(t, validRubric()))}

	r, err := GenerateRubric(context.Background(), newGateway(client), "Need 5+ years Python", "", Options{CategoryCount: 3, RetryBudget: 2})
	require.NoError(t, err)
	assert.Equal(t, "Backend Engineer", r.RoleTitle)
	assert.InDelta(t, 1.0, r.WeightSum(), types.WeightTolerance)
	assert.GreaterOrEqual(t, r.MustHaveCount(), 1)
	assert.False(t, r.GeneratedAt.IsZero())

	prompt := client.Prompts()[0]
	assert.Contains(t, prompt, "Need 5+ years Python")
	assert.Contains(t, prompt, "exactly 3 categories")
	assert.Contains(t, prompt, "(none provided)")
}

func TestGenerateRubric_NormalizesSmallDrift(t *testing.T) {
	r := validRubric()
	r.Categories[2].Weight = 0.505
	client := &llmtest.MockClient{GenerateJSONFunc: llmtest.Sequence(rubricJSON(t, r))}

	out, err := GenerateRubric(context.Background(), newGateway(client), "jd", "", Options{CategoryCount: 3})
	require.NoError(t, err)
	assert.True(t, out.WeightsBalanced())
}

func TestGenerateRubric_RetriesOnMissingMustHave(t *testing.T) {
	bad := validRubric()
	bad.Categories[0].MustHave = false
	client := &llmtest.MockClient{GenerateJSONFunc: llmtest.Sequence(rubricJSON(t, bad), rubricJSON(t, validRubric()))}

	_, err := GenerateRubric(context.Background(), newGateway(client), "jd", "Fintech startup", Options{CategoryCount: 3, RetryBudget: 2})
	require.NoError(t, err)

	prompts := client.Prompts()
	require.Len(t, prompts, 2)
	assert.Contains(t, prompts[1], "must_have")
	assert.Contains(t, prompts[0], "Fintech startup")
}

func TestGenerateRubric_ExhaustedBudget(t *testing.T) {
	bad := validRubric()
	bad.Categories[1].Weight = 0.6
	client := &llmtest.MockClient{GenerateJSONFunc: llmtest.Sequence(rubricJSON(t, bad))}

	_, err := GenerateRubric(context.Background(), newGateway(client), "jd", "", Options{CategoryCount: 3, RetryBudget: 2})
	require.Error(t, err)

	var rerr *RubricGenerationError
	require.True(t, errors.As(err, &rerr))
	assert.True(t, llm.IsKind(err, llm.KindSchemaViolation))
	assert.Equal(t, 3, client.Calls())
	assert.Contains(t, client.Prompts()[2], "weights sum to 1.400")
}

func TestGenerateRubric_WrongCategoryCount(t *testing.T) {
	client := &llmtest.MockClient{GenerateJSONFunc: llmtest.Sequence(rubricJSON(t, validRubric()))}

	_, err := GenerateRubric(context.Background(), newGateway(client), "jd", "", Options{CategoryCount: 5, RetryBudget: 0})
	require.Error(t, err)
	assert.Contains(t, err.Error(), "expected 5 categories")
}

func TestGenerateRubric_EmptyJobDescription(t *testing.T) {
	client := &llmtest.MockClient{}
	_, err := GenerateRubric(context.Background(), newGateway(client), "  \n", "", Options{})

	var rerr *RubricGenerationError
	require.ErrorAs(t, err, &rerr)
	assert.Equal(t, 0, client.Calls())
}

func TestCheckInvariants(t *testing.T) {
	tests := []struct {
		name    string
		mutate  func(*types.Rubric)
		wantErr string
	}{
		{"valid", func(*types.Rubric) {}, ""},
		{"weights off", func(r *types.Rubric) { r.Categories[0].Weight = 0.3001 }, "weights sum"},
		{"no must-have", func(r *types.Rubric) { r.Categories[0].MustHave = false }, "must-have"},
		{"duplicate names", func(r *types.Rubric) { r.Categories[1].Name = "python" }, "duplicated"},
		{"duplicate anchors", func(r *types.Rubric) { r.Categories[1].ScoringCriteria[1].Score = 0 }, "duplicate anchor"},
		{"empty", func(r *types.Rubric) { r.Categories = nil }, "no categories"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			r := validRubric()
			tt.mutate(&r)
			err := CheckInvariants(&r)
			if tt.wantErr == "" {
				assert.NoError(t, err)
				return
			}
			require.Error(t, err)
			assert.Contains(t, err.Error(), tt.wantErr)
		})
	}
	assert.Error(t, CheckInvariants(nil))
}

func TestQualityWarnings(t *testing.T) {
	r := validRubric()
	warnings := QualityWarnings(&r)
	require.Len(t, warnings, 1)
	assert.True(t, strings.Contains(warnings[0], "Systems Design"))

	r.Categories[0].Weight = 0.1
	r.Categories[2].Weight = 0.7
	assert.Len(t, QualityWarnings(&r), 2)
}
