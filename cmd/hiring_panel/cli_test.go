package main

import (
	"bytes"
	"context"
	"encoding/json"
	"os"
	"path/filepath"
	"testing"

	"github.com/spf13/cobra"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/jonathan/hiring-panel/internal/config"
	"github.com/jonathan/hiring-panel/internal/schemas"
	"github.com/jonathan/hiring-panel/internal/state"
	"github.com/jonathan/hiring-panel/internal/types"
)

// execute runs the root command in-process and returns its stdout.
func execute(t *testing.T, args ...string) (string, error) {
	t.Helper()
	var out bytes.Buffer
	rootCmd.SetOut(&out)
	rootCmd.SetErr(&out)
	rootCmd.SetArgs(args)
	err := rootCmd.ExecuteContext(context.Background())
	return out.String(), err
}

func writeFile(t *testing.T, dir, name, content string) string {
	t.Helper()
	path := filepath.Join(dir, name)
	require.NoError(t, os.WriteFile(path, []byte(content), 0o644))
	return path
}

func anchor(score float64, label string) types.ScoringCriteria {
	return types.ScoringCriteria{Score: score, Label: label, Description: label + " level", Indicators: []string{label + " indicator"}}
}

func savedState(t *testing.T) *state.WorkflowState {
	t.Helper()
	st := state.New("Senior Go engineer", "Jane Doe, 6 years of Go", "")
	require.NoError(t, st.SetRubric(types.Rubric{
		RoleTitle: "Senior Go Engineer",
		Categories: []types.RubricCategory{
			{Name: "Go", Description: "Production Go services", Weight: 0.5, MustHave: true, ScoringCriteria: []types.ScoringCriteria{anchor(0, "none"), anchor(5, "expert")}},
			{Name: "Communication", Description: "Clear written communication", Weight: 0.5, ScoringCriteria: []types.ScoringCriteria{anchor(0, "none"), anchor(5, "excellent")}},
		},
	}))
	for agent, scores := range map[string][2]float64{"hr": {4, 4}, "technical": {4, 2}, "compliance": {4, 3}} {
		require.NoError(t, st.AppendReview(types.AgentReview{
			AgentName:         agent,
			OverallAssessment: agent + " assessment",
			CategoryScores: []types.CategoryScore{
				{CategoryName: "Go", Score: scores[0], Rationale: "shipped Go services", Evidence: []types.Evidence{{ResumeText: "6 years of Go"}}},
				{CategoryName: "Communication", Score: scores[1], Rationale: "writes design docs", Evidence: []types.Evidence{{ResumeText: "authored RFCs"}}},
			},
			TopStrengths:      []string{"Go depth"},
			TopRisks:          []string{"Unclear team size"},
			FollowUpQuestions: []string{"Describe an RFC you wrote."},
		}))
		st.MergeWorkingMemory(agent, types.WorkingMemory{
			AgentName: agent,
			KeyObservations: []types.KeyObservation{{
				Category: "Go", ObservationText: "six years of Go", Importance: types.ImportanceCritical, EvidenceLocation: "Experience",
			}},
		})
	}
	return st
}

func TestValidateCommand(t *testing.T) {
	dir := t.TempDir()
	valid := writeFile(t, dir, "rubric.json", `{
		"role_title": "Backend Engineer",
		"categories": [{
			"name": "Python", "description": "5+ years Python", "weight": 1.0, "must_have": true,
			"scoring_criteria": [
				{"score": 0, "label": "none", "description": "No Python"},
				{"score": 5, "label": "expert", "description": "Deep Python"}
			]
		}]
	}`)
	invalid := writeFile(t, dir, "empty.json", `{}`)

	out, err := execute(t, "validate", "--schema", "rubric", "--json", valid)
	require.NoError(t, err)
	assert.Contains(t, out, "Validation passed")

	out, err = execute(t, "validate", "--schema", "rubric", "--json", invalid)
	require.Error(t, err)
	assert.Contains(t, out, "Validation failed")

	_, err = execute(t, "validate", "--schema", "job_profile", "--json", valid)
	assert.Error(t, err)
}

func TestSynthesizeCommand_WritesArtifacts(t *testing.T) {
	dir := t.TempDir()
	data, err := json.Marshal(savedState(t))
	require.NoError(t, err)
	statePath := writeFile(t, dir, "workflow_state.json", string(data))

	_, err = execute(t, "synthesize", "--state", statePath, "--quiet")
	require.NoError(t, err)

	packetPath := filepath.Join(dir, "decision_packet.json")
	planPath := filepath.Join(dir, "interview_plan.json")
	assert.NoError(t, schemas.ValidateNamedFile("decision_packet", packetPath))
	assert.NoError(t, schemas.ValidateNamedFile("interview_plan", planPath))

	var packet types.DecisionPacket
	raw, err := os.ReadFile(packetPath)
	require.NoError(t, err)
	require.NoError(t, json.Unmarshal(raw, &packet))
	assert.Equal(t, "Senior Go Engineer", packet.RoleTitle)
	assert.InDelta(t, 3.5, packet.OverallFitScore, 1e-9)
	assert.Equal(t, types.RecommendYes, packet.Recommendation)
}

func TestSynthesizeCommand_StateWithoutRubric(t *testing.T) {
	dir := t.TempDir()
	data, err := json.Marshal(state.New("job", "resume", ""))
	require.NoError(t, err)
	statePath := writeFile(t, dir, "workflow_state.json", string(data))

	_, err = execute(t, "synthesize", "--state", statePath, "--quiet")
	assert.ErrorContains(t, err, "has no rubric")
}

func newResolveCommand(t *testing.T, f *runFlags, args ...string) *cobra.Command {
	t.Helper()
	cmd := &cobra.Command{Use: "test"}
	f.register(cmd, true)
	require.NoError(t, cmd.ParseFlags(args))
	return cmd
}

func TestResolve_FlagsOverrideConfig(t *testing.T) {
	dir := t.TempDir()
	job := writeFile(t, dir, "job.txt", "Senior Go engineer")
	resume := writeFile(t, dir, "resume.txt", "Jane Doe")
	cfgPath := writeFile(t, dir, "config.json", `{
		"job": "`+job+`",
		"model_tier": "lite",
		"out": "from-config",
		"workflow": {"rubric_categories_count": 6, "max_concurrent_agents": 2}
	}`)
	t.Setenv("GEMINI_API_KEY", "env-key")
	t.Setenv("DATABASE_URL", "")

	var f runFlags
	cmd := newResolveCommand(t, &f, "--config", cfgPath, "--resume", resume, "--out", "from-flag", "--product-agent")
	cfg, err := f.resolve(cmd)
	require.NoError(t, err)

	assert.Equal(t, job, cfg.Job)
	assert.Equal(t, resume, cfg.Resume)
	assert.Equal(t, "from-flag", cfg.Out)
	assert.Equal(t, "lite", cfg.ModelTier)
	assert.Equal(t, "env-key", cfg.APIKey)
	assert.Equal(t, 6, cfg.Workflow.RubricCategoriesCount)
	assert.Equal(t, 2, cfg.Workflow.MaxConcurrentAgents)
	assert.True(t, cfg.Workflow.EnableProductAgent)
	assert.Equal(t, config.DefaultSynthesis(), cfg.Synthesis)
}

func TestResolve_Errors(t *testing.T) {
	dir := t.TempDir()
	job := writeFile(t, dir, "job.txt", "Senior Go engineer")

	tests := []struct {
		name string
		args []string
		want string
	}{
		{name: "no job", args: nil, want: "--job or --job-url"},
		{name: "both job sources", args: []string{"--job", job, "--job-url", "https://example.com/jobs/1"}, want: "mutually exclusive"},
		{name: "missing resume file", args: []string{"--job", job, "--resume", filepath.Join(dir, "nope.txt")}, want: "resume file not found"},
		{name: "missing config", args: []string{"--config", filepath.Join(dir, "nope.json")}, want: "failed to load config"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			var f runFlags
			cmd := newResolveCommand(t, &f, tt.args...)
			_, err := f.resolve(cmd)
			assert.ErrorContains(t, err, tt.want)
		})
	}
}

func TestWriteRunArtifacts_PartialState(t *testing.T) {
	dir := t.TempDir()
	require.NoError(t, writeRunArtifacts(dir, state.New("job", "resume", "")))

	assert.FileExists(t, filepath.Join(dir, "workflow_state.json"))
	assert.NoFileExists(t, filepath.Join(dir, "decision_packet.json"))
	assert.NoFileExists(t, filepath.Join(dir, "interview_plan.json"))
}

func TestEvaluateCommand_RequiresResume(t *testing.T) {
	dir := t.TempDir()
	job := writeFile(t, dir, "job.txt", "Senior Go engineer")

	_, err := execute(t, "evaluate", "--job", job)
	assert.ErrorContains(t, err, "--resume is required")
}
