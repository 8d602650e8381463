package prompts

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestGet(t *testing.T) {
	prompt, err := Get("orchestrator.json", "generate-rubric")
	require.NoError(t, err)
	assert.Contains(t, prompt, "{{.JobDescription}}")

	_, err = Get("nonexistent.json", "some-key")
	assert.ErrorContains(t, err, "failed to read prompt file")

	_, err = Get("panel.json", "nonexistent-key")
	assert.ErrorContains(t, err, "not found")
}

func TestPlaceholders(t *testing.T) {
	assert.Equal(t, []string{"A", "B"}, Placeholders("{{.B}} {{.A}} {{.B}} {{ .C }}"))
	assert.Empty(t, Placeholders("no placeholders"))
}

func TestFormat(t *testing.T) {
	out := Format("Hello {{.Name}}, role {{.Role}} {{.Name}}", map[string]string{"Name": "Ada", "Role": "SRE"})
	assert.Equal(t, "Hello Ada, role SRE Ada", out)
}

func TestFormat_ValuesAreNotReexpanded(t *testing.T) {
	out := Format("{{.A}} and {{.B}} and {{.C}}", map[string]string{"A": "{{.B}}", "B": "b"})
	assert.Equal(t, "{{.B}} and b and {{.C}}", out)
}

func TestRender_MissingValues(t *testing.T) {
	_, err := Render("orchestrator.json", "generate-rubric", map[string]string{"JobDescription": "jd"})
	require.Error(t, err)
	assert.Contains(t, err.Error(), "CategoryCount, CompanyContext")
}

func TestRender_AllPanelPrompts(t *testing.T) {
	data := map[string]string{
		"RoleName":       "Technical",
		"RoleFocus":      "depth",
		"JobDescription": "jd",
		"Rubric":         "rubric",
		"Resume":         "resume {{.NotAPlaceholder}}",
		"AgentName":      "technical",
		"WorkingMemory":  "{}",
		"ScoreRule":      "",
	}
	keys, err := Keys("panel.json")
	require.NoError(t, err)
	assert.Equal(t, []string{"evaluate", "extract-memory"}, keys)

	for _, key := range keys {
		out, err := Render("panel.json", key, data)
		require.NoError(t, err, key)
		assert.NotContains(t, out, "{{.AgentName}}")
		assert.Contains(t, out, `"technical"`)
	}
}
