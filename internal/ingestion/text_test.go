package ingestion

import (
	"errors"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestCleanText(t *testing.T) {
	tests := []struct {
		name  string
		input string
		want  string
	}{
		{name: "empty", input: "", want: ""},
		{name: "only whitespace", input: "   \n  \n  ", want: ""},
		{name: "collapses inner spaces", input: "Line    with \t multiple   spaces", want: "Line with multiple spaces"},
		{name: "line endings", input: "Line 1\r\nLine 2\rLine 3", want: "Line 1\nLine 2\nLine 3"},
		{name: "blank lines", input: "Line 1\n\n\n\n\nLine 2", want: "Line 1\n\nLine 2"},
		{name: "headings lose indent", input: "   ## Experience", want: "## Experience"},
		{name: "bullets keep indent", input: "- Go\n  - gRPC", want: "- Go\n  - gRPC"},
		{name: "glyph bullets", input: "• Led a team of 5", want: "- Led a team of 5"},
		{name: "non-breaking space", input: "Acme\u00a0Corp", want: "Acme Corp"},
		{name: "unicode kept", input: "Zoë Müller 🚀", want: "Zoë Müller 🚀"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, CleanText(tt.input))
		})
	}
}

func TestCleanText_Deterministic(t *testing.T) {
	input := "Test   content\n\n\n\nMore"
	assert.Equal(t, CleanText(input), CleanText(input))
	assert.Equal(t, CleanText(input), CleanText(CleanText(input)))
}

func TestLoadFile(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "resume.txt")
	require.NoError(t, os.WriteFile(path, []byte("Jane Doe\r\n\r\n\r\n\r\nAcme Corp   2018-2024"), 0o644))

	doc, err := LoadFile(path)
	require.NoError(t, err)
	assert.Equal(t, "Jane Doe\n\nAcme Corp 2018-2024", doc.Text)
	assert.Equal(t, path, doc.Source)
	assert.Equal(t, Hash(doc.Text), doc.Hash)
	assert.Len(t, doc.Hash, 64)
	assert.False(t, doc.LoadedAt.IsZero())
}

func TestLoadFile_Errors(t *testing.T) {
	dir := t.TempDir()

	_, err := LoadFile(filepath.Join(dir, "missing.txt"))
	assert.ErrorContains(t, err, "file not found")

	blank := filepath.Join(dir, "blank.txt")
	require.NoError(t, os.WriteFile(blank, []byte(" \n\t\n"), 0o644))
	_, err = LoadFile(blank)
	assert.True(t, errors.Is(err, ErrEmpty))
}

func TestLoadOptionalFile(t *testing.T) {
	text, err := LoadOptionalFile("")
	require.NoError(t, err)
	assert.Empty(t, text)

	path := filepath.Join(t.TempDir(), "company.txt")
	require.NoError(t, os.WriteFile(path, []byte("We value ownership."), 0o644))
	text, err = LoadOptionalFile(path)
	require.NoError(t, err)
	assert.Equal(t, "We value ownership.", text)
}

func TestHash_DiffersByContent(t *testing.T) {
	assert.NotEqual(t, Hash("a"), Hash("b"))
	assert.Equal(t, Hash("a"), Hash("a"))
}
