// Package schemas embeds the JSON Schema documents for every artifact exchanged with the LLM
// or written by the workflow.
package schemas

import (
	"embed"
	"fmt"
	"io/fs"
	"sort"
	"strings"
)

//go:embed *.schema.json
var files embed.FS

// Schema names
const (
	Rubric         = "rubric"
	WorkingMemory  = "working_memory"
	AgentReview    = "agent_review"
	DecisionPacket = "decision_packet"
	InterviewPlan  = "interview_plan"
	WorkflowState  = "workflow_state"
)

// Get returns the schema document registered under name.
func Get(name string) (string, error) {
	data, err := files.ReadFile(name + ".schema.json")
	if err != nil {
		return "", fmt.Errorf("unknown schema %q", name)
	}
	return string(data), nil
}

// List returns the names of all embedded schemas.
func List() []string {
	entries, err := fs.ReadDir(files, ".")
	if err != nil {
		return nil
	}
	names := make([]string, 0, len(entries))
	for _, e := range entries {
		names = append(names, strings.TrimSuffix(e.Name(), ".schema.json"))
	}
	sort.Strings(names)
	return names
}
