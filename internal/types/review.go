package types

import "slices"

// Evidence is a verbatim resume quote backing a score
type Evidence struct {
	ResumeText     string `json:"resume_text" validate:"required"`
	LineReference  string `json:"line_reference,omitempty"`
	Interpretation string `json:"interpretation,omitempty"`
}

// CategoryScore is one agent's score for one rubric category
type CategoryScore struct {
	CategoryName string     `json:"category_name" validate:"required"`
	Score        float64    `json:"score" validate:"gte=0"`
	Rationale    string     `json:"rationale" validate:"required"`
	Evidence     []Evidence `json:"evidence" validate:"min=1,dive"`
	Gaps         []string   `json:"gaps,omitempty"`
}

// AgentReview is the second-pass output of a panel agent
type AgentReview struct {
	AgentName         string          `json:"agent_name" validate:"required"`
	OverallAssessment string          `json:"overall_assessment" validate:"required"`
	CategoryScores    []CategoryScore `json:"category_scores" validate:"min=1,dive"`
	TopStrengths      []string        `json:"top_strengths"`
	TopRisks          []string        `json:"top_risks"`
	FollowUpQuestions []string        `json:"follow_up_questions"`
}

// Score returns the agent's score for a category.
func (r *AgentReview) Score(category string) (CategoryScore, bool) {
	for _, cs := range r.CategoryScores {
		if cs.CategoryName == category {
			return cs, true
		}
	}
	return CategoryScore{}, false
}

// Clone returns a deep copy.
func (r AgentReview) Clone() AgentReview {
	out := r
	out.CategoryScores = slices.Clone(r.CategoryScores)
	for i := range out.CategoryScores {
		out.CategoryScores[i].Evidence = slices.Clone(out.CategoryScores[i].Evidence)
		out.CategoryScores[i].Gaps = slices.Clone(out.CategoryScores[i].Gaps)
	}
	out.TopStrengths = slices.Clone(r.TopStrengths)
	out.TopRisks = slices.Clone(r.TopRisks)
	out.FollowUpQuestions = slices.Clone(r.FollowUpQuestions)
	return out
}
