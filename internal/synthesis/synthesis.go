// Package synthesis aggregates panel reviews into a decision packet and an interview plan.
// All aggregation is keyed by agent and category name and iterates in sorted order, so the
// same reviews always produce the same packet regardless of completion order.
package synthesis

import (
	"fmt"
	"sort"
	"strings"

	"github.com/jonathan/hiring-panel/internal/config"
	"github.com/jonathan/hiring-panel/internal/state"
	"github.com/jonathan/hiring-panel/internal/types"
)

// SynthesisError is returned when there is nothing valid to synthesize
type SynthesisError struct {
	Message string
	Cause   error
}

func (e *SynthesisError) Error() string {
	if e.Cause != nil {
		return fmt.Sprintf("synthesis failed: %s: %v", e.Message, e.Cause)
	}
	return fmt.Sprintf("synthesis failed: %s", e.Message)
}

func (e *SynthesisError) Unwrap() error {
	return e.Cause
}

// Input is everything synthesis reads
type Input struct {
	Rubric       *types.Rubric
	Reviews      []types.AgentReview
	Memory       map[string]types.WorkingMemory
	MissingRoles []string
}

// FromState synthesizes the reviews recorded in a workflow state.
func FromState(st *state.WorkflowState, cfg config.SynthesisConfig) (*types.DecisionPacket, *types.InterviewPlan, error) {
	if err := st.CheckConsistency(); err != nil {
		return nil, nil, &SynthesisError{Message: "panel state is inconsistent", Cause: err}
	}
	return Synthesize(Input{
		Rubric:       st.Rubric,
		Reviews:      st.PanelReviews,
		Memory:       st.AgentWorkingMemory,
		MissingRoles: st.Metadata.MissingRoles,
	}, cfg)
}

// Synthesize builds the decision packet and interview plan.
func Synthesize(in Input, cfg config.SynthesisConfig) (*types.DecisionPacket, *types.InterviewPlan, error) {
	if in.Rubric == nil || len(in.Rubric.Categories) == 0 {
		return nil, nil, &SynthesisError{Message: "no rubric to score against"}
	}
	if len(in.Reviews) == 0 {
		return nil, nil, &SynthesisError{Message: "no panel reviews available"}
	}

	reviews := append([]types.AgentReview(nil), in.Reviews...)
	sort.Slice(reviews, func(i, j int) bool { return reviews[i].AgentName < reviews[j].AgentName })
	for i := 1; i < len(reviews); i++ {
		if reviews[i].AgentName == reviews[i-1].AgentName {
			return nil, nil, &SynthesisError{Message: fmt.Sprintf("duplicate review from %s", reviews[i].AgentName)}
		}
	}
	missing := append([]string(nil), in.MissingRoles...)
	sort.Strings(missing)

	matrix := buildMatrix(in.Rubric, reviews)
	averages, err := matrix.averages()
	if err != nil {
		return nil, nil, &SynthesisError{Message: "failed to average category scores", Cause: err}
	}
	overall := overallScore(in.Rubric, averages)
	disagreements := detectDisagreements(in.Rubric, matrix, reviews, in.Memory, cfg)
	gaps := mustHaveGaps(in.Rubric, matrix, averages, cfg)

	recommendation := Recommend(overall, cfg)
	if len(gaps) > 0 {
		recommendation = recommendation.AtMost(types.RecommendMaybe)
	}

	packet := &types.DecisionPacket{
		RoleTitle:        in.Rubric.RoleTitle,
		OverallFitScore:  overall,
		Recommendation:   recommendation,
		ConfidenceLevel:  Confidence(len(reviews), len(missing), disagreements),
		CategoryAverages: roundAll(averages),
		TopStrengths:     topMentions(reviews, func(r types.AgentReview) []string { return r.TopStrengths }),
		TopRisks:         topMentions(reviews, func(r types.AgentReview) []string { return r.TopRisks }),
		MustHaveGaps:     gaps,
		Disagreements:    disagreements,
		MissingRoles:     missing,
	}
	packet.SynthesisNotes = notes(packet, reviews, Recommend(overall, cfg))

	plan := buildInterviewPlan(in.Rubric, reviews, in.Memory, packet, cfg)
	return packet, plan, nil
}

func notes(p *types.DecisionPacket, reviews []types.AgentReview, uncapped types.Recommendation) []string {
	agents := make([]string, 0, len(reviews))
	for _, r := range reviews {
		agents = append(agents, r.AgentName)
	}
	out := []string{fmt.Sprintf("Synthesized %d panel review(s): %s.", len(reviews), strings.Join(agents, ", "))}
	if len(p.MissingRoles) > 0 {
		out = append(out, fmt.Sprintf("Missing panel roles: %s. The decision is based on a reduced panel.", strings.Join(p.MissingRoles, ", ")))
	}
	if len(p.MustHaveGaps) > 0 && uncapped != p.Recommendation {
		out = append(out, fmt.Sprintf("Recommendation capped at %s (score alone maps to %s) because of must-have gaps: %s.",
			p.Recommendation, uncapped, strings.Join(p.MustHaveGaps, ", ")))
	}
	if n := len(p.Disagreements); n > 0 {
		names := make([]string, 0, n)
		for _, d := range p.Disagreements {
			names = append(names, d.CategoryName)
		}
		out = append(out, fmt.Sprintf("%d category disagreement(s) to resolve: %s.", n, strings.Join(names, ", ")))
	}
	return out
}
