package synthesis

import (
	"fmt"
	"sort"
	"strings"

	"github.com/jonathan/hiring-panel/internal/config"
	"github.com/jonathan/hiring-panel/internal/types"
)

// maxMemoryNotes bounds how many working-memory observations are quoted per agent
const maxMemoryNotes = 2

var documentationKeywords = []string{"compliance", "security", "privacy", "pii", "regulat", "certif", "licen", "clearance"}

// Threshold returns the disagreement threshold for a category.
func Threshold(c types.RubricCategory, cfg config.SynthesisConfig) float64 {
	if c.MustHave {
		return cfg.MustHaveDisagreementThreshold
	}
	return cfg.DisagreementThreshold
}

// detectDisagreements flags every category whose score spread exceeds its threshold,
// in rubric order.
func detectDisagreements(rubric *types.Rubric, m scoreMatrix, reviews []types.AgentReview, memory map[string]types.WorkingMemory, cfg config.SynthesisConfig) []types.Disagreement {
	out := []types.Disagreement{}
	for _, c := range rubric.Categories {
		if len(m[c.Name]) < 2 {
			continue
		}
		delta := m.spread(c.Name)
		threshold := Threshold(c, cfg)
		if delta <= threshold {
			continue
		}

		severity := types.SeverityModerate
		if c.MustHave || delta >= 2*threshold {
			severity = types.SeverityCritical
		}
		scores := make(map[string]float64, len(m[c.Name]))
		for a, s := range m[c.Name] {
			scores[a] = s
		}
		out = append(out, types.Disagreement{
			CategoryName:       c.Name,
			AgentScores:        scores,
			ScoreDelta:         round2(delta),
			Severity:           severity,
			Reason:             disagreementReason(c.Name, scores, delta, reviews, memory),
			ResolutionApproach: resolution(c, severity, scores),
		})
	}
	return out
}

type agentScore struct {
	agent string
	score float64
}

// byScore orders agents from highest to lowest score, ties by name.
func byScore(scores map[string]float64) []agentScore {
	out := make([]agentScore, 0, len(scores))
	for a, s := range scores {
		out = append(out, agentScore{a, s})
	}
	sort.Slice(out, func(i, j int) bool {
		if out[i].score != out[j].score {
			return out[i].score > out[j].score
		}
		return out[i].agent < out[j].agent
	})
	return out
}

func disagreementReason(category string, scores map[string]float64, delta float64, reviews []types.AgentReview, memory map[string]types.WorkingMemory) string {
	ranked := byScore(scores)
	high, low := ranked[0], ranked[len(ranked)-1]

	var sb strings.Builder
	fmt.Fprintf(&sb, "%s scored %g while %s scored %g (delta %.1f).", high.agent, high.score, low.agent, low.score, delta)

	for _, as := range ranked {
		fmt.Fprintf(&sb, "\n- %s (%g):", as.agent, as.score)
		if cs, ok := findScore(reviews, as.agent, category); ok {
			fmt.Fprintf(&sb, " %s", strings.TrimSpace(cs.Rationale))
			if len(cs.Evidence) > 0 {
				fmt.Fprintf(&sb, " Evidence: %q.", strings.TrimSpace(cs.Evidence[0].ResumeText))
			}
		}
		if mem, ok := memory[as.agent]; ok {
			obs := mem.ObservationsFor(category)
			if len(obs) > maxMemoryNotes {
				obs = obs[:maxMemoryNotes]
			}
			for _, o := range obs {
				note := o.ObservationText
				if o.EvidenceLocation != "" {
					note += " (from " + o.EvidenceLocation + ")"
				}
				fmt.Fprintf(&sb, " Noted: %s [%s].", note, o.Importance)
			}
		}
	}
	return sb.String()
}

func resolution(c types.RubricCategory, severity string, scores map[string]float64) string {
	ranked := byScore(scores)
	low := ranked[len(ranked)-1].agent
	text := strings.ToLower(c.Name + " " + c.Description)
	for _, kw := range documentationKeywords {
		if strings.Contains(text, kw) {
			return fmt.Sprintf("Request documentation: ask the candidate for concrete artifacts (policies, audits, certifications) covering %s; %s reviews them.", c.Name, low)
		}
	}
	if severity == types.SeverityCritical {
		return fmt.Sprintf("Validate in interview and with reference checks: %s leads a deep-dive on %s and references are asked about it directly.", low, c.Name)
	}
	return fmt.Sprintf("Probe in interview: %s asks targeted questions on %s.", low, c.Name)
}

func findScore(reviews []types.AgentReview, agent, category string) (types.CategoryScore, bool) {
	for i := range reviews {
		if reviews[i].AgentName == agent {
			return reviews[i].Score(category)
		}
	}
	return types.CategoryScore{}, false
}
