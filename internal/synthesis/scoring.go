package synthesis

import (
	"fmt"
	"math"
	"sort"

	"github.com/montanaflynn/stats"
	"gonum.org/v1/gonum/floats"

	"github.com/jonathan/hiring-panel/internal/config"
	"github.com/jonathan/hiring-panel/internal/types"
)

// scoreMatrix holds category -> agent -> score
type scoreMatrix map[string]map[string]float64

func buildMatrix(rubric *types.Rubric, reviews []types.AgentReview) scoreMatrix {
	m := scoreMatrix{}
	for _, c := range rubric.Categories {
		m[c.Name] = map[string]float64{}
	}
	for _, r := range reviews {
		for _, cs := range r.CategoryScores {
			if scores, ok := m[cs.CategoryName]; ok {
				scores[r.AgentName] = cs.Score
			}
		}
	}
	return m
}

// values returns a category's scores ordered by agent name.
func (m scoreMatrix) values(category string) stats.Float64Data {
	scores := m[category]
	agents := make([]string, 0, len(scores))
	for a := range scores {
		agents = append(agents, a)
	}
	sort.Strings(agents)
	out := make(stats.Float64Data, 0, len(agents))
	for _, a := range agents {
		out = append(out, scores[a])
	}
	return out
}

func (m scoreMatrix) averages() (map[string]float64, error) {
	out := make(map[string]float64, len(m))
	for category := range m {
		data := m.values(category)
		if len(data) == 0 {
			out[category] = 0
			continue
		}
		mean, err := stats.Mean(data)
		if err != nil {
			return nil, fmt.Errorf("category %s: %w", category, err)
		}
		out[category] = mean
	}
	return out, nil
}

// spread returns the max pairwise absolute difference of a category's scores.
func (m scoreMatrix) spread(category string) float64 {
	data := m.values(category)
	if len(data) < 2 {
		return 0
	}
	hi, _ := stats.Max(data)
	lo, _ := stats.Min(data)
	return hi - lo
}

// overallScore is the rubric-weighted sum of per-category averages.
func overallScore(rubric *types.Rubric, averages map[string]float64) float64 {
	weights := make([]float64, 0, len(rubric.Categories))
	means := make([]float64, 0, len(rubric.Categories))
	for _, c := range rubric.Categories {
		weights = append(weights, c.Weight)
		means = append(means, averages[c.Name])
	}
	total := floats.Sum(weights)
	if total == 0 {
		return 0
	}
	return round2(floats.Dot(weights, means) / total)
}

// Recommend maps a score to a bucket using the configured lower bounds.
func Recommend(score float64, cfg config.SynthesisConfig) types.Recommendation {
	switch {
	case score >= cfg.StrongYesMin:
		return types.RecommendStrongYes
	case score >= cfg.YesMin:
		return types.RecommendYes
	case score >= cfg.MaybeMin:
		return types.RecommendMaybe
	case score >= cfg.NoMin:
		return types.RecommendNo
	default:
		return types.RecommendStrongNo
	}
}

// Confidence derives the decision confidence from panel completeness and disagreements.
// A panel with missing roles or a single reviewer is low confidence. Otherwise each
// moderate disagreement costs one point and each critical one two: zero points is high,
// up to two is medium, more is low.
func Confidence(reviews, missing int, disagreements []types.Disagreement) types.Confidence {
	if missing > 0 || reviews < 2 {
		return types.ConfidenceLow
	}
	points := 0
	for _, d := range disagreements {
		if d.Severity == types.SeverityCritical {
			points += 2
		} else {
			points++
		}
	}
	switch {
	case points == 0:
		return types.ConfidenceHigh
	case points <= 2:
		return types.ConfidenceMedium
	default:
		return types.ConfidenceLow
	}
}

// mustHaveGaps lists must-have categories that any agent scored zero or whose average
// falls below the configured gap score, in rubric order.
func mustHaveGaps(rubric *types.Rubric, m scoreMatrix, averages map[string]float64, cfg config.SynthesisConfig) []string {
	gaps := []string{}
	for _, c := range rubric.Categories {
		if !c.MustHave {
			continue
		}
		data := m.values(c.Name)
		if len(data) == 0 {
			continue
		}
		lo, _ := stats.Min(data)
		if lo <= 0 || averages[c.Name] < cfg.MustHaveGapScore {
			gaps = append(gaps, c.Name)
		}
	}
	return gaps
}

func roundAll(m map[string]float64) map[string]float64 {
	out := make(map[string]float64, len(m))
	for k, v := range m {
		out[k] = round2(v)
	}
	return out
}

func round2(v float64) float64 {
	return math.Round(v*100) / 100
}
