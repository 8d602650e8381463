// Package types provides type definitions for structured data used throughout the hiring-panel system.
//
//nolint:revive // types is a standard Go package name pattern
package types

import (
	"math"
	"sort"
	"time"
)

// WeightTolerance is the maximum allowed deviation of a rubric's weight sum from 1.0.
const WeightTolerance = 1e-6

// ScoringCriteria is one scoring anchor of a rubric category
type ScoringCriteria struct {
	Score       float64  `json:"score" validate:"gte=0"`
	Label       string   `json:"label" validate:"required"`
	Description string   `json:"description" validate:"required"`
	Indicators  []string `json:"indicators,omitempty"`
}

// RubricCategory is a weighted evaluation dimension derived from the job description
type RubricCategory struct {
	Name            string            `json:"name" validate:"required"`
	Description     string            `json:"description" validate:"required"`
	Weight          float64           `json:"weight" validate:"gte=0,lte=1"`
	MustHave        bool              `json:"must_have"`
	ScoringCriteria []ScoringCriteria `json:"scoring_criteria" validate:"min=2,dive"`
}

// Rubric is the weighted set of categories every panel agent scores against
type Rubric struct {
	RoleTitle   string           `json:"role_title" validate:"required"`
	Categories  []RubricCategory `json:"categories" validate:"min=1,dive"`
	GeneratedAt time.Time        `json:"generated_at,omitempty"`
}

// WeightSum returns the sum of all category weights.
func (r *Rubric) WeightSum() float64 {
	var sum float64
	for _, c := range r.Categories {
		sum += c.Weight
	}
	return sum
}

// MustHaveCount returns the number of must-have categories.
func (r *Rubric) MustHaveCount() int {
	n := 0
	for _, c := range r.Categories {
		if c.MustHave {
			n++
		}
	}
	return n
}

// Category looks up a category by name.
func (r *Rubric) Category(name string) (RubricCategory, bool) {
	for _, c := range r.Categories {
		if c.Name == name {
			return c, true
		}
	}
	return RubricCategory{}, false
}

// CategoryNames returns category names in rubric order.
func (r *Rubric) CategoryNames() []string {
	names := make([]string, 0, len(r.Categories))
	for _, c := range r.Categories {
		names = append(names, c.Name)
	}
	return names
}

// Normalize rescales weights so they sum to exactly 1.0.
// It is a no-op when the sum is zero.
func (r *Rubric) Normalize() {
	sum := r.WeightSum()
	if sum == 0 {
		return
	}
	for i := range r.Categories {
		r.Categories[i].Weight /= sum
	}
}

// WeightsBalanced reports whether the weight sum is within WeightTolerance of 1.0.
func (r *Rubric) WeightsBalanced() bool {
	return math.Abs(r.WeightSum()-1.0) <= WeightTolerance
}

// AnchorScores returns the category's anchor scores in ascending order.
func (c RubricCategory) AnchorScores() []float64 {
	scores := make([]float64, 0, len(c.ScoringCriteria))
	for _, sc := range c.ScoringCriteria {
		scores = append(scores, sc.Score)
	}
	sort.Float64s(scores)
	return scores
}

// ScoreRange returns the lowest and highest anchor scores.
func (c RubricCategory) ScoreRange() (lo, hi float64) {
	scores := c.AnchorScores()
	if len(scores) == 0 {
		return 0, 0
	}
	return scores[0], scores[len(scores)-1]
}

// LowestAnchor returns the anchor with the lowest score.
func (c RubricCategory) LowestAnchor() ScoringCriteria {
	var out ScoringCriteria
	for i, sc := range c.ScoringCriteria {
		if i == 0 || sc.Score < out.Score {
			out = sc
		}
	}
	return out
}

// HighestAnchor returns the anchor with the highest score.
func (c RubricCategory) HighestAnchor() ScoringCriteria {
	var out ScoringCriteria
	for i, sc := range c.ScoringCriteria {
		if i == 0 || sc.Score > out.Score {
			out = sc
		}
	}
	return out
}
