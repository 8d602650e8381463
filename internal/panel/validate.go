package panel

import (
	"fmt"
	"math"
	"strings"

	"github.com/jonathan/hiring-panel/internal/types"
)

const scoreEpsilon = 1e-9

// ValidateMemory checks a first-pass working memory against the rubric.
func ValidateMemory(m *types.WorkingMemory, rubric *types.Rubric) error {
	var problems []string
	if len(m.KeyObservations) == 0 {
		problems = append(problems, "key_observations must contain at least one observation")
	}
	for i, o := range m.KeyObservations {
		if _, ok := rubric.Category(o.Category); !ok {
			problems = append(problems, fmt.Sprintf("key_observations[%d].category %q is not a rubric category (use one of: %s)",
				i, o.Category, strings.Join(rubric.CategoryNames(), ", ")))
		}
		for j, cr := range o.CrossReferences {
			if strings.TrimSpace(cr.ResumeSection) == "" {
				problems = append(problems, fmt.Sprintf("key_observations[%d].cross_references[%d].resume_section is empty", i, j))
			}
			if strings.TrimSpace(cr.JDRequirement) == "" {
				problems = append(problems, fmt.Sprintf("key_observations[%d].cross_references[%d].jd_requirement is empty", i, j))
			}
		}
	}
	return problemsError("working memory", problems)
}

// ValidateReview checks a second-pass review against the rubric: exact category
// coverage, scores on the anchor scale and at least one non-empty evidence quote
// per category. With strict set, scores must equal an anchor.
func ValidateReview(r *types.AgentReview, rubric *types.Rubric, strict bool) error {
	var problems []string
	seen := map[string]int{}

	for _, cs := range r.CategoryScores {
		seen[cs.CategoryName]++
		cat, ok := rubric.Category(cs.CategoryName)
		if !ok {
			problems = append(problems, fmt.Sprintf("category_scores contains %q which is not a rubric category", cs.CategoryName))
			continue
		}
		if !ScoreAllowed(cat, cs.Score, strict) {
			lo, hi := cat.ScoreRange()
			if strict {
				problems = append(problems, fmt.Sprintf("score %g for %q must be one of the anchors %v", cs.Score, cs.CategoryName, cat.AnchorScores()))
			} else {
				problems = append(problems, fmt.Sprintf("score %g for %q must lie between %g and %g", cs.Score, cs.CategoryName, lo, hi))
			}
		}
		if len(cs.Evidence) == 0 {
			problems = append(problems, fmt.Sprintf("score for %q has no evidence", cs.CategoryName))
		}
		for i, ev := range cs.Evidence {
			if strings.TrimSpace(ev.ResumeText) == "" {
				problems = append(problems, fmt.Sprintf("evidence[%d] for %q has an empty resume_text", i, cs.CategoryName))
			}
		}
	}

	for _, name := range rubric.CategoryNames() {
		switch n := seen[name]; {
		case n == 0:
			problems = append(problems, fmt.Sprintf("category_scores is missing %q", name))
		case n > 1:
			problems = append(problems, fmt.Sprintf("category_scores lists %q %d times", name, n))
		}
	}
	return problemsError("review", problems)
}

// ScoreAllowed reports whether score is valid for the category.
func ScoreAllowed(cat types.RubricCategory, score float64, strict bool) bool {
	for _, a := range cat.AnchorScores() {
		if math.Abs(a-score) <= scoreEpsilon {
			return true
		}
	}
	if strict {
		return false
	}
	lo, hi := cat.ScoreRange()
	return score >= lo-scoreEpsilon && score <= hi+scoreEpsilon
}

func problemsError(what string, problems []string) error {
	if len(problems) == 0 {
		return nil
	}
	return fmt.Errorf("%s rejected:\n- %s", what, strings.Join(problems, "\n- "))
}
