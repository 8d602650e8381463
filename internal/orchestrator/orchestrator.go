// Package orchestrator turns a job description into a weighted evaluation rubric.
package orchestrator

import (
	"context"
	"fmt"
	"log/slog"
	"math"
	"strconv"
	"strings"
	"time"

	"github.com/jonathan/hiring-panel/internal/llm"
	"github.com/jonathan/hiring-panel/internal/prompts"
	"github.com/jonathan/hiring-panel/internal/types"
	"github.com/jonathan/hiring-panel/schemas"
)

// normalizeTolerance is how far the model's weight sum may drift before the rubric is rejected
// rather than rescaled.
const normalizeTolerance = 0.01

// Quality thresholds that only produce warnings
const (
	maxCategoryWeight = 0.40
	minMustHaveWeight = 0.20
)

// Options configures rubric generation
type Options struct {
	CategoryCount int
	RetryBudget   int
	Tier          llm.ModelTier
	Logger        *slog.Logger
}

// GenerateRubric asks the gateway for a rubric and enforces its invariants.
func GenerateRubric(ctx context.Context, gw *llm.Gateway, jobDescription, companyContext string, opts Options) (*types.Rubric, error) {
	if strings.TrimSpace(jobDescription) == "" {
		return nil, &RubricGenerationError{Message: "job description is empty"}
	}
	if opts.CategoryCount <= 0 {
		opts.CategoryCount = 5
	}
	logger := opts.Logger
	if logger == nil {
		logger = slog.Default()
	}

	companyCtx := strings.TrimSpace(companyContext)
	if companyCtx == "" {
		companyCtx = "(none provided)"
	}
	prompt, err := prompts.Render("orchestrator.json", "generate-rubric", map[string]string{
		"JobDescription": jobDescription,
		"CompanyContext": companyCtx,
		"CategoryCount":  strconv.Itoa(opts.CategoryCount),
	})
	if err != nil {
		return nil, &RubricGenerationError{Message: "failed to build prompt", Cause: err}
	}

	rubric, err := llm.Generate(ctx, gw, llm.Request{
		Schema:      schemas.Rubric,
		Prompt:      prompt,
		RetryBudget: opts.RetryBudget,
		Tier:        opts.Tier,
	}, func(r *types.Rubric) error {
		return checkRubric(r, opts.CategoryCount)
	})
	if err != nil {
		return nil, &RubricGenerationError{Message: "gateway did not return a valid rubric", Cause: err}
	}

	rubric.Normalize()
	if err := CheckInvariants(rubric); err != nil {
		return nil, &RubricGenerationError{Message: "rubric violates invariants", Cause: err}
	}
	if rubric.GeneratedAt.IsZero() {
		rubric.GeneratedAt = time.Now().UTC()
	}

	for _, w := range QualityWarnings(rubric) {
		logger.WarnContext(ctx, "rubric quality warning", "warning", w)
	}
	logger.InfoContext(ctx, "rubric generated",
		"role", rubric.RoleTitle, "categories", len(rubric.Categories), "must_have", rubric.MustHaveCount())
	return rubric, nil
}

// checkRubric is the semantic check run on every gateway attempt; its error text is
// fed back to the model.
func checkRubric(r *types.Rubric, want int) error {
	var problems []string
	if len(r.Categories) != want {
		problems = append(problems, fmt.Sprintf("expected %d categories, got %d", want, len(r.Categories)))
	}
	if sum := r.WeightSum(); math.Abs(sum-1.0) > normalizeTolerance {
		problems = append(problems, fmt.Sprintf("category weights sum to %.3f, they must sum to 1.0", sum))
	}
	if r.MustHaveCount() == 0 {
		problems = append(problems, "at least one category must have must_have set to true")
	}
	problems = append(problems, structuralProblems(r)...)
	if len(problems) > 0 {
		return fmt.Errorf("rubric rejected:\n- %s", strings.Join(problems, "\n- "))
	}
	return nil
}

// CheckInvariants verifies the invariants every stored rubric must satisfy.
func CheckInvariants(r *types.Rubric) error {
	if r == nil {
		return fmt.Errorf("rubric is nil")
	}
	if len(r.Categories) == 0 {
		return fmt.Errorf("rubric has no categories")
	}
	if !r.WeightsBalanced() {
		return fmt.Errorf("category weights sum to %.9f, want 1.0 ± %g", r.WeightSum(), types.WeightTolerance)
	}
	if r.MustHaveCount() == 0 {
		return fmt.Errorf("rubric has no must-have category")
	}
	if problems := structuralProblems(r); len(problems) > 0 {
		return fmt.Errorf("%s", strings.Join(problems, "; "))
	}
	return nil
}

func structuralProblems(r *types.Rubric) []string {
	var problems []string
	seen := map[string]bool{}
	for _, c := range r.Categories {
		key := strings.ToLower(strings.TrimSpace(c.Name))
		if seen[key] {
			problems = append(problems, fmt.Sprintf("category name %q is duplicated", c.Name))
		}
		seen[key] = true

		scores := map[float64]bool{}
		for _, sc := range c.ScoringCriteria {
			if scores[sc.Score] {
				problems = append(problems, fmt.Sprintf("category %q has duplicate anchor score %g", c.Name, sc.Score))
			}
			scores[sc.Score] = true
		}
		if len(scores) < 2 {
			problems = append(problems, fmt.Sprintf("category %q needs at least 2 distinct anchor scores", c.Name))
		}
	}
	return problems
}

// QualityWarnings returns non-fatal observations about rubric balance.
func QualityWarnings(r *types.Rubric) []string {
	var warnings []string
	var mustHaveWeight float64
	for _, c := range r.Categories {
		if c.Weight > maxCategoryWeight {
			warnings = append(warnings, fmt.Sprintf("category %q carries %.0f%% of the weight", c.Name, c.Weight*100))
		}
		if c.MustHave {
			mustHaveWeight += c.Weight
		}
	}
	if mustHaveWeight < minMustHaveWeight {
		warnings = append(warnings, fmt.Sprintf("must-have categories carry only %.0f%% of the weight", mustHaveWeight*100))
	}
	return warnings
}
