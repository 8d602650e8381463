package types

// Recommendation is the hiring recommendation bucket
type Recommendation string

// Recommendation buckets, strongest first
const (
	RecommendStrongYes Recommendation = "strong_yes"
	RecommendYes       Recommendation = "yes"
	RecommendMaybe     Recommendation = "maybe"
	RecommendNo        Recommendation = "no"
	RecommendStrongNo  Recommendation = "strong_no"
)

// rank orders recommendations; higher is stronger.
func (r Recommendation) rank() int {
	switch r {
	case RecommendStrongYes:
		return 4
	case RecommendYes:
		return 3
	case RecommendMaybe:
		return 2
	case RecommendNo:
		return 1
	default:
		return 0
	}
}

// AtMost returns the weaker of r and limit.
func (r Recommendation) AtMost(limit Recommendation) Recommendation {
	if r.rank() > limit.rank() {
		return limit
	}
	return r
}

// Confidence is the confidence level attached to a decision
type Confidence string

// Confidence levels
const (
	ConfidenceLow    Confidence = "low"
	ConfidenceMedium Confidence = "medium"
	ConfidenceHigh   Confidence = "high"
)

// Level returns 0 for low, 1 for medium, 2 for high.
func (c Confidence) Level() int {
	switch c {
	case ConfidenceHigh:
		return 2
	case ConfidenceMedium:
		return 1
	default:
		return 0
	}
}

// ConfidenceFromLevel clamps a numeric level to a Confidence.
func ConfidenceFromLevel(level int) Confidence {
	switch {
	case level >= 2:
		return ConfidenceHigh
	case level == 1:
		return ConfidenceMedium
	default:
		return ConfidenceLow
	}
}

// Disagreement severities
const (
	SeverityModerate = "moderate"
	SeverityCritical = "critical"
)

// Disagreement flags a category where agents' scores diverge beyond the threshold
type Disagreement struct {
	CategoryName       string             `json:"category_name"`
	AgentScores        map[string]float64 `json:"agent_scores"`
	ScoreDelta         float64            `json:"score_delta"`
	Severity           string             `json:"severity"`
	Reason             string             `json:"reason"`
	ResolutionApproach string             `json:"resolution_approach"`
}

// DecisionPacket is the synthesized outcome of a run
type DecisionPacket struct {
	RoleTitle        string             `json:"role_title"`
	OverallFitScore  float64            `json:"overall_fit_score"`
	Recommendation   Recommendation     `json:"recommendation"`
	ConfidenceLevel  Confidence         `json:"confidence_level"`
	CategoryAverages map[string]float64 `json:"category_averages"`
	TopStrengths     []string           `json:"top_strengths"`
	TopRisks         []string           `json:"top_risks"`
	MustHaveGaps     []string           `json:"must_have_gaps"`
	Disagreements    []Disagreement     `json:"disagreements"`
	MissingRoles     []string           `json:"missing_roles,omitempty"`
	SynthesisNotes   []string           `json:"synthesis_notes"`
}
