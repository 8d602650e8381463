// Package config provides configuration loading and validation for the CLI and the workflow engine.
package config

import (
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"time"
)

// Config represents the CLI configuration that can be loaded from a JSON file.
// All fields are optional; missing values use defaults or must be provided via CLI flags.
type Config struct {
	// Inputs
	Job            string `json:"job,omitempty"`             // Path to job description text file
	JobURL         string `json:"job_url,omitempty"`         // URL to fetch job posting from
	Resume         string `json:"resume,omitempty"`          // Path to resume text file
	CompanyContext string `json:"company_context,omitempty"` // Path to company context text file

	// Behavior
	APIKey      string `json:"api_key,omitempty"`      // Gemini API key
	ModelTier   string `json:"model_tier,omitempty"`   // lite, standard or advanced
	CacheSize   int    `json:"cache_size,omitempty"`   // LLM response cache entries
	UseBrowser  bool   `json:"use_browser,omitempty"`  // Use headless browser for SPA job boards
	Verbose     bool   `json:"verbose,omitempty"`      // Print detailed debug information
	Out         string `json:"out,omitempty"`          // Output directory for artifacts
	DatabaseURL string `json:"database_url,omitempty"` // PostgreSQL connection URL

	Workflow  WorkflowConfig  `json:"workflow"`
	Synthesis SynthesisConfig `json:"synthesis"`
}

// NoRetries disables a retry budget. A zero budget means "use the default".
const NoRetries = -1

// WorkflowConfig tunes the orchestrator and the panel scheduler.
// Zero values are replaced by defaults in MergeWithDefaults; set a retry
// budget to NoRetries to allow a single attempt.
type WorkflowConfig struct {
	RubricCategoriesCount int  `json:"rubric_categories_count,omitempty"`
	RubricRetryBudget     int  `json:"rubric_retry_budget,omitempty"`
	AgentRetryBudget      int  `json:"agent_retry_budget,omitempty"`
	ProviderRetries       int  `json:"provider_retries,omitempty"`
	EnableProductAgent    bool `json:"enable_product_agent,omitempty"`
	MaxConcurrentAgents   int  `json:"max_concurrent_agents,omitempty"`
	PanelTimeoutSeconds   int  `json:"panel_timeout_seconds,omitempty"`
	// StrictAnchors rejects scores between anchors instead of accepting them within range
	StrictAnchors bool `json:"strict_anchors,omitempty"`
}

// RubricRetries returns the effective rubric retry budget.
func (w WorkflowConfig) RubricRetries() int { return retries(w.RubricRetryBudget) }

// AgentRetries returns the effective retry budget for each agent pass.
func (w WorkflowConfig) AgentRetries() int { return retries(w.AgentRetryBudget) }

// ProviderRetryCount returns the effective provider retry count.
func (w WorkflowConfig) ProviderRetryCount() int { return retries(w.ProviderRetries) }

func retries(budget int) int {
	if budget < 0 {
		return 0
	}
	return budget
}

// PanelTimeout returns the run-level panel deadline.
func (w WorkflowConfig) PanelTimeout() time.Duration {
	return time.Duration(w.PanelTimeoutSeconds) * time.Second
}

// SynthesisConfig holds disagreement thresholds, recommendation bucket boundaries
// and interview plan sizing.
type SynthesisConfig struct {
	DisagreementThreshold         float64 `json:"disagreement_threshold,omitempty"`
	MustHaveDisagreementThreshold float64 `json:"must_have_disagreement_threshold,omitempty"`
	MustHaveGapScore              float64 `json:"must_have_gap_score,omitempty"`

	StrongYesMin float64 `json:"strong_yes_min,omitempty"`
	YesMin       float64 `json:"yes_min,omitempty"`
	MaybeMin     float64 `json:"maybe_min,omitempty"`
	NoMin        float64 `json:"no_min,omitempty"`

	MaxQuestionsPerInterviewer int `json:"max_questions_per_interviewer,omitempty"`
	BaseMinutesPerInterviewer  int `json:"base_minutes_per_interviewer,omitempty"`
	MinutesPerQuestion         int `json:"minutes_per_question,omitempty"`
}

// Defaults returns the built-in configuration.
func Defaults() Config {
	return Config{
		ModelTier: "standard",
		CacheSize: 128,
		Out:       "out",
		Workflow:  DefaultWorkflow(),
		Synthesis: DefaultSynthesis(),
	}
}

// DefaultWorkflow returns the built-in workflow settings.
func DefaultWorkflow() WorkflowConfig {
	return WorkflowConfig{
		RubricCategoriesCount: 5,
		RubricRetryBudget:     2,
		AgentRetryBudget:      2,
		ProviderRetries:       3,
		MaxConcurrentAgents:   4,
		PanelTimeoutSeconds:   180,
	}
}

// DefaultSynthesis returns the built-in synthesis settings.
func DefaultSynthesis() SynthesisConfig {
	return SynthesisConfig{
		DisagreementThreshold:         1.5,
		MustHaveDisagreementThreshold: 1.0,
		MustHaveGapScore:              1.0,
		StrongYesMin:                  4.25,
		YesMin:                        3.5,
		MaybeMin:                      2.5,
		NoMin:                         1.5,
		MaxQuestionsPerInterviewer:    5,
		BaseMinutesPerInterviewer:     5,
		MinutesPerQuestion:            8,
	}
}

// LoadConfig loads configuration from a JSON file.
// Returns an error if the file cannot be read or parsed.
func LoadConfig(path string) (*Config, error) {
	if path == "" {
		return nil, fmt.Errorf("config path is empty")
	}

	if !filepath.IsAbs(path) {
		cwd, err := os.Getwd()
		if err != nil {
			return nil, fmt.Errorf("failed to get current directory: %w", err)
		}
		path = filepath.Join(cwd, path)
	}

	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to read config file %s: %w", path, err)
	}

	var cfg Config
	if err := json.Unmarshal(data, &cfg); err != nil {
		return nil, fmt.Errorf("failed to parse config JSON: %w", err)
	}

	return &cfg, nil
}

// Validate checks that the configuration has valid values.
// It is meant to run after MergeWithDefaults so numeric fields are populated.
func (c *Config) Validate() error {
	if c.Job != "" && c.JobURL != "" {
		return fmt.Errorf("config error: 'job' and 'job_url' are mutually exclusive")
	}
	for name, path := range map[string]string{"job": c.Job, "resume": c.Resume, "company_context": c.CompanyContext} {
		if path == "" {
			continue
		}
		if _, err := os.Stat(path); os.IsNotExist(err) {
			return fmt.Errorf("config error: %s file not found: %s", name, path)
		}
	}
	if c.CacheSize < 0 {
		return fmt.Errorf("config error: 'cache_size' must be non-negative")
	}
	if err := c.Workflow.Validate(); err != nil {
		return err
	}
	return c.Synthesis.Validate()
}

// Validate checks workflow settings.
func (w WorkflowConfig) Validate() error {
	if w.RubricCategoriesCount < 3 || w.RubricCategoriesCount > 10 {
		return fmt.Errorf("config error: 'rubric_categories_count' must be between 3 and 10")
	}
	for _, budget := range []int{w.RubricRetryBudget, w.AgentRetryBudget, w.ProviderRetries} {
		if budget < NoRetries {
			return fmt.Errorf("config error: retry budgets must be non-negative, or %d for no retries", NoRetries)
		}
	}
	if w.MaxConcurrentAgents < 1 {
		return fmt.Errorf("config error: 'max_concurrent_agents' must be at least 1")
	}
	if w.PanelTimeoutSeconds < 1 {
		return fmt.Errorf("config error: 'panel_timeout_seconds' must be at least 1")
	}
	return nil
}

// Validate checks synthesis settings.
func (s SynthesisConfig) Validate() error {
	if s.DisagreementThreshold <= 0 || s.MustHaveDisagreementThreshold <= 0 {
		return fmt.Errorf("config error: disagreement thresholds must be positive")
	}
	if s.MustHaveDisagreementThreshold > s.DisagreementThreshold {
		return fmt.Errorf("config error: 'must_have_disagreement_threshold' must not exceed 'disagreement_threshold'")
	}
	if !(s.StrongYesMin > s.YesMin && s.YesMin > s.MaybeMin && s.MaybeMin > s.NoMin && s.NoMin > 0) {
		return fmt.Errorf("config error: recommendation boundaries must satisfy strong_yes > yes > maybe > no > 0")
	}
	if s.MaxQuestionsPerInterviewer < 1 {
		return fmt.Errorf("config error: 'max_questions_per_interviewer' must be at least 1")
	}
	if s.BaseMinutesPerInterviewer < 0 || s.MinutesPerQuestion < 0 {
		return fmt.Errorf("config error: interview minutes must be non-negative")
	}
	return nil
}

// MergeWithDefaults returns a new Config with empty fields filled from defaults.
// This is used to apply config file values as defaults for CLI flags.
func (c *Config) MergeWithDefaults(defaults Config) Config {
	result := *c

	// String fields: use default if empty
	result.Job = orString(result.Job, defaults.Job)
	result.JobURL = orString(result.JobURL, defaults.JobURL)
	result.Resume = orString(result.Resume, defaults.Resume)
	result.CompanyContext = orString(result.CompanyContext, defaults.CompanyContext)
	result.APIKey = orString(result.APIKey, defaults.APIKey)
	result.ModelTier = orString(result.ModelTier, defaults.ModelTier)
	result.Out = orString(result.Out, defaults.Out)
	result.DatabaseURL = orString(result.DatabaseURL, defaults.DatabaseURL)
	result.CacheSize = orInt(result.CacheSize, defaults.CacheSize)

	w, dw := &result.Workflow, defaults.Workflow
	w.RubricCategoriesCount = orInt(w.RubricCategoriesCount, dw.RubricCategoriesCount)
	w.RubricRetryBudget = orInt(w.RubricRetryBudget, dw.RubricRetryBudget)
	w.AgentRetryBudget = orInt(w.AgentRetryBudget, dw.AgentRetryBudget)
	w.ProviderRetries = orInt(w.ProviderRetries, dw.ProviderRetries)
	w.MaxConcurrentAgents = orInt(w.MaxConcurrentAgents, dw.MaxConcurrentAgents)
	w.PanelTimeoutSeconds = orInt(w.PanelTimeoutSeconds, dw.PanelTimeoutSeconds)

	s, ds := &result.Synthesis, defaults.Synthesis
	s.DisagreementThreshold = orFloat(s.DisagreementThreshold, ds.DisagreementThreshold)
	s.MustHaveDisagreementThreshold = orFloat(s.MustHaveDisagreementThreshold, ds.MustHaveDisagreementThreshold)
	s.MustHaveGapScore = orFloat(s.MustHaveGapScore, ds.MustHaveGapScore)
	s.StrongYesMin = orFloat(s.StrongYesMin, ds.StrongYesMin)
	s.YesMin = orFloat(s.YesMin, ds.YesMin)
	s.MaybeMin = orFloat(s.MaybeMin, ds.MaybeMin)
	s.NoMin = orFloat(s.NoMin, ds.NoMin)
	s.MaxQuestionsPerInterviewer = orInt(s.MaxQuestionsPerInterviewer, ds.MaxQuestionsPerInterviewer)
	s.BaseMinutesPerInterviewer = orInt(s.BaseMinutesPerInterviewer, ds.BaseMinutesPerInterviewer)
	s.MinutesPerQuestion = orInt(s.MinutesPerQuestion, ds.MinutesPerQuestion)

	// Bool fields: cannot distinguish unset from false, so we don't merge
	// (CLI flags should always win for bools)

	return result
}

func orString(v, def string) string {
	if v == "" {
		return def
	}
	return v
}

func orInt(v, def int) int {
	if v == 0 {
		return def
	}
	return v
}

func orFloat(v, def float64) float64 {
	if v == 0 {
		return def
	}
	return v
}
