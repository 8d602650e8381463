// Package llm provides the LLM provider client and the structured generation gateway
// that turns free-form model output into validated, typed values.
package llm

import "maps"

// ModelTier selects a model by capability
type ModelTier string

const (
	TierLite     ModelTier = "lite"
	TierStandard ModelTier = "standard"
	TierAdvanced ModelTier = "advanced"
)

// Provider names an LLM backend
type Provider string

// ProviderGemini is the Google Gemini provider
const ProviderGemini Provider = "gemini"

const (
	// DefaultTemperature keeps rubric and score output stable across retries
	DefaultTemperature float32 = 0.1
	// DefaultMaxOutputTokens fits a full review of a ten-category rubric
	DefaultMaxOutputTokens int32 = 8192
)

// Config selects the provider and a model per tier
type Config struct {
	Provider        Provider
	Models          map[ModelTier]string
	Temperature     float32
	MaxOutputTokens int32
}

// DefaultConfig returns the Gemini configuration.
func DefaultConfig() *Config {
	return &Config{
		Provider: ProviderGemini,
		Models: map[ModelTier]string{
			TierLite:     "gemini-2.5-flash-lite",
			TierStandard: "gemini-2.5-flash",
			TierAdvanced: "gemini-2.5-pro",
		},
		Temperature:     DefaultTemperature,
		MaxOutputTokens: DefaultMaxOutputTokens,
	}
}

// tier order tried when a tier has no model of its own
var fallbacks = map[ModelTier][]ModelTier{
	TierAdvanced: {TierStandard, TierLite},
	TierStandard: {TierLite},
	TierLite:     {TierStandard},
}

// GetModel returns the model for tier, or the nearest configured tier's model.
func (c *Config) GetModel(tier ModelTier) string {
	if m := c.Models[tier]; m != "" {
		return m
	}
	chain, ok := fallbacks[tier]
	if !ok {
		chain = []ModelTier{TierStandard, TierLite}
	}
	for _, t := range chain {
		if m := c.Models[t]; m != "" {
			return m
		}
	}
	return ""
}

// WithModel returns a copy of c with tier mapped to model.
func (c *Config) WithModel(tier ModelTier, model string) *Config {
	cp := *c
	cp.Models = maps.Clone(c.Models)
	if cp.Models == nil {
		cp.Models = map[ModelTier]string{}
	}
	cp.Models[tier] = model
	return &cp
}

// ParseTier maps a config string to a ModelTier, defaulting to standard.
func ParseTier(s string) ModelTier {
	switch t := ModelTier(s); t {
	case TierLite, TierStandard, TierAdvanced:
		return t
	default:
		return TierStandard
	}
}
