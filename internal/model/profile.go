package model

// StrategyKind identifies the mechanism used to obtain structured output
// from a model. The set is closed: every executor handles exactly one kind.
type StrategyKind string

const (
	// StrategyNativeSchema uses the provider's native tool/function-calling
	// API with a typed input schema.
	StrategyNativeSchema StrategyKind = "native_schema"
	// StrategyJSONMode asks an OpenAI-compatible provider for a JSON-object
	// response format plus a schema-bearing prompt.
	StrategyJSONMode StrategyKind = "json_mode_prompt"
	// StrategyLocalStructured runs a local Ollama model with format=json.
	StrategyLocalStructured StrategyKind = "local_structured"
	// StrategyGuidedText prompts for plain text and extracts the first
	// balanced JSON object from the response. Last-resort strategy.
	StrategyGuidedText StrategyKind = "guided_text"
)

// Provider identifies which upstream API serves a model.
type Provider string

const (
	ProviderAnthropic Provider = "anthropic"
	ProviderOpenAI    Provider = "openai"
	ProviderOllama    Provider = "ollama"
)

// Preference expresses what the caller wants optimized when the orchestrator
// builds its candidate chain.
type Preference string

const (
	PreferCost    Preference = "cost"
	PreferQuality Preference = "quality"
	PreferSpeed   Preference = "speed"
	PreferPrivacy Preference = "privacy"
)

// ValidPreference reports whether p is one of the known preference values.
func ValidPreference(p Preference) bool {
	switch p {
	case PreferCost, PreferQuality, PreferSpeed, PreferPrivacy:
		return true
	}
	return false
}

// ModelProfile describes a model's structured-output capability and its
// relative cost/latency/quality class. Profiles are immutable after startup.
type ModelProfile struct {
	ID          string       `json:"id"`
	Provider    Provider     `json:"provider"`
	Strategy    StrategyKind `json:"strategy"`
	CostTier    int          `json:"cost_tier"`    // 1 = cheapest
	LatencyTier int          `json:"latency_tier"` // 1 = fastest
	QualityTier int          `json:"quality_tier"` // higher = better
	Local       bool         `json:"local"`
}
