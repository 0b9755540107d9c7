// Package registry holds the static model capability table. It is built once
// at startup and read-only afterwards, so lookups need no locking.
package registry

import (
	"fmt"
	"sort"

	"github.com/docex-labs/stakeholder-cli/internal/model"
)

// UnknownModelError is returned when a model ID has no profile.
type UnknownModelError struct {
	ModelID string
}

func (e *UnknownModelError) Error() string {
	return fmt.Sprintf("registry: unknown model %q", e.ModelID)
}

// Registry maps model IDs to capability profiles.
type Registry struct {
	profiles map[string]model.ModelProfile
	ordered  []model.ModelProfile // stable ID order, basis of all sorts
}

// New builds a registry from the given profiles. Later duplicates of the
// same ID win, matching config-override semantics.
func New(profiles []model.ModelProfile) *Registry {
	r := &Registry{profiles: make(map[string]model.ModelProfile, len(profiles))}
	for _, p := range profiles {
		r.profiles[p.ID] = p
	}
	for _, p := range r.profiles {
		r.ordered = append(r.ordered, p)
	}
	sort.Slice(r.ordered, func(i, j int) bool { return r.ordered[i].ID < r.ordered[j].ID })
	return r
}

// Default returns the built-in capability table: one profile per supported
// model, mirroring what each provider actually offers for structured output.
func Default() *Registry {
	return New([]model.ModelProfile{
		{
			ID:          "claude-sonnet-4-5-20250929",
			Provider:    model.ProviderAnthropic,
			Strategy:    model.StrategyNativeSchema,
			CostTier:    3,
			LatencyTier: 2,
			QualityTier: 4,
		},
		{
			ID:          "claude-haiku-4-5-20251001",
			Provider:    model.ProviderAnthropic,
			Strategy:    model.StrategyNativeSchema,
			CostTier:    2,
			LatencyTier: 1,
			QualityTier: 3,
		},
		{
			ID:          "gpt-4o",
			Provider:    model.ProviderOpenAI,
			Strategy:    model.StrategyNativeSchema,
			CostTier:    3,
			LatencyTier: 2,
			QualityTier: 4,
		},
		{
			ID:          "deepseek-v3",
			Provider:    model.ProviderOpenAI,
			Strategy:    model.StrategyJSONMode,
			CostTier:    1,
			LatencyTier: 2,
			QualityTier: 3,
		},
		{
			ID:          "llama3.1:8b-instruct-q8_0",
			Provider:    model.ProviderOllama,
			Strategy:    model.StrategyLocalStructured,
			CostTier:    1,
			LatencyTier: 1,
			QualityTier: 2,
			Local:       true,
		},
		{
			ID:          "llama3.1:8b-text",
			Provider:    model.ProviderOllama,
			Strategy:    model.StrategyGuidedText,
			CostTier:    1,
			LatencyTier: 1,
			QualityTier: 1,
			Local:       true,
		},
	})
}

// ProfileFor returns the profile for a model ID.
func (r *Registry) ProfileFor(modelID string) (model.ModelProfile, error) {
	p, ok := r.profiles[modelID]
	if !ok {
		return model.ModelProfile{}, &UnknownModelError{ModelID: modelID}
	}
	return p, nil
}

// All returns every profile in stable ID order.
func (r *Registry) All() []model.ModelProfile {
	out := make([]model.ModelProfile, len(r.ordered))
	copy(out, r.ordered)
	return out
}

// CandidatesFor returns the fallback chain for a preference. The ordering is
// deterministic and total: every comparison chain ends in the profile ID, so
// two calls against the same registry always agree.
func (r *Registry) CandidatesFor(pref model.Preference) []model.ModelProfile {
	out := r.All()

	switch pref {
	case model.PreferCost:
		sort.SliceStable(out, func(i, j int) bool {
			a, b := out[i], out[j]
			if a.CostTier != b.CostTier {
				return a.CostTier < b.CostTier
			}
			if a.QualityTier != b.QualityTier {
				return a.QualityTier > b.QualityTier
			}
			return a.ID < b.ID
		})
	case model.PreferQuality:
		sort.SliceStable(out, func(i, j int) bool {
			a, b := out[i], out[j]
			if a.QualityTier != b.QualityTier {
				return a.QualityTier > b.QualityTier
			}
			if a.CostTier != b.CostTier {
				return a.CostTier < b.CostTier
			}
			return a.ID < b.ID
		})
	case model.PreferSpeed:
		sort.SliceStable(out, func(i, j int) bool {
			a, b := out[i], out[j]
			if a.LatencyTier != b.LatencyTier {
				return a.LatencyTier < b.LatencyTier
			}
			if a.QualityTier != b.QualityTier {
				return a.QualityTier > b.QualityTier
			}
			return a.ID < b.ID
		})
	case model.PreferPrivacy:
		// Local profiles first; remote models remain as the tail of the
		// chain so privacy preference still terminates in an answer.
		sort.SliceStable(out, func(i, j int) bool {
			a, b := out[i], out[j]
			if a.Local != b.Local {
				return a.Local
			}
			if a.QualityTier != b.QualityTier {
				return a.QualityTier > b.QualityTier
			}
			return a.ID < b.ID
		})
	default:
		// Unknown preference degrades to cost ordering.
		return r.CandidatesFor(model.PreferCost)
	}

	return out
}
