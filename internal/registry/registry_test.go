package registry

import (
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/docex-labs/stakeholder-cli/internal/model"
)

func testProfiles() []model.ModelProfile {
	return []model.ModelProfile{
		{ID: "remote-premium", Provider: model.ProviderAnthropic, Strategy: model.StrategyNativeSchema, CostTier: 3, LatencyTier: 2, QualityTier: 4},
		{ID: "remote-cheap", Provider: model.ProviderOpenAI, Strategy: model.StrategyJSONMode, CostTier: 1, LatencyTier: 2, QualityTier: 3},
		{ID: "local-small", Provider: model.ProviderOllama, Strategy: model.StrategyLocalStructured, CostTier: 1, LatencyTier: 1, QualityTier: 2, Local: true},
	}
}

func TestProfileFor_Unknown(t *testing.T) {
	r := New(testProfiles())

	_, err := r.ProfileFor("no-such-model")
	require.Error(t, err)

	var ue *UnknownModelError
	assert.True(t, errors.As(err, &ue))
	assert.Equal(t, "no-such-model", ue.ModelID)
}

func TestProfileFor_Known(t *testing.T) {
	r := New(testProfiles())

	p, err := r.ProfileFor("local-small")
	require.NoError(t, err)
	assert.Equal(t, model.ProviderOllama, p.Provider)
	assert.True(t, p.Local)
}

func TestCandidatesFor_Ordering(t *testing.T) {
	r := New(testProfiles())

	tests := []struct {
		pref model.Preference
		want []string
	}{
		// cost: cost asc, then quality desc, then ID.
		{model.PreferCost, []string{"remote-cheap", "local-small", "remote-premium"}},
		// quality: quality desc, then cost asc.
		{model.PreferQuality, []string{"remote-premium", "remote-cheap", "local-small"}},
		// speed: latency asc, then quality desc.
		{model.PreferSpeed, []string{"local-small", "remote-premium", "remote-cheap"}},
		// privacy: local first, remote tail by quality desc.
		{model.PreferPrivacy, []string{"local-small", "remote-premium", "remote-cheap"}},
	}

	for _, tt := range tests {
		t.Run(string(tt.pref), func(t *testing.T) {
			got := r.CandidatesFor(tt.pref)
			ids := make([]string, len(got))
			for i, p := range got {
				ids[i] = p.ID
			}
			assert.Equal(t, tt.want, ids)
		})
	}
}

func TestCandidatesFor_Deterministic(t *testing.T) {
	r := New(testProfiles())

	for _, pref := range []model.Preference{model.PreferCost, model.PreferQuality, model.PreferSpeed, model.PreferPrivacy} {
		first := r.CandidatesFor(pref)
		second := r.CandidatesFor(pref)
		assert.Equal(t, first, second, "ordering for %s must be reproducible", pref)
		assert.Len(t, first, len(testProfiles()), "ordering for %s must be total", pref)
	}
}

func TestCandidatesFor_TieBrokenByID(t *testing.T) {
	r := New([]model.ModelProfile{
		{ID: "b-model", CostTier: 1, QualityTier: 2},
		{ID: "a-model", CostTier: 1, QualityTier: 2},
	})

	got := r.CandidatesFor(model.PreferCost)
	require.Len(t, got, 2)
	assert.Equal(t, "a-model", got[0].ID)
	assert.Equal(t, "b-model", got[1].ID)
}

func TestCandidatesFor_UnknownPreferenceDegradesToCost(t *testing.T) {
	r := New(testProfiles())
	assert.Equal(t, r.CandidatesFor(model.PreferCost), r.CandidatesFor(model.Preference("nonsense")))
}

func TestDefault_CoversEveryStrategy(t *testing.T) {
	r := Default()

	seen := map[model.StrategyKind]bool{}
	for _, p := range r.All() {
		seen[p.Strategy] = true
	}
	for _, k := range []model.StrategyKind{model.StrategyNativeSchema, model.StrategyJSONMode, model.StrategyLocalStructured, model.StrategyGuidedText} {
		assert.True(t, seen[k], "default registry missing strategy %s", k)
	}
}
