package extractor

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/docex-labs/stakeholder-cli/internal/model"
	"github.com/docex-labs/stakeholder-cli/internal/registry"
	"github.com/docex-labs/stakeholder-cli/internal/strategy"
)

// fakeExec scripts one outcome per model ID for a single strategy kind.
type fakeExec struct {
	kind    model.StrategyKind
	outcome map[string]func() (*strategy.StructuredResponse, error)
	calls   []string
}

func (f *fakeExec) Kind() model.StrategyKind { return f.kind }

func (f *fakeExec) Execute(_ context.Context, _ model.Document, profile model.ModelProfile) (*strategy.StructuredResponse, error) {
	f.calls = append(f.calls, profile.ID)
	fn, ok := f.outcome[profile.ID]
	if !ok {
		return nil, &strategy.ProviderError{Model: profile.ID, Err: context.Canceled}
	}
	return fn()
}

// Cost order for these profiles is cheap-local, mid-remote, premium-remote.
func testRegistry() *registry.Registry {
	return registry.New([]model.ModelProfile{
		{ID: "premium-remote", Provider: model.ProviderAnthropic, Strategy: model.StrategyNativeSchema, CostTier: 3, LatencyTier: 2, QualityTier: 4},
		{ID: "mid-remote", Provider: model.ProviderOpenAI, Strategy: model.StrategyJSONMode, CostTier: 2, LatencyTier: 2, QualityTier: 3},
		{ID: "cheap-local", Provider: model.ProviderOllama, Strategy: model.StrategyLocalStructured, CostTier: 1, LatencyTier: 1, QualityTier: 2, Local: true},
	})
}

func success(names ...string) func() (*strategy.StructuredResponse, error) {
	return func() (*strategy.StructuredResponse, error) {
		records := make([]model.StakeholderRecord, 0, len(names))
		for _, n := range names {
			records = append(records, model.StakeholderRecord{Name: n, Type: model.StakeholderIndividual, Confidence: 0.9})
		}
		return &strategy.StructuredResponse{Stakeholders: records, Confidence: 0.9, RawText: "{}"}, nil
	}
}

func failSchema(modelID string) func() (*strategy.StructuredResponse, error) {
	return func() (*strategy.StructuredResponse, error) {
		return nil, &strategy.SchemaInvalidError{Model: modelID, Reason: "bad payload"}
	}
}

func failTimeout(modelID string) func() (*strategy.StructuredResponse, error) {
	return func() (*strategy.StructuredResponse, error) {
		return nil, &strategy.TimeoutError{Model: modelID, Err: context.DeadlineExceeded}
	}
}

func newOrchestrator(outcomes map[string]func() (*strategy.StructuredResponse, error)) *Orchestrator {
	set := strategy.NewSet(
		&fakeExec{kind: model.StrategyNativeSchema, outcome: outcomes},
		&fakeExec{kind: model.StrategyJSONMode, outcome: outcomes},
		&fakeExec{kind: model.StrategyLocalStructured, outcome: outcomes},
	)
	return New(testRegistry(), set, time.Second)
}

var doc = model.Document{ID: "doc-1", Title: "Minutes", Text: "Jane Smith chaired."}

func TestExtractFirstAttemptSucceeds(t *testing.T) {
	orch := newOrchestrator(map[string]func() (*strategy.StructuredResponse, error){
		"cheap-local": success("Jane Smith"),
	})

	result, err := orch.Extract(context.Background(), doc, model.ExtractionRequest{DocumentID: doc.ID, Preference: model.PreferCost}, nil)
	require.NoError(t, err)

	require.Len(t, result.Trace, 1)
	assert.Equal(t, model.OutcomeSuccess, result.Trace[0].Outcome)
	assert.Equal(t, "cheap-local", result.Model)
	assert.Equal(t, model.StrategyLocalStructured, result.Strategy)
	assert.Zero(t, result.Trace.Failed())
}

func TestExtractFallsBackThroughChain(t *testing.T) {
	orch := newOrchestrator(map[string]func() (*strategy.StructuredResponse, error){
		"cheap-local":    failSchema("cheap-local"),
		"mid-remote":     failTimeout("mid-remote"),
		"premium-remote": success("Jane Smith", "Acme Corp", "Budget Committee"),
	})

	result, err := orch.Extract(context.Background(), doc, model.ExtractionRequest{DocumentID: doc.ID, Preference: model.PreferCost}, nil)
	require.NoError(t, err)

	require.Len(t, result.Trace, 3)
	assert.Equal(t, model.OutcomeSchemaInvalid, result.Trace[0].Outcome)
	assert.Equal(t, model.OutcomeTimeout, result.Trace[1].Outcome)
	assert.Equal(t, model.OutcomeSuccess, result.Trace[2].Outcome)
	assert.Equal(t, 2, result.Trace.Failed())
	assert.Equal(t, "premium-remote", result.Model)
	assert.Len(t, result.Stakeholders, 3)
	for _, r := range result.Stakeholders {
		assert.Equal(t, "premium-remote", r.Model)
		assert.Equal(t, doc.ID, r.DocumentID)
		assert.NotEmpty(t, r.ID)
	}
}

func TestExtractExhaustsChain(t *testing.T) {
	orch := newOrchestrator(map[string]func() (*strategy.StructuredResponse, error){
		"cheap-local":    failSchema("cheap-local"),
		"mid-remote":     failSchema("mid-remote"),
		"premium-remote": failTimeout("premium-remote"),
	})

	_, err := orch.Extract(context.Background(), doc, model.ExtractionRequest{DocumentID: doc.ID, Preference: model.PreferCost}, nil)

	var exhausted *ExhaustedError
	require.ErrorAs(t, err, &exhausted)
	assert.Equal(t, doc.ID, exhausted.DocumentID)
	require.Len(t, exhausted.Trace, 3)
	assert.Equal(t, 3, exhausted.Trace.Failed())
	assert.Equal(t, "cheap-local", exhausted.Trace[0].Model)
	assert.Equal(t, "premium-remote", exhausted.Trace[2].Model)
}

func TestExtractModelOverridePinsFirst(t *testing.T) {
	orch := newOrchestrator(map[string]func() (*strategy.StructuredResponse, error){
		"premium-remote": success("Jane Smith"),
	})

	req := model.ExtractionRequest{DocumentID: doc.ID, Preference: model.PreferCost, ModelOverride: "premium-remote"}
	result, err := orch.Extract(context.Background(), doc, req, nil)
	require.NoError(t, err)

	require.Len(t, result.Trace, 1)
	assert.Equal(t, "premium-remote", result.Trace[0].Model)
}

func TestExtractUnknownOverrideFailsImmediately(t *testing.T) {
	orch := newOrchestrator(nil)

	_, err := orch.Extract(context.Background(), doc, model.ExtractionRequest{DocumentID: doc.ID, ModelOverride: "no-such-model"}, nil)

	var unknown *registry.UnknownModelError
	require.ErrorAs(t, err, &unknown)
	assert.Equal(t, "no-such-model", unknown.ModelID)
}

func TestExtractOverrideStillFallsBack(t *testing.T) {
	orch := newOrchestrator(map[string]func() (*strategy.StructuredResponse, error){
		"premium-remote": failSchema("premium-remote"),
		"cheap-local":    success("Jane Smith"),
	})

	req := model.ExtractionRequest{DocumentID: doc.ID, Preference: model.PreferCost, ModelOverride: "premium-remote"}
	result, err := orch.Extract(context.Background(), doc, req, nil)
	require.NoError(t, err)

	require.Len(t, result.Trace, 2)
	assert.Equal(t, "premium-remote", result.Trace[0].Model)
	assert.Equal(t, "cheap-local", result.Trace[1].Model)
}

func TestExtractCancelledAtAttemptBoundary(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	orch := newOrchestrator(map[string]func() (*strategy.StructuredResponse, error){
		"cheap-local": success("Jane Smith"),
	})

	_, err := orch.Extract(ctx, doc, model.ExtractionRequest{DocumentID: doc.ID, Preference: model.PreferCost}, nil)
	assert.ErrorIs(t, err, context.Canceled)
}

func TestExtractReportsProgress(t *testing.T) {
	orch := newOrchestrator(map[string]func() (*strategy.StructuredResponse, error){
		"cheap-local": failSchema("cheap-local"),
		"mid-remote":  success("Jane Smith"),
	})

	var seen []Progress
	_, err := orch.Extract(context.Background(), doc, model.ExtractionRequest{DocumentID: doc.ID, Preference: model.PreferCost}, func(p Progress) {
		seen = append(seen, p)
	})
	require.NoError(t, err)

	require.Len(t, seen, 2)
	assert.Equal(t, Progress{AttemptsDone: 0, AttemptsTotal: 3, CurrentModel: "cheap-local"}, seen[0])
	assert.Equal(t, Progress{AttemptsDone: 1, AttemptsTotal: 3, CurrentModel: "mid-remote"}, seen[1])
}

func TestValidateRecordsDropsNameless(t *testing.T) {
	cand := model.ModelProfile{ID: "m", Strategy: model.StrategyNativeSchema}
	records := validateRecords([]model.StakeholderRecord{
		{Name: "  ", Confidence: 0.9},
		{Name: "Jane Smith", Confidence: 1.4},
	}, "doc-9", cand)

	require.Len(t, records, 1)
	assert.Equal(t, "Jane Smith", records[0].Name)
	assert.Equal(t, 1.0, records[0].Confidence)
	assert.Equal(t, "doc-9", records[0].DocumentID)
}
