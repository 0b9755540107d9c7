// Package extractor runs the capability-aware fallback chain: the registry
// proposes an ordered list of (model, strategy) candidates for the caller's
// preference and the orchestrator executes them sequentially until one
// yields schema-valid output or the chain is exhausted.
package extractor

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"
	"go.uber.org/zap"

	"github.com/docex-labs/stakeholder-cli/internal/model"
	"github.com/docex-labs/stakeholder-cli/internal/registry"
	"github.com/docex-labs/stakeholder-cli/internal/strategy"
)

// DefaultAttemptTimeout bounds a single candidate execution.
const DefaultAttemptTimeout = 90 * time.Second

// ExhaustedError means every candidate in the chain failed. It carries the
// full trace so callers can see exactly what was tried and why each attempt
// died.
type ExhaustedError struct {
	DocumentID string
	Trace      model.ExtractionTrace
}

func (e *ExhaustedError) Error() string {
	return fmt.Sprintf("extractor: all %d candidates exhausted for document %s", len(e.Trace), e.DocumentID)
}

// Progress is a snapshot pushed to the observer before each attempt starts.
type Progress struct {
	AttemptsDone  int
	AttemptsTotal int
	CurrentModel  string
}

// Orchestrator drives extraction requests through the candidate chain.
type Orchestrator struct {
	registry       *registry.Registry
	strategies     *strategy.Set
	attemptTimeout time.Duration
	logger         *zap.Logger
}

// New creates an orchestrator. A zero attemptTimeout falls back to the
// default.
func New(reg *registry.Registry, strategies *strategy.Set, attemptTimeout time.Duration) *Orchestrator {
	if attemptTimeout <= 0 {
		attemptTimeout = DefaultAttemptTimeout
	}
	return &Orchestrator{
		registry:       reg,
		strategies:     strategies,
		attemptTimeout: attemptTimeout,
		logger:         zap.L().Named("extractor"),
	}
}

// Chain returns the candidate order Extract will walk for a request. A model
// override pins that model to the front; the rest of the preference order
// follows so fallback still works. An unknown override fails immediately.
func (o *Orchestrator) Chain(req model.ExtractionRequest) ([]model.ModelProfile, error) {
	candidates := o.registry.CandidatesFor(req.Preference)

	if req.ModelOverride == "" {
		return candidates, nil
	}

	pinned, err := o.registry.ProfileFor(req.ModelOverride)
	if err != nil {
		return nil, err
	}

	out := make([]model.ModelProfile, 0, len(candidates))
	out = append(out, pinned)
	for _, c := range candidates {
		if c.ID != pinned.ID {
			out = append(out, c)
		}
	}
	return out, nil
}

// Extract walks the candidate chain for doc. onProgress may be nil. The
// returned result's trace contains one entry per attempt, in execution
// order, with the successful attempt last. Cancellation is observed at
// attempt boundaries.
func (o *Orchestrator) Extract(ctx context.Context, doc model.Document, req model.ExtractionRequest, onProgress func(Progress)) (*model.ExtractionResult, error) {
	candidates, err := o.Chain(req)
	if err != nil {
		return nil, err
	}

	started := time.Now()
	trace := make(model.ExtractionTrace, 0, len(candidates))

	for i, cand := range candidates {
		if err := ctx.Err(); err != nil {
			return nil, err
		}
		if onProgress != nil {
			onProgress(Progress{AttemptsDone: i, AttemptsTotal: len(candidates), CurrentModel: cand.ID})
		}

		attempt, resp := o.attempt(ctx, doc, cand)
		trace = append(trace, attempt)

		if attempt.Outcome != model.OutcomeSuccess {
			o.logger.Warn("extraction attempt failed",
				zap.String("document_id", doc.ID),
				zap.String("model", cand.ID),
				zap.String("strategy", string(cand.Strategy)),
				zap.String("outcome", string(attempt.Outcome)),
				zap.String("error", attempt.Error),
			)
			continue
		}

		records := validateRecords(resp.Stakeholders, doc.ID, cand)
		result := &model.ExtractionResult{
			DocumentID:   doc.ID,
			Stakeholders: records,
			Trace:        trace,
			QualityScore: model.AggregateQuality(records),
			Model:        cand.ID,
			Strategy:     cand.Strategy,
			CostUSD:      resp.CostUSD,
			Duration:     time.Since(started),
		}
		o.logger.Info("extraction complete",
			zap.String("document_id", doc.ID),
			zap.String("model", cand.ID),
			zap.Int("stakeholders", len(records)),
			zap.Int("failed_attempts", trace.Failed()),
			zap.Float64("quality", result.QualityScore),
		)
		return result, nil
	}

	return nil, &ExhaustedError{DocumentID: doc.ID, Trace: trace}
}

// attempt runs one candidate under the per-attempt timeout and classifies
// the outcome.
func (o *Orchestrator) attempt(ctx context.Context, doc model.Document, cand model.ModelProfile) (model.ExtractionAttempt, *strategy.StructuredResponse) {
	attempt := model.ExtractionAttempt{
		Model:     cand.ID,
		Strategy:  cand.Strategy,
		StartedAt: time.Now(),
	}

	exec, err := o.strategies.For(cand.Strategy)
	if err != nil {
		attempt.FinishedAt = time.Now()
		attempt.Outcome = model.OutcomeProviderError
		attempt.Error = err.Error()
		return attempt, nil
	}

	attemptCtx, cancel := context.WithTimeout(ctx, o.attemptTimeout)
	defer cancel()

	resp, err := exec.Execute(attemptCtx, doc, cand)
	attempt.FinishedAt = time.Now()

	if err != nil {
		attempt.Outcome = classifyOutcome(err)
		attempt.Error = err.Error()
		return attempt, nil
	}

	attempt.Outcome = model.OutcomeSuccess
	attempt.RawExcerpt = model.Excerpt(resp.RawText)
	return attempt, resp
}

// classifyOutcome maps a strategy error onto the attempt outcome taxonomy.
func classifyOutcome(err error) model.AttemptOutcome {
	var schemaErr *strategy.SchemaInvalidError
	if errors.As(err, &schemaErr) {
		return model.OutcomeSchemaInvalid
	}
	var timeoutErr *strategy.TimeoutError
	if errors.As(err, &timeoutErr) {
		return model.OutcomeTimeout
	}
	return model.OutcomeProviderError
}

// validateRecords drops nameless records and stamps provenance onto the
// rest. Confidence was already clamped at parse time; clamping again here
// keeps records safe regardless of which path produced them.
func validateRecords(records []model.StakeholderRecord, docID string, cand model.ModelProfile) []model.StakeholderRecord {
	out := make([]model.StakeholderRecord, 0, len(records))
	for _, r := range records {
		r.Name = strings.TrimSpace(r.Name)
		if r.Name == "" {
			continue
		}
		r.ID = uuid.NewString()
		r.Confidence = model.ClampConfidence(r.Confidence)
		r.Model = cand.ID
		r.Strategy = cand.Strategy
		r.DocumentID = docID
		out = append(out, r)
	}
	return out
}
