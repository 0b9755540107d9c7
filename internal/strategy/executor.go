// Package strategy implements one executor per structured-output mechanism.
// Each executor builds a provider-specific request, calls the provider, and
// parses the response into a canonical StructuredResponse. Failures are
// always one of the three classified errors in errors.go.
package strategy

import (
	"context"
	"encoding/json"
	"fmt"

	"github.com/docex-labs/stakeholder-cli/internal/model"
)

// maxDocumentChars bounds how much document text is sent per attempt.
const maxDocumentChars = 12000

// StructuredResponse is the canonical output of any executor.
type StructuredResponse struct {
	Stakeholders []model.StakeholderRecord
	// Confidence is the extraction-level score the model reported. Scores
	// are not comparable across strategies and are surfaced raw.
	Confidence float64
	RawText    string
	CostUSD    float64
}

// Executor obtains structured stakeholder output from one model.
type Executor interface {
	Kind() model.StrategyKind
	Execute(ctx context.Context, doc model.Document, profile model.ModelProfile) (*StructuredResponse, error)
}

// Set holds one executor per strategy kind.
type Set struct {
	executors map[model.StrategyKind]Executor
}

// NewSet builds a Set from the given executors.
func NewSet(executors ...Executor) *Set {
	s := &Set{executors: make(map[model.StrategyKind]Executor, len(executors))}
	for _, e := range executors {
		s.executors[e.Kind()] = e
	}
	return s
}

// For returns the executor for a strategy kind.
func (s *Set) For(kind model.StrategyKind) (Executor, error) {
	e, ok := s.executors[kind]
	if !ok {
		return nil, fmt.Errorf("strategy: no executor for kind %q", kind)
	}
	return e, nil
}

// wireStakeholder is the provider-facing JSON shape of one stakeholder.
type wireStakeholder struct {
	Name          string  `json:"name"`
	Type          string  `json:"stakeholder_type"`
	Role          string  `json:"role"`
	Organization  string  `json:"organization"`
	Contact       string  `json:"contact"`
	Confidence    float64 `json:"confidence_score"`
	SourceExcerpt string  `json:"source_excerpt"`
}

// wirePayload is the provider-facing top-level JSON shape.
type wirePayload struct {
	Stakeholders          []wireStakeholder `json:"stakeholders"`
	ExtractionConfidence  float64           `json:"extraction_confidence"`
}

// parsePayload converts a cleaned JSON payload into a StructuredResponse.
// Parse failures and a missing stakeholders field are schema-invalid; an
// empty stakeholder list is valid (documents may simply name nobody).
func parsePayload(payload string, modelID string) (*StructuredResponse, error) {
	var wire wirePayload
	if err := json.Unmarshal([]byte(payload), &wire); err != nil {
		return nil, &SchemaInvalidError{Model: modelID, Reason: "response is not valid JSON", Err: err}
	}
	if wire.Stakeholders == nil {
		return nil, &SchemaInvalidError{Model: modelID, Reason: "missing stakeholders field"}
	}

	records := make([]model.StakeholderRecord, 0, len(wire.Stakeholders))
	for _, w := range wire.Stakeholders {
		records = append(records, model.StakeholderRecord{
			Name:          w.Name,
			Type:          model.NormalizeStakeholderType(w.Type),
			Role:          w.Role,
			Organization:  w.Organization,
			Contact:       w.Contact,
			Confidence:    model.ClampConfidence(w.Confidence),
			SourceExcerpt: w.SourceExcerpt,
		})
	}

	return &StructuredResponse{
		Stakeholders: records,
		Confidence:   model.ClampConfidence(wire.ExtractionConfidence),
		RawText:      payload,
	}, nil
}

// documentPrompt renders the document portion shared by every strategy's
// user prompt, truncated to the per-attempt character budget.
func documentPrompt(doc model.Document) string {
	text := doc.Text
	if len(text) > maxDocumentChars {
		text = text[:maxDocumentChars]
	}
	return fmt.Sprintf("Title: %s\n\nContent:\n%s", doc.Title, text)
}
