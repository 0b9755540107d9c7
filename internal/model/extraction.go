package model

import "time"

// ExtractionRequest describes one extraction call. The orchestrator owns the
// value for the duration of the call; it is never shared across requests.
type ExtractionRequest struct {
	DocumentID    string     `json:"document_id"`
	Preference    Preference `json:"preference"`
	ModelOverride string     `json:"model_override,omitempty"`
}

// AttemptOutcome classifies how a single extraction attempt ended.
type AttemptOutcome string

const (
	OutcomeSuccess       AttemptOutcome = "success"
	OutcomeSchemaInvalid AttemptOutcome = "schema_invalid"
	OutcomeProviderError AttemptOutcome = "provider_error"
	OutcomeTimeout       AttemptOutcome = "timeout"
)

// excerptLimit bounds the raw-response excerpt kept on each attempt.
const excerptLimit = 240

// ExtractionAttempt records one candidate execution. Appended to the trace
// regardless of outcome and never mutated afterwards.
type ExtractionAttempt struct {
	Model      string         `json:"model"`
	Strategy   StrategyKind   `json:"strategy"`
	StartedAt  time.Time      `json:"started_at"`
	FinishedAt time.Time      `json:"finished_at"`
	Outcome    AttemptOutcome `json:"outcome"`
	Error      string         `json:"error,omitempty"`
	RawExcerpt string         `json:"raw_excerpt,omitempty"`
}

// Excerpt truncates raw to the bounded diagnostic length.
func Excerpt(raw string) string {
	if len(raw) <= excerptLimit {
		return raw
	}
	return raw[:excerptLimit]
}

// ExtractionTrace is the ordered record of all attempts made for a request.
type ExtractionTrace []ExtractionAttempt

// Failed counts attempts that did not succeed.
func (t ExtractionTrace) Failed() int {
	n := 0
	for _, a := range t {
		if a.Outcome != OutcomeSuccess {
			n++
		}
	}
	return n
}

// ExtractionResult is the terminal artifact of a successful extraction.
// The trace includes every attempt, failed ones first.
type ExtractionResult struct {
	DocumentID   string              `json:"document_id"`
	Stakeholders []StakeholderRecord `json:"stakeholders"`
	Trace        ExtractionTrace     `json:"trace"`
	QualityScore float64             `json:"quality_score"`
	Model        string              `json:"model"`
	Strategy     StrategyKind        `json:"strategy"`
	CostUSD      float64             `json:"cost_usd"`
	Duration     time.Duration       `json:"duration"`
}

// AggregateQuality is the mean record confidence; zero for empty results.
// Raw per-strategy confidences are not renormalized.
func AggregateQuality(records []StakeholderRecord) float64 {
	if len(records) == 0 {
		return 0
	}
	sum := 0.0
	for _, r := range records {
		sum += r.Confidence
	}
	return sum / float64(len(records))
}
