package model

// QueryRoute is the path a question is sent down.
type QueryRoute string

const (
	RoutePrecise  QueryRoute = "precise"
	RouteSemantic QueryRoute = "semantic"
)

// QueryClassification is the classifier's verdict for one question.
// Default marks a fallback verdict (no pattern matched) so the orchestrator
// knows the signal is weak.
type QueryClassification struct {
	Question   string     `json:"question"`
	Route      QueryRoute `json:"route"`
	Confidence float64    `json:"confidence"`
	Pattern    string     `json:"pattern,omitempty"`
	Default    bool       `json:"default,omitempty"`
}

// QueryStep is one named stage in the answering pipeline, with an optional
// structured payload (generated query text, row counts, item IDs).
type QueryStep struct {
	Name        string         `json:"name"`
	Description string         `json:"description"`
	Payload     map[string]any `json:"payload,omitempty"`
}

// QueryTrace is the ordered list of steps taken to produce an Answer.
// Immutable once the call returns.
type QueryTrace []QueryStep

// Step appends a named step and returns the extended trace.
func (t QueryTrace) Step(name, description string, payload map[string]any) QueryTrace {
	return append(t, QueryStep{Name: name, Description: description, Payload: payload})
}

// Evidence is one supporting item behind an answer: a graph row rendered to
// text, or a retrieved vector item with its relevance score.
type Evidence struct {
	ID        string  `json:"id,omitempty"`
	Text      string  `json:"text"`
	Relevance float64 `json:"relevance,omitempty"`
}

// Answer is the terminal artifact of the query orchestrator. Method records
// which path produced it; the trace always covers every step taken,
// including an abandoned first path.
type Answer struct {
	Text     string     `json:"text"`
	Method   QueryRoute `json:"method"`
	Evidence []Evidence `json:"evidence,omitempty"`
	Trace    QueryTrace `json:"trace"`
}
