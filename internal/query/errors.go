package query

import (
	"errors"
	"fmt"

	"github.com/docex-labs/stakeholder-cli/internal/model"
)

// UnmappableTermError means the precise path found a domain term the
// vocabulary cannot map to a graph field. Triggers the cross-path fallback.
type UnmappableTermError struct {
	Term string
}

func (e *UnmappableTermError) Error() string {
	return fmt.Sprintf("query: no vocabulary mapping for term %q", e.Term)
}

// NoRelevantContextError means a path produced nothing usable: no vector
// hits above the similarity floor, or an empty graph result. Triggers the
// cross-path fallback.
type NoRelevantContextError struct {
	Question string
}

func (e *NoRelevantContextError) Error() string {
	return fmt.Sprintf("query: no relevant context for %q", e.Question)
}

// NoAnswerError is terminal: both paths were tried and neither produced an
// answer. The trace covers both attempts.
type NoAnswerError struct {
	Question string
	Trace    model.QueryTrace
}

func (e *NoAnswerError) Error() string {
	return fmt.Sprintf("query: no answer for %q after %d steps", e.Question, len(e.Trace))
}

// fallbackTrigger reports whether err is one of the two per-path failures
// that hand the question to the other path.
func fallbackTrigger(err error) bool {
	var unmappable *UnmappableTermError
	var noContext *NoRelevantContextError
	return errors.As(err, &unmappable) || errors.As(err, &noContext)
}
