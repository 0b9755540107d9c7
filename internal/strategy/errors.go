package strategy

import (
	"context"
	"errors"
	"fmt"
	"net"
	"strings"
)

// The three classified attempt errors. Every Execute failure is one of
// these; an unclassified error escaping an executor is a bug.

// SchemaInvalidError means the provider responded but the payload failed to
// parse or validate against the stakeholder schema.
type SchemaInvalidError struct {
	Model  string
	Reason string
	Err    error
}

func (e *SchemaInvalidError) Error() string {
	return fmt.Sprintf("strategy: schema-invalid response from %s: %s", e.Model, e.Reason)
}

func (e *SchemaInvalidError) Unwrap() error { return e.Err }

// ProviderError means the call itself failed: network, auth, rate limit.
type ProviderError struct {
	Model string
	Err   error
}

func (e *ProviderError) Error() string {
	return fmt.Sprintf("strategy: provider error from %s: %v", e.Model, e.Err)
}

func (e *ProviderError) Unwrap() error { return e.Err }

// TimeoutError means the attempt deadline elapsed before a usable response.
type TimeoutError struct {
	Model string
	Err   error
}

func (e *TimeoutError) Error() string {
	return fmt.Sprintf("strategy: timeout waiting on %s", e.Model)
}

func (e *TimeoutError) Unwrap() error { return e.Err }

// classifyTransport maps a raw provider/transport error onto the closed
// taxonomy. Context deadlines and net timeouts become TimeoutError;
// everything else is a ProviderError.
func classifyTransport(err error, modelID string) error {
	if err == nil {
		return nil
	}

	if errors.Is(err, context.DeadlineExceeded) {
		return &TimeoutError{Model: modelID, Err: err}
	}

	var netErr net.Error
	if errors.As(err, &netErr) && netErr.Timeout() {
		return &TimeoutError{Model: modelID, Err: err}
	}

	// SDKs wrap deadline errors in their own types; fall back to the
	// message for those.
	if strings.Contains(strings.ToLower(err.Error()), "deadline exceeded") {
		return &TimeoutError{Model: modelID, Err: err}
	}

	return &ProviderError{Model: modelID, Err: err}
}
