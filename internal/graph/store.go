// Package graph persists extracted stakeholder records and executes the
// read-only queries the precise answer path generates against them.
package graph

import (
	"context"
	"fmt"
	"strings"

	"github.com/docex-labs/stakeholder-cli/internal/model"
)

// QuerySyntaxError means the generated query text was rejected before or
// during parsing.
type QuerySyntaxError struct {
	Query string
	Err   error
}

func (e *QuerySyntaxError) Error() string {
	return fmt.Sprintf("graph: query syntax error: %v", e.Err)
}

func (e *QuerySyntaxError) Unwrap() error { return e.Err }

// ExecutionError means a well-formed query failed at run time.
type ExecutionError struct {
	Query string
	Err   error
}

func (e *ExecutionError) Error() string {
	return fmt.Sprintf("graph: query execution failed: %v", e.Err)
}

func (e *ExecutionError) Unwrap() error { return e.Err }

// ResultSet is a generic tabular query result.
type ResultSet struct {
	Columns []string
	Rows    [][]any
}

// Empty reports whether the query matched nothing.
func (r *ResultSet) Empty() bool { return r == nil || len(r.Rows) == 0 }

// Store is the stakeholder graph backend. ExecuteQuery only accepts SELECT
// statements; the query builder never generates anything else and the store
// enforces it.
type Store interface {
	IngestRecords(ctx context.Context, records []model.StakeholderRecord) error
	ExecuteQuery(ctx context.Context, query string, args ...any) (*ResultSet, error)
	Migrate(ctx context.Context) error
	Close() error
}

// checkReadOnly rejects any statement that is not a plain SELECT.
func checkReadOnly(query string) error {
	trimmed := strings.TrimSpace(query)
	if !strings.HasPrefix(strings.ToUpper(trimmed), "SELECT") {
		return &QuerySyntaxError{Query: query, Err: fmt.Errorf("only SELECT statements are allowed")}
	}
	return nil
}

// classifyQueryError sorts a backend error into the syntax/execution split.
func classifyQueryError(query string, err error) error {
	if strings.Contains(strings.ToLower(err.Error()), "syntax") {
		return &QuerySyntaxError{Query: query, Err: err}
	}
	return &ExecutionError{Query: query, Err: err}
}
