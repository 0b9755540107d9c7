package query

import (
	"context"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/docex-labs/stakeholder-cli/internal/graph"
	"github.com/docex-labs/stakeholder-cli/internal/model"
)

func newTestGraph(t *testing.T) graph.Store {
	t.Helper()
	s, err := graph.NewSQLite(filepath.Join(t.TempDir(), "graph.db"))
	require.NoError(t, err)
	t.Cleanup(func() { s.Close() })

	ctx := context.Background()
	require.NoError(t, s.Migrate(ctx))
	require.NoError(t, s.IngestRecords(ctx, []model.StakeholderRecord{
		{ID: "r1", DocumentID: "d1", Name: "Jane Smith", Type: model.StakeholderIndividual, Role: "Accessibility Advocate", Organization: "City Council", Confidence: 0.9},
		{ID: "r2", DocumentID: "d1", Name: "Bob Lee", Type: model.StakeholderIndividual, Role: "Program Coordinator", Confidence: 0.8},
		{ID: "r3", DocumentID: "d2", Name: "Transit Agency", Type: model.StakeholderGovernment, Role: "Regulator", Confidence: 0.85},
		{ID: "r4", DocumentID: "d2", Name: "Budget Committee", Type: model.StakeholderCommittee, Confidence: 0.7},
	}))
	return s
}

func TestGraphPathFindByType(t *testing.T) {
	path := NewGraphPath(newTestGraph(t), nil)

	answer, _, err := path.Answer(context.Background(), "List all government stakeholders", nil)
	require.NoError(t, err)

	assert.Equal(t, model.RoutePrecise, answer.Method)
	assert.Contains(t, answer.Text, "Transit Agency")
	assert.NotContains(t, answer.Text, "Jane Smith")
	require.Len(t, answer.Evidence, 1)
}

func TestGraphPathFindByRole(t *testing.T) {
	path := NewGraphPath(newTestGraph(t), nil)

	answer, _, err := path.Answer(context.Background(), "Show the advocates", nil)
	require.NoError(t, err)
	assert.Contains(t, answer.Text, "Jane Smith")
	assert.NotContains(t, answer.Text, "Bob Lee")
}

func TestGraphPathCount(t *testing.T) {
	path := NewGraphPath(newTestGraph(t), nil)

	answer, _, err := path.Answer(context.Background(), "How many stakeholders with role coordinator are there?", nil)
	require.NoError(t, err)
	assert.Contains(t, answer.Text, "1")
}

func TestGraphPathRoleLookup(t *testing.T) {
	path := NewGraphPath(newTestGraph(t), nil)

	answer, _, err := path.Answer(context.Background(), "What is the role of Jane Smith?", nil)
	require.NoError(t, err)
	assert.Contains(t, answer.Text, "Accessibility Advocate")
	assert.Contains(t, answer.Text, "City Council")
}

func TestGraphPathUnmappableType(t *testing.T) {
	path := NewGraphPath(newTestGraph(t), nil)

	_, trace, err := path.Answer(context.Background(), "List stakeholders of type martian", nil)
	var unmappable *UnmappableTermError
	require.ErrorAs(t, err, &unmappable)
	assert.Equal(t, "martian", unmappable.Term)
	assert.NotEmpty(t, trace)
}

func TestGraphPathEmptyResultTriggersFallback(t *testing.T) {
	path := NewGraphPath(newTestGraph(t), nil)

	_, trace, err := path.Answer(context.Background(), "Who are the directors?", nil)
	var noContext *NoRelevantContextError
	require.ErrorAs(t, err, &noContext)
	assert.True(t, fallbackTrigger(err))
	assert.NotEmpty(t, trace)
}

func TestGraphPathTraceCarriesQuery(t *testing.T) {
	path := NewGraphPath(newTestGraph(t), nil)

	answer, _, err := path.Answer(context.Background(), "List all committees", nil)
	require.NoError(t, err)

	var buildStep *model.QueryStep
	for i := range answer.Trace {
		if answer.Trace[i].Name == "build_query" {
			buildStep = &answer.Trace[i]
		}
	}
	require.NotNil(t, buildStep)
	assert.Contains(t, buildStep.Payload["query"], "SELECT")
}
