package model

import (
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestExcerpt(t *testing.T) {
	short := "a short raw response"
	assert.Equal(t, short, Excerpt(short))

	long := strings.Repeat("x", excerptLimit+100)
	got := Excerpt(long)
	assert.Len(t, got, excerptLimit)
}

func TestTraceFailed(t *testing.T) {
	trace := ExtractionTrace{
		{Model: "a", Outcome: OutcomeSchemaInvalid},
		{Model: "b", Outcome: OutcomeTimeout},
		{Model: "c", Outcome: OutcomeSuccess},
	}
	assert.Equal(t, 2, trace.Failed())
	assert.Equal(t, 0, ExtractionTrace{}.Failed())
}

func TestAggregateQuality(t *testing.T) {
	records := []StakeholderRecord{
		{Name: "a", Confidence: 0.8},
		{Name: "b", Confidence: 0.6},
	}
	assert.InDelta(t, 0.7, AggregateQuality(records), 1e-9)
	assert.Equal(t, 0.0, AggregateQuality(nil))
}

func TestJobStateTerminal(t *testing.T) {
	assert.False(t, JobQueued.Terminal())
	assert.False(t, JobRunning.Terminal())
	assert.True(t, JobComplete.Terminal())
	assert.True(t, JobError.Terminal())
	assert.True(t, JobCancelled.Terminal())
}

func TestValidPreference(t *testing.T) {
	assert.True(t, ValidPreference(PreferCost))
	assert.True(t, ValidPreference(PreferPrivacy))
	assert.False(t, ValidPreference("cheapest"))
}

func TestQueryTraceStep(t *testing.T) {
	var trace QueryTrace
	trace = trace.Step("classify", "routed to precise", map[string]any{"confidence": 0.95})
	trace = trace.Step("execute_query", "2 rows", nil)

	assert.Len(t, trace, 2)
	assert.Equal(t, "classify", trace[0].Name)
	assert.Equal(t, 0.95, trace[0].Payload["confidence"])
	assert.Nil(t, trace[1].Payload)
}
