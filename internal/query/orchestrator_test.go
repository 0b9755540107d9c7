package query

import (
	"context"
	"errors"
	"path/filepath"
	"strings"
	"testing"

	"github.com/philippgille/chromem-go"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/docex-labs/stakeholder-cli/internal/graph"
	"github.com/docex-labs/stakeholder-cli/internal/model"
	"github.com/docex-labs/stakeholder-cli/internal/vector"
)

type fakeGenerator struct {
	answer string
	err    error
	prompt string
}

func (f *fakeGenerator) GenerateAnswer(_ context.Context, _, prompt string) (string, error) {
	f.prompt = prompt
	if f.err != nil {
		return "", f.err
	}
	return f.answer, nil
}

// testEmbedder marks text containing any keyword with a shared dimension so
// matching documents score high and everything else scores low.
func testEmbedder(keywords ...string) chromem.EmbeddingFunc {
	return func(_ context.Context, text string) ([]float32, error) {
		text = strings.ToLower(text)
		vec := make([]float32, len(keywords)+1)
		vec[len(keywords)] = 0.1
		for i, kw := range keywords {
			if strings.Contains(text, kw) {
				vec[i] = 1
			}
		}
		return vec, nil
	}
}

func newTestIndex(t *testing.T, docs ...model.Document) *vector.Index {
	t.Helper()
	ix, err := vector.Open("", "documents", testEmbedder("budget", "martian"))
	require.NoError(t, err)
	if len(docs) > 0 {
		require.NoError(t, ix.IndexDocuments(context.Background(), docs))
	}
	return ix
}

func newTestOrchestrator(t *testing.T, gen Generator, docs ...model.Document) *Orchestrator {
	t.Helper()
	graphPath := NewGraphPath(newTestGraph(t), nil)
	semantic := NewSemanticPath(newTestIndex(t, docs...), gen, 5, 0.5)
	return NewOrchestrator(NewClassifier(), graphPath, semantic)
}

func TestAskPrecisePrimary(t *testing.T) {
	o := newTestOrchestrator(t, &fakeGenerator{answer: "unused"})

	answer, err := o.Ask(context.Background(), "Find stakeholders who are both government and regulators")
	require.NoError(t, err)
	assert.Equal(t, model.RoutePrecise, answer.Method)
	assert.Contains(t, answer.Text, "Transit Agency")
	assert.Equal(t, "classify", answer.Trace[0].Name)
}

func TestAskSemanticPrimary(t *testing.T) {
	gen := &fakeGenerator{answer: "The budget was rejected for lack of quorum."}
	o := newTestOrchestrator(t, gen, model.Document{
		ID: "doc-budget", Title: "Budget Minutes", Text: "The budget vote failed without quorum.",
	})

	answer, err := o.Ask(context.Background(), "Why was the budget rejected?")
	require.NoError(t, err)
	assert.Equal(t, model.RouteSemantic, answer.Method)
	assert.Contains(t, gen.prompt, "budget vote failed")
	require.NotEmpty(t, answer.Evidence)
	assert.Equal(t, "doc-budget", answer.Evidence[0].ID)
}

func TestAskUnmappableFallsBackToSemantic(t *testing.T) {
	gen := &fakeGenerator{answer: "The documents mention a martian research group."}
	o := newTestOrchestrator(t, gen, model.Document{
		ID: "doc-mars", Title: "Mars Notes", Text: "The martian research group met twice.",
	})

	answer, err := o.Ask(context.Background(), "How many stakeholders of type martian are there?")
	require.NoError(t, err)
	assert.Equal(t, model.RouteSemantic, answer.Method)

	names := traceNames(answer.Trace)
	assert.Contains(t, names, "parse_intent")
	assert.Contains(t, names, "fallback")
	assert.Contains(t, names, "vector_search")
}

func TestAskNoContextFallsBackToPrecise(t *testing.T) {
	// Empty index: the semantic primary finds nothing and the graph answers.
	o := newTestOrchestrator(t, &fakeGenerator{answer: "unused"})

	answer, err := o.Ask(context.Background(), "Explain who is listed")
	require.NoError(t, err)
	assert.Equal(t, model.RoutePrecise, answer.Method)

	names := traceNames(answer.Trace)
	assert.Contains(t, names, "vector_search")
	assert.Contains(t, names, "fallback")
	assert.Contains(t, names, "execute_query")
}

func newEmptyOrchestrator(t *testing.T) *Orchestrator {
	t.Helper()
	s, err := graph.NewSQLite(filepath.Join(t.TempDir(), "empty.db"))
	require.NoError(t, err)
	t.Cleanup(func() { s.Close() })
	require.NoError(t, s.Migrate(context.Background()))

	graphPath := NewGraphPath(s, nil)
	semantic := NewSemanticPath(newTestIndex(t), &fakeGenerator{}, 5, 0.5)
	return NewOrchestrator(NewClassifier(), graphPath, semantic)
}

func TestAskBothPathsFail(t *testing.T) {
	o := newEmptyOrchestrator(t)

	_, err := o.Ask(context.Background(), "Explain the directors")

	var noAnswer *NoAnswerError
	require.ErrorAs(t, err, &noAnswer)

	names := traceNames(noAnswer.Trace)
	assert.Contains(t, names, "vector_search")
	assert.Contains(t, names, "fallback")
	assert.Contains(t, names, "no_answer")
}

func TestAskGeneratorErrorSurfaces(t *testing.T) {
	genErr := errors.New("model unavailable")
	o := newTestOrchestrator(t, &fakeGenerator{err: genErr}, model.Document{
		ID: "doc-budget", Title: "Budget", Text: "budget details",
	})

	_, err := o.Ask(context.Background(), "Why was the budget rejected?")
	assert.ErrorIs(t, err, genErr)
}

func TestAskFallsBackAtMostOnce(t *testing.T) {
	o := newEmptyOrchestrator(t)

	_, err := o.Ask(context.Background(), "Explain the directors")

	var noAnswer *NoAnswerError
	require.ErrorAs(t, err, &noAnswer)

	fallbacks := 0
	for _, step := range noAnswer.Trace {
		if step.Name == "fallback" {
			fallbacks++
		}
	}
	assert.Equal(t, 1, fallbacks)
}

func traceNames(trace model.QueryTrace) []string {
	names := make([]string, 0, len(trace))
	for _, s := range trace {
		names = append(names, s.Name)
	}
	return names
}
