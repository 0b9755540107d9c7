package query

import (
	"context"
	"fmt"
	"strings"

	"github.com/docex-labs/stakeholder-cli/internal/model"
	"github.com/docex-labs/stakeholder-cli/internal/vector"
)

const (
	// DefaultTopK is how many documents the semantic path retrieves.
	DefaultTopK = 5
	// DefaultSimilarityFloor discards retrievals below this similarity.
	DefaultSimilarityFloor = 0.5
)

const answerSystemPrompt = `You are a knowledge assistant for a stakeholder analysis system.
Answer questions based ONLY on the provided context from extracted documents.

Guidelines:
- Be concise and accurate
- List stakeholders with their roles and organizations when relevant
- Use bullet points for multiple items
- If the context does not contain the answer, say so plainly`

// Generator produces an answer from a fully assembled prompt. The semantic
// path is provider-agnostic behind it; deployments wire a local or remote
// model.
type Generator interface {
	GenerateAnswer(ctx context.Context, system, prompt string) (string, error)
}

// SemanticPath answers by retrieving similar documents and asking a model
// to answer strictly from them.
type SemanticPath struct {
	index *vector.Index
	gen   Generator
	topK  int
	floor float64
}

// NewSemanticPath builds the path. Zero topK or floor fall back to
// defaults.
func NewSemanticPath(index *vector.Index, gen Generator, topK int, floor float64) *SemanticPath {
	if topK <= 0 {
		topK = DefaultTopK
	}
	if floor <= 0 {
		floor = DefaultSimilarityFloor
	}
	return &SemanticPath{index: index, gen: gen, topK: topK, floor: floor}
}

// Answer runs retrieval plus constrained generation. No hits above the
// similarity floor is a fallback-trigger error.
func (s *SemanticPath) Answer(ctx context.Context, question string, trace model.QueryTrace) (*model.Answer, model.QueryTrace, error) {
	hits, err := s.index.Search(ctx, question, s.topK, s.floor)
	if err != nil {
		return nil, trace, err
	}
	trace = trace.Step("vector_search", "retrieved similar documents", map[string]any{
		"top_k": s.topK,
		"floor": s.floor,
		"hits":  len(hits),
	})

	if len(hits) == 0 {
		return nil, trace, &NoRelevantContextError{Question: question}
	}

	var contextParts []string
	evidence := make([]model.Evidence, 0, len(hits))
	for _, h := range hits {
		contextParts = append(contextParts, h.Content)
		evidence = append(evidence, model.Evidence{
			ID:        h.DocumentID,
			Text:      model.Excerpt(h.Content),
			Relevance: h.Similarity,
		})
	}

	prompt := fmt.Sprintf(`Context from extracted documents:

%s

Question: %s

Answer based only on the context above.`, strings.Join(contextParts, "\n\n"), question)

	text, err := s.gen.GenerateAnswer(ctx, answerSystemPrompt, prompt)
	if err != nil {
		return nil, trace, err
	}
	trace = trace.Step("generate_answer", "answered from retrieved context", map[string]any{
		"context_documents": len(hits),
	})

	return &model.Answer{
		Text:     strings.TrimSpace(text),
		Method:   model.RouteSemantic,
		Evidence: evidence,
		Trace:    trace,
	}, trace, nil
}
