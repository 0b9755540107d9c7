package strategy

import (
	"context"
	"fmt"

	"golang.org/x/time/rate"

	"github.com/docex-labs/stakeholder-cli/internal/model"
	"github.com/docex-labs/stakeholder-cli/pkg/githubmodels"
)

// JSONModeExecutor asks an OpenAI-compatible model for a JSON object via the
// endpoint's response_format mechanism, with the schema spelled out in the
// prompt. DeepSeek-V3 on GitHub Models has no function calling, so this is
// its strongest structured path.
type JSONModeExecutor struct {
	client  githubmodels.Client
	limiter *rate.Limiter
}

func NewJSONModeExecutor(client githubmodels.Client, limiter *rate.Limiter) *JSONModeExecutor {
	return &JSONModeExecutor{client: client, limiter: limiter}
}

func (e *JSONModeExecutor) Kind() model.StrategyKind { return model.StrategyJSONMode }

func (e *JSONModeExecutor) Execute(ctx context.Context, doc model.Document, profile model.ModelProfile) (*StructuredResponse, error) {
	if err := waitLimiter(ctx, e.limiter, profile.ID); err != nil {
		return nil, err
	}
	if e.client == nil {
		return nil, &ProviderError{Model: profile.ID, Err: fmt.Errorf("openai-compatible client not configured")}
	}

	resp, err := e.client.CreateChatCompletion(ctx, githubmodels.ChatRequest{
		Model:     profile.ID,
		System:    "You are an expert stakeholder analyst. Respond only with JSON matching the requested structure.",
		User:      jsonModePrompt(doc),
		MaxTokens: 4096,
		JSONMode:  true,
	})
	if err != nil {
		return nil, classifyTransport(err, profile.ID)
	}
	if resp.Content == "" {
		return nil, &SchemaInvalidError{Model: profile.ID, Reason: "empty completion"}
	}

	return parsePayload(CleanJSON(resp.Content), profile.ID)
}

func jsonModePrompt(doc model.Document) string {
	return fmt.Sprintf(`Extract every stakeholder from the document below.

Return a single JSON object with this exact structure:
%s

Rules:
- stakeholder_type must be one of INDIVIDUAL, ORGANIZATION, COMMITTEE, GOVERNMENT, UNKNOWN.
- confidence_score is between 0.0 and 1.0.
- Return an empty stakeholders array if the document names none.

Document:
%s`, schemaExample, documentPrompt(doc))
}
