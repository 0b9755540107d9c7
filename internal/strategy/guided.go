package strategy

import (
	"context"
	"fmt"

	"golang.org/x/time/rate"

	"github.com/docex-labs/stakeholder-cli/internal/model"
	"github.com/docex-labs/stakeholder-cli/pkg/ollama"
)

// GuidedTextExecutor is the last rung of the chain: free-text generation with
// a heavily guided prompt, then a balanced-brace scan to pull the first JSON
// object out of whatever the model wrote around it.
type GuidedTextExecutor struct {
	client  ollama.Client
	limiter *rate.Limiter
}

func NewGuidedTextExecutor(client ollama.Client, limiter *rate.Limiter) *GuidedTextExecutor {
	return &GuidedTextExecutor{client: client, limiter: limiter}
}

func (e *GuidedTextExecutor) Kind() model.StrategyKind { return model.StrategyGuidedText }

func (e *GuidedTextExecutor) Execute(ctx context.Context, doc model.Document, profile model.ModelProfile) (*StructuredResponse, error) {
	if err := waitLimiter(ctx, e.limiter, profile.ID); err != nil {
		return nil, err
	}
	if e.client == nil {
		return nil, &ProviderError{Model: profile.ID, Err: fmt.Errorf("ollama client not configured")}
	}

	out, err := e.client.Generate(ctx, ollama.GenerateRequest{
		Model:     profile.ID,
		Prompt:    guidedPrompt(doc),
		MaxTokens: 4096,
	})
	if err != nil {
		return nil, classifyTransport(err, profile.ID)
	}

	obj := FirstJSONObject(out)
	if obj == "" {
		return nil, &SchemaInvalidError{Model: profile.ID, Reason: "no JSON object found in completion"}
	}

	resp, perr := parsePayload(obj, profile.ID)
	if perr != nil {
		return nil, perr
	}
	resp.RawText = out
	return resp, nil
}

func guidedPrompt(doc model.Document) string {
	return fmt.Sprintf(`Read the document and list every stakeholder it mentions.

Write your answer as a JSON object and nothing else. No explanation before or
after it. The object must look exactly like this:
%s

stakeholder_type must be one of INDIVIDUAL, ORGANIZATION, COMMITTEE,
GOVERNMENT, UNKNOWN. confidence_score is between 0.0 and 1.0.

Document:
%s

JSON answer:`, schemaExample, documentPrompt(doc))
}
