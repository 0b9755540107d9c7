package strategy

import (
	"context"
	"fmt"

	"golang.org/x/time/rate"

	"github.com/docex-labs/stakeholder-cli/internal/model"
	"github.com/docex-labs/stakeholder-cli/pkg/ollama"
)

// LocalStructuredExecutor runs a local Ollama model with format=json, which
// constrains decoding to valid JSON. Cost is zero and the document never
// leaves the machine.
type LocalStructuredExecutor struct {
	client  ollama.Client
	limiter *rate.Limiter
}

func NewLocalStructuredExecutor(client ollama.Client, limiter *rate.Limiter) *LocalStructuredExecutor {
	return &LocalStructuredExecutor{client: client, limiter: limiter}
}

func (e *LocalStructuredExecutor) Kind() model.StrategyKind { return model.StrategyLocalStructured }

func (e *LocalStructuredExecutor) Execute(ctx context.Context, doc model.Document, profile model.ModelProfile) (*StructuredResponse, error) {
	if err := waitLimiter(ctx, e.limiter, profile.ID); err != nil {
		return nil, err
	}
	if e.client == nil {
		return nil, &ProviderError{Model: profile.ID, Err: fmt.Errorf("ollama client not configured")}
	}

	out, err := e.client.Generate(ctx, ollama.GenerateRequest{
		Model:      profile.ID,
		Prompt:     jsonModePrompt(doc),
		MaxTokens:  4096,
		JSONFormat: true,
	})
	if err != nil {
		return nil, classifyTransport(err, profile.ID)
	}
	if out == "" {
		return nil, &SchemaInvalidError{Model: profile.ID, Reason: "empty completion"}
	}

	return parsePayload(CleanJSON(out), profile.ID)
}
