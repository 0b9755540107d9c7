package strategy

import (
	"context"
	"fmt"

	"golang.org/x/time/rate"

	"github.com/docex-labs/stakeholder-cli/internal/model"
	"github.com/docex-labs/stakeholder-cli/pkg/anthropic"
	"github.com/docex-labs/stakeholder-cli/pkg/githubmodels"
)

const nativeSystemPrompt = "You are an expert stakeholder analyst. Use the record_stakeholders tool to report every stakeholder in the document with high precision. Include a confidence score for each."

// NativeExecutor uses the provider's native schema mechanism: Anthropic tool
// use or OpenAI function calling, chosen by the profile's provider.
type NativeExecutor struct {
	anthropic anthropic.Client
	openai    githubmodels.Client
	limiter   *rate.Limiter
}

// NewNativeExecutor creates the native-schema executor. Either client may be
// nil when that provider is not configured; profiles routed to a missing
// client fail with a ProviderError.
func NewNativeExecutor(ac anthropic.Client, oc githubmodels.Client, limiter *rate.Limiter) *NativeExecutor {
	return &NativeExecutor{anthropic: ac, openai: oc, limiter: limiter}
}

func (e *NativeExecutor) Kind() model.StrategyKind { return model.StrategyNativeSchema }

func (e *NativeExecutor) Execute(ctx context.Context, doc model.Document, profile model.ModelProfile) (*StructuredResponse, error) {
	if err := waitLimiter(ctx, e.limiter, profile.ID); err != nil {
		return nil, err
	}

	switch profile.Provider {
	case model.ProviderAnthropic:
		return e.executeAnthropic(ctx, doc, profile)
	case model.ProviderOpenAI:
		return e.executeOpenAI(ctx, doc, profile)
	default:
		return nil, &ProviderError{Model: profile.ID, Err: fmt.Errorf("provider %s has no native schema mechanism", profile.Provider)}
	}
}

func (e *NativeExecutor) executeAnthropic(ctx context.Context, doc model.Document, profile model.ModelProfile) (*StructuredResponse, error) {
	if e.anthropic == nil {
		return nil, &ProviderError{Model: profile.ID, Err: fmt.Errorf("anthropic client not configured")}
	}

	resp, err := e.anthropic.CreateMessage(ctx, anthropic.MessageRequest{
		Model:     profile.ID,
		MaxTokens: 4096,
		System:    nativeSystemPrompt,
		Messages: []anthropic.Message{
			{Role: "user", Content: "Extract stakeholders from this document:\n\n" + documentPrompt(doc)},
		},
		Tool: &anthropic.ToolDefinition{
			Name:        ToolName,
			Description: ToolDescription,
			Properties:  SchemaProperties(),
			Required:    SchemaRequired(),
		},
	})
	if err != nil {
		return nil, classifyTransport(err, profile.ID)
	}

	input := resp.ToolUse()
	if input == nil {
		return nil, &SchemaInvalidError{Model: profile.ID, Reason: "no tool_use block in response"}
	}

	parsed, err := parsePayload(string(input), profile.ID)
	if err != nil {
		return nil, err
	}
	parsed.CostUSD = resp.Usage.EstimateCost(profile.ID)
	return parsed, nil
}

func (e *NativeExecutor) executeOpenAI(ctx context.Context, doc model.Document, profile model.ModelProfile) (*StructuredResponse, error) {
	if e.openai == nil {
		return nil, &ProviderError{Model: profile.ID, Err: fmt.Errorf("openai-compatible client not configured")}
	}

	resp, err := e.openai.CreateChatCompletion(ctx, githubmodels.ChatRequest{
		Model:     profile.ID,
		System:    nativeSystemPrompt,
		User:      "Extract stakeholders from this document:\n\n" + documentPrompt(doc),
		MaxTokens: 4096,
		Tool: &githubmodels.ToolDefinition{
			Name:        ToolName,
			Description: ToolDescription,
			Parameters: map[string]any{
				"type":       "object",
				"properties": SchemaProperties(),
				"required":   SchemaRequired(),
			},
		},
	})
	if err != nil {
		return nil, classifyTransport(err, profile.ID)
	}

	if resp.FunctionCall == nil {
		return nil, &SchemaInvalidError{Model: profile.ID, Reason: "model did not call the extraction function"}
	}

	return parsePayload(resp.FunctionCall.Arguments, profile.ID)
}

// waitLimiter blocks until the provider rate limiter admits the call.
func waitLimiter(ctx context.Context, l *rate.Limiter, modelID string) error {
	if l == nil {
		return nil
	}
	if err := l.Wait(ctx); err != nil {
		return classifyTransport(err, modelID)
	}
	return nil
}
