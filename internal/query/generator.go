package query

import (
	"context"

	"github.com/docex-labs/stakeholder-cli/internal/resilience"
	"github.com/docex-labs/stakeholder-cli/pkg/githubmodels"
	"github.com/docex-labs/stakeholder-cli/pkg/ollama"
)

// OllamaGenerator answers from a local model.
type OllamaGenerator struct {
	client ollama.Client
	model  string
	retry  resilience.RetryConfig
}

func NewOllamaGenerator(client ollama.Client, model string) *OllamaGenerator {
	cfg := resilience.DefaultRetryConfig()
	cfg.OnRetry = resilience.RetryLogger("ollama", "generate_answer")
	return &OllamaGenerator{client: client, model: model, retry: cfg}
}

func (g *OllamaGenerator) GenerateAnswer(ctx context.Context, system, prompt string) (string, error) {
	return resilience.DoVal(ctx, g.retry, func(ctx context.Context) (string, error) {
		return g.client.Generate(ctx, ollama.GenerateRequest{
			Model:       g.model,
			Prompt:      system + "\n\n" + prompt,
			Temperature: 0.1,
			MaxTokens:   1024,
		})
	})
}

// ChatGenerator answers from an OpenAI-compatible endpoint.
type ChatGenerator struct {
	client githubmodels.Client
	model  string
	retry  resilience.RetryConfig
}

func NewChatGenerator(client githubmodels.Client, model string) *ChatGenerator {
	cfg := resilience.DefaultRetryConfig()
	cfg.OnRetry = resilience.RetryLogger("openai", "generate_answer")
	return &ChatGenerator{client: client, model: model, retry: cfg}
}

func (g *ChatGenerator) GenerateAnswer(ctx context.Context, system, prompt string) (string, error) {
	return resilience.DoVal(ctx, g.retry, func(ctx context.Context) (string, error) {
		resp, err := g.client.CreateChatCompletion(ctx, githubmodels.ChatRequest{
			Model:       g.model,
			System:      system,
			User:        prompt,
			Temperature: 0.1,
			MaxTokens:   1024,
		})
		if err != nil {
			return "", err
		}
		return resp.Content, nil
	})
}
