// Package ollama wraps langchaingo's Ollama backend for local model
// generation. Local models are the privacy and cost floor of the fallback
// chain; nothing leaves the machine.
package ollama

import (
	"context"

	"github.com/rotisserie/eris"
	"github.com/tmc/langchaingo/llms"
	lcollama "github.com/tmc/langchaingo/llms/ollama"
)

// DefaultServerURL is the standard local Ollama endpoint.
const DefaultServerURL = "http://localhost:11434"

// Client defines the local generation operations used by the strategies and
// the semantic answerer.
type Client interface {
	Generate(ctx context.Context, req GenerateRequest) (string, error)
}

// GenerateRequest is a single-prompt generation call.
type GenerateRequest struct {
	Model       string
	Prompt      string
	Temperature float64
	MaxTokens   int
	JSONFormat  bool
}

type lcClient struct {
	llm *lcollama.LLM
}

// NewClient creates a client for a local Ollama server. defaultModel is used
// when a request does not name one.
func NewClient(serverURL, defaultModel string) (Client, error) {
	if serverURL == "" {
		serverURL = DefaultServerURL
	}
	llm, err := lcollama.New(
		lcollama.WithServerURL(serverURL),
		lcollama.WithModel(defaultModel),
	)
	if err != nil {
		return nil, eris.Wrap(err, "ollama: create client")
	}
	return &lcClient{llm: llm}, nil
}

func (c *lcClient) Generate(ctx context.Context, req GenerateRequest) (string, error) {
	out, err := llms.GenerateFromSinglePrompt(ctx, c.llm, req.Prompt, callOptions(req)...)
	if err != nil {
		return "", eris.Wrap(err, "ollama: generate")
	}
	return out, nil
}

// callOptions translates a request into langchaingo call options.
func callOptions(req GenerateRequest) []llms.CallOption {
	opts := []llms.CallOption{
		llms.WithTemperature(req.Temperature),
	}
	if req.Model != "" {
		opts = append(opts, llms.WithModel(req.Model))
	}
	if req.MaxTokens > 0 {
		opts = append(opts, llms.WithMaxTokens(req.MaxTokens))
	}
	if req.JSONFormat {
		opts = append(opts, llms.WithJSONMode())
	}
	return opts
}
