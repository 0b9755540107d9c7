// Package githubmodels wraps the openai-go SDK for OpenAI-compatible chat
// endpoints (GitHub Models serves gpt-4o and DeepSeek-V3 behind one URL).
package githubmodels

import (
	"context"

	"github.com/openai/openai-go"
	"github.com/openai/openai-go/option"
	"github.com/openai/openai-go/shared"
	"github.com/rotisserie/eris"
)

// DefaultBaseURL is the GitHub Models inference endpoint.
const DefaultBaseURL = "https://models.inference.ai.azure.com"

// Client defines the chat operations used by the extraction strategies and
// the semantic answerer.
type Client interface {
	CreateChatCompletion(ctx context.Context, req ChatRequest) (*ChatResponse, error)
}

// ToolDefinition describes a function the model is asked to call.
type ToolDefinition struct {
	Name        string
	Description string
	Parameters  map[string]any
}

// ChatRequest is our own request type for CreateChatCompletion.
type ChatRequest struct {
	Model       string
	System      string
	User        string
	Temperature float64
	MaxTokens   int64
	JSONMode    bool
	Tool        *ToolDefinition
}

// FunctionCall is a tool invocation returned by the model.
type FunctionCall struct {
	Name      string
	Arguments string
}

// Usage tracks token consumption.
type Usage struct {
	PromptTokens     int64
	CompletionTokens int64
	TotalTokens      int64
}

// ChatResponse is our own response type.
type ChatResponse struct {
	Content      string
	FunctionCall *FunctionCall
	Usage        Usage
}

// sdkClient implements Client using openai-go.
type sdkClient struct {
	client *openai.Client
}

// NewClient creates a client for an OpenAI-compatible endpoint. An empty
// baseURL targets GitHub Models.
func NewClient(apiKey, baseURL string) Client {
	if baseURL == "" {
		baseURL = DefaultBaseURL
	}
	return &sdkClient{
		client: openai.NewClient(
			option.WithAPIKey(apiKey),
			option.WithBaseURL(baseURL),
		),
	}
}

func (c *sdkClient) CreateChatCompletion(ctx context.Context, req ChatRequest) (*ChatResponse, error) {
	messages := []openai.ChatCompletionMessageParamUnion{}
	if req.System != "" {
		messages = append(messages, openai.SystemMessage(req.System))
	}
	messages = append(messages, openai.UserMessage(req.User))

	params := openai.ChatCompletionNewParams{
		Model:    openai.F(req.Model),
		Messages: openai.F(messages),
	}
	if req.Temperature > 0 {
		params.Temperature = openai.F(req.Temperature)
	}
	if req.MaxTokens > 0 {
		params.MaxTokens = openai.F(req.MaxTokens)
	}
	if req.JSONMode {
		params.ResponseFormat = openai.F[openai.ChatCompletionNewParamsResponseFormatUnion](
			shared.ResponseFormatJSONObjectParam{
				Type: openai.F(shared.ResponseFormatJSONObjectTypeJSONObject),
			},
		)
	}
	if req.Tool != nil {
		params.Tools = openai.F([]openai.ChatCompletionToolParam{{
			Type: openai.F(openai.ChatCompletionToolTypeFunction),
			Function: openai.F(openai.FunctionDefinitionParam{
				Name:        openai.String(req.Tool.Name),
				Description: openai.String(req.Tool.Description),
				Parameters:  openai.F(openai.FunctionParameters(req.Tool.Parameters)),
			}),
		}})
	}

	resp, err := c.client.Chat.Completions.New(ctx, params)
	if err != nil {
		return nil, eris.Wrap(err, "githubmodels: chat completion")
	}

	out := &ChatResponse{
		Usage: Usage{
			PromptTokens:     resp.Usage.PromptTokens,
			CompletionTokens: resp.Usage.CompletionTokens,
			TotalTokens:      resp.Usage.TotalTokens,
		},
	}

	if len(resp.Choices) > 0 {
		choice := resp.Choices[0]
		if len(choice.Message.ToolCalls) > 0 {
			tc := choice.Message.ToolCalls[0]
			out.FunctionCall = &FunctionCall{
				Name:      tc.Function.Name,
				Arguments: tc.Function.Arguments,
			}
		} else {
			out.Content = choice.Message.Content
		}
	}

	return out, nil
}
