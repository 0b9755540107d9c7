package ollama

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/tmc/langchaingo/llms"
)

func applyOptions(req GenerateRequest) llms.CallOptions {
	var co llms.CallOptions
	for _, opt := range callOptions(req) {
		opt(&co)
	}
	return co
}

func TestCallOptionsFull(t *testing.T) {
	co := applyOptions(GenerateRequest{
		Model:       "llama3.1:8b-instruct-q8_0",
		Temperature: 0.2,
		MaxTokens:   512,
		JSONFormat:  true,
	})

	assert.Equal(t, "llama3.1:8b-instruct-q8_0", co.Model)
	assert.InDelta(t, 0.2, co.Temperature, 1e-9)
	assert.Equal(t, 512, co.MaxTokens)
	assert.True(t, co.JSONMode)
}

func TestCallOptionsDefaults(t *testing.T) {
	co := applyOptions(GenerateRequest{Prompt: "hello"})

	assert.Empty(t, co.Model)
	assert.Zero(t, co.MaxTokens)
	assert.False(t, co.JSONMode)
}
