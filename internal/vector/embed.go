package vector

import (
	"fmt"

	"github.com/philippgille/chromem-go"
)

// EmbedderFor returns the embedding function for a provider name. Ollama
// keeps embeddings local; OpenAI-compatible endpoints are for deployments
// that already send documents off-machine.
func EmbedderFor(provider, embedModel, baseURL, apiKey string) (chromem.EmbeddingFunc, error) {
	switch provider {
	case "ollama":
		if embedModel == "" {
			embedModel = "nomic-embed-text"
		}
		return chromem.NewEmbeddingFuncOllama(embedModel, baseURL+"/api"), nil
	case "openai":
		return chromem.NewEmbeddingFuncOpenAI(apiKey, chromem.EmbeddingModelOpenAI3Small), nil
	default:
		return nil, fmt.Errorf("vector: unknown embedding provider %q", provider)
	}
}
