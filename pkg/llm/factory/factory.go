package factory

import (
	"fmt"

	"fellowship-chat-be/pkg/llm"
	"fellowship-chat-be/pkg/llm/ollama"
)

// NewLLMProvider builds the configured provider behind a circuit breaker.
func NewLLMProvider(providerType, modelName, baseURL string, temperature float64) (llm.LLMProvider, error) {
	var provider llm.LLMProvider
	switch providerType {
	case "ollama", "":
		if baseURL == "" {
			baseURL = "http://localhost:11434" // Default
		}
		provider = ollama.NewOllamaProvider(baseURL, modelName, temperature)
	default:
		return nil, fmt.Errorf("unsupported LLM provider: %s", providerType)
	}
	return llm.NewBreakerProvider(provider, llm.DefaultBreakerConfig()), nil
}
