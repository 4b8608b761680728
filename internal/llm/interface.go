package llm

import (
	"context"

	"github.com/sashabaranov/go-openai"
)

// Client is minimal subset of openai.Client used by the OpenRouter provider; it is easy to mock in tests.
type Client interface {
	CreateChatCompletion(ctx context.Context, req openai.ChatCompletionRequest) (openai.ChatCompletionResponse, error)
}

// Provider is one text-generation endpoint in a fallback chain.
type Provider interface {
	// Name is the key used in chains and in LLM_PROVIDER.
	Name() string
	// Ready reports whether the provider's required credential is present.
	// A provider that is not ready is never invoked.
	Ready() bool
	Generate(ctx context.Context, prompt, systemPrompt string) (string, error)
}
