package llm

import (
	"context"
	"fmt"
	"net/http"

	"github.com/comigor/jarvis-assistant/internal/config"
	"github.com/sashabaranov/go-openai"
)

// OpenRouter uses the OpenAI-compatible chat completions API.
type OpenRouter struct {
	client Client
	model  string
	apiKey string
}

// NewOpenRouter creates the OpenRouter provider. client may be nil, in which
// case one is built from cfg.
func NewOpenRouter(cfg config.LLMConfig, client Client) *OpenRouter {
	if client == nil {
		client = newOpenAIClient(cfg)
	}
	return &OpenRouter{client: client, model: cfg.OpenRouterModel, apiKey: cfg.OpenRouterAPIKey}
}

func newOpenAIClient(cfg config.LLMConfig) *openai.Client {
	oc := openai.DefaultConfig(cfg.OpenRouterAPIKey)
	oc.BaseURL = cfg.OpenRouterURL
	oc.HTTPClient = &http.Client{Timeout: cfg.CallTimeout}
	return openai.NewClientWithConfig(oc)
}

func (o *OpenRouter) Name() string { return config.ProviderOpenRouter }

func (o *OpenRouter) Ready() bool { return o.apiKey != "" }

func (o *OpenRouter) Generate(ctx context.Context, prompt, systemPrompt string) (string, error) {
	if systemPrompt == "" {
		systemPrompt = DefaultSystemPrompt
	}

	resp, err := o.client.CreateChatCompletion(ctx, openai.ChatCompletionRequest{
		Model: o.model,
		Messages: []openai.ChatCompletionMessage{
			{Role: openai.ChatMessageRoleSystem, Content: systemPrompt},
			{Role: openai.ChatMessageRoleUser, Content: prompt},
		},
	})
	if err != nil {
		return "", err
	}
	if len(resp.Choices) == 0 {
		return "", fmt.Errorf("%w: no choices", ErrMalformedReply)
	}
	return resp.Choices[0].Message.Content, nil
}
