package llm

import (
	"context"
	"net/http"
	"strings"

	"github.com/comigor/jarvis-assistant/internal/config"
)

// Ollama talks to a local on-device model through /api/generate.
type Ollama struct {
	host   string
	model  string
	client *http.Client
}

// NewOllama creates the local model provider
func NewOllama(cfg config.LLMConfig) *Ollama {
	return &Ollama{
		host:   strings.TrimSuffix(cfg.OllamaHost, "/"),
		model:  cfg.OllamaModel,
		client: &http.Client{Timeout: cfg.CallTimeout},
	}
}

func (o *Ollama) Name() string { return config.ProviderOllama }

// Ready is always true; the local endpoint needs no credential.
func (o *Ollama) Ready() bool { return true }

func (o *Ollama) Generate(ctx context.Context, prompt, systemPrompt string) (string, error) {
	body := map[string]any{
		"model":  o.model,
		"prompt": inlinePrompt(prompt, systemPrompt),
		"stream": false,
	}
	doc, err := postJSON(ctx, o.client, o.host+"/api/generate", nil, body)
	if err != nil {
		return "", err
	}
	return doc.Get("response").String(), nil
}
