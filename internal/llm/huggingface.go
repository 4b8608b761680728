package llm

import (
	"context"
	"net/http"
	"strings"

	"github.com/comigor/jarvis-assistant/internal/config"
)

// HuggingFace calls the hosted inference API for a text-generation model.
type HuggingFace struct {
	baseURL string
	model   string
	apiKey  string
	client  *http.Client
}

// NewHuggingFace creates the Hugging Face provider
func NewHuggingFace(cfg config.LLMConfig) *HuggingFace {
	return &HuggingFace{
		baseURL: strings.TrimSuffix(cfg.HFBaseURL, "/"),
		model:   cfg.HFModel,
		apiKey:  cfg.HFAPIKey,
		client:  &http.Client{Timeout: cfg.CallTimeout},
	}
}

func (h *HuggingFace) Name() string { return config.ProviderHuggingFace }

func (h *HuggingFace) Ready() bool { return h.apiKey != "" }

func (h *HuggingFace) Generate(ctx context.Context, prompt, systemPrompt string) (string, error) {
	headers := map[string]string{"Authorization": "Bearer " + h.apiKey}
	body := map[string]string{"inputs": inlinePrompt(prompt, systemPrompt)}

	doc, err := postJSON(ctx, h.client, h.baseURL+"/"+h.model, headers, body)
	if err != nil {
		return "", err
	}

	// The API answers with either a list of generations or a single object.
	if doc.IsArray() {
		return doc.Get("0.generated_text").String(), nil
	}
	return doc.Get("generated_text").String(), nil
}
