package llm

import (
	"context"
	"fmt"
	"net/http"
	"net/url"
	"strings"

	"github.com/comigor/jarvis-assistant/internal/config"
)

// Gemini calls the generateContent endpoint with an API key.
type Gemini struct {
	baseURL string
	model   string
	apiKey  string
	client  *http.Client
}

type geminiPart struct {
	Text string `json:"text"`
}

type geminiContent struct {
	Parts []geminiPart `json:"parts"`
}

type geminiRequest struct {
	Contents         []geminiContent `json:"contents"`
	GenerationConfig struct {
		Temperature float64 `json:"temperature"`
	} `json:"generationConfig"`
}

// NewGemini creates the Gemini provider
func NewGemini(cfg config.LLMConfig) *Gemini {
	return &Gemini{
		baseURL: strings.TrimSuffix(cfg.GeminiBaseURL, "/"),
		model:   cfg.GeminiModel,
		apiKey:  cfg.GeminiAPIKey,
		client:  &http.Client{Timeout: cfg.CallTimeout},
	}
}

func (g *Gemini) Name() string { return config.ProviderGemini }

func (g *Gemini) Ready() bool { return g.apiKey != "" }

func (g *Gemini) Generate(ctx context.Context, prompt, systemPrompt string) (string, error) {
	var req geminiRequest
	req.Contents = []geminiContent{{Parts: []geminiPart{{Text: inlinePrompt(prompt, systemPrompt)}}}}
	req.GenerationConfig.Temperature = 0.6

	endpoint := fmt.Sprintf("%s/models/%s:generateContent?key=%s", g.baseURL, g.model, url.QueryEscape(g.apiKey))
	doc, err := postJSON(ctx, g.client, endpoint, nil, req)
	if err != nil {
		return "", err
	}

	text := doc.Get("candidates.0.content.parts.0.text")
	if !text.Exists() {
		return "", fmt.Errorf("%w: no candidate text", ErrMalformedReply)
	}
	return text.String(), nil
}
