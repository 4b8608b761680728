package tools

import (
	"context"
	"encoding/json"
	"fmt"
	"strings"

	"github.com/comigor/jarvis-assistant/internal/assistant"
	"github.com/comigor/jarvis-assistant/internal/llm"
	"github.com/comigor/jarvis-assistant/internal/realtime"
	"github.com/comigor/jarvis-assistant/internal/sysstats"
)

// Backend is the part of the assistant the tools call into.
type Backend interface {
	Ask(ctx context.Context, prompt, persona string, hints llm.Hints) string
	Stats(ctx context.Context) (sysstats.Stats, error)
	Weather(ctx context.Context, lat, lon float64) (json.RawMessage, error)
	Search(ctx context.Context, query string) (realtime.SearchResult, error)
	Recall(ctx context.Context, path string) (assistant.RecallResult, error)
}

var _ Backend = (*assistant.Assistant)(nil)

// AssistantTools returns every tool backed by b. OS automation is not among them.
func AssistantTools(b Backend) []Tool {
	return []Tool{
		&AskTool{backend: b},
		&SystemStatsTool{backend: b},
		&WeatherTool{backend: b},
		&WebSearchTool{backend: b},
		&RecallTool{backend: b},
	}
}

// AskTool sends a prompt through the provider router.
type AskTool struct{ backend Backend }

func (t *AskTool) Name() string { return "ask" }

func (t *AskTool) Description() string {
	return "Ask the assistant's language model. The reply comes from the first provider that answers."
}

func (t *AskTool) Params() []Param {
	return []Param{
		{Name: "prompt", Type: "string", Description: "What to ask", Required: true},
		{Name: "persona", Type: "string", Description: "Optional persona modifier"},
		{Name: "realtime", Type: "boolean", Description: "Prefer cloud providers for up-to-date answers"},
	}
}

func (t *AskTool) Run(ctx context.Context, args string) (string, error) {
	var in struct {
		Prompt   string `json:"prompt"`
		Persona  string `json:"persona"`
		Realtime bool   `json:"realtime"`
	}
	if err := decodeArgs(args, &in); err != nil {
		return "", err
	}
	if strings.TrimSpace(in.Prompt) == "" {
		return "", fmt.Errorf("%w: prompt is required", ErrInvalidArgs)
	}
	return t.backend.Ask(ctx, in.Prompt, in.Persona, llm.Hints{NeedReasoning: true, NeedRealtime: in.Realtime}), nil
}

// SystemStatsTool reports host utilisation.
type SystemStatsTool struct{ backend Backend }

func (t *SystemStatsTool) Name() string        { return "system_stats" }
func (t *SystemStatsTool) Description() string { return "CPU, RAM and disk usage in percent plus network traffic in MB." }
func (t *SystemStatsTool) Params() []Param     { return nil }

func (t *SystemStatsTool) Run(ctx context.Context, _ string) (string, error) {
	s, err := t.backend.Stats(ctx)
	if err != nil {
		return "", err
	}
	return encodeResult(s)
}

// WeatherTool returns the current weather document for a coordinate.
type WeatherTool struct{ backend Backend }

func (t *WeatherTool) Name() string        { return "weather" }
func (t *WeatherTool) Description() string { return "Current weather at a latitude/longitude (open-meteo JSON)." }

func (t *WeatherTool) Params() []Param {
	return []Param{
		{Name: "lat", Type: "number", Description: "Latitude", Required: true},
		{Name: "lon", Type: "number", Description: "Longitude", Required: true},
	}
}

func (t *WeatherTool) Run(ctx context.Context, args string) (string, error) {
	var in struct {
		Lat *float64 `json:"lat"`
		Lon *float64 `json:"lon"`
	}
	if err := decodeArgs(args, &in); err != nil {
		return "", err
	}
	if in.Lat == nil || in.Lon == nil {
		return "", fmt.Errorf("%w: %v", ErrInvalidArgs, assistant.ErrMissingCoordinates)
	}
	raw, err := t.backend.Weather(ctx, *in.Lat, *in.Lon)
	if err != nil {
		return "", err
	}
	return string(raw), nil
}

// WebSearchTool runs an instant-answer search.
type WebSearchTool struct{ backend Backend }

func (t *WebSearchTool) Name() string        { return "web_search" }
func (t *WebSearchTool) Description() string { return "Instant-answer web search: heading, abstract, answer and related topics." }

func (t *WebSearchTool) Params() []Param {
	return []Param{{Name: "query", Type: "string", Description: "Search terms", Required: true}}
}

func (t *WebSearchTool) Run(ctx context.Context, args string) (string, error) {
	var in struct {
		Query string `json:"query"`
	}
	if err := decodeArgs(args, &in); err != nil {
		return "", err
	}
	res, err := t.backend.Search(ctx, in.Query)
	if err != nil {
		return "", err
	}
	return encodeResult(res)
}

// RecallTool reads the latest chat turns from a memory directory.
type RecallTool struct{ backend Backend }

func (t *RecallTool) Name() string        { return "recall" }
func (t *RecallTool) Description() string { return "Read the most recent conversation turns saved in a memory directory." }

func (t *RecallTool) Params() []Param {
	return []Param{{Name: "path", Type: "string", Description: "Memory directory", Required: true}}
}

func (t *RecallTool) Run(ctx context.Context, args string) (string, error) {
	var in struct {
		Path string `json:"path"`
	}
	if err := decodeArgs(args, &in); err != nil {
		return "", err
	}
	res, err := t.backend.Recall(ctx, in.Path)
	if err != nil {
		return "", err
	}
	return encodeResult(res)
}
