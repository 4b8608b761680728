package assistant

import (
	"context"
	"fmt"
	"strings"

	"github.com/comigor/jarvis-assistant/internal/llm"
	"github.com/comigor/jarvis-assistant/internal/logger"
	"github.com/comigor/jarvis-assistant/internal/memory"
	"github.com/comigor/jarvis-assistant/internal/realtime"
)

// ChatRequest is the served chat body.
type ChatRequest struct {
	Message    string   `json:"message"`
	Persona    string   `json:"persona"`
	Lat        *float64 `json:"lat"`
	Lon        *float64 `json:"lon"`
	MemoryPath string   `json:"memory_path"`
}

// ChatResponse carries the reply and whatever data produced it.
type ChatResponse struct {
	Reply string         `json:"reply"`
	Data  map[string]any `json:"data"`
}

// RecallResult is the normalized memory directory and its latest turns.
type RecallResult struct {
	Path    string        `json:"path"`
	Entries []memory.Turn `json:"entries"`
}

// Chat answers one served message. Keywords are checked in order: stats or
// status, weather, search; anything else goes to the router with the persona
// prompt. With a memory path both turns are appended under one timestamp.
func (a *Assistant) Chat(ctx context.Context, req ChatRequest) (ChatResponse, error) {
	message := strings.TrimSpace(req.Message)
	if message == "" {
		return ChatResponse{}, ErrMissingMessage
	}
	persona := strings.TrimSpace(req.Persona)
	lowered := strings.ToLower(message)

	var journal *memory.Journal
	if path := strings.TrimSpace(req.MemoryPath); path != "" {
		j, err := memory.OpenJournal(path)
		if err != nil {
			return ChatResponse{}, err
		}
		journal = j
	}

	resp, err := a.route(ctx, message, lowered, persona, req)
	if err != nil {
		return ChatResponse{}, err
	}
	resp.Data["persona"] = persona

	if journal != nil {
		turns := memory.Exchange(a.now().UTC(), persona, message, resp.Reply)
		if err := journal.Append(ctx, turns...); err != nil {
			logger.L.Warn("failed to append chat memory", "path", journal.Dir(), "error", err)
		}
	}
	return resp, nil
}

func (a *Assistant) route(ctx context.Context, message, lowered, persona string, req ChatRequest) (ChatResponse, error) {
	switch {
	case strings.Contains(lowered, "stats") || strings.Contains(lowered, "status"):
		s, err := a.stats.Snapshot(ctx)
		if err != nil {
			return ChatResponse{}, fmt.Errorf("system stats: %w", err)
		}
		reply := fmt.Sprintf("Here are the latest system stats. CPU %.1f%%, RAM %.1f%%, Disk %.1f%%.", s.CPU, s.RAM, s.Disk)
		return ChatResponse{Reply: reply, Data: map[string]any{"stats": s}}, nil

	case strings.Contains(lowered, "weather"):
		if req.Lat == nil || req.Lon == nil {
			return ChatResponse{}, ErrMissingCoordinates
		}
		raw, err := a.live.Weather(ctx, *req.Lat, *req.Lon)
		if err != nil {
			return ChatResponse{}, err
		}
		temp, wind := realtime.CurrentConditions(raw)
		reply := fmt.Sprintf("Here's the current weather. Temperature %s°C, Wind %s km/h.", temp, wind)
		return ChatResponse{Reply: reply, Data: map[string]any{"weather": raw}}, nil

	case strings.Contains(lowered, "search"):
		query := strings.Trim(afterKeyword(message, lowered, "search"), " :")
		if query == "" {
			query = message
		}
		res, err := a.live.Search(ctx, query)
		if err != nil {
			return ChatResponse{}, err
		}
		reply := fmt.Sprintf("Search results for '%s': %s", query, res.Summary("I found some results."))
		return ChatResponse{Reply: reply, Data: map[string]any{"search": res}}, nil
	}

	reply := a.llm.Generate(ctx, message, llm.BuildSystemPrompt(persona), llm.Hints{NeedReasoning: true})
	return ChatResponse{Reply: reply, Data: map[string]any{}}, nil
}

// Recall returns the normalized directory and its latest turns.
func (a *Assistant) Recall(ctx context.Context, path string) (RecallResult, error) {
	j, err := memory.OpenJournal(path)
	if err != nil {
		return RecallResult{}, err
	}
	turns, err := j.Recent(ctx, a.readLimit)
	if err != nil {
		return RecallResult{}, err
	}
	return RecallResult{Path: j.Dir(), Entries: turns}, nil
}

// afterKeyword returns the text of message following the first
// case-insensitive occurrence of keyword, or "" when absent.
func afterKeyword(message, lowered, keyword string) string {
	i := strings.Index(lowered, keyword)
	if i < 0 {
		return ""
	}
	if len(lowered) != len(message) {
		return lowered[i+len(keyword):]
	}
	return message[i+len(keyword):]
}
