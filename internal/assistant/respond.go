package assistant

import (
	"context"
	"fmt"
	"strconv"
	"strings"

	"github.com/comigor/jarvis-assistant/internal/intent"
	"github.com/comigor/jarvis-assistant/internal/llm"
	"github.com/comigor/jarvis-assistant/internal/logger"
	"github.com/comigor/jarvis-assistant/internal/memory"
	"github.com/comigor/jarvis-assistant/internal/realtime"
)

const noSummary = "No summary available."

// Respond answers one desktop message routed by intent. Both turns go to the
// session buffer and matching messages are kept in long-term memory.
func (a *Assistant) Respond(ctx context.Context, text string) string {
	text = strings.TrimSpace(text)
	a.session.Add(memory.Turn{Timestamp: memory.Timestamp{Time: a.now().UTC()}, Role: memory.RoleUser, Text: text, Persona: a.persona})

	in := intent.Classify(text)
	logger.L.Debug("intent classified", "intent", in.Kind.String())

	var reply string
	switch in.Kind {
	case intent.PCControl:
		reply = a.controlReply(ctx, text)
	case intent.WebSearch:
		reply = a.searchReply(ctx, text)
	case intent.Realtime:
		reply = a.realtimeReply(ctx, text)
	case intent.Writing:
		reply = a.llm.Generate(ctx, text, llm.DefaultSystemPrompt, llm.Hints{})
	default:
		reply = a.llm.Generate(ctx, text, llm.DefaultSystemPrompt, llm.Hints{NeedReasoning: true})
	}

	a.session.Add(memory.Turn{Timestamp: memory.Timestamp{Time: a.now().UTC()}, Role: memory.RoleAssistant, Text: reply, Persona: a.persona})
	a.remember(ctx, text)
	return reply
}

func (a *Assistant) controlReply(ctx context.Context, text string) string {
	if a.control == nil {
		return "PC control is not available."
	}
	return a.control.Interpret(ctx, text)
}

func (a *Assistant) searchReply(ctx context.Context, text string) string {
	lowered := strings.ToLower(text)
	query := text
	switch {
	case strings.Contains(lowered, "search"):
		query = strings.TrimSpace(afterKeyword(text, lowered, "search"))
	case strings.HasPrefix(lowered, "find "):
		query = strings.TrimSpace(text[len("find "):])
	}
	if query == "" {
		return "What should I search for?"
	}

	res, err := a.live.Search(ctx, query)
	if err != nil {
		logger.L.Warn("desktop search failed", "error", err)
		return "I couldn't reach the search service right now."
	}
	return "Search: " + res.Summary(noSummary)
}

func (a *Assistant) realtimeReply(ctx context.Context, text string) string {
	lowered := strings.ToLower(text)
	switch {
	case strings.Contains(lowered, "weather"):
		var coords []float64
		for _, field := range strings.Fields(strings.ReplaceAll(lowered, "weather", " ")) {
			if v, err := strconv.ParseFloat(strings.Trim(field, ","), 64); err == nil {
				coords = append(coords, v)
			}
		}
		if len(coords) < 2 {
			return "Share your city or provide coordinates like: weather 28.6 77.2"
		}
		raw, err := a.live.Weather(ctx, coords[0], coords[1])
		if err != nil {
			logger.L.Warn("desktop weather failed", "error", err)
			return "I couldn't reach the weather service right now."
		}
		temp, wind := realtime.CurrentConditions(raw)
		return fmt.Sprintf("Weather: %s°C, wind %s km/h.", temp, wind)

	case strings.Contains(lowered, "news"):
		query := strings.TrimSpace(strings.ReplaceAll(lowered, "news", ""))
		if query == "" {
			query = "latest"
		}
		res, err := a.live.News(ctx, query)
		if err != nil {
			logger.L.Warn("desktop news failed", "error", err)
			return "I couldn't reach the news service right now."
		}
		return "News: " + res.Summary(noSummary)

	case strings.Contains(lowered, "price") || strings.Contains(lowered, "stock"):
		query := strings.NewReplacer("price", "", "stock", "").Replace(lowered)
		res, err := a.live.Search(ctx, strings.TrimSpace(query)+" price")
		if err != nil {
			logger.L.Warn("desktop price lookup failed", "error", err)
			return "I couldn't reach the search service right now."
		}
		return "Price: " + res.Summary(noSummary)
	}
	return "Tell me what real-time info you need (news, weather, price)."
}

// remember stores preferences, commands and style requests. Failures are logged only.
func (a *Assistant) remember(ctx context.Context, text string) {
	if a.longTerm == nil {
		return
	}
	lowered := strings.ToLower(text)

	var categories []string
	if strings.Contains(lowered, "i like") || strings.Contains(lowered, "my preference") {
		categories = append(categories, memory.CategoryPreference)
	}
	for _, prefix := range []string{"open ", "close ", "type ", "press ", "click "} {
		if strings.HasPrefix(lowered, prefix) {
			categories = append(categories, memory.CategoryCommand)
			break
		}
	}
	if strings.Contains(lowered, "write in") || strings.Contains(lowered, "writing style") {
		categories = append(categories, memory.CategoryStyle)
	}

	for _, c := range categories {
		if _, err := a.longTerm.Save(ctx, c, text); err != nil {
			logger.L.Warn("failed to store long-term memory", "category", c, "error", err)
		}
	}
}

// Remembered lists every long-term record, oldest first.
func (a *Assistant) Remembered(ctx context.Context) ([]memory.Record, error) {
	if a.longTerm == nil {
		return []memory.Record{}, nil
	}
	return a.longTerm.Fetch(ctx, memory.CategoryPreference, memory.CategoryCommand, memory.CategoryStyle)
}
