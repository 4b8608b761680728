package tools

import (
	"context"
	"encoding/json"
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/comigor/jarvis-assistant/internal/assistant"
	"github.com/comigor/jarvis-assistant/internal/llm"
	"github.com/comigor/jarvis-assistant/internal/memory"
	"github.com/comigor/jarvis-assistant/internal/realtime"
	"github.com/comigor/jarvis-assistant/internal/sysstats"
)

type mockBackend struct {
	askHints llm.Hints
	askArgs  [2]string
}

func (m *mockBackend) Ask(_ context.Context, prompt, persona string, hints llm.Hints) string {
	m.askArgs = [2]string{prompt, persona}
	m.askHints = hints
	return "answer to " + prompt
}

func (m *mockBackend) Stats(context.Context) (sysstats.Stats, error) {
	return sysstats.Stats{CPU: 1.5, RAM: 2, Disk: 3}, nil
}

func (m *mockBackend) Weather(_ context.Context, lat, lon float64) (json.RawMessage, error) {
	return json.RawMessage(`{"latitude":1,"current_weather":{}}`), nil
}

func (m *mockBackend) Search(_ context.Context, q string) (realtime.SearchResult, error) {
	if q == "" {
		return realtime.SearchResult{}, realtime.ErrEmptyQuery
	}
	return realtime.SearchResult{Heading: q, Related: []string{}}, nil
}

func (m *mockBackend) Recall(_ context.Context, path string) (assistant.RecallResult, error) {
	return assistant.RecallResult{Path: path, Entries: []memory.Turn{}}, nil
}

func TestManager(t *testing.T) {
	m := NewToolManager(AssistantTools(&mockBackend{})...)

	var names []string
	for _, tool := range m.List() {
		names = append(names, tool.Name())
	}
	require.Equal(t, []string{"ask", "recall", "system_stats", "weather", "web_search"}, names)

	_, err := m.GetTool("home_assistant")
	require.ErrorContains(t, err, "tool not found")
}

func TestAskTool(t *testing.T) {
	b := &mockBackend{}
	tool := &AskTool{backend: b}

	out, err := tool.Run(context.Background(), `{"prompt":"hi","persona":"bard","realtime":true}`)
	require.NoError(t, err)
	require.Equal(t, "answer to hi", out)
	require.Equal(t, [2]string{"hi", "bard"}, b.askArgs)
	require.Equal(t, llm.Hints{NeedReasoning: true, NeedRealtime: true}, b.askHints)

	_, err = tool.Run(context.Background(), `{}`)
	require.ErrorIs(t, err, ErrInvalidArgs)
	_, err = tool.Run(context.Background(), `not json`)
	require.ErrorIs(t, err, ErrInvalidArgs)
}

func TestDataTools(t *testing.T) {
	ctx := context.Background()
	b := &mockBackend{}

	out, err := (&SystemStatsTool{backend: b}).Run(ctx, "")
	require.NoError(t, err)
	require.JSONEq(t, `{"cpu":1.5,"ram":2,"disk":3,"net_sent_mb":0,"net_recv_mb":0}`, out)

	out, err = (&WeatherTool{backend: b}).Run(ctx, `{"lat":1,"lon":2}`)
	require.NoError(t, err)
	require.JSONEq(t, `{"latitude":1,"current_weather":{}}`, out)

	_, err = (&WeatherTool{backend: b}).Run(ctx, `{"lat":1}`)
	require.ErrorIs(t, err, ErrInvalidArgs)

	out, err = (&WebSearchTool{backend: b}).Run(ctx, `{"query":"go"}`)
	require.NoError(t, err)
	require.JSONEq(t, `{"heading":"go","abstract":"","related":[]}`, out)

	_, err = (&WebSearchTool{backend: b}).Run(ctx, `{"query":""}`)
	require.ErrorIs(t, err, realtime.ErrEmptyQuery)

	out, err = (&RecallTool{backend: b}).Run(ctx, `{"path":"/tmp/m"}`)
	require.NoError(t, err)
	require.JSONEq(t, `{"path":"/tmp/m","entries":[]}`, out)
}
