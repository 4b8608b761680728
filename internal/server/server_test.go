package server

import (
	"context"
	"encoding/base64"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/http/httptest"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/comigor/jarvis-assistant/internal/assistant"
	"github.com/comigor/jarvis-assistant/internal/automation"
	"github.com/comigor/jarvis-assistant/internal/config"
	"github.com/comigor/jarvis-assistant/internal/memory"
	"github.com/comigor/jarvis-assistant/internal/metrics"
	"github.com/comigor/jarvis-assistant/internal/realtime"
	"github.com/comigor/jarvis-assistant/internal/speech"
	"github.com/comigor/jarvis-assistant/internal/sysstats"
)

type mockAssistant struct {
	ChatFunc    func(req assistant.ChatRequest) (assistant.ChatResponse, error)
	StatsFunc   func() (sysstats.Stats, error)
	WeatherFunc func(lat, lon float64) (json.RawMessage, error)
}

func (m *mockAssistant) Chat(_ context.Context, req assistant.ChatRequest) (assistant.ChatResponse, error) {
	if m.ChatFunc != nil {
		return m.ChatFunc(req)
	}
	if strings.TrimSpace(req.Message) == "" {
		return assistant.ChatResponse{}, assistant.ErrMissingMessage
	}
	return assistant.ChatResponse{Reply: "echo: " + req.Message, Data: map[string]any{"persona": req.Persona}}, nil
}

func (m *mockAssistant) Recall(_ context.Context, path string) (assistant.RecallResult, error) {
	return assistant.RecallResult{Path: path, Entries: []memory.Turn{}}, nil
}

func (m *mockAssistant) Stats(context.Context) (sysstats.Stats, error) {
	if m.StatsFunc != nil {
		return m.StatsFunc()
	}
	return sysstats.Stats{CPU: 10, RAM: 20, Disk: 30, NetSentMB: 1.25, NetRecvMB: 2.5}, nil
}

func (m *mockAssistant) Weather(_ context.Context, lat, lon float64) (json.RawMessage, error) {
	if m.WeatherFunc != nil {
		return m.WeatherFunc(lat, lon)
	}
	return json.RawMessage(`{"current_weather":{"temperature":20}}`), nil
}

func (m *mockAssistant) Search(_ context.Context, q string) (realtime.SearchResult, error) {
	if strings.TrimSpace(q) == "" {
		return realtime.SearchResult{}, realtime.ErrEmptyQuery
	}
	return realtime.SearchResult{Heading: q, Related: []string{}}, nil
}

type mockExecutor struct {
	commands []automation.Command
	err      error
}

func (m *mockExecutor) Execute(_ context.Context, cmd automation.Command) (map[string]any, error) {
	m.commands = append(m.commands, cmd)
	if m.err != nil {
		return nil, m.err
	}
	return map[string]any{"status": "typed", "text": cmd.Text}, nil
}

type mockSpeech struct {
	audio    []byte
	filename string
	err      error
}

func (m *mockSpeech) Transcribe(_ context.Context, audio []byte, filename string) (string, error) {
	m.audio, m.filename = audio, filename
	return "hello jarvis", m.err
}

func (m *mockSpeech) Synthesize(_ context.Context, text string) ([]byte, error) {
	if m.err != nil {
		return nil, m.err
	}
	return []byte("WAV:" + text), nil
}

type fixture struct {
	srv     *httptest.Server
	asst    *mockAssistant
	exec    *mockExecutor
	speech  *mockSpeech
	metrics *metrics.Metrics
}

func newFixture(t *testing.T, mutate func(*config.Config)) *fixture {
	t.Helper()
	cfg := config.Config{Server: config.ServerConfig{ActionRatePerMinute: 600}}
	if mutate != nil {
		mutate(&cfg)
	}
	f := &fixture{asst: &mockAssistant{}, exec: &mockExecutor{}, speech: &mockSpeech{}, metrics: metrics.New()}
	s := New(cfg, Deps{Assistant: f.asst, Control: f.exec, Speech: f.speech, Metrics: f.metrics})
	f.srv = httptest.NewServer(s.Handler())
	t.Cleanup(f.srv.Close)
	return f
}

func (f *fixture) do(t *testing.T, method, path, body string) (*http.Response, map[string]any) {
	t.Helper()
	req, err := http.NewRequest(method, f.srv.URL+path, strings.NewReader(body))
	require.NoError(t, err)
	resp, err := http.DefaultClient.Do(req)
	require.NoError(t, err)
	defer resp.Body.Close()

	raw, err := io.ReadAll(resp.Body)
	require.NoError(t, err)
	var out map[string]any
	if strings.HasPrefix(resp.Header.Get("Content-Type"), "application/json") {
		require.NoError(t, json.Unmarshal(raw, &out), string(raw))
	}
	return resp, out
}

func TestHealth(t *testing.T) {
	f := newFixture(t, nil)

	resp, body := f.do(t, http.MethodGet, "/api/health", "")
	require.Equal(t, http.StatusOK, resp.StatusCode)
	require.Equal(t, map[string]any{"status": "ok"}, body)
	require.NotEmpty(t, resp.Header.Get("X-Request-ID"))
}

func TestRequestIDIsPropagated(t *testing.T) {
	f := newFixture(t, nil)
	req, err := http.NewRequest(http.MethodGet, f.srv.URL+"/api/health", nil)
	require.NoError(t, err)
	req.Header.Set("X-Request-ID", "abc-123")

	resp, err := http.DefaultClient.Do(req)
	require.NoError(t, err)
	resp.Body.Close()
	require.Equal(t, "abc-123", resp.Header.Get("X-Request-ID"))
}

func TestStats(t *testing.T) {
	f := newFixture(t, nil)

	resp, body := f.do(t, http.MethodGet, "/api/stats", "")
	require.Equal(t, http.StatusOK, resp.StatusCode)
	require.Equal(t, 1.25, body["net_sent_mb"])
}

func TestWeather(t *testing.T) {
	f := newFixture(t, nil)

	resp, body := f.do(t, http.MethodGet, "/api/weather?lat=28.6&lon=77.2", "")
	require.Equal(t, http.StatusOK, resp.StatusCode)
	require.Contains(t, body, "current_weather")

	resp, body = f.do(t, http.MethodGet, "/api/weather?lat=28.6", "")
	require.Equal(t, http.StatusBadRequest, resp.StatusCode)
	require.Equal(t, "lat and lon must be numbers", body["detail"])

	f.asst.WeatherFunc = func(float64, float64) (json.RawMessage, error) { return nil, realtime.ErrUpstream }
	resp, _ = f.do(t, http.MethodGet, "/api/weather?lat=1&lon=2", "")
	require.Equal(t, http.StatusBadGateway, resp.StatusCode)
}

func TestSearch(t *testing.T) {
	f := newFixture(t, nil)

	resp, body := f.do(t, http.MethodGet, "/api/search?q=golang", "")
	require.Equal(t, http.StatusOK, resp.StatusCode)
	require.Equal(t, "golang", body["heading"])

	resp, body = f.do(t, http.MethodGet, "/api/search?q=%20", "")
	require.Equal(t, http.StatusBadRequest, resp.StatusCode)
	require.Equal(t, "Query is required", body["detail"])
}

func TestChat(t *testing.T) {
	f := newFixture(t, nil)

	resp, body := f.do(t, http.MethodPost, "/api/chat", `{"message":"hi","persona":"p"}`)
	require.Equal(t, http.StatusOK, resp.StatusCode)
	require.Equal(t, "echo: hi", body["reply"])
	require.Equal(t, map[string]any{"persona": "p"}, body["data"])

	resp, body = f.do(t, http.MethodPost, "/api/chat", `{"message":"  "}`)
	require.Equal(t, http.StatusBadRequest, resp.StatusCode)
	require.Equal(t, "message is required", body["detail"])

	resp, _ = f.do(t, http.MethodPost, "/api/chat", `{not json`)
	require.Equal(t, http.StatusBadRequest, resp.StatusCode)

	f.asst.ChatFunc = func(assistant.ChatRequest) (assistant.ChatResponse, error) {
		return assistant.ChatResponse{}, assistant.ErrMissingCoordinates
	}
	resp, body = f.do(t, http.MethodPost, "/api/chat", `{"message":"weather"}`)
	require.Equal(t, http.StatusBadRequest, resp.StatusCode)
	require.Equal(t, "lat and lon are required for weather", body["detail"])
}

func TestMemory(t *testing.T) {
	f := newFixture(t, nil)

	resp, body := f.do(t, http.MethodGet, "/api/memory?path=/tmp/mem", "")
	require.Equal(t, http.StatusOK, resp.StatusCode)
	require.Equal(t, "/tmp/mem", body["path"])
	require.Equal(t, []any{}, body["entries"])

	resp, body = f.do(t, http.MethodGet, "/api/memory", "")
	require.Equal(t, http.StatusBadRequest, resp.StatusCode)
	require.Equal(t, "path is required", body["detail"])
}

func TestCommand_Gate(t *testing.T) {
	f := newFixture(t, nil)

	resp, body := f.do(t, http.MethodPost, "/api/command", `{"action":"type_text","text":"x"}`)
	require.Equal(t, http.StatusBadRequest, resp.StatusCode)
	require.Equal(t, "Set confirm=true to execute commands", body["detail"])

	resp, body = f.do(t, http.MethodPost, "/api/command", `{"action":"type_text","text":"x","confirm":true}`)
	require.Equal(t, http.StatusForbidden, resp.StatusCode)
	require.Equal(t, "Automation disabled. Set ENABLE_AUTOMATION=1", body["detail"])
	require.Empty(t, f.exec.commands)
}

func TestCommand_Execute(t *testing.T) {
	f := newFixture(t, func(c *config.Config) { c.Automation.Enabled = true })

	resp, body := f.do(t, http.MethodPost, "/api/command", `{"action":"type_text","text":"hello","confirm":true}`)
	require.Equal(t, http.StatusOK, resp.StatusCode)
	require.Equal(t, map[string]any{"status": "typed", "text": "hello"}, body)
	require.Len(t, f.exec.commands, 1)

	f.exec.err = automation.ErrUnsupportedAction
	resp, body = f.do(t, http.MethodPost, "/api/command", `{"action":"reboot","confirm":true}`)
	require.Equal(t, http.StatusBadRequest, resp.StatusCode)
	require.Equal(t, "Unsupported action", body["detail"])

	f.exec.err = automation.ErrInputUnavailable
	resp, _ = f.do(t, http.MethodPost, "/api/command", `{"action":"press","keys":"a","confirm":true}`)
	require.Equal(t, http.StatusNotImplemented, resp.StatusCode)

	resp, body = f.do(t, http.MethodPost, "/api/command", `{"action":"press","keys":7,"confirm":true}`)
	require.Equal(t, http.StatusBadRequest, resp.StatusCode)
	require.Equal(t, "keys must be string or list", body["detail"])
}

func TestCommand_AppNotAllowed(t *testing.T) {
	f := newFixture(t, func(c *config.Config) { c.Automation.Enabled = true })
	f.exec.err = fmt.Errorf("%w: %s", automation.ErrAppNotAllowed, "notepad")

	resp, body := f.do(t, http.MethodPost, "/api/command", `{"action":"open_app","command":"notepad","confirm":true}`)
	require.Equal(t, http.StatusForbidden, resp.StatusCode)
	require.Equal(t, "App is not in the allowed list", body["detail"])
}

func TestCommand_RateLimited(t *testing.T) {
	f := newFixture(t, func(c *config.Config) {
		c.Automation.Enabled = true
		c.Server.ActionRatePerMinute = 1
	})

	resp, _ := f.do(t, http.MethodPost, "/api/command", `{"action":"type_text","confirm":true}`)
	require.Equal(t, http.StatusOK, resp.StatusCode)
	resp, body := f.do(t, http.MethodPost, "/api/speak", `{"text":"hi"}`)
	require.Equal(t, http.StatusTooManyRequests, resp.StatusCode)
	require.Equal(t, "Too many requests", body["detail"])

	// read-only endpoints are never limited
	resp, _ = f.do(t, http.MethodGet, "/api/health", "")
	require.Equal(t, http.StatusOK, resp.StatusCode)
}

func TestTranscribe(t *testing.T) {
	f := newFixture(t, nil)
	encoded := base64.StdEncoding.EncodeToString([]byte("RIFFdata"))

	resp, body := f.do(t, http.MethodPost, "/api/transcribe", `{"audio_base64":"data:audio/webm;base64,`+encoded+`","filename":"clip.webm"}`)
	require.Equal(t, http.StatusOK, resp.StatusCode)
	require.Equal(t, "hello jarvis", body["text"])
	require.Equal(t, "RIFFdata", string(f.speech.audio))
	require.Equal(t, "clip.webm", f.speech.filename)

	_, _ = f.do(t, http.MethodPost, "/api/transcribe", `{"audio_base64":"`+encoded+`"}`)
	require.Equal(t, "audio.wav", f.speech.filename)

	resp, body = f.do(t, http.MethodPost, "/api/transcribe", `{"audio_base64":""}`)
	require.Equal(t, http.StatusBadRequest, resp.StatusCode)
	require.Equal(t, "audio_base64 is required", body["detail"])

	resp, body = f.do(t, http.MethodPost, "/api/transcribe", `{"audio_base64":"%%%"}`)
	require.Equal(t, http.StatusBadRequest, resp.StatusCode)
	require.Equal(t, "audio_base64 must be valid base64", body["detail"])

	f.speech.err = speech.ErrUnavailable
	resp, _ = f.do(t, http.MethodPost, "/api/transcribe", `{"audio_base64":"`+encoded+`"}`)
	require.Equal(t, http.StatusNotImplemented, resp.StatusCode)
}

func TestSpeak(t *testing.T) {
	f := newFixture(t, nil)

	resp, body := f.do(t, http.MethodPost, "/api/speak", `{"text":" good morning "}`)
	require.Equal(t, http.StatusOK, resp.StatusCode)
	audio, err := base64.StdEncoding.DecodeString(body["audio_base64"].(string))
	require.NoError(t, err)
	require.Equal(t, "WAV:good morning", string(audio))

	resp, body = f.do(t, http.MethodPost, "/api/speak", `{"text":""}`)
	require.Equal(t, http.StatusBadRequest, resp.StatusCode)
	require.Equal(t, "text is required", body["detail"])

	f.speech.err = speech.ErrUnavailable
	resp, _ = f.do(t, http.MethodPost, "/api/speak", `{"text":"x"}`)
	require.Equal(t, http.StatusNotImplemented, resp.StatusCode)
}

func TestPanicIsRecovered(t *testing.T) {
	f := newFixture(t, nil)
	f.asst.StatsFunc = func() (sysstats.Stats, error) { panic("boom") }

	resp, body := f.do(t, http.MethodGet, "/api/stats", "")
	require.Equal(t, http.StatusInternalServerError, resp.StatusCode)
	require.Equal(t, "Internal Server Error", body["detail"])

	resp, _ = f.do(t, http.MethodGet, "/api/health", "")
	require.Equal(t, http.StatusOK, resp.StatusCode)
}

func TestMetricsEndpoint(t *testing.T) {
	f := newFixture(t, nil)
	f.do(t, http.MethodGet, "/api/health", "")
	f.do(t, http.MethodGet, "/api/search", "")

	resp, err := http.Get(f.srv.URL + "/metrics")
	require.NoError(t, err)
	defer resp.Body.Close()
	raw, err := io.ReadAll(resp.Body)
	require.NoError(t, err)

	require.Contains(t, string(raw), `jarvis_http_requests_total{route="GET /api/health",status="200"} 1`)
	require.Contains(t, string(raw), `jarvis_http_requests_total{route="GET /api/search",status="400"} 1`)
}

func TestStaticWebDir(t *testing.T) {
	dir := t.TempDir()
	require.NoError(t, os.WriteFile(filepath.Join(dir, "index.html"), []byte("<h1>Jarvis</h1>"), 0o600))
	f := newFixture(t, func(c *config.Config) { c.Server.WebDir = dir })

	resp, err := http.Get(f.srv.URL + "/")
	require.NoError(t, err)
	defer resp.Body.Close()
	raw, err := io.ReadAll(resp.Body)
	require.NoError(t, err)
	require.Equal(t, http.StatusOK, resp.StatusCode)
	require.Contains(t, string(raw), "Jarvis")
}

func TestUnknownRouteWithoutWebDir(t *testing.T) {
	f := newFixture(t, nil)

	resp, body := f.do(t, http.MethodGet, "/nope", "")
	require.Equal(t, http.StatusNotFound, resp.StatusCode)
	require.Equal(t, "Not Found", body["detail"])
}
