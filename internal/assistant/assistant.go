// Package assistant routes a user message to the piece that answers it:
// system stats, live data, OS control or the language-model router.
package assistant

import (
	"context"
	"encoding/json"
	"errors"
	"time"

	"github.com/comigor/jarvis-assistant/internal/config"
	"github.com/comigor/jarvis-assistant/internal/llm"
	"github.com/comigor/jarvis-assistant/internal/memory"
	"github.com/comigor/jarvis-assistant/internal/realtime"
	"github.com/comigor/jarvis-assistant/internal/sysstats"
)

var (
	// ErrMissingMessage is returned for a blank chat message.
	ErrMissingMessage = errors.New("message is required")
	// ErrMissingCoordinates is returned for a weather question without lat/lon.
	ErrMissingCoordinates = errors.New("lat and lon are required for weather")
)

// Generator produces a reply; it never fails, it apologizes instead.
type Generator interface {
	Generate(ctx context.Context, prompt, systemPrompt string, hints llm.Hints) string
}

// Realtime answers live-data lookups.
type Realtime interface {
	Weather(ctx context.Context, lat, lon float64) (json.RawMessage, error)
	Search(ctx context.Context, query string) (realtime.SearchResult, error)
	News(ctx context.Context, query string) (realtime.SearchResult, error)
}

// Controller turns a typed control command into an OS action.
type Controller interface {
	Interpret(ctx context.Context, text string) string
}

// Deps are the collaborators of an Assistant. Control and LongTerm may be nil.
type Deps struct {
	LLM      Generator
	Realtime Realtime
	Stats    sysstats.Source
	Control  Controller
	LongTerm *memory.Store
}

// Assistant is shared by all requests; it holds no per-request state.
type Assistant struct {
	llm      Generator
	live     Realtime
	stats    sysstats.Source
	control  Controller
	longTerm *memory.Store
	session  *memory.Session

	persona   string
	readLimit int
	now       func() time.Time
}

// New wires an assistant.
func New(deps Deps, cfg config.Config) *Assistant {
	readLimit := cfg.Memory.ReadLimit
	if readLimit <= 0 {
		readLimit = memory.DefaultRecentLimit
	}
	return &Assistant{
		llm:       deps.LLM,
		live:      deps.Realtime,
		stats:     deps.Stats,
		control:   deps.Control,
		longTerm:  deps.LongTerm,
		session:   &memory.Session{},
		persona:   cfg.Assistant.PersonaName,
		readLimit: readLimit,
		now:       time.Now,
	}
}

// Session is the in-process turn buffer used by Respond.
func (a *Assistant) Session() *memory.Session { return a.session }

// LongTerm is the categorized store, or nil when none is configured.
func (a *Assistant) LongTerm() *memory.Store { return a.longTerm }

// Ask sends a free-form prompt straight to the router with the persona prompt.
func (a *Assistant) Ask(ctx context.Context, prompt, persona string, hints llm.Hints) string {
	return a.llm.Generate(ctx, prompt, llm.BuildSystemPrompt(persona), hints)
}

// Stats samples the host.
func (a *Assistant) Stats(ctx context.Context) (sysstats.Stats, error) {
	return a.stats.Snapshot(ctx)
}

// Weather passes the upstream document through.
func (a *Assistant) Weather(ctx context.Context, lat, lon float64) (json.RawMessage, error) {
	return a.live.Weather(ctx, lat, lon)
}

// Search runs a web search.
func (a *Assistant) Search(ctx context.Context, query string) (realtime.SearchResult, error) {
	return a.live.Search(ctx, query)
}
