package llm

import (
	"context"
	"net/http"
	"strings"

	"github.com/qmuntal/stateless"

	"github.com/comigor/jarvis-assistant/internal/config"
	"github.com/comigor/jarvis-assistant/internal/logger"
	"github.com/comigor/jarvis-assistant/internal/metrics"
)

// Canned replies used when no provider produced text.
const (
	TroubleReply = "I'm having trouble reaching the AI provider right now. " +
		"Please check your provider settings or try again later."
	OfflineReply = "I'm offline right now. Please try again later."
)

// Fixed provider orderings.
var (
	offlineChain   = []string{config.ProviderOllama}
	realtimeChain  = []string{config.ProviderGemini, config.ProviderOpenRouter, config.ProviderHuggingFace, config.ProviderOllama}
	reasoningChain = []string{config.ProviderOllama, config.ProviderOpenRouter, config.ProviderGemini, config.ProviderHuggingFace}
	defaultChain   = []string{config.ProviderOllama, config.ProviderGemini, config.ProviderOpenRouter, config.ProviderHuggingFace}
)

// Walk states
const (
	StateSelecting = "Selecting"
	StateTrying    = "Trying"
	StateAnswered  = "Answered"
	StateExhausted = "Exhausted"
)

// Walk triggers
const (
	triggerChainReady       = "ChainReady"
	triggerProviderFailed   = "ProviderFailed"
	triggerProviderAnswered = "ProviderAnswered"
	triggerChainExhausted   = "ChainExhausted"
)

// Hints steer which fixed ordering the router picks.
type Hints struct {
	NeedReasoning bool
	NeedRealtime  bool
}

// Prober reports whether the machine can reach the internet.
type Prober interface {
	Online(ctx context.Context) bool
}

// HTTPProber probes a fixed URL; any transport error or status >= 400 means offline.
type HTTPProber struct {
	URL    string
	Client *http.Client
}

// Online performs a single GET; the result is never cached.
func (p *HTTPProber) Online(ctx context.Context) bool {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, p.URL, nil)
	if err != nil {
		return false
	}
	resp, err := p.Client.Do(req)
	if err != nil {
		return false
	}
	resp.Body.Close()
	return resp.StatusCode < http.StatusBadRequest
}

// Attempt is one provider step of a walk.
type Attempt struct {
	Provider string
	Outcome  string
	Err      error
}

// Walk is the full record of one Generate call.
type Walk struct {
	Chain    []string
	Attempts []Attempt
	Reply    string
	State    string
}

// Router picks a provider chain and tries it in order until one answers.
type Router struct {
	providers map[string]Provider
	override  string
	prober    Prober
	metrics   *metrics.Metrics
}

// NewRouter creates a router over the given providers. override is the
// LLM_PROVIDER value; "auto" or empty lets the router choose.
func NewRouter(override string, prober Prober, m *metrics.Metrics, providers ...Provider) *Router {
	byName := make(map[string]Provider, len(providers))
	for _, p := range providers {
		byName[p.Name()] = p
	}
	return &Router{providers: byName, override: override, prober: prober, metrics: m}
}

// FromConfig wires the four built-in providers and the HTTP prober.
func FromConfig(cfg config.LLMConfig, m *metrics.Metrics) *Router {
	prober := &HTTPProber{URL: cfg.ProbeURL, Client: &http.Client{Timeout: cfg.ProbeTimeout}}
	return NewRouter(cfg.Provider, prober, m,
		NewOllama(cfg),
		NewGemini(cfg),
		NewOpenRouter(cfg, nil),
		NewHuggingFace(cfg),
	)
}

// Chain returns the provider names to try, in order.
func (r *Router) Chain(ctx context.Context, hints Hints) []string {
	if r.override != "" && r.override != config.ProviderAuto {
		return []string{r.override}
	}

	online := r.prober.Online(ctx)
	r.metrics.RecordProbe(online)
	switch {
	case !online:
		return clone(offlineChain)
	case hints.NeedRealtime:
		return clone(realtimeChain)
	case hints.NeedReasoning:
		return clone(reasoningChain)
	default:
		return clone(defaultChain)
	}
}

// Generate returns the first non-empty reply along the chain, or a canned
// apology when every provider was skipped or failed.
func (r *Router) Generate(ctx context.Context, prompt, systemPrompt string, hints Hints) string {
	return r.Walk(ctx, prompt, systemPrompt, hints).Reply
}

// Walk runs the chain and records every step. Entering Trying calls the next
// provider, and its outcome fires the trigger that moves the walk on.
func (r *Router) Walk(ctx context.Context, prompt, systemPrompt string, hints Hints) Walk {
	walk := Walk{Chain: r.Chain(ctx, hints)}
	next := 0
	errored := false

	fsm := stateless.NewStateMachine(StateSelecting)
	fsm.Configure(StateSelecting).
		Permit(triggerChainReady, StateTrying).
		Permit(triggerChainExhausted, StateExhausted)

	fsm.Configure(StateTrying).
		OnEntry(func(ctx context.Context, _ ...any) error {
			name := walk.Chain[next]
			next++

			attempt, reply := r.try(ctx, name, prompt, systemPrompt)
			walk.Attempts = append(walk.Attempts, attempt)
			r.metrics.RecordProviderAttempt(name, attempt.Outcome)

			switch {
			case attempt.Outcome == metrics.OutcomeAnswered:
				walk.Reply = reply
				return fsm.FireCtx(ctx, triggerProviderAnswered)
			case attempt.Outcome == metrics.OutcomeError:
				errored = true
			}
			if next < len(walk.Chain) {
				return fsm.FireCtx(ctx, triggerProviderFailed)
			}
			return fsm.FireCtx(ctx, triggerChainExhausted)
		}).
		PermitReentry(triggerProviderFailed).
		Permit(triggerProviderAnswered, StateAnswered).
		Permit(triggerChainExhausted, StateExhausted)

	fsm.Configure(StateAnswered)

	fsm.Configure(StateExhausted).
		OnEntry(func(_ context.Context, _ ...any) error {
			logger.L.Warn("no provider produced a reply", "chain", walk.Chain, "errored", errored)
			walk.Reply = OfflineReply
			if errored {
				walk.Reply = TroubleReply
			}
			return nil
		})

	start := triggerChainReady
	if len(walk.Chain) == 0 {
		start = triggerChainExhausted
	}
	if err := fsm.FireCtx(ctx, start); err != nil {
		logger.L.Error("router walk transition failed", "trigger", start, "error", err)
	}

	walk.State = fsm.MustState().(string)
	if walk.State != StateAnswered && walk.State != StateExhausted {
		// a failed transition leaves the walk mid-chain; it still owes a reply
		walk.Reply = TroubleReply
	}
	return walk
}

func (r *Router) try(ctx context.Context, name, prompt, systemPrompt string) (Attempt, string) {
	attempt := Attempt{Provider: name}

	p, ok := r.providers[name]
	if !ok || !p.Ready() {
		logger.L.Debug("provider skipped", "provider", name, "known", ok)
		attempt.Outcome = metrics.OutcomeSkipped
		return attempt, ""
	}

	reply, err := p.Generate(ctx, prompt, systemPrompt)
	switch {
	case err != nil:
		logger.L.Warn("provider call failed", "provider", name, "error", err)
		attempt.Outcome = metrics.OutcomeError
		attempt.Err = err
	case strings.TrimSpace(reply) == "":
		logger.L.Info("provider returned no text", "provider", name)
		attempt.Outcome = metrics.OutcomeEmpty
	default:
		attempt.Outcome = metrics.OutcomeAnswered
		return attempt, reply
	}
	return attempt, ""
}

func clone(s []string) []string {
	return append([]string(nil), s...)
}
