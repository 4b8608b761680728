// Package intent maps raw utterances to a small closed set of categories
// using ordered keyword checks. The first matching check wins.
package intent

import "strings"

// Kind is the category of an utterance.
type Kind int

const (
	General Kind = iota
	PCControl
	WebSearch
	Writing
	Realtime
)

func (k Kind) String() string {
	switch k {
	case PCControl:
		return "pc_control"
	case WebSearch:
		return "web_search"
	case Writing:
		return "writing"
	case Realtime:
		return "realtime"
	default:
		return "general"
	}
}

// Intent is a classified utterance. Payload is the original, unmodified text.
type Intent struct {
	Kind    Kind
	Payload string
}

var (
	controlKeywords  = []string{"volume", "brightness", "screenshot", "type ", "press ", "click "}
	writingKeywords  = []string{"shayari", "poem"}
	realtimeKeywords = []string{"weather", "news", "price", "stock"}
)

// Classify runs the checks in order on the lowered, trimmed text.
func Classify(text string) Intent {
	lowered := strings.ToLower(strings.TrimSpace(text))

	kind := General
	switch {
	case strings.HasPrefix(lowered, "open ") || strings.HasPrefix(lowered, "close "):
		kind = PCControl
	case strings.Contains(lowered, "search") || strings.HasPrefix(lowered, "find "):
		kind = WebSearch
	case containsAny(lowered, controlKeywords):
		kind = PCControl
	case containsAny(lowered, writingKeywords):
		kind = Writing
	case containsAny(lowered, realtimeKeywords):
		kind = Realtime
	}
	return Intent{Kind: kind, Payload: text}
}

func containsAny(s string, keywords []string) bool {
	for _, k := range keywords {
		if strings.Contains(s, k) {
			return true
		}
	}
	return false
}
