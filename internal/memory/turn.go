package memory

import (
	"encoding/json"
	"fmt"
	"strings"
	"time"
)

// Roles of a chat turn.
const (
	RoleUser      = "user"
	RoleAssistant = "assistant"
)

// Turn is a single conversational message. Turns are appended, never mutated.
type Turn struct {
	Timestamp Timestamp `json:"timestamp"`
	Role      string    `json:"role"`
	Text      string    `json:"message"`
	Persona   string    `json:"persona"`
}

// Exchange builds the user/assistant pair of one request, sharing a timestamp.
func Exchange(at time.Time, persona, userText, reply string) []Turn {
	return []Turn{
		{Timestamp: Timestamp{at}, Role: RoleUser, Text: userText, Persona: persona},
		{Timestamp: Timestamp{at}, Role: RoleAssistant, Text: reply, Persona: persona},
	}
}

// Record is a long-term memory row.
type Record struct {
	ID        int64     `json:"id"`
	Timestamp time.Time `json:"timestamp"`
	Category  string    `json:"category"`
	Content   string    `json:"content"`
}

// Naive UTC layouts of journal timestamps, with and without microseconds.
const (
	isoSeconds = "2006-01-02T15:04:05"
	isoMicros  = "2006-01-02T15:04:05.000000"
)

// Timestamp is a journal time. It is written as naive UTC ISO-8601
// (2024-05-01T10:00:00.123456) and read from either that form or RFC 3339.
type Timestamp struct {
	time.Time
}

func (t Timestamp) MarshalJSON() ([]byte, error) {
	u := t.UTC()
	layout := isoMicros
	if u.Nanosecond()/int(time.Microsecond) == 0 {
		layout = isoSeconds
	}
	return json.Marshal(u.Format(layout))
}

func (t *Timestamp) UnmarshalJSON(b []byte) error {
	var s string
	if err := json.Unmarshal(b, &s); err != nil {
		return fmt.Errorf("timestamp: %w", err)
	}
	v, err := parseTimestamp(s)
	if err != nil {
		return err
	}
	t.Time = v
	return nil
}

// parseTimestamp reads RFC 3339 or naive ISO-8601, treating naive values as UTC.
// A blank string is the zero time.
func parseTimestamp(s string) (time.Time, error) {
	s = strings.TrimSpace(s)
	if s == "" {
		return time.Time{}, nil
	}
	if v, err := time.Parse(time.RFC3339Nano, s); err == nil {
		return v, nil
	}
	// fractional seconds are accepted after the seconds field
	v, err := time.ParseInLocation(isoSeconds, strings.Replace(s, " ", "T", 1), time.UTC)
	if err != nil {
		return time.Time{}, fmt.Errorf("timestamp %q: %w", s, err)
	}
	return v, nil
}
