// Package desktop is the terminal variant of the assistant: a single Bubble
// Tea event loop where every send or voice capture runs as its own command.
package desktop

import (
	"context"
	"strings"

	"github.com/atotto/clipboard"
	"github.com/charmbracelet/bubbles/spinner"
	"github.com/charmbracelet/bubbles/textinput"
	"github.com/charmbracelet/bubbles/viewport"
	tea "github.com/charmbracelet/bubbletea"

	"github.com/comigor/jarvis-assistant/internal/memory"
)

// Responder answers typed or transcribed messages.
type Responder interface {
	Respond(ctx context.Context, text string) string
	Remembered(ctx context.Context) ([]memory.Record, error)
}

// Voice captures, transcribes and speaks.
type Voice interface {
	Record(ctx context.Context, path string) error
	TranscribeFile(ctx context.Context, path string) (string, error)
	Speak(ctx context.Context, text string) error
}

// MemoryRoot is the re-pointable long-term store.
type MemoryRoot interface {
	SetRoot(dir string) error
	Root() string
}

// Options configure the terminal client. Voice and Memory may be nil.
type Options struct {
	Assistant Responder
	Voice     Voice
	Memory    MemoryRoot
	AutoSpeak bool
	Persona   string
	SessionID string
}

var copyToClipboard = clipboard.WriteAll

// model represents the state of the terminal client.
type model struct {
	ctx  context.Context
	opts Options

	viewport viewport.Model
	input    textinput.Model
	spinner  spinner.Model

	content   *strings.Builder
	pending   int
	lastReply string

	width  int
	height int
	ready  bool
}

// replyMsg carries the assistant's answer back to the loop.
type replyMsg struct{ text string }

// heardMsg carries a voice transcription.
type heardMsg struct {
	text string
	err  error
}

// systemMsg is an informational line.
type systemMsg struct{ text string }

func newModel(ctx context.Context, opts Options) *model {
	ti := textinput.New()
	ti.Placeholder = "Ask " + opts.Persona + " anything. /help for commands"
	ti.Prompt = "› "
	ti.CharLimit = 4000
	ti.Focus()

	sp := spinner.New()
	sp.Spinner = spinner.Dot
	sp.Style = systemStyle

	return &model{
		ctx:      ctx,
		opts:     opts,
		viewport: viewport.New(80, 20),
		input:    ti,
		spinner:  sp,
		content:  &strings.Builder{},
	}
}

func (m *model) Init() tea.Cmd {
	return tea.Batch(textinput.Blink, m.spinner.Tick)
}
