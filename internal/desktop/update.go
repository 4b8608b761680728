package desktop

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/charmbracelet/bubbles/spinner"
	tea "github.com/charmbracelet/bubbletea"

	"github.com/comigor/jarvis-assistant/internal/logger"
)

const helpText = "enter send · ctrl+r voice · ctrl+y copy last reply · /memory <dir> · /remembered · /clear · ctrl+c quit"

// Update handles all state updates for the terminal client.
func (m *model) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.WindowSizeMsg:
		m.width, m.height = msg.Width, msg.Height
		m.ready = true
		m.recalculateLayout()
		return m, nil

	case tea.KeyMsg:
		switch msg.Type {
		case tea.KeyCtrlC, tea.KeyEsc:
			return m, tea.Quit
		case tea.KeyEnter:
			return m, m.submit()
		case tea.KeyCtrlR:
			return m, m.startVoice()
		case tea.KeyCtrlY:
			m.copyLastReply()
			return m, nil
		}

	case replyMsg:
		m.pending--
		m.lastReply = msg.text
		m.appendLine("Assistant", msg.text)
		if m.opts.AutoSpeak && m.opts.Voice != nil {
			return m, m.speak(msg.text)
		}
		return m, nil

	case heardMsg:
		m.pending--
		if msg.err != nil {
			m.appendLine("Error", "Voice error: "+msg.err.Error())
			return m, nil
		}
		if strings.TrimSpace(msg.text) == "" {
			m.appendLine("System", "I didn't catch that. Try again.")
			return m, nil
		}
		m.appendLine("You", msg.text)
		return m, m.respond(msg.text)

	case systemMsg:
		m.appendLine("System", msg.text)
		return m, nil

	case spinner.TickMsg:
		var cmd tea.Cmd
		m.spinner, cmd = m.spinner.Update(msg)
		return m, cmd
	}

	var cmd tea.Cmd
	m.input, cmd = m.input.Update(msg)
	return m, cmd
}

func (m *model) submit() tea.Cmd {
	text := strings.TrimSpace(m.input.Value())
	m.input.Reset()
	if text == "" {
		return nil
	}
	if strings.HasPrefix(text, "/") {
		return m.slash(text)
	}
	m.appendLine("You", text)
	return m.respond(text)
}

// respond runs the assistant in its own command; replies may arrive out of order.
func (m *model) respond(text string) tea.Cmd {
	m.pending++
	ctx := m.ctx
	responder := m.opts.Assistant
	return tea.Batch(m.spinner.Tick, func() tea.Msg {
		return replyMsg{text: responder.Respond(ctx, text)}
	})
}

func (m *model) startVoice() tea.Cmd {
	if m.opts.Voice == nil {
		m.appendLine("System", "Voice input is not configured.")
		return nil
	}
	m.pending++
	m.appendLine("System", "Listening...")
	ctx := m.ctx
	voice := m.opts.Voice
	path := filepath.Join(os.TempDir(), fmt.Sprintf("jarvis-voice-%s.wav", m.opts.SessionID))
	return tea.Batch(m.spinner.Tick, func() tea.Msg {
		defer os.Remove(path)
		if err := voice.Record(ctx, path); err != nil {
			return heardMsg{err: err}
		}
		text, err := voice.TranscribeFile(ctx, path)
		return heardMsg{text: text, err: err}
	})
}

// speak reads a reply aloud; failures are logged and otherwise ignored.
func (m *model) speak(text string) tea.Cmd {
	ctx := m.ctx
	voice := m.opts.Voice
	return func() tea.Msg {
		if err := voice.Speak(ctx, text); err != nil {
			logger.L.Debug("speak failed", "error", err)
		}
		return nil
	}
}

func (m *model) copyLastReply() {
	if m.lastReply == "" {
		m.appendLine("System", "Nothing to copy yet.")
		return
	}
	if err := copyToClipboard(m.lastReply); err != nil {
		m.appendLine("Error", "Clipboard unavailable: "+err.Error())
		return
	}
	m.appendLine("System", "Copied last reply.")
}

func (m *model) slash(text string) tea.Cmd {
	name, arg, _ := strings.Cut(strings.TrimPrefix(text, "/"), " ")
	arg = strings.TrimSpace(arg)

	switch name {
	case "memory":
		if m.opts.Memory == nil {
			m.appendLine("System", "Long-term memory is not configured.")
			return nil
		}
		if arg == "" {
			m.appendLine("System", "Memory folder is "+m.opts.Memory.Root())
			return nil
		}
		if err := m.opts.Memory.SetRoot(arg); err != nil {
			m.appendLine("Error", "Memory error: "+err.Error())
			return nil
		}
		m.appendLine("System", "Memory folder set to "+m.opts.Memory.Root())
		return nil

	case "remembered":
		ctx := m.ctx
		responder := m.opts.Assistant
		return func() tea.Msg {
			recs, err := responder.Remembered(ctx)
			if err != nil {
				return systemMsg{text: "Memory error: " + err.Error()}
			}
			if len(recs) == 0 {
				return systemMsg{text: "Nothing remembered yet."}
			}
			lines := make([]string, len(recs))
			for i, r := range recs {
				lines[i] = fmt.Sprintf("[%s] %s", r.Category, r.Content)
			}
			return systemMsg{text: strings.Join(lines, "\n")}
		}

	case "clear":
		m.content.Reset()
		m.viewport.SetContent("")
		return nil

	case "quit", "exit":
		return tea.Quit

	case "help":
		m.appendLine("System", helpText)
		return nil
	}

	m.appendLine("System", "Unknown command /"+name+". "+helpText)
	return nil
}

func (m *model) appendLine(role, text string) {
	var label string
	switch role {
	case "You":
		label = userStyle.Render(role + ":")
	case "Assistant":
		label = assistantStyle.Render(m.opts.Persona + ":")
	case "Error":
		label = errorStyle.Render(role + ":")
	default:
		label = systemStyle.Render(role + ":")
	}
	m.content.WriteString(label + " " + text + "\n")
	m.viewport.SetContent(m.content.String())
	m.viewport.GotoBottom()
}

func (m *model) recalculateLayout() {
	m.viewport.Width = m.width
	m.viewport.Height = max(m.height-6, 3)
	m.input.Width = max(m.width-8, 10)
}
