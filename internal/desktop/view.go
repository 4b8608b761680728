package desktop

import (
	"fmt"

	"github.com/charmbracelet/lipgloss"
)

func (m *model) View() string {
	if !m.ready {
		return "starting..."
	}

	header := headerStyle.Render("Jarvis · " + m.opts.Persona)

	status := helpText
	if m.pending > 0 {
		status = fmt.Sprintf("%s working on %d request(s)", m.spinner.View(), m.pending)
	}

	return lipgloss.JoinVertical(lipgloss.Left,
		header,
		m.viewport.View(),
		statusBarStyle.Render(status),
		inputBoxStyle.Width(max(m.width-2, 10)).Render(m.input.View()),
	)
}
