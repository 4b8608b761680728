package desktop

import (
	"context"
	"errors"

	tea "github.com/charmbracelet/bubbletea"

	"github.com/comigor/jarvis-assistant/internal/logger"
)

// Run blocks until the user quits or ctx is cancelled.
func Run(ctx context.Context, opts Options) error {
	if opts.Assistant == nil {
		return errors.New("desktop: assistant is required")
	}
	logger.L.Info("starting terminal client", "session", opts.SessionID, "autoSpeak", opts.AutoSpeak)

	p := tea.NewProgram(newModel(ctx, opts), tea.WithAltScreen(), tea.WithContext(ctx))
	_, err := p.Run()
	if errors.Is(err, tea.ErrProgramKilled) && ctx.Err() != nil {
		return nil
	}
	return err
}
