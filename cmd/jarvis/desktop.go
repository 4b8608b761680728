package main

import (
	"fmt"
	"os"
	"os/signal"
	"path/filepath"

	"github.com/google/uuid"
	"github.com/spf13/cobra"

	"github.com/comigor/jarvis-assistant/internal/desktop"
	"github.com/comigor/jarvis-assistant/internal/logger"
	"github.com/comigor/jarvis-assistant/internal/speech"
)

func newDesktopCmd(root *rootOptions) *cobra.Command {
	var logFile string
	cmd := &cobra.Command{
		Use:   "desktop",
		Short: "Run the interactive terminal assistant",
		RunE: func(cmd *cobra.Command, _ []string) error {
			cfg, err := root.load()
			if err != nil {
				return err
			}

			if logFile == "" {
				logFile = filepath.Join(os.TempDir(), "jarvis-desktop.log")
			}
			f, err := os.OpenFile(logFile, os.O_CREATE|os.O_WRONLY|os.O_APPEND, 0o644)
			if err != nil {
				return fmt.Errorf("open log file: %w", err)
			}
			defer f.Close()
			logger.SetOutput(f)

			st, err := buildStack(cfg, nil)
			if err != nil {
				return err
			}
			defer st.close()

			voice := speech.New(cfg.Speech)
			ctx, stop := signal.NotifyContext(cmd.Context(), os.Interrupt)
			defer stop()

			return desktop.Run(ctx, desktop.Options{
				Assistant: st.assistant,
				Voice:     voice,
				Memory:    st.store,
				AutoSpeak: voice.AutoSpeak(),
				Persona:   cfg.Assistant.PersonaName,
				SessionID: uuid.NewString(),
			})
		},
	}
	cmd.Flags().StringVar(&logFile, "log-file", "", "where to write logs while the UI owns the terminal")
	return cmd
}
