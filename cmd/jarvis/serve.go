package main

import (
	"fmt"
	"net"
	"os"
	"os/signal"
	"syscall"

	"github.com/spf13/cobra"

	"github.com/comigor/jarvis-assistant/internal/logger"
	"github.com/comigor/jarvis-assistant/internal/metrics"
	"github.com/comigor/jarvis-assistant/internal/server"
	"github.com/comigor/jarvis-assistant/internal/speech"
)

func newServeCmd(root *rootOptions) *cobra.Command {
	var addr string
	cmd := &cobra.Command{
		Use:   "serve",
		Short: "Run the HTTP API and optional web UI",
		RunE: func(cmd *cobra.Command, _ []string) error {
			cfg, err := root.load()
			if err != nil {
				return err
			}
			if addr != "" {
				host, port, err := net.SplitHostPort(addr)
				if err != nil {
					return fmt.Errorf("--addr: %w", err)
				}
				cfg.Server.Host, cfg.Server.Port = host, port
			}

			m := metrics.New()
			st, err := buildStack(cfg, m)
			if err != nil {
				return err
			}
			defer st.close()

			srv := server.New(*cfg, server.Deps{
				Assistant: st.assistant,
				Control:   st.controller,
				Speech:    speech.New(cfg.Speech),
				Metrics:   m,
			})

			ctx, stop := signal.NotifyContext(cmd.Context(), os.Interrupt, syscall.SIGTERM)
			defer stop()

			logger.L.Info("starting jarvis", "version", version, "provider", cfg.LLM.Provider, "automation", cfg.Automation.Enabled)
			return srv.Run(ctx)
		},
	}
	cmd.Flags().StringVar(&addr, "addr", "", "listen address host:port (overrides server.host/server.port)")
	return cmd
}
