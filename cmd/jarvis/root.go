package main

import (
	"github.com/spf13/cobra"

	"github.com/comigor/jarvis-assistant/internal/assistant"
	"github.com/comigor/jarvis-assistant/internal/automation"
	"github.com/comigor/jarvis-assistant/internal/config"
	"github.com/comigor/jarvis-assistant/internal/llm"
	"github.com/comigor/jarvis-assistant/internal/logger"
	"github.com/comigor/jarvis-assistant/internal/memory"
	"github.com/comigor/jarvis-assistant/internal/metrics"
	"github.com/comigor/jarvis-assistant/internal/realtime"
	"github.com/comigor/jarvis-assistant/internal/sysstats"
)

type rootOptions struct {
	configPath string
	logLevel   string
}

func newRootCmd() *cobra.Command {
	opts := &rootOptions{}
	cmd := &cobra.Command{
		Use:           "jarvis",
		Short:         "Personal assistant: chat, live data, voice and desktop control",
		Version:       version,
		SilenceUsage:  true,
		SilenceErrors: true,
	}
	cmd.PersistentFlags().StringVar(&opts.configPath, "config", "", "path to a YAML config file (default $CONFIG_PATH or ./config.yaml)")
	cmd.PersistentFlags().StringVar(&opts.logLevel, "log-level", "", "override the configured log level")

	cmd.AddCommand(
		newServeCmd(opts),
		newDesktopCmd(opts),
		newMCPCmd(opts),
		newConfigCmd(opts),
	)
	return cmd
}

// load reads the config and applies the log level; the flag beats the file.
func (o *rootOptions) load() (*config.Config, error) {
	cfg, err := config.Load(o.configPath)
	if err != nil {
		return nil, err
	}
	if o.logLevel != "" {
		cfg.LogLevel = o.logLevel
	}
	logger.SetLevel(cfg.LogLevel)
	return cfg, nil
}

// stack is everything both front ends share.
type stack struct {
	assistant  *assistant.Assistant
	controller *automation.Controller
	store      *memory.Store
}

func buildStack(cfg *config.Config, m *metrics.Metrics) (*stack, error) {
	controller, err := automation.New(cfg.Automation, automation.ExecRunner{})
	if err != nil {
		return nil, err
	}

	store, err := memory.NewStore(cfg.Memory.Dir)
	if err != nil {
		return nil, err
	}

	a := assistant.New(assistant.Deps{
		LLM:      llm.FromConfig(cfg.LLM, m),
		Realtime: realtime.New(cfg.Realtime),
		Stats:    sysstats.New(),
		Control:  controller,
		LongTerm: store,
	}, *cfg)

	return &stack{assistant: a, controller: controller, store: store}, nil
}

func (s *stack) close() {
	if err := s.store.Close(); err != nil {
		logger.L.Warn("closing memory store", "error", err)
	}
}
