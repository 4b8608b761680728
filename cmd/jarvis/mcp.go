package main

import (
	"os"

	"github.com/spf13/cobra"

	"github.com/comigor/jarvis-assistant/internal/logger"
	"github.com/comigor/jarvis-assistant/internal/mcpserver"
	"github.com/comigor/jarvis-assistant/pkg/tools"
)

func newMCPCmd(root *rootOptions) *cobra.Command {
	return &cobra.Command{
		Use:   "mcp",
		Short: "Expose the assistant's tools over MCP on stdio",
		RunE: func(*cobra.Command, []string) error {
			// stdout carries the protocol
			logger.SetOutput(os.Stderr)

			cfg, err := root.load()
			if err != nil {
				return err
			}
			st, err := buildStack(cfg, nil)
			if err != nil {
				return err
			}
			defer st.close()

			mgr := tools.NewToolManager(tools.AssistantTools(st.assistant)...)
			return mcpserver.ServeStdio(mcpserver.New(version, mgr))
		},
	}
}
