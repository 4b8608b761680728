package main

import (
	"os"

	"github.com/comigor/jarvis-assistant/internal/logger"
)

var version = "dev"

func main() {
	if err := newRootCmd().Execute(); err != nil {
		logger.L.Error("jarvis exited", "error", err)
		os.Exit(1)
	}
}
