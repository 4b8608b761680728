package automation

import (
	"context"
	"fmt"
	"os/exec"

	"github.com/comigor/jarvis-assistant/internal/logger"
)

// Runner spawns OS processes.
type Runner interface {
	// Start launches a process without waiting for it.
	Start(ctx context.Context, name string, args ...string) error
	// Run launches a process and waits for it to exit.
	Run(ctx context.Context, name string, args ...string) error
	// LookPath reports where an executable lives.
	LookPath(name string) (string, error)
}

// ExecRunner is the os/exec backed Runner.
type ExecRunner struct{}

var _ Runner = ExecRunner{}

// Start does not tie the child to ctx; launched apps outlive the request.
func (ExecRunner) Start(_ context.Context, name string, args ...string) error {
	cmd := exec.Command(name, args...)
	if err := cmd.Start(); err != nil {
		return fmt.Errorf("start %s: %w", name, err)
	}
	go func() {
		if err := cmd.Wait(); err != nil {
			logger.L.Debug("detached process exited", "name", name, "error", err)
		}
	}()
	return nil
}

func (ExecRunner) Run(ctx context.Context, name string, args ...string) error {
	out, err := exec.CommandContext(ctx, name, args...).CombinedOutput()
	if err != nil {
		return fmt.Errorf("run %s: %w: %s", name, err, out)
	}
	return nil
}

func (ExecRunner) LookPath(name string) (string, error) {
	return exec.LookPath(name)
}
