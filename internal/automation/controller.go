// Package automation carries out OS actions on the user's own machine:
// launching and closing apps, volume and brightness, opening paths and
// injecting keyboard and mouse input.
package automation

import (
	"context"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"runtime"
	"strconv"
	"strings"

	"github.com/gobwas/glob"

	"github.com/comigor/jarvis-assistant/internal/config"
	"github.com/comigor/jarvis-assistant/internal/logger"
)

var (
	// ErrInputUnavailable means no keyboard/mouse injection backend (xdotool) is installed.
	ErrInputUnavailable = errors.New("input automation backend is not installed")
	// ErrBackendUnavailable means the volume or brightness tool for this OS is missing.
	ErrBackendUnavailable = errors.New("automation backend is not available")
	// ErrAppNotAllowed means the app does not match automation.allowed_apps.
	ErrAppNotAllowed = errors.New("app is not in the allowed list")
)

const inputBackend = "xdotool"

// Controller runs OS actions through a Runner.
type Controller struct {
	runner  Runner
	goos    string
	allowed []glob.Glob
}

// New compiles the allow-list and returns a controller for the running OS.
func New(cfg config.AutomationConfig, r Runner) (*Controller, error) {
	return newController(cfg, r, runtime.GOOS)
}

func newController(cfg config.AutomationConfig, r Runner, goos string) (*Controller, error) {
	if r == nil {
		r = ExecRunner{}
	}
	c := &Controller{runner: r, goos: goos}
	for _, pattern := range cfg.AllowedApps {
		g, err := glob.Compile(strings.ToLower(pattern))
		if err != nil {
			return nil, fmt.Errorf("allowed_apps %q: %w", pattern, err)
		}
		c.allowed = append(c.allowed, g)
	}
	return c, nil
}

// Allowed reports whether an app command passes the allow-list. The first
// word's base name is matched case-insensitively; an empty list allows all.
func (c *Controller) Allowed(command string) bool {
	if len(c.allowed) == 0 {
		return true
	}
	fields := strings.Fields(command)
	if len(fields) == 0 {
		return false
	}
	name := strings.ToLower(filepath.Base(fields[0]))
	for _, g := range c.allowed {
		if g.Match(name) {
			return true
		}
	}
	return false
}

// OpenApp launches a shell command without waiting for it.
func (c *Controller) OpenApp(ctx context.Context, command string) (string, error) {
	command = strings.TrimSpace(command)
	if !c.Allowed(command) {
		return "", fmt.Errorf("%w: %s", ErrAppNotAllowed, command)
	}
	var err error
	if c.goos == "windows" {
		err = c.runner.Start(ctx, "cmd", "/C", command)
	} else {
		err = c.runner.Start(ctx, "sh", "-c", command)
	}
	if err != nil {
		return "", err
	}
	logger.L.Info("app opened", "command", command)
	return "Opened: " + command, nil
}

// CloseApp kills processes by name. A kill that matched nothing is not an error.
func (c *Controller) CloseApp(ctx context.Context, name string) (string, error) {
	name = strings.TrimSpace(name)
	if !c.Allowed(name) {
		return "", fmt.Errorf("%w: %s", ErrAppNotAllowed, name)
	}
	var err error
	if c.goos == "windows" {
		err = c.runner.Run(ctx, "taskkill", "/IM", name, "/F")
	} else {
		err = c.runner.Run(ctx, "pkill", "-f", name)
	}
	if err != nil {
		logger.L.Warn("close app", "name", name, "error", err)
	}
	return "Closed: " + name, nil
}

// SetVolume sets the master output volume, clamped to 0..100.
func (c *Controller) SetVolume(ctx context.Context, level int) (string, error) {
	level = clamp(level)
	var name string
	var args []string
	switch c.goos {
	case "windows":
		name, args = "nircmd.exe", []string{"setsysvolume", strconv.Itoa(level * 65535 / 100)}
	case "darwin":
		name, args = "osascript", []string{"-e", fmt.Sprintf("set volume output volume %d", level)}
	default:
		name, args = "amixer", []string{"-q", "sset", "Master", strconv.Itoa(level) + "%"}
	}
	if err := c.runBackend(ctx, name, args...); err != nil {
		return "", err
	}
	return fmt.Sprintf("Volume set to %d%%.", level), nil
}

// SetBrightness sets the primary display brightness, clamped to 0..100.
func (c *Controller) SetBrightness(ctx context.Context, level int) (string, error) {
	level = clamp(level)
	var name string
	var args []string
	switch c.goos {
	case "windows":
		name, args = "powershell", []string{"-Command",
			fmt.Sprintf("(Get-WmiObject -Namespace root/WMI -Class WmiMonitorBrightnessMethods).WmiSetBrightness(1,%d)", level)}
	case "darwin":
		name, args = "brightness", []string{strconv.FormatFloat(float64(level)/100, 'f', 2, 64)}
	default:
		name, args = "brightnessctl", []string{"set", strconv.Itoa(level) + "%"}
	}
	if err := c.runBackend(ctx, name, args...); err != nil {
		return "", err
	}
	return fmt.Sprintf("Brightness set to %d%%.", level), nil
}

// OpenPath opens a file, folder or URL with the desktop's default handler.
func (c *Controller) OpenPath(ctx context.Context, path string) (string, error) {
	path = expandHome(strings.TrimSpace(path))
	var err error
	switch c.goos {
	case "windows":
		err = c.runner.Start(ctx, "explorer", path)
	case "darwin":
		err = c.runner.Start(ctx, "open", path)
	default:
		err = c.runner.Start(ctx, "xdg-open", path)
	}
	if err != nil {
		return "", err
	}
	return "Opened path: " + path, nil
}

// TypeText types text into the focused window.
func (c *Controller) TypeText(ctx context.Context, text string) (string, error) {
	if err := c.input(ctx, "type", "--delay", "12", "--", text); err != nil {
		return "", err
	}
	return "Typed text.", nil
}

// Press taps a single key.
func (c *Controller) Press(ctx context.Context, key string) (string, error) {
	if err := c.input(ctx, "key", "--", key); err != nil {
		return "", err
	}
	return "Pressed key.", nil
}

// Hotkey presses keys together, e.g. ctrl+shift+t.
func (c *Controller) Hotkey(ctx context.Context, keys ...string) (string, error) {
	if len(keys) == 0 {
		return "", fmt.Errorf("%w: no keys", ErrInvalidCommand)
	}
	if err := c.input(ctx, "key", "--", strings.Join(keys, "+")); err != nil {
		return "", err
	}
	return "Pressed hotkey.", nil
}

// Click moves the pointer to x,y and clicks the left button.
func (c *Controller) Click(ctx context.Context, x, y int) (string, error) {
	if err := c.input(ctx, "mousemove", strconv.Itoa(x), strconv.Itoa(y), "click", "1"); err != nil {
		return "", err
	}
	return "Clicked.", nil
}

func (c *Controller) input(ctx context.Context, args ...string) error {
	if _, err := c.runner.LookPath(inputBackend); err != nil {
		return ErrInputUnavailable
	}
	return c.runner.Run(ctx, inputBackend, args...)
}

func (c *Controller) runBackend(ctx context.Context, name string, args ...string) error {
	if _, err := c.runner.LookPath(name); err != nil {
		return fmt.Errorf("%w: %s not found on %s", ErrBackendUnavailable, name, c.goos)
	}
	return c.runner.Run(ctx, name, args...)
}

func clamp(level int) int {
	return max(0, min(100, level))
}

func expandHome(path string) string {
	if path != "~" && !strings.HasPrefix(path, "~/") {
		return path
	}
	home, err := os.UserHomeDir()
	if err != nil {
		return path
	}
	return filepath.Join(home, path[1:])
}
