package automation

import (
	"context"
	"encoding/json"
	"errors"
	"strings"
	"sync"
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/comigor/jarvis-assistant/internal/config"
)

type call struct {
	detached bool
	name     string
	args     []string
}

type fakeRunner struct {
	mu      sync.Mutex
	calls   []call
	missing map[string]bool
	RunFunc func(name string, args ...string) error
}

func (f *fakeRunner) Start(_ context.Context, name string, args ...string) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.calls = append(f.calls, call{detached: true, name: name, args: args})
	return nil
}

func (f *fakeRunner) Run(_ context.Context, name string, args ...string) error {
	f.mu.Lock()
	f.calls = append(f.calls, call{name: name, args: args})
	f.mu.Unlock()
	if f.RunFunc != nil {
		return f.RunFunc(name, args...)
	}
	return nil
}

func (f *fakeRunner) LookPath(name string) (string, error) {
	if f.missing[name] {
		return "", errors.New("not found")
	}
	return "/usr/bin/" + name, nil
}

func (f *fakeRunner) last(t *testing.T) call {
	t.Helper()
	f.mu.Lock()
	defer f.mu.Unlock()
	require.NotEmpty(t, f.calls)
	return f.calls[len(f.calls)-1]
}

func newTestController(t *testing.T, goos string, allowed ...string) (*Controller, *fakeRunner) {
	t.Helper()
	r := &fakeRunner{missing: map[string]bool{}}
	c, err := newController(config.AutomationConfig{AllowedApps: allowed}, r, goos)
	require.NoError(t, err)
	return c, r
}

func TestOpenApp_PerOS(t *testing.T) {
	ctx := context.Background()

	c, r := newTestController(t, "linux")
	out, err := c.OpenApp(ctx, "firefox --private-window")
	require.NoError(t, err)
	require.Equal(t, "Opened: firefox --private-window", out)
	require.Equal(t, call{detached: true, name: "sh", args: []string{"-c", "firefox --private-window"}}, r.last(t))

	c, r = newTestController(t, "windows")
	_, err = c.OpenApp(ctx, "notepad")
	require.NoError(t, err)
	require.Equal(t, call{detached: true, name: "cmd", args: []string{"/C", "notepad"}}, r.last(t))
}

func TestAllowedApps(t *testing.T) {
	c, r := newTestController(t, "linux", "firefox*", "code")
	ctx := context.Background()

	require.True(t, c.Allowed("/usr/bin/Firefox-esr --new-tab"))
	require.True(t, c.Allowed("code ."))
	require.False(t, c.Allowed("rm -rf /"))

	_, err := c.OpenApp(ctx, "rm -rf /")
	require.ErrorIs(t, err, ErrAppNotAllowed)
	require.Empty(t, r.calls)

	_, err = c.CloseApp(ctx, "bash")
	require.ErrorIs(t, err, ErrAppNotAllowed)
}

func TestAllowedApps_BadPattern(t *testing.T) {
	_, err := newController(config.AutomationConfig{AllowedApps: []string{"[unclosed"}}, &fakeRunner{}, "linux")
	require.Error(t, err)
}

func TestCloseApp_IgnoresKillFailure(t *testing.T) {
	c, r := newTestController(t, "linux")
	r.RunFunc = func(string, ...string) error { return errors.New("no process found") }

	out, err := c.CloseApp(context.Background(), "vlc")
	require.NoError(t, err)
	require.Equal(t, "Closed: vlc", out)
	require.Equal(t, call{name: "pkill", args: []string{"-f", "vlc"}}, r.last(t))

	c, r = newTestController(t, "windows")
	_, err = c.CloseApp(context.Background(), "vlc.exe")
	require.NoError(t, err)
	require.Equal(t, []string{"/IM", "vlc.exe", "/F"}, r.last(t).args)
}

func TestSetVolume_ClampsAndPicksBackend(t *testing.T) {
	ctx := context.Background()
	tests := []struct {
		goos  string
		level int
		want  call
		reply string
	}{
		{"linux", 150, call{name: "amixer", args: []string{"-q", "sset", "Master", "100%"}}, "Volume set to 100%."},
		{"windows", 50, call{name: "nircmd.exe", args: []string{"setsysvolume", "32767"}}, "Volume set to 50%."},
		{"darwin", -4, call{name: "osascript", args: []string{"-e", "set volume output volume 0"}}, "Volume set to 0%."},
	}
	for _, tt := range tests {
		t.Run(tt.goos, func(t *testing.T) {
			c, r := newTestController(t, tt.goos)
			out, err := c.SetVolume(ctx, tt.level)
			require.NoError(t, err)
			require.Equal(t, tt.reply, out)
			require.Equal(t, tt.want, r.last(t))
		})
	}
}

func TestSetBrightness(t *testing.T) {
	c, r := newTestController(t, "linux")
	out, err := c.SetBrightness(context.Background(), 70)
	require.NoError(t, err)
	require.Equal(t, "Brightness set to 70%.", out)
	require.Equal(t, call{name: "brightnessctl", args: []string{"set", "70%"}}, r.last(t))

	c, r = newTestController(t, "windows")
	_, err = c.SetBrightness(context.Background(), 30)
	require.NoError(t, err)
	require.Contains(t, r.last(t).args[1], "WmiSetBrightness(1,30)")
}

func TestBackendMissing(t *testing.T) {
	c, r := newTestController(t, "linux")
	r.missing["brightnessctl"] = true

	_, err := c.SetBrightness(context.Background(), 10)
	require.ErrorIs(t, err, ErrBackendUnavailable)
	require.Empty(t, r.calls)
}

func TestInput(t *testing.T) {
	c, r := newTestController(t, "linux")
	ctx := context.Background()

	out, err := c.TypeText(ctx, "hello world")
	require.NoError(t, err)
	require.Equal(t, "Typed text.", out)
	require.Equal(t, call{name: "xdotool", args: []string{"type", "--delay", "12", "--", "hello world"}}, r.last(t))

	_, err = c.Hotkey(ctx, "ctrl", "shift", "t")
	require.NoError(t, err)
	require.Equal(t, []string{"key", "--", "ctrl+shift+t"}, r.last(t).args)

	_, err = c.Click(ctx, 120, 300)
	require.NoError(t, err)
	require.Equal(t, []string{"mousemove", "120", "300", "click", "1"}, r.last(t).args)

	r.missing["xdotool"] = true
	_, err = c.Press(ctx, "enter")
	require.ErrorIs(t, err, ErrInputUnavailable)
}

func TestGate(t *testing.T) {
	require.ErrorIs(t, Gate{Enabled: true}.Check(false), ErrNotConfirmed)
	require.ErrorIs(t, Gate{Enabled: false}.Check(false), ErrNotConfirmed, "confirmation is checked before the toggle")
	require.ErrorIs(t, Gate{Enabled: false}.Check(true), ErrAutomationDisabled)
	require.NoError(t, Gate{Enabled: true}.Check(true))
}

func decodeCommand(t *testing.T, body string) Command {
	t.Helper()
	var cmd Command
	require.NoError(t, json.Unmarshal([]byte(body), &cmd))
	return cmd
}

func TestExecute(t *testing.T) {
	c, r := newTestController(t, "linux")
	ctx := context.Background()

	out, err := c.Execute(ctx, decodeCommand(t, `{"action":"press","keys":["ctrl","c"],"confirm":true}`))
	require.NoError(t, err)
	require.Equal(t, "pressed", out["status"])
	require.Equal(t, []string{"key", "--", "ctrl+c"}, r.last(t).args)
	raw, err := json.Marshal(out)
	require.NoError(t, err)
	require.JSONEq(t, `{"status":"pressed","keys":["ctrl","c"]}`, string(raw))

	_, err = c.Execute(ctx, decodeCommand(t, `{"action":"press","keys":"enter"}`))
	require.NoError(t, err)
	require.Equal(t, []string{"key", "--", "enter"}, r.last(t).args)

	out, err = c.Execute(ctx, decodeCommand(t, `{"action":"click","x":5,"y":6}`))
	require.NoError(t, err)
	require.Equal(t, map[string]any{"status": "clicked", "x": 5, "y": 6}, out)

	out, err = c.Execute(ctx, decodeCommand(t, `{"action":"volume","level":120}`))
	require.NoError(t, err)
	require.Equal(t, 100, out["level"])

	_, err = c.Execute(ctx, decodeCommand(t, `{"action":"click","x":5}`))
	require.ErrorIs(t, err, ErrInvalidCommand)

	_, err = c.Execute(ctx, decodeCommand(t, `{"action":"press"}`))
	require.ErrorIs(t, err, ErrInvalidCommand)

	_, err = c.Execute(ctx, decodeCommand(t, `{"action":"reboot"}`))
	require.ErrorIs(t, err, ErrUnsupportedAction)
}

func TestKeys_RejectsOtherShapes(t *testing.T) {
	var cmd Command
	err := json.Unmarshal([]byte(`{"action":"press","keys":5}`), &cmd)
	require.ErrorIs(t, err, ErrInvalidCommand)
}

func TestInterpret(t *testing.T) {
	ctx := context.Background()
	tests := []struct {
		text  string
		reply string
		want  *call
	}{
		{"Open https://go.dev", "Opened path: https://go.dev", &call{detached: true, name: "xdg-open", args: []string{"https://go.dev"}}},
		{"open gedit", "Opened: gedit", &call{detached: true, name: "sh", args: []string{"-c", "gedit"}}},
		{"close gedit", "Closed: gedit", &call{name: "pkill", args: []string{"-f", "gedit"}}},
		{"set volume to 30", "Volume set to 30%.", &call{name: "amixer", args: []string{"-q", "sset", "Master", "30%"}}},
		{"volume up", "Volume set to 50%.", &call{name: "amixer", args: []string{"-q", "sset", "Master", "50%"}}},
		{"brightness please", "Brightness set to 70%.", &call{name: "brightnessctl", args: []string{"set", "70%"}}},
		{"type Hello There", "Typed text.", &call{name: "xdotool", args: []string{"type", "--delay", "12", "--", "Hello There"}}},
		{"press ctrl+s", "Pressed hotkey.", &call{name: "xdotool", args: []string{"key", "--", "ctrl+s"}}},
		{"click 120 300", "Clicked.", &call{name: "xdotool", args: []string{"mousemove", "120", "300", "click", "1"}}},
		{"click here", "Please provide click coordinates like: click 120 300.", nil},
		{"take a screenshot", "Please specify an action like open, close, volume, brightness, type, press, or click.", nil},
	}
	for _, tt := range tests {
		t.Run(tt.text, func(t *testing.T) {
			c, r := newTestController(t, "linux")
			require.Equal(t, tt.reply, c.Interpret(ctx, tt.text))
			if tt.want == nil {
				require.Empty(t, r.calls)
				return
			}
			require.Equal(t, *tt.want, r.last(t))
		})
	}
}

func TestInterpret_DescribesFailures(t *testing.T) {
	c, r := newTestController(t, "linux", "code")
	r.missing["xdotool"] = true

	require.Contains(t, c.Interpret(context.Background(), "type hi"), "xdotool")
	require.True(t, strings.HasPrefix(c.Interpret(context.Background(), "open steam"), "That app is not"))
}
