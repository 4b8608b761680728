package automation

import (
	"context"
	"errors"
	"regexp"
	"strconv"
	"strings"
)

// Defaults when a spoken or typed command names no level.
const (
	DefaultVolume     = 50
	DefaultBrightness = 70
)

var drivePath = regexp.MustCompile(`^[a-zA-Z]:\\`)

// Interpret parses a free-text control command and runs it. The reply is
// always user-facing text; failures are described rather than returned.
func (c *Controller) Interpret(ctx context.Context, text string) string {
	text = strings.TrimSpace(text)
	lowered := strings.ToLower(text)

	var (
		reply string
		err   error
	)
	switch {
	case strings.HasPrefix(lowered, "open "):
		target := strings.TrimSpace(text[len("open "):])
		if looksLikePath(target) {
			reply, err = c.OpenPath(ctx, target)
		} else {
			reply, err = c.OpenApp(ctx, target)
		}
	case strings.HasPrefix(lowered, "close "):
		reply, err = c.CloseApp(ctx, strings.TrimSpace(text[len("close "):]))
	case strings.Contains(lowered, "volume"):
		level, ok := firstNumber(lowered)
		if !ok {
			level = DefaultVolume
		}
		reply, err = c.SetVolume(ctx, level)
	case strings.Contains(lowered, "brightness"):
		level, ok := firstNumber(lowered)
		if !ok {
			level = DefaultBrightness
		}
		reply, err = c.SetBrightness(ctx, level)
	case strings.HasPrefix(lowered, "type "):
		reply, err = c.TypeText(ctx, strings.TrimSpace(text[len("type "):]))
	case strings.HasPrefix(lowered, "press "):
		keys := strings.TrimSpace(text[len("press "):])
		if strings.Contains(keys, "+") {
			reply, err = c.Hotkey(ctx, strings.Split(keys, "+")...)
		} else {
			reply, err = c.Press(ctx, keys)
		}
	case strings.HasPrefix(lowered, "click "):
		coords := strings.Fields(lowered[len("click "):])
		if len(coords) != 2 {
			return "Please provide click coordinates like: click 120 300."
		}
		x, errX := strconv.Atoi(coords[0])
		y, errY := strconv.Atoi(coords[1])
		if errX != nil || errY != nil || x < 0 || y < 0 {
			return "Please provide click coordinates like: click 120 300."
		}
		reply, err = c.Click(ctx, x, y)
	default:
		return "Please specify an action like open, close, volume, brightness, type, press, or click."
	}

	if err != nil {
		return describe(err)
	}
	return reply
}

func describe(err error) string {
	switch {
	case errors.Is(err, ErrInputUnavailable):
		return "Keyboard and mouse control needs xdotool installed."
	case errors.Is(err, ErrAppNotAllowed):
		return "That app is not in the allowed list."
	case errors.Is(err, ErrBackendUnavailable):
		return "That control is not available on this machine: " + err.Error()
	default:
		return "Sorry, that action failed: " + err.Error()
	}
}

func looksLikePath(target string) bool {
	lowered := strings.ToLower(target)
	return strings.HasPrefix(lowered, "http://") ||
		strings.HasPrefix(lowered, "https://") ||
		strings.HasPrefix(target, "~/") ||
		strings.HasPrefix(target, "/") ||
		drivePath.MatchString(target)
}

func firstNumber(text string) (int, bool) {
	for _, field := range strings.Fields(text) {
		field = strings.TrimSuffix(field, "%")
		if n, err := strconv.Atoi(field); err == nil && n >= 0 {
			return n, true
		}
	}
	return 0, false
}
