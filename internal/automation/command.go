package automation

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
)

// Served command actions.
const (
	ActionTypeText   = "type_text"
	ActionPress      = "press"
	ActionClick      = "click"
	ActionOpenApp    = "open_app"
	ActionCloseApp   = "close_app"
	ActionVolume     = "volume"
	ActionBrightness = "brightness"
	ActionOpenPath   = "open_path"
)

var (
	// ErrInvalidCommand means a required command field is missing or malformed.
	ErrInvalidCommand = errors.New("invalid command")
	// ErrUnsupportedAction means the action name is unknown.
	ErrUnsupportedAction = errors.New("unsupported action")
)

// Keys is a single key or a key combination. It decodes from a JSON string or list.
type Keys struct {
	Single string
	Combo  []string
}

func (k *Keys) UnmarshalJSON(data []byte) error {
	data = bytes.TrimSpace(data)
	if bytes.Equal(data, []byte("null")) {
		return nil
	}
	if len(data) > 0 && data[0] == '[' {
		if err := json.Unmarshal(data, &k.Combo); err != nil {
			return fmt.Errorf("%w: keys must be string or list", ErrInvalidCommand)
		}
		return nil
	}
	if err := json.Unmarshal(data, &k.Single); err != nil {
		return fmt.Errorf("%w: keys must be string or list", ErrInvalidCommand)
	}
	return nil
}

func (k Keys) MarshalJSON() ([]byte, error) {
	if k.Combo != nil {
		return json.Marshal(k.Combo)
	}
	return json.Marshal(k.Single)
}

// Command is a served automation request.
type Command struct {
	Action  string `json:"action"`
	Confirm bool   `json:"confirm"`
	Text    string `json:"text,omitempty"`
	Keys    *Keys  `json:"keys,omitempty"`
	X       *int   `json:"x,omitempty"`
	Y       *int   `json:"y,omitempty"`
	Command string `json:"command,omitempty"`
	Name    string `json:"name,omitempty"`
	Level   *int   `json:"level,omitempty"`
	Path    string `json:"path,omitempty"`
}

// Execute performs a command that already passed the Gate and reports what was done.
func (c *Controller) Execute(ctx context.Context, cmd Command) (map[string]any, error) {
	switch cmd.Action {
	case ActionTypeText:
		if _, err := c.TypeText(ctx, cmd.Text); err != nil {
			return nil, err
		}
		return map[string]any{"status": "typed", "text": cmd.Text}, nil

	case ActionPress:
		if cmd.Keys == nil || (cmd.Keys.Single == "" && len(cmd.Keys.Combo) == 0) {
			return nil, fmt.Errorf("%w: keys must be string or list", ErrInvalidCommand)
		}
		var err error
		if cmd.Keys.Combo != nil {
			_, err = c.Hotkey(ctx, cmd.Keys.Combo...)
		} else {
			_, err = c.Press(ctx, cmd.Keys.Single)
		}
		if err != nil {
			return nil, err
		}
		return map[string]any{"status": "pressed", "keys": cmd.Keys}, nil

	case ActionClick:
		if cmd.X == nil || cmd.Y == nil {
			return nil, fmt.Errorf("%w: x and y are required", ErrInvalidCommand)
		}
		if _, err := c.Click(ctx, *cmd.X, *cmd.Y); err != nil {
			return nil, err
		}
		return map[string]any{"status": "clicked", "x": *cmd.X, "y": *cmd.Y}, nil

	case ActionOpenApp:
		if cmd.Command == "" {
			return nil, fmt.Errorf("%w: command is required", ErrInvalidCommand)
		}
		if _, err := c.OpenApp(ctx, cmd.Command); err != nil {
			return nil, err
		}
		return map[string]any{"status": "opened", "command": cmd.Command}, nil

	case ActionCloseApp:
		if cmd.Name == "" {
			return nil, fmt.Errorf("%w: name is required", ErrInvalidCommand)
		}
		if _, err := c.CloseApp(ctx, cmd.Name); err != nil {
			return nil, err
		}
		return map[string]any{"status": "closed", "name": cmd.Name}, nil

	case ActionVolume, ActionBrightness:
		if cmd.Level == nil {
			return nil, fmt.Errorf("%w: level is required", ErrInvalidCommand)
		}
		set := c.SetVolume
		if cmd.Action == ActionBrightness {
			set = c.SetBrightness
		}
		if _, err := set(ctx, *cmd.Level); err != nil {
			return nil, err
		}
		return map[string]any{"status": cmd.Action, "level": clamp(*cmd.Level)}, nil

	case ActionOpenPath:
		if cmd.Path == "" {
			return nil, fmt.Errorf("%w: path is required", ErrInvalidCommand)
		}
		if _, err := c.OpenPath(ctx, cmd.Path); err != nil {
			return nil, err
		}
		return map[string]any{"status": "opened", "path": cmd.Path}, nil
	}
	return nil, ErrUnsupportedAction
}
