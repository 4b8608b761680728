package tools

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
)

// ErrInvalidArgs is returned when a tool's JSON arguments do not decode.
var ErrInvalidArgs = errors.New("invalid tool arguments")

// Param describes one argument of a tool.
type Param struct {
	Name        string
	Type        string // "string", "number" or "boolean"
	Description string
	Required    bool
}

// Tool is the interface for all tools
type Tool interface {
	Name() string
	Description() string
	Params() []Param
	// Run executes the tool with JSON-encoded arguments and returns text.
	Run(ctx context.Context, args string) (string, error)
}

func decodeArgs(args string, v any) error {
	if args == "" {
		args = "{}"
	}
	if err := json.Unmarshal([]byte(args), v); err != nil {
		return fmt.Errorf("%w: %v", ErrInvalidArgs, err)
	}
	return nil
}

func encodeResult(v any) (string, error) {
	out, err := json.Marshal(v)
	if err != nil {
		return "", err
	}
	return string(out), nil
}
