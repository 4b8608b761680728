package memory

import (
	"errors"
	"os"
	"path/filepath"
	"strings"
)

// ErrEmptyPath is returned when a memory directory is blank.
var ErrEmptyPath = errors.New("memory path is required")

// NormalizePath trims the path, expands a leading ~ and makes it absolute.
func NormalizePath(path string) (string, error) {
	path = strings.TrimSpace(path)
	if path == "" {
		return "", ErrEmptyPath
	}
	if path == "~" || strings.HasPrefix(path, "~/") || strings.HasPrefix(path, `~\`) {
		home, err := os.UserHomeDir()
		if err != nil {
			return "", err
		}
		path = filepath.Join(home, path[1:])
	}
	return filepath.Abs(path)
}
