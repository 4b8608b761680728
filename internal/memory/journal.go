package memory

import (
	"bufio"
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"

	"github.com/comigor/jarvis-assistant/internal/logger"
)

// JournalFile is the file name of the append-only chat log inside a memory directory.
const JournalFile = "jarvis_memory.jsonl"

// DefaultRecentLimit is how many turns Recent returns when asked for zero.
const DefaultRecentLimit = 50

// Log is the narrow read/append surface over persisted chat turns.
type Log interface {
	Append(ctx context.Context, turns ...Turn) error
	Recent(ctx context.Context, limit int) ([]Turn, error)
}

// Journal is a line-delimited JSON chat log rooted at a user-chosen directory.
type Journal struct {
	dir string
}

var _ Log = (*Journal)(nil)

// OpenJournal returns the journal for dir. Nothing is created until the first Append.
func OpenJournal(dir string) (*Journal, error) {
	root, err := NormalizePath(dir)
	if err != nil {
		return nil, err
	}
	return &Journal{dir: root}, nil
}

// Dir is the normalized directory of the journal.
func (j *Journal) Dir() string { return j.dir }

func (j *Journal) path() string { return filepath.Join(j.dir, JournalFile) }

// Append writes the turns as one write so concurrent requests do not interleave lines.
func (j *Journal) Append(_ context.Context, turns ...Turn) error {
	if len(turns) == 0 {
		return nil
	}

	var buf bytes.Buffer
	enc := json.NewEncoder(&buf)
	enc.SetEscapeHTML(false)
	for _, t := range turns {
		if err := enc.Encode(t); err != nil {
			return fmt.Errorf("memory: encode turn: %w", err)
		}
	}

	if err := os.MkdirAll(j.dir, 0o750); err != nil {
		return fmt.Errorf("memory: init directory %s: %w", j.dir, err)
	}
	f, err := os.OpenFile(j.path(), os.O_CREATE|os.O_APPEND|os.O_WRONLY, 0o644)
	if err != nil {
		return fmt.Errorf("memory: open journal: %w", err)
	}
	defer f.Close()

	if _, err := f.Write(buf.Bytes()); err != nil {
		return fmt.Errorf("memory: append journal: %w", err)
	}
	return nil
}

// Recent returns the last limit turns in insertion order. A missing journal is empty.
func (j *Journal) Recent(_ context.Context, limit int) ([]Turn, error) {
	if limit <= 0 {
		limit = DefaultRecentLimit
	}

	f, err := os.Open(j.path())
	if errors.Is(err, fs.ErrNotExist) {
		return []Turn{}, nil
	}
	if err != nil {
		return nil, fmt.Errorf("memory: open journal: %w", err)
	}
	defer f.Close()

	var lines [][]byte
	sc := bufio.NewScanner(f)
	sc.Buffer(make([]byte, 0, 64*1024), 4*1024*1024)
	for sc.Scan() {
		line := bytes.TrimSpace(sc.Bytes())
		if len(line) == 0 {
			continue
		}
		lines = append(lines, bytes.Clone(line))
	}
	if err := sc.Err(); err != nil {
		return nil, fmt.Errorf("memory: read journal: %w", err)
	}

	if len(lines) > limit {
		lines = lines[len(lines)-limit:]
	}

	turns := make([]Turn, 0, len(lines))
	for _, line := range lines {
		var t Turn
		if err := json.Unmarshal(line, &t); err != nil {
			logger.L.Warn("skipping unreadable journal line", "path", j.path(), "error", err)
			continue
		}
		turns = append(turns, t)
	}
	return turns, nil
}
