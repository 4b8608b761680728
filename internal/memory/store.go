package memory

// Long-term memory is kept in a small SQLite table inside the memory directory.
// The database is opened lazily on first use. If it cannot be opened or
// migrated, records are kept in process memory instead. Query failures on an
// open database are returned to the caller.

import (
	"context"
	"database/sql"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"sync"
	"time"

	_ "github.com/glebarez/go-sqlite"

	"github.com/comigor/jarvis-assistant/internal/logger"
)

// StoreFile is the SQLite file name inside a memory directory.
const StoreFile = "jarvis_memory.sqlite3"

// Long-term memory categories.
const (
	CategoryPreference = "preference"
	CategoryCommand    = "command"
	CategoryStyle      = "style"
)

// migrations run in order on every open; each must be idempotent.
var migrations = []string{
	`CREATE TABLE IF NOT EXISTS memories (
		id INTEGER PRIMARY KEY AUTOINCREMENT,
		timestamp TEXT NOT NULL,
		category TEXT NOT NULL,
		content TEXT NOT NULL
	);`,
	`CREATE INDEX IF NOT EXISTS idx_memories_category ON memories (category);`,
}

// Store is an insert-only categorized memory.
type Store struct {
	mu   sync.Mutex
	root string

	db      *sql.DB
	opened  bool
	initErr error

	fallback []Record
	nextID   int64
}

// NewStore returns a store rooted at dir. Nothing touches the disk until first use.
func NewStore(dir string) (*Store, error) {
	root, err := NormalizePath(dir)
	if err != nil {
		return nil, err
	}
	return &Store{root: root}, nil
}

// Root is the directory holding the database.
func (s *Store) Root() string {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.root
}

// SetRoot closes the current database and points the store at dir.
func (s *Store) SetRoot(dir string) error {
	root, err := NormalizePath(dir)
	if err != nil {
		return err
	}

	s.mu.Lock()
	defer s.mu.Unlock()
	s.closeLocked()
	s.root = root
	s.fallback = nil
	s.nextID = 0
	logger.L.Info("long-term memory re-pointed", "path", root)
	return nil
}

// Close releases the database handle.
func (s *Store) Close() error {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.closeLocked()
}

func (s *Store) closeLocked() error {
	var err error
	if s.db != nil {
		err = s.db.Close()
	}
	s.db = nil
	s.opened = false
	s.initErr = nil
	return err
}

// openLocked lazily opens the database and applies migrations.
func (s *Store) openLocked(ctx context.Context) {
	if s.opened {
		return
	}
	s.opened = true

	if err := os.MkdirAll(s.root, 0o750); err != nil {
		s.initErr = err
		logger.L.Warn("memory directory unavailable; using in-memory store", "path", s.root, "error", err)
		return
	}

	dbPath := filepath.Join(s.root, StoreFile)
	db, err := sql.Open("sqlite", "file:"+dbPath+"?_pragma=busy_timeout(10000)")
	if err != nil {
		s.initErr = err
		logger.L.Warn("sqlite open failed; using in-memory store", "path", dbPath, "error", err)
		return
	}
	for i, m := range migrations {
		if _, err := db.ExecContext(ctx, m); err != nil {
			db.Close()
			s.initErr = fmt.Errorf("migration %d: %w", i+1, err)
			logger.L.Warn("sqlite migration failed; using in-memory store", "path", dbPath, "error", s.initErr)
			return
		}
	}
	s.db = db
	logger.L.Info("long-term memory initialized", "path", dbPath)
}

// Save inserts one record and returns it with its assigned id.
func (s *Store) Save(ctx context.Context, category, content string) (Record, error) {
	category = strings.TrimSpace(category)
	if category == "" {
		return Record{}, fmt.Errorf("memory: category is required")
	}
	rec := Record{Timestamp: time.Now().UTC(), Category: category, Content: content}

	s.mu.Lock()
	defer s.mu.Unlock()
	s.openLocked(ctx)

	if s.db != nil {
		res, err := s.db.ExecContext(ctx,
			`INSERT INTO memories (timestamp, category, content) VALUES (?, ?, ?);`,
			rec.Timestamp.Format(time.RFC3339Nano), rec.Category, rec.Content)
		if err == nil {
			rec.ID, err = res.LastInsertId()
		}
		if err != nil {
			return Record{}, fmt.Errorf("memory: save %s: %w", category, err)
		}
		return rec, nil
	}

	s.nextID++
	rec.ID = s.nextID
	s.fallback = append(s.fallback, rec)
	return rec, nil
}

// Fetch returns every record in the given categories, oldest first.
func (s *Store) Fetch(ctx context.Context, categories ...string) ([]Record, error) {
	if len(categories) == 0 {
		return []Record{}, nil
	}

	s.mu.Lock()
	defer s.mu.Unlock()
	s.openLocked(ctx)

	if s.db == nil {
		out := []Record{}
		for _, r := range s.fallback {
			for _, c := range categories {
				if r.Category == c {
					out = append(out, r)
					break
				}
			}
		}
		return out, nil
	}

	placeholders := strings.TrimSuffix(strings.Repeat("?,", len(categories)), ",")
	args := make([]any, len(categories))
	for i, c := range categories {
		args[i] = c
	}

	rows, err := s.db.QueryContext(ctx,
		`SELECT id, timestamp, category, content FROM memories WHERE category IN (`+placeholders+`) ORDER BY id ASC;`,
		args...)
	if err != nil {
		return nil, fmt.Errorf("memory: fetch: %w", err)
	}
	defer rows.Close()

	out := []Record{}
	for rows.Next() {
		var (
			r  Record
			ts string
		)
		if err := rows.Scan(&r.ID, &ts, &r.Category, &r.Content); err != nil {
			return nil, fmt.Errorf("memory: scan: %w", err)
		}
		if r.Timestamp, err = parseTimestamp(ts); err != nil {
			logger.L.Warn("unreadable memory timestamp", "id", r.ID, "timestamp", ts, "error", err)
		}
		out = append(out, r)
	}
	return out, rows.Err()
}
