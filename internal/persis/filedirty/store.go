// Package filedirty provides a file-based store for dirty records.
package filedirty

import (
	"bufio"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"sync"
	"time"

	"github.com/dagucloud/txtwriter/internal/cmn/fileutil"
	"github.com/dagucloud/txtwriter/internal/cmn/logger"
	"github.com/dagucloud/txtwriter/internal/cmn/logger/tag"
	"github.com/dagucloud/txtwriter/internal/core"
	"github.com/dagucloud/txtwriter/internal/runtime/dirty"
)

const (
	// dirPermissions is the permission mode for the store's parent directory.
	dirPermissions = 0750
	// maxLineSize bounds a single entry when reading the store back.
	maxLineSize = 16 * 1024 * 1024
)

// Entry is one dirty record as persisted, one JSON object per line.
type Entry struct {
	Task    string    `json:"task"`
	Time    time.Time `json:"time"`
	Columns []any     `json:"columns"`
	Error   string    `json:"error"`
}

// Store appends dirty records to a JSON lines file. It is safe for
// concurrent use by several tasks.
type Store struct {
	path string
	mu   sync.Mutex
	file *os.File
	now  func() time.Time
}

// New opens (or creates) the store file at path.
func New(path string) (*Store, error) {
	if path == "" {
		return nil, errors.New("filedirty: path cannot be empty")
	}
	if err := os.MkdirAll(filepath.Dir(path), dirPermissions); err != nil {
		return nil, fmt.Errorf("filedirty: failed to create directory for %s: %w", path, err)
	}
	f, err := fileutil.OpenOrCreateFile(path)
	if err != nil {
		return nil, fmt.Errorf("filedirty: %w", err)
	}
	return &Store{path: path, file: f, now: time.Now}, nil
}

// Path returns the store file path.
func (s *Store) Path() string {
	return s.path
}

// Append writes one entry.
func (s *Store) Append(entry Entry) error {
	data, err := json.Marshal(entry)
	if err != nil {
		return fmt.Errorf("filedirty: failed to marshal entry: %w", err)
	}

	s.mu.Lock()
	defer s.mu.Unlock()
	if s.file == nil {
		return errors.New("filedirty: store is closed")
	}
	if _, err := s.file.Write(append(data, '\n')); err != nil {
		return fmt.Errorf("filedirty: failed to write entry: %w", err)
	}
	return nil
}

// ForTask returns a collector that stamps entries with the task name.
func (s *Store) ForTask(task string) core.DirtyCollector {
	return &taskCollector{store: s, task: task}
}

// Close closes the store file. Further appends fail.
func (s *Store) Close() error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.file == nil {
		return nil
	}
	err := s.file.Close()
	s.file = nil
	return err
}

type taskCollector struct {
	store *Store
	task  string
}

// CollectDirtyRecord implements core.DirtyCollector. Write failures are
// logged, never returned.
func (c *taskCollector) CollectDirtyRecord(ctx context.Context, record *core.Record, cause error) {
	entry := Entry{
		Task:    c.task,
		Time:    c.store.now().UTC(),
		Columns: dirty.Values(record),
	}
	if cause != nil {
		entry.Error = cause.Error()
	}
	if err := c.store.Append(entry); err != nil {
		logger.Error(ctx, "Failed to persist dirty record", tag.File(c.store.path), tag.Error(err))
	}
}

// ReadAll reads every entry from the store file at path.
func ReadAll(path string) ([]Entry, error) {
	f, err := os.Open(path) //nolint:gosec // controlled path
	if err != nil {
		return nil, fmt.Errorf("filedirty: failed to open %s: %w", path, err)
	}
	defer func() { _ = f.Close() }()

	var entries []Entry
	scanner := bufio.NewScanner(f)
	scanner.Buffer(make([]byte, 0, 64*1024), maxLineSize)
	for scanner.Scan() {
		line := scanner.Bytes()
		if len(line) == 0 {
			continue
		}
		var e Entry
		if err := json.Unmarshal(line, &e); err != nil {
			return nil, fmt.Errorf("filedirty: malformed entry in %s: %w", path, err)
		}
		entries = append(entries, e)
	}
	if err := scanner.Err(); err != nil {
		return nil, fmt.Errorf("filedirty: failed to read %s: %w", path, err)
	}
	return entries, nil
}
