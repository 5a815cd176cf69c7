// Package runlog appends one JSON line per processed target per run. The log
// is an audit trail of raw extractions, kept separate from the metric store.
package runlog

import (
	"context"
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"sync"

	"github.com/jaeha-dev/music-metrics-crawler/internal/collect"
)

// Config captures the parameters for the file-backed run log.
type Config struct {
	// BaseDir is the directory where per-day, per-platform log files live.
	BaseDir string `mapstructure:"base_dir" yaml:"base_dir"`
}

// FileLogger appends entries to {base_dir}/{date}_{PLATFORM}.jsonl. Files are
// opened in append mode per write so a crashed run never truncates history.
type FileLogger struct {
	baseDir string
	mu      sync.Mutex
}

// New creates the file-backed run log, creating the base directory if needed.
func New(cfg Config) (*FileLogger, error) {
	if strings.TrimSpace(cfg.BaseDir) == "" {
		return nil, fmt.Errorf("run log base directory is required")
	}
	if err := os.MkdirAll(cfg.BaseDir, 0o750); err != nil {
		return nil, fmt.Errorf("create run log directory: %w", err)
	}
	return &FileLogger{baseDir: cfg.BaseDir}, nil
}

// Append writes one entry as a single JSON line. The entry schema is identical
// for every platform; metrics a platform does not expose are logged as null.
func (l *FileLogger) Append(_ context.Context, entry collect.RunLogEntry) error {
	if entry.ReqDate == "" {
		return fmt.Errorf("run log entry date is required")
	}
	if entry.Platform == "" {
		return fmt.Errorf("run log entry platform is required")
	}

	line, err := json.Marshal(entry)
	if err != nil {
		return fmt.Errorf("marshal run log entry: %w", err)
	}

	name := fmt.Sprintf("%s_%s.jsonl", entry.ReqDate, entry.Platform)
	path := filepath.Join(l.baseDir, name)

	l.mu.Lock()
	defer l.mu.Unlock()

	file, err := os.OpenFile(path, os.O_APPEND|os.O_CREATE|os.O_WRONLY, 0o600)
	if err != nil {
		return fmt.Errorf("open run log %s: %w", name, err)
	}
	defer file.Close()

	if _, err := file.Write(append(line, '\n')); err != nil {
		return fmt.Errorf("append run log %s: %w", name, err)
	}
	return nil
}

// Memory is an in-memory run log for tests.
type Memory struct {
	mu      sync.Mutex
	entries []collect.RunLogEntry
}

// NewMemory returns an empty in-memory run log.
func NewMemory() *Memory {
	return &Memory{}
}

// Append records the entry.
func (m *Memory) Append(_ context.Context, entry collect.RunLogEntry) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.entries = append(m.entries, entry)
	return nil
}

// Entries returns a copy of everything appended so far.
func (m *Memory) Entries() []collect.RunLogEntry {
	m.mu.Lock()
	defer m.mu.Unlock()
	out := make([]collect.RunLogEntry, len(m.entries))
	copy(out, m.entries)
	return out
}
