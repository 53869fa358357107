package store

import (
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"sync"

	"github.com/mkal/tourbot/internal/models"
)

// AuditLog is the append-only ingestion report, persisted as a pretty-printed
// JSON array. The whole file is rewritten on each append, so all writes go
// through a single mutex; the format is not safe for concurrent writers from
// other processes.
type AuditLog struct {
	path string
	mu   sync.Mutex
}

func NewAuditLog(path string) *AuditLog {
	return &AuditLog{path: path}
}

// Append loads the existing entries, adds one, and writes the list back.
func (l *AuditLog) Append(entry models.AuditEntry) error {
	l.mu.Lock()
	defer l.mu.Unlock()

	entries, err := l.load()
	if err != nil {
		return err
	}
	entries = append(entries, entry)

	if dir := filepath.Dir(l.path); dir != "." {
		if err := os.MkdirAll(dir, 0o755); err != nil {
			return fmt.Errorf("create report directory: %w", err)
		}
	}

	data, err := json.MarshalIndent(entries, "", "  ")
	if err != nil {
		return fmt.Errorf("encode report: %w", err)
	}
	if err := os.WriteFile(l.path, data, 0o644); err != nil {
		return fmt.Errorf("write report: %w", err)
	}
	return nil
}

// Entries returns all recorded entries in ingestion order.
func (l *AuditLog) Entries() ([]models.AuditEntry, error) {
	l.mu.Lock()
	defer l.mu.Unlock()
	return l.load()
}

func (l *AuditLog) load() ([]models.AuditEntry, error) {
	data, err := os.ReadFile(l.path)
	if err != nil {
		if errors.Is(err, os.ErrNotExist) {
			return nil, nil
		}
		return nil, fmt.Errorf("read report: %w", err)
	}

	var entries []models.AuditEntry
	if err := json.Unmarshal(data, &entries); err != nil {
		return nil, fmt.Errorf("parse report: %w", err)
	}
	return entries, nil
}
