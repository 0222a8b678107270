// Package memdb is an in-memory log store used by tests and local runs.
package memdb

import (
	"context"
	"encoding/json"
	"os"
	"sort"
	"sync"
	"time"

	"loginsight/pkg/models"
	"loginsight/pkg/storage"
)

type Store struct {
	mu     sync.Mutex
	access []models.AccessLogEntry
	errors []models.ErrorLogEntry
}

func New() *Store {
	return &Store{}
}

func (db *Store) AddAccessLog(ctx context.Context, entry models.AccessLogEntry) error {
	db.mu.Lock()
	defer db.mu.Unlock()

	entry.ID = int64(len(db.access) + 1)
	db.access = append(db.access, entry)
	return nil
}

func (db *Store) AddAccessLogs(ctx context.Context, entries []models.AccessLogEntry) error {
	for _, e := range entries {
		if err := db.AddAccessLog(ctx, e); err != nil {
			return err
		}
	}
	return nil
}

func (db *Store) AddErrorLog(ctx context.Context, entry models.ErrorLogEntry) error {
	db.mu.Lock()
	defer db.mu.Unlock()

	entry.ID = int64(len(db.errors) + 1)
	db.errors = append(db.errors, entry)
	return nil
}

func (db *Store) AddErrorLogs(ctx context.Context, entries []models.ErrorLogEntry) error {
	for _, e := range entries {
		if err := db.AddErrorLog(ctx, e); err != nil {
			return err
		}
	}
	return nil
}

func (db *Store) AccessLogs(ctx context.Context, q storage.Query) ([]models.AccessLogEntry, error) {
	db.mu.Lock()
	matched := make([]models.AccessLogEntry, 0, len(db.access))
	for _, e := range db.access {
		if inRange(e.Timestamp, q) {
			matched = append(matched, e)
		}
	}
	db.mu.Unlock()

	sort.SliceStable(matched, func(i, j int) bool {
		return matched[i].Timestamp.After(matched[j].Timestamp)
	})

	if limit := q.Cap(); len(matched) > limit {
		matched = matched[:limit]
	}
	return matched, nil
}

func (db *Store) ErrorLogs(ctx context.Context, q storage.Query) ([]models.ErrorLogEntry, error) {
	db.mu.Lock()
	matched := make([]models.ErrorLogEntry, 0, len(db.errors))
	for _, e := range db.errors {
		if inRange(e.Timestamp, q) {
			matched = append(matched, e)
		}
	}
	db.mu.Unlock()

	sort.SliceStable(matched, func(i, j int) bool {
		return matched[i].Timestamp.After(matched[j].Timestamp)
	})

	if limit := q.Cap(); len(matched) > limit {
		matched = matched[:limit]
	}
	return matched, nil
}

func (db *Store) Ping(ctx context.Context) error { return nil }

func (db *Store) Close(ctx context.Context) error { return nil }

func inRange(ts time.Time, q storage.Query) bool {
	if !q.From.IsZero() && ts.Before(q.From) {
		return false
	}
	if !q.To.IsZero() && ts.After(q.To) {
		return false
	}
	return true
}

// LoadTestLogs reads sample log batches from a JSON file. Test helper.
func LoadTestLogs(path string) ([]models.AccessLogEntry, []models.ErrorLogEntry, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, nil, err
	}

	var sample struct {
		AccessLogs []models.AccessLogEntry `json:"access_logs"`
		ErrorLogs  []models.ErrorLogEntry  `json:"error_logs"`
	}
	if err := json.Unmarshal(data, &sample); err != nil {
		return nil, nil, err
	}

	return sample.AccessLogs, sample.ErrorLogs, nil
}
