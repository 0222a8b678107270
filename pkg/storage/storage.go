// Package storage defines the log store contract shared by all
// backends. Stores hand the engine ordered, read-only batches; any
// record that cannot be decoded into the model types aborts the fetch
// rather than reaching the engine.
package storage

import (
	"context"
	"fmt"
	"time"

	"loginsight/pkg/models"
)

var (
	ErrConnectDB       = fmt.Errorf("unable to establish DB connection")
	ErrDBNotResponding = fmt.Errorf("DB not responding")
)

const (
	// DefaultLimit caps a fetch when the caller supplies no limit.
	DefaultLimit = 100
	// MaxLimit is the hard row cap per fetch; it bounds the engine's
	// worst case CPU cost, which is quadratic in batch size for two of
	// the detectors.
	MaxLimit = 1000
)

// Query selects a time bounded slice of a log table. Zero times leave
// that side of the range open. Limit of 0 means DefaultLimit.
type Query struct {
	From  time.Time
	To    time.Time
	Limit int
}

// Cap returns the effective row limit for the query.
func (q Query) Cap() int {
	switch {
	case q.Limit <= 0:
		return DefaultLimit
	case q.Limit > MaxLimit:
		return MaxLimit
	}
	return q.Limit
}

// Store is the log store collaborator. Fetches return records ordered
// by timestamp descending and are safe for concurrent use.
type Store interface {
	AddAccessLog(ctx context.Context, entry models.AccessLogEntry) error
	AddAccessLogs(ctx context.Context, entries []models.AccessLogEntry) error
	AddErrorLog(ctx context.Context, entry models.ErrorLogEntry) error
	AddErrorLogs(ctx context.Context, entries []models.ErrorLogEntry) error

	AccessLogs(ctx context.Context, q Query) ([]models.AccessLogEntry, error)
	ErrorLogs(ctx context.Context, q Query) ([]models.ErrorLogEntry, error)

	Ping(ctx context.Context) error
	Close(ctx context.Context) error
}
