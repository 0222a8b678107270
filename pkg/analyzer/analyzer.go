// Package analyzer is the log analysis engine: stateless rule
// evaluators that turn a batch of access and error log records into
// typed findings (threats, error clusters, performance issues,
// anomalies).
//
// An Analyzer is built per request from an already fetched, read-only
// batch and holds no state between calls. Every method is a pure
// function of the batch plus the configured thresholds, so calls may
// run concurrently on the same instance without synchronization.
package analyzer

import (
	"loginsight/pkg/models"
)

// timeLayout is the display format used in anomaly findings.
const timeLayout = "2006-01-02 15:04:05"

// Analyzer evaluates one immutable snapshot of log records.
type Analyzer struct {
	access []models.AccessLogEntry
	errors []models.ErrorLogEntry
	cfg    Config
}

// New builds a per-request analyzer over the given batches. Both may be
// empty. The analyzer reads but never mutates the slices.
func New(access []models.AccessLogEntry, errors []models.ErrorLogEntry, cfg Config) *Analyzer {
	return &Analyzer{
		access: access,
		errors: errors,
		cfg:    cfg,
	}
}

func filter[T any](records []T, keep func(T) bool) []T {
	var out []T
	for _, r := range records {
		if keep(r) {
			out = append(out, r)
		}
	}
	return out
}
