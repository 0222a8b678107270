// Package models holds the log record types consumed by the analysis
// engine and the finding types it produces.
package models

import (
	"time"
)

// AccessLogEntry is a single parsed web access log record.
// Entries are immutable once read from the store.
type AccessLogEntry struct {
	ID             int64     `json:"id,omitempty" bson:"id,omitempty"`
	Timestamp      time.Time `json:"timestamp" bson:"timestamp"`
	IPAddress      string    `json:"ip_address" bson:"ip_address"`
	Method         string    `json:"method" bson:"method"`
	Endpoint       string    `json:"endpoint" bson:"endpoint"`
	HTTPVersion    string    `json:"http_version,omitempty" bson:"http_version,omitempty"`
	StatusCode     int       `json:"status_code" bson:"status_code"`
	ResponseSize   int       `json:"response_size,omitempty" bson:"response_size,omitempty"`
	ResponseTimeMs float64   `json:"response_time_ms,omitempty" bson:"response_time_ms,omitempty"`
	UserAgent      string    `json:"user_agent,omitempty" bson:"user_agent,omitempty"`
	Department     string    `json:"department,omitempty" bson:"department,omitempty"`
	UserID         string    `json:"user_id,omitempty" bson:"user_id,omitempty"`
}

// ErrorLogEntry is a single parsed application error log record.
type ErrorLogEntry struct {
	ID            int64     `json:"id,omitempty" bson:"id,omitempty"`
	Timestamp     time.Time `json:"timestamp" bson:"timestamp"`
	LogLevel      string    `json:"log_level" bson:"log_level"`
	ProcessID     int       `json:"process_id,omitempty" bson:"process_id,omitempty"`
	ThreadID      int       `json:"thread_id,omitempty" bson:"thread_id,omitempty"`
	ClientIP      string    `json:"client_ip,omitempty" bson:"client_ip,omitempty"`
	ErrorCode     string    `json:"error_code" bson:"error_code"`
	ErrorMessage  string    `json:"error_message" bson:"error_message"`
	FilePath      string    `json:"file_path,omitempty" bson:"file_path,omitempty"`
	LineNumber    int       `json:"line_number,omitempty" bson:"line_number,omitempty"`
	SeverityScore int       `json:"severity_score" bson:"severity_score"`
}

// Severity is an ordered qualitative rank attached to every finding.
type Severity string

const (
	SeverityLow      Severity = "LOW"
	SeverityMedium   Severity = "MEDIUM"
	SeverityHigh     Severity = "HIGH"
	SeverityCritical Severity = "CRITICAL"
)

// Rank returns the numeric position of the severity, LOW being lowest.
// Unknown severities rank below LOW.
func (s Severity) Rank() int {
	switch s {
	case SeverityLow:
		return 1
	case SeverityMedium:
		return 2
	case SeverityHigh:
		return 3
	case SeverityCritical:
		return 4
	}
	return 0
}

// FindingKind discriminates the finding variants produced by the engine.
type FindingKind string

const (
	KindThreat           FindingKind = "threat"
	KindErrorCluster     FindingKind = "error_cluster"
	KindPerformanceIssue FindingKind = "performance_issue"
	KindAnomaly          FindingKind = "anomaly"
)

// Finding is the tagged union over the four finding types. Consumers
// that receive mixed finding lists switch on Kind.
type Finding interface {
	Kind() FindingKind
}

// Threat is a detected security threat.
type Threat struct {
	Severity       Severity `json:"severity"`
	Type           string   `json:"type"`
	Details        string   `json:"details"`
	Recommendation string   `json:"recommendation"`
}

func (Threat) Kind() FindingKind { return KindThreat }

// ErrorCluster groups access log errors by type and endpoint.
type ErrorCluster struct {
	Severity       Severity `json:"severity"`
	ErrorType      string   `json:"error_type"`
	Endpoint       string   `json:"endpoint,omitempty"`
	Count          int      `json:"count"`
	Recommendation string   `json:"recommendation"`
}

func (ErrorCluster) Kind() FindingKind { return KindErrorCluster }

// PerformanceIssue flags a slow request and the response time profile
// of its endpoint.
type PerformanceIssue struct {
	Severity           Severity `json:"severity"`
	Endpoint           string   `json:"endpoint"`
	AvgResponseTimeMs  float64  `json:"avg_response_time_ms"`
	PeakResponseTimeMs float64  `json:"peak_response_time_ms"`
	Optimization       string   `json:"optimization"`
}

func (PerformanceIssue) Kind() FindingKind { return KindPerformanceIssue }

// Anomaly is an unusual pattern extracted from the error logs.
// Timestamp is a display string: either the formatted entry timestamp
// or "Various" for findings aggregated across many entries.
type Anomaly struct {
	Type      string   `json:"type"`
	Severity  Severity `json:"severity"`
	Message   string   `json:"message"`
	Timestamp string   `json:"timestamp"`
}

func (Anomaly) Kind() FindingKind { return KindAnomaly }

// RankedCount is a name/count pair for top-N traffic lists.
type RankedCount struct {
	Name  string `json:"name"`
	Count int    `json:"count"`
}

// TrafficSummary is an aggregate overview of one access log batch.
type TrafficSummary struct {
	TotalRequests int           `json:"total_requests"`
	ErrorCount    int           `json:"error_count"`
	ErrorRate     float64       `json:"error_rate"`
	TopEndpoints  []RankedCount `json:"top_endpoints"`
	TopIPs        []RankedCount `json:"top_ips"`
}
