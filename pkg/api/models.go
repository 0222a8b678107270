package api

import "encoding/json"

// IntentRequest is the envelope of every gateway call: a whitelisted
// intent name plus handler specific parameters.
type IntentRequest struct {
	Intent string          `json:"intent"`
	Params json.RawMessage `json:"params,omitempty"`
}

// Response is the externally documented envelope: request_id for
// tracing, success flag, and either data or a generic error message.
type Response struct {
	RequestID string                 `json:"request_id"`
	Success   bool                   `json:"success"`
	Data      map[string]interface{} `json:"data,omitempty"`
	Error     string                 `json:"error,omitempty"`
}

// queryParams are the shared parameters of the retrieval and analysis
// intents. Times use the "2006-01-02 15:04:05" layout or RFC 3339.
type queryParams struct {
	StartTime   string   `json:"start_time,omitempty"`
	EndTime     string   `json:"end_time,omitempty"`
	Limit       int      `json:"limit,omitempty"`
	IPAddress   string   `json:"ip_address,omitempty"`
	StatusCode  int      `json:"status_code,omitempty"`
	ThresholdMs *float64 `json:"threshold_ms,omitempty"`
	MinSeverity *int     `json:"min_severity,omitempty"`
}

// storeAccessParams mirrors models.AccessLogEntry with a string
// timestamp so callers are not forced into RFC 3339.
type storeAccessParams struct {
	Timestamp      string  `json:"timestamp"`
	IPAddress      string  `json:"ip_address"`
	Method         string  `json:"method"`
	Endpoint       string  `json:"endpoint"`
	HTTPVersion    string  `json:"http_version,omitempty"`
	StatusCode     int     `json:"status_code"`
	ResponseSize   int     `json:"response_size,omitempty"`
	ResponseTimeMs float64 `json:"response_time_ms,omitempty"`
	UserAgent      string  `json:"user_agent,omitempty"`
	Department     string  `json:"department,omitempty"`
	UserID         string  `json:"user_id,omitempty"`
}

type storeErrorParams struct {
	Timestamp     string `json:"timestamp"`
	LogLevel      string `json:"log_level"`
	ProcessID     int    `json:"process_id,omitempty"`
	ThreadID      int    `json:"thread_id,omitempty"`
	ClientIP      string `json:"client_ip,omitempty"`
	ErrorCode     string `json:"error_code"`
	ErrorMessage  string `json:"error_message"`
	FilePath      string `json:"file_path,omitempty"`
	LineNumber    int    `json:"line_number,omitempty"`
	SeverityScore int    `json:"severity_score,omitempty"`
}
