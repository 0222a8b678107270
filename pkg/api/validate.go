package api

import (
	"fmt"
	"net"
	"time"

	"loginsight/pkg/storage"
)

// allowedIntents is the whitelist; unknown intents are rejected before
// any handler runs.
var allowedIntents = map[string]struct{}{
	"get_access_logs":         {},
	"get_error_logs":          {},
	"store_access_log":        {},
	"store_error_log":         {},
	"get_traffic_summary":     {},
	"get_security_threats":    {},
	"get_performance_metrics": {},
	"get_anomalies":           {},
}

var timeLayouts = []string{
	"2006-01-02 15:04:05",
	time.RFC3339,
}

func validateIntent(intent string) error {
	if intent == "" {
		return fmt.Errorf("intent is required")
	}
	if _, ok := allowedIntents[intent]; !ok {
		return fmt.Errorf("unknown intent: %s", intent)
	}
	return nil
}

// parseTime accepts the original log layout or RFC 3339. Empty strings
// return the zero time (open range side).
func parseTime(s string) (time.Time, error) {
	if s == "" {
		return time.Time{}, nil
	}
	for _, layout := range timeLayouts {
		if t, err := time.Parse(layout, s); err == nil {
			return t, nil
		}
	}
	return time.Time{}, fmt.Errorf("invalid timestamp %q", s)
}

func validateLimit(limit int) error {
	if limit < 0 {
		return fmt.Errorf("limit must be positive")
	}
	if limit > storage.MaxLimit {
		return fmt.Errorf("limit exceeds maximum: %d", storage.MaxLimit)
	}
	return nil
}

func validateIPAddress(ip string) error {
	if ip == "" {
		return nil
	}
	if net.ParseIP(ip) == nil {
		return fmt.Errorf("invalid IP address %q", ip)
	}
	return nil
}

func validateStatusCode(code int) error {
	if code == 0 {
		return nil
	}
	if code < 100 || code > 599 {
		return fmt.Errorf("status code must be between 100 and 599")
	}
	return nil
}

// buildQuery validates the shared query parameters and converts them
// into a storage query.
func buildQuery(p queryParams) (storage.Query, error) {
	var q storage.Query
	var err error

	if q.From, err = parseTime(p.StartTime); err != nil {
		return q, err
	}
	if q.To, err = parseTime(p.EndTime); err != nil {
		return q, err
	}
	if err = validateLimit(p.Limit); err != nil {
		return q, err
	}
	if err = validateIPAddress(p.IPAddress); err != nil {
		return q, err
	}
	if err = validateStatusCode(p.StatusCode); err != nil {
		return q, err
	}
	q.Limit = p.Limit

	return q, nil
}
