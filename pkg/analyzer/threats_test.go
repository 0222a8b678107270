package analyzer

import (
	"testing"

	"loginsight/pkg/models"
)

func TestAnalyzer_DetectThreatsBruteForce(t *testing.T) {
	tests := []struct {
		name        string
		failures    int
		threatsWant int
	}{
		{name: "below threshold", failures: 2, threatsWant: 0},
		{name: "at threshold", failures: 3, threatsWant: 1},
		{name: "above threshold", failures: 7, threatsWant: 1},
	}

	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			var access []models.AccessLogEntry
			for i := 0; i < tc.failures; i++ {
				access = append(access, accessEntry("192.168.1.50", "/login", 401, 100, "Mozilla/5.0"))
			}

			a := New(access, nil, DefaultConfig())
			threats := a.DetectThreats()
			if len(threats) != tc.threatsWant {
				t.Fatalf("want %d threats, got %d", tc.threatsWant, len(threats))
			}
			if tc.threatsWant == 0 {
				return
			}

			th := threats[0]
			if th.Type != "Brute Force Attack" {
				t.Errorf("want threat type %q, got %q", "Brute Force Attack", th.Type)
			}
			if th.Severity != models.SeverityHigh {
				t.Errorf("want severity %s, got %s", models.SeverityHigh, th.Severity)
			}
			wantDetails := "3 failed login attempts from IP 192.168.1.50"
			if tc.failures == 7 {
				wantDetails = "7 failed login attempts from IP 192.168.1.50"
			}
			if th.Details != wantDetails {
				t.Errorf("want details %q, got %q", wantDetails, th.Details)
			}
			if th.Recommendation != "Block IP 192.168.1.50 and enable rate limiting" {
				t.Errorf("got unexpected recommendation %q", th.Recommendation)
			}
		})
	}
}

// Two offending IPs produce two findings, ordered by IP.
func TestAnalyzer_DetectThreatsBruteForceMultipleIPs(t *testing.T) {
	var access []models.AccessLogEntry
	for i := 0; i < 4; i++ {
		access = append(access, accessEntry("10.0.0.9", "/login", 401, 100, "Mozilla/5.0"))
	}
	for i := 0; i < 3; i++ {
		access = append(access, accessEntry("10.0.0.1", "/login", 401, 100, "Mozilla/5.0"))
	}

	a := New(access, nil, DefaultConfig())
	threats := a.DetectThreats()
	if len(threats) != 2 {
		t.Fatalf("want 2 threats, got %d", len(threats))
	}
	if threats[0].Details != "3 failed login attempts from IP 10.0.0.1" {
		t.Errorf("got first threat details %q", threats[0].Details)
	}
	if threats[1].Details != "4 failed login attempts from IP 10.0.0.9" {
		t.Errorf("got second threat details %q", threats[1].Details)
	}
}

// Injection tooling is reported once per matching record.
func TestAnalyzer_DetectThreatsInjectionPerRecord(t *testing.T) {
	access := []models.AccessLogEntry{
		accessEntry("172.16.0.1", "/search", 200, 80, "sqlmap/1.7.2"),
		accessEntry("172.16.0.2", "/search", 200, 85, "SQLMap/1.6"),
		accessEntry("172.16.0.3", "/products", 200, 90, "Mozilla/5.0"),
	}

	a := New(access, nil, DefaultConfig())
	threats := a.DetectThreats()

	var injections []models.Threat
	for _, th := range threats {
		if th.Type == "SQL Injection Attempt" {
			injections = append(injections, th)
		}
	}
	if len(injections) != 2 {
		t.Fatalf("want 2 injection threats, got %d", len(injections))
	}
	if injections[0].Severity != models.SeverityMedium {
		t.Errorf("want severity %s, got %s", models.SeverityMedium, injections[0].Severity)
	}
	wantDetails := "Suspicious tool detected: sqlmap/1.7.2 from 172.16.0.1"
	if injections[0].Details != wantDetails {
		t.Errorf("want details %q, got %q", wantDetails, injections[0].Details)
	}
}

// Bot traffic collapses into a single aggregate finding.
func TestAnalyzer_DetectThreatsBotAggregate(t *testing.T) {
	access := []models.AccessLogEntry{
		accessEntry("10.1.0.1", "/", 200, 40, "Googlebot/2.1"),
		accessEntry("10.1.0.2", "/", 200, 45, "python-requests/2.31"),
		accessEntry("10.1.0.3", "/", 200, 50, "curl/8.0"),
		accessEntry("10.1.0.4", "/", 200, 55, "Mozilla/5.0"),
	}

	a := New(access, nil, DefaultConfig())
	threats := a.DetectThreats()

	var bots []models.Threat
	for _, th := range threats {
		if th.Type == "Automated Bot Activity" {
			bots = append(bots, th)
		}
	}
	if len(bots) != 1 {
		t.Fatalf("want 1 bot threat, got %d", len(bots))
	}
	if bots[0].Severity != models.SeverityLow {
		t.Errorf("want severity %s, got %s", models.SeverityLow, bots[0].Severity)
	}
	if bots[0].Details != "3 requests from automated tools" {
		t.Errorf("got details %q", bots[0].Details)
	}
}

// curl sits in both rule pattern lists and must trigger both rules.
func TestAnalyzer_DetectThreatsCurlMatchesBothRules(t *testing.T) {
	access := []models.AccessLogEntry{
		accessEntry("10.2.0.1", "/api", 200, 60, "curl/7.88"),
	}

	a := New(access, nil, DefaultConfig())
	threats := a.DetectThreats()
	if len(threats) != 2 {
		t.Fatalf("want 2 threats, got %d: %+v", len(threats), threats)
	}
	if threats[0].Type != "SQL Injection Attempt" {
		t.Errorf("want first threat type %q, got %q", "SQL Injection Attempt", threats[0].Type)
	}
	if threats[1].Type != "Automated Bot Activity" {
		t.Errorf("want second threat type %q, got %q", "Automated Bot Activity", threats[1].Type)
	}
}

func TestAnalyzer_DetectThreatsCustomThreshold(t *testing.T) {
	access := []models.AccessLogEntry{
		accessEntry("10.3.0.1", "/login", 401, 100, "Mozilla/5.0"),
		accessEntry("10.3.0.1", "/login", 401, 100, "Mozilla/5.0"),
	}

	cfg := DefaultConfig()
	cfg.BruteForceThreshold = 2

	a := New(access, nil, cfg)
	threats := a.DetectThreats()
	if len(threats) != 1 {
		t.Fatalf("want 1 threat with threshold 2, got %d", len(threats))
	}
}
