package analyzer

import (
	"fmt"

	"loginsight/pkg/models"
)

// DetectThreats scans the access log batch for brute force attempts and
// suspicious user agents. Brute force findings come first, ordered by
// IP, followed by the configured agent rules in registry order.
func (a *Analyzer) DetectThreats() []models.Threat {
	threats := []models.Threat{}

	failedLogins := filter(a.access, func(e models.AccessLogEntry) bool {
		return e.StatusCode == 401
	})
	failuresByIP := groupCount(failedLogins, func(e models.AccessLogEntry) string {
		return e.IPAddress
	})

	for _, ip := range sortedKeys(failuresByIP) {
		count := failuresByIP[ip]
		if count < a.cfg.BruteForceThreshold {
			continue
		}
		threats = append(threats, models.Threat{
			Severity:       models.SeverityHigh,
			Type:           "Brute Force Attack",
			Details:        fmt.Sprintf("%d failed login attempts from IP %s", count, ip),
			Recommendation: fmt.Sprintf("Block IP %s and enable rate limiting", ip),
		})
	}

	for _, rule := range a.cfg.Rules {
		matched := filter(a.access, func(e models.AccessLogEntry) bool {
			return rule.Match(e.UserAgent)
		})
		if len(matched) == 0 {
			continue
		}

		if rule.Aggregate {
			// Noisy categories stay compact: one finding per batch.
			threats = append(threats, models.Threat{
				Severity:       rule.Severity,
				Type:           rule.ThreatType,
				Details:        fmt.Sprintf("%d %s", len(matched), rule.Summary),
				Recommendation: rule.Recommendation,
			})
			continue
		}

		// Rarer categories keep forensic detail: one finding per record.
		for _, e := range matched {
			threats = append(threats, models.Threat{
				Severity:       rule.Severity,
				Type:           rule.ThreatType,
				Details:        fmt.Sprintf("Suspicious tool detected: %s from %s", e.UserAgent, e.IPAddress),
				Recommendation: rule.Recommendation,
			})
		}
	}

	return threats
}
