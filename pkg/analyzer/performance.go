package analyzer

import (
	"loginsight/pkg/models"
)

// DetectPerformanceIssues reports every request slower than the
// configured threshold (strictly greater). Each issue carries the mean
// response time over all batch records for that record's endpoint and
// the peak response time of the whole slow subset; that single global
// peak also decides severity for every issue in the call.
func (a *Analyzer) DetectPerformanceIssues() []models.PerformanceIssue {
	issues := []models.PerformanceIssue{}

	slow := filter(a.access, func(e models.AccessLogEntry) bool {
		return e.ResponseTimeMs > a.cfg.SlowRequestMs
	})
	if len(slow) == 0 {
		return issues
	}

	peak := maxOf(slow, func(e models.AccessLogEntry) float64 {
		return e.ResponseTimeMs
	})
	severity := models.SeverityMedium
	if peak > a.cfg.PeakAlertMs {
		severity = models.SeverityHigh
	}

	for _, s := range slow {
		sameEndpoint := filter(a.access, func(e models.AccessLogEntry) bool {
			return e.Endpoint == s.Endpoint
		})
		avg := average(sameEndpoint, func(e models.AccessLogEntry) float64 {
			return e.ResponseTimeMs
		})

		issues = append(issues, models.PerformanceIssue{
			Severity:           severity,
			Endpoint:           s.Endpoint,
			AvgResponseTimeMs:  avg,
			PeakResponseTimeMs: peak,
			Optimization:       "Add database indexing or implement caching",
		})
	}

	return issues
}
