package analyzer

import (
	"loginsight/pkg/models"
)

// AnalyzeErrors clusters access log failures: one HIGH cluster per
// server error record carrying the count of server errors on that
// record's endpoint, then a single MEDIUM aggregate for 404s.
//
// Multiple server errors on one endpoint produce one cluster each, all
// with the same count. Consumers depend on that per-record shape, so it
// is kept as is; deduplicating to one cluster per endpoint would be a
// behavior change.
func (a *Analyzer) AnalyzeErrors() []models.ErrorCluster {
	clusters := []models.ErrorCluster{}

	serverErrors := filter(a.access, func(e models.AccessLogEntry) bool {
		return e.StatusCode >= 500
	})
	errorsByEndpoint := groupCount(serverErrors, func(e models.AccessLogEntry) string {
		return e.Endpoint
	})

	for _, e := range serverErrors {
		clusters = append(clusters, models.ErrorCluster{
			Severity:       models.SeverityHigh,
			ErrorType:      "500 Internal Server Error",
			Endpoint:       e.Endpoint,
			Count:          errorsByEndpoint[e.Endpoint],
			Recommendation: "Check PHP error logs for specific cause",
		})
	}

	notFound := filter(a.access, func(e models.AccessLogEntry) bool {
		return e.StatusCode == 404
	})
	if len(notFound) > 0 {
		clusters = append(clusters, models.ErrorCluster{
			Severity:       models.SeverityMedium,
			ErrorType:      "404 Not Found",
			Count:          len(notFound),
			Recommendation: "Fix broken links or implement proper routing",
		})
	}

	return clusters
}
