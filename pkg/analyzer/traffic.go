package analyzer

import (
	"loginsight/pkg/models"
)

const topListLimit = 5

// TrafficSummary aggregates the access log batch into an overview:
// totals, error rate as a percentage, and the busiest endpoints and
// source IPs. Lists are ordered by count descending, ties by name.
func (a *Analyzer) TrafficSummary() models.TrafficSummary {
	summary := models.TrafficSummary{
		TotalRequests: len(a.access),
		TopEndpoints:  []models.RankedCount{},
		TopIPs:        []models.RankedCount{},
	}
	if len(a.access) == 0 {
		return summary
	}

	for _, e := range a.access {
		if e.StatusCode >= 400 {
			summary.ErrorCount++
		}
	}
	summary.ErrorRate = float64(summary.ErrorCount) / float64(summary.TotalRequests) * 100

	endpoints := groupCount(a.access, func(e models.AccessLogEntry) string {
		return e.Endpoint
	})
	for _, p := range topCounts(endpoints, topListLimit) {
		summary.TopEndpoints = append(summary.TopEndpoints, models.RankedCount{Name: p.name, Count: p.count})
	}

	ips := groupCount(a.access, func(e models.AccessLogEntry) string {
		return e.IPAddress
	})
	for _, p := range topCounts(ips, topListLimit) {
		summary.TopIPs = append(summary.TopIPs, models.RankedCount{Name: p.name, Count: p.count})
	}

	return summary
}
