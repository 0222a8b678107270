package analyzer

import (
	"fmt"

	"loginsight/pkg/models"
)

// DetectAnomalies extracts high severity error log entries and agent
// termination attempts. Entries at or above the severity threshold each
// become a CRITICAL anomaly; agent kill codes are summarized into one
// HIGH anomaly with the "Various" timestamp placeholder.
func (a *Analyzer) DetectAnomalies() []models.Anomaly {
	anomalies := []models.Anomaly{}

	for _, e := range a.errors {
		if e.SeverityScore < a.cfg.MinSeverityScore {
			continue
		}
		anomalies = append(anomalies, models.Anomaly{
			Type:      e.ErrorCode,
			Severity:  models.SeverityCritical,
			Message:   e.ErrorMessage,
			Timestamp: e.Timestamp.Format(timeLayout),
		})
	}

	agentKills := 0
	for _, e := range a.errors {
		if e.ErrorCode == a.cfg.AgentKillCode {
			agentKills++
		}
	}
	if agentKills > 0 {
		anomalies = append(anomalies, models.Anomaly{
			Type:      "Suspicious Agent Activity",
			Severity:  models.SeverityHigh,
			Message:   fmt.Sprintf("%d agent termination attempts detected", agentKills),
			Timestamp: "Various",
		})
	}

	return anomalies
}
