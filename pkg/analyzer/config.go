package analyzer

// Config carries the detection thresholds and the user agent rule list
// for one analysis request. The zero value is not usable; start from
// DefaultConfig and override.
type Config struct {
	// BruteForceThreshold is the minimum number of 401 responses from a
	// single IP before a brute force threat is reported.
	BruteForceThreshold int

	// SlowRequestMs selects slow requests: response times strictly
	// greater than this qualify.
	SlowRequestMs float64

	// PeakAlertMs upgrades performance issues to HIGH when the peak
	// response time of the slow subset exceeds it.
	PeakAlertMs float64

	// MinSeverityScore is the inclusive error log severity score at
	// which an entry becomes a CRITICAL anomaly.
	MinSeverityScore int

	// AgentKillCode is the error code counted as agent termination
	// attempts.
	AgentKillCode string

	// Rules is the ordered user agent rule list applied by the threat
	// detector after the brute force check.
	Rules []AgentRule
}

// DefaultConfig returns the stock thresholds and agent rules.
func DefaultConfig() Config {
	return Config{
		BruteForceThreshold: 3,
		SlowRequestMs:       1000,
		PeakAlertMs:         3000,
		MinSeverityScore:    8,
		AgentKillCode:       "AGENT_KILL",
		Rules:               DefaultAgentRules(),
	}
}
