package api

import (
	"os"
	"strings"

	"loginsight/pkg/analyzer"
)

const defaultMaxPayloadBytes = 1 << 20 // 1MB

// Config carries the gateway settings: accepted API keys, the request
// payload cap, detection thresholds, and the live rule set shared with
// the rule file watcher.
type Config struct {
	APIKeys         []string
	MaxPayloadBytes int64
	Analyzer        analyzer.Config
	Rules           *analyzer.RuleSet
}

// NewConfig builds a gateway config with defaults: keys from the
// comma-separated API_KEYS environment variable (supports rotation),
// stock thresholds and rules.
func NewConfig() Config {
	return Config{
		APIKeys:         keysFromEnv(),
		MaxPayloadBytes: defaultMaxPayloadBytes,
		Analyzer:        analyzer.DefaultConfig(),
		Rules:           analyzer.NewRuleSet(analyzer.DefaultAgentRules()),
	}
}

func keysFromEnv() []string {
	raw := os.Getenv("API_KEYS")
	if raw == "" {
		return nil
	}

	var keys []string
	for _, k := range strings.Split(raw, ",") {
		if k = strings.TrimSpace(k); k != "" {
			keys = append(keys, k)
		}
	}
	return keys
}
