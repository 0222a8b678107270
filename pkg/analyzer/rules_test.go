package analyzer

import (
	"os"
	"path/filepath"
	"testing"

	"loginsight/pkg/models"
)

func TestAgentRule_Match(t *testing.T) {
	rule := AgentRule{
		Name:     "test_rule",
		Patterns: []string{"sqlmap", "curl"},
	}
	if err := rule.Compile(); err != nil {
		t.Fatalf("unexpected error compiling rule: %v", err)
	}

	tests := []struct {
		agent     string
		matchWant bool
	}{
		{agent: "sqlmap/1.7.2", matchWant: true},
		{agent: "SQLMap/1.6", matchWant: true},
		{agent: "curl/8.0.1", matchWant: true},
		{agent: "Mozilla/5.0 (Windows NT 10.0)", matchWant: false},
		{agent: "", matchWant: false},
	}

	for _, tc := range tests {
		if got := rule.Match(tc.agent); got != tc.matchWant {
			t.Errorf("Match(%q): want %v, got %v", tc.agent, tc.matchWant, got)
		}
	}
}

func TestAgentRule_CompileNoPatterns(t *testing.T) {
	rule := AgentRule{Name: "empty"}
	if err := rule.Compile(); err == nil {
		t.Error("want error for rule without patterns, got nil")
	}
}

func TestLoadAgentRules(t *testing.T) {
	content := `rules:
  - name: scanner
    type: Vulnerability Scan
    severity: HIGH
    patterns: [nikto, nessus]
    recommendation: Block scanner IPs at the perimeter

  - name: crawler
    type: Aggressive Crawling
    severity: LOW
    patterns: [spider]
    aggregate: true
    summary: requests from crawlers
    recommendation: Serve crawlers from cache
`
	path := filepath.Join(t.TempDir(), "rules.yaml")
	if err := os.WriteFile(path, []byte(content), 0o644); err != nil {
		t.Fatal(err)
	}

	rules, err := LoadAgentRules(path)
	if err != nil {
		t.Fatalf("unexpected error loading rules: %v", err)
	}
	if len(rules) != 2 {
		t.Fatalf("want 2 rules, got %d", len(rules))
	}

	if rules[0].ThreatType != "Vulnerability Scan" {
		t.Errorf("want threat type %q, got %q", "Vulnerability Scan", rules[0].ThreatType)
	}
	if rules[0].Severity != models.SeverityHigh {
		t.Errorf("want severity %s, got %s", models.SeverityHigh, rules[0].Severity)
	}
	if !rules[0].Match("Nikto/2.5.0") {
		t.Error("want loaded rule to match Nikto user agent")
	}
	if !rules[1].Aggregate {
		t.Error("want crawler rule to be aggregate")
	}
}

func TestLoadAgentRulesInvalid(t *testing.T) {
	tests := []struct {
		name    string
		content string
	}{
		{name: "empty file", content: ""},
		{name: "no rules key", content: "thresholds:\n  foo: 1\n"},
		{name: "bad regex", content: "rules:\n  - name: broken\n    patterns: [\"[\"]\n"},
		{name: "not yaml", content: "{{{{"},
	}

	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			path := filepath.Join(t.TempDir(), "rules.yaml")
			if err := os.WriteFile(path, []byte(tc.content), 0o644); err != nil {
				t.Fatal(err)
			}
			if _, err := LoadAgentRules(path); err == nil {
				t.Error("want error, got nil")
			}
		})
	}
}

func TestRuleSet_Replace(t *testing.T) {
	set := NewRuleSet(DefaultAgentRules())
	if got := len(set.Rules()); got != 2 {
		t.Fatalf("want 2 default rules, got %d", got)
	}

	replacement := []AgentRule{{
		Name:       "only",
		ThreatType: "Only Rule",
		Severity:   models.SeverityMedium,
		Patterns:   []string{"x"},
	}}
	if err := replacement[0].Compile(); err != nil {
		t.Fatal(err)
	}

	set.Replace(replacement)
	rules := set.Rules()
	if len(rules) != 1 {
		t.Fatalf("want 1 rule after replace, got %d", len(rules))
	}
	if rules[0].ThreatType != "Only Rule" {
		t.Errorf("want rule type %q, got %q", "Only Rule", rules[0].ThreatType)
	}

	// Snapshot must not alias the internal slice.
	rules[0].ThreatType = "mutated"
	if set.Rules()[0].ThreatType != "Only Rule" {
		t.Error("mutating a snapshot changed the rule set")
	}
}
