package analyzer

import (
	"context"
	"fmt"
	"os"
	"regexp"
	"strings"
	"sync"

	"github.com/fsnotify/fsnotify"
	log "github.com/sirupsen/logrus"
	"gopkg.in/yaml.v3"

	"loginsight/pkg/models"
)

// AgentRule is a named user agent detection rule. Patterns are joined
// into one case-insensitive alternation; a rule either emits one threat
// per matching record or a single aggregate threat for the whole batch.
type AgentRule struct {
	Name           string          `yaml:"name"`
	ThreatType     string          `yaml:"type"`
	Severity       models.Severity `yaml:"severity"`
	Patterns       []string        `yaml:"patterns"`
	Aggregate      bool            `yaml:"aggregate"`
	Summary        string          `yaml:"summary,omitempty"`
	Recommendation string          `yaml:"recommendation"`

	re *regexp.Regexp
}

// Compile builds the rule's matcher from its pattern list.
func (r *AgentRule) Compile() error {
	if len(r.Patterns) == 0 {
		return fmt.Errorf("rule %q has no patterns", r.Name)
	}
	re, err := regexp.Compile("(?i)(" + strings.Join(r.Patterns, "|") + ")")
	if err != nil {
		return fmt.Errorf("rule %q: failed to compile patterns: %w", r.Name, err)
	}
	r.re = re
	return nil
}

// Match reports whether the user agent string triggers the rule.
func (r *AgentRule) Match(userAgent string) bool {
	return r.re != nil && r.re.MatchString(userAgent)
}

// DefaultAgentRules returns the built-in rule list: suspicious injection
// tooling reported per record, broader automated traffic reported as one
// aggregate finding.
func DefaultAgentRules() []AgentRule {
	rules := []AgentRule{
		{
			Name:           "sql_injection",
			ThreatType:     "SQL Injection Attempt",
			Severity:       models.SeverityMedium,
			Patterns:       []string{"sqlmap", "curl"},
			Recommendation: "Review WAF rules and input sanitization",
		},
		{
			Name:           "bot_activity",
			ThreatType:     "Automated Bot Activity",
			Severity:       models.SeverityLow,
			Patterns:       []string{"bot", "python", "curl"},
			Aggregate:      true,
			Summary:        "requests from automated tools",
			Recommendation: "Implement CAPTCHA on sensitive endpoints",
		},
	}
	for i := range rules {
		if err := rules[i].Compile(); err != nil {
			// Built-in patterns are static literals.
			panic(err)
		}
	}
	return rules
}

type ruleFile struct {
	Rules []AgentRule `yaml:"rules"`
}

// LoadAgentRules reads an ordered rule list from a YAML file and
// compiles every rule. The file replaces the defaults entirely.
func LoadAgentRules(path string) ([]AgentRule, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to read rule file: %w", err)
	}

	var f ruleFile
	if err := yaml.Unmarshal(data, &f); err != nil {
		return nil, fmt.Errorf("failed to parse rule file %s: %w", path, err)
	}
	if len(f.Rules) == 0 {
		return nil, fmt.Errorf("rule file %s contains no rules", path)
	}

	for i := range f.Rules {
		if err := f.Rules[i].Compile(); err != nil {
			return nil, err
		}
	}

	return f.Rules, nil
}

// RuleSet is a concurrency-safe holder for the active rule list, shared
// between the request handlers and the rule file watcher.
type RuleSet struct {
	mu    sync.RWMutex
	rules []AgentRule
}

func NewRuleSet(rules []AgentRule) *RuleSet {
	return &RuleSet{rules: rules}
}

// Rules returns a snapshot of the active rule list.
func (s *RuleSet) Rules() []AgentRule {
	s.mu.RLock()
	defer s.mu.RUnlock()

	rules := make([]AgentRule, len(s.rules))
	copy(rules, s.rules)
	return rules
}

// Replace swaps in a new rule list.
func (s *RuleSet) Replace(rules []AgentRule) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.rules = rules
}

// Watch reloads the rule set whenever the file at path changes. A reload
// that fails to parse keeps the previous rules and logs the error.
// Watch blocks until ctx is cancelled.
func (s *RuleSet) Watch(ctx context.Context, path string) error {
	watcher, err := fsnotify.NewWatcher()
	if err != nil {
		return fmt.Errorf("failed to create rule watcher: %w", err)
	}
	defer watcher.Close()

	if err := watcher.Add(path); err != nil {
		return fmt.Errorf("failed to watch rule file %s: %w", path, err)
	}

	log.Infof("[rules] watching %s for changes", path)

	for {
		select {
		case <-ctx.Done():
			return nil

		case event, ok := <-watcher.Events:
			if !ok {
				return nil
			}
			if event.Op&(fsnotify.Write|fsnotify.Create) == 0 {
				continue
			}
			rules, err := LoadAgentRules(path)
			if err != nil {
				log.Errorf("[rules] reload failed, keeping previous rules: %v", err)
				continue
			}
			s.Replace(rules)
			log.Infof("[rules] reloaded %d rules from %s", len(rules), path)

		case err, ok := <-watcher.Errors:
			if !ok {
				return nil
			}
			log.Errorf("[rules] watcher error: %v", err)
		}
	}
}
