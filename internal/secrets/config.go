package secrets

import (
	"fmt"
	"regexp"
	"strings"
)

// Config configures the scrubber.
type Config struct {
	// Enabled turns scrubbing on. A disabled config yields a pass-through.
	Enabled bool `koanf:"enabled"`

	Rules []Rule `koanf:"rules"`

	// Replacement substitutes each redacted span. Defaults to "[REDACTED]".
	Replacement string `koanf:"replacement"`

	// AllowList patterns exempt a match that would otherwise be redacted,
	// e.g. documented example keys.
	AllowList []string `koanf:"allow_list"`
}

// Rule defines one detection pattern.
type Rule struct {
	ID          string `koanf:"id"`
	Description string `koanf:"description"`
	Pattern     string `koanf:"pattern"`

	// Keywords gate the rule: when set, the rule only runs if one of them
	// appears in the content (case-insensitive).
	Keywords []string `koanf:"keywords"`

	Severity Severity `koanf:"severity"`
}

// Severity ranks findings.
type Severity string

const (
	SeverityHigh   Severity = "high"
	SeverityMedium Severity = "medium"
	SeverityLow    Severity = "low"
)

type compiledRule struct {
	Rule
	pattern  *regexp.Regexp
	keywords *regexp.Regexp
}

// DefaultConfig returns an enabled config with DefaultRules.
func DefaultConfig() *Config {
	return &Config{
		Enabled:     true,
		Rules:       DefaultRules(),
		Replacement: "[REDACTED]",
	}
}

// compile validates c and returns its rules and allow list ready for use.
func (c *Config) compile() ([]compiledRule, []*regexp.Regexp, error) {
	seen := make(map[string]bool, len(c.Rules))
	rules := make([]compiledRule, 0, len(c.Rules))
	for i, r := range c.Rules {
		if r.ID == "" {
			return nil, nil, fmt.Errorf("rule %d: id is required", i)
		}
		if seen[r.ID] {
			return nil, nil, fmt.Errorf("rule %s: duplicate id", r.ID)
		}
		seen[r.ID] = true
		if r.Pattern == "" {
			return nil, nil, fmt.Errorf("rule %s: pattern is required", r.ID)
		}
		re, err := regexp.Compile(r.Pattern)
		if err != nil {
			return nil, nil, fmt.Errorf("rule %s: invalid pattern: %w", r.ID, err)
		}
		cr := compiledRule{Rule: r, pattern: re}
		if len(r.Keywords) > 0 {
			quoted := make([]string, len(r.Keywords))
			for j, kw := range r.Keywords {
				quoted[j] = regexp.QuoteMeta(kw)
			}
			cr.keywords = regexp.MustCompile("(?i)" + strings.Join(quoted, "|"))
		}
		if cr.Severity == "" {
			cr.Severity = SeverityHigh
		}
		rules = append(rules, cr)
	}

	allow := make([]*regexp.Regexp, 0, len(c.AllowList))
	for i, p := range c.AllowList {
		re, err := regexp.Compile(p)
		if err != nil {
			return nil, nil, fmt.Errorf("allow_list %d: invalid pattern: %w", i, err)
		}
		allow = append(allow, re)
	}
	return rules, allow, nil
}
