package extraction

import (
	"fmt"
	"regexp"
	"strings"

	"github.com/fyrsmithlabs/primus/internal/config"
)

// TaskExtractor applies a fixed rule table to text. It is immutable after
// construction and safe for concurrent use.
type TaskExtractor struct {
	rules []compiledRule
}

// NewTaskExtractor compiles rules. An empty table selects DefaultRules.
// Invalid patterns and patterns without a capture group are rejected.
func NewTaskExtractor(rules []Rule) (*TaskExtractor, error) {
	if len(rules) == 0 {
		rules = DefaultRules()
	}

	compiled := make([]compiledRule, 0, len(rules))
	for i, r := range rules {
		if r.Label == "" {
			return nil, fmt.Errorf("rule %d: label is required", i)
		}
		re, err := regexp.Compile(r.Pattern)
		if err != nil {
			return nil, fmt.Errorf("rule %s: invalid pattern: %w", r.Label, err)
		}
		if re.NumSubexp() < 1 {
			return nil, fmt.Errorf("rule %s: pattern needs a capture group", r.Label)
		}
		compiled = append(compiled, compiledRule{label: r.Label, re: re})
	}
	return &TaskExtractor{rules: compiled}, nil
}

// NewDefaultExtractor returns an extractor over DefaultRules.
func NewDefaultExtractor() *TaskExtractor {
	e, err := NewTaskExtractor(nil)
	if err != nil {
		panic(fmt.Sprintf("extraction: default rules do not compile: %v", err))
	}
	return e
}

// FromSettings builds an extractor from the configured rule table, falling
// back to DefaultRules when none is configured.
func FromSettings(cfg config.ExtractionConfig) (*TaskExtractor, error) {
	rules := make([]Rule, 0, len(cfg.Rules))
	for _, r := range cfg.Rules {
		rules = append(rules, Rule{Label: r.Label, Pattern: r.Pattern})
	}
	return NewTaskExtractor(rules)
}

// Extract returns the deduplicated task descriptions found in text.
func (e *TaskExtractor) Extract(text string) TaskSet {
	set := make(TaskSet)
	for _, m := range e.Matches(text) {
		set.Add(m.Task)
	}
	return set
}

// Matches returns every non-empty capture in rule order, then text order.
// The same task may appear more than once if several rules or positions
// produce it.
func (e *TaskExtractor) Matches(text string) []Match {
	var matches []Match
	for _, r := range e.rules {
		for _, sub := range r.re.FindAllStringSubmatch(text, -1) {
			task := strings.TrimSpace(sub[1])
			if task == "" {
				continue
			}
			matches = append(matches, Match{Label: r.label, Task: task})
		}
	}
	return matches
}

// Labels returns the rule labels in table order.
func (e *TaskExtractor) Labels() []string {
	labels := make([]string, len(e.rules))
	for i, r := range e.rules {
		labels[i] = r.label
	}
	return labels
}
