package secrets

import (
	"regexp"
	"sort"
	"strings"

	"github.com/fyrsmithlabs/primus/internal/config"
)

// Scrubber redacts secrets from text.
type Scrubber interface {
	Scrub(content string) *Result
	Enabled() bool
}

type scrubber struct {
	rules       []compiledRule
	allow       []*regexp.Regexp
	replacement string
}

type span struct {
	start, end int
}

// New builds a Scrubber from cfg. A nil cfg means DefaultConfig, and a
// disabled cfg yields a Noop scrubber.
func New(cfg *Config) (Scrubber, error) {
	if cfg == nil {
		cfg = DefaultConfig()
	}
	if !cfg.Enabled {
		return Noop{}, nil
	}
	rules, allow, err := cfg.compile()
	if err != nil {
		return nil, err
	}
	replacement := cfg.Replacement
	if replacement == "" {
		replacement = "[REDACTED]"
	}
	return &scrubber{rules: rules, allow: allow, replacement: replacement}, nil
}

// MustNew is New that panics, for package-level defaults.
func MustNew(cfg *Config) Scrubber {
	s, err := New(cfg)
	if err != nil {
		panic(err)
	}
	return s
}

func (s *scrubber) Enabled() bool { return true }

// Scrub is safe for concurrent use; compiled state is never mutated.
func (s *scrubber) Scrub(content string) *Result {
	result := &Result{Scrubbed: content}
	var spans []span

	for _, rule := range s.rules {
		if rule.keywords != nil && !rule.keywords.MatchString(content) {
			continue
		}
		for _, m := range rule.pattern.FindAllStringIndex(content, -1) {
			if s.allowed(content[m[0]:m[1]]) {
				continue
			}
			result.Findings = append(result.Findings, Finding{
				RuleID:   rule.ID,
				Severity: rule.Severity,
				Start:    m[0],
				End:      m[1],
				Line:     strings.Count(content[:m[0]], "\n") + 1,
			})
			spans = append(spans, span{m[0], m[1]})
		}
	}
	if len(spans) == 0 {
		return result
	}

	sort.Slice(result.Findings, func(i, j int) bool {
		return result.Findings[i].Start < result.Findings[j].Start
	})

	var b strings.Builder
	b.Grow(len(content))
	last := 0
	for _, sp := range merge(spans) {
		b.WriteString(content[last:sp.start])
		b.WriteString(s.replacement)
		last = sp.end
	}
	b.WriteString(content[last:])
	result.Scrubbed = b.String()
	return result
}

func (s *scrubber) allowed(match string) bool {
	for _, re := range s.allow {
		if re.MatchString(match) {
			return true
		}
	}
	return false
}

// merge sorts spans and joins overlapping or touching ones.
func merge(spans []span) []span {
	sort.Slice(spans, func(i, j int) bool { return spans[i].start < spans[j].start })
	out := []span{spans[0]}
	for _, sp := range spans[1:] {
		last := &out[len(out)-1]
		if sp.start <= last.end {
			if sp.end > last.end {
				last.end = sp.end
			}
			continue
		}
		out = append(out, sp)
	}
	return out
}

// Noop passes content through unchanged.
type Noop struct{}

func (Noop) Scrub(content string) *Result { return &Result{Scrubbed: content} }
func (Noop) Enabled() bool                { return false }

var (
	_ Scrubber = (*scrubber)(nil)
	_ Scrubber = Noop{}
)

// FromSettings builds the scrubber selected by secrets.engine.
func FromSettings(cfg config.SecretsConfig) (Scrubber, error) {
	switch cfg.Engine {
	case config.EngineOff:
		return Noop{}, nil
	case config.EngineGitleaks:
		return NewGitleaks(cfg.AllowList)
	default:
		c := DefaultConfig()
		c.AllowList = cfg.AllowList
		return New(c)
	}
}
