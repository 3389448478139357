package secrets

import (
	"fmt"
	"regexp"
	"sort"
	"strings"
	"sync"

	"github.com/zricethezav/gitleaks/v8/detect"
)

// gitleaksScrubber runs the full gitleaks default ruleset. It is slower than
// the builtin rules and is opt-in via secrets.engine.
type gitleaksScrubber struct {
	mu          sync.Mutex
	detector    *detect.Detector
	allow       []*regexp.Regexp
	replacement string
}

// NewGitleaks builds a Scrubber backed by the gitleaks detector. allowList
// patterns exempt matching secrets.
func NewGitleaks(allowList []string) (Scrubber, error) {
	detector, err := detect.NewDetectorDefaultConfig()
	if err != nil {
		return nil, fmt.Errorf("failed to load gitleaks rules: %w", err)
	}
	allow := make([]*regexp.Regexp, 0, len(allowList))
	for i, p := range allowList {
		re, err := regexp.Compile(p)
		if err != nil {
			return nil, fmt.Errorf("allow_list %d: invalid pattern: %w", i, err)
		}
		allow = append(allow, re)
	}
	return &gitleaksScrubber{detector: detector, allow: allow, replacement: "[REDACTED]"}, nil
}

func (g *gitleaksScrubber) Enabled() bool { return true }

func (g *gitleaksScrubber) Scrub(content string) *Result {
	// The detector keeps per-scan state and is not safe for concurrent use.
	g.mu.Lock()
	found := g.detector.DetectString(content)
	g.mu.Unlock()

	result := &Result{Scrubbed: content}
	var spans []span
	for _, f := range found {
		if f.Secret == "" || g.allowed(f.Secret) {
			continue
		}
		for from := 0; ; {
			idx := strings.Index(content[from:], f.Secret)
			if idx < 0 {
				break
			}
			start := from + idx
			end := start + len(f.Secret)
			result.Findings = append(result.Findings, Finding{
				RuleID:   f.RuleID,
				Severity: SeverityHigh,
				Start:    start,
				End:      end,
				Line:     strings.Count(content[:start], "\n") + 1,
			})
			spans = append(spans, span{start, end})
			from = end
		}
	}
	if len(spans) == 0 {
		return result
	}

	sort.Slice(result.Findings, func(i, j int) bool {
		return result.Findings[i].Start < result.Findings[j].Start
	})
	var b strings.Builder
	last := 0
	for _, sp := range merge(spans) {
		b.WriteString(content[last:sp.start])
		b.WriteString(g.replacement)
		last = sp.end
	}
	b.WriteString(content[last:])
	result.Scrubbed = b.String()
	return result
}

func (g *gitleaksScrubber) allowed(secret string) bool {
	for _, re := range g.allow {
		if re.MatchString(secret) {
			return true
		}
	}
	return false
}

var _ Scrubber = (*gitleaksScrubber)(nil)
