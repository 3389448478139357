package secrets

import "fmt"

// Result is the outcome of one Scrub call.
type Result struct {
	Scrubbed string    `json:"scrubbed"`
	Findings []Finding `json:"findings,omitempty"`
}

// Finding locates a detected secret. The matched value is never kept.
type Finding struct {
	RuleID   string   `json:"rule_id"`
	Severity Severity `json:"severity"`
	Start    int      `json:"start"`
	End      int      `json:"end"`
	Line     int      `json:"line"`
}

// HasFindings reports whether anything was redacted.
func (r *Result) HasFindings() bool {
	return len(r.Findings) > 0
}

// ByRule counts findings per rule ID.
func (r *Result) ByRule() map[string]int {
	counts := make(map[string]int, len(r.Findings))
	for _, f := range r.Findings {
		counts[f.RuleID]++
	}
	return counts
}

// Summary is a short human-readable description, safe to log.
func (r *Result) Summary() string {
	switch n := len(r.Findings); n {
	case 0:
		return "no secrets detected"
	case 1:
		return fmt.Sprintf("1 secret redacted (%s)", r.Findings[0].RuleID)
	default:
		return fmt.Sprintf("%d secrets redacted", n)
	}
}
