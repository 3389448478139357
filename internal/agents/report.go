package agents

import (
	"encoding/json"
	"strings"
)

// Report is a parsed agent reply.
type Report struct {
	Subject string         `json:"subject"`
	Data    map[string]any `json:"data,omitempty"`
	Raw     string         `json:"raw"`
}

// Parsed reports whether the reply was a JSON object.
func (r *Report) Parsed() bool {
	return r.Data != nil
}

// newReport parses raw as a JSON object. Non-JSON replies keep Raw only.
func newReport(subject, raw string) *Report {
	report := &Report{Subject: subject, Raw: raw}
	body := stripFences(raw)
	if start, end := strings.Index(body, "{"), strings.LastIndex(body, "}"); start >= 0 && end > start {
		body = body[start : end+1]
	}
	var data map[string]any
	if err := json.Unmarshal([]byte(body), &data); err == nil {
		report.Data = data
	}
	return report
}

// stripFences removes a surrounding markdown code fence, including its
// language tag, and trims whitespace.
func stripFences(s string) string {
	s = strings.TrimSpace(s)
	if !strings.HasPrefix(s, "```") {
		return s
	}
	s = strings.TrimPrefix(s, "```")
	if nl := strings.IndexByte(s, '\n'); nl >= 0 {
		s = s[nl+1:]
	} else {
		s = ""
	}
	s = strings.TrimSpace(s)
	s = strings.TrimSuffix(s, "```")
	return strings.TrimSpace(s)
}
