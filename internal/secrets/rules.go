package secrets

// DefaultRules covers the credentials most likely to turn up in process
// documentation and runbooks. Self-identifying prefixes need no keywords.
func DefaultRules() []Rule {
	return []Rule{
		{
			ID:          "anthropic-api-key",
			Description: "Anthropic API Key",
			Pattern:     `sk-ant-[A-Za-z0-9_\-]{20,}`,
			Severity:    SeverityHigh,
		},
		{
			ID:          "openai-api-key",
			Description: "OpenAI API Key",
			Pattern:     `sk-(?:proj-)?[A-Za-z0-9_\-]{20,}`,
			Severity:    SeverityHigh,
		},
		{
			ID:          "aws-access-key-id",
			Description: "AWS Access Key ID",
			Pattern:     `(?:A3T[A-Z0-9]|AKIA|ASIA)[A-Z0-9]{16}`,
			Severity:    SeverityHigh,
		},
		{
			ID:          "github-token",
			Description: "GitHub Token",
			Pattern:     `(?:gh[pousr]_[A-Za-z0-9]{36}|github_pat_[A-Za-z0-9_]{22,})`,
			Severity:    SeverityHigh,
		},
		{
			ID:          "slack-token",
			Description: "Slack Token",
			Pattern:     `xox[baprs]-[A-Za-z0-9\-]{10,}`,
			Severity:    SeverityHigh,
		},
		{
			ID:          "private-key",
			Description: "Private Key Block",
			Pattern:     `-----BEGIN (?:RSA |DSA |EC |OPENSSH |PGP )?PRIVATE KEY(?: BLOCK)?-----`,
			Severity:    SeverityHigh,
		},
		{
			ID:          "connection-string",
			Description: "Connection URL with embedded credentials",
			Pattern:     `(?i)(?:postgres(?:ql)?|mysql|mongodb(?:\+srv)?|redis|amqp)://[^:\s/]+:[^@\s]+@\S+`,
			Severity:    SeverityHigh,
		},
		{
			ID:          "generic-api-key",
			Description: "Generic API Key assignment",
			Pattern:     `(?i)(?:api[_-]?key|apikey)\s*[:=]\s*['"]?[A-Za-z0-9_\-]{16,64}['"]?`,
			Keywords:    []string{"api"},
			Severity:    SeverityHigh,
		},
		{
			ID:          "password-assignment",
			Description: "Password or secret assignment",
			Pattern:     `(?i)(?:password|passwd|pwd|secret)\s*[:=]\s*['"]?[^\s'"]{8,}['"]?`,
			Keywords:    []string{"pass", "pwd", "secret"},
			Severity:    SeverityHigh,
		},
		{
			ID:          "bearer-token",
			Description: "Bearer token",
			Pattern:     `(?i)bearer\s+[A-Za-z0-9_\-\.=]{20,}`,
			Keywords:    []string{"bearer"},
			Severity:    SeverityMedium,
		},
		{
			ID:          "jwt",
			Description: "JSON Web Token",
			Pattern:     `eyJ[A-Za-z0-9_-]*\.eyJ[A-Za-z0-9_-]*\.[A-Za-z0-9_-]*`,
			Severity:    SeverityMedium,
		},
	}
}
