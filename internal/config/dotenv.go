package config

import (
	"bufio"
	"fmt"
	"os"
	"strings"

	"github.com/subosito/gotenv"
)

// LoadEnvFile exports KEY=VALUE pairs from a .env file into the process
// environment so the next Load picks them up. A missing file is not an error.
// Quoting, escapes and "export" prefixes follow gotenv. Malformed lines are
// skipped rather than aborting the rest of the file.
func LoadEnvFile(path string) (map[string]string, error) {
	f, err := os.Open(path)
	if err != nil {
		if os.IsNotExist(err) {
			return map[string]string{}, nil
		}
		return nil, fmt.Errorf("failed to read env file %s: %w", path, err)
	}
	defer f.Close()

	vars := make(map[string]string)
	scanner := bufio.NewScanner(f)
	for scanner.Scan() {
		line := strings.TrimSpace(scanner.Text())
		if line == "" || strings.HasPrefix(line, "#") {
			continue
		}
		env, err := gotenv.StrictParse(strings.NewReader(line))
		if err != nil {
			continue
		}
		for key, value := range env {
			vars[key] = value
		}
	}
	if err := scanner.Err(); err != nil {
		return nil, fmt.Errorf("failed to read env file %s: %w", path, err)
	}

	for key, value := range vars {
		if err := os.Setenv(key, value); err != nil {
			return nil, fmt.Errorf("failed to set %s: %w", key, err)
		}
	}
	return vars, nil
}

// SaveEnvFile writes the settings that have environment variable names to a
// .env file with 0600 permissions. API keys are written in clear text.
func SaveEnvFile(path string, s *Settings) error {
	var b strings.Builder
	b.WriteString("# Primus OS Configuration\n")
	fmt.Fprintf(&b, "OPENAI_API_KEY=%s\n", s.LLM.OpenAIAPIKey.Value())
	fmt.Fprintf(&b, "ANTHROPIC_API_KEY=%s\n", s.LLM.AnthropicAPIKey.Value())
	fmt.Fprintf(&b, "PRIMUS_DEFAULT_MODEL=%s\n", s.LLM.DefaultModel)
	fmt.Fprintf(&b, "PRIMUS_MAX_CONCURRENT=%d\n", s.Runtime.MaxConcurrentTasks)
	fmt.Fprintf(&b, "PRIMUS_TIMEOUT=%d\n", s.Runtime.RequestTimeout)

	if err := os.WriteFile(path, []byte(b.String()), 0600); err != nil {
		return fmt.Errorf("failed to write env file %s: %w", path, err)
	}
	return nil
}
