package render

import (
	"bytes"
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"

	"github.com/fyrsmithlabs/primus/internal/agents"
	"github.com/fyrsmithlabs/primus/internal/tasks"
)

func TestFormatDuration(t *testing.T) {
	tests := []struct {
		name string
		d    time.Duration
		want string
	}{
		{"sub_millisecond", 100 * time.Microsecond, "0.1ms"},
		{"milliseconds", 12300 * time.Microsecond, "12.3ms"},
		{"seconds", 2500 * time.Millisecond, "2.5s"},
		{"minutes", 3*time.Minute + 7*time.Second, "3m 7s"},
		{"zero", 0, "0.0ms"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, FormatDuration(tt.d))
		})
	}
}

func TestPlural(t *testing.T) {
	assert.Equal(t, "1 task", Plural(1, "task"))
	assert.Equal(t, "0 tasks", Plural(0, "task"))
	assert.Equal(t, "3 blocks", Plural(3, "block"))
}

func TestPrinter_ScanResult(t *testing.T) {
	res := &tasks.Result{
		Tasks: []string{"data entry process", "report generation"},
		Findings: []tasks.Finding{
			{Task: "data entry process", Label: "currently_manual", Source: "notes.md"},
			{Task: "report generation", Label: "manual_process", Source: "notes.md"},
		},
		Blocks:   1,
		Duration: 2 * time.Millisecond,
	}

	var buf bytes.Buffer
	NewPrinter(&buf).ScanResult(res, false)
	out := buf.String()
	assert.Contains(t, out, "Manual tasks")
	assert.Contains(t, out, "  1. data entry process")
	assert.Contains(t, out, "  2. report generation")
	assert.Contains(t, out, "2 tasks from 1 block in 2.0ms")
	assert.NotContains(t, out, "currently_manual")

	buf.Reset()
	NewPrinter(&buf).ScanResult(res, true)
	assert.Contains(t, buf.String(), "currently_manual · notes.md")
}

func TestPrinter_ScanResultEmpty(t *testing.T) {
	var buf bytes.Buffer
	NewPrinter(&buf).ScanResult(&tasks.Result{Tasks: []string{}}, false)
	assert.Contains(t, buf.String(), "No manual tasks found.")
}

func TestPrinter_Report(t *testing.T) {
	var buf bytes.Buffer
	NewPrinter(&buf).Report("Task analysis", &agents.Report{
		Subject: "rename invoices",
		Data: map[string]any{
			"complexity":   "Low",
			"technologies": []any{"python", "watchdog"},
			"estimate":     map[string]any{"days": 2.0},
		},
	})
	out := buf.String()
	assert.Contains(t, out, "Task analysis")
	assert.Contains(t, out, "rename invoices")
	assert.Contains(t, out, "Complexity: Low")
	assert.Contains(t, out, "Technologies:\n  - python\n  - watchdog")
	assert.Contains(t, out, `Estimate: {"days":2}`)
}

func TestPrinter_ReportRaw(t *testing.T) {
	var buf bytes.Buffer
	NewPrinter(&buf).Report("Workflow optimization", &agents.Report{Raw: "  free text reply \n"})
	assert.Contains(t, buf.String(), "free text reply\n")
}

func TestPrinter_Lines(t *testing.T) {
	var buf bytes.Buffer
	p := NewPrinter(&buf)
	p.Recommendations([]string{"first", "second"})
	p.Section("LLM")
	p.KeyValue("provider", "openai")
	p.Success("saved")
	p.Warning("careful")
	p.AnalysisFailed("task", errors.New("boom"))
	p.Plain("raw")

	out := buf.String()
	for _, want := range []string{"1. first", "2. second", "┃ LLM", "provider:", "openai", "✓ saved", "! careful", "✗ task: boom", "raw\n"} {
		assert.Contains(t, out, want)
	}
}
