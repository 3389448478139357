package tasks

import (
	"context"
	"net/http"
	"net/http/httptest"
	"os"
	"path/filepath"
	"testing"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap/zapcore"

	"github.com/fyrsmithlabs/primus/internal/extraction"
	"github.com/fyrsmithlabs/primus/internal/logging"
	"github.com/fyrsmithlabs/primus/internal/scanner"
)

func newTestScanner(t *testing.T) (*Scanner, *logging.TestLogger) {
	t.Helper()
	logger := logging.NewTestLogger()
	reader := scanner.NewReader(scanner.DefaultOptions(), logger.Logger)
	return NewScanner(reader, extraction.NewDefaultExtractor(), logger.Logger), logger
}

func writeFile(t *testing.T, path, content string) {
	t.Helper()
	require.NoError(t, os.MkdirAll(filepath.Dir(path), 0755))
	require.NoError(t, os.WriteFile(path, []byte(content), 0644))
}

func TestScanner_LiteralText(t *testing.T) {
	s, _ := newTestScanner(t)

	result := s.Scan(context.Background(), "Currently done manually: data entry process. Manual task: report generation.")

	assert.Equal(t, []string{"data entry process", "report generation"}, result.Tasks)
	assert.Equal(t, 1, result.Blocks)
	assert.False(t, result.Empty())
	_, err := uuid.Parse(result.RunID)
	assert.NoError(t, err)

	require.Len(t, result.Findings, 2)
	assert.Equal(t, Finding{Task: "data entry process", Label: extraction.LabelCurrentlyManual, Source: "<text>"}, result.Findings[0])
}

func TestScanner_DirectoryWithPlaceholders(t *testing.T) {
	dir := t.TempDir()
	writeFile(t, filepath.Join(dir, "a.md"), "Repetitive task: rename invoices.\n")
	writeFile(t, filepath.Join(dir, "docs", "b.txt"), "Human intervention: approve refunds.\nRepetitive task: rename invoices.\n")
	writeFile(t, filepath.Join(dir, "docs", "manual.pdf"), "%PDF-1.4")
	writeFile(t, filepath.Join(dir, "notes.go"), "// Manual step: ignored because .go is not scanned")

	s, _ := newTestScanner(t)
	result := s.Scan(context.Background(), dir)

	assert.Equal(t, []string{
		"Review PDF documentation: manual.pdf",
		"approve refunds",
		"rename invoices",
	}, result.Tasks)
	assert.Equal(t, 3, result.Blocks)

	sources := map[string]string{}
	for _, f := range result.Findings {
		sources[f.Task] = f.Source
	}
	assert.Equal(t, filepath.Join(dir, "a.md"), sources["rename invoices"], "first source wins")
	assert.Equal(t, filepath.Join(dir, "docs", "manual.pdf"), sources["Review PDF documentation: manual.pdf"])
}

func TestScanner_MultipleTargetsDeduplicate(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "text/html")
		w.Write([]byte("<html><body><p>Manual process: weekly backup</p><script>Manual task: hidden</script></body></html>"))
	}))
	defer srv.Close()

	s, _ := newTestScanner(t)
	result := s.Scan(context.Background(), srv.URL, "Manual process: weekly backup")

	assert.Equal(t, []string{"weekly backup"}, result.Tasks)
	assert.Equal(t, 2, result.Blocks)
	assert.Equal(t, []string{srv.URL, "Manual process: weekly backup"}, result.Targets)
}

func TestScanner_NoTasks(t *testing.T) {
	s, _ := newTestScanner(t)
	result := s.Scan(context.Background(), "nothing to see here")
	assert.True(t, result.Empty())
	assert.Empty(t, result.Tasks)
	assert.NotNil(t, result.Tasks)
}

func TestScanner_LogsRunID(t *testing.T) {
	s, logger := newTestScanner(t)
	result := s.Scan(context.Background(), "Manual step: check logs")

	logger.AssertLogged(t, zapcore.InfoLevel, "scan finished")
	logger.AssertRunID(t, "scan finished", result.RunID)
	entries := logger.FilterMessage("scan finished").All()
	require.Len(t, entries, 1)
	assert.EqualValues(t, 1, entries[0].ContextMap()["tasks"])
}

func TestScanner_ScanWithContext(t *testing.T) {
	s, _ := newTestScanner(t)
	ctx, result := s.ScanWithContext(context.Background(), "Manual step: check logs")
	assert.Equal(t, result.RunID, logging.RunIDFromContext(ctx))
}

func TestScanner_CancelledContext(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	s, _ := newTestScanner(t)
	result := s.Scan(ctx, "Manual step: never read")
	assert.True(t, result.Empty())
	assert.Zero(t, result.Blocks)
}
