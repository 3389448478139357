package tasks

import (
	"context"
	"sort"
	"time"

	"github.com/google/uuid"
	"go.uber.org/zap"

	"github.com/fyrsmithlabs/primus/internal/extraction"
	"github.com/fyrsmithlabs/primus/internal/logging"
	"github.com/fyrsmithlabs/primus/internal/scanner"
)

// Finding ties a task to the block and rule that produced it.
type Finding struct {
	Task   string `json:"task"`
	Label  string `json:"label"`
	Source string `json:"source"`
}

// Result is the outcome of one scan run.
type Result struct {
	RunID    string        `json:"run_id"`
	Targets  []string      `json:"targets"`
	Tasks    []string      `json:"tasks"`
	Findings []Finding     `json:"findings,omitempty"`
	Blocks   int           `json:"blocks"`
	Duration time.Duration `json:"duration"`
}

// Empty reports whether the run found no tasks.
func (r *Result) Empty() bool {
	return len(r.Tasks) == 0
}

// Scanner glues a Reader to a TaskExtractor.
type Scanner struct {
	reader    *scanner.Reader
	extractor *extraction.TaskExtractor
	logger    *logging.Logger
}

// NewScanner creates a Scanner. A nil logger discards diagnostics.
func NewScanner(reader *scanner.Reader, extractor *extraction.TaskExtractor, logger *logging.Logger) *Scanner {
	if logger == nil {
		logger = logging.NewNop()
	}
	return &Scanner{
		reader:    reader,
		extractor: extractor,
		logger:    logger.Named("tasks"),
	}
}

// Scan reads every target and extracts tasks. Placeholder blocks are added
// as tasks verbatim since their text already names the follow-up work.
// Findings keep the first source that produced each task.
func (s *Scanner) Scan(ctx context.Context, targets ...string) *Result {
	start := time.Now()
	runID := uuid.NewString()
	ctx = logging.WithRunID(ctx, runID)

	s.logger.Info(ctx, "scan started", zap.Strings("targets", targets))

	blocks := s.reader.ScanAll(ctx, targets)
	set := extraction.NewTaskSet()
	var findings []Finding
	for _, block := range blocks {
		if block.Placeholder {
			if set.Add(block.Text) {
				findings = append(findings, Finding{Task: block.Text, Label: "document", Source: block.Source})
			}
			continue
		}
		for _, m := range s.extractor.Matches(block.Text) {
			if set.Add(m.Task) {
				findings = append(findings, Finding{Task: m.Task, Label: m.Label, Source: block.Source})
			}
		}
	}

	sort.SliceStable(findings, func(i, j int) bool { return findings[i].Task < findings[j].Task })

	result := &Result{
		RunID:    runID,
		Targets:  targets,
		Tasks:    set.Sorted(),
		Findings: findings,
		Blocks:   len(blocks),
		Duration: time.Since(start),
	}

	s.logger.Info(ctx, "scan finished",
		zap.Int("blocks", result.Blocks),
		zap.Int("tasks", len(result.Tasks)),
		zap.Duration("duration", result.Duration))
	return result
}

// ScanWithContext is Scan for callers that need the run ID on ctx, such as
// follow-up agent calls that should log under the same run.
func (s *Scanner) ScanWithContext(ctx context.Context, targets ...string) (context.Context, *Result) {
	result := s.Scan(ctx, targets...)
	return logging.WithRunID(ctx, result.RunID), result
}
