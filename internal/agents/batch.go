package agents

import (
	"context"
	"fmt"
	"sync"

	"github.com/hashicorp/go-multierror"
	"github.com/sourcegraph/conc/pool"
)

// AnalyzeAll analyzes tasks with at most concurrency requests in flight.
// Reports are returned in task order; a failed task leaves a nil entry and
// contributes to the returned multierror. onDone, if set, is called once per
// finished task and must be safe for concurrent use.
func (a *TaskAnalyzer) AnalyzeAll(ctx context.Context, tasks []string, concurrency int, onDone func()) ([]*Report, error) {
	if concurrency < 1 {
		concurrency = 1
	}
	reports := make([]*Report, len(tasks))

	var (
		mu   sync.Mutex
		errs *multierror.Error
	)
	p := pool.New().WithMaxGoroutines(concurrency)
	for i, task := range tasks {
		p.Go(func() {
			defer func() {
				if onDone != nil {
					onDone()
				}
			}()
			if ctx.Err() != nil {
				mu.Lock()
				errs = multierror.Append(errs, fmt.Errorf("task %d: %w", i+1, ctx.Err()))
				mu.Unlock()
				return
			}
			report, err := a.Analyze(ctx, task)
			if err != nil {
				mu.Lock()
				errs = multierror.Append(errs, fmt.Errorf("task %d: %w", i+1, err))
				mu.Unlock()
				return
			}
			reports[i] = report
		})
	}
	p.Wait()

	return reports, errs.ErrorOrNil()
}
