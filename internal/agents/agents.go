package agents

import (
	"context"
	"errors"
	"fmt"
	"strings"
)

const (
	analyzeTemperature  = 0.3
	generateTemperature = 0.1
	optimizeTemperature = 0.3
)

// ErrEmptyInput is returned when an agent is given nothing to work on.
var ErrEmptyInput = errors.New("empty input")

// TaskAnalyzer rates a manual task for automation.
type TaskAnalyzer struct {
	client Client
}

// NewTaskAnalyzer creates a TaskAnalyzer backed by client.
func NewTaskAnalyzer(client Client) *TaskAnalyzer {
	return &TaskAnalyzer{client: client}
}

// Analyze asks for complexity, automation potential, tooling, effort and
// success criteria of task.
func (a *TaskAnalyzer) Analyze(ctx context.Context, task string) (*Report, error) {
	task = strings.TrimSpace(task)
	if task == "" {
		return nil, fmt.Errorf("analyze task: %w", ErrEmptyInput)
	}
	raw, err := a.client.Complete(ctx, Request{
		System:      systemPrompt,
		Prompt:      buildAnalyzePrompt(task),
		Temperature: analyzeTemperature,
	})
	if err != nil {
		return nil, fmt.Errorf("analyze task: %w", err)
	}
	return newReport(task, raw), nil
}

// AutomationBuilder generates automation code.
type AutomationBuilder struct {
	client Client
}

// NewAutomationBuilder creates an AutomationBuilder backed by client.
func NewAutomationBuilder(client Client) *AutomationBuilder {
	return &AutomationBuilder{client: client}
}

// Generate returns Python code automating task, without markdown fences.
func (b *AutomationBuilder) Generate(ctx context.Context, task string) (string, error) {
	task = strings.TrimSpace(task)
	if task == "" {
		return "", fmt.Errorf("generate automation: %w", ErrEmptyInput)
	}
	raw, err := b.client.Complete(ctx, Request{
		System:      systemPrompt,
		Prompt:      buildGeneratePrompt(task),
		Temperature: generateTemperature,
	})
	if err != nil {
		return "", fmt.Errorf("generate automation: %w", err)
	}
	return stripFences(raw), nil
}

// WorkflowOptimizer suggests how to automate a workflow.
type WorkflowOptimizer struct {
	client Client
}

// NewWorkflowOptimizer creates a WorkflowOptimizer backed by client.
func NewWorkflowOptimizer(client Client) *WorkflowOptimizer {
	return &WorkflowOptimizer{client: client}
}

// Optimize sends steps as a numbered list. Blank steps are dropped.
func (o *WorkflowOptimizer) Optimize(ctx context.Context, steps []string) (*Report, error) {
	kept := make([]string, 0, len(steps))
	for _, step := range steps {
		if step = strings.TrimSpace(step); step != "" {
			kept = append(kept, step)
		}
	}
	if len(kept) == 0 {
		return nil, fmt.Errorf("optimize workflow: %w", ErrEmptyInput)
	}
	raw, err := o.client.Complete(ctx, Request{
		System:      systemPrompt,
		Prompt:      buildOptimizePrompt(kept),
		Temperature: optimizeTemperature,
	})
	if err != nil {
		return nil, fmt.Errorf("optimize workflow: %w", err)
	}
	return newReport(numberSteps(kept), raw), nil
}
