package extraction

import (
	"regexp"
	"sort"
	"strings"
)

// Rule is one labelled cue phrase. Pattern must have at least one capture
// group; the first group is the task text.
type Rule struct {
	Label   string `json:"label" yaml:"label"`
	Pattern string `json:"pattern" yaml:"pattern"`
}

type compiledRule struct {
	label string
	re    *regexp.Regexp
}

// Match is a task together with the rule that found it.
type Match struct {
	Label string `json:"label"`
	Task  string `json:"task"`
}

// TaskSet is an unordered set of task descriptions.
type TaskSet map[string]struct{}

// NewTaskSet builds a set from tasks, trimming each and dropping empties.
func NewTaskSet(tasks ...string) TaskSet {
	s := make(TaskSet, len(tasks))
	for _, t := range tasks {
		s.Add(t)
	}
	return s
}

// Add inserts the trimmed task. It reports false for empty or already
// present values.
func (s TaskSet) Add(task string) bool {
	task = strings.TrimSpace(task)
	if task == "" {
		return false
	}
	if _, ok := s[task]; ok {
		return false
	}
	s[task] = struct{}{}
	return true
}

// Contains reports whether task, trimmed, is in the set.
func (s TaskSet) Contains(task string) bool {
	_, ok := s[strings.TrimSpace(task)]
	return ok
}

// Merge adds every task of other to s.
func (s TaskSet) Merge(other TaskSet) {
	for t := range other {
		s[t] = struct{}{}
	}
}

// Len returns the number of tasks.
func (s TaskSet) Len() int { return len(s) }

// Sorted returns the tasks in lexical order, for stable output.
func (s TaskSet) Sorted() []string {
	out := make([]string, 0, len(s))
	for t := range s {
		out = append(out, t)
	}
	sort.Strings(out)
	return out
}
