// Package ignore decides which paths a directory scan should skip, using
// gitignore semantics from go-git.
package ignore

import (
	"bufio"
	"os"
	"path/filepath"
	"strings"

	"github.com/go-git/go-git/v5/plumbing/format/gitignore"
)

// DefaultSkipDirs are never descended into regardless of ignore files.
var DefaultSkipDirs = map[string]bool{
	".git":         true,
	".svn":         true,
	".hg":          true,
	"node_modules": true,
	"vendor":       true,
	".venv":        true,
	"venv":         true,
	"__pycache__":  true,
	".idea":        true,
	".vscode":      true,
	".cache":       true,
	"dist":         true,
	"build":        true,
	"target":       true,
}

// Matcher accumulates ignore patterns while a tree is walked top-down.
// Patterns from a nested ignore file only apply beneath its directory, and
// later patterns win, so "!keep.md" can re-include a file.
type Matcher struct {
	root     string
	names    []string
	patterns []gitignore.Pattern
	matcher  gitignore.Matcher
}

// NewMatcher creates a matcher for the tree at root. names lists the ignore
// file names to honour in each directory, e.g. ".gitignore".
func NewMatcher(root string, names []string) *Matcher {
	return &Matcher{
		root:    root,
		names:   names,
		matcher: gitignore.NewMatcher(nil),
	}
}

// LoadDir reads the ignore files in the directory rel (slash or OS separated,
// relative to root). Missing files are skipped.
func (m *Matcher) LoadDir(rel string) error {
	domain := split(rel)
	added := false
	for _, name := range m.names {
		path := filepath.Join(m.root, filepath.FromSlash(rel), name)
		lines, err := readLines(path)
		if err != nil {
			if os.IsNotExist(err) {
				continue
			}
			return err
		}
		for _, line := range lines {
			m.patterns = append(m.patterns, gitignore.ParsePattern(line, domain))
			added = true
		}
	}
	if added {
		m.matcher = gitignore.NewMatcher(m.patterns)
	}
	return nil
}

// Add appends patterns that apply to the whole tree.
func (m *Matcher) Add(patterns ...string) {
	for _, p := range patterns {
		if p = parseLine(p); p != "" {
			m.patterns = append(m.patterns, gitignore.ParsePattern(p, nil))
		}
	}
	m.matcher = gitignore.NewMatcher(m.patterns)
}

// Ignored reports whether rel should be skipped.
func (m *Matcher) Ignored(rel string, isDir bool) bool {
	parts := split(rel)
	if len(parts) == 0 {
		return false
	}
	return m.matcher.Match(parts, isDir)
}

// readLines returns the pattern lines of an ignore file.
func readLines(path string) ([]string, error) {
	file, err := os.Open(path)
	if err != nil {
		return nil, err
	}
	defer file.Close()

	var lines []string
	scanner := bufio.NewScanner(file)
	for scanner.Scan() {
		if line := parseLine(scanner.Text()); line != "" {
			lines = append(lines, line)
		}
	}
	return lines, scanner.Err()
}

// parseLine strips trailing whitespace and drops blanks and comments.
func parseLine(line string) string {
	line = strings.TrimRight(line, " \t\r")
	if line == "" || strings.HasPrefix(line, "#") {
		return ""
	}
	return line
}

func split(rel string) []string {
	rel = filepath.ToSlash(filepath.Clean(rel))
	if rel == "." || rel == "" {
		return nil
	}
	return strings.Split(strings.Trim(rel, "/"), "/")
}
