package ignore

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestParseLine(t *testing.T) {
	tests := []struct {
		name     string
		line     string
		expected string
	}{
		{"empty line", "", ""},
		{"whitespace only", "   ", ""},
		{"comment", "# this is a comment", ""},
		{"negation kept", "!important.md", "!important.md"},
		{"trailing spaces", "drafts/  ", "drafts/"},
		{"windows line ending", "*.tmp\r", "*.tmp"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.expected, parseLine(tt.line))
		})
	}
}

func writeFile(t *testing.T, path, content string) {
	t.Helper()
	require.NoError(t, os.MkdirAll(filepath.Dir(path), 0755))
	require.NoError(t, os.WriteFile(path, []byte(content), 0644))
}

func TestMatcher_RootIgnoreFiles(t *testing.T) {
	root := t.TempDir()
	writeFile(t, filepath.Join(root, ".gitignore"), "# drafts\ndrafts/\n*.tmp\n!keep.tmp\n")
	writeFile(t, filepath.Join(root, ".primusignore"), "private.md\n")

	m := NewMatcher(root, []string{".gitignore", ".primusignore"})
	require.NoError(t, m.LoadDir("."))

	tests := []struct {
		path  string
		isDir bool
		want  bool
	}{
		{"drafts", true, true},
		{"docs/drafts", true, true},
		{"notes.tmp", false, true},
		{"keep.tmp", false, false},
		{"private.md", false, true},
		{"docs/private.md", false, true},
		{"README.md", false, false},
		{".", true, false},
	}
	for _, tt := range tests {
		t.Run(tt.path, func(t *testing.T) {
			assert.Equal(t, tt.want, m.Ignored(tt.path, tt.isDir))
		})
	}
}

func TestMatcher_NestedIgnoreFileIsScoped(t *testing.T) {
	root := t.TempDir()
	writeFile(t, filepath.Join(root, "team", ".gitignore"), "scratch.md\n")

	m := NewMatcher(root, []string{".gitignore"})
	require.NoError(t, m.LoadDir("."))
	require.NoError(t, m.LoadDir("team"))

	assert.True(t, m.Ignored("team/scratch.md", false))
	assert.False(t, m.Ignored("scratch.md", false))
}

func TestMatcher_Add(t *testing.T) {
	m := NewMatcher(t.TempDir(), nil)
	assert.False(t, m.Ignored("archive/old.md", false))

	m.Add("archive/", "# comment", "")
	assert.True(t, m.Ignored("archive", true))
	assert.True(t, m.Ignored("archive/old.md", false))
}

func TestMatcher_UnreadableIgnoreFile(t *testing.T) {
	root := t.TempDir()
	// A directory where a file is expected cannot be read as patterns.
	require.NoError(t, os.MkdirAll(filepath.Join(root, ".gitignore"), 0755))

	m := NewMatcher(root, []string{".gitignore"})
	assert.Error(t, m.LoadDir("."))
}

func TestDefaultSkipDirs(t *testing.T) {
	for _, dir := range []string{".git", "node_modules", "vendor"} {
		assert.True(t, DefaultSkipDirs[dir], dir)
	}
	assert.False(t, DefaultSkipDirs["docs"])
}
