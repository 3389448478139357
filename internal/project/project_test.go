package project

import (
	"errors"
	"os"
	"path/filepath"
	"testing"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gopkg.in/yaml.v3"
)

func TestNewProject(t *testing.T) {
	tests := []struct {
		name     string
		projName string
		path     string
		wantErr  error
	}{
		{name: "valid project", projName: "my-project", path: "/home/user/projects/my-project"},
		{name: "empty name", path: "/home/user/projects/my-project", wantErr: ErrEmptyProjectName},
		{name: "empty path", projName: "my-project", wantErr: ErrEmptyProjectPath},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			p, err := NewProject(tt.projName, tt.path)
			if tt.wantErr != nil {
				assert.ErrorIs(t, err, tt.wantErr)
				return
			}
			require.NoError(t, err)
			assert.Equal(t, tt.projName, p.Name)
			assert.Equal(t, tt.path, p.Path)
			_, err = uuid.Parse(p.ID)
			assert.NoError(t, err)
			assert.NoError(t, p.Validate())
		})
	}
}

func TestProject_Validate(t *testing.T) {
	p := &Project{ID: "not-a-uuid", Name: "x", Path: "/x"}
	assert.ErrorIs(t, p.Validate(), ErrInvalidProjectID)
}

func TestScaffold_Default(t *testing.T) {
	dir := t.TempDir()

	report, err := Scaffold(dir, nil)
	require.NoError(t, err)

	for _, rel := range []string{"README.md", "tasks.yaml", ".primusignore", filepath.Join("automations", "__init__.py"), filepath.Join("logs", ".gitkeep")} {
		assert.FileExists(t, filepath.Join(dir, rel))
	}
	assert.DirExists(t, filepath.Join(dir, "automations"))
	assert.Contains(t, report.Created, "README.md")
	assert.Contains(t, report.Created, "automations"+string(filepath.Separator))
	assert.Empty(t, report.Skipped)

	tasks, err := os.ReadFile(filepath.Join(dir, "tasks.yaml"))
	require.NoError(t, err)
	var parsed map[string]any
	require.NoError(t, yaml.Unmarshal(tasks, &parsed))
	assert.Contains(t, parsed, "tasks")
}

func TestScaffold_NeverOverwrites(t *testing.T) {
	dir := t.TempDir()
	readme := filepath.Join(dir, "README.md")
	require.NoError(t, os.WriteFile(readme, []byte("mine"), 0644))

	report, err := Scaffold(dir, nil)
	require.NoError(t, err)
	assert.Equal(t, []string{"README.md"}, report.Skipped)

	data, err := os.ReadFile(readme)
	require.NoError(t, err)
	assert.Equal(t, "mine", string(data))

	again, err := Scaffold(dir, nil)
	require.NoError(t, err)
	assert.Empty(t, again.Created)
	assert.Len(t, again.Skipped, 5)
}

func TestScaffold_FileInPlaceOfDirectory(t *testing.T) {
	dir := t.TempDir()
	require.NoError(t, os.WriteFile(filepath.Join(dir, "logs"), []byte("x"), 0644))

	_, err := Scaffold(dir, nil)
	assert.ErrorContains(t, err, "not a directory")
}

func TestScaffold_RejectsFileRoot(t *testing.T) {
	_, err := Scaffold(t.TempDir(), File("x"))
	assert.Error(t, err)
}

func TestLoadStructure(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "structure.yaml")
	require.NoError(t, os.WriteFile(path, []byte(`
README.md: |
  # Invoices
automations:
  rename.py: "print('hi')\n"
  nested:
    empty.txt:
logs: {}
`), 0644))

	root, err := LoadStructure(path)
	require.NoError(t, err)
	require.True(t, root.IsDir())
	assert.Equal(t, "# Invoices\n", root.Children["README.md"].Content)
	assert.True(t, root.Children["logs"].IsDir())
	assert.Empty(t, root.Children["logs"].Children)
	assert.False(t, root.Children["automations"].Children["nested"].Children["empty.txt"].IsDir())

	out := filepath.Join(dir, "out")
	_, err = Scaffold(out, root)
	require.NoError(t, err)
	assert.FileExists(t, filepath.Join(out, "automations", "nested", "empty.txt"))
	assert.DirExists(t, filepath.Join(out, "logs"))
	code, err := os.ReadFile(filepath.Join(out, "automations", "rename.py"))
	require.NoError(t, err)
	assert.Equal(t, "print('hi')\n", string(code))
}

func TestLoadStructure_Errors(t *testing.T) {
	dir := t.TempDir()

	tests := []struct {
		name    string
		content string
	}{
		{name: "scalar root", content: "just text"},
		{name: "sequence", content: "a:\n  - b\n"},
		{name: "path separator", content: "../escape: x\n"},
		{name: "dot dot", content: "..: x\n"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			path := filepath.Join(dir, "s.yaml")
			require.NoError(t, os.WriteFile(path, []byte(tt.content), 0644))
			_, err := LoadStructure(path)
			assert.Error(t, err)
		})
	}

	_, err := LoadStructure(filepath.Join(dir, "missing.yaml"))
	assert.Error(t, err)
}

func TestInit(t *testing.T) {
	dir := filepath.Join(t.TempDir(), "invoices")

	p, report, err := Init(dir, "", nil)
	require.NoError(t, err)
	assert.Equal(t, "invoices", p.Name)
	assert.Contains(t, report.Created, filepath.Join(".primus", "project.yaml"))
	assert.FileExists(t, p.ManifestPath())

	opened, err := Open(dir)
	require.NoError(t, err)
	assert.Equal(t, p.ID, opened.ID)
	assert.Equal(t, dir, opened.Path)

	again, _, err := Init(dir, "renamed", nil)
	require.NoError(t, err)
	assert.Equal(t, p.ID, again.ID)
	assert.Equal(t, "invoices", again.Name)
}

func TestOpen_NotAProject(t *testing.T) {
	_, err := Open(t.TempDir())
	assert.True(t, errors.Is(err, ErrNotAProject))
}
