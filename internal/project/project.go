package project

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"time"

	"github.com/google/uuid"
	"gopkg.in/yaml.v3"
)

// Common errors.
var (
	ErrEmptyProjectName = errors.New("project name cannot be empty")
	ErrEmptyProjectPath = errors.New("project path cannot be empty")
	ErrInvalidProjectID = errors.New("invalid project ID")
	ErrNotAProject      = errors.New("not a primus project")
)

const (
	manifestDir  = ".primus"
	manifestFile = "project.yaml"
)

// Project describes a scaffolded automation project.
type Project struct {
	ID        string    `yaml:"id" json:"id"`
	Name      string    `yaml:"name" json:"name"`
	Path      string    `yaml:"-" json:"path"`
	CreatedAt time.Time `yaml:"created_at" json:"created_at"`
}

// NewProject creates a project with a generated UUID.
func NewProject(name, path string) (*Project, error) {
	if name == "" {
		return nil, ErrEmptyProjectName
	}
	if path == "" {
		return nil, ErrEmptyProjectPath
	}
	return &Project{
		ID:        uuid.NewString(),
		Name:      name,
		Path:      path,
		CreatedAt: time.Now().UTC(),
	}, nil
}

// Validate checks if the project has valid fields.
func (p *Project) Validate() error {
	if _, err := uuid.Parse(p.ID); err != nil {
		return ErrInvalidProjectID
	}
	if p.Name == "" {
		return ErrEmptyProjectName
	}
	if p.Path == "" {
		return ErrEmptyProjectPath
	}
	return nil
}

// ManifestPath returns the location of the project manifest.
func (p *Project) ManifestPath() string {
	return filepath.Join(p.Path, manifestDir, manifestFile)
}

// Init scaffolds structure under path and records a manifest. An existing
// manifest is kept, so running Init twice returns the original project.
func Init(path, name string, structure *Node) (*Project, *Report, error) {
	if name == "" {
		name = filepath.Base(filepath.Clean(path))
	}

	if existing, err := Open(path); err == nil {
		report, err := Scaffold(path, structure)
		return existing, report, err
	} else if !errors.Is(err, ErrNotAProject) {
		return nil, nil, err
	}

	p, err := NewProject(name, path)
	if err != nil {
		return nil, nil, err
	}

	report, err := Scaffold(path, structure)
	if err != nil {
		return nil, report, err
	}

	data, err := yaml.Marshal(p)
	if err != nil {
		return nil, report, fmt.Errorf("failed to encode manifest: %w", err)
	}
	if err := os.MkdirAll(filepath.Dir(p.ManifestPath()), 0755); err != nil {
		return nil, report, fmt.Errorf("failed to create manifest dir: %w", err)
	}
	if err := os.WriteFile(p.ManifestPath(), data, 0644); err != nil {
		return nil, report, fmt.Errorf("failed to write manifest: %w", err)
	}
	report.Created = append(report.Created, filepath.Join(manifestDir, manifestFile))
	return p, report, nil
}

// Open reads the manifest of the project at path.
func Open(path string) (*Project, error) {
	data, err := os.ReadFile(filepath.Join(path, manifestDir, manifestFile))
	if err != nil {
		if os.IsNotExist(err) {
			return nil, fmt.Errorf("%w: %s", ErrNotAProject, path)
		}
		return nil, fmt.Errorf("failed to read manifest: %w", err)
	}
	var p Project
	if err := yaml.Unmarshal(data, &p); err != nil {
		return nil, fmt.Errorf("failed to parse manifest: %w", err)
	}
	p.Path = path
	if err := p.Validate(); err != nil {
		return nil, fmt.Errorf("invalid manifest: %w", err)
	}
	return &p, nil
}
