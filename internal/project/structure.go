package project

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"sort"
	"strings"

	"gopkg.in/yaml.v3"
)

// Node is a directory (Children non-nil) or a file (Content).
type Node struct {
	Content  string
	Children map[string]*Node
}

// Dir returns a directory node.
func Dir(children map[string]*Node) *Node {
	if children == nil {
		children = map[string]*Node{}
	}
	return &Node{Children: children}
}

// File returns a file node.
func File(content string) *Node {
	return &Node{Content: content}
}

// IsDir reports whether n is a directory.
func (n *Node) IsDir() bool {
	return n.Children != nil
}

// UnmarshalYAML maps YAML mappings to directories and scalars to files.
func (n *Node) UnmarshalYAML(value *yaml.Node) error {
	switch value.Kind {
	case yaml.MappingNode:
		children := make(map[string]*Node, len(value.Content)/2)
		for i := 0; i+1 < len(value.Content); i += 2 {
			name := value.Content[i].Value
			if err := validName(name); err != nil {
				return fmt.Errorf("line %d: %w", value.Content[i].Line, err)
			}
			child := &Node{}
			if err := value.Content[i+1].Decode(child); err != nil {
				return err
			}
			children[name] = child
		}
		n.Children = children
	case yaml.ScalarNode:
		if value.Tag == "!!null" {
			n.Content = ""
			return nil
		}
		n.Content = value.Value
	default:
		return fmt.Errorf("line %d: expected a mapping or a string", value.Line)
	}
	return nil
}

// MarshalYAML is the inverse of UnmarshalYAML.
func (n *Node) MarshalYAML() (any, error) {
	if n.IsDir() {
		return n.Children, nil
	}
	return n.Content, nil
}

func validName(name string) error {
	switch {
	case name == "", name == ".", name == "..":
		return fmt.Errorf("invalid entry name %q", name)
	case strings.ContainsAny(name, `/\`):
		return fmt.Errorf("entry name %q must not contain a path separator", name)
	}
	return nil
}

// LoadStructure reads a YAML structure file. The top level must be a mapping.
func LoadStructure(path string) (*Node, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to read structure %s: %w", path, err)
	}
	var root Node
	if err := yaml.Unmarshal(data, &root); err != nil {
		return nil, fmt.Errorf("failed to parse structure %s: %w", path, err)
	}
	if !root.IsDir() {
		return nil, fmt.Errorf("structure %s: top level must be a mapping", path)
	}
	return &root, nil
}

// Report lists what Scaffold did, with paths relative to the base.
type Report struct {
	Created []string `json:"created"`
	Skipped []string `json:"skipped"`
}

// Scaffold creates the tree described by root under base. Directories are
// created as needed; files that already exist are left untouched and listed
// in Report.Skipped. Entries are created in name order.
func Scaffold(base string, root *Node) (*Report, error) {
	if root == nil {
		root = DefaultStructure()
	}
	if !root.IsDir() {
		return nil, errors.New("structure root must be a directory")
	}
	if err := os.MkdirAll(base, 0755); err != nil {
		return nil, fmt.Errorf("failed to create %s: %w", base, err)
	}
	report := &Report{}
	return report, scaffold(base, "", root, report)
}

func scaffold(base, rel string, dir *Node, report *Report) error {
	names := make([]string, 0, len(dir.Children))
	for name := range dir.Children {
		names = append(names, name)
	}
	sort.Strings(names)

	for _, name := range names {
		if err := validName(name); err != nil {
			return err
		}
		child := dir.Children[name]
		if child == nil {
			child = File("")
		}
		childRel := filepath.Join(rel, name)
		full := filepath.Join(base, childRel)

		if child.IsDir() {
			info, err := os.Stat(full)
			switch {
			case err == nil && !info.IsDir():
				return fmt.Errorf("%s exists and is not a directory", childRel)
			case err == nil:
			case os.IsNotExist(err):
				if err := os.Mkdir(full, 0755); err != nil {
					return fmt.Errorf("failed to create %s: %w", childRel, err)
				}
				report.Created = append(report.Created, childRel+string(filepath.Separator))
			default:
				return fmt.Errorf("failed to stat %s: %w", childRel, err)
			}
			if err := scaffold(base, childRel, child, report); err != nil {
				return err
			}
			continue
		}

		f, err := os.OpenFile(full, os.O_WRONLY|os.O_CREATE|os.O_EXCL, 0644)
		if err != nil {
			if os.IsExist(err) {
				report.Skipped = append(report.Skipped, childRel)
				continue
			}
			return fmt.Errorf("failed to create %s: %w", childRel, err)
		}
		_, werr := f.WriteString(child.Content)
		cerr := f.Close()
		if werr != nil {
			return fmt.Errorf("failed to write %s: %w", childRel, werr)
		}
		if cerr != nil {
			return fmt.Errorf("failed to write %s: %w", childRel, cerr)
		}
		report.Created = append(report.Created, childRel)
	}
	return nil
}

// DefaultStructure describes a fresh automation project.
func DefaultStructure() *Node {
	return Dir(map[string]*Node{
		"README.md": File(defaultReadme),
		"tasks.yaml": File(defaultTasks),
		"automations": Dir(map[string]*Node{
			"__init__.py": File(""),
		}),
		"logs": Dir(map[string]*Node{
			".gitkeep": File(""),
		}),
		".primusignore": File("logs/\n"),
	})
}

const defaultReadme = `# Automation Project

Manual tasks found by ` + "`primus scan`" + ` are tracked in tasks.yaml.
Generated automations live in automations/.

    primus scan docs/ --json
    primus generate "<task>" --output automations/<name>.py
`

const defaultTasks = `# Manual tasks selected for automation.
tasks: []
`
