// Package project scaffolds automation projects.
//
// A Structure is a tree where each node is either a directory holding named
// children or a file holding text content. Structures come from
// DefaultStructure or from a YAML file:
//
//	README.md: |
//	  # Invoices
//	automations:
//	  rename.py: ""
//	logs: {}
//
// Mappings become directories and scalars become files. Scaffold never
// overwrites a file that already exists.
//
// Init also writes a .primus/project.yaml manifest recording the project ID,
// name and creation time so later runs can recognize the directory.
package project
