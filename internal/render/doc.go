// Package render formats primus results for the terminal.
//
// Styles are built from a lipgloss renderer bound to the output writer, so
// colors appear on terminals and plain text goes to pipes and files.
package render
