// Package scanner turns scan targets into text blocks.
//
// A target is classified as an existing filesystem path, a URL, or literal
// text. Paths are read (directories recursively, honouring ignore files),
// URLs are fetched and stripped of markup, and anything else is scanned as
// is. Failures never surface as errors: an unreadable file or failed fetch
// is logged at warn and contributes no blocks, so a batch always completes.
package scanner
