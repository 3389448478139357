package scanner

import (
	"net/http"
	"strings"
	"time"

	"github.com/fyrsmithlabs/primus/internal/config"
)

// Kind classifies a scan target.
type Kind int

const (
	KindText Kind = iota
	KindPath
	KindURL
)

func (k Kind) String() string {
	switch k {
	case KindPath:
		return "path"
	case KindURL:
		return "url"
	default:
		return "text"
	}
}

// MarshalText lets Kind appear by name in JSON output.
func (k Kind) MarshalText() ([]byte, error) {
	return []byte(k.String()), nil
}

// Block is one unit of text handed to the extractor.
type Block struct {
	// Source is the file path, URL, or "<text>" for literal targets.
	Source string `json:"source"`
	Kind   Kind   `json:"kind"`
	Text   string `json:"text"`
	// Placeholder marks a block naming an unsupported document instead of
	// carrying its content.
	Placeholder bool `json:"placeholder,omitempty"`
}

// Options configures a Reader.
type Options struct {
	TextExtensions     []string
	DocumentExtensions []string
	// MaxFileSize caps files and fetched bodies, in bytes. Zero means no limit.
	MaxFileSize int64
	// IgnoreFiles are per-directory ignore file names, e.g. ".gitignore".
	IgnoreFiles []string
	UserAgent   string
	Timeout     time.Duration
	// HTTPClient overrides the client built from Timeout.
	HTTPClient *http.Client
}

// DefaultOptions mirrors the config defaults.
func DefaultOptions() Options {
	return Options{
		TextExtensions:     []string{".md", ".txt"},
		DocumentExtensions: []string{".pdf", ".doc"},
		MaxFileSize:        10 * 1024 * 1024,
		IgnoreFiles:        []string{".gitignore", ".primusignore"},
		UserAgent:          "primus-scanner/1.0",
		Timeout:            30 * time.Second,
	}
}

// OptionsFromSettings builds reader options from loaded settings.
func OptionsFromSettings(s *config.Settings) Options {
	return Options{
		TextExtensions:     s.Scan.TextExtensions,
		DocumentExtensions: s.Scan.DocumentExtensions,
		MaxFileSize:        s.Scan.MaxFileSize,
		IgnoreFiles:        s.Scan.IgnoreFiles,
		UserAgent:          s.Scan.UserAgent,
		Timeout:            s.RequestTimeout(),
	}
}

func extensionSet(exts []string) map[string]bool {
	set := make(map[string]bool, len(exts))
	for _, e := range exts {
		set[strings.ToLower(e)] = true
	}
	return set
}
