package scanner

import (
	"net/url"
	"os"
	"strings"
)

// IsURL reports whether target parses as a URL with both a scheme and a host.
func IsURL(target string) bool {
	u, err := url.Parse(strings.TrimSpace(target))
	if err != nil {
		return false
	}
	return u.Scheme != "" && u.Host != ""
}

// Classify decides how target will be scanned. An existing path wins over
// URL syntax; malformed URLs fall through to literal text.
func Classify(target string) Kind {
	if target == "" {
		return KindText
	}
	if _, err := os.Stat(target); err == nil {
		return KindPath
	}
	if IsURL(target) {
		return KindURL
	}
	return KindText
}
