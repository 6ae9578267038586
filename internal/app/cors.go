package app

import (
	"net/url"
	"strings"
)

// originAllowed reports whether a request origin matches one of the
// configured patterns. Patterns compare against the host[:port] part of
// the origin and support a "*." subdomain prefix and a ":*" any-port
// suffix.
func originAllowed(patterns []string, origin string) bool {
	host := origin
	if u, err := url.Parse(origin); err == nil && u.Host != "" {
		host = u.Host
	}
	for _, pattern := range patterns {
		if hostMatches(pattern, host) {
			return true
		}
	}
	return false
}

func hostMatches(pattern, host string) bool {
	switch {
	case pattern == host:
		return true
	case strings.HasPrefix(pattern, "*."):
		// "*.example.com" admits any subdomain but not the apex.
		return strings.HasSuffix(host, pattern[1:])
	case strings.HasSuffix(pattern, ":*"):
		return strings.HasPrefix(host, strings.TrimSuffix(pattern, "*"))
	default:
		return false
	}
}
