package reconcile

import "strings"

// ResolveToken picks the auth token for one outbound request: the current
// session value when present, otherwise the persisted fallback. Called once
// per request construction; there is no ambient token state.
func ResolveToken(session, persisted string) string {
	if s := strings.TrimSpace(session); s != "" {
		return s
	}
	return strings.TrimSpace(persisted)
}
