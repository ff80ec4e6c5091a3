package domain

import "strings"

// IsSafeURL reports whether a URL is safe to embed as a link target in
// rendered HTML. Only http and https pass; javascript:, data:, file: and
// empty strings are rejected so script-scheme injection from agent-produced
// text can never reach the rendered email.
func IsSafeURL(rawURL string) bool {
	u := strings.ToLower(strings.TrimSpace(rawURL))
	return strings.HasPrefix(u, "http://") || strings.HasPrefix(u, "https://")
}
