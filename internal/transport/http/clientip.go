package transporthttp

import (
	"net/http"
	"strings"
)

// UnknownClient buckets every request whose origin cannot be determined.
// Unidentifiable clients share one rate limit window as a result.
const UnknownClient = "unknown"

// ClientIdentifier derives the rate limit identifier for a request. The
// service always runs behind a proxy, so the first X-Forwarded-For hop is
// the client; X-Real-IP is the fallback for proxies that only set that.
func ClientIdentifier(r *http.Request) string {
	if forwarded := r.Header.Get("X-Forwarded-For"); forwarded != "" {
		first := strings.TrimSpace(strings.Split(forwarded, ",")[0])
		if first != "" {
			return first
		}
	}
	if realIP := strings.TrimSpace(r.Header.Get("X-Real-IP")); realIP != "" {
		return realIP
	}
	return UnknownClient
}
