// Package network holds request-level network helpers.
package network

import (
	"net/http"
	"strings"
)

// GetClientIP returns the originating client address for a request.
// Behind the reverse proxy the school site deploys under, the real address
// arrives in X-Forwarded-For (first hop) or X-Real-IP; a bare RemoteAddr,
// stripped of its port, is the fallback for direct connections.
func GetClientIP(r *http.Request) string {
	if fwd := r.Header.Get("X-Forwarded-For"); fwd != "" {
		// First entry in the chain is the client
		first, _, _ := strings.Cut(fwd, ",")
		return strings.TrimSpace(first)
	}

	if real := r.Header.Get("X-Real-IP"); real != "" {
		return real
	}

	addr := r.RemoteAddr
	if idx := strings.LastIndex(addr, ":"); idx != -1 {
		return addr[:idx]
	}
	return addr
}
