package ratelimit

import (
	"net"
	"net/http"
	"strings"
)

// UnknownClientKey is used when no client address can be determined.
const UnknownClientKey = "unknown"

// ResolveClientKey derives the limiter key for a request: the first
// X-Forwarded-For hop, then X-Real-IP, then the transport peer address.
func ResolveClientKey(header http.Header, remoteAddr string) string {
	if forwarded := header.Get("X-Forwarded-For"); forwarded != "" {
		first, _, _ := strings.Cut(forwarded, ",")
		if first = strings.TrimSpace(first); first != "" {
			return first
		}
	}
	if realIP := strings.TrimSpace(header.Get("X-Real-IP")); realIP != "" {
		return realIP
	}
	remoteAddr = strings.TrimSpace(remoteAddr)
	if remoteAddr == "" {
		return UnknownClientKey
	}
	if host, _, errSplit := net.SplitHostPort(remoteAddr); errSplit == nil && host != "" {
		return host
	}
	return remoteAddr
}
