package ratelimit

import (
	"context"
	"net"
	"net/http"
	"strings"
)

// KeyFunc derives the limiter key for a request. Requests with equal
// keys share windows.
type KeyFunc func(r *http.Request) string

type principalKey struct{}

// WithPrincipal attaches an authenticated principal identifier to the
// context. Authentication middleware calls this after verifying the
// request; the limiter only consumes the identifier and never inspects
// credentials.
func WithPrincipal(ctx context.Context, principal string) context.Context {
	return context.WithValue(ctx, principalKey{}, principal)
}

// PrincipalFromContext returns the attached principal identifier, or
// an empty string for anonymous requests.
func PrincipalFromContext(ctx context.Context) string {
	principal, _ := ctx.Value(principalKey{}).(string)
	return principal
}

// DefaultKey keys requests by client IP, authenticated principal and
// route path. Authenticated users get windows separate from anonymous
// traffic on the same IP, and each route is limited independently.
func DefaultKey(r *http.Request) string {
	parts := []string{clientIP(r)}
	if principal := PrincipalFromContext(r.Context()); principal != "" {
		parts = append(parts, principal)
	}
	parts = append(parts, r.URL.Path)
	return strings.Join(parts, "|")
}

// clientIP extracts the originating client address, preferring the
// first X-Forwarded-For hop set by a trusted proxy.
func clientIP(r *http.Request) string {
	if fwd := r.Header.Get("X-Forwarded-For"); fwd != "" {
		if i := strings.IndexByte(fwd, ','); i >= 0 {
			fwd = fwd[:i]
		}
		return strings.TrimSpace(fwd)
	}

	host, _, err := net.SplitHostPort(r.RemoteAddr)
	if err != nil {
		return r.RemoteAddr
	}
	return host
}
