// Package actor resolves the acting identity for a request. Authentication is
// enforced at the deployment boundary before traffic reaches this service, so
// the middleware trusts the X-Actor header; requests without one are
// attributed to the client IP, matching how the portal recorded submitters.
package actor

import (
	"net/http"
	"strings"

	"casegate/pkg/requestcontext"
)

const headerName = "X-Actor"

// Middleware extracts the actor and client IP and stores both in the context.
func Middleware(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		ip := clientIP(r)
		who := strings.TrimSpace(r.Header.Get(headerName))
		if who == "" {
			who = ip
		}

		ctx := requestcontext.WithActor(r.Context(), who)
		ctx = requestcontext.WithClientIP(ctx, ip)
		next.ServeHTTP(w, r.WithContext(ctx))
	})
}

// clientIP extracts the real client IP, handling proxies and load balancers.
func clientIP(r *http.Request) string {
	// X-Forwarded-For can contain multiple IPs (client, proxy1, proxy2, ...);
	// the first one is the original client.
	if xff := r.Header.Get("X-Forwarded-For"); xff != "" {
		if idx := strings.Index(xff, ","); idx != -1 {
			return strings.TrimSpace(xff[:idx])
		}
		return strings.TrimSpace(xff)
	}

	if xri := r.Header.Get("X-Real-IP"); xri != "" {
		return strings.TrimSpace(xri)
	}

	// RemoteAddr is "ip:port" (IPv6: "[::1]:port"); strip the port.
	if addr := r.RemoteAddr; addr != "" {
		if idx := strings.LastIndex(addr, ":"); idx != -1 {
			return addr[:idx]
		}
		return addr
	}

	return "unknown"
}
