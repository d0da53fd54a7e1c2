// Package handlers contains HTTP handler interfaces and implementations.
package handlers

import (
	"fmt"
	"net/http"
	"time"
)

// ══════════════════════════════════════════════════════════════════════════════
// CACHE CONTROL MIDDLEWARE
// ══════════════════════════════════════════════════════════════════════════════

// CacheControlMiddleware sets Cache-Control headers on responses.
// Leaderboard pages are served from batch-built snapshots, so short
// client-side caching never shows data staler than the snapshot itself.
func CacheControlMiddleware(maxAge time.Duration, private bool) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			visibility := "public"
			if private {
				visibility = "private"
			}
			w.Header().Set("Cache-Control", fmt.Sprintf("%s, max-age=%s", visibility, formatSeconds(maxAge)))
			next.ServeHTTP(w, r)
		})
	}
}

// NoCacheMiddleware disables caching for the wrapped handler.
func NoCacheMiddleware(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Cache-Control", "no-store, no-cache, must-revalidate")
		w.Header().Set("Pragma", "no-cache")
		w.Header().Set("Expires", "0")
		next.ServeHTTP(w, r)
	})
}

// ══════════════════════════════════════════════════════════════════════════════
// SECURITY HEADERS MIDDLEWARE
// ══════════════════════════════════════════════════════════════════════════════

// SecurityHeadersMiddleware adds standard security headers to all responses.
func SecurityHeadersMiddleware(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("X-Content-Type-Options", "nosniff")
		w.Header().Set("X-Frame-Options", "DENY")
		w.Header().Set("X-XSS-Protection", "1; mode=block")
		w.Header().Set("Referrer-Policy", "strict-origin-when-cross-origin")
		next.ServeHTTP(w, r)
	})
}

// formatSeconds renders a duration as whole seconds for header values.
func formatSeconds(d time.Duration) string {
	return fmt.Sprintf("%d", int(d.Seconds()))
}
