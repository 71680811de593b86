package middleware

import (
	"net"
	"net/http"
	"strings"
	"sync/atomic"

	"github.com/deepgram/insights/internal/config"
	"github.com/deepgram/insights/pkg/httpext"
	"github.com/deepgram/insights/pkg/ratelimit"
	"github.com/rs/zerolog/log"
)

// pruneEvery is how many requests pass between sweeps of stale client keys
const pruneEvery = 1024

// RateLimit limits requests per client for the named limit key
func RateLimit(limitKey string) func(http.Handler) http.Handler {
	return rateLimit(limitKey, config.GetRateLimitConfig(limitKey))
}

func rateLimit(limitKey string, cfg config.RateLimitConfig) func(http.Handler) http.Handler {
	limiter := ratelimit.NewLimiter(cfg.Window, cfg.MaxHits)
	var requests atomic.Uint64

	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			if !cfg.Enabled {
				next.ServeHTTP(w, r)
				return
			}

			if requests.Add(1)%pruneEvery == 0 {
				limiter.Prune()
			}

			ip := ClientIP(r)
			if !limiter.Allow(ip) {
				log.Warn().
					Str("client_ip", ip).
					Str("limit", limitKey).
					Msg("Rate limit exceeded")
				httpext.JsonError(w, "Rate limit exceeded", http.StatusTooManyRequests)
				return
			}

			next.ServeHTTP(w, r)
		})
	}
}

// ClientIP uses the first X-Forwarded-For hop if behind a proxy, otherwise
// the remote host
func ClientIP(r *http.Request) string {
	if fwd := r.Header.Get("X-Forwarded-For"); fwd != "" {
		first, _, _ := strings.Cut(fwd, ",")
		return strings.TrimSpace(first)
	}
	host, _, err := net.SplitHostPort(r.RemoteAddr)
	if err != nil {
		return r.RemoteAddr
	}
	return host
}
