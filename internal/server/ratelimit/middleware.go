package ratelimit

import (
	"encoding/json"
	"net"
	"net/http"
	"strconv"
	"time"

	"github.com/jonathan/roommate-matcher/internal/logctx"
)

// Middleware rejects requests over the limit with 429 and sets the
// X-RateLimit-* headers on limited endpoints. Clients are keyed by remote IP.
func Middleware(l *Limiter) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			info := l.Allow(clientID(r), r.URL.Path, r.Method)
			setHeaders(w, info)
			if !info.Allowed {
				logctx.From(r.Context()).Warn("rate limit exceeded",
					"client", clientID(r), "path", r.URL.Path, "limit", info.Limit)
				writeLimited(w, info)
				return
			}
			next.ServeHTTP(w, r)
		})
	}
}

func clientID(r *http.Request) string {
	ip, _, err := net.SplitHostPort(r.RemoteAddr)
	if err != nil {
		return r.RemoteAddr
	}
	return ip
}

func setHeaders(w http.ResponseWriter, info Info) {
	if info.Limit <= 0 {
		return
	}
	w.Header().Set("X-RateLimit-Limit", strconv.Itoa(info.Limit))
	w.Header().Set("X-RateLimit-Remaining", strconv.Itoa(info.Remaining))
	w.Header().Set("X-RateLimit-Reset", strconv.FormatInt(info.ResetTime.Unix(), 10))
}

func writeLimited(w http.ResponseWriter, info Info) {
	body := map[string]any{
		"error":   "rate_limit_exceeded",
		"message": "Rate limit exceeded. Please try again later.",
	}
	if info.Limit > 0 {
		body["limit"] = info.Limit
		body["reset_at"] = info.ResetTime.Format(time.RFC3339)
	}
	if info.RetryAfter > 0 {
		seconds := int((info.RetryAfter + time.Second - 1) / time.Second)
		body["retry_after"] = seconds
		w.Header().Set("Retry-After", strconv.Itoa(seconds))
	}

	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(http.StatusTooManyRequests)
	_ = json.NewEncoder(w).Encode(body)
}
