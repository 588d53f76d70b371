package api

import (
	"context"
	"log/slog"
	"net"
	"net/http"
	"strconv"
	"strings"
	"time"
)

// RequestCounter is the persisted per-caller daily counter. Satisfied by
// *store.Store.
type RequestCounter interface {
	IncrementRequestCount(ctx context.Context, day time.Time, ip string) (int64, error)
}

// dailyLimitMiddleware enforces the per-IP daily request ceiling.
// The counter lives in Postgres so the limit survives restarts and is
// shared across replicas. It strictly increases per request; once past
// the ceiling every further request that day gets 429 until the day
// rolls over (UTC).
//
// A counter failure lets the request through: availability over strict
// accounting.
func dailyLimitMiddleware(counter RequestCounter, limit int, trustProxy bool, logger *slog.Logger) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			if r.Method == http.MethodOptions {
				next.ServeHTTP(w, r)
				return
			}

			ip := clientIP(r, trustProxy)
			day := time.Now().UTC().Truncate(24 * time.Hour)

			count, err := counter.IncrementRequestCount(r.Context(), day, ip)
			if err != nil {
				logger.Error("incrementing request counter", "ip", ip, "error", err)
				next.ServeHTTP(w, r)
				return
			}
			if count > int64(limit) {
				logger.Warn("daily request limit exceeded", "ip", ip, "count", count, "limit", limit)
				w.Header().Set("Retry-After", strconv.Itoa(secondsToMidnightUTC(time.Now().UTC())))
				writeError(w, http.StatusTooManyRequests, "rate_limited", "daily request limit reached", logger)
				return
			}

			next.ServeHTTP(w, r)
		})
	}
}

// secondsToMidnightUTC is the Retry-After hint for a capped caller.
func secondsToMidnightUTC(now time.Time) int {
	midnight := now.Truncate(24 * time.Hour).Add(24 * time.Hour)
	return int(midnight.Sub(now).Seconds())
}

// clientIP extracts the caller IP.
//
// When trustProxy is true, X-Real-IP is checked first, then the first
// entry of X-Forwarded-For. Header values are validated with net.ParseIP
// so arbitrary strings cannot become rate-limit keys. When false, only
// RemoteAddr is used.
func clientIP(r *http.Request, trustProxy bool) string {
	if trustProxy {
		if xri := r.Header.Get("X-Real-IP"); xri != "" {
			if ip := net.ParseIP(strings.TrimSpace(xri)); ip != nil {
				return ip.String()
			}
		}
		if xff := r.Header.Get("X-Forwarded-For"); xff != "" {
			raw := xff
			if first, _, ok := strings.Cut(xff, ","); ok {
				raw = first
			}
			if ip := net.ParseIP(strings.TrimSpace(raw)); ip != nil {
				return ip.String()
			}
		}
	}

	ip, _, err := net.SplitHostPort(r.RemoteAddr)
	if err != nil {
		return r.RemoteAddr
	}
	return ip
}
