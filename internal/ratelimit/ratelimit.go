// Package ratelimit provides a redis-backed fixed-window request limiter as
// chi-compatible middleware. Counters live in redis so every replica of a
// service shares the same window. When redis is unavailable the limiter
// fails open; availability wins over strictness here.
package ratelimit

import (
	"encoding/json"
	"fmt"
	"log"
	"net"
	"net/http"
	"strconv"
	"time"

	"github.com/redis/go-redis/v9"
)

const window = time.Minute

// PerMinute allows perMinute requests per client IP per minute for the
// wrapped routes. name keeps counters for different endpoints apart. A nil
// client disables limiting entirely.
func PerMinute(name string, perMinute int, rdb *redis.Client) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		if rdb == nil || perMinute <= 0 {
			return next
		}

		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			ctx := r.Context()
			key := fmt.Sprintf("ratelimit:%s:ip:%s", name, clientIP(r))

			// INCR and EXPIRE travel in one pipeline so a counter can
			// never outlive its window. ExpireNX only arms the timer on
			// the hit that created the key.
			pipe := rdb.TxPipeline()
			incr := pipe.Incr(ctx, key)
			pipe.ExpireNX(ctx, key, window)
			if _, err := pipe.Exec(ctx); err != nil {
				log.Printf("ratelimit: redis error for %s, failing open: %v", key, err)
				next.ServeHTTP(w, r)
				return
			}
			count := incr.Val()

			remaining := int64(perMinute) - count
			if remaining < 0 {
				remaining = 0
			}
			w.Header().Set("X-RateLimit-Limit", strconv.Itoa(perMinute))
			w.Header().Set("X-RateLimit-Remaining", strconv.FormatInt(remaining, 10))

			if count > int64(perMinute) {
				retryAfter := int(window / time.Second)
				if ttl, err := rdb.TTL(ctx, key).Result(); err == nil && ttl > 0 {
					retryAfter = int(ttl / time.Second)
				}
				w.Header().Set("Retry-After", strconv.Itoa(retryAfter))
				w.Header().Set("Content-Type", "application/json")
				w.WriteHeader(http.StatusTooManyRequests)
				_ = json.NewEncoder(w).Encode(map[string]any{
					"detail": fmt.Sprintf("Rate limit exceeded: %d per 1 minute", perMinute),
				})
				return
			}

			next.ServeHTTP(w, r)
		})
	}
}

// clientIP trusts RemoteAddr, which middleware.RealIP has already rewritten
// from X-Forwarded-For when the request came through the proxy.
func clientIP(r *http.Request) string {
	host, _, err := net.SplitHostPort(r.RemoteAddr)
	if err != nil {
		if r.RemoteAddr != "" {
			return r.RemoteAddr
		}
		return "unknown"
	}
	return host
}
