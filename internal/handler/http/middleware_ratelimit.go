package http

import (
	"net"
	"net/http"
	"sync"
	"time"

	"github.com/mlevkov/go-fin-keeper/internal/logger"
	"github.com/mlevkov/go-fin-keeper/internal/utils"
)

// bucketCleanupInterval controls how often stale per-client buckets are
// evicted from the limiter map.
const bucketCleanupInterval = 5 * time.Minute

// bucket is the token-bucket state of a single client address.
type bucket struct {
	tokens   float64
	lastSeen time.Time
}

// rateLimiter is a per-client-address token-bucket limiter. Each client
// starts with a full burst of tokens; tokens refill continuously at the
// configured per-minute rate. A request is allowed when at least one whole
// token is available.
type rateLimiter struct {
	mu      sync.Mutex
	buckets map[string]*bucket

	ratePerSecond float64
	burst         float64
}

// newRateLimiter constructs a limiter refilling ratePerMinute tokens per
// minute with the given burst capacity. ratePerMinute must be positive;
// a non-positive burst defaults to one full minute of tokens.
func newRateLimiter(ratePerMinute, burst int) *rateLimiter {
	if burst <= 0 {
		burst = ratePerMinute
	}

	rl := &rateLimiter{
		buckets:       make(map[string]*bucket),
		ratePerSecond: float64(ratePerMinute) / 60,
		burst:         float64(burst),
	}
	go rl.cleanupLoop()

	return rl
}

// allow reports whether a request from the given client address may proceed,
// consuming one token when it does.
func (rl *rateLimiter) allow(clientAddr string) bool {
	rl.mu.Lock()
	defer rl.mu.Unlock()

	now := time.Now()
	b, exists := rl.buckets[clientAddr]
	if !exists {
		rl.buckets[clientAddr] = &bucket{tokens: rl.burst - 1, lastSeen: now}
		return true
	}

	// refill for the elapsed interval, capped at burst
	b.tokens += now.Sub(b.lastSeen).Seconds() * rl.ratePerSecond
	if b.tokens > rl.burst {
		b.tokens = rl.burst
	}
	b.lastSeen = now

	if b.tokens < 1 {
		return false
	}
	b.tokens--

	return true
}

// cleanupLoop periodically drops buckets that have been idle long enough to
// be full again, keeping the map bounded by the active client set.
func (rl *rateLimiter) cleanupLoop() {
	ticker := time.NewTicker(bucketCleanupInterval)
	defer ticker.Stop()

	for range ticker.C {
		cutoff := time.Now().Add(-bucketCleanupInterval)

		rl.mu.Lock()
		for addr, b := range rl.buckets {
			if b.lastSeen.Before(cutoff) {
				delete(rl.buckets, addr)
			}
		}
		rl.mu.Unlock()
	}
}

// withRateLimit applies the per-client token-bucket ahead of every route,
// including the authentication endpoints, so brute-force attempts are
// slowed before any credential checking happens. A zero rate disables the
// limiter entirely.
func (h *Handler) withRateLimit(next http.Handler) http.Handler {
	if h.serverConfig.RateLimitRPM <= 0 {
		return next
	}

	limiter := newRateLimiter(h.serverConfig.RateLimitRPM, h.serverConfig.RateLimitBurst)

	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		clientAddr := clientAddress(r)

		if !limiter.allow(clientAddr) {
			logger.FromRequest(r).Warn().Str("client", clientAddr).Msg("rate limit exceeded")
			utils.WriteFailure(w, http.StatusTooManyRequests, "too many requests")
			return
		}

		next.ServeHTTP(w, r)
	})
}

// clientAddress extracts the client host from the request, dropping the
// ephemeral port so all connections from one address share a bucket.
func clientAddress(r *http.Request) string {
	host, _, err := net.SplitHostPort(r.RemoteAddr)
	if err != nil {
		return r.RemoteAddr
	}
	return host
}
