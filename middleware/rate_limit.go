package middleware

import (
	"math"
	"net/http"
	"strconv"
	"sync"
	"time"

	"github.com/labstack/echo/v4"
	"golang.org/x/time/rate"

	"fin-hub/internal/domain"
)

const (
	// How often idle client buckets are swept, and how long a client may be
	// idle before its bucket is dropped.
	bucketSweepInterval = 3 * time.Minute
	bucketIdleTTL       = 5 * time.Minute
)

// clientBucket pairs a token bucket with the last time its client was seen,
// so idle buckets can be reclaimed.
type clientBucket struct {
	bucket   *rate.Limiter
	lastSeen time.Time
}

// RateLimiter throttles requests per client IP. Each route group gets its own
// instance so the login endpoint can run a much tighter budget than the API.
type RateLimiter struct {
	mu      sync.Mutex
	clients map[string]*clientBucket
	limit   rate.Limit
	burst   int
	now     func() time.Time
}

// NewRateLimiter creates a limiter allowing limit requests per second with
// the given burst, and starts the background sweep of idle clients.
func NewRateLimiter(limit rate.Limit, burst int) *RateLimiter {
	rl := &RateLimiter{
		clients: make(map[string]*clientBucket),
		limit:   limit,
		burst:   burst,
		now:     time.Now,
	}
	go rl.sweepIdle()
	return rl
}

func (rl *RateLimiter) allow(ip string) bool {
	rl.mu.Lock()
	defer rl.mu.Unlock()

	cb, ok := rl.clients[ip]
	if !ok {
		cb = &clientBucket{bucket: rate.NewLimiter(rl.limit, rl.burst)}
		rl.clients[ip] = cb
	}
	cb.lastSeen = rl.now()
	return cb.bucket.Allow()
}

func (rl *RateLimiter) sweepIdle() {
	ticker := time.NewTicker(bucketSweepInterval)
	defer ticker.Stop()

	for range ticker.C {
		rl.mu.Lock()
		for ip, cb := range rl.clients {
			if rl.now().Sub(cb.lastSeen) > bucketIdleTTL {
				delete(rl.clients, ip)
			}
		}
		rl.mu.Unlock()
	}
}

// retryAfterSeconds is the advisory wait until the bucket refills one token,
// rounded up and never below one second.
func (rl *RateLimiter) retryAfterSeconds() int {
	if rl.limit <= 0 {
		return 1
	}
	secs := int(math.Ceil(1 / float64(rl.limit)))
	if secs < 1 {
		return 1
	}
	return secs
}

// Middleware rejects over-budget requests with 429 and a Retry-After hint.
func (rl *RateLimiter) Middleware() echo.MiddlewareFunc {
	return func(next echo.HandlerFunc) echo.HandlerFunc {
		return func(c echo.Context) error {
			if !rl.allow(c.RealIP()) {
				c.Response().Header().Set("Retry-After", strconv.Itoa(rl.retryAfterSeconds()))
				return echo.NewHTTPError(http.StatusTooManyRequests, domain.ErrRateLimited.Error())
			}
			return next(c)
		}
	}
}
