package utils

import (
	"booking-service/clock"
	"math"
	"net/http"
	"strconv"
	"strings"
	"sync"
	"time"

	"github.com/gin-gonic/gin"
	ccache "github.com/karlseguin/ccache/v3"
)

// maxTrackedIdentities bounds the window store so high-cardinality client
// identities cannot grow the map without limit; least-recently-used windows
// are evicted first.
const maxTrackedIdentities = 10000

type rateLimitWindow struct {
	count     int
	expiresAt time.Time
}

// RateLimiter is a fixed-window counter keyed by (purpose, client identity).
// Purposes namespace the keys so different endpoints never share counters.
// This is advisory throttling, not a security boundary.
type RateLimiter struct {
	purpose string
	window  time.Duration
	max     int

	mu      sync.Mutex
	windows *ccache.Cache[*rateLimitWindow]
	clock   clock.Clock
}

type RateLimitResult struct {
	Allowed           bool      `json:"allowed"`
	Limit             int       `json:"limit"`
	Remaining         int       `json:"remaining"`
	ResetAt           time.Time `json:"reset_at"`
	RetryAfterSeconds int       `json:"retry_after_seconds,omitempty"`
}

func NewRateLimiter(purpose string, window time.Duration, max int, clk clock.Clock) *RateLimiter {
	return &RateLimiter{
		purpose: purpose,
		window:  window,
		max:     max,
		windows: ccache.New(ccache.Configure[*rateLimitWindow]().MaxSize(maxTrackedIdentities)),
		clock:   clk,
	}
}

// Check performs the check-then-increment atomically: two simultaneous
// requests arriving at count == max-1 can never both be admitted.
func (rl *RateLimiter) Check(identity string) RateLimitResult {
	rl.mu.Lock()
	defer rl.mu.Unlock()

	now := rl.clock.Now()
	key := rl.purpose + ":" + identity

	var window *rateLimitWindow
	if item := rl.windows.Get(key); item != nil {
		window = item.Value()
	}
	if window == nil || !now.Before(window.expiresAt) {
		window = &rateLimitWindow{count: 0, expiresAt: now.Add(rl.window)}
		rl.windows.Set(key, window, rl.window)
	}

	if window.count >= rl.max {
		retryAfter := int(math.Ceil(window.expiresAt.Sub(now).Seconds()))
		if retryAfter < 1 {
			retryAfter = 1
		}
		return RateLimitResult{
			Allowed:           false,
			Limit:             rl.max,
			Remaining:         0,
			ResetAt:           window.expiresAt,
			RetryAfterSeconds: retryAfter,
		}
	}

	window.count++
	return RateLimitResult{
		Allowed:   true,
		Limit:     rl.max,
		Remaining: rl.max - window.count,
		ResetAt:   window.expiresAt,
	}
}

// ClientIdentity resolves the caller's identity for rate limiting: the first
// forwarded address, then the direct-connection header, then a shared
// "anonymous" bucket for unidentifiable clients.
func ClientIdentity(r *http.Request) string {
	forwarded := r.Header.Get("X-Forwarded-For")
	if forwarded != "" {
		parts := strings.Split(forwarded, ",")
		identity := strings.TrimSpace(parts[0])
		if identity != "" {
			return identity
		}
	}
	if realIP := r.Header.Get("X-Real-IP"); realIP != "" {
		return realIP
	}
	return "anonymous"
}

// RateLimitMiddleware rejects throttled requests with 429 and retry metadata.
func RateLimitMiddleware(limiter *RateLimiter) gin.HandlerFunc {
	return func(c *gin.Context) {
		result := limiter.Check(ClientIdentity(c.Request))

		c.Header("X-RateLimit-Limit", strconv.Itoa(result.Limit))
		c.Header("X-RateLimit-Remaining", strconv.Itoa(result.Remaining))
		c.Header("X-RateLimit-Reset", strconv.FormatInt(result.ResetAt.Unix(), 10))

		if !result.Allowed {
			c.Header("Retry-After", strconv.Itoa(result.RetryAfterSeconds))
			c.AbortWithStatusJSON(http.StatusTooManyRequests, gin.H{
				"success":           false,
				"message":           "Too many attempts. Please try again later.",
				"retryAfterSeconds": result.RetryAfterSeconds,
			})
			return
		}
		c.Next()
	}
}
