package middleware

import (
	"errors"
	"net"
	"net/http"
	"strconv"
	"sync"
	"time"

	"github.com/dvloznov/fintrack/internal/domain"
	"golang.org/x/time/rate"
)

// timeNow is swapped in tests.
var timeNow = time.Now

// RateLimiter applies a per-key token bucket. Keys are the authenticated
// subject when available, else the client IP. Quota exhaustion is 429 with a
// Retry-After hint; a policy-blocked key is 403 regardless of quota.
type RateLimiter struct {
	mu       sync.Mutex
	limiters map[string]*rate.Limiter
	blocked  map[string]struct{}
	limit    rate.Limit
	burst    int
}

// NewRateLimiter creates a limiter allowing perMinute requests per key with
// the given burst.
func NewRateLimiter(perMinute, burst int) *RateLimiter {
	return &RateLimiter{
		limiters: make(map[string]*rate.Limiter),
		blocked:  make(map[string]struct{}),
		limit:    rate.Limit(float64(perMinute) / 60.0),
		burst:    burst,
	}
}

// Block denies all requests for a key, independent of quota.
func (rl *RateLimiter) Block(key string) {
	rl.mu.Lock()
	defer rl.mu.Unlock()
	rl.blocked[key] = struct{}{}
}

// Unblock lifts a policy block.
func (rl *RateLimiter) Unblock(key string) {
	rl.mu.Lock()
	defer rl.mu.Unlock()
	delete(rl.blocked, key)
}

// check spends weight tokens for the key. It returns domain.ErrBlocked for a
// policy-blocked key and domain.ErrRateLimited when the quota is exhausted.
func (rl *RateLimiter) check(key string, weight int) error {
	rl.mu.Lock()
	if _, denied := rl.blocked[key]; denied {
		rl.mu.Unlock()
		return domain.ErrBlocked
	}
	lim, ok := rl.limiters[key]
	if !ok {
		lim = rate.NewLimiter(rl.limit, rl.burst)
		rl.limiters[key] = lim
	}
	rl.mu.Unlock()

	if !lim.AllowN(timeNow(), weight) {
		return domain.ErrRateLimited
	}
	return nil
}

func requestKey(r *http.Request) string {
	if subject := Subject(r.Context()); subject != "" {
		return subject
	}
	host, _, err := net.SplitHostPort(r.RemoteAddr)
	if err != nil {
		return r.RemoteAddr
	}
	return host
}

// Middleware enforces the limit with the given request weight. Heavier
// operations (receipt scans, seeding) pass a weight above 1.
func (rl *RateLimiter) Middleware(weight int) func(http.Handler) http.Handler {
	if weight < 1 {
		weight = 1
	}
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			switch err := rl.check(requestKey(r), weight); {
			case errors.Is(err, domain.ErrBlocked):
				WriteError(w, http.StatusForbidden, "Request blocked")
			case errors.Is(err, domain.ErrRateLimited):
				// Rough reset hint: how long until `weight` tokens refill.
				retry := int(float64(weight)/float64(rl.limit)) + 1
				w.Header().Set("Retry-After", strconv.Itoa(retry))
				WriteError(w, http.StatusTooManyRequests, "Too many requests")
			default:
				next.ServeHTTP(w, r)
			}
		})
	}
}
