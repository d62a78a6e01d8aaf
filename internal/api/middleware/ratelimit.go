package middleware

import (
	"net"
	"net/http"
	"sync"
	"time"

	"golang.org/x/time/rate"

	"github.com/bracula/campus/internal/api/types"
	appErr "github.com/bracula/campus/pkg/errors"
)

const (
	visitorTTL    = 10 * time.Minute
	sweepInterval = time.Minute
)

type limiterEntry struct {
	limiter *rate.Limiter
	last    time.Time
}

// Limiter is a per-client token bucket. Idle clients are swept lazily on
// the request path, so no background goroutine outlives the server.
type Limiter struct {
	mu        sync.Mutex
	visitors  map[string]*limiterEntry
	rps       rate.Limit
	burst     int
	lastSweep time.Time
	now       func() time.Time
}

func NewLimiter(rps float64, burst int) *Limiter {
	return &Limiter{
		visitors: map[string]*limiterEntry{},
		rps:      rate.Limit(rps),
		burst:    burst,
		now:      time.Now,
	}
}

// Allow reports whether the client identified by key may proceed.
func (l *Limiter) Allow(key string) bool {
	l.mu.Lock()
	defer l.mu.Unlock()

	now := l.now()
	if now.Sub(l.lastSweep) > sweepInterval {
		for k, v := range l.visitors {
			if now.Sub(v.last) > visitorTTL {
				delete(l.visitors, k)
			}
		}
		l.lastSweep = now
	}

	le, ok := l.visitors[key]
	if !ok {
		le = &limiterEntry{limiter: rate.NewLimiter(l.rps, l.burst)}
		l.visitors[key] = le
	}
	le.last = now
	return le.limiter.AllowN(now, 1)
}

func clientIP(r *http.Request) string {
	host, _, err := net.SplitHostPort(r.RemoteAddr)
	if err != nil {
		return r.RemoteAddr
	}
	return host
}

// RateLimit rejects clients exceeding l with 429.
func RateLimit(l *Limiter) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			if !l.Allow(clientIP(r)) {
				w.Header().Set("Retry-After", "1")
				types.WriteJSON(w, http.StatusTooManyRequests, types.APIResponse{
					Status:  types.StatusError,
					Message: "Too many requests",
					Code:    string(appErr.CodeRateLimited),
				})
				return
			}
			next.ServeHTTP(w, r)
		})
	}
}
