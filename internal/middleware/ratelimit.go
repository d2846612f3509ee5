package middleware

import (
	"math"
	"net"
	"net/http"
	"strconv"
	"sync"
	"time"

	"golang.org/x/time/rate"
)

const visitorIdleTTL = 10 * time.Minute

type visitor struct {
	limiter  *rate.Limiter
	lastSeen time.Time
}

// clientLimiter hands out one token bucket per client address.
type clientLimiter struct {
	mu       sync.Mutex
	visitors map[string]*visitor
	limit    rate.Limit
	burst    int
}

func newClientLimiter(perSecond float64, burst int) *clientLimiter {
	cl := &clientLimiter{
		visitors: make(map[string]*visitor),
		limit:    rate.Limit(perSecond),
		burst:    burst,
	}
	go cl.evictIdle(visitorIdleTTL)
	return cl
}

func (cl *clientLimiter) reserve(addr string, now time.Time) *rate.Reservation {
	cl.mu.Lock()
	defer cl.mu.Unlock()

	v, ok := cl.visitors[addr]
	if !ok {
		v = &visitor{limiter: rate.NewLimiter(cl.limit, cl.burst)}
		cl.visitors[addr] = v
	}
	v.lastSeen = now
	return v.limiter.ReserveN(now, 1)
}

func (cl *clientLimiter) evictIdle(ttl time.Duration) {
	ticker := time.NewTicker(ttl)
	defer ticker.Stop()

	for now := range ticker.C {
		cl.mu.Lock()
		for addr, v := range cl.visitors {
			if now.Sub(v.lastSeen) > ttl {
				delete(cl.visitors, addr)
			}
		}
		cl.mu.Unlock()
	}
}

// RateLimit returns middleware that limits requests per client IP address.
// perSecond is the sustained rate and burst the bucket size. Rejected requests
// get 429 with a Retry-After header.
func RateLimit(perSecond float64, burst int) func(http.Handler) http.Handler {
	limiter := newClientLimiter(perSecond, burst)

	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			addr, _, err := net.SplitHostPort(r.RemoteAddr)
			if err != nil {
				addr = r.RemoteAddr
			}

			now := time.Now()
			res := limiter.reserve(addr, now)
			if delay := res.DelayFrom(now); delay > 0 {
				res.CancelAt(now)
				w.Header().Set("Retry-After", strconv.Itoa(int(math.Ceil(delay.Seconds()))))
				writeJSONError(w, http.StatusTooManyRequests, "too many requests, please try again later")
				return
			}

			next.ServeHTTP(w, r)
		})
	}
}
