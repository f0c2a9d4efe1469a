package api

import (
	"math"
	"net"
	"net/http"
	"strconv"
	"strings"
	"sync"
	"time"
)

// limiter counts requests per client in fixed windows. Expired windows are
// swept from allow at most once per period.
type limiter struct {
	mu        sync.Mutex
	limit     int
	period    time.Duration
	clients   map[string]window
	lastSweep time.Time
	now       func() time.Time
}

type window struct {
	start time.Time
	used  int
}

func newLimiter(limit int, period time.Duration) *limiter {
	return &limiter{
		limit:   limit,
		period:  period,
		clients: make(map[string]window),
		now:     time.Now,
	}
}

// allow records a request from client. A client over its limit gets false
// and the time left until its window resets.
func (l *limiter) allow(client string) (bool, time.Duration) {
	l.mu.Lock()
	defer l.mu.Unlock()

	now := l.now()
	if now.Sub(l.lastSweep) >= l.period {
		for c, w := range l.clients {
			if now.Sub(w.start) >= l.period {
				delete(l.clients, c)
			}
		}
		l.lastSweep = now
	}

	w, ok := l.clients[client]
	if !ok || now.Sub(w.start) >= l.period {
		w = window{start: now}
	}
	if w.used >= l.limit {
		return false, l.period - now.Sub(w.start)
	}
	w.used++
	l.clients[client] = w
	return true, 0
}

// wrap answers 429 with Retry-After once a client is over the limit.
func (l *limiter) wrap(next http.HandlerFunc) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		ok, wait := l.allow(clientIP(r))
		if !ok {
			w.Header().Set("Retry-After", strconv.Itoa(int(math.Ceil(wait.Seconds()))))
			http.Error(w, "rate limit exceeded", http.StatusTooManyRequests)
			return
		}
		next(w, r)
	}
}

// clientIP prefers the first X-Forwarded-For entry, then the remote address
// without its port.
func clientIP(r *http.Request) string {
	if xff := r.Header.Get("X-Forwarded-For"); xff != "" {
		first, _, _ := strings.Cut(xff, ",")
		return strings.TrimSpace(first)
	}
	if host, _, err := net.SplitHostPort(r.RemoteAddr); err == nil {
		return host
	}
	return r.RemoteAddr
}
