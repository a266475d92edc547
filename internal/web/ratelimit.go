package web

import (
	"math"
	"net"
	"net/http"
	"strconv"
	"sync"
	"time"
)

// ClientLimiter bounds requests per client within a rolling window.
// Each client keeps the timestamps of its requests inside the window, so the
// bound holds no matter how the requests are spaced.
type ClientLimiter struct {
	mu     sync.Mutex
	hits   map[string][]time.Time
	max    int
	window time.Duration
	now    func() time.Time

	stopOnce sync.Once
	done     chan struct{}
}

// NewClientLimiter creates a limiter allowing max requests per window and
// starts a sweeper that drops idle clients.
func NewClientLimiter(max int, window time.Duration) *ClientLimiter {
	l := &ClientLimiter{
		hits:   make(map[string][]time.Time),
		max:    max,
		window: window,
		now:    time.Now,
		done:   make(chan struct{}),
	}
	go l.sweepLoop()
	return l
}

// Allow records a request from key. When the window is full it returns false
// and how long until the oldest request leaves the window.
func (l *ClientLimiter) Allow(key string) (bool, time.Duration) {
	l.mu.Lock()
	defer l.mu.Unlock()

	now := l.now()
	recent := prune(l.hits[key], now.Add(-l.window))

	if len(recent) >= l.max {
		l.hits[key] = recent
		return false, recent[0].Add(l.window).Sub(now)
	}

	l.hits[key] = append(recent, now)
	return true, 0
}

// prune drops timestamps at or before cutoff; ts is in ascending order.
func prune(ts []time.Time, cutoff time.Time) []time.Time {
	i := 0
	for i < len(ts) && !ts[i].After(cutoff) {
		i++
	}
	return ts[i:]
}

func (l *ClientLimiter) sweepLoop() {
	ticker := time.NewTicker(l.window)
	defer ticker.Stop()

	for {
		select {
		case <-ticker.C:
			l.sweep()
		case <-l.done:
			return
		}
	}
}

// sweep removes clients with no request inside the window.
func (l *ClientLimiter) sweep() {
	l.mu.Lock()
	defer l.mu.Unlock()

	cutoff := l.now().Add(-l.window)
	for key, ts := range l.hits {
		if len(ts) == 0 || !ts[len(ts)-1].After(cutoff) {
			delete(l.hits, key)
		}
	}
}

// Stop stops the sweeper goroutine.
func (l *ClientLimiter) Stop() {
	l.stopOnce.Do(func() {
		close(l.done)
	})
}

// Middleware rejects requests over the limit with 429 before they reach next.
func (l *ClientLimiter) Middleware(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		ok, wait := l.Allow(clientIP(r))
		if !ok {
			secs := int(math.Ceil(wait.Seconds()))
			if secs < 1 {
				secs = 1
			}
			w.Header().Set("Retry-After", strconv.Itoa(secs))
			WriteError(w, r, http.StatusTooManyRequests, "Too many requests, please try again later", nil)
			return
		}

		next.ServeHTTP(w, r)
	})
}

// clientIP extracts the client IP from the request. RemoteAddr is trusted;
// when running behind a proxy the RealIP middleware has already rewritten it.
func clientIP(r *http.Request) string {
	host, _, err := net.SplitHostPort(r.RemoteAddr)
	if err != nil {
		return r.RemoteAddr
	}
	return host
}
