package web

import (
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type fakeClock struct{ t time.Time }

func (c *fakeClock) Now() time.Time          { return c.t }
func (c *fakeClock) Advance(d time.Duration) { c.t = c.t.Add(d) }

func newTestLimiter(t *testing.T, max int, window time.Duration) (*ClientLimiter, *fakeClock) {
	t.Helper()
	clock := &fakeClock{t: time.Date(2026, 1, 1, 12, 0, 0, 0, time.UTC)}
	l := NewClientLimiter(max, window)
	l.now = clock.Now
	t.Cleanup(l.Stop)
	return l, clock
}

func TestClientLimiter_RejectsBeyondMax(t *testing.T) {
	l, clock := newTestLimiter(t, 30, time.Minute)

	for i := 0; i < 30; i++ {
		ok, _ := l.Allow("1.2.3.4")
		require.True(t, ok, "request %d", i+1)
		clock.Advance(time.Second)
	}

	ok, wait := l.Allow("1.2.3.4")
	assert.False(t, ok, "31st request within 60s must be rejected")
	assert.Equal(t, 30*time.Second, wait)
}

func TestClientLimiter_EvenlySpacedStillBounded(t *testing.T) {
	l, clock := newTestLimiter(t, 30, time.Minute)

	// 31 requests spread over 59 seconds
	allowed := 0
	for i := 0; i < 31; i++ {
		if ok, _ := l.Allow("client"); ok {
			allowed++
		}
		clock.Advance(59 * time.Second / 30)
	}
	assert.Equal(t, 30, allowed)
}

func TestClientLimiter_WindowRolls(t *testing.T) {
	l, clock := newTestLimiter(t, 2, time.Minute)

	ok, _ := l.Allow("client")
	require.True(t, ok)
	clock.Advance(30 * time.Second)
	ok, _ = l.Allow("client")
	require.True(t, ok)

	ok, _ = l.Allow("client")
	require.False(t, ok)

	// first hit leaves the window
	clock.Advance(30*time.Second + time.Millisecond)
	ok, _ = l.Allow("client")
	assert.True(t, ok)

	ok, _ = l.Allow("client")
	assert.False(t, ok)
}

func TestClientLimiter_PerClient(t *testing.T) {
	l, _ := newTestLimiter(t, 1, time.Minute)

	ok, _ := l.Allow("a")
	assert.True(t, ok)
	ok, _ = l.Allow("a")
	assert.False(t, ok)
	ok, _ = l.Allow("b")
	assert.True(t, ok)
}

func TestClientLimiter_Sweep(t *testing.T) {
	l, clock := newTestLimiter(t, 5, time.Minute)

	l.Allow("old")
	clock.Advance(45 * time.Second)
	l.Allow("fresh")
	clock.Advance(20 * time.Second)

	l.sweep()

	l.mu.Lock()
	defer l.mu.Unlock()
	assert.NotContains(t, l.hits, "old")
	assert.Contains(t, l.hits, "fresh")
}

func TestClientLimiter_Middleware(t *testing.T) {
	l, _ := newTestLimiter(t, 1, time.Minute)

	calls := 0
	h := l.Middleware(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		calls++
		w.WriteHeader(http.StatusOK)
	}))

	rec := httptest.NewRecorder()
	h.ServeHTTP(rec, httptest.NewRequest(http.MethodPost, "/api/user", nil))
	assert.Equal(t, http.StatusOK, rec.Code)

	rec = httptest.NewRecorder()
	h.ServeHTTP(rec, httptest.NewRequest(http.MethodPost, "/api/user", nil))
	assert.Equal(t, http.StatusTooManyRequests, rec.Code)
	assert.Equal(t, "60", rec.Header().Get("Retry-After"))
	assert.Contains(t, rec.Body.String(), "Too many requests")
	assert.Equal(t, 1, calls)
}

func TestClientIP(t *testing.T) {
	r := httptest.NewRequest(http.MethodGet, "/", nil)
	r.RemoteAddr = "198.51.100.2:5555"
	assert.Equal(t, "198.51.100.2", clientIP(r))

	r.RemoteAddr = "198.51.100.2"
	assert.Equal(t, "198.51.100.2", clientIP(r))
}
