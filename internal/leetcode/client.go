// Package leetcode is the client for the upstream GraphQL API that owns the
// profile statistics.
package leetcode

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net"
	"net/http"
	"strconv"
	"time"

	"github.com/google/uuid"

	"github.com/blockedby/leetstats/internal/logger"
)

const (
	// DefaultURL is the public GraphQL endpoint.
	DefaultURL = "https://leetcode.com/graphql/"
	// DefaultTimeout bounds one upstream call, throttle wait included.
	DefaultTimeout = 10 * time.Second

	maxBodyBytes      = 1 << 20
	defaultRetryAfter = 30 * time.Second
	userAgent         = "Mozilla/5.0 (compatible; leetstats/1.0)"
)

// Config holds the configuration for the upstream client.
type Config struct {
	URL     string
	Timeout time.Duration
	// RPS and Burst configure the shared outbound throttle; zero RPS disables it.
	RPS   float64
	Burst int
	// HTTPClient defaults to a client without its own timeout.
	HTTPClient *http.Client
}

// Client fetches profile statistics from the upstream API.
type Client struct {
	httpClient *http.Client
	url        string
	timeout    time.Duration
	limiter    *RateLimiter
	log        *logger.Logger
}

// NewClient creates a new upstream client with the provided configuration.
func NewClient(cfg Config, log *logger.Logger) *Client {
	if cfg.URL == "" {
		cfg.URL = DefaultURL
	}
	if cfg.Timeout <= 0 {
		cfg.Timeout = DefaultTimeout
	}
	if cfg.HTTPClient == nil {
		cfg.HTTPClient = &http.Client{}
	}
	if log == nil {
		log = logger.Nop()
	}

	c := &Client{
		httpClient: cfg.HTTPClient,
		url:        cfg.URL,
		timeout:    cfg.Timeout,
		log:        log.Component("leetcode"),
	}
	if cfg.RPS > 0 {
		burst := cfg.Burst
		if burst < 1 {
			burst = 1
		}
		c.limiter = NewRateLimiter(cfg.RPS, burst)
	}
	return c
}

// FetchUserProgress runs the progress query for username and returns the
// upstream body unchanged. username must already be validated.
//
// Errors wrap ErrTimeout, ErrUserNotFound or ErrUpstream.
func (c *Client) FetchUserProgress(ctx context.Context, username string) ([]byte, error) {
	ctx, cancel := context.WithTimeout(ctx, c.timeout)
	defer cancel()

	log := c.log.With().
		Str("call_id", uuid.NewString()).
		Str("username", username).
		Logger()
	start := time.Now()

	if c.limiter != nil {
		// Wait fails without sleeping when the backoff or the token would
		// arrive after the deadline; only a cancelled caller is not a timeout
		if err := c.limiter.Wait(ctx); err != nil {
			if errors.Is(ctx.Err(), context.Canceled) {
				return nil, fmt.Errorf("%w: %w", ErrUpstream, err)
			}
			return nil, fmt.Errorf("%w: throttled: %v", ErrTimeout, err)
		}
	}

	payload, err := json.Marshal(newUserProgressRequest(username))
	if err != nil {
		return nil, fmt.Errorf("%w: encode query: %v", ErrUpstream, err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.url, bytes.NewReader(payload))
	if err != nil {
		return nil, fmt.Errorf("%w: build request: %v", ErrUpstream, err)
	}
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("Accept", "application/json")
	req.Header.Set("User-Agent", userAgent)
	req.Header.Set("Referer", refererFor(req))

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return nil, classify(ctx, err)
	}
	defer resp.Body.Close()

	if resp.StatusCode == http.StatusTooManyRequests && c.limiter != nil {
		wait := retryAfter(resp.Header.Get("Retry-After"))
		c.limiter.SetBackoff(wait)
		log.Warn().Dur("backoff", wait).Msg("upstream throttled us")
	}
	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		return nil, fmt.Errorf("%w: status %d", ErrUpstream, resp.StatusCode)
	}

	body, err := io.ReadAll(io.LimitReader(resp.Body, maxBodyBytes+1))
	if err != nil {
		return nil, classify(ctx, fmt.Errorf("read body: %w", err))
	}
	if len(body) > maxBodyBytes {
		return nil, fmt.Errorf("%w: body exceeds %d bytes", ErrUpstream, maxBodyBytes)
	}

	found, err := hasMatchedUser(body)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrUpstream, err)
	}
	if !found {
		return nil, ErrUserNotFound
	}

	log.Debug().Dur("took", time.Since(start)).Int("bytes", len(body)).Msg("upstream call done")
	return body, nil
}

// hasMatchedUser reports whether data.matchedUser is present and non-null.
func hasMatchedUser(body []byte) (bool, error) {
	var envelope struct {
		Data *struct {
			MatchedUser json.RawMessage `json:"matchedUser"`
		} `json:"data"`
	}
	if err := json.Unmarshal(body, &envelope); err != nil {
		return false, fmt.Errorf("decode body: %w", err)
	}
	if envelope.Data == nil {
		return false, nil
	}
	m := bytes.TrimSpace(envelope.Data.MatchedUser)
	return len(m) > 0 && !bytes.Equal(m, []byte("null")), nil
}

// classify maps transport errors onto ErrTimeout or ErrUpstream.
// A caller that went away is not a timeout.
func classify(ctx context.Context, err error) error {
	if errors.Is(ctx.Err(), context.Canceled) {
		return fmt.Errorf("%w: %w", ErrUpstream, err)
	}
	if ctx.Err() != nil || errors.Is(err, context.DeadlineExceeded) {
		return fmt.Errorf("%w: %v", ErrTimeout, err)
	}
	var netErr net.Error
	if errors.As(err, &netErr) && netErr.Timeout() {
		return fmt.Errorf("%w: %v", ErrTimeout, err)
	}
	return fmt.Errorf("%w: %v", ErrUpstream, err)
}

// retryAfter parses a Retry-After header given in seconds.
func retryAfter(v string) time.Duration {
	if secs, err := strconv.Atoi(v); err == nil && secs > 0 {
		return time.Duration(secs) * time.Second
	}
	return defaultRetryAfter
}

func refererFor(req *http.Request) string {
	return req.URL.Scheme + "://" + req.URL.Host
}
