package render

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"strings"

	"github.com/blockedby/leetstats/internal/stats"
)

const (
	msgFetchFallback = "Unable to fetch user details"
	msgFetchFailed   = "Failed to fetch user stats"

	maxResponseBytes = 1 << 20
)

// ErrFetchFailed is returned when the proxy could not be reached or its
// answer could not be read.
var ErrFetchFailed = errors.New(msgFetchFailed)

// StatusError is a non-2xx answer from the proxy.
type StatusError struct {
	Status  int
	Message string
}

func (e *StatusError) Error() string {
	return fmt.Sprintf("%s (status %d)", e.Message, e.Status)
}

// Fetcher loads the stats of one validated username.
type Fetcher interface {
	FetchStats(ctx context.Context, username string) (stats.UserStats, error)
}

// ProxyClient talks to the proxy's /api/user endpoint.
type ProxyClient struct {
	endpoint   string
	httpClient *http.Client
}

// NewProxyClient returns a client for the proxy at baseURL.
func NewProxyClient(baseURL string, httpClient *http.Client) *ProxyClient {
	if httpClient == nil {
		httpClient = http.DefaultClient
	}
	return &ProxyClient{
		endpoint:   strings.TrimSuffix(baseURL, "/") + "/api/user",
		httpClient: httpClient,
	}
}

// FetchStats implements Fetcher.
//
// A non-2xx answer yields a *StatusError carrying the proxy's error message,
// or a generic one when the body has none. Transport and decoding failures
// wrap ErrFetchFailed.
func (c *ProxyClient) FetchStats(ctx context.Context, username string) (stats.UserStats, error) {
	payload, err := json.Marshal(map[string]string{"username": username})
	if err != nil {
		return stats.UserStats{}, fmt.Errorf("%w: %v", ErrFetchFailed, err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.endpoint, bytes.NewReader(payload))
	if err != nil {
		return stats.UserStats{}, fmt.Errorf("%w: %v", ErrFetchFailed, err)
	}
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("Accept", "application/json")

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return stats.UserStats{}, fmt.Errorf("%w: %v", ErrFetchFailed, err)
	}
	defer resp.Body.Close()

	body, err := io.ReadAll(io.LimitReader(resp.Body, maxResponseBytes))
	if err != nil {
		return stats.UserStats{}, fmt.Errorf("%w: read body: %v", ErrFetchFailed, err)
	}

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		return stats.UserStats{}, &StatusError{
			Status:  resp.StatusCode,
			Message: errorMessage(body),
		}
	}

	s, err := stats.Parse(body)
	if err != nil {
		return stats.UserStats{}, fmt.Errorf("%w: %v", ErrFetchFailed, err)
	}
	return s, nil
}

func errorMessage(body []byte) string {
	var e struct {
		Error string `json:"error"`
	}
	if err := json.Unmarshal(body, &e); err != nil || strings.TrimSpace(e.Error) == "" {
		return msgFetchFallback
	}
	return e.Error
}

// userMessage is the status line shown for a failed fetch.
func userMessage(err error) string {
	var se *StatusError
	if errors.As(err, &se) {
		return se.Message
	}
	return msgFetchFailed
}
