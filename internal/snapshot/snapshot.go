// Package snapshot captures the rendered stats panel as a PNG using
// headless Chrome.
package snapshot

import (
	"context"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/chromedp/cdproto/emulation"
	"github.com/chromedp/chromedp"

	"github.com/blockedby/leetstats/internal/logger"
)

const (
	// DefaultTimeout bounds one capture, browser start included.
	DefaultTimeout = 30 * time.Second
	// DefaultSettle covers the ring animation after the stats arrive.
	DefaultSettle = 1500 * time.Millisecond

	defaultWidth  = 900
	defaultHeight = 900
)

// ErrLookupFailed means the page showed an error instead of stats.
var ErrLookupFailed = errors.New("lookup failed")

// Options configure a Capturer. Zero fields take defaults.
type Options struct {
	Timeout time.Duration
	Settle  time.Duration
	Width   int
	Height  int
}

// Capturer drives the stats page in a fresh headless browser per capture.
type Capturer struct {
	timeout time.Duration
	settle  time.Duration
	width   int64
	height  int64
	log     *logger.Logger
}

// New creates a Capturer.
func New(opts Options, log *logger.Logger) *Capturer {
	if opts.Timeout <= 0 {
		opts.Timeout = DefaultTimeout
	}
	if opts.Settle <= 0 {
		opts.Settle = DefaultSettle
	}
	if opts.Width <= 0 {
		opts.Width = defaultWidth
	}
	if opts.Height <= 0 {
		opts.Height = defaultHeight
	}
	if log == nil {
		log = logger.Nop()
	}
	return &Capturer{
		timeout: opts.Timeout,
		settle:  opts.Settle,
		width:   int64(opts.Width),
		height:  int64(opts.Height),
		log:     log.Component("snapshot"),
	}
}

// Capture opens the page at baseURL, searches for username and writes a
// screenshot of the stats panel to outputPath.
func (c *Capturer) Capture(ctx context.Context, baseURL, username, outputPath string) error {
	if dir := filepath.Dir(outputPath); dir != "." {
		if err := os.MkdirAll(dir, 0755); err != nil {
			return fmt.Errorf("create output directory: %w", err)
		}
	}

	ctx, cancel := context.WithTimeout(ctx, c.timeout)
	defer cancel()

	cctx, cancel := newBrowser(ctx)
	defer cancel()

	var (
		settled  bool
		status   string
		class    string
		hasClass bool
		png      []byte
	)
	err := chromedp.Run(cctx,
		chromedp.ActionFunc(func(ctx context.Context) error {
			return emulation.SetDeviceMetricsOverride(c.width, c.height, 1, false).Do(ctx)
		}),
		chromedp.Navigate(pageURL(baseURL)),
		chromedp.WaitVisible("#user-input", chromedp.ByID),
		chromedp.SendKeys("#user-input", username, chromedp.ByID),
		chromedp.Click("#search-btn", chromedp.ByID),
		chromedp.Poll(settledExpr, &settled, chromedp.WithPollingInterval(100*time.Millisecond)),
		chromedp.Text("#status-message", &status, chromedp.ByID),
		chromedp.AttributeValue("#status-message", "class", &class, &hasClass, chromedp.ByID),
	)
	if err != nil {
		return fmt.Errorf("chromedp run: %w", err)
	}

	if hasClass && strings.Contains(class, "error") {
		return fmt.Errorf("%w: %s", ErrLookupFailed, status)
	}

	if err := chromedp.Run(cctx,
		chromedp.Sleep(c.settle),
		chromedp.Screenshot("#stats-panel", &png, chromedp.NodeVisible, chromedp.ByID),
	); err != nil {
		return fmt.Errorf("chromedp screenshot: %w", err)
	}

	if err := os.WriteFile(outputPath, png, 0644); err != nil {
		return fmt.Errorf("write PNG: %w", err)
	}

	c.log.Info().Str("username", username).Str("path", outputPath).Int("bytes", len(png)).Msg("snapshot saved")
	return nil
}

// newBrowser starts a headless Chrome bound to ctx. The returned cancel
// closes the browser.
func newBrowser(ctx context.Context) (context.Context, context.CancelFunc) {
	actx, cancelAlloc := chromedp.NewExecAllocator(ctx,
		chromedp.Flag("headless", true),
		chromedp.Flag("disable-gpu", true),
		chromedp.Flag("no-sandbox", true),
		chromedp.Flag("disable-dev-shm-usage", true),
	)
	cctx, cancelCtx := chromedp.NewContext(actx)
	return cctx, func() {
		cancelCtx()
		cancelAlloc()
	}
}

// settledExpr is true once the page has left the in-flight state.
const settledExpr = `(function () {
	const s = document.getElementById("status-message");
	return s.classList.contains("success") || s.classList.contains("error");
})()`

func pageURL(baseURL string) string {
	return strings.TrimSuffix(baseURL, "/") + "/"
}
