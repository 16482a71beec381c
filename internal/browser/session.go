// Package browser owns the lifecycle of the headless Chrome process and its
// single page context.
package browser

import (
	"context"
	"fmt"
	"time"

	"github.com/chromedp/chromedp"
)

// Options configures the browser launch.
type Options struct {
	Headless   bool
	UserAgent  string
	NavTimeout time.Duration
}

// Session wraps one browser process with one page. The caller must Close
// the session on every exit path.
type Session struct {
	ctx         context.Context
	allocCancel context.CancelFunc
	ctxCancel   context.CancelFunc
	navTimeout  time.Duration
}

// New launches the browser and prepares the page context. The page is not
// navigated yet, so event listeners can attach first.
func New(parent context.Context, opts Options) *Session {
	execOpts := append(chromedp.DefaultExecAllocatorOptions[:],
		chromedp.DisableGPU,
		chromedp.NoSandbox,
		chromedp.Flag("no-first-run", true),
		chromedp.Flag("disable-default-apps", true),
		chromedp.Flag("disable-extensions", true),
		chromedp.Flag("disable-blink-features", "AutomationControlled"),
	)
	// DefaultExecAllocatorOptions already runs headless; only opt out.
	if !opts.Headless {
		execOpts = append(execOpts, chromedp.Flag("headless", false))
	}
	if opts.UserAgent != "" {
		execOpts = append(execOpts, chromedp.UserAgent(opts.UserAgent))
	}

	allocCtx, allocCancel := chromedp.NewExecAllocator(parent, execOpts...)
	ctx, ctxCancel := chromedp.NewContext(allocCtx)

	return &Session{
		ctx:         ctx,
		allocCancel: allocCancel,
		ctxCancel:   ctxCancel,
		navTimeout:  opts.NavTimeout,
	}
}

// Context returns the page context for listeners and follow-up actions.
func (s *Session) Context() context.Context {
	return s.ctx
}

// Navigate drives the page to targetURL and waits for the body to be ready,
// bounded by the configured navigation timeout.
func (s *Session) Navigate(targetURL string) error {
	navCtx, cancel := context.WithTimeout(s.ctx, s.navTimeout)
	defer cancel()

	if err := chromedp.Run(navCtx,
		chromedp.Navigate(targetURL),
		chromedp.WaitReady("body"),
	); err != nil {
		return fmt.Errorf("navigation to %s failed: %w", targetURL, err)
	}
	return nil
}

// Settle blocks for the given duration so late console activity can surface.
func (s *Session) Settle(d time.Duration) error {
	if d <= 0 {
		return nil
	}
	return chromedp.Run(s.ctx, chromedp.Sleep(d))
}

// ScrollThrough scrolls to the bottom of the page and back to trigger
// lazy-loaded content whose scripts may emit further console output.
func (s *Session) ScrollThrough(pause time.Duration) error {
	return chromedp.Run(s.ctx,
		chromedp.Evaluate(`window.scrollTo(0, document.body.scrollHeight)`, nil),
		chromedp.Sleep(pause),
		chromedp.Evaluate(`window.scrollTo(0, 0)`, nil),
		chromedp.Sleep(pause),
	)
}

// Close terminates the page context and the browser process.
func (s *Session) Close() {
	s.ctxCancel()
	s.allocCancel()
}
