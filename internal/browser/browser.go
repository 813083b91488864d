// Package browser wraps a chromedp session for sources whose listing only
// works with a real browser (ASP.NET grids driven by javascript postbacks).
package browser

import (
	"context"
	"fmt"
	"time"

	"github.com/chromedp/chromedp"

	"arcompras/comprasworker/logger"
)

const defaultUserAgent = "Mozilla/5.0 (Windows NT 10.0; Win64; x64) AppleWebKit/537.36 (KHTML, like Gecko) Chrome/122.0.0.0 Safari/537.36"

// Session is one headless Chrome tab. Not safe for concurrent use.
type Session struct {
	ctx         context.Context
	cancel      context.CancelFunc
	allocCancel context.CancelFunc
	log         *logger.Logger
}

// NewSession starts Chrome and opens a tab. execPath overrides the binary
// location when set.
func NewSession(parent context.Context, headless bool, execPath string) (*Session, error) {
	opts := append(chromedp.DefaultExecAllocatorOptions[:],
		chromedp.Flag("headless", headless),
		chromedp.Flag("disable-gpu", true),
		chromedp.Flag("disable-dev-shm-usage", true),
		chromedp.NoSandbox,
		chromedp.WindowSize(1920, 1080),
		chromedp.UserAgent(defaultUserAgent),
	)
	if execPath != "" {
		opts = append(opts, chromedp.ExecPath(execPath))
	}

	allocCtx, allocCancel := chromedp.NewExecAllocator(parent, opts...)
	ctx, cancel := chromedp.NewContext(allocCtx)

	// Start the browser now so a missing binary fails here, not mid-scrape
	if err := chromedp.Run(ctx); err != nil {
		cancel()
		allocCancel()
		return nil, fmt.Errorf("failed to start browser: %w", err)
	}

	return &Session{
		ctx:         ctx,
		cancel:      cancel,
		allocCancel: allocCancel,
		log:         logger.ForBrowser(),
	}, nil
}

// Navigate loads a URL and waits for the body to be ready.
func (s *Session) Navigate(url string, timeout time.Duration) error {
	ctx, cancel := context.WithTimeout(s.ctx, timeout)
	defer cancel()
	s.log.Debug().Str("url", url).Msg("Navigating")
	return chromedp.Run(ctx,
		chromedp.Navigate(url),
		chromedp.WaitReady("body", chromedp.ByQuery),
	)
}

// WaitReadyXPath blocks until a node matching the XPath exists.
func (s *Session) WaitReadyXPath(xpath string, timeout time.Duration) error {
	ctx, cancel := context.WithTimeout(s.ctx, timeout)
	defer cancel()
	return chromedp.Run(ctx, chromedp.WaitReady(xpath, chromedp.BySearch))
}

// ClickXPath scrolls a node into view and clicks it.
func (s *Session) ClickXPath(xpath string, timeout time.Duration) error {
	ctx, cancel := context.WithTimeout(s.ctx, timeout)
	defer cancel()
	return chromedp.Run(ctx,
		chromedp.ScrollIntoView(xpath, chromedp.BySearch),
		chromedp.Click(xpath, chromedp.BySearch),
	)
}

// HTML returns the full rendered markup of the current page.
func (s *Session) HTML(timeout time.Duration) (string, error) {
	ctx, cancel := context.WithTimeout(s.ctx, timeout)
	defer cancel()
	var html string
	if err := chromedp.Run(ctx, chromedp.OuterHTML("html", &html, chromedp.ByQuery)); err != nil {
		return "", err
	}
	return html, nil
}

// Location returns the current page URL.
func (s *Session) Location() (string, error) {
	ctx, cancel := context.WithTimeout(s.ctx, 10*time.Second)
	defer cancel()
	var url string
	if err := chromedp.Run(ctx, chromedp.Location(&url)); err != nil {
		return "", err
	}
	return url, nil
}

// WaitLocationChange polls until the page URL differs from old.
func (s *Session) WaitLocationChange(old string, timeout time.Duration) error {
	deadline := time.Now().Add(timeout)
	for time.Now().Before(deadline) {
		current, err := s.Location()
		if err != nil {
			return err
		}
		if current != old {
			return nil
		}
		time.Sleep(200 * time.Millisecond)
	}
	return fmt.Errorf("url did not change from %s within %v", old, timeout)
}

// Back navigates one step back in the tab history.
func (s *Session) Back(timeout time.Duration) error {
	ctx, cancel := context.WithTimeout(s.ctx, timeout)
	defer cancel()
	return chromedp.Run(ctx,
		chromedp.NavigateBack(),
		chromedp.WaitReady("body", chromedp.ByQuery),
	)
}

// Sleep pauses inside the tab context, honoring cancellation.
func (s *Session) Sleep(d time.Duration) {
	select {
	case <-s.ctx.Done():
	case <-time.After(d):
	}
}

// Close shuts the tab and the browser down.
func (s *Session) Close() {
	s.cancel()
	s.allocCancel()
}
