// Package renderer loads JavaScript-heavy pages through headless Chrome.
package renderer

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"github.com/chromedp/chromedp"

	"github.com/deusflow/krnews/internal/scraper"
)

// Renderer keeps one browser open for a whole run; each Load opens a tab.
type Renderer struct {
	allocCancel   context.CancelFunc
	browserCtx    context.Context
	browserCancel context.CancelFunc
	waitSelector  string
	settle        time.Duration
	timeout       time.Duration
}

// Options configures the browser.
type Options struct {
	// ChromePath overrides the browser binary; empty uses the chromedp lookup.
	ChromePath string
	// WaitSelector must be present before the page is captured. Empty means "body".
	WaitSelector string
	// Settle is an extra pause after the selector appears.
	Settle time.Duration
	// Timeout bounds a load whose context has no deadline. Zero means
	// DefaultTimeout.
	Timeout time.Duration
}

// DefaultTimeout bounds a page load when the caller sets no deadline.
const DefaultTimeout = 30 * time.Second

// New starts a headless browser.
func New(opts Options) (*Renderer, error) {
	execOpts := append(chromedp.DefaultExecAllocatorOptions[:],
		chromedp.UserAgent(scraper.UserAgent),
		chromedp.Flag("headless", true),
		chromedp.Flag("no-sandbox", true),
		chromedp.Flag("disable-gpu", true),
		chromedp.Flag("disable-dev-shm-usage", true),
		chromedp.Flag("disable-extensions", true),
		chromedp.Flag("no-first-run", true),
		chromedp.Flag("no-default-browser-check", true),
	)
	if opts.ChromePath != "" {
		execOpts = append(execOpts, chromedp.ExecPath(opts.ChromePath))
	}

	allocCtx, allocCancel := chromedp.NewExecAllocator(context.Background(), execOpts...)
	browserCtx, browserCancel := chromedp.NewContext(allocCtx)

	// Starts the browser process.
	if err := chromedp.Run(browserCtx); err != nil {
		browserCancel()
		allocCancel()
		return nil, fmt.Errorf("start browser: %w", err)
	}

	wait := opts.WaitSelector
	if wait == "" {
		wait = "body"
	}
	timeout := opts.Timeout
	if timeout <= 0 {
		timeout = DefaultTimeout
	}
	return &Renderer{
		allocCancel:   allocCancel,
		browserCtx:    browserCtx,
		browserCancel: browserCancel,
		waitSelector:  wait,
		settle:        opts.Settle,
		timeout:       timeout,
	}, nil
}

// Load renders url in a new tab and returns the resulting HTML. The tab is
// bounded by ctx's deadline, or by the configured timeout when ctx has none.
func (r *Renderer) Load(ctx context.Context, url string) (string, error) {
	return r.load(ctx, url, r.waitSelector)
}

// LoadWaitingFor returns a loader that waits for selector instead of the
// default one, e.g. the article body containers.
func (r *Renderer) LoadWaitingFor(selector string) func(ctx context.Context, url string) (string, error) {
	return func(ctx context.Context, url string) (string, error) {
		return r.load(ctx, url, selector)
	}
}

func (r *Renderer) load(ctx context.Context, url, waitSelector string) (string, error) {
	tabCtx, cancel := chromedp.NewContext(r.browserCtx)
	defer cancel()
	deadline, ok := ctx.Deadline()
	if !ok {
		deadline = time.Now().Add(r.timeout)
	}
	tabCtx, cancelDeadline := context.WithDeadline(tabCtx, deadline)
	defer cancelDeadline()
	stop := context.AfterFunc(ctx, cancel)
	defer stop()

	actions := []chromedp.Action{
		chromedp.Navigate(url),
		chromedp.WaitReady(waitSelector, chromedp.ByQuery),
	}
	if r.settle > 0 {
		actions = append(actions, chromedp.Sleep(r.settle))
	}
	var page string
	actions = append(actions, chromedp.OuterHTML("html", &page, chromedp.ByQuery))

	if err := chromedp.Run(tabCtx, actions...); err != nil {
		return "", fmt.Errorf("render %s: %w", url, err)
	}
	slog.Debug("page rendered", "url", url, "bytes", len(page))
	return page, nil
}

// Close shuts the browser down.
func (r *Renderer) Close() {
	r.browserCancel()
	r.allocCancel()
}
