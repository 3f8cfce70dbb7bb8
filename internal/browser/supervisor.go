// Package browser wraps go-rod behind a simple per-URL fetch interface
// with lifecycle management and failure-driven restart, following the
// launch/connect pattern in the teacher's own fetcher.BrowserFetcher but
// trading its reused page pool for a fresh isolated context per URL, as
// the spec requires.
package browser

import (
	"context"
	"log/slog"
	"strings"
	"sync"
	"sync/atomic"
	"time"

	"github.com/go-rod/rod"
	"github.com/go-rod/rod/lib/launcher"
	"github.com/go-rod/rod/lib/proto"
	"github.com/go-rod/stealth"

	"github.com/crawlsmith/rendercrawl/internal/model"
)

const maxFailures = 3

// Supervisor owns the headless engine's lifecycle: lazy launch, per-URL
// isolated fetch, and restart after repeated non-transient failures.
type Supervisor struct {
	cfg     model.CrawlerConfig
	logger  *slog.Logger
	stealth bool

	mu      sync.Mutex
	browser *rod.Browser

	nFailures atomic.Int32
}

// New creates a Supervisor. The engine itself is not launched until the
// first Fetch call.
func New(cfg model.CrawlerConfig, logger *slog.Logger, enableStealth bool) *Supervisor {
	return &Supervisor{
		cfg:     cfg,
		logger:  logger.With("component", "browser_supervisor"),
		stealth: enableStealth,
	}
}

// ensureEngine launches the headless engine if it is not already running.
// Holding the lock across the launch is intentional: only one launch or
// teardown proceeds at a time.
func (s *Supervisor) ensureEngine() (*rod.Browser, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.browser != nil {
		return s.browser, nil
	}

	s.logger.Info("launching browser engine")
	controlURL, err := launcher.New().
		Headless(true).
		Set("disable-gpu").
		Set("disable-dev-shm-usage").
		Set("no-sandbox").
		Launch()
	if err != nil {
		return nil, err
	}

	b := rod.New().ControlURL(controlURL)
	if err := b.Connect(); err != nil {
		return nil, err
	}
	s.browser = b
	return b, nil
}

// Fetch navigates to url in a fresh isolated context/page, waits for the
// page to go idle (bounded by PageTimeoutSec), and returns a CrawlResult.
// The idle wait is rod's WaitIdle, which waits for the next
// requestIdleCallback; it does not wait for network requests to settle.
// Errors never escape Fetch as exceptions: they become FAILED or TIMEOUT
// results, per the spec's propagation policy.
func (s *Supervisor) Fetch(ctx context.Context, url string) model.CrawlResult {
	start := time.Now()

	browser, err := s.ensureEngine()
	if err != nil {
		return model.CrawlResult{
			URL: url, Status: model.StatusFailed,
			Error: err.Error(), ElapsedSec: time.Since(start).Seconds(),
		}
	}

	page, err := browser.IncognitoPage()
	if err != nil {
		s.onFailure(err.Error())
		return model.CrawlResult{
			URL: url, Status: model.StatusFailed,
			Error: err.Error(), ElapsedSec: time.Since(start).Seconds(),
		}
	}
	if s.stealth {
		// Inject the stealth script into the isolated page itself, so the
		// fetch keeps its own context.
		_, _ = page.EvalOnNewDocument(stealth.JS)
	}
	page = page.Context(ctx)
	defer page.Close()

	timeout := time.Duration(s.cfg.PageTimeoutSec * float64(time.Second))

	var initialBytes atomic.Int64
	var captured atomic.Bool
	router := page.HijackRequests()
	router.MustAdd("*", func(hj *rod.Hijack) {
		hj.MustLoadResponse()
		if hj.Request.Type() == proto.NetworkResourceTypeDocument && captured.CompareAndSwap(false, true) {
			initialBytes.Store(int64(len(hj.Response.Payload().Body)))
		}
	})
	go router.Run()
	defer router.Stop()

	navErr := page.Timeout(timeout).Navigate(url)
	if navErr == nil {
		navErr = page.Timeout(timeout).WaitIdle(timeout)
	}

	elapsed := time.Since(start).Seconds()

	if navErr != nil {
		if isTimeout(navErr) {
			html, _ := page.HTML()
			return model.CrawlResult{
				URL:               url,
				Status:            model.StatusTimeout,
				InitialHTMLBytes:  int(initialBytes.Load()),
				RenderedHTMLBytes: len(html),
				Error:             navErr.Error(),
				ElapsedSec:        elapsed,
			}
		}
		s.onFailure(navErr.Error())
		return model.CrawlResult{
			URL: url, Status: model.StatusFailed,
			Error: navErr.Error(), ElapsedSec: elapsed,
		}
	}

	html, err := page.HTML()
	if err != nil {
		s.onFailure(err.Error())
		return model.CrawlResult{
			URL: url, Status: model.StatusFailed,
			Error: err.Error(), ElapsedSec: time.Since(start).Seconds(),
		}
	}

	s.nFailures.Store(0)
	return model.CrawlResult{
		URL:               url,
		Status:            model.StatusSuccess,
		InitialHTMLBytes:  int(initialBytes.Load()),
		RenderedHTMLBytes: len(html),
		ElapsedSec:        time.Since(start).Seconds(),
	}
}

// onFailure classifies an error message as transient or counted. A
// counted failure that reaches maxFailures atomically resets the counter
// and tears the engine down; the next Fetch launches a fresh one.
func (s *Supervisor) onFailure(errMsg string) {
	lower := strings.ToLower(errMsg)
	if strings.Contains(lower, "browser has been closed") || strings.Contains(lower, "context") {
		return
	}

	n := s.nFailures.Add(1)
	if n < maxFailures {
		return
	}
	if !s.nFailures.CompareAndSwap(n, 0) {
		return
	}

	s.logger.Warn("failure threshold reached, restarting engine", "failures", n)
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.browser != nil {
		_ = s.browser.Close()
		s.browser = nil
	}
}

// Close tears down the headless engine, if running.
func (s *Supervisor) Close() error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.browser == nil {
		return nil
	}
	err := s.browser.Close()
	s.browser = nil
	return err
}

func isTimeout(err error) bool {
	type timeouter interface{ Timeout() bool }
	if t, ok := err.(timeouter); ok {
		return t.Timeout()
	}
	return strings.Contains(strings.ToLower(err.Error()), "timeout") ||
		strings.Contains(strings.ToLower(err.Error()), "deadline exceeded")
}
