// Package crawl drives the scheduler, resource monitor and browser
// supervisor in the admit/dispatch/reap loop described by the crawl
// coordination spec. Orchestrator.Run is the body of the hosting actor's
// call handler.
package crawl

import (
	"context"
	"log/slog"
	"time"

	"github.com/crawlsmith/rendercrawl/internal/model"
)

// Fetcher is the seam the orchestrator dispatches work through. In
// production it is satisfied by *browser.Supervisor; tests substitute a
// fake so they never launch a real browser.
type Fetcher interface {
	Fetch(ctx context.Context, url string) model.CrawlResult
}

// Monitor is the seam for admission decisions.
type Monitor interface {
	Admit(ctx context.Context, currentTabs int) bool
}

// Scheduler is the seam for per-domain FIFO scheduling.
type Scheduler interface {
	AddURLs(urls []string)
	GetReadyURLs() []string
	MarkDone(url string)
	NPending() int
	NextAvailableSec() float64
}

const (
	activeTaskPace = 500 * time.Millisecond
	maxIdleWait    = 5 * time.Second
)

// Orchestrator composes a Scheduler, Monitor and Fetcher into the main
// crawl loop.
type Orchestrator struct {
	scheduler Scheduler
	monitor   Monitor
	fetcher   Fetcher
	logger    *slog.Logger
}

// New creates an Orchestrator over the given collaborators.
func New(scheduler Scheduler, monitor Monitor, fetcher Fetcher, logger *slog.Logger) *Orchestrator {
	return &Orchestrator{
		scheduler: scheduler,
		monitor:   monitor,
		fetcher:   fetcher,
		logger:    logger.With("component", "orchestrator"),
	}
}

// taskResult carries a completed fetch back to the reap step. Every
// dispatch sends one: a fetch goroutine that panics recovers into a synthetic
// FAILED result rather than dropping the completion signal, so the
// scheduler's in-flight accounting for that domain is never stranded.
// This resolves the spec's open question about task-exception handling
// in favor of policy (a): synthetic FAILED result, scheduler notified.
type taskResult struct {
	result model.CrawlResult
}

// Run adds urls to the scheduler and drives the loop until every URL has
// been dispatched and completed, returning results in completion order.
func (o *Orchestrator) Run(ctx context.Context, urls []string) []model.CrawlResult {
	o.scheduler.AddURLs(urls)

	var results []model.CrawlResult
	completions := make(chan taskResult)
	active := 0

runLoop:
	for o.scheduler.NPending() > 0 || active > 0 {
		// Reap step: drain every completion currently available without
		// blocking, so dispatch below sees an up-to-date active count.
		for active > 0 {
			select {
			case tr := <-completions:
				results = append(results, tr.result)
				o.scheduler.MarkDone(tr.result.URL)
				active--
			default:
				goto dispatch
			}
		}

	dispatch:
		if ctx.Err() != nil {
			break runLoop
		}
		if o.monitor.Admit(ctx, active) {
			ready := o.scheduler.GetReadyURLs()
			for _, url := range ready {
				active++
				go o.dispatch(ctx, url, completions)
			}
		}

		if active > 0 {
			select {
			case tr := <-completions:
				results = append(results, tr.result)
				o.scheduler.MarkDone(tr.result.URL)
				active--
			case <-time.After(activeTaskPace):
			case <-ctx.Done():
				break runLoop
			}
			continue
		}

		wait := o.scheduler.NextAvailableSec()
		d := time.Duration(wait * float64(time.Second))
		if d > maxIdleWait {
			d = maxIdleWait
		}
		if d <= 0 {
			// Nothing dispatched this tick and no known cooldown to wait
			// on (e.g. the monitor is denying admission): fall back to a
			// short pace so the loop still observes ctx cancellation
			// instead of busy-spinning.
			d = activeTaskPace
		} else {
			o.logger.Debug("waiting for next domain cooldown", "seconds", wait)
		}
		select {
		case <-time.After(d):
		case <-ctx.Done():
			break runLoop
		}
	}

	// Drain every outstanding dispatch instead of abandoning its goroutine
	// on early return: dispatch always sends exactly one completion (even
	// on panic or a cancelled fetch), and Fetch itself observes ctx via
	// the browser engine's context binding, so each in-flight fetch is
	// cancelled cooperatively and returns promptly rather than hanging.
	for active > 0 {
		tr := <-completions
		results = append(results, tr.result)
		o.scheduler.MarkDone(tr.result.URL)
		active--
	}

	return results
}

// dispatch runs a single fetch and always reports a completion, even if
// the fetcher panics.
func (o *Orchestrator) dispatch(ctx context.Context, url string, completions chan<- taskResult) {
	defer func() {
		if r := recover(); r != nil {
			o.logger.Error("fetch task panicked", "url", url, "panic", r)
			completions <- taskResult{result: model.CrawlResult{
				URL: url, Status: model.StatusFailed,
			}}
		}
	}()

	result := o.fetcher.Fetch(ctx, url)
	completions <- taskResult{result: result}
}
