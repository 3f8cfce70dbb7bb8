// Package scheduler implements the per-domain FIFO queue with cooldown
// gating and in-flight exclusion described by the crawl coordination
// layer. It is intentionally unsynchronized: callers must confine all
// mutation to a single goroutine (the orchestrator's), exactly as the
// teacher's own scheduler assumes single-writer access to its frontier.
package scheduler

import (
	"log/slog"
	"time"

	"github.com/crawlsmith/rendercrawl/internal/model"
)

// Scheduler holds per-domain FIFO queues and enforces the politeness
// cooldown between successive dispatches to the same domain.
type Scheduler struct {
	cfg    model.CrawlerConfig
	logger *slog.Logger
	clock  func() time.Time

	domains  map[string]*model.DomainState
	order    []string // domain-insertion order, for a stable per-tick sweep
	inFlight map[string]struct{}
}

// New creates an empty Scheduler governed by cfg.DomainDelaySec.
func New(cfg model.CrawlerConfig, logger *slog.Logger) *Scheduler {
	return &Scheduler{
		cfg:      cfg,
		logger:   logger.With("component", "scheduler"),
		clock:    time.Now,
		domains:  make(map[string]*model.DomainState),
		inFlight: make(map[string]struct{}),
	}
}

// AddURLs buckets each URL by domain and appends it to that domain's
// queue in the given order. No deduplication is performed.
func (s *Scheduler) AddURLs(urls []string) {
	for _, u := range urls {
		domain := model.Domain(u)
		state, ok := s.domains[domain]
		if !ok {
			state = &model.DomainState{Domain: domain}
			s.domains[domain] = state
			s.order = append(s.order, domain)
		}
		state.Pending = append(state.Pending, u)
	}
	s.logger.Info("urls added", "count", len(urls), "domains", len(s.domains))
}

// GetReadyURLs performs one deterministic sweep over domains in
// insertion order, popping at most one URL per eligible domain: its queue
// must be non-empty, it must not already be in flight, and its cooldown
// must have elapsed.
func (s *Scheduler) GetReadyURLs() []string {
	now := s.clock()
	var ready []string

	for _, domain := range s.order {
		state := s.domains[domain]
		if len(state.Pending) == 0 {
			continue
		}
		if _, busy := s.inFlight[domain]; busy {
			continue
		}
		if !state.LastCrawlTS.IsZero() && now.Sub(state.LastCrawlTS).Seconds() < s.cfg.DomainDelaySec {
			continue
		}

		url := state.Pending[0]
		state.Pending = state.Pending[1:]
		s.inFlight[domain] = struct{}{}
		ready = append(ready, url)
	}
	return ready
}

// MarkDone removes url's domain from the in-flight set and resets its
// cooldown clock to now. It is a no-op for an unknown domain.
func (s *Scheduler) MarkDone(url string) {
	domain := model.Domain(url)
	if _, ok := s.domains[domain]; !ok {
		return
	}
	delete(s.inFlight, domain)
	s.domains[domain].LastCrawlTS = s.clock()
}

// NPending returns the sum of queue lengths across all domains.
func (s *Scheduler) NPending() int {
	n := 0
	for _, state := range s.domains {
		n += len(state.Pending)
	}
	return n
}

// NInFlight returns the number of domains currently being fetched.
func (s *Scheduler) NInFlight() int {
	return len(s.inFlight)
}

// NextAvailableSec returns the minimum wait, over domains with a
// non-empty queue that are not in flight, until their cooldown elapses.
// It returns 0 if no domain is eligible to wait on (all in-flight or
// queues empty).
func (s *Scheduler) NextAvailableSec() float64 {
	now := s.clock()
	min := -1.0

	for domain, state := range s.domains {
		if len(state.Pending) == 0 {
			continue
		}
		if _, busy := s.inFlight[domain]; busy {
			continue
		}
		wait := s.cfg.DomainDelaySec - now.Sub(state.LastCrawlTS).Seconds()
		if wait < 0 {
			wait = 0
		}
		if min < 0 || wait < min {
			min = wait
		}
	}
	if min < 0 {
		return 0
	}
	return min
}
