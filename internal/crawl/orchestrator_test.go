package crawl

import (
	"context"
	"log/slog"
	"sync"
	"sync/atomic"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/crawlsmith/rendercrawl/internal/model"
)

// fakeScheduler is a minimal in-memory scheduler sufficient for
// orchestrator tests, independent of the real scheduler package so the
// orchestrator's contract against its Scheduler seam is exercised
// directly.
type fakeScheduler struct {
	mu       sync.Mutex
	pending  map[string][]string
	order    []string
	inFlight map[string]bool
	lastDone map[string]time.Time
	delay    time.Duration
	now      func() time.Time
}

func newFakeScheduler(delay time.Duration) *fakeScheduler {
	return &fakeScheduler{
		pending:  make(map[string][]string),
		inFlight: make(map[string]bool),
		lastDone: make(map[string]time.Time),
		delay:    delay,
		now:      time.Now,
	}
}

func (f *fakeScheduler) AddURLs(urls []string) {
	f.mu.Lock()
	defer f.mu.Unlock()
	for _, u := range urls {
		d := model.Domain(u)
		if _, ok := f.pending[d]; !ok {
			f.order = append(f.order, d)
		}
		f.pending[d] = append(f.pending[d], u)
	}
}

func (f *fakeScheduler) GetReadyURLs() []string {
	f.mu.Lock()
	defer f.mu.Unlock()
	var ready []string
	now := f.now()
	for _, d := range f.order {
		if len(f.pending[d]) == 0 || f.inFlight[d] {
			continue
		}
		if last, ok := f.lastDone[d]; ok && now.Sub(last) < f.delay {
			continue
		}
		ready = append(ready, f.pending[d][0])
		f.pending[d] = f.pending[d][1:]
		f.inFlight[d] = true
	}
	return ready
}

func (f *fakeScheduler) MarkDone(url string) {
	f.mu.Lock()
	defer f.mu.Unlock()
	d := model.Domain(url)
	delete(f.inFlight, d)
	f.lastDone[d] = f.now()
}

func (f *fakeScheduler) NPending() int {
	f.mu.Lock()
	defer f.mu.Unlock()
	n := 0
	for _, q := range f.pending {
		n += len(q)
	}
	return n
}

func (f *fakeScheduler) NextAvailableSec() float64 { return 0 }

type alwaysAdmit struct{}

func (alwaysAdmit) Admit(_ context.Context, _ int) bool { return true }

type fakeFetcher struct {
	calls atomic.Int64
}

func (f *fakeFetcher) Fetch(_ context.Context, url string) model.CrawlResult {
	f.calls.Add(1)
	return model.CrawlResult{URL: url, Status: model.StatusSuccess}
}

func TestRunDispatchesAllURLs(t *testing.T) {
	sched := newFakeScheduler(0)
	fetcher := &fakeFetcher{}
	o := New(sched, alwaysAdmit{}, fetcher, slog.Default())

	urls := []string{"https://a.com/1", "https://b.com/1", "https://a.com/2"}
	results := o.Run(context.Background(), urls)

	require.Len(t, results, 3)
	assert.EqualValues(t, 3, fetcher.calls.Load())
	for _, r := range results {
		assert.Equal(t, model.StatusSuccess, r.Status)
	}
}

type panicFetcher struct{}

func (panicFetcher) Fetch(_ context.Context, url string) model.CrawlResult {
	panic("engine exploded")
}

func TestRunSurvivesFetchPanic(t *testing.T) {
	sched := newFakeScheduler(0)
	o := New(sched, alwaysAdmit{}, panicFetcher{}, slog.Default())

	ctx, cancel := context.WithTimeout(context.Background(), 3*time.Second)
	defer cancel()

	results := o.Run(ctx, []string{"https://a.com/1"})
	require.Len(t, results, 1)
	assert.Equal(t, model.StatusFailed, results[0].Status)
}

type neverAdmit struct{ calls atomic.Int64 }

func (n *neverAdmit) Admit(_ context.Context, _ int) bool {
	n.calls.Add(1)
	return false
}

func TestRunTerminatesOnContextCancelDuringDenial(t *testing.T) {
	sched := newFakeScheduler(0)
	mon := &neverAdmit{}
	fetcher := &fakeFetcher{}
	o := New(sched, mon, fetcher, slog.Default())

	ctx, cancel := context.WithTimeout(context.Background(), 200*time.Millisecond)
	defer cancel()

	results := o.Run(ctx, []string{"https://a.com/1"})
	assert.Empty(t, results)
	assert.EqualValues(t, 0, fetcher.calls.Load())
}

// ctxAwareFetcher blocks until ctx is cancelled, then reports the
// cancellation as a result, mirroring how browser.Supervisor.Fetch
// aborts navigation via page.Context(ctx).
type ctxAwareFetcher struct{}

func (ctxAwareFetcher) Fetch(ctx context.Context, url string) model.CrawlResult {
	<-ctx.Done()
	return model.CrawlResult{URL: url, Status: model.StatusFailed, Error: ctx.Err().Error()}
}

func TestRunDrainsInFlightDispatchesInsteadOfAbandoningThem(t *testing.T) {
	sched := newFakeScheduler(0)
	o := New(sched, alwaysAdmit{}, ctxAwareFetcher{}, slog.Default())

	ctx, cancel := context.WithTimeout(context.Background(), 100*time.Millisecond)
	defer cancel()

	done := make(chan []model.CrawlResult, 1)
	go func() { done <- o.Run(ctx, []string{"https://a.com/1", "https://b.com/1"}) }()

	select {
	case results := <-done:
		// Run only returns once both in-flight fetches have actually
		// observed ctx cancellation and reported back, proving the
		// dispatch goroutines were drained rather than abandoned.
		require.Len(t, results, 2)
		for _, r := range results {
			assert.Equal(t, model.StatusFailed, r.Status)
		}
	case <-time.After(2 * time.Second):
		t.Fatal("Run did not return after its in-flight dispatches completed")
	}
}
