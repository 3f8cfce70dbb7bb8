package crawl

import (
	"log/slog"

	"github.com/crawlsmith/rendercrawl/internal/actorsys"
	"github.com/crawlsmith/rendercrawl/internal/model"
)

// RunRequest is the Call payload sent to the crawler actor: a batch of
// seed URLs to crawl to completion.
type RunRequest struct {
	URLs []string
}

// Closer is satisfied by anything the actor must tear down on exit, such
// as the browser supervisor.
type Closer interface {
	Close() error
}

// Behavior hosts an Orchestrator as the body of the actor's call handler,
// closing the browser supervisor exactly once on exit (clean or crashed),
// per the spec's actor/orchestrator composition.
type Behavior struct {
	orchestrator *Orchestrator
	closer       Closer
	logger       *slog.Logger
}

// NewBehavior creates the actor behavior wrapping orchestrator. closer is
// torn down in BeforeExit regardless of how the actor terminates.
func NewBehavior(orchestrator *Orchestrator, closer Closer, logger *slog.Logger) *Behavior {
	return &Behavior{orchestrator: orchestrator, closer: closer, logger: logger.With("component", "crawler_actor")}
}

type env = actorsys.Env[RunRequest, struct{}, []model.CrawlResult]

func (b *Behavior) Init(_ *env) error {
	return nil
}

func (b *Behavior) HandleCast(_ struct{}, _ *env) {
	// No cast messages are defined for this actor.
}

func (b *Behavior) HandleCall(msg RunRequest, e *env) []model.CrawlResult {
	return b.orchestrator.Run(e.Context(), msg.URLs)
}

func (b *Behavior) BeforeExit(err error, _ *env) error {
	if b.closer != nil {
		if cerr := b.closer.Close(); cerr != nil {
			b.logger.Error("browser supervisor close failed", "error", cerr)
		}
	}
	return err
}

// Actor is the concrete actor type hosting the crawl orchestrator.
type Actor = actorsys.Actor[RunRequest, struct{}, []model.CrawlResult]

// Ref is the external handle used to drive the crawler actor.
type Ref = actorsys.ActorRef[RunRequest, struct{}, []model.CrawlResult]

// Spawn starts a new crawler actor over orchestrator and returns a Ref.
func Spawn(orchestrator *Orchestrator, closer Closer, logger *slog.Logger) *Ref {
	behavior := NewBehavior(orchestrator, closer, logger)
	actor := actorsys.New[RunRequest, struct{}, []model.CrawlResult](behavior, 4)
	return actor.Spawn()
}
