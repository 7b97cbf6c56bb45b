// Package runtime holds the subscription registry, the dispatch engine and
// the orchestration of the supervised workers around them.
package runtime

import (
	"context"
	"log/slog"
	"sync"
	"time"
	"wa-bridge/contract"
	"wa-bridge/runtime/workers"
)

type Orchestrator struct {
	mu           sync.Mutex
	log          *slog.Logger
	numWorkers   int
	drainTimeout time.Duration
	supervisor   contract.ISupervisor
	dispatcher   *Dispatcher
	extra        []contract.Worker
}

// NewOrchestrator gives Stop drainTimeout to deliver the events still queued.
func NewOrchestrator(log *slog.Logger, supervisor contract.ISupervisor,
	dispatcher *Dispatcher, numWorkers int, drainTimeout time.Duration) *Orchestrator {
	return &Orchestrator{
		log:          log,
		numWorkers:   numWorkers,
		drainTimeout: drainTimeout,
		supervisor:   supervisor,
		dispatcher:   dispatcher,
	}
}

// Add registers long-running workers started alongside the dispatch pool,
// the session worker typically.
func (o *Orchestrator) Add(w ...contract.Worker) {
	o.mu.Lock()
	defer o.mu.Unlock()
	o.extra = append(o.extra, w...)
}

// Start registers every worker to the supervisor and runs it.
// It blocks until ctx is canceled or Stop is called.
func (o *Orchestrator) Start(ctx context.Context) {
	o.mu.Lock()
	for i := 0; i < o.numWorkers; i++ {
		o.supervisor.Add(workers.NewDispatchWorker(o.dispatcher, o.log))
	}
	if len(o.extra) > 0 {
		o.supervisor.Add(o.extra...)
	}
	o.mu.Unlock()

	o.log.Info("Starting orchestrator and all supervised workers", "dispatch_workers", o.numWorkers)
	o.supervisor.Run(ctx)
}

// Stop cancels the workers, drains the queue within drainTimeout and
// waits for the fan-outs started outside of the workers.
func (o *Orchestrator) Stop() {
	o.log.Info("Requesting orchestrator shutdown")
	o.supervisor.Stop()

	ctx, cancel := context.WithTimeout(context.Background(), o.drainTimeout)
	defer cancel()
	if delivered, dropped := o.dispatcher.Drain(ctx); delivered+dropped > 0 {
		o.log.Info("Dispatch queue drained", "delivered", delivered, "dropped", dropped)
	}
	o.dispatcher.Wait()
}
