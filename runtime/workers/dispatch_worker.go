package workers

import (
	"context"
	"log/slog"
	"wa-bridge/contract"
)

var _ contract.Worker = (*DispatchWorker)(nil)

// DispatchWorker drains the dispatch queue, one event at a time.
// Several of them run side by side under the supervisor.
type DispatchWorker struct {
	fanout contract.Fanout
	log    *slog.Logger
}

func NewDispatchWorker(fanout contract.Fanout, log *slog.Logger) *DispatchWorker {
	return &DispatchWorker{fanout: fanout, log: log}
}

func (w *DispatchWorker) Run(ctx context.Context) error {
	events := w.fanout.Events()
	for {
		select {
		case <-ctx.Done():
			w.log.Debug("Stopping dispatch worker")
			return ctx.Err()
		case evt, ok := <-events:
			if !ok {
				w.log.Debug("Dispatch channel is closed")
				return nil
			}
			deliveries := w.fanout.Fanout(ctx, evt)
			w.log.Debug("Event dispatched", "event_id", evt.ID, "deliveries", len(deliveries))
		}
	}
}
