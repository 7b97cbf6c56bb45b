package workers

import (
	"context"
	"log/slog"
	"time"
	"wa-bridge/contract"
	"wa-bridge/observability"
)

var _ contract.Worker = (*StatsReporterWorker)(nil)

// QueueDepthFunc reads the dispatch queue length and capacity without blocking.
type QueueDepthFunc func() (length, capacity int)

// StatsReporterWorker logs the dispatch counters every interval and warns
// when the dispatch queue fills past lowCapacityThreshold percent.
type StatsReporterWorker struct {
	log                  *slog.Logger
	stats                *observability.Stats
	subscribers          func() int
	queue                QueueDepthFunc
	interval             time.Duration
	lowCapacityThreshold int
}

func NewStatsReporterWorker(log *slog.Logger, stats *observability.Stats, subscribers func() int,
	queue QueueDepthFunc, interval time.Duration, lowCapacityThreshold int) *StatsReporterWorker {
	return &StatsReporterWorker{
		log:                  log,
		stats:                stats,
		subscribers:          subscribers,
		queue:                queue,
		interval:             interval,
		lowCapacityThreshold: lowCapacityThreshold,
	}
}

func (w *StatsReporterWorker) Run(ctx context.Context) error {
	ticker := time.NewTicker(w.interval)
	defer ticker.Stop()
	for {
		select {
		case <-ctx.Done():
			w.report()
			return ctx.Err()
		case <-ticker.C:
			w.report()
		}
	}
}

func (w *StatsReporterWorker) report() {
	s := w.stats.Snapshot(w.subscribers())
	length, capacity := w.queue()
	w.log.Info("Dispatch stats",
		"events", s.EventsReceived,
		"delivered", s.DeliveriesOK,
		"failed", s.DeliveriesFailed,
		"overflows", s.QueueOverflows,
		"dropped", s.EventsDropped,
		"subscribers", s.Subscribers,
		"queue", length,
		"rss_mb", s.RssMb,
		"goroutines", s.Goroutines)

	if capacity > 0 && length*100 >= capacity*w.lowCapacityThreshold {
		w.log.Warn("Dispatch queue almost full", "length", length, "capacity", capacity,
			"threshold_percent", w.lowCapacityThreshold)
	}
}
