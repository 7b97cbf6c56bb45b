package runtime

import (
	"context"
	"fmt"
	"log/slog"
	"sync"
	"time"
	"wa-bridge/contract"
	"wa-bridge/domain"
	"wa-bridge/errors"
	"wa-bridge/observability"

	"github.com/google/uuid"
	"github.com/samber/lo"
	"golang.org/x/sync/errgroup"
)

var (
	_ contract.IDispatcher = (*Dispatcher)(nil)
	_ contract.Fanout      = (*Dispatcher)(nil)
)

// Dispatcher fans inbound events out to the registered webhooks.
//
// Dispatch only enqueues and never blocks the session callback. Dispatch workers
// drain the queue through Fanout, which delivers to every matching subscriber
// concurrently and returns once all of them completed. A failing subscriber
// never affects the others and is never retried.
type Dispatcher struct {
	log             *slog.Logger
	registry        contract.IRegistry
	sink            contract.WebhookSink
	journal         contract.IJournal
	stats           *observability.Stats
	events          chan domain.MessageEvent
	maxConcurrent   int
	deliveryTimeout time.Duration
	detached        sync.WaitGroup
}

func NewDispatcher(log *slog.Logger, registry contract.IRegistry, sink contract.WebhookSink,
	journal contract.IJournal, stats *observability.Stats,
	bufferSize, maxConcurrent int, deliveryTimeout time.Duration) *Dispatcher {
	if maxConcurrent < 1 {
		maxConcurrent = 1
	}
	return &Dispatcher{
		log:             log,
		registry:        registry,
		sink:            sink,
		journal:         journal,
		stats:           stats,
		events:          make(chan domain.MessageEvent, bufferSize),
		maxConcurrent:   maxConcurrent,
		deliveryTimeout: deliveryTimeout,
	}
}

// Dispatch hands evt over to the dispatch workers.
// When the queue is full the event is fanned out in its own goroutine:
// more concurrent deliveries are preferred over a blocked session.
func (d *Dispatcher) Dispatch(evt domain.MessageEvent) {
	d.stats.IncrEventsReceived()
	select {
	case d.events <- evt:
	default:
		d.stats.IncrQueueOverflows()
		d.log.Warn("Dispatch queue full, delivering outside of the workers", "event_id", evt.ID)
		d.detached.Add(1)
		go func() {
			defer d.detached.Done()
			d.Fanout(context.Background(), evt)
		}()
	}
}

// QueueDepth is a sample, the queue keeps moving while it is read.
func (d *Dispatcher) QueueDepth() (int, int) {
	return len(d.events), cap(d.events)
}

func (d *Dispatcher) Events() <-chan domain.MessageEvent {
	return d.events
}

// Fanout delivers evt to every subscriber whose filter matches, at most
// maxConcurrent at a time, and waits for all deliveries to complete.
// The returned slice follows the snapshot order of the matching subscribers.
func (d *Dispatcher) Fanout(ctx context.Context, evt domain.MessageEvent) []domain.Delivery {
	matching := lo.Filter(d.registry.Snapshot(), func(s domain.Subscriber, _ int) bool {
		return s.Filter.Matches(evt)
	})
	if len(matching) == 0 {
		d.log.Debug("No webhook matches event", "event_id", evt.ID, "chat_id", evt.ChatID)
		return nil
	}

	deliveries := make([]domain.Delivery, len(matching))
	// Not errgroup.WithContext: a failed delivery must not cancel its siblings
	var g errgroup.Group
	g.SetLimit(d.maxConcurrent)
	for i, subscriber := range matching {
		g.Go(func() error {
			deliveries[i] = d.deliver(ctx, subscriber.URL, evt)
			return nil
		})
	}
	_ = g.Wait()
	return deliveries
}

// Drain fans out what is left in the queue once the workers are gone.
// Events still queued when ctx is done are dropped and counted.
func (d *Dispatcher) Drain(ctx context.Context) (delivered, dropped int) {
	for {
		select {
		case evt := <-d.events:
			if ctx.Err() != nil {
				dropped++
				d.stats.IncrEventsDropped()
				d.log.Warn("Event dropped at shutdown", "event_id", evt.ID, "chat_id", evt.ChatID)
				continue
			}
			d.Fanout(ctx, evt)
			delivered++
		default:
			return delivered, dropped
		}
	}
}

// Wait blocks until every fan-out started outside of the workers is done.
func (d *Dispatcher) Wait() {
	d.detached.Wait()
}

func (d *Dispatcher) deliver(ctx context.Context, url string, evt domain.MessageEvent) (delivery domain.Delivery) {
	delivery = domain.Delivery{ID: uuid.New(), EventID: evt.ID, URL: url, At: time.Now().UTC()}
	defer func() {
		if r := recover(); r != nil {
			delivery.Err = fmt.Errorf("%w: panic: %v", errors.ErrDeliveryFailed, r)
		}
		d.record(delivery)
	}()

	ctx, cancel := context.WithTimeout(ctx, d.deliveryTimeout)
	defer cancel()

	start := time.Now()
	delivery.StatusCode, delivery.Err = d.sink.Deliver(ctx, url, evt)
	delivery.Duration = time.Since(start)
	return delivery
}

// record runs once the delivery completed, whatever its outcome.
func (d *Dispatcher) record(delivery domain.Delivery) {
	entry := domain.JournalEntry{
		ID:     delivery.ID,
		Kind:   domain.JournalDelivery,
		URL:    delivery.URL,
		Target: delivery.EventID,
		Status: domain.StatusOK,
		At:     delivery.At,
	}
	if delivery.Succeeded() {
		d.log.Info("Webhook delivered", "url", delivery.URL, "event_id", delivery.EventID,
			"status", delivery.StatusCode, "duration", delivery.Duration)
	} else {
		entry.Status = domain.StatusFailed
		entry.Error = delivery.Err.Error()
		d.log.Error("Webhook delivery failed", "url", delivery.URL, "event_id", delivery.EventID,
			"status", delivery.StatusCode, "error", delivery.Err)
	}

	d.stats.RecordDelivery(delivery)
	if err := d.journal.StoreEntry(entry); err != nil {
		d.log.Warn("Journal write failed", "delivery_id", delivery.ID, "error", err)
	}
}
