package observability

import (
	"log/slog"
	"os"
	"runtime"
	"sync"
	"sync/atomic"
	"time"
	"wa-bridge/domain"

	"github.com/shirou/gopsutil/process"
)

const maxRecentDeliveries = 20

// RecentDelivery is one line of the recent deliveries list.
type RecentDelivery struct {
	EventID    string `json:"event_id"`
	URL        string `json:"url"`
	StatusCode int    `json:"status_code"`
	Status     string `json:"status"`
	DurationMs int64  `json:"duration_ms"`
	Timestamp  string `json:"timestamp"`
}

// Snapshot aggregates every metric for the /stats endpoint.
type Snapshot struct {
	// --- DISPATCH METRICS ---
	EventsReceived     uint64 `json:"events_received"`
	DeliveriesOK       uint64 `json:"deliveries_ok"`
	DeliveriesFailed   uint64 `json:"deliveries_failed"`
	QueueOverflows     uint64 `json:"queue_overflows"`
	EventsDropped      uint64 `json:"events_dropped"`
	MediaFailures      uint64 `json:"media_failures"`
	ChatLookupFailures uint64 `json:"chat_lookup_failures"`
	Subscribers        int    `json:"subscribers"`

	// --- SYSTEM METRICS ---
	UptimeSeconds int64            `json:"uptime_seconds"`
	Goroutines    int              `json:"goroutines"`
	AllocMemMb    uint64           `json:"alloc_mem_mb"`
	RssMb         uint64           `json:"rss_mb"`
	NumGC         uint32           `json:"num_gc"`
	Recent        []RecentDelivery `json:"recent_deliveries"`
}

// Stats collects dispatch telemetry. Counters are lock free, the recent list is not.
type Stats struct {
	log       *slog.Logger
	startedAt time.Time

	eventsReceived     uint64
	deliveriesOK       uint64
	deliveriesFailed   uint64
	queueOverflows     uint64
	eventsDropped      uint64
	mediaFailures      uint64
	chatLookupFailures uint64

	mu     sync.RWMutex
	recent []RecentDelivery
}

func NewStats(log *slog.Logger) *Stats {
	return &Stats{log: log, startedAt: time.Now(), recent: make([]RecentDelivery, 0)}
}

func (s *Stats) IncrEventsReceived() { atomic.AddUint64(&s.eventsReceived, 1) }

func (s *Stats) IncrQueueOverflows() { atomic.AddUint64(&s.queueOverflows, 1) }

func (s *Stats) IncrEventsDropped() { atomic.AddUint64(&s.eventsDropped, 1) }

func (s *Stats) IncrMediaFailures() { atomic.AddUint64(&s.mediaFailures, 1) }

func (s *Stats) IncrChatLookupFailures() { atomic.AddUint64(&s.chatLookupFailures, 1) }

// RecordDelivery counts d and keeps it in the recent list, newest first.
func (s *Stats) RecordDelivery(d domain.Delivery) {
	status := domain.StatusOK
	if d.Succeeded() {
		atomic.AddUint64(&s.deliveriesOK, 1)
	} else {
		status = domain.StatusFailed
		atomic.AddUint64(&s.deliveriesFailed, 1)
	}

	s.mu.Lock()
	defer s.mu.Unlock()
	s.recent = append([]RecentDelivery{{
		EventID:    d.EventID,
		URL:        d.URL,
		StatusCode: d.StatusCode,
		Status:     status,
		DurationMs: d.Duration.Milliseconds(),
		Timestamp:  d.At.Format("15:04:05"),
	}}, s.recent...)
	if len(s.recent) > maxRecentDeliveries {
		s.recent = s.recent[:maxRecentDeliveries]
	}
}

// Snapshot reads every counter. subscribers is provided by the caller.
func (s *Stats) Snapshot(subscribers int) Snapshot {
	var m runtime.MemStats
	runtime.ReadMemStats(&m)

	snap := Snapshot{
		EventsReceived:     atomic.LoadUint64(&s.eventsReceived),
		DeliveriesOK:       atomic.LoadUint64(&s.deliveriesOK),
		DeliveriesFailed:   atomic.LoadUint64(&s.deliveriesFailed),
		QueueOverflows:     atomic.LoadUint64(&s.queueOverflows),
		EventsDropped:      atomic.LoadUint64(&s.eventsDropped),
		MediaFailures:      atomic.LoadUint64(&s.mediaFailures),
		ChatLookupFailures: atomic.LoadUint64(&s.chatLookupFailures),
		Subscribers:        subscribers,
		UptimeSeconds:      int64(time.Since(s.startedAt).Seconds()),
		Goroutines:         runtime.NumGoroutine(),
		AllocMemMb:         m.Alloc / 1024 / 1024,
		NumGC:              m.NumGC,
	}

	if p, err := process.NewProcess(int32(os.Getpid())); err == nil {
		if mem, err := p.MemoryInfo(); err == nil {
			snap.RssMb = mem.RSS / 1024 / 1024
		}
	} else {
		s.log.Debug("Process metrics unavailable", "error", err)
	}

	s.mu.RLock()
	snap.Recent = append([]RecentDelivery(nil), s.recent...)
	s.mu.RUnlock()
	return snap
}
