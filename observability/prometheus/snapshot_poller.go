package prometheus

import (
	"context"
	"sync"
	"time"

	prom "github.com/prometheus/client_golang/prometheus"

	"github.com/serialworks/go-task-queue/core"
)

// QueueSnapshotProvider provides current queue stats snapshots.
// *core.Queue satisfies it.
type QueueSnapshotProvider interface {
	Stats() core.QueueStats
}

// SnapshotPoller periodically exports queue Stats() snapshots into
// Prometheus gauges. It complements MetricsExporter: the exporter
// observes events as they happen, the poller samples standing state
// (pending and delayed backlog, cumulative drops, closed flag).
type SnapshotPoller struct {
	interval time.Duration

	queuesMu sync.RWMutex
	queues   map[string]QueueSnapshotProvider

	queuePending *prom.GaugeVec
	queueDelayed *prom.GaugeVec
	queueDropped *prom.GaugeVec
	queueClosed  *prom.GaugeVec

	stateMu sync.Mutex
	running bool
	cancel  context.CancelFunc
	done    chan struct{}
}

// NewSnapshotPoller creates a snapshot poller and registers its collectors.
func NewSnapshotPoller(reg prom.Registerer, interval time.Duration) (*SnapshotPoller, error) {
	if reg == nil {
		reg = prom.DefaultRegisterer
	}
	if interval <= 0 {
		interval = time.Second
	}

	queuePending := prom.NewGaugeVec(prom.GaugeOpts{
		Namespace: "taskqueue",
		Name:      "queue_pending",
		Help:      "Number of pending immediate tasks per queue.",
	}, []string{"queue"})
	queueDelayed := prom.NewGaugeVec(prom.GaugeOpts{
		Namespace: "taskqueue",
		Name:      "queue_delayed",
		Help:      "Number of scheduled delayed tasks per queue.",
	}, []string{"queue"})
	queueDropped := prom.NewGaugeVec(prom.GaugeOpts{
		Namespace: "taskqueue",
		Name:      "queue_dropped_total",
		Help:      "Dropped task count snapshot per queue.",
	}, []string{"queue"})
	queueClosed := prom.NewGaugeVec(prom.GaugeOpts{
		Namespace: "taskqueue",
		Name:      "queue_closed",
		Help:      "Queue closed state (1=closed, 0=open).",
	}, []string{"queue"})

	var err error
	if queuePending, err = registerCollector(reg, queuePending); err != nil {
		return nil, err
	}
	if queueDelayed, err = registerCollector(reg, queueDelayed); err != nil {
		return nil, err
	}
	if queueDropped, err = registerCollector(reg, queueDropped); err != nil {
		return nil, err
	}
	if queueClosed, err = registerCollector(reg, queueClosed); err != nil {
		return nil, err
	}

	return &SnapshotPoller{
		interval:     interval,
		queues:       make(map[string]QueueSnapshotProvider),
		queuePending: queuePending,
		queueDelayed: queueDelayed,
		queueDropped: queueDropped,
		queueClosed:  queueClosed,
	}, nil
}

// AddQueue adds or replaces a queue snapshot provider by name.
func (p *SnapshotPoller) AddQueue(name string, provider QueueSnapshotProvider) {
	if p == nil || provider == nil {
		return
	}
	name = normalizeLabel(name, "queue")
	p.queuesMu.Lock()
	p.queues[name] = provider
	p.queuesMu.Unlock()
}

// RemoveQueue drops a provider; its gauges keep their last sample.
func (p *SnapshotPoller) RemoveQueue(name string) {
	if p == nil {
		return
	}
	p.queuesMu.Lock()
	delete(p.queues, normalizeLabel(name, "queue"))
	p.queuesMu.Unlock()
}

// Start begins periodic polling; repeated calls are no-ops.
func (p *SnapshotPoller) Start(ctx context.Context) {
	if p == nil {
		return
	}

	p.stateMu.Lock()
	if p.running {
		p.stateMu.Unlock()
		return
	}
	pollCtx, cancel := context.WithCancel(ctx)
	p.cancel = cancel
	p.done = make(chan struct{})
	p.running = true
	p.stateMu.Unlock()

	go p.loop(pollCtx)
}

// Stop stops periodic polling; repeated calls are safe.
func (p *SnapshotPoller) Stop() {
	if p == nil {
		return
	}

	p.stateMu.Lock()
	if !p.running {
		p.stateMu.Unlock()
		return
	}
	cancel := p.cancel
	done := p.done
	p.stateMu.Unlock()

	if cancel != nil {
		cancel()
	}
	if done != nil {
		<-done
	}

	p.stateMu.Lock()
	p.running = false
	p.cancel = nil
	p.done = nil
	p.stateMu.Unlock()
}

func (p *SnapshotPoller) loop(ctx context.Context) {
	defer close(p.done)

	ticker := time.NewTicker(p.interval)
	defer ticker.Stop()

	p.collectOnce()

	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			p.collectOnce()
		}
	}
}

func (p *SnapshotPoller) collectOnce() {
	p.queuesMu.RLock()
	defer p.queuesMu.RUnlock()

	for name, provider := range p.queues {
		stats := provider.Stats()
		p.queuePending.WithLabelValues(name).Set(float64(stats.Pending))
		p.queueDelayed.WithLabelValues(name).Set(float64(stats.Delayed))
		p.queueDropped.WithLabelValues(name).Set(float64(stats.Dropped))
		if stats.Closed {
			p.queueClosed.WithLabelValues(name).Set(1)
		} else {
			p.queueClosed.WithLabelValues(name).Set(0)
		}
	}
}
