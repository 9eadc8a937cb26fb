package events

import (
	"context"
	"sync"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/sirupsen/logrus"
)

// DispatcherConfig tunes the outbound queue.
type DispatcherConfig struct {
	Topic          string
	QueueSize      int
	Workers        int
	MaxAttempts    int
	Backoff        time.Duration // multiplied by the attempt number
	PublishTimeout time.Duration
}

func (c DispatcherConfig) withDefaults() DispatcherConfig {
	if c.Topic == "" {
		c.Topic = TopicUserEvents
	}
	if c.QueueSize <= 0 {
		c.QueueSize = 256
	}
	if c.Workers <= 0 {
		c.Workers = 1
	}
	if c.MaxAttempts <= 0 {
		c.MaxAttempts = 3
	}
	if c.Backoff < 0 {
		c.Backoff = 0
	}
	if c.PublishTimeout <= 0 {
		c.PublishTimeout = 5 * time.Second
	}
	return c
}

// Dispatcher decouples event emission from delivery. Emit never blocks: events
// are queued and a pool of workers publishes them with retries. Failures end in
// the log and in metrics, never at the caller.
type Dispatcher struct {
	pub    Publisher
	logger *logrus.Logger
	cfg    DispatcherConfig

	mu     sync.RWMutex
	closed bool
	queue  chan UserEvent

	startOnce sync.Once
	closeOnce sync.Once
	wg        sync.WaitGroup
}

func NewDispatcher(pub Publisher, logger *logrus.Logger, cfg DispatcherConfig) *Dispatcher {
	cfg = cfg.withDefaults()
	return &Dispatcher{
		pub:    pub,
		logger: logger,
		cfg:    cfg,
		queue:  make(chan UserEvent, cfg.QueueSize),
	}
}

// Start launches the workers. ctx only interrupts retry backoff; queued events
// are still attempted once after ctx is done.
func (d *Dispatcher) Start(ctx context.Context) {
	d.startOnce.Do(func() {
		for i := 0; i < d.cfg.Workers; i++ {
			d.wg.Add(1)
			go d.work(ctx)
		}
	})
}

// Emit queues evt for delivery.
func (d *Dispatcher) Emit(evt UserEvent) {
	d.mu.RLock()
	defer d.mu.RUnlock()

	if d.closed {
		d.drop(evt, "closed")
		return
	}
	select {
	case d.queue <- evt:
	default:
		d.drop(evt, "queue_full")
	}
}

// Close stops intake, drains the queue and waits for the workers. It must only
// be called after Start.
func (d *Dispatcher) Close() {
	d.closeOnce.Do(func() {
		d.mu.Lock()
		d.closed = true
		close(d.queue)
		d.mu.Unlock()
		d.wg.Wait()
	})
}

func (d *Dispatcher) work(ctx context.Context) {
	defer d.wg.Done()
	for evt := range d.queue {
		d.deliver(ctx, evt)
	}
}

func (d *Dispatcher) deliver(ctx context.Context, evt UserEvent) {
	log := d.logger.WithFields(logrus.Fields{"topic": d.cfg.Topic, "kind": evt.Kind, "email": evt.Email})

	var err error
	for attempt := 1; attempt <= d.cfg.MaxAttempts; attempt++ {
		if err = d.publishOnce(evt); err == nil {
			eventsPublished.WithLabelValues(string(evt.Kind), "success").Inc()
			log.WithField("attempt", attempt).Debug("user event published")
			return
		}
		log.WithError(err).WithField("attempt", attempt).Warn("publish user event failed")

		if attempt == d.cfg.MaxAttempts || !d.sleep(ctx, time.Duration(attempt)*d.cfg.Backoff) {
			break
		}
	}
	eventsPublished.WithLabelValues(string(evt.Kind), "failure").Inc()
	log.WithError(err).Error("giving up on user event")
}

// publishOnce uses its own deadline so a finished request cannot cancel delivery.
func (d *Dispatcher) publishOnce(evt UserEvent) error {
	timer := prometheus.NewTimer(publishDuration.WithLabelValues(string(evt.Kind)))
	defer timer.ObserveDuration()

	ctx, cancel := context.WithTimeout(context.Background(), d.cfg.PublishTimeout)
	defer cancel()
	return d.pub.Publish(ctx, d.cfg.Topic, evt)
}

func (d *Dispatcher) sleep(ctx context.Context, wait time.Duration) bool {
	if wait <= 0 {
		return ctx.Err() == nil
	}
	t := time.NewTimer(wait)
	defer t.Stop()
	select {
	case <-ctx.Done():
		return false
	case <-t.C:
		return true
	}
}

func (d *Dispatcher) drop(evt UserEvent, reason string) {
	eventsDropped.WithLabelValues(string(evt.Kind), reason).Inc()
	d.logger.WithFields(logrus.Fields{"kind": evt.Kind, "email": evt.Email, "reason": reason}).Warn("user event dropped")
}
