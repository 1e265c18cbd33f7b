package service

import (
	"context"
	"fmt"
	"log/slog"
	"sync"
	"time"

	"github.com/niksmo/luxe-storefront/internal/core/domain"
	"github.com/niksmo/luxe-storefront/internal/core/port"
)

const (
	defaultActivityCapacity = 256
	defaultPublishTimeout   = 5 * time.Second
)

type ActivityQueueConfig struct {
	Producer       port.ActivityProducer
	Capacity       int
	PublishTimeout time.Duration
}

func (c *ActivityQueueConfig) normalize() {
	if c.Capacity <= 0 {
		c.Capacity = defaultActivityCapacity
	}
	if c.PublishTimeout <= 0 {
		c.PublishTimeout = defaultPublishTimeout
	}
}

// An ActivityQueue publishes activities from a single goroutine in the
// order they were enqueued.
//
// Enqueue never blocks. Activities that do not fit are dropped and
// producer failures are logged.
type ActivityQueue struct {
	producer   port.ActivityProducer
	timeout    time.Duration
	activities chan domain.Activity
	stop       chan struct{}
	done       chan struct{}
	stopOnce   sync.Once
}

func NewActivityQueue(cfg ActivityQueueConfig) *ActivityQueue {
	const op = "NewActivityQueue"

	if cfg.Producer == nil {
		panic(fmt.Errorf("%s: activity producer is nil", op)) // develop mistake
	}
	cfg.normalize()

	q := &ActivityQueue{
		producer:   cfg.Producer,
		timeout:    cfg.PublishTimeout,
		activities: make(chan domain.Activity, cfg.Capacity),
		stop:       make(chan struct{}),
		done:       make(chan struct{}),
	}
	go q.run()
	return q
}

// Enqueue reports whether v was accepted.
func (q *ActivityQueue) Enqueue(v domain.Activity) bool {
	const op = "ActivityQueue.Enqueue"
	log := slog.With("op", op)

	select {
	case <-q.stop:
		log.Warn("queue is closed, activity dropped", "kind", v.Kind)
		return false
	default:
	}

	select {
	case q.activities <- v:
		return true
	default:
		log.Warn(
			"queue is full, activity dropped",
			"kind", v.Kind, "product", v.ProductName,
		)
		return false
	}
}

func (q *ActivityQueue) run() {
	defer close(q.done)
	for {
		select {
		case v := <-q.activities:
			q.publish(v)
		case <-q.stop:
			q.drain()
			return
		}
	}
}

func (q *ActivityQueue) drain() {
	for {
		select {
		case v := <-q.activities:
			q.publish(v)
		default:
			return
		}
	}
}

func (q *ActivityQueue) publish(v domain.Activity) {
	const op = "ActivityQueue.publish"
	log := slog.With("op", op)

	ctx, cancel := context.WithTimeout(context.Background(), q.timeout)
	defer cancel()

	if err := q.producer.ProduceActivity(ctx, v); err != nil {
		log.Warn(
			"failed to produce activity",
			"kind", v.Kind, "product", v.ProductName, "err", err,
		)
	}
}

// Close publishes what is already queued and waits for it until ctx is done.
func (q *ActivityQueue) Close(ctx context.Context) {
	const op = "ActivityQueue.Close"
	log := slog.With("op", op)

	q.stopOnce.Do(func() { close(q.stop) })

	select {
	case <-q.done:
		log.Info("activity queue is closed")
	case <-ctx.Done():
		log.Warn("activity queue is not drained", "err", ctx.Err())
	}
}
