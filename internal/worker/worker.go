// Package worker consumes queued notifications and delivers them by email.
package worker

import (
	"context"
	"fmt"
	"log/slog"
	"sync"
	"time"

	"github.com/cuongbtq/jobfeed/internal/notify"
	amqp "github.com/rabbitmq/amqp091-go"
)

const (
	defaultConcurrency = 2
	defaultSendTimeout = 30 * time.Second
)

// DeliverySource is the subset of the RabbitMQ client the worker consumes from.
type DeliverySource interface {
	Qos(prefetchCount int) error
	Consume(consumerTag string) (<-chan amqp.Delivery, error)
}

// Config holds worker configuration
type Config struct {
	Logger        *slog.Logger
	Source        DeliverySource
	Mailer        notify.Mailer
	WorkerID      string
	QueueName     string
	Concurrency   int
	PrefetchCount int
	SendTimeout   time.Duration
}

// Worker is the background notification worker
type Worker struct {
	logger        *slog.Logger
	source        DeliverySource
	mailer        notify.Mailer
	workerID      string
	queueName     string
	concurrency   int
	prefetchCount int
	sendTimeout   time.Duration

	jobsChan chan *task
	wg       sync.WaitGroup
	stopOnce sync.Once
	stopChan chan struct{}
}

// task is one decoded delivery waiting for a pool goroutine.
type task struct {
	notification notify.Notification
	delivery     amqp.Delivery
}

// NewWorker creates a new worker instance
func NewWorker(cfg *Config) *Worker {
	w := &Worker{
		logger:        cfg.Logger,
		source:        cfg.Source,
		mailer:        cfg.Mailer,
		workerID:      cfg.WorkerID,
		queueName:     cfg.QueueName,
		concurrency:   cfg.Concurrency,
		prefetchCount: cfg.PrefetchCount,
		sendTimeout:   cfg.SendTimeout,
		stopChan:      make(chan struct{}),
	}
	if w.logger == nil {
		w.logger = slog.Default()
	}
	if w.concurrency <= 0 {
		w.concurrency = defaultConcurrency
	}
	if w.prefetchCount <= 0 {
		w.prefetchCount = w.concurrency
	}
	if w.sendTimeout <= 0 {
		w.sendTimeout = defaultSendTimeout
	}
	if w.workerID == "" {
		w.workerID = "notify-worker"
	}
	w.jobsChan = make(chan *task, w.concurrency)
	return w
}

// Start subscribes to the queue, spawns the pool and blocks until ctx is
// canceled or the delivery channel closes.
func (w *Worker) Start(ctx context.Context) error {
	w.logger.Info("Starting worker",
		slog.String("worker_id", w.workerID),
		slog.Int("concurrency", w.concurrency),
		slog.Duration("send_timeout", w.sendTimeout),
	)

	deliveries, err := w.setupConsumer()
	if err != nil {
		return fmt.Errorf("failed to setup consumer: %w", err)
	}

	w.spawnWorkerPool(ctx)
	w.startMessageDispatcher(ctx, deliveries)

	w.logger.Info("Worker dispatcher exited",
		slog.String("worker_id", w.workerID),
	)
	return nil
}

// Stop signals the pool and waits for in-flight sends to finish.
func (w *Worker) Stop() {
	w.logger.Info("Stopping worker...")
	w.stopOnce.Do(func() { close(w.stopChan) })
	w.wg.Wait()
	w.logger.Info("Worker stopped")
}
