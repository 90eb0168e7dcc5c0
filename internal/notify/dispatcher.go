package notify

import (
	"context"
	"log/slog"
	"sync"
	"time"
)

const defaultDispatchTimeout = 10 * time.Second

// Dispatcher publishes notifications on detached goroutines so callers
// never wait on, or fail because of, notification delivery.
type Dispatcher struct {
	publisher Publisher
	timeout   time.Duration
	logger    *slog.Logger
	wg        sync.WaitGroup
}

// NewDispatcher creates a dispatcher; timeout bounds each publish.
func NewDispatcher(publisher Publisher, timeout time.Duration, logger *slog.Logger) *Dispatcher {
	if timeout <= 0 {
		timeout = defaultDispatchTimeout
	}
	if logger == nil {
		logger = slog.Default()
	}
	return &Dispatcher{publisher: publisher, timeout: timeout, logger: logger}
}

// Notify publishes n in the background. Failures are logged only.
func (d *Dispatcher) Notify(n Notification) {
	d.wg.Add(1)
	go func() {
		defer d.wg.Done()

		ctx, cancel := context.WithTimeout(context.Background(), d.timeout)
		defer cancel()

		if err := d.publisher.Publish(ctx, n); err != nil {
			d.logger.Error("Failed to dispatch notification",
				slog.String("notification_id", n.ID),
				slog.String("kind", string(n.Kind)),
				slog.String("job_id", n.JobID),
				slog.Any("error", err),
			)
			return
		}

		d.logger.Debug("Notification dispatched",
			slog.String("notification_id", n.ID),
			slog.String("kind", string(n.Kind)),
			slog.String("job_id", n.JobID),
		)
	}()
}

// Wait blocks until every pending dispatch has finished.
func (d *Dispatcher) Wait() {
	d.wg.Wait()
}
