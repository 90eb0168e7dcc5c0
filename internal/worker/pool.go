package worker

import (
	"context"
	"fmt"
	"log/slog"
)

// spawnWorkerPool starts concurrency sender goroutines
func (w *Worker) spawnWorkerPool(ctx context.Context) {
	for i := 0; i < w.concurrency; i++ {
		w.wg.Add(1)
		go w.workerLoop(ctx, i)
	}

	w.logger.Info("Worker pool spawned",
		slog.Int("worker_count", w.concurrency),
	)
}

func (w *Worker) workerLoop(ctx context.Context, workerNum int) {
	defer w.wg.Done()

	workerName := fmt.Sprintf("%s-%d", w.workerID, workerNum)

	for {
		select {
		case <-w.stopChan:
			return

		case <-ctx.Done():
			return

		case t := <-w.jobsChan:
			w.handle(ctx, workerName, t)
		}
	}
}

// handle sends one notification and settles its delivery
func (w *Worker) handle(ctx context.Context, workerName string, t *task) {
	n := t.notification

	err := w.process(ctx, n, t.delivery.Redelivered)
	if err == nil {
		if ackErr := t.delivery.Ack(false); ackErr != nil {
			w.logger.Error("Failed to ACK message",
				slog.String("worker_name", workerName),
				slog.String("notification_id", n.ID),
				slog.String("error", ackErr.Error()),
			)
			return
		}
		w.logger.Info("Notification sent",
			slog.String("worker_name", workerName),
			slog.String("notification_id", n.ID),
			slog.String("kind", string(n.Kind)),
			slog.String("job_id", n.JobID),
		)
		return
	}

	requeue := shouldRequeue(err)
	w.logger.Error("Notification delivery failed",
		slog.String("worker_name", workerName),
		slog.String("notification_id", n.ID),
		slog.String("error", err.Error()),
		slog.Bool("requeue", requeue),
	)

	if nackErr := t.delivery.Nack(false, requeue); nackErr != nil {
		w.logger.Error("Failed to NACK message",
			slog.String("worker_name", workerName),
			slog.String("notification_id", n.ID),
			slog.String("error", nackErr.Error()),
		)
	}
}
