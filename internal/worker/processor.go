package worker

import (
	"context"
	"fmt"
	"log/slog"

	"github.com/cuongbtq/jobfeed/internal/notify"
)

// process renders n and sends it. Send failures are retryable once; a
// failure on redelivery is final.
func (w *Worker) process(ctx context.Context, n notify.Notification, redelivered bool) error {
	msg, err := notify.Render(n)
	if err != nil {
		return err
	}

	sendCtx, cancel := context.WithTimeout(ctx, w.sendTimeout)
	defer cancel()

	if err := w.mailer.Send(sendCtx, n.To, msg); err != nil {
		if redelivered {
			return fmt.Errorf("%w: %v", ErrAlreadyRetried, err)
		}
		return NewRetryableError(err)
	}

	w.logger.Debug("Email handed to relay",
		slog.String("notification_id", n.ID),
		slog.String("subject", msg.Subject),
	)
	return nil
}
