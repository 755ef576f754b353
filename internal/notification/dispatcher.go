package notification

import (
	"context"
	"sync"
	"time"

	"labtest-be/internal/logger"
	"labtest-be/internal/metrics"

	"go.uber.org/zap"
)

const defaultSendTimeout = 10 * time.Second

// Dispatcher sends messages in the background. Notify never blocks the
// caller and never reports an error; failures are logged and counted.
type Dispatcher struct {
	sender  Sender
	timeout time.Duration
	stats   *metrics.Workflow
	wg      sync.WaitGroup
}

func NewDispatcher(sender Sender, timeout time.Duration, stats *metrics.Workflow) *Dispatcher {
	if timeout <= 0 {
		timeout = defaultSendTimeout
	}
	if stats == nil {
		stats = metrics.NewWorkflow()
	}
	return &Dispatcher{sender: sender, timeout: timeout, stats: stats}
}

func (d *Dispatcher) Notify(ctx context.Context, msg Message) {
	log := logger.FromCtx(ctx).With(
		zap.String("layer", "notification"),
		zap.String("kind", string(msg.Kind)),
	)
	if msg.Recipient == "" {
		log.Warn("notification skipped", zap.Error(ErrNoRecipient))
		return
	}

	// the request context is about to be cancelled; keep its values only
	sendCtx := context.WithoutCancel(ctx)

	d.wg.Add(1)
	go func() {
		defer d.wg.Done()
		defer func() {
			if r := recover(); r != nil {
				d.stats.NotificationsFailed.Inc()
				log.Error("notification sender panicked", zap.Any("panic", r))
			}
		}()

		ctx, cancel := context.WithTimeout(sendCtx, d.timeout)
		defer cancel()

		if err := d.sender.Send(ctx, msg); err != nil {
			d.stats.NotificationsFailed.Inc()
			log.Warn("notification failed", zap.String("recipient", msg.Recipient), zap.Error(err))
			return
		}
		d.stats.NotificationsSent.Inc()
		log.Debug("notification sent", zap.String("recipient", msg.Recipient))
	}()
}

// Wait blocks until in-flight notifications finish. Used on shutdown.
func (d *Dispatcher) Wait() {
	d.wg.Wait()
}
