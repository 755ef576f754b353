package notification

import (
	"context"

	"labtest-be/internal/logger"

	"go.uber.org/zap"
)

// LogSender only logs. Used when neither SMTP nor Redis is configured.
type LogSender struct{}

func (LogSender) Send(ctx context.Context, msg Message) error {
	logger.FromCtx(ctx).Info("notification",
		zap.String("recipient", msg.Recipient),
		zap.String("kind", string(msg.Kind)),
		zap.Any("params", msg.Params),
	)
	return nil
}
