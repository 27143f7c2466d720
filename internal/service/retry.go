package service

import (
	"context"
	"time"

	"github.com/sethvargo/go-retry"
	"go.uber.org/zap"

	"github.com/seminarhub/backend/internal/apperr"
)

// withTxRetry повторяет операцию один раз при TransactionFailure,
// с короткой паузой. Прочие ошибки не повторяются.
func withTxRetry(ctx context.Context, logger *zap.Logger, fn func(ctx context.Context) error) error {
	backoff := retry.WithMaxRetries(1, retry.NewConstant(100*time.Millisecond))
	return retry.Do(ctx, backoff, func(ctx context.Context) error {
		err := fn(ctx)
		if apperr.Retryable(err) {
			logger.Warn("Transaction aborted, retrying", zap.Error(err))
			return retry.RetryableError(err)
		}
		return err
	})
}
