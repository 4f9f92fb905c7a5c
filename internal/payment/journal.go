package payment

import (
	"context"

	"rawmart-be/internal/logger"

	"go.uber.org/zap"
)

type Tracker interface {
	Track(ctx context.Context, cb Callback) func(error)
}

// Journal records callbacks in the payment_callbacks table. Journal write
// failures are logged and never block the payment flow.
type Journal struct {
	repo Repository
}

func NewJournal(repo Repository) *Journal {
	return &Journal{repo: repo}
}

// Track saves cb and returns a func that stores the processing outcome.
func (j *Journal) Track(ctx context.Context, cb Callback) func(error) {
	log := logger.FromCtx(ctx).With(
		zap.String("source", string(cb.Source)),
		zap.Uint("reference_id", cb.ReferenceID),
		zap.String("gateway_order_id", cb.GatewayOrderID),
		zap.String("payment_id", cb.PaymentID),
	)

	id, duplicate, err := j.repo.SaveCallback(ctx, cb)
	if err != nil {
		log.Error("failed to journal payment callback", zap.Error(err))
		return func(error) {}
	}
	if duplicate {
		log.Info("replayed payment callback")
		return func(error) {}
	}

	return func(procErr error) {
		// The request context may already be cancelled once the handler returns.
		ctx := context.WithoutCancel(ctx)
		if procErr != nil {
			if err := j.repo.MarkCallbackFailed(ctx, id, procErr.Error()); err != nil {
				log.Error("failed to mark callback failed", zap.Error(err))
			}
			return
		}
		if err := j.repo.MarkCallbackProcessed(ctx, id); err != nil {
			log.Error("failed to mark callback processed", zap.Error(err))
		}
	}
}
