package service

import (
	"context"
	"time"

	"github.com/sirupsen/logrus"

	"github.com/molle-app/ms-go-reconcile/app/entity"
)

const defaultBatchSize = int32(100)

// RunExpirePendingBatch fails payment attempts that have sat in pending
// past the configured timeout without a gateway verdict. The same
// conditional updates the webhook path uses keep this safe against a late
// webhook racing the sweep.
func (s *ReconcileService) RunExpirePendingBatch(ctx context.Context) error {
	now := time.Now().UTC()
	cutoff := now.Add(-s.reconcileCfg.PendingTimeout)
	limit := s.batchSize()
	code := expiredErrorCode

	var firstErr error

	payments, err := s.paymentRepo.ListExpiredPending(ctx, cutoff, limit)
	if err != nil {
		return err
	}
	for _, payment := range payments {
		applied, err := s.paymentRepo.MarkFailedIfPending(ctx, payment.OrderID, &code, nil, now)
		if err != nil {
			firstErr = keepFirstErr(firstErr, err)
			continue
		}
		s.recordExpiry(ctx, KindBookingPayment, payment.OrderID, applied, now)
	}

	subscriptions, err := s.subscriptionRepo.ListExpiredPending(ctx, cutoff, limit)
	if err != nil {
		return keepFirstErr(firstErr, err)
	}
	for _, subscription := range subscriptions {
		applied, err := s.subscriptionRepo.MarkFailedIfPending(ctx, subscription.OrderID, &code, nil, now)
		if err != nil {
			firstErr = keepFirstErr(firstErr, err)
			continue
		}
		s.recordExpiry(ctx, KindSubscriptionPayment, subscription.OrderID, applied, now)
	}

	swipes, err := s.swipeRepo.ListExpiredPending(ctx, cutoff, limit)
	if err != nil {
		return keepFirstErr(firstErr, err)
	}
	for _, swipe := range swipes {
		applied, err := s.swipeRepo.MarkFailedIfPending(ctx, swipe.OrderID, &code, nil, now)
		if err != nil {
			firstErr = keepFirstErr(firstErr, err)
			continue
		}
		s.recordExpiry(ctx, KindSwipePurchase, swipe.OrderID, applied, now)
	}

	return firstErr
}

func (s *ReconcileService) recordExpiry(ctx context.Context, kind, orderID string, applied bool, now time.Time) {
	if !applied {
		return
	}
	oldStatus := entity.StatusPending
	if err := s.eventRepo.Create(ctx, &entity.ReconcileEvent{
		RecordKind: kind,
		OrderID:    orderID,
		EventType:  "pending_expired",
		OldStatus:  &oldStatus,
		NewStatus:  entity.StatusFailed,
		CreatedAt:  now,
	}); err != nil {
		s.logger.WithError(err).WithFields(logrus.Fields{
			"record_kind": kind,
			"order_id":    orderID,
		}).Warn("Failed to persist reconcile event")
	}
}

func (s *ReconcileService) batchSize() int32 {
	if s.reconcileCfg.JobBatchSize > 0 {
		return s.reconcileCfg.JobBatchSize
	}
	return defaultBatchSize
}

func keepFirstErr(current, candidate error) error {
	if current != nil {
		return current
	}
	return candidate
}
