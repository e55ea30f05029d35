package service

import (
	"context"
	"strings"
	"time"

	"github.com/sirupsen/logrus"

	"github.com/molle-app/ms-go-reconcile/app/entity"
	"github.com/molle-app/ms-go-reconcile/app/factory"
	"github.com/molle-app/ms-go-reconcile/app/gateway"
	"github.com/molle-app/ms-go-reconcile/config"
)

const (
	KindBookingPayment      = "booking_payment"
	KindSubscriptionPayment = "subscription_payment"
	KindSwipePurchase       = "swipe_purchase"
)

const (
	WebhookProcessed         = "processed"
	WebhookIgnored           = "ignored"
	WebhookAlreadyReconciled = "already_reconciled"
)

const expiredErrorCode = "expired"

type WebhookResult struct {
	Outcome string
	Kind    string
	OrderID string
}

type paymentRepository interface {
	FindByOrderID(ctx context.Context, orderID string) (*entity.Payment, error)
	FindByBookingID(ctx context.Context, bookingID string) (*entity.Payment, error)
	MarkCompletedIfPending(ctx context.Context, orderID string, gatewayPaymentID *string, now time.Time) (bool, error)
	MarkFailedIfPending(ctx context.Context, orderID string, errCode, errMessage *string, now time.Time) (bool, error)
	ListExpiredPending(ctx context.Context, cutoff time.Time, limit int32) ([]*entity.Payment, error)
}

type subscriptionPaymentRepository interface {
	FindByOrderID(ctx context.Context, orderID string) (*entity.SubscriptionPayment, error)
	MarkCompletedIfPending(ctx context.Context, orderID string, gatewayPaymentID *string, now time.Time) (bool, error)
	MarkFailedIfPending(ctx context.Context, orderID string, errCode, errMessage *string, now time.Time) (bool, error)
	ListExpiredPending(ctx context.Context, cutoff time.Time, limit int32) ([]*entity.SubscriptionPayment, error)
}

type swipePurchaseRepository interface {
	FindByOrderID(ctx context.Context, orderID string) (*entity.SwipePurchase, error)
	MarkCompletedIfPending(ctx context.Context, orderID string, gatewayPaymentID *string, now time.Time) (bool, error)
	MarkFailedIfPending(ctx context.Context, orderID string, errCode, errMessage *string, now time.Time) (bool, error)
	ListExpiredPending(ctx context.Context, cutoff time.Time, limit int32) ([]*entity.SwipePurchase, error)
}

type bookingRepository interface {
	FindByID(ctx context.Context, id string) (*entity.Booking, error)
	Confirm(ctx context.Context, id string, now time.Time) error
}

type userRepository interface {
	IncrementDailySwipeLimit(ctx context.Context, userID string, delta int32, now time.Time) error
}

type webhookReceiptRepository interface {
	Create(ctx context.Context, receipt *entity.WebhookReceipt) error
}

type reconcileEventRepository interface {
	Create(ctx context.Context, event *entity.ReconcileEvent) error
}

// EntitlementGranter applies a purchased package to the user. It is only
// invoked in the branch that won the payment's conditional update.
type EntitlementGranter interface {
	GrantPackage(ctx context.Context, userID, packageID string) error
}

type ReconcileService struct {
	paymentRepo      paymentRepository
	subscriptionRepo subscriptionPaymentRepository
	swipeRepo        swipePurchaseRepository
	bookingRepo      bookingRepository
	userRepo         userRepository
	receiptRepo      webhookReceiptRepository
	eventRepo        reconcileEventRepository
	gatewayReg       *gateway.Registry
	entitlements     EntitlementGranter
	reconcileCfg     config.ReconcileConfig
	logger           logrus.FieldLogger
}

func NewReconcileService(
	paymentRepo paymentRepository,
	subscriptionRepo subscriptionPaymentRepository,
	swipeRepo swipePurchaseRepository,
	bookingRepo bookingRepository,
	userRepo userRepository,
	receiptRepo webhookReceiptRepository,
	eventRepo reconcileEventRepository,
	gatewayReg *gateway.Registry,
	entitlements EntitlementGranter,
	reconcileCfg config.ReconcileConfig,
) *ReconcileService {
	return &ReconcileService{
		paymentRepo:      paymentRepo,
		subscriptionRepo: subscriptionRepo,
		swipeRepo:        swipeRepo,
		bookingRepo:      bookingRepo,
		userRepo:         userRepo,
		receiptRepo:      receiptRepo,
		eventRepo:        eventRepo,
		gatewayReg:       gatewayReg,
		entitlements:     entitlements,
		reconcileCfg:     reconcileCfg,
		logger:           factory.NewModuleLogger("reconcile-service"),
	}
}

// HandleWebhook verifies, classifies, and executes one gateway delivery.
// Signature failures and unknown gateways return errors and mutate
// nothing; unrecognized events and already-reconciled orders are reported
// in the result so the HTTP layer can acknowledge them with a 200.
func (s *ReconcileService) HandleWebhook(ctx context.Context, gatewayName, requestID string, payload []byte, signature string) (*WebhookResult, error) {
	gw, err := s.gatewayReg.Get(gatewayName)
	if err != nil {
		return nil, ErrGatewayUnsupported
	}

	signature = strings.TrimSpace(signature)
	if !gw.VerifySignature(payload, signature) {
		s.persistReceipt(ctx, gw.Name(), requestID, "", nil, payload, signature, entity.ReceiptRejected, "signature verification failed")
		return nil, ErrSignatureRejected
	}

	event, err := gw.ParseEvent(payload)
	if err != nil || event == nil {
		s.persistReceipt(ctx, gw.Name(), requestID, "", nil, payload, signature, entity.ReceiptIgnored, "payload could not be parsed")
		return &WebhookResult{Outcome: WebhookIgnored}, nil
	}

	if event.Outcome == gateway.OutcomeUnknown || event.OrderID == "" {
		s.persistReceipt(ctx, gw.Name(), requestID, event.EventType, nil, payload, signature, entity.ReceiptIgnored, "unrecognized event")
		return &WebhookResult{Outcome: WebhookIgnored}, nil
	}

	result, err := s.execute(ctx, event)
	if err != nil {
		return nil, err
	}

	receiptStatus := entity.ReceiptProcessed
	reason := ""
	if result.Outcome == WebhookIgnored {
		receiptStatus = entity.ReceiptIgnored
		reason = "no matching order"
	}
	s.persistReceipt(ctx, gw.Name(), requestID, event.EventType, &event.OrderID, payload, signature, receiptStatus, reason)

	return result, nil
}

// execute resolves the record kind for the order id and applies the
// transition. Swipe purchases are checked first, then booking payments,
// then subscription payments.
func (s *ReconcileService) execute(ctx context.Context, event *gateway.Event) (*WebhookResult, error) {
	now := time.Now().UTC()

	swipe, err := s.swipeRepo.FindByOrderID(ctx, event.OrderID)
	if err != nil {
		return nil, err
	}
	if swipe != nil {
		return s.executeSwipePurchase(ctx, event, swipe, now)
	}

	payment, err := s.paymentRepo.FindByOrderID(ctx, event.OrderID)
	if err != nil {
		return nil, err
	}
	if payment != nil {
		return s.executeBookingPayment(ctx, event, payment, now)
	}

	subscription, err := s.subscriptionRepo.FindByOrderID(ctx, event.OrderID)
	if err != nil {
		return nil, err
	}
	if subscription != nil {
		return s.executeSubscriptionPayment(ctx, event, subscription, now)
	}

	return &WebhookResult{Outcome: WebhookIgnored, OrderID: event.OrderID}, nil
}

func (s *ReconcileService) executeBookingPayment(ctx context.Context, event *gateway.Event, payment *entity.Payment, now time.Time) (*WebhookResult, error) {
	result := &WebhookResult{Kind: KindBookingPayment, OrderID: event.OrderID}

	if event.Outcome != gateway.OutcomeCaptured {
		applied, err := s.paymentRepo.MarkFailedIfPending(ctx, event.OrderID, failureCode(event), event.ErrorMessage, now)
		if err != nil {
			return nil, err
		}
		return s.finishTransition(ctx, result, applied, KindBookingPayment, event, entity.StatusFailed, now)
	}

	applied, err := s.paymentRepo.MarkCompletedIfPending(ctx, event.OrderID, event.GatewayPaymentID, now)
	if err != nil {
		return nil, err
	}
	if !applied {
		result.Outcome = WebhookAlreadyReconciled
		return result, nil
	}

	// The payment row is terminal at this point. If the booking write
	// cannot be made to stick, money has been collected against an
	// unconfirmed booking and an operator has to step in.
	if err := s.bookingRepo.Confirm(ctx, payment.BookingID, now); err != nil {
		if retryErr := s.bookingRepo.Confirm(ctx, payment.BookingID, now); retryErr != nil {
			s.logger.WithError(retryErr).WithFields(logrus.Fields{
				"marker":     "fatal_inconsistency",
				"order_id":   event.OrderID,
				"booking_id": payment.BookingID,
			}).Error("Completed payment left without confirmed booking")
			return nil, ErrFatalInconsistency
		}
	}

	return s.finishTransition(ctx, result, true, KindBookingPayment, event, entity.StatusCompleted, now)
}

func (s *ReconcileService) executeSubscriptionPayment(ctx context.Context, event *gateway.Event, subscription *entity.SubscriptionPayment, now time.Time) (*WebhookResult, error) {
	result := &WebhookResult{Kind: KindSubscriptionPayment, OrderID: event.OrderID}

	if event.Outcome != gateway.OutcomeCaptured {
		applied, err := s.subscriptionRepo.MarkFailedIfPending(ctx, event.OrderID, failureCode(event), event.ErrorMessage, now)
		if err != nil {
			return nil, err
		}
		return s.finishTransition(ctx, result, applied, KindSubscriptionPayment, event, entity.StatusFailed, now)
	}

	applied, err := s.subscriptionRepo.MarkCompletedIfPending(ctx, event.OrderID, event.GatewayPaymentID, now)
	if err != nil {
		return nil, err
	}
	if !applied {
		result.Outcome = WebhookAlreadyReconciled
		return result, nil
	}

	if err := s.entitlements.GrantPackage(ctx, subscription.UserID, subscription.PackageID); err != nil {
		return nil, err
	}

	return s.finishTransition(ctx, result, true, KindSubscriptionPayment, event, entity.StatusCompleted, now)
}

func (s *ReconcileService) executeSwipePurchase(ctx context.Context, event *gateway.Event, swipe *entity.SwipePurchase, now time.Time) (*WebhookResult, error) {
	result := &WebhookResult{Kind: KindSwipePurchase, OrderID: event.OrderID}

	if event.Outcome != gateway.OutcomeCaptured {
		applied, err := s.swipeRepo.MarkFailedIfPending(ctx, event.OrderID, failureCode(event), event.ErrorMessage, now)
		if err != nil {
			return nil, err
		}
		return s.finishTransition(ctx, result, applied, KindSwipePurchase, event, entity.StatusFailed, now)
	}

	applied, err := s.swipeRepo.MarkCompletedIfPending(ctx, event.OrderID, event.GatewayPaymentID, now)
	if err != nil {
		return nil, err
	}
	if !applied {
		result.Outcome = WebhookAlreadyReconciled
		return result, nil
	}

	if err := s.userRepo.IncrementDailySwipeLimit(ctx, swipe.UserID, swipe.SwipeCount, now); err != nil {
		return nil, err
	}

	return s.finishTransition(ctx, result, true, KindSwipePurchase, event, entity.StatusCompleted, now)
}

func (s *ReconcileService) finishTransition(ctx context.Context, result *WebhookResult, applied bool, kind string, event *gateway.Event, newStatus int32, now time.Time) (*WebhookResult, error) {
	if !applied {
		result.Outcome = WebhookAlreadyReconciled
		return result, nil
	}

	result.Outcome = WebhookProcessed
	oldStatus := entity.StatusPending
	// The transition has already committed; the ledger row is audit
	// trail, so a failed insert is logged rather than failing the
	// delivery and provoking a gateway retry of an applied event.
	if err := s.eventRepo.Create(ctx, &entity.ReconcileEvent{
		RecordKind:       kind,
		OrderID:          event.OrderID,
		EventType:        event.EventType,
		OldStatus:        &oldStatus,
		NewStatus:        newStatus,
		GatewayPaymentID: event.GatewayPaymentID,
		CreatedAt:        now,
	}); err != nil {
		s.logger.WithError(err).WithFields(logrus.Fields{
			"record_kind": kind,
			"order_id":    event.OrderID,
		}).Warn("Failed to persist reconcile event")
	}
	return result, nil
}

func (s *ReconcileService) persistReceipt(ctx context.Context, gatewayName, requestID, eventType string, orderID *string, payload []byte, signature string, status int32, reason string) {
	now := time.Now().UTC()
	receipt := &entity.WebhookReceipt{
		RequestID:   requestID,
		Gateway:     gatewayName,
		EventType:   eventType,
		OrderID:     orderID,
		Signature:   signature,
		PayloadJSON: string(payload),
		Status:      status,
		CreatedAt:   now,
		UpdatedAt:   now,
	}
	if reason = strings.TrimSpace(reason); reason != "" {
		trimmed := truncate(reason, 1024)
		receipt.Error = &trimmed
	}
	if err := s.receiptRepo.Create(ctx, receipt); err != nil {
		s.logger.WithError(err).Warn("Failed to persist webhook receipt")
	}
}

func failureCode(event *gateway.Event) *string {
	if event.ErrorCode != nil {
		return event.ErrorCode
	}

	var code string
	switch event.Outcome {
	case gateway.OutcomeExpired:
		code = "expired"
	case gateway.OutcomeCancelled:
		code = "cancelled"
	case gateway.OutcomeFailed:
		code = "failed"
	default:
		return nil
	}
	return &code
}

func truncate(value string, max int) string {
	if len(value) <= max {
		return value
	}
	return value[:max]
}
