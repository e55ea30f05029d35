package controller

import (
	"bytes"
	"context"
	"crypto/hmac"
	"crypto/sha256"
	"encoding/hex"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/labstack/echo/v4"

	"github.com/molle-app/ms-go-reconcile/app/entity"
	"github.com/molle-app/ms-go-reconcile/app/gateway"
	"github.com/molle-app/ms-go-reconcile/app/service"
	"github.com/molle-app/ms-go-reconcile/app/types"
	"github.com/molle-app/ms-go-reconcile/config"
)

const controllerWebhookSecret = "cf-secret"

type controllerPaymentRepo struct {
	findByOrderIDFn          func(ctx context.Context, orderID string) (*entity.Payment, error)
	findByBookingIDFn        func(ctx context.Context, bookingID string) (*entity.Payment, error)
	markCompletedIfPendingFn func(ctx context.Context, orderID string, gatewayPaymentID *string, now time.Time) (bool, error)
	markFailedIfPendingFn    func(ctx context.Context, orderID string, errCode, errMessage *string, now time.Time) (bool, error)
}

func (r *controllerPaymentRepo) FindByOrderID(ctx context.Context, orderID string) (*entity.Payment, error) {
	if r.findByOrderIDFn != nil {
		return r.findByOrderIDFn(ctx, orderID)
	}
	return nil, nil
}

func (r *controllerPaymentRepo) FindByBookingID(ctx context.Context, bookingID string) (*entity.Payment, error) {
	if r.findByBookingIDFn != nil {
		return r.findByBookingIDFn(ctx, bookingID)
	}
	return nil, nil
}

func (r *controllerPaymentRepo) MarkCompletedIfPending(ctx context.Context, orderID string, gatewayPaymentID *string, now time.Time) (bool, error) {
	if r.markCompletedIfPendingFn != nil {
		return r.markCompletedIfPendingFn(ctx, orderID, gatewayPaymentID, now)
	}
	return false, nil
}

func (r *controllerPaymentRepo) MarkFailedIfPending(ctx context.Context, orderID string, errCode, errMessage *string, now time.Time) (bool, error) {
	if r.markFailedIfPendingFn != nil {
		return r.markFailedIfPendingFn(ctx, orderID, errCode, errMessage, now)
	}
	return false, nil
}

func (r *controllerPaymentRepo) ListExpiredPending(context.Context, time.Time, int32) ([]*entity.Payment, error) {
	return []*entity.Payment{}, nil
}

type controllerSubscriptionRepo struct{}

func (r *controllerSubscriptionRepo) FindByOrderID(context.Context, string) (*entity.SubscriptionPayment, error) {
	return nil, nil
}

func (r *controllerSubscriptionRepo) MarkCompletedIfPending(context.Context, string, *string, time.Time) (bool, error) {
	return false, nil
}

func (r *controllerSubscriptionRepo) MarkFailedIfPending(context.Context, string, *string, *string, time.Time) (bool, error) {
	return false, nil
}

func (r *controllerSubscriptionRepo) ListExpiredPending(context.Context, time.Time, int32) ([]*entity.SubscriptionPayment, error) {
	return []*entity.SubscriptionPayment{}, nil
}

type controllerSwipeRepo struct{}

func (r *controllerSwipeRepo) FindByOrderID(context.Context, string) (*entity.SwipePurchase, error) {
	return nil, nil
}

func (r *controllerSwipeRepo) MarkCompletedIfPending(context.Context, string, *string, time.Time) (bool, error) {
	return false, nil
}

func (r *controllerSwipeRepo) MarkFailedIfPending(context.Context, string, *string, *string, time.Time) (bool, error) {
	return false, nil
}

func (r *controllerSwipeRepo) ListExpiredPending(context.Context, time.Time, int32) ([]*entity.SwipePurchase, error) {
	return []*entity.SwipePurchase{}, nil
}

type controllerBookingRepo struct {
	findByIDFn func(ctx context.Context, id string) (*entity.Booking, error)
	confirmFn  func(ctx context.Context, id string, now time.Time) error
	confirms   int
}

func (r *controllerBookingRepo) FindByID(ctx context.Context, id string) (*entity.Booking, error) {
	if r.findByIDFn != nil {
		return r.findByIDFn(ctx, id)
	}
	return nil, nil
}

func (r *controllerBookingRepo) Confirm(ctx context.Context, id string, now time.Time) error {
	r.confirms++
	if r.confirmFn != nil {
		return r.confirmFn(ctx, id, now)
	}
	return nil
}

type controllerUserRepo struct{}

func (r *controllerUserRepo) IncrementDailySwipeLimit(context.Context, string, int32, time.Time) error {
	return nil
}

func (r *controllerUserRepo) GrantPackage(context.Context, string, string) error {
	return nil
}

type controllerReceiptRepo struct{}

func (r *controllerReceiptRepo) Create(context.Context, *entity.WebhookReceipt) error {
	return nil
}

type controllerEventRepo struct{}

func (r *controllerEventRepo) Create(context.Context, *entity.ReconcileEvent) error {
	return nil
}

func newWebhookControllerForTest(paymentRepo *controllerPaymentRepo, bookingRepo *controllerBookingRepo) *WebhookController {
	gatewayReg := gateway.NewRegistry(
		gateway.NewCashfreeGateway(gateway.CashfreeConfig{WebhookSecret: controllerWebhookSecret}),
		gateway.NewRazorpayGateway(gateway.RazorpayConfig{WebhookSecret: "rzp-secret"}),
	)
	userRepo := &controllerUserRepo{}
	reconcileService := service.NewReconcileService(
		paymentRepo,
		&controllerSubscriptionRepo{},
		&controllerSwipeRepo{},
		bookingRepo,
		userRepo,
		&controllerReceiptRepo{},
		&controllerEventRepo{},
		gatewayReg,
		userRepo,
		config.ReconcileConfig{PendingTimeout: time.Hour, JobBatchSize: 100},
	)
	return NewWebhookController(reconcileService, gatewayReg)
}

func pendingBookingPayment(orderID, bookingID string) *entity.Payment {
	now := time.Now().UTC()
	return &entity.Payment{
		ID:          1,
		OrderID:     orderID,
		BookingID:   bookingID,
		AmountCents: 49900,
		Currency:    "INR",
		Status:      entity.StatusPending,
		CreatedAt:   now,
		UpdatedAt:   now,
	}
}

func signBody(body []byte, secret string) string {
	mac := hmac.New(sha256.New, []byte(secret))
	_, _ = mac.Write(body)
	return hex.EncodeToString(mac.Sum(nil))
}

func webhookContext(e *echo.Echo, rec *httptest.ResponseRecorder, gatewayName string, body []byte, signature string) echo.Context {
	req := httptest.NewRequest(http.MethodPost, "/webhooks/gateways/"+gatewayName, bytes.NewBuffer(body))
	req.Header.Set(echo.HeaderContentType, echo.MIMEApplicationJSON)
	if signature != "" {
		req.Header.Set("x-webhook-signature", signature)
	}
	ctx := e.NewContext(req, rec)
	ctx.SetParamNames("gateway")
	ctx.SetParamValues(gatewayName)
	return ctx
}

func TestHandleGatewayWebhookProcessed(t *testing.T) {
	paymentRepo := &controllerPaymentRepo{
		findByOrderIDFn: func(_ context.Context, orderID string) (*entity.Payment, error) {
			return pendingBookingPayment(orderID, "bk_1"), nil
		},
		markCompletedIfPendingFn: func(context.Context, string, *string, time.Time) (bool, error) {
			return true, nil
		},
	}
	bookingRepo := &controllerBookingRepo{}
	ctrl := newWebhookControllerForTest(paymentRepo, bookingRepo)

	body := []byte(`{"event":"payment.captured","payload":{"payment":{"entity":{"order_id":"ord_1","id":"pay_1"}}}}`)
	e := echo.New()
	rec := httptest.NewRecorder()
	ctx := webhookContext(e, rec, "cashfree", body, signBody(body, controllerWebhookSecret))

	if err := ctrl.HandleGatewayWebhook(ctx); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if rec.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d body=%s", rec.Code, rec.Body.String())
	}

	var payload types.ReceivedResponse
	if err := json.Unmarshal(rec.Body.Bytes(), &payload); err != nil {
		t.Fatalf("unmarshal failed: %v", err)
	}
	if !payload.Received {
		t.Fatal("expected received=true")
	}
	if bookingRepo.confirms != 1 {
		t.Fatalf("expected one confirmation, got %d", bookingRepo.confirms)
	}
}

func TestHandleGatewayWebhookBadSignature(t *testing.T) {
	mutated := false
	paymentRepo := &controllerPaymentRepo{
		markCompletedIfPendingFn: func(context.Context, string, *string, time.Time) (bool, error) {
			mutated = true
			return true, nil
		},
		markFailedIfPendingFn: func(context.Context, string, *string, *string, time.Time) (bool, error) {
			mutated = true
			return true, nil
		},
	}
	ctrl := newWebhookControllerForTest(paymentRepo, &controllerBookingRepo{})

	body := []byte(`{"event":"payment.captured","payload":{"payment":{"entity":{"order_id":"ord_1","id":"pay_1"}}}}`)
	e := echo.New()
	rec := httptest.NewRecorder()
	ctx := webhookContext(e, rec, "cashfree", body, "deadbeef")

	_ = ctrl.HandleGatewayWebhook(ctx)
	if rec.Code != http.StatusBadRequest {
		t.Fatalf("expected 400, got %d", rec.Code)
	}
	if mutated {
		t.Fatal("expected no mutation after rejected signature")
	}
}

func TestHandleGatewayWebhookUnknownGateway(t *testing.T) {
	ctrl := newWebhookControllerForTest(&controllerPaymentRepo{}, &controllerBookingRepo{})

	body := []byte(`{}`)
	e := echo.New()
	rec := httptest.NewRecorder()
	ctx := webhookContext(e, rec, "paytm", body, "sig")

	_ = ctrl.HandleGatewayWebhook(ctx)
	if rec.Code != http.StatusBadRequest {
		t.Fatalf("expected 400, got %d", rec.Code)
	}
}

func TestHandleGatewayWebhookIgnoredEventStillAcknowledged(t *testing.T) {
	ctrl := newWebhookControllerForTest(&controllerPaymentRepo{}, &controllerBookingRepo{})

	body := []byte(`{"event":"refund.processed","payload":{"payment":{"entity":{"order_id":"ord_1","id":"pay_1"}}}}`)
	e := echo.New()
	rec := httptest.NewRecorder()
	ctx := webhookContext(e, rec, "cashfree", body, signBody(body, controllerWebhookSecret))

	_ = ctrl.HandleGatewayWebhook(ctx)
	if rec.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d body=%s", rec.Code, rec.Body.String())
	}
}

func TestHandleGatewayWebhookPersistenceFailure(t *testing.T) {
	paymentRepo := &controllerPaymentRepo{
		findByOrderIDFn: func(_ context.Context, orderID string) (*entity.Payment, error) {
			return pendingBookingPayment(orderID, "bk_1"), nil
		},
		markCompletedIfPendingFn: func(context.Context, string, *string, time.Time) (bool, error) {
			return false, errors.New("connection reset")
		},
	}
	ctrl := newWebhookControllerForTest(paymentRepo, &controllerBookingRepo{})

	body := []byte(`{"event":"payment.captured","payload":{"payment":{"entity":{"order_id":"ord_1","id":"pay_1"}}}}`)
	e := echo.New()
	rec := httptest.NewRecorder()
	ctx := webhookContext(e, rec, "cashfree", body, signBody(body, controllerWebhookSecret))

	_ = ctrl.HandleGatewayWebhook(ctx)
	if rec.Code != http.StatusInternalServerError {
		t.Fatalf("expected 500, got %d", rec.Code)
	}
}

func TestHealth(t *testing.T) {
	ctrl := newWebhookControllerForTest(&controllerPaymentRepo{}, &controllerBookingRepo{})

	e := echo.New()
	req := httptest.NewRequest(http.MethodGet, "/health", nil)
	rec := httptest.NewRecorder()
	ctx := e.NewContext(req, rec)

	if err := ctrl.Health(ctx); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if rec.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d", rec.Code)
	}
}
