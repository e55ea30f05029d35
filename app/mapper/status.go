package mapper

import (
	"time"

	"github.com/molle-app/ms-go-reconcile/app/entity"
	"github.com/molle-app/ms-go-reconcile/app/service"
	"github.com/molle-app/ms-go-reconcile/app/types"
)

func PaymentStatusLabel(status int32) string {
	switch status {
	case entity.StatusPending:
		return "PENDING"
	case entity.StatusCompleted:
		return "COMPLETED"
	case entity.StatusFailed:
		return "FAILED"
	default:
		return "UNKNOWN"
	}
}

func BookingStatusLabel(status int32) string {
	switch status {
	case entity.BookingPending:
		return "PENDING"
	case entity.BookingConfirmed:
		return "CONFIRMED"
	case entity.BookingCancelled:
		return "CANCELLED"
	case entity.BookingCompleted:
		return "COMPLETED"
	default:
		return "UNKNOWN"
	}
}

func OrderStatusToView(status *service.OrderStatus) *types.OrderStatusView {
	if status == nil {
		return nil
	}

	switch status.Kind {
	case service.KindSwipePurchase:
		item := status.Swipe
		return &types.OrderStatusView{
			Kind:         status.Kind,
			OrderID:      item.OrderID,
			PaymentID:    derefString(item.PaymentID),
			Status:       PaymentStatusLabel(item.Status),
			AmountCents:  item.AmountCents,
			Currency:     item.Currency,
			UserID:       item.UserID,
			SwipeCount:   item.SwipeCount,
			ErrorCode:    derefString(item.ErrorCode),
			ErrorMessage: derefString(item.ErrorMessage),
			UpdatedAt:    formatTime(item.UpdatedAt),
		}
	case service.KindSubscriptionPayment:
		item := status.Subscription
		return &types.OrderStatusView{
			Kind:         status.Kind,
			OrderID:      item.OrderID,
			PaymentID:    derefString(item.PaymentID),
			Status:       PaymentStatusLabel(item.Status),
			AmountCents:  item.AmountCents,
			Currency:     item.Currency,
			UserID:       item.UserID,
			PackageID:    item.PackageID,
			ErrorCode:    derefString(item.ErrorCode),
			ErrorMessage: derefString(item.ErrorMessage),
			UpdatedAt:    formatTime(item.UpdatedAt),
		}
	default:
		item := status.Payment
		view := &types.OrderStatusView{
			Kind:         status.Kind,
			OrderID:      item.OrderID,
			PaymentID:    derefString(item.PaymentID),
			Status:       PaymentStatusLabel(item.Status),
			AmountCents:  item.AmountCents,
			Currency:     item.Currency,
			BookingID:    item.BookingID,
			ErrorCode:    derefString(item.ErrorCode),
			ErrorMessage: derefString(item.ErrorMessage),
			UpdatedAt:    formatTime(item.UpdatedAt),
		}
		if status.Booking != nil {
			view.BookingStatus = BookingStatusLabel(status.Booking.Status)
		}
		return view
	}
}

func BookingStatusToView(status *service.BookingStatus) *types.BookingStatusView {
	if status == nil {
		return nil
	}

	view := &types.BookingStatusView{
		ID:        status.Booking.ID,
		Status:    BookingStatusLabel(status.Booking.Status),
		UpdatedAt: formatTime(status.Booking.UpdatedAt),
	}
	if status.Payment != nil {
		view.OrderID = status.Payment.OrderID
		view.PaymentID = derefString(status.Payment.PaymentID)
		view.AmountCents = status.Payment.AmountCents
		view.Currency = status.Payment.Currency
		view.PaymentStatus = PaymentStatusLabel(status.Payment.Status)
	}
	return view
}

func derefString(v *string) string {
	if v == nil {
		return ""
	}
	return *v
}

func formatTime(t time.Time) string {
	return t.UTC().Format(time.RFC3339)
}
