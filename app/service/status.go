package service

import (
	"context"

	"github.com/molle-app/ms-go-reconcile/app/entity"
)

// OrderStatus is the read-side projection for one gateway order id,
// resolved with the same lookup order the webhook path uses.
type OrderStatus struct {
	Kind string

	Payment      *entity.Payment
	Subscription *entity.SubscriptionPayment
	Swipe        *entity.SwipePurchase
	Booking      *entity.Booking
}

// BookingStatus pairs a booking with its most recent payment attempt.
type BookingStatus struct {
	Booking *entity.Booking
	Payment *entity.Payment
}

func (s *ReconcileService) GetOrderStatus(ctx context.Context, orderID string) (*OrderStatus, error) {
	swipe, err := s.swipeRepo.FindByOrderID(ctx, orderID)
	if err != nil {
		return nil, err
	}
	if swipe != nil {
		return &OrderStatus{Kind: KindSwipePurchase, Swipe: swipe}, nil
	}

	payment, err := s.paymentRepo.FindByOrderID(ctx, orderID)
	if err != nil {
		return nil, err
	}
	if payment != nil {
		status := &OrderStatus{Kind: KindBookingPayment, Payment: payment}
		booking, err := s.bookingRepo.FindByID(ctx, payment.BookingID)
		if err != nil {
			return nil, err
		}
		status.Booking = booking
		return status, nil
	}

	subscription, err := s.subscriptionRepo.FindByOrderID(ctx, orderID)
	if err != nil {
		return nil, err
	}
	if subscription != nil {
		return &OrderStatus{Kind: KindSubscriptionPayment, Subscription: subscription}, nil
	}

	return nil, ErrOrderNotFound
}

func (s *ReconcileService) GetBookingStatus(ctx context.Context, bookingID string) (*BookingStatus, error) {
	booking, err := s.bookingRepo.FindByID(ctx, bookingID)
	if err != nil {
		return nil, err
	}
	if booking == nil {
		return nil, ErrBookingNotFound
	}

	payment, err := s.paymentRepo.FindByBookingID(ctx, bookingID)
	if err != nil {
		return nil, err
	}

	return &BookingStatus{Booking: booking, Payment: payment}, nil
}
