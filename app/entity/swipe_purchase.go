package entity

import "time"

// SwipePurchase is a purchase of additional daily swipe allowance.
// Completion permanently adds SwipeCount to the owning user's daily limit.
type SwipePurchase struct {
	ID uint64

	OrderID   string
	PaymentID *string

	UserID     string
	SwipeCount int32

	AmountCents int64
	Currency    string

	Status int32

	ErrorCode    *string
	ErrorMessage *string

	CreatedAt time.Time
	UpdatedAt time.Time
}
