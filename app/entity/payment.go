package entity

import "time"

const (
	StatusPending   int32 = 1
	StatusCompleted int32 = 10
	StatusFailed    int32 = 20
)

// Payment is a single booking payment attempt. Rows are created in
// StatusPending by the checkout flow; this service only flips them to
// StatusCompleted or StatusFailed, never back.
type Payment struct {
	ID uint64

	OrderID   string
	PaymentID *string

	BookingID string

	AmountCents int64
	Currency    string

	Status int32

	ErrorCode    *string
	ErrorMessage *string

	CreatedAt time.Time
	UpdatedAt time.Time
}
