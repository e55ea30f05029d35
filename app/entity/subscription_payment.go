package entity

import "time"

// SubscriptionPayment is a package purchase attempt. Shares the Payment
// status lifecycle but owns no booking; completion grants the package to
// the purchasing user.
type SubscriptionPayment struct {
	ID uint64

	OrderID   string
	PaymentID *string

	UserID    string
	PackageID string

	AmountCents int64
	Currency    string

	Status int32

	ErrorCode    *string
	ErrorMessage *string

	CreatedAt time.Time
	UpdatedAt time.Time
}
