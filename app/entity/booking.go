package entity

import "time"

const (
	BookingPending   int32 = 1
	BookingConfirmed int32 = 10
	BookingCancelled int32 = 20
	BookingCompleted int32 = 30
)

// Booking is owned by the booking flow; reconciliation only moves it from
// BookingPending to BookingConfirmed when its payment completes.
type Booking struct {
	ID string

	EventID string
	UserID  string

	Status int32

	CreatedAt time.Time
	UpdatedAt time.Time
}
