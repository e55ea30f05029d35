package entity

import "time"

// ReconcileEvent is one row per applied status transition.
type ReconcileEvent struct {
	ID uint64

	RecordKind string
	OrderID    string

	EventType string

	OldStatus *int32
	NewStatus int32

	GatewayPaymentID *string

	CreatedAt time.Time
}
