package entity

import "time"

const (
	ReceiptProcessed int32 = 10
	ReceiptIgnored   int32 = 11
	ReceiptRejected  int32 = 20
)

// WebhookReceipt is the audit row stored for every inbound gateway
// delivery, including rejected and ignored ones.
type WebhookReceipt struct {
	ID uint64

	RequestID string
	Gateway   string
	EventType string
	OrderID   *string

	Signature   string
	PayloadJSON string

	Status int32
	Error  *string

	CreatedAt time.Time
	UpdatedAt time.Time
}
