package types

type HealthResponse struct {
	Status string `json:"status"`
}

type ErrorResponse struct {
	Error string `json:"error"`
}

// ReceivedResponse acknowledges a webhook delivery. Gateways only care
// about the 2xx; the body is for humans reading delivery logs.
type ReceivedResponse struct {
	Received bool `json:"received"`
}

type OrderStatusView struct {
	Kind        string `json:"kind"`
	OrderID     string `json:"order_id"`
	PaymentID   string `json:"payment_id,omitempty"`
	Status      string `json:"status"`
	AmountCents int64  `json:"amount_cents"`
	Currency    string `json:"currency"`

	BookingID     string `json:"booking_id,omitempty"`
	BookingStatus string `json:"booking_status,omitempty"`

	UserID     string `json:"user_id,omitempty"`
	PackageID  string `json:"package_id,omitempty"`
	SwipeCount int32  `json:"swipe_count,omitempty"`

	ErrorCode    string `json:"error_code,omitempty"`
	ErrorMessage string `json:"error_message,omitempty"`

	UpdatedAt string `json:"updated_at"`
}

type BookingStatusView struct {
	ID     string `json:"id"`
	Status string `json:"status"`

	OrderID     string `json:"order_id,omitempty"`
	PaymentID   string `json:"payment_id,omitempty"`
	AmountCents int64  `json:"amount_cents,omitempty"`
	Currency    string `json:"currency,omitempty"`

	PaymentStatus string `json:"payment_status,omitempty"`

	UpdatedAt string `json:"updated_at"`
}
