package gateway

// Outcome is the lifecycle result a gateway event maps to.
type Outcome int32

const (
	OutcomeUnknown Outcome = iota
	OutcomeCaptured
	OutcomeFailed
	OutcomeExpired
	OutcomeCancelled
)

// Event is a verified, parsed gateway webhook payload.
type Event struct {
	Outcome   Outcome
	EventType string

	OrderID          string
	GatewayPaymentID *string

	ErrorCode    *string
	ErrorMessage *string
}

// Gateway is one payment-gateway integration: a signature scheme plus an
// event-type mapping. Adapters never mutate state.
type Gateway interface {
	Name() string
	SignatureHeader() string
	VerifySignature(payload []byte, signature string) bool
	ParseEvent(payload []byte) (*Event, error)
}
