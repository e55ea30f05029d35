package gateway

import (
	"encoding/json"
	"strings"
)

type CashfreeConfig struct {
	WebhookSecret string
}

// CashfreeGateway handles both Cashfree webhook shapes: the generic
// payment event envelope and the subscription-flow envelope that nests the
// status under data.payment.payment_status.
type CashfreeGateway struct {
	cfg CashfreeConfig
}

func NewCashfreeGateway(cfg CashfreeConfig) *CashfreeGateway {
	return &CashfreeGateway{cfg: cfg}
}

func (g *CashfreeGateway) Name() string {
	return "cashfree"
}

func (g *CashfreeGateway) SignatureHeader() string {
	return "x-webhook-signature"
}

func (g *CashfreeGateway) VerifySignature(payload []byte, signature string) bool {
	return verifyHMACSHA256Hex(payload, signature, g.cfg.WebhookSecret)
}

func (g *CashfreeGateway) ParseEvent(payload []byte) (*Event, error) {
	var body struct {
		Event   string `json:"event"`
		Payload struct {
			Payment struct {
				Entity struct {
					OrderID      string  `json:"order_id"`
					ID           string  `json:"id"`
					ErrorCode    *string `json:"error_code"`
					ErrorMessage *string `json:"error_message"`
				} `json:"entity"`
			} `json:"payment"`
		} `json:"payload"`
		Data struct {
			Order struct {
				OrderID string `json:"order_id"`
			} `json:"order"`
			Payment struct {
				PaymentID     interface{} `json:"payment_id"`
				PaymentStatus string      `json:"payment_status"`
			} `json:"payment"`
		} `json:"data"`
	}
	if err := json.Unmarshal(payload, &body); err != nil {
		return nil, err
	}

	if strings.TrimSpace(body.Event) != "" {
		entity := body.Payload.Payment.Entity
		event := &Event{
			Outcome:      mapEventName(body.Event),
			EventType:    strings.TrimSpace(body.Event),
			OrderID:      strings.TrimSpace(entity.OrderID),
			ErrorCode:    normalizeOptional(entity.ErrorCode),
			ErrorMessage: normalizeOptional(entity.ErrorMessage),
		}
		if s := strings.TrimSpace(entity.ID); s != "" {
			event.GatewayPaymentID = &s
		}
		return event, nil
	}

	status := strings.ToUpper(strings.TrimSpace(body.Data.Payment.PaymentStatus))
	event := &Event{
		Outcome:   mapPaymentStatus(status),
		EventType: status,
		OrderID:   strings.TrimSpace(body.Data.Order.OrderID),
	}
	if s := parseStringish(body.Data.Payment.PaymentID); s != "" {
		event.GatewayPaymentID = &s
	}
	return event, nil
}

func mapEventName(eventName string) Outcome {
	switch strings.ToLower(strings.TrimSpace(eventName)) {
	case "payment.captured":
		return OutcomeCaptured
	case "payment.failed":
		return OutcomeFailed
	case "payment.expired":
		return OutcomeExpired
	case "payment.cancelled":
		return OutcomeCancelled
	default:
		return OutcomeUnknown
	}
}

func mapPaymentStatus(status string) Outcome {
	switch status {
	case "SUCCESS":
		return OutcomeCaptured
	case "FAILED":
		return OutcomeFailed
	case "EXPIRED":
		return OutcomeExpired
	case "CANCELLED":
		return OutcomeCancelled
	default:
		return OutcomeUnknown
	}
}
