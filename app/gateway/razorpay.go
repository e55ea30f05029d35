package gateway

import (
	"encoding/json"
	"fmt"
	"strconv"
	"strings"
)

type RazorpayConfig struct {
	WebhookSecret string
}

type RazorpayGateway struct {
	cfg RazorpayConfig
}

func NewRazorpayGateway(cfg RazorpayConfig) *RazorpayGateway {
	return &RazorpayGateway{cfg: cfg}
}

func (g *RazorpayGateway) Name() string {
	return "razorpay"
}

func (g *RazorpayGateway) SignatureHeader() string {
	return "x-razorpay-signature"
}

func (g *RazorpayGateway) VerifySignature(payload []byte, signature string) bool {
	return verifyHMACSHA256Hex(payload, signature, g.cfg.WebhookSecret)
}

func (g *RazorpayGateway) ParseEvent(payload []byte) (*Event, error) {
	var body struct {
		Event   string `json:"event"`
		Payload struct {
			Payment struct {
				Entity struct {
					OrderID          string  `json:"order_id"`
					ID               string  `json:"id"`
					ErrorCode        *string `json:"error_code"`
					ErrorDescription *string `json:"error_description"`
				} `json:"entity"`
			} `json:"payment"`
		} `json:"payload"`
	}
	if err := json.Unmarshal(payload, &body); err != nil {
		return nil, err
	}

	entity := body.Payload.Payment.Entity
	event := &Event{
		Outcome:      mapEventName(body.Event),
		EventType:    strings.TrimSpace(body.Event),
		OrderID:      strings.TrimSpace(entity.OrderID),
		ErrorCode:    normalizeOptional(entity.ErrorCode),
		ErrorMessage: normalizeOptional(entity.ErrorDescription),
	}
	if s := strings.TrimSpace(entity.ID); s != "" {
		event.GatewayPaymentID = &s
	}
	return event, nil
}

func normalizeOptional(v *string) *string {
	if v == nil {
		return nil
	}
	trimmed := strings.TrimSpace(*v)
	if trimmed == "" {
		return nil
	}
	return &trimmed
}

func parseStringish(v interface{}) string {
	switch t := v.(type) {
	case string:
		return strings.TrimSpace(t)
	case json.Number:
		return t.String()
	case float64:
		return strconv.FormatInt(int64(t), 10)
	case map[string]interface{}:
		if raw, ok := t["id"]; ok {
			if s, ok := raw.(string); ok {
				return strings.TrimSpace(s)
			}
		}
	}
	if v == nil {
		return ""
	}
	return strings.TrimSpace(fmt.Sprintf("%v", v))
}
