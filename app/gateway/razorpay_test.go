package gateway

import "testing"

func TestRazorpayVerifySignature(t *testing.T) {
	g := NewRazorpayGateway(RazorpayConfig{WebhookSecret: "rzp-secret"})
	payload := []byte(`{"event":"payment.captured"}`)

	if !g.VerifySignature(payload, signHex(payload, "rzp-secret")) {
		t.Fatal("expected valid signature to verify")
	}
	if g.VerifySignature(payload, signHex(payload, "cf-secret")) {
		t.Fatal("expected signature with other gateway's secret to fail")
	}
}

func TestRazorpayParseEventCaptured(t *testing.T) {
	g := NewRazorpayGateway(RazorpayConfig{WebhookSecret: "rzp-secret"})

	payload := []byte(`{"event":"payment.captured","payload":{"payment":{"entity":{"order_id":"order_abc","id":"pay_abc"}}}}`)
	event, err := g.ParseEvent(payload)
	if err != nil {
		t.Fatalf("parse event failed: %v", err)
	}
	if event.Outcome != OutcomeCaptured {
		t.Fatalf("expected captured outcome, got %d", event.Outcome)
	}
	if event.OrderID != "order_abc" {
		t.Fatalf("unexpected order id: %s", event.OrderID)
	}
	if event.GatewayPaymentID == nil || *event.GatewayPaymentID != "pay_abc" {
		t.Fatalf("unexpected payment id: %v", event.GatewayPaymentID)
	}
}

func TestRazorpayParseEventFailed(t *testing.T) {
	g := NewRazorpayGateway(RazorpayConfig{WebhookSecret: "rzp-secret"})

	payload := []byte(`{"event":"payment.failed","payload":{"payment":{"entity":{"order_id":"order_abc","id":"pay_abc","error_code":"BAD_REQUEST_ERROR","error_description":"Payment failed"}}}}`)
	event, err := g.ParseEvent(payload)
	if err != nil {
		t.Fatalf("parse event failed: %v", err)
	}
	if event.Outcome != OutcomeFailed {
		t.Fatalf("expected failed outcome, got %d", event.Outcome)
	}
	if event.ErrorCode == nil || *event.ErrorCode != "BAD_REQUEST_ERROR" {
		t.Fatalf("unexpected error code: %v", event.ErrorCode)
	}
	if event.ErrorMessage == nil || *event.ErrorMessage != "Payment failed" {
		t.Fatalf("unexpected error message: %v", event.ErrorMessage)
	}
}

func TestRazorpayParseEventUnknown(t *testing.T) {
	g := NewRazorpayGateway(RazorpayConfig{WebhookSecret: "rzp-secret"})

	event, err := g.ParseEvent([]byte(`{"event":"refund.processed","payload":{}}`))
	if err != nil {
		t.Fatalf("parse event failed: %v", err)
	}
	if event.Outcome != OutcomeUnknown {
		t.Fatalf("expected unknown outcome, got %d", event.Outcome)
	}
}

func TestRegistryResolvesByName(t *testing.T) {
	reg := NewRegistry(
		NewCashfreeGateway(CashfreeConfig{WebhookSecret: "a"}),
		NewRazorpayGateway(RazorpayConfig{WebhookSecret: "b"}),
	)

	g, err := reg.Get("Razorpay")
	if err != nil {
		t.Fatalf("get razorpay failed: %v", err)
	}
	if g.SignatureHeader() != "x-razorpay-signature" {
		t.Fatalf("unexpected signature header: %s", g.SignatureHeader())
	}

	if _, err := reg.Get("paytm"); err == nil {
		t.Fatal("expected unsupported gateway error")
	}
}
