package service

import "errors"

var (
	ErrGatewayUnsupported = errors.New("gateway is not supported")
	ErrSignatureRejected  = errors.New("webhook signature rejected")
	ErrOrderNotFound      = errors.New("order not found")
	ErrBookingNotFound    = errors.New("booking not found")
	ErrFatalInconsistency = errors.New("payment completed but booking confirmation failed")
)
