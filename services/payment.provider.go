package services

import (
	"booking-service/domain"
	"context"
)

// PaymentProvider is the boundary to the external payment processor: create a
// time-bounded checkout session, and verify-then-parse inbound webhook events.
// The payload is never trusted before the signature checks out.
type PaymentProvider interface {
	CreateCheckoutSession(ctx context.Context, params domain.CheckoutSessionParams) (*domain.CheckoutSession, error)
	VerifyAndParseEvent(rawBody []byte, signatureHeader string) (*domain.PaymentEvent, error)
}
