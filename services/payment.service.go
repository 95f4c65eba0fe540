package services

import (
	"booking-service/domain"
	"context"
)

// PaymentService builds outbound checkout sessions and reconciles the
// asynchronous, possibly-duplicated webhook events the provider sends back.
type PaymentService interface {
	CreateCheckoutSession(ctx context.Context, input CreateBookingInput) (*domain.CheckoutSession, error)
	HandleEvent(ctx context.Context, rawBody []byte, signatureHeader string) error
}
