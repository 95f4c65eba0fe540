package domain

import (
	"math"
	"time"

	"go.mongodb.org/mongo-driver/bson/primitive"
)

// ToMinorUnits converts a decimal amount to the provider's minor-unit
// convention (cents), rounding to the nearest integer. The rounding is
// explicit because floating-point amounts are a correctness hazard here.
func ToMinorUnits(amount float64) int64 {
	return int64(math.Round(amount * 100))
}

// BookingIntent carries everything needed to build a booking once the payment
// provider confirms a checkout session. It travels inside the session's
// provider-echoed metadata instead of a pending-booking table, signed so the
// webhook handler can trust it on the way back.
type BookingIntent struct {
	PropertyID primitive.ObjectID `json:"property_id"`
	CheckIn    time.Time          `json:"check_in"`
	CheckOut   time.Time          `json:"check_out"`
	Adults     int                `json:"adults"`
	Children   int                `json:"children"`
	Guest      GuestInfo          `json:"guest"`
}

type CheckoutSession struct {
	ID          string `json:"session_id"`
	RedirectURL string `json:"redirect_url"`
}

// CheckoutSessionParams is the outbound request to the payment provider.
// AmountMinor is in the provider's minor-unit convention (cents).
type CheckoutSessionParams struct {
	AmountMinor       int64             `json:"amount_minor"`
	Currency          string            `json:"currency"`
	CustomerEmail     string            `json:"customer_email"`
	ClientReferenceID string            `json:"client_reference_id"`
	ExpiresInSeconds  int               `json:"expires_in_seconds"`
	SuccessURL        string            `json:"success_url"`
	CancelURL         string            `json:"cancel_url"`
	Metadata          map[string]string `json:"metadata"`
}

// Payment event types delivered by the provider's webhook. Anything else is
// acknowledged as a no-op so the provider does not retry events this service
// does not care about.
const (
	EventCheckoutSessionCompleted = "checkout.session.completed"
	EventPaymentSucceeded         = "payment.succeeded"
	EventPaymentFailed            = "payment.failed"
)

type PaymentEvent struct {
	Type      string            `json:"type"`
	SessionID string            `json:"session_id,omitempty"`
	IntentID  string            `json:"intent_id,omitempty"`
	Metadata  map[string]string `json:"metadata,omitempty"`
	CreatedAt time.Time         `json:"created_at"`
}
