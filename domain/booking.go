package domain

import (
	"encoding/json"
	"io"
	"math"
	"time"

	"go.mongodb.org/mongo-driver/bson/primitive"
)

type BookingStatus string

const (
	BookingStatusDraft      BookingStatus = "draft"
	BookingStatusConfirmed  BookingStatus = "confirmed"
	BookingStatusCheckedIn  BookingStatus = "checked_in"
	BookingStatusCheckedOut BookingStatus = "checked_out"
	BookingStatusCancelled  BookingStatus = "cancelled"
	BookingStatusNoShow     BookingStatus = "no_show"
)

type PaymentStatus string

const (
	PaymentStatusPending    PaymentStatus = "pending"
	PaymentStatusProcessing PaymentStatus = "processing"
	PaymentStatusCompleted  PaymentStatus = "completed"
	PaymentStatusFailed     PaymentStatus = "failed"
	PaymentStatusRefunded   PaymentStatus = "refunded"
	PaymentStatusCancelled  PaymentStatus = "cancelled"
)

type Booking struct {
	ID               primitive.ObjectID `bson:"_id,omitempty" json:"_id"`
	PropertyID       primitive.ObjectID `bson:"property_id" json:"property_id"`
	ConfirmationCode string             `bson:"confirmation_code" json:"confirmation_code"`
	Guest            GuestInfo          `bson:"guest" json:"guest"`
	Dates            BookingDates       `bson:"dates" json:"dates"`
	Guests           GuestCounts        `bson:"guests" json:"guests"`
	Pricing          BookingPricing     `bson:"pricing" json:"pricing"`
	Payment          PaymentInfo        `bson:"payment" json:"payment"`
	Status           BookingStatus      `bson:"status" json:"status"`
	CreatedAt        time.Time          `bson:"created_at" json:"created_at"`
	UpdatedAt        time.Time          `bson:"updated_at" json:"updated_at"`
}

type GuestInfo struct {
	FirstName string `bson:"first_name" json:"first_name"`
	LastName  string `bson:"last_name" json:"last_name"`
	Email     string `bson:"email" json:"email" validate:"required,email"`
	Phone     string `bson:"phone" json:"phone"`
	Address   string `bson:"address,omitempty" json:"address,omitempty"`
}

type BookingDates struct {
	CheckIn  time.Time `bson:"check_in" json:"check_in"`
	CheckOut time.Time `bson:"check_out" json:"check_out"`
	Nights   int       `bson:"nights" json:"nights"`
}

type GuestCounts struct {
	Adults   int `bson:"adults" json:"adults"`
	Children int `bson:"children" json:"children"`
	Total    int `bson:"total" json:"total"`
}

type BookingPricing struct {
	BaseAmount  float64 `bson:"base_amount" json:"base_amount"`
	CleaningFee float64 `bson:"cleaning_fee" json:"cleaning_fee"`
	Taxes       float64 `bson:"taxes" json:"taxes"`
	TotalAmount float64 `bson:"total_amount" json:"total_amount"`
	Currency    string  `bson:"currency" json:"currency"`
}

type PaymentInfo struct {
	ExternalSessionRef string        `bson:"external_session_ref,omitempty" json:"external_session_ref,omitempty"`
	ExternalIntentRef  string        `bson:"external_intent_ref,omitempty" json:"external_intent_ref,omitempty"`
	Status             PaymentStatus `bson:"status" json:"status"`
	PaidAt             *time.Time    `bson:"paid_at,omitempty" json:"paid_at,omitempty"`
}

type Bookings []*Booking

// ComputeNights returns ceil((checkOut - checkIn) in days). Nights is always
// derived from the dates, never trusted from client input.
func ComputeNights(checkIn, checkOut time.Time) int {
	if !checkOut.After(checkIn) {
		return 0
	}
	return int(math.Ceil(checkOut.Sub(checkIn).Hours() / 24))
}

// SetDates stores the dates and recomputes nights.
func (b *Booking) SetDates(checkIn, checkOut time.Time) {
	b.Dates.CheckIn = checkIn
	b.Dates.CheckOut = checkOut
	b.Dates.Nights = ComputeNights(checkIn, checkOut)
}

// SetGuestCounts stores the counts and recomputes the total.
func (b *Booking) SetGuestCounts(adults, children int) {
	b.Guests.Adults = adults
	b.Guests.Children = children
	b.Guests.Total = adults + children
}

// ComputePricing prices a stay of the given number of nights from the
// property's current pricing. Taxes are a flat percentage over the base
// amount plus the cleaning fee.
func ComputePricing(pricing PropertyPricing, nights int) BookingPricing {
	baseAmount := float64(nights) * pricing.BasePrice
	taxes := (baseAmount + pricing.CleaningFee) * pricing.TaxRatePercent / 100
	return BookingPricing{
		BaseAmount:  baseAmount,
		CleaningFee: pricing.CleaningFee,
		Taxes:       taxes,
		TotalAmount: baseAmount + pricing.CleaningFee + taxes,
		Currency:    pricing.Currency,
	}
}

var bookingTransitions = map[BookingStatus][]BookingStatus{
	BookingStatusDraft:     {BookingStatusConfirmed},
	BookingStatusConfirmed: {BookingStatusCheckedIn, BookingStatusCancelled, BookingStatusNoShow},
	BookingStatusCheckedIn: {BookingStatusCheckedOut},
}

// CanTransition reports whether the status change is permitted by the booking
// state machine. Terminal states (checked_out, cancelled, no_show) have no
// outgoing transitions.
func CanTransition(from, to BookingStatus) bool {
	for _, allowed := range bookingTransitions[from] {
		if allowed == to {
			return true
		}
	}
	return false
}

// TransitionTo applies a status change, rejecting anything the state machine
// does not permit.
func (b *Booking) TransitionTo(to BookingStatus, now time.Time) error {
	if !CanTransition(b.Status, to) {
		return &InvalidStateTransitionError{From: b.Status, To: to}
	}
	b.Status = to
	b.UpdatedAt = now
	return nil
}

// Cancel enforces the cancellation policy: only a confirmed booking with more
// than 24 hours remaining before check-in may be cancelled.
func (b *Booking) Cancel(now time.Time) error {
	if b.Status != BookingStatusConfirmed {
		return &InvalidStateTransitionError{From: b.Status, To: BookingStatusCancelled}
	}
	if b.Dates.CheckIn.Sub(now) <= 24*time.Hour {
		return &InvalidStateTransitionError{
			From:   b.Status,
			To:     BookingStatusCancelled,
			Reason: "less than 24 hours before check-in",
		}
	}
	return b.TransitionTo(BookingStatusCancelled, now)
}

func (o *Booking) ToJSON(w io.Writer) error {
	e := json.NewEncoder(w)
	return e.Encode(o)
}

func (o *Booking) FromJSON(r io.Reader) error {
	d := json.NewDecoder(r)
	return d.Decode(o)
}

func (o *Bookings) ToJSON(w io.Writer) error {
	e := json.NewEncoder(w)
	return e.Encode(o)
}
