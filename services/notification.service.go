package services

import "booking-service/domain"

type BookingConfirmationEmail struct {
	Email            string
	GuestName        string
	PropertyName     string
	ConfirmationCode string
	CheckIn          string
	CheckOut         string
	TotalAmount      float64
	Currency         string
}

// NotificationService delivers the confirmation email. Callers treat it as
// fire-and-forget: a send failure is logged and never fails the booking.
type NotificationService interface {
	SendBookingConfirmation(data *BookingConfirmationEmail) error
}

func NewBookingConfirmationEmail(booking *domain.Booking, property *domain.Property) *BookingConfirmationEmail {
	return &BookingConfirmationEmail{
		Email:            booking.Guest.Email,
		GuestName:        booking.Guest.FirstName + " " + booking.Guest.LastName,
		PropertyName:     property.Name,
		ConfirmationCode: booking.ConfirmationCode,
		CheckIn:          booking.Dates.CheckIn.Format("2006-01-02"),
		CheckOut:         booking.Dates.CheckOut.Format("2006-01-02"),
		TotalAmount:      booking.Pricing.TotalAmount,
		Currency:         booking.Pricing.Currency,
	}
}
