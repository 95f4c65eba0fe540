package services

import (
	"booking-service/domain"
	"context"
	"time"

	"go.mongodb.org/mongo-driver/bson/primitive"
)

type CreateBookingInput struct {
	PropertyID string           `json:"propertyId"`
	CheckIn    time.Time        `json:"checkIn"`
	CheckOut   time.Time        `json:"checkOut"`
	Adults     int              `json:"adults"`
	Children   int              `json:"children"`
	Guest      domain.GuestInfo `json:"guest"`
}

type BookingService interface {
	CreateBooking(ctx context.Context, input CreateBookingInput) (*domain.Booking, error)
	GetBooking(ctx context.Context, id primitive.ObjectID) (*domain.Booking, error)
	GetBookingByConfirmationCode(ctx context.Context, code string) (*domain.Booking, error)
	CancelBooking(ctx context.Context, id primitive.ObjectID) (*domain.Booking, error)
	CheckInGuest(ctx context.Context, id primitive.ObjectID) (*domain.Booking, error)
	CheckOutGuest(ctx context.Context, id primitive.ObjectID) (*domain.Booking, error)
	MarkNoShow(ctx context.Context, id primitive.ObjectID) (*domain.Booking, error)
}
