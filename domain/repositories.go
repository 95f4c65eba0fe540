package domain

import (
	"context"
	"time"

	"go.mongodb.org/mongo-driver/bson/primitive"
)

type PropertyRepository interface {
	FindByID(ctx context.Context, id primitive.ObjectID) (*Property, error)
}

type BookingRepository interface {
	// InsertConflictChecked persists the booking only if no confirmed or
	// checked-in booking for the same property overlaps its date range. The
	// overlap re-check and the insert run in the same transaction; the loser
	// of a concurrent race gets a ConflictError.
	InsertConflictChecked(ctx context.Context, booking *Booking) error

	// InsertWithSessionRef persists a payment-path booking guarded by the
	// unique index on payment.external_session_ref. A duplicate insert
	// returns ErrDuplicateSessionRef.
	InsertWithSessionRef(ctx context.Context, booking *Booking) error

	FindByID(ctx context.Context, id primitive.ObjectID) (*Booking, error)
	FindBySessionRef(ctx context.Context, sessionRef string) (*Booking, error)
	FindByIntentRef(ctx context.Context, intentRef string) (*Booking, error)
	FindByConfirmationCode(ctx context.Context, code string) (*Booking, error)

	// FindOverlapping returns confirmed and checked-in bookings for the
	// property whose date ranges intersect [checkIn, checkOut] inclusively.
	FindOverlapping(ctx context.Context, propertyID primitive.ObjectID, checkIn, checkOut time.Time) (Bookings, error)

	UpdateStatus(ctx context.Context, id primitive.ObjectID, status BookingStatus) error
	UpdatePayment(ctx context.Context, id primitive.ObjectID, payment PaymentInfo) error
}
