package services

import (
	"booking-service/domain"
	"context"
	"time"

	"go.opentelemetry.io/otel/codes"
	"go.opentelemetry.io/otel/trace"
)

type AvailabilityServiceImpl struct {
	bookingRepo domain.BookingRepository
	Tracer      trace.Tracer
}

func NewAvailabilityServiceImpl(bookingRepo domain.BookingRepository, tr trace.Tracer) AvailabilityService {
	return &AvailabilityServiceImpl{bookingRepo: bookingRepo, Tracer: tr}
}

// IsBlockedByProperty checks the requested range against the property's
// explicit blocked-date calendar. Inclusive on both boundaries, so ranges
// that merely touch count as conflicting. Pure, no I/O.
func IsBlockedByProperty(property *domain.Property, checkIn, checkOut time.Time) bool {
	for _, blocked := range property.Availability.BlockedDateRanges {
		if blocked.Overlaps(checkIn, checkOut) {
			return true
		}
	}
	return false
}

// IsAvailable combines the blocked-date calendar with a scan of confirmed and
// checked-in bookings for the same property, so a confirmed booking blocks
// the dates even when the owner never added an explicit blocked range.
func (s *AvailabilityServiceImpl) IsAvailable(ctx context.Context, property *domain.Property, checkIn, checkOut time.Time) (bool, error) {
	ctx, span := s.Tracer.Start(ctx, "AvailabilityService.IsAvailable")
	defer span.End()

	if !property.Availability.IsActive {
		return false, nil
	}

	if IsBlockedByProperty(property, checkIn, checkOut) {
		return false, nil
	}

	overlapping, err := s.bookingRepo.FindOverlapping(ctx, property.ID, checkIn, checkOut)
	if err != nil {
		span.SetStatus(codes.Error, err.Error())
		return false, err
	}

	return len(overlapping) == 0, nil
}
