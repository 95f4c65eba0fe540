package services

import (
	"booking-service/clock"
	"booking-service/domain"
	"context"
	"errors"
	"regexp"
	"testing"
	"time"
)

var confirmationCodePattern = regexp.MustCompile(`^BK-\d{6}-[A-Z0-9]{3}$`)

func validInput(propertyID string) CreateBookingInput {
	return CreateBookingInput{
		PropertyID: propertyID,
		CheckIn:    date(2024, 6, 1),
		CheckOut:   date(2024, 6, 4),
		Adults:     2,
		Children:   1,
		Guest: domain.GuestInfo{
			FirstName: "Ana",
			LastName:  "Kovac",
			Email:     "ana.kovac@example.com",
			Phone:     "+385911234567",
		},
	}
}

func newBookingService(property *domain.Property, repo *fakeBookingRepo, notifier *fakeNotifier) BookingService {
	propertyRepo := newFakePropertyRepo()
	if property != nil {
		propertyRepo.properties[property.ID] = property
	}
	availability := NewAvailabilityServiceImpl(repo, testTracer())
	clk := clock.NewFixed(time.Date(2024, 5, 1, 12, 0, 0, 0, time.UTC))
	return NewBookingServiceImpl(propertyRepo, repo, availability, notifier, nil, testLogger(), clk, testTracer())
}

func TestBookingService_CreateBooking(t *testing.T) {
	t.Parallel()

	ctx := context.Background()

	t.Run("enumerates all missing fields in one error", func(t *testing.T) {
		svc := newBookingService(nil, newFakeBookingRepo(), newFakeNotifier(false))

		_, err := svc.CreateBooking(ctx, CreateBookingInput{})
		var validationErr *domain.ValidationError
		if !errors.As(err, &validationErr) {
			t.Fatalf("expected ValidationError, got %v", err)
		}
		if len(validationErr.Fields) != 4 {
			t.Fatalf("expected 4 missing fields, got %v", validationErr.Fields)
		}
	})

	t.Run("rejects malformed email", func(t *testing.T) {
		property := testProperty()
		svc := newBookingService(property, newFakeBookingRepo(), newFakeNotifier(false))

		input := validInput(property.ID.Hex())
		input.Guest.Email = "not-an-email"
		_, err := svc.CreateBooking(ctx, input)
		var validationErr *domain.ValidationError
		if !errors.As(err, &validationErr) {
			t.Fatalf("expected ValidationError, got %v", err)
		}
	})

	t.Run("rejects unknown property", func(t *testing.T) {
		property := testProperty()
		svc := newBookingService(nil, newFakeBookingRepo(), newFakeNotifier(false))

		_, err := svc.CreateBooking(ctx, validInput(property.ID.Hex()))
		var notFoundErr *domain.NotFoundError
		if !errors.As(err, &notFoundErr) {
			t.Fatalf("expected NotFoundError, got %v", err)
		}
	})

	t.Run("rejects dates touching a blocked range", func(t *testing.T) {
		property := testProperty()
		svc := newBookingService(property, newFakeBookingRepo(), newFakeNotifier(false))

		input := validInput(property.ID.Hex())
		input.CheckIn = date(2024, 2, 1)
		input.CheckOut = date(2024, 2, 2)
		_, err := svc.CreateBooking(ctx, input)
		var conflictErr *domain.ConflictError
		if !errors.As(err, &conflictErr) {
			t.Fatalf("expected ConflictError, got %v", err)
		}
	})

	t.Run("creates booking with derived fields and server pricing", func(t *testing.T) {
		property := testProperty()
		repo := newFakeBookingRepo()
		svc := newBookingService(property, repo, newFakeNotifier(false))

		booking, err := svc.CreateBooking(ctx, validInput(property.ID.Hex()))
		if err != nil {
			t.Fatalf("expected no error, got %v", err)
		}
		if booking.Dates.Nights != 3 {
			t.Fatalf("expected 3 nights, got %d", booking.Dates.Nights)
		}
		if booking.Guests.Total != 3 {
			t.Fatalf("expected total 3 guests, got %d", booking.Guests.Total)
		}
		if booking.Pricing.BaseAmount != 1350 || booking.Pricing.Taxes != 147 || booking.Pricing.TotalAmount != 1617 {
			t.Fatalf("unexpected pricing: %+v", booking.Pricing)
		}
		if booking.Status != domain.BookingStatusConfirmed {
			t.Fatalf("expected status confirmed, got %s", booking.Status)
		}
		if booking.Payment.Status != domain.PaymentStatusPending {
			t.Fatalf("expected payment pending, got %s", booking.Payment.Status)
		}
		if !confirmationCodePattern.MatchString(booking.ConfirmationCode) {
			t.Fatalf("unexpected confirmation code format: %s", booking.ConfirmationCode)
		}
		if repo.count() != 1 {
			t.Fatalf("expected 1 persisted booking, got %d", repo.count())
		}
	})

	t.Run("notification failure never fails the booking", func(t *testing.T) {
		property := testProperty()
		notifier := newFakeNotifier(true)
		svc := newBookingService(property, newFakeBookingRepo(), notifier)

		booking, err := svc.CreateBooking(ctx, validInput(property.ID.Hex()))
		if err != nil {
			t.Fatalf("expected booking to succeed despite notifier failure, got %v", err)
		}
		if booking == nil {
			t.Fatal("expected booking to be returned")
		}
		if !notifier.waitForCall(time.Second) {
			t.Fatal("expected notifier to have been invoked")
		}
	})

	t.Run("rejects stay shorter than minimum", func(t *testing.T) {
		property := testProperty()
		property.Availability.MinimumStay = 5
		svc := newBookingService(property, newFakeBookingRepo(), newFakeNotifier(false))

		_, err := svc.CreateBooking(ctx, validInput(property.ID.Hex()))
		var conflictErr *domain.ConflictError
		if !errors.As(err, &conflictErr) {
			t.Fatalf("expected ConflictError, got %v", err)
		}
	})

	t.Run("second booking for overlapping dates loses", func(t *testing.T) {
		property := testProperty()
		repo := newFakeBookingRepo()
		svc := newBookingService(property, repo, newFakeNotifier(false))

		if _, err := svc.CreateBooking(ctx, validInput(property.ID.Hex())); err != nil {
			t.Fatalf("expected first booking to succeed, got %v", err)
		}
		_, err := svc.CreateBooking(ctx, validInput(property.ID.Hex()))
		var conflictErr *domain.ConflictError
		if !errors.As(err, &conflictErr) {
			t.Fatalf("expected ConflictError for overlapping booking, got %v", err)
		}
		if repo.count() != 1 {
			t.Fatalf("expected 1 persisted booking, got %d", repo.count())
		}
	})
}

func TestBookingService_CancelBooking(t *testing.T) {
	t.Parallel()

	ctx := context.Background()

	t.Run("cancels when more than 24h remain", func(t *testing.T) {
		property := testProperty()
		repo := newFakeBookingRepo()
		svc := newBookingService(property, repo, newFakeNotifier(false))

		booking, err := svc.CreateBooking(ctx, validInput(property.ID.Hex()))
		if err != nil {
			t.Fatalf("expected booking to succeed, got %v", err)
		}

		cancelled, err := svc.CancelBooking(ctx, booking.ID)
		if err != nil {
			t.Fatalf("expected cancellation to succeed, got %v", err)
		}
		if cancelled.Status != domain.BookingStatusCancelled {
			t.Fatalf("expected status cancelled, got %s", cancelled.Status)
		}
	})

	t.Run("rejects cancelling twice", func(t *testing.T) {
		property := testProperty()
		repo := newFakeBookingRepo()
		svc := newBookingService(property, repo, newFakeNotifier(false))

		booking, err := svc.CreateBooking(ctx, validInput(property.ID.Hex()))
		if err != nil {
			t.Fatalf("expected booking to succeed, got %v", err)
		}
		if _, err := svc.CancelBooking(ctx, booking.ID); err != nil {
			t.Fatalf("expected first cancellation to succeed, got %v", err)
		}

		_, err = svc.CancelBooking(ctx, booking.ID)
		var transitionErr *domain.InvalidStateTransitionError
		if !errors.As(err, &transitionErr) {
			t.Fatalf("expected InvalidStateTransitionError, got %v", err)
		}
	})

	t.Run("rejects cancelling close to check-in", func(t *testing.T) {
		property := testProperty()
		repo := newFakeBookingRepo()
		svc := newBookingService(property, repo, newFakeNotifier(false))

		input := validInput(property.ID.Hex())
		// Fixed clock is 2024-05-01 12:00; check-in 2 hours later.
		input.CheckIn = time.Date(2024, 5, 1, 14, 0, 0, 0, time.UTC)
		input.CheckOut = time.Date(2024, 5, 3, 10, 0, 0, 0, time.UTC)
		booking, err := svc.CreateBooking(ctx, input)
		if err != nil {
			t.Fatalf("expected booking to succeed, got %v", err)
		}

		_, err = svc.CancelBooking(ctx, booking.ID)
		var transitionErr *domain.InvalidStateTransitionError
		if !errors.As(err, &transitionErr) {
			t.Fatalf("expected InvalidStateTransitionError, got %v", err)
		}
	})
}
