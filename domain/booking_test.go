package domain

import (
	"testing"
	"time"
)

func date(y int, m time.Month, d int) time.Time {
	return time.Date(y, m, d, 0, 0, 0, 0, time.UTC)
}

func TestComputeNights(t *testing.T) {
	t.Parallel()

	cases := []struct {
		name     string
		checkIn  time.Time
		checkOut time.Time
		want     int
	}{
		{"three full nights", date(2024, 1, 1), date(2024, 1, 4), 3},
		{"single night", date(2024, 1, 1), date(2024, 1, 2), 1},
		{"partial day rounds up", date(2024, 1, 1), time.Date(2024, 1, 2, 14, 0, 0, 0, time.UTC), 2},
		{"same instant", date(2024, 1, 1), date(2024, 1, 1), 0},
		{"inverted dates", date(2024, 1, 4), date(2024, 1, 1), 0},
	}

	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			if got := ComputeNights(tc.checkIn, tc.checkOut); got != tc.want {
				t.Fatalf("expected %d nights, got %d", tc.want, got)
			}
		})
	}
}

func TestSetDatesRecomputesNights(t *testing.T) {
	t.Parallel()

	var booking Booking
	booking.SetDates(date(2024, 1, 1), date(2024, 1, 4))
	if booking.Dates.Nights != 3 {
		t.Fatalf("expected 3 nights, got %d", booking.Dates.Nights)
	}

	booking.SetDates(date(2024, 1, 1), date(2024, 1, 6))
	if booking.Dates.Nights != 5 {
		t.Fatalf("expected nights recomputed to 5, got %d", booking.Dates.Nights)
	}
}

func TestSetGuestCountsDerivesTotal(t *testing.T) {
	t.Parallel()

	var booking Booking
	booking.SetGuestCounts(2, 1)
	if booking.Guests.Total != 3 {
		t.Fatalf("expected total 3, got %d", booking.Guests.Total)
	}
}

func TestComputePricing(t *testing.T) {
	t.Parallel()

	pricing := ComputePricing(PropertyPricing{
		BasePrice:      450,
		Currency:       "EUR",
		CleaningFee:    120,
		TaxRatePercent: 10,
	}, 3)

	if pricing.BaseAmount != 1350 {
		t.Fatalf("expected base amount 1350, got %v", pricing.BaseAmount)
	}
	if pricing.Taxes != 147 {
		t.Fatalf("expected taxes 147, got %v", pricing.Taxes)
	}
	if pricing.TotalAmount != 1617 {
		t.Fatalf("expected total 1617, got %v", pricing.TotalAmount)
	}
	if pricing.TotalAmount < pricing.BaseAmount+pricing.CleaningFee {
		t.Fatalf("total must never be below base plus cleaning fee")
	}
}

func TestToMinorUnits(t *testing.T) {
	t.Parallel()

	cases := []struct {
		amount float64
		want   int64
	}{
		{1617, 161700},
		{19.99, 1999},
		{0.1 + 0.2, 30},
		{1234.56, 123456},
	}

	for _, tc := range cases {
		if got := ToMinorUnits(tc.amount); got != tc.want {
			t.Fatalf("ToMinorUnits(%v): expected %d, got %d", tc.amount, tc.want, got)
		}
	}
}

func TestBlockedDateRangeOverlaps(t *testing.T) {
	t.Parallel()

	blocked := BlockedDateRange{Start: date(2024, 2, 2), End: date(2024, 2, 3)}

	cases := []struct {
		name     string
		checkIn  time.Time
		checkOut time.Time
		want     bool
	}{
		{"fully inside", date(2024, 2, 2), date(2024, 2, 3), true},
		{"touching end boundary", date(2024, 2, 1), date(2024, 2, 2), true},
		{"touching start boundary", date(2024, 2, 3), date(2024, 2, 5), true},
		{"before", date(2024, 1, 28), date(2024, 2, 1), false},
		{"after", date(2024, 2, 4), date(2024, 2, 6), false},
		{"spanning", date(2024, 2, 1), date(2024, 2, 5), true},
	}

	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			if got := blocked.Overlaps(tc.checkIn, tc.checkOut); got != tc.want {
				t.Fatalf("expected %v, got %v", tc.want, got)
			}
		})
	}
}

func TestBookingStateMachine(t *testing.T) {
	t.Parallel()

	now := date(2024, 1, 1)

	t.Run("happy path", func(t *testing.T) {
		booking := &Booking{Status: BookingStatusDraft}
		for _, next := range []BookingStatus{BookingStatusConfirmed, BookingStatusCheckedIn, BookingStatusCheckedOut} {
			if err := booking.TransitionTo(next, now); err != nil {
				t.Fatalf("expected transition to %s, got %v", next, err)
			}
		}
	})

	t.Run("no transition out of terminal states", func(t *testing.T) {
		for _, terminal := range []BookingStatus{BookingStatusCheckedOut, BookingStatusCancelled, BookingStatusNoShow} {
			booking := &Booking{Status: terminal}
			if err := booking.TransitionTo(BookingStatusConfirmed, now); err == nil {
				t.Fatalf("expected transition out of %s to fail", terminal)
			}
		}
	})

	t.Run("draft cannot be cancelled", func(t *testing.T) {
		booking := &Booking{Status: BookingStatusDraft}
		if err := booking.Cancel(now); err == nil {
			t.Fatal("expected cancellation of draft booking to fail")
		}
	})
}

func TestBookingCancellationPolicy(t *testing.T) {
	t.Parallel()

	now := time.Date(2024, 3, 1, 12, 0, 0, 0, time.UTC)

	t.Run("cancellable more than 24h before check-in", func(t *testing.T) {
		booking := &Booking{Status: BookingStatusConfirmed}
		booking.SetDates(now.Add(48*time.Hour), now.Add(96*time.Hour))
		if err := booking.Cancel(now); err != nil {
			t.Fatalf("expected cancellation to succeed, got %v", err)
		}
		if booking.Status != BookingStatusCancelled {
			t.Fatalf("expected status cancelled, got %s", booking.Status)
		}
	})

	t.Run("rejected 2 hours before check-in", func(t *testing.T) {
		booking := &Booking{Status: BookingStatusConfirmed}
		booking.SetDates(now.Add(2*time.Hour), now.Add(50*time.Hour))
		err := booking.Cancel(now)
		if err == nil {
			t.Fatal("expected cancellation to fail")
		}
		if _, ok := err.(*InvalidStateTransitionError); !ok {
			t.Fatalf("expected InvalidStateTransitionError, got %T", err)
		}
	})

	t.Run("rejected after check-out", func(t *testing.T) {
		booking := &Booking{Status: BookingStatusCheckedOut}
		booking.SetDates(now.Add(48*time.Hour), now.Add(96*time.Hour))
		if err := booking.Cancel(now); err == nil {
			t.Fatal("expected cancellation to fail")
		}
	})
}
