package services

import (
	"booking-service/clock"
	"booking-service/domain"
	"booking-service/events"
	"booking-service/utils"
	"context"
	"errors"

	"github.com/sirupsen/logrus"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.opentelemetry.io/otel/codes"
	"go.opentelemetry.io/otel/trace"
)

const confirmationCodeAttempts = 5

type BookingServiceImpl struct {
	propertyRepo domain.PropertyRepository
	bookingRepo  domain.BookingRepository
	availability AvailabilityService
	notifier     NotificationService
	publisher    *events.Publisher
	logger       *logrus.Logger
	clock        clock.Clock
	Tracer       trace.Tracer
}

func NewBookingServiceImpl(propertyRepo domain.PropertyRepository, bookingRepo domain.BookingRepository,
	availability AvailabilityService, notifier NotificationService, publisher *events.Publisher,
	logger *logrus.Logger, clk clock.Clock, tr trace.Tracer) BookingService {
	return &BookingServiceImpl{
		propertyRepo: propertyRepo,
		bookingRepo:  bookingRepo,
		availability: availability,
		notifier:     notifier,
		publisher:    publisher,
		logger:       logger,
		clock:        clk,
		Tracer:       tr,
	}
}

func (s *BookingServiceImpl) CreateBooking(ctx context.Context, input CreateBookingInput) (*domain.Booking, error) {
	ctx, span := s.Tracer.Start(ctx, "BookingService.CreateBooking")
	defer span.End()

	propertyID, err := validateBookingInput(input)
	if err != nil {
		return nil, err
	}

	property, err := s.propertyRepo.FindByID(ctx, propertyID)
	if err != nil {
		span.SetStatus(codes.Error, err.Error())
		return nil, err
	}

	available, err := s.availability.IsAvailable(ctx, property, input.CheckIn, input.CheckOut)
	if err != nil {
		span.SetStatus(codes.Error, err.Error())
		return nil, err
	}
	if !available {
		return nil, &domain.ConflictError{Message: "property is not available for the selected dates"}
	}

	nights := domain.ComputeNights(input.CheckIn, input.CheckOut)
	if property.Availability.MinimumStay > 0 && nights < property.Availability.MinimumStay {
		return nil, &domain.ConflictError{Message: "stay is shorter than the property's minimum stay"}
	}
	if property.Availability.MaximumStay > 0 && nights > property.Availability.MaximumStay {
		return nil, &domain.ConflictError{Message: "stay is longer than the property's maximum stay"}
	}

	now := s.clock.Now()
	booking := &domain.Booking{
		PropertyID: property.ID,
		Guest:      input.Guest,
		Status:     domain.BookingStatusConfirmed,
		Payment:    domain.PaymentInfo{Status: domain.PaymentStatusPending},
		CreatedAt:  now,
		UpdatedAt:  now,
	}
	booking.SetDates(input.CheckIn, input.CheckOut)
	booking.SetGuestCounts(input.Adults, input.Children)
	booking.Pricing = domain.ComputePricing(property.Pricing, booking.Dates.Nights)

	code, err := uniqueConfirmationCode(ctx, s.bookingRepo, s.clock)
	if err != nil {
		span.SetStatus(codes.Error, err.Error())
		return nil, err
	}
	booking.ConfirmationCode = code

	if err := s.bookingRepo.InsertConflictChecked(ctx, booking); err != nil {
		span.SetStatus(codes.Error, err.Error())
		return nil, err
	}

	s.notifyConfirmed(booking, property)
	s.publisher.PublishBookingConfirmed(booking)

	return booking, nil
}

// validateBookingInput enumerates every missing field in one error, not just
// the first, then checks the present fields for shape.
func validateBookingInput(input CreateBookingInput) (primitive.ObjectID, error) {
	var missing []string
	if input.PropertyID == "" {
		missing = append(missing, "propertyId")
	}
	if input.CheckIn.IsZero() {
		missing = append(missing, "dates.checkIn")
	}
	if input.CheckOut.IsZero() {
		missing = append(missing, "dates.checkOut")
	}
	if input.Guest.Email == "" {
		missing = append(missing, "guest.email")
	}
	if len(missing) > 0 {
		return primitive.NilObjectID, &domain.ValidationError{Fields: missing}
	}

	var invalid []string
	if !utils.IsValidEmail(input.Guest.Email) {
		invalid = append(invalid, "guest.email")
	}
	if !input.CheckOut.After(input.CheckIn) {
		invalid = append(invalid, "dates.checkOut")
	}
	if input.Adults < 1 {
		invalid = append(invalid, "guests.adults")
	}
	if input.Children < 0 {
		invalid = append(invalid, "guests.children")
	}
	if len(invalid) > 0 {
		return primitive.NilObjectID, &domain.ValidationError{Fields: invalid}
	}

	propertyID, err := primitive.ObjectIDFromHex(input.PropertyID)
	if err != nil {
		return primitive.NilObjectID, &domain.ValidationError{Fields: []string{"propertyId"}}
	}
	return propertyID, nil
}

// uniqueConfirmationCode regenerates on collision against stored bookings.
// Codes are timestamp-plus-random, so collisions are rare; after the retry
// budget the last candidate is used as-is.
func uniqueConfirmationCode(ctx context.Context, repo domain.BookingRepository, clk clock.Clock) (string, error) {
	var code string
	for attempt := 0; attempt < confirmationCodeAttempts; attempt++ {
		code = utils.GenerateConfirmationCode(clk.Now())
		_, err := repo.FindByConfirmationCode(ctx, code)
		if err != nil {
			var notFound *domain.NotFoundError
			if errors.As(err, &notFound) {
				return code, nil
			}
			return "", err
		}
	}
	return code, nil
}

// notifyConfirmed is fire-and-forget: the notifier has its own retry policy
// and a failure must never roll back an already-persisted booking.
func (s *BookingServiceImpl) notifyConfirmed(booking *domain.Booking, property *domain.Property) {
	go func() {
		if err := s.notifier.SendBookingConfirmation(NewBookingConfirmationEmail(booking, property)); err != nil {
			s.logger.WithFields(logrus.Fields{"path": "services/booking"}).Error("Error sending confirmation email: ", err)
		}
	}()
}

func (s *BookingServiceImpl) GetBooking(ctx context.Context, id primitive.ObjectID) (*domain.Booking, error) {
	return s.bookingRepo.FindByID(ctx, id)
}

func (s *BookingServiceImpl) GetBookingByConfirmationCode(ctx context.Context, code string) (*domain.Booking, error) {
	return s.bookingRepo.FindByConfirmationCode(ctx, code)
}

func (s *BookingServiceImpl) CancelBooking(ctx context.Context, id primitive.ObjectID) (*domain.Booking, error) {
	ctx, span := s.Tracer.Start(ctx, "BookingService.CancelBooking")
	defer span.End()

	booking, err := s.bookingRepo.FindByID(ctx, id)
	if err != nil {
		span.SetStatus(codes.Error, err.Error())
		return nil, err
	}
	if err := booking.Cancel(s.clock.Now()); err != nil {
		return nil, err
	}
	if err := s.bookingRepo.UpdateStatus(ctx, id, booking.Status); err != nil {
		span.SetStatus(codes.Error, err.Error())
		return nil, err
	}
	s.publisher.PublishBookingCancelled(booking)
	return booking, nil
}

func (s *BookingServiceImpl) CheckInGuest(ctx context.Context, id primitive.ObjectID) (*domain.Booking, error) {
	return s.transition(ctx, id, domain.BookingStatusCheckedIn)
}

func (s *BookingServiceImpl) CheckOutGuest(ctx context.Context, id primitive.ObjectID) (*domain.Booking, error) {
	return s.transition(ctx, id, domain.BookingStatusCheckedOut)
}

func (s *BookingServiceImpl) MarkNoShow(ctx context.Context, id primitive.ObjectID) (*domain.Booking, error) {
	return s.transition(ctx, id, domain.BookingStatusNoShow)
}

func (s *BookingServiceImpl) transition(ctx context.Context, id primitive.ObjectID, to domain.BookingStatus) (*domain.Booking, error) {
	ctx, span := s.Tracer.Start(ctx, "BookingService.Transition")
	defer span.End()

	booking, err := s.bookingRepo.FindByID(ctx, id)
	if err != nil {
		span.SetStatus(codes.Error, err.Error())
		return nil, err
	}
	if err := booking.TransitionTo(to, s.clock.Now()); err != nil {
		return nil, err
	}
	if err := s.bookingRepo.UpdateStatus(ctx, id, booking.Status); err != nil {
		span.SetStatus(codes.Error, err.Error())
		return nil, err
	}
	return booking, nil
}
