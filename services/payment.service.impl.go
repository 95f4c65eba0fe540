package services

import (
	"booking-service/clock"
	"booking-service/domain"
	"booking-service/events"
	"booking-service/utils"
	"context"
	"encoding/base64"
	"encoding/json"
	"errors"

	"github.com/google/uuid"
	"github.com/sirupsen/logrus"
	"go.opentelemetry.io/otel/codes"
	"go.opentelemetry.io/otel/trace"
)

const (
	// The provider invalidates sessions after this lifetime; expired
	// sessions simply never produce a webhook.
	checkoutSessionLifetimeSeconds = 30 * 60

	metadataIntentKey    = "booking_intent"
	metadataSignatureKey = "intent_signature"
)

type PaymentServiceImpl struct {
	provider     PaymentProvider
	propertyRepo domain.PropertyRepository
	bookingRepo  domain.BookingRepository
	availability AvailabilityService
	notifier     NotificationService
	publisher    *events.Publisher
	intentSecret string
	successURL   string
	cancelURL    string
	logger       *logrus.Logger
	clock        clock.Clock
	Tracer       trace.Tracer
}

func NewPaymentServiceImpl(provider PaymentProvider, propertyRepo domain.PropertyRepository,
	bookingRepo domain.BookingRepository, availability AvailabilityService, notifier NotificationService,
	publisher *events.Publisher, intentSecret, successURL, cancelURL string,
	logger *logrus.Logger, clk clock.Clock, tr trace.Tracer) PaymentService {
	return &PaymentServiceImpl{
		provider:     provider,
		propertyRepo: propertyRepo,
		bookingRepo:  bookingRepo,
		availability: availability,
		notifier:     notifier,
		publisher:    publisher,
		intentSecret: intentSecret,
		successURL:   successURL,
		cancelURL:    cancelURL,
		logger:       logger,
		clock:        clk,
		Tracer:       tr,
	}
}

// CreateCheckoutSession packs the booking intent into the session's metadata
// as a signed, opaque payload the provider echoes back in its webhook. That
// round-trip replaces a pending-booking table.
func (s *PaymentServiceImpl) CreateCheckoutSession(ctx context.Context, input CreateBookingInput) (*domain.CheckoutSession, error) {
	ctx, span := s.Tracer.Start(ctx, "PaymentService.CreateCheckoutSession")
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
	pricing := domain.ComputePricing(property.Pricing, nights)

	intent := domain.BookingIntent{
		PropertyID: property.ID,
		CheckIn:    input.CheckIn,
		CheckOut:   input.CheckOut,
		Adults:     input.Adults,
		Children:   input.Children,
		Guest:      input.Guest,
	}
	intentJSON, err := json.Marshal(intent)
	if err != nil {
		return nil, &domain.DependencyError{Op: "booking intent encode", Err: err}
	}

	params := domain.CheckoutSessionParams{
		AmountMinor:       domain.ToMinorUnits(pricing.TotalAmount),
		Currency:          pricing.Currency,
		CustomerEmail:     input.Guest.Email,
		ClientReferenceID: uuid.NewString(),
		ExpiresInSeconds:  checkoutSessionLifetimeSeconds,
		SuccessURL:        s.successURL,
		CancelURL:         s.cancelURL,
		Metadata: map[string]string{
			metadataIntentKey:    base64.StdEncoding.EncodeToString(intentJSON),
			metadataSignatureKey: utils.SignMessage(s.intentSecret, intentJSON),
		},
	}

	session, err := s.provider.CreateCheckoutSession(ctx, params)
	if err != nil {
		span.SetStatus(codes.Error, err.Error())
		return nil, err
	}
	return session, nil
}

// HandleEvent verifies the webhook before trusting anything in it, then maps
// the event onto booking state. Duplicate and unknown events resolve to no-op
// success so the provider's at-least-once delivery never creates a second
// booking and never retries events this service does not care about.
func (s *PaymentServiceImpl) HandleEvent(ctx context.Context, rawBody []byte, signatureHeader string) error {
	ctx, span := s.Tracer.Start(ctx, "PaymentService.HandleEvent")
	defer span.End()

	event, err := s.provider.VerifyAndParseEvent(rawBody, signatureHeader)
	if err != nil {
		span.SetStatus(codes.Error, err.Error())
		return err
	}

	switch event.Type {
	case domain.EventCheckoutSessionCompleted:
		return s.handleCheckoutCompleted(ctx, event)
	case domain.EventPaymentSucceeded:
		return s.handlePaymentOutcome(ctx, event, domain.PaymentStatusCompleted)
	case domain.EventPaymentFailed:
		return s.handlePaymentOutcome(ctx, event, domain.PaymentStatusFailed)
	default:
		s.logger.WithFields(logrus.Fields{"path": "services/payment"}).Info("Ignoring event type: ", event.Type)
		return nil
	}
}

func (s *PaymentServiceImpl) handleCheckoutCompleted(ctx context.Context, event *domain.PaymentEvent) error {
	ctx, span := s.Tracer.Start(ctx, "PaymentService.handleCheckoutCompleted")
	defer span.End()

	if event.SessionID == "" {
		s.logger.WithFields(logrus.Fields{"path": "services/payment"}).Warn("Checkout completed event without session id")
		return nil
	}

	// Idempotency pre-check; the unique index on the session reference
	// catches the concurrent-delivery race the pre-check cannot.
	_, err := s.bookingRepo.FindBySessionRef(ctx, event.SessionID)
	if err == nil {
		s.logger.WithFields(logrus.Fields{"path": "services/payment"}).
			Info("Booking already exists for session ", event.SessionID, ", ignoring duplicate event")
		return nil
	}
	var notFound *domain.NotFoundError
	if !errors.As(err, &notFound) {
		span.SetStatus(codes.Error, err.Error())
		return err
	}

	intent, err := s.decodeIntent(event.Metadata)
	if err != nil {
		span.SetStatus(codes.Error, err.Error())
		return err
	}

	// Pricing comes from the current property record, not from anything
	// cached at session-creation time.
	property, err := s.propertyRepo.FindByID(ctx, intent.PropertyID)
	if err != nil {
		span.SetStatus(codes.Error, err.Error())
		return err
	}

	now := s.clock.Now()
	paidAt := now
	booking := &domain.Booking{
		PropertyID: property.ID,
		Guest:      intent.Guest,
		Status:     domain.BookingStatusConfirmed,
		Payment: domain.PaymentInfo{
			ExternalSessionRef: event.SessionID,
			ExternalIntentRef:  event.IntentID,
			Status:             domain.PaymentStatusCompleted,
			PaidAt:             &paidAt,
		},
		CreatedAt: now,
		UpdatedAt: now,
	}
	booking.SetDates(intent.CheckIn, intent.CheckOut)
	booking.SetGuestCounts(intent.Adults, intent.Children)
	booking.Pricing = domain.ComputePricing(property.Pricing, booking.Dates.Nights)

	code, err := uniqueConfirmationCode(ctx, s.bookingRepo, s.clock)
	if err != nil {
		span.SetStatus(codes.Error, err.Error())
		return err
	}
	booking.ConfirmationCode = code

	if err := s.bookingRepo.InsertWithSessionRef(ctx, booking); err != nil {
		if errors.Is(err, domain.ErrDuplicateSessionRef) {
			s.logger.WithFields(logrus.Fields{"path": "services/payment"}).
				Info("Concurrent duplicate event for session ", event.SessionID, ", ignoring")
			return nil
		}
		span.SetStatus(codes.Error, err.Error())
		return err
	}

	s.notifyConfirmed(booking, property)
	s.publisher.PublishBookingConfirmed(booking)
	return nil
}

// handlePaymentOutcome patches only the payment sub-state. A failed payment
// never retroactively cancels a confirmed booking; business-level
// cancellation is a separate, explicit operation.
func (s *PaymentServiceImpl) handlePaymentOutcome(ctx context.Context, event *domain.PaymentEvent, status domain.PaymentStatus) error {
	ctx, span := s.Tracer.Start(ctx, "PaymentService.handlePaymentOutcome")
	defer span.End()

	if event.IntentID == "" {
		s.logger.WithFields(logrus.Fields{"path": "services/payment"}).Warn("Payment event without intent id")
		return nil
	}

	booking, err := s.bookingRepo.FindByIntentRef(ctx, event.IntentID)
	if err != nil {
		var notFound *domain.NotFoundError
		if errors.As(err, &notFound) {
			s.logger.WithFields(logrus.Fields{"path": "services/payment"}).
				Warn("No booking for payment intent ", event.IntentID, ", acknowledging")
			return nil
		}
		span.SetStatus(codes.Error, err.Error())
		return err
	}

	payment := booking.Payment
	payment.Status = status
	if status == domain.PaymentStatusCompleted && payment.PaidAt == nil {
		paidAt := s.clock.Now()
		payment.PaidAt = &paidAt
	}

	if err := s.bookingRepo.UpdatePayment(ctx, booking.ID, payment); err != nil {
		span.SetStatus(codes.Error, err.Error())
		return err
	}
	return nil
}

func (s *PaymentServiceImpl) decodeIntent(metadata map[string]string) (*domain.BookingIntent, error) {
	encoded := metadata[metadataIntentKey]
	signature := metadata[metadataSignatureKey]
	if encoded == "" || signature == "" {
		return nil, &domain.AuthenticationError{Message: "event metadata is missing the booking intent"}
	}
	intentJSON, err := base64.StdEncoding.DecodeString(encoded)
	if err != nil {
		return nil, &domain.AuthenticationError{Message: "booking intent is not valid base64"}
	}
	if !utils.VerifyMessage(s.intentSecret, intentJSON, signature) {
		return nil, &domain.AuthenticationError{Message: "booking intent signature verification failed"}
	}
	var intent domain.BookingIntent
	if err := json.Unmarshal(intentJSON, &intent); err != nil {
		return nil, &domain.AuthenticationError{Message: "booking intent is not valid JSON"}
	}
	return &intent, nil
}

func (s *PaymentServiceImpl) notifyConfirmed(booking *domain.Booking, property *domain.Property) {
	go func() {
		if err := s.notifier.SendBookingConfirmation(NewBookingConfirmationEmail(booking, property)); err != nil {
			s.logger.WithFields(logrus.Fields{"path": "services/payment"}).Error("Error sending confirmation email: ", err)
		}
	}()
}
