package services

import (
	"booking-service/domain"
	"context"
	"io"
	"sync"
	"time"

	"github.com/sirupsen/logrus"
	"go.mongodb.org/mongo-driver/bson/primitive"
)

func testLogger() *logrus.Logger {
	logger := logrus.New()
	logger.SetOutput(io.Discard)
	return logger
}

type fakePropertyRepo struct {
	mu         sync.Mutex
	properties map[primitive.ObjectID]*domain.Property
}

func newFakePropertyRepo(properties ...*domain.Property) *fakePropertyRepo {
	repo := &fakePropertyRepo{properties: make(map[primitive.ObjectID]*domain.Property)}
	for _, p := range properties {
		repo.properties[p.ID] = p
	}
	return repo
}

func (r *fakePropertyRepo) FindByID(ctx context.Context, id primitive.ObjectID) (*domain.Property, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	property, ok := r.properties[id]
	if !ok {
		return nil, &domain.NotFoundError{Resource: "property", ID: id.Hex()}
	}
	copied := *property
	return &copied, nil
}

type fakeBookingRepo struct {
	mu       sync.Mutex
	bookings []*domain.Booking
}

func newFakeBookingRepo(bookings ...*domain.Booking) *fakeBookingRepo {
	return &fakeBookingRepo{bookings: bookings}
}

func (r *fakeBookingRepo) overlaps(propertyID primitive.ObjectID, checkIn, checkOut time.Time) domain.Bookings {
	var result domain.Bookings
	for _, b := range r.bookings {
		if b.PropertyID != propertyID {
			continue
		}
		if b.Status != domain.BookingStatusConfirmed && b.Status != domain.BookingStatusCheckedIn {
			continue
		}
		if !checkIn.After(b.Dates.CheckOut) && !checkOut.Before(b.Dates.CheckIn) {
			result = append(result, b)
		}
	}
	return result
}

func (r *fakeBookingRepo) InsertConflictChecked(ctx context.Context, booking *domain.Booking) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	if len(r.overlaps(booking.PropertyID, booking.Dates.CheckIn, booking.Dates.CheckOut)) > 0 {
		return &domain.ConflictError{Message: "property is not available for the selected dates"}
	}
	booking.ID = primitive.NewObjectID()
	r.bookings = append(r.bookings, booking)
	return nil
}

func (r *fakeBookingRepo) InsertWithSessionRef(ctx context.Context, booking *domain.Booking) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	for _, b := range r.bookings {
		if b.Payment.ExternalSessionRef != "" && b.Payment.ExternalSessionRef == booking.Payment.ExternalSessionRef {
			return domain.ErrDuplicateSessionRef
		}
	}
	booking.ID = primitive.NewObjectID()
	r.bookings = append(r.bookings, booking)
	return nil
}

func (r *fakeBookingRepo) FindByID(ctx context.Context, id primitive.ObjectID) (*domain.Booking, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	for _, b := range r.bookings {
		if b.ID == id {
			copied := *b
			return &copied, nil
		}
	}
	return nil, &domain.NotFoundError{Resource: "booking", ID: id.Hex()}
}

func (r *fakeBookingRepo) FindBySessionRef(ctx context.Context, sessionRef string) (*domain.Booking, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	for _, b := range r.bookings {
		if b.Payment.ExternalSessionRef == sessionRef {
			copied := *b
			return &copied, nil
		}
	}
	return nil, &domain.NotFoundError{Resource: "booking", ID: sessionRef}
}

func (r *fakeBookingRepo) FindByIntentRef(ctx context.Context, intentRef string) (*domain.Booking, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	for _, b := range r.bookings {
		if b.Payment.ExternalIntentRef == intentRef {
			copied := *b
			return &copied, nil
		}
	}
	return nil, &domain.NotFoundError{Resource: "booking", ID: intentRef}
}

func (r *fakeBookingRepo) FindByConfirmationCode(ctx context.Context, code string) (*domain.Booking, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	for _, b := range r.bookings {
		if b.ConfirmationCode == code {
			copied := *b
			return &copied, nil
		}
	}
	return nil, &domain.NotFoundError{Resource: "booking", ID: code}
}

func (r *fakeBookingRepo) FindOverlapping(ctx context.Context, propertyID primitive.ObjectID, checkIn, checkOut time.Time) (domain.Bookings, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	return r.overlaps(propertyID, checkIn, checkOut), nil
}

func (r *fakeBookingRepo) UpdateStatus(ctx context.Context, id primitive.ObjectID, status domain.BookingStatus) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	for _, b := range r.bookings {
		if b.ID == id {
			b.Status = status
			return nil
		}
	}
	return &domain.NotFoundError{Resource: "booking", ID: id.Hex()}
}

func (r *fakeBookingRepo) UpdatePayment(ctx context.Context, id primitive.ObjectID, payment domain.PaymentInfo) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	for _, b := range r.bookings {
		if b.ID == id {
			b.Payment = payment
			return nil
		}
	}
	return &domain.NotFoundError{Resource: "booking", ID: id.Hex()}
}

func (r *fakeBookingRepo) count() int {
	r.mu.Lock()
	defer r.mu.Unlock()
	return len(r.bookings)
}

func (r *fakeBookingRepo) first() *domain.Booking {
	r.mu.Lock()
	defer r.mu.Unlock()
	if len(r.bookings) == 0 {
		return nil
	}
	copied := *r.bookings[0]
	return &copied
}

type fakeNotifier struct {
	mu    sync.Mutex
	sent  []*BookingConfirmationEmail
	fail  bool
	calls chan struct{}
}

func newFakeNotifier(fail bool) *fakeNotifier {
	return &fakeNotifier{fail: fail, calls: make(chan struct{}, 16)}
}

func (n *fakeNotifier) SendBookingConfirmation(data *BookingConfirmationEmail) error {
	n.mu.Lock()
	n.sent = append(n.sent, data)
	n.mu.Unlock()
	n.calls <- struct{}{}
	if n.fail {
		return context.DeadlineExceeded
	}
	return nil
}

func (n *fakeNotifier) waitForCall(timeout time.Duration) bool {
	select {
	case <-n.calls:
		return true
	case <-time.After(timeout):
		return false
	}
}

type fakeProvider struct {
	mu         sync.Mutex
	lastParams domain.CheckoutSessionParams
	session    *domain.CheckoutSession
	event      *domain.PaymentEvent
	verifyErr  error
}

func (p *fakeProvider) CreateCheckoutSession(ctx context.Context, params domain.CheckoutSessionParams) (*domain.CheckoutSession, error) {
	p.mu.Lock()
	defer p.mu.Unlock()
	p.lastParams = params
	if p.session != nil {
		return p.session, nil
	}
	return &domain.CheckoutSession{ID: "cs_test_1", RedirectURL: "https://pay.example.com/cs_test_1"}, nil
}

func (p *fakeProvider) VerifyAndParseEvent(rawBody []byte, signatureHeader string) (*domain.PaymentEvent, error) {
	if p.verifyErr != nil {
		return nil, p.verifyErr
	}
	return p.event, nil
}
