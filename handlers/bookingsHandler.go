package handlers

import (
	"booking-service/domain"
	error2 "booking-service/error"
	"booking-service/services"
	"net/http"
	"strings"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/sirupsen/logrus"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.opentelemetry.io/otel/trace"
)

// BookingDate accepts either a bare date (2006-01-02) or RFC 3339.
type BookingDate struct {
	time.Time
}

func (d *BookingDate) UnmarshalJSON(data []byte) error {
	value := strings.Trim(string(data), `"`)
	if value == "" || value == "null" {
		d.Time = time.Time{}
		return nil
	}
	if parsed, err := time.Parse("2006-01-02", value); err == nil {
		d.Time = parsed
		return nil
	}
	parsed, err := time.Parse(time.RFC3339, value)
	if err != nil {
		return err
	}
	d.Time = parsed
	return nil
}

type createBookingRequest struct {
	PropertyID string `json:"propertyId"`
	Dates      struct {
		CheckIn  BookingDate `json:"checkIn"`
		CheckOut BookingDate `json:"checkOut"`
	} `json:"dates"`
	Guests struct {
		Adults   int `json:"adults"`
		Children int `json:"children"`
	} `json:"guests"`
	Guest domain.GuestInfo `json:"guest"`
}

func (r createBookingRequest) toInput() services.CreateBookingInput {
	return services.CreateBookingInput{
		PropertyID: r.PropertyID,
		CheckIn:    r.Dates.CheckIn.Time,
		CheckOut:   r.Dates.CheckOut.Time,
		Adults:     r.Guests.Adults,
		Children:   r.Guests.Children,
		Guest:      r.Guest,
	}
}

type BookingsHandler struct {
	bookingService services.BookingService
	logger         *logrus.Logger
	Tracer         trace.Tracer
}

func NewBookingsHandler(bookingService services.BookingService, logger *logrus.Logger, tr trace.Tracer) BookingsHandler {
	return BookingsHandler{bookingService: bookingService, logger: logger, Tracer: tr}
}

func (s *BookingsHandler) CreateBooking(c *gin.Context) {
	ctx, span := s.Tracer.Start(c.Request.Context(), "BookingsHandler.CreateBooking")
	defer span.End()

	var request createBookingRequest
	if err := c.ShouldBindJSON(&request); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"success": false, "message": "Invalid request payload"})
		return
	}

	booking, err := s.bookingService.CreateBooking(ctx, request.toInput())
	if err != nil {
		error2.WriteError(c, s.logger, err)
		return
	}

	c.JSON(http.StatusCreated, gin.H{
		"success":          true,
		"booking":          booking,
		"confirmationCode": booking.ConfirmationCode,
	})
}

func (s *BookingsHandler) GetBooking(c *gin.Context) {
	ctx, span := s.Tracer.Start(c.Request.Context(), "BookingsHandler.GetBooking")
	defer span.End()

	id, err := primitive.ObjectIDFromHex(c.Param("id"))
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"success": false, "message": "Invalid booking id"})
		return
	}

	booking, err := s.bookingService.GetBooking(ctx, id)
	if err != nil {
		error2.WriteError(c, s.logger, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"success": true, "booking": booking})
}

func (s *BookingsHandler) GetBookingByCode(c *gin.Context) {
	ctx, span := s.Tracer.Start(c.Request.Context(), "BookingsHandler.GetBookingByCode")
	defer span.End()

	booking, err := s.bookingService.GetBookingByConfirmationCode(ctx, c.Param("code"))
	if err != nil {
		error2.WriteError(c, s.logger, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"success": true, "booking": booking})
}

func (s *BookingsHandler) CancelBooking(c *gin.Context) {
	s.transition(c, "BookingsHandler.CancelBooking", func(ctx *gin.Context, id primitive.ObjectID) (*domain.Booking, error) {
		return s.bookingService.CancelBooking(ctx.Request.Context(), id)
	})
}

func (s *BookingsHandler) CheckInGuest(c *gin.Context) {
	s.transition(c, "BookingsHandler.CheckInGuest", func(ctx *gin.Context, id primitive.ObjectID) (*domain.Booking, error) {
		return s.bookingService.CheckInGuest(ctx.Request.Context(), id)
	})
}

func (s *BookingsHandler) CheckOutGuest(c *gin.Context) {
	s.transition(c, "BookingsHandler.CheckOutGuest", func(ctx *gin.Context, id primitive.ObjectID) (*domain.Booking, error) {
		return s.bookingService.CheckOutGuest(ctx.Request.Context(), id)
	})
}

func (s *BookingsHandler) MarkNoShow(c *gin.Context) {
	s.transition(c, "BookingsHandler.MarkNoShow", func(ctx *gin.Context, id primitive.ObjectID) (*domain.Booking, error) {
		return s.bookingService.MarkNoShow(ctx.Request.Context(), id)
	})
}

func (s *BookingsHandler) transition(c *gin.Context, spanName string, op func(*gin.Context, primitive.ObjectID) (*domain.Booking, error)) {
	_, span := s.Tracer.Start(c.Request.Context(), spanName)
	defer span.End()

	id, err := primitive.ObjectIDFromHex(c.Param("id"))
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"success": false, "message": "Invalid booking id"})
		return
	}

	booking, err := op(c, id)
	if err != nil {
		error2.WriteError(c, s.logger, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"success": true, "booking": booking})
}
