package handlers

import (
	error2 "booking-service/error"
	"booking-service/services"
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/sirupsen/logrus"
	"go.opentelemetry.io/otel/trace"
)

type CheckoutHandler struct {
	paymentService services.PaymentService
	logger         *logrus.Logger
	Tracer         trace.Tracer
}

func NewCheckoutHandler(paymentService services.PaymentService, logger *logrus.Logger, tr trace.Tracer) CheckoutHandler {
	return CheckoutHandler{paymentService: paymentService, logger: logger, Tracer: tr}
}

// CreateSession returns the provider redirect the client follows to pay. The
// booking itself is only created once the provider's webhook confirms payment.
func (s *CheckoutHandler) CreateSession(c *gin.Context) {
	ctx, span := s.Tracer.Start(c.Request.Context(), "CheckoutHandler.CreateSession")
	defer span.End()

	var request createBookingRequest
	if err := c.ShouldBindJSON(&request); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"success": false, "message": "Invalid request payload"})
		return
	}

	session, err := s.paymentService.CreateCheckoutSession(ctx, request.toInput())
	if err != nil {
		error2.WriteError(c, s.logger, err)
		return
	}

	c.JSON(http.StatusCreated, gin.H{
		"success":     true,
		"sessionId":   session.ID,
		"redirectUrl": session.RedirectURL,
	})
}
