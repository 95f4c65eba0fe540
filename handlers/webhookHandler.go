package handlers

import (
	"booking-service/domain"
	"booking-service/services"
	"errors"
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/sirupsen/logrus"
	"go.opentelemetry.io/otel/codes"
	"go.opentelemetry.io/otel/trace"
)

const signatureHeader = "Webhook-Signature"

type WebhookHandler struct {
	paymentService services.PaymentService
	logger         *logrus.Logger
	Tracer         trace.Tracer
}

func NewWebhookHandler(paymentService services.PaymentService, logger *logrus.Logger, tr trace.Tracer) WebhookHandler {
	return WebhookHandler{paymentService: paymentService, logger: logger, Tracer: tr}
}

// HandleEvent acknowledges with 200 for handled, duplicate and unknown
// events; non-200 only on authentication failure or an unrecoverable
// processing fault, which makes the provider redeliver.
func (s *WebhookHandler) HandleEvent(c *gin.Context) {
	ctx, span := s.Tracer.Start(c.Request.Context(), "WebhookHandler.HandleEvent")
	defer span.End()

	rawBody, err := c.GetRawData()
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"success": false, "message": "Unable to read request body"})
		return
	}

	err = s.paymentService.HandleEvent(ctx, rawBody, c.GetHeader(signatureHeader))
	if err != nil {
		span.SetStatus(codes.Error, err.Error())

		var authErr *domain.AuthenticationError
		if errors.As(err, &authErr) {
			c.JSON(http.StatusUnauthorized, gin.H{"success": false, "message": authErr.Error()})
			return
		}

		s.logger.WithFields(logrus.Fields{"path": "handlers/webhook"}).Error("Error processing payment event: ", err)
		c.JSON(http.StatusInternalServerError, gin.H{"success": false, "message": "Error processing event"})
		return
	}

	c.JSON(http.StatusOK, gin.H{"received": true})
}
