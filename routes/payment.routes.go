package routes

import (
	"booking-service/handlers"
	"booking-service/utils"

	"github.com/gin-gonic/gin"
)

type PaymentRouteHandler struct {
	checkoutHandler handlers.CheckoutHandler
	webhookHandler  handlers.WebhookHandler
	sessionLimiter  *utils.RateLimiter
}

func NewPaymentRouteHandler(checkoutHandler handlers.CheckoutHandler, webhookHandler handlers.WebhookHandler,
	sessionLimiter *utils.RateLimiter) PaymentRouteHandler {
	return PaymentRouteHandler{
		checkoutHandler: checkoutHandler,
		webhookHandler:  webhookHandler,
		sessionLimiter:  sessionLimiter,
	}
}

func (rc *PaymentRouteHandler) PaymentRoute(rg *gin.RouterGroup) {
	rg.POST("/checkout/session", utils.RateLimitMiddleware(rc.sessionLimiter), rc.checkoutHandler.CreateSession)

	// The webhook is authenticated by its signature, never rate limited.
	rg.POST("/payments/webhook", rc.webhookHandler.HandleEvent)
}
