package routes

import (
	"booking-service/handlers"
	"booking-service/utils"

	"github.com/gin-gonic/gin"
)

type BookingRouteHandler struct {
	bookingsHandler     handlers.BookingsHandler
	availabilityHandler handlers.AvailabilityHandler
	createLimiter       *utils.RateLimiter
}

func NewBookingRouteHandler(bookingsHandler handlers.BookingsHandler, availabilityHandler handlers.AvailabilityHandler,
	createLimiter *utils.RateLimiter) BookingRouteHandler {
	return BookingRouteHandler{
		bookingsHandler:     bookingsHandler,
		availabilityHandler: availabilityHandler,
		createLimiter:       createLimiter,
	}
}

func (rc *BookingRouteHandler) BookingRoute(rg *gin.RouterGroup) {
	router := rg.Group("/bookings")

	router.POST("", utils.RateLimitMiddleware(rc.createLimiter), rc.bookingsHandler.CreateBooking)
	router.GET("/:id", rc.bookingsHandler.GetBooking)
	router.GET("/code/:code", rc.bookingsHandler.GetBookingByCode)
	router.POST("/:id/cancel", rc.bookingsHandler.CancelBooking)
	router.POST("/:id/checkin", rc.bookingsHandler.CheckInGuest)
	router.POST("/:id/checkout", rc.bookingsHandler.CheckOutGuest)
	router.POST("/:id/no-show", rc.bookingsHandler.MarkNoShow)

	rg.GET("/properties/:id/availability", rc.availabilityHandler.CheckAvailability)
}
