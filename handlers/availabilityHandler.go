package handlers

import (
	"booking-service/domain"
	error2 "booking-service/error"
	"booking-service/services"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/sirupsen/logrus"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.opentelemetry.io/otel/trace"
)

type AvailabilityHandler struct {
	propertyRepo        domain.PropertyRepository
	availabilityService services.AvailabilityService
	logger              *logrus.Logger
	Tracer              trace.Tracer
}

func NewAvailabilityHandler(propertyRepo domain.PropertyRepository, availabilityService services.AvailabilityService,
	logger *logrus.Logger, tr trace.Tracer) AvailabilityHandler {
	return AvailabilityHandler{
		propertyRepo:        propertyRepo,
		availabilityService: availabilityService,
		logger:              logger,
		Tracer:              tr,
	}
}

func (s *AvailabilityHandler) CheckAvailability(c *gin.Context) {
	ctx, span := s.Tracer.Start(c.Request.Context(), "AvailabilityHandler.CheckAvailability")
	defer span.End()

	propertyID, err := primitive.ObjectIDFromHex(c.Param("id"))
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"success": false, "message": "Invalid property id"})
		return
	}

	checkIn, err := parseDateParam(c.Query("checkIn"))
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"success": false, "message": "Invalid checkIn date"})
		return
	}
	checkOut, err := parseDateParam(c.Query("checkOut"))
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"success": false, "message": "Invalid checkOut date"})
		return
	}
	if !checkOut.After(checkIn) {
		c.JSON(http.StatusBadRequest, gin.H{"success": false, "message": "checkOut must be after checkIn"})
		return
	}

	property, err := s.propertyRepo.FindByID(ctx, propertyID)
	if err != nil {
		error2.WriteError(c, s.logger, err)
		return
	}

	available, err := s.availabilityService.IsAvailable(ctx, property, checkIn, checkOut)
	if err != nil {
		error2.WriteError(c, s.logger, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{"success": true, "available": available})
}

func parseDateParam(value string) (time.Time, error) {
	if parsed, err := time.Parse("2006-01-02", value); err == nil {
		return parsed, nil
	}
	return time.Parse(time.RFC3339, value)
}
