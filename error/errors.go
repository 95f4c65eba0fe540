package error

import (
	"booking-service/domain"
	"errors"
	"net/http"
	"strconv"

	"github.com/gin-gonic/gin"
	"github.com/sirupsen/logrus"
)

// WriteError maps the domain error taxonomy onto a structured JSON response.
// Validation and business-rule errors carry their message to the caller;
// dependency failures are logged with full context and surfaced as a generic
// message so internal detail is never leaked.
func WriteError(c *gin.Context, logger *logrus.Logger, err error) {
	var validationErr *domain.ValidationError
	if errors.As(err, &validationErr) {
		c.JSON(http.StatusBadRequest, gin.H{
			"success": false,
			"message": "Validation failed",
			"details": validationErr.Fields,
		})
		return
	}

	var notFoundErr *domain.NotFoundError
	if errors.As(err, &notFoundErr) {
		c.JSON(http.StatusNotFound, gin.H{"success": false, "message": notFoundErr.Error()})
		return
	}

	var conflictErr *domain.ConflictError
	if errors.As(err, &conflictErr) {
		c.JSON(http.StatusBadRequest, gin.H{"success": false, "message": conflictErr.Error()})
		return
	}

	var rateLimitedErr *domain.RateLimitedError
	if errors.As(err, &rateLimitedErr) {
		c.Header("Retry-After", strconv.Itoa(rateLimitedErr.RetryAfterSeconds))
		c.JSON(http.StatusTooManyRequests, gin.H{
			"success":           false,
			"message":           "Too many attempts. Please try again later.",
			"retryAfterSeconds": rateLimitedErr.RetryAfterSeconds,
		})
		return
	}

	var authErr *domain.AuthenticationError
	if errors.As(err, &authErr) {
		c.JSON(http.StatusUnauthorized, gin.H{"success": false, "message": authErr.Error()})
		return
	}

	var transitionErr *domain.InvalidStateTransitionError
	if errors.As(err, &transitionErr) {
		c.JSON(http.StatusBadRequest, gin.H{"success": false, "message": transitionErr.Error()})
		return
	}

	logger.WithFields(logrus.Fields{"path": c.FullPath()}).Error("Unexpected error: ", err)
	c.JSON(http.StatusInternalServerError, gin.H{"success": false, "message": "An unexpected error occurred"})
}
