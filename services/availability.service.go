package services

import (
	"booking-service/domain"
	"context"
	"time"
)

type AvailabilityService interface {
	IsAvailable(ctx context.Context, property *domain.Property, checkIn, checkOut time.Time) (bool, error)
}
