package cache

import (
	"booking-service/domain"
	"context"
	"encoding/json"
	"fmt"
	"time"

	"github.com/go-redis/redis"
	"github.com/sirupsen/logrus"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.opentelemetry.io/otel/codes"
	"go.opentelemetry.io/otel/trace"
)

const (
	cacheProperty = "properties:%s"
	cacheTTL      = 300 * time.Second
)

// PropertyCache is a Redis read-through in front of the property repository.
// Redis failures are logged and fall back to the repository, never surfaced.
type PropertyCache struct {
	cli    *redis.Client
	repo   domain.PropertyRepository
	logger *logrus.Logger
	Tracer trace.Tracer
}

func New(address string, repo domain.PropertyRepository, logger *logrus.Logger, tracer trace.Tracer) *PropertyCache {
	client := redis.NewClient(&redis.Options{
		Addr: address,
	})

	return &PropertyCache{
		cli:    client,
		repo:   repo,
		logger: logger,
		Tracer: tracer,
	}
}

func (pc *PropertyCache) Ping() {
	val, _ := pc.cli.Ping().Result()
	pc.logger.WithFields(logrus.Fields{"path": "cache/property"}).Info("Redis ping: ", val)
}

func (pc *PropertyCache) FindByID(ctx context.Context, id primitive.ObjectID) (*domain.Property, error) {
	ctx, span := pc.Tracer.Start(ctx, "PropertyCache.FindByID")
	defer span.End()

	key := constructPropertyKey(id.Hex())

	cached, err := pc.cli.Get(key).Result()
	if err == nil {
		var property domain.Property
		if err := json.Unmarshal([]byte(cached), &property); err == nil {
			return &property, nil
		}
		pc.logger.WithFields(logrus.Fields{"path": "cache/property"}).Error("Error decoding cached property: ", err)
	} else if err != redis.Nil {
		span.SetStatus(codes.Error, "Error reading property from Redis: "+err.Error())
		pc.logger.WithFields(logrus.Fields{"path": "cache/property"}).Error("Error reading property from Redis: ", err)
	}

	property, err := pc.repo.FindByID(ctx, id)
	if err != nil {
		return nil, err
	}

	encoded, err := json.Marshal(property)
	if err == nil {
		if err := pc.cli.Set(key, encoded, cacheTTL).Err(); err != nil {
			pc.logger.WithFields(logrus.Fields{"path": "cache/property"}).Error("Error setting property in Redis: ", err)
		}
	}

	return property, nil
}

func constructPropertyKey(id string) string {
	return fmt.Sprintf(cacheProperty, id)
}
