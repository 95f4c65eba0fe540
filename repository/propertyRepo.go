package repository

import (
	"booking-service/domain"
	"context"

	"github.com/sirupsen/logrus"
	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.mongodb.org/mongo-driver/mongo"
)

type PropertyRepo struct {
	collection *mongo.Collection
	logger     *logrus.Logger
}

func NewPropertyRepo(collection *mongo.Collection, logger *logrus.Logger) *PropertyRepo {
	return &PropertyRepo{collection: collection, logger: logger}
}

func (r *PropertyRepo) FindByID(ctx context.Context, id primitive.ObjectID) (*domain.Property, error) {
	var property domain.Property
	err := r.collection.FindOne(ctx, bson.M{"_id": id}).Decode(&property)
	if err != nil {
		if err == mongo.ErrNoDocuments {
			return nil, &domain.NotFoundError{Resource: "property", ID: id.Hex()}
		}
		r.logger.WithFields(logrus.Fields{"path": "repository/property"}).Error("Database exception: ", err)
		return nil, &domain.DependencyError{Op: "property lookup", Err: err}
	}
	return &property, nil
}
