package repository

import (
	"booking-service/domain"
	"context"
	"errors"
	"time"

	"github.com/sirupsen/logrus"
	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"
)

type BookingRepo struct {
	client     *mongo.Client
	collection *mongo.Collection
	logger     *logrus.Logger
}

func NewBookingRepo(client *mongo.Client, collection *mongo.Collection, logger *logrus.Logger) *BookingRepo {
	return &BookingRepo{client: client, collection: collection, logger: logger}
}

// EnsureIndexes creates the unique partial index on the payment session
// reference. The index is what makes duplicate webhook deliveries safe: the
// second concurrent insert for the same session fails with a duplicate-key
// error and resolves to a no-op.
func (r *BookingRepo) EnsureIndexes(ctx context.Context) error {
	_, err := r.collection.Indexes().CreateMany(ctx, []mongo.IndexModel{
		{
			Keys: bson.D{{Key: "payment.external_session_ref", Value: 1}},
			Options: options.Index().
				SetUnique(true).
				SetPartialFilterExpression(bson.M{"payment.external_session_ref": bson.M{"$type": "string"}}),
		},
		{
			Keys: bson.D{{Key: "confirmation_code", Value: 1}},
		},
		{
			Keys: bson.D{{Key: "property_id", Value: 1}, {Key: "dates.check_in", Value: 1}},
		},
	})
	if err != nil {
		r.logger.WithFields(logrus.Fields{"path": "repository/booking"}).Error("Error creating indexes: ", err)
	}
	return err
}

func overlapFilter(propertyID primitive.ObjectID, checkIn, checkOut time.Time) bson.M {
	return bson.M{
		"property_id": propertyID,
		"status": bson.M{"$in": bson.A{
			domain.BookingStatusConfirmed,
			domain.BookingStatusCheckedIn,
		}},
		"dates.check_in":  bson.M{"$lte": checkOut},
		"dates.check_out": bson.M{"$gte": checkIn},
	}
}

func (r *BookingRepo) InsertConflictChecked(ctx context.Context, booking *domain.Booking) error {
	session, err := r.client.StartSession()
	if err != nil {
		return &domain.DependencyError{Op: "booking insert: start session", Err: err}
	}
	defer session.EndSession(ctx)

	_, err = session.WithTransaction(ctx, func(sc mongo.SessionContext) (interface{}, error) {
		count, err := r.collection.CountDocuments(sc, overlapFilter(booking.PropertyID, booking.Dates.CheckIn, booking.Dates.CheckOut))
		if err != nil {
			return nil, err
		}
		if count > 0 {
			return nil, &domain.ConflictError{Message: "property is not available for the selected dates"}
		}
		result, err := r.collection.InsertOne(sc, booking)
		if err != nil {
			return nil, err
		}
		if insertedID, ok := result.InsertedID.(primitive.ObjectID); ok {
			booking.ID = insertedID
		}
		return nil, nil
	})
	if err != nil {
		var conflictErr *domain.ConflictError
		if errors.As(err, &conflictErr) {
			return conflictErr
		}
		r.logger.WithFields(logrus.Fields{"path": "repository/booking"}).Error("Database exception: ", err)
		return &domain.DependencyError{Op: "booking insert", Err: err}
	}
	return nil
}

func (r *BookingRepo) InsertWithSessionRef(ctx context.Context, booking *domain.Booking) error {
	result, err := r.collection.InsertOne(ctx, booking)
	if err != nil {
		if mongo.IsDuplicateKeyError(err) {
			return domain.ErrDuplicateSessionRef
		}
		r.logger.WithFields(logrus.Fields{"path": "repository/booking"}).Error("Database exception: ", err)
		return &domain.DependencyError{Op: "booking insert", Err: err}
	}
	if insertedID, ok := result.InsertedID.(primitive.ObjectID); ok {
		booking.ID = insertedID
	}
	return nil
}

func (r *BookingRepo) FindByID(ctx context.Context, id primitive.ObjectID) (*domain.Booking, error) {
	return r.findOne(ctx, bson.M{"_id": id}, id.Hex())
}

func (r *BookingRepo) FindBySessionRef(ctx context.Context, sessionRef string) (*domain.Booking, error) {
	return r.findOne(ctx, bson.M{"payment.external_session_ref": sessionRef}, sessionRef)
}

func (r *BookingRepo) FindByIntentRef(ctx context.Context, intentRef string) (*domain.Booking, error) {
	return r.findOne(ctx, bson.M{"payment.external_intent_ref": intentRef}, intentRef)
}

func (r *BookingRepo) FindByConfirmationCode(ctx context.Context, code string) (*domain.Booking, error) {
	return r.findOne(ctx, bson.M{"confirmation_code": code}, code)
}

func (r *BookingRepo) findOne(ctx context.Context, filter bson.M, ref string) (*domain.Booking, error) {
	var booking domain.Booking
	err := r.collection.FindOne(ctx, filter).Decode(&booking)
	if err != nil {
		if err == mongo.ErrNoDocuments {
			return nil, &domain.NotFoundError{Resource: "booking", ID: ref}
		}
		r.logger.WithFields(logrus.Fields{"path": "repository/booking"}).Error("Database exception: ", err)
		return nil, &domain.DependencyError{Op: "booking lookup", Err: err}
	}
	return &booking, nil
}

func (r *BookingRepo) FindOverlapping(ctx context.Context, propertyID primitive.ObjectID, checkIn, checkOut time.Time) (domain.Bookings, error) {
	cursor, err := r.collection.Find(ctx, overlapFilter(propertyID, checkIn, checkOut))
	if err != nil {
		r.logger.WithFields(logrus.Fields{"path": "repository/booking"}).Error("Database exception: ", err)
		return nil, &domain.DependencyError{Op: "booking overlap scan", Err: err}
	}
	var bookings domain.Bookings
	if err = cursor.All(ctx, &bookings); err != nil {
		return nil, &domain.DependencyError{Op: "booking overlap scan", Err: err}
	}
	return bookings, nil
}

func (r *BookingRepo) UpdateStatus(ctx context.Context, id primitive.ObjectID, status domain.BookingStatus) error {
	update := bson.M{"$set": bson.M{"status": status, "updated_at": time.Now()}}
	return r.updateOne(ctx, id, update)
}

func (r *BookingRepo) UpdatePayment(ctx context.Context, id primitive.ObjectID, payment domain.PaymentInfo) error {
	update := bson.M{"$set": bson.M{"payment": payment, "updated_at": time.Now()}}
	return r.updateOne(ctx, id, update)
}

func (r *BookingRepo) updateOne(ctx context.Context, id primitive.ObjectID, update bson.M) error {
	result, err := r.collection.UpdateByID(ctx, id, update)
	if err != nil {
		r.logger.WithFields(logrus.Fields{"path": "repository/booking"}).Error("Database exception: ", err)
		return &domain.DependencyError{Op: "booking update", Err: err}
	}
	if result.MatchedCount == 0 {
		return &domain.NotFoundError{Resource: "booking", ID: id.Hex()}
	}
	return nil
}
