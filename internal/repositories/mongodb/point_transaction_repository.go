package mongodb

import (
	"context"
	"time"

	"github.com/ArowuTest/bridgetunes-rewards-backend/internal/models"
	"github.com/ArowuTest/bridgetunes-rewards-backend/internal/repositories"
	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"
)

// Compile-time checks to ensure the point repositories implement the interfaces
var (
	_ repositories.PointTransactionRepository = (*PointTransactionRepository)(nil)
	_ repositories.PointHoldRepository        = (*PointHoldRepository)(nil)
)

// PointTransactionRepository handles MongoDB operations for PointTransaction
type PointTransactionRepository struct {
	collection *mongo.Collection
}

// NewPointTransactionRepository creates a new PointTransactionRepository
func NewPointTransactionRepository(db *mongo.Database) *PointTransactionRepository {
	return &PointTransactionRepository{
		collection: db.Collection("point_transactions"),
	}
}

// Create inserts a new point transaction record
func (r *PointTransactionRepository) Create(ctx context.Context, transaction *models.PointTransaction) error {
	transaction.ID = primitive.NewObjectID()
	_, err := r.collection.InsertOne(ctx, transaction)
	return translate(err)
}

// FindByUserID returns a page of a user's transactions, newest first
func (r *PointTransactionRepository) FindByUserID(ctx context.Context, userID primitive.ObjectID, page, limit int) ([]*models.PointTransaction, error) {
	cursor, err := r.collection.Find(ctx, bson.M{"userId": userID}, findOptions(page, limit, "createdAt"))
	if err != nil {
		return nil, err
	}
	return decodeAll[models.PointTransaction](ctx, cursor)
}

// CountByUserID counts a user's transactions
func (r *PointTransactionRepository) CountByUserID(ctx context.Context, userID primitive.ObjectID) (int64, error) {
	return r.collection.CountDocuments(ctx, bson.M{"userId": userID})
}

// PointHoldRepository handles MongoDB operations for PointHold
type PointHoldRepository struct {
	collection *mongo.Collection
}

// NewPointHoldRepository creates a new PointHoldRepository
func NewPointHoldRepository(db *mongo.Database) *PointHoldRepository {
	return &PointHoldRepository{
		collection: db.Collection("point_holds"),
	}
}

// Create inserts a new hold
func (r *PointHoldRepository) Create(ctx context.Context, hold *models.PointHold) error {
	if hold.ID.IsZero() {
		hold.ID = primitive.NewObjectID()
	}
	_, err := r.collection.InsertOne(ctx, hold)
	return translate(err)
}

// FindByID finds a hold by ID
func (r *PointHoldRepository) FindByID(ctx context.Context, id primitive.ObjectID) (*models.PointHold, error) {
	var hold models.PointHold
	if err := r.collection.FindOne(ctx, bson.M{"_id": id}).Decode(&hold); err != nil {
		return nil, translate(err)
	}
	return &hold, nil
}

// Settle moves a HELD hold to status
func (r *PointHoldRepository) Settle(ctx context.Context, id primitive.ObjectID, status models.HoldStatus, at time.Time) (*models.PointHold, error) {
	filter := bson.M{"_id": id, "status": models.HoldStatusHeld}
	update := bson.M{"$set": bson.M{"status": status, "settledAt": at}}
	opts := options.FindOneAndUpdate().SetReturnDocument(options.After)

	var hold models.PointHold
	err := r.collection.FindOneAndUpdate(ctx, filter, update, opts).Decode(&hold)
	if err == nil {
		return &hold, nil
	}
	if err != mongo.ErrNoDocuments {
		return nil, err
	}
	// Distinguish a missing hold from one that is no longer HELD
	if _, findErr := r.FindByID(ctx, id); findErr != nil {
		return nil, findErr
	}
	return nil, repositories.ErrConditionFailed
}
