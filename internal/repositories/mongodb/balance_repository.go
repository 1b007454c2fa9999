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

var _ repositories.BalanceRepository = (*BalanceRepository)(nil)

// BalanceRepository keeps one balance document per user, keyed by user ID.
// Every mutation is a single findOneAndUpdate whose filter carries the guard.
type BalanceRepository struct {
	collection *mongo.Collection
}

// NewBalanceRepository creates a new BalanceRepository
func NewBalanceRepository(db *mongo.Database) *BalanceRepository {
	return &BalanceRepository{
		collection: db.Collection("point_balances"),
	}
}

// Get returns the balance of a user
func (r *BalanceRepository) Get(ctx context.Context, userID primitive.ObjectID) (*models.PointBalance, error) {
	var balance models.PointBalance
	if err := r.collection.FindOne(ctx, bson.M{"_id": userID}).Decode(&balance); err != nil {
		return nil, translate(err)
	}
	return &balance, nil
}

// Credit adds points, upserting the balance document
func (r *BalanceRepository) Credit(ctx context.Context, userID primitive.ObjectID, source models.TransactionType, amount int64, demo bool) (*models.PointBalance, error) {
	bucket := "earned"
	if source == models.TransactionPurchase {
		bucket = "purchased"
	}
	origin := "real"
	if demo {
		origin = "demo"
	}
	update := bson.M{
		"$inc": bson.M{"total": amount, bucket: amount, origin: amount},
		"$set": bson.M{"updatedAt": time.Now()},
	}
	opts := options.FindOneAndUpdate().SetUpsert(true).SetReturnDocument(options.After)
	balance, err := r.modify(ctx, bson.M{"_id": userID}, update, opts)
	if err != nil {
		return nil, translate(err)
	}
	return balance, nil
}

// Debit spends points straight from the total
func (r *BalanceRepository) Debit(ctx context.Context, userID primitive.ObjectID, amount int64) (*models.PointBalance, error) {
	filter := bson.M{"_id": userID, "total": bson.M{"$gte": amount}}
	return r.move(ctx, filter, bson.M{"total": -amount, "spent": amount})
}

// Reserve moves points from the total into the reserved bucket
func (r *BalanceRepository) Reserve(ctx context.Context, userID primitive.ObjectID, amount int64) (*models.PointBalance, error) {
	filter := bson.M{"_id": userID, "total": bson.M{"$gte": amount}}
	return r.move(ctx, filter, bson.M{"total": -amount, "reserved": amount})
}

// Settle turns reserved points into spent points
func (r *BalanceRepository) Settle(ctx context.Context, userID primitive.ObjectID, amount int64) (*models.PointBalance, error) {
	filter := bson.M{"_id": userID, "reserved": bson.M{"$gte": amount}}
	return r.move(ctx, filter, bson.M{"reserved": -amount, "spent": amount})
}

// Restore returns reserved points to the total
func (r *BalanceRepository) Restore(ctx context.Context, userID primitive.ObjectID, amount int64) (*models.PointBalance, error) {
	filter := bson.M{"_id": userID, "reserved": bson.M{"$gte": amount}}
	return r.move(ctx, filter, bson.M{"reserved": -amount, "total": amount})
}

func (r *BalanceRepository) move(ctx context.Context, filter, inc bson.M) (*models.PointBalance, error) {
	update := bson.M{"$inc": inc, "$set": bson.M{"updatedAt": time.Now()}}
	opts := options.FindOneAndUpdate().SetReturnDocument(options.After)
	balance, err := r.modify(ctx, filter, update, opts)
	if err != nil {
		return nil, guarded(err)
	}
	return balance, nil
}

func (r *BalanceRepository) modify(ctx context.Context, filter, update bson.M, opts *options.FindOneAndUpdateOptions) (*models.PointBalance, error) {
	var balance models.PointBalance
	if err := r.collection.FindOneAndUpdate(ctx, filter, update, opts).Decode(&balance); err != nil {
		return nil, err
	}
	return &balance, nil
}
