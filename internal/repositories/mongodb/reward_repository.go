package mongodb

import (
	"context"
	"regexp"
	"time"

	"github.com/ArowuTest/bridgetunes-rewards-backend/internal/models"
	"github.com/ArowuTest/bridgetunes-rewards-backend/internal/repositories"
	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"
)

var (
	_ repositories.RewardRepository     = (*RewardRepository)(nil)
	_ repositories.UserRewardRepository = (*UserRewardRepository)(nil)
)

// RewardRepository handles MongoDB operations for the reward catalog
type RewardRepository struct {
	collection *mongo.Collection
}

// NewRewardRepository creates a new RewardRepository
func NewRewardRepository(db *mongo.Database) *RewardRepository {
	return &RewardRepository{
		collection: db.Collection("rewards"),
	}
}

// Create inserts a reward
func (r *RewardRepository) Create(ctx context.Context, reward *models.Reward) error {
	if reward.ID.IsZero() {
		reward.ID = primitive.NewObjectID()
	}
	if reward.CreatedAt.IsZero() {
		reward.CreatedAt = time.Now()
	}
	reward.UpdatedAt = reward.CreatedAt
	_, err := r.collection.InsertOne(ctx, reward)
	return translate(err)
}

// FindByID finds a reward by ID
func (r *RewardRepository) FindByID(ctx context.Context, id primitive.ObjectID) (*models.Reward, error) {
	var reward models.Reward
	if err := r.collection.FindOne(ctx, bson.M{"_id": id}).Decode(&reward); err != nil {
		return nil, translate(err)
	}
	return &reward, nil
}

// FindByName finds a reward by exact name
func (r *RewardRepository) FindByName(ctx context.Context, name string) (*models.Reward, error) {
	var reward models.Reward
	if err := r.collection.FindOne(ctx, bson.M{"name": name}).Decode(&reward); err != nil {
		return nil, translate(err)
	}
	return &reward, nil
}

// FindAll lists rewards matching the filter ordered by points required
func (r *RewardRepository) FindAll(ctx context.Context, filter models.RewardFilter) ([]*models.Reward, error) {
	query := bson.M{}
	if filter.ActiveOnly {
		query["isActive"] = true
	}
	if filter.Category != "" {
		query["category"] = primitive.Regex{Pattern: "^" + regexp.QuoteMeta(filter.Category) + "$", Options: "i"}
	}
	opts := options.Find().SetSort(bson.D{{Key: "pointsRequired", Value: 1}, {Key: "name", Value: 1}})
	cursor, err := r.collection.Find(ctx, query, opts)
	if err != nil {
		return nil, err
	}
	return decodeAll[models.Reward](ctx, cursor)
}

// Update replaces a reward
func (r *RewardRepository) Update(ctx context.Context, reward *models.Reward) error {
	reward.UpdatedAt = time.Now()
	result, err := r.collection.ReplaceOne(ctx, bson.M{"_id": reward.ID}, reward)
	if err != nil {
		return translate(err)
	}
	if result.MatchedCount == 0 {
		return repositories.ErrNotFound
	}
	return nil
}

// DecrementStock takes one unit of an active reward with stock left
func (r *RewardRepository) DecrementStock(ctx context.Context, id primitive.ObjectID) error {
	filter := bson.M{"_id": id, "isActive": true, "stock": bson.M{"$gt": 0}}
	update := bson.M{"$inc": bson.M{"stock": -1}, "$set": bson.M{"updatedAt": time.Now()}}
	result, err := r.collection.UpdateOne(ctx, filter, update)
	if err != nil {
		return err
	}
	if result.ModifiedCount == 0 {
		return repositories.ErrConditionFailed
	}
	return nil
}

// IncrementStock gives one unit back
func (r *RewardRepository) IncrementStock(ctx context.Context, id primitive.ObjectID) error {
	update := bson.M{"$inc": bson.M{"stock": 1}, "$set": bson.M{"updatedAt": time.Now()}}
	result, err := r.collection.UpdateOne(ctx, bson.M{"_id": id}, update)
	if err != nil {
		return err
	}
	if result.MatchedCount == 0 {
		return repositories.ErrNotFound
	}
	return nil
}

// Count counts all rewards
func (r *RewardRepository) Count(ctx context.Context) (int64, error) {
	return r.collection.CountDocuments(ctx, bson.M{})
}

// UserRewardRepository handles MongoDB operations for redeemed rewards
type UserRewardRepository struct {
	collection *mongo.Collection
}

// NewUserRewardRepository creates a new UserRewardRepository
func NewUserRewardRepository(db *mongo.Database) *UserRewardRepository {
	return &UserRewardRepository{
		collection: db.Collection("user_rewards"),
	}
}

// Create inserts a redemption
func (r *UserRewardRepository) Create(ctx context.Context, userReward *models.UserReward) error {
	if userReward.ID.IsZero() {
		userReward.ID = primitive.NewObjectID()
	}
	_, err := r.collection.InsertOne(ctx, userReward)
	return translate(err)
}

// FindByID finds a redemption by ID
func (r *UserRewardRepository) FindByID(ctx context.Context, id primitive.ObjectID) (*models.UserReward, error) {
	var userReward models.UserReward
	if err := r.collection.FindOne(ctx, bson.M{"_id": id}).Decode(&userReward); err != nil {
		return nil, translate(err)
	}
	return &userReward, nil
}

// FindByUserID lists a user's redemptions, newest first
func (r *UserRewardRepository) FindByUserID(ctx context.Context, userID primitive.ObjectID) ([]*models.UserReward, error) {
	cursor, err := r.collection.Find(ctx, bson.M{"userId": userID}, findOptions(0, 0, "redeemedAt"))
	if err != nil {
		return nil, err
	}
	return decodeAll[models.UserReward](ctx, cursor)
}

// MarkUsed flags an unused redemption as used
func (r *UserRewardRepository) MarkUsed(ctx context.Context, id primitive.ObjectID, at time.Time) error {
	filter := bson.M{"_id": id, "isUsed": false}
	update := bson.M{"$set": bson.M{"isUsed": true, "usedAt": at}}
	result, err := r.collection.UpdateOne(ctx, filter, update)
	if err != nil {
		return err
	}
	if result.MatchedCount == 0 {
		if _, err := r.FindByID(ctx, id); err != nil {
			return err
		}
		return repositories.ErrConditionFailed
	}
	return nil
}

// Delete removes a redemption
func (r *UserRewardRepository) Delete(ctx context.Context, id primitive.ObjectID) error {
	_, err := r.collection.DeleteOne(ctx, bson.M{"_id": id})
	return err
}
