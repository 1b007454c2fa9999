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

var _ repositories.RaffleRepository = (*RaffleRepository)(nil)

// RaffleRepository handles MongoDB operations for Raffle
type RaffleRepository struct {
	collection *mongo.Collection
}

// NewRaffleRepository creates a new RaffleRepository
func NewRaffleRepository(db *mongo.Database) *RaffleRepository {
	return &RaffleRepository{
		collection: db.Collection("raffles"),
	}
}

// Create creates a new raffle
func (r *RaffleRepository) Create(ctx context.Context, raffle *models.Raffle) error {
	if raffle.ID.IsZero() {
		raffle.ID = primitive.NewObjectID()
	}
	if raffle.CreatedAt.IsZero() {
		raffle.CreatedAt = time.Now()
	}
	raffle.UpdatedAt = raffle.CreatedAt
	_, err := r.collection.InsertOne(ctx, raffle)
	return translate(err)
}

// FindByID finds a raffle by ID
func (r *RaffleRepository) FindByID(ctx context.Context, id primitive.ObjectID) (*models.Raffle, error) {
	var raffle models.Raffle
	if err := r.collection.FindOne(ctx, bson.M{"_id": id}).Decode(&raffle); err != nil {
		return nil, translate(err)
	}
	return &raffle, nil
}

// FindAll lists raffles ordered by end date
func (r *RaffleRepository) FindAll(ctx context.Context, activeOnly bool) ([]*models.Raffle, error) {
	filter := bson.M{}
	if activeOnly {
		filter["isActive"] = true
	}
	opts := options.Find().SetSort(bson.D{{Key: "endDate", Value: 1}})
	cursor, err := r.collection.Find(ctx, filter, opts)
	if err != nil {
		return nil, err
	}
	return decodeAll[models.Raffle](ctx, cursor)
}

// IncrementParticipants adds a participant to an open raffle that is below its cap
func (r *RaffleRepository) IncrementParticipants(ctx context.Context, id primitive.ObjectID) error {
	filter := bson.M{
		"_id":      id,
		"isActive": true,
		"status":   models.RaffleStatusOpen,
		"$or": bson.A{
			bson.M{"maxParticipants": bson.M{"$lte": 0}},
			bson.M{"$expr": bson.M{"$lt": bson.A{"$currentParticipants", "$maxParticipants"}}},
		},
	}
	update := bson.M{"$inc": bson.M{"currentParticipants": 1}, "$set": bson.M{"updatedAt": time.Now()}}
	result, err := r.collection.UpdateOne(ctx, filter, update)
	if err != nil {
		return err
	}
	if result.ModifiedCount == 0 {
		return repositories.ErrConditionFailed
	}
	return nil
}

// DecrementParticipants removes a participant
func (r *RaffleRepository) DecrementParticipants(ctx context.Context, id primitive.ObjectID) error {
	filter := bson.M{"_id": id, "currentParticipants": bson.M{"$gt": 0}}
	update := bson.M{"$inc": bson.M{"currentParticipants": -1}, "$set": bson.M{"updatedAt": time.Now()}}
	_, err := r.collection.UpdateOne(ctx, filter, update)
	return err
}

// MarkDrawn stores the draw result of an OPEN raffle
func (r *RaffleRepository) MarkDrawn(ctx context.Context, raffle *models.Raffle) error {
	filter := bson.M{"_id": raffle.ID, "status": models.RaffleStatusOpen}
	update := bson.M{"$set": bson.M{
		"status":                 models.RaffleStatusDrawn,
		"winnerUserId":           raffle.WinnerUserID,
		"winningParticipationId": raffle.WinningParticipationID,
		"drawnAt":                raffle.DrawnAt,
		"executionLog":           raffle.ExecutionLog,
		"updatedAt":              time.Now(),
	}}
	result, err := r.collection.UpdateOne(ctx, filter, update)
	if err != nil {
		return err
	}
	if result.MatchedCount == 0 {
		if _, err := r.FindByID(ctx, raffle.ID); err != nil {
			return err
		}
		return repositories.ErrConditionFailed
	}
	return nil
}

// UpdateWinner replaces the result of a DRAWN raffle
func (r *RaffleRepository) UpdateWinner(ctx context.Context, raffle *models.Raffle) error {
	filter := bson.M{"_id": raffle.ID, "status": models.RaffleStatusDrawn}
	update := bson.M{"$set": bson.M{
		"winnerUserId":           raffle.WinnerUserID,
		"winningParticipationId": raffle.WinningParticipationID,
		"executionLog":           raffle.ExecutionLog,
		"updatedAt":              time.Now(),
	}}
	result, err := r.collection.UpdateOne(ctx, filter, update)
	if err != nil {
		return err
	}
	if result.MatchedCount == 0 {
		if _, err := r.FindByID(ctx, raffle.ID); err != nil {
			return err
		}
		return repositories.ErrConditionFailed
	}
	return nil
}
