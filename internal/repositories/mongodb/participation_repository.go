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

var _ repositories.ParticipationRepository = (*ParticipationRepository)(nil)

// ParticipationRepository handles MongoDB operations for raffle entries
type ParticipationRepository struct {
	collection *mongo.Collection
}

// NewParticipationRepository creates a new ParticipationRepository
func NewParticipationRepository(db *mongo.Database) *ParticipationRepository {
	return &ParticipationRepository{
		collection: db.Collection("raffle_participations"),
	}
}

// Create inserts an entry. The unique (raffleId, userId) index rejects a second entry.
func (r *ParticipationRepository) Create(ctx context.Context, p *models.UserRaffleParticipation) error {
	if p.ID.IsZero() {
		p.ID = primitive.NewObjectID()
	}
	_, err := r.collection.InsertOne(ctx, p)
	return translate(err)
}

// FindByID finds an entry by ID
func (r *ParticipationRepository) FindByID(ctx context.Context, id primitive.ObjectID) (*models.UserRaffleParticipation, error) {
	return r.findOne(ctx, bson.M{"_id": id})
}

// FindByRaffleAndUser finds the entry of a user in a raffle
func (r *ParticipationRepository) FindByRaffleAndUser(ctx context.Context, raffleID, userID primitive.ObjectID) (*models.UserRaffleParticipation, error) {
	return r.findOne(ctx, bson.M{"raffleId": raffleID, "userId": userID})
}

func (r *ParticipationRepository) findOne(ctx context.Context, filter bson.M) (*models.UserRaffleParticipation, error) {
	var p models.UserRaffleParticipation
	if err := r.collection.FindOne(ctx, filter).Decode(&p); err != nil {
		return nil, translate(err)
	}
	return &p, nil
}

// FindByRaffleID lists the entries of a raffle in creation order
func (r *ParticipationRepository) FindByRaffleID(ctx context.Context, raffleID primitive.ObjectID) ([]*models.UserRaffleParticipation, error) {
	opts := options.Find().SetSort(bson.D{{Key: "createdAt", Value: 1}})
	cursor, err := r.collection.Find(ctx, bson.M{"raffleId": raffleID}, opts)
	if err != nil {
		return nil, err
	}
	return decodeAll[models.UserRaffleParticipation](ctx, cursor)
}

// FindByUserID lists a user's entries, newest first
func (r *ParticipationRepository) FindByUserID(ctx context.Context, userID primitive.ObjectID) ([]*models.UserRaffleParticipation, error) {
	cursor, err := r.collection.Find(ctx, bson.M{"userId": userID}, findOptions(0, 0, "createdAt"))
	if err != nil {
		return nil, err
	}
	return decodeAll[models.UserRaffleParticipation](ctx, cursor)
}

// UpdateStatus sets the outcome of a single entry
func (r *ParticipationRepository) UpdateStatus(ctx context.Context, id primitive.ObjectID, status models.ParticipationStatus, prize string, at time.Time) error {
	update := bson.M{"$set": bson.M{"status": status, "prize": prize, "resolvedAt": at}}
	result, err := r.collection.UpdateOne(ctx, bson.M{"_id": id}, update)
	if err != nil {
		return err
	}
	if result.MatchedCount == 0 {
		return repositories.ErrNotFound
	}
	return nil
}

// ResolveRaffle marks the winning entry and every other pending entry of the raffle
func (r *ParticipationRepository) ResolveRaffle(ctx context.Context, raffleID, winnerID primitive.ObjectID, prize string, at time.Time) error {
	if !winnerID.IsZero() {
		winner := bson.M{"$set": bson.M{"status": models.ParticipationWinner, "prize": prize, "resolvedAt": at}}
		if _, err := r.collection.UpdateOne(ctx, bson.M{"_id": winnerID, "raffleId": raffleID, "status": models.ParticipationPending}, winner); err != nil {
			return err
		}
	}
	losers := bson.M{"raffleId": raffleID, "status": models.ParticipationPending}
	update := bson.M{"$set": bson.M{"status": models.ParticipationNotWinner, "resolvedAt": at}}
	_, err := r.collection.UpdateMany(ctx, losers, update)
	return err
}

// Delete removes an entry
func (r *ParticipationRepository) Delete(ctx context.Context, id primitive.ObjectID) error {
	_, err := r.collection.DeleteOne(ctx, bson.M{"_id": id})
	return err
}
