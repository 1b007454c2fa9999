// Package mongodb implements the repositories on top of the official MongoDB driver.
package mongodb

import (
	"context"
	"errors"
	"fmt"

	"github.com/ArowuTest/bridgetunes-rewards-backend/internal/repositories"
	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"
)

// NewRegistry wires every MongoDB repository against db
func NewRegistry(db *mongo.Database) *repositories.Registry {
	return &repositories.Registry{
		Users:           NewUserRepository(db),
		Balances:        NewBalanceRepository(db),
		Holds:           NewPointHoldRepository(db),
		Transactions:    NewPointTransactionRepository(db),
		Rewards:         NewRewardRepository(db),
		UserRewards:     NewUserRewardRepository(db),
		Raffles:         NewRaffleRepository(db),
		Participations:  NewParticipationRepository(db),
		Surveys:         NewSurveyRepository(db),
		SurveyResponses: NewSurveyResponseRepository(db),
		TriviaQuestions: NewTriviaQuestionRepository(db),
		TriviaAnswers:   NewTriviaAnswerRepository(db),
		Packages:        NewPointPackageRepository(db),
		Purchases:       NewPurchaseRepository(db),
		Notifications:   NewNotificationRepository(db),
		Settings:        NewSystemSettingsRepository(db),
	}
}

// EnsureIndexes creates the unique and lookup indexes the repositories rely on
func EnsureIndexes(ctx context.Context, db *mongo.Database) error {
	unique := options.Index().SetUnique(true)
	indexes := map[string][]mongo.IndexModel{
		"users": {
			{Keys: bson.D{{Key: "email", Value: 1}}, Options: unique},
		},
		"point_transactions": {
			{Keys: bson.D{{Key: "userId", Value: 1}, {Key: "createdAt", Value: -1}}},
		},
		"point_holds": {
			{Keys: bson.D{{Key: "userId", Value: 1}, {Key: "status", Value: 1}}},
		},
		"rewards": {
			{Keys: bson.D{{Key: "category", Value: 1}, {Key: "isActive", Value: 1}}},
			{Keys: bson.D{{Key: "name", Value: 1}}},
		},
		"user_rewards": {
			{Keys: bson.D{{Key: "redemptionCode", Value: 1}}, Options: unique},
			{Keys: bson.D{{Key: "userId", Value: 1}, {Key: "redeemedAt", Value: -1}}},
		},
		"raffle_participations": {
			{Keys: bson.D{{Key: "raffleId", Value: 1}, {Key: "userId", Value: 1}}, Options: unique},
			{Keys: bson.D{{Key: "participationId", Value: 1}}, Options: unique},
		},
		"survey_responses": {
			{Keys: bson.D{{Key: "surveyId", Value: 1}, {Key: "userId", Value: 1}}, Options: unique},
		},
		"trivia_answers": {
			{Keys: bson.D{{Key: "userId", Value: 1}, {Key: "questionId", Value: 1}}, Options: unique},
		},
		"purchases": {
			{Keys: bson.D{{Key: "userId", Value: 1}, {Key: "createdAt", Value: -1}}},
		},
		"notifications": {
			{Keys: bson.D{{Key: "userId", Value: 1}, {Key: "isRead", Value: 1}, {Key: "createdAt", Value: -1}}},
		},
	}
	for name, idx := range indexes {
		if _, err := db.Collection(name).Indexes().CreateMany(ctx, idx); err != nil {
			return fmt.Errorf("failed to create indexes for %s: %w", name, err)
		}
	}
	return nil
}

// translate maps driver errors onto the repository sentinels
func translate(err error) error {
	switch {
	case err == nil:
		return nil
	case errors.Is(err, mongo.ErrNoDocuments):
		return repositories.ErrNotFound
	case mongo.IsDuplicateKeyError(err):
		return fmt.Errorf("%w: %v", repositories.ErrDuplicateKey, err)
	default:
		return err
	}
}

// guarded maps a missing document on a conditional update to ErrConditionFailed
func guarded(err error) error {
	if errors.Is(err, mongo.ErrNoDocuments) {
		return repositories.ErrConditionFailed
	}
	return translate(err)
}

func findOptions(page, limit int, sortField string) *options.FindOptions {
	opts := options.Find().SetSort(bson.D{{Key: sortField, Value: -1}})
	if limit > 0 {
		if page < 1 {
			page = 1
		}
		opts.SetSkip(int64((page - 1) * limit)).SetLimit(int64(limit))
	}
	return opts
}

func decodeAll[T any](ctx context.Context, cursor *mongo.Cursor) ([]*T, error) {
	defer cursor.Close(ctx)
	var out []*T
	if err := cursor.All(ctx, &out); err != nil {
		return nil, err
	}
	// Return empty slice instead of nil if no documents found
	if out == nil {
		out = []*T{}
	}
	return out, nil
}
