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
	_ repositories.TriviaQuestionRepository = (*TriviaQuestionRepository)(nil)
	_ repositories.TriviaAnswerRepository   = (*TriviaAnswerRepository)(nil)
)

// TriviaQuestionRepository handles MongoDB operations for TriviaQuestion
type TriviaQuestionRepository struct {
	collection *mongo.Collection
}

// NewTriviaQuestionRepository creates a new TriviaQuestionRepository
func NewTriviaQuestionRepository(db *mongo.Database) *TriviaQuestionRepository {
	return &TriviaQuestionRepository{
		collection: db.Collection("trivia_questions"),
	}
}

// Create inserts a question
func (r *TriviaQuestionRepository) Create(ctx context.Context, question *models.TriviaQuestion) error {
	if question.ID.IsZero() {
		question.ID = primitive.NewObjectID()
	}
	if question.CreatedAt.IsZero() {
		question.CreatedAt = time.Now()
	}
	_, err := r.collection.InsertOne(ctx, question)
	return translate(err)
}

// FindByID finds a question by ID
func (r *TriviaQuestionRepository) FindByID(ctx context.Context, id primitive.ObjectID) (*models.TriviaQuestion, error) {
	var question models.TriviaQuestion
	if err := r.collection.FindOne(ctx, bson.M{"_id": id}).Decode(&question); err != nil {
		return nil, translate(err)
	}
	return &question, nil
}

// FindActive lists active questions, optionally of one category
func (r *TriviaQuestionRepository) FindActive(ctx context.Context, category string) ([]*models.TriviaQuestion, error) {
	filter := bson.M{"isActive": true}
	if category != "" {
		filter["category"] = primitive.Regex{Pattern: "^" + regexp.QuoteMeta(category) + "$", Options: "i"}
	}
	opts := options.Find().SetSort(bson.D{{Key: "createdAt", Value: 1}})
	cursor, err := r.collection.Find(ctx, filter, opts)
	if err != nil {
		return nil, err
	}
	return decodeAll[models.TriviaQuestion](ctx, cursor)
}

// TriviaAnswerRepository handles MongoDB operations for TriviaAnswer
type TriviaAnswerRepository struct {
	collection *mongo.Collection
}

// NewTriviaAnswerRepository creates a new TriviaAnswerRepository
func NewTriviaAnswerRepository(db *mongo.Database) *TriviaAnswerRepository {
	return &TriviaAnswerRepository{
		collection: db.Collection("trivia_answers"),
	}
}

// Create inserts an answer
func (r *TriviaAnswerRepository) Create(ctx context.Context, answer *models.TriviaAnswer) error {
	if answer.ID.IsZero() {
		answer.ID = primitive.NewObjectID()
	}
	_, err := r.collection.InsertOne(ctx, answer)
	return translate(err)
}

// FindByUserID lists a user's answers
func (r *TriviaAnswerRepository) FindByUserID(ctx context.Context, userID primitive.ObjectID) ([]*models.TriviaAnswer, error) {
	cursor, err := r.collection.Find(ctx, bson.M{"userId": userID}, findOptions(0, 0, "answeredAt"))
	if err != nil {
		return nil, err
	}
	return decodeAll[models.TriviaAnswer](ctx, cursor)
}

// Delete removes an answer
func (r *TriviaAnswerRepository) Delete(ctx context.Context, id primitive.ObjectID) error {
	_, err := r.collection.DeleteOne(ctx, bson.M{"_id": id})
	return err
}
