package mongodb

import (
	"context"
	"time"

	"github.com/ArowuTest/bridgetunes-rewards-backend/internal/models"
	"github.com/ArowuTest/bridgetunes-rewards-backend/internal/repositories"
	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.mongodb.org/mongo-driver/mongo"
)

var (
	_ repositories.SurveyRepository         = (*SurveyRepository)(nil)
	_ repositories.SurveyResponseRepository = (*SurveyResponseRepository)(nil)
)

// SurveyRepository handles MongoDB operations for Survey
type SurveyRepository struct {
	collection *mongo.Collection
}

// NewSurveyRepository creates a new SurveyRepository
func NewSurveyRepository(db *mongo.Database) *SurveyRepository {
	return &SurveyRepository{
		collection: db.Collection("surveys"),
	}
}

// Create inserts a survey
func (r *SurveyRepository) Create(ctx context.Context, survey *models.Survey) error {
	if survey.ID.IsZero() {
		survey.ID = primitive.NewObjectID()
	}
	if survey.CreatedAt.IsZero() {
		survey.CreatedAt = time.Now()
	}
	_, err := r.collection.InsertOne(ctx, survey)
	return translate(err)
}

// FindByID finds a survey by ID
func (r *SurveyRepository) FindByID(ctx context.Context, id primitive.ObjectID) (*models.Survey, error) {
	var survey models.Survey
	if err := r.collection.FindOne(ctx, bson.M{"_id": id}).Decode(&survey); err != nil {
		return nil, translate(err)
	}
	return &survey, nil
}

// FindActive lists active surveys that have not expired at now
func (r *SurveyRepository) FindActive(ctx context.Context, now time.Time) ([]*models.Survey, error) {
	filter := bson.M{
		"isActive": true,
		"$or": bson.A{
			bson.M{"expiresAt": bson.M{"$exists": false}},
			bson.M{"expiresAt": nil},
			bson.M{"expiresAt": bson.M{"$gte": now}},
		},
	}
	cursor, err := r.collection.Find(ctx, filter, findOptions(0, 0, "createdAt"))
	if err != nil {
		return nil, err
	}
	return decodeAll[models.Survey](ctx, cursor)
}

// SurveyResponseRepository handles MongoDB operations for SurveyResponse
type SurveyResponseRepository struct {
	collection *mongo.Collection
}

// NewSurveyResponseRepository creates a new SurveyResponseRepository
func NewSurveyResponseRepository(db *mongo.Database) *SurveyResponseRepository {
	return &SurveyResponseRepository{
		collection: db.Collection("survey_responses"),
	}
}

// Create inserts a response
func (r *SurveyResponseRepository) Create(ctx context.Context, response *models.SurveyResponse) error {
	if response.ID.IsZero() {
		response.ID = primitive.NewObjectID()
	}
	_, err := r.collection.InsertOne(ctx, response)
	return translate(err)
}

// FindBySurveyAndUser finds a user's response to a survey
func (r *SurveyResponseRepository) FindBySurveyAndUser(ctx context.Context, surveyID, userID primitive.ObjectID) (*models.SurveyResponse, error) {
	var response models.SurveyResponse
	filter := bson.M{"surveyId": surveyID, "userId": userID}
	if err := r.collection.FindOne(ctx, filter).Decode(&response); err != nil {
		return nil, translate(err)
	}
	return &response, nil
}

// FindByUserID lists a user's responses
func (r *SurveyResponseRepository) FindByUserID(ctx context.Context, userID primitive.ObjectID) ([]*models.SurveyResponse, error) {
	cursor, err := r.collection.Find(ctx, bson.M{"userId": userID}, findOptions(0, 0, "completedAt"))
	if err != nil {
		return nil, err
	}
	return decodeAll[models.SurveyResponse](ctx, cursor)
}

// Delete removes a response
func (r *SurveyResponseRepository) Delete(ctx context.Context, id primitive.ObjectID) error {
	_, err := r.collection.DeleteOne(ctx, bson.M{"_id": id})
	return err
}
