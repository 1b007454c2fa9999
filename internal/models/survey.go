package models

import (
	"time"

	"go.mongodb.org/mongo-driver/bson/primitive"
)

// Survey question types
const (
	QuestionSingleChoice   = "single_choice"
	QuestionMultipleChoice = "multiple_choice"
	QuestionText           = "text"
	QuestionRating         = "rating"
)

// Survey is a questionnaire that awards points on completion
type Survey struct {
	ID           primitive.ObjectID `bson:"_id,omitempty" json:"id,omitempty"`
	Title        string             `bson:"title" json:"title"`
	Description  string             `bson:"description" json:"description"`
	Questions    []SurveyQuestion   `bson:"questions" json:"questions"`
	RewardPoints int64              `bson:"rewardPoints" json:"rewardPoints"`
	IsActive     bool               `bson:"isActive" json:"isActive"`
	ExpiresAt    *time.Time         `bson:"expiresAt,omitempty" json:"expiresAt,omitempty"`
	CreatedAt    time.Time          `bson:"createdAt" json:"createdAt"`
}

// SurveyQuestion is a single question within a survey
type SurveyQuestion struct {
	ID       string   `bson:"id" json:"id"`
	Text     string   `bson:"text" json:"text"`
	Type     string   `bson:"type" json:"type"`
	Options  []string `bson:"options,omitempty" json:"options,omitempty"`
	Required bool     `bson:"required" json:"required"`
}

// SurveyAnswer holds the values given for one question
type SurveyAnswer struct {
	QuestionID string   `bson:"questionId" json:"questionId" binding:"required"`
	Values     []string `bson:"values" json:"values"`
}

// SurveyResponse is a user's completed survey
type SurveyResponse struct {
	ID            primitive.ObjectID `bson:"_id,omitempty" json:"id,omitempty"`
	SurveyID      primitive.ObjectID `bson:"surveyId" json:"surveyId"`
	UserID        primitive.ObjectID `bson:"userId" json:"userId"`
	Answers       []SurveyAnswer     `bson:"answers" json:"answers"`
	PointsAwarded int64              `bson:"pointsAwarded" json:"pointsAwarded"`
	CompletedAt   time.Time          `bson:"completedAt" json:"completedAt"`
}

// SurveySummary is a survey as listed to a user
type SurveySummary struct {
	*Survey
	Completed bool `json:"completed"`
}
