package models

import (
	"time"

	"go.mongodb.org/mongo-driver/bson/primitive"
)

// TriviaQuestion is a multiple-choice question that awards points for a correct answer
type TriviaQuestion struct {
	ID           primitive.ObjectID `bson:"_id,omitempty" json:"id,omitempty"`
	Category     string             `bson:"category" json:"category"`
	Difficulty   string             `bson:"difficulty" json:"difficulty"` // easy, medium, hard
	Question     string             `bson:"question" json:"question"`
	Options      []string           `bson:"options" json:"options"`
	CorrectIndex int                `bson:"correctIndex" json:"-"`
	Points       int64              `bson:"points" json:"points"`
	IsActive     bool               `bson:"isActive" json:"isActive"`
	CreatedAt    time.Time          `bson:"createdAt" json:"createdAt"`
}

// TriviaAnswer records one answer given by a user
type TriviaAnswer struct {
	ID            primitive.ObjectID `bson:"_id,omitempty" json:"id,omitempty"`
	UserID        primitive.ObjectID `bson:"userId" json:"userId"`
	QuestionID    primitive.ObjectID `bson:"questionId" json:"questionId"`
	SelectedIndex int                `bson:"selectedIndex" json:"selectedIndex"`
	IsCorrect     bool               `bson:"isCorrect" json:"isCorrect"`
	PointsAwarded int64              `bson:"pointsAwarded" json:"pointsAwarded"`
	AnsweredAt    time.Time          `bson:"answeredAt" json:"answeredAt"`
}

// TriviaResult is returned after answering a question
type TriviaResult struct {
	Answer       *TriviaAnswer `json:"answer"`
	CorrectIndex int           `json:"correctIndex"`
	Balance      *PointBalance `json:"balance,omitempty"`
}

// TriviaStats summarises a user's trivia history
type TriviaStats struct {
	Answered     int     `json:"answered"`
	Correct      int     `json:"correct"`
	PointsEarned int64   `json:"pointsEarned"`
	Accuracy     float64 `json:"accuracy"`
}
