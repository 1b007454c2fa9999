package models

import (
	"time"

	"go.mongodb.org/mongo-driver/bson/primitive"
)

// Notification types
const (
	NotificationReward   = "REWARD"
	NotificationRaffle   = "RAFFLE"
	NotificationSurvey   = "SURVEY"
	NotificationTrivia   = "TRIVIA"
	NotificationPoints   = "POINTS"
	NotificationPurchase = "PURCHASE"
	NotificationSystem   = "SYSTEM"
)

// Notification delivery statuses
const (
	DeliveryPending = "PENDING"
	DeliverySent    = "SENT"
	DeliveryFailed  = "FAILED"
)

// Notification represents an in-app notification sent to a user
type Notification struct {
	ID        primitive.ObjectID `bson:"_id,omitempty" json:"id,omitempty"`
	UserID    primitive.ObjectID `bson:"userId" json:"userId"`
	Title     string             `bson:"title" json:"title"`
	Message   string             `bson:"message" json:"message"`
	Type      string             `bson:"type" json:"type"`
	Data      map[string]string  `bson:"data,omitempty" json:"data,omitempty"`
	IsRead    bool               `bson:"isRead" json:"isRead"`
	Gateway   string             `bson:"gateway" json:"gateway"` // PUSH, WEBHOOK, MOCK
	Status    string             `bson:"status" json:"status"`   // PENDING, SENT, FAILED
	MessageID string             `bson:"messageId,omitempty" json:"messageId,omitempty"`
	CreatedAt time.Time          `bson:"createdAt" json:"createdAt"`
	ReadAt    *time.Time         `bson:"readAt,omitempty" json:"readAt,omitempty"`
}
