package models

import (
	"time"

	"go.mongodb.org/mongo-driver/bson/primitive"
)

// PointPackage is a bundle of points that can be bought
type PointPackage struct {
	ID          primitive.ObjectID `bson:"_id,omitempty" json:"id,omitempty"`
	Name        string             `bson:"name" json:"name"`
	Points      int64              `bson:"points" json:"points"`
	BonusPoints int64              `bson:"bonusPoints" json:"bonusPoints"`
	Price       float64            `bson:"price" json:"price"`
	Currency    string             `bson:"currency" json:"currency"`
	IsActive    bool               `bson:"isActive" json:"isActive"`
	CreatedAt   time.Time          `bson:"createdAt" json:"createdAt"`
}

// PurchaseStatus represents the state of a purchase
type PurchaseStatus string

const (
	PurchaseStatusPending   PurchaseStatus = "PENDING"
	PurchaseStatusCompleted PurchaseStatus = "COMPLETED"
	PurchaseStatusFailed    PurchaseStatus = "FAILED"
)

// Purchase represents a point package purchase
type Purchase struct {
	ID            primitive.ObjectID `bson:"_id,omitempty" json:"id,omitempty"`
	UserID        primitive.ObjectID `bson:"userId" json:"userId"`
	PackageID     primitive.ObjectID `bson:"packageId" json:"packageId"`
	Points        int64              `bson:"points" json:"points"`
	Amount        float64            `bson:"amount" json:"amount"`
	Currency      string             `bson:"currency" json:"currency"`
	PaymentRef    string             `bson:"paymentRef" json:"paymentRef"`
	Status        PurchaseStatus     `bson:"status" json:"status"`
	FailureReason string             `bson:"failureReason,omitempty" json:"failureReason,omitempty"`
	CreatedAt     time.Time          `bson:"createdAt" json:"createdAt"`
	UpdatedAt     time.Time          `bson:"updatedAt" json:"updatedAt"`
}
