package models

import (
	"time"

	"go.mongodb.org/mongo-driver/bson/primitive"
)

// Reward is a catalog item that can be redeemed for points
type Reward struct {
	ID             primitive.ObjectID `bson:"_id,omitempty" json:"id,omitempty"`
	Name           string             `bson:"name" json:"name"`
	Description    string             `bson:"description" json:"description"`
	Category       string             `bson:"category" json:"category"` // e.g., "food", "entertainment", "shopping"
	PointsRequired int64              `bson:"pointsRequired" json:"pointsRequired"`
	Stock          int                `bson:"stock" json:"stock"`
	IsActive       bool               `bson:"isActive" json:"isActive"`
	ImageURL       string             `bson:"imageUrl,omitempty" json:"imageUrl,omitempty"`
	ExpirationDate *time.Time         `bson:"expirationDate,omitempty" json:"expirationDate,omitempty"`
	CreatedAt      time.Time          `bson:"createdAt" json:"createdAt"`
	UpdatedAt      time.Time          `bson:"updatedAt" json:"updatedAt"`
}

// IsExpired reports whether the reward is past its expiration date
func (r *Reward) IsExpired(now time.Time) bool {
	return r.ExpirationDate != nil && now.After(*r.ExpirationDate)
}

// UserReward is the record of a redemption, holding the code the user presents
type UserReward struct {
	ID             primitive.ObjectID `bson:"_id,omitempty" json:"id,omitempty"`
	UserID         primitive.ObjectID `bson:"userId" json:"userId"`
	RewardID       primitive.ObjectID `bson:"rewardId" json:"rewardId"`
	RewardName     string             `bson:"rewardName" json:"rewardName"`
	Category       string             `bson:"category" json:"category"`
	PointsSpent    int64              `bson:"pointsSpent" json:"pointsSpent"`
	RedemptionCode string             `bson:"redemptionCode" json:"redemptionCode"`
	IsUsed         bool               `bson:"isUsed" json:"isUsed"`
	UsedAt         *time.Time         `bson:"usedAt,omitempty" json:"usedAt,omitempty"`
	RedeemedAt     time.Time          `bson:"redeemedAt" json:"redeemedAt"`
	ExpiresAt      time.Time          `bson:"expiresAt" json:"expiresAt"`
}

// RewardFilter narrows catalog listings
type RewardFilter struct {
	Category   string
	ActiveOnly bool
}
