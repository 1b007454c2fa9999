package models

import (
	"time"

	"go.mongodb.org/mongo-driver/bson/primitive"
)

// TransactionType classifies a ledger entry
type TransactionType string

const (
	TransactionEarn     TransactionType = "EARN"
	TransactionSpend    TransactionType = "SPEND"
	TransactionPurchase TransactionType = "PURCHASE"
)

// PointTransaction is an immutable ledger entry
type PointTransaction struct {
	ID           primitive.ObjectID `bson:"_id,omitempty" json:"id,omitempty"`
	UserID       primitive.ObjectID `bson:"userId" json:"userId"`
	Type         TransactionType    `bson:"type" json:"type"`
	Amount       int64              `bson:"amount" json:"amount"`
	Description  string             `bson:"description" json:"description"`
	Metadata     map[string]string  `bson:"metadata,omitempty" json:"metadata,omitempty"`
	BalanceAfter int64              `bson:"balanceAfter" json:"balanceAfter"`
	CreatedAt    time.Time          `bson:"createdAt" json:"createdAt"`
}
