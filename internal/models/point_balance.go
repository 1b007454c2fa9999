package models

import (
	"time"

	"go.mongodb.org/mongo-driver/bson/primitive"
)

// PointBalance holds the aggregate point counters of a user.
// Total always equals Earned + Purchased - Spent - Reserved.
type PointBalance struct {
	UserID    primitive.ObjectID `bson:"_id" json:"userId"`
	Total     int64              `bson:"total" json:"total"`
	Earned    int64              `bson:"earned" json:"earned"`
	Spent     int64              `bson:"spent" json:"spent"`
	Purchased int64              `bson:"purchased" json:"purchased"`
	Demo      int64              `bson:"demo" json:"demo"` // credited while the user was a demo user
	Real      int64              `bson:"real" json:"real"` // credited while the user was not a demo user
	Reserved  int64              `bson:"reserved" json:"reserved"`
	UpdatedAt time.Time          `bson:"updatedAt" json:"updatedAt"`
}

// Consistent reports whether the counters satisfy the balance invariant
func (b *PointBalance) Consistent() bool {
	return b.Total == b.Earned+b.Purchased-b.Spent-b.Reserved && b.Total >= 0 && b.Reserved >= 0
}

// HoldStatus represents the lifecycle of a point hold
type HoldStatus string

const (
	HoldStatusHeld      HoldStatus = "HELD"
	HoldStatusCommitted HoldStatus = "COMMITTED"
	HoldStatusReleased  HoldStatus = "RELEASED"
)

// PointHold is a reservation of points taken by a coordinator before it commits a spend
type PointHold struct {
	ID          primitive.ObjectID `bson:"_id,omitempty" json:"id,omitempty"`
	UserID      primitive.ObjectID `bson:"userId" json:"userId"`
	Amount      int64              `bson:"amount" json:"amount"`
	Description string             `bson:"description" json:"description"`
	Status      HoldStatus         `bson:"status" json:"status"`
	CreatedAt   time.Time          `bson:"createdAt" json:"createdAt"`
	SettledAt   *time.Time         `bson:"settledAt,omitempty" json:"settledAt,omitempty"`
}
