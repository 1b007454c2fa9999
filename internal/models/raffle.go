package models

import (
	"time"

	"go.mongodb.org/mongo-driver/bson/primitive"
)

// RaffleStatus represents the status of a raffle
type RaffleStatus string

const (
	RaffleStatusOpen  RaffleStatus = "OPEN"
	RaffleStatusDrawn RaffleStatus = "DRAWN"
)

// Raffle represents a points-entry raffle
type Raffle struct {
	ID                     primitive.ObjectID `bson:"_id,omitempty" json:"id,omitempty"`
	Name                   string             `bson:"name" json:"name"`
	Description            string             `bson:"description" json:"description"`
	Prize                  string             `bson:"prize" json:"prize"`
	RequiredPoints         int64              `bson:"requiredPoints" json:"requiredPoints"`
	MaxParticipants        int                `bson:"maxParticipants" json:"maxParticipants"` // 0 means unlimited
	CurrentParticipants    int                `bson:"currentParticipants" json:"currentParticipants"`
	IsActive               bool               `bson:"isActive" json:"isActive"`
	StartDate              time.Time          `bson:"startDate,omitempty" json:"startDate,omitempty"`
	EndDate                time.Time          `bson:"endDate" json:"endDate"`
	Status                 RaffleStatus       `bson:"status" json:"status"`
	WinnerUserID           primitive.ObjectID `bson:"winnerUserId,omitempty" json:"winnerUserId,omitempty"`
	WinningParticipationID primitive.ObjectID `bson:"winningParticipationId,omitempty" json:"winningParticipationId,omitempty"`
	DrawnAt                *time.Time         `bson:"drawnAt,omitempty" json:"drawnAt,omitempty"`
	ExecutionLog           []string           `bson:"executionLog,omitempty" json:"executionLog,omitempty"`
	CreatedAt              time.Time          `bson:"createdAt" json:"createdAt"`
	UpdatedAt              time.Time          `bson:"updatedAt" json:"updatedAt"`
}

// IsFull reports whether the raffle reached its participant cap
func (r *Raffle) IsFull() bool {
	return r.MaxParticipants > 0 && r.CurrentParticipants >= r.MaxParticipants
}

// ParticipationStatus is the outcome of a raffle entry
type ParticipationStatus string

const (
	ParticipationPending   ParticipationStatus = "pending"
	ParticipationWinner    ParticipationStatus = "winner"
	ParticipationNotWinner ParticipationStatus = "not_winner"
)

// UserRaffleParticipation records a user's entry into a raffle
type UserRaffleParticipation struct {
	ID              primitive.ObjectID  `bson:"_id,omitempty" json:"id,omitempty"`
	RaffleID        primitive.ObjectID  `bson:"raffleId" json:"raffleId"`
	UserID          primitive.ObjectID  `bson:"userId" json:"userId"`
	ParticipationID string              `bson:"participationId" json:"participationId"`
	Status          ParticipationStatus `bson:"status" json:"status"`
	PointsSpent     int64               `bson:"pointsSpent" json:"pointsSpent"`
	BalanceBefore   int64               `bson:"balanceBefore" json:"balanceBefore"`
	BalanceAfter    int64               `bson:"balanceAfter" json:"balanceAfter"`
	Prize           string              `bson:"prize,omitempty" json:"prize,omitempty"`
	CreatedAt       time.Time           `bson:"createdAt" json:"createdAt"`
	ResolvedAt      *time.Time          `bson:"resolvedAt,omitempty" json:"resolvedAt,omitempty"`
}
