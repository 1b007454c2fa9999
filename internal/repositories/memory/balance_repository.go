package memory

import (
	"context"
	"sync"
	"time"

	"github.com/ArowuTest/bridgetunes-rewards-backend/internal/models"
	"github.com/ArowuTest/bridgetunes-rewards-backend/internal/repositories"
	"go.mongodb.org/mongo-driver/bson/primitive"
)

var _ repositories.BalanceRepository = (*BalanceRepository)(nil)

// BalanceRepository keeps point balances in memory; every mutation runs under one lock
type BalanceRepository struct {
	mu       sync.Mutex
	balances map[primitive.ObjectID]*models.PointBalance
}

// NewBalanceRepository creates a new BalanceRepository
func NewBalanceRepository() *BalanceRepository {
	return &BalanceRepository{balances: make(map[primitive.ObjectID]*models.PointBalance)}
}

// Get returns the balance of a user
func (r *BalanceRepository) Get(_ context.Context, userID primitive.ObjectID) (*models.PointBalance, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	b, ok := r.balances[userID]
	if !ok {
		return nil, repositories.ErrNotFound
	}
	c := *b
	return &c, nil
}

// Credit adds points, creating the balance if needed
func (r *BalanceRepository) Credit(_ context.Context, userID primitive.ObjectID, source models.TransactionType, amount int64, demo bool) (*models.PointBalance, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	b, ok := r.balances[userID]
	if !ok {
		b = &models.PointBalance{UserID: userID}
		r.balances[userID] = b
	}
	b.Total += amount
	if source == models.TransactionPurchase {
		b.Purchased += amount
	} else {
		b.Earned += amount
	}
	if demo {
		b.Demo += amount
	} else {
		b.Real += amount
	}
	b.UpdatedAt = time.Now()
	c := *b
	return &c, nil
}

// Debit spends points directly from the total
func (r *BalanceRepository) Debit(_ context.Context, userID primitive.ObjectID, amount int64) (*models.PointBalance, error) {
	return r.apply(userID, func(b *models.PointBalance) bool {
		if b.Total < amount {
			return false
		}
		b.Total -= amount
		b.Spent += amount
		return true
	})
}

// Reserve moves points from the total into the reserved bucket
func (r *BalanceRepository) Reserve(_ context.Context, userID primitive.ObjectID, amount int64) (*models.PointBalance, error) {
	return r.apply(userID, func(b *models.PointBalance) bool {
		if b.Total < amount {
			return false
		}
		b.Total -= amount
		b.Reserved += amount
		return true
	})
}

// Settle turns reserved points into spent points
func (r *BalanceRepository) Settle(_ context.Context, userID primitive.ObjectID, amount int64) (*models.PointBalance, error) {
	return r.apply(userID, func(b *models.PointBalance) bool {
		if b.Reserved < amount {
			return false
		}
		b.Reserved -= amount
		b.Spent += amount
		return true
	})
}

// Restore returns reserved points to the total
func (r *BalanceRepository) Restore(_ context.Context, userID primitive.ObjectID, amount int64) (*models.PointBalance, error) {
	return r.apply(userID, func(b *models.PointBalance) bool {
		if b.Reserved < amount {
			return false
		}
		b.Reserved -= amount
		b.Total += amount
		return true
	})
}

func (r *BalanceRepository) apply(userID primitive.ObjectID, fn func(*models.PointBalance) bool) (*models.PointBalance, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	b, ok := r.balances[userID]
	if !ok {
		return nil, repositories.ErrConditionFailed
	}
	next := *b
	if !fn(&next) {
		return nil, repositories.ErrConditionFailed
	}
	next.UpdatedAt = time.Now()
	r.balances[userID] = &next
	c := next
	return &c, nil
}
