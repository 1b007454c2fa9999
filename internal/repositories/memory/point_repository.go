package memory

import (
	"context"
	"sync"
	"time"

	"github.com/ArowuTest/bridgetunes-rewards-backend/internal/models"
	"github.com/ArowuTest/bridgetunes-rewards-backend/internal/repositories"
	"go.mongodb.org/mongo-driver/bson/primitive"
)

var (
	_ repositories.PointHoldRepository        = (*PointHoldRepository)(nil)
	_ repositories.PointTransactionRepository = (*PointTransactionRepository)(nil)
)

// PointHoldRepository stores point holds in memory
type PointHoldRepository struct {
	mu    sync.Mutex
	holds map[primitive.ObjectID]*models.PointHold
}

// NewPointHoldRepository creates a new PointHoldRepository
func NewPointHoldRepository() *PointHoldRepository {
	return &PointHoldRepository{holds: make(map[primitive.ObjectID]*models.PointHold)}
}

// Create inserts a new hold
func (r *PointHoldRepository) Create(_ context.Context, hold *models.PointHold) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	if hold.ID.IsZero() {
		hold.ID = primitive.NewObjectID()
	}
	c := *hold
	r.holds[hold.ID] = &c
	return nil
}

// FindByID finds a hold by ID
func (r *PointHoldRepository) FindByID(_ context.Context, id primitive.ObjectID) (*models.PointHold, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	h, ok := r.holds[id]
	if !ok {
		return nil, repositories.ErrNotFound
	}
	c := *h
	return &c, nil
}

// Settle transitions a HELD hold
func (r *PointHoldRepository) Settle(_ context.Context, id primitive.ObjectID, status models.HoldStatus, at time.Time) (*models.PointHold, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	h, ok := r.holds[id]
	if !ok {
		return nil, repositories.ErrNotFound
	}
	if h.Status != models.HoldStatusHeld {
		return nil, repositories.ErrConditionFailed
	}
	h.Status = status
	h.SettledAt = &at
	c := *h
	return &c, nil
}

// PointTransactionRepository stores ledger entries in memory
type PointTransactionRepository struct {
	mu           sync.RWMutex
	transactions []*models.PointTransaction
}

// NewPointTransactionRepository creates a new PointTransactionRepository
func NewPointTransactionRepository() *PointTransactionRepository {
	return &PointTransactionRepository{}
}

// Create appends a transaction
func (r *PointTransactionRepository) Create(_ context.Context, transaction *models.PointTransaction) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	transaction.ID = primitive.NewObjectID()
	c := *transaction
	r.transactions = append(r.transactions, &c)
	return nil
}

// FindByUserID returns a user's transactions, newest first
func (r *PointTransactionRepository) FindByUserID(_ context.Context, userID primitive.ObjectID, page, limit int) ([]*models.PointTransaction, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	var out []*models.PointTransaction
	for i := len(r.transactions) - 1; i >= 0; i-- {
		if t := r.transactions[i]; t.UserID == userID {
			c := *t
			out = append(out, &c)
		}
	}
	sortNewestFirst(out, func(t *models.PointTransaction) int64 { return t.CreatedAt.UnixNano() })
	if out == nil {
		out = []*models.PointTransaction{}
	}
	return paginate(out, page, limit), nil
}

// CountByUserID counts a user's transactions
func (r *PointTransactionRepository) CountByUserID(_ context.Context, userID primitive.ObjectID) (int64, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	var n int64
	for _, t := range r.transactions {
		if t.UserID == userID {
			n++
		}
	}
	return n, nil
}
