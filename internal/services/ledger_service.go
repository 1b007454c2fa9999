package services

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"github.com/ArowuTest/bridgetunes-rewards-backend/internal/metrics"
	"github.com/ArowuTest/bridgetunes-rewards-backend/internal/models"
	"github.com/ArowuTest/bridgetunes-rewards-backend/internal/repositories"
	"go.mongodb.org/mongo-driver/bson/primitive"
)

// LedgerService is the single owner of balance mutations. Every method validates its own
// preconditions and applies one conditional update, so callers never check balances themselves.
type LedgerService struct {
	balances     repositories.BalanceRepository
	holds        repositories.PointHoldRepository
	transactions repositories.PointTransactionRepository
	users        repositories.UserRepository
	metrics      *metrics.Metrics
	locks        *userLocks
	now          func() time.Time
}

// NewLedgerService creates a new LedgerService
func NewLedgerService(repos *repositories.Registry, m *metrics.Metrics) *LedgerService {
	return &LedgerService{
		balances:     repos.Balances,
		holds:        repos.Holds,
		transactions: repos.Transactions,
		users:        repos.Users,
		metrics:      m,
		locks:        newUserLocks(),
		now:          time.Now,
	}
}

// WithUserLock runs fn while holding the in-process lock of userID
func (s *LedgerService) WithUserLock(ctx context.Context, userID primitive.ObjectID, fn func(ctx context.Context) error) error {
	release, err := s.locks.acquire(ctx, userID)
	if err != nil {
		return err
	}
	defer release()
	return fn(ctx)
}

// GetBalance returns the balance of a user, or a zero balance if none exists yet
func (s *LedgerService) GetBalance(ctx context.Context, userID primitive.ObjectID) (*models.PointBalance, error) {
	balance, err := s.balances.Get(ctx, userID)
	if errors.Is(err, repositories.ErrNotFound) {
		return &models.PointBalance{UserID: userID}, nil
	}
	if err != nil {
		return nil, fmt.Errorf("failed to load balance: %w", err)
	}
	return balance, nil
}

// GetTransactions returns a page of a user's transactions, newest first, and the total count
func (s *LedgerService) GetTransactions(ctx context.Context, userID primitive.ObjectID, page, limit int) ([]*models.PointTransaction, int64, error) {
	transactions, err := s.transactions.FindByUserID(ctx, userID, page, limit)
	if err != nil {
		return nil, 0, fmt.Errorf("failed to load transactions: %w", err)
	}
	total, err := s.transactions.CountByUserID(ctx, userID)
	if err != nil {
		return nil, 0, fmt.Errorf("failed to count transactions: %w", err)
	}
	return transactions, total, nil
}

// Earn credits points earned through activity
func (s *LedgerService) Earn(ctx context.Context, userID primitive.ObjectID, amount int64, description string, metadata map[string]string) (*models.PointTransaction, error) {
	if amount <= 0 {
		return nil, ErrInvalidAmount
	}
	user, err := s.users.FindByID(ctx, userID)
	if err != nil {
		if errors.Is(err, repositories.ErrNotFound) {
			return nil, ErrUserNotFound
		}
		return nil, fmt.Errorf("failed to load user: %w", err)
	}
	demo := user.SubscriptionStatus == models.SubscriptionDemo
	balance, err := s.balances.Credit(ctx, userID, models.TransactionEarn, amount, demo)
	if err != nil {
		return nil, fmt.Errorf("failed to credit points: %w", err)
	}
	return s.record(ctx, userID, models.TransactionEarn, amount, description, metadata, balance)
}

// Purchase credits bought points
func (s *LedgerService) Purchase(ctx context.Context, userID primitive.ObjectID, amount int64, description string, metadata map[string]string) (*models.PointTransaction, error) {
	if amount <= 0 {
		return nil, ErrInvalidAmount
	}
	balance, err := s.balances.Credit(ctx, userID, models.TransactionPurchase, amount, false)
	if err != nil {
		return nil, fmt.Errorf("failed to credit purchased points: %w", err)
	}
	return s.record(ctx, userID, models.TransactionPurchase, amount, description, metadata, balance)
}

// Spend debits points in a single step
func (s *LedgerService) Spend(ctx context.Context, userID primitive.ObjectID, amount int64, description string, metadata map[string]string) (*models.PointTransaction, error) {
	if amount <= 0 {
		return nil, ErrInvalidAmount
	}
	balance, err := s.balances.Debit(ctx, userID, amount)
	if errors.Is(err, repositories.ErrConditionFailed) {
		return nil, ErrInsufficientPoints
	}
	if err != nil {
		return nil, fmt.Errorf("failed to debit points: %w", err)
	}
	return s.record(ctx, userID, models.TransactionSpend, amount, description, metadata, balance)
}

// Reserve sets amount aside for a later Commit or Release
func (s *LedgerService) Reserve(ctx context.Context, userID primitive.ObjectID, amount int64, description string) (*models.PointHold, error) {
	if amount <= 0 {
		return nil, ErrInvalidAmount
	}
	if _, err := s.balances.Reserve(ctx, userID, amount); err != nil {
		if errors.Is(err, repositories.ErrConditionFailed) {
			return nil, ErrInsufficientPoints
		}
		return nil, fmt.Errorf("failed to reserve points: %w", err)
	}

	hold := &models.PointHold{
		ID:          primitive.NewObjectID(),
		UserID:      userID,
		Amount:      amount,
		Description: description,
		Status:      models.HoldStatusHeld,
		CreatedAt:   s.now(),
	}
	if err := s.holds.Create(ctx, hold); err != nil {
		if _, restoreErr := s.balances.Restore(ctx, userID, amount); restoreErr != nil {
			slog.Error("Failed to restore points after hold creation failure", "error", restoreErr, "userId", userID.Hex(), "amount", amount)
		}
		return nil, fmt.Errorf("failed to create point hold: %w", err)
	}
	return hold, nil
}

// Commit turns a HELD hold into a SPEND transaction
func (s *LedgerService) Commit(ctx context.Context, holdID primitive.ObjectID, metadata map[string]string) (*models.PointTransaction, error) {
	hold, err := s.settle(ctx, holdID, models.HoldStatusCommitted)
	if err != nil {
		return nil, err
	}
	balance, err := s.balances.Settle(ctx, hold.UserID, hold.Amount)
	if err != nil {
		slog.Error("CRITICAL: hold committed but reserved points not settled", "error", err, "holdId", holdID.Hex(), "userId", hold.UserID.Hex())
		return nil, fmt.Errorf("failed to settle reserved points: %w", err)
	}
	meta := map[string]string{"holdId": holdID.Hex()}
	for k, v := range metadata {
		meta[k] = v
	}
	return s.record(ctx, hold.UserID, models.TransactionSpend, hold.Amount, hold.Description, meta, balance)
}

// Release returns the points of a HELD hold to the balance
func (s *LedgerService) Release(ctx context.Context, holdID primitive.ObjectID) error {
	hold, err := s.settle(ctx, holdID, models.HoldStatusReleased)
	if err != nil {
		return err
	}
	if _, err := s.balances.Restore(ctx, hold.UserID, hold.Amount); err != nil {
		slog.Error("CRITICAL: hold released but reserved points not restored", "error", err, "holdId", holdID.Hex(), "userId", hold.UserID.Hex())
		return fmt.Errorf("failed to restore reserved points: %w", err)
	}
	return nil
}

// release is Release for compensation paths, where the original error wins.
// It reports whether the points went back to the balance.
func (s *LedgerService) release(ctx context.Context, hold *models.PointHold) bool {
	if err := s.Release(ctx, hold.ID); err != nil {
		slog.Error("Failed to release point hold", "error", err, "holdId", hold.ID.Hex(), "userId", hold.UserID.Hex())
		return false
	}
	return true
}

func (s *LedgerService) settle(ctx context.Context, holdID primitive.ObjectID, status models.HoldStatus) (*models.PointHold, error) {
	hold, err := s.holds.Settle(ctx, holdID, status, s.now())
	switch {
	case errors.Is(err, repositories.ErrNotFound):
		return nil, ErrHoldNotFound
	case errors.Is(err, repositories.ErrConditionFailed):
		return nil, ErrHoldNotActive
	case err != nil:
		return nil, fmt.Errorf("failed to settle point hold: %w", err)
	}
	return hold, nil
}

func (s *LedgerService) record(ctx context.Context, userID primitive.ObjectID, txType models.TransactionType, amount int64, description string, metadata map[string]string, balance *models.PointBalance) (*models.PointTransaction, error) {
	tx := &models.PointTransaction{
		UserID:       userID,
		Type:         txType,
		Amount:       amount,
		Description:  description,
		Metadata:     metadata,
		BalanceAfter: balance.Total,
		CreatedAt:    s.now(),
	}
	if err := s.transactions.Create(ctx, tx); err != nil {
		// The balance already moved; the missing entry only affects history
		slog.Error("Failed to record point transaction", "error", err, "userId", userID.Hex(), "type", txType, "amount", amount)
		return tx, nil
	}
	s.metrics.Points(string(txType), amount)
	slog.Info("Points recorded", "userId", userID.Hex(), "type", txType, "amount", amount, "balance", balance.Total)
	return tx, nil
}
