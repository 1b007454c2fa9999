package services

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"strings"
	"time"

	"github.com/ArowuTest/bridgetunes-rewards-backend/internal/metrics"
	"github.com/ArowuTest/bridgetunes-rewards-backend/internal/models"
	"github.com/ArowuTest/bridgetunes-rewards-backend/internal/repositories"
	"github.com/ArowuTest/bridgetunes-rewards-backend/internal/utils"
	"go.mongodb.org/mongo-driver/bson/primitive"
)

// RedemptionResult is returned after a successful redemption
type RedemptionResult struct {
	UserReward *models.UserReward   `json:"userReward"`
	Balance    *models.PointBalance `json:"balance"`
}

// RewardService handles the reward catalog and redemptions
type RewardService struct {
	rewardRepo     repositories.RewardRepository
	userRewardRepo repositories.UserRewardRepository
	userRepo       repositories.UserRepository
	ledger         *LedgerService
	notifier       Notifier
	metrics        *metrics.Metrics
	codeTTL        time.Duration
	now            func() time.Time
}

// NewRewardService creates a new RewardService
func NewRewardService(repos *repositories.Registry, ledger *LedgerService, notifier Notifier, m *metrics.Metrics, codeTTLDays int) *RewardService {
	return &RewardService{
		rewardRepo:     repos.Rewards,
		userRewardRepo: repos.UserRewards,
		userRepo:       repos.Users,
		ledger:         ledger,
		notifier:       notifier,
		metrics:        m,
		codeTTL:        time.Duration(codeTTLDays) * 24 * time.Hour,
		now:            time.Now,
	}
}

// ListRewards returns the active, unexpired rewards visible to the user
func (s *RewardService) ListRewards(ctx context.Context, userID primitive.ObjectID, category string) ([]*models.Reward, error) {
	now := s.now()
	_, status, err := loadAccess(ctx, s.userRepo, userID, now)
	if err != nil {
		return nil, err
	}
	if err := requireViewer(status.CanViewRewards); err != nil {
		return nil, err
	}

	rewards, err := s.rewardRepo.FindAll(ctx, models.RewardFilter{Category: strings.ToLower(category), ActiveOnly: true})
	if err != nil {
		return nil, fmt.Errorf("failed to list rewards: %w", err)
	}
	visible := make([]*models.Reward, 0, len(rewards))
	for _, r := range rewards {
		if !r.IsExpired(now) {
			visible = append(visible, r)
		}
	}
	return visible, nil
}

// GetReward returns a reward by ID
func (s *RewardService) GetReward(ctx context.Context, id primitive.ObjectID) (*models.Reward, error) {
	reward, err := s.rewardRepo.FindByID(ctx, id)
	if errors.Is(err, repositories.ErrNotFound) {
		return nil, ErrRewardNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("failed to load reward: %w", err)
	}
	return reward, nil
}

// Redeem exchanges points for one unit of a reward. Either every step applies or, on failure,
// balance and stock are left as they were.
func (s *RewardService) Redeem(ctx context.Context, userID, rewardID primitive.ObjectID) (*RedemptionResult, error) {
	var result *RedemptionResult
	err := s.ledger.WithUserLock(ctx, userID, func(ctx context.Context) error {
		var err error
		result, err = s.redeem(ctx, userID, rewardID)
		return err
	})
	if err != nil {
		s.metrics.Redemption(outcome(err))
		slog.Warn("Redemption rejected", "userId", userID.Hex(), "rewardId", rewardID.Hex(), "error", err)
		return nil, err
	}
	s.metrics.Redemption("success")

	ur := result.UserReward
	notify(ctx, s.notifier, userID, models.NotificationReward, "Reward redeemed",
		fmt.Sprintf("You redeemed %s for %d points. Your code is %s.", ur.RewardName, ur.PointsSpent, ur.RedemptionCode),
		map[string]string{"rewardId": rewardID.Hex(), "userRewardId": ur.ID.Hex(), "redemptionCode": ur.RedemptionCode})
	return result, nil
}

func (s *RewardService) redeem(ctx context.Context, userID, rewardID primitive.ObjectID) (*RedemptionResult, error) {
	now := s.now()
	_, status, err := loadAccess(ctx, s.userRepo, userID, now)
	if err != nil {
		return nil, err
	}
	if err := requireSubscribed(status, status.CanRedeem); err != nil {
		return nil, err
	}

	reward, err := s.GetReward(ctx, rewardID)
	if err != nil {
		return nil, err
	}
	switch {
	case !reward.IsActive:
		return nil, ErrRewardInactive
	case reward.IsExpired(now):
		return nil, ErrRewardExpired
	case reward.Stock <= 0:
		return nil, ErrOutOfStock
	}

	hold, err := s.ledger.Reserve(ctx, userID, reward.PointsRequired, "Redeemed "+reward.Name)
	if err != nil {
		return nil, err
	}

	if err := s.rewardRepo.DecrementStock(ctx, rewardID); err != nil {
		s.ledger.release(ctx, hold)
		if errors.Is(err, repositories.ErrConditionFailed) {
			return nil, ErrOutOfStock
		}
		return nil, fmt.Errorf("failed to decrement stock: %w", err)
	}

	userReward := &models.UserReward{
		UserID:         userID,
		RewardID:       rewardID,
		RewardName:     reward.Name,
		Category:       reward.Category,
		PointsSpent:    reward.PointsRequired,
		RedemptionCode: utils.RedemptionCode(reward.Category),
		RedeemedAt:     now,
		ExpiresAt:      now.Add(s.codeTTL),
	}
	if err := s.userRewardRepo.Create(ctx, userReward); err != nil {
		s.restoreStock(ctx, rewardID)
		s.ledger.release(ctx, hold)
		return nil, fmt.Errorf("failed to create user reward: %w", err)
	}

	if _, err := s.ledger.Commit(ctx, hold.ID, map[string]string{
		"rewardId":       rewardID.Hex(),
		"userRewardId":   userReward.ID.Hex(),
		"redemptionCode": userReward.RedemptionCode,
	}); err != nil {
		if !s.ledger.release(ctx, hold) {
			slog.Error("CRITICAL: reward redeemed but points not committed", "error", err, "userId", userID.Hex(), "holdId", hold.ID.Hex(), "code", userReward.RedemptionCode)
			return nil, err
		}
		s.restoreStock(ctx, rewardID)
		if derr := s.userRewardRepo.Delete(ctx, userReward.ID); derr != nil {
			slog.Error("Failed to remove uncommitted user reward", "error", derr, "userRewardId", userReward.ID.Hex())
		}
		return nil, err
	}

	balance, err := s.ledger.GetBalance(ctx, userID)
	if err != nil {
		return nil, err
	}
	slog.Info("Reward redeemed", "userId", userID.Hex(), "rewardId", rewardID.Hex(), "code", userReward.RedemptionCode, "balance", balance.Total)
	return &RedemptionResult{UserReward: userReward, Balance: balance}, nil
}

func (s *RewardService) restoreStock(ctx context.Context, rewardID primitive.ObjectID) {
	if err := s.rewardRepo.IncrementStock(ctx, rewardID); err != nil {
		slog.Error("Failed to restore reward stock", "error", err, "rewardId", rewardID.Hex())
	}
}

// ListUserRewards returns the rewards redeemed by a user
func (s *RewardService) ListUserRewards(ctx context.Context, userID primitive.ObjectID) ([]*models.UserReward, error) {
	rewards, err := s.userRewardRepo.FindByUserID(ctx, userID)
	if err != nil {
		return nil, fmt.Errorf("failed to list user rewards: %w", err)
	}
	return rewards, nil
}

// UseReward marks a redeemed reward as used
func (s *RewardService) UseReward(ctx context.Context, userID, userRewardID primitive.ObjectID) (*models.UserReward, error) {
	userReward, err := s.userRewardRepo.FindByID(ctx, userRewardID)
	if errors.Is(err, repositories.ErrNotFound) || (err == nil && userReward.UserID != userID) {
		return nil, ErrUserRewardNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("failed to load user reward: %w", err)
	}

	now := s.now()
	if userReward.IsUsed {
		return nil, ErrRewardAlreadyUsed
	}
	if now.After(userReward.ExpiresAt) {
		return nil, ErrRedemptionExpired
	}

	if err := s.userRewardRepo.MarkUsed(ctx, userRewardID, now); err != nil {
		if errors.Is(err, repositories.ErrConditionFailed) {
			return nil, ErrRewardAlreadyUsed
		}
		return nil, fmt.Errorf("failed to mark reward used: %w", err)
	}
	userReward.IsUsed = true
	userReward.UsedAt = &now
	return userReward, nil
}

// CreateReward adds a reward to the catalog
func (s *RewardService) CreateReward(ctx context.Context, reward *models.Reward) (*models.Reward, error) {
	if err := validateReward(reward); err != nil {
		return nil, err
	}
	now := s.now()
	reward.ID = primitive.NilObjectID
	reward.Category = strings.ToLower(reward.Category)
	reward.CreatedAt = now
	reward.UpdatedAt = now
	if err := s.rewardRepo.Create(ctx, reward); err != nil {
		return nil, fmt.Errorf("failed to create reward: %w", err)
	}
	slog.Info("Reward created", "rewardId", reward.ID.Hex(), "name", reward.Name, "stock", reward.Stock)
	return reward, nil
}

// UpdateReward replaces the editable fields of a reward
func (s *RewardService) UpdateReward(ctx context.Context, id primitive.ObjectID, update *models.Reward) (*models.Reward, error) {
	if err := validateReward(update); err != nil {
		return nil, err
	}
	reward, err := s.GetReward(ctx, id)
	if err != nil {
		return nil, err
	}
	reward.Name = update.Name
	reward.Description = update.Description
	reward.Category = strings.ToLower(update.Category)
	reward.PointsRequired = update.PointsRequired
	reward.Stock = update.Stock
	reward.IsActive = update.IsActive
	reward.ImageURL = update.ImageURL
	reward.ExpirationDate = update.ExpirationDate
	reward.UpdatedAt = s.now()

	if err := s.rewardRepo.Update(ctx, reward); err != nil {
		if errors.Is(err, repositories.ErrNotFound) {
			return nil, ErrRewardNotFound
		}
		return nil, fmt.Errorf("failed to update reward: %w", err)
	}
	return reward, nil
}

func validateReward(r *models.Reward) error {
	if strings.TrimSpace(r.Name) == "" || strings.TrimSpace(r.Category) == "" || r.PointsRequired <= 0 || r.Stock < 0 {
		return ErrInvalidReward
	}
	return nil
}

// outcome labels a failure for metrics
func outcome(err error) string {
	var e *Error
	if errors.As(err, &e) {
		return strings.ToLower(e.Code)
	}
	return "error"
}
