package services

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"github.com/ArowuTest/bridgetunes-rewards-backend/internal/access"
	"github.com/ArowuTest/bridgetunes-rewards-backend/internal/models"
	"github.com/ArowuTest/bridgetunes-rewards-backend/internal/repositories"
	"github.com/ArowuTest/bridgetunes-rewards-backend/internal/utils"
	"github.com/ArowuTest/bridgetunes-rewards-backend/pkg/payments"
	"go.mongodb.org/mongo-driver/bson/primitive"
)

// Profile is the user as shown to themselves
type Profile struct {
	User    *models.User         `json:"user"`
	Access  models.AccessStatus  `json:"access"`
	Balance *models.PointBalance `json:"balance"`
}

// UserService handles profile and subscription logic
type UserService struct {
	userRepo repositories.UserRepository
	ledger   *LedgerService
	payments PaymentProcessor
	notifier Notifier
	price    float64
	currency string
	now      func() time.Time
}

// NewUserService creates a new UserService
func NewUserService(userRepo repositories.UserRepository, ledger *LedgerService, processor PaymentProcessor, notifier Notifier, price float64, currency string) *UserService {
	return &UserService{
		userRepo: userRepo,
		ledger:   ledger,
		payments: processor,
		notifier: notifier,
		price:    price,
		currency: currency,
		now:      time.Now,
	}
}

func (s *UserService) getUser(ctx context.Context, userID primitive.ObjectID) (*models.User, error) {
	user, err := s.userRepo.FindByID(ctx, userID)
	if errors.Is(err, repositories.ErrNotFound) {
		return nil, ErrUserNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("failed to load user: %w", err)
	}
	return user, nil
}

// GetProfile returns the user with its access status and balance, and records activity
func (s *UserService) GetProfile(ctx context.Context, userID primitive.ObjectID) (*Profile, error) {
	user, err := s.getUser(ctx, userID)
	if err != nil {
		return nil, err
	}
	now := s.now()
	balance, err := s.ledger.GetBalance(ctx, userID)
	if err != nil {
		return nil, err
	}
	if err := s.userRepo.Touch(ctx, userID, now); err != nil {
		slog.Warn("Failed to record user activity", "error", err, "userId", userID.Hex())
	}
	return &Profile{User: user, Access: access.Evaluate(user, now), Balance: balance}, nil
}

// GetAccessStatus evaluates the user's access at the current time
func (s *UserService) GetAccessStatus(ctx context.Context, userID primitive.ObjectID) (models.AccessStatus, error) {
	user, err := s.getUser(ctx, userID)
	if err != nil {
		return models.AccessStatus{}, err
	}
	return access.Evaluate(user, s.now()), nil
}

// Subscribe charges the subscription price and upgrades the user
func (s *UserService) Subscribe(ctx context.Context, userID primitive.ObjectID) (*models.User, error) {
	var user *models.User
	err := s.ledger.WithUserLock(ctx, userID, func(ctx context.Context) error {
		var err error
		user, err = s.getUser(ctx, userID)
		if err != nil {
			return err
		}
		if user.SubscriptionStatus == models.SubscriptionSubscribed {
			return ErrAlreadySubscribed
		}

		ref := utils.PaymentReference("SUB")
		if _, err := s.payments.Charge(ctx, payments.ChargeRequest{
			Reference:   ref,
			CustomerID:  userID.Hex(),
			Amount:      s.price,
			Currency:    s.currency,
			Description: "Bridgetunes rewards subscription",
		}); err != nil {
			slog.Warn("Subscription payment failed", "error", err, "userId", userID.Hex(), "paymentRef", ref)
			return ErrPaymentFailed
		}

		now := s.now()
		user.SubscriptionStatus = models.SubscriptionSubscribed
		user.SubscribedAt = &now
		user.UpdatedAt = now
		if err := s.userRepo.Update(ctx, user); err != nil {
			slog.Error("CRITICAL: subscription charged but user not upgraded", "error", err, "userId", userID.Hex(), "paymentRef", ref)
			return fmt.Errorf("failed to update user: %w", err)
		}
		slog.Info("User subscribed", "userId", userID.Hex(), "paymentRef", ref)
		return nil
	})
	if err != nil {
		return nil, err
	}
	notify(ctx, s.notifier, userID, models.NotificationSystem, "Subscription active",
		"Your subscription is active. Rewards redemption and raffles are now unlocked.", nil)
	return user, nil
}

// CancelSubscription downgrades a subscribed user
func (s *UserService) CancelSubscription(ctx context.Context, userID primitive.ObjectID) (*models.User, error) {
	user, err := s.getUser(ctx, userID)
	if err != nil {
		return nil, err
	}
	if user.SubscriptionStatus != models.SubscriptionSubscribed {
		return nil, ErrNotSubscribed
	}
	user.SubscriptionStatus = models.SubscriptionNotSubscribed
	user.UpdatedAt = s.now()
	if err := s.userRepo.Update(ctx, user); err != nil {
		return nil, fmt.Errorf("failed to update user: %w", err)
	}
	slog.Info("Subscription cancelled", "userId", userID.Hex())
	return user, nil
}

// GrantPoints credits points to a user on behalf of an admin
func (s *UserService) GrantPoints(ctx context.Context, adminID, userID primitive.ObjectID, amount int64, reason string) (*models.PointTransaction, error) {
	if reason == "" {
		reason = "Points granted"
	}
	tx, err := s.ledger.Earn(ctx, userID, amount, reason, map[string]string{"grantedBy": adminID.Hex()})
	if err != nil {
		return nil, err
	}
	notify(ctx, s.notifier, userID, models.NotificationPoints, "Points added",
		fmt.Sprintf("%d points were added to your balance: %s", amount, reason), nil)
	return tx, nil
}
