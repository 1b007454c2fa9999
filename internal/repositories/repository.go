package repositories

import (
	"context"
	"errors"
	"time"

	"github.com/ArowuTest/bridgetunes-rewards-backend/internal/models"
	"go.mongodb.org/mongo-driver/bson/primitive"
)

var (
	// ErrNotFound is returned when no document matches the lookup
	ErrNotFound = errors.New("document not found")
	// ErrDuplicateKey is returned when an insert violates a unique index
	ErrDuplicateKey = errors.New("duplicate key")
	// ErrConditionFailed is returned when a guarded update matched no document
	ErrConditionFailed = errors.New("update condition not met")
)

// UserRepository defines the interface for user data operations
type UserRepository interface {
	Create(ctx context.Context, user *models.User) error
	FindByEmail(ctx context.Context, email string) (*models.User, error)
	FindByID(ctx context.Context, id primitive.ObjectID) (*models.User, error)
	Update(ctx context.Context, user *models.User) error
	Touch(ctx context.Context, id primitive.ObjectID, at time.Time) error
	Count(ctx context.Context) (int64, error)
}

// BalanceRepository owns the aggregate point counters. Every method is a single
// atomic update that keeps Total == Earned + Purchased - Spent - Reserved.
type BalanceRepository interface {
	Get(ctx context.Context, userID primitive.ObjectID) (*models.PointBalance, error)
	// Credit adds amount to total and to earned or purchased depending on source,
	// and to demo or real depending on demo. It creates the balance when missing.
	Credit(ctx context.Context, userID primitive.ObjectID, source models.TransactionType, amount int64, demo bool) (*models.PointBalance, error)
	// Debit moves amount from total to spent when total >= amount.
	Debit(ctx context.Context, userID primitive.ObjectID, amount int64) (*models.PointBalance, error)
	// Reserve moves amount from total to reserved when total >= amount.
	Reserve(ctx context.Context, userID primitive.ObjectID, amount int64) (*models.PointBalance, error)
	// Settle moves amount from reserved to spent.
	Settle(ctx context.Context, userID primitive.ObjectID, amount int64) (*models.PointBalance, error)
	// Restore moves amount from reserved back to total.
	Restore(ctx context.Context, userID primitive.ObjectID, amount int64) (*models.PointBalance, error)
}

// PointHoldRepository defines the interface for point reservations
type PointHoldRepository interface {
	Create(ctx context.Context, hold *models.PointHold) error
	FindByID(ctx context.Context, id primitive.ObjectID) (*models.PointHold, error)
	// Settle moves a HELD hold to status, failing with ErrConditionFailed otherwise.
	Settle(ctx context.Context, id primitive.ObjectID, status models.HoldStatus, at time.Time) (*models.PointHold, error)
}

// PointTransactionRepository defines the interface for point transaction operations
type PointTransactionRepository interface {
	Create(ctx context.Context, transaction *models.PointTransaction) error
	FindByUserID(ctx context.Context, userID primitive.ObjectID, page, limit int) ([]*models.PointTransaction, error)
	CountByUserID(ctx context.Context, userID primitive.ObjectID) (int64, error)
}

// RewardRepository defines the interface for the reward catalog
type RewardRepository interface {
	Create(ctx context.Context, reward *models.Reward) error
	FindByID(ctx context.Context, id primitive.ObjectID) (*models.Reward, error)
	FindByName(ctx context.Context, name string) (*models.Reward, error)
	FindAll(ctx context.Context, filter models.RewardFilter) ([]*models.Reward, error)
	Update(ctx context.Context, reward *models.Reward) error
	// DecrementStock takes one unit when the reward is active with stock left.
	DecrementStock(ctx context.Context, id primitive.ObjectID) error
	IncrementStock(ctx context.Context, id primitive.ObjectID) error
	Count(ctx context.Context) (int64, error)
}

// UserRewardRepository defines the interface for redeemed rewards
type UserRewardRepository interface {
	Create(ctx context.Context, userReward *models.UserReward) error
	FindByID(ctx context.Context, id primitive.ObjectID) (*models.UserReward, error)
	FindByUserID(ctx context.Context, userID primitive.ObjectID) ([]*models.UserReward, error)
	// MarkUsed flags an unused reward as used, failing with ErrConditionFailed otherwise.
	MarkUsed(ctx context.Context, id primitive.ObjectID, at time.Time) error
	Delete(ctx context.Context, id primitive.ObjectID) error
}

// RaffleRepository defines the interface for raffle data operations
type RaffleRepository interface {
	Create(ctx context.Context, raffle *models.Raffle) error
	FindByID(ctx context.Context, id primitive.ObjectID) (*models.Raffle, error)
	FindAll(ctx context.Context, activeOnly bool) ([]*models.Raffle, error)
	// IncrementParticipants adds a participant to an open raffle below its cap.
	IncrementParticipants(ctx context.Context, id primitive.ObjectID) error
	DecrementParticipants(ctx context.Context, id primitive.ObjectID) error
	// MarkDrawn closes an OPEN raffle with its result.
	MarkDrawn(ctx context.Context, raffle *models.Raffle) error
	// UpdateWinner replaces the winner and execution log of a DRAWN raffle.
	UpdateWinner(ctx context.Context, raffle *models.Raffle) error
}

// ParticipationRepository defines the interface for raffle entries
type ParticipationRepository interface {
	Create(ctx context.Context, participation *models.UserRaffleParticipation) error
	FindByID(ctx context.Context, id primitive.ObjectID) (*models.UserRaffleParticipation, error)
	FindByRaffleAndUser(ctx context.Context, raffleID, userID primitive.ObjectID) (*models.UserRaffleParticipation, error)
	FindByRaffleID(ctx context.Context, raffleID primitive.ObjectID) ([]*models.UserRaffleParticipation, error)
	FindByUserID(ctx context.Context, userID primitive.ObjectID) ([]*models.UserRaffleParticipation, error)
	UpdateStatus(ctx context.Context, id primitive.ObjectID, status models.ParticipationStatus, prize string, at time.Time) error
	// ResolveRaffle marks winnerID as winner and every other pending entry of the raffle as not_winner.
	ResolveRaffle(ctx context.Context, raffleID, winnerID primitive.ObjectID, prize string, at time.Time) error
	Delete(ctx context.Context, id primitive.ObjectID) error
}

// SurveyRepository defines the interface for survey definitions
type SurveyRepository interface {
	Create(ctx context.Context, survey *models.Survey) error
	FindByID(ctx context.Context, id primitive.ObjectID) (*models.Survey, error)
	FindActive(ctx context.Context, now time.Time) ([]*models.Survey, error)
}

// SurveyResponseRepository defines the interface for completed surveys
type SurveyResponseRepository interface {
	Create(ctx context.Context, response *models.SurveyResponse) error
	FindBySurveyAndUser(ctx context.Context, surveyID, userID primitive.ObjectID) (*models.SurveyResponse, error)
	FindByUserID(ctx context.Context, userID primitive.ObjectID) ([]*models.SurveyResponse, error)
	Delete(ctx context.Context, id primitive.ObjectID) error
}

// TriviaQuestionRepository defines the interface for trivia questions
type TriviaQuestionRepository interface {
	Create(ctx context.Context, question *models.TriviaQuestion) error
	FindByID(ctx context.Context, id primitive.ObjectID) (*models.TriviaQuestion, error)
	FindActive(ctx context.Context, category string) ([]*models.TriviaQuestion, error)
}

// TriviaAnswerRepository defines the interface for trivia answers
type TriviaAnswerRepository interface {
	Create(ctx context.Context, answer *models.TriviaAnswer) error
	FindByUserID(ctx context.Context, userID primitive.ObjectID) ([]*models.TriviaAnswer, error)
	Delete(ctx context.Context, id primitive.ObjectID) error
}

// PointPackageRepository defines the interface for purchasable point packages
type PointPackageRepository interface {
	Create(ctx context.Context, pkg *models.PointPackage) error
	FindByID(ctx context.Context, id primitive.ObjectID) (*models.PointPackage, error)
	FindAll(ctx context.Context, activeOnly bool) ([]*models.PointPackage, error)
}

// PurchaseRepository defines the interface for purchase data operations
type PurchaseRepository interface {
	Create(ctx context.Context, purchase *models.Purchase) error
	FindByID(ctx context.Context, id primitive.ObjectID) (*models.Purchase, error)
	FindByUserID(ctx context.Context, userID primitive.ObjectID, page, limit int) ([]*models.Purchase, error)
	UpdateStatus(ctx context.Context, id primitive.ObjectID, status models.PurchaseStatus, reason string, at time.Time) error
}

// NotificationRepository defines the interface for notification data operations
type NotificationRepository interface {
	Create(ctx context.Context, notification *models.Notification) error
	FindByID(ctx context.Context, id primitive.ObjectID) (*models.Notification, error)
	FindByUserID(ctx context.Context, userID primitive.ObjectID, unreadOnly bool, page, limit int) ([]*models.Notification, error)
	CountUnread(ctx context.Context, userID primitive.ObjectID) (int64, error)
	UpdateDelivery(ctx context.Context, id primitive.ObjectID, gateway, status, messageID string) error
	// MarkRead, MarkAllRead and Delete only touch notifications owned by userID.
	MarkRead(ctx context.Context, userID, id primitive.ObjectID, at time.Time) error
	MarkAllRead(ctx context.Context, userID primitive.ObjectID, at time.Time) (int64, error)
	Delete(ctx context.Context, userID, id primitive.ObjectID) error
}

// SystemSettingsRepository defines the interface for system settings operations
type SystemSettingsRepository interface {
	GetSettings(ctx context.Context) (*models.SystemSettings, error)
	UpdateSettings(ctx context.Context, settings *models.SystemSettings) error
}

// Registry bundles one implementation of every repository
type Registry struct {
	Users           UserRepository
	Balances        BalanceRepository
	Holds           PointHoldRepository
	Transactions    PointTransactionRepository
	Rewards         RewardRepository
	UserRewards     UserRewardRepository
	Raffles         RaffleRepository
	Participations  ParticipationRepository
	Surveys         SurveyRepository
	SurveyResponses SurveyResponseRepository
	TriviaQuestions TriviaQuestionRepository
	TriviaAnswers   TriviaAnswerRepository
	Packages        PointPackageRepository
	Purchases       PurchaseRepository
	Notifications   NotificationRepository
	Settings        SystemSettingsRepository
}
