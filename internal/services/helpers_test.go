package services

import (
	"context"
	"errors"
	"sync"
	"testing"
	"time"

	"github.com/ArowuTest/bridgetunes-rewards-backend/internal/metrics"
	"github.com/ArowuTest/bridgetunes-rewards-backend/internal/models"
	"github.com/ArowuTest/bridgetunes-rewards-backend/internal/repositories"
	"github.com/ArowuTest/bridgetunes-rewards-backend/internal/repositories/memory"
	"github.com/ArowuTest/bridgetunes-rewards-backend/pkg/gateway"
	"github.com/ArowuTest/bridgetunes-rewards-backend/pkg/payments"
	"github.com/google/uuid"
	"github.com/stretchr/testify/require"
	"go.mongodb.org/mongo-driver/bson/primitive"
)

type testClock struct {
	mu sync.Mutex
	t  time.Time
}

func (c *testClock) Now() time.Time {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.t
}

func (c *testClock) Advance(d time.Duration) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.t = c.t.Add(d)
}

type fakePayments struct {
	mu    sync.Mutex
	fail  bool
	calls []payments.ChargeRequest
}

func (f *fakePayments) Charge(_ context.Context, req payments.ChargeRequest) (*payments.ChargeResponse, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.calls = append(f.calls, req)
	if f.fail {
		return nil, payments.ErrDeclined
	}
	return &payments.ChargeResponse{Reference: req.Reference, TransactionID: "TXN-" + uuid.NewString(), Status: "SUCCESS"}, nil
}

type stubGateway struct {
	name string
	fail bool
	sent int
}

func (g *stubGateway) Name() string { return g.name }

func (g *stubGateway) Send(_ context.Context, _ gateway.Message) (string, error) {
	if g.fail {
		return "", errors.New(g.name + " unavailable")
	}
	g.sent++
	return g.name + "-" + uuid.NewString(), nil
}

var errStorage = errors.New("storage unavailable")

type failingUserRewards struct {
	repositories.UserRewardRepository
}

func (failingUserRewards) Create(context.Context, *models.UserReward) error {
	return errStorage
}

type failingParticipations struct {
	repositories.ParticipationRepository
	failCreate      bool
	resolveFailures int
}

func (f *failingParticipations) Create(ctx context.Context, p *models.UserRaffleParticipation) error {
	if f.failCreate {
		return errStorage
	}
	return f.ParticipationRepository.Create(ctx, p)
}

func (f *failingParticipations) ResolveRaffle(ctx context.Context, raffleID, winnerID primitive.ObjectID, prize string, at time.Time) error {
	if f.resolveFailures > 0 {
		f.resolveFailures--
		return errStorage
	}
	return f.ParticipationRepository.ResolveRaffle(ctx, raffleID, winnerID, prize, at)
}

// failingHolds refuses to commit holds but still releases them
type failingHolds struct {
	repositories.PointHoldRepository
}

func (f failingHolds) Settle(ctx context.Context, id primitive.ObjectID, status models.HoldStatus, at time.Time) (*models.PointHold, error) {
	if status == models.HoldStatusCommitted {
		return nil, errStorage
	}
	return f.PointHoldRepository.Settle(ctx, id, status, at)
}

type testEnv struct {
	ctx      context.Context
	clock    *testClock
	repos    *repositories.Registry
	metrics  *metrics.Metrics
	gateway  *gateway.MockGateway
	payments *fakePayments

	settings      *SettingsService
	notifications *NotificationService
	ledger        *LedgerService
	rewards       *RewardService
	raffles       *RaffleService
	surveys       *SurveyService
	trivia        *TriviaService
	purchases     *PurchaseService
	users         *UserService
	auth          *AuthService
}

var testStart = time.Date(2024, 6, 1, 12, 0, 0, 0, time.UTC)

func newTestEnv(t *testing.T) *testEnv {
	t.Helper()
	env := &testEnv{
		ctx:      context.Background(),
		clock:    &testClock{t: testStart},
		repos:    memory.NewRegistry(),
		metrics:  metrics.New(),
		gateway:  gateway.NewMockGateway(),
		payments: &fakePayments{},
	}
	now := env.clock.Now

	env.settings = NewSettingsService(env.repos.Settings, gateway.Mock, 7)
	env.settings.now = now
	env.notifications = NewNotificationService(env.repos.Notifications, env.settings, env.metrics, env.gateway)
	env.notifications.now = now
	env.ledger = NewLedgerService(env.repos, env.metrics)
	env.ledger.now = now
	env.rewards = NewRewardService(env.repos, env.ledger, env.notifications, env.metrics, 30)
	env.rewards.now = now
	env.raffles = NewRaffleService(env.repos, env.ledger, env.notifications, env.metrics)
	env.raffles.now = now
	env.surveys = NewSurveyService(env.repos, env.ledger, env.notifications)
	env.surveys.now = now
	env.trivia = NewTriviaService(env.repos, env.ledger)
	env.trivia.now = now
	env.purchases = NewPurchaseService(env.repos, env.ledger, env.payments, env.notifications)
	env.purchases.now = now
	env.users = NewUserService(env.repos.Users, env.ledger, env.payments, env.notifications, 1000, "NGN")
	env.users.now = now
	env.auth = NewAuthService(env.repos.Users, env.settings, "test-secret", 3600)
	env.auth.now = now
	return env
}

func (e *testEnv) createUser(t *testing.T, status models.SubscriptionStatus) *models.User {
	t.Helper()
	demoExpiresAt := e.clock.Now().AddDate(0, 0, 7)
	user := &models.User{
		Email:              uuid.NewString() + "@example.com",
		Name:               "Test User",
		Role:               models.RoleUser,
		SubscriptionStatus: status,
		CreatedAt:          e.clock.Now(),
	}
	if status == models.SubscriptionDemo {
		user.DemoExpiresAt = &demoExpiresAt
	}
	require.NoError(t, e.repos.Users.Create(e.ctx, user))
	return user
}

func (e *testEnv) fund(t *testing.T, userID primitive.ObjectID, amount int64) {
	t.Helper()
	_, err := e.ledger.Earn(e.ctx, userID, amount, "test funding", nil)
	require.NoError(t, err)
}

func (e *testEnv) balance(t *testing.T, userID primitive.ObjectID) *models.PointBalance {
	t.Helper()
	b, err := e.ledger.GetBalance(e.ctx, userID)
	require.NoError(t, err)
	require.True(t, b.Consistent(), "balance invariant violated: %+v", b)
	return b
}

func (e *testEnv) createReward(t *testing.T, points int64, stock int) *models.Reward {
	t.Helper()
	reward, err := e.rewards.CreateReward(e.ctx, &models.Reward{
		Name:           "Cinema Ticket",
		Category:       "Entertainment",
		PointsRequired: points,
		Stock:          stock,
		IsActive:       true,
	})
	require.NoError(t, err)
	return reward
}

func (e *testEnv) createRaffle(t *testing.T, points int64, maxParticipants int) *models.Raffle {
	t.Helper()
	raffle, err := e.raffles.CreateRaffle(e.ctx, &models.Raffle{
		Name:            "Weekend Raffle",
		Prize:           "Smartphone",
		RequiredPoints:  points,
		MaxParticipants: maxParticipants,
		IsActive:        true,
		StartDate:       e.clock.Now().Add(-time.Hour),
		EndDate:         e.clock.Now().Add(48 * time.Hour),
	})
	require.NoError(t, err)
	return raffle
}

func (e *testEnv) enterRaffle(t *testing.T, raffleID primitive.ObjectID, n int) []*models.UserRaffleParticipation {
	t.Helper()
	entries := make([]*models.UserRaffleParticipation, n)
	for i := range entries {
		user := e.createUser(t, models.SubscriptionSubscribed)
		e.fund(t, user.ID, 500)
		result, err := e.raffles.Participate(e.ctx, user.ID, raffleID)
		require.NoError(t, err)
		entries[i] = result.Participation
	}
	return entries
}

// outcomes returns the winning entries and the number of still pending entries of a raffle
func (e *testEnv) outcomes(t *testing.T, raffleID primitive.ObjectID) ([]*models.UserRaffleParticipation, int) {
	t.Helper()
	entries, err := e.repos.Participations.FindByRaffleID(e.ctx, raffleID)
	require.NoError(t, err)
	var winners []*models.UserRaffleParticipation
	pending := 0
	for _, p := range entries {
		switch p.Status {
		case models.ParticipationWinner:
			winners = append(winners, p)
		case models.ParticipationPending:
			pending++
		}
	}
	return winners, pending
}
