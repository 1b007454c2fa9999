package services

import (
	"strings"
	"testing"
	"time"

	"github.com/ArowuTest/bridgetunes-rewards-backend/internal/models"
	"github.com/ArowuTest/bridgetunes-rewards-backend/internal/repositories"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.mongodb.org/mongo-driver/bson/primitive"
)

func TestParticipate(t *testing.T) {
	env := newTestEnv(t)
	user := env.createUser(t, models.SubscriptionSubscribed)
	env.fund(t, user.ID, 1000)
	raffle := env.createRaffle(t, 250, 0)

	result, err := env.raffles.Participate(env.ctx, user.ID, raffle.ID)
	require.NoError(t, err)

	p := result.Participation
	assert.True(t, strings.HasPrefix(p.ParticipationID, raffle.ID.Hex()+"-"))
	assert.Len(t, p.ParticipationID, 24+1+8)
	assert.Equal(t, models.ParticipationPending, p.Status)
	assert.Equal(t, int64(1000), p.BalanceBefore)
	assert.Equal(t, int64(750), p.BalanceAfter)
	assert.Equal(t, int64(750), result.Balance.Total)

	stored, err := env.raffles.GetRaffle(env.ctx, raffle.ID)
	require.NoError(t, err)
	assert.Equal(t, 1, stored.CurrentParticipants)

	entries, err := env.raffles.ListParticipations(env.ctx, user.ID)
	require.NoError(t, err)
	assert.Len(t, entries, 1)
}

func TestParticipateDuplicateEntry(t *testing.T) {
	env := newTestEnv(t)
	user := env.createUser(t, models.SubscriptionSubscribed)
	env.fund(t, user.ID, 1000)
	raffle := env.createRaffle(t, 250, 0)

	_, err := env.raffles.Participate(env.ctx, user.ID, raffle.ID)
	require.NoError(t, err)
	_, err = env.raffles.Participate(env.ctx, user.ID, raffle.ID)
	assert.ErrorIs(t, err, ErrAlreadyParticipated)

	assert.Equal(t, int64(750), env.balance(t, user.ID).Total)
	stored, err := env.raffles.GetRaffle(env.ctx, raffle.ID)
	require.NoError(t, err)
	assert.Equal(t, 1, stored.CurrentParticipants)
}

func TestParticipateExpiredAndNotStarted(t *testing.T) {
	env := newTestEnv(t)
	user := env.createUser(t, models.SubscriptionSubscribed)
	env.fund(t, user.ID, 1000)

	future, err := env.raffles.CreateRaffle(env.ctx, &models.Raffle{
		Name:           "Next Week",
		Prize:          "Headphones",
		RequiredPoints: 100,
		IsActive:       true,
		StartDate:      testStart.Add(24 * time.Hour),
		EndDate:        testStart.Add(72 * time.Hour),
	})
	require.NoError(t, err)
	_, err = env.raffles.Participate(env.ctx, user.ID, future.ID)
	assert.ErrorIs(t, err, ErrRaffleNotStarted)

	raffle := env.createRaffle(t, 100, 0)
	env.clock.Advance(49 * time.Hour)
	_, err = env.raffles.Participate(env.ctx, user.ID, raffle.ID)
	assert.ErrorIs(t, err, ErrRaffleExpired)

	_, err = env.raffles.Participate(env.ctx, user.ID, primitive.NewObjectID())
	assert.ErrorIs(t, err, ErrRaffleNotFound)

	assert.Equal(t, int64(1000), env.balance(t, user.ID).Total)
}

func TestParticipateRespectsMaxParticipants(t *testing.T) {
	env := newTestEnv(t)
	raffle := env.createRaffle(t, 100, 1)

	first := env.createUser(t, models.SubscriptionSubscribed)
	env.fund(t, first.ID, 500)
	second := env.createUser(t, models.SubscriptionSubscribed)
	env.fund(t, second.ID, 500)

	_, err := env.raffles.Participate(env.ctx, first.ID, raffle.ID)
	require.NoError(t, err)
	_, err = env.raffles.Participate(env.ctx, second.ID, raffle.ID)
	assert.ErrorIs(t, err, ErrRaffleFull)

	b := env.balance(t, second.ID)
	assert.Equal(t, int64(500), b.Total)
	assert.Zero(t, b.Reserved)
}

func TestParticipateInsufficientPointsAndGate(t *testing.T) {
	env := newTestEnv(t)
	raffle := env.createRaffle(t, 500, 0)

	poor := env.createUser(t, models.SubscriptionSubscribed)
	env.fund(t, poor.ID, 400)
	_, err := env.raffles.Participate(env.ctx, poor.ID, raffle.ID)
	assert.ErrorIs(t, err, ErrInsufficientPoints)
	assert.Equal(t, int64(400), env.balance(t, poor.ID).Total)

	demo := env.createUser(t, models.SubscriptionDemo)
	env.fund(t, demo.ID, 1000)
	_, err = env.raffles.Participate(env.ctx, demo.ID, raffle.ID)
	assert.ErrorIs(t, err, ErrDemoRestricted)

	stored, err := env.raffles.GetRaffle(env.ctx, raffle.ID)
	require.NoError(t, err)
	assert.Zero(t, stored.CurrentParticipants)
}

func TestDrawRaffle(t *testing.T) {
	env := newTestEnv(t)
	raffle := env.createRaffle(t, 100, 0)

	users := make([]*models.User, 3)
	for i := range users {
		users[i] = env.createUser(t, models.SubscriptionSubscribed)
		env.fund(t, users[i].ID, 300)
		_, err := env.raffles.Participate(env.ctx, users[i].ID, raffle.ID)
		require.NoError(t, err)
	}

	_, err := env.raffles.DrawRaffle(env.ctx, raffle.ID)
	assert.ErrorIs(t, err, ErrRaffleNotEnded)

	env.clock.Advance(49 * time.Hour)
	drawn, err := env.raffles.DrawRaffle(env.ctx, raffle.ID)
	require.NoError(t, err)
	assert.Equal(t, models.RaffleStatusDrawn, drawn.Status)
	assert.NotEmpty(t, drawn.ExecutionLog)
	require.NotNil(t, drawn.DrawnAt)

	winners := 0
	for _, u := range users {
		results, err := env.raffles.CheckResults(env.ctx, u.ID)
		require.NoError(t, err)
		require.Len(t, results, 1)
		if results[0].Status == models.ParticipationWinner {
			winners++
			assert.Equal(t, drawn.WinnerUserID, u.ID)
			assert.Equal(t, "Smartphone", results[0].Prize)
		} else {
			assert.Equal(t, models.ParticipationNotWinner, results[0].Status)
		}

		notifications, err := env.notifications.List(env.ctx, u.ID, false, 1, 10)
		require.NoError(t, err)
		assert.Len(t, notifications, 2, "entry confirmation and result")
	}
	assert.Equal(t, 1, winners)

	_, err = env.raffles.DrawRaffle(env.ctx, raffle.ID)
	assert.ErrorIs(t, err, ErrRaffleAlreadyDrawn)
}

func TestDrawRaffleWithoutParticipants(t *testing.T) {
	env := newTestEnv(t)
	raffle := env.createRaffle(t, 100, 0)
	env.clock.Advance(49 * time.Hour)

	drawn, err := env.raffles.DrawRaffle(env.ctx, raffle.ID)
	require.NoError(t, err)
	assert.Equal(t, models.RaffleStatusDrawn, drawn.Status)
	assert.True(t, drawn.WinnerUserID.IsZero())
}

func TestMarkWinnerRequiresEndedRaffle(t *testing.T) {
	env := newTestEnv(t)
	raffle := env.createRaffle(t, 100, 0)
	entries := env.enterRaffle(t, raffle.ID, 2)

	_, err := env.raffles.MarkWinner(env.ctx, entries[0].ID)
	assert.ErrorIs(t, err, ErrRaffleNotEnded)
	winners, pending := env.outcomes(t, raffle.ID)
	assert.Empty(t, winners)
	assert.Equal(t, 2, pending)

	_, err = env.raffles.MarkWinner(env.ctx, primitive.NewObjectID())
	assert.ErrorIs(t, err, ErrParticipationNotFound)
}

func TestMarkWinnerDrawsOpenRaffle(t *testing.T) {
	env := newTestEnv(t)
	raffle := env.createRaffle(t, 100, 0)
	entries := env.enterRaffle(t, raffle.ID, 5)
	env.clock.Advance(49 * time.Hour)

	p, err := env.raffles.MarkWinner(env.ctx, entries[0].ID)
	require.NoError(t, err)
	assert.Equal(t, models.ParticipationWinner, p.Status)
	assert.Equal(t, "Smartphone", p.Prize)

	_, err = env.raffles.DrawRaffle(env.ctx, raffle.ID)
	assert.ErrorIs(t, err, ErrRaffleAlreadyDrawn)

	stored, err := env.raffles.GetRaffle(env.ctx, raffle.ID)
	require.NoError(t, err)
	assert.Equal(t, models.RaffleStatusDrawn, stored.Status)
	assert.Equal(t, entries[0].ID, stored.WinningParticipationID)
	assert.Equal(t, entries[0].UserID, stored.WinnerUserID)

	winners, pending := env.outcomes(t, raffle.ID)
	require.Len(t, winners, 1)
	assert.Equal(t, entries[0].ID, winners[0].ID)
	assert.Zero(t, pending)
}

func TestMarkWinnerOverridesDrawnResult(t *testing.T) {
	env := newTestEnv(t)
	raffle := env.createRaffle(t, 100, 0)
	entries := env.enterRaffle(t, raffle.ID, 5)
	env.clock.Advance(49 * time.Hour)

	drawn, err := env.raffles.DrawRaffle(env.ctx, raffle.ID)
	require.NoError(t, err)
	var loser *models.UserRaffleParticipation
	for _, e := range entries {
		if e.ID != drawn.WinningParticipationID {
			loser = e
			break
		}
	}
	require.NotNil(t, loser)

	p, err := env.raffles.MarkWinner(env.ctx, loser.ID)
	require.NoError(t, err)
	assert.Equal(t, models.ParticipationWinner, p.Status)

	winners, _ := env.outcomes(t, raffle.ID)
	require.Len(t, winners, 1)
	assert.Equal(t, loser.ID, winners[0].ID)

	stored, err := env.raffles.GetRaffle(env.ctx, raffle.ID)
	require.NoError(t, err)
	assert.Equal(t, loser.ID, stored.WinningParticipationID)
	assert.Equal(t, loser.UserID, stored.WinnerUserID)
	assert.Len(t, stored.ExecutionLog, len(drawn.ExecutionLog)+1)

	previous, err := env.repos.Participations.FindByID(env.ctx, drawn.WinningParticipationID)
	require.NoError(t, err)
	assert.Equal(t, models.ParticipationNotWinner, previous.Status)
	assert.Empty(t, previous.Prize)
	notifications, err := env.notifications.List(env.ctx, drawn.WinnerUserID, false, 1, 10)
	require.NoError(t, err)
	assert.Len(t, notifications, 3, "entry confirmation, win and correction")

	again, err := env.raffles.MarkWinner(env.ctx, loser.ID)
	require.NoError(t, err)
	assert.Equal(t, models.ParticipationWinner, again.Status)
	winners, _ = env.outcomes(t, raffle.ID)
	assert.Len(t, winners, 1)
}

func TestDrawRaffleResolvesEntriesLeftPending(t *testing.T) {
	env := newTestEnv(t)
	raffle := env.createRaffle(t, 100, 0)
	env.enterRaffle(t, raffle.ID, 3)
	env.clock.Advance(49 * time.Hour)
	env.raffles.participationRepo = &failingParticipations{ParticipationRepository: env.repos.Participations, resolveFailures: 1}

	_, err := env.raffles.DrawRaffle(env.ctx, raffle.ID)
	require.ErrorIs(t, err, errStorage)
	_, pending := env.outcomes(t, raffle.ID)
	assert.Equal(t, 3, pending)

	drawn, err := env.raffles.DrawRaffle(env.ctx, raffle.ID)
	require.NoError(t, err)
	assert.Equal(t, models.RaffleStatusDrawn, drawn.Status)

	winners, pending := env.outcomes(t, raffle.ID)
	require.Len(t, winners, 1)
	assert.Equal(t, drawn.WinningParticipationID, winners[0].ID)
	assert.Zero(t, pending)

	_, err = env.raffles.DrawRaffle(env.ctx, raffle.ID)
	assert.ErrorIs(t, err, ErrRaffleAlreadyDrawn)
}

func TestParticipateRestoresStateWhenEntryNotStored(t *testing.T) {
	env := newTestEnv(t)
	user := env.createUser(t, models.SubscriptionSubscribed)
	env.fund(t, user.ID, 1000)
	raffle := env.createRaffle(t, 250, 0)
	env.raffles.participationRepo = &failingParticipations{ParticipationRepository: env.repos.Participations, failCreate: true}

	_, err := env.raffles.Participate(env.ctx, user.ID, raffle.ID)
	require.ErrorIs(t, err, errStorage)

	b := env.balance(t, user.ID)
	assert.Equal(t, int64(1000), b.Total)
	assert.Zero(t, b.Reserved)
	stored, err := env.raffles.GetRaffle(env.ctx, raffle.ID)
	require.NoError(t, err)
	assert.Zero(t, stored.CurrentParticipants)
}

func TestParticipateRestoresStateWhenCommitFails(t *testing.T) {
	env := newTestEnv(t)
	user := env.createUser(t, models.SubscriptionSubscribed)
	env.fund(t, user.ID, 1000)
	raffle := env.createRaffle(t, 250, 0)
	env.ledger.holds = failingHolds{env.repos.Holds}

	_, err := env.raffles.Participate(env.ctx, user.ID, raffle.ID)
	require.ErrorIs(t, err, errStorage)

	b := env.balance(t, user.ID)
	assert.Equal(t, int64(1000), b.Total)
	assert.Zero(t, b.Reserved)
	stored, err := env.raffles.GetRaffle(env.ctx, raffle.ID)
	require.NoError(t, err)
	assert.Zero(t, stored.CurrentParticipants)
	_, err = env.repos.Participations.FindByRaffleAndUser(env.ctx, raffle.ID, user.ID)
	assert.ErrorIs(t, err, repositories.ErrNotFound)

	env.ledger.holds = env.repos.Holds
	result, err := env.raffles.Participate(env.ctx, user.ID, raffle.ID)
	require.NoError(t, err)
	assert.Equal(t, int64(750), result.Balance.Total)
}

func TestCreateRaffleValidation(t *testing.T) {
	env := newTestEnv(t)
	_, err := env.raffles.CreateRaffle(env.ctx, &models.Raffle{Name: "No end", RequiredPoints: 10})
	assert.ErrorIs(t, err, ErrInvalidRaffle)
	_, err = env.raffles.CreateRaffle(env.ctx, &models.Raffle{
		Name:           "Backwards",
		RequiredPoints: 10,
		StartDate:      testStart,
		EndDate:        testStart.Add(-time.Hour),
	})
	assert.ErrorIs(t, err, ErrInvalidRaffle)
}

func TestListRafflesGate(t *testing.T) {
	env := newTestEnv(t)
	env.createRaffle(t, 100, 0)
	demo := env.createUser(t, models.SubscriptionDemo)

	raffles, err := env.raffles.ListRaffles(env.ctx, demo.ID)
	require.NoError(t, err)
	assert.Len(t, raffles, 1)

	env.clock.Advance(8 * 24 * time.Hour)
	_, err = env.raffles.ListRaffles(env.ctx, demo.ID)
	assert.ErrorIs(t, err, ErrAccessDenied)
}
