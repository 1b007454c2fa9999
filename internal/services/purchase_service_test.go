package services

import (
	"testing"

	"github.com/ArowuTest/bridgetunes-rewards-backend/internal/models"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.mongodb.org/mongo-driver/bson/primitive"
)

func createPackage(t *testing.T, env *testEnv) *models.PointPackage {
	t.Helper()
	pkg, err := env.purchases.CreatePackage(env.ctx, &models.PointPackage{
		Name:        "Starter",
		Points:      500,
		BonusPoints: 50,
		Price:       500,
		Currency:    "ngn",
		IsActive:    true,
	})
	require.NoError(t, err)
	return pkg
}

func TestPurchaseCreditsPointsAndBonus(t *testing.T) {
	env := newTestEnv(t)
	user := env.createUser(t, models.SubscriptionSubscribed)
	pkg := createPackage(t, env)
	assert.Equal(t, "NGN", pkg.Currency)

	result, err := env.purchases.Purchase(env.ctx, user.ID, pkg.ID)
	require.NoError(t, err)
	assert.Equal(t, models.PurchaseStatusCompleted, result.Purchase.Status)
	assert.Equal(t, int64(550), result.Purchase.Points)
	assert.Equal(t, int64(550), result.Balance.Total)

	b := env.balance(t, user.ID)
	assert.Equal(t, int64(550), b.Purchased)
	assert.Equal(t, int64(550), b.Real)

	require.Len(t, env.payments.calls, 1)
	assert.Equal(t, 500.0, env.payments.calls[0].Amount)
	assert.Equal(t, result.Purchase.PaymentRef, env.payments.calls[0].Reference)

	purchases, err := env.purchases.ListPurchases(env.ctx, user.ID, 1, 10)
	require.NoError(t, err)
	require.Len(t, purchases, 1)
	assert.Equal(t, models.PurchaseStatusCompleted, purchases[0].Status)
}

func TestPurchasePaymentFailure(t *testing.T) {
	env := newTestEnv(t)
	user := env.createUser(t, models.SubscriptionSubscribed)
	pkg := createPackage(t, env)
	env.payments.fail = true

	_, err := env.purchases.Purchase(env.ctx, user.ID, pkg.ID)
	assert.ErrorIs(t, err, ErrPaymentFailed)
	assert.Zero(t, env.balance(t, user.ID).Total)

	purchases, err := env.purchases.ListPurchases(env.ctx, user.ID, 1, 10)
	require.NoError(t, err)
	require.Len(t, purchases, 1)
	assert.Equal(t, models.PurchaseStatusFailed, purchases[0].Status)
	assert.NotEmpty(t, purchases[0].FailureReason)
}

func TestPurchaseGateAndPackageChecks(t *testing.T) {
	env := newTestEnv(t)
	pkg := createPackage(t, env)

	demo := env.createUser(t, models.SubscriptionDemo)
	_, err := env.purchases.Purchase(env.ctx, demo.ID, pkg.ID)
	assert.ErrorIs(t, err, ErrDemoRestricted)

	user := env.createUser(t, models.SubscriptionSubscribed)
	_, err = env.purchases.Purchase(env.ctx, user.ID, primitive.NewObjectID())
	assert.ErrorIs(t, err, ErrPackageNotFound)

	hidden, err := env.purchases.CreatePackage(env.ctx, &models.PointPackage{Name: "Retired", Points: 10, Price: 10})
	require.NoError(t, err)
	_, err = env.purchases.Purchase(env.ctx, user.ID, hidden.ID)
	assert.ErrorIs(t, err, ErrPackageNotFound)

	packages, err := env.purchases.ListPackages(env.ctx)
	require.NoError(t, err)
	assert.Len(t, packages, 1)
	assert.Empty(t, env.payments.calls)

	_, err = env.purchases.CreatePackage(env.ctx, &models.PointPackage{Name: "Free", Points: 10})
	assert.ErrorIs(t, err, ErrInvalidPackage)
}
