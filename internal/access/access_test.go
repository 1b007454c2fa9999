package access

import (
	"testing"
	"time"

	"github.com/ArowuTest/bridgetunes-rewards-backend/internal/models"
	"github.com/stretchr/testify/assert"
)

var now = time.Date(2024, 6, 15, 10, 0, 0, 0, time.UTC)

func demoUser(expiresAt *time.Time) *models.User {
	return &models.User{SubscriptionStatus: models.SubscriptionDemo, DemoExpiresAt: expiresAt}
}

func at(d time.Duration) *time.Time {
	t := now.Add(d)
	return &t
}

func TestEvaluateExpiredDemo(t *testing.T) {
	status := Evaluate(demoUser(at(-24*time.Hour)), now)

	assert.True(t, status.IsDemoUser)
	assert.True(t, status.IsExpiredDemo)
	assert.Equal(t, 0, status.DaysLeft)
	assert.False(t, status.CanViewRewards)
	assert.False(t, status.CanViewRaffles)
	assert.False(t, status.CanViewSurveys)
	assert.False(t, status.CanRedeem)
}

func TestEvaluateActiveDemo(t *testing.T) {
	status := Evaluate(demoUser(at(36*time.Hour)), now)

	assert.False(t, status.IsExpiredDemo)
	assert.Equal(t, 2, status.DaysLeft)
	assert.True(t, status.CanViewRewards)
	assert.True(t, status.CanViewRaffles)
	assert.False(t, status.CanRedeem)
	assert.False(t, status.CanParticipate)
	assert.False(t, status.CanPurchase)
}

func TestEvaluateDemoWithoutExpiryIsExpired(t *testing.T) {
	status := Evaluate(demoUser(nil), now)

	assert.True(t, status.IsExpiredDemo)
	assert.Equal(t, 0, status.DaysLeft)
	assert.False(t, status.CanViewRewards)
}

func TestEvaluateSubscribed(t *testing.T) {
	status := Evaluate(&models.User{SubscriptionStatus: models.SubscriptionSubscribed}, now)

	assert.True(t, status.IsSubscribed)
	assert.False(t, status.IsDemoUser)
	assert.False(t, status.IsExpiredDemo)
	assert.True(t, status.CanViewRewards)
	assert.True(t, status.CanRedeem)
	assert.True(t, status.CanParticipate)
	assert.True(t, status.CanPurchase)
}

func TestEvaluateNotSubscribed(t *testing.T) {
	status := Evaluate(&models.User{SubscriptionStatus: models.SubscriptionNotSubscribed}, now)

	assert.False(t, status.IsExpiredDemo)
	assert.False(t, status.CanViewRewards)
	assert.False(t, status.CanRedeem)
}

func TestDaysLeft(t *testing.T) {
	tests := []struct {
		name string
		in   *time.Time
		want int
	}{
		{"missing", nil, 0},
		{"past", at(-time.Minute), 0},
		{"exactly now", at(0), 0},
		{"one second", at(time.Second), 1},
		{"exactly one day", at(24 * time.Hour), 1},
		{"seven days", at(7 * 24 * time.Hour), 7},
		{"just over six days", at(6*24*time.Hour + time.Minute), 7},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, DaysLeft(tt.in, now))
		})
	}
}
