// Package access derives what a user may see and do from their subscription state.
package access

import (
	"time"

	"github.com/ArowuTest/bridgetunes-rewards-backend/internal/models"
)

const day = 24 * time.Hour

// Evaluate computes the access status of user at now. It is a pure function of its inputs.
func Evaluate(user *models.User, now time.Time) models.AccessStatus {
	isDemo := user.SubscriptionStatus == models.SubscriptionDemo
	isSubscribed := user.SubscriptionStatus == models.SubscriptionSubscribed
	isExpiredDemo := isDemo && (user.DemoExpiresAt == nil || now.After(*user.DemoExpiresAt))
	canView := isSubscribed || (isDemo && !isExpiredDemo)

	return models.AccessStatus{
		Status:         user.SubscriptionStatus,
		IsDemoUser:     isDemo,
		IsExpiredDemo:  isExpiredDemo,
		IsSubscribed:   isSubscribed,
		DaysLeft:       DaysLeft(user.DemoExpiresAt, now),
		CanViewRewards: canView,
		CanViewRaffles: canView,
		CanViewSurveys: canView,
		CanRedeem:      isSubscribed,
		CanParticipate: isSubscribed,
		CanPurchase:    isSubscribed,
	}
}

// DaysLeft returns the whole days remaining until expiresAt, rounded up and never negative
func DaysLeft(expiresAt *time.Time, now time.Time) int {
	if expiresAt == nil {
		return 0
	}
	remaining := expiresAt.Sub(now)
	if remaining <= 0 {
		return 0
	}
	days := int(remaining / day)
	if remaining%day != 0 {
		days++
	}
	return days
}
