// Package memory provides in-process implementations of the repositories,
// used by tests and by the "memory" storage driver.
package memory

import (
	"sort"

	"github.com/ArowuTest/bridgetunes-rewards-backend/internal/repositories"
)

// NewRegistry creates an empty in-memory registry
func NewRegistry() *repositories.Registry {
	return &repositories.Registry{
		Users:           NewUserRepository(),
		Balances:        NewBalanceRepository(),
		Holds:           NewPointHoldRepository(),
		Transactions:    NewPointTransactionRepository(),
		Rewards:         NewRewardRepository(),
		UserRewards:     NewUserRewardRepository(),
		Raffles:         NewRaffleRepository(),
		Participations:  NewParticipationRepository(),
		Surveys:         NewSurveyRepository(),
		SurveyResponses: NewSurveyResponseRepository(),
		TriviaQuestions: NewTriviaQuestionRepository(),
		TriviaAnswers:   NewTriviaAnswerRepository(),
		Packages:        NewPointPackageRepository(),
		Purchases:       NewPurchaseRepository(),
		Notifications:   NewNotificationRepository(),
		Settings:        NewSystemSettingsRepository(),
	}
}

// paginate returns the 1-based page of items; a non-positive limit returns everything
func paginate[T any](items []T, page, limit int) []T {
	if limit <= 0 {
		return items
	}
	if page < 1 {
		page = 1
	}
	start := (page - 1) * limit
	if start >= len(items) {
		return []T{}
	}
	end := start + limit
	if end > len(items) {
		end = len(items)
	}
	return items[start:end]
}

// sortNewestFirst orders items by the timestamp returned from key, breaking ties by insertion order
func sortNewestFirst[T any](items []T, key func(T) int64) {
	sort.SliceStable(items, func(i, j int) bool {
		return key(items[i]) > key(items[j])
	})
}
