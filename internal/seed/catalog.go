// Package seed loads the starter catalog and imports rewards from CSV.
package seed

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"github.com/ArowuTest/bridgetunes-rewards-backend/internal/models"
	"github.com/ArowuTest/bridgetunes-rewards-backend/internal/repositories"
	"github.com/ArowuTest/bridgetunes-rewards-backend/internal/services"
)

// Services are the catalog owners the seeder writes through
type Services struct {
	Rewards   *services.RewardService
	Raffles   *services.RaffleService
	Surveys   *services.SurveyService
	Trivia    *services.TriviaService
	Purchases *services.PurchaseService
}

// Catalog seeds an empty store with the starter catalog. It reports false when rewards already exist.
func Catalog(ctx context.Context, rewardRepo repositories.RewardRepository, svc Services, now time.Time) (bool, error) {
	count, err := rewardRepo.Count(ctx)
	if err != nil {
		return false, fmt.Errorf("failed to count rewards: %w", err)
	}
	if count > 0 {
		return false, nil
	}

	for _, r := range starterRewards() {
		if _, err := svc.Rewards.CreateReward(ctx, r); err != nil {
			return false, fmt.Errorf("failed to seed reward %q: %w", r.Name, err)
		}
	}
	for _, r := range starterRaffles(now) {
		if _, err := svc.Raffles.CreateRaffle(ctx, r); err != nil {
			return false, fmt.Errorf("failed to seed raffle %q: %w", r.Name, err)
		}
	}
	for _, s := range starterSurveys() {
		if _, err := svc.Surveys.CreateSurvey(ctx, s); err != nil {
			return false, fmt.Errorf("failed to seed survey %q: %w", s.Title, err)
		}
	}
	for _, q := range starterQuestions() {
		if _, err := svc.Trivia.CreateQuestion(ctx, q); err != nil {
			return false, fmt.Errorf("failed to seed trivia question: %w", err)
		}
	}
	for _, p := range starterPackages() {
		if _, err := svc.Purchases.CreatePackage(ctx, p); err != nil {
			return false, fmt.Errorf("failed to seed package %q: %w", p.Name, err)
		}
	}

	slog.Info("Catalog seeded")
	return true, nil
}

func starterRewards() []*models.Reward {
	return []*models.Reward{
		{Name: "Cinema Ticket", Description: "One standard ticket at partner cinemas", Category: "entertainment", PointsRequired: 500, Stock: 100, IsActive: true},
		{Name: "Music Streaming Month", Description: "One month of premium music streaming", Category: "entertainment", PointsRequired: 300, Stock: 250, IsActive: true},
		{Name: "Lunch Voucher", Description: "Meal voucher at partner restaurants", Category: "food", PointsRequired: 250, Stock: 200, IsActive: true},
		{Name: "Coffee Voucher", Description: "Any hot drink at partner cafes", Category: "food", PointsRequired: 100, Stock: 500, IsActive: true},
		{Name: "Shopping Voucher", Description: "Store credit at partner retailers", Category: "shopping", PointsRequired: 1000, Stock: 50, IsActive: true},
		{Name: "Data Bundle 1GB", Description: "1GB mobile data valid for 30 days", Category: "airtime", PointsRequired: 400, Stock: 300, IsActive: true},
		{Name: "Airtime 500", Description: "Airtime top-up", Category: "airtime", PointsRequired: 450, Stock: 300, IsActive: true},
		{Name: "Concert Backstage Pass", Description: "Backstage access at a partner concert", Category: "experiences", PointsRequired: 5000, Stock: 5, IsActive: true},
	}
}

func starterRaffles(now time.Time) []*models.Raffle {
	return []*models.Raffle{
		{
			Name:            "Weekly Gadget Raffle",
			Description:     "One entry per subscriber, drawn at the end of the week",
			Prize:           "Smartphone",
			RequiredPoints:  200,
			MaxParticipants: 1000,
			IsActive:        true,
			StartDate:       now,
			EndDate:         now.AddDate(0, 0, 7),
		},
		{
			Name:           "Monthly Getaway",
			Description:    "Weekend trip for two",
			Prize:          "Weekend Getaway",
			RequiredPoints: 800,
			IsActive:       true,
			StartDate:      now,
			EndDate:        now.AddDate(0, 1, 0),
		},
	}
}

func starterSurveys() []*models.Survey {
	return []*models.Survey{
		{
			Title:        "Listening Habits",
			Description:  "Tell us how you listen to music",
			RewardPoints: 50,
			IsActive:     true,
			Questions: []models.SurveyQuestion{
				{Text: "Which genre do you listen to most?", Type: models.QuestionSingleChoice, Options: []string{"Afrobeats", "Hip-Hop", "Gospel", "Highlife", "Other"}, Required: true},
				{Text: "Where do you listen?", Type: models.QuestionMultipleChoice, Options: []string{"Home", "Commute", "Work", "Gym"}, Required: true},
				{Text: "How would you rate the app?", Type: models.QuestionRating, Required: true},
				{Text: "What should we add next?", Type: models.QuestionText},
			},
		},
	}
}

func starterQuestions() []*models.TriviaQuestion {
	return []*models.TriviaQuestion{
		{Category: "music", Difficulty: "easy", Question: "How many strings does a standard guitar have?", Options: []string{"4", "5", "6", "7"}, CorrectIndex: 2, Points: 10, IsActive: true},
		{Category: "music", Difficulty: "medium", Question: "Which instrument has 88 keys?", Options: []string{"Organ", "Piano", "Accordion", "Harpsichord"}, CorrectIndex: 1, Points: 20, IsActive: true},
		{Category: "general", Difficulty: "easy", Question: "What is the capital of Nigeria?", Options: []string{"Lagos", "Abuja", "Kano", "Ibadan"}, CorrectIndex: 1, Points: 10, IsActive: true},
		{Category: "general", Difficulty: "hard", Question: "How many minutes are in a week?", Options: []string{"10080", "1440", "8760", "100800"}, CorrectIndex: 0, Points: 30, IsActive: true},
	}
}

func starterPackages() []*models.PointPackage {
	return []*models.PointPackage{
		{Name: "Starter", Points: 500, Price: 500, Currency: "NGN", IsActive: true},
		{Name: "Value", Points: 1000, BonusPoints: 100, Price: 1000, Currency: "NGN", IsActive: true},
		{Name: "Premium", Points: 5000, BonusPoints: 1000, Price: 4500, Currency: "NGN", IsActive: true},
	}
}
