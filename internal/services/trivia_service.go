package services

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"strings"
	"time"

	"github.com/ArowuTest/bridgetunes-rewards-backend/internal/models"
	"github.com/ArowuTest/bridgetunes-rewards-backend/internal/repositories"
	"go.mongodb.org/mongo-driver/bson/primitive"
)

// TriviaService handles trivia questions and answers
type TriviaService struct {
	questionRepo repositories.TriviaQuestionRepository
	answerRepo   repositories.TriviaAnswerRepository
	userRepo     repositories.UserRepository
	ledger       *LedgerService
	now          func() time.Time
}

// NewTriviaService creates a new TriviaService
func NewTriviaService(repos *repositories.Registry, ledger *LedgerService) *TriviaService {
	return &TriviaService{
		questionRepo: repos.TriviaQuestions,
		answerRepo:   repos.TriviaAnswers,
		userRepo:     repos.Users,
		ledger:       ledger,
		now:          time.Now,
	}
}

// ListQuestions returns up to limit active questions the user has not answered yet
func (s *TriviaService) ListQuestions(ctx context.Context, userID primitive.ObjectID, category string, limit int) ([]*models.TriviaQuestion, error) {
	questions, err := s.questionRepo.FindActive(ctx, strings.ToLower(category))
	if err != nil {
		return nil, fmt.Errorf("failed to list trivia questions: %w", err)
	}
	answered, err := s.answered(ctx, userID)
	if err != nil {
		return nil, err
	}

	open := make([]*models.TriviaQuestion, 0, len(questions))
	for _, q := range questions {
		if answered[q.ID] {
			continue
		}
		open = append(open, q)
		if limit > 0 && len(open) == limit {
			break
		}
	}
	return open, nil
}

func (s *TriviaService) answered(ctx context.Context, userID primitive.ObjectID) (map[primitive.ObjectID]bool, error) {
	answers, err := s.answerRepo.FindByUserID(ctx, userID)
	if err != nil {
		return nil, fmt.Errorf("failed to load trivia answers: %w", err)
	}
	seen := make(map[primitive.ObjectID]bool, len(answers))
	for _, a := range answers {
		seen[a.QuestionID] = true
	}
	return seen, nil
}

// Answer records the user's answer and credits the question's points when it is correct
func (s *TriviaService) Answer(ctx context.Context, userID, questionID primitive.ObjectID, selectedIndex int) (*models.TriviaResult, error) {
	var result *models.TriviaResult
	err := s.ledger.WithUserLock(ctx, userID, func(ctx context.Context) error {
		var err error
		result, err = s.answer(ctx, userID, questionID, selectedIndex)
		return err
	})
	return result, err
}

func (s *TriviaService) answer(ctx context.Context, userID, questionID primitive.ObjectID, selectedIndex int) (*models.TriviaResult, error) {
	if _, err := s.userRepo.FindByID(ctx, userID); err != nil {
		if errors.Is(err, repositories.ErrNotFound) {
			return nil, ErrUserNotFound
		}
		return nil, fmt.Errorf("failed to load user: %w", err)
	}

	question, err := s.questionRepo.FindByID(ctx, questionID)
	if errors.Is(err, repositories.ErrNotFound) || (err == nil && !question.IsActive) {
		return nil, ErrQuestionNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("failed to load trivia question: %w", err)
	}
	if selectedIndex < 0 || selectedIndex >= len(question.Options) {
		return nil, ErrInvalidOption
	}

	answer := &models.TriviaAnswer{
		UserID:        userID,
		QuestionID:    questionID,
		SelectedIndex: selectedIndex,
		IsCorrect:     selectedIndex == question.CorrectIndex,
		AnsweredAt:    s.now(),
	}
	if answer.IsCorrect {
		answer.PointsAwarded = question.Points
	}
	if err := s.answerRepo.Create(ctx, answer); err != nil {
		if errors.Is(err, repositories.ErrDuplicateKey) {
			return nil, ErrAlreadyAnswered
		}
		return nil, fmt.Errorf("failed to store trivia answer: %w", err)
	}

	if answer.PointsAwarded > 0 {
		if _, err := s.ledger.Earn(ctx, userID, answer.PointsAwarded, "Trivia: correct answer",
			map[string]string{"questionId": questionID.Hex()}); err != nil {
			if delErr := s.answerRepo.Delete(ctx, answer.ID); delErr != nil {
				slog.Error("Failed to remove trivia answer after credit failure", "error", delErr, "answerId", answer.ID.Hex())
			}
			return nil, err
		}
	}

	balance, err := s.ledger.GetBalance(ctx, userID)
	if err != nil {
		return nil, err
	}
	return &models.TriviaResult{Answer: answer, CorrectIndex: question.CorrectIndex, Balance: balance}, nil
}

// Stats summarises the user's trivia history
func (s *TriviaService) Stats(ctx context.Context, userID primitive.ObjectID) (*models.TriviaStats, error) {
	answers, err := s.answerRepo.FindByUserID(ctx, userID)
	if err != nil {
		return nil, fmt.Errorf("failed to load trivia answers: %w", err)
	}
	stats := &models.TriviaStats{Answered: len(answers)}
	for _, a := range answers {
		if a.IsCorrect {
			stats.Correct++
		}
		stats.PointsEarned += a.PointsAwarded
	}
	if stats.Answered > 0 {
		stats.Accuracy = float64(stats.Correct) / float64(stats.Answered)
	}
	return stats, nil
}

// CreateQuestion adds a trivia question
func (s *TriviaService) CreateQuestion(ctx context.Context, question *models.TriviaQuestion) (*models.TriviaQuestion, error) {
	if strings.TrimSpace(question.Question) == "" || len(question.Options) < 2 ||
		question.CorrectIndex < 0 || question.CorrectIndex >= len(question.Options) || question.Points < 0 {
		return nil, ErrInvalidQuestion
	}
	question.ID = primitive.NilObjectID
	question.Category = strings.ToLower(question.Category)
	question.CreatedAt = s.now()
	if err := s.questionRepo.Create(ctx, question); err != nil {
		return nil, fmt.Errorf("failed to create trivia question: %w", err)
	}
	return question, nil
}
