package services

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"strconv"
	"strings"
	"time"

	"github.com/ArowuTest/bridgetunes-rewards-backend/internal/models"
	"github.com/ArowuTest/bridgetunes-rewards-backend/internal/repositories"
	"go.mongodb.org/mongo-driver/bson/primitive"
)

// SurveySubmission is returned after a survey is completed
type SurveySubmission struct {
	Response *models.SurveyResponse `json:"response"`
	Balance  *models.PointBalance   `json:"balance"`
}

// SurveyService handles surveys and their responses
type SurveyService struct {
	surveyRepo   repositories.SurveyRepository
	responseRepo repositories.SurveyResponseRepository
	userRepo     repositories.UserRepository
	ledger       *LedgerService
	notifier     Notifier
	now          func() time.Time
}

// NewSurveyService creates a new SurveyService
func NewSurveyService(repos *repositories.Registry, ledger *LedgerService, notifier Notifier) *SurveyService {
	return &SurveyService{
		surveyRepo:   repos.Surveys,
		responseRepo: repos.SurveyResponses,
		userRepo:     repos.Users,
		ledger:       ledger,
		notifier:     notifier,
		now:          time.Now,
	}
}

// ListSurveys returns the open surveys, each flagged with whether the user completed it
func (s *SurveyService) ListSurveys(ctx context.Context, userID primitive.ObjectID) ([]models.SurveySummary, error) {
	now := s.now()
	_, status, err := loadAccess(ctx, s.userRepo, userID, now)
	if err != nil {
		return nil, err
	}
	if err := requireViewer(status.CanViewSurveys); err != nil {
		return nil, err
	}

	surveys, err := s.surveyRepo.FindActive(ctx, now)
	if err != nil {
		return nil, fmt.Errorf("failed to list surveys: %w", err)
	}
	responses, err := s.responseRepo.FindByUserID(ctx, userID)
	if err != nil {
		return nil, fmt.Errorf("failed to load survey responses: %w", err)
	}
	done := make(map[primitive.ObjectID]bool, len(responses))
	for _, r := range responses {
		done[r.SurveyID] = true
	}

	summaries := make([]models.SurveySummary, 0, len(surveys))
	for _, survey := range surveys {
		summaries = append(summaries, models.SurveySummary{Survey: survey, Completed: done[survey.ID]})
	}
	return summaries, nil
}

// GetSurvey returns a survey by ID
func (s *SurveyService) GetSurvey(ctx context.Context, id primitive.ObjectID) (*models.Survey, error) {
	survey, err := s.surveyRepo.FindByID(ctx, id)
	if errors.Is(err, repositories.ErrNotFound) {
		return nil, ErrSurveyNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("failed to load survey: %w", err)
	}
	return survey, nil
}

// Submit stores the user's answers and credits the survey's reward points
func (s *SurveyService) Submit(ctx context.Context, userID, surveyID primitive.ObjectID, answers []models.SurveyAnswer) (*SurveySubmission, error) {
	var result *SurveySubmission
	var survey *models.Survey
	err := s.ledger.WithUserLock(ctx, userID, func(ctx context.Context) error {
		var err error
		result, survey, err = s.submit(ctx, userID, surveyID, answers)
		return err
	})
	if err != nil {
		return nil, err
	}
	if survey.RewardPoints > 0 {
		notify(ctx, s.notifier, userID, models.NotificationSurvey, "Survey completed",
			fmt.Sprintf("Thanks for completing %s. You earned %d points.", survey.Title, survey.RewardPoints),
			map[string]string{"surveyId": surveyID.Hex()})
	}
	return result, nil
}

func (s *SurveyService) submit(ctx context.Context, userID, surveyID primitive.ObjectID, answers []models.SurveyAnswer) (*SurveySubmission, *models.Survey, error) {
	now := s.now()
	_, status, err := loadAccess(ctx, s.userRepo, userID, now)
	if err != nil {
		return nil, nil, err
	}
	if err := requireViewer(status.CanViewSurveys); err != nil {
		return nil, nil, err
	}

	survey, err := s.GetSurvey(ctx, surveyID)
	if err != nil {
		return nil, nil, err
	}
	if !survey.IsActive {
		return nil, nil, ErrSurveyInactive
	}
	if survey.ExpiresAt != nil && now.After(*survey.ExpiresAt) {
		return nil, nil, ErrSurveyExpired
	}
	if _, err := s.responseRepo.FindBySurveyAndUser(ctx, surveyID, userID); err == nil {
		return nil, nil, ErrSurveyAlreadyCompleted
	} else if !errors.Is(err, repositories.ErrNotFound) {
		return nil, nil, fmt.Errorf("failed to check survey response: %w", err)
	}
	if err := validateAnswers(survey.Questions, answers); err != nil {
		return nil, nil, err
	}

	response := &models.SurveyResponse{
		SurveyID:      surveyID,
		UserID:        userID,
		Answers:       answers,
		PointsAwarded: survey.RewardPoints,
		CompletedAt:   now,
	}
	if err := s.responseRepo.Create(ctx, response); err != nil {
		if errors.Is(err, repositories.ErrDuplicateKey) {
			return nil, nil, ErrSurveyAlreadyCompleted
		}
		return nil, nil, fmt.Errorf("failed to store survey response: %w", err)
	}

	if survey.RewardPoints > 0 {
		if _, err := s.ledger.Earn(ctx, userID, survey.RewardPoints, "Completed survey "+survey.Title,
			map[string]string{"surveyId": surveyID.Hex(), "responseId": response.ID.Hex()}); err != nil {
			if delErr := s.responseRepo.Delete(ctx, response.ID); delErr != nil {
				slog.Error("Failed to remove survey response after credit failure", "error", delErr, "responseId", response.ID.Hex())
			}
			return nil, nil, err
		}
	}

	balance, err := s.ledger.GetBalance(ctx, userID)
	if err != nil {
		return nil, nil, err
	}
	slog.Info("Survey completed", "userId", userID.Hex(), "surveyId", surveyID.Hex(), "points", survey.RewardPoints)
	return &SurveySubmission{Response: response, Balance: balance}, survey, nil
}

func validateAnswers(questions []models.SurveyQuestion, answers []models.SurveyAnswer) error {
	byID := make(map[string]models.SurveyQuestion, len(questions))
	for _, q := range questions {
		byID[q.ID] = q
	}
	given := make(map[string][]string, len(answers))
	for _, a := range answers {
		if _, ok := byID[a.QuestionID]; !ok {
			return ErrInvalidSurveyAnswer
		}
		if _, dup := given[a.QuestionID]; dup {
			return ErrInvalidSurveyAnswer
		}
		given[a.QuestionID] = a.Values
	}

	for _, q := range questions {
		values, ok := given[q.ID]
		if !ok || len(values) == 0 {
			if q.Required {
				return ErrInvalidSurveyAnswer
			}
			continue
		}
		if !validAnswer(q, values) {
			return ErrInvalidSurveyAnswer
		}
	}
	return nil
}

func validAnswer(q models.SurveyQuestion, values []string) bool {
	switch q.Type {
	case models.QuestionSingleChoice:
		return len(values) == 1 && contains(q.Options, values[0])
	case models.QuestionMultipleChoice:
		seen := make(map[string]bool, len(values))
		for _, v := range values {
			if seen[v] || !contains(q.Options, v) {
				return false
			}
			seen[v] = true
		}
		return true
	case models.QuestionRating:
		if len(values) != 1 {
			return false
		}
		rating, err := strconv.Atoi(values[0])
		return err == nil && rating >= 1 && rating <= 5
	case models.QuestionText:
		return len(values) == 1 && strings.TrimSpace(values[0]) != ""
	}
	return false
}

func contains(options []string, v string) bool {
	for _, o := range options {
		if o == v {
			return true
		}
	}
	return false
}

// CreateSurvey publishes a new survey
func (s *SurveyService) CreateSurvey(ctx context.Context, survey *models.Survey) (*models.Survey, error) {
	if strings.TrimSpace(survey.Title) == "" || len(survey.Questions) == 0 || survey.RewardPoints < 0 {
		return nil, ErrInvalidSurvey
	}
	ids := make(map[string]bool, len(survey.Questions))
	for i := range survey.Questions {
		q := &survey.Questions[i]
		if q.ID == "" {
			q.ID = fmt.Sprintf("q%d", i+1)
		}
		if ids[q.ID] || strings.TrimSpace(q.Text) == "" {
			return nil, ErrInvalidSurvey
		}
		ids[q.ID] = true
		switch q.Type {
		case models.QuestionSingleChoice, models.QuestionMultipleChoice:
			if len(q.Options) < 2 {
				return nil, ErrInvalidSurvey
			}
		case models.QuestionText, models.QuestionRating:
		default:
			return nil, ErrInvalidSurvey
		}
	}

	survey.ID = primitive.NilObjectID
	survey.CreatedAt = s.now()
	if err := s.surveyRepo.Create(ctx, survey); err != nil {
		return nil, fmt.Errorf("failed to create survey: %w", err)
	}
	slog.Info("Survey created", "surveyId", survey.ID.Hex(), "title", survey.Title, "questions", len(survey.Questions))
	return survey, nil
}
