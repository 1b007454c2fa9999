package memory

import (
	"context"
	"sort"
	"strings"
	"sync"
	"time"

	"github.com/ArowuTest/bridgetunes-rewards-backend/internal/models"
	"github.com/ArowuTest/bridgetunes-rewards-backend/internal/repositories"
	"go.mongodb.org/mongo-driver/bson/primitive"
)

var (
	_ repositories.TriviaQuestionRepository = (*TriviaQuestionRepository)(nil)
	_ repositories.TriviaAnswerRepository   = (*TriviaAnswerRepository)(nil)
)

// TriviaQuestionRepository stores trivia questions in memory
type TriviaQuestionRepository struct {
	mu        sync.RWMutex
	questions map[primitive.ObjectID]*models.TriviaQuestion
}

// NewTriviaQuestionRepository creates a new TriviaQuestionRepository
func NewTriviaQuestionRepository() *TriviaQuestionRepository {
	return &TriviaQuestionRepository{questions: make(map[primitive.ObjectID]*models.TriviaQuestion)}
}

// Create inserts a question
func (r *TriviaQuestionRepository) Create(_ context.Context, question *models.TriviaQuestion) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	if question.ID.IsZero() {
		question.ID = primitive.NewObjectID()
	}
	if question.CreatedAt.IsZero() {
		question.CreatedAt = time.Now()
	}
	c := *question
	r.questions[question.ID] = &c
	return nil
}

// FindByID finds a question by ID
func (r *TriviaQuestionRepository) FindByID(_ context.Context, id primitive.ObjectID) (*models.TriviaQuestion, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	q, ok := r.questions[id]
	if !ok {
		return nil, repositories.ErrNotFound
	}
	c := *q
	return &c, nil
}

// FindActive lists active questions, optionally of one category
func (r *TriviaQuestionRepository) FindActive(_ context.Context, category string) ([]*models.TriviaQuestion, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	out := []*models.TriviaQuestion{}
	for _, q := range r.questions {
		if !q.IsActive || (category != "" && !strings.EqualFold(q.Category, category)) {
			continue
		}
		c := *q
		out = append(out, &c)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].CreatedAt.Before(out[j].CreatedAt) })
	return out, nil
}

// TriviaAnswerRepository stores trivia answers in memory
type TriviaAnswerRepository struct {
	mu      sync.RWMutex
	answers map[primitive.ObjectID]*models.TriviaAnswer
}

// NewTriviaAnswerRepository creates a new TriviaAnswerRepository
func NewTriviaAnswerRepository() *TriviaAnswerRepository {
	return &TriviaAnswerRepository{answers: make(map[primitive.ObjectID]*models.TriviaAnswer)}
}

// Create inserts an answer; one per user and question
func (r *TriviaAnswerRepository) Create(_ context.Context, answer *models.TriviaAnswer) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	for _, a := range r.answers {
		if a.UserID == answer.UserID && a.QuestionID == answer.QuestionID {
			return repositories.ErrDuplicateKey
		}
	}
	if answer.ID.IsZero() {
		answer.ID = primitive.NewObjectID()
	}
	c := *answer
	r.answers[answer.ID] = &c
	return nil
}

// FindByUserID lists a user's answers
func (r *TriviaAnswerRepository) FindByUserID(_ context.Context, userID primitive.ObjectID) ([]*models.TriviaAnswer, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	out := []*models.TriviaAnswer{}
	for _, a := range r.answers {
		if a.UserID == userID {
			c := *a
			out = append(out, &c)
		}
	}
	return out, nil
}

// Delete removes an answer
func (r *TriviaAnswerRepository) Delete(_ context.Context, id primitive.ObjectID) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	delete(r.answers, id)
	return nil
}
