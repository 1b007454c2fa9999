package memory

import (
	"context"
	"sort"
	"sync"
	"time"

	"github.com/ArowuTest/bridgetunes-rewards-backend/internal/models"
	"github.com/ArowuTest/bridgetunes-rewards-backend/internal/repositories"
	"go.mongodb.org/mongo-driver/bson/primitive"
)

var (
	_ repositories.SurveyRepository         = (*SurveyRepository)(nil)
	_ repositories.SurveyResponseRepository = (*SurveyResponseRepository)(nil)
)

// SurveyRepository stores surveys in memory
type SurveyRepository struct {
	mu      sync.RWMutex
	surveys map[primitive.ObjectID]*models.Survey
}

// NewSurveyRepository creates a new SurveyRepository
func NewSurveyRepository() *SurveyRepository {
	return &SurveyRepository{surveys: make(map[primitive.ObjectID]*models.Survey)}
}

// Create inserts a survey
func (r *SurveyRepository) Create(_ context.Context, survey *models.Survey) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	if survey.ID.IsZero() {
		survey.ID = primitive.NewObjectID()
	}
	if survey.CreatedAt.IsZero() {
		survey.CreatedAt = time.Now()
	}
	c := *survey
	r.surveys[survey.ID] = &c
	return nil
}

// FindByID finds a survey by ID
func (r *SurveyRepository) FindByID(_ context.Context, id primitive.ObjectID) (*models.Survey, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	s, ok := r.surveys[id]
	if !ok {
		return nil, repositories.ErrNotFound
	}
	c := *s
	return &c, nil
}

// FindActive lists active surveys that have not expired at now
func (r *SurveyRepository) FindActive(_ context.Context, now time.Time) ([]*models.Survey, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	out := []*models.Survey{}
	for _, s := range r.surveys {
		if !s.IsActive || (s.ExpiresAt != nil && now.After(*s.ExpiresAt)) {
			continue
		}
		c := *s
		out = append(out, &c)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].CreatedAt.After(out[j].CreatedAt) })
	return out, nil
}

// SurveyResponseRepository stores survey responses in memory
type SurveyResponseRepository struct {
	mu        sync.RWMutex
	responses map[primitive.ObjectID]*models.SurveyResponse
}

// NewSurveyResponseRepository creates a new SurveyResponseRepository
func NewSurveyResponseRepository() *SurveyResponseRepository {
	return &SurveyResponseRepository{responses: make(map[primitive.ObjectID]*models.SurveyResponse)}
}

// Create inserts a response; one per survey and user
func (r *SurveyResponseRepository) Create(_ context.Context, response *models.SurveyResponse) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	for _, resp := range r.responses {
		if resp.SurveyID == response.SurveyID && resp.UserID == response.UserID {
			return repositories.ErrDuplicateKey
		}
	}
	if response.ID.IsZero() {
		response.ID = primitive.NewObjectID()
	}
	c := *response
	r.responses[response.ID] = &c
	return nil
}

// FindBySurveyAndUser finds a user's response to a survey
func (r *SurveyResponseRepository) FindBySurveyAndUser(_ context.Context, surveyID, userID primitive.ObjectID) (*models.SurveyResponse, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	for _, resp := range r.responses {
		if resp.SurveyID == surveyID && resp.UserID == userID {
			c := *resp
			return &c, nil
		}
	}
	return nil, repositories.ErrNotFound
}

// FindByUserID lists a user's responses
func (r *SurveyResponseRepository) FindByUserID(_ context.Context, userID primitive.ObjectID) ([]*models.SurveyResponse, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	out := []*models.SurveyResponse{}
	for _, resp := range r.responses {
		if resp.UserID == userID {
			c := *resp
			out = append(out, &c)
		}
	}
	return out, nil
}

// Delete removes a response
func (r *SurveyResponseRepository) Delete(_ context.Context, id primitive.ObjectID) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	delete(r.responses, id)
	return nil
}
