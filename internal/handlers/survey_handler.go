package handlers

import (
	"net/http"
	"time"

	"github.com/ArowuTest/bridgetunes-rewards-backend/internal/middleware"
	"github.com/ArowuTest/bridgetunes-rewards-backend/internal/models"
	"github.com/ArowuTest/bridgetunes-rewards-backend/internal/services"
	"github.com/gin-gonic/gin"
)

// SurveyHandler handles survey requests
type SurveyHandler struct {
	surveyService *services.SurveyService
}

// NewSurveyHandler creates a new SurveyHandler
func NewSurveyHandler(surveyService *services.SurveyService) *SurveyHandler {
	return &SurveyHandler{surveyService: surveyService}
}

type surveyRequest struct {
	Title        string                  `json:"title" binding:"required"`
	Description  string                  `json:"description"`
	Questions    []models.SurveyQuestion `json:"questions" binding:"required"`
	RewardPoints int64                   `json:"rewardPoints"`
	IsActive     *bool                   `json:"isActive"`
	ExpiresAt    *time.Time              `json:"expiresAt"`
}

type submitSurveyRequest struct {
	Answers []models.SurveyAnswer `json:"answers" binding:"required,dive"`
}

// ListSurveys handles GET /surveys
func (h *SurveyHandler) ListSurveys(c *gin.Context) {
	surveys, err := h.surveyService.ListSurveys(c.Request.Context(), middleware.UserID(c))
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, surveys)
}

// GetSurvey handles GET /surveys/:id
func (h *SurveyHandler) GetSurvey(c *gin.Context) {
	id, ok := pathID(c, "id")
	if !ok {
		return
	}
	survey, err := h.surveyService.GetSurvey(c.Request.Context(), id)
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, survey)
}

// Submit handles POST /surveys/:id/responses
func (h *SurveyHandler) Submit(c *gin.Context) {
	id, ok := pathID(c, "id")
	if !ok {
		return
	}
	var req submitSurveyRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		badRequest(c, err.Error())
		return
	}
	submission, err := h.surveyService.Submit(c.Request.Context(), middleware.UserID(c), id, req.Answers)
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusCreated, submission)
}

// CreateSurvey handles POST /admin/surveys
func (h *SurveyHandler) CreateSurvey(c *gin.Context) {
	var req surveyRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		badRequest(c, err.Error())
		return
	}
	survey, err := h.surveyService.CreateSurvey(c.Request.Context(), &models.Survey{
		Title:        req.Title,
		Description:  req.Description,
		Questions:    req.Questions,
		RewardPoints: req.RewardPoints,
		IsActive:     activeOrDefault(req.IsActive),
		ExpiresAt:    req.ExpiresAt,
	})
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusCreated, survey)
}
