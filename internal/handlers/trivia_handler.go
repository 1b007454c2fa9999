package handlers

import (
	"net/http"
	"strconv"

	"github.com/ArowuTest/bridgetunes-rewards-backend/internal/middleware"
	"github.com/ArowuTest/bridgetunes-rewards-backend/internal/models"
	"github.com/ArowuTest/bridgetunes-rewards-backend/internal/services"
	"github.com/gin-gonic/gin"
)

// TriviaHandler handles trivia requests
type TriviaHandler struct {
	triviaService *services.TriviaService
}

// NewTriviaHandler creates a new TriviaHandler
func NewTriviaHandler(triviaService *services.TriviaService) *TriviaHandler {
	return &TriviaHandler{triviaService: triviaService}
}

type answerRequest struct {
	SelectedIndex *int `json:"selectedIndex" binding:"required"`
}

type questionRequest struct {
	Category     string   `json:"category"`
	Difficulty   string   `json:"difficulty"`
	Question     string   `json:"question" binding:"required"`
	Options      []string `json:"options" binding:"required"`
	CorrectIndex int      `json:"correctIndex"`
	Points       int64    `json:"points"`
	IsActive     *bool    `json:"isActive"`
}

// ListQuestions handles GET /trivia/questions
func (h *TriviaHandler) ListQuestions(c *gin.Context) {
	limit, err := strconv.Atoi(c.DefaultQuery("limit", "10"))
	if err != nil || limit < 1 || limit > maxPageSize {
		limit = 10
	}
	questions, err := h.triviaService.ListQuestions(c.Request.Context(), middleware.UserID(c), c.Query("category"), limit)
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, questions)
}

// Answer handles POST /trivia/questions/:id/answer
func (h *TriviaHandler) Answer(c *gin.Context) {
	id, ok := pathID(c, "id")
	if !ok {
		return
	}
	var req answerRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		badRequest(c, err.Error())
		return
	}
	result, err := h.triviaService.Answer(c.Request.Context(), middleware.UserID(c), id, *req.SelectedIndex)
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, result)
}

// Stats handles GET /trivia/stats
func (h *TriviaHandler) Stats(c *gin.Context) {
	stats, err := h.triviaService.Stats(c.Request.Context(), middleware.UserID(c))
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, stats)
}

// CreateQuestion handles POST /admin/trivia/questions
func (h *TriviaHandler) CreateQuestion(c *gin.Context) {
	var req questionRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		badRequest(c, err.Error())
		return
	}
	question, err := h.triviaService.CreateQuestion(c.Request.Context(), &models.TriviaQuestion{
		Category:     req.Category,
		Difficulty:   req.Difficulty,
		Question:     req.Question,
		Options:      req.Options,
		CorrectIndex: req.CorrectIndex,
		Points:       req.Points,
		IsActive:     activeOrDefault(req.IsActive),
	})
	if err != nil {
		respondError(c, err)
		return
	}
	// correctIndex is hidden from players but the author needs it back
	c.JSON(http.StatusCreated, gin.H{"question": question, "correctIndex": question.CorrectIndex})
}
