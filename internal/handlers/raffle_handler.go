package handlers

import (
	"net/http"
	"time"

	"github.com/ArowuTest/bridgetunes-rewards-backend/internal/middleware"
	"github.com/ArowuTest/bridgetunes-rewards-backend/internal/models"
	"github.com/ArowuTest/bridgetunes-rewards-backend/internal/services"
	"github.com/gin-gonic/gin"
)

// RaffleHandler handles raffle-related HTTP requests
type RaffleHandler struct {
	raffleService *services.RaffleService
}

// NewRaffleHandler creates a new RaffleHandler
func NewRaffleHandler(raffleService *services.RaffleService) *RaffleHandler {
	return &RaffleHandler{raffleService: raffleService}
}

type raffleRequest struct {
	Name            string    `json:"name" binding:"required"`
	Description     string    `json:"description"`
	Prize           string    `json:"prize" binding:"required"`
	RequiredPoints  int64     `json:"requiredPoints" binding:"required"`
	MaxParticipants int       `json:"maxParticipants"`
	IsActive        *bool     `json:"isActive"`
	StartDate       time.Time `json:"startDate"`
	EndDate         time.Time `json:"endDate" binding:"required"`
}

// ListRaffles handles GET /raffles
func (h *RaffleHandler) ListRaffles(c *gin.Context) {
	raffles, err := h.raffleService.ListRaffles(c.Request.Context(), middleware.UserID(c))
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, raffles)
}

// GetRaffle handles GET /raffles/:id
func (h *RaffleHandler) GetRaffle(c *gin.Context) {
	id, ok := pathID(c, "id")
	if !ok {
		return
	}
	raffle, err := h.raffleService.GetRaffle(c.Request.Context(), id)
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, raffle)
}

// Participate handles POST /raffles/:id/participate
func (h *RaffleHandler) Participate(c *gin.Context) {
	id, ok := pathID(c, "id")
	if !ok {
		return
	}
	result, err := h.raffleService.Participate(c.Request.Context(), middleware.UserID(c), id)
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusCreated, result)
}

// ListParticipations handles GET /me/raffles
func (h *RaffleHandler) ListParticipations(c *gin.Context) {
	participations, err := h.raffleService.ListParticipations(c.Request.Context(), middleware.UserID(c))
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, participations)
}

// CheckResults handles GET /me/raffles/results
func (h *RaffleHandler) CheckResults(c *gin.Context) {
	results, err := h.raffleService.CheckResults(c.Request.Context(), middleware.UserID(c))
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, results)
}

// CreateRaffle handles POST /admin/raffles
func (h *RaffleHandler) CreateRaffle(c *gin.Context) {
	var req raffleRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		badRequest(c, err.Error())
		return
	}
	raffle, err := h.raffleService.CreateRaffle(c.Request.Context(), &models.Raffle{
		Name:            req.Name,
		Description:     req.Description,
		Prize:           req.Prize,
		RequiredPoints:  req.RequiredPoints,
		MaxParticipants: req.MaxParticipants,
		IsActive:        activeOrDefault(req.IsActive),
		StartDate:       req.StartDate,
		EndDate:         req.EndDate,
	})
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusCreated, raffle)
}

// DrawRaffle handles POST /admin/raffles/:id/draw
func (h *RaffleHandler) DrawRaffle(c *gin.Context) {
	id, ok := pathID(c, "id")
	if !ok {
		return
	}
	raffle, err := h.raffleService.DrawRaffle(c.Request.Context(), id)
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, raffle)
}

// MarkWinner handles POST /admin/participations/:id/winner
func (h *RaffleHandler) MarkWinner(c *gin.Context) {
	id, ok := pathID(c, "id")
	if !ok {
		return
	}
	participation, err := h.raffleService.MarkWinner(c.Request.Context(), id)
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, participation)
}
