package handlers

import (
	"net/http"
	"time"

	"github.com/ArowuTest/bridgetunes-rewards-backend/internal/middleware"
	"github.com/ArowuTest/bridgetunes-rewards-backend/internal/models"
	"github.com/ArowuTest/bridgetunes-rewards-backend/internal/services"
	"github.com/gin-gonic/gin"
)

// RewardHandler handles catalog and redemption requests
type RewardHandler struct {
	rewardService *services.RewardService
}

// NewRewardHandler creates a new RewardHandler
func NewRewardHandler(rewardService *services.RewardService) *RewardHandler {
	return &RewardHandler{rewardService: rewardService}
}

type rewardRequest struct {
	Name           string     `json:"name" binding:"required"`
	Description    string     `json:"description"`
	Category       string     `json:"category" binding:"required"`
	PointsRequired int64      `json:"pointsRequired" binding:"required"`
	Stock          int        `json:"stock"`
	IsActive       *bool      `json:"isActive"`
	ImageURL       string     `json:"imageUrl"`
	ExpirationDate *time.Time `json:"expirationDate"`
}

func (r rewardRequest) toModel() *models.Reward {
	return &models.Reward{
		Name:           r.Name,
		Description:    r.Description,
		Category:       r.Category,
		PointsRequired: r.PointsRequired,
		Stock:          r.Stock,
		IsActive:       activeOrDefault(r.IsActive),
		ImageURL:       r.ImageURL,
		ExpirationDate: r.ExpirationDate,
	}
}

// ListRewards handles GET /rewards
func (h *RewardHandler) ListRewards(c *gin.Context) {
	rewards, err := h.rewardService.ListRewards(c.Request.Context(), middleware.UserID(c), c.Query("category"))
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, rewards)
}

// GetReward handles GET /rewards/:id
func (h *RewardHandler) GetReward(c *gin.Context) {
	id, ok := pathID(c, "id")
	if !ok {
		return
	}
	reward, err := h.rewardService.GetReward(c.Request.Context(), id)
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, reward)
}

// Redeem handles POST /rewards/:id/redeem
func (h *RewardHandler) Redeem(c *gin.Context) {
	id, ok := pathID(c, "id")
	if !ok {
		return
	}
	result, err := h.rewardService.Redeem(c.Request.Context(), middleware.UserID(c), id)
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusCreated, result)
}

// ListUserRewards handles GET /me/rewards
func (h *RewardHandler) ListUserRewards(c *gin.Context) {
	rewards, err := h.rewardService.ListUserRewards(c.Request.Context(), middleware.UserID(c))
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, rewards)
}

// UseReward handles POST /me/rewards/:id/use
func (h *RewardHandler) UseReward(c *gin.Context) {
	id, ok := pathID(c, "id")
	if !ok {
		return
	}
	userReward, err := h.rewardService.UseReward(c.Request.Context(), middleware.UserID(c), id)
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, userReward)
}

// CreateReward handles POST /admin/rewards
func (h *RewardHandler) CreateReward(c *gin.Context) {
	var req rewardRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		badRequest(c, err.Error())
		return
	}
	reward, err := h.rewardService.CreateReward(c.Request.Context(), req.toModel())
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusCreated, reward)
}

// UpdateReward handles PUT /admin/rewards/:id
func (h *RewardHandler) UpdateReward(c *gin.Context) {
	id, ok := pathID(c, "id")
	if !ok {
		return
	}
	var req rewardRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		badRequest(c, err.Error())
		return
	}
	reward, err := h.rewardService.UpdateReward(c.Request.Context(), id, req.toModel())
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, reward)
}
