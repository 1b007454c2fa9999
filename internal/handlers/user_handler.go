package handlers

import (
	"net/http"

	"github.com/ArowuTest/bridgetunes-rewards-backend/internal/middleware"
	"github.com/ArowuTest/bridgetunes-rewards-backend/internal/services"
	"github.com/gin-gonic/gin"
	"go.mongodb.org/mongo-driver/bson/primitive"
)

// UserHandler handles profile, subscription and point balance requests
type UserHandler struct {
	userService   *services.UserService
	ledgerService *services.LedgerService
}

// NewUserHandler creates a new UserHandler
func NewUserHandler(userService *services.UserService, ledgerService *services.LedgerService) *UserHandler {
	return &UserHandler{userService: userService, ledgerService: ledgerService}
}

// GetMe handles GET /me
func (h *UserHandler) GetMe(c *gin.Context) {
	profile, err := h.userService.GetProfile(c.Request.Context(), middleware.UserID(c))
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, profile)
}

// GetAccess handles GET /me/access
func (h *UserHandler) GetAccess(c *gin.Context) {
	status, err := h.userService.GetAccessStatus(c.Request.Context(), middleware.UserID(c))
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, status)
}

// Subscribe handles POST /me/subscription
func (h *UserHandler) Subscribe(c *gin.Context) {
	user, err := h.userService.Subscribe(c.Request.Context(), middleware.UserID(c))
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, user)
}

// CancelSubscription handles DELETE /me/subscription
func (h *UserHandler) CancelSubscription(c *gin.Context) {
	user, err := h.userService.CancelSubscription(c.Request.Context(), middleware.UserID(c))
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, user)
}

// GetBalance handles GET /points/balance
func (h *UserHandler) GetBalance(c *gin.Context) {
	balance, err := h.ledgerService.GetBalance(c.Request.Context(), middleware.UserID(c))
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, balance)
}

// GetTransactions handles GET /points/transactions
func (h *UserHandler) GetTransactions(c *gin.Context) {
	page, limit := pagination(c)
	transactions, total, err := h.ledgerService.GetTransactions(c.Request.Context(), middleware.UserID(c), page, limit)
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"transactions": transactions, "total": total, "page": page, "limit": limit})
}

type grantPointsRequest struct {
	UserID string `json:"userId" binding:"required"`
	Amount int64  `json:"amount" binding:"required"`
	Reason string `json:"reason"`
}

// GrantPoints handles POST /admin/points/grant
func (h *UserHandler) GrantPoints(c *gin.Context) {
	var req grantPointsRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		badRequest(c, err.Error())
		return
	}
	userID, err := primitive.ObjectIDFromHex(req.UserID)
	if err != nil {
		badRequest(c, "Invalid user ID format")
		return
	}
	tx, err := h.userService.GrantPoints(c.Request.Context(), middleware.UserID(c), userID, req.Amount, req.Reason)
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusCreated, tx)
}
