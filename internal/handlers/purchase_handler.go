package handlers

import (
	"net/http"

	"github.com/ArowuTest/bridgetunes-rewards-backend/internal/middleware"
	"github.com/ArowuTest/bridgetunes-rewards-backend/internal/models"
	"github.com/ArowuTest/bridgetunes-rewards-backend/internal/services"
	"github.com/gin-gonic/gin"
)

// PurchaseHandler handles point package requests
type PurchaseHandler struct {
	purchaseService *services.PurchaseService
}

// NewPurchaseHandler creates a new PurchaseHandler
func NewPurchaseHandler(purchaseService *services.PurchaseService) *PurchaseHandler {
	return &PurchaseHandler{purchaseService: purchaseService}
}

type packageRequest struct {
	Name        string  `json:"name" binding:"required"`
	Points      int64   `json:"points" binding:"required"`
	BonusPoints int64   `json:"bonusPoints"`
	Price       float64 `json:"price" binding:"required"`
	Currency    string  `json:"currency"`
	IsActive    *bool   `json:"isActive"`
}

// ListPackages handles GET /packages
func (h *PurchaseHandler) ListPackages(c *gin.Context) {
	packages, err := h.purchaseService.ListPackages(c.Request.Context())
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, packages)
}

// Purchase handles POST /packages/:id/purchase
func (h *PurchaseHandler) Purchase(c *gin.Context) {
	id, ok := pathID(c, "id")
	if !ok {
		return
	}
	result, err := h.purchaseService.Purchase(c.Request.Context(), middleware.UserID(c), id)
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusCreated, result)
}

// ListPurchases handles GET /me/purchases
func (h *PurchaseHandler) ListPurchases(c *gin.Context) {
	page, limit := pagination(c)
	purchases, err := h.purchaseService.ListPurchases(c.Request.Context(), middleware.UserID(c), page, limit)
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, purchases)
}

// CreatePackage handles POST /admin/packages
func (h *PurchaseHandler) CreatePackage(c *gin.Context) {
	var req packageRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		badRequest(c, err.Error())
		return
	}
	currency := req.Currency
	if currency == "" {
		currency = "NGN"
	}
	pkg, err := h.purchaseService.CreatePackage(c.Request.Context(), &models.PointPackage{
		Name:        req.Name,
		Points:      req.Points,
		BonusPoints: req.BonusPoints,
		Price:       req.Price,
		Currency:    currency,
		IsActive:    activeOrDefault(req.IsActive),
	})
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusCreated, pkg)
}
