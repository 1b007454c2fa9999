package handlers

import (
	"net/http"

	"github.com/ArowuTest/bridgetunes-rewards-backend/internal/middleware"
	"github.com/ArowuTest/bridgetunes-rewards-backend/internal/models"
	"github.com/ArowuTest/bridgetunes-rewards-backend/internal/services"
	"github.com/gin-gonic/gin"
)

// SystemSettingsHandler handles system settings-related HTTP requests
type SystemSettingsHandler struct {
	settingsService *services.SettingsService
}

// NewSystemSettingsHandler creates a new SystemSettingsHandler
func NewSystemSettingsHandler(settingsService *services.SettingsService) *SystemSettingsHandler {
	return &SystemSettingsHandler{settingsService: settingsService}
}

type settingsRequest struct {
	NotificationGateway string `json:"notificationGateway"`
	DemoDurationDays    int    `json:"demoDurationDays"`
}

// GetSettings handles GET /admin/settings
func (h *SystemSettingsHandler) GetSettings(c *gin.Context) {
	settings, err := h.settingsService.Get(c.Request.Context())
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, settings)
}

// UpdateSettings handles PUT /admin/settings
func (h *SystemSettingsHandler) UpdateSettings(c *gin.Context) {
	var req settingsRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		badRequest(c, err.Error())
		return
	}
	updatedBy := c.GetString(middleware.ContextUserEmail)
	settings, err := h.settingsService.Update(c.Request.Context(), &models.SystemSettings{
		NotificationGateway: req.NotificationGateway,
		DemoDurationDays:    req.DemoDurationDays,
	}, updatedBy)
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, settings)
}
