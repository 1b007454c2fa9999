package services

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"strings"
	"time"

	"github.com/ArowuTest/bridgetunes-rewards-backend/internal/models"
	"github.com/ArowuTest/bridgetunes-rewards-backend/internal/repositories"
	"github.com/ArowuTest/bridgetunes-rewards-backend/pkg/gateway"
)

const maxDemoDurationDays = 365

// SettingsService handles system settings business logic
type SettingsService struct {
	settingsRepo repositories.SystemSettingsRepository
	defaults     models.SystemSettings
	now          func() time.Time
}

// NewSettingsService creates a new SettingsService. The defaults apply until an admin saves settings.
func NewSettingsService(settingsRepo repositories.SystemSettingsRepository, defaultGateway string, demoDurationDays int) *SettingsService {
	return &SettingsService{
		settingsRepo: settingsRepo,
		defaults: models.SystemSettings{
			NotificationGateway: strings.ToUpper(defaultGateway),
			DemoDurationDays:    demoDurationDays,
		},
		now: time.Now,
	}
}

// Get returns the current settings, falling back to the configured defaults
func (s *SettingsService) Get(ctx context.Context) (*models.SystemSettings, error) {
	settings, err := s.settingsRepo.GetSettings(ctx)
	if errors.Is(err, repositories.ErrNotFound) {
		d := s.defaults
		return &d, nil
	}
	if err != nil {
		return nil, fmt.Errorf("failed to load system settings: %w", err)
	}
	if settings.NotificationGateway == "" {
		settings.NotificationGateway = s.defaults.NotificationGateway
	}
	if settings.DemoDurationDays <= 0 {
		settings.DemoDurationDays = s.defaults.DemoDurationDays
	}
	return settings, nil
}

// Update validates and stores new settings
func (s *SettingsService) Update(ctx context.Context, update *models.SystemSettings, updatedBy string) (*models.SystemSettings, error) {
	current, err := s.Get(ctx)
	if err != nil {
		return nil, err
	}

	if update.NotificationGateway != "" {
		name := strings.ToUpper(update.NotificationGateway)
		switch name {
		case gateway.Push, gateway.Webhook, gateway.Mock:
			current.NotificationGateway = name
		default:
			return nil, ErrInvalidSettings
		}
	}
	if update.DemoDurationDays != 0 {
		if update.DemoDurationDays < 0 || update.DemoDurationDays > maxDemoDurationDays {
			return nil, ErrInvalidSettings
		}
		current.DemoDurationDays = update.DemoDurationDays
	}
	current.UpdatedAt = s.now()
	current.UpdatedBy = updatedBy

	if err := s.settingsRepo.UpdateSettings(ctx, current); err != nil {
		return nil, fmt.Errorf("failed to update system settings: %w", err)
	}
	slog.Info("System settings updated", "gateway", current.NotificationGateway, "demoDurationDays", current.DemoDurationDays, "updatedBy", updatedBy)
	return current, nil
}
