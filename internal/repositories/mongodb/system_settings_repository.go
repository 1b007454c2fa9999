package mongodb

import (
	"context"
	"time"

	"github.com/ArowuTest/bridgetunes-rewards-backend/internal/models"
	"github.com/ArowuTest/bridgetunes-rewards-backend/internal/repositories"
	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"
)

var _ repositories.SystemSettingsRepository = (*SystemSettingsRepository)(nil)

// SystemSettingsRepository implements repositories.SystemSettingsRepository.
// The collection holds a single settings document.
type SystemSettingsRepository struct {
	collection *mongo.Collection
}

// NewSystemSettingsRepository creates a new SystemSettingsRepository
func NewSystemSettingsRepository(db *mongo.Database) *SystemSettingsRepository {
	return &SystemSettingsRepository{
		collection: db.Collection("system_settings"),
	}
}

// GetSettings retrieves the current system settings
func (r *SystemSettingsRepository) GetSettings(ctx context.Context) (*models.SystemSettings, error) {
	var settings models.SystemSettings
	if err := r.collection.FindOne(ctx, bson.M{}).Decode(&settings); err != nil {
		return nil, translate(err)
	}
	return &settings, nil
}

// UpdateSettings replaces the settings document, creating it when missing
func (r *SystemSettingsRepository) UpdateSettings(ctx context.Context, settings *models.SystemSettings) error {
	if settings.CreatedAt.IsZero() {
		settings.CreatedAt = time.Now()
	}
	settings.UpdatedAt = time.Now()
	update := bson.M{"$set": bson.M{
		"notificationGateway": settings.NotificationGateway,
		"demoDurationDays":    settings.DemoDurationDays,
		"updatedAt":           settings.UpdatedAt,
		"updatedBy":           settings.UpdatedBy,
	}, "$setOnInsert": bson.M{"createdAt": settings.CreatedAt}}
	_, err := r.collection.UpdateOne(ctx, bson.M{}, update, options.Update().SetUpsert(true))
	return err
}
