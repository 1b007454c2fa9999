package services

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/ArowuTest/bridgetunes-rewards-backend/internal/access"
	"github.com/ArowuTest/bridgetunes-rewards-backend/internal/models"
	"github.com/ArowuTest/bridgetunes-rewards-backend/internal/repositories"
	"go.mongodb.org/mongo-driver/bson/primitive"
)

// loadAccess fetches a user and evaluates its access status at now
func loadAccess(ctx context.Context, users repositories.UserRepository, userID primitive.ObjectID, now time.Time) (*models.User, models.AccessStatus, error) {
	user, err := users.FindByID(ctx, userID)
	if err != nil {
		if errors.Is(err, repositories.ErrNotFound) {
			return nil, models.AccessStatus{}, ErrUserNotFound
		}
		return nil, models.AccessStatus{}, fmt.Errorf("failed to load user: %w", err)
	}
	return user, access.Evaluate(user, now), nil
}

// requireSubscribed maps a failed subscriber-only check to the error the user should see
func requireSubscribed(status models.AccessStatus, allowed bool) error {
	if allowed {
		return nil
	}
	if status.IsDemoUser {
		return ErrDemoRestricted
	}
	return ErrSubscriptionRequired
}

// requireViewer guards the catalog listings open to subscribers and unexpired demo users
func requireViewer(allowed bool) error {
	if allowed {
		return nil
	}
	return ErrAccessDenied
}
