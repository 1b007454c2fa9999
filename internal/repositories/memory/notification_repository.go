package memory

import (
	"context"
	"sync"
	"time"

	"github.com/ArowuTest/bridgetunes-rewards-backend/internal/models"
	"github.com/ArowuTest/bridgetunes-rewards-backend/internal/repositories"
	"go.mongodb.org/mongo-driver/bson/primitive"
)

var (
	_ repositories.NotificationRepository   = (*NotificationRepository)(nil)
	_ repositories.SystemSettingsRepository = (*SystemSettingsRepository)(nil)
)

// NotificationRepository stores notifications in memory
type NotificationRepository struct {
	mu            sync.RWMutex
	notifications map[primitive.ObjectID]*models.Notification
}

// NewNotificationRepository creates a new NotificationRepository
func NewNotificationRepository() *NotificationRepository {
	return &NotificationRepository{notifications: make(map[primitive.ObjectID]*models.Notification)}
}

// Create inserts a notification
func (r *NotificationRepository) Create(_ context.Context, n *models.Notification) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	if n.ID.IsZero() {
		n.ID = primitive.NewObjectID()
	}
	c := *n
	r.notifications[n.ID] = &c
	return nil
}

// FindByID finds a notification by ID
func (r *NotificationRepository) FindByID(_ context.Context, id primitive.ObjectID) (*models.Notification, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	n, ok := r.notifications[id]
	if !ok {
		return nil, repositories.ErrNotFound
	}
	c := *n
	return &c, nil
}

// FindByUserID lists a user's notifications, newest first
func (r *NotificationRepository) FindByUserID(_ context.Context, userID primitive.ObjectID, unreadOnly bool, page, limit int) ([]*models.Notification, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	out := []*models.Notification{}
	for _, n := range r.notifications {
		if n.UserID != userID || (unreadOnly && n.IsRead) {
			continue
		}
		c := *n
		out = append(out, &c)
	}
	sortNewestFirst(out, func(n *models.Notification) int64 { return n.CreatedAt.UnixNano() })
	return paginate(out, page, limit), nil
}

// CountUnread counts a user's unread notifications
func (r *NotificationRepository) CountUnread(_ context.Context, userID primitive.ObjectID) (int64, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	var count int64
	for _, n := range r.notifications {
		if n.UserID == userID && !n.IsRead {
			count++
		}
	}
	return count, nil
}

// UpdateDelivery records the delivery outcome of a notification
func (r *NotificationRepository) UpdateDelivery(_ context.Context, id primitive.ObjectID, gateway, status, messageID string) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	n, ok := r.notifications[id]
	if !ok {
		return repositories.ErrNotFound
	}
	n.Gateway = gateway
	n.Status = status
	n.MessageID = messageID
	return nil
}

// MarkRead marks one of the user's notifications as read
func (r *NotificationRepository) MarkRead(_ context.Context, userID, id primitive.ObjectID, at time.Time) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	n, ok := r.notifications[id]
	if !ok || n.UserID != userID {
		return repositories.ErrNotFound
	}
	if !n.IsRead {
		n.IsRead = true
		n.ReadAt = &at
	}
	return nil
}

// MarkAllRead marks every unread notification of the user as read
func (r *NotificationRepository) MarkAllRead(_ context.Context, userID primitive.ObjectID, at time.Time) (int64, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	var updated int64
	for _, n := range r.notifications {
		if n.UserID == userID && !n.IsRead {
			readAt := at
			n.IsRead = true
			n.ReadAt = &readAt
			updated++
		}
	}
	return updated, nil
}

// Delete removes one of the user's notifications
func (r *NotificationRepository) Delete(_ context.Context, userID, id primitive.ObjectID) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	n, ok := r.notifications[id]
	if !ok || n.UserID != userID {
		return repositories.ErrNotFound
	}
	delete(r.notifications, id)
	return nil
}

// SystemSettingsRepository holds the single settings document in memory
type SystemSettingsRepository struct {
	mu       sync.RWMutex
	settings *models.SystemSettings
}

// NewSystemSettingsRepository creates a new SystemSettingsRepository
func NewSystemSettingsRepository() *SystemSettingsRepository {
	return &SystemSettingsRepository{}
}

// GetSettings returns the stored settings or ErrNotFound
func (r *SystemSettingsRepository) GetSettings(_ context.Context) (*models.SystemSettings, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	if r.settings == nil {
		return nil, repositories.ErrNotFound
	}
	c := *r.settings
	return &c, nil
}

// UpdateSettings stores the settings
func (r *SystemSettingsRepository) UpdateSettings(_ context.Context, settings *models.SystemSettings) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	if settings.CreatedAt.IsZero() {
		settings.CreatedAt = time.Now()
	}
	settings.UpdatedAt = time.Now()
	c := *settings
	r.settings = &c
	return nil
}
