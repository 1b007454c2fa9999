package services

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"github.com/ArowuTest/bridgetunes-rewards-backend/internal/metrics"
	"github.com/ArowuTest/bridgetunes-rewards-backend/internal/models"
	"github.com/ArowuTest/bridgetunes-rewards-backend/internal/repositories"
	"github.com/ArowuTest/bridgetunes-rewards-backend/pkg/gateway"
	"go.mongodb.org/mongo-driver/bson/primitive"
)

// Notifier sends a notification to a user
type Notifier interface {
	Notify(ctx context.Context, userID primitive.ObjectID, notificationType, title, message string, data map[string]string) (*models.Notification, error)
}

// Compile-time check to ensure NotificationService implements Notifier
var _ Notifier = (*NotificationService)(nil)

// fallbackOrder is the order in which gateways are tried after the preferred one
var fallbackOrder = []string{gateway.Push, gateway.Webhook, gateway.Mock}

// NotificationService stores in-app notifications and delivers them through the configured gateways
type NotificationService struct {
	notificationRepo repositories.NotificationRepository
	settings         *SettingsService
	gateways         map[string]gateway.Gateway
	metrics          *metrics.Metrics
	now              func() time.Time
}

// NewNotificationService creates a new NotificationService. Nil gateways are skipped.
func NewNotificationService(notificationRepo repositories.NotificationRepository, settings *SettingsService, m *metrics.Metrics, gateways ...gateway.Gateway) *NotificationService {
	byName := make(map[string]gateway.Gateway, len(gateways))
	for _, g := range gateways {
		if g != nil {
			byName[g.Name()] = g
		}
	}
	return &NotificationService{
		notificationRepo: notificationRepo,
		settings:         settings,
		gateways:         byName,
		metrics:          m,
		now:              time.Now,
	}
}

// Notify stores a notification and attempts delivery. A delivery failure is recorded on the
// notification and is not returned as an error.
func (s *NotificationService) Notify(ctx context.Context, userID primitive.ObjectID, notificationType, title, message string, data map[string]string) (*models.Notification, error) {
	n := &models.Notification{
		UserID:    userID,
		Title:     title,
		Message:   message,
		Type:      notificationType,
		Data:      data,
		Status:    models.DeliveryPending,
		CreatedAt: s.now(),
	}

	preferred := gateway.Mock
	if settings, err := s.settings.Get(ctx); err != nil {
		slog.Warn("Failed to load settings for notification, using mock gateway", "error", err)
	} else {
		preferred = settings.NotificationGateway
	}
	n.Gateway = preferred

	if err := s.notificationRepo.Create(ctx, n); err != nil {
		return nil, fmt.Errorf("failed to create notification: %w", err)
	}

	msg := gateway.Message{
		UserID:  userID.Hex(),
		Title:   title,
		Body:    message,
		Type:    notificationType,
		Data:    data,
		Created: n.CreatedAt,
	}
	n.Status = models.DeliveryFailed
	for _, name := range s.deliveryOrder(preferred) {
		messageID, err := s.gateways[name].Send(ctx, msg)
		if err != nil {
			slog.Warn("Notification delivery failed", "gateway", name, "error", err, "notificationId", n.ID.Hex())
			s.metrics.Notification(name, models.DeliveryFailed)
			continue
		}
		n.Gateway = name
		n.Status = models.DeliverySent
		n.MessageID = messageID
		s.metrics.Notification(name, models.DeliverySent)
		break
	}

	if err := s.notificationRepo.UpdateDelivery(ctx, n.ID, n.Gateway, n.Status, n.MessageID); err != nil {
		slog.Error("Failed to record notification delivery", "error", err, "notificationId", n.ID.Hex())
	}
	return n, nil
}

func (s *NotificationService) deliveryOrder(preferred string) []string {
	order := make([]string, 0, len(fallbackOrder))
	if _, ok := s.gateways[preferred]; ok {
		order = append(order, preferred)
	}
	for _, name := range fallbackOrder {
		if _, ok := s.gateways[name]; ok && name != preferred {
			order = append(order, name)
		}
	}
	return order
}

// List returns a page of a user's notifications, newest first
func (s *NotificationService) List(ctx context.Context, userID primitive.ObjectID, unreadOnly bool, page, limit int) ([]*models.Notification, error) {
	notifications, err := s.notificationRepo.FindByUserID(ctx, userID, unreadOnly, page, limit)
	if err != nil {
		return nil, fmt.Errorf("failed to list notifications: %w", err)
	}
	return notifications, nil
}

// UnreadCount returns the number of unread notifications of a user
func (s *NotificationService) UnreadCount(ctx context.Context, userID primitive.ObjectID) (int64, error) {
	count, err := s.notificationRepo.CountUnread(ctx, userID)
	if err != nil {
		return 0, fmt.Errorf("failed to count unread notifications: %w", err)
	}
	return count, nil
}

// MarkRead marks one notification of the user as read
func (s *NotificationService) MarkRead(ctx context.Context, userID, notificationID primitive.ObjectID) error {
	err := s.notificationRepo.MarkRead(ctx, userID, notificationID, s.now())
	if errors.Is(err, repositories.ErrNotFound) {
		return ErrNotificationNotFound
	}
	if err != nil {
		return fmt.Errorf("failed to mark notification read: %w", err)
	}
	return nil
}

// MarkAllRead marks every notification of the user as read and returns how many changed
func (s *NotificationService) MarkAllRead(ctx context.Context, userID primitive.ObjectID) (int64, error) {
	count, err := s.notificationRepo.MarkAllRead(ctx, userID, s.now())
	if err != nil {
		return 0, fmt.Errorf("failed to mark notifications read: %w", err)
	}
	return count, nil
}

// Delete removes one notification of the user
func (s *NotificationService) Delete(ctx context.Context, userID, notificationID primitive.ObjectID) error {
	err := s.notificationRepo.Delete(ctx, userID, notificationID)
	if errors.Is(err, repositories.ErrNotFound) {
		return ErrNotificationNotFound
	}
	if err != nil {
		return fmt.Errorf("failed to delete notification: %w", err)
	}
	return nil
}

// notify is the best-effort form used after a business operation already succeeded
func notify(ctx context.Context, n Notifier, userID primitive.ObjectID, notificationType, title, message string, data map[string]string) {
	if n == nil {
		return
	}
	if _, err := n.Notify(ctx, userID, notificationType, title, message, data); err != nil {
		slog.Error("Failed to send notification", "error", err, "userId", userID.Hex(), "type", notificationType)
	}
}
