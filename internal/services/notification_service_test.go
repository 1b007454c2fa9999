package services

import (
	"testing"

	"github.com/ArowuTest/bridgetunes-rewards-backend/internal/models"
	"github.com/ArowuTest/bridgetunes-rewards-backend/internal/repositories/memory"
	"github.com/ArowuTest/bridgetunes-rewards-backend/pkg/gateway"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.mongodb.org/mongo-driver/bson/primitive"
)

func TestNotifyUsesPreferredGateway(t *testing.T) {
	env := newTestEnv(t)
	push := &stubGateway{name: gateway.Push}
	webhook := &stubGateway{name: gateway.Webhook}
	svc := NewNotificationService(env.repos.Notifications, env.settings, env.metrics, push, webhook, env.gateway)

	_, err := env.settings.Update(env.ctx, &models.SystemSettings{NotificationGateway: "webhook"}, "admin")
	require.NoError(t, err)

	n, err := svc.Notify(env.ctx, primitive.NewObjectID(), models.NotificationSystem, "Hello", "World", nil)
	require.NoError(t, err)
	assert.Equal(t, gateway.Webhook, n.Gateway)
	assert.Equal(t, models.DeliverySent, n.Status)
	assert.NotEmpty(t, n.MessageID)
	assert.Equal(t, 1, webhook.sent)
	assert.Zero(t, push.sent)
}

func TestNotifyFallsBack(t *testing.T) {
	env := newTestEnv(t)
	push := &stubGateway{name: gateway.Push, fail: true}
	webhook := &stubGateway{name: gateway.Webhook, fail: true}
	svc := NewNotificationService(env.repos.Notifications, env.settings, env.metrics, push, webhook, env.gateway)

	_, err := env.settings.Update(env.ctx, &models.SystemSettings{NotificationGateway: gateway.Push}, "admin")
	require.NoError(t, err)

	userID := primitive.NewObjectID()
	n, err := svc.Notify(env.ctx, userID, models.NotificationSystem, "Hello", "World", nil)
	require.NoError(t, err)
	assert.Equal(t, gateway.Mock, n.Gateway)
	assert.Equal(t, models.DeliverySent, n.Status)
	assert.Len(t, env.gateway.Sent(), 1)

	stored, err := svc.List(env.ctx, userID, false, 1, 10)
	require.NoError(t, err)
	require.Len(t, stored, 1)
	assert.Equal(t, gateway.Mock, stored[0].Gateway)
}

func TestNotifyAllGatewaysFail(t *testing.T) {
	env := newTestEnv(t)
	env.gateway.Fail = true

	userID := primitive.NewObjectID()
	n, err := env.notifications.Notify(env.ctx, userID, models.NotificationSystem, "Hello", "World", nil)
	require.NoError(t, err)
	assert.Equal(t, models.DeliveryFailed, n.Status)

	count, err := env.notifications.UnreadCount(env.ctx, userID)
	require.NoError(t, err)
	assert.Equal(t, int64(1), count)
}

func TestNotificationInbox(t *testing.T) {
	env := newTestEnv(t)
	userID := primitive.NewObjectID()
	first, err := env.notifications.Notify(env.ctx, userID, models.NotificationSystem, "One", "1", nil)
	require.NoError(t, err)
	env.clock.Advance(1)
	_, err = env.notifications.Notify(env.ctx, userID, models.NotificationSystem, "Two", "2", nil)
	require.NoError(t, err)
	env.clock.Advance(1)
	third, err := env.notifications.Notify(env.ctx, userID, models.NotificationSystem, "Three", "3", nil)
	require.NoError(t, err)

	require.NoError(t, env.notifications.MarkRead(env.ctx, userID, first.ID))
	assert.ErrorIs(t, env.notifications.MarkRead(env.ctx, primitive.NewObjectID(), first.ID), ErrNotificationNotFound)

	unread, err := env.notifications.List(env.ctx, userID, true, 1, 10)
	require.NoError(t, err)
	assert.Len(t, unread, 2)

	updated, err := env.notifications.MarkAllRead(env.ctx, userID)
	require.NoError(t, err)
	assert.Equal(t, int64(2), updated)

	count, err := env.notifications.UnreadCount(env.ctx, userID)
	require.NoError(t, err)
	assert.Zero(t, count)

	require.NoError(t, env.notifications.Delete(env.ctx, userID, third.ID))
	assert.ErrorIs(t, env.notifications.Delete(env.ctx, userID, third.ID), ErrNotificationNotFound)

	all, err := env.notifications.List(env.ctx, userID, false, 1, 10)
	require.NoError(t, err)
	assert.Len(t, all, 2)
}

func TestSettingsDefaultsAndValidation(t *testing.T) {
	env := newTestEnv(t)
	settings := NewSettingsService(memory.NewSystemSettingsRepository(), "push", 5)

	current, err := settings.Get(env.ctx)
	require.NoError(t, err)
	assert.Equal(t, gateway.Push, current.NotificationGateway)
	assert.Equal(t, 5, current.DemoDurationDays)

	_, err = settings.Update(env.ctx, &models.SystemSettings{NotificationGateway: "sms"}, "admin")
	assert.ErrorIs(t, err, ErrInvalidSettings)
	_, err = settings.Update(env.ctx, &models.SystemSettings{DemoDurationDays: 400}, "admin")
	assert.ErrorIs(t, err, ErrInvalidSettings)

	updated, err := settings.Update(env.ctx, &models.SystemSettings{DemoDurationDays: 14}, "admin@example.com")
	require.NoError(t, err)
	assert.Equal(t, 14, updated.DemoDurationDays)
	assert.Equal(t, gateway.Push, updated.NotificationGateway)
	assert.Equal(t, "admin@example.com", updated.UpdatedBy)

	current, err = settings.Get(env.ctx)
	require.NoError(t, err)
	assert.Equal(t, 14, current.DemoDurationDays)
}
