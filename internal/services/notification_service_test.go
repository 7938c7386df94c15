package services

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"artlink_backend/internal/appErrors"
	"artlink_backend/internal/models"
	"artlink_backend/internal/repositories"
)

func publishTestNotification(t *testing.T, fanout *FanoutService, recipientID, actorID string) {
	t.Helper()
	fanout.Publish(context.Background(), Event{
		Recipients: []string{recipientID},
		Type:       models.NotificationNewFollower,
		ActorID:    &actorID,
		Title:      "New follower",
		Body:       "You have a new follower",
	})
}

func TestNotificationReadLifecycle(t *testing.T) {
	db := openTestDB(t)
	fanout := newTestFanout(t, db)
	svc := NewNotificationService(repositories.NewNotificationRepository(db))

	publishTestNotification(t, fanout, "bob", "alice")
	publishTestNotification(t, fanout, "bob", "carol")

	count, err := svc.GetUnreadCount("bob")
	require.NoError(t, err)
	assert.EqualValues(t, 2, count)

	list, err := svc.GetUserNotifications("bob", 20, 0)
	require.NoError(t, err)
	require.Len(t, list.Notifications, 2)
	assert.EqualValues(t, 2, list.UnreadCount)

	target := list.Notifications[0]
	require.NoError(t, svc.MarkAsRead("bob", target.ID))
	// Re-reading is a no-op, not an error.
	require.NoError(t, svc.MarkAsRead("bob", target.ID))

	count, err = svc.GetUnreadCount("bob")
	require.NoError(t, err)
	assert.EqualValues(t, 1, count)

	require.NoError(t, svc.MarkAllAsRead("bob"))
	count, err = svc.GetUnreadCount("bob")
	require.NoError(t, err)
	assert.EqualValues(t, 0, count)
}

func TestMarkAsReadRejectsForeignNotification(t *testing.T) {
	db := openTestDB(t)
	fanout := newTestFanout(t, db)
	svc := NewNotificationService(repositories.NewNotificationRepository(db))

	publishTestNotification(t, fanout, "bob", "alice")

	list, err := svc.GetUserNotifications("bob", 20, 0)
	require.NoError(t, err)
	require.Len(t, list.Notifications, 1)

	// Another user cannot read bob's notification, and bob's state is intact.
	err = svc.MarkAsRead("mallory", list.Notifications[0].ID)
	assert.True(t, appErrors.Is(err, appErrors.ErrNotificationNotFound))

	count, err := svc.GetUnreadCount("bob")
	require.NoError(t, err)
	assert.EqualValues(t, 1, count)
}

func TestFanoutPersistsEvenWhenDevicePushFails(t *testing.T) {
	db := openTestDB(t)
	fanout := newTestFanout(t, db)

	// The recipient has no registered devices and no live connection; the
	// notification row must still land.
	publishTestNotification(t, fanout, "bob", "alice")

	var count int64
	require.NoError(t, db.Model(&models.Notification{}).Where("user_id = ?", "bob").Count(&count).Error)
	assert.EqualValues(t, 1, count)
}
