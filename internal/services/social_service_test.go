package services

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"

	"artlink_backend/database"
	"artlink_backend/internal/appErrors"
	"artlink_backend/internal/models"
	"artlink_backend/internal/push"
	"artlink_backend/internal/realtime"
	"artlink_backend/internal/realtime/bus"
	"artlink_backend/internal/repositories"
	repoChat "artlink_backend/internal/repositories/chat"
)

func openTestDB(t *testing.T) *gorm.DB {
	t.Helper()

	db, err := gorm.Open(sqlite.Open(":memory:"), &gorm.Config{
		Logger: logger.Default.LogMode(logger.Silent),
	})
	require.NoError(t, err)
	require.NoError(t, database.Migrate(db))
	return db
}

func newTestFanout(t *testing.T, db *gorm.DB) *FanoutService {
	t.Helper()

	notificationRepo := repositories.NewNotificationRepository(db)
	deviceRepo := repositories.NewDeviceRepository(db)
	receiptRepo := repoChat.NewReceiptRepository(db)
	dispatcher := push.NewDispatcherWithProviders(map[string]push.Provider{}, deviceRepo)

	return NewFanoutService(notificationRepo, receiptRepo, deviceRepo, dispatcher, bus.NewMemoryBus(), nil)
}

func TestSetFollowTogglesIdempotently(t *testing.T) {
	db := openTestDB(t)
	svc := NewSocialService(repositories.NewSocialRepository(db), newTestFanout(t, db))
	ctx := context.Background()

	// First follow flips the edge.
	result, err := svc.SetFollow(ctx, "alice", "bob", true)
	require.NoError(t, err)
	assert.True(t, result.IsActive)
	assert.True(t, result.StateChanged)
	assert.False(t, result.PreviousState)

	// Repeating it converges on the same state without a transition.
	result, err = svc.SetFollow(ctx, "alice", "bob", true)
	require.NoError(t, err)
	assert.True(t, result.IsActive)
	assert.False(t, result.StateChanged)
	assert.True(t, result.PreviousState)

	// Only one follower notification was persisted.
	var count int64
	require.NoError(t, db.Model(&models.Notification{}).
		Where("user_id = ? AND type = ?", "bob", models.NotificationNewFollower).
		Count(&count).Error)
	assert.EqualValues(t, 1, count)

	// Unfollow flips back; a second unfollow is a no-op.
	result, err = svc.SetFollow(ctx, "alice", "bob", false)
	require.NoError(t, err)
	assert.False(t, result.IsActive)
	assert.True(t, result.StateChanged)

	result, err = svc.SetFollow(ctx, "alice", "bob", false)
	require.NoError(t, err)
	assert.False(t, result.StateChanged)

	// The whole dance reused one edge row.
	var edges int64
	require.NoError(t, db.Model(&models.FollowEdge{}).Count(&edges).Error)
	assert.EqualValues(t, 1, edges)
}

func TestFollowPushesFollowNotificationEvent(t *testing.T) {
	db := openTestDB(t)

	eventBus := bus.NewMemoryBus()
	var seen []bus.Event
	require.NoError(t, eventBus.StartForwarder(context.Background(), func(e bus.Event) {
		seen = append(seen, e)
	}))

	deviceRepo := repositories.NewDeviceRepository(db)
	fanout := NewFanoutService(
		repositories.NewNotificationRepository(db),
		repoChat.NewReceiptRepository(db),
		deviceRepo,
		push.NewDispatcherWithProviders(map[string]push.Provider{}, deviceRepo),
		eventBus,
		nil,
	)
	svc := NewSocialService(repositories.NewSocialRepository(db), fanout)

	_, err := svc.SetFollow(context.Background(), "alice", "bob", true)
	require.NoError(t, err)

	// The live push carries the socket event kind, the row keeps the
	// domain notification type.
	require.Len(t, seen, 1)
	assert.Equal(t, realtime.EventFollowNotif, seen[0].Type)
	assert.Equal(t, realtime.UserTopic("bob"), seen[0].Topic)

	var notification models.Notification
	require.NoError(t, db.Where("user_id = ?", "bob").First(&notification).Error)
	assert.Equal(t, models.NotificationNewFollower, notification.Type)
}

func TestSetFollowRejectsSelf(t *testing.T) {
	db := openTestDB(t)
	svc := NewSocialService(repositories.NewSocialRepository(db), newTestFanout(t, db))

	_, err := svc.SetFollow(context.Background(), "alice", "alice", true)
	assert.True(t, appErrors.Is(err, appErrors.ErrSelfFollow))
}

func TestFollowCounts(t *testing.T) {
	db := openTestDB(t)
	svc := NewSocialService(repositories.NewSocialRepository(db), newTestFanout(t, db))
	ctx := context.Background()

	_, err := svc.SetFollow(ctx, "alice", "carol", true)
	require.NoError(t, err)
	_, err = svc.SetFollow(ctx, "bob", "carol", true)
	require.NoError(t, err)
	_, err = svc.SetFollow(ctx, "carol", "alice", true)
	require.NoError(t, err)

	followers, err := svc.FollowerCount("carol")
	require.NoError(t, err)
	assert.EqualValues(t, 2, followers)

	following, err := svc.FollowingCount("carol")
	require.NoError(t, err)
	assert.EqualValues(t, 1, following)

	// Inactive edges do not count.
	_, err = svc.SetFollow(ctx, "bob", "carol", false)
	require.NoError(t, err)
	followers, err = svc.FollowerCount("carol")
	require.NoError(t, err)
	assert.EqualValues(t, 1, followers)

	isFollowing, err := svc.IsFollowing("bob", "carol")
	require.NoError(t, err)
	assert.False(t, isFollowing)
}

func TestSetLikeTogglesIdempotently(t *testing.T) {
	db := openTestDB(t)
	svc := NewSocialService(repositories.NewSocialRepository(db), newTestFanout(t, db))
	ctx := context.Background()

	result, err := svc.SetLike(ctx, "alice", models.LikeTargetPortfolio, "post-1", "bob", true)
	require.NoError(t, err)
	assert.True(t, result.IsActive)
	assert.True(t, result.StateChanged)

	result, err = svc.SetLike(ctx, "alice", models.LikeTargetPortfolio, "post-1", "bob", true)
	require.NoError(t, err)
	assert.False(t, result.StateChanged)

	count, err := svc.LikeCount(models.LikeTargetPortfolio, "post-1")
	require.NoError(t, err)
	assert.EqualValues(t, 1, count)

	result, err = svc.SetLike(ctx, "alice", models.LikeTargetPortfolio, "post-1", "bob", false)
	require.NoError(t, err)
	assert.True(t, result.StateChanged)
	assert.True(t, result.PreviousState)

	count, err = svc.LikeCount(models.LikeTargetPortfolio, "post-1")
	require.NoError(t, err)
	assert.EqualValues(t, 0, count)
}

func TestSetLikeRejectsOwnContent(t *testing.T) {
	db := openTestDB(t)
	svc := NewSocialService(repositories.NewSocialRepository(db), newTestFanout(t, db))

	_, err := svc.SetLike(context.Background(), "alice", models.LikeTargetPortfolio, "post-1", "alice", true)
	assert.True(t, appErrors.Is(err, appErrors.ErrSelfLike))
}

func TestSetLikeRejectsUnknownTarget(t *testing.T) {
	db := openTestDB(t)
	svc := NewSocialService(repositories.NewSocialRepository(db), newTestFanout(t, db))

	_, err := svc.SetLike(context.Background(), "alice", "banana", "post-1", "bob", true)
	assert.True(t, appErrors.Is(err, appErrors.ErrValidationFailed))
}
