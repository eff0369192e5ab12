package repositories

import (
	"fmt"
	"strings"
	"sync"
	"testing"

	"github.com/Cl0v1s/mangane/internal/models"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"
)

func setupTestDB(t *testing.T) *gorm.DB {
	t.Helper()

	dsn := fmt.Sprintf("file:%s?mode=memory&cache=shared", strings.ReplaceAll(t.Name(), "/", "_"))
	db, err := gorm.Open(sqlite.Open(dsn), &gorm.Config{Logger: logger.Default.LogMode(logger.Silent)})
	require.NoError(t, err)

	sqlDB, err := db.DB()
	require.NoError(t, err)
	// Single connection keeps the shared in-memory database alive and lets
	// concurrent test goroutines serialize on SQLite cleanly.
	sqlDB.SetMaxOpenConns(1)
	t.Cleanup(func() { sqlDB.Close() })

	require.NoError(t, db.AutoMigrate(
		&models.User{},
		&models.Follow{},
		&models.Activity{},
		&models.Notification{},
		&models.Marker{},
		&models.ThreadMute{},
		&models.ThreadSubscription{},
		&models.DeviceToken{},
	))
	return db
}

func createTestUser(t *testing.T, db *gorm.DB, nickname string, local bool) *models.User {
	t.Helper()
	user := &models.User{
		APID:                 "https://example.org/users/" + nickname,
		Nickname:             nickname,
		Local:                local,
		FollowersAPID:        "https://example.org/users/" + nickname + "/followers",
		NotificationSettings: models.DefaultNotificationSettings(),
	}
	require.NoError(t, db.Create(user).Error)
	return user
}

func createTestActivity(t *testing.T, db *gorm.DB, actor *models.User, activityType string, recipients []string) *models.Activity {
	t.Helper()
	activity := &models.Activity{
		Type:       activityType,
		ActorID:    actor.ID,
		Recipients: recipients,
		Visibility: models.ComputeVisibility(actor, recipients, nil),
	}
	require.NoError(t, db.Create(activity).Error)
	return activity
}

func TestCreateIncrementsMarker(t *testing.T) {
	db := setupTestDB(t)
	repo := NewPostgresNotificationRepository(db, 20)

	actor := createTestUser(t, db, "alice", false)
	recipient := createTestUser(t, db, "bob", true)
	activity := createTestActivity(t, db, actor, models.ActivityLike, []string{recipient.APID})

	notification, err := repo.Create(recipient.ID, activity.ID)
	require.NoError(t, err)
	assert.False(t, notification.Seen)
	assert.Equal(t, recipient.ID, notification.UserID)

	marker, err := repo.GetMarker(recipient.ID)
	require.NoError(t, err)
	assert.Equal(t, int64(1), marker.UnreadCount)

	// A second notification keeps the marker in step.
	second := createTestActivity(t, db, actor, models.ActivityAnnounce, []string{recipient.APID})
	_, err = repo.Create(recipient.ID, second.ID)
	require.NoError(t, err)

	count, err := repo.GetUnreadCount(recipient.ID)
	require.NoError(t, err)
	assert.Equal(t, int64(2), count)
}

func TestMarkReadUpTo(t *testing.T) {
	db := setupTestDB(t)
	repo := NewPostgresNotificationRepository(db, 20)

	actor := createTestUser(t, db, "alice", false)
	recipient := createTestUser(t, db, "bob", true)

	var ids []uint
	for i := 0; i < 3; i++ {
		activity := createTestActivity(t, db, actor, models.ActivityLike, []string{recipient.APID})
		notification, err := repo.Create(recipient.ID, activity.ID)
		require.NoError(t, err)
		ids = append(ids, notification.ID)
	}

	flipped, err := repo.MarkReadUpTo(recipient.ID, ids[1])
	require.NoError(t, err)
	require.Len(t, flipped, 2)
	for _, notification := range flipped {
		assert.True(t, notification.Seen)
		assert.NotNil(t, notification.Activity, "affected rows carry their activity")
	}

	marker, err := repo.GetMarker(recipient.ID)
	require.NoError(t, err)
	assert.Equal(t, int64(1), marker.UnreadCount)
	assert.Equal(t, ids[1], marker.LastReadID)
}

func TestMarkReadUpToIdempotent(t *testing.T) {
	db := setupTestDB(t)
	repo := NewPostgresNotificationRepository(db, 20)

	actor := createTestUser(t, db, "alice", false)
	recipient := createTestUser(t, db, "bob", true)
	activity := createTestActivity(t, db, actor, models.ActivityLike, []string{recipient.APID})
	notification, err := repo.Create(recipient.ID, activity.ID)
	require.NoError(t, err)

	first, err := repo.MarkReadUpTo(recipient.ID, notification.ID)
	require.NoError(t, err)
	require.Len(t, first, 1)

	second, err := repo.MarkReadUpTo(recipient.ID, notification.ID)
	require.NoError(t, err)
	assert.Empty(t, second, "second call flips nothing")

	marker, err := repo.GetMarker(recipient.ID)
	require.NoError(t, err)
	assert.Equal(t, int64(0), marker.UnreadCount)
	assert.Equal(t, notification.ID, marker.LastReadID)
}

func TestMarkReadUpToOnlyTouchesOwner(t *testing.T) {
	db := setupTestDB(t)
	repo := NewPostgresNotificationRepository(db, 20)

	actor := createTestUser(t, db, "alice", false)
	bob := createTestUser(t, db, "bob", true)
	carol := createTestUser(t, db, "carol", true)

	bobActivity := createTestActivity(t, db, actor, models.ActivityLike, []string{bob.APID})
	carolActivity := createTestActivity(t, db, actor, models.ActivityLike, []string{carol.APID})
	_, err := repo.Create(bob.ID, bobActivity.ID)
	require.NoError(t, err)
	carolNotification, err := repo.Create(carol.ID, carolActivity.ID)
	require.NoError(t, err)

	_, err = repo.MarkReadUpTo(bob.ID, carolNotification.ID)
	require.NoError(t, err)

	count, err := repo.GetUnreadCount(carol.ID)
	require.NoError(t, err)
	assert.Equal(t, int64(1), count, "carol's notifications stay unseen")
}

func TestReadOne(t *testing.T) {
	db := setupTestDB(t)
	repo := NewPostgresNotificationRepository(db, 20)

	actor := createTestUser(t, db, "alice", false)
	recipient := createTestUser(t, db, "bob", true)
	activity := createTestActivity(t, db, actor, models.ActivityLike, []string{recipient.APID})
	created, err := repo.Create(recipient.ID, activity.ID)
	require.NoError(t, err)

	notification, err := repo.ReadOne(recipient.ID, created.ID)
	require.NoError(t, err)
	assert.True(t, notification.Seen)
	require.NotNil(t, notification.Activity)
	assert.Equal(t, activity.ID, notification.Activity.ID)

	count, err := repo.GetUnreadCount(recipient.ID)
	require.NoError(t, err)
	assert.Equal(t, int64(0), count)

	// Reading again is a no-op on the marker.
	_, err = repo.ReadOne(recipient.ID, created.ID)
	require.NoError(t, err)
	count, err = repo.GetUnreadCount(recipient.ID)
	require.NoError(t, err)
	assert.Equal(t, int64(0), count)
}

func TestReadOneNotFound(t *testing.T) {
	db := setupTestDB(t)
	repo := NewPostgresNotificationRepository(db, 20)

	actor := createTestUser(t, db, "alice", false)
	bob := createTestUser(t, db, "bob", true)
	carol := createTestUser(t, db, "carol", true)
	activity := createTestActivity(t, db, actor, models.ActivityLike, []string{bob.APID})
	created, err := repo.Create(bob.ID, activity.ID)
	require.NoError(t, err)

	_, err = repo.ReadOne(carol.ID, created.ID)
	assert.ErrorIs(t, err, ErrNotificationNotFound)

	_, err = repo.ReadOne(bob.ID, created.ID+100)
	assert.ErrorIs(t, err, ErrNotificationNotFound)
}

func TestReadOneConcurrent(t *testing.T) {
	db := setupTestDB(t)
	repo := NewPostgresNotificationRepository(db, 20)

	actor := createTestUser(t, db, "alice", false)
	recipient := createTestUser(t, db, "bob", true)

	const sessions = 8
	ids := make([]uint, 0, sessions)
	for i := 0; i < sessions; i++ {
		activity := createTestActivity(t, db, actor, models.ActivityLike, []string{recipient.APID})
		notification, err := repo.Create(recipient.ID, activity.ID)
		require.NoError(t, err)
		ids = append(ids, notification.ID)
	}

	var wg sync.WaitGroup
	for _, id := range ids {
		wg.Add(1)
		go func(id uint) {
			defer wg.Done()
			_, err := repo.ReadOne(recipient.ID, id)
			assert.NoError(t, err)
		}(id)
	}
	wg.Wait()

	marker, err := repo.GetMarker(recipient.ID)
	require.NoError(t, err)
	assert.Equal(t, int64(0), marker.UnreadCount,
		"every concurrent read decrements exactly once")
}

func TestDismiss(t *testing.T) {
	db := setupTestDB(t)
	repo := NewPostgresNotificationRepository(db, 20)

	actor := createTestUser(t, db, "alice", false)
	bob := createTestUser(t, db, "bob", true)
	carol := createTestUser(t, db, "carol", true)
	activity := createTestActivity(t, db, actor, models.ActivityLike, []string{bob.APID})
	created, err := repo.Create(bob.ID, activity.ID)
	require.NoError(t, err)

	// Not carol's notification.
	_, err = repo.Dismiss(carol.ID, created.ID)
	assert.ErrorIs(t, err, ErrNotificationNotFound)

	dismissed, err := repo.Dismiss(bob.ID, created.ID)
	require.NoError(t, err)
	assert.Equal(t, created.ID, dismissed.ID)

	_, err = repo.Get(bob.ID, created.ID)
	assert.ErrorIs(t, err, ErrNotificationNotFound)

	count, err := repo.GetUnreadCount(bob.ID)
	require.NoError(t, err)
	assert.Equal(t, int64(0), count, "dismissing an unseen notification decrements the marker")
}

func TestDestroyMultipleOwnership(t *testing.T) {
	db := setupTestDB(t)
	repo := NewPostgresNotificationRepository(db, 20)

	actor := createTestUser(t, db, "alice", false)
	bob := createTestUser(t, db, "bob", true)
	carol := createTestUser(t, db, "carol", true)

	bobActivity := createTestActivity(t, db, actor, models.ActivityLike, []string{bob.APID})
	carolActivity := createTestActivity(t, db, actor, models.ActivityLike, []string{carol.APID})
	bobNotification, err := repo.Create(bob.ID, bobActivity.ID)
	require.NoError(t, err)
	carolNotification, err := repo.Create(carol.ID, carolActivity.ID)
	require.NoError(t, err)

	err = repo.DestroyMultiple(bob.ID, []uint{bobNotification.ID, carolNotification.ID})
	require.NoError(t, err)

	_, err = repo.Get(bob.ID, bobNotification.ID)
	assert.ErrorIs(t, err, ErrNotificationNotFound)

	kept, err := repo.Get(carol.ID, carolNotification.ID)
	require.NoError(t, err)
	assert.Equal(t, carolNotification.ID, kept.ID, "foreign ids are ignored")

	bobCount, err := repo.GetUnreadCount(bob.ID)
	require.NoError(t, err)
	assert.Equal(t, int64(0), bobCount)
}

func TestClear(t *testing.T) {
	db := setupTestDB(t)
	repo := NewPostgresNotificationRepository(db, 20)

	actor := createTestUser(t, db, "alice", false)
	recipient := createTestUser(t, db, "bob", true)
	for i := 0; i < 3; i++ {
		activity := createTestActivity(t, db, actor, models.ActivityLike, []string{recipient.APID})
		_, err := repo.Create(recipient.ID, activity.ID)
		require.NoError(t, err)
	}

	require.NoError(t, repo.Clear(recipient.ID))

	notifications, err := repo.List(recipient, ListOptions{})
	require.NoError(t, err)
	assert.Empty(t, notifications)

	count, err := repo.GetUnreadCount(recipient.ID)
	require.NoError(t, err)
	assert.Equal(t, int64(0), count)
}

func TestGetPreloadsActivity(t *testing.T) {
	db := setupTestDB(t)
	repo := NewPostgresNotificationRepository(db, 20)

	actor := createTestUser(t, db, "alice", false)
	recipient := createTestUser(t, db, "bob", true)
	activity := createTestActivity(t, db, actor, models.ActivityAnnounce, []string{recipient.APID})
	created, err := repo.Create(recipient.ID, activity.ID)
	require.NoError(t, err)

	notification, err := repo.Get(recipient.ID, created.ID)
	require.NoError(t, err)
	require.NotNil(t, notification.Activity)
	assert.Equal(t, models.ActivityAnnounce, notification.Activity.Type)
	require.NotNil(t, notification.Activity.Actor)
	assert.Equal(t, actor.ID, notification.Activity.Actor.ID)
}

func TestHasFollowNotification(t *testing.T) {
	db := setupTestDB(t)
	repo := NewPostgresNotificationRepository(db, 20)

	actor := createTestUser(t, db, "alice", false)
	recipient := createTestUser(t, db, "bob", true)

	has, err := repo.HasFollowNotification(recipient.ID, actor.ID)
	require.NoError(t, err)
	assert.False(t, has)

	follow := createTestActivity(t, db, actor, models.ActivityFollow, []string{recipient.APID})
	_, err = repo.Create(recipient.ID, follow.ID)
	require.NoError(t, err)

	has, err = repo.HasFollowNotification(recipient.ID, actor.ID)
	require.NoError(t, err)
	assert.True(t, has)

	// A like from the same actor does not count as a follow notification.
	other := createTestUser(t, db, "carol", true)
	has, err = repo.HasFollowNotification(other.ID, actor.ID)
	require.NoError(t, err)
	assert.False(t, has)
}
