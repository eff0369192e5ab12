package repositories

import (
	"testing"

	"github.com/Cl0v1s/mangane/internal/models"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gorm.io/gorm"
)

func notificationIDs(notifications []models.Notification) []uint {
	ids := make([]uint, len(notifications))
	for i, notification := range notifications {
		ids[i] = notification.ID
	}
	return ids
}

func createNotificationFor(t *testing.T, repo *PostgresNotificationRepository, db *gorm.DB, recipient *models.User, actor *models.User, activityType, visibility, context string) *models.Notification {
	t.Helper()
	activity := &models.Activity{
		Type:       activityType,
		ActorID:    actor.ID,
		Recipients: []string{recipient.APID},
		Context:    context,
		Visibility: visibility,
	}
	require.NoError(t, db.Create(activity).Error)
	notification, err := repo.Create(recipient.ID, activity.ID)
	require.NoError(t, err)
	return notification
}

func TestListExcludesVisibilities(t *testing.T) {
	db := setupTestDB(t)
	repo := NewPostgresNotificationRepository(db, 20)

	actor := createTestUser(t, db, "alice", false)
	recipient := createTestUser(t, db, "bob", true)

	direct := createNotificationFor(t, repo, db, recipient, actor, models.ActivityCreate, models.VisibilityDirect, "")
	createNotificationFor(t, repo, db, recipient, actor, models.ActivityCreate, models.VisibilityPublic, "")

	notifications, err := repo.List(recipient, ListOptions{ExcludeVisibilities: []string{models.VisibilityPublic}})
	require.NoError(t, err)
	assert.Equal(t, []uint{direct.ID}, notificationIDs(notifications))
}

func TestListUnknownVisibilitySkipsStage(t *testing.T) {
	db := setupTestDB(t)
	repo := NewPostgresNotificationRepository(db, 20)

	actor := createTestUser(t, db, "alice", false)
	recipient := createTestUser(t, db, "bob", true)

	createNotificationFor(t, repo, db, recipient, actor, models.ActivityCreate, models.VisibilityDirect, "")
	createNotificationFor(t, repo, db, recipient, actor, models.ActivityCreate, models.VisibilityPublic, "")

	// One bad label disables the whole stage instead of failing the query.
	notifications, err := repo.List(recipient, ListOptions{ExcludeVisibilities: []string{"public", "friends-only"}})
	require.NoError(t, err)
	assert.Len(t, notifications, 2)
}

func TestListExcludesBlockedActors(t *testing.T) {
	db := setupTestDB(t)
	repo := NewPostgresNotificationRepository(db, 20)

	blocked := createTestUser(t, db, "mallory", false)
	friendly := createTestUser(t, db, "alice", false)
	recipient := createTestUser(t, db, "bob", true)
	recipient.Blocks = []string{blocked.APID}
	require.NoError(t, db.Save(recipient).Error)

	createNotificationFor(t, repo, db, recipient, blocked, models.ActivityLike, models.VisibilityPublic, "")
	kept := createNotificationFor(t, repo, db, recipient, friendly, models.ActivityLike, models.VisibilityPublic, "")

	notifications, err := repo.List(recipient, ListOptions{})
	require.NoError(t, err)
	assert.Equal(t, []uint{kept.ID}, notificationIDs(notifications))
}

func TestListExcludesDomainBlockedActors(t *testing.T) {
	db := setupTestDB(t)
	repo := NewPostgresNotificationRepository(db, 20)

	remote := &models.User{
		APID:                 "https://bad.example.net/users/mallory",
		Nickname:             "mallory",
		NotificationSettings: models.DefaultNotificationSettings(),
	}
	require.NoError(t, db.Create(remote).Error)
	friendly := createTestUser(t, db, "alice", false)
	recipient := createTestUser(t, db, "bob", true)
	recipient.DomainBlocks = []string{"bad.example.net"}
	require.NoError(t, db.Save(recipient).Error)

	createNotificationFor(t, repo, db, recipient, remote, models.ActivityLike, models.VisibilityPublic, "")
	kept := createNotificationFor(t, repo, db, recipient, friendly, models.ActivityLike, models.VisibilityPublic, "")

	notifications, err := repo.List(recipient, ListOptions{})
	require.NoError(t, err)
	assert.Equal(t, []uint{kept.ID}, notificationIDs(notifications))
}

func TestListExcludesMutedActorsUnlessOverridden(t *testing.T) {
	db := setupTestDB(t)
	repo := NewPostgresNotificationRepository(db, 20)

	muted := createTestUser(t, db, "noisy", false)
	recipient := createTestUser(t, db, "bob", true)
	recipient.MutedNotifications = []string{muted.APID}
	require.NoError(t, db.Save(recipient).Error)

	createNotificationFor(t, repo, db, recipient, muted, models.ActivityLike, models.VisibilityPublic, "")

	notifications, err := repo.List(recipient, ListOptions{})
	require.NoError(t, err)
	assert.Empty(t, notifications)

	notifications, err = repo.List(recipient, ListOptions{WithMuted: true})
	require.NoError(t, err)
	assert.Len(t, notifications, 1)
}

func TestListExcludesMutedThreads(t *testing.T) {
	db := setupTestDB(t)
	repo := NewPostgresNotificationRepository(db, 20)

	actor := createTestUser(t, db, "alice", false)
	recipient := createTestUser(t, db, "bob", true)
	require.NoError(t, db.Create(&models.ThreadMute{UserID: recipient.ID, Context: "tag:thread-1"}).Error)

	createNotificationFor(t, repo, db, recipient, actor, models.ActivityCreate, models.VisibilityPublic, "tag:thread-1")
	kept := createNotificationFor(t, repo, db, recipient, actor, models.ActivityCreate, models.VisibilityPublic, "tag:thread-2")

	notifications, err := repo.List(recipient, ListOptions{})
	require.NoError(t, err)
	assert.Equal(t, []uint{kept.ID}, notificationIDs(notifications))

	notifications, err = repo.List(recipient, ListOptions{WithMuted: true})
	require.NoError(t, err)
	assert.Len(t, notifications, 2)
}

func TestListExcludesDeactivatedActors(t *testing.T) {
	db := setupTestDB(t)
	repo := NewPostgresNotificationRepository(db, 20)

	actor := createTestUser(t, db, "alice", false)
	recipient := createTestUser(t, db, "bob", true)
	createNotificationFor(t, repo, db, recipient, actor, models.ActivityLike, models.VisibilityPublic, "")

	require.NoError(t, db.Model(&models.User{}).Where("id = ?", actor.ID).Update("deactivated", true).Error)

	notifications, err := repo.List(recipient, ListOptions{})
	require.NoError(t, err)
	assert.Empty(t, notifications)
}

func TestListPagination(t *testing.T) {
	db := setupTestDB(t)
	repo := NewPostgresNotificationRepository(db, 20)

	actor := createTestUser(t, db, "alice", false)
	recipient := createTestUser(t, db, "bob", true)

	var ids []uint
	for i := 0; i < 5; i++ {
		notification := createNotificationFor(t, repo, db, recipient, actor, models.ActivityLike, models.VisibilityPublic, "")
		ids = append(ids, notification.ID)
	}

	// Newest first, capped by limit.
	notifications, err := repo.List(recipient, ListOptions{Limit: 2})
	require.NoError(t, err)
	assert.Equal(t, []uint{ids[4], ids[3]}, notificationIDs(notifications))

	// max_id pages strictly older entries.
	notifications, err = repo.List(recipient, ListOptions{Limit: 2, MaxID: ids[3]})
	require.NoError(t, err)
	assert.Equal(t, []uint{ids[2], ids[1]}, notificationIDs(notifications))

	// since_id bounds from the other side.
	notifications, err = repo.List(recipient, ListOptions{SinceID: ids[3]})
	require.NoError(t, err)
	assert.Equal(t, []uint{ids[4]}, notificationIDs(notifications))
}

func TestListOnlyOwnNotifications(t *testing.T) {
	db := setupTestDB(t)
	repo := NewPostgresNotificationRepository(db, 20)

	actor := createTestUser(t, db, "alice", false)
	bob := createTestUser(t, db, "bob", true)
	carol := createTestUser(t, db, "carol", true)

	createNotificationFor(t, repo, db, bob, actor, models.ActivityLike, models.VisibilityPublic, "")
	carolNotification := createNotificationFor(t, repo, db, carol, actor, models.ActivityLike, models.VisibilityPublic, "")

	notifications, err := repo.List(carol, ListOptions{})
	require.NoError(t, err)
	assert.Equal(t, []uint{carolNotification.ID}, notificationIDs(notifications))
}
