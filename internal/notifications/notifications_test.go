package notifications

import (
	"context"
	"fmt"
	"strings"
	"testing"

	"github.com/Cl0v1s/mangane/internal/models"
	"github.com/stretchr/testify/require"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"
)

// fakeObjectRepository stands in for the MongoDB object store
type fakeObjectRepository struct {
	objects map[string]*models.Object
}

func newFakeObjectRepository() *fakeObjectRepository {
	return &fakeObjectRepository{objects: make(map[string]*models.Object)}
}

func (f *fakeObjectRepository) CreateObject(_ context.Context, object *models.Object) error {
	f.objects[object.APID] = object
	return nil
}

func (f *fakeObjectRepository) GetObjectByAPID(_ context.Context, apID string) (*models.Object, error) {
	object, ok := f.objects[apID]
	if !ok {
		return nil, fmt.Errorf("object not found")
	}
	return object, nil
}

func setupTestDB(t *testing.T) *gorm.DB {
	t.Helper()

	dsn := fmt.Sprintf("file:%s?mode=memory&cache=shared", strings.ReplaceAll(t.Name(), "/", "_"))
	db, err := gorm.Open(sqlite.Open(dsn), &gorm.Config{Logger: logger.Default.LogMode(logger.Silent)})
	require.NoError(t, err)

	sqlDB, err := db.DB()
	require.NoError(t, err)
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
		Actor:      actor,
		Recipients: recipients,
		Visibility: models.ComputeVisibility(actor, recipients, nil),
	}
	require.NoError(t, db.Omit("Actor").Create(activity).Error)
	return activity
}

// recordingDispatcher captures dispatched notifications for assertions
type recordingDispatcher struct {
	dispatched []*models.Notification
}

func (d *recordingDispatcher) Dispatch(notification *models.Notification) {
	d.dispatched = append(d.dispatched, notification)
}
