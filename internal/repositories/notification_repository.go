package repositories

import (
	"errors"

	"github.com/Cl0v1s/mangane/internal/models"
	"gorm.io/gorm"
)

// ErrNotificationNotFound is returned when an operation targets a
// notification that does not exist or belongs to a different user.
var ErrNotificationNotFound = errors.New("notification not found")

// ListOptions control pagination and the query-time exclusion stages
type ListOptions struct {
	MaxID               uint
	SinceID             uint
	Limit               int
	WithMuted           bool     // include muted actors and threads
	ExcludeVisibilities []string // labels from {direct, unlisted, public, private}
}

// NotificationRepository is the durable notification store. Every mutation
// that changes seen-state or row count updates the user's Marker inside the
// same transaction, so the cached unread count never drifts from the real
// number of unseen rows.
type NotificationRepository interface {
	Create(userID, activityID uint) (*models.Notification, error)
	List(user *models.User, opts ListOptions) ([]models.Notification, error)
	Get(userID, id uint) (*models.Notification, error)
	ReadOne(userID, id uint) (*models.Notification, error)
	MarkReadUpTo(userID, maxID uint) ([]models.Notification, error)
	Clear(userID uint) error
	DestroyMultiple(userID uint, ids []uint) error
	Dismiss(userID, id uint) (*models.Notification, error)
	GetMarker(userID uint) (*models.Marker, error)
	GetUnreadCount(userID uint) (int64, error)
	HasFollowNotification(userID, actorID uint) (bool, error)
}

// PostgresNotificationRepository implements NotificationRepository for PostgreSQL
type PostgresNotificationRepository struct {
	db        *gorm.DB
	pageLimit int
}

// NewPostgresNotificationRepository creates a new PostgresNotificationRepository.
// pageLimit caps List results; values <= 0 fall back to 20.
func NewPostgresNotificationRepository(db *gorm.DB, pageLimit int) *PostgresNotificationRepository {
	if pageLimit <= 0 {
		pageLimit = 20
	}
	return &PostgresNotificationRepository{db: db, pageLimit: pageLimit}
}

// Create inserts a notification row and increments the user's marker in one
// transaction. The caller is expected to have run the skip predicates first;
// this method performs no filtering.
func (r *PostgresNotificationRepository) Create(userID, activityID uint) (*models.Notification, error) {
	notification := &models.Notification{UserID: userID, ActivityID: activityID}
	err := r.db.Transaction(func(tx *gorm.DB) error {
		if err := tx.Create(notification).Error; err != nil {
			return err
		}
		return incrementMarker(tx, userID)
	})
	if err != nil {
		return nil, err
	}
	return notification, nil
}

// incrementMarker bumps the unread count, lazily creating the marker row on
// the user's first notification.
func incrementMarker(tx *gorm.DB, userID uint) error {
	res := tx.Model(&models.Marker{}).
		Where("user_id = ? AND timeline = ?", userID, models.TimelineNotifications).
		Update("unread_count", gorm.Expr("unread_count + 1"))
	if res.Error != nil {
		return res.Error
	}
	if res.RowsAffected == 0 {
		return tx.Create(&models.Marker{
			UserID:      userID,
			Timeline:    models.TimelineNotifications,
			UnreadCount: 1,
		}).Error
	}
	return nil
}

// applyMarkerRead decrements the unread count by the number of rows the
// enclosing transaction actually flipped and advances last_read_id
// monotonically. flipped must come from the flip statement's RowsAffected,
// never from a separate recount.
func applyMarkerRead(tx *gorm.DB, userID uint, flipped int64, lastReadID uint) error {
	res := tx.Model(&models.Marker{}).
		Where("user_id = ? AND timeline = ?", userID, models.TimelineNotifications).
		Updates(map[string]interface{}{
			"unread_count": gorm.Expr("unread_count - ?", flipped),
			"last_read_id": gorm.Expr("CASE WHEN last_read_id > ? THEN last_read_id ELSE ? END", lastReadID, lastReadID),
		})
	if res.Error != nil {
		return res.Error
	}
	if res.RowsAffected == 0 {
		return tx.Create(&models.Marker{
			UserID:     userID,
			Timeline:   models.TimelineNotifications,
			LastReadID: lastReadID,
		}).Error
	}
	return nil
}

// Get fetches a single owned notification with its activity attached
func (r *PostgresNotificationRepository) Get(userID, id uint) (*models.Notification, error) {
	var notification models.Notification
	err := r.db.Preload("Activity").Preload("Activity.Actor").
		Where("user_id = ? AND id = ?", userID, id).
		First(&notification).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrNotificationNotFound
		}
		return nil, err
	}
	return &notification, nil
}

// ReadOne flips a single notification to seen and decrements the marker by
// the flip statement's affected-row count, so concurrent sessions of the
// same user cannot double-decrement.
func (r *PostgresNotificationRepository) ReadOne(userID, id uint) (*models.Notification, error) {
	var notification models.Notification
	err := r.db.Transaction(func(tx *gorm.DB) error {
		if err := tx.Where("user_id = ? AND id = ?", userID, id).First(&notification).Error; err != nil {
			if errors.Is(err, gorm.ErrRecordNotFound) {
				return ErrNotificationNotFound
			}
			return err
		}
		res := tx.Model(&models.Notification{}).
			Where("id = ? AND seen = ?", id, false).
			Update("seen", true)
		if res.Error != nil {
			return res.Error
		}
		if res.RowsAffected > 0 {
			notification.Seen = true
			if err := applyMarkerRead(tx, userID, res.RowsAffected, id); err != nil {
				return err
			}
		}
		return tx.Preload("Activity").Preload("Activity.Actor").First(&notification, id).Error
	})
	if err != nil {
		return nil, err
	}
	return &notification, nil
}

// MarkReadUpTo flips every unseen notification with id <= maxID and returns
// the affected records with their activities attached. Calling it again on a
// fully-read range flips nothing and leaves the marker untouched.
func (r *PostgresNotificationRepository) MarkReadUpTo(userID, maxID uint) ([]models.Notification, error) {
	var notifications []models.Notification
	err := r.db.Transaction(func(tx *gorm.DB) error {
		var ids []uint
		if err := tx.Model(&models.Notification{}).
			Where("user_id = ? AND id <= ? AND seen = ?", userID, maxID, false).
			Pluck("id", &ids).Error; err != nil {
			return err
		}
		if len(ids) == 0 {
			return nil
		}
		res := tx.Model(&models.Notification{}).
			Where("user_id = ? AND seen = ? AND id IN ?", userID, false, ids).
			Update("seen", true)
		if res.Error != nil {
			return res.Error
		}
		if res.RowsAffected == 0 {
			return nil
		}
		if err := applyMarkerRead(tx, userID, res.RowsAffected, maxID); err != nil {
			return err
		}
		return tx.Preload("Activity").Preload("Activity.Actor").
			Where("id IN ?", ids).Order("id ASC").
			Find(&notifications).Error
	})
	return notifications, err
}

// Clear deletes all of the user's notifications and zeroes the marker
func (r *PostgresNotificationRepository) Clear(userID uint) error {
	return r.db.Transaction(func(tx *gorm.DB) error {
		if err := tx.Where("user_id = ?", userID).Delete(&models.Notification{}).Error; err != nil {
			return err
		}
		return tx.Model(&models.Marker{}).
			Where("user_id = ? AND timeline = ?", userID, models.TimelineNotifications).
			Update("unread_count", 0).Error
	})
}

// DestroyMultiple deletes the subset of the given ids owned by the user,
// decrementing the marker by the number of unseen rows removed.
func (r *PostgresNotificationRepository) DestroyMultiple(userID uint, ids []uint) error {
	if len(ids) == 0 {
		return nil
	}
	return r.db.Transaction(func(tx *gorm.DB) error {
		var unseen int64
		if err := tx.Model(&models.Notification{}).
			Where("user_id = ? AND id IN ? AND seen = ?", userID, ids, false).
			Count(&unseen).Error; err != nil {
			return err
		}
		if err := tx.Where("user_id = ? AND id IN ?", userID, ids).Delete(&models.Notification{}).Error; err != nil {
			return err
		}
		if unseen == 0 {
			return nil
		}
		return tx.Model(&models.Marker{}).
			Where("user_id = ? AND timeline = ?", userID, models.TimelineNotifications).
			Update("unread_count", gorm.Expr("unread_count - ?", unseen)).Error
	})
}

// Dismiss deletes a single owned notification and returns the removed record
func (r *PostgresNotificationRepository) Dismiss(userID, id uint) (*models.Notification, error) {
	var notification models.Notification
	err := r.db.Transaction(func(tx *gorm.DB) error {
		if err := tx.Where("user_id = ? AND id = ?", userID, id).First(&notification).Error; err != nil {
			if errors.Is(err, gorm.ErrRecordNotFound) {
				return ErrNotificationNotFound
			}
			return err
		}
		if err := tx.Delete(&models.Notification{}, id).Error; err != nil {
			return err
		}
		if notification.Seen {
			return nil
		}
		return tx.Model(&models.Marker{}).
			Where("user_id = ? AND timeline = ?", userID, models.TimelineNotifications).
			Update("unread_count", gorm.Expr("unread_count - 1")).Error
	})
	if err != nil {
		return nil, err
	}
	return &notification, nil
}

// GetMarker returns the user's notification marker, or a zero marker if the
// user has never been notified.
func (r *PostgresNotificationRepository) GetMarker(userID uint) (*models.Marker, error) {
	var marker models.Marker
	err := r.db.Where("user_id = ? AND timeline = ?", userID, models.TimelineNotifications).First(&marker).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return &models.Marker{UserID: userID, Timeline: models.TimelineNotifications}, nil
		}
		return nil, err
	}
	return &marker, nil
}

// GetUnreadCount returns the cached unread count from the marker
func (r *PostgresNotificationRepository) GetUnreadCount(userID uint) (int64, error) {
	marker, err := r.GetMarker(userID)
	if err != nil {
		return 0, err
	}
	return marker.UnreadCount, nil
}

// HasFollowNotification reports whether the user already holds a
// notification for a Follow activity by the given actor, over the whole
// current notification list with no recency window.
func (r *PostgresNotificationRepository) HasFollowNotification(userID, actorID uint) (bool, error) {
	var count int64
	err := r.db.Model(&models.Notification{}).
		Joins("JOIN activities ON activities.id = notifications.activity_id").
		Where("notifications.user_id = ? AND activities.type = ? AND activities.actor_id = ?",
			userID, models.ActivityFollow, actorID).
		Count(&count).Error
	if err != nil {
		return false, err
	}
	return count > 0, nil
}
