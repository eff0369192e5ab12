package repositories

import (
	"github.com/Cl0v1s/mangane/internal/models"
	"gorm.io/gorm"
)

// UserRepository defines the interface for user data operations
type UserRepository interface {
	CreateUser(user *models.User) error
	GetUserByID(id uint) (*models.User, error)
	GetUserByAPID(apID string) (*models.User, error)
	GetLocalUsersByAPIDs(apIDs []string) ([]models.User, error)
	GetThreadSubscribers(context string) ([]models.User, error)
	UpdateNotificationSettings(userID uint, settings models.NotificationSettings) error
	SetDeactivated(userID uint, deactivated bool) error
	SubscribeThread(userID uint, context string) error
	UnsubscribeThread(userID uint, context string) error
	MuteThread(userID uint, context string) error
	UnmuteThread(userID uint, context string) error
}

// PostgresUserRepository implements UserRepository for PostgreSQL
type PostgresUserRepository struct {
	db *gorm.DB
}

// NewPostgresUserRepository creates a new PostgresUserRepository
func NewPostgresUserRepository(db *gorm.DB) *PostgresUserRepository {
	return &PostgresUserRepository{db: db}
}

// CreateUser creates a new user; notification settings default to all-enabled
func (r *PostgresUserRepository) CreateUser(user *models.User) error {
	if user.NotificationSettings == (models.NotificationSettings{}) {
		user.NotificationSettings = models.DefaultNotificationSettings()
	}
	return r.db.Create(user).Error
}

// GetUserByID retrieves a user by ID
func (r *PostgresUserRepository) GetUserByID(id uint) (*models.User, error) {
	var user models.User
	if err := r.db.First(&user, id).Error; err != nil {
		return nil, err
	}
	return &user, nil
}

// GetUserByAPID retrieves a user by ActivityPub identifier
func (r *PostgresUserRepository) GetUserByAPID(apID string) (*models.User, error) {
	var user models.User
	if err := r.db.Where("ap_id = ?", apID).First(&user).Error; err != nil {
		return nil, err
	}
	return &user, nil
}

// GetLocalUsersByAPIDs retrieves the local accounts among the given AP IDs
func (r *PostgresUserRepository) GetLocalUsersByAPIDs(apIDs []string) ([]models.User, error) {
	if len(apIDs) == 0 {
		return nil, nil
	}
	var users []models.User
	err := r.db.Where("local = ? AND ap_id IN ?", true, apIDs).Find(&users).Error
	return users, err
}

// GetThreadSubscribers retrieves the local users subscribed to a conversation
func (r *PostgresUserRepository) GetThreadSubscribers(context string) ([]models.User, error) {
	if context == "" {
		return nil, nil
	}
	var users []models.User
	err := r.db.Where("local = ? AND id IN (?)", true,
		r.db.Table("thread_subscriptions").Select("user_id").Where("context = ?", context),
	).Find(&users).Error
	return users, err
}

// UpdateNotificationSettings replaces the user's per-category toggles
func (r *PostgresUserRepository) UpdateNotificationSettings(userID uint, settings models.NotificationSettings) error {
	res := r.db.Model(&models.User{}).Where("id = ?", userID).Update("notification_settings", settings)
	if res.Error != nil {
		return res.Error
	}
	if res.RowsAffected == 0 {
		return gorm.ErrRecordNotFound
	}
	return nil
}

// SetDeactivated flags an account as deactivated or restores it
func (r *PostgresUserRepository) SetDeactivated(userID uint, deactivated bool) error {
	return r.db.Model(&models.User{}).Where("id = ?", userID).Update("deactivated", deactivated).Error
}

// SubscribeThread opts a user into updates on a conversation
func (r *PostgresUserRepository) SubscribeThread(userID uint, context string) error {
	return r.db.Create(&models.ThreadSubscription{UserID: userID, Context: context}).Error
}

// UnsubscribeThread removes a thread subscription
func (r *PostgresUserRepository) UnsubscribeThread(userID uint, context string) error {
	return r.db.Where("user_id = ? AND context = ?", userID, context).Delete(&models.ThreadSubscription{}).Error
}

// MuteThread suppresses query-time notifications from a conversation
func (r *PostgresUserRepository) MuteThread(userID uint, context string) error {
	return r.db.Create(&models.ThreadMute{UserID: userID, Context: context}).Error
}

// UnmuteThread removes a thread mute
func (r *PostgresUserRepository) UnmuteThread(userID uint, context string) error {
	return r.db.Where("user_id = ? AND context = ?", userID, context).Delete(&models.ThreadMute{}).Error
}
