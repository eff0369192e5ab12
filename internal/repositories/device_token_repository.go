package repositories

import (
	"github.com/Cl0v1s/mangane/internal/models"
	"gorm.io/gorm"
)

// DeviceTokenRepository defines the interface for FCM token storage
type DeviceTokenRepository interface {
	RegisterToken(token *models.DeviceToken) error
	UnregisterToken(userID uint, token string) error
	GetTokensByUserID(userID uint) ([]models.DeviceToken, error)
}

// PostgresDeviceTokenRepository implements DeviceTokenRepository for PostgreSQL
type PostgresDeviceTokenRepository struct {
	db *gorm.DB
}

// NewPostgresDeviceTokenRepository creates a new PostgresDeviceTokenRepository
func NewPostgresDeviceTokenRepository(db *gorm.DB) *PostgresDeviceTokenRepository {
	return &PostgresDeviceTokenRepository{db: db}
}

// RegisterToken stores an FCM registration token, reassigning it if another
// user registered the same token before.
func (r *PostgresDeviceTokenRepository) RegisterToken(token *models.DeviceToken) error {
	r.db.Where("token = ?", token.Token).Delete(&models.DeviceToken{})
	return r.db.Create(token).Error
}

// UnregisterToken removes a token owned by the user
func (r *PostgresDeviceTokenRepository) UnregisterToken(userID uint, token string) error {
	return r.db.Where("user_id = ? AND token = ?", userID, token).Delete(&models.DeviceToken{}).Error
}

// GetTokensByUserID retrieves all tokens registered by a user
func (r *PostgresDeviceTokenRepository) GetTokensByUserID(userID uint) ([]models.DeviceToken, error) {
	var tokens []models.DeviceToken
	err := r.db.Where("user_id = ?", userID).Find(&tokens).Error
	return tokens, err
}
