package repositories

import (
	"github.com/Cl0v1s/mangane/internal/models"
	"gorm.io/gorm"
)

// ActivityRepository defines the interface for the relational activity index
type ActivityRepository interface {
	CreateActivity(activity *models.Activity) error
	GetActivityByID(id uint) (*models.Activity, error)
}

// PostgresActivityRepository implements ActivityRepository for PostgreSQL
type PostgresActivityRepository struct {
	db *gorm.DB
}

// NewPostgresActivityRepository creates a new PostgresActivityRepository
func NewPostgresActivityRepository(db *gorm.DB) *PostgresActivityRepository {
	return &PostgresActivityRepository{db: db}
}

// CreateActivity stores an activity index row; the visibility label is
// computed from addressing when the caller left it empty.
func (r *PostgresActivityRepository) CreateActivity(activity *models.Activity) error {
	if activity.Visibility == "" {
		actor := activity.Actor
		if actor == nil && activity.ActorID != 0 {
			var loaded models.User
			if err := r.db.First(&loaded, activity.ActorID).Error; err == nil {
				actor = &loaded
			}
		}
		activity.Visibility = models.ComputeVisibility(actor, activity.Recipients, activity.CC)
	}
	return r.db.Create(activity).Error
}

// GetActivityByID retrieves an activity with its actor attached
func (r *PostgresActivityRepository) GetActivityByID(id uint) (*models.Activity, error) {
	var activity models.Activity
	if err := r.db.Preload("Actor").First(&activity, id).Error; err != nil {
		return nil, err
	}
	return &activity, nil
}
