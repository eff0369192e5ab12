package repositories

import (
	"log"

	"github.com/Cl0v1s/mangane/internal/models"
	"gorm.io/gorm"
)

// List returns the user's notifications, newest first, after running the
// composable exclusion stages. The base query joins the activity and drops
// anything authored by a deactivated account.
func (r *PostgresNotificationRepository) List(user *models.User, opts ListOptions) ([]models.Notification, error) {
	q := r.db.Model(&models.Notification{}).
		Select("notifications.*").
		Joins("JOIN activities ON activities.id = notifications.activity_id").
		Joins("JOIN users ON users.id = activities.actor_id").
		Where("notifications.user_id = ?", user.ID).
		Where("users.deactivated = ?", false).
		Scopes(r.queryFilters(user, opts)...)

	if opts.MaxID > 0 {
		q = q.Where("notifications.id < ?", opts.MaxID)
	}
	if opts.SinceID > 0 {
		q = q.Where("notifications.id > ?", opts.SinceID)
	}

	limit := opts.Limit
	if limit <= 0 || limit > r.pageLimit {
		limit = r.pageLimit
	}

	var notifications []models.Notification
	err := q.Order("notifications.id DESC").
		Limit(limit).
		Preload("Activity").
		Preload("Activity.Actor").
		Find(&notifications).Error
	return notifications, err
}

// queryFilters assembles the ordered exclusion stages for one query. Each
// stage is an independent gorm scope so it can be tested on its own.
func (r *PostgresNotificationRepository) queryFilters(user *models.User, opts ListOptions) []func(*gorm.DB) *gorm.DB {
	filters := []func(*gorm.DB) *gorm.DB{
		excludeBlocked(user),
	}
	if !opts.WithMuted {
		filters = append(filters, excludeMuted(r.db, user))
	}
	if len(opts.ExcludeVisibilities) > 0 {
		filters = append(filters, excludeVisibilities(opts.ExcludeVisibilities))
	}
	return filters
}

// excludeBlocked drops notifications whose actor the user blocked, by exact
// AP ID or by the actor's host being in the user's domain-block set.
func excludeBlocked(user *models.User) func(*gorm.DB) *gorm.DB {
	return func(db *gorm.DB) *gorm.DB {
		if len(user.Blocks) > 0 {
			db = db.Where("users.ap_id NOT IN ?", []string(user.Blocks))
		}
		for _, domain := range user.DomainBlocks {
			db = db.Where("users.ap_id NOT LIKE ?", "%://"+domain+"/%")
		}
		return db
	}
}

// excludeMuted drops notifications from notification-muted actors and from
// muted conversation threads.
func excludeMuted(base *gorm.DB, user *models.User) func(*gorm.DB) *gorm.DB {
	return func(db *gorm.DB) *gorm.DB {
		if len(user.MutedNotifications) > 0 {
			db = db.Where("users.ap_id NOT IN ?", []string(user.MutedNotifications))
		}
		return db.Where("activities.context NOT IN (?)",
			base.Table("thread_mutes").Select("context").Where("user_id = ?", user.ID),
		)
	}
}

// excludeVisibilities drops notifications whose activity visibility matches
// any excluded label. An unrecognized label is an operator error: the whole
// stage is skipped and the condition logged, rather than failing the query.
func excludeVisibilities(visibilities []string) func(*gorm.DB) *gorm.DB {
	return func(db *gorm.DB) *gorm.DB {
		for _, visibility := range visibilities {
			if !models.ValidVisibility(visibility) {
				log.Printf("query: unrecognized visibility %q, skipping visibility filter", visibility)
				return db
			}
		}
		return db.Where("activities.visibility NOT IN ?", visibilities)
	}
}
