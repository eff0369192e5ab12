package models

import "time"

// TimelineNotifications is the marker timeline tracked by this engine.
const TimelineNotifications = "notifications"

// Marker caches a user's unread count and last-read position for one
// timeline. It is created lazily on the first notification and mutated only
// inside the same transaction as the notification change it accounts for, so
// unread_count always equals the number of unseen rows at commit boundaries.
type Marker struct {
	ID          uint      `json:"id" gorm:"primaryKey"`
	UserID      uint      `json:"user_id" gorm:"index;uniqueIndex:idx_marker_user_timeline"`
	Timeline    string    `json:"timeline" gorm:"size:30;uniqueIndex:idx_marker_user_timeline"`
	UnreadCount int64     `json:"unread_count" gorm:"default:0"`
	LastReadID  uint      `json:"last_read_id" gorm:"default:0"`
	UpdatedAt   time.Time `json:"updated_at"`
}
